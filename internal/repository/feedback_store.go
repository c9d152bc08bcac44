package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/audit"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedbackStore is the PostgreSQL FeedbackRepository.
type FeedbackStore struct {
	db *gorm.DB
}

func NewFeedbackStore(db *gorm.DB) *FeedbackStore {
	return &FeedbackStore{db: db}
}

func (s *FeedbackStore) Create(ctx context.Context, f *models.Feedback) error {
	for i := range f.Audits {
		if f.Audits[i].ID == uuid.Nil {
			f.Audits[i].ID = uuid.New()
		}
	}
	return translate("create feedback", s.db.WithContext(ctx).Create(f).Error)
}

func (s *FeedbackStore) Get(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	return s.load(ctx, id, false)
}

func (s *FeedbackStore) GetWithChildren(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	return s.load(ctx, id, true)
}

func (s *FeedbackStore) load(ctx context.Context, id uuid.UUID, withAudits bool) (*models.Feedback, error) {
	q := s.db.WithContext(ctx).Preload("Items", byPosition)
	if withAudits {
		q = q.Preload("Audits", bySequence)
	}

	var f models.Feedback
	if err := q.First(&f, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("feedback %s not found", id)
		}
		return nil, translate("get feedback", err)
	}
	if withAudits && !audit.Ordered(f.Audits) {
		slog.Warn("feedback audit trail out of order", "feedback_id", id, "entries", len(f.Audits))
	}
	return &f, nil
}

func (s *FeedbackStore) Save(ctx context.Context, f *models.Feedback) error {
	pending, idx := unsavedFeedbackAudits(f)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Feedback{}).
			Where("id = ? AND version = ?", f.ID, f.Version).
			Updates(map[string]interface{}{
				"status":               f.Status,
				"reviewed_by_staff_id": nullable(f.ReviewedByStaffID),
				"version":              gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return staleOrMissing(tx, &models.Feedback{}, "feedback", f.ID)
		}

		for _, it := range f.Items {
			if err := tx.Model(&models.FeedbackItem{}).
				Where("id = ? AND feedback_id = ?", it.ID, f.ID).
				Update("is_fixed", it.IsFixed).Error; err != nil {
				return err
			}
		}
		if len(pending) > 0 {
			return tx.Create(&pending).Error
		}
		return nil
	})
	if err != nil {
		return translate("save feedback", err)
	}

	for i, at := range idx {
		f.Audits[at].ID = pending[i].ID
	}
	f.Version++
	return nil
}

func (s *FeedbackStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("feedback_id = ?", id).Delete(&models.FeedbackAudit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("feedback_id = ?", id).Delete(&models.FeedbackItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Feedback{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("feedback %s not found", id)
		}
		return nil
	})
	return translate("delete feedback", err)
}

func (s *FeedbackStore) List(ctx context.Context, filter FeedbackFilter) ([]models.Feedback, error) {
	var out []models.Feedback
	err := s.db.WithContext(ctx).
		Preload("Items", byPosition).
		Scopes(filter.scope()).
		Find(&out).Error
	return out, translate("list feedback", err)
}

func (s *FeedbackStore) Audits(ctx context.Context, id uuid.UUID) ([]models.FeedbackAudit, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Feedback{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return nil, translate("feedback audits", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("feedback %s not found", id)
	}

	var out []models.FeedbackAudit
	err := s.db.WithContext(ctx).Scopes(bySequence).Where("feedback_id = ?", id).Find(&out).Error
	return out, translate("feedback audits", err)
}

func (s *FeedbackStore) CountByStatus(ctx context.Context) (map[models.FeedbackStatus]int64, error) {
	var rows []struct {
		Status models.FeedbackStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Feedback{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("count feedback", err)
	}

	counts := make(map[models.FeedbackStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// unsavedFeedbackAudits returns new entries with fresh ids and their
// positions in f.Audits. f itself is left alone until the save commits.
func unsavedFeedbackAudits(f *models.Feedback) ([]models.FeedbackAudit, []int) {
	var (
		pending []models.FeedbackAudit
		idx     []int
	)
	for i, a := range f.Audits {
		if a.ID != uuid.Nil {
			continue
		}
		a.ID = uuid.New()
		a.FeedbackID = f.ID
		pending = append(pending, a)
		idx = append(idx, i)
	}
	return pending, idx
}

// nullable turns a nil pointer into an untyped nil for column updates.
func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
