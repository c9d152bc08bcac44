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

// ReportStore is the PostgreSQL ReportRepository.
type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

func (s *ReportStore) Create(ctx context.Context, r *models.Report) error {
	for i := range r.Audits {
		if r.Audits[i].ID == uuid.Nil {
			r.Audits[i].ID = uuid.New()
		}
	}
	return translate("create report", s.db.WithContext(ctx).Create(r).Error)
}

func (s *ReportStore) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return s.load(ctx, id, false)
}

func (s *ReportStore) GetWithChildren(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return s.load(ctx, id, true)
}

func (s *ReportStore) load(ctx context.Context, id uuid.UUID, withAudits bool) (*models.Report, error) {
	q := s.db.WithContext(ctx).Preload("Evidences", byPosition)
	if withAudits {
		q = q.Preload("Audits", bySequence)
	}

	var r models.Report
	if err := q.First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("report %s not found", id)
		}
		return nil, translate("get report", err)
	}
	if withAudits && !audit.Ordered(r.Audits) {
		slog.Warn("report audit trail out of order", "report_id", id, "entries", len(r.Audits))
	}
	return &r, nil
}

func (s *ReportStore) Save(ctx context.Context, r *models.Report) error {
	pending, idx := unsavedReportAudits(r)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Report{}).
			Where("id = ? AND version = ?", r.ID, r.Version).
			Updates(map[string]interface{}{
				"status":            r.Status,
				"assigned_admin_id": nullable(r.AssignedAdminID),
				"resolution_notes":  r.ResolutionNotes,
				"resolved_at":       nullable(r.ResolvedAt),
				"updated_at":        r.UpdatedAt,
				"version":           gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return staleOrMissing(tx, &models.Report{}, "report", r.ID)
		}

		for _, ev := range r.Evidences {
			if err := tx.Model(&models.Evidence{}).
				Where("id = ? AND report_id = ?", ev.ID, r.ID).
				Updates(map[string]interface{}{
					"is_verified":        ev.IsVerified,
					"verification_notes": ev.VerificationNotes,
				}).Error; err != nil {
				return err
			}
		}
		if len(pending) > 0 {
			return tx.Create(&pending).Error
		}
		return nil
	})
	if err != nil {
		return translate("save report", err)
	}

	for i, at := range idx {
		r.Audits[at].ID = pending[i].ID
	}
	r.Version++
	return nil
}

func (s *ReportStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", id).Delete(&models.ReportAudit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", id).Delete(&models.Evidence{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Report{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("report %s not found", id)
		}
		return nil
	})
	return translate("delete report", err)
}

func (s *ReportStore) List(ctx context.Context, filter ReportFilter) ([]models.Report, error) {
	var out []models.Report
	err := s.db.WithContext(ctx).
		Preload("Evidences", byPosition).
		Scopes(filter.scope()).
		Find(&out).Error
	return out, translate("list reports", err)
}

func (s *ReportStore) Audits(ctx context.Context, id uuid.UUID) ([]models.ReportAudit, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return nil, translate("report audits", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("report %s not found", id)
	}

	var out []models.ReportAudit
	err := s.db.WithContext(ctx).Scopes(bySequence).Where("report_id = ?", id).Find(&out).Error
	return out, translate("report audits", err)
}

func (s *ReportStore) CountByStatus(ctx context.Context) (map[models.ReportStatus]int64, error) {
	var rows []struct {
		Status models.ReportStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("count reports", err)
	}

	counts := make(map[models.ReportStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func unsavedReportAudits(r *models.Report) ([]models.ReportAudit, []int) {
	var (
		pending []models.ReportAudit
		idx     []int
	)
	for i, a := range r.Audits {
		if a.ID != uuid.Nil {
			continue
		}
		a.ID = uuid.New()
		a.ReportID = r.ID
		pending = append(pending, a)
		idx = append(idx, i)
	}
	return pending, idx
}
