// Package memory keeps aggregates in process memory. It applies the same
// version check as the PostgreSQL stores and is used for local runs and tests.
package memory

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/repository"
	"github.com/google/uuid"
)

var (
	_ repository.FeedbackRepository = (*FeedbackStore)(nil)
	_ repository.ReportRepository   = (*ReportStore)(nil)
)

type FeedbackStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*models.Feedback
}

func NewFeedbackStore() *FeedbackStore {
	return &FeedbackStore{rows: make(map[uuid.UUID]*models.Feedback)}
}

func (s *FeedbackStore) Create(_ context.Context, f *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[f.ID]; ok {
		return apperr.Conflict("feedback %s already exists", f.ID)
	}
	f.IsResubmission = f.PreviousFeedbackID != nil
	for i := range f.Audits {
		if f.Audits[i].ID == uuid.Nil {
			f.Audits[i].ID = uuid.New()
		}
		f.Audits[i].FeedbackID = f.ID
	}
	s.rows[f.ID] = cloneFeedback(f, true)
	return nil
}

func (s *FeedbackStore) Get(_ context.Context, id uuid.UUID) (*models.Feedback, error) {
	return s.load(id, false)
}

func (s *FeedbackStore) GetWithChildren(_ context.Context, id uuid.UUID) (*models.Feedback, error) {
	return s.load(id, true)
}

func (s *FeedbackStore) load(id uuid.UUID, withAudits bool) (*models.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("feedback %s not found", id)
	}
	return cloneFeedback(f, withAudits), nil
}

func (s *FeedbackStore) Save(_ context.Context, f *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.rows[f.ID]
	if !ok {
		return apperr.NotFound("feedback %s not found", f.ID)
	}
	if stored.Version != f.Version {
		return apperr.Conflict("feedback %s was modified concurrently", f.ID)
	}

	stored.Status = f.Status
	stored.ReviewedByStaffID = f.ReviewedByStaffID
	for _, it := range f.Items {
		if dst := stored.Item(it.ID); dst != nil {
			dst.IsFixed = it.IsFixed
		}
	}
	for i := range f.Audits {
		if f.Audits[i].ID != uuid.Nil {
			continue
		}
		f.Audits[i].ID = uuid.New()
		f.Audits[i].FeedbackID = f.ID
		stored.Audits = append(stored.Audits, f.Audits[i])
	}
	stored.Version++
	f.Version = stored.Version
	return nil
}

func (s *FeedbackStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return apperr.NotFound("feedback %s not found", id)
	}
	delete(s.rows, id)
	return nil
}

func (s *FeedbackStore) List(_ context.Context, filter repository.FeedbackFilter) ([]models.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Feedback, 0)
	for _, f := range s.rows {
		if filter.Matches(f) {
			out = append(out, *cloneFeedback(f, false))
		}
	}
	slices.SortFunc(out, func(a, b models.Feedback) int {
		return byCreated(a.CreatedAt.Compare(b.CreatedAt), a.ID, b.ID, filter.OldestFirst)
	})
	return out, nil
}

func (s *FeedbackStore) Audits(_ context.Context, id uuid.UUID) ([]models.FeedbackAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("feedback %s not found", id)
	}
	return slices.Clone(f.Audits), nil
}

func (s *FeedbackStore) CountByStatus(context.Context) (map[models.FeedbackStatus]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.FeedbackStatus]int64)
	for _, f := range s.rows {
		counts[f.Status]++
	}
	return counts, nil
}

type ReportStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*models.Report
}

func NewReportStore() *ReportStore {
	return &ReportStore{rows: make(map[uuid.UUID]*models.Report)}
}

func (s *ReportStore) Create(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[r.ID]; ok {
		return apperr.Conflict("report %s already exists", r.ID)
	}
	for i := range r.Audits {
		if r.Audits[i].ID == uuid.Nil {
			r.Audits[i].ID = uuid.New()
		}
		r.Audits[i].ReportID = r.ID
	}
	s.rows[r.ID] = cloneReport(r, true)
	return nil
}

func (s *ReportStore) Get(_ context.Context, id uuid.UUID) (*models.Report, error) {
	return s.load(id, false)
}

func (s *ReportStore) GetWithChildren(_ context.Context, id uuid.UUID) (*models.Report, error) {
	return s.load(id, true)
}

func (s *ReportStore) load(id uuid.UUID, withAudits bool) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("report %s not found", id)
	}
	return cloneReport(r, withAudits), nil
}

func (s *ReportStore) Save(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.rows[r.ID]
	if !ok {
		return apperr.NotFound("report %s not found", r.ID)
	}
	if stored.Version != r.Version {
		return apperr.Conflict("report %s was modified concurrently", r.ID)
	}

	stored.Status = r.Status
	stored.AssignedAdminID = r.AssignedAdminID
	stored.ResolutionNotes = r.ResolutionNotes
	stored.ResolvedAt = r.ResolvedAt
	stored.UpdatedAt = r.UpdatedAt
	for _, ev := range r.Evidences {
		if dst := stored.Evidence(ev.ID); dst != nil {
			dst.IsVerified = ev.IsVerified
			dst.VerificationNotes = ev.VerificationNotes
		}
	}
	for i := range r.Audits {
		if r.Audits[i].ID != uuid.Nil {
			continue
		}
		r.Audits[i].ID = uuid.New()
		r.Audits[i].ReportID = r.ID
		stored.Audits = append(stored.Audits, r.Audits[i])
	}
	stored.Version++
	r.Version = stored.Version
	return nil
}

func (s *ReportStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return apperr.NotFound("report %s not found", id)
	}
	delete(s.rows, id)
	return nil
}

func (s *ReportStore) List(_ context.Context, filter repository.ReportFilter) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Report, 0)
	for _, r := range s.rows {
		if filter.Matches(r) {
			out = append(out, *cloneReport(r, false))
		}
	}
	slices.SortFunc(out, func(a, b models.Report) int {
		return byCreated(a.CreatedAt.Compare(b.CreatedAt), a.ID, b.ID, filter.OldestFirst)
	})
	return out, nil
}

func (s *ReportStore) Audits(_ context.Context, id uuid.UUID) ([]models.ReportAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("report %s not found", id)
	}
	return slices.Clone(r.Audits), nil
}

func (s *ReportStore) CountByStatus(context.Context) (map[models.ReportStatus]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.ReportStatus]int64)
	for _, r := range s.rows {
		counts[r.Status]++
	}
	return counts, nil
}

func byCreated(cmp int, a, b uuid.UUID, oldestFirst bool) int {
	if cmp == 0 {
		cmp = bytes.Compare(a[:], b[:])
	}
	if oldestFirst {
		return cmp
	}
	return -cmp
}

// Pointer fields are shared between clones; callers replace them rather than
// writing through them.
func cloneFeedback(f *models.Feedback, withAudits bool) *models.Feedback {
	c := *f
	c.Items = slices.Clone(f.Items)
	c.Audits = nil
	if withAudits {
		c.Audits = slices.Clone(f.Audits)
	}
	return &c
}

func cloneReport(r *models.Report, withAudits bool) *models.Report {
	c := *r
	c.Evidences = slices.Clone(r.Evidences)
	c.Audits = nil
	if withAudits {
		c.Audits = slices.Clone(r.Audits)
	}
	return &c
}
