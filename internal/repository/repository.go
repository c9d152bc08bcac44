// Package repository persists feedback and report aggregates. Each aggregate
// is saved as one unit guarded by its version column.
package repository

import (
	"context"
	"slices"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/google/uuid"
)

type FeedbackRepository interface {
	// Create inserts a new aggregate with its items and audit trail.
	Create(ctx context.Context, f *models.Feedback) error
	// Get loads the root and its items.
	Get(ctx context.Context, id uuid.UUID) (*models.Feedback, error)
	// GetWithChildren loads the root, items and audit trail.
	GetWithChildren(ctx context.Context, id uuid.UUID) (*models.Feedback, error)
	// Save writes status changes, item flags and unsaved audit entries if
	// f.Version still matches the stored row, then bumps f.Version.
	Save(ctx context.Context, f *models.Feedback) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter FeedbackFilter) ([]models.Feedback, error)
	Audits(ctx context.Context, id uuid.UUID) ([]models.FeedbackAudit, error)
	CountByStatus(ctx context.Context) (map[models.FeedbackStatus]int64, error)
}

type ReportRepository interface {
	Create(ctx context.Context, r *models.Report) error
	Get(ctx context.Context, id uuid.UUID) (*models.Report, error)
	GetWithChildren(ctx context.Context, id uuid.UUID) (*models.Report, error)
	Save(ctx context.Context, r *models.Report) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ReportFilter) ([]models.Report, error)
	Audits(ctx context.Context, id uuid.UUID) ([]models.ReportAudit, error)
	CountByStatus(ctx context.Context) (map[models.ReportStatus]int64, error)
}

// FeedbackFilter narrows a feedback listing. Zero fields match everything.
type FeedbackFilter struct {
	ListingID          *uuid.UUID
	SellerUserID       *uuid.UUID
	ReviewedByStaffID  *uuid.UUID
	PreviousFeedbackID *uuid.UUID
	Status             *models.FeedbackStatus
	Unreviewed         bool
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
	OldestFirst        bool
}

func (f FeedbackFilter) Matches(fb *models.Feedback) bool {
	switch {
	case f.ListingID != nil && fb.ListingID != *f.ListingID:
		return false
	case f.SellerUserID != nil && fb.SellerUserID != *f.SellerUserID:
		return false
	case f.ReviewedByStaffID != nil && !sameID(fb.ReviewedByStaffID, *f.ReviewedByStaffID):
		return false
	case f.PreviousFeedbackID != nil && !sameID(fb.PreviousFeedbackID, *f.PreviousFeedbackID):
		return false
	case f.Status != nil && fb.Status != *f.Status:
		return false
	case f.Unreviewed && fb.ReviewedByStaffID != nil:
		return false
	}
	return inRange(fb.CreatedAt, f.CreatedFrom, f.CreatedTo, nil)
}

// ReportFilter narrows a report listing. Zero fields match everything.
type ReportFilter struct {
	ReporterUserID  *uuid.UUID
	ReportedUserID  *uuid.UUID
	AssignedAdminID *uuid.UUID
	Entity          *models.EntityRef
	Status          *models.ReportStatus
	Priorities      []models.PriorityLevel
	Unassigned      bool
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	CreatedBefore   *time.Time
	OldestFirst     bool
}

func (f ReportFilter) Matches(r *models.Report) bool {
	switch {
	case f.ReporterUserID != nil && r.ReporterUserID != *f.ReporterUserID:
		return false
	case f.ReportedUserID != nil && !sameID(r.ReportedUserID, *f.ReportedUserID):
		return false
	case f.AssignedAdminID != nil && !sameID(r.AssignedAdminID, *f.AssignedAdminID):
		return false
	case f.Entity != nil && r.ReportedEntity != *f.Entity:
		return false
	case f.Status != nil && r.Status != *f.Status:
		return false
	case len(f.Priorities) > 0 && !slices.Contains(f.Priorities, r.PriorityLevel):
		return false
	case f.Unassigned && r.AssignedAdminID != nil:
		return false
	}
	return inRange(r.CreatedAt, f.CreatedFrom, f.CreatedTo, f.CreatedBefore)
}

func sameID(got *uuid.UUID, want uuid.UUID) bool {
	return got != nil && *got == want
}

// inRange treats from and to as inclusive bounds and before as exclusive.
func inRange(t time.Time, from, to, before *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	if before != nil && !t.Before(*before) {
		return false
	}
	return true
}
