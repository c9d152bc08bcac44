package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/lifecycle"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/notify"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/repository"
	"github.com/google/uuid"
)

const DefaultOverdueAfter = 7 * 24 * time.Hour

type ReportService struct {
	repo         repository.ReportRepository
	machine      *lifecycle.ReportMachine
	sink         notify.Sink
	overdueAfter time.Duration
	clock        lifecycle.Clock
}

func NewReportService(repo repository.ReportRepository, machine *lifecycle.ReportMachine, sink notify.Sink, overdueAfter time.Duration) *ReportService {
	if sink == nil {
		sink = notify.Discard
	}
	if overdueAfter <= 0 {
		overdueAfter = DefaultOverdueAfter
	}
	return &ReportService{repo: repo, machine: machine, sink: sink, overdueAfter: overdueAfter}
}

// WithClock pins the clock Overdue measures against.
func (s *ReportService) WithClock(clock lifecycle.Clock) *ReportService {
	s.clock = clock
	return s
}

func (s *ReportService) Create(ctx context.Context, req dto.CreateReportRequest) (*models.Report, error) {
	if req.ReportedEntityID == nil {
		return nil, apperr.Validation("reported_entity_id is required")
	}
	in := lifecycle.NewReport{
		ReporterUserID:  req.ReporterUserID,
		ReportedUserID:  req.ReportedUserID,
		ReportedEntity:  models.EntityRef{Type: req.ReportedEntityType, ID: *req.ReportedEntityID},
		ReportType:      req.ReportType,
		PriorityLevel:   req.PriorityLevel,
		Title:           req.Title,
		Description:     req.Description,
		AISeverityScore: req.AISeverityScore,
		Evidences:       make([]lifecycle.NewEvidence, 0, len(req.Evidences)),
	}
	for i, ev := range req.Evidences {
		if ev.FileSize == nil {
			return nil, apperr.Validation("evidences[%d]: file_size is required", i)
		}
		in.Evidences = append(in.Evidences, lifecycle.NewEvidence{
			EvidenceType: ev.EvidenceType,
			FileURL:      ev.FileURL,
			FileSize:     *ev.FileSize,
			MimeType:     ev.MimeType,
			Description:  ev.Description,
			Metadata:     ev.Metadata,
		})
	}

	r, err := s.machine.Open(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	slog.Info("report created",
		"report_id", r.ID,
		"report_type", r.ReportType,
		"priority", r.PriorityLevel,
		"evidences", len(r.Evidences),
	)
	s.publish(r, 0)
	return r, nil
}

func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return s.repo.GetWithChildren(ctx, id)
}

func (s *ReportService) AuditTrail(ctx context.Context, id uuid.UUID) ([]models.ReportAudit, error) {
	return s.repo.Audits(ctx, id)
}

func (s *ReportService) List(ctx context.Context, filter repository.ReportFilter) ([]models.Report, error) {
	return s.repo.List(ctx, filter)
}

func (s *ReportService) Unassigned(ctx context.Context) ([]models.Report, error) {
	return s.repo.List(ctx, repository.ReportFilter{Unassigned: true})
}

// NeedsAttention lists unassigned PENDING reports of HIGH or CRITICAL
// priority, oldest first.
func (s *ReportService) NeedsAttention(ctx context.Context) ([]models.Report, error) {
	status := models.ReportPending
	return s.repo.List(ctx, repository.ReportFilter{
		Status:      &status,
		Priorities:  []models.PriorityLevel{models.SeverityHigh, models.SeverityCritical},
		Unassigned:  true,
		OldestFirst: true,
	})
}

// Overdue lists PENDING reports created more than overdueAfter ago, oldest first.
func (s *ReportService) Overdue(ctx context.Context) ([]models.Report, error) {
	status := models.ReportPending
	cutoff := s.clock.Now().Add(-s.overdueAfter)
	return s.repo.List(ctx, repository.ReportFilter{
		Status:        &status,
		CreatedBefore: &cutoff,
		OldestFirst:   true,
	})
}

func (s *ReportService) Assign(ctx context.Context, id, adminID uuid.UUID, notes string) (*models.Report, error) {
	if adminID == uuid.Nil {
		return nil, apperr.Validation("admin_id is required")
	}
	return s.mutate(ctx, id, func(r *models.Report) error {
		return s.machine.Assign(r, adminID, notes)
	})
}

func (s *ReportService) Transition(ctx context.Context, id uuid.UUID, to models.ReportStatus, adminID uuid.UUID, notes string) (*models.Report, error) {
	switch {
	case adminID == uuid.Nil:
		return nil, apperr.Validation("admin_id is required")
	case to == "":
		return nil, apperr.Validation("status is required")
	case !to.Valid():
		return nil, apperr.Validation("invalid report status %q", to)
	}
	return s.mutate(ctx, id, func(r *models.Report) error {
		return s.machine.Transition(r, to, adminID, notes)
	})
}

func (s *ReportService) Resolve(ctx context.Context, id, adminID uuid.UUID, resolutionNotes string) (*models.Report, error) {
	return s.mutate(ctx, id, func(r *models.Report) error {
		return s.machine.Resolve(r, adminID, resolutionNotes)
	})
}

func (s *ReportService) Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (*models.Report, error) {
	return s.mutate(ctx, id, func(r *models.Report) error {
		return s.machine.Reject(r, adminID, reason)
	})
}

func (s *ReportService) VerifyEvidence(ctx context.Context, id, evidenceID uuid.UUID, notes string) (*models.Report, error) {
	r, err := s.mutate(ctx, id, func(r *models.Report) error {
		return s.machine.VerifyEvidence(r, evidenceID, notes)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("evidence verified", "report_id", id, "evidence_id", evidenceID)
	s.sink.Publish(notify.Message{
		AggregateType: notify.AggregateReport,
		AggregateID:   id,
		Action:        notify.ActionEvidenceVerified,
		NewStatus:     string(r.Status),
		Notes:         notes,
		OccurredAt:    r.UpdatedAt,
	})
	return r, nil
}

func (s *ReportService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("report deleted", "report_id", id)
	s.sink.Publish(notify.Message{
		AggregateType: notify.AggregateReport,
		AggregateID:   id,
		Action:        notify.ActionDeleted,
	})
	return nil
}

func (s *ReportService) mutate(ctx context.Context, id uuid.UUID, apply func(*models.Report) error) (*models.Report, error) {
	r, err := s.repo.GetWithChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	mark := len(r.Audits)
	if err := apply(r); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		if apperr.IsCode(err, apperr.CodeConflict) {
			slog.Warn("report save conflict", "report_id", id, "version", r.Version)
		}
		return nil, err
	}
	s.publish(r, mark)
	return r, nil
}

func (s *ReportService) publish(r *models.Report, from int) {
	for _, a := range r.Audits[from:] {
		msg := notify.Message{
			AggregateType: notify.AggregateReport,
			AggregateID:   r.ID,
			Action:        string(a.Action),
			NewStatus:     string(a.NewStatus),
			ActorID:       a.ActorID,
			Notes:         a.Notes,
			OccurredAt:    a.CreatedAt,
		}
		if a.PreviousStatus != nil {
			msg.PreviousStatus = string(*a.PreviousStatus)
		}
		s.sink.Publish(msg)
	}
}
