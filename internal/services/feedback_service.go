package services

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/lifecycle"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/notify"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/repository"
	"github.com/google/uuid"
)

// maxChainDepth bounds resubmission chain walks.
const maxChainDepth = 100

type FeedbackService struct {
	repo    repository.FeedbackRepository
	machine *lifecycle.FeedbackMachine
	sink    notify.Sink
}

func NewFeedbackService(repo repository.FeedbackRepository, machine *lifecycle.FeedbackMachine, sink notify.Sink) *FeedbackService {
	if sink == nil {
		sink = notify.Discard
	}
	return &FeedbackService{repo: repo, machine: machine, sink: sink}
}

func (s *FeedbackService) Create(ctx context.Context, req dto.CreateFeedbackRequest) (*models.Feedback, error) {
	if req.PreviousFeedbackID != nil {
		if _, err := s.repo.Get(ctx, *req.PreviousFeedbackID); err != nil {
			if apperr.IsCode(err, apperr.CodeNotFound) {
				return nil, apperr.Validation("previous feedback %s does not exist", *req.PreviousFeedbackID)
			}
			return nil, err
		}
	}

	in := lifecycle.NewFeedback{
		ListingID:          req.ListingID,
		SellerUserID:       req.SellerUserID,
		CheckType:          req.CheckType,
		AIConfidenceScore:  req.AIConfidenceScore,
		PreviousFeedbackID: req.PreviousFeedbackID,
		Items:              make([]lifecycle.NewFeedbackItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, lifecycle.NewFeedbackItem{
			Category:        it.Category,
			Severity:        it.Severity,
			TargetAttribute: it.TargetAttribute,
			ErrorMessage:    it.ErrorMessage,
			Suggestion:      it.Suggestion,
			DetectedBy:      it.DetectedBy,
		})
	}

	f, err := s.machine.Open(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	slog.Info("feedback created",
		"feedback_id", f.ID,
		"listing_id", f.ListingID,
		"items", len(f.Items),
		"resubmission", f.IsResubmission,
	)
	s.publish(f, 0)
	return f, nil
}

func (s *FeedbackService) Get(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	return s.repo.GetWithChildren(ctx, id)
}

func (s *FeedbackService) AuditTrail(ctx context.Context, id uuid.UUID) ([]models.FeedbackAudit, error) {
	return s.repo.Audits(ctx, id)
}

func (s *FeedbackService) List(ctx context.Context, filter repository.FeedbackFilter) ([]models.Feedback, error) {
	return s.repo.List(ctx, filter)
}

// PendingReviews lists PENDING feedback that no staff member has picked up.
func (s *FeedbackService) PendingReviews(ctx context.Context) ([]models.Feedback, error) {
	status := models.FeedbackPending
	return s.repo.List(ctx, repository.FeedbackFilter{Status: &status, Unreviewed: true})
}

// Resubmissions lists feedback whose previous link points at id.
func (s *FeedbackService) Resubmissions(ctx context.Context, id uuid.UUID) ([]models.Feedback, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, repository.FeedbackFilter{PreviousFeedbackID: &id})
}

// ResubmissionChain walks previous links from id back to the first
// submission. The result starts with id itself. A dangling link ends the
// walk; a cycle or an overly deep chain is reported as a conflict.
func (s *FeedbackService) ResubmissionChain(ctx context.Context, id uuid.UUID) ([]models.Feedback, error) {
	head, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	chain := []models.Feedback{*head}
	seen := map[uuid.UUID]struct{}{head.ID: {}}
	for cur := head; cur.PreviousFeedbackID != nil; {
		prevID := *cur.PreviousFeedbackID
		if _, dup := seen[prevID]; dup {
			return nil, apperr.Conflict("resubmission chain of %s loops at %s", id, prevID)
		}
		if len(chain) >= maxChainDepth {
			return nil, apperr.Conflict("resubmission chain of %s exceeds %d entries", id, maxChainDepth)
		}
		prev, err := s.repo.Get(ctx, prevID)
		if apperr.IsCode(err, apperr.CodeNotFound) {
			slog.Warn("resubmission chain has a dangling link", "feedback_id", cur.ID, "previous_feedback_id", prevID)
			break
		}
		if err != nil {
			return nil, err
		}
		seen[prevID] = struct{}{}
		chain = append(chain, *prev)
		cur = prev
	}
	return chain, nil
}

func (s *FeedbackService) Transition(ctx context.Context, id uuid.UUID, to models.FeedbackStatus, staffID *uuid.UUID, notes string) (*models.Feedback, error) {
	if to == "" {
		return nil, apperr.Validation("status is required")
	}
	if !to.Valid() {
		return nil, apperr.Validation("invalid feedback status %q", to)
	}
	return s.mutate(ctx, id, func(f *models.Feedback) error {
		return s.machine.Transition(f, to, staffID, notes)
	})
}

func (s *FeedbackService) Approve(ctx context.Context, id uuid.UUID, staffID *uuid.UUID, notes string) (*models.Feedback, error) {
	if staffID == nil || *staffID == uuid.Nil {
		return nil, apperr.Validation("staff_id is required")
	}
	return s.Transition(ctx, id, models.FeedbackApproved, staffID, notes)
}

func (s *FeedbackService) Reject(ctx context.Context, id uuid.UUID, staffID *uuid.UUID, notes string) (*models.Feedback, error) {
	if staffID == nil || *staffID == uuid.Nil {
		return nil, apperr.Validation("staff_id is required")
	}
	return s.Transition(ctx, id, models.FeedbackRejected, staffID, notes)
}

func (s *FeedbackService) MarkItemFixed(ctx context.Context, id, itemID uuid.UUID) (*models.Feedback, error) {
	var resolved bool
	f, err := s.mutate(ctx, id, func(f *models.Feedback) error {
		var err error
		resolved, err = s.machine.MarkItemFixed(f, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if resolved {
		slog.Info("feedback auto resolved", "feedback_id", id)
	}
	return f, nil
}

func (s *FeedbackService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("feedback deleted", "feedback_id", id)
	s.sink.Publish(notify.Message{
		AggregateType: notify.AggregateFeedback,
		AggregateID:   id,
		Action:        notify.ActionDeleted,
	})
	return nil
}

// mutate runs one load-apply-save cycle and publishes the entries it added.
func (s *FeedbackService) mutate(ctx context.Context, id uuid.UUID, apply func(*models.Feedback) error) (*models.Feedback, error) {
	f, err := s.repo.GetWithChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	mark := len(f.Audits)
	if err := apply(f); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, f); err != nil {
		if apperr.IsCode(err, apperr.CodeConflict) {
			slog.Warn("feedback save conflict", "feedback_id", id, "version", f.Version)
		}
		return nil, err
	}
	s.publish(f, mark)
	return f, nil
}

func (s *FeedbackService) publish(f *models.Feedback, from int) {
	for _, a := range f.Audits[from:] {
		msg := notify.Message{
			AggregateType: notify.AggregateFeedback,
			AggregateID:   f.ID,
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

