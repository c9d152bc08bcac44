package handlers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/repository"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FeedbackHandler struct {
	feedbackService   *services.FeedbackService
	statisticsService *services.StatisticsService
}

func NewFeedbackHandler(feedbackService *services.FeedbackService, statisticsService *services.StatisticsService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService, statisticsService: statisticsService}
}

func (h *FeedbackHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateFeedbackRequest
	if err := parseBody(c, &req, false); err != nil {
		return fail(c, err)
	}

	f, err := h.feedbackService.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(f)
}

func (h *FeedbackHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	f, err := h.feedbackService.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(f)
}

func (h *FeedbackHandler) Audits(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	trail, err := h.feedbackService.AuditTrail(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(trail)
}

func (h *FeedbackHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.statisticsService.Feedback(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

func (h *FeedbackHandler) PendingReviews(c *fiber.Ctx) error {
	list, err := h.feedbackService.PendingReviews(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

func (h *FeedbackHandler) ByListing(c *fiber.Ctx) error {
	id, err := uuidParam(c, "listingId")
	if err != nil {
		return fail(c, err)
	}
	return h.list(c, repository.FeedbackFilter{ListingID: &id})
}

func (h *FeedbackHandler) BySeller(c *fiber.Ctx) error {
	id, err := uuidParam(c, "sellerId")
	if err != nil {
		return fail(c, err)
	}
	return h.list(c, repository.FeedbackFilter{SellerUserID: &id})
}

func (h *FeedbackHandler) ByReviewer(c *fiber.Ctx) error {
	id, err := uuidParam(c, "staffId")
	if err != nil {
		return fail(c, err)
	}
	return h.list(c, repository.FeedbackFilter{ReviewedByStaffID: &id})
}

func (h *FeedbackHandler) ByStatus(c *fiber.Ctx) error {
	status := models.FeedbackStatus(c.Params("status"))
	if !status.Valid() {
		return fail(c, apperr.Validation("invalid feedback status %q", status))
	}
	return h.list(c, repository.FeedbackFilter{Status: &status})
}

// List serves GET /feedback with optional from/to bounds on created_at.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	from, to, err := timeRange(c)
	if err != nil {
		return fail(c, err)
	}
	return h.list(c, repository.FeedbackFilter{CreatedFrom: from, CreatedTo: to})
}

func (h *FeedbackHandler) Resubmissions(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	list, err := h.feedbackService.Resubmissions(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

func (h *FeedbackHandler) Chain(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	chain, err := h.feedbackService.ResubmissionChain(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(chain)
}

func (h *FeedbackHandler) Approve(c *fiber.Ctx) error {
	return h.review(c, h.feedbackService.Approve)
}

func (h *FeedbackHandler) Reject(c *fiber.Ctx) error {
	return h.review(c, h.feedbackService.Reject)
}

func (h *FeedbackHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateFeedbackStatusRequest
	if err := parseBody(c, &req, false); err != nil {
		return fail(c, err)
	}

	f, err := h.feedbackService.Transition(c.UserContext(), id, req.Status, middleware.ActorOr(c, req.StaffID), req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(f)
}

func (h *FeedbackHandler) MarkItemFixed(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	itemID, err := uuidParam(c, "itemId")
	if err != nil {
		return fail(c, err)
	}

	f, err := h.feedbackService.MarkItemFixed(c.UserContext(), id, itemID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(f)
}

func (h *FeedbackHandler) Delete(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.feedbackService.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FeedbackHandler) list(c *fiber.Ctx, filter repository.FeedbackFilter) error {
	list, err := h.feedbackService.List(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

type reviewFunc func(ctx context.Context, id uuid.UUID, staffID *uuid.UUID, notes string) (*models.Feedback, error)

// review serves approve and reject, which share a body and differ only in
// the target status.
func (h *FeedbackHandler) review(c *fiber.Ctx, apply reviewFunc) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.ReviewFeedbackRequest
	if err := parseBody(c, &req, true); err != nil {
		return fail(c, err)
	}

	f, err := apply(c.UserContext(), id, middleware.ActorOr(c, req.StaffID), req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(f)
}
