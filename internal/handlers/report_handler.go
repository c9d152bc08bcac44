package handlers

import (
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/repository"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reportService     *services.ReportService
	statisticsService *services.StatisticsService
}

func NewReportHandler(reportService *services.ReportService, statisticsService *services.StatisticsService) *ReportHandler {
	return &ReportHandler{reportService: reportService, statisticsService: statisticsService}
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := parseBody(c, &req, false); err != nil {
		return fail(c, err)
	}

	r, err := h.reportService.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	r, err := h.reportService.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(r)
}

func (h *ReportHandler) Audits(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	trail, err := h.reportService.AuditTrail(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(trail)
}

func (h *ReportHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.statisticsService.Reports(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

func (h *ReportHandler) Unassigned(c *fiber.Ctx) error {
	list, err := h.reportService.Unassigned(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

func (h *ReportHandler) NeedsAttention(c *fiber.Ctx) error {
	list, err := h.reportService.NeedsAttention(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

func (h *ReportHandler) Overdue(c *fiber.Ctx) error {
	list, err := h.reportService.Overdue(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

func (h *ReportHandler) ByReporter(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	return h.list(c, repository.ReportFilter{ReporterUserID: &id})
}

func (h *ReportHandler) ByReportedUser(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	return h.list(c, repository.ReportFilter{ReportedUserID: &id})
}

func (h *ReportHandler) ByAssignee(c *fiber.Ctx) error {
	id, err := uuidParam(c, "adminId")
	if err != nil {
		return fail(c, err)
	}
	return h.list(c, repository.ReportFilter{AssignedAdminID: &id})
}

func (h *ReportHandler) ByStatus(c *fiber.Ctx) error {
	status := models.ReportStatus(c.Params("status"))
	if !status.Valid() {
		return fail(c, apperr.Validation("invalid report status %q", status))
	}
	return h.list(c, repository.ReportFilter{Status: &status})
}

func (h *ReportHandler) ByEntity(c *fiber.Ctx) error {
	entityType := models.EntityType(c.Params("type"))
	if !entityType.Valid() {
		return fail(c, apperr.Validation("invalid entity type %q", entityType))
	}
	entityID, err := int64Param(c, "id")
	if err != nil {
		return fail(c, err)
	}
	return h.list(c, repository.ReportFilter{Entity: &models.EntityRef{Type: entityType, ID: entityID}})
}

// List serves GET /reports with optional from/to bounds on created_at.
func (h *ReportHandler) List(c *fiber.Ctx) error {
	from, to, err := timeRange(c)
	if err != nil {
		return fail(c, err)
	}
	return h.list(c, repository.ReportFilter{CreatedFrom: from, CreatedTo: to})
}

func (h *ReportHandler) Assign(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.AssignReportRequest
	if err := parseBody(c, &req, true); err != nil {
		return fail(c, err)
	}

	r, err := h.reportService.Assign(c.UserContext(), id, actorOrNil(middleware.ActorOr(c, req.AdminID)), req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(r)
}

func (h *ReportHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateReportStatusRequest
	if err := parseBody(c, &req, false); err != nil {
		return fail(c, err)
	}

	r, err := h.reportService.Transition(c.UserContext(), id, req.Status, actorOrNil(middleware.ActorOr(c, req.AdminID)), req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(r)
}

func (h *ReportHandler) Resolve(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.ResolveReportRequest
	if err := parseBody(c, &req, false); err != nil {
		return fail(c, err)
	}

	r, err := h.reportService.Resolve(c.UserContext(), id, actorOrNil(middleware.ActorOr(c, req.AdminID)), req.ResolutionNotes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(r)
}

func (h *ReportHandler) Reject(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.RejectReportRequest
	if err := parseBody(c, &req, false); err != nil {
		return fail(c, err)
	}

	r, err := h.reportService.Reject(c.UserContext(), id, actorOrNil(middleware.ActorOr(c, req.AdminID)), req.RejectionReason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(r)
}

func (h *ReportHandler) VerifyEvidence(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	evidenceID, err := uuidParam(c, "evidenceId")
	if err != nil {
		return fail(c, err)
	}
	var req dto.VerifyEvidenceRequest
	if err := parseBody(c, &req, true); err != nil {
		return fail(c, err)
	}

	r, err := h.reportService.VerifyEvidence(c.UserContext(), id, evidenceID, req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(r)
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.reportService.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ReportHandler) list(c *fiber.Ctx, filter repository.ReportFilter) error {
	list, err := h.reportService.List(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}
