package dto

import (
	"encoding/json"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateReportRequest struct {
	ReporterUserID     uuid.UUID            `json:"reporter_user_id" validate:"required"`
	ReportedUserID     *uuid.UUID           `json:"reported_user_id"`
	ReportedEntityType models.EntityType    `json:"reported_entity_type" validate:"required,enum"`
	ReportedEntityID   *int64               `json:"reported_entity_id" validate:"required"`
	ReportType         models.ReportType    `json:"report_type" validate:"required,enum"`
	PriorityLevel      models.PriorityLevel `json:"priority_level" validate:"required,enum"`
	Title              string               `json:"title" validate:"required,max=500"`
	Description        string               `json:"description" validate:"required"`
	AISeverityScore    *decimal.Decimal     `json:"ai_severity_score"`
	Evidences          []EvidenceRequest    `json:"evidences" validate:"omitempty,dive"`
}

type EvidenceRequest struct {
	EvidenceType models.EvidenceType `json:"evidence_type" validate:"required,enum"`
	FileURL      string              `json:"file_url" validate:"required,max=1000"`
	FileSize     *int64              `json:"file_size" validate:"required,gte=0"`
	MimeType     string              `json:"mime_type" validate:"required,max=100"`
	Description  string              `json:"description"`
	Metadata     json.RawMessage     `json:"metadata"`
}

type AssignReportRequest struct {
	AdminID *uuid.UUID `json:"admin_id"`
	Notes   string     `json:"notes"`
}

type UpdateReportStatusRequest struct {
	Status  models.ReportStatus `json:"status" validate:"required,enum"`
	AdminID *uuid.UUID          `json:"admin_id"`
	Notes   string              `json:"notes"`
}

type ResolveReportRequest struct {
	AdminID         *uuid.UUID `json:"admin_id"`
	ResolutionNotes string     `json:"resolution_notes" validate:"required"`
}

type RejectReportRequest struct {
	AdminID         *uuid.UUID `json:"admin_id"`
	RejectionReason string     `json:"rejection_reason" validate:"required"`
}

type VerifyEvidenceRequest struct {
	Notes string `json:"verification_notes"`
}

type ReportStatistics struct {
	Total       int64                         `json:"total"`
	Pending     int64                         `json:"pending"`
	UnderReview int64                         `json:"under_review"`
	Resolved    int64                         `json:"resolved"`
	Rejected    int64                         `json:"rejected"`
	ByStatus    map[models.ReportStatus]int64 `json:"by_status"`
}
