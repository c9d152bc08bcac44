package lifecycle

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/audit"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	reportCreatedNote  = "Report created"
	reportAssignedNote = "Report assigned to admin"
	maxTitleLength     = 500
)

type NewReport struct {
	ReporterUserID  uuid.UUID
	ReportedUserID  *uuid.UUID
	ReportedEntity  models.EntityRef
	ReportType      models.ReportType
	PriorityLevel   models.PriorityLevel
	Title           string
	Description     string
	AISeverityScore *decimal.Decimal
	Evidences       []NewEvidence
}

type NewEvidence struct {
	EvidenceType models.EvidenceType
	FileURL      string
	FileSize     int64
	MimeType     string
	Description  string
	Metadata     json.RawMessage
}

type ReportMachine struct {
	policy Policy[models.ReportStatus]
	clock  Clock
}

func NewReportMachine(policy Policy[models.ReportStatus], clock Clock) *ReportMachine {
	if policy == nil {
		policy = Unrestricted[models.ReportStatus]{}
	}
	return &ReportMachine{policy: policy, clock: clock}
}

// Open builds a PENDING report carrying its CREATED record.
func (m *ReportMachine) Open(in NewReport) (*models.Report, error) {
	if in.ReporterUserID == uuid.Nil {
		return nil, apperr.Validation("reporter_user_id is required")
	}
	if !in.ReportedEntity.Type.Valid() {
		return nil, apperr.Validation("invalid reported_entity_type %q", in.ReportedEntity.Type)
	}
	if !in.ReportType.Valid() {
		return nil, apperr.Validation("invalid report_type %q", in.ReportType)
	}
	if !in.PriorityLevel.Valid() {
		return nil, apperr.Validation("invalid priority_level %q", in.PriorityLevel)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, apperr.Validation("title must be at most %d characters", maxTitleLength)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Validation("description is required")
	}
	severity, err := boundedScore("ai_severity_score", in.AISeverityScore)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	r := &models.Report{
		ID:              uuid.New(),
		ReporterUserID:  in.ReporterUserID,
		ReportedUserID:  in.ReportedUserID,
		ReportedEntity:  in.ReportedEntity,
		ReportType:      in.ReportType,
		PriorityLevel:   in.PriorityLevel,
		Status:          models.ReportPending,
		Title:           title,
		Description:     in.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
		AISeverityScore: severity,
		Version:         1,
		Evidences:       make([]models.Evidence, 0, len(in.Evidences)),
	}
	for i, ev := range in.Evidences {
		switch {
		case !ev.EvidenceType.Valid():
			return nil, apperr.Validation("evidences[%d]: invalid evidence_type %q", i, ev.EvidenceType)
		case strings.TrimSpace(ev.FileURL) == "":
			return nil, apperr.Validation("evidences[%d]: file_url is required", i)
		case strings.TrimSpace(ev.MimeType) == "":
			return nil, apperr.Validation("evidences[%d]: mime_type is required", i)
		case ev.FileSize < 0:
			return nil, apperr.Validation("evidences[%d]: file_size must not be negative", i)
		case len(ev.Metadata) > 0 && !json.Valid(ev.Metadata):
			return nil, apperr.Validation("evidences[%d]: metadata must be valid JSON", i)
		}
		r.Evidences = append(r.Evidences, models.Evidence{
			ID:           uuid.New(),
			ReportID:     r.ID,
			EvidenceType: ev.EvidenceType,
			FileURL:      ev.FileURL,
			FileSize:     ev.FileSize,
			MimeType:     ev.MimeType,
			Description:  ev.Description,
			Metadata:     datatypes.JSON(ev.Metadata),
			UploadedAt:   now,
			Position:     i + 1,
		})
	}

	r.Audits = audit.Append(r.Audits, models.ReportAudit{
		ReportID:    r.ID,
		Action:      models.ReportActionCreated,
		NewStatus:   models.ReportPending,
		Notes:       reportCreatedNote,
		IsAutomated: true,
	}, now)
	return r, nil
}

// Assign hands r to adminID. Status is untouched; the entry records it on
// both sides so the trail still shows who picked the report up.
func (m *ReportMachine) Assign(r *models.Report, adminID uuid.UUID, notes string) error {
	if adminID == uuid.Nil {
		return apperr.Validation("admin_id is required")
	}
	if strings.TrimSpace(notes) == "" {
		notes = reportAssignedNote
	}
	now := m.clock.Now()
	current := r.Status
	r.AssignedAdminID = &adminID
	r.UpdatedAt = now
	r.Audits = audit.Append(r.Audits, models.ReportAudit{
		ReportID:       r.ID,
		ActorID:        &adminID,
		Action:         models.ReportActionAssigned,
		PreviousStatus: &current,
		NewStatus:      current,
		Notes:          notes,
	}, now)
	return nil
}

// Transition moves r to status and records a STATUS_CHANGED entry.
func (m *ReportMachine) Transition(r *models.Report, to models.ReportStatus, adminID uuid.UUID, notes string) error {
	return m.move(r, to, adminID, models.ReportActionStatusChanged, notes)
}

// Resolve moves r to RESOLVED and stores the resolution notes.
func (m *ReportMachine) Resolve(r *models.Report, adminID uuid.UUID, resolutionNotes string) error {
	if strings.TrimSpace(resolutionNotes) == "" {
		return apperr.Validation("resolution_notes is required")
	}
	if err := m.move(r, models.ReportResolved, adminID, models.ReportActionResolved, resolutionNotes); err != nil {
		return err
	}
	r.ResolutionNotes = resolutionNotes
	return nil
}

// Reject moves r to REJECTED with the reason as the entry's notes.
func (m *ReportMachine) Reject(r *models.Report, adminID uuid.UUID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return apperr.Validation("rejection_reason is required")
	}
	return m.Transition(r, models.ReportRejected, adminID, reason)
}

// VerifyEvidence marks one piece of evidence verified. It leaves the report
// status and trail alone.
func (m *ReportMachine) VerifyEvidence(r *models.Report, evidenceID uuid.UUID, notes string) error {
	ev := r.Evidence(evidenceID)
	if ev == nil {
		return apperr.NotFound("evidence %s not found on report %s", evidenceID, r.ID)
	}
	ev.IsVerified = true
	ev.VerificationNotes = notes
	r.UpdatedAt = m.clock.Now()
	return nil
}

func (m *ReportMachine) move(r *models.Report, to models.ReportStatus, adminID uuid.UUID, action models.ReportAction, notes string) error {
	if adminID == uuid.Nil {
		return apperr.Validation("admin_id is required")
	}
	if to == "" {
		return apperr.Validation("status is required")
	}
	if !to.Valid() {
		return apperr.Validation("invalid report status %q", to)
	}
	from := r.Status
	if !m.policy.Allow(from, to) {
		return apperr.Conflict("report %s cannot move from %s to %s", r.ID, from, to)
	}

	now := m.clock.Now()
	r.Status = to
	r.UpdatedAt = now
	if to == models.ReportResolved && r.ResolvedAt == nil {
		stamped := now
		r.ResolvedAt = &stamped
	}
	r.Audits = audit.Append(r.Audits, models.ReportAudit{
		ReportID:       r.ID,
		ActorID:        &adminID,
		Action:         action,
		PreviousStatus: &from,
		NewStatus:      to,
		Notes:          notes,
	}, now)
	return nil
}
