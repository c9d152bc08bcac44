package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// EntityRef points at whatever a report is about. The target lives outside
// this service, so it is a tagged pair rather than a foreign key.
type EntityRef struct {
	Type EntityType `gorm:"size:20;not null;index:idx_reports_entity,priority:1" json:"type"`
	ID   int64      `gorm:"not null;index:idx_reports_entity,priority:2" json:"id"`
}

// Report is an abuse complaint. It owns its evidence and audit trail.
type Report struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterUserID  uuid.UUID           `gorm:"type:uuid;not null;index" json:"reporter_user_id"`
	ReportedUserID  *uuid.UUID          `gorm:"type:uuid;index" json:"reported_user_id"`
	ReportedEntity  EntityRef           `gorm:"embedded;embeddedPrefix:reported_entity_" json:"reported_entity"`
	ReportType      ReportType          `gorm:"size:30;not null" json:"report_type"`
	PriorityLevel   PriorityLevel       `gorm:"size:10;not null;index" json:"priority_level"`
	Status          ReportStatus        `gorm:"size:20;not null;index" json:"status"`
	Title           string              `gorm:"size:500;not null" json:"title"`
	Description     string              `gorm:"type:text" json:"description"`
	AssignedAdminID *uuid.UUID          `gorm:"type:uuid;index" json:"assigned_admin_id"`
	ResolutionNotes string              `gorm:"type:text" json:"resolution_notes,omitempty"`
	CreatedAt       time.Time           `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"not null" json:"updated_at"`
	ResolvedAt      *time.Time          `json:"resolved_at"`
	AISeverityScore decimal.NullDecimal `gorm:"type:numeric(5,4)" json:"ai_severity_score"`
	AIVerified      bool                `gorm:"not null;default:false" json:"ai_verified"`
	Version         int                 `gorm:"not null;default:1" json:"version"`

	Evidences []Evidence    `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"evidences"`
	Audits    []ReportAudit `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"audit_trail,omitempty"`
}

func (Report) TableName() string { return "reports" }

// Evidence returns the evidence with id, or nil when the report does not own it.
func (r *Report) Evidence(id uuid.UUID) *Evidence {
	for i := range r.Evidences {
		if r.Evidences[i].ID == id {
			return &r.Evidences[i]
		}
	}
	return nil
}

type Evidence struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"report_id"`
	EvidenceType      EvidenceType   `gorm:"size:20;not null" json:"evidence_type"`
	FileURL           string         `gorm:"size:1000" json:"file_url"`
	FileSize          int64          `json:"file_size"`
	MimeType          string         `gorm:"size:100" json:"mime_type"`
	Description       string         `gorm:"type:text" json:"description"`
	Metadata          datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	UploadedAt        time.Time      `json:"uploaded_at"`
	IsVerified        bool           `gorm:"not null;default:false" json:"is_verified"`
	VerificationNotes string         `gorm:"type:text" json:"verification_notes,omitempty"`
	Position          int            `gorm:"not null;default:0" json:"-"`
}

func (Evidence) TableName() string { return "report_evidence" }

type ReportAudit struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID       uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_report_audit_seq,priority:1" json:"report_id"`
	ActorID        *uuid.UUID    `gorm:"type:uuid" json:"actor_id"`
	Action         ReportAction  `gorm:"size:30;not null" json:"action"`
	PreviousStatus *ReportStatus `gorm:"size:20" json:"previous_status"`
	NewStatus      ReportStatus  `gorm:"size:20;not null" json:"new_status"`
	Notes          string        `gorm:"type:text" json:"notes"`
	IsAutomated    bool          `gorm:"not null;default:false" json:"is_automated"`
	Sequence       int           `gorm:"not null;uniqueIndex:idx_report_audit_seq,priority:2" json:"sequence"`
	CreatedAt      time.Time     `gorm:"not null" json:"created_at"`
}

func (ReportAudit) TableName() string { return "report_audits" }

func (a *ReportAudit) Position() (int, time.Time) { return a.Sequence, a.CreatedAt }

func (a *ReportAudit) Stamp(seq int, at time.Time) {
	a.Sequence = seq
	a.CreatedAt = at
}
