package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Feedback is a quality check on a seller listing. It owns its items and
// its audit trail; neither is persisted independently of the root.
type Feedback struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID          uuid.UUID           `gorm:"type:uuid;not null;index" json:"listing_id"`
	SellerUserID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"seller_user_id"`
	CheckType          CheckType           `gorm:"size:20;not null" json:"check_type"`
	Status             FeedbackStatus      `gorm:"size:30;not null;index" json:"status"`
	AIConfidenceScore  decimal.NullDecimal `gorm:"type:numeric(5,4)" json:"ai_confidence_score"`
	CreatedAt          time.Time           `gorm:"not null;index" json:"created_at"`
	ReviewedByStaffID  *uuid.UUID          `gorm:"type:uuid;index" json:"reviewed_by_staff_id"`
	IsResubmission     bool                `gorm:"not null;default:false" json:"is_resubmission"`
	PreviousFeedbackID *uuid.UUID          `gorm:"type:uuid;index" json:"previous_feedback_id"`
	Version            int                 `gorm:"not null;default:1" json:"version"`

	Items  []FeedbackItem  `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE" json:"items"`
	Audits []FeedbackAudit `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE" json:"audit_trail,omitempty"`
}

func (Feedback) TableName() string { return "feedback" }

// BeforeCreate keeps the resubmission flag derived from the previous link.
func (f *Feedback) BeforeCreate(*gorm.DB) error {
	f.IsResubmission = f.PreviousFeedbackID != nil
	return nil
}

// Item returns the item with id, or nil when the feedback does not own it.
func (f *Feedback) Item(id uuid.UUID) *FeedbackItem {
	for i := range f.Items {
		if f.Items[i].ID == id {
			return &f.Items[i]
		}
	}
	return nil
}

// AllItemsFixed reports whether every item is fixed. A feedback without
// items has nothing left to fix.
func (f *Feedback) AllItemsFixed() bool {
	for _, it := range f.Items {
		if !it.IsFixed {
			return false
		}
	}
	return true
}

type FeedbackItem struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FeedbackID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"feedback_id"`
	Category        Category   `gorm:"size:30;not null" json:"category"`
	Severity        Severity   `gorm:"size:10;not null" json:"severity"`
	TargetAttribute string     `gorm:"size:255" json:"target_attribute"`
	ErrorMessage    string     `gorm:"type:text" json:"error_message"`
	Suggestion      string     `gorm:"type:text" json:"suggestion"`
	DetectedBy      DetectedBy `gorm:"size:10;not null" json:"detected_by"`
	IsFixed         bool       `gorm:"not null;default:false" json:"is_fixed"`
	Position        int        `gorm:"not null;default:0" json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (FeedbackItem) TableName() string { return "feedback_items" }

// FeedbackAudit is one immutable entry of a feedback's trail. A zero ID marks
// an entry that has not been written yet.
type FeedbackAudit struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FeedbackID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_audit_seq,priority:1" json:"feedback_id"`
	ActorID        *uuid.UUID      `gorm:"type:uuid" json:"actor_id"`
	Action         FeedbackAction  `gorm:"size:30;not null" json:"action"`
	PreviousStatus *FeedbackStatus `gorm:"size:30" json:"previous_status"`
	NewStatus      FeedbackStatus  `gorm:"size:30;not null" json:"new_status"`
	Notes          string          `gorm:"type:text" json:"notes"`
	IsAutomated    bool            `gorm:"not null;default:false" json:"is_automated"`
	Sequence       int             `gorm:"not null;uniqueIndex:idx_feedback_audit_seq,priority:2" json:"sequence"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
}

func (FeedbackAudit) TableName() string { return "feedback_audits" }

func (a *FeedbackAudit) Position() (int, time.Time) { return a.Sequence, a.CreatedAt }

func (a *FeedbackAudit) Stamp(seq int, at time.Time) {
	a.Sequence = seq
	a.CreatedAt = at
}
