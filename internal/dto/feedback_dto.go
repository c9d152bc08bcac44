package dto

import (
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateFeedbackRequest struct {
	ListingID          uuid.UUID             `json:"listing_id" validate:"required"`
	SellerUserID       uuid.UUID             `json:"seller_user_id" validate:"required"`
	CheckType          models.CheckType      `json:"check_type" validate:"required,enum"`
	AIConfidenceScore  *decimal.Decimal      `json:"ai_confidence_score"`
	PreviousFeedbackID *uuid.UUID            `json:"previous_feedback_id"`
	Items              []FeedbackItemRequest `json:"feedback_items" validate:"required,min=1,dive"`
}

type FeedbackItemRequest struct {
	Category        models.Category   `json:"category" validate:"required,enum"`
	Severity        models.Severity   `json:"severity" validate:"required,enum"`
	TargetAttribute string            `json:"target_attribute" validate:"required,max=255"`
	ErrorMessage    string            `json:"error_message" validate:"required"`
	Suggestion      string            `json:"suggestion"`
	DetectedBy      models.DetectedBy `json:"detected_by" validate:"required,enum"`
}

type UpdateFeedbackStatusRequest struct {
	Status  models.FeedbackStatus `json:"status" validate:"required,enum"`
	StaffID *uuid.UUID            `json:"staff_id"`
	Notes   string                `json:"notes"`
}

// ReviewFeedbackRequest is the body of approve and reject.
type ReviewFeedbackRequest struct {
	StaffID *uuid.UUID `json:"staff_id"`
	Notes   string     `json:"notes"`
}

type FeedbackStatistics struct {
	Total    int64                           `json:"total"`
	Pending  int64                           `json:"pending"`
	Approved int64                           `json:"approved"`
	Rejected int64                           `json:"rejected"`
	Resolved int64                           `json:"resolved"`
	ByStatus map[models.FeedbackStatus]int64 `json:"by_status"`
}
