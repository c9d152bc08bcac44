package lifecycle

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/audit"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	feedbackCreatedNote = "Feedback created"
	autoResolvedNote    = "All items fixed - auto resolved"
)

type NewFeedback struct {
	ListingID          uuid.UUID
	SellerUserID       uuid.UUID
	CheckType          models.CheckType
	AIConfidenceScore  *decimal.Decimal
	PreviousFeedbackID *uuid.UUID
	Items              []NewFeedbackItem
}

type NewFeedbackItem struct {
	Category        models.Category
	Severity        models.Severity
	TargetAttribute string
	ErrorMessage    string
	Suggestion      string
	DetectedBy      models.DetectedBy
}

type FeedbackMachine struct {
	policy Policy[models.FeedbackStatus]
	clock  Clock
}

func NewFeedbackMachine(policy Policy[models.FeedbackStatus], clock Clock) *FeedbackMachine {
	if policy == nil {
		policy = Unrestricted[models.FeedbackStatus]{}
	}
	return &FeedbackMachine{policy: policy, clock: clock}
}

// Open builds a PENDING feedback carrying its CREATED record.
func (m *FeedbackMachine) Open(in NewFeedback) (*models.Feedback, error) {
	if in.ListingID == uuid.Nil {
		return nil, apperr.Validation("listing_id is required")
	}
	if in.SellerUserID == uuid.Nil {
		return nil, apperr.Validation("seller_user_id is required")
	}
	if !in.CheckType.Valid() {
		return nil, apperr.Validation("invalid check_type %q", in.CheckType)
	}
	if len(in.Items) == 0 {
		return nil, apperr.Validation("at least one feedback item is required")
	}
	confidence, err := boundedScore("ai_confidence_score", in.AIConfidenceScore)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	f := &models.Feedback{
		ID:                 uuid.New(),
		ListingID:          in.ListingID,
		SellerUserID:       in.SellerUserID,
		CheckType:          in.CheckType,
		Status:             models.FeedbackPending,
		AIConfidenceScore:  confidence,
		CreatedAt:          now,
		IsResubmission:     in.PreviousFeedbackID != nil,
		PreviousFeedbackID: in.PreviousFeedbackID,
		Version:            1,
		Items:              make([]models.FeedbackItem, 0, len(in.Items)),
	}
	for i, it := range in.Items {
		switch {
		case !it.Category.Valid():
			return nil, apperr.Validation("items[%d]: invalid category %q", i, it.Category)
		case !it.Severity.Valid():
			return nil, apperr.Validation("items[%d]: invalid severity %q", i, it.Severity)
		case !it.DetectedBy.Valid():
			return nil, apperr.Validation("items[%d]: invalid detected_by %q", i, it.DetectedBy)
		case strings.TrimSpace(it.TargetAttribute) == "":
			return nil, apperr.Validation("items[%d]: target_attribute is required", i)
		case strings.TrimSpace(it.ErrorMessage) == "":
			return nil, apperr.Validation("items[%d]: error_message is required", i)
		}
		f.Items = append(f.Items, models.FeedbackItem{
			ID:              uuid.New(),
			FeedbackID:      f.ID,
			Category:        it.Category,
			Severity:        it.Severity,
			TargetAttribute: it.TargetAttribute,
			ErrorMessage:    it.ErrorMessage,
			Suggestion:      it.Suggestion,
			DetectedBy:      it.DetectedBy,
			Position:        i + 1,
			CreatedAt:       now,
		})
	}

	f.Audits = audit.Append(f.Audits, models.FeedbackAudit{
		FeedbackID:  f.ID,
		Action:      models.FeedbackActionCreated,
		NewStatus:   models.FeedbackPending,
		Notes:       feedbackCreatedNote,
		IsAutomated: true,
	}, now)
	return f, nil
}

// Transition moves f to status and records a STATUS_CHANGED entry. The
// reviewer is only replaced when staffID is set.
func (m *FeedbackMachine) Transition(f *models.Feedback, to models.FeedbackStatus, staffID *uuid.UUID, notes string) error {
	if to == "" {
		return apperr.Validation("status is required")
	}
	if !to.Valid() {
		return apperr.Validation("invalid feedback status %q", to)
	}
	from := f.Status
	if !m.policy.Allow(from, to) {
		return apperr.Conflict("feedback %s cannot move from %s to %s", f.ID, from, to)
	}

	f.Status = to
	if staffID != nil {
		f.ReviewedByStaffID = staffID
	}
	f.Audits = audit.Append(f.Audits, models.FeedbackAudit{
		FeedbackID:     f.ID,
		ActorID:        staffID,
		Action:         models.FeedbackActionStatusChanged,
		PreviousStatus: &from,
		NewStatus:      to,
		Notes:          notes,
	}, m.clock.Now())
	return nil
}

// MarkItemFixed flags one item as fixed. When that leaves no unfixed item on
// a PENDING feedback, the feedback resolves itself and resolved is true.
func (m *FeedbackMachine) MarkItemFixed(f *models.Feedback, itemID uuid.UUID) (resolved bool, err error) {
	item := f.Item(itemID)
	if item == nil {
		return false, apperr.NotFound("feedback item %s not found on feedback %s", itemID, f.ID)
	}
	item.IsFixed = true

	if f.Status != models.FeedbackPending || !f.AllItemsFixed() {
		return false, nil
	}
	from := f.Status
	f.Status = models.FeedbackResolved
	f.Audits = audit.Append(f.Audits, models.FeedbackAudit{
		FeedbackID:     f.ID,
		Action:         models.FeedbackActionAutoResolved,
		PreviousStatus: &from,
		NewStatus:      models.FeedbackResolved,
		Notes:          autoResolvedNote,
		IsAutomated:    true,
	}, m.clock.Now())
	return true, nil
}

var scoreCeiling = decimal.NewFromInt(1)

func boundedScore(field string, v *decimal.Decimal) (decimal.NullDecimal, error) {
	if v == nil {
		return decimal.NullDecimal{}, nil
	}
	if v.IsNegative() || v.GreaterThan(scoreCeiling) {
		return decimal.NullDecimal{}, apperr.Validation("%s must be between 0 and 1", field)
	}
	return decimal.NewNullDecimal(v.Round(4)), nil
}
