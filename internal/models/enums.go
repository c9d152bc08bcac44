package models

// FeedbackStatus is the lifecycle state of a listing-quality feedback.
type FeedbackStatus string

const (
	FeedbackPending           FeedbackStatus = "PENDING"
	FeedbackApproved          FeedbackStatus = "APPROVED"
	FeedbackRejected          FeedbackStatus = "REJECTED"
	FeedbackNeedsRevision     FeedbackStatus = "NEEDS_REVISION"
	FeedbackApprovedWithNotes FeedbackStatus = "APPROVED_WITH_NOTES"
	FeedbackResubmitted       FeedbackStatus = "RESUBMITTED"
	FeedbackResolved          FeedbackStatus = "RESOLVED"
)

// FeedbackStatuses lists every feedback status in declaration order.
var FeedbackStatuses = []FeedbackStatus{
	FeedbackPending, FeedbackApproved, FeedbackRejected, FeedbackNeedsRevision,
	FeedbackApprovedWithNotes, FeedbackResubmitted, FeedbackResolved,
}

func (s FeedbackStatus) Valid() bool { return contains(FeedbackStatuses, s) }

// ReportStatus is the lifecycle state of an abuse report.
type ReportStatus string

const (
	ReportPending     ReportStatus = "PENDING"
	ReportInReview    ReportStatus = "IN_REVIEW"
	ReportUnderReview ReportStatus = "UNDER_REVIEW"
	ReportEscalated   ReportStatus = "ESCALATED"
	ReportResolved    ReportStatus = "RESOLVED"
	ReportRejected    ReportStatus = "REJECTED"
)

var ReportStatuses = []ReportStatus{
	ReportPending, ReportInReview, ReportUnderReview, ReportEscalated, ReportResolved, ReportRejected,
}

func (s ReportStatus) Valid() bool { return contains(ReportStatuses, s) }

type FeedbackAction string

const (
	FeedbackActionAssignReviewer    FeedbackAction = "ASSIGN_REVIEWER"
	FeedbackActionReviewContent     FeedbackAction = "REVIEW_CONTENT"
	FeedbackActionRequestRevision   FeedbackAction = "REQUEST_REVISION"
	FeedbackActionApproveForPublish FeedbackAction = "APPROVE_FOR_PUBLISH"
	FeedbackActionRejectSubmission  FeedbackAction = "REJECT_SUBMISSION"
	FeedbackActionAIGenerated       FeedbackAction = "AI_GENERATED"
	FeedbackActionSellerResubmitted FeedbackAction = "SELLER_RESUBMITTED"
	FeedbackActionCreated           FeedbackAction = "CREATED"
	FeedbackActionStatusChanged     FeedbackAction = "STATUS_CHANGED"
	FeedbackActionAutoResolved      FeedbackAction = "AUTO_RESOLVED"
)

var FeedbackActions = []FeedbackAction{
	FeedbackActionAssignReviewer, FeedbackActionReviewContent, FeedbackActionRequestRevision,
	FeedbackActionApproveForPublish, FeedbackActionRejectSubmission, FeedbackActionAIGenerated,
	FeedbackActionSellerResubmitted, FeedbackActionCreated, FeedbackActionStatusChanged,
	FeedbackActionAutoResolved,
}

func (a FeedbackAction) Valid() bool { return contains(FeedbackActions, a) }

type ReportAction string

const (
	ReportActionAssign         ReportAction = "ASSIGN"
	ReportActionReview         ReportAction = "REVIEW"
	ReportActionApprove        ReportAction = "APPROVE"
	ReportActionReject         ReportAction = "REJECT"
	ReportActionEscalate       ReportAction = "ESCALATE"
	ReportActionWarnUser       ReportAction = "WARN_USER"
	ReportActionSuspendUser    ReportAction = "SUSPEND_USER"
	ReportActionRemoveListing  ReportAction = "REMOVE_LISTING"
	ReportActionRestoreListing ReportAction = "RESTORE_LISTING"
	ReportActionRequestInfo    ReportAction = "REQUEST_INFO"
	ReportActionCloseReport    ReportAction = "CLOSE_REPORT"
	ReportActionRefund         ReportAction = "REFUND"
	ReportActionCreated        ReportAction = "CREATED"
	ReportActionAssigned       ReportAction = "ASSIGNED"
	ReportActionStatusChanged  ReportAction = "STATUS_CHANGED"
	ReportActionResolved       ReportAction = "RESOLVED"
)

var ReportActions = []ReportAction{
	ReportActionAssign, ReportActionReview, ReportActionApprove, ReportActionReject,
	ReportActionEscalate, ReportActionWarnUser, ReportActionSuspendUser, ReportActionRemoveListing,
	ReportActionRestoreListing, ReportActionRequestInfo, ReportActionCloseReport, ReportActionRefund,
	ReportActionCreated, ReportActionAssigned, ReportActionStatusChanged, ReportActionResolved,
}

func (a ReportAction) Valid() bool { return contains(ReportActions, a) }

type CheckType string

const (
	CheckAIAutomated CheckType = "AI_AUTOMATED"
	CheckStaffManual CheckType = "STAFF_MANUAL"
	CheckHybrid      CheckType = "HYBRID"
)

func (c CheckType) Valid() bool {
	return contains([]CheckType{CheckAIAutomated, CheckStaffManual, CheckHybrid}, c)
}

type Category string

const (
	CategoryImageQuality        Category = "IMAGE_QUALITY"
	CategoryMissingData         Category = "MISSING_DATA"
	CategoryInvalidPrice        Category = "INVALID_PRICE"
	CategoryTour360Incomplete   Category = "TOUR_360_INCOMPLETE"
	CategoryDuplicateListing    Category = "DUPLICATE_LISTING"
	CategoryPolicyViolation     Category = "POLICY_VIOLATION"
	CategoryInformationMismatch Category = "INFORMATION_MISMATCH"
	CategoryFormattingError     Category = "FORMATTING_ERROR"
)

func (c Category) Valid() bool {
	return contains([]Category{
		CategoryImageQuality, CategoryMissingData, CategoryInvalidPrice, CategoryTour360Incomplete,
		CategoryDuplicateListing, CategoryPolicyViolation, CategoryInformationMismatch, CategoryFormattingError,
	}, c)
}

// Severity is shared by feedback items and report priority levels.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

func (s Severity) Valid() bool {
	return contains([]Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}, s)
}

type PriorityLevel = Severity

type DetectedBy string

const (
	DetectedByAI     DetectedBy = "AI"
	DetectedByStaff  DetectedBy = "STAFF"
	DetectedBySystem DetectedBy = "SYSTEM"
)

func (d DetectedBy) Valid() bool {
	return contains([]DetectedBy{DetectedByAI, DetectedByStaff, DetectedBySystem}, d)
}

type ReportType string

const (
	ReportTypeFraud                ReportType = "FRAUD"
	ReportTypeFakeListing          ReportType = "FAKE_LISTING"
	ReportTypeIllegalFee           ReportType = "ILLEGAL_FEE"
	ReportTypeMisinformation       ReportType = "MISINFORMATION"
	ReportTypeSpam                 ReportType = "SPAM"
	ReportTypeInappropriateContent ReportType = "INAPPROPRIATE_CONTENT"
	ReportTypeDuplicate            ReportType = "DUPLICATE"
	ReportTypeOther                ReportType = "OTHER"
)

func (r ReportType) Valid() bool {
	return contains([]ReportType{
		ReportTypeFraud, ReportTypeFakeListing, ReportTypeIllegalFee, ReportTypeMisinformation,
		ReportTypeSpam, ReportTypeInappropriateContent, ReportTypeDuplicate, ReportTypeOther,
	}, r)
}

type EntityType string

const (
	EntityListing EntityType = "LISTING"
	EntityUser    EntityType = "USER"
	EntityReview  EntityType = "REVIEW"
	EntityMessage EntityType = "MESSAGE"
	EntityComment EntityType = "COMMENT"
)

func (e EntityType) Valid() bool {
	return contains([]EntityType{EntityListing, EntityUser, EntityReview, EntityMessage, EntityComment}, e)
}

type EvidenceType string

const (
	EvidenceScreenshot EvidenceType = "SCREENSHOT"
	EvidenceImage      EvidenceType = "IMAGE"
	EvidenceVideo      EvidenceType = "VIDEO"
	EvidenceDocument   EvidenceType = "DOCUMENT"
	EvidenceChatLog    EvidenceType = "CHAT_LOG"
	EvidenceLink       EvidenceType = "LINK"
	EvidenceOther      EvidenceType = "OTHER"
)

func (e EvidenceType) Valid() bool {
	return contains([]EvidenceType{
		EvidenceScreenshot, EvidenceImage, EvidenceVideo, EvidenceDocument, EvidenceChatLog, EvidenceLink, EvidenceOther,
	}, e)
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
