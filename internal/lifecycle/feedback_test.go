package lifecycle_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/audit"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/lifecycle"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// tickingClock advances one second per call.
func tickingClock(start time.Time) lifecycle.Clock {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newFeedbackInput(items int) lifecycle.NewFeedback {
	in := lifecycle.NewFeedback{
		ListingID:    uuid.New(),
		SellerUserID: uuid.New(),
		CheckType:    models.CheckAIAutomated,
	}
	for i := 0; i < items; i++ {
		in.Items = append(in.Items, lifecycle.NewFeedbackItem{
			Category:        models.CategoryImageQuality,
			Severity:        models.SeverityMedium,
			TargetAttribute: "photos",
			ErrorMessage:    "cover photo is blurry",
			DetectedBy:      models.DetectedByAI,
		})
	}
	return in
}

var _ = Describe("FeedbackMachine", func() {
	var (
		machine *lifecycle.FeedbackMachine
		start   time.Time
	)

	BeforeEach(func() {
		start = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		machine = lifecycle.NewFeedbackMachine(nil, tickingClock(start))
	})

	Describe("Open", func() {
		It("starts PENDING with a single automated CREATED record", func() {
			f, err := machine.Open(newFeedbackInput(2))
			Expect(err).NotTo(HaveOccurred())

			Expect(f.Status).To(Equal(models.FeedbackPending))
			Expect(f.Version).To(Equal(1))
			Expect(f.Items).To(HaveLen(2))
			for _, it := range f.Items {
				Expect(it.FeedbackID).To(Equal(f.ID))
				Expect(it.IsFixed).To(BeFalse())
			}

			Expect(f.Audits).To(HaveLen(1))
			created := f.Audits[0]
			Expect(created.Action).To(Equal(models.FeedbackActionCreated))
			Expect(created.PreviousStatus).To(BeNil())
			Expect(created.NewStatus).To(Equal(models.FeedbackPending))
			Expect(created.IsAutomated).To(BeTrue())
			Expect(created.ActorID).To(BeNil())
			Expect(created.Notes).To(Equal("Feedback created"))
			Expect(created.Sequence).To(Equal(1))
		})

		It("derives the resubmission flag from the previous link", func() {
			in := newFeedbackInput(1)
			f, err := machine.Open(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.IsResubmission).To(BeFalse())

			prev := f.ID
			in.PreviousFeedbackID = &prev
			again, err := machine.Open(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.IsResubmission).To(BeTrue())
			Expect(*again.PreviousFeedbackID).To(Equal(prev))
		})

		It("rounds the confidence score to four places", func() {
			in := newFeedbackInput(1)
			score := decimal.RequireFromString("0.123456")
			in.AIConfidenceScore = &score

			f, err := machine.Open(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.AIConfidenceScore.Valid).To(BeTrue())
			Expect(f.AIConfidenceScore.Decimal.String()).To(Equal("0.1235"))
		})

		DescribeTable("rejects malformed input",
			func(mutate func(*lifecycle.NewFeedback)) {
				in := newFeedbackInput(1)
				mutate(&in)
				f, err := machine.Open(in)
				Expect(f).To(BeNil())
				Expect(apperr.IsCode(err, apperr.CodeValidation)).To(BeTrue())
			},
			Entry("missing listing", func(in *lifecycle.NewFeedback) { in.ListingID = uuid.Nil }),
			Entry("missing seller", func(in *lifecycle.NewFeedback) { in.SellerUserID = uuid.Nil }),
			Entry("unknown check type", func(in *lifecycle.NewFeedback) { in.CheckType = "MANUAL" }),
			Entry("no items", func(in *lifecycle.NewFeedback) { in.Items = nil }),
			Entry("unknown category", func(in *lifecycle.NewFeedback) { in.Items[0].Category = "COLOR" }),
			Entry("blank error message", func(in *lifecycle.NewFeedback) { in.Items[0].ErrorMessage = " " }),
			Entry("score above one", func(in *lifecycle.NewFeedback) {
				s := decimal.RequireFromString("1.2")
				in.AIConfidenceScore = &s
			}),
			Entry("negative score", func(in *lifecycle.NewFeedback) {
				s := decimal.RequireFromString("-0.1")
				in.AIConfidenceScore = &s
			}),
		)
	})

	Describe("Transition", func() {
		It("appends one record per call and keeps earlier records intact", func() {
			f, err := machine.Open(newFeedbackInput(1))
			Expect(err).NotTo(HaveOccurred())
			staff := uuid.New()

			steps := []models.FeedbackStatus{
				models.FeedbackNeedsRevision, models.FeedbackResubmitted, models.FeedbackApproved,
			}
			for _, to := range steps {
				before := append([]models.FeedbackAudit(nil), f.Audits...)
				Expect(machine.Transition(f, to, &staff, "checked")).To(Succeed())
				Expect(f.Audits[:len(before)]).To(Equal(before))
			}

			Expect(f.Audits).To(HaveLen(len(steps) + 1))
			Expect(audit.Ordered(f.Audits)).To(BeTrue())
			last := f.Audits[len(f.Audits)-1]
			Expect(last.Action).To(Equal(models.FeedbackActionStatusChanged))
			Expect(*last.PreviousStatus).To(Equal(models.FeedbackResubmitted))
			Expect(last.NewStatus).To(Equal(models.FeedbackApproved))
			Expect(*last.ActorID).To(Equal(staff))
			Expect(last.IsAutomated).To(BeFalse())
			Expect(*f.ReviewedByStaffID).To(Equal(staff))
		})

		It("keeps the previous reviewer when no staff id is given", func() {
			f, _ := machine.Open(newFeedbackInput(1))
			staff := uuid.New()
			Expect(machine.Transition(f, models.FeedbackNeedsRevision, &staff, "")).To(Succeed())
			Expect(machine.Transition(f, models.FeedbackResubmitted, nil, "seller fixed it")).To(Succeed())

			Expect(*f.ReviewedByStaffID).To(Equal(staff))
			Expect(f.Audits[2].ActorID).To(BeNil())
		})

		It("allows any jump under the default policy", func() {
			f, _ := machine.Open(newFeedbackInput(1))
			Expect(machine.Transition(f, models.FeedbackResolved, nil, "")).To(Succeed())
			Expect(machine.Transition(f, models.FeedbackPending, nil, "")).To(Succeed())
		})

		It("rejects missing and unknown statuses without touching the aggregate", func() {
			f, _ := machine.Open(newFeedbackInput(1))
			err := machine.Transition(f, "", nil, "")
			Expect(apperr.IsCode(err, apperr.CodeValidation)).To(BeTrue())
			err = machine.Transition(f, "ARCHIVED", nil, "")
			Expect(apperr.IsCode(err, apperr.CodeValidation)).To(BeTrue())
			Expect(f.Status).To(Equal(models.FeedbackPending))
			Expect(f.Audits).To(HaveLen(1))
		})

		Context("with the strict graph", func() {
			BeforeEach(func() {
				machine = lifecycle.NewFeedbackMachine(lifecycle.FeedbackGraph, tickingClock(start))
			})

			It("refuses edges outside the graph with a conflict", func() {
				f, _ := machine.Open(newFeedbackInput(1))
				Expect(machine.Transition(f, models.FeedbackApproved, nil, "")).To(Succeed())

				err := machine.Transition(f, models.FeedbackPending, nil, "")
				Expect(apperr.IsCode(err, apperr.CodeConflict)).To(BeTrue())
				Expect(f.Status).To(Equal(models.FeedbackApproved))
				Expect(f.Audits).To(HaveLen(2))
			})
		})
	})

	Describe("MarkItemFixed", func() {
		It("auto-resolves once the last item is fixed", func() {
			f, _ := machine.Open(newFeedbackInput(2))

			resolved, err := machine.MarkItemFixed(f, f.Items[0].ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved).To(BeFalse())
			Expect(f.Status).To(Equal(models.FeedbackPending))
			Expect(f.Audits).To(HaveLen(1))

			resolved, err = machine.MarkItemFixed(f, f.Items[1].ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved).To(BeTrue())
			Expect(f.Status).To(Equal(models.FeedbackResolved))
			Expect(f.Audits).To(HaveLen(2))

			auto := f.Audits[1]
			Expect(auto.Action).To(Equal(models.FeedbackActionAutoResolved))
			Expect(*auto.PreviousStatus).To(Equal(models.FeedbackPending))
			Expect(auto.NewStatus).To(Equal(models.FeedbackResolved))
			Expect(auto.IsAutomated).To(BeTrue())
			Expect(auto.ActorID).To(BeNil())
			Expect(auto.Notes).To(Equal("All items fixed - auto resolved"))
		})

		It("does not resolve feedback that already left PENDING", func() {
			f, _ := machine.Open(newFeedbackInput(2))
			Expect(machine.Transition(f, models.FeedbackApproved, nil, "")).To(Succeed())

			for _, it := range f.Items {
				resolved, err := machine.MarkItemFixed(f, it.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(resolved).To(BeFalse())
			}
			Expect(f.Status).To(Equal(models.FeedbackApproved))
			Expect(f.Audits).To(HaveLen(2))
		})

		It("reports unknown items as not found", func() {
			f, _ := machine.Open(newFeedbackInput(1))
			_, err := machine.MarkItemFixed(f, uuid.New())
			Expect(apperr.IsCode(err, apperr.CodeNotFound)).To(BeTrue())
			Expect(f.Items[0].IsFixed).To(BeFalse())
		})
	})
})
