package services_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/audit"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/lifecycle"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/notify"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/repository"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/repository/memory"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/services"
	"github.com/google/uuid"
)

func feedbackRequest(items int) dto.CreateFeedbackRequest {
	req := dto.CreateFeedbackRequest{
		ListingID:    uuid.New(),
		SellerUserID: uuid.New(),
		CheckType:    models.CheckHybrid,
	}
	for i := 0; i < items; i++ {
		req.Items = append(req.Items, dto.FeedbackItemRequest{
			Category:        models.CategoryMissingData,
			Severity:        models.SeverityHigh,
			TargetAttribute: "floor_area",
			ErrorMessage:    "floor area is missing",
			Suggestion:      "add the net floor area",
			DetectedBy:      models.DetectedByStaff,
		})
	}
	return req
}

var _ = Describe("FeedbackService", func() {
	var (
		ctx     context.Context
		clock   *fakeClock
		repo    *memory.FeedbackStore
		sink    *recordingSink
		service *services.FeedbackService
		staffID uuid.UUID
	)

	BeforeEach(func() {
		ctx = context.Background()
		clock = newFakeClock(time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC))
		repo = memory.NewFeedbackStore()
		sink = &recordingSink{}
		service = services.NewFeedbackService(repo, lifecycle.NewFeedbackMachine(nil, clock.Clock()), sink)
		staffID = uuid.New()
	})

	Describe("Create", func() {
		It("persists the feedback and announces it", func() {
			f, err := service.Create(ctx, feedbackRequest(2))
			Expect(err).NotTo(HaveOccurred())

			stored, err := service.Get(ctx, f.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Items).To(HaveLen(2))
			Expect(stored.Audits).To(HaveLen(1))
			Expect(stored.Audits[0].Action).To(Equal(models.FeedbackActionCreated))
			Expect(sink.Actions()).To(Equal([]string{"CREATED"}))
			Expect(sink.Last().AggregateType).To(Equal(notify.AggregateFeedback))
		})

		It("rejects a resubmission of unknown feedback", func() {
			req := feedbackRequest(1)
			missing := uuid.New()
			req.PreviousFeedbackID = &missing

			_, err := service.Create(ctx, req)
			Expect(apperr.IsCode(err, apperr.CodeValidation)).To(BeTrue())
			Expect(sink.Actions()).To(BeEmpty())
		})
	})

	Describe("resubmissions", func() {
		var first, second, third *models.Feedback

		BeforeEach(func() {
			var err error
			first, err = service.Create(ctx, feedbackRequest(1))
			Expect(err).NotTo(HaveOccurred())

			req := feedbackRequest(1)
			req.PreviousFeedbackID = &first.ID
			second, err = service.Create(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			req = feedbackRequest(1)
			req.PreviousFeedbackID = &second.ID
			third, err = service.Create(ctx, req)
			Expect(err).NotTo(HaveOccurred())
		})

		It("marks later submissions as resubmissions", func() {
			Expect(first.IsResubmission).To(BeFalse())
			Expect(second.IsResubmission).To(BeTrue())
			Expect(third.IsResubmission).To(BeTrue())
		})

		It("lists direct resubmissions only", func() {
			list, err := service.Resubmissions(ctx, first.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].ID).To(Equal(second.ID))
		})

		It("walks the chain back to the first submission", func() {
			chain, err := service.ResubmissionChain(ctx, third.ID)
			Expect(err).NotTo(HaveOccurred())
			ids := []uuid.UUID{}
			for _, f := range chain {
				ids = append(ids, f.ID)
			}
			Expect(ids).To(Equal([]uuid.UUID{third.ID, second.ID, first.ID}))
		})

		It("stops at a deleted ancestor", func() {
			Expect(service.Delete(ctx, first.ID)).To(Succeed())

			chain, err := service.ResubmissionChain(ctx, third.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(chain).To(HaveLen(2))
		})
	})

	Describe("status changes", func() {
		var f *models.Feedback

		BeforeEach(func() {
			var err error
			f, err = service.Create(ctx, feedbackRequest(1))
			Expect(err).NotTo(HaveOccurred())
		})

		It("records one entry per transition and keeps the trail ordered", func() {
			_, err := service.Transition(ctx, f.ID, models.FeedbackNeedsRevision, &staffID, "photos missing")
			Expect(err).NotTo(HaveOccurred())
			clock.Advance(time.Minute)
			_, err = service.Transition(ctx, f.ID, models.FeedbackResubmitted, nil, "")
			Expect(err).NotTo(HaveOccurred())
			clock.Advance(time.Minute)
			approved, err := service.Approve(ctx, f.ID, &staffID, "looks good")
			Expect(err).NotTo(HaveOccurred())

			Expect(approved.Status).To(Equal(models.FeedbackApproved))
			Expect(*approved.ReviewedByStaffID).To(Equal(staffID))

			trail, err := service.AuditTrail(ctx, f.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(trail).To(HaveLen(4))
			Expect(audit.Ordered(trail)).To(BeTrue())
			Expect(*trail[3].PreviousStatus).To(Equal(models.FeedbackResubmitted))
			Expect(sink.Actions()).To(Equal([]string{"CREATED", "STATUS_CHANGED", "STATUS_CHANGED", "STATUS_CHANGED"}))
		})

		It("requires a staff member to approve or reject", func() {
			_, err := service.Approve(ctx, f.ID, nil, "")
			Expect(apperr.IsCode(err, apperr.CodeValidation)).To(BeTrue())
			_, err = service.Reject(ctx, f.ID, &uuid.Nil, "")
			Expect(apperr.IsCode(err, apperr.CodeValidation)).To(BeTrue())
		})

		It("validates the status before looking up the feedback", func() {
			_, err := service.Transition(ctx, uuid.New(), "ARCHIVED", nil, "")
			Expect(apperr.IsCode(err, apperr.CodeValidation)).To(BeTrue())

			_, err = service.Transition(ctx, uuid.New(), models.FeedbackApproved, nil, "")
			Expect(apperr.IsCode(err, apperr.CodeNotFound)).To(BeTrue())
		})

		It("leaves no trace when the strict policy refuses a move", func() {
			feedbackPolicy, _ := lifecycle.Policies(true)
			strict := services.NewFeedbackService(repo, lifecycle.NewFeedbackMachine(feedbackPolicy, clock.Clock()), sink)

			_, err := strict.Transition(ctx, f.ID, models.FeedbackResubmitted, &staffID, "")
			Expect(apperr.IsCode(err, apperr.CodeConflict)).To(BeTrue())

			stored, err := service.Get(ctx, f.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(models.FeedbackPending))
			Expect(stored.Audits).To(HaveLen(1))
		})

		It("never loses a concurrent update", func() {
			const workers = 12
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				conflicts int
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					to := models.FeedbackApproved
					if i%2 == 0 {
						to = models.FeedbackNeedsRevision
					}
					_, err := service.Transition(ctx, f.ID, to, &staffID, "")
					mu.Lock()
					defer mu.Unlock()
					if err == nil {
						successes++
						return
					}
					Expect(apperr.IsCode(err, apperr.CodeConflict)).To(BeTrue())
					conflicts++
				}(i)
			}
			wg.Wait()

			Expect(successes).To(BeNumerically(">=", 1))
			Expect(successes + conflicts).To(Equal(workers))

			stored, err := service.Get(ctx, f.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Audits).To(HaveLen(1 + successes))
			Expect(stored.Version).To(Equal(1 + successes))
			Expect(audit.Ordered(stored.Audits)).To(BeTrue())
		})
	})

	Describe("MarkItemFixed", func() {
		It("auto resolves once every item is fixed", func() {
			f, err := service.Create(ctx, feedbackRequest(2))
			Expect(err).NotTo(HaveOccurred())

			partial, err := service.MarkItemFixed(ctx, f.ID, f.Items[0].ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(partial.Status).To(Equal(models.FeedbackPending))

			resolved, err := service.MarkItemFixed(ctx, f.ID, f.Items[1].ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Status).To(Equal(models.FeedbackResolved))

			last := audit.Last(resolved.Audits)
			Expect(last.Action).To(Equal(models.FeedbackActionAutoResolved))
			Expect(last.ActorID).To(BeNil())
			Expect(last.IsAutomated).To(BeTrue())
			Expect(sink.Last().Action).To(Equal("AUTO_RESOLVED"))
			Expect(sink.Last().PreviousStatus).To(Equal("PENDING"))
		})

		It("does not resolve feedback that already left PENDING", func() {
			f, err := service.Create(ctx, feedbackRequest(1))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Transition(ctx, f.ID, models.FeedbackNeedsRevision, &staffID, "")
			Expect(err).NotTo(HaveOccurred())

			after, err := service.MarkItemFixed(ctx, f.ID, f.Items[0].ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(after.Status).To(Equal(models.FeedbackNeedsRevision))
			Expect(after.Items[0].IsFixed).To(BeTrue())
			Expect(after.Audits).To(HaveLen(2))
		})

		It("reports an unknown item as not found", func() {
			f, err := service.Create(ctx, feedbackRequest(1))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.MarkItemFixed(ctx, f.ID, uuid.New())
			Expect(apperr.IsCode(err, apperr.CodeNotFound)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("removes the aggregate and announces it once", func() {
			f, err := service.Create(ctx, feedbackRequest(3))
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, f.ID)).To(Succeed())
			Expect(sink.Last().Action).To(Equal(notify.ActionDeleted))

			_, err = service.Get(ctx, f.ID)
			Expect(apperr.IsCode(err, apperr.CodeNotFound)).To(BeTrue())

			err = service.Delete(ctx, f.ID)
			Expect(apperr.IsCode(err, apperr.CodeNotFound)).To(BeTrue())
			Expect(sink.Actions()).To(Equal([]string{"CREATED", "DELETED"}))
		})
	})

	Describe("listings", func() {
		It("returns pending reviews without a reviewer", func() {
			open, err := service.Create(ctx, feedbackRequest(1))
			Expect(err).NotTo(HaveOccurred())
			reviewed, err := service.Create(ctx, feedbackRequest(1))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Transition(ctx, reviewed.ID, models.FeedbackPending, &staffID, "picked up")
			Expect(err).NotTo(HaveOccurred())

			pending, err := service.PendingReviews(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].ID).To(Equal(open.ID))

			byReviewer, err := service.List(ctx, repository.FeedbackFilter{ReviewedByStaffID: &staffID})
			Expect(err).NotTo(HaveOccurred())
			Expect(byReviewer).To(HaveLen(1))
			Expect(byReviewer[0].ID).To(Equal(reviewed.ID))
		})
	})

	Describe("notification failures", func() {
		It("never fail the mutation", func() {
			transport := &failingTransport{}
			dispatcher := notify.NewDispatcher(transport, "", 4, 10*time.Millisecond)
			svc := services.NewFeedbackService(repo, lifecycle.NewFeedbackMachine(nil, clock.Clock()), dispatcher)

			f, err := svc.Create(ctx, feedbackRequest(1))
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Approve(ctx, f.ID, &staffID, "")
			Expect(err).NotTo(HaveOccurred())

			Expect(dispatcher.Close()).To(Succeed())
			Expect(transport.Calls()).To(Equal(2))
		})
	})
})
