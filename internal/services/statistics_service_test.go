package services_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/lifecycle"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/repository/memory"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/services"
	"github.com/google/uuid"
)

var _ = Describe("StatisticsService", func() {
	var (
		ctx      context.Context
		feedback *services.FeedbackService
		reports  *services.ReportService
		stats    *services.StatisticsService
	)

	BeforeEach(func() {
		ctx = context.Background()
		clock := newFakeClock(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
		feedbackRepo := memory.NewFeedbackStore()
		reportRepo := memory.NewReportStore()
		feedback = services.NewFeedbackService(feedbackRepo, lifecycle.NewFeedbackMachine(nil, clock.Clock()), nil)
		reports = services.NewReportService(reportRepo, lifecycle.NewReportMachine(nil, clock.Clock()), nil, 0)
		stats = services.NewStatisticsService(feedbackRepo, reportRepo)
	})

	It("reports zeros for an empty store", func() {
		fs, err := stats.Feedback(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(fs.Total).To(BeZero())
		Expect(fs.ByStatus).To(HaveLen(len(models.FeedbackStatuses)))

		rs, err := stats.Reports(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rs.Total).To(BeZero())
		Expect(rs.ByStatus).To(HaveLen(len(models.ReportStatuses)))
	})

	It("keeps the per-status counts consistent with the total", func() {
		staff := uuid.New()
		for i := 0; i < 4; i++ {
			f, err := feedback.Create(ctx, feedbackRequest(1))
			Expect(err).NotTo(HaveOccurred())
			switch i {
			case 1:
				_, err = feedback.Approve(ctx, f.ID, &staff, "")
			case 2:
				_, err = feedback.Transition(ctx, f.ID, models.FeedbackNeedsRevision, &staff, "")
			case 3:
				_, err = feedback.MarkItemFixed(ctx, f.ID, f.Items[0].ID)
			}
			Expect(err).NotTo(HaveOccurred())
		}

		fs, err := stats.Feedback(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(fs.Total).To(Equal(int64(4)))
		Expect(fs.Pending).To(Equal(int64(1)))
		Expect(fs.Approved).To(Equal(int64(1)))
		Expect(fs.Resolved).To(Equal(int64(1)))
		Expect(fs.ByStatus[models.FeedbackNeedsRevision]).To(Equal(int64(1)))

		var sum int64
		for _, n := range fs.ByStatus {
			sum += n
		}
		Expect(sum).To(Equal(fs.Total))
	})

	It("counts reports by status", func() {
		admin := uuid.New()
		for _, to := range []models.ReportStatus{models.ReportUnderReview, models.ReportEscalated, models.ReportPending} {
			r, err := reports.Create(ctx, reportRequest(models.SeverityMedium))
			Expect(err).NotTo(HaveOccurred())
			_, err = reports.Transition(ctx, r.ID, to, admin, "")
			Expect(err).NotTo(HaveOccurred())
		}

		rs, err := stats.Reports(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rs.Total).To(Equal(int64(3)))
		Expect(rs.Pending).To(Equal(int64(1)))
		Expect(rs.UnderReview).To(Equal(int64(1)))
		Expect(rs.ByStatus[models.ReportEscalated]).To(Equal(int64(1)))
		Expect(rs.Resolved).To(BeZero())
	})
})
