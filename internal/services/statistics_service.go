package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/repository"
)

// StatisticsService derives dashboard counts from a single grouped read per
// aggregate, so the per-status counts always add up to the total.
type StatisticsService struct {
	feedback repository.FeedbackRepository
	reports  repository.ReportRepository
}

func NewStatisticsService(feedback repository.FeedbackRepository, reports repository.ReportRepository) *StatisticsService {
	return &StatisticsService{feedback: feedback, reports: reports}
}

func (s *StatisticsService) Feedback(ctx context.Context) (*dto.FeedbackStatistics, error) {
	counts, err := s.feedback.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, total := tally(models.FeedbackStatuses, counts)
	return &dto.FeedbackStatistics{
		Total:    total,
		Pending:  byStatus[models.FeedbackPending],
		Approved: byStatus[models.FeedbackApproved],
		Rejected: byStatus[models.FeedbackRejected],
		Resolved: byStatus[models.FeedbackResolved],
		ByStatus: byStatus,
	}, nil
}

func (s *StatisticsService) Reports(ctx context.Context) (*dto.ReportStatistics, error) {
	counts, err := s.reports.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, total := tally(models.ReportStatuses, counts)
	return &dto.ReportStatistics{
		Total:       total,
		Pending:     byStatus[models.ReportPending],
		UnderReview: byStatus[models.ReportUnderReview],
		Resolved:    byStatus[models.ReportResolved],
		Rejected:    byStatus[models.ReportRejected],
		ByStatus:    byStatus,
	}, nil
}

// tally zero-fills every known status and keeps unknown ones so that the
// total stays the sum of the map.
func tally[S comparable](known []S, counts map[S]int64) (map[S]int64, int64) {
	out := make(map[S]int64, len(known)+len(counts))
	for _, s := range known {
		out[s] = 0
	}
	var total int64
	for s, n := range counts {
		out[s] += n
		total += n
	}
	return out, total
}
