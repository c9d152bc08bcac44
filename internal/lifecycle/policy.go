// Package lifecycle applies status transitions to feedback and report
// aggregates and records each one on the aggregate's audit trail. Machines
// only mutate in-memory aggregates; persisting them is the caller's job.
package lifecycle

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// Policy decides whether a status may move from one value to another.
type Policy[S comparable] interface {
	Allow(from, to S) bool
}

// Unrestricted allows every transition between valid statuses.
type Unrestricted[S comparable] struct{}

func (Unrestricted[S]) Allow(S, S) bool { return true }

// Graph allows the listed edges plus staying in the same status.
type Graph[S comparable] map[S][]S

func (g Graph[S]) Allow(from, to S) bool {
	if from == to {
		return true
	}
	for _, next := range g[from] {
		if next == to {
			return true
		}
	}
	return false
}

var FeedbackGraph = Graph[models.FeedbackStatus]{
	models.FeedbackPending: {
		models.FeedbackApproved, models.FeedbackRejected, models.FeedbackNeedsRevision,
		models.FeedbackApprovedWithNotes, models.FeedbackResolved,
	},
	models.FeedbackNeedsRevision: {models.FeedbackResubmitted, models.FeedbackRejected},
	models.FeedbackResubmitted: {
		models.FeedbackPending, models.FeedbackApproved, models.FeedbackRejected,
		models.FeedbackNeedsRevision, models.FeedbackApprovedWithNotes,
	},
	models.FeedbackApprovedWithNotes: {models.FeedbackApproved, models.FeedbackResolved},
	models.FeedbackApproved:          {models.FeedbackResolved},
	models.FeedbackRejected:          {models.FeedbackResubmitted},
}

var ReportGraph = Graph[models.ReportStatus]{
	models.ReportPending: {
		models.ReportInReview, models.ReportUnderReview, models.ReportEscalated,
		models.ReportResolved, models.ReportRejected,
	},
	models.ReportInReview: {
		models.ReportUnderReview, models.ReportEscalated, models.ReportResolved, models.ReportRejected,
	},
	models.ReportUnderReview: {
		models.ReportInReview, models.ReportEscalated, models.ReportResolved, models.ReportRejected,
	},
	models.ReportEscalated: {
		models.ReportInReview, models.ReportUnderReview, models.ReportResolved, models.ReportRejected,
	},
	models.ReportRejected: {models.ReportPending},
}

// Policies returns the feedback and report policies for the given mode.
func Policies(strict bool) (Policy[models.FeedbackStatus], Policy[models.ReportStatus]) {
	if strict {
		return FeedbackGraph, ReportGraph
	}
	return Unrestricted[models.FeedbackStatus]{}, Unrestricted[models.ReportStatus]{}
}
