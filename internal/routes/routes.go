package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/config"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	feedbackHandler *handlers.FeedbackHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (no auth)
	api.Get("/health", healthHandler.Check)

	v1 := api.Group("/v1", middleware.JWTProtected(cfg))

	// Static segments are registered before /:id so they are not parsed as ids.
	feedback := v1.Group("/feedback")
	feedback.Post("/", feedbackHandler.Create)
	feedback.Get("/", feedbackHandler.List)
	feedback.Get("/statistics", feedbackHandler.Statistics)
	feedback.Get("/pending-reviews", feedbackHandler.PendingReviews)
	feedback.Get("/listing/:listingId", feedbackHandler.ByListing)
	feedback.Get("/seller/:sellerId", feedbackHandler.BySeller)
	feedback.Get("/status/:status", feedbackHandler.ByStatus)
	feedback.Get("/reviewer/:staffId", feedbackHandler.ByReviewer)
	feedback.Get("/:id", feedbackHandler.Get)
	feedback.Get("/:id/audits", feedbackHandler.Audits)
	feedback.Get("/:id/resubmissions", feedbackHandler.Resubmissions)
	feedback.Get("/:id/chain", feedbackHandler.Chain)
	feedback.Put("/:id/approve", feedbackHandler.Approve)
	feedback.Put("/:id/reject", feedbackHandler.Reject)
	feedback.Put("/:id/status", feedbackHandler.UpdateStatus)
	feedback.Put("/:id/items/:itemId/fixed", feedbackHandler.MarkItemFixed)
	feedback.Delete("/:id", feedbackHandler.Delete)

	reports := v1.Group("/reports")
	reports.Post("/", reportHandler.Create)
	reports.Get("/", reportHandler.List)
	reports.Get("/statistics", reportHandler.Statistics)
	reports.Get("/unassigned", reportHandler.Unassigned)
	reports.Get("/needs-attention", reportHandler.NeedsAttention)
	reports.Get("/overdue", reportHandler.Overdue)
	reports.Get("/reporter/:id", reportHandler.ByReporter)
	reports.Get("/reported-user/:id", reportHandler.ByReportedUser)
	reports.Get("/status/:status", reportHandler.ByStatus)
	reports.Get("/entity/:type/:id", reportHandler.ByEntity)
	reports.Get("/assigned/:adminId", reportHandler.ByAssignee)
	reports.Get("/:id", reportHandler.Get)
	reports.Get("/:id/audits", reportHandler.Audits)
	reports.Put("/:id/assign", reportHandler.Assign)
	reports.Put("/:id/status", reportHandler.UpdateStatus)
	reports.Put("/:id/resolve", reportHandler.Resolve)
	reports.Put("/:id/reject", reportHandler.Reject)
	reports.Put("/:id/evidence/:evidenceId/verify", reportHandler.VerifyEvidence)
	reports.Delete("/:id", reportHandler.Delete)
}
