package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	store         string
	ping          func() error
	notifications string
}

// NewHealthHandler reports on the given store. ping may be nil for stores
// without a connection to check.
func NewHealthHandler(store string, ping func() error, notifications string) *HealthHandler {
	return &HealthHandler{store: store, ping: ping, notifications: notifications}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Store:         h.store,
		Notifications: h.notifications,
	}
	if h.ping != nil {
		resp.DB = "ok"
		if err := h.ping(); err != nil {
			resp.Status = "degraded"
			resp.DB = "unhealthy: " + err.Error()
		}
	}
	return c.JSON(resp)
}
