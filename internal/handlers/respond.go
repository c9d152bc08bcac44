package handlers

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/dto"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// fail renders err as an ErrorResponse. Server errors are logged and
// reported with a generic message.
func fail(c *fiber.Ctx, err error) error {
	code := apperr.HTTPStatus(err)
	message := err.Error()
	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		message = "Internal server error"
	}
	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

// parseBody decodes and validates the request body. An empty body is
// accepted when every field is optional.
func parseBody(c *fiber.Ctx, req any, optional bool) error {
	if len(c.Body()) == 0 {
		if !optional {
			return apperr.Validation("request body is required")
		}
	} else if err := c.BodyParser(req); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return dto.Validate(req)
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s %q", name, c.Params(name))
	}
	return id, nil
}

func int64Param(c *fiber.Ctx, name string) (int64, error) {
	n, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil {
		return 0, apperr.Validation("invalid %s %q", name, c.Params(name))
	}
	return n, nil
}

// timeRange reads the optional RFC 3339 from/to query parameters.
func timeRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	parse := func(key string) (*time.Time, error) {
		raw := c.Query(key)
		if raw == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, apperr.Validation("%s must be an RFC 3339 timestamp", key)
		}
		return &t, nil
	}
	if from, err = parse("from"); err != nil {
		return nil, nil, err
	}
	if to, err = parse("to"); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, apperr.Validation("to must not be before from")
	}
	return from, to, nil
}

func actorOrNil(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
