package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/config"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTProtected requires a bearer token signed with JWT_SECRET. Without a
// secret the API is open and requests pass straight through.
func JWTProtected(cfg *config.Config) fiber.Handler {
	if cfg.JWTSecret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// ActorID extracts the caller's UUID from the token's sub claim.
func ActorID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("no token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// ActorOr returns explicit when set, otherwise the authenticated caller.
func ActorOr(c *fiber.Ctx, explicit *uuid.UUID) *uuid.UUID {
	if explicit != nil && *explicit != uuid.Nil {
		return explicit
	}
	id, err := ActorID(c)
	if err != nil {
		return nil
	}
	return &id
}
