package middleware

import (
	"context"
	"errors"
	"strings"

	"task-manager/internal/entities"
	api "task-manager/internal/transport/http/api"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const claimsKey = "auth_claims"

// Authenticator resolves a bearer token into claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (entities.TokenClaims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified claims in the request locals.
func RequireAuth(auth Authenticator, log *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "access token required")
		}

		claims, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, entities.ErrUnauthorized) {
				return unauthorized(c, err.Error())
			}
			log.Errorw("failed to authenticate request", "error", err)
			return internalError(c)
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// OptionalAuth stores claims when a valid bearer token is present and lets
// anonymous requests through otherwise. Rejected tokens count as anonymous.
func OptionalAuth(auth Authenticator, log *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}

		claims, err := auth.Authenticate(c.UserContext(), token)
		switch {
		case err == nil:
			c.Locals(claimsKey, claims)
		case !errors.Is(err, entities.ErrUnauthorized):
			log.Errorw("failed to authenticate request", "error", err)
			return internalError(c)
		}
		return c.Next()
	}
}

// Claims returns the verified token claims of the request.
func Claims(c *fiber.Ctx) (entities.TokenClaims, bool) {
	claims, ok := c.Locals(claimsKey).(entities.TokenClaims)
	return claims, ok
}

// Actor returns the authenticated user of the request.
func Actor(c *fiber.Ctx) (entities.Actor, bool) {
	claims, ok := Claims(c)
	return claims.Actor, ok
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(api.ErrorResponse{
		Error: api.ErrorBody{Code: api.UNAUTHORIZED, Message: msg},
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(api.ErrorResponse{
		Error: api.ErrorBody{Code: api.INTERNAL, Message: "internal error"},
	})
}
