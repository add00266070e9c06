package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SessionVerifier resolves a bearer token to the uid it was issued for.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (string, error)
}

var verifier SessionVerifier

// InitMiddleware installs the verifier used by AuthRequired and OptionalAuth.
func InitMiddleware(v SessionVerifier) {
	verifier = v
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// SetUser stores the authenticated uid in fiber locals and the request context.
func SetUser(c *fiber.Ctx, uid string) {
	c.Locals("userID", uid)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, uid))
}

// UserID returns the authenticated uid, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals("userID").(string)
	return uid
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}
	token, ok := BearerToken(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid authorization header format",
		})
	}
	if verifier == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "authentication unavailable",
		})
	}

	uid, err := verifier.VerifySession(c.UserContext(), token)
	if err != nil || uid == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	SetUser(c, uid)
	return c.Next()
}

// OptionalAuth sets the uid when a valid bearer token is present and never rejects.
func OptionalAuth(c *fiber.Ctx) error {
	if token, ok := BearerToken(c); ok && verifier != nil {
		if uid, err := verifier.VerifySession(c.UserContext(), token); err == nil && uid != "" {
			SetUser(c, uid)
		}
	}
	return c.Next()
}
