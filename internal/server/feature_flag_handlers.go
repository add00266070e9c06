package server

import (
	"hackit/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// FeatureFlagsResponse pairs the configured flag values with their result
// for the caller.
type FeatureFlagsResponse struct {
	Raw       map[string]string `json:"raw"`
	Evaluated map[string]bool   `json:"evaluated"`
}

// GetFeatureFlags handles GET /api/feature-flags
// @Summary Feature flags for the caller
// @Description Percentage rollouts are evaluated against the caller's uid; anonymous callers never fall inside a partial rollout.
// @Tags flags
// @Produce json
// @Success 200 {object} FeatureFlagsResponse
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	resp := FeatureFlagsResponse{Raw: map[string]string{}, Evaluated: map[string]bool{}}
	if s.featureFlags != nil {
		resp.Raw = s.featureFlags.Raw()
		resp.Evaluated = s.featureFlags.Snapshot(middleware.UserID(c))
	}
	return c.JSON(resp)
}

// flagEnabled evaluates name for the caller. With no flag manager every
// flag is on.
func (s *Server) flagEnabled(c *fiber.Ctx, name string) bool {
	return s.featureFlags == nil || s.featureFlags.Enabled(name, middleware.UserID(c))
}
