package server

import (
	"errors"
	"strings"

	"hackit/internal/completion"
	"hackit/internal/featureflags"
	"hackit/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Completion handles POST /api/ai/openai {prompt}.
// @Summary LLM completion
// @Description Forwards one prompt to the chat completion API
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{prompt=string} true "Prompt"
// @Success 200 {object} object{result=string}
// @Failure 400 {object} object{error=string}
// @Router /ai/openai [post]
func (s *Server) Completion(c *fiber.Ctx) error {
	if !s.flagEnabled(c, featureflags.AICompletion) {
		return literalError(c, fiber.StatusForbidden, "AI completion is not available")
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		return literalError(c, fiber.StatusBadRequest, "Missing prompt")
	}

	result, err := s.completion.Complete(c.UserContext(), req.Prompt)
	if err != nil {
		var upstream *completion.UpstreamError
		switch {
		case errors.Is(err, completion.ErrMissingPrompt):
			return literalError(c, fiber.StatusBadRequest, "Missing prompt")
		case errors.As(err, &upstream):
			return literalError(c, upstream.Status, upstream.Message)
		default:
			middleware.Logger.ErrorContext(c.UserContext(), "completion failed", "error", err)
			return literalError(c, fiber.StatusInternalServerError, "Something went wrong")
		}
	}
	return c.JSON(fiber.Map{"result": result})
}
