package server

import (
	"errors"
	"strings"
	"unicode"

	"hackit/internal/middleware"
	"hackit/internal/models"
	"hackit/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten means a helper already wrote an error response.
// Handlers return nil when they see it so the fiber ErrorHandler leaves the
// response alone.
var errResponseWritten = errors.New("response already written")

const (
	maxPaginationLimit = 100
	maxKeyLength       = 128
)

// Pagination is a parsed limit/offset pair.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination reads ?limit and ?offset. A missing or non-positive limit
// becomes defaultLimit; limits are capped at maxPaginationLimit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	p := Pagination{Limit: c.QueryInt("limit", defaultLimit), Offset: max(c.QueryInt("offset", 0), 0)}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	p.Limit = min(p.Limit, maxPaginationLimit)
	return p
}

func badParam(c *fiber.Ctx, param string) error {
	_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid "+humanizeParam(param)))
	return errResponseWritten
}

// parseID reads a positive integer route parameter.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, badParam(c, param)
	}
	return uint(id), nil
}

// parseKey reads an opaque string id route parameter.
func (s *Server) parseKey(c *fiber.Ctx, param string) (string, error) {
	id := strings.TrimSpace(c.Params(param))
	if id == "" || len(id) > maxKeyLength {
		return "", badParam(c, param)
	}
	return id, nil
}

// humanizeParam turns a route parameter name into a label for error
// messages: "id" is "ID", "inventoryItemId" is "inventory item ID".
func humanizeParam(param string) string {
	stem, ok := strings.CutSuffix(param, "Id")
	if param == "id" {
		stem, ok = "", true
	}
	if !ok {
		return param
	}
	var b strings.Builder
	for _, r := range stem {
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.TrimSpace(b.String() + " ID")
}

// mapServiceError writes the response for an error returned by a service.
func mapServiceError(c *fiber.Ctx, err error) error {
	var profileErr *validation.ProfileError
	if errors.As(err, &profileErr) {
		return respondProfileError(c, profileErr)
	}
	if appErr, ok := models.AsAppError(err); ok {
		return models.RespondWithError(c, appErr.Status(), appErr)
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled service error", "path", c.Path(), "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// respondProfileError renders the single aggregate profile form message.
func respondProfileError(c *fiber.Ctx, err *validation.ProfileError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":            err.Error(),
		"code":             models.CodeValidation,
		"items":            err.Items,
		"dismiss_after_ms": validation.ProfileErrorDismissAfterMS,
	})
}

// parseBody decodes the JSON body or writes a 400.
func parseBody(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// literalError writes the bare {error} body used by the Firebase-compatible routes.
func literalError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
