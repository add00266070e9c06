package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/api/posts/:id", func(c *fiber.Ctx) error {
		tid, _ := c.Locals("traceID").(string)
		return c.SendString(tid)
	})
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendString("up") })

	t.Run("api requests carry a trace id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/1", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
	})

	t.Run("health probes are not traced", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("X-Trace-ID"))
	})
}
