package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hackit/internal/models"
	"hackit/internal/notifications"
	"hackit/internal/validation"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

// getJSON issues a GET against app and decodes the body into out when out
// is non-nil.
func getJSON(t *testing.T, app *fiber.App, path string, out any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHumanizeParam(t *testing.T) {
	for param, want := range map[string]string{
		"id":              "ID",
		"postId":          "post ID",
		"commentId":       "comment ID",
		"inventoryItemId": "inventory item ID",
		"slug":            "slug",
	} {
		assert.Equal(t, want, humanizeParam(param), param)
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	app.Get("/feed", func(c *fiber.Ctx) error {
		p := parsePagination(c, 20)
		return c.JSON([]int{p.Limit, p.Offset})
	})

	cases := map[string][]int{
		"":                    {20, 0},
		"?limit=5&offset=40":  {5, 40},
		"?limit=5000":         {maxPaginationLimit, 0},
		"?limit=-1&offset=-9": {20, 0},
		"?limit=abc":          {20, 0},
	}
	for query, want := range cases {
		var got []int
		assert.Equal(t, http.StatusOK, getJSON(t, app, "/feed"+query, &got))
		assert.Equal(t, want, got, query)
	}
}

func TestParseID(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/vendors/:vendorId", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "vendorId")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	var ok map[string]uint
	assert.Equal(t, http.StatusOK, getJSON(t, app, "/vendors/7", &ok))
	assert.Equal(t, uint(7), ok["id"])

	for _, raw := range []string{"seven", "0", "-2"} {
		var body models.ErrorResponse
		assert.Equal(t, http.StatusBadRequest, getJSON(t, app, "/vendors/"+raw, &body), raw)
		assert.Equal(t, "Invalid vendor ID", body.Error)
		assert.Equal(t, models.CodeValidation, body.Code)
	}
}

func TestParseKey(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/posts/:postId", func(c *fiber.Ctx) error {
		id, err := s.parseKey(c, "postId")
		if err != nil {
			return nil
		}
		return c.SendString(id)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/0b6c-abc", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, getJSON(t, app, "/posts/"+strings.Repeat("a", maxKeyLength+1), &body))
	assert.Equal(t, "Invalid post ID", body.Error)
}

func TestMapServiceError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{models.NewNotFoundError("Post", "p1"), http.StatusNotFound, models.CodeNotFound},
		{models.NewValidationError("Post content cannot be empty"), http.StatusBadRequest, models.CodeValidation},
		{models.NewForbiddenError("not yours"), http.StatusForbidden, models.CodeForbidden},
		{models.NewConflictError("already liked"), http.StatusConflict, models.CodeConflict},
		{errors.Join(errors.New("wrapped"), models.NewUnauthorizedError("sign in")), http.StatusUnauthorized, models.CodeUnauthorized},
		{errors.New("pq: relation does not exist"), http.StatusInternalServerError, models.CodeInternal},
	}
	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return mapServiceError(c, tc.err) })

		var body models.ErrorResponse
		assert.Equal(t, tc.status, getJSON(t, app, "/", &body), tc.err.Error())
		assert.Equal(t, tc.code, body.Code)
		assert.NotContains(t, body.Error, "relation does not exist")
	}
}

func TestMapServiceError_ProfileError(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return mapServiceError(c, &validation.ProfileError{Items: []string{
			validation.MsgNameRequired, validation.MsgLocationRequired,
		}})
	})

	var body struct {
		Error          string   `json:"error"`
		Items          []string `json:"items"`
		DismissAfterMS int      `json:"dismiss_after_ms"`
	}
	assert.Equal(t, http.StatusBadRequest, getJSON(t, app, "/", &body))
	assert.Equal(t, validation.ProfileErrorPrefix+validation.MsgNameRequired+", "+validation.MsgLocationRequired, body.Error)
	assert.Equal(t, []string{validation.MsgNameRequired, validation.MsgLocationRequired}, body.Items)
	assert.Equal(t, validation.ProfileErrorDismissAfterMS, body.DismissAfterMS)
}

func TestReadinessCheck_DegradedWithoutRedis(t *testing.T) {
	db, _ := mockGorm(t)
	s := &Server{db: db, hub: notifications.NewHub()}
	app := fiber.New()
	app.Get("/health", s.ReadinessCheck)

	var report HealthReport
	assert.Equal(t, http.StatusOK, getJSON(t, app, "/health", &report))
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "healthy", report.Checks["database"])
	assert.Equal(t, "unavailable", report.Checks["redis"])
	assert.Zero(t, report.Realtime.Connections)
}

func TestLivenessCheck(t *testing.T) {
	app := fiber.New()
	app.Get("/health/live", (&Server{}).LivenessCheck)
	assert.Equal(t, http.StatusOK, getJSON(t, app, "/health/live", nil))
}
