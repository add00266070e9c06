package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Status(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewNotFoundError("Post", "p1"), http.StatusNotFound},
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewUnauthorizedError("who"), http.StatusUnauthorized},
		{NewForbiddenError("no"), http.StatusForbidden},
		{NewConflictError("dup"), http.StatusConflict},
		{&AppError{Code: CodeRateLimited}, http.StatusTooManyRequests},
		{NewInternalError(errors.New("x")), http.StatusInternalServerError},
		{&AppError{Code: "SOMETHING_NEW"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("loading feed: %w", NewNotFoundError("Post", 7))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "Post with ID 7 not found", appErr.Message)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func respond(t *testing.T, status int, err error) ErrorResponse {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return RespondWithError(c, status, err) })

	resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, testErr)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, status, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRespondWithError(t *testing.T) {
	t.Run("app error with cause", func(t *testing.T) {
		err := &AppError{Code: CodeConflict, Message: "already liked", Err: errors.New("duplicate key")}
		body := respond(t, http.StatusConflict, err)
		assert.Equal(t, "already liked", body.Error)
		assert.Equal(t, CodeConflict, body.Code)
		assert.Equal(t, "duplicate key", body.Details)
	})

	t.Run("internal cause is hidden", func(t *testing.T) {
		body := respond(t, http.StatusInternalServerError, NewInternalError(errors.New("pq: connection refused")))
		assert.Equal(t, "Internal server error", body.Error)
		assert.Empty(t, body.Details)
	})

	t.Run("plain error", func(t *testing.T) {
		body := respond(t, http.StatusInternalServerError, errors.New("secret"))
		assert.Equal(t, CodeInternal, body.Code)
		assert.NotContains(t, body.Error, "secret")
	})
}
