package server

import (
	"errors"
	"strings"

	"hackit/internal/authproxy"
	"hackit/internal/middleware"
	"hackit/internal/models"
	"hackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// providerStatus picks the HTTP status for a failed sign-up or sign-in.
func providerStatus(pe *authproxy.ProviderError) int {
	switch pe.Code {
	case authproxy.CodeEmailExists:
		return fiber.StatusConflict
	case authproxy.CodeEmailNotFound, authproxy.CodeInvalidPassword, authproxy.CodeInvalidCredentials:
		return fiber.StatusUnauthorized
	case authproxy.CodeUserDisabled:
		return fiber.StatusForbidden
	case authproxy.CodeTooManyAttempts:
		return fiber.StatusTooManyRequests
	case authproxy.CodeInvalidEmail, authproxy.CodeWeakPassword:
		return fiber.StatusBadRequest
	}
	if pe.Status >= 400 && pe.Status < 500 {
		return fiber.StatusBadRequest
	}
	return fiber.StatusBadGateway
}

func respondAuthError(c *fiber.Ctx, err error) error {
	if pe, ok := authproxy.AsProviderError(err); ok {
		if pe.Err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "auth provider call failed",
				"op", pe.Op, "code", pe.Code, "error", pe.Err)
		}
		return c.Status(providerStatus(pe)).JSON(models.ErrorResponse{
			Error: pe.Message(),
			Code:  pe.Code,
		})
	}
	return mapServiceError(c, err)
}

// SignUp handles POST /api/auth/signup
// @Summary User signup
// @Description Create the account, its users document and default profile, then sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string,name=string,role=string} true "Signup request"
// @Success 201 {object} authproxy.Session
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) SignUp(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email, password and name are required"))
	}

	session, err := s.authService.SignUp(c.UserContext(), service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		return respondAuthError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uid":   session.UID,
		"token": session.IDToken,
	})
}

// SignIn handles POST /api/auth/signin
// @Summary User sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} authproxy.Session
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/signin [post]
func (s *Server) SignIn(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	session, err := s.authService.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondAuthError(c, err)
	}
	return c.JSON(session)
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	token, _ := middleware.BearerToken(c)
	if err := s.authService.Logout(c.UserContext(), token); err != nil {
		if errors.Is(err, authproxy.ErrInvalidToken) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// VerifySession handles POST /api/verify-session {token}.
func (s *Server) VerifySession(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return literalError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	uid, err := s.authService.VerifySession(c.UserContext(), req.Token)
	if err != nil || uid == "" {
		return literalError(c, fiber.StatusUnauthorized, "Invalid token")
	}
	return c.JSON(fiber.Map{"uid": uid})
}

// SaveUser handles POST /api/save-user {uid,email,name,role}.
func (s *Server) SaveUser(c *fiber.Ctx) error {
	var req struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return literalError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	if req.UID == "" || req.Email == "" || req.Name == "" || req.Role == "" {
		return literalError(c, fiber.StatusBadRequest, "Missing fields")
	}
	if err := s.authService.SaveUser(c.UserContext(), req.UID, models.DocUser{
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	}); err != nil {
		return literalError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
	return c.JSON(fiber.Map{"success": true})
}
