package server

import (
	"hackit/internal/featureflags"
	"hackit/internal/middleware"
	"hackit/internal/models"
	"hackit/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profile
// @Summary Get the caller's profile
// @Description Creates the default profile on first visit
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Router /profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetProfile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// SaveProfile handles PUT /api/profile
// @Summary Save the profile form
// @Description Missing required fields produce one aggregate message
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,business_position=string,location=string,website=string,avatar_color=string} true "Profile"
// @Success 200 {object} models.Profile
// @Failure 400 {object} object{error=string,items=[]string,dismiss_after_ms=int}
// @Router /profile [put]
func (s *Server) SaveProfile(c *fiber.Ctx) error {
	var req struct {
		Name             string `json:"name"`
		BusinessPosition string `json:"business_position"`
		Location         string `json:"location"`
		Website          string `json:"website"`
		AvatarColor      string `json:"avatar_color"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	profile, err := s.profileService.SaveProfile(c.UserContext(), middleware.UserID(c), validation.ProfileFields{
		Name:             req.Name,
		BusinessPosition: req.BusinessPosition,
		Location:         req.Location,
		Website:          req.Website,
		AvatarColor:      req.AvatarColor,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// SkipProfile handles POST /api/profile/skip
func (s *Server) SkipProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.Skip(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// UploadAvatar handles PUT /api/profile/avatar {image: data URL}.
// @Summary Upload an avatar image
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{image=string} true "Data URL"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /profile/avatar [put]
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	if !s.flagEnabled(c, featureflags.AvatarUpload) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Avatar upload is not available"))
	}

	var req struct {
		Image string `json:"image"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.Image == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image is required"))
	}

	profile, err := s.profileService.UploadAvatar(c.UserContext(), middleware.UserID(c), req.Image)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// RemoveAvatar handles DELETE /api/profile/avatar, falling back to the colour avatar.
func (s *Server) RemoveAvatar(c *fiber.Ctx) error {
	profile, err := s.profileService.RemoveAvatar(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetPalette handles GET /api/profile/palette
func (s *Server) GetPalette(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"colors": s.profileService.Palette()})
}

// GetUserProfile handles GET /api/users/:id/profile
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseKey(c, "id")
	if err != nil {
		return nil
	}
	profile, err := s.profileService.GetPublicProfile(c.UserContext(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"profile": profile,
		"online":  s.hub.IsOnline(userID),
	})
}
