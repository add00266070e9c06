package server

import (
	"hackit/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ServeMedia handles GET /media/:kind/:name for stored avatar and post images.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	if s.media == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Image", c.Params("name")))
	}
	path, err := s.media.Resolve(c.Params("kind"), c.Params("name"))
	if err != nil {
		return mapServiceError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	c.Type("webp")
	return c.SendFile(path)
}
