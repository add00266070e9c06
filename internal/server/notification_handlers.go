package server

import (
	"hackit/internal/middleware"
	"hackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListNotifications handles GET /api/notifications
// @Summary List notifications
// @Description Newest first, with the caller's unread count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max notifications"
// @Success 200 {object} service.NotificationList
// @Router /notifications [get]
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	page := parsePagination(c, service.DefaultNotificationLimit)
	list, err := s.notificationService.List(c.UserContext(), middleware.UserID(c), page.Limit)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(list)
}

// UnreadCount handles GET /api/notifications/unread-count
func (s *Server) UnreadCount(c *fiber.Ctx) error {
	count, err := s.notificationService.UnreadCount(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": count})
}

// MarkAllRead handles POST /api/notifications/read-all
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{updated=int,unread_count=int}
// @Router /notifications/read-all [post]
func (s *Server) MarkAllRead(c *fiber.Ctx) error {
	updated, err := s.notificationService.MarkAllRead(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated, "unread_count": 0})
}

// MarkRead handles POST /api/notifications/:id/read
func (s *Server) MarkRead(c *fiber.Ctx) error {
	id, err := s.parseKey(c, "id")
	if err != nil {
		return nil
	}
	remaining, err := s.notificationService.MarkRead(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": remaining})
}
