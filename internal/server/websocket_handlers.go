package server

import (
	"log/slog"

	"hackit/internal/cache"
	"hackit/internal/middleware"
	"hackit/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// IssueWSTicket handles POST /api/ws/ticket. The ticket is single-use and
// lets browsers authenticate the upgrade without putting the token in the URL.
// @Summary Issue a websocket ticket
// @Tags realtime
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{ticket=string,expires_in=int}
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "Realtime tickets are unavailable",
		})
	}

	ticket := uuid.NewString()
	if err := s.redis.Set(c.UserContext(), cache.WSTicketKey(ticket), middleware.UserID(c), cache.WSTicketTTL).Err(); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(cache.WSTicketTTL.Seconds()),
	})
}

// WebsocketAuth authenticates the upgrade request with a ticket query
// parameter or, failing that, a bearer token.
func (s *Server) WebsocketAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(models.ErrorResponse{
				Error: "Websocket upgrade required",
			})
		}

		ticket := c.Query("ticket")
		if ticket == "" {
			return middleware.AuthRequired(c)
		}
		if s.redis == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}

		uid, ok, err := cache.TakeOnce(c.UserContext(), s.redis, cache.WSTicketKey(ticket))
		if err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "ws ticket lookup failed", slog.String("error", err.Error()))
		}
		if !ok || uid == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}
		middleware.SetUser(c, uid)
		return c.Next()
	}
}

// WebsocketHandler streams notification events to the authenticated user.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		uid, _ := conn.Locals("userID").(string)
		if uid == "" {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register rejected",
				slog.String("user_id", uid), slog.String("error", err.Error()))
			_ = conn.WriteJSON(fiber.Map{"error": err.Error()})
			_ = conn.Close()
			return
		}

		if hello, ok := encodeEvent("connected", map[string]interface{}{"user_id": uid}); ok {
			client.TrySend([]byte(hello))
		}

		go client.WritePump()
		client.ReadPump()
	})
}
