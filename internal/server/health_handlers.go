package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	readinessTimeout = 3 * time.Second

	checkHealthy     = "healthy"
	checkUnhealthy   = "unhealthy"
	checkUnavailable = "unavailable"
)

// HealthReport is the readiness body.
type HealthReport struct {
	Service  string            `json:"service"`
	Version  string            `json:"version"`
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Realtime RealtimeStats     `json:"realtime"`
	Time     time.Time         `json:"time"`
}

// RealtimeStats summarizes websocket load.
type RealtimeStats struct {
	OnlineUsers int `json:"online_users"`
	Connections int `json:"connections"`
}

// LivenessCheck handles GET /health/live
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/live [get]
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up", "time": time.Now()})
}

// ReadinessCheck handles GET /health and /health/ready. The database is
// required; a missing or failing Redis only degrades the report.
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthReport
// @Failure 503 {object} HealthReport
// @Router /health/ready [get]
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	report := HealthReport{
		Service: "hackit",
		Version: "1.0.0",
		Status:  checkHealthy,
		Checks: map[string]string{
			"database": s.databaseCheck(ctx),
			"redis":    s.redisCheck(ctx),
		},
		Realtime: RealtimeStats{
			OnlineUsers: s.hub.OnlineCount(ctx),
			Connections: s.hub.ConnectionCount(),
		},
		Time: time.Now(),
	}

	status := fiber.StatusOK
	switch {
	case report.Checks["database"] != checkHealthy:
		status, report.Status = fiber.StatusServiceUnavailable, checkUnhealthy
	case report.Checks["redis"] != checkHealthy:
		report.Status = "degraded"
	}
	return c.Status(status).JSON(report)
}

func (s *Server) databaseCheck(ctx context.Context) string {
	if s.db == nil {
		return checkUnavailable
	}
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return checkUnhealthy
	}
	return checkHealthy
}

func (s *Server) redisCheck(ctx context.Context) string {
	if s.redis == nil {
		return checkUnavailable
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return checkUnhealthy
	}
	return checkHealthy
}
