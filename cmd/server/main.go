// Command main is the entry point for the hackit backend server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hackit/internal/config"
	"hackit/internal/observability"
	"hackit/internal/server"
)

const shutdownTimeout = 10 * time.Second

// @title hackit API
// @version 1.0
// @description Social feed API with posts, likes, comments, notifications, profiles and vendor onboarding
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@hackit.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the ID token.

func main() {
	if err := run(); err != nil {
		observability.GlobalLogger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	srv, err := server.NewServer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	observability.GlobalLogger.Info("shutting down", slog.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	select {
	case serr := <-serveErr:
		return errors.Join(err, serr)
	case <-shutdownCtx.Done():
		return errors.Join(err, shutdownCtx.Err())
	}
}
