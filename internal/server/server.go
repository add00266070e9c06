// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "hackit/docs" // swagger docs
	"hackit/internal/authproxy"
	"hackit/internal/bootstrap"
	"hackit/internal/completion"
	"hackit/internal/config"
	"hackit/internal/docstore"
	"hackit/internal/featureflags"
	"hackit/internal/media"
	"hackit/internal/middleware"
	"hackit/internal/models"
	"hackit/internal/notifications"
	"hackit/internal/observability"
	"hackit/internal/onboarding"
	"hackit/internal/repository"
	"hackit/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Completer answers a single prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Deps are the external collaborators of the server. Nil fields are built
// from config by NewServerWithDeps.
type Deps struct {
	Auth       authproxy.Provider
	Docs       docstore.Store
	Completion Completer
	Media      *media.Store
	Catalog    *onboarding.Catalog
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	runtime        *bootstrap.Runtime

	docs       docstore.Store
	completion Completer
	media      *media.Store

	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	authService         *service.AuthService
	postService         *service.PostService
	commentService      *service.CommentService
	notificationService *service.NotificationService
	profileService      *service.ProfileService
	vendorService       *service.VendorService
}

// NewServer initializes the runtime (database, schema, Redis, tracing) and
// creates a server with the configured providers.
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{
		SeedDemo: bootstrap.SeedDemoByDefault(cfg.Env),
	})
	if err != nil {
		return nil, err
	}
	s, err := NewServerWithDeps(cfg, rt.DB, rt.Redis, Deps{})
	if err != nil {
		return nil, err
	}
	s.runtime = rt
	return s, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, deps Deps) (*Server, error) {
	var err error
	if deps.Auth == nil {
		if deps.Auth, err = authproxy.New(cfg, db, redisClient); err != nil {
			return nil, fmt.Errorf("auth provider: %w", err)
		}
	}
	if deps.Docs == nil {
		if deps.Docs, err = docstore.New(context.Background(), cfg, db); err != nil {
			return nil, fmt.Errorf("docstore: %w", err)
		}
	}
	if deps.Completion == nil {
		deps.Completion = completion.NewClient(completion.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, nil)
	}
	if deps.Media == nil {
		deps.Media = media.NewStore(cfg)
	}
	if deps.Catalog == nil {
		if deps.Catalog, err = onboarding.Load(); err != nil {
			return nil, fmt.Errorf("onboarding catalog: %w", err)
		}
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("hackit-api"),
		docs:           deps.Docs,
		completion:     deps.Completion,
		media:          deps.Media,
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	s.hub.OnPresence(
		func(string) { observability.PresenceTransitions.WithLabelValues("online").Inc() },
		func(string) { observability.PresenceTransitions.WithLabelValues("offline").Inc() },
	)

	postRepo := repository.NewPostRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	events := &realtimePublisher{hub: s.hub, notifier: s.notifier}

	s.notificationService = service.NewNotificationService(repository.NewNotificationRepository(db), profileRepo, events)
	s.commentService = service.NewCommentService(repository.NewCommentRepository(db), postRepo, profileRepo, s.notificationService, events)
	s.postService = service.NewPostService(postRepo, profileRepo, s.commentService, s.notificationService, deps.Media, events)
	s.postService.SetLikeNotificationGate(func(actorID string) bool {
		return s.featureFlags.Enabled(featureflags.LikeNotifications, actorID)
	})
	s.profileService = service.NewProfileService(profileRepo, deps.Media)
	s.vendorService = service.NewVendorService(repository.NewVendorRepository(db), deps.Catalog)
	s.authService = service.NewAuthService(deps.Auth, deps.Docs, profileRepo)

	middleware.InitMiddleware(s.authService)
	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// Uploaded images are fetched cross-origin by the web client.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so 429s still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get(media.URLPrefix+"/:kind/:name", s.ServeMedia)

	api := app.Group("/api")
	api.Get("/", s.ReadinessCheck)
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.SignUp)
	auth.Post("/signin", middleware.RateLimit(s.redis, 10, 5*time.Minute, "signin"), s.SignIn)
	auth.Post("/logout", middleware.AuthRequired, s.Logout)

	// Firebase-compatible endpoints
	api.Post("/verify-session", s.VerifySession)
	api.Post("/save-user", s.SaveUser)
	api.Post("/ai/openai", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 10, time.Minute, "ai_completion"), s.Completion)

	api.Get("/feature-flags", middleware.OptionalAuth, s.GetFeatureFlags)

	// Feed and posts. Specific /:id/:resource routes come before /:id.
	posts := api.Group("/posts")
	posts.Get("/", middleware.OptionalAuth, s.ListFeed)
	posts.Post("/", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:id/comments", s.ListComments)
	posts.Post("/:id/comments", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	posts.Post("/:id/like", middleware.AuthRequired, s.ToggleLike)
	posts.Put("/:id/like", middleware.AuthRequired, s.Like)
	posts.Delete("/:id/like", middleware.AuthRequired, s.Unlike)
	posts.Get("/:id", middleware.OptionalAuth, s.GetPost)

	// Anonymous preview
	preview := api.Group("/preview")
	preview.Get("/posts", s.PreviewFeed)
	preview.Post("/posts/:id/like", s.PreviewLike)
	preview.Post("/posts/:id/comments", s.PreviewComment)
	preview.Get("/features/:feature", s.PreviewFeature)

	// Notifications
	notifs := api.Group("/notifications", middleware.AuthRequired)
	notifs.Get("/", s.ListNotifications)
	notifs.Get("/unread-count", s.UnreadCount)
	notifs.Post("/read-all", s.MarkAllRead)
	notifs.Post("/:id/read", s.MarkRead)

	// Profile
	api.Get("/profile/palette", s.GetPalette)
	profile := api.Group("/profile", middleware.AuthRequired)
	profile.Get("/", s.GetProfile)
	profile.Put("/", s.SaveProfile)
	profile.Post("/skip", s.SkipProfile)
	profile.Put("/avatar", middleware.RateLimit(s.redis, 10, time.Minute, "avatar_upload"), s.UploadAvatar)
	profile.Delete("/avatar", s.RemoveAvatar)
	api.Get("/users/:id/profile", s.GetUserProfile)

	// Vendor onboarding
	onboard := api.Group("/onboarding")
	onboard.Get("/languages", s.GetLanguages)
	onboard.Get("/languages/:code/path", s.GetPathCopy)
	onboard.Get("/store-types", s.GetStoreTypes)
	onboard.Put("/path", middleware.AuthRequired, s.ChoosePath)
	onboard.Get("/vendor", middleware.AuthRequired, s.GetVendor)
	onboard.Put("/vendor", middleware.AuthRequired, s.SaveVendor)
	onboard.Get("/inventory", middleware.AuthRequired, s.GetInventory)
	onboard.Post("/inventory", middleware.AuthRequired, s.AddInventoryItem)
	onboard.Delete("/inventory/:id", middleware.AuthRequired, s.DeleteInventoryItem)

	// Websocket
	api.Post("/ws/ticket", middleware.AuthRequired, s.IssueWSTicket)
	api.Get("/ws", s.WebsocketAuth(), s.WebsocketHandler())
}

// NewApp builds the fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "hackit API",
		BodyLimit: 12 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier.Enabled() {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start notification wiring", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down notification hub", slog.String("error", err.Error()))
	}

	if s.docs != nil {
		if err := s.docs.Close(ctx); err != nil {
			middleware.Logger.Error("error closing docstore", slog.String("error", err.Error()))
		}
	}

	if s.runtime != nil {
		if err := s.runtime.Close(ctx); err != nil {
			middleware.Logger.Error("error closing runtime", slog.String("error", err.Error()))
		}
		middleware.Logger.Info("server shutdown complete")
		return nil
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
