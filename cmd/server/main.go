package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event_management/internal/config"
	"event_management/internal/handler"
	"event_management/internal/middleware"
	"event_management/internal/notification"
	"event_management/internal/repository"
	"event_management/internal/service"
	"event_management/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithWriter(os.Stdout, cfg.Log.Level, cfg.IsProduction())

	dbPool, err := newPool(context.Background(), cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	if cfg.Database.RunMigrations {
		if err := repository.RunMigrations(context.Background(), dbPool, appLogger); err != nil {
			appLogger.Fatal("Failed to run migrations", "error", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Background workers stop when bgCtx is cancelled during shutdown.
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	pubSub := notification.NewPubSub(appLogger)
	defer pubSub.Close()

	consumer := notification.NewConsumer(pubSub, notification.NewMailer(cfg.Mail, appLogger), appLogger)
	consumerDone, err := consumer.Start(bgCtx)
	if err != nil {
		appLogger.Fatal("Failed to start notification consumer", "error", err)
	}

	repos := repository.NewRepositories(dbPool, rdb, appLogger)

	services, err := service.NewServices(repos, notification.NewPublisher(pubSub, appLogger), cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialise services", "error", err)
	}

	auditDone := make(chan struct{})
	go func() {
		defer close(auditDone)
		services.Audit.Run(bgCtx)
	}()

	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)

	handlers := handler.NewHandlers(services, repos, map[string]handler.Pinger{
		"postgres": dbPool,
		"redis": handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}),
	}, cfg, appLogger)

	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg, appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	stopBackground()
	for name, done := range map[string]<-chan struct{}{"notifications": consumerDone, "audit": auditDone} {
		select {
		case <-done:
		case <-ctx.Done():
			appLogger.Warn("Background worker did not stop in time", "worker", name)
		}
	}

	appLogger.Info("Server exited")
}

func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConnections)
	poolCfg.MaxConnIdleTime = cfg.MaxIdleTime
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.SetHTMLTemplate(handler.Templates())

	router.GET("/health", handlers.Health.Check)
	router.GET("/ready", handlers.Health.Ready)

	// Pages authenticate through the access token cookie set by /login.
	pages := router.Group("")
	pages.Use(authMiddleware.OptionalAuth())
	{
		pages.GET("/", handlers.Web.Index)
		pages.GET("/login", handlers.Web.LoginForm)
		pages.POST("/login", rateLimitMiddleware.Limit(), handlers.Web.Login)
		pages.POST("/logout", handlers.Web.Logout)
		pages.GET("/events/:id", handlers.Web.Event)
		pages.POST("/events/:id/register", rateLimitMiddleware.Limit(), handlers.Web.Register)
		pages.POST("/events/:id/cancel", handlers.Web.Cancel)
		pages.GET("/my-events", handlers.Web.MyEvents)
		pages.GET("/audit-logs", handlers.Web.AuditLogs)
	}

	router.GET("/ws/events/:id/seats", authMiddleware.OptionalAuth(), handlers.WebSocket.HandleSeats)

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("/auth")
		{
			public.POST("/register", rateLimitMiddleware.Limit(), handlers.Auth.Register)
			public.POST("/login", rateLimitMiddleware.Limit(), handlers.Auth.Login)
			public.POST("/refresh", rateLimitMiddleware.Limit(), handlers.Auth.RefreshToken)
			public.POST("/logout", handlers.Auth.Logout)
		}

		browse := v1.Group("/events")
		browse.Use(authMiddleware.OptionalAuth())
		{
			browse.GET("", handlers.Event.List)
			browse.GET("/:id", handlers.Event.GetByID)
		}

		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			users := protected.Group("/users")
			{
				users.GET("/me", handlers.User.GetMe)
				users.PUT("/me", handlers.User.UpdateMe)
			}

			events := protected.Group("/events")
			{
				events.POST("", handlers.Event.Create)
				events.PUT("/:id", handlers.Event.Update)
				events.DELETE("/:id", handlers.Event.Delete)
				events.GET("/:id/stats", handlers.Stats.GetEventStats)
				events.GET("/:id/participants/export", handlers.Event.ExportParticipants)
				events.POST("/:id/register", rateLimitMiddleware.Limit(), handlers.Registration.Register)
				events.DELETE("/:id/register", handlers.Registration.Cancel)
				events.GET("/:id/certificate", handlers.Certificate.Issue)
			}

			protected.GET("/my-events", handlers.Registration.MyEvents)

			admin := protected.Group("")
			admin.Use(authMiddleware.RequireAdmin())
			{
				admin.PUT("/admin/users/:id/role", handlers.User.ChangeRole)
				admin.GET("/audit-logs", handlers.Audit.List)
			}
		}
	}

	return router
}
