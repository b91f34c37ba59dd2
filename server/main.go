package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boxstudio/api/routes"
	"boxstudio/internal/notifications"
	"boxstudio/internal/shared/config"
	"boxstudio/internal/shared/database"
	"boxstudio/internal/shared/middleware"
	"boxstudio/internal/whatsapp"
	"boxstudio/pkg/cache"
	"boxstudio/pkg/logger"
	"boxstudio/pkg/metrics"
	"boxstudio/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("Invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// The handler format depends on the gin mode, so rebuild the logger after setting it
	gin.SetMode(cfg.GinMode)
	logger.SetDefault(logger.NewWithWriter(os.Stdout, cfg.LogLevel))
	appLogger = logger.GetDefault()
	appLogger.Info("Starting studio backend",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("git_commit", GitCommit),
	)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("Failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var cacheService cache.Service
	if db.Redis != nil && cfg.Analytics.CacheEnabled {
		cacheService = cache.NewService(db.Redis)
		appLogger.Info("Analytics cache enabled")
	}

	rateLimiter := newRateLimiter(cfg, db)

	var publisher notifications.Publisher = notifications.NopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := notifications.NewKafkaPublisher(
			notifications.DefaultKafkaProducerConfig(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic),
		)
		if err != nil {
			appLogger.Error("Failed to initialize Kafka publisher", slog.Any("error", err))
			appLogger.Info("Continuing without domain events")
		} else {
			publisher = kafkaPublisher
			appLogger.Info("Kafka publisher initialized", slog.String("topic", cfg.Kafka.EventsTopic))
		}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing publisher", slog.Any("error", err))
		}
	}()

	appRouter := routes.NewRouter(cfg, db, publisher, cacheService)
	engine := setupRouter(cfg, appRouter, rateLimiter)

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	if cfg.Kafka.Enabled {
		consumerConfig := whatsapp.DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.WhatsAppStatusTopic)
		statusConsumer, err := whatsapp.NewKafkaStatusConsumer(consumerConfig, appRouter.WhatsAppService())
		if err != nil {
			appLogger.Error("Failed to initialize WhatsApp status consumer", slog.Any("error", err))
		} else if err := statusConsumer.Start(consumerCtx, cfg.Kafka.ConsumerWorkers); err != nil {
			appLogger.Error("Failed to start WhatsApp status consumer", slog.Any("error", err))
		} else {
			defer func() {
				appLogger.Info("Stopping WhatsApp status consumer...")
				consumerCancel()
				if err := statusConsumer.Stop(); err != nil {
					appLogger.Error("Error stopping status consumer", slog.Any("error", err))
				}
			}()
		}
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_base", fmt.Sprintf("http://localhost:%s%s", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", cfg.APIVersion),
			slog.Bool("redis_cache", cacheService != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
			slog.Bool("kafka", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// newRateLimiter returns nil when rate limiting is off. The Redis backend falls
// back to an in-process limiter if Redis is not connected.
func newRateLimiter(cfg *config.Config, db *database.DB) ratelimit.Limiter {
	appLogger := logger.GetDefault()
	if !cfg.RateLimit.Enabled {
		appLogger.Info("Rate limiting disabled")
		return nil
	}

	limiterConfig := &ratelimit.Config{
		Enabled:        true,
		Limit:          cfg.RateLimit.PerMinute,
		WindowDuration: cfg.RateLimit.Window,
	}

	if cfg.RateLimit.Backend == "redis" && db.Redis != nil {
		appLogger.Info("Rate limiter initialized",
			slog.String("backend", "redis"),
			slog.Duration("window", limiterConfig.WindowDuration),
			slog.Int("limit", limiterConfig.Limit),
		)
		return ratelimit.NewRedisLimiter(db.Redis, limiterConfig)
	}

	appLogger.Info("Rate limiter initialized",
		slog.String("backend", "memory"),
		slog.Duration("window", limiterConfig.WindowDuration),
		slog.Int("limit", limiterConfig.Limit),
	)
	return ratelimit.NewLocalLimiter(limiterConfig)
}

func setupRouter(cfg *config.Config, appRouter *routes.Router, rateLimiter ratelimit.Limiter) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestLoggerMiddleware(), gin.Recovery(), metrics.Middleware())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.AllowAllOrigins() {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	engine.Use(cors.New(corsConfig))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter.SetupRoutes(engine)
	return engine
}
