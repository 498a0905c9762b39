package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/analysis"
	"github.com/reviewlens/backend/internal/api/handlers"
	rediscache "github.com/reviewlens/backend/internal/cache/redis"
	"github.com/reviewlens/backend/internal/classifier"
	"github.com/reviewlens/backend/internal/history"
	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/internal/middleware/ratelimit"
	"github.com/reviewlens/backend/internal/middleware/security"
	"github.com/reviewlens/backend/internal/middleware/validation"
	"github.com/reviewlens/backend/internal/wordcloud"
	"github.com/reviewlens/backend/pkg/config"
	appLogger "github.com/reviewlens/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting review analyzer API server")

	metrics.Init()

	// Both classifiers are required for every request; a missing artifact
	// means the process must not serve at all.
	sentiment, err := classifier.Load(cfg.Models.Dir, classifier.AxisSentiment)
	if err != nil {
		appLogger.Fatal("Failed to load sentiment model", zap.Error(err))
	}

	authenticity, err := classifier.Load(cfg.Models.Dir, classifier.AxisAuthenticity)
	if err != nil {
		appLogger.Fatal("Failed to load authenticity model", zap.Error(err))
	}

	if dir := filepath.Dir(cfg.History.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			appLogger.Fatal("Failed to create history dir", zap.Error(err))
		}
	}
	store := history.NewStore(cfg.History.Path)

	service := analysis.NewService(sentiment, authenticity, store)

	if cfg.Redis.Addr != "" {
		cache, err := rediscache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, classification cache disabled", zap.Error(err))
		} else {
			defer cache.Close()
			service.WithCache(cache, time.Duration(cfg.Redis.TTLSec)*time.Second)
		}
	}

	clouds := wordcloud.NewEngine(store)
	hub := handlers.NewHub()
	reviewHandler := handlers.NewReviewHandler(service, store, clouds, hub)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.Server.RateLimit,
		Logger:               appLogger.Log,
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.Log,
	}))

	api := app.Group("/api/v1")

	api.Post("/reviews/analyze", reviewHandler.AnalyzeReview)
	api.Get("/reviews/history", reviewHandler.GetHistory)
	api.Get("/reviews/wordclouds", reviewHandler.GetWordClouds)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/reviews", websocket.New(hub.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
