package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"minesweeper-backend/internal/config"
	"minesweeper-backend/internal/events"
	"minesweeper-backend/internal/game"
	"minesweeper-backend/internal/handlers"
	"minesweeper-backend/internal/middleware"
	"minesweeper-backend/internal/models"
	"minesweeper-backend/internal/services"
	"minesweeper-backend/internal/viewmodel"
)

func main() {
	log := logrus.New()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	setupLogger(log, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs the rate limiter and, by default, the statistics.
	var limiter middleware.RateLimiter
	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		if cfg.StatsBackend == config.StatsBackendRedis {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.WithError(err).Warn("Redis unavailable, rate limiting disabled")
	} else {
		defer redisService.Close()
		limiter = redisService
	}

	var stats services.StatsStore
	switch cfg.StatsBackend {
	case config.StatsBackendSQLite:
		sqlStore, err := services.NewSQLStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open stats database: %v", err)
		}
		defer sqlStore.Close()
		stats = sqlStore
	default:
		stats = redisService
	}

	bus := events.NewBus()
	defer bus.Close()

	timer := game.NewTimer(cfg.TickInterval, func(elapsed int64) {
		bus.Publish(models.TimeUpdate{Time: elapsed})
	})
	defer timer.Stop()

	field := game.NewField(cfg.Board, game.NewRandomPlacer(cfg.MineSeed))
	controller := game.NewGameController(field, timer, bus, game.Options{
		Board:             cfg.Board,
		EndGameOnLastFlag: cfg.EndGameOnLastFlag,
	}, log.WithField("component", "game"))

	projector := viewmodel.NewProjector(controller)
	go projector.Run(ctx, bus.Subscribe(ctx))
	go services.NewStatsRecorder(stats, log.WithField("component", "stats")).Run(ctx, bus.Subscribe(ctx))
	go services.NewEventLogger(log.WithField("component", "events")).Run(ctx, bus.Subscribe(ctx))

	jwtService := services.NewJWTService(cfg)

	wsHandler := handlers.NewWebSocketHandler(projector, bus, log.WithField("component", "ws"))
	go services.ForwardEvents(ctx, bus.Subscribe(ctx), wsHandler)

	sessionHandler := handlers.NewSessionHandler(jwtService, log)
	gameHandler := handlers.NewGameHandler(controller, projector, bus, stats, cfg.AdjustFieldToView, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/session", sessionHandler.CreateSession)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(limiter, cfg.ActionsPerMinute, log))
	{
		protected.GET("/me", sessionHandler.GetCurrentPlayer)
		protected.GET("/ws", wsHandler.HandleWebSocket)

		games := protected.Group("/game")
		{
			games.POST("/click", gameHandler.Click)
			games.POST("/flag", gameHandler.Flag)
			games.POST("/chord", gameHandler.Chord)
			games.POST("/reset", gameHandler.Reset)
			games.POST("/pause", gameHandler.Pause)
			games.POST("/resume", gameHandler.Resume)
			games.GET("/state", gameHandler.GetState)
			games.GET("/config", gameHandler.GetConfig)
			games.GET("/stats", gameHandler.GetStats)
			games.DELETE("/stats", gameHandler.ResetStats)
		}
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Server shutdown failed")
		}
	}()

	log.WithFields(logrus.Fields{
		"port":  cfg.Port,
		"board": cfg.Board,
		"stats": cfg.StatsBackend,
	}).Info("Server starting")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Info("Server stopped")
}

func setupLogger(log *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"player":  c.GetString(middleware.KeyPlayerID),
		}).Debug("request")
	}
}
