package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ITI-GP-2025/examination-service/internal/cache"
	"github.com/ITI-GP-2025/examination-service/internal/config"
	"github.com/ITI-GP-2025/examination-service/internal/handlers"
	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/repositories/postgres"
	"github.com/ITI-GP-2025/examination-service/internal/services"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
	"github.com/ITI-GP-2025/examination-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	var slogger *slog.Logger
	if cfg.Environment == "production" {
		slogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	} else {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	logger = utils.NewSlogLogger(slogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Intake{},
		&models.Branch{},
		&models.Department{},
		&models.Track{},
		&models.TrackOpening{},
		&models.Course{},
		&models.Instructor{},
		&models.InstructorBranch{},
		&models.InstructorAssignment{},
		&models.Student{},
		&models.Question{},
		&models.Choice{},
		&models.Exam{},
		&models.ExamQuestion{},
		&models.Grade{},
		&models.StudentAnswer{},
		&models.AuditLog{},
	); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, aggregates will not be cached", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, logger)
	}

	eventCfg := config.LoadEventConfig()
	publisher, err := eventCfg.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	rules := config.DefaultRules()
	serviceManager := services.NewServiceManager(repo, logger, rules, cacheService, publisher)

	auth := handlers.NewAuthMiddleware(cfg, logger)
	handlerManager := handlers.NewHandlerManager(serviceManager, auth, utils.NewValidator(), logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("Starting examination service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
