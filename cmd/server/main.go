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

	"github.com/shelfwise/quiz-service/internal/backend"
	"github.com/shelfwise/quiz-service/internal/backend/resthttp"
	"github.com/shelfwise/quiz-service/internal/cache"
	"github.com/shelfwise/quiz-service/internal/config"
	"github.com/shelfwise/quiz-service/internal/handlers"
	"github.com/shelfwise/quiz-service/internal/repositories/postgres"
	"github.com/shelfwise/quiz-service/internal/services"
	"github.com/shelfwise/quiz-service/internal/sessions"
	"github.com/shelfwise/quiz-service/internal/utils"
	"github.com/shelfwise/quiz-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	client, cleanup, err := buildBackendClient(cfg, logger)
	if err != nil {
		logger.Error("Failed to build backend client", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	sessionManager := sessions.NewManager(client, slogger)
	defer sessionManager.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(client, sessionManager, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "backend_mode", cfg.BackendMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}

// buildBackendClient wires the storage side per BACKEND_MODE: the in-house
// postgres-backed services, or a resthttp client against an upstream API.
// The returned cleanup releases whatever the chosen mode opened.
func buildBackendClient(cfg *config.Config, logger utils.Logger) (backend.Client, func(), error) {
	if cfg.BackendMode == "rest" {
		logger.Info("Using upstream REST backend", "upstream_url", cfg.UpstreamURL)
		return resthttp.New(cfg.UpstreamURL), func() {}, nil
	}

	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, quiz cache disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, slogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return nil, nil, err
	}

	repo := postgres.NewRepository(db)
	quizService := services.NewQuizService(repo, cacheService, cfg.QuizCacheTTL, slogger)
	attemptService := services.NewAttemptService(repo, slogger, utils.NewValidator(), publisher)

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher", "error", err)
		}
		if redisClient != nil {
			redisClient.Close()
		}
	}
	return services.NewLocalClient(quizService, attemptService), cleanup, nil
}
