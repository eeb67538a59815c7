package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/image-moderation-service/internal/api/http"
	"github.com/spec-kit/image-moderation-service/internal/api/http/handlers"
	"github.com/spec-kit/image-moderation-service/internal/auth"
	"github.com/spec-kit/image-moderation-service/internal/config"
	"github.com/spec-kit/image-moderation-service/internal/events"
	"github.com/spec-kit/image-moderation-service/internal/moderation"
	"github.com/spec-kit/image-moderation-service/internal/observability"
	"github.com/spec-kit/image-moderation-service/internal/persistence"
	"github.com/spec-kit/image-moderation-service/internal/repository"
	"github.com/spec-kit/image-moderation-service/internal/service"
	"github.com/spec-kit/image-moderation-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	credentialRepo := repository.NewCredentialRepository(pool)
	usageRepo := repository.NewUsageRepository(pool)

	tokenService, err := service.NewTokenService(*cfg, service.TokenDependencies{
		CredentialRepo: credentialRepo,
	})
	if err != nil {
		logger.Fatal("failed to init token service", zap.Error(err))
	}
	authMiddleware := auth.NewAuthMiddleware(tokenService.TokenManager(), credentialRepo)

	dispatcher := events.NewInMemoryDispatcher()
	usageService := service.NewUsageService(dispatcher, usageRepo, logger)
	worker.StartUsageWorker(usageService)

	classifier, err := moderation.NewRekognitionClassifier(ctx, cfg.Classifier.Region)
	if err != nil {
		logger.Fatal("failed to init classifier", zap.Error(err))
	}
	moderationService := service.NewModerationService(cfg.Classifier, classifier, dispatcher, redis.Client, logger)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.BodyLimit(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	if cfg.App.UIDir != "" {
		app.Static("/ui", cfg.App.UIDir)
	}

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	tokensHandler := handlers.NewTokensHandler(tokenService)
	moderationHandler := handlers.NewModerationHandler(moderationService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Tokens:         tokensHandler,
		Moderation:     moderationHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
