package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"rentpolicy/internal/caching"
	"rentpolicy/internal/config"
	"rentpolicy/internal/handlers"
	"rentpolicy/internal/jobs/background"
	"rentpolicy/internal/logging"
	"rentpolicy/internal/middleware"
	"rentpolicy/internal/models"
	"rentpolicy/internal/repositories"
	"rentpolicy/internal/services"
	"rentpolicy/internal/validation"
	"rentpolicy/pkg/database"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger := logging.New("rentpolicy", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.WithError(err).Fatal("failed to apply schema")
	}

	minioClient, err := services.NewMinioClient(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize object storage")
	}
	documentSvc := services.NewDocumentService(minioClient, cfg.MinioBucket)
	if err := documentSvc.EnsureBucketExists(ctx); err != nil {
		logger.WithError(err).Warn("document bucket unavailable")
	}

	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	defer cacheSvc.Close()

	store := repositories.NewStore(pool)
	actorRepo := repositories.NewActorRepository(pool)
	activitySvc := services.NewActivityLogService(repositories.NewActivityLogRepository(pool), logger, cfg.Activity.Buffer)

	rules := services.DefaultOwnershipRules()
	rules.PrimaryMin = models.SharePercent(int64(cfg.PrimaryMinPercent))
	validator := validation.New()

	primarySvc := services.NewPrimaryService(store, activitySvc, logger)
	ownershipSvc := services.NewOwnershipService(store, services.NewOwnershipLedger(rules), validator, activitySvc, logger)
	requirements := services.NewSubmissionRequirements(documentSvc, actorRepo)
	lifecycleSvc := services.NewLifecycleService(store, primarySvc, requirements, validator, activitySvc, logger)
	tokenSvc := services.NewTokenService(actorRepo, cacheSvc, activitySvc, services.TokenConfig{
		DefaultDays: cfg.Token.DefaultExpiryDays,
		MinDays:     cfg.Token.MinExpiryDays,
		MaxDays:     cfg.Token.MaxExpiryDays,
	}, logger)

	scheduler, err := background.NewJobScheduler(tokenSvc, cfg.Token.SweepInterval, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create job scheduler")
	}
	scheduler.Start()

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(logger))

	router := &handlers.Router{
		Actors:      handlers.NewActorHandlers(lifecycleSvc, activitySvc, documentSvc, logger),
		Primary:     handlers.NewPrimaryHandlers(primarySvc, logger),
		Ownership:   handlers.NewOwnershipHandlers(ownershipSvc, logger),
		Tokens:      handlers.NewTokenHandlers(tokenSvc, logger),
		SelfService: handlers.NewSelfServiceHandlers(lifecycleSvc, logger),
		Health: handlers.NewHealthHandlers(version, map[string]handlers.Pinger{
			"database": pool,
			"redis":    cacheSvc,
		}),
		SelfServiceAuth: middleware.SelfServiceToken(tokenSvc, cacheSvc, middleware.SelfServiceConfig{
			Limit:  cfg.SelfServiceRateLimit,
			Window: cfg.SelfServiceRateWindow,
		}, logger),
	}
	router.RegisterRoutes(e)

	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "version": version}).Info("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("http shutdown failed")
	}
	if err := scheduler.Stop(); err != nil {
		logger.WithError(err).Error("scheduler shutdown failed")
	}
	if err := activitySvc.Close(shutdownCtx); err != nil {
		logger.WithError(err).Error("activity log flush failed")
	}
}
