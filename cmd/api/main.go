package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-events-api/internal/audit"
	"github.com/noah-isme/gema-events-api/internal/cache"
	"github.com/noah-isme/gema-events-api/internal/config"
	"github.com/noah-isme/gema-events-api/internal/database"
	"github.com/noah-isme/gema-events-api/internal/handler"
	"github.com/noah-isme/gema-events-api/internal/middleware"
	"github.com/noah-isme/gema-events-api/internal/models"
	"github.com/noah-isme/gema-events-api/internal/repository"
	"github.com/noah-isme/gema-events-api/internal/router"
	"github.com/noah-isme/gema-events-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var store cache.Store
	switch cfg.CacheDriver {
	case config.CacheMemory:
		store = cache.NewMemoryStore(nil)
	case config.CacheRedis:
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient)
	}

	activityService := service.NewActivityService(repository.NewActivityLogRepository(db), logger)

	hooks := audit.Hooks{
		audit.NewStamper(),
		audit.MetricsHook{},
		service.NewActivityHook(activityService),
	}

	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer conn.Drain()
		hooks = append(hooks, service.NewLifecycleHook(conn, cfg.NATSSubject, logger))
	}

	eventRepo := repository.NewEventRepository(db, hooks, logger)
	participantRepo := repository.NewGormRepository[models.Participant](db, hooks, logger)
	if store != nil {
		eventRepo = repository.NewCachedEventRepository(eventRepo, store, cfg.CacheTTL, logger)
		participantRepo = repository.NewCachedRepository[models.Participant](participantRepo, store, cfg.CacheTTL, logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	eventService := service.NewEventService(eventRepo, validate, cfg.ActivationRetries, logger)
	participantService := service.NewParticipantService(participantRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AccessLog:    cfg.AppEnv == "development",
		AllowOrigins: cfg.AllowOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		EventHandler:       handler.NewEventHandler(eventService, logger),
		ParticipantHandler: handler.NewParticipantHandler(participantService, logger),
		ActivityHandler:    handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	logger.Info().
		Str("database", cfg.DatabaseDriver).
		Str("cache", cfg.CacheDriver).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("server started")

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
