package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/itops-service/internal/api/http"
	"github.com/spec-kit/itops-service/internal/api/http/handlers"
	"github.com/spec-kit/itops-service/internal/audit"
	"github.com/spec-kit/itops-service/internal/auth"
	"github.com/spec-kit/itops-service/internal/command"
	"github.com/spec-kit/itops-service/internal/config"
	"github.com/spec-kit/itops-service/internal/events"
	"github.com/spec-kit/itops-service/internal/notify"
	"github.com/spec-kit/itops-service/internal/observability"
	"github.com/spec-kit/itops-service/internal/persistence"
	"github.com/spec-kit/itops-service/internal/repository"
	"github.com/spec-kit/itops-service/internal/repository/memory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	var store repository.Store
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		store = memory.NewStore()
	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		store = repository.NewPostgresStore(pg.Pool)
	}

	readiness := map[string]handlers.Pinger{"store": store}
	var redis *persistence.Redis
	if cfg.Redis.Enabled {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		readiness["redis"] = redis
	}

	dispatcher := events.NewDispatcher(logger.Named("events"), metrics)
	audit.NewActivityLogger(store.ActivityLog()).Register(dispatcher)
	audit.NewStatusHistoryWriter(store.StatusHistory()).Register(dispatcher)
	if cfg.Events.PublishToRedis {
		audit.NewRedisPublisher(redis, cfg.Events.ChannelPrefix).Register(dispatcher)
	}
	if cfg.Notify.Enabled {
		notify.NewNotifier(cfg.Notify, logger.Named("notify")).Register(dispatcher)
	}

	deps := command.Dependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Hasher:     auth.BcryptHasher{Cost: cfg.Auth.BcryptCost},
		Logger:     logger.Named("command"),
		Metrics:    metrics,
	}
	if cfg.Idempotency.Enabled {
		deps.Idempotency = redis
		deps.IdempotencyTTL = cfg.Idempotency.TTL()
	}
	exec := command.NewExecutor(deps)

	if err := bootstrapAdmin(ctx, exec, cfg.Auth, logger); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	directory := auth.NewStoreDirectory(store)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Users:          handlers.NewUsersHandler(exec),
		Tickets:        handlers.NewTicketsHandler(exec),
		Assets:         handlers.NewAssetsHandler(exec),
		Projects:       handlers.NewProjectsHandler(exec),
		Activity:       handlers.NewActivityHandler(exec),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, directory),
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
