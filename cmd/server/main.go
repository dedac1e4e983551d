package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridesync/internal/api"
	"ridesync/internal/config"
	"ridesync/internal/domain"
	"ridesync/internal/events"
	"ridesync/internal/lock"
	"ridesync/internal/logging"
	"ridesync/internal/metrics"
	"ridesync/internal/push"
	"ridesync/internal/scheduler"
	"ridesync/internal/service"
	"ridesync/internal/store"
	"ridesync/internal/worker"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := store.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	st := store.New(mongoClient.Database(cfg.Mongo.Database), cfg.Collections, logger)

	locker := initLocker(ctx, cfg, logger)

	jobs, err := scheduler.NewJobClient(ctx, cfg.Google, logger)
	if err != nil {
		return fmt.Errorf("init scheduler client: %w", err)
	}

	gateway, err := push.NewClient(cfg.Google.ProjectID, cfg.Google.CredentialsFile, logger)
	if err != nil {
		return fmt.Errorf("init push client: %w", err)
	}

	eventBus := events.NewEventBus()
	subscribeEventLog(eventBus, logger)

	notifier := service.NewNotificationService(st, gateway, jobs, logger)
	reconciler := service.NewReconciler(st, st, notifier, jobs, locker, eventBus, logger)
	sweeper := service.NewSweeper(st, st, notifier, eventBus, logger)

	if cfg.Sweep.Enabled {
		location, err := time.LoadLocation(cfg.Sweep.Timezone)
		if err != nil {
			return fmt.Errorf("load sweep timezone: %w", err)
		}
		sweepWorker := worker.NewSweepWorker(sweeper, cfg.SweepInterval(), location, logger)
		go sweepWorker.Start(ctx)
	}

	httpServer := api.NewHTTPServer(cfg.Server, cfg.Monitoring, reconciler, notifier, jobs, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, _, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "server").Logger()

	return cfg, &logger, nil
}

// initLocker builds the per-booking lock: Redis when reachable, an
// in-memory fallback otherwise. Redis errors at runtime fail over
// transparently.
func initLocker(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.Locker {
	fallback := lock.NewMemoryLocker()
	if cfg.Redis.Address == "" {
		logger.Warn().Msg("Redis address not configured; reconciliation locks are process-local")
		return fallback
	}

	client := lock.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := lock.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("Redis unreachable at startup; locks start on the in-memory fallback")
	}
	return lock.NewFailoverLocker(lock.NewRedisLocker(client), fallback, logger)
}

func subscribeEventLog(bus *events.EventBus, logger *zerolog.Logger) {
	for _, eventType := range []string{
		events.EventBookingCancelled,
		events.EventBookingActivated,
		events.EventBookingConfirmationRequested,
		events.EventBookingNotConfirmed,
		events.EventBookingExpired,
	} {
		bus.Subscribe(eventType, func(event *events.Event) error {
			logger.Info().
				Str("event_type", event.Type).
				RawJSON("payload", event.Payload).
				Msg("Booking event")
			return nil
		})
	}
}
