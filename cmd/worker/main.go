// Package main is the entry point for the fleettrack background worker.
// It relays outbox messages, refreshes vehicle statuses and sweeps
// reminder rules.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	appctx "fleettrack/internal/core/context"
	"fleettrack/internal/domain/catalogs/vehicle"
	"fleettrack/internal/domain/reminders"
	"fleettrack/internal/infrastructure/storage/postgres"
	"fleettrack/internal/infrastructure/storage/postgres/catalog_repo"
	"fleettrack/internal/infrastructure/storage/postgres/reminder_repo"
	"fleettrack/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting fleettrack worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	orgRepo := catalog_repo.NewOrganizationRepo(pool)
	vehicleRepo := catalog_repo.NewVehicleRepo(pool)
	vehicleService := vehicle.NewService(vehicleRepo, txManager)

	reminderService, err := reminders.NewService(reminder_repo.NewRepo(pool), vehicleRepo, txManager)
	if err != nil {
		log.Fatalw("failed to initialize reminder service", "error", err)
	}

	worker := &Worker{
		log:       log.WithComponent("worker"),
		pool:      pool,
		orgs:      orgRepo,
		vehicles:  vehicleService,
		fleet:     vehicleRepo,
		reminders: reminderService,
		relay: postgres.NewOutboxRelay(
			pool.Pool,
			getEnvInt("OUTBOX_BATCH_SIZE", 100),
			&logHandler{log: log.WithComponent("outbox")},
		),
		sweepInterval: getEnvDuration("SWEEP_INTERVAL", 15*time.Minute),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the periodic jobs sharing one database pool.
type Worker struct {
	log       *logger.Logger
	pool      *postgres.Pool
	orgs      *catalog_repo.OrganizationRepo
	vehicles  *vehicle.Service
	fleet     *catalog_repo.VehicleRepo
	reminders *reminders.Service
	relay     *postgres.OutboxRelay

	sweepInterval time.Duration
}

// Run processes the outbox continuously and sweeps statuses and reminders
// on a slower cadence until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	outboxTicker := time.NewTicker(500 * time.Millisecond)
	defer outboxTicker.Stop()

	sweepTicker := time.NewTicker(w.sweepInterval)
	defer sweepTicker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	// Run one sweep at startup so a long-idle fleet does not wait a full
	// interval for fresh statuses.
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-outboxTicker.C:
			w.processOutbox(ctx)
		case <-sweepTicker.C:
			w.sweep(ctx)
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	processed, err := w.relay.ProcessBatch(ctx)
	if err != nil {
		w.log.Errorw("outbox batch failed", "error", err)
		return
	}
	if processed > 0 {
		w.log.Debugw("processed outbox batch", "count", processed)
	}
}

// sweep refreshes every vehicle's status and evaluates reminder rules,
// one organization scope at a time.
func (w *Worker) sweep(ctx context.Context) {
	orgs, err := w.orgs.ListActive(ctx)
	if err != nil {
		w.log.Errorw("failed to list organizations", "error", err)
		return
	}

	for _, org := range orgs {
		if ctx.Err() != nil {
			return
		}

		orgCtx := appctx.WithOrgID(ctx, org.ID.String())

		fleet, err := w.fleet.ListByOrg(orgCtx, org.ID)
		if err != nil {
			w.log.Errorw("failed to list vehicles", "org_id", org.ID, "error", err)
			continue
		}
		for _, v := range fleet {
			if err := w.vehicles.RecalculateStatus(orgCtx, org.ID, v.ID); err != nil {
				w.log.Errorw("status refresh failed",
					"org_id", org.ID, "vehicle_id", v.ID, "error", err)
			}
		}

		fired, err := w.reminders.Sweep(orgCtx, org.ID)
		if err != nil {
			w.log.Errorw("reminder sweep failed", "org_id", org.ID, "error", err)
			continue
		}
		if fired > 0 {
			w.log.Infow("reminder sweep fired", "org_id", org.ID, "count", fired)
		}
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	result, err := w.pool.Exec(ctx, `
		DELETE FROM sys_idempotency
		WHERE created_at < NOW() - INTERVAL '24 hours'
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", result.RowsAffected())
	}
}

// logHandler acknowledges outbox messages by logging them. Swap in a broker
// publisher here once one is deployed.
type logHandler struct {
	log *logger.Logger
}

func (h *logHandler) Handle(_ context.Context, msg *postgres.OutboxMessage) error {
	h.log.Infow("event published",
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
	)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
