// Package main is the entry point for the fleettrack API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleettrack/internal/domain/auth"
	"fleettrack/internal/domain/catalogs/organization"
	"fleettrack/internal/domain/catalogs/vehicle"
	"fleettrack/internal/domain/inventory/ledger"
	"fleettrack/internal/domain/inventory/oil"
	"fleettrack/internal/domain/inventory/tire"
	"fleettrack/internal/domain/reminders"
	"fleettrack/internal/domain/serviceevent"
	v1 "fleettrack/internal/infrastructure/http/v1"
	"fleettrack/internal/infrastructure/storage/postgres"
	"fleettrack/internal/infrastructure/storage/postgres/auth_repo"
	"fleettrack/internal/infrastructure/storage/postgres/catalog_repo"
	"fleettrack/internal/infrastructure/storage/postgres/inventory_repo"
	"fleettrack/internal/infrastructure/storage/postgres/reminder_repo"
	"fleettrack/internal/infrastructure/storage/postgres/serviceevent_repo"
	"fleettrack/pkg/logger"
	"fleettrack/pkg/numerator"
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

	ctx := context.Background()
	log.Info("starting fleettrack server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Audit trail and outbox ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	outbox := postgres.NewOutboxPublisher(txManager)
	recorder := postgres.NewLedgerRecorder(auditService, outbox)

	// --- Repositories ---
	orgRepo := catalog_repo.NewOrganizationRepo(pool)
	vehicleRepo := catalog_repo.NewVehicleRepo(pool)
	oilRepo := inventory_repo.NewOilRepo(pool)
	tireRepo := inventory_repo.NewTireRepo(pool)
	eventRepo := serviceevent_repo.NewRepo(pool)
	reminderRepo := reminder_repo.NewRepo(pool)
	userRepo := auth_repo.NewUserRepo(pool)

	// --- Services ---
	orgService := organization.NewService(orgRepo, txManager)
	vehicleService := vehicle.NewService(vehicleRepo, txManager)

	oilEngine := ledger.NewEngine(ledger.Oil(), oilRepo, txManager)
	tireEngine := ledger.NewEngine(ledger.Tire(), tireRepo, txManager)
	oilService := oil.NewService(oilRepo, oilEngine, txManager, recorder)
	tireService := tire.NewService(tireRepo, tireEngine, txManager, recorder)

	numbers := numerator.New(pool.Pool)
	eventService := serviceevent.NewService(eventRepo, vehicleService, numbers, txManager)

	reminderService, err := reminders.NewService(reminderRepo, vehicleRepo, txManager)
	if err != nil {
		log.Fatalw("failed to initialize reminder service", "error", err)
	}

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	authService := auth.NewService(userRepo, txManager, jwtService, auth.DefaultServiceConfig())

	// --- Idempotency ---
	var idempotencyStore *postgres.IdempotencyStore
	if getEnv("IDEMPOTENCY_ENABLED", "true") == "true" {
		ttl := getEnvDuration("IDEMPOTENCY_TTL", 10*time.Minute)
		idempotencyStore = postgres.NewIdempotencyStore(pool, txManager, ttl)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:                pool,
		Logger:              log,
		JWTValidator:        jwtService,
		AuthService:         authService,
		OrganizationService: orgService,
		VehicleService:      vehicleService,
		OilService:          oilService,
		TireService:         tireService,
		ServiceEventService: eventService,
		ReminderService:     reminderService,
		IdempotencyStore:    idempotencyStore,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
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
