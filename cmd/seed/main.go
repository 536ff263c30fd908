// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	appctx "fleettrack/internal/core/context"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/infrastructure/storage/postgres"
	"fleettrack/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	orgID, err := seedOrganization(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed organization", "error", err)
	}

	adminID, err := seedAdminUser(ctx, pool, log, orgID)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log, orgID, adminID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedOrganization(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	orgCode := getEnv("ORG_CODE", "FLEET-001")
	orgName := getEnv("ORG_NAME", "Transport Demo SRL")

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM cat_organizations WHERE code = $1 AND NOT deletion_mark`,
		orgCode,
	).Scan(&existingID)
	if err == nil {
		log.Infow("organization already exists", "code", orgCode, "org_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check organization exists: %w", err)
	}

	orgID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO cat_organizations (id, code, name, active, version, deletion_mark)
		VALUES ($1, $2, $3, true, 1, false)
	`, orgID, orgCode, orgName)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert organization: %w", err)
	}

	log.Infow("organization created", "code", orgCode, "org_id", orgID)
	return orgID, nil
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger, orgID id.ID) (id.ID, error) {
	adminEmail := getEnv("ADMIN_EMAIL", "admin@fleettrack.local")
	adminPassword := getEnv("ADMIN_PASSWORD", "Admin123!")

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM sys_users WHERE email = $1`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO sys_users (
			id, org_id, email, password_hash, full_name,
			is_active, is_admin, failed_login_attempts, version
		)
		VALUES ($1, $2, $3, $4, 'Fleet Admin', true, true, 0, 1)
	`, userID, orgID, adminEmail, string(passwordHash))
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID)
	return userID, nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, orgID, adminID id.ID) error {
	log.Info("seeding demo data...")

	// 1. Vehicles
	vehicles := []struct {
		plate string
		make  string
		model string
		km    int64
	}{
		{"B-101-TRK", "DAF", "XF 480", 412_350},
		{"B-102-TRK", "MAN", "TGX 18.500", 287_040},
		{"B-103-TRK", "Volvo", "FH 460", 95_600},
		{"CT-07-VAN", "Ford", "Transit", 154_220},
	}

	vehicleIDs := make([]id.ID, 0, len(vehicles))
	for _, v := range vehicles {
		vid := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_vehicles (
				id, org_id, code, name, make, model, current_km,
				status, version, deletion_mark
			)
			VALUES ($1, $2, $3, $3, $4, $5, $6, 'missing', 1, false)
			ON CONFLICT (org_id, code) WHERE deletion_mark = FALSE DO NOTHING
		`, vid, orgID, v.plate, v.make, v.model, v.km)
		if err != nil {
			log.Warnw("failed to seed vehicle", "plate", v.plate, "error", err)
			continue
		}
		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_vehicles
				WHERE org_id = $1 AND code = $2 AND deletion_mark = FALSE
			`, orgID, v.plate).Scan(&vid)
			if err != nil {
				log.Warnw("failed to fetch existing vehicle", "plate", v.plate, "error", err)
				continue
			}
		}
		vehicleIDs = append(vehicleIDs, vid)
	}

	// 2. Oil stocks
	oils := []struct {
		oilType  string
		brand    string
		location string
		quantity string
	}{
		{"10W-40", "Castrol", "depot A", "180.00"},
		{"5W-30", "Shell", "depot A", "95.50"},
		{"15W-40", "Total", "depot B", "60.00"},
	}

	for _, o := range oils {
		qty, err := types.NewQuantityFromString(o.quantity)
		if err != nil {
			return fmt.Errorf("parse oil quantity: %w", err)
		}
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO oil_stock (id, org_id, oil_type, brand, location, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING
		`, id.New(), orgID, o.oilType, o.brand, o.location, qty)
		if err != nil {
			log.Warnw("failed to seed oil stock", "oil_type", o.oilType, "error", err)
		}
	}

	// 3. Tire stocks
	tires := []struct {
		brand     string
		model     string
		dimension string
		dot       string
		quantity  int64
	}{
		{"Michelin", "X Multi Z", "315/70R22.5", "2325", 12},
		{"Continental", "Conti Hybrid HD3", "315/70R22.5", "1824", 8},
		{"Hankook", "AL10+", "385/65R22.5", "3624", 6},
	}

	for _, t := range tires {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO tire_stock (id, org_id, brand, model, dimension, dot_code, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT DO NOTHING
		`, id.New(), orgID, t.brand, t.model, t.dimension, t.dot, t.quantity)
		if err != nil {
			log.Warnw("failed to seed tire stock", "brand", t.brand, "error", err)
		}
	}

	// 4. Odometer history, bulk-loaded via COPY. One reading per week for
	// half a year per vehicle keeps the status classifier and usage charts
	// non-trivial out of the box.
	if len(vehicleIDs) > 0 {
		txManager := postgres.NewTxManager(pool)
		inserter := postgres.NewBatchInserter(txManager)

		seedCtx := appctx.WithOrgID(ctx, orgID.String())
		err := txManager.RunInTransaction(seedCtx, func(txCtx context.Context) error {
			columns := []string{"id", "org_id", "vehicle_id", "km", "read_at", "user_id"}

			var rows [][]any
			now := time.Now().UTC()
			for i, vid := range vehicleIDs {
				base := vehicles[i].km - 26*700
				for week := 0; week < 26; week++ {
					rows = append(rows, []any{
						id.New(),
						orgID,
						vid,
						base + int64(week)*700,
						now.AddDate(0, 0, -7*(26-week)),
						adminID,
					})
				}
			}

			inserted, err := inserter.CopyFromSlice(txCtx, "odometer_readings", columns, rows)
			if err != nil {
				return err
			}
			log.Infow("odometer history loaded", "rows", inserted)
			return nil
		})
		if err != nil {
			log.Warnw("failed to bulk-load odometer history", "error", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
