package vehicle

import (
	"context"
	"fmt"
	"time"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/tx"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain"
	"fleettrack/pkg/logger"
)

// Service provides business logic for vehicles and their odometer log.
type Service struct {
	*domain.CatalogService[*Vehicle]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Vehicle service. Status is refreshed before
// every create and update, so the denormalized column never lags the
// classifier inputs.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Vehicle]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "vehicle",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		txManager:      txManager,
	}

	refresh := func(ctx context.Context, v *Vehicle) error {
		v.Code = NormalizePlate(v.Code)
		v.Refresh(time.Now().UTC())
		v.UpdatedAt = time.Now().UTC()
		return nil
	}
	svc.Hooks().On(domain.BeforeCreate, refresh)
	svc.Hooks().On(domain.BeforeUpdate, refresh)

	return svc
}

// RecalculateStatus recomputes and persists the denormalized status.
// Called after any event that can change the underlying date or km inputs.
func (s *Service) RecalculateStatus(ctx context.Context, orgID, vehicleID id.ID) error {
	v, err := s.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if v.OrgID != orgID {
		return apperror.NewNotFound("vehicle", vehicleID.String())
	}

	level := v.Status
	v.Refresh(time.Now().UTC())
	if v.Status == level {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, vehicleID, v.Status); err != nil {
		return fmt.Errorf("update vehicle status: %w", err)
	}
	logger.Debug(ctx, "vehicle status recalculated",
		"vehicle_id", vehicleID,
		"from", level,
		"to", v.Status,
	)
	return nil
}

// RecordReadingInput describes one odometer entry.
type RecordReadingInput struct {
	Km     types.Km
	ReadAt time.Time
	Notes  *string
	UserID *id.ID
}

// RecordReading appends an odometer reading, enforcing monotonicity:
// a reading below the vehicle's current km is a rollback and rejected.
// The vehicle's current km and status refresh in the same transaction.
func (s *Service) RecordReading(ctx context.Context, orgID, vehicleID id.ID, in RecordReadingInput) (*OdometerReading, error) {
	if in.Km.IsNegative() {
		return nil, apperror.NewValidation("odometer reading cannot be negative").
			WithDetail("field", "km")
	}

	var reading *OdometerReading
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		v, err := s.GetByID(ctx, vehicleID)
		if err != nil {
			return err
		}
		if v.OrgID != orgID {
			return apperror.NewNotFound("vehicle", vehicleID.String())
		}

		if in.Km.Less(v.CurrentKm) {
			return apperror.NewOdometerRollback(vehicleID.String(), in.Km.Int64(), v.CurrentKm.Int64())
		}

		readAt := in.ReadAt
		if readAt.IsZero() {
			readAt = time.Now().UTC()
		}
		reading = &OdometerReading{
			ID:        id.New(),
			OrgID:     orgID,
			VehicleID: vehicleID,
			Km:        in.Km,
			ReadAt:    readAt,
			Notes:     in.Notes,
			UserID:    in.UserID,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repo.InsertReading(ctx, reading); err != nil {
			return fmt.Errorf("insert odometer reading: %w", err)
		}

		v.CurrentKm = in.Km
		v.Refresh(time.Now().UTC())
		v.Touch()
		v.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, v); err != nil {
			return fmt.Errorf("update vehicle km: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reading, nil
}

// ListReadings returns a vehicle's odometer log, most recent first.
func (s *Service) ListReadings(ctx context.Context, orgID, vehicleID id.ID, limit int) ([]OdometerReading, error) {
	if limit <= 0 {
		limit = 50
	}
	v, err := s.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if v.OrgID != orgID {
		return nil, apperror.NewNotFound("vehicle", vehicleID.String())
	}
	return s.repo.ListReadings(ctx, orgID, vehicleID, limit)
}
