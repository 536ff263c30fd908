package serviceevent

import (
	"context"
	"fmt"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/tx"
	"fleettrack/internal/domain/catalogs/vehicle"
	"fleettrack/pkg/logger"
)

const numberPrefix = "SE"

const defaultListLimit = 50

// NumberSource hands out sequential document numbers per organization.
type NumberSource interface {
	Next(ctx context.Context, orgID id.ID, prefix string) (string, error)
}

// Vehicles is the slice of the vehicle catalog the service needs.
type Vehicles interface {
	GetByID(ctx context.Context, vehicleID id.ID) (*vehicle.Vehicle, error)
}

// Service provides business logic for service events.
type Service struct {
	repo      Repository
	vehicles  Vehicles
	numbers   NumberSource
	txManager tx.Manager
}

// NewService creates a new service-event service.
func NewService(repo Repository, vehicles Vehicles, numbers NumberSource, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		vehicles:  vehicles,
		numbers:   numbers,
		txManager: txManager,
	}
}

// Create validates the event, assigns its SE number and persists it.
func (s *Service) Create(ctx context.Context, event *Event) error {
	if err := event.Validate(ctx); err != nil {
		return err
	}

	v, err := s.vehicles.GetByID(ctx, event.VehicleID)
	if err != nil {
		return err
	}
	if v.OrgID != event.OrgID {
		return apperror.NewNotFound("vehicle", event.VehicleID.String())
	}

	number, err := s.numbers.Next(ctx, event.OrgID, numberPrefix)
	if err != nil {
		return fmt.Errorf("assign event number: %w", err)
	}
	event.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, event)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "service event created",
		"event_id", event.ID,
		"number", event.Number,
		"vehicle_id", event.VehicleID,
		"type", event.EventType,
	)
	return nil
}

// GetByID returns one event.
func (s *Service) GetByID(ctx context.Context, orgID, eventID id.ID) (*Event, error) {
	return s.repo.GetByID(ctx, orgID, eventID)
}

// List returns events, optionally narrowed to one vehicle, newest-first.
func (s *Service) List(ctx context.Context, orgID id.ID, f ListFilter) ([]Event, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.VehicleID != nil {
		v, err := s.vehicles.GetByID(ctx, *f.VehicleID)
		if err != nil {
			return nil, err
		}
		if v.OrgID != orgID {
			return nil, apperror.NewNotFound("vehicle", f.VehicleID.String())
		}
	}
	return s.repo.List(ctx, orgID, f)
}

// Delete removes an event. Events referenced by oil usage movements
// stay: the ledger history must keep pointing at a real record.
func (s *Service) Delete(ctx context.Context, orgID, eventID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		event, err := s.repo.GetByID(ctx, orgID, eventID)
		if err != nil {
			return err
		}

		linked, err := s.repo.CountLinkedMovements(ctx, eventID)
		if err != nil {
			return fmt.Errorf("count linked movements: %w", err)
		}
		if linked > 0 {
			return apperror.NewConflict("service event has linked oil usage and cannot be deleted").
				WithDetail("event_id", eventID.String()).
				WithDetail("linked_movements", linked)
		}

		if err := s.repo.Delete(ctx, orgID, eventID); err != nil {
			return err
		}

		logger.Info(ctx, "service event deleted",
			"event_id", eventID,
			"number", event.Number,
		)
		return nil
	})
}
