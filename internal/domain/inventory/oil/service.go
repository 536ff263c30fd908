package oil

import (
	"context"
	"fmt"
	"time"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/tx"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/inventory/ledger"
	"fleettrack/pkg/logger"
)

const initialStockNote = "initial stock"

// Service provides oil inventory operations on top of the ledger engine.
type Service struct {
	repo      Repository
	engine    *ledger.Engine
	txManager tx.Manager
	recorder  ledger.Recorder
}

// NewService creates the oil inventory service. The engine must be built on
// the same repository and transaction manager.
func NewService(repo Repository, engine *ledger.Engine, txManager tx.Manager, recorder ledger.Recorder) *Service {
	if recorder == nil {
		recorder = ledger.NopRecorder{}
	}
	return &Service{
		repo:      repo,
		engine:    engine,
		txManager: txManager,
		recorder:  recorder,
	}
}

// CreateStockInput holds the descriptor fields for a new oil stock.
type CreateStockInput struct {
	OilType         string
	Brand           string
	Location        string
	InitialQuantity types.Quantity
	UserID          *id.ID
}

// CreateStock inserts a stock descriptor and, when the starting quantity is
// positive, seeds the ledger with a synthetic INTRARE so the movement log
// accounts for every nonzero balance the stock ever had.
func (s *Service) CreateStock(ctx context.Context, orgID id.ID, in CreateStockInput) (*Stock, error) {
	stock := NewStock(orgID, in.OilType, in.Brand, in.Location)
	if err := stock.Validate(ctx); err != nil {
		return nil, err
	}
	if in.InitialQuantity.IsNegative() {
		return nil, apperror.NewValidation("initial quantity cannot be negative").
			WithDetail("field", "initialQuantity")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateStock(ctx, stock); err != nil {
			return fmt.Errorf("create oil stock: %w", err)
		}

		if err := s.recorder.Record(ctx, ledger.RecordedEvent{
			EntityType: "oil_stock",
			EntityID:   stock.ID,
			Action:     "create",
			Payload: map[string]any{
				"oil_type": stock.OilType,
				"brand":    stock.Brand,
			},
		}); err != nil {
			return fmt.Errorf("record oil stock creation: %w", err)
		}

		if in.InitialQuantity.IsPositive() {
			note := initialStockNote
			snap, err := s.engine.ApplyMovement(ctx, ledger.ApplyInput{
				OrgID:     orgID,
				StockID:   stock.ID,
				Type:      ledger.TypeIntrare,
				Magnitude: in.InitialQuantity,
				Attribution: ledger.Attribution{
					Notes:  &note,
					UserID: in.UserID,
				},
			})
			if err != nil {
				return err
			}
			stock.Quantity = snap.Quantity
			stock.UpdatedAt = snap.UpdatedAt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "oil stock created",
		"stock_id", stock.ID,
		"oil_type", stock.OilType,
		"brand", stock.Brand,
	)
	return stock, nil
}

// UpdateStockInput holds the mutable descriptive fields.
type UpdateStockInput struct {
	OilType  string
	Brand    string
	Location string
}

// UpdateStock changes descriptive fields only. The balance is never written
// here; all quantity changes go through the ledger engine.
func (s *Service) UpdateStock(ctx context.Context, orgID, stockID id.ID, in UpdateStockInput) (*Stock, error) {
	stock, err := s.repo.GetStock(ctx, orgID, stockID)
	if err != nil {
		return nil, err
	}

	stock.OilType = in.OilType
	stock.Brand = in.Brand
	stock.Location = in.Location
	if err := stock.Validate(ctx); err != nil {
		return nil, err
	}
	stock.Touch()
	stock.UpdatedAt = time.Now().UTC()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.UpdateStock(ctx, stock)
	})
	if err != nil {
		return nil, fmt.Errorf("update oil stock: %w", err)
	}
	return stock, nil
}

// DeleteStock removes a stock descriptor. Deletion requires a zero balance,
// the same guard the tire service applies.
func (s *Service) DeleteStock(ctx context.Context, orgID, stockID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		stock, err := s.repo.GetStock(ctx, orgID, stockID)
		if err != nil {
			return err
		}
		if !stock.Quantity.IsZero() {
			return apperror.NewStockInUse(stockID.String()).
				WithDetail("available", ledger.Oil().Format(stock.Quantity))
		}

		if err := s.repo.DeleteStock(ctx, orgID, stockID); err != nil {
			return fmt.Errorf("delete oil stock: %w", err)
		}

		return s.recorder.Record(ctx, ledger.RecordedEvent{
			EntityType: "oil_stock",
			EntityID:   stockID,
			Action:     "delete",
			Payload:    map[string]any{"oil_type": stock.OilType, "brand": stock.Brand},
		})
	})
}

// AdjustInput describes a manual stock correction.
type AdjustInput struct {
	Type     ledger.MovementType // INTRARE or IESIRE
	Quantity types.Quantity
	Date     time.Time
	Notes    *string
	UserID   *id.ID
}

// AdjustStock applies a manual correction: restocking (INTRARE) or a
// write-off (IESIRE). No vehicle attribution.
func (s *Service) AdjustStock(ctx context.Context, orgID, stockID id.ID, in AdjustInput) (ledger.Snapshot, error) {
	if in.Type != ledger.TypeIntrare && in.Type != ledger.TypeIesire {
		return ledger.Snapshot{}, apperror.NewValidation("adjustment type must be INTRARE or IESIRE").
			WithDetail("type", string(in.Type))
	}

	return s.engine.ApplyMovement(ctx, ledger.ApplyInput{
		OrgID:     orgID,
		StockID:   stockID,
		Type:      in.Type,
		Magnitude: in.Quantity,
		Date:      in.Date,
		Attribution: ledger.Attribution{
			Notes:  in.Notes,
			UserID: in.UserID,
		},
	})
}

// UsageInput describes oil consumed during a service event.
type UsageInput struct {
	StockID        id.ID
	VehicleID      id.ID
	ServiceEventID *id.ID
	Quantity       types.Quantity
	Date           time.Time
	OdometerKm     *types.Km
	Notes          *string
	UserID         *id.ID
}

// RecordUsage applies an UTILIZARE movement tied to a vehicle, so the
// consumption shows up in that vehicle's usage history.
func (s *Service) RecordUsage(ctx context.Context, orgID id.ID, in UsageInput) (ledger.Snapshot, error) {
	if id.IsNil(in.VehicleID) {
		return ledger.Snapshot{}, apperror.NewValidation("vehicle is required for oil usage").
			WithDetail("field", "vehicleId")
	}

	vehicleID := in.VehicleID
	return s.engine.ApplyMovement(ctx, ledger.ApplyInput{
		OrgID:     orgID,
		StockID:   in.StockID,
		Type:      ledger.TypeUtilizare,
		Magnitude: in.Quantity,
		Date:      in.Date,
		Attribution: ledger.Attribution{
			VehicleID:      &vehicleID,
			ServiceEventID: in.ServiceEventID,
			OdometerKm:     in.OdometerKm,
			Notes:          in.Notes,
			UserID:         in.UserID,
		},
	})
}

// --- Read paths ---

// GetStock returns one stock descriptor.
func (s *Service) GetStock(ctx context.Context, orgID, stockID id.ID) (*Stock, error) {
	return s.repo.GetStock(ctx, orgID, stockID)
}

// ListStock returns the organization's oil stock, sorted by type then brand.
func (s *Service) ListStock(ctx context.Context, orgID id.ID) ([]Stock, error) {
	return s.repo.ListStock(ctx, orgID)
}

// ListStockMovements returns one stock's movement history, most recent first.
func (s *Service) ListStockMovements(ctx context.Context, orgID, stockID id.ID) ([]MovementRow, error) {
	// Existence check keeps unknown ids a NotFound rather than an empty list.
	if _, err := s.repo.GetStock(ctx, orgID, stockID); err != nil {
		return nil, err
	}
	return s.repo.ListStockMovements(ctx, orgID, stockID)
}

// ListVehicleUsage returns a vehicle's UTILIZARE history.
func (s *Service) ListVehicleUsage(ctx context.Context, orgID, vehicleID id.ID) ([]MovementRow, error) {
	return s.repo.ListVehicleUsage(ctx, orgID, vehicleID)
}

// ListMovements returns the organization-wide oil movement history.
func (s *Service) ListMovements(ctx context.Context, orgID id.ID) ([]MovementRow, error) {
	return s.repo.ListMovements(ctx, orgID)
}
