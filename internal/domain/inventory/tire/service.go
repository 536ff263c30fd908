package tire

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

// Feed limits for the organization-wide movement list.
const (
	defaultFeedLimit = 50
	maxFeedLimit     = 100
)

// Service provides tire inventory operations on top of the ledger engine,
// including mount/unmount tracking and movement reversal.
type Service struct {
	repo      Repository
	engine    *ledger.Engine
	txManager tx.Manager
	recorder  ledger.Recorder
}

// NewService creates the tire inventory service. The engine must be built on
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

// CreateStockInput holds the descriptor fields for a new tire stock.
// Blank descriptive fields are accepted and normalized to "N/A".
type CreateStockInput struct {
	Brand           string
	Model           string
	Dimension       string
	DOTCode         string
	Location        string
	InitialQuantity types.Quantity
	UserID          *id.ID
}

// CreateStock inserts a stock descriptor, seeding the ledger with an
// INTRARE when the starting quantity is positive.
func (s *Service) CreateStock(ctx context.Context, orgID id.ID, in CreateStockInput) (*Stock, error) {
	if in.InitialQuantity.IsNegative() {
		return nil, apperror.NewValidation("initial quantity cannot be negative").
			WithDetail("field", "initialQuantity")
	}
	if in.InitialQuantity.IsPositive() {
		if err := ledger.Tire().ValidateMagnitude(in.InitialQuantity); err != nil {
			return nil, err
		}
	}

	stock := NewStock(orgID, in.Brand, in.Model, in.Dimension, in.DOTCode, in.Location)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateStock(ctx, stock); err != nil {
			return fmt.Errorf("create tire stock: %w", err)
		}

		if err := s.recorder.Record(ctx, ledger.RecordedEvent{
			EntityType: "tire_stock",
			EntityID:   stock.ID,
			Action:     "create",
			Payload: map[string]any{
				"brand":     stock.Brand,
				"model":     stock.Model,
				"dimension": stock.Dimension,
			},
		}); err != nil {
			return fmt.Errorf("record tire stock creation: %w", err)
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

	logger.Info(ctx, "tire stock created",
		"stock_id", stock.ID,
		"brand", stock.Brand,
		"dimension", stock.Dimension,
	)
	return stock, nil
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
// write-off (IESIRE).
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

// MountInput describes tires leaving the warehouse onto a vehicle, or
// coming back off one.
type MountInput struct {
	VehicleID  id.ID
	StockID    id.ID
	Quantity   types.Quantity
	Date       time.Time
	OdometerKm *types.Km
	DriverName *string
	Notes      *string
	UserID     *id.ID
}

// MountTires applies a MONTARE movement: available stock decreases because
// the tires go onto the vehicle.
func (s *Service) MountTires(ctx context.Context, orgID id.ID, in MountInput) (ledger.Snapshot, error) {
	return s.applyVehicleMovement(ctx, orgID, ledger.TypeMontare, in)
}

// UnmountTires applies a DEMONTARE movement: the removed tires return to
// available stock.
func (s *Service) UnmountTires(ctx context.Context, orgID id.ID, in MountInput) (ledger.Snapshot, error) {
	return s.applyVehicleMovement(ctx, orgID, ledger.TypeDemontare, in)
}

func (s *Service) applyVehicleMovement(ctx context.Context, orgID id.ID, typ ledger.MovementType, in MountInput) (ledger.Snapshot, error) {
	if id.IsNil(in.VehicleID) {
		return ledger.Snapshot{}, apperror.NewValidation("vehicle is required").
			WithDetail("field", "vehicleId")
	}

	vehicleID := in.VehicleID
	return s.engine.ApplyMovement(ctx, ledger.ApplyInput{
		OrgID:     orgID,
		StockID:   in.StockID,
		Type:      typ,
		Magnitude: in.Quantity,
		Date:      in.Date,
		Attribution: ledger.Attribution{
			VehicleID:  &vehicleID,
			OdometerKm: in.OdometerKm,
			DriverName: in.DriverName,
			Notes:      in.Notes,
			UserID:     in.UserID,
		},
	})
}

// GetMountedTires derives the currently-mounted set for a vehicle by
// folding its movement log, most recent first.
func (s *Service) GetMountedTires(ctx context.Context, orgID, vehicleID id.ID) ([]Mounted, error) {
	movements, err := s.repo.ListVehicleMovements(ctx, orgID, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list vehicle tire movements: %w", err)
	}
	return foldMounted(movements), nil
}

// DeleteStock removes a stock descriptor. Deletion requires a zero balance;
// the operator must reduce stock to zero first.
func (s *Service) DeleteStock(ctx context.Context, orgID, stockID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		stock, err := s.repo.GetStock(ctx, orgID, stockID)
		if err != nil {
			return err
		}
		if !stock.Quantity.IsZero() {
			return apperror.NewStockInUse(stockID.String()).
				WithDetail("available", ledger.Tire().Format(stock.Quantity))
		}

		if err := s.repo.DeleteStock(ctx, orgID, stockID); err != nil {
			return fmt.Errorf("delete tire stock: %w", err)
		}

		return s.recorder.Record(ctx, ledger.RecordedEvent{
			EntityType: "tire_stock",
			EntityID:   stockID,
			Action:     "delete",
			Payload:    map[string]any{"brand": stock.Brand, "model": stock.Model},
		})
	})
}

// DeleteMovement reverses a MONTARE or DEMONTARE movement, undoing its
// balance effect and removing it from the log. Plain INTRARE/IESIRE
// corrections are not reversible through this path.
func (s *Service) DeleteMovement(ctx context.Context, orgID, movementID id.ID) (ledger.Snapshot, error) {
	return s.engine.ReverseMovement(ctx, orgID, movementID)
}

// --- Read paths ---

// GetStock returns one stock descriptor.
func (s *Service) GetStock(ctx context.Context, orgID, stockID id.ID) (*Stock, error) {
	return s.repo.GetStock(ctx, orgID, stockID)
}

// ListStock returns the organization's tire stock.
func (s *Service) ListStock(ctx context.Context, orgID id.ID) ([]Stock, error) {
	return s.repo.ListStock(ctx, orgID)
}

// ListStockMovements returns one stock's movement history, most recent first.
func (s *Service) ListStockMovements(ctx context.Context, orgID, stockID id.ID) ([]MovementRow, error) {
	if _, err := s.repo.GetStock(ctx, orgID, stockID); err != nil {
		return nil, err
	}
	return s.repo.ListStockMovements(ctx, orgID, stockID)
}

// ListMovements returns the organization-wide recent movement feed. The
// limit is clamped to [1, 100]; non-positive values fall back to the default.
func (s *Service) ListMovements(ctx context.Context, orgID id.ID, limit int) ([]MovementRow, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	return s.repo.ListMovements(ctx, orgID, limit)
}
