package ledger

import (
	"context"
	"fmt"
	"time"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/tx"
	"fleettrack/internal/core/types"
	"fleettrack/pkg/logger"
)

// Store is the persistence contract the engine needs: row-locked balance
// reads, balance writes and movement insert/delete, all joining the ambient
// transaction carried by ctx.
//
// Lookups scoped to a (stock, org) pair that does not match must return
// NotFound; a cross-organization miss is indistinguishable from an absent
// row by design.
type Store interface {
	// GetBalanceForUpdate loads the stock balance with a row lock
	GetBalanceForUpdate(ctx context.Context, orgID, stockID id.ID) (Balance, error)

	// UpdateBalance persists a new balance and updated_at on the stock row
	UpdateBalance(ctx context.Context, orgID, stockID id.ID, quantity types.Quantity, at time.Time) error

	// InsertMovement appends an immutable movement row
	InsertMovement(ctx context.Context, m *Movement) error

	// GetMovement loads one movement scoped by organization
	GetMovement(ctx context.Context, orgID, movementID id.ID) (*Movement, error)

	// DeleteMovement removes a movement row (reversal only)
	DeleteMovement(ctx context.Context, orgID, movementID id.ID) error
}

// Engine mutates one commodity's stock balances and movement log as a unit.
// Both write paths run the read-balance, validate, write sequence inside a
// transaction holding a row lock on the stock, which makes concurrent calls
// on the same stock linearizable.
type Engine struct {
	commodity Commodity
	store     Store
	txManager tx.Manager
	recorder  Recorder
}

// NewEngine creates a ledger engine for one commodity.
func NewEngine(commodity Commodity, store Store, txManager tx.Manager) *Engine {
	return &Engine{
		commodity: commodity,
		store:     store,
		txManager: txManager,
		recorder:  NopRecorder{},
	}
}

// WithRecorder attaches an audit/outbox recorder to the engine.
func (e *Engine) WithRecorder(r Recorder) *Engine {
	if r != nil {
		e.recorder = r
	}
	return e
}

// Commodity returns the commodity descriptor the engine was built with.
func (e *Engine) Commodity() Commodity {
	return e.commodity
}

// ApplyInput describes one requested movement.
type ApplyInput struct {
	OrgID   id.ID
	StockID id.ID
	Type    MovementType

	// Magnitude must be strictly positive at the commodity's scale
	Magnitude types.Quantity

	// Date is the business-effective date; zero means now
	Date time.Time

	Attribution
}

// ApplyMovement atomically applies one movement: loads the locked balance,
// computes the signed delta from the commodity's type table, rejects any
// result below zero, then persists the new balance together with the
// movement row. On rejection nothing is persisted.
func (e *Engine) ApplyMovement(ctx context.Context, in ApplyInput) (Snapshot, error) {
	if err := e.commodity.ValidateMagnitude(in.Magnitude); err != nil {
		return Snapshot{}, err
	}
	direction, err := e.commodity.Direction(in.Type)
	if err != nil {
		return Snapshot{}, err
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var snap Snapshot
	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		balance, err := e.store.GetBalanceForUpdate(ctx, in.OrgID, in.StockID)
		if err != nil {
			return fmt.Errorf("load %s balance: %w", e.commodity.Name, err)
		}

		newBalance := direction.Apply(balance.Quantity, in.Magnitude)
		if newBalance.IsNegative() {
			return apperror.NewInsufficientStock(
				in.StockID.String(),
				e.commodity.Format(in.Magnitude),
				e.commodity.Format(balance.Quantity),
			).WithDetail("commodity", e.commodity.Name)
		}

		now := time.Now().UTC()
		movement := &Movement{
			ID:             id.New(),
			OrgID:          in.OrgID,
			StockID:        in.StockID,
			Type:           in.Type,
			Quantity:       in.Magnitude,
			Date:           date,
			VehicleID:      in.VehicleID,
			ServiceEventID: in.ServiceEventID,
			OdometerKm:     in.OdometerKm,
			DriverName:     in.DriverName,
			Notes:          in.Notes,
			UserID:         in.UserID,
			CreatedAt:      now,
		}

		if err := e.store.UpdateBalance(ctx, in.OrgID, in.StockID, newBalance, now); err != nil {
			return fmt.Errorf("update %s balance: %w", e.commodity.Name, err)
		}
		if err := e.store.InsertMovement(ctx, movement); err != nil {
			return fmt.Errorf("insert %s movement: %w", e.commodity.Name, err)
		}

		if err := e.recorder.Record(ctx, RecordedEvent{
			EntityType: e.commodity.Name + "_stock",
			EntityID:   in.StockID,
			Action:     "movement",
			Payload: map[string]any{
				"movement_id": movement.ID.String(),
				"type":        string(in.Type),
				"quantity":    e.commodity.Format(in.Magnitude),
				"balance":     e.commodity.Format(newBalance),
			},
		}); err != nil {
			return fmt.Errorf("record %s movement: %w", e.commodity.Name, err)
		}

		snap = Snapshot{
			StockID:    in.StockID,
			Quantity:   newBalance,
			UpdatedAt:  now,
			MovementID: movement.ID,
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	logger.Debug(ctx, "ledger movement applied",
		"commodity", e.commodity.Name,
		"stock_id", in.StockID,
		"type", in.Type,
		"quantity", e.commodity.Format(in.Magnitude),
		"balance", e.commodity.Format(snap.Quantity),
	)

	return snap, nil
}

// ReverseMovement deletes a movement and undoes its balance effect. Only
// types the commodity marks reversible qualify; the reversed balance must
// stay non-negative. This is the one place the ledger is mutated outside
// the forward-appending path, under the same lock and atomicity rules.
func (e *Engine) ReverseMovement(ctx context.Context, orgID, movementID id.ID) (Snapshot, error) {
	var snap Snapshot
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		movement, err := e.store.GetMovement(ctx, orgID, movementID)
		if err != nil {
			return fmt.Errorf("load %s movement: %w", e.commodity.Name, err)
		}

		if !e.commodity.IsReversible(movement.Type) {
			return apperror.NewValidation(
				fmt.Sprintf("movements of type %s cannot be reversed", movement.Type)).
				WithDetail("movement_id", movementID.String()).
				WithDetail("type", string(movement.Type))
		}

		direction, err := e.commodity.Direction(movement.Type)
		if err != nil {
			return err
		}

		balance, err := e.store.GetBalanceForUpdate(ctx, orgID, movement.StockID)
		if err != nil {
			return fmt.Errorf("load %s balance: %w", e.commodity.Name, err)
		}

		// Undo: subtract what the movement originally added.
		reversed := balance.Quantity.Sub(direction.Apply(types.Zero(), movement.Quantity))
		if reversed.IsNegative() {
			return apperror.NewInsufficientStock(
				movement.StockID.String(),
				e.commodity.Format(movement.Quantity),
				e.commodity.Format(balance.Quantity),
			).WithDetail("commodity", e.commodity.Name).
				WithDetail("operation", "reverse")
		}

		now := time.Now().UTC()
		if err := e.store.UpdateBalance(ctx, orgID, movement.StockID, reversed, now); err != nil {
			return fmt.Errorf("update %s balance: %w", e.commodity.Name, err)
		}
		if err := e.store.DeleteMovement(ctx, orgID, movementID); err != nil {
			return fmt.Errorf("delete %s movement: %w", e.commodity.Name, err)
		}

		if err := e.recorder.Record(ctx, RecordedEvent{
			EntityType: e.commodity.Name + "_stock",
			EntityID:   movement.StockID,
			Action:     "reverse",
			Payload: map[string]any{
				"movement_id": movementID.String(),
				"type":        string(movement.Type),
				"quantity":    e.commodity.Format(movement.Quantity),
				"balance":     e.commodity.Format(reversed),
			},
		}); err != nil {
			return fmt.Errorf("record %s reversal: %w", e.commodity.Name, err)
		}

		snap = Snapshot{
			StockID:    movement.StockID,
			Quantity:   reversed,
			UpdatedAt:  now,
			MovementID: movementID,
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	logger.Info(ctx, "ledger movement reversed",
		"commodity", e.commodity.Name,
		"movement_id", movementID,
		"balance", e.commodity.Format(snap.Quantity),
	)

	return snap, nil
}
