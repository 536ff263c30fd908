package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/domain/inventory/ledger"
	"fleettrack/internal/domain/inventory/tire"
	"fleettrack/internal/infrastructure/storage/postgres"
)

const (
	tireStockTable    = "tire_stock"
	tireMovementTable = "tire_movements"

	tireLabelExpr = "s.brand || ' ' || s.model || ' ' || s.dimension"
)

// TireRepo implements tire.Repository.
type TireRepo struct {
	ledgerStore
}

// NewTireRepo creates a new tire inventory repository.
func NewTireRepo(pool *postgres.Pool) *TireRepo {
	return &TireRepo{
		ledgerStore: newLedgerStore(pool, tireStockTable, tireMovementTable),
	}
}

var _ tire.Repository = (*TireRepo)(nil)

// CreateStock inserts a new stock descriptor.
func (r *TireRepo) CreateStock(ctx context.Context, stock *tire.Stock) error {
	q := r.builder.
		Insert(tireStockTable).
		SetMap(postgres.StructToMap(stock))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert stock: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert tire stock: %w", err)
	}
	return nil
}

// GetStock loads one stock scoped by organization.
func (r *TireRepo) GetStock(ctx context.Context, orgID, stockID id.ID) (*tire.Stock, error) {
	q := r.builder.
		Select(postgres.ExtractDBColumns[tire.Stock]()...).
		From(tireStockTable).
		Where(squirrel.Eq{"id": stockID, "org_id": orgID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	stock := &tire.Stock{}
	if err := pgxscan.Get(ctx, r.querier(ctx), stock, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("tire stock", stockID.String())
		}
		return nil, fmt.Errorf("get tire stock: %w", err)
	}
	return stock, nil
}

// UpdateStock persists descriptive fields. The balance column is owned by
// the ledger and never written here.
func (r *TireRepo) UpdateStock(ctx context.Context, stock *tire.Stock) error {
	q := r.builder.
		Update(tireStockTable).
		Set("brand", stock.Brand).
		Set("model", stock.Model).
		Set("dimension", stock.Dimension).
		Set("dot_code", stock.DOTCode).
		Set("location", stock.Location).
		Set("updated_at", stock.UpdatedAt).
		Where(squirrel.Eq{"id": stock.ID, "org_id": stock.OrgID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update stock: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update tire stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("tire stock", stock.ID.String())
	}
	return nil
}

// DeleteStock removes the stock row.
func (r *TireRepo) DeleteStock(ctx context.Context, orgID, stockID id.ID) error {
	q := r.builder.
		Delete(tireStockTable).
		Where(squirrel.Eq{"id": stockID, "org_id": orgID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete stock: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete tire stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("tire stock", stockID.String())
	}
	return nil
}

// ListStock returns all stock for an organization, sorted brand then model.
func (r *TireRepo) ListStock(ctx context.Context, orgID id.ID) ([]tire.Stock, error) {
	q := r.builder.
		Select(postgres.ExtractDBColumns[tire.Stock]()...).
		From(tireStockTable).
		Where(squirrel.Eq{"org_id": orgID}).
		OrderBy("brand ASC", "model ASC", "dimension ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var stocks []tire.Stock
	if err := pgxscan.Select(ctx, r.querier(ctx), &stocks, sql, args...); err != nil {
		return nil, fmt.Errorf("list tire stock: %w", err)
	}
	return stocks, nil
}

// ListStockMovements returns one stock's movements, most recent first.
func (r *TireRepo) ListStockMovements(ctx context.Context, orgID, stockID id.ID) ([]tire.MovementRow, error) {
	var rows []tire.MovementRow
	err := r.movementHistory(ctx, tireLabelExpr,
		squirrel.Eq{"m.org_id": orgID, "m.stock_id": stockID}, 0, &rows)
	return rows, err
}

// ListVehicleMovements returns a vehicle's mount and unmount history,
// most recent first. The mounted-tires fold consumes this in order.
func (r *TireRepo) ListVehicleMovements(ctx context.Context, orgID, vehicleID id.ID) ([]ledger.Movement, error) {
	q := r.builder.
		Select(postgres.ExtractDBColumns[ledger.Movement]()...).
		From(tireMovementTable).
		Where(squirrel.Eq{
			"org_id":     orgID,
			"vehicle_id": vehicleID,
			"movement_type": []ledger.MovementType{
				ledger.TypeMontare,
				ledger.TypeDemontare,
			},
		}).
		OrderBy("movement_date DESC", "created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.Movement
	if err := pgxscan.Select(ctx, r.querier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list vehicle tire movements: %w", err)
	}
	return movements, nil
}

// ListMovements returns the organization-wide feed, most recent first.
func (r *TireRepo) ListMovements(ctx context.Context, orgID id.ID, limit int) ([]tire.MovementRow, error) {
	var rows []tire.MovementRow
	err := r.movementHistory(ctx, tireLabelExpr,
		squirrel.Eq{"m.org_id": orgID}, limit, &rows)
	return rows, err
}
