package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/domain/inventory/ledger"
	"fleettrack/internal/domain/inventory/oil"
	"fleettrack/internal/infrastructure/storage/postgres"
)

const (
	oilStockTable    = "oil_stock"
	oilMovementTable = "oil_movements"

	// oilLabelExpr renders the stock display name in history joins
	oilLabelExpr = "s.oil_type || ' ' || s.brand"
)

// OilRepo implements oil.Repository.
type OilRepo struct {
	ledgerStore
}

// NewOilRepo creates a new oil inventory repository.
func NewOilRepo(pool *postgres.Pool) *OilRepo {
	return &OilRepo{
		ledgerStore: newLedgerStore(pool, oilStockTable, oilMovementTable),
	}
}

var _ oil.Repository = (*OilRepo)(nil)

// CreateStock inserts a new stock descriptor.
func (r *OilRepo) CreateStock(ctx context.Context, stock *oil.Stock) error {
	q := r.builder.
		Insert(oilStockTable).
		SetMap(postgres.StructToMap(stock))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert stock: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert oil stock: %w", err)
	}
	return nil
}

// GetStock loads one stock scoped by organization.
func (r *OilRepo) GetStock(ctx context.Context, orgID, stockID id.ID) (*oil.Stock, error) {
	q := r.builder.
		Select(postgres.ExtractDBColumns[oil.Stock]()...).
		From(oilStockTable).
		Where(squirrel.Eq{"id": stockID, "org_id": orgID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	stock := &oil.Stock{}
	if err := pgxscan.Get(ctx, r.querier(ctx), stock, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("oil stock", stockID.String())
		}
		return nil, fmt.Errorf("get oil stock: %w", err)
	}
	return stock, nil
}

// UpdateStock persists descriptive fields. The balance column is owned by
// the ledger and never written here.
func (r *OilRepo) UpdateStock(ctx context.Context, stock *oil.Stock) error {
	q := r.builder.
		Update(oilStockTable).
		Set("oil_type", stock.OilType).
		Set("brand", stock.Brand).
		Set("location", stock.Location).
		Set("updated_at", stock.UpdatedAt).
		Where(squirrel.Eq{"id": stock.ID, "org_id": stock.OrgID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update stock: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update oil stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("oil stock", stock.ID.String())
	}
	return nil
}

// DeleteStock removes the stock row.
func (r *OilRepo) DeleteStock(ctx context.Context, orgID, stockID id.ID) error {
	q := r.builder.
		Delete(oilStockTable).
		Where(squirrel.Eq{"id": stockID, "org_id": orgID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete stock: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete oil stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("oil stock", stockID.String())
	}
	return nil
}

// ListStock returns all stock for an organization, sorted type then brand.
func (r *OilRepo) ListStock(ctx context.Context, orgID id.ID) ([]oil.Stock, error) {
	q := r.builder.
		Select(postgres.ExtractDBColumns[oil.Stock]()...).
		From(oilStockTable).
		Where(squirrel.Eq{"org_id": orgID}).
		OrderBy("oil_type ASC", "brand ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var stocks []oil.Stock
	if err := pgxscan.Select(ctx, r.querier(ctx), &stocks, sql, args...); err != nil {
		return nil, fmt.Errorf("list oil stock: %w", err)
	}
	return stocks, nil
}

// ListStockMovements returns one stock's movements, most recent first.
func (r *OilRepo) ListStockMovements(ctx context.Context, orgID, stockID id.ID) ([]oil.MovementRow, error) {
	var rows []oil.MovementRow
	err := r.movementHistory(ctx, oilLabelExpr,
		squirrel.Eq{"m.org_id": orgID, "m.stock_id": stockID}, 0, &rows)
	return rows, err
}

// ListVehicleUsage returns a vehicle's UTILIZARE movements, most recent first.
func (r *OilRepo) ListVehicleUsage(ctx context.Context, orgID, vehicleID id.ID) ([]oil.MovementRow, error) {
	var rows []oil.MovementRow
	err := r.movementHistory(ctx, oilLabelExpr,
		squirrel.Eq{
			"m.org_id":        orgID,
			"m.vehicle_id":    vehicleID,
			"m.movement_type": ledger.TypeUtilizare,
		}, 0, &rows)
	return rows, err
}

// ListMovements returns the organization-wide history, most recent first.
func (r *OilRepo) ListMovements(ctx context.Context, orgID id.ID) ([]oil.MovementRow, error) {
	var rows []oil.MovementRow
	err := r.movementHistory(ctx, oilLabelExpr,
		squirrel.Eq{"m.org_id": orgID}, 0, &rows)
	return rows, err
}
