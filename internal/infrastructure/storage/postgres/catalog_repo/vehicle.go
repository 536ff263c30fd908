package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/domain/catalogs/vehicle"
	"fleettrack/internal/domain/status"
	"fleettrack/internal/infrastructure/storage/postgres"
)

const (
	vehicleTable  = "cat_vehicles"
	odometerTable = "odometer_readings"
)

// VehicleRepo implements vehicle.Repository.
type VehicleRepo struct {
	*BaseCatalogRepo[*vehicle.Vehicle]
}

// NewVehicleRepo creates a new vehicle repository.
var _ vehicle.Repository = (*VehicleRepo)(nil)

func NewVehicleRepo(pool *postgres.Pool) *VehicleRepo {
	return &VehicleRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*vehicle.Vehicle](
			pool,
			vehicleTable,
			postgres.ExtractDBColumns[vehicle.Vehicle](),
			func() *vehicle.Vehicle { return &vehicle.Vehicle{} },
		),
	}
}

// UpdateStatus writes only the denormalized status column. The version is
// not bumped: status is derived data and must not conflict with concurrent
// document edits.
func (r *VehicleRepo) UpdateStatus(ctx context.Context, vehicleID id.ID, level status.Level) error {
	q := r.Builder().
		Update(vehicleTable).
		Set("status", level).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": vehicleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update status: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update vehicle status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(vehicleTable, vehicleID.String())
	}
	return nil
}

// InsertReading appends one odometer record.
func (r *VehicleRepo) InsertReading(ctx context.Context, reading *vehicle.OdometerReading) error {
	data := postgres.StructToMap(reading)

	q := r.Builder().
		Insert(odometerTable).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert reading: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert odometer reading: %w", err)
	}
	return nil
}

func (r *VehicleRepo) readingSelect(orgID, vehicleID id.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select(postgres.ExtractDBColumns[vehicle.OdometerReading]()...).
		From(odometerTable).
		Where(squirrel.Eq{"org_id": orgID, "vehicle_id": vehicleID}).
		OrderBy("read_at DESC", "created_at DESC")
}

// LastReading returns the most recent odometer record, or nil when the log
// is empty.
func (r *VehicleRepo) LastReading(ctx context.Context, orgID, vehicleID id.ID) (*vehicle.OdometerReading, error) {
	q := r.readingSelect(orgID, vehicleID).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	reading := &vehicle.OdometerReading{}
	if err := pgxscan.Get(ctx, r.querier(ctx), reading, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("last odometer reading: %w", err)
	}
	return reading, nil
}

// ListReadings returns the odometer log, most recent first.
func (r *VehicleRepo) ListReadings(ctx context.Context, orgID, vehicleID id.ID, limit int) ([]vehicle.OdometerReading, error) {
	q := r.readingSelect(orgID, vehicleID)
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var readings []vehicle.OdometerReading
	if err := pgxscan.Select(ctx, r.querier(ctx), &readings, sql, args...); err != nil {
		return nil, fmt.Errorf("list odometer readings: %w", err)
	}
	return readings, nil
}

// ListByOrg returns all live vehicles of one organization. Worker sweeps
// call this with an explicit org because they run outside request scope.
func (r *VehicleRepo) ListByOrg(ctx context.Context, orgID id.ID) ([]*vehicle.Vehicle, error) {
	q := r.Builder().
		Select(r.selectCols...).
		From(vehicleTable).
		Where(squirrel.Eq{"org_id": orgID, "deletion_mark": false}).
		OrderBy("code ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var vehicles []*vehicle.Vehicle
	if err := pgxscan.Select(ctx, r.querier(ctx), &vehicles, sql, args...); err != nil {
		return nil, fmt.Errorf("list vehicles by org: %w", err)
	}
	return vehicles, nil
}
