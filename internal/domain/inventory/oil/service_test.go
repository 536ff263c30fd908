package oil

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/inventory/ledger"
)

type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeRepo keeps stock and movements in memory. Mutating calls are only
// reached after the engine validated the movement, so a rejected operation
// leaves the maps untouched like a rolled-back transaction.
type fakeRepo struct {
	stocks    map[id.ID]*Stock
	movements []*ledger.Movement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stocks: make(map[id.ID]*Stock)}
}

func (r *fakeRepo) find(orgID, stockID id.ID) (*Stock, bool) {
	s, ok := r.stocks[stockID]
	if !ok || s.OrgID != orgID {
		return nil, false
	}
	return s, true
}

func (r *fakeRepo) GetBalanceForUpdate(_ context.Context, orgID, stockID id.ID) (ledger.Balance, error) {
	s, ok := r.find(orgID, stockID)
	if !ok {
		return ledger.Balance{}, apperror.NewNotFound("oil stock", stockID.String())
	}
	return ledger.Balance{StockID: s.ID, OrgID: s.OrgID, Quantity: s.Quantity, UpdatedAt: s.UpdatedAt}, nil
}

func (r *fakeRepo) UpdateBalance(_ context.Context, orgID, stockID id.ID, quantity types.Quantity, at time.Time) error {
	s, ok := r.find(orgID, stockID)
	if !ok {
		return apperror.NewNotFound("oil stock", stockID.String())
	}
	s.Quantity = quantity
	s.UpdatedAt = at
	return nil
}

func (r *fakeRepo) InsertMovement(_ context.Context, m *ledger.Movement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeRepo) GetMovement(_ context.Context, orgID, movementID id.ID) (*ledger.Movement, error) {
	for _, m := range r.movements {
		if m.ID == movementID && m.OrgID == orgID {
			return m, nil
		}
	}
	return nil, apperror.NewNotFound("oil movement", movementID.String())
}

func (r *fakeRepo) DeleteMovement(_ context.Context, orgID, movementID id.ID) error {
	for i, m := range r.movements {
		if m.ID == movementID && m.OrgID == orgID {
			r.movements = append(r.movements[:i], r.movements[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("oil movement", movementID.String())
}

func (r *fakeRepo) CreateStock(_ context.Context, stock *Stock) error {
	r.stocks[stock.ID] = stock
	return nil
}

func (r *fakeRepo) GetStock(_ context.Context, orgID, stockID id.ID) (*Stock, error) {
	s, ok := r.find(orgID, stockID)
	if !ok {
		return nil, apperror.NewNotFound("oil stock", stockID.String())
	}
	return s, nil
}

func (r *fakeRepo) UpdateStock(_ context.Context, stock *Stock) error {
	if _, ok := r.find(stock.OrgID, stock.ID); !ok {
		return apperror.NewNotFound("oil stock", stock.ID.String())
	}
	r.stocks[stock.ID] = stock
	return nil
}

func (r *fakeRepo) DeleteStock(_ context.Context, orgID, stockID id.ID) error {
	if _, ok := r.find(orgID, stockID); !ok {
		return apperror.NewNotFound("oil stock", stockID.String())
	}
	delete(r.stocks, stockID)
	return nil
}

func (r *fakeRepo) ListStock(_ context.Context, orgID id.ID) ([]Stock, error) {
	var out []Stock
	for _, s := range r.stocks {
		if s.OrgID == orgID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OilType != out[j].OilType {
			return out[i].OilType < out[j].OilType
		}
		return out[i].Brand < out[j].Brand
	})
	return out, nil
}

func (r *fakeRepo) rows(filter func(*ledger.Movement) bool) []MovementRow {
	var out []MovementRow
	for i := len(r.movements) - 1; i >= 0; i-- {
		if m := r.movements[i]; filter(m) {
			out = append(out, MovementRow{Movement: *m})
		}
	}
	return out
}

func (r *fakeRepo) ListStockMovements(_ context.Context, orgID, stockID id.ID) ([]MovementRow, error) {
	return r.rows(func(m *ledger.Movement) bool {
		return m.OrgID == orgID && m.StockID == stockID
	}), nil
}

func (r *fakeRepo) ListVehicleUsage(_ context.Context, orgID, vehicleID id.ID) ([]MovementRow, error) {
	return r.rows(func(m *ledger.Movement) bool {
		return m.OrgID == orgID && m.Type == ledger.TypeUtilizare &&
			m.VehicleID != nil && *m.VehicleID == vehicleID
	}), nil
}

func (r *fakeRepo) ListMovements(_ context.Context, orgID id.ID) ([]MovementRow, error) {
	return r.rows(func(m *ledger.Movement) bool { return m.OrgID == orgID }), nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	engine := ledger.NewEngine(ledger.Oil(), repo, txStub{})
	return NewService(repo, engine, txStub{}, nil), repo
}

func TestCreateAndAdjustStock(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	orgID := id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		OilType: "5W-30",
		Brand:   "Castrol",
	})
	require.NoError(t, err)
	assert.True(t, stock.Quantity.IsZero())
	// Zero initial quantity means no synthetic initial movement.
	assert.Empty(t, repo.movements)

	_, err = svc.AdjustStock(ctx, orgID, stock.ID, AdjustInput{
		Type:     ledger.TypeIntrare,
		Quantity: types.MustQuantity("20"),
	})
	require.NoError(t, err)

	snap, err := svc.AdjustStock(ctx, orgID, stock.ID, AdjustInput{
		Type:     ledger.TypeIesire,
		Quantity: types.MustQuantity("5"),
	})
	require.NoError(t, err)

	assert.Equal(t, "15.00", ledger.Oil().Format(snap.Quantity))
	assert.Len(t, repo.movements, 2)
}

func TestCreateStock_SeedsInitialMovement(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	orgID := id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		OilType:         "10W-40",
		Brand:           "Motul",
		InitialQuantity: types.MustQuantity("12.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "12.50", ledger.Oil().Format(stock.Quantity))

	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	assert.Equal(t, ledger.TypeIntrare, m.Type)
	require.NotNil(t, m.Notes)
	assert.Equal(t, "initial stock", *m.Notes)
}

func TestCreateStock_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID := id.New()

	_, err := svc.CreateStock(ctx, orgID, CreateStockInput{Brand: "Castrol"})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.CreateStock(ctx, orgID, CreateStockInput{OilType: "5W-30"})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.CreateStock(ctx, orgID, CreateStockInput{
		OilType:         "5W-30",
		Brand:           "Castrol",
		InitialQuantity: types.MustQuantity("-1"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestAdjustStock_RejectsUsageType(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID := id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{OilType: "5W-30", Brand: "Castrol"})
	require.NoError(t, err)

	_, err = svc.AdjustStock(ctx, orgID, stock.ID, AdjustInput{
		Type:     ledger.TypeUtilizare,
		Quantity: types.MustQuantity("1"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestRecordUsage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID, vehicleID := id.New(), id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		OilType:         "5W-30",
		Brand:           "Castrol",
		InitialQuantity: types.MustQuantity("20"),
	})
	require.NoError(t, err)

	snap, err := svc.RecordUsage(ctx, orgID, UsageInput{
		StockID:   stock.ID,
		VehicleID: vehicleID,
		Quantity:  types.MustQuantity("6"),
	})
	require.NoError(t, err)
	assert.Equal(t, "14.00", ledger.Oil().Format(snap.Quantity))

	usage, err := svc.ListVehicleUsage(ctx, orgID, vehicleID)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, ledger.TypeUtilizare, usage[0].Type)
	require.NotNil(t, usage[0].VehicleID)
	assert.Equal(t, vehicleID, *usage[0].VehicleID)
	assert.Equal(t, "6", usage[0].Quantity.String())
}

func TestRecordUsage_RequiresVehicle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID := id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		OilType: "5W-30", Brand: "Castrol", InitialQuantity: types.MustQuantity("20"),
	})
	require.NoError(t, err)

	_, err = svc.RecordUsage(ctx, orgID, UsageInput{
		StockID:  stock.ID,
		Quantity: types.MustQuantity("1"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestDeleteStock_RequiresZeroBalance(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	orgID := id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		OilType: "5W-30", Brand: "Castrol", InitialQuantity: types.MustQuantity("3"),
	})
	require.NoError(t, err)

	err = svc.DeleteStock(ctx, orgID, stock.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeStockInUse, appErr.Code)
	assert.Equal(t, "3.00", appErr.Details["available"])

	// Drain the stock, then deletion goes through.
	_, err = svc.AdjustStock(ctx, orgID, stock.ID, AdjustInput{
		Type: ledger.TypeIesire, Quantity: types.MustQuantity("3"),
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteStock(ctx, orgID, stock.ID))
	assert.Empty(t, repo.stocks)
}

func TestUpdateStock_DescriptiveFieldsOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID := id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		OilType: "5W-30", Brand: "Castrol", InitialQuantity: types.MustQuantity("8"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStock(ctx, orgID, stock.ID, UpdateStockInput{
		OilType:  "5W-30",
		Brand:    "Mobil",
		Location: "rack 2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mobil", updated.Brand)
	assert.Equal(t, "rack 2", updated.Location)
	// Balance untouched by a descriptor update.
	assert.Equal(t, "8.00", ledger.Oil().Format(updated.Quantity))
}

func TestListMovements_IdempotentRead(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID := id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		OilType: "5W-30", Brand: "Castrol", InitialQuantity: types.MustQuantity("10"),
	})
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, orgID, stock.ID, AdjustInput{
		Type: ledger.TypeIesire, Quantity: types.MustQuantity("2"),
	})
	require.NoError(t, err)

	first, err := svc.ListStockMovements(ctx, orgID, stock.ID)
	require.NoError(t, err)
	second, err := svc.ListStockMovements(ctx, orgID, stock.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Most recent first.
	require.Len(t, first, 2)
	assert.Equal(t, ledger.TypeIesire, first[0].Type)
	assert.Equal(t, ledger.TypeIntrare, first[1].Type)
}
