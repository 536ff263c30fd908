package tire

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
		return ledger.Balance{}, apperror.NewNotFound("tire stock", stockID.String())
	}
	return ledger.Balance{StockID: s.ID, OrgID: s.OrgID, Quantity: s.Quantity, UpdatedAt: s.UpdatedAt}, nil
}

func (r *fakeRepo) UpdateBalance(_ context.Context, orgID, stockID id.ID, quantity types.Quantity, at time.Time) error {
	s, ok := r.find(orgID, stockID)
	if !ok {
		return apperror.NewNotFound("tire stock", stockID.String())
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
	return nil, apperror.NewNotFound("tire movement", movementID.String())
}

func (r *fakeRepo) DeleteMovement(_ context.Context, orgID, movementID id.ID) error {
	for i, m := range r.movements {
		if m.ID == movementID && m.OrgID == orgID {
			r.movements = append(r.movements[:i], r.movements[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("tire movement", movementID.String())
}

func (r *fakeRepo) CreateStock(_ context.Context, stock *Stock) error {
	r.stocks[stock.ID] = stock
	return nil
}

func (r *fakeRepo) GetStock(_ context.Context, orgID, stockID id.ID) (*Stock, error) {
	s, ok := r.find(orgID, stockID)
	if !ok {
		return nil, apperror.NewNotFound("tire stock", stockID.String())
	}
	return s, nil
}

func (r *fakeRepo) UpdateStock(_ context.Context, stock *Stock) error {
	if _, ok := r.find(stock.OrgID, stock.ID); !ok {
		return apperror.NewNotFound("tire stock", stock.ID.String())
	}
	r.stocks[stock.ID] = stock
	return nil
}

func (r *fakeRepo) DeleteStock(_ context.Context, orgID, stockID id.ID) error {
	if _, ok := r.find(orgID, stockID); !ok {
		return apperror.NewNotFound("tire stock", stockID.String())
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
		if out[i].Brand != out[j].Brand {
			return out[i].Brand < out[j].Brand
		}
		return out[i].Model < out[j].Model
	})
	return out, nil
}

func (r *fakeRepo) newestFirst(filter func(*ledger.Movement) bool) []*ledger.Movement {
	var out []*ledger.Movement
	for i := len(r.movements) - 1; i >= 0; i-- {
		if m := r.movements[i]; filter(m) {
			out = append(out, m)
		}
	}
	return out
}

func (r *fakeRepo) ListStockMovements(_ context.Context, orgID, stockID id.ID) ([]MovementRow, error) {
	var out []MovementRow
	for _, m := range r.newestFirst(func(m *ledger.Movement) bool {
		return m.OrgID == orgID && m.StockID == stockID
	}) {
		out = append(out, MovementRow{Movement: *m})
	}
	return out, nil
}

func (r *fakeRepo) ListVehicleMovements(_ context.Context, orgID, vehicleID id.ID) ([]ledger.Movement, error) {
	var out []ledger.Movement
	for _, m := range r.newestFirst(func(m *ledger.Movement) bool {
		return m.OrgID == orgID && m.VehicleID != nil && *m.VehicleID == vehicleID
	}) {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeRepo) ListMovements(_ context.Context, orgID id.ID, limit int) ([]MovementRow, error) {
	var out []MovementRow
	for _, m := range r.newestFirst(func(m *ledger.Movement) bool { return m.OrgID == orgID }) {
		if len(out) == limit {
			break
		}
		out = append(out, MovementRow{Movement: *m})
	}
	return out, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	engine := ledger.NewEngine(ledger.Tire(), repo, txStub{})
	return NewService(repo, engine, txStub{}, nil), repo
}

func qty(n int64) types.Quantity { return types.NewQuantityFromInt(n) }

func TestCreateStock_PermissiveNormalization(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	orgID := id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		Brand:     "  Michelin ",
		Dimension: "315/70r22.5",
	})
	require.NoError(t, err)
	assert.Equal(t, "Michelin", stock.Brand)
	assert.Equal(t, "N/A", stock.Model)
	assert.Equal(t, "315/70R22.5", stock.Dimension)
	assert.Equal(t, "N/A", stock.DOTCode)
	assert.Empty(t, repo.movements)
}

func TestCreateStock_SeedsInitialMovement(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	orgID := id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		Brand:           "Continental",
		InitialQuantity: qty(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "10", ledger.Tire().Format(stock.Quantity))

	require.Len(t, repo.movements, 1)
	assert.Equal(t, ledger.TypeIntrare, repo.movements[0].Type)
}

func TestCreateStock_RejectsFractionalQuantity(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateStock(context.Background(), id.New(), CreateStockInput{
		Brand:           "Continental",
		InitialQuantity: types.MustQuantity("2.5"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestMountTires_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	orgID, vehicleID := id.New(), id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		Brand:           "Continental",
		InitialQuantity: qty(10),
	})
	require.NoError(t, err)

	snap, err := svc.MountTires(ctx, orgID, MountInput{
		VehicleID: vehicleID,
		StockID:   stock.ID,
		Quantity:  qty(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "7", ledger.Tire().Format(snap.Quantity))

	_, err = svc.MountTires(ctx, orgID, MountInput{
		VehicleID: vehicleID,
		StockID:   stock.ID,
		Quantity:  qty(8),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "7", appErr.Details["available"])

	// Balance unchanged by the rejected mount.
	current, err := svc.GetStock(ctx, orgID, stock.ID)
	require.NoError(t, err)
	assert.Equal(t, "7", ledger.Tire().Format(current.Quantity))
	assert.Len(t, repo.movements, 2) // initial + first mount
}

func TestMountUnmountCycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID, vehicleID := id.New(), id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		Brand:           "Continental",
		InitialQuantity: qty(8),
	})
	require.NoError(t, err)

	d1 := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.MountTires(ctx, orgID, MountInput{
		VehicleID: vehicleID, StockID: stock.ID, Quantity: qty(4), Date: d1,
	})
	require.NoError(t, err)

	mounted, err := svc.GetMountedTires(ctx, orgID, vehicleID)
	require.NoError(t, err)
	require.Len(t, mounted, 1)
	assert.Equal(t, stock.ID, mounted[0].StockID)

	snap, err := svc.UnmountTires(ctx, orgID, MountInput{
		VehicleID: vehicleID, StockID: stock.ID, Quantity: qty(4), Date: d1.AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	assert.Equal(t, "8", ledger.Tire().Format(snap.Quantity))

	mounted, err = svc.GetMountedTires(ctx, orgID, vehicleID)
	require.NoError(t, err)
	assert.Empty(t, mounted)
}

func TestDeleteMovement_RestoresBalance(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	orgID, vehicleID := id.New(), id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		Brand:           "Continental",
		InitialQuantity: qty(10),
	})
	require.NoError(t, err)

	snap, err := svc.MountTires(ctx, orgID, MountInput{
		VehicleID: vehicleID, StockID: stock.ID, Quantity: qty(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "7", ledger.Tire().Format(snap.Quantity))

	reversed, err := svc.DeleteMovement(ctx, orgID, snap.MovementID)
	require.NoError(t, err)
	assert.Equal(t, "10", ledger.Tire().Format(reversed.Quantity))
	assert.Len(t, repo.movements, 1) // only the initial INTRARE remains
}

func TestDeleteMovement_RejectsAdjustments(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID := id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{Brand: "Continental"})
	require.NoError(t, err)

	snap, err := svc.AdjustStock(ctx, orgID, stock.ID, AdjustInput{
		Type: ledger.TypeIntrare, Quantity: qty(5),
	})
	require.NoError(t, err)

	_, err = svc.DeleteMovement(ctx, orgID, snap.MovementID)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestDeleteStock_Guard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID := id.New()

	// Zero balance deletes cleanly.
	empty, err := svc.CreateStock(ctx, orgID, CreateStockInput{Brand: "Continental"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteStock(ctx, orgID, empty.ID))

	// Nonzero balance is rejected.
	full, err := svc.CreateStock(ctx, orgID, CreateStockInput{
		Brand:           "Michelin",
		InitialQuantity: qty(5),
	})
	require.NoError(t, err)

	err = svc.DeleteStock(ctx, orgID, full.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeStockInUse, appErr.Code)

	_, err = svc.GetStock(ctx, orgID, full.ID)
	require.NoError(t, err)
}

func TestListMovements_LimitClamp(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID := id.New()

	stock, err := svc.CreateStock(ctx, orgID, CreateStockInput{Brand: "Continental"})
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		_, err = svc.AdjustStock(ctx, orgID, stock.ID, AdjustInput{
			Type: ledger.TypeIntrare, Quantity: qty(1),
		})
		require.NoError(t, err)
	}

	feed, err := svc.ListMovements(ctx, orgID, 3)
	require.NoError(t, err)
	assert.Len(t, feed, 3)

	// Non-positive limits fall back to the default; oversized ones clamp to 100.
	feed, err = svc.ListMovements(ctx, orgID, 0)
	require.NoError(t, err)
	assert.Len(t, feed, 6)

	feed, err = svc.ListMovements(ctx, orgID, 5000)
	require.NoError(t, err)
	assert.Len(t, feed, 6)
}
