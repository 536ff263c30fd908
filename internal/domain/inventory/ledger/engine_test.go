package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
)

// txStub satisfies tx.Manager without a database; the fake store below is
// mutated only after all validation passed, so rejected calls leave it
// untouched exactly like a rolled-back transaction would.
type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeStore struct {
	balances  map[id.ID]Balance
	movements map[id.ID]*Movement
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		balances:  make(map[id.ID]Balance),
		movements: make(map[id.ID]*Movement),
	}
}

func (s *fakeStore) addStock(orgID, stockID id.ID, qty string) {
	s.balances[stockID] = Balance{
		StockID:   stockID,
		OrgID:     orgID,
		Quantity:  types.MustQuantity(qty),
		UpdatedAt: time.Now().UTC(),
	}
}

func (s *fakeStore) GetBalanceForUpdate(_ context.Context, orgID, stockID id.ID) (Balance, error) {
	b, ok := s.balances[stockID]
	if !ok || b.OrgID != orgID {
		return Balance{}, apperror.NewNotFound("stock", stockID.String())
	}
	return b, nil
}

func (s *fakeStore) UpdateBalance(_ context.Context, orgID, stockID id.ID, quantity types.Quantity, at time.Time) error {
	b, ok := s.balances[stockID]
	if !ok || b.OrgID != orgID {
		return apperror.NewNotFound("stock", stockID.String())
	}
	b.Quantity = quantity
	b.UpdatedAt = at
	s.balances[stockID] = b
	return nil
}

func (s *fakeStore) InsertMovement(_ context.Context, m *Movement) error {
	s.movements[m.ID] = m
	return nil
}

func (s *fakeStore) GetMovement(_ context.Context, orgID, movementID id.ID) (*Movement, error) {
	m, ok := s.movements[movementID]
	if !ok || m.OrgID != orgID {
		return nil, apperror.NewNotFound("movement", movementID.String())
	}
	return m, nil
}

func (s *fakeStore) DeleteMovement(_ context.Context, orgID, movementID id.ID) error {
	m, ok := s.movements[movementID]
	if !ok || m.OrgID != orgID {
		return apperror.NewNotFound("movement", movementID.String())
	}
	delete(s.movements, movementID)
	return nil
}

func newTestEngine(c Commodity) (*Engine, *fakeStore) {
	store := newFakeStore()
	return NewEngine(c, store, txStub{}), store
}

func TestApplyMovement_BalanceEqualsSumOfSignedMagnitudes(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(Oil())
	orgID, stockID := id.New(), id.New()
	store.addStock(orgID, stockID, "0")

	steps := []struct {
		typ MovementType
		qty string
	}{
		{TypeIntrare, "20"},
		{TypeIesire, "5"},
		{TypeIntrare, "2.50"},
		{TypeUtilizare, "6"},
	}

	for _, step := range steps {
		_, err := engine.ApplyMovement(ctx, ApplyInput{
			OrgID:     orgID,
			StockID:   stockID,
			Type:      step.typ,
			Magnitude: types.MustQuantity(step.qty),
		})
		require.NoError(t, err)
	}

	// 0 + 20 - 5 + 2.50 - 6 = 11.50
	assert.Equal(t, "11.50", Oil().Format(store.balances[stockID].Quantity))
	assert.Len(t, store.movements, 4)
}

func TestApplyMovement_RejectsNegativeBalanceAtomically(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(Tire())
	orgID, stockID := id.New(), id.New()
	store.addStock(orgID, stockID, "7")

	_, err := engine.ApplyMovement(ctx, ApplyInput{
		OrgID:     orgID,
		StockID:   stockID,
		Type:      TypeMontare,
		Magnitude: types.NewQuantityFromInt(8),
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "tire", appErr.Details["commodity"])
	assert.Equal(t, "7", appErr.Details["available"])

	// Nothing persisted: balance unchanged, no movement row.
	assert.Equal(t, "7", Tire().Format(store.balances[stockID].Quantity))
	assert.Empty(t, store.movements)
}

func TestApplyMovement_RejectsUnknownType(t *testing.T) {
	engine, store := newTestEngine(Oil())
	orgID, stockID := id.New(), id.New()
	store.addStock(orgID, stockID, "10")

	// MONTARE belongs to the tire commodity only.
	_, err := engine.ApplyMovement(context.Background(), ApplyInput{
		OrgID:     orgID,
		StockID:   stockID,
		Type:      TypeMontare,
		Magnitude: types.NewQuantityFromInt(1),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, store.movements)
}

func TestApplyMovement_MagnitudeValidation(t *testing.T) {
	ctx := context.Background()

	oilEngine, oilStore := newTestEngine(Oil())
	orgID, oilStock := id.New(), id.New()
	oilStore.addStock(orgID, oilStock, "10")

	tireEngine, tireStore := newTestEngine(Tire())
	tireStock := id.New()
	tireStore.addStock(orgID, tireStock, "10")

	cases := []struct {
		name    string
		engine  *Engine
		stockID id.ID
		qty     string
	}{
		{"zero magnitude", oilEngine, oilStock, "0"},
		{"negative magnitude", oilEngine, oilStock, "-1"},
		{"oil beyond two decimals", oilEngine, oilStock, "1.505"},
		{"fractional tires", tireEngine, tireStock, "1.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.engine.ApplyMovement(ctx, ApplyInput{
				OrgID:     orgID,
				StockID:   tc.stockID,
				Type:      TypeIntrare,
				Magnitude: types.MustQuantity(tc.qty),
			})
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestApplyMovement_CrossOrgIsNotFound(t *testing.T) {
	engine, store := newTestEngine(Oil())
	ownerOrg, otherOrg, stockID := id.New(), id.New(), id.New()
	store.addStock(ownerOrg, stockID, "10")

	_, err := engine.ApplyMovement(context.Background(), ApplyInput{
		OrgID:     otherOrg,
		StockID:   stockID,
		Type:      TypeIntrare,
		Magnitude: types.NewQuantityFromInt(1),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReverseMovement_RestoresPreMountBalance(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(Tire())
	orgID, stockID := id.New(), id.New()
	store.addStock(orgID, stockID, "10")

	snap, err := engine.ApplyMovement(ctx, ApplyInput{
		OrgID:     orgID,
		StockID:   stockID,
		Type:      TypeMontare,
		Magnitude: types.NewQuantityFromInt(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "7", Tire().Format(snap.Quantity))

	reversed, err := engine.ReverseMovement(ctx, orgID, snap.MovementID)
	require.NoError(t, err)
	assert.Equal(t, "10", Tire().Format(reversed.Quantity))
	assert.Empty(t, store.movements)
}

func TestReverseMovement_RestoresPreUnmountBalance(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(Tire())
	orgID, stockID := id.New(), id.New()
	store.addStock(orgID, stockID, "4")

	snap, err := engine.ApplyMovement(ctx, ApplyInput{
		OrgID:     orgID,
		StockID:   stockID,
		Type:      TypeDemontare,
		Magnitude: types.NewQuantityFromInt(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "6", Tire().Format(snap.Quantity))

	reversed, err := engine.ReverseMovement(ctx, orgID, snap.MovementID)
	require.NoError(t, err)
	assert.Equal(t, "4", Tire().Format(reversed.Quantity))
}

func TestReverseMovement_RejectsNonReversibleTypes(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(Tire())
	orgID, stockID := id.New(), id.New()
	store.addStock(orgID, stockID, "0")

	snap, err := engine.ApplyMovement(ctx, ApplyInput{
		OrgID:     orgID,
		StockID:   stockID,
		Type:      TypeIntrare,
		Magnitude: types.NewQuantityFromInt(5),
	})
	require.NoError(t, err)

	_, err = engine.ReverseMovement(ctx, orgID, snap.MovementID)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	// The movement survives a rejected reversal.
	assert.Len(t, store.movements, 1)
	assert.Equal(t, "5", Tire().Format(store.balances[stockID].Quantity))
}

func TestReverseMovement_RejectsWhenReversedBalanceWouldGoNegative(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(Tire())
	orgID, stockID := id.New(), id.New()
	store.addStock(orgID, stockID, "0")

	// Unmount brings 2 back to the warehouse, then both leave for good.
	snap, err := engine.ApplyMovement(ctx, ApplyInput{
		OrgID:     orgID,
		StockID:   stockID,
		Type:      TypeDemontare,
		Magnitude: types.NewQuantityFromInt(2),
	})
	require.NoError(t, err)

	_, err = engine.ApplyMovement(ctx, ApplyInput{
		OrgID:     orgID,
		StockID:   stockID,
		Type:      TypeMontare,
		Magnitude: types.NewQuantityFromInt(2),
	})
	require.NoError(t, err)

	// Reversing the DEMONTARE would need 2 on hand; there are 0.
	_, err = engine.ReverseMovement(ctx, orgID, snap.MovementID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "0", Tire().Format(store.balances[stockID].Quantity))
	assert.Len(t, store.movements, 2)
}

func TestReverseMovement_UnknownMovementIsNotFound(t *testing.T) {
	engine, _ := newTestEngine(Tire())
	_, err := engine.ReverseMovement(context.Background(), id.New(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
