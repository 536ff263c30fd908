package tire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/inventory/ledger"
)

// mv builds a movement; calls list oldest-first, tests reverse before folding.
func mv(typ ledger.MovementType, stockID id.ID, qty int64, at time.Time) ledger.Movement {
	return ledger.Movement{
		ID:       id.New(),
		StockID:  stockID,
		Type:     typ,
		Quantity: types.NewQuantityFromInt(qty),
		Date:     at,
	}
}

func newestFirst(oldestFirst ...ledger.Movement) []ledger.Movement {
	out := make([]ledger.Movement, 0, len(oldestFirst))
	for i := len(oldestFirst) - 1; i >= 0; i-- {
		out = append(out, oldestFirst[i])
	}
	return out
}

func TestFoldMounted(t *testing.T) {
	stockA, stockB := id.New(), id.New()
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("demontare clears an earlier montare", func(t *testing.T) {
		mounted := foldMounted(newestFirst(
			mv(ledger.TypeMontare, stockA, 2, t0),
			mv(ledger.TypeMontare, stockB, 4, t0.AddDate(0, 0, 1)),
			mv(ledger.TypeDemontare, stockA, 2, t0.AddDate(0, 0, 2)),
		))
		require.Len(t, mounted, 1)
		assert.Equal(t, stockB, mounted[0].StockID)
		assert.Equal(t, "4", mounted[0].Quantity.String())
	})

	t.Run("mount then unmount leaves nothing", func(t *testing.T) {
		mounted := foldMounted(newestFirst(
			mv(ledger.TypeMontare, stockA, 4, t0),
			mv(ledger.TypeDemontare, stockA, 4, t0.AddDate(0, 0, 5)),
		))
		assert.Empty(t, mounted)
	})

	t.Run("remount after unmount is mounted again", func(t *testing.T) {
		mounted := foldMounted(newestFirst(
			mv(ledger.TypeMontare, stockA, 2, t0),
			mv(ledger.TypeDemontare, stockA, 2, t0.AddDate(0, 0, 1)),
			mv(ledger.TypeMontare, stockA, 2, t0.AddDate(0, 0, 2)),
		))
		require.Len(t, mounted, 1)
		assert.Equal(t, stockA, mounted[0].StockID)
		assert.Equal(t, t0.AddDate(0, 0, 2), mounted[0].MountedAt)
	})

	t.Run("only the latest montare per stock counts", func(t *testing.T) {
		latest := mv(ledger.TypeMontare, stockA, 2, t0.AddDate(0, 0, 3))
		mounted := foldMounted(newestFirst(
			mv(ledger.TypeMontare, stockA, 6, t0),
			latest,
		))
		require.Len(t, mounted, 1)
		assert.Equal(t, latest.ID, mounted[0].MovementID)
		assert.Equal(t, "2", mounted[0].Quantity.String())
	})

	t.Run("intrare and iesire are ignored", func(t *testing.T) {
		mounted := foldMounted(newestFirst(
			mv(ledger.TypeIntrare, stockA, 10, t0),
			mv(ledger.TypeMontare, stockA, 2, t0.AddDate(0, 0, 1)),
			mv(ledger.TypeIesire, stockA, 1, t0.AddDate(0, 0, 2)),
		))
		require.Len(t, mounted, 1)
		assert.Equal(t, stockA, mounted[0].StockID)
	})

	t.Run("empty log", func(t *testing.T) {
		assert.Empty(t, foldMounted(nil))
	})
}
