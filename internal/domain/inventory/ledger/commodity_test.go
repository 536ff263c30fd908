package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleettrack/internal/core/types"
)

func TestOilDirectionTable(t *testing.T) {
	oil := Oil()

	expected := map[MovementType]Direction{
		TypeIntrare:   DirectionIn,
		TypeIesire:    DirectionOut,
		TypeUtilizare: DirectionOut,
	}
	assert.Equal(t, expected, oil.Directions)

	// Tire-only types are outside oil's closed set.
	_, err := oil.Direction(TypeMontare)
	require.Error(t, err)
	_, err = oil.Direction(TypeDemontare)
	require.Error(t, err)

	assert.False(t, oil.IsReversible(TypeIntrare))
}

func TestTireDirectionTable(t *testing.T) {
	tire := Tire()

	expected := map[MovementType]Direction{
		TypeIntrare:   DirectionIn,
		TypeIesire:    DirectionOut,
		TypeMontare:   DirectionOut,
		TypeDemontare: DirectionIn,
	}
	assert.Equal(t, expected, tire.Directions)

	_, err := tire.Direction(TypeUtilizare)
	require.Error(t, err)

	assert.True(t, tire.IsReversible(TypeMontare))
	assert.True(t, tire.IsReversible(TypeDemontare))
	assert.False(t, tire.IsReversible(TypeIntrare))
	assert.False(t, tire.IsReversible(TypeIesire))
}

func TestDirectionApply(t *testing.T) {
	balance := types.MustQuantity("10")
	qty := types.MustQuantity("3")

	assert.Equal(t, "13", DirectionIn.Apply(balance, qty).String())
	assert.Equal(t, "7", DirectionOut.Apply(balance, qty).String())
}

func TestCommodityFormat(t *testing.T) {
	assert.Equal(t, "15.00", Oil().Format(types.MustQuantity("15")))
	assert.Equal(t, "2.50", Oil().Format(types.MustQuantity("2.5")))
	assert.Equal(t, "7", Tire().Format(types.MustQuantity("7")))
}
