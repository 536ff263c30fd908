package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleettrack/internal/core/id"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences UPSERT per key.
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{values: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, _ := args[0].(string)
	increment := int64(1)
	if len(args) > 1 {
		if v, ok := args[1].(int64); ok {
			increment = v
		}
	}
	m.values[key] += increment
	return &mockRow{val: m.values[key]}
}

func TestNext_DefaultFormat(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	orgID := id.New()

	num, err := svc.Next(context.Background(), orgID, "SE")
	require.NoError(t, err)
	assert.Equal(t, "SE-000001", num)

	num, err = svc.Next(context.Background(), orgID, "SE")
	require.NoError(t, err)
	assert.Equal(t, "SE-000002", num)
}

func TestNext_OrgsCountIndependently(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()

	first, err := svc.Next(ctx, id.New(), "SE")
	require.NoError(t, err)
	second, err := svc.Next(ctx, id.New(), "SE")
	require.NoError(t, err)

	assert.Equal(t, "SE-000001", first)
	assert.Equal(t, "SE-000001", second)
}

func TestGetNextNumber_YearlyReset(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	orgID := id.New()

	cfg := Config{Prefix: "INV", IncludeYear: true, PadWidth: 5, ResetPeriod: "year"}
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(context.Background(), orgID, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", num)

	// A different year keys a fresh sequence.
	num, err = svc.GetNextNumber(context.Background(), orgID, cfg, nil, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "INV-2027-00001", num)
}

func TestGetNextNumber_CachedReservesRange(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	orgID := id.New()

	cfg := DefaultConfig("SE")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	for i := 1; i <= 12; i++ {
		num, err := svc.GetNextNumber(context.Background(), orgID, cfg, opts, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(i), ParseNumber(num))
	}

	// 12 numbers from ranges of 10 means exactly two DB allocations.
	q.mu.Lock()
	defer q.mu.Unlock()
	assert.Len(t, q.values, 1)
	for _, v := range q.values {
		assert.Equal(t, int64(20), v)
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("SE-000042"))
	assert.Equal(t, int64(7), ParseNumber("INV-2026-00007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}
