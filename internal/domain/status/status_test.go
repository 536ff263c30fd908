package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fleettrack/internal/core/types"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func datePtr(t time.Time) *time.Time { return &t }

func kmPtr(k types.Km) *types.Km { return &k }

func TestInsurance(t *testing.T) {
	tests := []struct {
		name   string
		expiry *time.Time
		want   Level
	}{
		{"nil expiry treated as expired", nil, LevelOverdue},
		{"expired yesterday", datePtr(now.AddDate(0, 0, -1)), LevelOverdue},
		{"expires in 1 day", datePtr(now.AddDate(0, 0, 1)), LevelSoon},
		{"expires in exactly 30 days", datePtr(now.Add(30 * 24 * time.Hour)), LevelSoon},
		{"expires in 31 days", datePtr(now.AddDate(0, 0, 31)), LevelOK},
		{"expires next year", datePtr(now.AddDate(1, 0, 0)), LevelOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Insurance(tt.expiry, now))
		})
	}
}

func TestTachographAndCopieConforma(t *testing.T) {
	// Absence means the document was never recorded, not that it expired.
	assert.Equal(t, LevelMissing, Tachograph(nil, now))
	assert.Equal(t, LevelMissing, CopieConforma(nil, now))

	past := datePtr(now.AddDate(0, -1, 0))
	assert.Equal(t, LevelOverdue, Tachograph(past, now))
	assert.Equal(t, LevelOverdue, CopieConforma(past, now))

	soon := datePtr(now.AddDate(0, 0, 14))
	assert.Equal(t, LevelSoon, Tachograph(soon, now))

	far := datePtr(now.AddDate(0, 6, 0))
	assert.Equal(t, LevelOK, CopieConforma(far, now))
}

func TestRevision(t *testing.T) {
	tests := []struct {
		name      string
		dueDate   *time.Time
		dueKm     *types.Km
		currentKm types.Km
		want      Level
	}{
		{"no schedule at all", nil, nil, 100_000, LevelMissing},
		{"date far, no km", datePtr(now.AddDate(0, 3, 0)), nil, 0, LevelOK},
		{"date within 14 days", datePtr(now.AddDate(0, 0, 10)), nil, 0, LevelSoon},
		{"date in 15 days is still ok", datePtr(now.AddDate(0, 0, 15)), nil, 0, LevelOK},
		{"date passed", datePtr(now.AddDate(0, 0, -2)), nil, 0, LevelOverdue},
		{"km far", nil, kmPtr(120_000), 100_000, LevelOK},
		{"km within 1000", nil, kmPtr(100_900), 100_000, LevelSoon},
		{"km at exactly 1000", nil, kmPtr(101_000), 100_000, LevelSoon},
		{"km exceeded", nil, kmPtr(99_000), 100_000, LevelOverdue},
		{"date ok but km soon takes precedence", datePtr(now.AddDate(0, 2, 0)), kmPtr(100_500), 100_000, LevelSoon},
		{"km ok but date overdue takes precedence", datePtr(now.AddDate(0, 0, -1)), kmPtr(150_000), 100_000, LevelOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Revision(tt.dueDate, tt.dueKm, tt.currentKm, now))
		})
	}
}

func TestWorst(t *testing.T) {
	assert.Equal(t, LevelOK, Worst())
	assert.Equal(t, LevelOK, Worst(LevelOK, LevelOK))
	assert.Equal(t, LevelSoon, Worst(LevelOK, LevelSoon))
	assert.Equal(t, LevelMissing, Worst(LevelSoon, LevelMissing))
	assert.Equal(t, LevelOverdue, Worst(LevelMissing, LevelOverdue, LevelSoon))
}

func TestVehicleAggregate(t *testing.T) {
	healthy := Facts{
		InsuranceExpiry:     datePtr(now.AddDate(1, 0, 0)),
		TachographExpiry:    datePtr(now.AddDate(0, 6, 0)),
		CopieConformaExpiry: datePtr(now.AddDate(0, 4, 0)),
		RevisionDueDate:     datePtr(now.AddDate(0, 2, 0)),
		RevisionDueKm:       kmPtr(150_000),
		CurrentKm:           100_000,
	}
	assert.Equal(t, LevelOK, Vehicle(healthy, now))

	// One expired document drags the whole vehicle to overdue.
	expired := healthy
	expired.InsuranceExpiry = datePtr(now.AddDate(0, 0, -5))
	assert.Equal(t, LevelOverdue, Vehicle(expired, now))

	// A missing tachograph outranks an approaching revision.
	missing := healthy
	missing.TachographExpiry = nil
	missing.RevisionDueKm = kmPtr(100_200)
	assert.Equal(t, LevelMissing, Vehicle(missing, now))
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 10, DaysUntil(now.AddDate(0, 0, 10), now))
	assert.Equal(t, 0, DaysUntil(now.Add(12*time.Hour), now))
	assert.Equal(t, -3, DaysUntil(now.AddDate(0, 0, -3), now))
}
