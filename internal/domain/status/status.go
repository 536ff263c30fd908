// Package status classifies vehicle document and revision deadlines.
//
// Classification is pure date/km arithmetic, recomputed on every read.
// The only persisted artifact is the denormalized status column on the
// vehicle row, refreshed after any mutation that can change the inputs.
package status

import (
	"time"

	"fleettrack/internal/core/types"
)

// Level is the classification result for one deadline.
type Level string

const (
	LevelOK      Level = "ok"
	LevelSoon    Level = "soon"
	LevelOverdue Level = "overdue"
	LevelMissing Level = "missing"
)

// Classification windows. Documents (insurance, tachograph, copie conforma)
// warn 30 days ahead; periodic revision warns 14 days or 1000 km ahead.
const (
	DocumentSoonWindow = 30 * 24 * time.Hour
	RevisionSoonWindow = 14 * 24 * time.Hour
	RevisionSoonKm     = types.Km(1000)
)

// severity orders levels for Worst. A vehicle missing a mandatory document
// ranks above one that merely has a deadline approaching.
var severity = map[Level]int{
	LevelOK:      0,
	LevelSoon:    1,
	LevelMissing: 2,
	LevelOverdue: 3,
}

// classifyExpiry maps a nullable expiry date to a level. The onMissing
// level encodes what absence means for the particular document.
func classifyExpiry(expiry *time.Time, now time.Time, window time.Duration, onMissing Level) Level {
	if expiry == nil {
		return onMissing
	}
	remaining := expiry.Sub(now)
	switch {
	case remaining < 0:
		return LevelOverdue
	case remaining <= window:
		return LevelSoon
	default:
		return LevelOK
	}
}

// Insurance classifies an insurance expiry date.
// A vehicle without insurance on record is treated as expired.
func Insurance(expiry *time.Time, now time.Time) Level {
	return classifyExpiry(expiry, now, DocumentSoonWindow, LevelOverdue)
}

// Tachograph classifies a tachograph calibration expiry date.
func Tachograph(expiry *time.Time, now time.Time) Level {
	return classifyExpiry(expiry, now, DocumentSoonWindow, LevelMissing)
}

// CopieConforma classifies a copie conforma (transport licence copy) expiry.
func CopieConforma(expiry *time.Time, now time.Time) Level {
	return classifyExpiry(expiry, now, DocumentSoonWindow, LevelMissing)
}

// Revision classifies the next periodic revision against both its due date
// and due odometer value. Either trigger alone is enough; with neither on
// record the revision schedule is missing.
func Revision(dueDate *time.Time, dueKm *types.Km, currentKm types.Km, now time.Time) Level {
	if dueDate == nil && dueKm == nil {
		return LevelMissing
	}

	result := LevelOK
	if dueDate != nil {
		result = Worst(result, classifyExpiry(dueDate, now, RevisionSoonWindow, LevelMissing))
	}
	if dueKm != nil {
		remaining := *dueKm - currentKm
		switch {
		case remaining < 0:
			result = Worst(result, LevelOverdue)
		case remaining <= RevisionSoonKm:
			result = Worst(result, LevelSoon)
		}
	}
	return result
}

// Worst returns the most severe of the given levels.
func Worst(levels ...Level) Level {
	worst := LevelOK
	for _, l := range levels {
		if severity[l] > severity[worst] {
			worst = l
		}
	}
	return worst
}

// Facts bundles everything classification needs about one vehicle.
type Facts struct {
	InsuranceExpiry     *time.Time
	TachographExpiry    *time.Time
	CopieConformaExpiry *time.Time
	RevisionDueDate     *time.Time
	RevisionDueKm       *types.Km
	CurrentKm           types.Km
}

// Vehicle returns the aggregate level for a vehicle: the worst of its
// individual document and revision classifications.
func Vehicle(f Facts, now time.Time) Level {
	return Worst(
		Insurance(f.InsuranceExpiry, now),
		Tachograph(f.TachographExpiry, now),
		CopieConforma(f.CopieConformaExpiry, now),
		Revision(f.RevisionDueDate, f.RevisionDueKm, f.CurrentKm, now),
	)
}

// DaysUntil returns whole days from now until t, negative when t is past.
// Used for reminder rule facts.
func DaysUntil(t time.Time, now time.Time) int {
	return int(t.Sub(now) / (24 * time.Hour))
}
