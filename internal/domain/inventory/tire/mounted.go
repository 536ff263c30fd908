package tire

import (
	"time"

	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/inventory/ledger"
)

// Mounted describes tires currently installed on a vehicle, derived from
// the movement log. There is no persisted current-assignment table; the
// fold below is the single source of truth.
type Mounted struct {
	StockID    id.ID          `json:"stockId"`
	MovementID id.ID          `json:"movementId"`
	Quantity   types.Quantity `json:"quantity"`
	MountedAt  time.Time      `json:"mountedAt"`
	OdometerKm *types.Km      `json:"odometerKm,omitempty"`
	DriverName *string        `json:"driverName,omitempty"`
}

// foldMounted derives the mounted set from a vehicle's movements ordered
// most recent first: the latest MONTARE per stock id counts as mounted
// unless a more recent DEMONTARE for the same stock id precedes it in the
// scan. Other movement types are ignored.
func foldMounted(newestFirst []ledger.Movement) []Mounted {
	unmounted := make(map[id.ID]bool)
	taken := make(map[id.ID]bool)

	var mounted []Mounted
	for _, m := range newestFirst {
		switch m.Type {
		case ledger.TypeDemontare:
			unmounted[m.StockID] = true
		case ledger.TypeMontare:
			if unmounted[m.StockID] || taken[m.StockID] {
				continue
			}
			taken[m.StockID] = true
			mounted = append(mounted, Mounted{
				StockID:    m.StockID,
				MovementID: m.ID,
				Quantity:   m.Quantity,
				MountedAt:  m.Date,
				OdometerKm: m.OdometerKm,
				DriverName: m.DriverName,
			})
		}
	}
	return mounted
}
