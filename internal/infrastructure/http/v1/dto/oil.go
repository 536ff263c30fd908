package dto

import (
	"time"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/inventory/ledger"
	"fleettrack/internal/domain/inventory/oil"
)

// Oil quantities travel as decimal strings ("15.50") so two-decimal
// precision survives the JSON round trip.

func ParseQuantity(s, field string) (types.Quantity, error) {
	if s == "" {
		return types.Zero(), nil
	}
	q, err := types.NewQuantityFromString(s)
	if err != nil {
		return types.Zero(), apperror.NewValidation("invalid quantity").
			WithDetail("field", field).
			WithDetail("value", s)
	}
	return q, nil
}

// --- Stock ---

// CreateOilStockRequest registers an oil variant.
type CreateOilStockRequest struct {
	OilType         string `json:"oilType" binding:"required"`
	Brand           string `json:"brand" binding:"required"`
	Location        string `json:"location"`
	InitialQuantity string `json:"initialQuantity"`
}

func (r CreateOilStockRequest) ToInput() (oil.CreateStockInput, error) {
	qty, err := ParseQuantity(r.InitialQuantity, "initialQuantity")
	if err != nil {
		return oil.CreateStockInput{}, err
	}
	return oil.CreateStockInput{
		OilType:         r.OilType,
		Brand:           r.Brand,
		Location:        r.Location,
		InitialQuantity: qty,
	}, nil
}

// UpdateOilStockRequest changes descriptive fields only.
type UpdateOilStockRequest struct {
	OilType  string `json:"oilType" binding:"required"`
	Brand    string `json:"brand" binding:"required"`
	Location string `json:"location"`
}

func (r UpdateOilStockRequest) ToInput() oil.UpdateStockInput {
	return oil.UpdateStockInput{
		OilType:  r.OilType,
		Brand:    r.Brand,
		Location: r.Location,
	}
}

// OilStockResponse is the API representation of an oil stock.
type OilStockResponse struct {
	ID        string    `json:"id"`
	OilType   string    `json:"oilType"`
	Brand     string    `json:"brand"`
	Location  string    `json:"location,omitempty"`
	Quantity  string    `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromOilStock maps the entity to its response DTO.
func FromOilStock(s *oil.Stock) OilStockResponse {
	return OilStockResponse{
		ID:        s.ID.String(),
		OilType:   s.OilType,
		Brand:     s.Brand,
		Location:  s.Location,
		Quantity:  s.Quantity.StringFixed(2),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// --- Movements ---

// AdjustStockRequest applies a manual INTRARE or IESIRE correction.
type AdjustStockRequest struct {
	Type     string     `json:"type" binding:"required"`
	Quantity string     `json:"quantity" binding:"required"`
	Date     *time.Time `json:"date"`
	Notes    string     `json:"notes"`
}

// RecordOilUsageRequest records UTILIZARE consumption on a vehicle.
type RecordOilUsageRequest struct {
	StockID        string     `json:"stockId" binding:"required,uuid"`
	VehicleID      string     `json:"vehicleId" binding:"required,uuid"`
	ServiceEventID string     `json:"serviceEventId" binding:"omitempty,uuid"`
	Quantity       string     `json:"quantity" binding:"required"`
	Date           *time.Time `json:"date"`
	OdometerKm     *int64     `json:"odometerKm"`
	Notes          string     `json:"notes"`
}

// SnapshotResponse is the stock state after a committed ledger mutation.
type SnapshotResponse struct {
	StockID    string    `json:"stockId"`
	Quantity   string    `json:"quantity"`
	UpdatedAt  time.Time `json:"updatedAt"`
	MovementID string    `json:"movementId"`
}

// FromSnapshot maps an engine snapshot at the given scale.
func FromSnapshot(s ledger.Snapshot, scale int32) SnapshotResponse {
	return SnapshotResponse{
		StockID:    s.StockID.String(),
		Quantity:   s.Quantity.StringFixed(scale),
		UpdatedAt:  s.UpdatedAt,
		MovementID: s.MovementID.String(),
	}
}

// MovementResponse is one ledger entry joined with display labels.
type MovementResponse struct {
	ID             string    `json:"id"`
	StockID        string    `json:"stockId"`
	StockLabel     string    `json:"stockLabel,omitempty"`
	Type           string    `json:"type"`
	Quantity       string    `json:"quantity"`
	Date           time.Time `json:"date"`
	VehicleID      *string   `json:"vehicleId,omitempty"`
	VehicleName    *string   `json:"vehicleName,omitempty"`
	ServiceEventID *string   `json:"serviceEventId,omitempty"`
	OdometerKm     *int64    `json:"odometerKm,omitempty"`
	DriverName     *string   `json:"driverName,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	UserEmail      *string   `json:"userEmail,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func fromMovement(m ledger.Movement, label string, vehicleName, userEmail *string, scale int32) MovementResponse {
	resp := MovementResponse{
		ID:          m.ID.String(),
		StockID:     m.StockID.String(),
		StockLabel:  label,
		Type:        string(m.Type),
		Quantity:    m.Quantity.StringFixed(scale),
		Date:        m.Date,
		VehicleName: vehicleName,
		DriverName:  m.DriverName,
		Notes:       m.Notes,
		UserEmail:   userEmail,
		CreatedAt:   m.CreatedAt,
	}
	if m.VehicleID != nil {
		v := m.VehicleID.String()
		resp.VehicleID = &v
	}
	if m.ServiceEventID != nil {
		se := m.ServiceEventID.String()
		resp.ServiceEventID = &se
	}
	if m.OdometerKm != nil {
		km := m.OdometerKm.Int64()
		resp.OdometerKm = &km
	}
	return resp
}

// FromOilMovementRow maps a joined oil movement row.
func FromOilMovementRow(row oil.MovementRow) MovementResponse {
	return fromMovement(row.Movement, row.StockLabel, row.VehicleName, row.UserEmail, 2)
}

// FromOilMovementRows maps a history slice.
func FromOilMovementRows(rows []oil.MovementRow) []MovementResponse {
	out := make([]MovementResponse, len(rows))
	for i, row := range rows {
		out[i] = FromOilMovementRow(row)
	}
	return out
}
