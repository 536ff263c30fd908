package dto

import (
	"time"

	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/inventory/tire"
)

// Tire quantities are whole units, so they travel as integers.

// CreateTireStockRequest registers a tire variant. Blank descriptor fields
// are allowed and normalized server-side.
type CreateTireStockRequest struct {
	Brand           string `json:"brand"`
	Model           string `json:"model"`
	Dimension       string `json:"dimension"`
	DOTCode         string `json:"dotCode"`
	Location        string `json:"location"`
	InitialQuantity int64  `json:"initialQuantity" binding:"min=0"`
}

func (r CreateTireStockRequest) ToInput() tire.CreateStockInput {
	return tire.CreateStockInput{
		Brand:           r.Brand,
		Model:           r.Model,
		Dimension:       r.Dimension,
		DOTCode:         r.DOTCode,
		Location:        r.Location,
		InitialQuantity: types.NewQuantityFromInt(r.InitialQuantity),
	}
}

// TireStockResponse is the API representation of a tire stock.
type TireStockResponse struct {
	ID        string    `json:"id"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	Dimension string    `json:"dimension"`
	DOTCode   string    `json:"dotCode"`
	Location  string    `json:"location,omitempty"`
	Quantity  string    `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromTireStock maps the entity to its response DTO.
func FromTireStock(s *tire.Stock) TireStockResponse {
	return TireStockResponse{
		ID:        s.ID.String(),
		Brand:     s.Brand,
		Model:     s.Model,
		Dimension: s.Dimension,
		DOTCode:   s.DOTCode,
		Location:  s.Location,
		Quantity:  s.Quantity.StringFixed(0),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// AdjustTireStockRequest applies a manual INTRARE or IESIRE correction.
type AdjustTireStockRequest struct {
	Type     string     `json:"type" binding:"required"`
	Quantity int64      `json:"quantity" binding:"required,min=1"`
	Date     *time.Time `json:"date"`
	Notes    string     `json:"notes"`
}

// TireMountRequest moves tires between the shelf and a vehicle.
type TireMountRequest struct {
	VehicleID  string     `json:"vehicleId" binding:"required,uuid"`
	StockID    string     `json:"stockId" binding:"required,uuid"`
	Quantity   int64      `json:"quantity" binding:"required,min=1"`
	Date       *time.Time `json:"date"`
	OdometerKm *int64     `json:"odometerKm"`
	DriverName string     `json:"driverName"`
	Notes      string     `json:"notes"`
}

// MountedTireResponse is one entry of a vehicle's mounted set.
type MountedTireResponse struct {
	StockID    string    `json:"stockId"`
	MovementID string    `json:"movementId"`
	Quantity   string    `json:"quantity"`
	MountedAt  time.Time `json:"mountedAt"`
	OdometerKm *int64    `json:"odometerKm,omitempty"`
	DriverName *string   `json:"driverName,omitempty"`
}

// FromMounted maps the fold result.
func FromMounted(items []tire.Mounted) []MountedTireResponse {
	out := make([]MountedTireResponse, len(items))
	for i, m := range items {
		resp := MountedTireResponse{
			StockID:    m.StockID.String(),
			MovementID: m.MovementID.String(),
			Quantity:   m.Quantity.StringFixed(0),
			MountedAt:  m.MountedAt,
			DriverName: m.DriverName,
		}
		if m.OdometerKm != nil {
			km := m.OdometerKm.Int64()
			resp.OdometerKm = &km
		}
		out[i] = resp
	}
	return out
}

// FromTireMovementRow maps a joined tire movement row.
func FromTireMovementRow(row tire.MovementRow) MovementResponse {
	return fromMovement(row.Movement, row.StockLabel, row.VehicleName, row.UserEmail, 0)
}

// FromTireMovementRows maps a history slice.
func FromTireMovementRows(rows []tire.MovementRow) []MovementResponse {
	out := make([]MovementResponse, len(rows))
	for i, row := range rows {
		out[i] = FromTireMovementRow(row)
	}
	return out
}
