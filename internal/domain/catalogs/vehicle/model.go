// Package vehicle provides the Vehicle catalog and its odometer log.
package vehicle

import (
	"context"
	"strings"
	"time"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/entity"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/status"
)

// Vehicle is one fleet unit. Code carries the normalized registration
// plate, unique per organization; Status is the denormalized classifier
// result kept for filtering and dashboard sorting.
type Vehicle struct {
	entity.Catalog

	Make  string  `db:"make" json:"make"`
	Model string  `db:"model" json:"model"`
	VIN   *string `db:"vin" json:"vin,omitempty"`
	Year  *int    `db:"year" json:"year,omitempty"`

	// CurrentKm mirrors the latest odometer reading
	CurrentKm types.Km `db:"current_km" json:"currentKm"`

	InsuranceExpiry     *time.Time `db:"insurance_expiry" json:"insuranceExpiry,omitempty"`
	TachographExpiry    *time.Time `db:"tachograph_expiry" json:"tachographExpiry,omitempty"`
	CopieConformaExpiry *time.Time `db:"copie_conforma_expiry" json:"copieConformaExpiry,omitempty"`
	RevisionDueDate     *time.Time `db:"revision_due_date" json:"revisionDueDate,omitempty"`
	RevisionDueKm       *types.Km  `db:"revision_due_km" json:"revisionDueKm,omitempty"`

	// Status is refreshed by RecalculateStatus after any mutation that can
	// change the classifier inputs
	Status status.Level `db:"status" json:"status"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewVehicle creates a vehicle with a normalized plate.
func NewVehicle(orgID id.ID, plate, vehicleMake, vehicleModel string) *Vehicle {
	now := time.Now().UTC()
	v := &Vehicle{
		Catalog:   entity.NewCatalog(orgID, NormalizePlate(plate), strings.TrimSpace(vehicleMake+" "+vehicleModel)),
		Make:      vehicleMake,
		Model:     vehicleModel,
		Status:    status.LevelMissing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return v
}

// NormalizePlate uppercases a registration plate and strips spaces and
// dashes, so "b-123-xyz" and "B 123 XYZ" collide on the unique index.
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	plate = strings.ReplaceAll(plate, " ", "")
	return strings.ReplaceAll(plate, "-", "")
}

// Plate returns the normalized registration plate.
func (v *Vehicle) Plate() string {
	return v.Code
}

// Validate implements entity.Validatable.
func (v *Vehicle) Validate(ctx context.Context) error {
	if v.Code == "" {
		return apperror.NewValidation("registration plate is required").WithDetail("field", "plate")
	}
	if v.CurrentKm.IsNegative() {
		return apperror.NewValidation("odometer cannot be negative").WithDetail("field", "currentKm")
	}
	return v.Catalog.Validate(ctx)
}

// Facts exposes the classifier inputs.
func (v *Vehicle) Facts() status.Facts {
	return status.Facts{
		InsuranceExpiry:     v.InsuranceExpiry,
		TachographExpiry:    v.TachographExpiry,
		CopieConformaExpiry: v.CopieConformaExpiry,
		RevisionDueDate:     v.RevisionDueDate,
		RevisionDueKm:       v.RevisionDueKm,
		CurrentKm:           v.CurrentKm,
	}
}

// Refresh recomputes the denormalized status from the classifier.
func (v *Vehicle) Refresh(now time.Time) {
	v.Status = status.Vehicle(v.Facts(), now)
}

// OdometerReading is one append-only km record for a vehicle.
type OdometerReading struct {
	ID        id.ID     `db:"id" json:"id"`
	OrgID     id.ID     `db:"org_id" json:"orgId"`
	VehicleID id.ID     `db:"vehicle_id" json:"vehicleId"`
	Km        types.Km  `db:"km" json:"km"`
	ReadAt    time.Time `db:"read_at" json:"readAt"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	UserID    *id.ID    `db:"user_id" json:"userId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
