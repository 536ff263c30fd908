package dto

import (
	"time"

	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/catalogs/vehicle"
)

// CreateVehicleRequest is the DTO for registering a vehicle.
type CreateVehicleRequest struct {
	Plate string `json:"plate" binding:"required"`
	Make  string `json:"make"`
	Model string `json:"model"`
	VIN   string `json:"vin"`
	Year  *int   `json:"year"`

	CurrentKm int64 `json:"currentKm" binding:"min=0"`

	InsuranceExpiry     *time.Time `json:"insuranceExpiry"`
	TachographExpiry    *time.Time `json:"tachographExpiry"`
	CopieConformaExpiry *time.Time `json:"copieConformaExpiry"`
	RevisionDueDate     *time.Time `json:"revisionDueDate"`
	RevisionDueKm       *int64     `json:"revisionDueKm"`
}

func (r CreateVehicleRequest) ToEntity(orgID id.ID) *vehicle.Vehicle {
	v := vehicle.NewVehicle(orgID, r.Plate, r.Make, r.Model)
	if r.VIN != "" {
		v.VIN = &r.VIN
	}
	v.Year = r.Year
	v.CurrentKm = types.Km(r.CurrentKm)
	v.InsuranceExpiry = r.InsuranceExpiry
	v.TachographExpiry = r.TachographExpiry
	v.CopieConformaExpiry = r.CopieConformaExpiry
	v.RevisionDueDate = r.RevisionDueDate
	if r.RevisionDueKm != nil {
		km := types.Km(*r.RevisionDueKm)
		v.RevisionDueKm = &km
	}
	return v
}

// UpdateVehicleRequest is the DTO for updating a vehicle.
type UpdateVehicleRequest struct {
	Version int    `json:"version" binding:"required"`
	Plate   string `json:"plate" binding:"required"`
	Make    string `json:"make"`
	Model   string `json:"model"`
	VIN     string `json:"vin"`
	Year    *int   `json:"year"`

	InsuranceExpiry     *time.Time `json:"insuranceExpiry"`
	TachographExpiry    *time.Time `json:"tachographExpiry"`
	CopieConformaExpiry *time.Time `json:"copieConformaExpiry"`
	RevisionDueDate     *time.Time `json:"revisionDueDate"`
	RevisionDueKm       *int64     `json:"revisionDueKm"`
}

func (r UpdateVehicleRequest) ApplyTo(v *vehicle.Vehicle) {
	v.Code = r.Plate
	v.Make = r.Make
	v.Model = r.Model
	if r.VIN != "" {
		v.VIN = &r.VIN
	} else {
		v.VIN = nil
	}
	v.Year = r.Year
	v.InsuranceExpiry = r.InsuranceExpiry
	v.TachographExpiry = r.TachographExpiry
	v.CopieConformaExpiry = r.CopieConformaExpiry
	v.RevisionDueDate = r.RevisionDueDate
	if r.RevisionDueKm != nil {
		km := types.Km(*r.RevisionDueKm)
		v.RevisionDueKm = &km
	} else {
		v.RevisionDueKm = nil
	}
	v.SetVersion(r.Version)
}

// VehicleResponse is the API representation of a vehicle.
type VehicleResponse struct {
	ID    string  `json:"id"`
	Plate string  `json:"plate"`
	Name  string  `json:"name"`
	Make  string  `json:"make,omitempty"`
	Model string  `json:"model,omitempty"`
	VIN   *string `json:"vin,omitempty"`
	Year  *int    `json:"year,omitempty"`

	CurrentKm int64 `json:"currentKm"`

	InsuranceExpiry     *time.Time `json:"insuranceExpiry,omitempty"`
	TachographExpiry    *time.Time `json:"tachographExpiry,omitempty"`
	CopieConformaExpiry *time.Time `json:"copieConformaExpiry,omitempty"`
	RevisionDueDate     *time.Time `json:"revisionDueDate,omitempty"`
	RevisionDueKm       *int64     `json:"revisionDueKm,omitempty"`

	Status       string    `json:"status"`
	DeletionMark bool      `json:"deletionMark"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FromVehicle maps the entity to its response DTO.
func FromVehicle(v *vehicle.Vehicle) VehicleResponse {
	resp := VehicleResponse{
		ID:                  v.ID.String(),
		Plate:               v.Plate(),
		Name:                v.Name,
		Make:                v.Make,
		Model:               v.Model,
		VIN:                 v.VIN,
		Year:                v.Year,
		CurrentKm:           v.CurrentKm.Int64(),
		InsuranceExpiry:     v.InsuranceExpiry,
		TachographExpiry:    v.TachographExpiry,
		CopieConformaExpiry: v.CopieConformaExpiry,
		RevisionDueDate:     v.RevisionDueDate,
		Status:              string(v.Status),
		DeletionMark:        v.DeletionMark,
		Version:             v.Version,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
	if v.RevisionDueKm != nil {
		km := v.RevisionDueKm.Int64()
		resp.RevisionDueKm = &km
	}
	return resp
}

// --- Odometer ---

// RecordOdometerRequest appends one odometer reading.
type RecordOdometerRequest struct {
	Km     int64      `json:"km" binding:"min=0"`
	ReadAt *time.Time `json:"readAt"`
	Notes  string     `json:"notes"`
}

// OdometerReadingResponse is one odometer log record.
type OdometerReadingResponse struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicleId"`
	Km        int64     `json:"km"`
	ReadAt    time.Time `json:"readAt"`
	Notes     *string   `json:"notes,omitempty"`
	UserID    *string   `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromOdometerReading maps the record to its response DTO.
func FromOdometerReading(r vehicle.OdometerReading) OdometerReadingResponse {
	resp := OdometerReadingResponse{
		ID:        r.ID.String(),
		VehicleID: r.VehicleID.String(),
		Km:        r.Km.Int64(),
		ReadAt:    r.ReadAt,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
	if r.UserID != nil {
		uid := r.UserID.String()
		resp.UserID = &uid
	}
	return resp
}
