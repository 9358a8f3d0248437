package models

import (
	"strings"
	"time"
)

// Vehicle is a car owned by exactly one user.
type Vehicle struct {
	ID           string    `bson:"id" json:"id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	Make         string    `bson:"make" json:"make"`
	Model        string    `bson:"model" json:"model"`
	Year         int       `bson:"year" json:"year"`
	LicensePlate string    `bson:"license_plate" json:"license_plate"`
	Color        string    `bson:"color,omitempty" json:"color,omitempty"`
	VIN          string    `bson:"vin,omitempty" json:"vin,omitempty"`
	CreatedAt    time.Time `bson:"created_at,omitempty" json:"created_at,omitzero"`
	UpdatedAt    time.Time `bson:"updated_at,omitempty" json:"updated_at,omitzero"`
}

func (v *Vehicle) Identity() string      { return v.ID }
func (v *Vehicle) SetIdentity(id string) { v.ID = id }

func (v *Vehicle) Touch(now time.Time) {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
}

// VehicleInput is the create payload for a vehicle.
type VehicleInput struct {
	Make         string `json:"make" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year" binding:"required"`
	LicensePlate string `json:"license_plate" binding:"required"`
	Color        string `json:"color"`
	VIN          string `json:"vin"`
}

func (in VehicleInput) Validate() error {
	if strings.TrimSpace(in.Make) == "" {
		return &ValidationError{Field: "make", Reason: "is required"}
	}
	if strings.TrimSpace(in.Model) == "" {
		return &ValidationError{Field: "model", Reason: "is required"}
	}
	if in.Year < 1886 || in.Year > time.Now().Year()+1 {
		return &ValidationError{Field: "year", Reason: "is out of range"}
	}
	if strings.TrimSpace(in.LicensePlate) == "" {
		return &ValidationError{Field: "license_plate", Reason: "is required"}
	}
	if in.VIN != "" && len(in.VIN) != 17 {
		return &ValidationError{Field: "vin", Reason: "must be 17 characters"}
	}
	return nil
}

// VehiclePatch is a partial vehicle update.
type VehiclePatch struct {
	Make         *string `json:"make,omitempty"`
	Model        *string `json:"model,omitempty"`
	Year         *int    `json:"year,omitempty"`
	LicensePlate *string `json:"license_plate,omitempty"`
	Color        *string `json:"color,omitempty"`
	VIN          *string `json:"vin,omitempty"`
}

func (p VehiclePatch) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if p.Make != nil {
		fields["make"] = *p.Make
	}
	if p.Model != nil {
		fields["model"] = *p.Model
	}
	if p.Year != nil {
		if *p.Year < 1886 || *p.Year > time.Now().Year()+1 {
			return nil, &ValidationError{Field: "year", Reason: "is out of range"}
		}
		fields["year"] = *p.Year
	}
	if p.LicensePlate != nil {
		if strings.TrimSpace(*p.LicensePlate) == "" {
			return nil, &ValidationError{Field: "license_plate", Reason: "must not be empty"}
		}
		fields["license_plate"] = *p.LicensePlate
	}
	if p.Color != nil {
		fields["color"] = *p.Color
	}
	if p.VIN != nil {
		if *p.VIN != "" && len(*p.VIN) != 17 {
			return nil, &ValidationError{Field: "vin", Reason: "must be 17 characters"}
		}
		fields["vin"] = *p.VIN
	}
	if len(fields) == 0 {
		return nil, &ValidationError{Field: "body", Reason: "no fields to update"}
	}
	return fields, nil
}
