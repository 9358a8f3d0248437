package models

import (
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// BookingStatuses lists every status a booking may hold.
var BookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled}

// Valid reports whether s is one of the enumerated statuses. Transitions
// between statuses are not restricted.
func (s BookingStatus) Valid() bool {
	for _, v := range BookingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseBookingStatus validates a raw status value.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	s := BookingStatus(raw)
	if !s.Valid() {
		return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", raw)}
	}
	return s, nil
}

// Booking is a customer's appointment with a provider. Vehicle and Provider
// are value snapshots taken when the booking was made.
type Booking struct {
	ID          string          `bson:"id" json:"id"`
	UserID      string          `bson:"user_id" json:"user_id"`
	ServiceType string          `bson:"service_type" json:"service_type"`
	Date        string          `bson:"date" json:"date"` // YYYY-MM-DD
	Time        string          `bson:"time" json:"time"` // HH:MM
	Status      BookingStatus   `bson:"status" json:"status"`
	Vehicle     Vehicle         `bson:"vehicle" json:"vehicle"`
	Provider    ServiceProvider `bson:"provider" json:"provider"`
	Price       *float64        `bson:"price,omitempty" json:"price,omitempty"`
	Notes       *string         `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at" json:"updated_at"`
}

func (b *Booking) Identity() string      { return b.ID }
func (b *Booking) SetIdentity(id string) { b.ID = id }

func (b *Booking) Touch(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Slot returns the scheduled start of the booking in loc.
func (b *Booking) Slot(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, b.Date+" "+b.Time, loc)
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// BookingRequest is the payload for creating a booking. Either ProviderID or
// a Provider snapshot must be given; a snapshot covers providers that came
// from the fallback source and are not persisted.
type BookingRequest struct {
	ServiceType string           `json:"service_type" binding:"required"`
	Date        string           `json:"date" binding:"required"`
	Time        string           `json:"time" binding:"required"`
	VehicleID   string           `json:"vehicle_id" binding:"required"`
	ProviderID  string           `json:"provider_id"`
	Provider    *ServiceProvider `json:"provider,omitempty"`
	Status      BookingStatus    `json:"status,omitempty"`
	Price       *float64         `json:"price,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

// Validate checks formats only; it does not look anything up.
func (r BookingRequest) Validate() error {
	if r.ServiceType == "" {
		return &ValidationError{Field: "service_type", Reason: "is required"}
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	if _, err := time.Parse(TimeLayout, r.Time); err != nil {
		return &ValidationError{Field: "time", Reason: "must be HH:MM"}
	}
	if r.VehicleID == "" {
		return &ValidationError{Field: "vehicle_id", Reason: "is required"}
	}
	if r.ProviderID == "" && r.Provider == nil {
		return &ValidationError{Field: "provider_id", Reason: "provider_id or provider is required"}
	}
	if r.Status != "" && !r.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", r.Status)}
	}
	if r.Price != nil && *r.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return nil
}

// BookingPatch is a partial booking update. Nil fields are left untouched.
type BookingPatch struct {
	ServiceType *string        `json:"service_type,omitempty"`
	Date        *string        `json:"date,omitempty"`
	Time        *string        `json:"time,omitempty"`
	Status      *BookingStatus `json:"status,omitempty"`
	Price       *float64       `json:"price,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
}

// Fields validates the patch and returns the columns to overwrite.
func (p BookingPatch) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if p.ServiceType != nil {
		if *p.ServiceType == "" {
			return nil, &ValidationError{Field: "service_type", Reason: "must not be empty"}
		}
		fields["service_type"] = *p.ServiceType
	}
	if p.Date != nil {
		if _, err := time.Parse(DateLayout, *p.Date); err != nil {
			return nil, &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
		fields["date"] = *p.Date
	}
	if p.Time != nil {
		if _, err := time.Parse(TimeLayout, *p.Time); err != nil {
			return nil, &ValidationError{Field: "time", Reason: "must be HH:MM"}
		}
		fields["time"] = *p.Time
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *p.Status)}
		}
		fields["status"] = *p.Status
	}
	if p.Price != nil {
		if *p.Price < 0 {
			return nil, &ValidationError{Field: "price", Reason: "must not be negative"}
		}
		fields["price"] = *p.Price
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}
	if len(fields) == 0 {
		return nil, &ValidationError{Field: "body", Reason: "no fields to update"}
	}
	return fields, nil
}
