package models

import (
	"fmt"
	"strings"
	"time"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// ProviderLocation is the nested address block of the presentation shape.
type ProviderLocation struct {
	Address     string       `bson:"address" json:"address"`
	City        string       `bson:"city" json:"city"`
	State       string       `bson:"state" json:"state"`
	Zip         string       `bson:"zip" json:"zip"`
	Coordinates *Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// String formats the location as "City, ST".
func (l ProviderLocation) String() string {
	if l.State == "" {
		return l.City
	}
	return l.City + ", " + l.State
}

// ServiceProvider is the presentation shape of a provider, with a nested location.
type ServiceProvider struct {
	ID             string           `bson:"id" json:"id"`
	UserID         string           `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Name           string           `bson:"name" json:"name"`
	Description    string           `bson:"description,omitempty" json:"description,omitempty"`
	Phone          string           `bson:"phone,omitempty" json:"phone,omitempty"`
	Email          string           `bson:"email,omitempty" json:"email,omitempty"`
	Image          string           `bson:"image,omitempty" json:"image,omitempty"`
	Location       ProviderLocation `bson:"location" json:"location"`
	Services       []string         `bson:"services" json:"services"`
	Rating         *float64         `bson:"rating,omitempty" json:"rating,omitempty"`
	ReviewCount    *int             `bson:"review_count,omitempty" json:"review_count,omitempty"`
	Verified       *bool            `bson:"verified,omitempty" json:"verified,omitempty"`
	AvailableToday *bool            `bson:"available_today,omitempty" json:"available_today,omitempty"`
	CreatedAt      time.Time        `bson:"created_at,omitempty" json:"created_at,omitzero"`
	UpdatedAt      time.Time        `bson:"updated_at,omitempty" json:"updated_at,omitzero"`
}

// ProviderRow is the flat shape persisted in the service_providers table.
type ProviderRow struct {
	ID             string    `bson:"id" json:"id"`
	UserID         string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Name           string    `bson:"name" json:"name"`
	Description    string    `bson:"description,omitempty" json:"description,omitempty"`
	Phone          string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Email          string    `bson:"email,omitempty" json:"email,omitempty"`
	Image          string    `bson:"image,omitempty" json:"image,omitempty"`
	Address        string    `bson:"address" json:"address"`
	City           string    `bson:"city" json:"city"`
	State          string    `bson:"state" json:"state"`
	Zip            string    `bson:"zip" json:"zip"`
	Latitude       *float64  `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude      *float64  `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Services       []string  `bson:"services" json:"services"`
	Rating         *float64  `bson:"rating,omitempty" json:"rating,omitempty"`
	ReviewCount    *int      `bson:"review_count,omitempty" json:"review_count,omitempty"`
	Verified       *bool     `bson:"verified,omitempty" json:"verified,omitempty"`
	AvailableToday *bool     `bson:"available_today,omitempty" json:"available_today,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

func (r *ProviderRow) Identity() string      { return r.ID }
func (r *ProviderRow) SetIdentity(id string) { r.ID = id }

func (r *ProviderRow) Touch(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// ToServiceProvider maps a persisted row to the presentation shape. Rows
// missing id, name or city, or carrying only half a coordinate pair, are
// rejected with ErrInvalidProviderRow.
func ToServiceProvider(row ProviderRow) (ServiceProvider, error) {
	switch {
	case strings.TrimSpace(row.ID) == "":
		return ServiceProvider{}, fmt.Errorf("%w: missing id", ErrInvalidProviderRow)
	case strings.TrimSpace(row.Name) == "":
		return ServiceProvider{}, fmt.Errorf("%w: provider %s has no name", ErrInvalidProviderRow, row.ID)
	case strings.TrimSpace(row.City) == "":
		return ServiceProvider{}, fmt.Errorf("%w: provider %s has no city", ErrInvalidProviderRow, row.ID)
	case (row.Latitude == nil) != (row.Longitude == nil):
		return ServiceProvider{}, fmt.Errorf("%w: provider %s has partial coordinates", ErrInvalidProviderRow, row.ID)
	}

	p := ServiceProvider{
		ID:          row.ID,
		UserID:      row.UserID,
		Name:        row.Name,
		Description: row.Description,
		Phone:       row.Phone,
		Email:       row.Email,
		Image:       row.Image,
		Location: ProviderLocation{
			Address: row.Address,
			City:    row.City,
			State:   row.State,
			Zip:     row.Zip,
		},
		Services:       UniqueServices(row.Services),
		Rating:         row.Rating,
		ReviewCount:    row.ReviewCount,
		Verified:       row.Verified,
		AvailableToday: row.AvailableToday,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.Latitude != nil {
		p.Location.Coordinates = &Coordinates{Lat: *row.Latitude, Lng: *row.Longitude}
	}
	return p, nil
}

// ToProviderRow flattens the presentation shape for persistence.
func ToProviderRow(p ServiceProvider) ProviderRow {
	row := ProviderRow{
		ID:             p.ID,
		UserID:         p.UserID,
		Name:           p.Name,
		Description:    p.Description,
		Phone:          p.Phone,
		Email:          p.Email,
		Image:          p.Image,
		Address:        p.Location.Address,
		City:           p.Location.City,
		State:          p.Location.State,
		Zip:            p.Location.Zip,
		Services:       UniqueServices(p.Services),
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		Verified:       p.Verified,
		AvailableToday: p.AvailableToday,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if c := p.Location.Coordinates; c != nil {
		lat, lng := c.Lat, c.Lng
		row.Latitude = &lat
		row.Longitude = &lng
	}
	return row
}

// UniqueServices drops blank and repeated service names, keeping first-seen order.
func UniqueServices(services []string) []string {
	seen := make(map[string]bool, len(services))
	out := make([]string, 0, len(services))
	for _, s := range services {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// ProviderProfile is the registration payload for a provider.
type ProviderProfile struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Phone       string           `json:"phone"`
	Email       string           `json:"email"`
	Image       string           `json:"image"`
	Location    ProviderLocation `json:"location"`
	Services    []string         `json:"services"`
}

// Validate checks the fields ToServiceProvider requires.
func (p ProviderProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if strings.TrimSpace(p.Location.City) == "" {
		return &ValidationError{Field: "location.city", Reason: "is required"}
	}
	return nil
}

// ProviderPatch is a partial profile update in the presentation shape.
type ProviderPatch struct {
	Name           *string           `json:"name,omitempty"`
	Description    *string           `json:"description,omitempty"`
	Phone          *string           `json:"phone,omitempty"`
	Email          *string           `json:"email,omitempty"`
	Image          *string           `json:"image,omitempty"`
	Location       *ProviderLocation `json:"location,omitempty"`
	Services       []string          `json:"services,omitempty"`
	AvailableToday *bool             `json:"available_today,omitempty"`
}

// Fields flattens the patch into persisted column names.
func (p ProviderPatch) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
		}
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Phone != nil {
		fields["phone"] = *p.Phone
	}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.Image != nil {
		fields["image"] = *p.Image
	}
	if l := p.Location; l != nil {
		if strings.TrimSpace(l.City) == "" {
			return nil, &ValidationError{Field: "location.city", Reason: "is required"}
		}
		fields["address"] = l.Address
		fields["city"] = l.City
		fields["state"] = l.State
		fields["zip"] = l.Zip
		// A new address without coordinates clears the old point.
		if l.Coordinates != nil {
			fields["latitude"] = l.Coordinates.Lat
			fields["longitude"] = l.Coordinates.Lng
		} else {
			fields["latitude"] = nil
			fields["longitude"] = nil
		}
	}
	if p.Services != nil {
		fields["services"] = UniqueServices(p.Services)
	}
	if p.AvailableToday != nil {
		fields["available_today"] = *p.AvailableToday
	}
	if len(fields) == 0 {
		return nil, &ValidationError{Field: "body", Reason: "no fields to update"}
	}
	return fields, nil
}
