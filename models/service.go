package models

import (
	"strings"
	"time"
)

// Service is an offering in the catalogue: what is done, how long it takes and what it costs.
type Service struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Duration    int       `bson:"duration" json:"duration"` // minutes
	Price       float64   `bson:"price" json:"price"`
	ProviderID  string    `bson:"provider_id,omitempty" json:"provider_id,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

func (s *Service) Identity() string      { return s.ID }
func (s *Service) SetIdentity(id string) { s.ID = id }

func (s *Service) Touch(now time.Time) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
}

// ServiceInput is the create payload for a catalogue entry.
type ServiceInput struct {
	ID          string  `json:"id"`
	Name        string  `json:"name" binding:"required"`
	Duration    int     `json:"duration" binding:"required"`
	Price       float64 `json:"price"`
	ProviderID  string  `json:"provider_id"`
	Description string  `json:"description"`
}

func (in ServiceInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if in.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "must be positive"}
	}
	if in.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return nil
}

// ServicePatch is a partial catalogue update.
type ServicePatch struct {
	Name        *string  `json:"name,omitempty"`
	Duration    *int     `json:"duration,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
}

func (p ServicePatch) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
		}
		fields["name"] = *p.Name
	}
	if p.Duration != nil {
		if *p.Duration <= 0 {
			return nil, &ValidationError{Field: "duration", Reason: "must be positive"}
		}
		fields["duration"] = *p.Duration
	}
	if p.Price != nil {
		if *p.Price < 0 {
			return nil, &ValidationError{Field: "price", Reason: "must not be negative"}
		}
		fields["price"] = *p.Price
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if len(fields) == 0 {
		return nil, &ValidationError{Field: "body", Reason: "no fields to update"}
	}
	return fields, nil
}
