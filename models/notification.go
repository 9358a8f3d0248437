package models

import "time"

const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Notification is a transient, dismissable message for the user.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     string    `json:"variant"`
	UserID      string    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReminderPayload is the body of a booking reminder task.
type ReminderPayload struct {
	BookingID   string `json:"bookingId"`
	UserID      string `json:"userId"`
	ServiceType string `json:"serviceType"`
	Provider    string `json:"provider"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}
