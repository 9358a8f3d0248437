package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"autocare/models"

	"go.uber.org/zap"
)

// Notifier delivers toasts to users.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// describer is implemented by errors that know how to present themselves.
type describer interface {
	Describe(action string) (title, description string)
}

// FromError turns a failed action ("create the booking") into a destructive
// toast. The error text itself is never copied into the toast.
func FromError(action string, err error) models.Notification {
	n := models.Notification{
		Variant:   models.VariantDestructive,
		CreatedAt: time.Now().UTC(),
	}

	var d describer
	switch {
	case errors.As(err, &d):
		n.Title, n.Description = d.Describe(action)
	case errors.Is(err, context.DeadlineExceeded):
		n.Title = "Request timed out"
		n.Description = fmt.Sprintf("We couldn't %s in time. Please try again.", action)
	case errors.Is(err, context.Canceled):
		n.Title = "Request cancelled"
		n.Description = fmt.Sprintf("We stopped trying to %s.", action)
	default:
		n.Title = "Something went wrong"
		n.Description = fmt.Sprintf("We couldn't %s. Please try again.", action)
	}
	return n
}

// Info builds a default-variant toast.
func Info(title, description string) models.Notification {
	return models.Notification{
		Title:       title,
		Description: description,
		Variant:     models.VariantDefault,
		CreatedAt:   time.Now().UTC(),
	}
}

// ForUser addresses n to a single user.
func ForUser(n models.Notification, userID string) models.Notification {
	n.UserID = userID
	return n
}

// LogNotifier writes toasts to the log.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l LogNotifier) Notify(_ context.Context, n models.Notification) {
	fields := []zap.Field{
		zap.String("title", n.Title),
		zap.String("description", n.Description),
		zap.String("user_id", n.UserID),
	}
	if n.Variant == models.VariantDestructive {
		l.Logger.Warn("notification", fields...)
		return
	}
	l.Logger.Info("notification", fields...)
}

// Multi fans one toast out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n models.Notification) {
	for _, notifier := range m {
		notifier.Notify(ctx, n)
	}
}

// Recorder keeps every toast it receives.
type Recorder struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (r *Recorder) Notify(_ context.Context, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

// All returns a copy of the recorded toasts in arrival order.
func (r *Recorder) All() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.sent...)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

// Reset forgets recorded toasts.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
