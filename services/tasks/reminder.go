package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"autocare/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeBookingReminder = "booking:reminder"

// ReminderLead is how long before the slot the reminder fires.
const ReminderLead = 24 * time.Hour

// ErrTooLate is returned when the slot is closer than ReminderLead.
var ErrTooLate = errors.New("booking slot is less than 24h away")

func NewBookingReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(ReminderTaskID(payload)),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// ReminderTaskID identifies the reminder for one booking slot. Rescheduling
// yields a new id, so the new reminder never collides with the old one.
func ReminderTaskID(p models.ReminderPayload) string {
	return fmt.Sprintf("reminder:%s:%sT%s", p.BookingID, p.Date, p.Time)
}

// ReminderIsCurrent reports whether p was scheduled for the slot b holds now.
func ReminderIsCurrent(p models.ReminderPayload, b models.Booking) bool {
	return p.Date == b.Date && p.Time == b.Time
}

// ReminderPayloadFor snapshots what the worker needs from b.
func ReminderPayloadFor(b models.Booking) models.ReminderPayload {
	return models.ReminderPayload{
		BookingID:   b.ID,
		UserID:      b.UserID,
		ServiceType: b.ServiceType,
		Provider:    b.Provider.Name,
		Date:        b.Date,
		Time:        b.Time,
	}
}

// ReminderFireTime returns when the reminder for b should fire.
func ReminderFireTime(b models.Booking, loc *time.Location, now time.Time) (time.Time, error) {
	slot, err := b.Slot(loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable booking slot %q %q: %w", b.Date, b.Time, err)
	}
	fireAt := slot.Add(-ReminderLead)
	if fireAt.Before(now) {
		return time.Time{}, ErrTooLate
	}
	return fireAt, nil
}

// Enqueuer is the part of *asynq.Client the scheduler uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderScheduler queues booking reminders on asynq.
type ReminderScheduler struct {
	client   Enqueuer
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewReminderScheduler interprets booking slots in loc (UTC when nil).
func NewReminderScheduler(client Enqueuer, loc *time.Location, logger *zap.Logger) *ReminderScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderScheduler{client: client, location: loc, logger: logger, now: time.Now}
}

// ScheduleReminder enqueues the reminder for b. Slots under 24h away and
// unparseable dates are skipped without error.
func (s *ReminderScheduler) ScheduleReminder(ctx context.Context, b models.Booking) error {
	fireAt, err := ReminderFireTime(b, s.location, s.now())
	if err != nil {
		s.logger.Debug("Skipping booking reminder", zap.String("booking_id", b.ID), zap.Error(err))
		return nil
	}

	task, opts, err := NewBookingReminderTask(ReminderPayloadFor(b), fireAt)
	if err != nil {
		return err
	}
	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue reminder for booking %s: %w", b.ID, err)
	}
	s.logger.Info("Booking reminder scheduled",
		zap.String("booking_id", b.ID),
		zap.String("task_id", info.ID),
		zap.Time("fire_at", fireAt),
	)
	return nil
}
