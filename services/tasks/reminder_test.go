package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"autocare/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	ids   []string
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	for _, o := range opts {
		if o.Type() == asynq.TaskIDOpt {
			f.ids = append(f.ids, o.Value().(string))
		}
	}
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func booking(date, clock string) models.Booking {
	return models.Booking{
		ID:          "b-1",
		UserID:      "u-1",
		ServiceType: "Oil Change",
		Date:        date,
		Time:        clock,
		Provider:    models.ServiceProvider{Name: "Quick Lube"},
	}
}

func newScheduler(e Enqueuer) *ReminderScheduler {
	s := NewReminderScheduler(e, time.UTC, nil)
	s.now = func() time.Time { return now }
	return s
}

func TestReminderFireTime(t *testing.T) {
	fireAt, err := ReminderFireTime(booking("2026-03-12", "10:30"), time.UTC, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 10, 30, 0, 0, time.UTC), fireAt)

	_, err = ReminderFireTime(booking("2026-03-11", "08:00"), time.UTC, now)
	assert.ErrorIs(t, err, ErrTooLate)

	_, err = ReminderFireTime(booking("next tuesday", "08:00"), time.UTC, now)
	assert.Error(t, err)
}

func TestScheduleReminderEnqueuesPayload(t *testing.T) {
	e := &fakeEnqueuer{}
	require.NoError(t, newScheduler(e).ScheduleReminder(context.Background(), booking("2026-03-12", "10:30")))

	require.Len(t, e.tasks, 1)
	assert.Equal(t, TypeBookingReminder, e.tasks[0].Type())
	var p models.ReminderPayload
	require.NoError(t, json.Unmarshal(e.tasks[0].Payload(), &p))
	assert.Equal(t, "b-1", p.BookingID)
	assert.Equal(t, "Quick Lube", p.Provider)
}

func TestScheduleReminderSkipsNearAndInvalidSlots(t *testing.T) {
	e := &fakeEnqueuer{}
	s := newScheduler(e)
	assert.NoError(t, s.ScheduleReminder(context.Background(), booking("2026-03-10", "17:00")))
	assert.NoError(t, s.ScheduleReminder(context.Background(), booking("soon", "17:00")))
	assert.Empty(t, e.tasks)
}

func TestScheduleReminderReportsQueueErrors(t *testing.T) {
	s := newScheduler(&fakeEnqueuer{err: errors.New("redis down")})
	assert.Error(t, s.ScheduleReminder(context.Background(), booking("2026-03-12", "10:30")))

	s = newScheduler(&fakeEnqueuer{err: asynq.ErrTaskIDConflict})
	assert.NoError(t, s.ScheduleReminder(context.Background(), booking("2026-03-12", "10:30")))
}

func TestRescheduledBookingGetsItsOwnReminder(t *testing.T) {
	e := &fakeEnqueuer{}
	s := newScheduler(e)
	ctx := context.Background()

	original := booking("2026-03-12", "10:30")
	moved := booking("2026-04-02", "14:00")
	require.NoError(t, s.ScheduleReminder(ctx, original))
	require.NoError(t, s.ScheduleReminder(ctx, moved))

	require.Len(t, e.ids, 2)
	assert.Equal(t, "reminder:b-1:2026-03-12T10:30", e.ids[0])
	assert.Equal(t, "reminder:b-1:2026-04-02T14:00", e.ids[1])

	stale := ReminderPayloadFor(original)
	assert.False(t, ReminderIsCurrent(stale, moved))
	assert.True(t, ReminderIsCurrent(ReminderPayloadFor(moved), moved))
}
