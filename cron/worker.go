package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"autocare/database/repository"
	bookingRepo "autocare/database/repository/booking"
	"autocare/models"
	"autocare/services/notification"
	"autocare/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderWorker turns booking reminder tasks into toasts for the booking owner.
type ReminderWorker struct {
	server   *asynq.Server
	redisOpt asynq.RedisClientOpt
	handler  *ReminderHandler
	logger   *zap.Logger
}

// NewReminderWorker builds the asynq server on the queue database.
func NewReminderWorker(redisOpt asynq.RedisClientOpt, bookings bookingRepo.BookingRepository, notifier notification.Notifier, logger *zap.Logger) *ReminderWorker {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)
	return &ReminderWorker{
		server:   srv,
		redisOpt: redisOpt,
		handler:  &ReminderHandler{Bookings: bookings, Notifier: notifier, Logger: logger},
		logger:   logger,
	}
}

// Start runs the worker in the background, retrying startup with a linear
// backoff, and monitors the queue's Redis until ctx ends.
func (w *ReminderWorker) Start(ctx context.Context) {
	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeBookingReminder, w.handler)

	go w.monitorRedisConnection(ctx)

	go func() {
		w.logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.server.Start(mux)
			if err == nil {
				return
			}
			w.logger.Error("Reminder worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(err),
			)
			if attempts == maxAttempts {
				w.logger.Error("Reminder worker gave up; reminders will not be delivered")
				return
			}
			select {
			case <-time.After(time.Duration(attempts*2) * time.Second):
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown waits for in-flight reminders and stops the server.
func (w *ReminderWorker) Shutdown() {
	w.server.Shutdown()
}

// ReminderHandler processes one reminder task.
type ReminderHandler struct {
	Bookings bookingRepo.BookingRepository
	Notifier notification.Notifier
	Logger   *zap.Logger
}

func (h *ReminderHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		h.Logger.Error("Invalid reminder payload", zap.Error(err))
		return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	b, err := h.Bookings.GetByID(ctx, p.BookingID)
	if repository.IsNotFound(err) {
		h.Logger.Info("Reminder for deleted booking dropped", zap.String("booking_id", p.BookingID))
		return nil
	}
	if err != nil {
		return err
	}
	if b.Status == models.BookingCancelled || b.Status == models.BookingCompleted {
		h.Logger.Info("Reminder for closed booking dropped",
			zap.String("booking_id", b.ID),
			zap.String("status", string(b.Status)),
		)
		return nil
	}
	if !tasks.ReminderIsCurrent(p, *b) {
		h.Logger.Info("Reminder for rescheduled booking dropped",
			zap.String("booking_id", b.ID),
			zap.String("scheduled_for", p.Date+" "+p.Time),
			zap.String("now_at", b.Date+" "+b.Time),
		)
		return nil
	}

	desc := fmt.Sprintf("%s with %s tomorrow at %s.", b.ServiceType, b.Provider.Name, b.Time)
	h.Notifier.Notify(ctx, notification.ForUser(notification.Info("Upcoming appointment", desc), b.UserID))
	h.Logger.Info("Reminder delivered", zap.String("booking_id", b.ID), zap.String("user_id", b.UserID))
	return nil
}

func (w *ReminderWorker) monitorRedisConnection(ctx context.Context) {
	client := redis.NewClient(&redis.Options{
		Addr:     w.redisOpt.Addr,
		Password: w.redisOpt.Password,
		DB:       w.redisOpt.DB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil && ctx.Err() == nil {
				w.logger.Warn("Reminder queue Redis connection lost", zap.Error(err))
			}
		}
	}
}
