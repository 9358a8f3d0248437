package booking

import (
	"context"
	"fmt"

	bookingRepo "autocare/database/repository/booking"
	providerRepo "autocare/database/repository/provider"
	vehicleRepo "autocare/database/repository/vehicle"
	"autocare/models"
	"autocare/services/mock"
	"autocare/services/notification"
	"autocare/services/query"

	"go.uber.org/zap"
)

// Entity is the query-cache entity for booking views.
const Entity = "bookings"

// ReminderScheduler queues the reminder for a new booking.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, booking models.Booking) error
}

type BookingService interface {
	List(ctx context.Context, userID string) ([]models.Booking, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	Create(ctx context.Context, userID string, req models.BookingRequest) (*models.Booking, error)
	Update(ctx context.Context, actor models.Actor, id string, patch models.BookingPatch) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id string, status models.BookingStatus) (*models.Booking, error)
	Cancel(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Repo      bookingRepo.BookingRepository
	Vehicles  vehicleRepo.VehicleRepository
	Providers providerRepo.ProviderRepository
	Fallback  mock.ProviderSource
	Query     *query.Client
	Notifier  notification.Notifier
	Reminders ReminderScheduler
	Logger    *zap.Logger
}

func NewDefaultBookingService(
	repo bookingRepo.BookingRepository,
	vehicles vehicleRepo.VehicleRepository,
	providers providerRepo.ProviderRepository,
	fallback mock.ProviderSource,
	queryClient *query.Client,
	notifier notification.Notifier,
	reminders ReminderScheduler,
	logger *zap.Logger,
) (*DefaultBookingService, error) {
	if repo == nil || vehicles == nil || providers == nil || queryClient == nil || notifier == nil {
		return nil, fmt.Errorf("booking service initialization error: one or more dependencies are nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultBookingService{
		Repo:      repo,
		Vehicles:  vehicles,
		Providers: providers,
		Fallback:  fallback,
		Query:     queryClient,
		Notifier:  notifier,
		Reminders: reminders,
		Logger:    logger,
	}, nil
}
