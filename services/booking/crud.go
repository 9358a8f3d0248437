package booking

import (
	"context"
	"fmt"

	"autocare/database/repository"
	"autocare/database/store"
	"autocare/models"
	"autocare/services/notification"
	"autocare/services/query"

	"go.uber.org/zap"
)

// List returns the user's bookings through the query cache.
func (s *DefaultBookingService) List(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings, err := query.Fetch(ctx, s.Query, query.NewKey(Entity, userID), func(ctx context.Context) ([]models.Booking, error) {
		return s.Repo.ListByUser(ctx, userID)
	})
	if err != nil {
		s.Notifier.Notify(ctx, notification.ForUser(notification.FromError("load your bookings", err), userID))
		return nil, err
	}
	return bookings, nil
}

func (s *DefaultBookingService) Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	const action = "load the booking"

	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}
	if !canManage(actor, b) {
		return nil, s.fail(ctx, actor.UserID, action, &models.ForbiddenError{Entity: "booking", ID: id})
	}
	return b, nil
}

// Create books req for userID. The vehicle must belong to the user. The
// provider is read from the store, or regenerated from the fallback source
// when the client booked one of its providers.
func (s *DefaultBookingService) Create(ctx context.Context, userID string, req models.BookingRequest) (*models.Booking, error) {
	const action = "create the booking"

	if err := req.Validate(); err != nil {
		return nil, s.fail(ctx, userID, action, err)
	}

	vehicle, err := s.Vehicles.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, s.fail(ctx, userID, action, err)
	}
	if vehicle.UserID != userID {
		return nil, s.fail(ctx, userID, action, &models.ForbiddenError{Entity: "vehicle", ID: vehicle.ID})
	}

	provider, err := s.resolveProvider(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, userID, action, err)
	}

	status := req.Status
	if status == "" {
		status = models.BookingPending
	}
	created, err := s.Repo.Create(ctx, models.Booking{
		UserID:      userID,
		ServiceType: req.ServiceType,
		Date:        req.Date,
		Time:        req.Time,
		Status:      status,
		Vehicle:     *vehicle,
		Provider:    provider,
		Price:       req.Price,
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, s.fail(ctx, userID, action, err)
	}

	s.invalidate(ctx)
	s.scheduleReminder(ctx, *created)
	s.Notifier.Notify(ctx, notification.ForUser(notification.Info(
		"Booking requested",
		fmt.Sprintf("%s with %s on %s at %s.", created.ServiceType, created.Provider.Name, created.Date, created.Time),
	), userID))
	return created, nil
}

func (s *DefaultBookingService) resolveProvider(ctx context.Context, req models.BookingRequest) (models.ServiceProvider, error) {
	id := req.ProviderID
	if id == "" {
		id = req.Provider.ID
	}
	if id == "" {
		return models.ServiceProvider{}, &models.ValidationError{Field: "provider.id", Reason: "is required"}
	}
	if req.Provider != nil && req.Provider.ID != id {
		return models.ServiceProvider{}, &models.ValidationError{Field: "provider.id", Reason: "does not match provider_id"}
	}

	p, err := s.Providers.GetByID(ctx, id)
	if err == nil {
		return *p, nil
	}
	if !repository.IsNotFound(err) || req.Provider == nil {
		return models.ServiceProvider{}, err
	}
	return s.fallbackProvider(ctx, *req.Provider)
}

// fallbackProvider finds claimed in the fallback source, searching the list
// for its location and then the location-agnostic list. The generated
// provider is returned, never the client's copy.
func (s *DefaultBookingService) fallbackProvider(ctx context.Context, claimed models.ServiceProvider) (models.ServiceProvider, error) {
	unknown := &models.ValidationError{Field: "provider", Reason: "is not a known provider"}
	if s.Fallback == nil {
		return models.ServiceProvider{}, unknown
	}
	for _, location := range []string{claimed.Location.String(), ""} {
		candidates, err := s.Fallback.GetServiceProviders(ctx, location)
		if err != nil {
			return models.ServiceProvider{}, err
		}
		for _, p := range candidates {
			if p.ID == claimed.ID {
				return p, nil
			}
		}
		if location == "" {
			break
		}
	}
	return models.ServiceProvider{}, unknown
}

// Update patches a booking the actor may manage. Any enumerated status may be
// written regardless of the current one. Moving the slot queues a reminder
// for the new slot; the old one is dropped when it fires.
func (s *DefaultBookingService) Update(ctx context.Context, actor models.Actor, id string, patch models.BookingPatch) (*models.Booking, error) {
	const action = "update the booking"

	fields, err := patch.Fields()
	if err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}
	updated, err := s.apply(ctx, actor, id, action, fields)
	if err != nil {
		return nil, err
	}
	if patch.Date != nil || patch.Time != nil {
		s.scheduleReminder(ctx, *updated)
	}
	return updated, nil
}

func (s *DefaultBookingService) UpdateStatus(ctx context.Context, actor models.Actor, id string, status models.BookingStatus) (*models.Booking, error) {
	const action = "change the booking status"

	if _, err := models.ParseBookingStatus(string(status)); err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}
	updated, err := s.apply(ctx, actor, id, action, store.Patch{"status": status})
	if err != nil {
		return nil, err
	}
	if updated.UserID != actor.UserID {
		s.Notifier.Notify(ctx, notification.ForUser(notification.Info(
			"Booking "+string(updated.Status),
			fmt.Sprintf("Your %s booking on %s is now %s.", updated.ServiceType, updated.Date, updated.Status),
		), updated.UserID))
	}
	return updated, nil
}

func (s *DefaultBookingService) Cancel(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	return s.UpdateStatus(ctx, actor, id, models.BookingCancelled)
}

func (s *DefaultBookingService) Delete(ctx context.Context, actor models.Actor, id string) error {
	const action = "delete the booking"

	if err := s.authorize(ctx, actor, id); err != nil {
		return s.fail(ctx, actor.UserID, action, err)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return s.fail(ctx, actor.UserID, action, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *DefaultBookingService) apply(ctx context.Context, actor models.Actor, id, action string, fields store.Patch) (*models.Booking, error) {
	if err := s.authorize(ctx, actor, id); err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}
	updated, err := s.Repo.Update(ctx, id, fields)
	if err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *DefaultBookingService) authorize(ctx context.Context, actor models.Actor, id string) error {
	if actor.IsAdmin() {
		return nil
	}
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(actor, b) {
		return &models.ForbiddenError{Entity: "booking", ID: id}
	}
	return nil
}

// canManage allows the customer who booked, the provider account that was
// booked, and admins.
func canManage(actor models.Actor, b *models.Booking) bool {
	if actor.Owns(b.UserID) {
		return true
	}
	return actor.Role == models.RoleProvider && actor.UserID != "" && b.Provider.UserID == actor.UserID
}

func (s *DefaultBookingService) scheduleReminder(ctx context.Context, b models.Booking) {
	if s.Reminders == nil {
		return
	}
	if err := s.Reminders.ScheduleReminder(ctx, b); err != nil {
		s.Logger.Warn("Booking reminder not scheduled", zap.String("booking_id", b.ID), zap.Error(err))
	}
}

// fail emits the single failure toast for an operation and returns err.
func (s *DefaultBookingService) fail(ctx context.Context, userID, action string, err error) error {
	s.Notifier.Notify(ctx, notification.ForUser(notification.FromError(action, err), userID))
	return err
}

func (s *DefaultBookingService) invalidate(ctx context.Context) {
	if err := s.Query.Invalidate(ctx, Entity); err != nil {
		s.Logger.Warn("Booking views not invalidated", zap.Error(err))
	}
}
