package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vehicleRepo "autocare/database/repository/vehicle"
	"autocare/database/store"
	"autocare/models"
	"autocare/services/notification"
	"autocare/services/query"

	"go.uber.org/zap"
)

// Entity is the query-cache entity for vehicle views.
const Entity = "vehicles"

// ErrNotOwner is matched by the ForbiddenError returned for another user's vehicle.
var ErrNotOwner = errors.New("vehicle belongs to another user")

type VehicleService interface {
	List(ctx context.Context, userID string) ([]models.Vehicle, error)
	Create(ctx context.Context, userID string, input models.VehicleInput) (*models.Vehicle, error)
	Update(ctx context.Context, actor models.Actor, id string, patch models.VehiclePatch) (*models.Vehicle, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// DefaultVehicleService is the production implementation.
type DefaultVehicleService struct {
	Repo     vehicleRepo.VehicleRepository
	Query    *query.Client
	Notifier notification.Notifier
	Logger   *zap.Logger
}

func NewDefaultVehicleService(repo vehicleRepo.VehicleRepository, queryClient *query.Client, notifier notification.Notifier, logger *zap.Logger) (*DefaultVehicleService, error) {
	if repo == nil || queryClient == nil || notifier == nil {
		return nil, fmt.Errorf("vehicle service initialization error: one or more dependencies are nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultVehicleService{Repo: repo, Query: queryClient, Notifier: notifier, Logger: logger}, nil
}

func (s *DefaultVehicleService) List(ctx context.Context, userID string) ([]models.Vehicle, error) {
	vehicles, err := query.Fetch(ctx, s.Query, query.NewKey(Entity, userID), func(ctx context.Context) ([]models.Vehicle, error) {
		return s.Repo.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, s.fail(ctx, userID, "load your vehicles", err)
	}
	return vehicles, nil
}

func (s *DefaultVehicleService) Create(ctx context.Context, userID string, input models.VehicleInput) (*models.Vehicle, error) {
	const action = "add the vehicle"

	if err := input.Validate(); err != nil {
		return nil, s.fail(ctx, userID, action, err)
	}
	created, err := s.Repo.Create(ctx, models.Vehicle{
		UserID:       userID,
		Make:         strings.TrimSpace(input.Make),
		Model:        strings.TrimSpace(input.Model),
		Year:         input.Year,
		LicensePlate: strings.ToUpper(strings.TrimSpace(input.LicensePlate)),
		Color:        input.Color,
		VIN:          strings.ToUpper(input.VIN),
	})
	if err != nil {
		return nil, s.fail(ctx, userID, action, err)
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *DefaultVehicleService) Update(ctx context.Context, actor models.Actor, id string, patch models.VehiclePatch) (*models.Vehicle, error) {
	const action = "update the vehicle"

	fields, err := patch.Fields()
	if err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}
	if err := s.authorize(ctx, actor, id); err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}
	updated, err := s.Repo.Update(ctx, id, store.Patch(fields))
	if err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *DefaultVehicleService) Delete(ctx context.Context, actor models.Actor, id string) error {
	const action = "remove the vehicle"

	if err := s.authorize(ctx, actor, id); err != nil {
		return s.fail(ctx, actor.UserID, action, err)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return s.fail(ctx, actor.UserID, action, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *DefaultVehicleService) authorize(ctx context.Context, actor models.Actor, id string) error {
	if actor.IsAdmin() {
		return nil
	}
	v, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(v.UserID) {
		return fmt.Errorf("%w: %w", ErrNotOwner, &models.ForbiddenError{Entity: "vehicle", ID: id})
	}
	return nil
}

func (s *DefaultVehicleService) fail(ctx context.Context, userID, action string, err error) error {
	s.Notifier.Notify(ctx, notification.ForUser(notification.FromError(action, err), userID))
	return err
}

func (s *DefaultVehicleService) invalidate(ctx context.Context) {
	if err := s.Query.Invalidate(ctx, Entity); err != nil {
		s.Logger.Warn("Vehicle views not invalidated", zap.Error(err))
	}
}
