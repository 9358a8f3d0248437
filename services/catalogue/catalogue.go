// Package catalogue manages the services providers offer.
package catalogue

import (
	"context"
	"fmt"

	"autocare/database/repository"
	providerRepo "autocare/database/repository/provider"
	serviceRepo "autocare/database/repository/service"
	"autocare/database/store"
	"autocare/models"
	"autocare/services/notification"
	"autocare/services/query"

	"go.uber.org/zap"
)

// Entity is the query-cache entity for catalogue views.
const Entity = "services"

type CatalogueService interface {
	List(ctx context.Context, providerID string) ([]models.Service, error)
	Create(ctx context.Context, actor models.Actor, input models.ServiceInput) (*models.Service, error)
	Update(ctx context.Context, actor models.Actor, id string, patch models.ServicePatch) (*models.Service, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// DefaultCatalogueService is the production implementation.
type DefaultCatalogueService struct {
	Repo      serviceRepo.ServiceRepository
	Providers providerRepo.ProviderRepository
	Query     *query.Client
	Notifier  notification.Notifier
	Logger    *zap.Logger
}

func NewDefaultCatalogueService(
	repo serviceRepo.ServiceRepository,
	providers providerRepo.ProviderRepository,
	queryClient *query.Client,
	notifier notification.Notifier,
	logger *zap.Logger,
) (*DefaultCatalogueService, error) {
	if repo == nil || providers == nil || queryClient == nil || notifier == nil {
		return nil, fmt.Errorf("catalogue service initialization error: one or more dependencies are nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultCatalogueService{Repo: repo, Providers: providers, Query: queryClient, Notifier: notifier, Logger: logger}, nil
}

// List returns the whole catalogue, or one provider's services when providerID is set.
func (s *DefaultCatalogueService) List(ctx context.Context, providerID string) ([]models.Service, error) {
	services, err := query.Fetch(ctx, s.Query, query.NewKey(Entity, providerID), func(ctx context.Context) ([]models.Service, error) {
		if providerID == "" {
			return s.Repo.List(ctx)
		}
		return s.Repo.ListByProvider(ctx, providerID)
	})
	if err != nil {
		return nil, s.fail(ctx, "", "load services", err)
	}
	return services, nil
}

// Create adds a service. Providers add to their own profile; a service with
// no provider is a platform-wide entry only admins may add. An explicit id
// in input is kept.
func (s *DefaultCatalogueService) Create(ctx context.Context, actor models.Actor, input models.ServiceInput) (*models.Service, error) {
	const action = "add the service"

	if err := input.Validate(); err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}
	if err := s.authorizeProvider(ctx, actor, input.ProviderID); err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}

	created, err := s.Repo.Create(ctx, models.Service{
		ID:          input.ID,
		Name:        input.Name,
		Duration:    input.Duration,
		Price:       input.Price,
		ProviderID:  input.ProviderID,
		Description: input.Description,
	})
	if err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *DefaultCatalogueService) Update(ctx context.Context, actor models.Actor, id string, patch models.ServicePatch) (*models.Service, error) {
	const action = "update the service"

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

func (s *DefaultCatalogueService) Delete(ctx context.Context, actor models.Actor, id string) error {
	const action = "delete the service"

	if err := s.authorize(ctx, actor, id); err != nil {
		return s.fail(ctx, actor.UserID, action, err)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return s.fail(ctx, actor.UserID, action, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *DefaultCatalogueService) authorize(ctx context.Context, actor models.Actor, id string) error {
	if actor.IsAdmin() {
		return nil
	}
	svc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.authorizeProvider(ctx, actor, svc.ProviderID)
}

func (s *DefaultCatalogueService) authorizeProvider(ctx context.Context, actor models.Actor, providerID string) error {
	if actor.IsAdmin() {
		return nil
	}
	if providerID == "" {
		return &models.ForbiddenError{Entity: "service catalogue", ID: "platform"}
	}
	p, err := s.Providers.GetByID(ctx, providerID)
	if err != nil {
		if repository.IsNotFound(err) {
			return &models.ValidationError{Field: "provider_id", Reason: "does not match a registered provider"}
		}
		return err
	}
	if !actor.Owns(p.UserID) {
		return &models.ForbiddenError{Entity: "provider", ID: providerID}
	}
	return nil
}

func (s *DefaultCatalogueService) fail(ctx context.Context, userID, action string, err error) error {
	s.Notifier.Notify(ctx, notification.ForUser(notification.FromError(action, err), userID))
	return err
}

func (s *DefaultCatalogueService) invalidate(ctx context.Context) {
	if err := s.Query.Invalidate(ctx, Entity); err != nil {
		s.Logger.Warn("Service views not invalidated", zap.Error(err))
	}
}
