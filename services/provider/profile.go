package provider

import (
	"context"

	"autocare/database/repository"
	"autocare/database/store"
	"autocare/models"
	"autocare/services/notification"

	"go.uber.org/zap"
)

// Get reads one provider. The endpoint is public, so a failure toast has no
// addressee and reaches the log only.
func (s *DefaultProviderService) Get(ctx context.Context, id string) (*models.ServiceProvider, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "", "load the provider", err)
	}
	return p, nil
}

func (s *DefaultProviderService) GetByUserID(ctx context.Context, userID string) (*models.ServiceProvider, error) {
	p, err := s.Repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, userID, "load your provider profile", err)
	}
	return p, nil
}

// Register creates the provider profile owned by userID.
func (s *DefaultProviderService) Register(ctx context.Context, userID string, profile models.ProviderProfile) (*models.ServiceProvider, error) {
	const action = "register your provider profile"

	if err := profile.Validate(); err != nil {
		return nil, s.fail(ctx, userID, action, err)
	}

	existing, err := s.Repo.GetByUserID(ctx, userID)
	switch {
	case err == nil && existing != nil:
		return nil, s.fail(ctx, userID, action, &models.ConflictError{Entity: "provider", Reason: "this account already has a provider profile"})
	case err != nil && !repository.IsNotFound(err):
		return nil, s.fail(ctx, userID, action, err)
	}

	created, err := s.Repo.Create(ctx, models.ServiceProvider{
		UserID:      userID,
		Name:        profile.Name,
		Description: profile.Description,
		Phone:       profile.Phone,
		Email:       profile.Email,
		Image:       profile.Image,
		Location:    profile.Location,
		Services:    profile.Services,
	})
	if err != nil {
		return nil, s.fail(ctx, userID, action, err)
	}

	s.invalidate(ctx)
	s.Logger.Info("Provider registered", zap.String("provider_id", created.ID), zap.String("user_id", userID))
	return created, nil
}

// UpdateProfile patches a profile owned by the actor.
func (s *DefaultProviderService) UpdateProfile(ctx context.Context, actor models.Actor, id string, patch models.ProviderPatch) (*models.ServiceProvider, error) {
	const action = "update the provider profile"

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

// Delete removes a profile owned by the actor.
func (s *DefaultProviderService) Delete(ctx context.Context, actor models.Actor, id string) error {
	const action = "delete the provider profile"

	if err := s.authorize(ctx, actor, id); err != nil {
		return s.fail(ctx, actor.UserID, action, err)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return s.fail(ctx, actor.UserID, action, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *DefaultProviderService) authorize(ctx context.Context, actor models.Actor, id string) error {
	if actor.IsAdmin() {
		return nil
	}
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(p.UserID) {
		return &models.ForbiddenError{Entity: "provider", ID: id}
	}
	return nil
}

// fail emits the single failure toast for an operation and returns err.
func (s *DefaultProviderService) fail(ctx context.Context, userID, action string, err error) error {
	s.Notifier.Notify(ctx, notification.ForUser(notification.FromError(action, err), userID))
	return err
}

func (s *DefaultProviderService) invalidate(ctx context.Context) {
	if err := s.Query.Invalidate(ctx, Entity); err != nil {
		s.Logger.Warn("Provider views not invalidated", zap.Error(err))
	}
}
