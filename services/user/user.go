package user

import (
	"context"
	"errors"
	"strings"

	"autocare/database/repository"
	"autocare/database/store"
	"autocare/models"
	"autocare/services/notification"
	"autocare/services/query"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SignUp registers a customer or provider account.
func (s *DefaultUserService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	const action = "create your account"

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !role.Valid() || role == models.RoleAdmin {
		return nil, s.fail(ctx, "", action, &models.ValidationError{Field: "role", Reason: "must be customer or provider"})
	}
	if len(req.Password) < 8 {
		return nil, s.fail(ctx, "", action, &models.ValidationError{Field: "password", Reason: "must be at least 8 characters"})
	}

	if err := s.ensureEmailFree(ctx, req.Email, ""); err != nil {
		return nil, s.fail(ctx, "", action, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.Logger.Error("Failed to hash password", zap.Error(err))
		return nil, s.fail(ctx, "", action, err)
	}

	created, err := s.Repo.Create(ctx, models.User{
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, s.fail(ctx, "", action, err)
	}
	s.invalidate(ctx)
	s.Logger.Info("User registered", zap.String("user_id", created.ID), zap.String("role", string(role)))
	return created, nil
}

// SignIn checks credentials. Unknown emails and wrong passwords are indistinguishable.
func (s *DefaultUserService) SignIn(ctx context.Context, req models.SignInRequest) (*models.User, error) {
	const action = "sign you in"

	u, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, s.fail(ctx, "", action, ErrInvalidCredentials)
		}
		return nil, s.fail(ctx, "", action, err)
	}
	if u.PasswordHash == "" {
		return nil, s.fail(ctx, u.ID, action, ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.fail(ctx, u.ID, action, ErrInvalidCredentials)
	}
	return u, nil
}

// SignInExternal signs in an account whose email an OAuth provider has
// verified, creating a passwordless customer on first sight.
func (s *DefaultUserService) SignInExternal(ctx context.Context, email, name string) (*models.User, error) {
	const action = "sign you in"

	if strings.TrimSpace(email) == "" {
		return nil, s.fail(ctx, "", action, &models.ValidationError{Field: "email", Reason: "is required"})
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !repository.IsNotFound(err) {
		return nil, s.fail(ctx, "", action, err)
	}

	created, err := s.Repo.Create(ctx, models.User{
		Email: email,
		Name:  strings.TrimSpace(name),
		Role:  models.RoleCustomer,
	})
	if err != nil {
		return nil, s.fail(ctx, "", action, err)
	}
	s.invalidate(ctx)
	s.Logger.Info("User registered through OAuth", zap.String("user_id", created.ID))
	return created, nil
}

func (s *DefaultUserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.GetByID(ctx, id)
}

// List returns every account without credentials.
func (s *DefaultUserService) List(ctx context.Context) ([]models.PublicUser, error) {
	users, err := query.Fetch(ctx, s.Query, query.NewKey(Entity), func(ctx context.Context) ([]models.PublicUser, error) {
		all, err := s.Repo.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]models.PublicUser, 0, len(all))
		for _, u := range all {
			out = append(out, u.Public())
		}
		return out, nil
	})
	if err != nil {
		return nil, s.fail(ctx, "", "load users", err)
	}
	return users, nil
}

func (s *DefaultUserService) Update(ctx context.Context, actor models.Actor, id string, patch models.UserPatch) (*models.User, error) {
	const action = "update your profile"

	if !actor.Owns(id) {
		return nil, s.fail(ctx, actor.UserID, action, &models.ForbiddenError{Entity: "user", ID: id})
	}
	fields, err := patch.Fields()
	if err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}
	if patch.Email != nil {
		if err := s.ensureEmailFree(ctx, *patch.Email, id); err != nil {
			return nil, s.fail(ctx, actor.UserID, action, err)
		}
	}
	updated, err := s.Repo.Update(ctx, id, store.Patch(fields))
	if err != nil {
		return nil, s.fail(ctx, actor.UserID, action, err)
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *DefaultUserService) Delete(ctx context.Context, actor models.Actor, id string) error {
	const action = "delete the account"

	if !actor.Owns(id) {
		return s.fail(ctx, actor.UserID, action, &models.ForbiddenError{Entity: "user", ID: id})
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return s.fail(ctx, actor.UserID, action, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *DefaultUserService) ensureEmailFree(ctx context.Context, email, self string) error {
	existing, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != self:
		return ErrEmailTaken
	case err == nil, repository.IsNotFound(err):
		return nil
	default:
		return err
	}
}

func (s *DefaultUserService) fail(ctx context.Context, userID, action string, err error) error {
	if !errors.Is(err, ErrInvalidCredentials) {
		s.Logger.Debug("User operation failed", zap.String("action", action), zap.Error(err))
	}
	s.Notifier.Notify(ctx, notification.ForUser(notification.FromError(action, err), userID))
	return err
}

func (s *DefaultUserService) invalidate(ctx context.Context) {
	if err := s.Query.Invalidate(ctx, Entity); err != nil {
		s.Logger.Warn("User views not invalidated", zap.Error(err))
	}
}
