package user

import (
	"context"
	"fmt"

	userRepo "autocare/database/repository/user"
	"autocare/models"
	"autocare/services/notification"
	"autocare/services/query"

	"go.uber.org/zap"
)

// Entity is the query-cache entity for user views.
const Entity = "users"

type UserService interface {
	// Registration and authentication
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error)
	SignIn(ctx context.Context, req models.SignInRequest) (*models.User, error)
	SignInExternal(ctx context.Context, email, name string) (*models.User, error)

	// User management
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.PublicUser, error)
	Update(ctx context.Context, actor models.Actor, id string, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo     userRepo.UserRepository
	Query    *query.Client
	Notifier notification.Notifier
	Logger   *zap.Logger
}

func NewDefaultUserService(repo userRepo.UserRepository, queryClient *query.Client, notifier notification.Notifier, logger *zap.Logger) (*DefaultUserService, error) {
	if repo == nil || queryClient == nil || notifier == nil {
		return nil, fmt.Errorf("user service initialization error: one or more dependencies are nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultUserService{Repo: repo, Query: queryClient, Notifier: notifier, Logger: logger}, nil
}
