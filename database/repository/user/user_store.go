package userRepo

import (
	"context"
	"strings"

	"autocare/database/repository"
	"autocare/database/store"
	"autocare/models"

	"go.uber.org/zap"
)

// StoreUserRepo implements UserRepository on a store table.
type StoreUserRepo struct {
	*repository.Accessor[models.User, *models.User]
}

// NewStoreUserRepo creates a user repository on table.
func NewStoreUserRepo(table store.Table[models.User], logger *zap.Logger) UserRepository {
	return &StoreUserRepo{repository.NewAccessor[models.User](table, logger)}
}

func (r *StoreUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := r.Accessor.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *StoreUserRepo) GetAll(ctx context.Context) ([]models.User, error) {
	return r.List(ctx)
}

func (r *StoreUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := r.FirstWhere(ctx, store.Eq("email", email), email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *StoreUserRepo) Create(ctx context.Context, user models.User) (*models.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	u, err := r.Accessor.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *StoreUserRepo) Update(ctx context.Context, id string, patch store.Patch) (*models.User, error) {
	if email, ok := patch["email"].(string); ok {
		patch["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	u, err := r.Accessor.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
