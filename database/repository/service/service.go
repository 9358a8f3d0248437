package serviceRepo

import (
	"context"

	"autocare/database/repository"
	"autocare/database/store"
	"autocare/models"

	"go.uber.org/zap"
)

// ServiceRepository defines catalogue data access.
type ServiceRepository interface {
	List(ctx context.Context) ([]models.Service, error)
	ListByProvider(ctx context.Context, providerID string) ([]models.Service, error)
	GetByID(ctx context.Context, id string) (*models.Service, error)
	Create(ctx context.Context, service models.Service) (*models.Service, error)
	Update(ctx context.Context, id string, patch store.Patch) (*models.Service, error)
	Delete(ctx context.Context, id string) error
}

// StoreServiceRepo implements ServiceRepository on a store table.
type StoreServiceRepo struct {
	*repository.Accessor[models.Service, *models.Service]
}

func NewStoreServiceRepo(table store.Table[models.Service], logger *zap.Logger) ServiceRepository {
	return &StoreServiceRepo{repository.NewAccessor[models.Service](table, logger)}
}

func (r *StoreServiceRepo) ListByProvider(ctx context.Context, providerID string) ([]models.Service, error) {
	return r.Where(ctx, store.Eq("provider_id", providerID))
}

func (r *StoreServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	s, err := r.Accessor.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreServiceRepo) Create(ctx context.Context, service models.Service) (*models.Service, error) {
	s, err := r.Accessor.Create(ctx, service)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreServiceRepo) Update(ctx context.Context, id string, patch store.Patch) (*models.Service, error) {
	s, err := r.Accessor.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
