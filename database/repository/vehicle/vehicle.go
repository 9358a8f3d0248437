package vehicleRepo

import (
	"context"

	"autocare/database/repository"
	"autocare/database/store"
	"autocare/models"

	"go.uber.org/zap"
)

// VehicleRepository defines vehicle data access.
type VehicleRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Vehicle, error)
	GetByID(ctx context.Context, id string) (*models.Vehicle, error)
	Create(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error)
	Update(ctx context.Context, id string, patch store.Patch) (*models.Vehicle, error)
	Delete(ctx context.Context, id string) error
}

// StoreVehicleRepo implements VehicleRepository on a store table.
type StoreVehicleRepo struct {
	*repository.Accessor[models.Vehicle, *models.Vehicle]
}

func NewStoreVehicleRepo(table store.Table[models.Vehicle], logger *zap.Logger) VehicleRepository {
	return &StoreVehicleRepo{repository.NewAccessor[models.Vehicle](table, logger)}
}

func (r *StoreVehicleRepo) ListByUser(ctx context.Context, userID string) ([]models.Vehicle, error) {
	return r.Where(ctx, store.Eq("user_id", userID))
}

func (r *StoreVehicleRepo) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	v, err := r.Accessor.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *StoreVehicleRepo) Create(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error) {
	v, err := r.Accessor.Create(ctx, vehicle)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *StoreVehicleRepo) Update(ctx context.Context, id string, patch store.Patch) (*models.Vehicle, error) {
	v, err := r.Accessor.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
