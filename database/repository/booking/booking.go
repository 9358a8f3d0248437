package bookingRepo

import (
	"context"

	"autocare/database/repository"
	"autocare/database/store"
	"autocare/models"

	"go.uber.org/zap"
)

// BookingRepository defines booking data access.
type BookingRepository interface {
	List(ctx context.Context) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Create(ctx context.Context, booking models.Booking) (*models.Booking, error)
	Update(ctx context.Context, id string, patch store.Patch) (*models.Booking, error)
	Delete(ctx context.Context, id string) error
}

// StoreBookingRepo implements BookingRepository on a store table.
type StoreBookingRepo struct {
	*repository.Accessor[models.Booking, *models.Booking]
}

// NewStoreBookingRepo creates a booking repository on table.
func NewStoreBookingRepo(table store.Table[models.Booking], logger *zap.Logger) BookingRepository {
	return &StoreBookingRepo{repository.NewAccessor[models.Booking](table, logger)}
}

func (r *StoreBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return r.Where(ctx, store.Eq("user_id", userID))
}

func (r *StoreBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, err := r.Accessor.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *StoreBookingRepo) Create(ctx context.Context, booking models.Booking) (*models.Booking, error) {
	b, err := r.Accessor.Create(ctx, booking)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *StoreBookingRepo) Update(ctx context.Context, id string, patch store.Patch) (*models.Booking, error) {
	b, err := r.Accessor.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
