package providerRepo

import (
	"context"
	"errors"
	"fmt"

	"autocare/database/repository"
	"autocare/database/store"
	"autocare/models"

	"go.uber.org/zap"
)

// StoreProviderRepo implements ProviderRepository on a store table of flat rows.
type StoreProviderRepo struct {
	rows   *repository.Accessor[models.ProviderRow, *models.ProviderRow]
	logger *zap.Logger
}

// NewStoreProviderRepo creates a provider repository on table.
func NewStoreProviderRepo(table store.Table[models.ProviderRow], logger *zap.Logger) ProviderRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreProviderRepo{
		rows:   repository.NewAccessor[models.ProviderRow](table, logger),
		logger: logger,
	}
}

func (r *StoreProviderRepo) ListProviders(ctx context.Context) ([]models.ServiceProvider, error) {
	rows, err := r.rows.List(ctx)
	if err != nil {
		return nil, err
	}
	providers := make([]models.ServiceProvider, 0, len(rows))
	for _, row := range rows {
		p, err := models.ToServiceProvider(row)
		if err != nil {
			r.logger.Warn("skipping provider row", zap.String("id", row.ID), zap.Error(err))
			continue
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func (r *StoreProviderRepo) GetByID(ctx context.Context, id string) (*models.ServiceProvider, error) {
	row, err := r.rows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.toProvider(row)
}

func (r *StoreProviderRepo) GetByUserID(ctx context.Context, userID string) (*models.ServiceProvider, error) {
	row, err := r.rows.FirstWhere(ctx, store.Eq("user_id", userID), userID)
	if err != nil {
		return nil, err
	}
	return r.toProvider(row)
}

func (r *StoreProviderRepo) Create(ctx context.Context, provider models.ServiceProvider) (*models.ServiceProvider, error) {
	if _, err := models.ToServiceProvider(withPlaceholderID(models.ToProviderRow(provider))); err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	row, err := r.rows.Create(ctx, models.ToProviderRow(provider))
	if err != nil {
		return nil, err
	}
	return r.toProvider(row)
}

func (r *StoreProviderRepo) Update(ctx context.Context, id string, patch store.Patch) (*models.ServiceProvider, error) {
	row, err := r.rows.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return r.toProvider(row)
}

func (r *StoreProviderRepo) Delete(ctx context.Context, id string) error {
	return r.rows.Delete(ctx, id)
}

func (r *StoreProviderRepo) toProvider(row models.ProviderRow) (*models.ServiceProvider, error) {
	p, err := models.ToServiceProvider(row)
	if err != nil {
		r.logger.Error("provider row failed mapping", zap.String("id", row.ID), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// withPlaceholderID lets a not-yet-persisted row pass the mapping check.
func withPlaceholderID(row models.ProviderRow) models.ProviderRow {
	if row.ID == "" {
		row.ID = "new"
	}
	return row
}

// IsInvalidRow reports whether err came from the row mapping check.
func IsInvalidRow(err error) bool {
	return errors.Is(err, models.ErrInvalidProviderRow)
}
