package providerRepo

import (
	"context"

	"autocare/database/store"
	"autocare/models"
)

// ProviderRepository defines methods for provider data access. Rows are
// persisted flat and returned in the nested presentation shape.
type ProviderRepository interface {
	// ListProviders retrieves all providers, skipping rows that fail mapping.
	ListProviders(ctx context.Context) ([]models.ServiceProvider, error)
	// GetByID retrieves a provider by its unique ID.
	GetByID(ctx context.Context, id string) (*models.ServiceProvider, error)
	// GetByUserID retrieves the provider profile owned by a user account.
	GetByUserID(ctx context.Context, userID string) (*models.ServiceProvider, error)
	// Create inserts a new provider record.
	Create(ctx context.Context, provider models.ServiceProvider) (*models.ServiceProvider, error)
	// Update patches flat provider columns.
	Update(ctx context.Context, id string, patch store.Patch) (*models.ServiceProvider, error)
	// Delete removes a provider record by its ID.
	Delete(ctx context.Context, id string) error
}
