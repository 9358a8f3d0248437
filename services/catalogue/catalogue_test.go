package catalogue

import (
	"context"
	"testing"
	"time"

	"autocare/database"
	"autocare/database/repository"
	providerRepo "autocare/database/repository/provider"
	serviceRepo "autocare/database/repository/service"
	"autocare/database/store"
	"autocare/models"
	"autocare/services/notification"
	"autocare/services/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*DefaultCatalogueService, *models.ServiceProvider, *query.MemoryCache) {
	t.Helper()
	providers := providerRepo.NewStoreProviderRepo(store.NewMemoryTable[models.ProviderRow](database.ProvidersTable), nil)
	p, err := providers.Create(context.Background(), models.ServiceProvider{
		UserID:   "owner",
		Name:     "Summit Garage",
		Location: models.ProviderLocation{City: "Denver", State: "CO"},
	})
	require.NoError(t, err)

	cache := query.NewMemoryCache()
	svc, err := NewDefaultCatalogueService(
		serviceRepo.NewStoreServiceRepo(store.NewMemoryTable[models.Service](database.ServicesTable), nil),
		providers,
		query.NewClient(cache, query.Options{StaleTime: time.Minute}, nil),
		&notification.Recorder{},
		nil,
	)
	require.NoError(t, err)
	return svc, p, cache
}

func TestProviderManagesOwnCatalogue(t *testing.T) {
	svc, p, cache := newService(t)
	ctx := context.Background()
	owner := models.Actor{UserID: "owner", Role: models.RoleProvider}

	_, err := svc.List(ctx, p.ID)
	require.NoError(t, err)
	require.NotEmpty(t, cache.Keys())

	created, err := svc.Create(ctx, owner, models.ServiceInput{Name: "Brake Pads", Duration: 90, Price: 180, ProviderID: p.ID})
	require.NoError(t, err)
	assert.Empty(t, cache.Keys())

	list, err := svc.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	price := 150.0
	updated, err := svc.Update(ctx, owner, created.ID, models.ServicePatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 150.0, updated.Price)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	assert.True(t, repository.IsNotFound(svc.Delete(ctx, owner, created.ID)))
}

func TestCatalogueOwnershipAndExplicitIdentity(t *testing.T) {
	svc, p, _ := newService(t)
	ctx := context.Background()

	var forbidden *models.ForbiddenError
	_, err := svc.Create(ctx, models.Actor{UserID: "other", Role: models.RoleProvider}, models.ServiceInput{Name: "Wash", Duration: 30, ProviderID: p.ID})
	assert.ErrorAs(t, err, &forbidden)

	_, err = svc.Create(ctx, models.Actor{UserID: "owner", Role: models.RoleProvider}, models.ServiceInput{Name: "Wash", Duration: 30})
	assert.ErrorAs(t, err, &forbidden)

	created, err := svc.Create(ctx, models.Actor{Role: models.RoleAdmin}, models.ServiceInput{ID: "svc-oil", Name: "Oil Change", Duration: 30, Price: 49.99})
	require.NoError(t, err)
	assert.Equal(t, "svc-oil", created.ID)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Oil Change", all[0].Name)
}
