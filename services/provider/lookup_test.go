package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"autocare/database"
	providerRepo "autocare/database/repository/provider"
	"autocare/database/store"
	"autocare/models"
	"autocare/services/mock"
	"autocare/services/notification"
	"autocare/services/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingSource struct{ err error }

func (f failingSource) GetServiceProviders(context.Context, string) ([]models.ServiceProvider, error) {
	return nil, f.err
}

type fixture struct {
	svc   *DefaultProviderService
	table *store.MemoryTable[models.ProviderRow]
	cache *query.MemoryCache
	rec   *notification.Recorder
}

func newFixture(t *testing.T, source mock.ProviderSource) *fixture {
	t.Helper()
	table := store.NewMemoryTable[models.ProviderRow](database.ProvidersTable)
	cache := query.NewMemoryCache()
	rec := &notification.Recorder{}
	qc := query.NewClient(cache, query.Options{StaleTime: time.Minute}, nil)

	svc, err := NewDefaultProviderService(providerRepo.NewStoreProviderRepo(table, nil), qc, source, rec, zap.NewNop())
	require.NoError(t, err)
	return &fixture{svc: svc, table: table, cache: cache, rec: rec}
}

func (f *fixture) seed(t *testing.T, providers ...models.ServiceProvider) []models.ServiceProvider {
	t.Helper()
	out := make([]models.ServiceProvider, 0, len(providers))
	for _, p := range providers {
		row, err := f.table.Insert(context.Background(), models.ToProviderRow(p))
		require.NoError(t, err)
		mapped, err := models.ToServiceProvider(row)
		require.NoError(t, err)
		out = append(out, mapped)
	}
	return out
}

func sampleProvider(id, city string) models.ServiceProvider {
	return models.ServiceProvider{
		ID:       id,
		Name:     "Garage " + id,
		Location: models.ProviderLocation{Address: "1 Main St", City: city, State: "WA", Zip: "98101"},
		Services: []string{"Oil Change"},
	}
}

func mockList(t *testing.T, location string) []models.ServiceProvider {
	t.Helper()
	list, err := mock.NewGenerator().GetServiceProviders(context.Background(), location)
	require.NoError(t, err)
	return list
}

func TestLookupReturnsRemoteProvidersVerbatim(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())
	stored := f.seed(t, sampleProvider("p1", "Seattle"), sampleProvider("p2", "Tacoma"))

	for _, loc := range []string{"", "Austin, TX", "Nowhere, ZZ"} {
		res, err := f.svc.LookupProviders(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, SourceRemote, res.Source)
		assert.Equal(t, stored, res.Providers, "location %q", loc)
	}
	assert.Zero(t, f.rec.Len())
}

func TestLookupEmptyStoreWithoutLocationUsesAgnosticMock(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())

	res, err := f.svc.LookupProviders(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, SourceMock, res.Source)
	assert.Equal(t, mockList(t, ""), res.Providers)
}

func TestLookupEmptyStoreWithLocationUsesScopedMock(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())

	res, err := f.svc.LookupProviders(context.Background(), "Austin, TX")
	require.NoError(t, err)
	assert.Equal(t, SourceMock, res.Source)
	assert.Equal(t, mockList(t, "Austin, TX"), res.Providers)
}

func TestLookupStoreFailureIsSwallowed(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())
	f.seed(t, sampleProvider("p1", "Seattle"))
	f.table.FailWith = func(string) error { return errors.New("connection reset") }

	res, err := f.svc.LookupProviders(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, SourceMock, res.Source)
	assert.Equal(t, mockList(t, ""), res.Providers)

	scoped, err := f.svc.LookupProviders(context.Background(), "Denver, CO")
	require.NoError(t, err)
	assert.Equal(t, mockList(t, "Denver, CO"), scoped.Providers)

	assert.Zero(t, f.rec.Len(), "primary failures are not surfaced")
	assert.Empty(t, f.cache.Keys(), "failed fetches are not cached")
}

func TestLookupFallbackFailureIsExhausted(t *testing.T) {
	cause := errors.New("generator offline")
	f := newFixture(t, failingSource{err: cause})

	res, err := f.svc.LookupProviders(context.Background(), "Austin, TX")
	assert.Nil(t, res)

	var exhausted *FallbackExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "Austin, TX", exhausted.Location)
	assert.ErrorIs(t, err, cause)

	require.Equal(t, 1, f.rec.Len())
	assert.Equal(t, "Providers unavailable", f.rec.All()[0].Title)
}

func TestLookupSkipsRowsThatFailMapping(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())
	good := f.seed(t, sampleProvider("p1", "Seattle"))
	_, err := f.table.Insert(context.Background(), models.ProviderRow{ID: "broken", Name: "No City"})
	require.NoError(t, err)

	res, err := f.svc.LookupProviders(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, good, res.Providers)
}
