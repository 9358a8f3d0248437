package mock

import (
	"context"
	"testing"

	"autocare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetServiceProvidersIsDeterministic(t *testing.T) {
	g := NewGenerator()
	ctx := context.Background()

	for _, loc := range []string{"", "Austin, TX", "Smallville, KS"} {
		a, err := g.GetServiceProviders(ctx, loc)
		require.NoError(t, err)
		b, err := NewGenerator().GetServiceProviders(ctx, loc)
		require.NoError(t, err)
		assert.Equal(t, a, b, "location %q", loc)
	}
}

func TestLocationAgnosticListSpansCities(t *testing.T) {
	g := NewGenerator()
	providers, err := g.GetServiceProviders(context.Background(), "  ")
	require.NoError(t, err)
	require.Len(t, providers, len(cities)*g.PerCity)

	seen := map[string]bool{}
	for _, p := range providers {
		seen[p.Location.String()] = true
	}
	assert.Len(t, seen, len(cities))
}

func TestLocationScopedListStaysInLocation(t *testing.T) {
	g := NewGenerator()
	providers, err := g.GetServiceProviders(context.Background(), "Austin, TX")
	require.NoError(t, err)
	require.Len(t, providers, g.PerLocation)

	ids := map[string]bool{}
	for _, p := range providers {
		assert.Equal(t, "Austin", p.Location.City)
		assert.Equal(t, "TX", p.Location.State)
		require.NotNil(t, p.Location.Coordinates)
		assert.InDelta(t, 30.2672, p.Location.Coordinates.Lat, 0.06)
		assert.InDelta(t, -97.7431, p.Location.Coordinates.Lng, 0.06)
		assert.NotEmpty(t, p.Services)
		ids[p.ID] = true
	}
	assert.Len(t, ids, len(providers), "ids are unique")

	other, err := g.GetServiceProviders(context.Background(), "Denver, CO")
	require.NoError(t, err)
	assert.NotEqual(t, providers[0].ID, other[0].ID)
}

func TestUnknownLocationKeepsItsName(t *testing.T) {
	providers, err := NewGenerator().GetServiceProviders(context.Background(), "smallville, ks")
	require.NoError(t, err)
	for _, p := range providers {
		assert.Equal(t, "Smallville", p.Location.City)
		assert.Equal(t, "KS", p.Location.State)
	}
}

func TestGeneratedProvidersSurviveTheStoreMapping(t *testing.T) {
	providers, err := NewGenerator().GetServiceProviders(context.Background(), "")
	require.NoError(t, err)
	for _, p := range providers {
		back, err := models.ToServiceProvider(models.ToProviderRow(p))
		require.NoError(t, err)
		assert.Equal(t, p, back)
	}
}

func TestGetServiceProvidersHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGenerator().GetServiceProviders(ctx, "Austin, TX")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnknownLocationKeepsAccentedLetters(t *testing.T) {
	providers, err := NewGenerator().GetServiceProviders(context.Background(), "évry, FR")
	require.NoError(t, err)
	require.NotEmpty(t, providers)
	assert.Equal(t, "Évry", providers[0].Location.City)
	assert.Equal(t, "FR", providers[0].Location.State)

	assert.Equal(t, "São Paulo", titleCase("são PAULO"))
}
