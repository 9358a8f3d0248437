package provider

import (
	"context"
	"errors"
	"testing"

	"autocare/database/repository"
	"autocare/models"
	"autocare/services/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profile(name, city string) models.ProviderProfile {
	return models.ProviderProfile{
		Name:     name,
		Location: models.ProviderLocation{City: city, State: "TX"},
		Services: []string{"Oil Change", "Oil Change", "Brakes"},
	}
}

func TestRegisterInvalidatesProviderViewsOnly(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())
	ctx := context.Background()

	_, err := f.svc.LookupProviders(ctx, "Austin, TX")
	require.NoError(t, err)
	require.NoError(t, f.cache.Set(ctx, "query:bookings:u1", []byte(`[]`), 0))
	require.Len(t, f.cache.Keys(), 2)

	p, err := f.svc.Register(ctx, "user-1", profile("Lone Star Auto", "Austin"))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, []string{"Oil Change", "Brakes"}, p.Services)

	assert.Equal(t, []string{"query:bookings:u1"}, f.cache.Keys())
	assert.Zero(t, f.rec.Len())

	res, err := f.svc.LookupProviders(ctx, "Austin, TX")
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	require.Len(t, res.Providers, 1)
	assert.Equal(t, p.ID, res.Providers[0].ID)
}

func TestRegisterTwiceConflicts(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "user-1", profile("A", "Austin"))
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "user-1", profile("B", "Austin"))
	var conflict *models.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, f.rec.Len())
	assert.Equal(t, 1, f.table.Len())
}

func TestMutationFailureLeavesCacheAndNotifiesOnce(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())
	ctx := context.Background()
	f.seed(t, sampleProvider("p1", "Seattle"))

	_, err := f.svc.LookupProviders(ctx, "")
	require.NoError(t, err)
	before := f.cache.Keys()
	require.NotEmpty(t, before)

	f.table.FailWith = func(op string) error {
		if op == "update" {
			return errors.New("write timeout")
		}
		return nil
	}
	name := "Renamed"
	_, err = f.svc.UpdateProfile(ctx, models.Actor{Role: models.RoleAdmin}, "p1", models.ProviderPatch{Name: &name})
	require.True(t, repository.IsRemoteStore(err))

	assert.Equal(t, before, f.cache.Keys())
	require.Equal(t, 1, f.rec.Len())
	n := f.rec.All()[0]
	assert.Equal(t, models.VariantDestructive, n.Variant)
	assert.NotContains(t, n.Description, "write timeout")
}

func TestUpdateProfileRequiresOwnership(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())
	ctx := context.Background()

	p, err := f.svc.Register(ctx, "owner", profile("A", "Austin"))
	require.NoError(t, err)

	name := "Hijacked"
	_, err = f.svc.UpdateProfile(ctx, models.Actor{UserID: "intruder", Role: models.RoleProvider}, p.ID, models.ProviderPatch{Name: &name})
	var forbidden *models.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	updated, err := f.svc.UpdateProfile(ctx, models.Actor{UserID: "owner", Role: models.RoleProvider}, p.ID, models.ProviderPatch{
		Location: &models.ProviderLocation{City: "Dallas", State: "TX", Coordinates: &models.Coordinates{Lat: 32.7, Lng: -96.8}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dallas", updated.Location.City)
	require.NotNil(t, updated.Location.Coordinates)
	assert.Equal(t, 32.7, updated.Location.Coordinates.Lat)
}

func TestDeleteUnknownProviderIsNotFound(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())

	err := f.svc.Delete(context.Background(), models.Actor{Role: models.RoleAdmin}, "missing")
	assert.True(t, repository.IsNotFound(err))
	assert.Equal(t, 1, f.rec.Len())
}

func TestMovingWithoutCoordinatesClearsTheOldPoint(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())
	ctx := context.Background()
	owner := models.Actor{UserID: "owner", Role: models.RoleProvider}

	p, err := f.svc.Register(ctx, "owner", models.ProviderProfile{
		Name:     "Lone Star Auto",
		Location: models.ProviderLocation{City: "Austin", State: "TX", Coordinates: &models.Coordinates{Lat: 30.27, Lng: -97.74}},
	})
	require.NoError(t, err)
	require.NotNil(t, p.Location.Coordinates)

	moved, err := f.svc.UpdateProfile(ctx, owner, p.ID, models.ProviderPatch{
		Location: &models.ProviderLocation{Address: "1 Elm St", City: "Dallas", State: "TX"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dallas", moved.Location.City)
	assert.Nil(t, moved.Location.Coordinates)

	stored, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Location.Coordinates)
}

func TestFailureToastsReachTheSignedInProvider(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "user-1", models.ProviderProfile{Location: models.ProviderLocation{City: "Austin"}})
	require.Error(t, err)

	name := "Renamed"
	_, err = f.svc.UpdateProfile(ctx, models.Actor{UserID: "user-2", Role: models.RoleProvider}, "missing", models.ProviderPatch{Name: &name})
	require.True(t, repository.IsNotFound(err))
	require.Error(t, f.svc.Delete(ctx, models.Actor{UserID: "user-3", Role: models.RoleProvider}, "missing"))

	all := f.rec.All()
	require.Len(t, all, 3)
	assert.Equal(t, "user-1", all[0].UserID)
	assert.Equal(t, "user-2", all[1].UserID)
	assert.Equal(t, "user-3", all[2].UserID)
}

func TestSingleReadsNotifyOnFailure(t *testing.T) {
	f := newFixture(t, mock.NewGenerator())
	ctx := context.Background()

	_, err := f.svc.Get(ctx, "missing")
	assert.True(t, repository.IsNotFound(err))
	_, err = f.svc.GetByUserID(ctx, "nobody")
	assert.True(t, repository.IsNotFound(err))

	all := f.rec.All()
	require.Len(t, all, 2)
	assert.Equal(t, models.VariantDestructive, all[0].Variant)
	assert.Empty(t, all[0].UserID)
	assert.Equal(t, "nobody", all[1].UserID)
}
