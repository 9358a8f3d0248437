package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestToServiceProviderRejectsIncompleteRows(t *testing.T) {
	ok := ProviderRow{ID: "p1", Name: "Shop", City: "Austin", State: "TX"}
	cases := map[string]ProviderRow{
		"missing id":   {Name: "Shop", City: "Austin"},
		"missing name": {ID: "p1", City: "Austin"},
		"missing city": {ID: "p1", Name: "Shop"},
		"half point":   {ID: "p1", Name: "Shop", City: "Austin", Latitude: ptr(30.2)},
	}
	for name, row := range cases {
		_, err := ToServiceProvider(row)
		assert.True(t, errors.Is(err, ErrInvalidProviderRow), name)
	}

	p, err := ToServiceProvider(ok)
	require.NoError(t, err)
	assert.Equal(t, "Austin, TX", p.Location.String())
	assert.Nil(t, p.Location.Coordinates)
}

func TestProviderRowMappingKeepsCoordinates(t *testing.T) {
	row := ProviderRow{
		ID: "p1", Name: "Shop", City: "Denver", State: "CO",
		Latitude: ptr(39.74), Longitude: ptr(-104.99),
		Services: []string{"Oil Change", " ", "Oil Change", "Tires"},
	}
	p, err := ToServiceProvider(row)
	require.NoError(t, err)
	require.NotNil(t, p.Location.Coordinates)
	assert.Equal(t, 39.74, p.Location.Coordinates.Lat)
	assert.Equal(t, []string{"Oil Change", "Tires"}, p.Services)

	back := ToProviderRow(p)
	assert.Equal(t, row.Latitude, back.Latitude)
	assert.Equal(t, row.Longitude, back.Longitude)
}

func TestBookingRequestValidate(t *testing.T) {
	valid := BookingRequest{ServiceType: "Oil Change", Date: "2030-02-01", Time: "09:30", VehicleID: "v1", ProviderID: "p1"}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Date = "02/01/2030"
	var ve *ValidationError
	require.ErrorAs(t, bad.Validate(), &ve)
	assert.Equal(t, "date", ve.Field)

	bad = valid
	bad.ProviderID = ""
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Status = "lost"
	assert.Error(t, bad.Validate())
}

func TestBookingStatusAcceptsAnyEnumeratedValue(t *testing.T) {
	for _, s := range BookingStatuses {
		got, err := ParseBookingStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseBookingStatus("archived")
	assert.Error(t, err)
}

func TestActorOwns(t *testing.T) {
	assert.True(t, Actor{UserID: "u1"}.Owns("u1"))
	assert.False(t, Actor{UserID: "u1"}.Owns("u2"))
	assert.False(t, Actor{}.Owns(""))
	assert.True(t, Actor{Role: RoleAdmin}.Owns("u2"))
}

func TestProviderPatchLocationReplacesCoordinates(t *testing.T) {
	fields, err := ProviderPatch{Location: &ProviderLocation{City: "Dallas", State: "TX"}}.Fields()
	require.NoError(t, err)
	assert.Contains(t, fields, "latitude")
	assert.Nil(t, fields["latitude"])
	assert.Nil(t, fields["longitude"])

	fields, err = ProviderPatch{Location: &ProviderLocation{City: "Dallas", Coordinates: &Coordinates{Lat: 32.7, Lng: -96.8}}}.Fields()
	require.NoError(t, err)
	assert.Equal(t, 32.7, fields["latitude"])
	assert.Equal(t, -96.8, fields["longitude"])

	name := "Renamed"
	fields, err = ProviderPatch{Name: &name}.Fields()
	require.NoError(t, err)
	assert.NotContains(t, fields, "latitude")
}
