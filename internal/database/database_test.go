package database

import (
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oselia/server/internal/models"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	// A named in-memory database per test keeps gorm's pooled connections
	// on the same store without sharing state across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := NewDatabase(dsn, logrus.New())
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testProperty(id string) *models.Property {
	lat, lon := 49.9935, 36.2304
	return &models.Property{
		ID:           id,
		City:         "Харків",
		District:     "Шевченківський",
		Address:      "вул. Сумська, 1",
		Area:         55,
		Rooms:        2,
		Floor:        3,
		TotalFloors:  9,
		BuildingType: models.BuildingBrick,
		Condition:    models.ConditionGood,
		HasBalcony:   true,
		HasElevator:  true,
		Heating:      models.HeatingCentral,
		Latitude:     &lat,
		Longitude:    &lon,
	}
}

func TestSaveProperty_RoundTrip(t *testing.T) {
	db := newTestDatabase(t)

	p := testProperty("prop-1")
	require.NoError(t, db.SaveProperty(p))

	got, err := db.GetPropertyByID("prop-1")
	require.NoError(t, err)

	assert.Equal(t, p.City, got.City)
	assert.Equal(t, p.District, got.District)
	assert.Equal(t, p.Address, got.Address)
	assert.Equal(t, p.Area, got.Area)
	assert.Equal(t, p.Rooms, got.Rooms)
	assert.Equal(t, p.BuildingType, got.BuildingType)
	assert.Equal(t, p.Condition, got.Condition)
	assert.Equal(t, *p.Latitude, *got.Latitude)
	assert.Equal(t, *p.Longitude, *got.Longitude)
}

func TestSaveProperty_ReplaceByID(t *testing.T) {
	db := newTestDatabase(t)

	p := testProperty("prop-1")
	require.NoError(t, db.SaveProperty(p))

	edited := testProperty("prop-1")
	edited.Rooms = 3
	edited.Condition = models.ConditionExcellent
	require.NoError(t, db.SaveProperty(edited))

	got, err := db.GetPropertyByID("prop-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rooms)
	assert.Equal(t, models.ConditionExcellent, got.Condition)

	all, err := db.GetAllProperties()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveProperty_RequiresID(t *testing.T) {
	db := newTestDatabase(t)
	err := db.SaveProperty(&models.Property{City: "Харків"})
	assert.Error(t, err)
}

func TestGetPropertyByID_NotFound(t *testing.T) {
	db := newTestDatabase(t)

	_, err := db.GetPropertyByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPropertiesWithCoordinates(t *testing.T) {
	db := newTestDatabase(t)

	withCoords := testProperty("prop-1")
	require.NoError(t, db.SaveProperty(withCoords))

	noCoords := testProperty("prop-2")
	noCoords.Latitude = nil
	noCoords.Longitude = nil
	require.NoError(t, db.SaveProperty(noCoords))

	got, err := db.GetPropertiesWithCoordinates()
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "prop-1", got[0].ID)
}

func TestGetPropertiesMissingCoordinates(t *testing.T) {
	db := newTestDatabase(t)

	missing := testProperty("prop-1")
	missing.Latitude = nil
	missing.Longitude = nil
	require.NoError(t, db.SaveProperty(missing))

	attempted := testProperty("prop-2")
	attempted.Latitude = nil
	attempted.Longitude = nil
	attempted.GeocodingAttempted = true
	require.NoError(t, db.SaveProperty(attempted))

	complete := testProperty("prop-3")
	require.NoError(t, db.SaveProperty(complete))

	got, err := db.GetPropertiesMissingCoordinates(10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "prop-1", got[0].ID)
}

func TestUpdateCoordinates(t *testing.T) {
	db := newTestDatabase(t)

	p := testProperty("prop-1")
	p.Latitude = nil
	p.Longitude = nil
	require.NoError(t, db.SaveProperty(p))

	require.NoError(t, db.UpdateCoordinates("prop-1", 50.0050, 36.2250, "ubdh1qe"))

	got, err := db.GetPropertyByID("prop-1")
	require.NoError(t, err)
	require.True(t, got.HasCoordinates())
	assert.Equal(t, 50.0050, *got.Latitude)
	assert.Equal(t, 36.2250, *got.Longitude)
	assert.Equal(t, "ubdh1qe", got.Geohash)
	assert.True(t, got.GeocodingAttempted)

	assert.ErrorIs(t, db.UpdateCoordinates("missing", 1, 2, ""), ErrNotFound)
}

func TestDeleteProperty(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.SaveProperty(testProperty("prop-1")))
	require.NoError(t, db.DeleteProperty("prop-1"))

	_, err := db.GetPropertyByID("prop-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, db.DeleteProperty("prop-1"), ErrNotFound)
}
