package valuation

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"oselia/server/config"
	"oselia/server/internal/database"
	"oselia/server/internal/models"
)

// MockStore is a mock implementation of the PropertyGetter interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetPropertyByID(id string) (*models.Property, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

// MockRemote is a mock implementation of the RemoteClient interface
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) GetValuation(ctx context.Context, propertyID string) (*models.Valuation, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Valuation), args.Error(1)
}

func fixtureProperty() *models.Property {
	return &models.Property{
		ID:           "prop-1",
		City:         "Харків",
		District:     "",
		Area:         60,
		Rooms:        2,
		Floor:        5,
		TotalFloors:  10,
		BuildingType: models.BuildingBrick,
		Condition:    models.ConditionGood,
		Heating:      models.HeatingCentral,
	}
}

func newEstimator(store *MockStore, remote *MockRemote) *Estimator {
	return NewEstimator(store, remote, config.KharkivGazetteer(), logrus.New())
}

func TestEstimate_LocalFallback(t *testing.T) {
	store := &MockStore{}
	store.On("GetPropertyByID", "prop-1").Return(fixtureProperty(), nil)

	remote := &MockRemote{}
	remote.On("GetValuation", mock.Anything, "prop-1").Return(nil, errors.New("connection refused"))

	v, source, err := newEstimator(store, remote).estimate(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, source)

	// 60 m2 at the city average 1200 with the "good" multiplier 1.0.
	assert.Equal(t, int64(72000), v.EstimatedValue)
	assert.Equal(t, int64(61200), v.PriceRange.Min)
	assert.Equal(t, int64(82800), v.PriceRange.Max)
	assert.Equal(t, 0.70, v.Confidence)

	assert.Equal(t, 0.80, v.Factors.Location)
	assert.Equal(t, 0.90, v.Factors.Area)
	assert.Equal(t, 0.85, v.Factors.Condition)
	assert.Equal(t, 0.80, v.Factors.Building)
	assert.Equal(t, 1.00, v.Factors.Floor)

	assert.Empty(t, v.ComparableProperties)
	assert.Equal(t, 1200.0, v.MarketTrends.AveragePricePerSqm)
	assert.Equal(t, 0.5, v.MarketTrends.PriceChangeLastMonth)
	assert.Equal(t, "medium", v.MarketTrends.DemandLevel)
}

func TestEstimate_RemotePreferred(t *testing.T) {
	store := &MockStore{}
	store.On("GetPropertyByID", "prop-1").Return(fixtureProperty(), nil)

	remoteValuation := &models.Valuation{
		PropertyID:     "prop-1",
		EstimatedValue: 81500,
		PriceRange:     models.PriceRange{Min: 76000, Max: 87000},
		Confidence:     0.92,
		Factors:        models.ValuationFactors{Location: 0.91, Area: 0.88, Condition: 0.83, Building: 0.79, Floor: 0.97},
		ComparableProperties: []models.ComparableProperty{
			{Address: "вул. Сумська, 3", Price: 79000, Area: 58, Distance: 120},
		},
		MarketTrends: models.MarketTrends{AveragePricePerSqm: 1358, PriceChangeLastMonth: 1.2, DemandLevel: "high"},
	}

	remote := &MockRemote{}
	remote.On("GetValuation", mock.Anything, "prop-1").Return(remoteValuation, nil)

	v, source, err := newEstimator(store, remote).estimate(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, source)

	// The remote model's output is trusted and passed through unmodified.
	assert.Equal(t, remoteValuation, v)
}

func TestEstimate_PropertyNotFound(t *testing.T) {
	store := &MockStore{}
	store.On("GetPropertyByID", "missing").Return(nil, database.ErrNotFound)

	remote := &MockRemote{}

	_, err := newEstimator(store, remote).Estimate(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
	remote.AssertNotCalled(t, "GetValuation", mock.Anything, mock.Anything)
}

func TestEstimate_DistrictLookup(t *testing.T) {
	tests := []struct {
		name         string
		city         string
		district     string
		condition    string
		expectedBase float64
	}{
		{name: "known district", city: "Харків", district: "Салтівка", condition: models.ConditionGood, expectedBase: 850},
		{name: "district case insensitive", city: "харків", district: "шевченківський", condition: models.ConditionGood, expectedBase: 1250},
		{name: "district substring", city: "Харків", district: "Салтів", condition: models.ConditionGood, expectedBase: 900},
		{name: "unknown district falls back to city average", city: "Харків", district: "Невідомий", condition: models.ConditionGood, expectedBase: 1200},
		{name: "other city flat fallback", city: "Київ", district: "Оболонь", condition: models.ConditionGood, expectedBase: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fixtureProperty()
			p.City = tt.city
			p.District = tt.district
			p.Condition = tt.condition

			store := &MockStore{}
			store.On("GetPropertyByID", "prop-1").Return(p, nil)

			remote := &MockRemote{}
			remote.On("GetValuation", mock.Anything, "prop-1").Return(nil, errors.New("unavailable"))

			v, err := newEstimator(store, remote).Estimate(context.Background(), "prop-1")
			require.NoError(t, err)

			assert.Equal(t, int64(p.Area*tt.expectedBase), v.EstimatedValue)
			assert.Equal(t, tt.expectedBase, v.MarketTrends.AveragePricePerSqm)
		})
	}
}

func TestEstimate_ConditionMultipliers(t *testing.T) {
	tests := []struct {
		condition     string
		expectedValue int64
		expectedScore float64
	}{
		{condition: models.ConditionExcellent, expectedValue: 86400, expectedScore: 0.95},
		{condition: models.ConditionGood, expectedValue: 72000, expectedScore: 0.85},
		{condition: models.ConditionFair, expectedValue: 57600, expectedScore: 0.70},
		{condition: models.ConditionPoor, expectedValue: 43200, expectedScore: 0.50},
		{condition: "renovated", expectedValue: 72000, expectedScore: 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			p := fixtureProperty()
			p.Condition = tt.condition

			store := &MockStore{}
			store.On("GetPropertyByID", "prop-1").Return(p, nil)

			remote := &MockRemote{}
			remote.On("GetValuation", mock.Anything, "prop-1").Return(nil, errors.New("unavailable"))

			v, err := newEstimator(store, remote).Estimate(context.Background(), "prop-1")
			require.NoError(t, err)

			assert.Equal(t, tt.expectedValue, v.EstimatedValue)
			assert.Equal(t, tt.expectedScore, v.Factors.Condition)
		})
	}
}

func TestFloorScore(t *testing.T) {
	tests := []struct {
		floor       int
		totalFloors int
		expected    float64
	}{
		{floor: 1, totalFloors: 5, expected: 0.80},
		{floor: 5, totalFloors: 5, expected: 0.90},
		{floor: 2, totalFloors: 10, expected: 0.95},
		{floor: 3, totalFloors: 10, expected: 0.95},
		{floor: 9, totalFloors: 10, expected: 0.85},
		{floor: 8, totalFloors: 10, expected: 0.85},
		{floor: 5, totalFloors: 10, expected: 1.00},
		{floor: 1, totalFloors: 1, expected: 0.80},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, floorScore(tt.floor, tt.totalFloors),
			"floorScore(%d, %d)", tt.floor, tt.totalFloors)
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	store := &MockStore{}
	store.On("GetPropertyByID", "prop-1").Return(fixtureProperty(), nil)

	remote := &MockRemote{}
	remote.On("GetValuation", mock.Anything, "prop-1").Return(nil, errors.New("unavailable"))

	estimator := newEstimator(store, remote)

	first, err := estimator.Estimate(context.Background(), "prop-1")
	require.NoError(t, err)
	second, err := estimator.Estimate(context.Background(), "prop-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEstimate_NoRemoteConfigured(t *testing.T) {
	store := &MockStore{}
	store.On("GetPropertyByID", "prop-1").Return(fixtureProperty(), nil)

	estimator := NewEstimator(store, nil, config.KharkivGazetteer(), logrus.New())

	v, source, err := estimator.estimate(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, source)
	assert.Equal(t, int64(72000), v.EstimatedValue)
}
