package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupDistrict(t *testing.T) {
	g := KharkivGazetteer()

	tests := []struct {
		name     string
		input    string
		expected string
		found    bool
	}{
		{name: "exact match", input: "Салтівка", expected: "Салтівка", found: true},
		{name: "case insensitive", input: "салтівка", expected: "Салтівка", found: true},
		{name: "trims whitespace", input: "  Центр  ", expected: "Центр", found: true},
		{name: "exact beats substring", input: "Салтівський", expected: "Салтівський", found: true},
		{name: "substring match", input: "Салтів", expected: "Салтівський", found: true},
		{name: "unknown", input: "Троєщина", found: false},
		{name: "empty", input: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := g.LookupDistrict(tt.input)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				require.NotNil(t, d)
				assert.Equal(t, tt.expected, d.Name)
			}
		})
	}
}

func TestBasePricePerSqm(t *testing.T) {
	g := KharkivGazetteer()

	tests := []struct {
		name     string
		city     string
		district string
		expected float64
	}{
		{name: "district price", city: "Харків", district: "Шевченківський", expected: 1250},
		{name: "microdistrict price", city: "Харків", district: "Центр", expected: 1400},
		{name: "city average without district", city: "Харків", district: "", expected: 1200},
		{name: "city average for unknown district", city: "Харків", district: "Невідомий", expected: 1200},
		{name: "city name case insensitive", city: "харків", district: "Центр", expected: 1400},
		{name: "other city flat fallback", city: "Київ", district: "Оболонь", expected: 1000},
		{name: "empty city flat fallback", city: "", district: "Центр", expected: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, g.BasePricePerSqm(tt.city, tt.district))
		})
	}
}

func TestContains(t *testing.T) {
	g := KharkivGazetteer()

	// City centre is inside, Kyiv is not
	assert.True(t, g.Contains(49.9935, 36.2304))
	assert.False(t, g.Contains(50.4501, 30.5234))

	// Just outside each edge
	assert.False(t, g.Contains(50.20, 36.23))
	assert.False(t, g.Contains(49.80, 36.23))
	assert.False(t, g.Contains(49.99, 36.60))
	assert.False(t, g.Contains(49.99, 36.00))
}

func TestDistrictNames(t *testing.T) {
	g := KharkivGazetteer()
	names := g.DistrictNames()

	assert.Len(t, names, len(g.Districts))
	assert.Contains(t, names, "Шевченківський")
	assert.Contains(t, names, "Салтівка")
}

func TestDistrictCentersInsideBounds(t *testing.T) {
	g := KharkivGazetteer()
	for _, d := range g.Districts {
		require.Len(t, d.Center, 2)
		assert.True(t, g.Contains(d.Center[0], d.Center[1]), "district %s center outside bounds", d.Name)
	}
}
