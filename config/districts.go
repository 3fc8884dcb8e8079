package config

import (
	"strings"

	"github.com/paulmach/orb"
)

// District is one gazetteer entry: a named district or microdistrict with an
// approximate centroid and an average asking price per square meter.
type District struct {
	Name           string    `json:"name"`
	Kind           string    `json:"kind"` // "district" or "microdistrict"
	Center         []float64 `json:"center"` // {latitude, longitude}
	AvgPricePerSqm float64   `json:"avg_price_per_sqm"`
}

// Gazetteer is the static reference table for the one supported city. It is
// constructed once at startup and passed by reference into the estimator, so
// tests can substitute fixture tables.
type Gazetteer struct {
	CityName           string     `json:"city"`
	Center             []float64  `json:"center"`
	AvgPricePerSqm     float64    `json:"avg_price_per_sqm"`
	FlatFallbackPerSqm float64    `json:"flat_fallback_per_sqm"`
	Districts          []District `json:"districts"`

	bounds orb.Bound
}

// KharkivGazetteer returns the built-in district price table for Kharkiv.
func KharkivGazetteer() *Gazetteer {
	return &Gazetteer{
		CityName:           "Харків",
		Center:             []float64{49.9935, 36.2304},
		AvgPricePerSqm:     1200,
		FlatFallbackPerSqm: 1000,
		// Approximate city limits, used to sanity-check geocoder output.
		bounds: orb.Bound{
			Min: orb.Point{36.05, 49.85},
			Max: orb.Point{36.50, 50.15},
		},
		Districts: []District{
			{Name: "Основ'янський", Kind: "district", Center: []float64{49.9845, 36.2428}, AvgPricePerSqm: 1150},
			{Name: "Слобідський", Kind: "district", Center: []float64{49.9750, 36.2650}, AvgPricePerSqm: 1100},
			{Name: "Немишлянський", Kind: "district", Center: []float64{49.9650, 36.2950}, AvgPricePerSqm: 1050},
			{Name: "Шевченківський", Kind: "district", Center: []float64{50.0050, 36.2250}, AvgPricePerSqm: 1250},
			{Name: "Холодногірський", Kind: "district", Center: []float64{50.0150, 36.2100}, AvgPricePerSqm: 1000},
			{Name: "Індустріальний", Kind: "district", Center: []float64{49.9500, 36.3100}, AvgPricePerSqm: 950},
			{Name: "Київський", Kind: "district", Center: []float64{50.0250, 36.3400}, AvgPricePerSqm: 1300},
			{Name: "Салтівський", Kind: "district", Center: []float64{50.0350, 36.3000}, AvgPricePerSqm: 900},
			{Name: "Новобаварський", Kind: "district", Center: []float64{49.9550, 36.2000}, AvgPricePerSqm: 850},
			{Name: "Центр", Kind: "microdistrict", Center: []float64{49.9935, 36.2304}, AvgPricePerSqm: 1400},
			{Name: "Салтівка", Kind: "microdistrict", Center: []float64{50.0300, 36.2950}, AvgPricePerSqm: 850},
			{Name: "Олексіївка", Kind: "microdistrict", Center: []float64{50.0450, 36.2850}, AvgPricePerSqm: 1300},
			{Name: "Холодна Гора", Kind: "microdistrict", Center: []float64{50.0100, 36.2050}, AvgPricePerSqm: 950},
			{Name: "Нова Баварія", Kind: "microdistrict", Center: []float64{49.9450, 36.1950}, AvgPricePerSqm: 800},
			{Name: "Павлове Поле", Kind: "microdistrict", Center: []float64{49.9600, 36.2450}, AvgPricePerSqm: 1000},
			{Name: "Сортування", Kind: "microdistrict", Center: []float64{49.9700, 36.2600}, AvgPricePerSqm: 900},
			{Name: "Левада", Kind: "microdistrict", Center: []float64{49.9850, 36.2500}, AvgPricePerSqm: 1050},
			{Name: "Жуковського", Kind: "microdistrict", Center: []float64{50.0150, 36.2350}, AvgPricePerSqm: 1200},
			{Name: "Держпром", Kind: "microdistrict", Center: []float64{49.9900, 36.2350}, AvgPricePerSqm: 1350},
			{Name: "Аеропорт", Kind: "microdistrict", Center: []float64{49.9244, 36.2900}, AvgPricePerSqm: 850},
			{Name: "Артема", Kind: "microdistrict", Center: []float64{49.9500, 36.2700}, AvgPricePerSqm: 800},
			{Name: "Ботсад", Kind: "microdistrict", Center: []float64{50.0250, 36.2450}, AvgPricePerSqm: 1100},
			{Name: "Балашівка", Kind: "microdistrict", Center: []float64{49.9450, 36.3200}, AvgPricePerSqm: 750},
			{Name: "Горизонт", Kind: "microdistrict", Center: []float64{50.0400, 36.3100}, AvgPricePerSqm: 950},
			{Name: "Гончарівка", Kind: "microdistrict", Center: []float64{49.9600, 36.2350}, AvgPricePerSqm: 1000},
			{Name: "Григорівка", Kind: "microdistrict", Center: []float64{49.9300, 36.3000}, AvgPricePerSqm: 700},
			{Name: "Дальня Журавлівка", Kind: "microdistrict", Center: []float64{49.9250, 36.2800}, AvgPricePerSqm: 650},
			{Name: "Джерела", Kind: "microdistrict", Center: []float64{50.0200, 36.2800}, AvgPricePerSqm: 1050},
			{Name: "Журавлівка", Kind: "microdistrict", Center: []float64{49.9200, 36.2850}, AvgPricePerSqm: 700},
			{Name: "Залютине", Kind: "microdistrict", Center: []float64{49.9050, 36.3150}, AvgPricePerSqm: 600},
			{Name: "Заїківка", Kind: "microdistrict", Center: []float64{49.9150, 36.2950}, AvgPricePerSqm: 650},
			{Name: "Іванівка", Kind: "microdistrict", Center: []float64{49.9350, 36.3250}, AvgPricePerSqm: 700},
			{Name: "Лиса Гора", Kind: "microdistrict", Center: []float64{49.9550, 36.3150}, AvgPricePerSqm: 750},
			{Name: "Лазьковка", Kind: "microdistrict", Center: []float64{49.9400, 36.3050}, AvgPricePerSqm: 680},
			{Name: "Москалівка", Kind: "microdistrict", Center: []float64{49.9400, 36.2400}, AvgPricePerSqm: 780},
			{Name: "Нові Дома", Kind: "microdistrict", Center: []float64{49.9250, 36.2750}, AvgPricePerSqm: 720},
			{Name: "Новоселівка", Kind: "microdistrict", Center: []float64{49.9350, 36.2650}, AvgPricePerSqm: 700},
		},
	}
}

// LookupDistrict resolves a free-text district name against the table. Two
// deterministic passes: exact case-insensitive match first, then
// substring-contains. Returns false when neither pass matches.
func (g *Gazetteer) LookupDistrict(name string) (*District, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, false
	}

	for i := range g.Districts {
		if strings.ToLower(g.Districts[i].Name) == needle {
			return &g.Districts[i], true
		}
	}
	for i := range g.Districts {
		if strings.Contains(strings.ToLower(g.Districts[i].Name), needle) {
			return &g.Districts[i], true
		}
	}
	return nil, false
}

// BasePricePerSqm resolves the reference price for a city/district pair:
// flat constant for any city other than the supported one, district price on
// a gazetteer match, city-wide average otherwise.
func (g *Gazetteer) BasePricePerSqm(city, district string) float64 {
	if !strings.EqualFold(strings.TrimSpace(city), g.CityName) {
		return g.FlatFallbackPerSqm
	}

	if district != "" {
		if d, ok := g.LookupDistrict(district); ok && d.AvgPricePerSqm > 0 {
			return d.AvgPricePerSqm
		}
	}

	return g.AvgPricePerSqm
}

// Contains reports whether a coordinate pair falls inside the supported
// city's approximate bounds.
func (g *Gazetteer) Contains(lat, lon float64) bool {
	return g.bounds.Contains(orb.Point{lon, lat})
}

// DistrictNames returns all gazetteer district names.
func (g *Gazetteer) DistrictNames() []string {
	names := make([]string, len(g.Districts))
	for i, d := range g.Districts {
		names[i] = d.Name
	}
	return names
}
