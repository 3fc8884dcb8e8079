package models

// Valuation is the result of estimating a property's market value. The JSON
// shape matches the remote valuation service wire format so a remote response
// can be passed through to clients unmodified.
type Valuation struct {
	PropertyID           string               `json:"propertyId"`
	EstimatedValue       int64                `json:"estimatedValue"`
	PriceRange           PriceRange           `json:"priceRange"`
	Confidence           float64              `json:"confidence"`
	Factors              ValuationFactors     `json:"factors"`
	ComparableProperties []ComparableProperty `json:"comparableProperties"`
	MarketTrends         MarketTrends         `json:"marketTrends"`
}

type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// ValuationFactors are per-attribute [0,1] contribution scores shown to the
// user to explain a valuation.
type ValuationFactors struct {
	Location  float64 `json:"location"`
	Area      float64 `json:"area"`
	Condition float64 `json:"condition"`
	Building  float64 `json:"building"`
	Floor     float64 `json:"floor"`
}

// ComparableProperty is a comparable listing as reported by the remote
// valuation model. The local fallback always returns an empty list.
type ComparableProperty struct {
	Address  string  `json:"address"`
	Price    int64   `json:"price"`
	Area     float64 `json:"area"`
	Distance float64 `json:"distance"`
}

type MarketTrends struct {
	AveragePricePerSqm   float64 `json:"averagePricePerSqm"`
	PriceChangeLastMonth float64 `json:"priceChangeLastMonth"`
	DemandLevel          string  `json:"demandLevel"`
}
