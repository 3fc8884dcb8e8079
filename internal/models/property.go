package models

import "time"

// Building types accepted on a property record.
const (
	BuildingBrick      = "brick"
	BuildingPanel      = "panel"
	BuildingMonolithic = "monolithic"
	BuildingWood       = "wood"
)

// Condition values, ordered best to worst.
const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
	ConditionPoor      = "poor"
)

// Heating values.
const (
	HeatingCentral    = "central"
	HeatingIndividual = "individual"
	HeatingNone       = "none"
)

type Property struct {
	ID           string   `gorm:"primaryKey" json:"id"`
	City         string   `json:"city"`
	District     string   `json:"district"`
	Address      string   `json:"address"`
	FullAddress  string   `json:"fullAddress,omitempty"`
	Area         float64  `json:"area"`
	Rooms        int      `json:"rooms"`
	Floor        int      `json:"floor"`
	TotalFloors  int      `json:"totalFloors"`
	BuildingType string   `json:"buildingType"`
	YearBuilt    *int     `json:"yearBuilt,omitempty"`
	Condition    string   `json:"condition"`
	HasBalcony   bool     `json:"hasBalcony"`
	HasElevator  bool     `json:"hasElevator"`
	Heating      string   `json:"heating"`
	Description  string   `json:"description,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Geohash      string   `json:"geohash,omitempty"`

	// GeocodingAttempted marks records whose address we already tried to
	// resolve, so the backfill does not hammer the geocoder with known
	// failures.
	GeocodingAttempted bool `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasCoordinates reports whether the record is eligible for distance-based
// comparable search.
func (p *Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// ComparableMatch is a candidate property together with its distance from the
// subject and the weighted similarity score. Derived on each request, never
// persisted.
type ComparableMatch struct {
	Property       Property `json:"property"`
	DistanceMeters float64  `json:"distanceMeters"`
	Similarity     float64  `json:"similarity"`
}
