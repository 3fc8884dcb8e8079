// Package geoutil provides the great-circle distance primitive and
// radius-based nearest-neighbor filtering used by comparable search.
package geoutil

import (
	"math"
	"sort"
)

const earthRadiusMeters = 6371000.0

// GreatCircleDistance returns the haversine distance between two coordinate
// pairs in meters. Symmetric, zero for identical points; the square-root
// argument is clamped to [0,1] so antipodal and near-zero inputs stay finite.
func GreatCircleDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Candidate is a coordinate-bearing record considered for radius filtering.
type Candidate struct {
	ID        string
	Latitude  float64
	Longitude float64
}

// Neighbor is a candidate that survived the radius filter.
type Neighbor struct {
	ID       string
	Distance float64
}

// NearestWithinRadius computes the distance from the origin to every
// candidate, keeps those within radiusMeters and returns them sorted
// ascending by distance. Ties preserve the candidates' original relative
// order. An empty candidate set yields an empty result.
func NearestWithinRadius(lat, lon float64, candidates []Candidate, radiusMeters float64) []Neighbor {
	neighbors := make([]Neighbor, 0, len(candidates))
	for _, c := range candidates {
		d := GreatCircleDistance(lat, lon, c.Latitude, c.Longitude)
		if d <= radiusMeters {
			neighbors = append(neighbors, Neighbor{ID: c.ID, Distance: d})
		}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})

	return neighbors
}
