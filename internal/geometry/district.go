// Package geometry derives district boundary polygons from the coordinates
// of stored properties.
package geometry

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"oselia/server/internal/models"
)

// PropertySource lists the coordinate-bearing properties used as hull input.
type PropertySource interface {
	GetPropertiesWithCoordinates() ([]models.Property, error)
}

type DistrictMapper struct {
	store  PropertySource
	logger *logrus.Logger
}

func NewDistrictMapper(store PropertySource, logger *logrus.Logger) *DistrictMapper {
	return &DistrictMapper{
		store:  store,
		logger: logger,
	}
}

// DistrictHulls builds a convex hull per district from the properties
// currently on record. Districts with fewer than three distinct points are
// skipped.
func (dm *DistrictMapper) DistrictHulls() (*geojson.FeatureCollection, error) {
	properties, err := dm.store.GetPropertiesWithCoordinates()
	if err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}

	grouped := make(map[string][]orb.Point)
	seen := make(map[string]bool)
	for _, p := range properties {
		if p.District == "" || !p.HasCoordinates() {
			continue
		}

		// Deduplicate coincident points within a district
		key := fmt.Sprintf("%s|%.6f,%.6f", p.District, *p.Latitude, *p.Longitude)
		if seen[key] {
			continue
		}
		seen[key] = true

		grouped[p.District] = append(grouped[p.District], orb.Point{*p.Longitude, *p.Latitude})
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	fc := geojson.NewFeatureCollection()
	for _, name := range names {
		points := grouped[name]
		if len(points) < 3 {
			dm.logger.WithFields(logrus.Fields{
				"district":    name,
				"point_count": len(points),
			}).Debug("Not enough points for district hull")
			continue
		}

		hull := convexHull(points)
		if hull == nil {
			continue
		}

		feature := geojson.NewFeature(orb.Polygon{hull})
		feature.Properties = geojson.Properties{
			"district":    name,
			"point_count": len(points),
			"hull_type":   "convex",
		}
		fc.Append(feature)
	}

	dm.logger.WithField("districts", len(fc.Features)).Info("Generated district hulls")
	return fc, nil
}

// convexHull runs a Graham scan over the points and returns a closed
// counter-clockwise ring, or nil when the points are collinear.
func convexHull(input []orb.Point) orb.Ring {
	if len(input) < 3 {
		return nil
	}

	points := make([]orb.Point, len(input))
	copy(points, input)

	// Anchor on the lowest point, breaking ties by longitude
	anchorIdx := 0
	for i := 1; i < len(points); i++ {
		if points[i][1] < points[anchorIdx][1] ||
			(points[i][1] == points[anchorIdx][1] && points[i][0] < points[anchorIdx][0]) {
			anchorIdx = i
		}
	}
	points[0], points[anchorIdx] = points[anchorIdx], points[0]
	anchor := points[0]

	sort.Slice(points[1:], func(i, j int) bool {
		pi, pj := points[1+i], points[1+j]
		ai := math.Atan2(pi[1]-anchor[1], pi[0]-anchor[0])
		aj := math.Atan2(pj[1]-anchor[1], pj[0]-anchor[0])
		if ai != aj {
			return ai < aj
		}
		return squaredDistance(anchor, pi) < squaredDistance(anchor, pj)
	})

	hull := []orb.Point{points[0], points[1]}
	for i := 2; i < len(points); i++ {
		for len(hull) > 1 && cross(hull[len(hull)-2], hull[len(hull)-1], points[i]) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, points[i])
	}

	if len(hull) < 3 {
		return nil
	}

	hull = append(hull, hull[0])
	return orb.Ring(hull)
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func squaredDistance(a, b orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	return dx*dx + dy*dy
}
