// Package comparables ranks stored properties against a subject property by
// geographic proximity and attribute similarity.
package comparables

import (
	"errors"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"oselia/server/internal/database"
	"oselia/server/internal/geoutil"
	"oselia/server/internal/models"
	"oselia/server/internal/similarity"
)

// SimilarityThreshold is the hard acceptance cutoff: candidates scoring at or
// below it are dropped, not merely ranked lower.
const SimilarityThreshold = 0.6

// PropertyStore is the slice of the repository the selector needs.
type PropertyStore interface {
	GetPropertyByID(id string) (*models.Property, error)
	GetPropertiesWithCoordinates() ([]models.Property, error)
}

type Selector struct {
	store  PropertyStore
	logger *logrus.Logger
}

func NewSelector(store PropertyStore, logger *logrus.Logger) *Selector {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Selector{store: store, logger: logger}
}

// FindComparables returns up to maxResults stored properties within
// radiusMeters of the subject, scored and ordered by similarity descending
// (distance order breaks ties). A subject that is missing, or has no stored
// coordinates, yields an empty list rather than an error: comparable search
// is a best-effort feature.
func (s *Selector) FindComparables(subjectID string, radiusMeters float64, maxResults int) ([]models.ComparableMatch, error) {
	if maxResults <= 0 {
		return []models.ComparableMatch{}, nil
	}

	subject, err := s.store.GetPropertyByID(subjectID)
	if errors.Is(err, database.ErrNotFound) {
		return []models.ComparableMatch{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !subject.HasCoordinates() {
		s.logger.WithField("property_id", subjectID).Debug("Subject has no coordinates, skipping comparable search")
		return []models.ComparableMatch{}, nil
	}

	stored, err := s.store.GetPropertiesWithCoordinates()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Property, len(stored))
	candidates := make([]geoutil.Candidate, 0, len(stored))
	for i := range stored {
		p := &stored[i]
		if p.ID == subjectID {
			continue
		}
		byID[p.ID] = p
		candidates = append(candidates, geoutil.Candidate{
			ID:        p.ID,
			Latitude:  *p.Latitude,
			Longitude: *p.Longitude,
		})
	}

	neighbors := geoutil.NearestWithinRadius(*subject.Latitude, *subject.Longitude, candidates, radiusMeters)
	if len(neighbors) > maxResults {
		neighbors = neighbors[:maxResults]
	}

	matches := make([]models.ComparableMatch, 0, len(neighbors))
	for _, n := range neighbors {
		candidate := byID[n.ID]
		score := similarity.Score(subject, candidate)
		if score <= SimilarityThreshold {
			continue
		}
		matches = append(matches, models.ComparableMatch{
			Property:       *candidate,
			DistanceMeters: n.Distance,
			Similarity:     score,
		})
	}

	// Stable sort: equal scores keep their nearest-first order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	return matches, nil
}

// RadiusResult is a stored property with its distance from a query point.
type RadiusResult struct {
	Property       models.Property `json:"property"`
	DistanceMeters float64         `json:"distanceMeters"`
}

// PropertiesInRadius lists stored properties within radiusMeters of a point,
// nearest first, truncated to limit. No similarity gate; intended for map
// display.
func (s *Selector) PropertiesInRadius(lat, lon, radiusMeters float64, limit int) ([]RadiusResult, error) {
	if limit <= 0 {
		return []RadiusResult{}, nil
	}

	stored, err := s.store.GetPropertiesWithCoordinates()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Property, len(stored))
	candidates := make([]geoutil.Candidate, 0, len(stored))
	for i := range stored {
		p := &stored[i]
		byID[p.ID] = p
		candidates = append(candidates, geoutil.Candidate{
			ID:        p.ID,
			Latitude:  *p.Latitude,
			Longitude: *p.Longitude,
		})
	}

	neighbors := geoutil.NearestWithinRadius(lat, lon, candidates, radiusMeters)
	if len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}

	results := make([]RadiusResult, 0, len(neighbors))
	for _, n := range neighbors {
		results = append(results, RadiusResult{
			Property:       *byID[n.ID],
			DistanceMeters: n.Distance,
		})
	}
	return results, nil
}
