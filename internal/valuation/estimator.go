// Package valuation produces market value estimates for stored properties,
// preferring the remote valuation model and falling back to an offline
// formula when it is unreachable.
package valuation

import (
	"context"
	"math"
	"os"

	"github.com/sirupsen/logrus"

	"oselia/server/config"
	"oselia/server/internal/models"
)

// Source tags which resolution path produced a valuation.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// PropertyGetter is the slice of the repository the estimator needs.
type PropertyGetter interface {
	GetPropertyByID(id string) (*models.Property, error)
}

// RemoteClient fetches a valuation from the remote model. Any error is
// treated uniformly as "unavailable".
type RemoteClient interface {
	GetValuation(ctx context.Context, propertyID string) (*models.Valuation, error)
}

type Estimator struct {
	store     PropertyGetter
	remote    RemoteClient
	gazetteer *config.Gazetteer
	logger    *logrus.Logger
}

func NewEstimator(store PropertyGetter, remote RemoteClient, gazetteer *config.Gazetteer, logger *logrus.Logger) *Estimator {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Estimator{
		store:     store,
		remote:    remote,
		gazetteer: gazetteer,
		logger:    logger,
	}
}

// Estimate returns a valuation for the stored property. The subject must
// exist; beyond that the call always succeeds — remote failures are absorbed
// by the local fallback and never surfaced.
func (e *Estimator) Estimate(ctx context.Context, propertyID string) (*models.Valuation, error) {
	v, _, err := e.estimate(ctx, propertyID)
	return v, err
}

// estimate is the two-stage resolver behind Estimate; the tag lets tests
// assert which path fired.
func (e *Estimator) estimate(ctx context.Context, propertyID string) (*models.Valuation, Source, error) {
	property, err := e.store.GetPropertyByID(propertyID)
	if err != nil {
		return nil, "", err
	}

	if e.remote != nil {
		remote, err := e.remote.GetValuation(ctx, propertyID)
		if err == nil {
			return remote, SourceRemote, nil
		}
		e.logger.WithError(err).WithField("property_id", propertyID).
			Warn("Remote valuation unavailable, using local estimate")
	}

	return e.localValuation(property), SourceLocal, nil
}

// localValuation computes an offline estimate from the district price table,
// a condition multiplier and a floor-position score.
func (e *Estimator) localValuation(p *models.Property) *models.Valuation {
	basePricePerSqm := e.gazetteer.BasePricePerSqm(p.City, p.District)
	estimatedValue := int64(math.Round(p.Area * basePricePerSqm * conditionMultiplier(p.Condition)))

	return &models.Valuation{
		PropertyID:     p.ID,
		EstimatedValue: estimatedValue,
		PriceRange: models.PriceRange{
			Min: int64(math.Round(0.85 * float64(estimatedValue))),
			Max: int64(math.Round(1.15 * float64(estimatedValue))),
		},
		// A locally computed figure carries less trust than the remote
		// model's output.
		Confidence: 0.70,
		Factors: models.ValuationFactors{
			Location:  0.80,
			Area:      0.90,
			Condition: conditionScore(p.Condition),
			Building:  0.80,
			Floor:     floorScore(p.Floor, p.TotalFloors),
		},
		ComparableProperties: []models.ComparableProperty{},
		MarketTrends: models.MarketTrends{
			AveragePricePerSqm:   basePricePerSqm,
			PriceChangeLastMonth: 0.5,
			DemandLevel:          "medium",
		},
	}
}

func conditionMultiplier(condition string) float64 {
	switch condition {
	case models.ConditionExcellent:
		return 1.20
	case models.ConditionGood:
		return 1.00
	case models.ConditionFair:
		return 0.80
	case models.ConditionPoor:
		return 0.60
	default:
		return 1.00
	}
}

func conditionScore(condition string) float64 {
	switch condition {
	case models.ConditionExcellent:
		return 0.95
	case models.ConditionGood:
		return 0.85
	case models.ConditionFair:
		return 0.70
	case models.ConditionPoor:
		return 0.50
	default:
		return 0.70
	}
}

// floorScore rates the floor position. Ground-floor and top-floor checks
// take precedence over the low-floor and near-top bands.
func floorScore(floor, totalFloors int) float64 {
	switch {
	case floor == 1:
		return 0.80
	case floor == totalFloors:
		return 0.90
	case floor <= 3:
		return 0.95
	case floor >= totalFloors-2:
		return 0.85
	default:
		return 1.00
	}
}
