package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"oselia/server/config"
	"oselia/server/internal/comparables"
	"oselia/server/internal/database"
	"oselia/server/internal/models"
)

// PropertyStore is the repository surface the handlers need.
type PropertyStore interface {
	SaveProperty(property *models.Property) error
	GetAllProperties() ([]models.Property, error)
	GetPropertyByID(id string) (*models.Property, error)
	DeleteProperty(id string) error
}

// Geocoder resolves an address within a city to coordinates.
type Geocoder interface {
	Forward(ctx context.Context, address, city string) (float64, float64, error)
}

// ComparableFinder selects comparable properties around a stored subject.
type ComparableFinder interface {
	FindComparables(subjectID string, radiusMeters float64, maxResults int) ([]models.ComparableMatch, error)
	PropertiesInRadius(lat, lon, radiusMeters float64, limit int) ([]comparables.RadiusResult, error)
}

// Valuer produces a market value estimate for a stored property.
type Valuer interface {
	Estimate(ctx context.Context, propertyID string) (*models.Valuation, error)
}

// HullMapper builds district boundary polygons from stored coordinates.
type HullMapper interface {
	DistrictHulls() (*geojson.FeatureCollection, error)
}

// Sweeper queues coordinate-less properties for geocoding.
type Sweeper interface {
	EnqueueMissing(ctx context.Context) (int, error)
}

type Handler struct {
	store     PropertyStore
	geocoder  Geocoder
	selector  ComparableFinder
	estimator Valuer
	mapper    HullMapper
	sweeper   Sweeper
	gazetteer *config.Gazetteer
	config    *config.Config
	logger    *logrus.Logger
}

// PropertyRequest is the payload accepted by the save endpoint.
type PropertyRequest struct {
	ID           string   `json:"id"`
	City         string   `json:"city" binding:"required"`
	District     string   `json:"district"`
	Address      string   `json:"address" binding:"required"`
	FullAddress  string   `json:"fullAddress"`
	Area         float64  `json:"area" binding:"required,gt=0"`
	Rooms        int      `json:"rooms" binding:"required,gte=1"`
	Floor        int      `json:"floor" binding:"required,gte=1"`
	TotalFloors  int      `json:"totalFloors" binding:"required,gte=1"`
	BuildingType string   `json:"buildingType" binding:"omitempty,oneof=brick panel monolithic wood"`
	YearBuilt    *int     `json:"yearBuilt"`
	Condition    string   `json:"condition" binding:"omitempty,oneof=excellent good fair poor"`
	HasBalcony   bool     `json:"hasBalcony"`
	HasElevator  bool     `json:"hasElevator"`
	Heating      string   `json:"heating" binding:"omitempty,oneof=central individual none"`
	Description  string   `json:"description"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func NewHandler(store PropertyStore, geocoder Geocoder, selector ComparableFinder, estimator Valuer,
	mapper HullMapper, sweeper Sweeper, gazetteer *config.Gazetteer, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		store:     store,
		geocoder:  geocoder,
		selector:  selector,
		estimator: estimator,
		mapper:    mapper,
		sweeper:   sweeper,
		gazetteer: gazetteer,
		config:    cfg,
		logger:    logger,
	}
}

// SaveProperty stores a property, geocoding its address when the client did
// not supply coordinates. A failed geocode degrades to a coordinate-less
// record rather than rejecting the save.
func (h *Handler) SaveProperty(c *gin.Context) {
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid property payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	property := &models.Property{
		ID:           req.ID,
		City:         req.City,
		District:     req.District,
		Address:      req.Address,
		FullAddress:  req.FullAddress,
		Area:         req.Area,
		Rooms:        req.Rooms,
		Floor:        req.Floor,
		TotalFloors:  req.TotalFloors,
		BuildingType: req.BuildingType,
		YearBuilt:    req.YearBuilt,
		Condition:    req.Condition,
		HasBalcony:   req.HasBalcony,
		HasElevator:  req.HasElevator,
		Heating:      req.Heating,
		Description:  req.Description,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}

	if !property.HasCoordinates() && h.geocoder != nil {
		address := property.FullAddress
		if address == "" {
			address = property.Address
		}

		lat, lon, err := h.geocoder.Forward(c.Request.Context(), address, property.City)
		if err != nil {
			h.logger.WithError(err).WithField("property_id", property.ID).
				Warn("Geocoding failed, saving property without coordinates")
		} else {
			property.Latitude = &lat
			property.Longitude = &lon
		}
		property.GeocodingAttempted = true
	}

	if property.HasCoordinates() {
		property.Geohash = geohash.Encode(*property.Latitude, *property.Longitude)
		if h.gazetteer != nil && !h.gazetteer.Contains(*property.Latitude, *property.Longitude) {
			h.logger.WithFields(logrus.Fields{
				"property_id": property.ID,
				"latitude":    *property.Latitude,
				"longitude":   *property.Longitude,
			}).Warn("Property coordinates fall outside the covered city bounds")
		}
	}

	if err := h.store.SaveProperty(property); err != nil {
		h.logger.WithError(err).Error("Failed to save property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save property"})
		return
	}

	c.JSON(http.StatusCreated, property)
}

func (h *Handler) GetAllProperties(c *gin.Context) {
	properties, err := h.store.GetAllProperties()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
		return
	}

	c.JSON(http.StatusOK, properties)
}

func (h *Handler) GetProperty(c *gin.Context) {
	property, err := h.store.GetPropertyByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	if err := h.store.DeleteProperty(c.Param("id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to delete property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetValuation estimates the market value of a stored property.
func (h *Handler) GetValuation(c *gin.Context) {
	valuation, err := h.estimator.Estimate(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to estimate property value")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to estimate property value"})
		return
	}

	c.JSON(http.StatusOK, valuation)
}

// GetComparables lists comparable properties around a stored subject.
func (h *Handler) GetComparables(c *gin.Context) {
	radius := h.config.Valuation.DefaultRadiusMeters
	if v := c.Query("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius parameter"})
			return
		}
		radius = parsed
	}

	maxResults := h.config.Valuation.MaxComparables
	if v := c.Query("max"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max parameter"})
			return
		}
		maxResults = parsed
	}

	matches, err := h.selector.FindComparables(c.Param("id"), radius, maxResults)
	if err != nil {
		h.logger.WithError(err).Error("Failed to find comparables")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find comparables"})
		return
	}

	c.JSON(http.StatusOK, matches)
}

// GetPropertiesInRadius lists properties around a point for map display.
func (h *Handler) GetPropertiesInRadius(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lat parameter"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lon parameter"})
		return
	}

	radius := h.config.Valuation.DefaultRadiusMeters
	if v := c.Query("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius parameter"})
			return
		}
		radius = parsed
	}

	limit := 100
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	results, err := h.selector.PropertiesInRadius(lat, lon, radius, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list properties in radius")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list properties"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetDistrictHulls returns district boundary polygons as GeoJSON.
func (h *Handler) GetDistrictHulls(c *gin.Context) {
	hulls, err := h.mapper.DistrictHulls()
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate district hulls")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate district hulls"})
		return
	}

	c.JSON(http.StatusOK, hulls)
}

// GetDistricts lists the known districts and their base prices.
func (h *Handler) GetDistricts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"city":      h.gazetteer.CityName,
		"districts": h.gazetteer.Districts,
	})
}

// GetMarketStats summarises the stored inventory against the price table.
func (h *Handler) GetMarketStats(c *gin.Context) {
	properties, err := h.store.GetAllProperties()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get market stats"})
		return
	}

	var withCoordinates int
	var totalArea float64
	byDistrict := make(map[string]int)
	for i := range properties {
		if properties[i].HasCoordinates() {
			withCoordinates++
		}
		totalArea += properties[i].Area
		if properties[i].District != "" {
			byDistrict[properties[i].District]++
		}
	}

	var averageArea float64
	if len(properties) > 0 {
		averageArea = totalArea / float64(len(properties))
	}

	c.JSON(http.StatusOK, gin.H{
		"city":                h.gazetteer.CityName,
		"totalProperties":     len(properties),
		"withCoordinates":     withCoordinates,
		"averageArea":         averageArea,
		"propertiesByDistrict": byDistrict,
		"averagePricePerSqm":  h.gazetteer.AvgPricePerSqm,
	})
}

// UpdateCoordinates triggers a geocode sweep for coordinate-less properties.
func (h *Handler) UpdateCoordinates(c *gin.Context) {
	queued, err := h.sweeper.EnqueueMissing(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to queue coordinate updates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue coordinate updates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "Coordinates update process started",
		"queued": queued,
	})
}
