// Package geocoding resolves addresses to coordinates (and back) through
// Nominatim, with an on-disk cache so repeated saves of the same address do
// not cost a network round trip.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const userAgent = "Oselia Property Valuator/1.0"

type Geocoder struct {
	logger    *logrus.Logger
	baseURL   string
	cacheDir  string
	cache     map[string][]float64
	cacheLock sync.RWMutex
	limiter   *rate.Limiter
	client    *retryablehttp.Client
}

func NewGeocoder(logger *logrus.Logger, baseURL, cacheDir string, requestsPerSecond float64, timeout time.Duration) *Geocoder {
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "oselia", "geocode_cache")
	}
	os.MkdirAll(cacheDir, 0755)

	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 3 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	g := &Geocoder{
		logger:   logger,
		baseURL:  baseURL,
		cacheDir: cacheDir,
		cache:    make(map[string][]float64),
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		client:   client,
	}

	g.loadCache()

	return g
}

func (g *Geocoder) loadCache() {
	cacheFile := filepath.Join(g.cacheDir, "geocode_cache.json")
	data, err := os.ReadFile(cacheFile)
	if err != nil {
		g.logger.Warnf("Could not load geocode cache: %v", err)
		return
	}

	if err := json.Unmarshal(data, &g.cache); err != nil {
		g.logger.Errorf("Failed to parse geocode cache: %v", err)
		return
	}

	g.logger.Infof("Loaded %d cached addresses", len(g.cache))
}

func (g *Geocoder) saveCache() {
	g.cacheLock.RLock()
	data, err := json.Marshal(g.cache)
	g.cacheLock.RUnlock()
	if err != nil {
		g.logger.Errorf("Failed to marshal geocode cache: %v", err)
		return
	}

	cacheFile := filepath.Join(g.cacheDir, "geocode_cache.json")
	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		g.logger.Errorf("Failed to save geocode cache: %v", err)
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Forward resolves an address within a city to coordinates.
func (g *Geocoder) Forward(ctx context.Context, address, city string) (float64, float64, error) {
	cacheKey := fmt.Sprintf("%s|%s", address, city)
	fullAddress := fmt.Sprintf("%s, %s, Україна", address, city)

	g.cacheLock.RLock()
	if coords, ok := g.cache[cacheKey]; ok {
		g.cacheLock.RUnlock()
		if len(coords) == 2 {
			g.logger.WithFields(logrus.Fields{
				"address":   fullAddress,
				"latitude":  coords[0],
				"longitude": coords[1],
				"source":    "cache",
			}).Debug("Found coordinates in cache")
			return coords[0], coords[1], nil
		}
		return 0, 0, fmt.Errorf("invalid cached coordinates")
	}
	g.cacheLock.RUnlock()

	// Nominatim usage policy caps us at one request per second.
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, 0, err
	}

	params := url.Values{
		"q":              []string{fullAddress},
		"format":         []string{"json"},
		"limit":          []string{"1"},
		"countrycodes":   []string{"ua"},
		"addressdetails": []string{"1"},
	}

	var results []nominatimResult
	if err := g.get(ctx, "/search", params, &results); err != nil {
		g.logger.WithError(err).WithField("address", fullAddress).Error("Geocoding request failed")
		return 0, 0, err
	}

	if len(results) == 0 {
		g.logger.WithField("address", fullAddress).Warn("No geocoding results found")
		return 0, 0, fmt.Errorf("no results found for address: %s", fullAddress)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse longitude: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"address":   fullAddress,
		"latitude":  lat,
		"longitude": lon,
		"source":    "nominatim",
	}).Info("Successfully geocoded address")

	g.cacheLock.Lock()
	g.cache[cacheKey] = []float64{lat, lon}
	g.cacheLock.Unlock()

	go g.saveCache()

	return lat, lon, nil
}

type nominatimReverseResult struct {
	DisplayName string `json:"display_name"`
}

// Reverse resolves coordinates to a display address.
func (g *Geocoder) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := url.Values{
		"lat":            []string{strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":            []string{strconv.FormatFloat(lon, 'f', -1, 64)},
		"format":         []string{"json"},
		"addressdetails": []string{"1"},
	}

	var result nominatimReverseResult
	if err := g.get(ctx, "/reverse", params, &result); err != nil {
		g.logger.WithError(err).WithFields(logrus.Fields{
			"latitude":  lat,
			"longitude": lon,
		}).Error("Reverse geocoding request failed")
		return "", err
	}

	if result.DisplayName == "" {
		return "", fmt.Errorf("no address found for %f, %f", lat, lon)
	}

	return result.DisplayName, nil
}

func (g *Geocoder) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "uk-UA,uk;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoding service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
