package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/sirupsen/logrus"

	"oselia/server/config"
	"oselia/server/internal/queue"
)

// CoordinateUpdater is the slice of the repository the processor writes to.
type CoordinateUpdater interface {
	UpdateCoordinates(id string, lat, lon float64, geohashCode string) error
	MarkGeocodingAttempted(id string) error
}

// Forwarder resolves an address within a city to coordinates.
type Forwarder interface {
	Forward(ctx context.Context, address, city string) (float64, float64, error)
}

// GeocodeProcessor runs a pool of workers that pop queued geocode jobs and
// resolve their coordinates. Each job is claimed by exactly one worker.
type GeocodeProcessor struct {
	store     CoordinateUpdater
	geocoder  Forwarder
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.GeocodeQueue
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewGeocodeProcessor creates a new geocode processor instance
func NewGeocodeProcessor(store CoordinateUpdater, geocoder Forwarder, q *queue.GeocodeQueue, cfg *config.Config, logger *logrus.Logger) *GeocodeProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &GeocodeProcessor{
		store:    store,
		geocoder: geocoder,
		config:   cfg,
		logger:   logger,
		queue:    q,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker pool
func (p *GeocodeProcessor) Start() {
	for i := 0; i < p.config.Backfill.ProcessorCount; i++ {
		p.waitGroup.Add(1)
		go p.worker()
	}
}

// Stop gracefully shuts down the processor
func (p *GeocodeProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

// worker pops jobs until the queue is closed and drained or the processor
// is stopped.
func (p *GeocodeProcessor) worker() {
	defer p.waitGroup.Done()

	for {
		job, err := p.queue.Pop(p.ctx)
		if err != nil {
			return
		}

		if err := p.processJob(job); err != nil {
			p.logger.WithError(err).WithField("property_id", job.PropertyID).
				Error("Failed to geocode property")
		}
	}
}

// processJob resolves one address. A failed lookup marks the property as
// attempted so the scheduler does not requeue it forever.
func (p *GeocodeProcessor) processJob(job queue.Job) error {
	if job.Address == "" {
		return p.withRetry(func() error {
			return p.store.MarkGeocodingAttempted(job.PropertyID)
		})
	}

	lat, lon, err := p.geocoder.Forward(p.ctx, job.Address, job.City)
	if err != nil {
		if markErr := p.withRetry(func() error {
			return p.store.MarkGeocodingAttempted(job.PropertyID)
		}); markErr != nil {
			p.logger.WithError(markErr).WithField("property_id", job.PropertyID).
				Error("Failed to mark geocoding attempt")
		}
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"property_id": job.PropertyID,
		"latitude":    lat,
		"longitude":   lon,
	}).Info("Resolved property coordinates")

	return p.withRetry(func() error {
		return p.store.UpdateCoordinates(job.PropertyID, lat, lon, geohash.Encode(lat, lon))
	})
}

// withRetry runs a database write with the configured retry policy.
func (p *GeocodeProcessor) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt <= p.config.Backfill.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying coordinate update, attempt %d of %d", attempt, p.config.Backfill.MaxRetries)
			time.Sleep(time.Duration(p.config.Backfill.RetryDelay) * time.Second)
		}

		if err = fn(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", p.config.Backfill.MaxRetries, err)
}
