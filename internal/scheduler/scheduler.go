package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"oselia/server/config"
	"oselia/server/internal/models"
	"oselia/server/internal/queue"
)

// MissingLister returns stored properties that still lack coordinates.
type MissingLister interface {
	GetPropertiesMissingCoordinates(limit int) ([]models.Property, error)
}

// Scheduler periodically sweeps the database for properties without
// coordinates and turns them into geocode jobs.
type Scheduler struct {
	store    MissingLister
	queue    *queue.GeocodeQueue
	logger   *logrus.Logger
	config   *config.Config
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential sweep execution
}

// NewScheduler creates a new scheduler
func NewScheduler(store MissingLister, q *queue.GeocodeQueue, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		store:    store,
		queue:    q,
		config:   cfg,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduled sweeps
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	// Sweep once at startup so a restart picks up stragglers immediately.
	go func() {
		s.logger.Info("Running startup geocode sweep")
		if _, err := s.EnqueueMissing(context.Background()); err != nil {
			s.logger.WithError(err).Error("Startup geocode sweep failed")
		}
	}()

	interval := time.Duration(s.config.Backfill.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.EnqueueMissing(context.Background()); err != nil {
				s.logger.WithError(err).Error("Scheduled geocode sweep failed")
			}
		}
	}
}

// EnqueueMissing queues a geocode job for one sweep's worth of
// coordinate-less properties and returns how many were queued. It is also
// invoked directly by the API's manual trigger endpoint.
func (s *Scheduler) EnqueueMissing(ctx context.Context) (int, error) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	properties, err := s.store.GetPropertiesMissingCoordinates(s.config.Backfill.BatchSize)
	if err != nil {
		return 0, err
	}

	if len(properties) == 0 {
		s.logger.Debug("No properties missing coordinates")
		return 0, nil
	}

	jobs := make([]queue.Job, 0, len(properties))
	for i := range properties {
		address := properties[i].FullAddress
		if address == "" {
			address = properties[i].Address
		}
		jobs = append(jobs, queue.Job{
			PropertyID: properties[i].ID,
			Address:    address,
			City:       properties[i].City,
		})
	}

	if err := s.queue.Push(ctx, jobs...); err != nil {
		return 0, err
	}

	s.logger.WithField("jobs", len(jobs)).Info("Queued properties for geocoding")
	return len(jobs), nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
