package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"oselia/server/config"
	"oselia/server/internal/api"
	"oselia/server/internal/comparables"
	"oselia/server/internal/database"
	"oselia/server/internal/geocoding"
	"oselia/server/internal/geometry"
	"oselia/server/internal/processor"
	"oselia/server/internal/queue"
	"oselia/server/internal/scheduler"
	"oselia/server/internal/valuation"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Optional .env for local development
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.Database.Path)
	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	gazetteer := config.KharkivGazetteer()

	geocoder := geocoding.NewGeocoder(logger, cfg.Geocoding.BaseURL, cfg.Geocoding.CacheDir,
		cfg.Geocoding.RequestsPerSecond, time.Duration(cfg.Geocoding.RequestTimeout)*time.Second)

	// Geocode backfill pipeline: scheduler sweeps the database, the queue
	// buffers jobs, workers resolve coordinates.
	geocodeQueue := queue.NewGeocodeQueue(cfg.Backfill.QueueSize, logger)
	geocodeProcessor := processor.NewGeocodeProcessor(db, geocoder, geocodeQueue, cfg, logger)
	geocodeProcessor.Start()

	backfillScheduler := scheduler.NewScheduler(db, geocodeQueue, cfg, logger)
	backfillScheduler.Start()

	selector := comparables.NewSelector(db, logger)
	remote := valuation.NewClient(cfg.Valuation.RemoteBaseURL,
		time.Duration(cfg.Valuation.RequestTimeout)*time.Second)
	estimator := valuation.NewEstimator(db, remote, gazetteer, logger)
	mapper := geometry.NewDistrictMapper(db, logger)

	handler := api.NewHandler(db, geocoder, selector, estimator, mapper,
		backfillScheduler, gazetteer, cfg, logger)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(router, handler)

	// Shut the background pipeline down cleanly on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("Shutting down...")
		backfillScheduler.Stop()
		geocodeQueue.Close()
		geocodeProcessor.Stop()
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Infof("Starting server on port %d", cfg.Server.Port)
	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
