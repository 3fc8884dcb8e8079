package config

import "github.com/caarlos0/env/v6"

type Config struct {
	Server struct {
		// Port the HTTP API listens on
		Port int `env:"SERVER_PORT" envDefault:"5250"`

		// Allowed CORS origins, comma separated
		AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	Database struct {
		// Path to the sqlite database file
		Path string `env:"DATABASE_PATH" envDefault:"database/oselia.db"`
	}

	Valuation struct {
		// Base URL of the remote valuation service
		RemoteBaseURL string `env:"VALUATION_API_URL" envDefault:"http://localhost:8000/api"`

		// Timeout for a remote valuation request (in seconds)
		RequestTimeout int `env:"VALUATION_TIMEOUT" envDefault:"10"`

		// Default search radius for comparable properties (in meters)
		DefaultRadiusMeters float64 `env:"COMPARABLE_RADIUS" envDefault:"1000"`

		// Default cap on comparable results
		MaxComparables int `env:"COMPARABLE_MAX_RESULTS" envDefault:"10"`
	}

	Geocoding struct {
		// Nominatim endpoint
		BaseURL string `env:"NOMINATIM_URL" envDefault:"https://nominatim.openstreetmap.org"`

		// Directory for the on-disk geocode cache; empty means a temp dir
		CacheDir string `env:"GEOCODE_CACHE_DIR"`

		// Outbound request budget towards Nominatim
		RequestsPerSecond float64 `env:"GEOCODE_RPS" envDefault:"1"`

		// Timeout for a single geocoding request (in seconds)
		RequestTimeout int `env:"GEOCODE_TIMEOUT" envDefault:"10"`
	}

	Backfill struct {
		// Maximum number of properties queued per backfill batch
		BatchSize int `env:"BACKFILL_BATCH_SIZE" envDefault:"10"`

		// Number of concurrent geocode processors
		ProcessorCount int `env:"BACKFILL_PROCESSOR_COUNT" envDefault:"1"`

		// Maximum number of retries for failed coordinate updates
		MaxRetries int `env:"BACKFILL_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BACKFILL_RETRY_DELAY" envDefault:"5"`

		// Minutes between scheduled backfill sweeps
		IntervalMinutes int `env:"BACKFILL_INTERVAL" envDefault:"60"`

		// Queue buffer size (in batches)
		QueueSize int `env:"BACKFILL_QUEUE_SIZE" envDefault:"100"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
