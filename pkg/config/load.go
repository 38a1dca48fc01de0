package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first env file found among envFilePath (searching parent
// directories) and then processes the environment into App.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	for _, path := range envFilePath {
		foundPath, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		logger.Info("Loaded environment from file", "path", foundPath)
		return loadFromEnv()
	}

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found in current directory")
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"db_driver", cfg.DB.Driver,
		"db", maskValue(cfg.DB.Url),
		"cache_driver", cfg.Cache.Driver,
		"price_provider", cfg.Price.Provider,
		"price_ttl", cfg.Cache.PriceTTL,
		"coingecko_key", maskValue(cfg.Price.CoinGeckoKey),
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
		"jwt_expiry", cfg.Auth.Jwt.Expiry,
		"snapshot_schedule", cfg.Scheduler.SnapshotSchedule,
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}

// Validate checks the settings envconfig cannot express with tags.
func (a *App) Validate() error {
	var errs []error
	oneOf := func(name, value string, allowed ...string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s must be one of %v, got %q", name, allowed, value))
		}
	}
	if a.DB != nil {
		oneOf("DATABASE_DRIVER", a.DB.Driver, "postgres", "sqlite")
	}
	if a.Cache != nil {
		oneOf("CACHE_DRIVER", a.Cache.Driver, "memory", "redis")
	}
	if a.Price != nil {
		oneOf("PRICE_PROVIDER", a.Price.Provider, "coingecko", "static")
	}
	if a.Log != nil {
		oneOf("LOG_FORMAT", a.Log.Format, "text", "json", "logfmt")
	}
	if a.Import != nil && a.Import.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_BATCH_SIZE must be positive, got %d", a.Import.BatchSize))
	}
	if a.Scheduler != nil && a.Scheduler.Enabled && a.Scheduler.SnapshotSchedule == "" {
		errs = append(errs, errors.New("SCHEDULER_SNAPSHOT_SCHEDULE is required when the scheduler is enabled"))
	}
	return errors.Join(errs...)
}
