package initializer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/finanze/infra"
	infracache "github.com/amirasaad/finanze/infra/cache"
	infraprovider "github.com/amirasaad/finanze/infra/provider"
	infrarepo "github.com/amirasaad/finanze/infra/repository"
	"github.com/amirasaad/finanze/pkg/app"
	"github.com/amirasaad/finanze/pkg/cache"
	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/provider"
)

// InitializeDependencies opens the database, builds the price cache and
// provider chain and returns the application dependencies. cleanup
// releases the connections and must be called on shutdown.
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	cleanup func(),
	err error,
) {
	logger := SetupLogger(cfg.Log)
	var closers []func() error
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("Failed to release resource", "error", err)
			}
		}
	}
	defer func() {
		if err != nil {
			release()
		}
	}()

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, sqlDB.Close)

	if cfg.DB.AutoMigrate {
		if err = infrarepo.AutoMigrate(db); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("Database schema migrated", "driver", cfg.DB.Driver)
	}

	store, closeCache, err := newCache(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	if closeCache != nil {
		closers = append(closers, closeCache)
	}

	prices, err := newPriceProvider(cfg, store, logger)
	if err != nil {
		return nil, nil, err
	}

	return &app.Deps{
		Uow:    infrarepo.NewUoW(db),
		Prices: prices,
		Logger: logger,
	}, release, nil
}

func newCache(cfg *config.App, logger *slog.Logger) (cache.Cache, func() error, error) {
	switch cfg.Cache.Driver {
	case "", "memory":
		logger.Info("Using in-memory price cache")
		return infracache.NewMemoryCache(cfg.Cache.CleanupInterval), nil, nil
	case "redis":
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, nil, errors.New("REDIS_URL is required for the redis cache")
		}
		rc, err := infracache.NewRedisCache(cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using Redis price cache", "prefix", cfg.Redis.KeyPrefix)
		return rc, rc.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache driver %q", cfg.Cache.Driver)
	}
}

func newPriceProvider(cfg *config.App, store cache.Cache, logger *slog.Logger) (provider.Price, error) {
	var next provider.Price
	switch cfg.Price.Provider {
	case "static":
		next = infraprovider.NewStatic(cfg.Price, nil)
	case "", "coingecko":
		fx := infraprovider.NewCachedFX(
			infraprovider.NewExchangeRateAPI(cfg.Price, logger),
			store,
			cfg.Cache.FxTTL,
			logger,
		)
		next = infraprovider.NewCoinGecko(cfg.Price, fx, logger)
	default:
		return nil, fmt.Errorf("unsupported price provider %q", cfg.Price.Provider)
	}
	logger.Info("Price provider ready", "provider", next.Name(), "ttl", cfg.Cache.PriceTTL)
	return infraprovider.NewCachedPrice(next, store, cfg.Cache.PriceTTL, cfg.Cache.StaleTTL, logger), nil
}
