package initializer

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.App {
	return &config.App{
		Env: "test",
		Log: &config.Log{Level: 8},
		DB:  &config.DB{Driver: "sqlite", Url: "file::memory:", AutoMigrate: true},
		Cache: &config.Cache{
			Driver:          "memory",
			CleanupInterval: time.Minute,
			PriceTTL:        time.Minute,
			FxTTL:           time.Minute,
			StaleTTL:        time.Hour,
		},
		Price: &config.Price{
			Provider:     "static",
			StaticBtcEur: decimal.NewFromInt(60000),
			StaticEurUsd: decimal.RequireFromString("1.08"),
		},
	}
}

func TestInitializeDependencies_Static(t *testing.T) {
	deps, cleanup, err := InitializeDependencies(testConfig())
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, deps.Uow)
	require.NotNil(t, deps.Logger)
	q, err := deps.Prices.BTCQuote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "64800", q.BTCUSD.String())

	repo, err := deps.Uow.AccountRepository()
	require.NoError(t, err)
	assert.NotNil(t, repo)
}

func TestInitializeDependencies_Errors(t *testing.T) {
	testCases := []struct {
		desc   string
		mutate func(cfg *config.App)
	}{
		{"missing database url", func(cfg *config.App) { cfg.DB.Url = "" }},
		{"unknown database driver", func(cfg *config.App) { cfg.DB.Driver = "mysql" }},
		{"unknown cache driver", func(cfg *config.App) { cfg.Cache.Driver = "memcached" }},
		{"redis without url", func(cfg *config.App) { cfg.Cache.Driver = "redis" }},
		{"invalid redis url", func(cfg *config.App) {
			cfg.Cache.Driver = "redis"
			cfg.Redis = &config.Redis{URL: "not-a-url"}
		}},
		{"unknown price provider", func(cfg *config.App) { cfg.Price.Provider = "kraken" }},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(cfg)
			_, _, err := InitializeDependencies(cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Log{Format: "json", Prefix: "[finanze]"})
	logger.Info("CreateAccount successful", "userID", "u-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "CreateAccount successful", entry["msg"])
	assert.Equal(t, "u-1", entry["userID"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Log{Format: "text", Level: 8})
	logger.Warn("dropped")
	assert.Empty(t, buf.String())
}
