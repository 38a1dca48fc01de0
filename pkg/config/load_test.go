package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env.test")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"AUTH_JWT_SECRET=supersecret\nDATABASE_DRIVER=sqlite\nPRICE_PROVIDER=static\nCACHE_PRICE_TTL=7m\n",
	), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"AUTH_JWT_SECRET", "DATABASE_DRIVER", "PRICE_PROVIDER", "CACHE_PRICE_TTL"} {
			os.Unsetenv(k) //nolint:errcheck
		}
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "supersecret", cfg.Auth.Jwt.Secret)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "static", cfg.Price.Provider)
	assert.Equal(t, 7*time.Minute, cfg.Cache.PriceTTL)
	assert.Equal(t, 50, cfg.Import.BatchSize)
	assert.Equal(t, "60000", cfg.Price.StaticBtcEur.String())
}

func TestLoad_MissingSecret(t *testing.T) {
	os.Unsetenv("AUTH_JWT_SECRET") //nolint:errcheck
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestFindEnvFile(t *testing.T) {
	_, err := FindEnvFile("definitely-not-here.env")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "****", maskValue("abc"))
	assert.Equal(t, "po****word", maskValue("postgres-password"))
}

func TestValidate(t *testing.T) {
	valid := func() *App {
		return &App{
			DB:        &DB{Driver: "sqlite"},
			Cache:     &Cache{Driver: "memory"},
			Price:     &Price{Provider: "static"},
			Log:       &Log{Format: "json"},
			Import:    &Import{BatchSize: 50},
			Scheduler: &Scheduler{Enabled: true, SnapshotSchedule: "0 0 23 * * *"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*App){
		"db driver":      func(a *App) { a.DB.Driver = "mysql" },
		"cache driver":   func(a *App) { a.Cache.Driver = "memcached" },
		"price provider": func(a *App) { a.Price.Provider = "kraken" },
		"log format":     func(a *App) { a.Log.Format = "xml" },
		"batch size":     func(a *App) { a.Import.BatchSize = 0 },
		"schedule":       func(a *App) { a.Scheduler.SnapshotSchedule = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
