package config

import (
	"time"

	"github.com/shopspring/decimal"
)

type DB struct {
	Driver string `envconfig:"DRIVER" default:"postgres"`
	Url    string `envconfig:"URL"`
	// AutoMigrate creates and updates tables on startup.
	AutoMigrate bool `envconfig:"AUTO_MIGRATE" default:"true"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"finanze:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type Cache struct {
	Driver          string        `envconfig:"DRIVER" default:"memory"`
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"10m"`
	PriceTTL        time.Duration `envconfig:"PRICE_TTL" default:"5m"`
	FxTTL           time.Duration `envconfig:"FX_TTL" default:"10m"`
	// StaleTTL bounds how long a last known quote is served when the
	// upstream provider is failing.
	StaleTTL time.Duration `envconfig:"STALE_TTL" default:"24h"`
}

type Price struct {
	Provider          string          `envconfig:"PROVIDER" default:"coingecko"`
	CoinGeckoURL      string          `envconfig:"COINGECKO_URL" default:"https://api.coingecko.com/api/v3"`
	CoinGeckoKey      string          `envconfig:"COINGECKO_KEY"`
	FxURL             string          `envconfig:"FX_URL" default:"https://open.er-api.com/v6/latest"`
	HTTPTimeout       time.Duration   `envconfig:"HTTP_TIMEOUT" default:"10s"`
	RequestsPerMinute int             `envconfig:"REQUESTS_PER_MINUTE" default:"25"`
	BurstSize         int             `envconfig:"BURST_SIZE" default:"5"`
	StaticBtcEur      decimal.Decimal `envconfig:"STATIC_BTC_EUR" default:"60000"`
	StaticEurUsd      decimal.Decimal `envconfig:"STATIC_EUR_USD" default:"1.08"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[finanze]"`
}

type Server struct {
	Scheme      string `envconfig:"SCHEME" default:"http"`
	Host        string `envconfig:"HOST" default:"localhost"`
	Port        int    `envconfig:"PORT" default:"3000"`
	CorsOrigins string `envconfig:"CORS_ORIGINS" default:"*"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Scheduler struct {
	Enabled bool `envconfig:"ENABLED" default:"false"`
	// SnapshotSchedule uses the six field cron syntax (seconds first).
	SnapshotSchedule string `envconfig:"SNAPSHOT_SCHEDULE" default:"0 0 23 * * *"`
}

type Import struct {
	BatchSize int `envconfig:"BATCH_SIZE" default:"50"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Auth      *Auth      `envconfig:"AUTH"`
	Redis     *Redis     `envconfig:"REDIS"`
	Cache     *Cache     `envconfig:"CACHE"`
	Price     *Price     `envconfig:"PRICE"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Scheduler *Scheduler `envconfig:"SCHEDULER"`
	Import    *Import    `envconfig:"IMPORT"`
}
