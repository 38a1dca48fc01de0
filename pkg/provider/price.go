package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the bitcoin price in both currencies plus the EUR/USD rate it
// was derived with.
type Quote struct {
	BTCUSD    decimal.Decimal `json:"btcUsd"`
	BTCEUR    decimal.Decimal `json:"btcEur"`
	EURUSD    decimal.Decimal `json:"eurUsd"`
	FetchedAt time.Time       `json:"fetchedAt"`
	// Stale is set when the upstream failed and a previous quote is served.
	Stale  bool   `json:"stale"`
	Source string `json:"source"`
}

// Price defines the interface for market price providers.
type Price interface {
	// BTCQuote returns the current bitcoin quote.
	BTCQuote(ctx context.Context) (*Quote, error)

	// AssetPricesEUR returns the EUR price of each CoinGecko id. Ids the
	// provider does not know are left out of the result.
	AssetPricesEUR(ctx context.Context, coingeckoIDs []string) (map[string]decimal.Decimal, error)

	// Name returns the provider's name for logging and identification.
	Name() string
}

// FX provides currency exchange rates.
type FX interface {
	// Rate returns how many units of to one unit of from buys.
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}
