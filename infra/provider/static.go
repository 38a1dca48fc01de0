package provider

import (
	"context"
	"time"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/provider"
	"github.com/shopspring/decimal"
)

// Static serves fixed prices from configuration. It is used offline and in
// tests.
type Static struct {
	btcEUR decimal.Decimal
	eurUSD decimal.Decimal
	assets map[string]decimal.Decimal
}

// NewStatic creates a fixed price provider. assets maps CoinGecko ids to
// EUR prices and may be nil.
func NewStatic(cfg *config.Price, assets map[string]decimal.Decimal) *Static {
	if assets == nil {
		assets = map[string]decimal.Decimal{}
	}
	return &Static{btcEUR: cfg.StaticBtcEur, eurUSD: cfg.StaticEurUsd, assets: assets}
}

func (p *Static) Name() string { return "static" }

func (p *Static) BTCQuote(context.Context) (*provider.Quote, error) {
	return &provider.Quote{
		BTCUSD:    p.btcEUR.Mul(p.eurUSD).Round(2),
		BTCEUR:    p.btcEUR,
		EURUSD:    p.eurUSD,
		FetchedAt: time.Now().UTC(),
		Source:    p.Name(),
	}, nil
}

func (p *Static) AssetPricesEUR(_ context.Context, ids []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(ids))
	for _, id := range ids {
		if id == bitcoinID {
			out[id] = p.btcEUR
			continue
		}
		if v, ok := p.assets[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}
