package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/provider"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const bitcoinID = "bitcoin"

// CoinGecko implements provider.Price on the CoinGecko simple price API.
// Outbound calls share one token bucket so the free tier quota holds.
type CoinGecko struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	fx         provider.FX
	logger     *slog.Logger
}

// simplePriceResponse maps id -> currency -> price.
type simplePriceResponse map[string]map[string]decimal.Decimal

// NewCoinGecko creates a CoinGecko client. fx supplies EUR/USD; when nil or
// failing the rate is derived from the two bitcoin prices.
func NewCoinGecko(cfg *config.Price, fx provider.FX, logger *slog.Logger) *CoinGecko {
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 25
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return &CoinGecko{
		baseURL:    strings.TrimRight(cfg.CoinGeckoURL, "/"),
		apiKey:     cfg.CoinGeckoKey,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
		fx:         fx,
		logger:     logger,
	}
}

func (p *CoinGecko) Name() string { return "coingecko" }

func (p *CoinGecko) BTCQuote(ctx context.Context) (*provider.Quote, error) {
	prices, err := p.simplePrice(ctx, []string{bitcoinID}, "usd,eur")
	if err != nil {
		return nil, err
	}
	btc, ok := prices[bitcoinID]
	if !ok {
		return nil, fmt.Errorf("coingecko: bitcoin missing from response")
	}
	usd, eur := btc["usd"], btc["eur"]
	if !usd.IsPositive() || !eur.IsPositive() {
		return nil, fmt.Errorf("coingecko: invalid bitcoin price usd=%s eur=%s", usd, eur)
	}

	eurUSD := usd.Div(eur).Round(6)
	if p.fx != nil {
		if r, err := p.fx.Rate(ctx, "EUR", "USD"); err != nil {
			p.logger.Warn("FX rate unavailable, deriving EUR/USD from bitcoin prices", "error", err)
		} else {
			eurUSD = r
		}
	}

	return &provider.Quote{
		BTCUSD:    usd,
		BTCEUR:    eur,
		EURUSD:    eurUSD,
		FetchedAt: time.Now().UTC(),
		Source:    p.Name(),
	}, nil
}

func (p *CoinGecko) AssetPricesEUR(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	prices, err := p.simplePrice(ctx, ids, "eur")
	if err != nil {
		return nil, err
	}
	for id, byCurrency := range prices {
		if eur, ok := byCurrency["eur"]; ok {
			out[id] = eur
		}
	}
	return out, nil
}

func (p *CoinGecko) simplePrice(ctx context.Context, ids []string, currencies string) (simplePriceResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("coingecko: rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", currencies)
	endpoint := p.baseURL + "/simple/price?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", p.apiKey)
	}

	p.logger.Debug("Fetching prices from CoinGecko", "ids", ids)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("coingecko returned status %d: %s", resp.StatusCode, string(body))
	}

	var out simplePriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}
