package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/cache"
	"github.com/amirasaad/finanze/pkg/provider"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	btcQuoteKey      = "price:btc"
	btcQuoteStaleKey = "price:btc:last"
	assetPriceKey    = "price:asset:"
)

// CachedPrice implements provider.Price with caching. A fresh quote is
// served for ttl; when the upstream fails the last good quote is served,
// marked stale, for up to staleTTL.
type CachedPrice struct {
	next     provider.Price
	cache    cache.Cache
	ttl      time.Duration
	staleTTL time.Duration
	logger   *slog.Logger
	inflight singleflight.Group
}

// NewCachedPrice creates a new CachedPrice.
func NewCachedPrice(
	next provider.Price,
	cache cache.Cache,
	ttl, staleTTL time.Duration,
	logger *slog.Logger,
) *CachedPrice {
	return &CachedPrice{next: next, cache: cache, ttl: ttl, staleTTL: staleTTL, logger: logger}
}

func (c *CachedPrice) Name() string { return c.next.Name() }

func (c *CachedPrice) BTCQuote(ctx context.Context) (*provider.Quote, error) {
	var q provider.Quote
	if c.load(ctx, btcQuoteKey, &q) {
		c.logger.Debug("Cache hit for BTCQuote")
		return &q, nil
	}

	// concurrent misses share one upstream call, detached from the
	// cancellation of whichever request started it
	v, err, _ := c.inflight.Do(btcQuoteKey, func() (any, error) {
		return c.next.BTCQuote(context.WithoutCancel(ctx))
	})
	if err != nil {
		var last provider.Quote
		if c.load(ctx, btcQuoteStaleKey, &last) {
			c.logger.Warn("Price provider failed, serving last known quote",
				"provider", c.next.Name(), "fetched_at", last.FetchedAt, "error", err)
			last.Stale = true
			return &last, nil
		}
		return nil, err
	}

	fresh := *v.(*provider.Quote)
	c.store(ctx, btcQuoteKey, fresh, c.ttl)
	c.store(ctx, btcQuoteStaleKey, fresh, c.staleTTL)
	return &fresh, nil
}

func (c *CachedPrice) AssetPricesEUR(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(ids))
	var toFetch []string
	for _, id := range ids {
		var price decimal.Decimal
		if c.load(ctx, assetPriceKey+id, &price) {
			out[id] = price
			continue
		}
		toFetch = append(toFetch, id)
	}
	if len(toFetch) == 0 {
		return out, nil
	}

	c.logger.Debug("Fetching missing asset prices from next provider", "ids", toFetch)
	fetched, err := c.next.AssetPricesEUR(ctx, toFetch)
	if err != nil {
		// serve what the cache had; missing ids count as unpriced
		c.logger.Warn("Asset price fetch failed", "ids", toFetch, "error", err)
		return out, nil
	}
	for id, price := range fetched {
		out[id] = price
		c.store(ctx, assetPriceKey+id, price, c.ttl)
	}
	return out, nil
}

func (c *CachedPrice) load(ctx context.Context, key string, dst any) bool {
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Error("Error getting from cache", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Error("Error decoding cached value", "key", key, "error", err)
		return false
	}
	return true
}

func (c *CachedPrice) store(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Error encoding cache value", "key", key, "error", err)
		return
	}
	if err := c.cache.Set(ctx, key, raw, ttl); err != nil {
		c.logger.Error("Error setting cache", "key", key, "error", err)
	}
}

// CachedFX implements provider.FX with a per-pair cache.
type CachedFX struct {
	next   provider.FX
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedFX(next provider.FX, cache cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedFX {
	return &CachedFX{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedFX) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	key := "fx:" + strings.ToUpper(from) + ":" + strings.ToUpper(to)
	if raw, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		if rate, err := decimal.NewFromString(string(raw)); err == nil {
			return rate, nil
		}
	} else if err != nil {
		c.logger.Error("Error getting from cache", "key", key, "error", err)
	}

	rate, err := c.next.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	if err := c.cache.Set(ctx, key, []byte(rate.String()), c.ttl); err != nil {
		c.logger.Error("Error setting cache", "key", key, "error", err)
	}
	return rate, nil
}
