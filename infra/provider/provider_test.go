package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	infracache "github.com/amirasaad/finanze/infra/cache"
	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockPrice struct {
	mock.Mock
}

func (m *mockPrice) BTCQuote(ctx context.Context) (*provider.Quote, error) {
	args := m.Called(ctx)
	q, _ := args.Get(0).(*provider.Quote)
	return q, args.Error(1)
}

func (m *mockPrice) AssetPricesEUR(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, ids)
	out, _ := args.Get(0).(map[string]decimal.Decimal)
	return out, args.Error(1)
}

func (m *mockPrice) Name() string { return "mock" }

type fixedFX struct {
	rate decimal.Decimal
	err  error
}

func (f fixedFX) Rate(context.Context, string, string) (decimal.Decimal, error) {
	return f.rate, f.err
}

func TestCoinGecko_BTCQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":64800,"eur":60000}}`))
	}))
	defer srv.Close()

	cfg := &config.Price{
		CoinGeckoURL:      srv.URL,
		CoinGeckoKey:      "demo-key",
		HTTPTimeout:       time.Second,
		RequestsPerMinute: 60,
		BurstSize:         5,
	}

	t.Run("derives EUR/USD without FX", func(t *testing.T) {
		q, err := NewCoinGecko(cfg, nil, discardLogger()).BTCQuote(context.Background())
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(64800).Equal(q.BTCUSD))
		assert.True(t, decimal.NewFromInt(60000).Equal(q.BTCEUR))
		assert.True(t, decimal.RequireFromString("1.08").Equal(q.EURUSD))
		assert.False(t, q.Stale)
	})

	t.Run("prefers FX rate", func(t *testing.T) {
		fx := fixedFX{rate: decimal.RequireFromString("1.0812")}
		q, err := NewCoinGecko(cfg, fx, discardLogger()).BTCQuote(context.Background())
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1.0812").Equal(q.EURUSD))
	})

	t.Run("falls back when FX fails", func(t *testing.T) {
		fx := fixedFX{err: errors.New("down")}
		q, err := NewCoinGecko(cfg, fx, discardLogger()).BTCQuote(context.Background())
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1.08").Equal(q.EURUSD))
	})
}

func TestCoinGecko_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := &config.Price{CoinGeckoURL: srv.URL, HTTPTimeout: time.Second, RequestsPerMinute: 60, BurstSize: 1}
	_, err := NewCoinGecko(cfg, nil, discardLogger()).BTCQuote(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestExchangeRateAPI_Rate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/EUR", r.URL.Path)
		_, _ = w.Write([]byte(`{"result":"success","base_code":"EUR","rates":{"USD":1.0825,"GBP":0.85}}`))
	}))
	defer srv.Close()

	fx := NewExchangeRateAPI(&config.Price{FxURL: srv.URL, HTTPTimeout: time.Second}, discardLogger())
	r, err := fx.Rate(context.Background(), "eur", "usd")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.0825").Equal(r))

	_, err = fx.Rate(context.Background(), "EUR", "JPY")
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	cfg := &config.Price{StaticBtcEur: decimal.NewFromInt(60000), StaticEurUsd: decimal.RequireFromString("1.08")}
	p := NewStatic(cfg, map[string]decimal.Decimal{"ethereum": decimal.NewFromInt(3000)})

	q, err := p.BTCQuote(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(64800).Equal(q.BTCUSD))

	prices, err := p.AssetPricesEUR(context.Background(), []string{"bitcoin", "ethereum", "unknown"})
	require.NoError(t, err)
	assert.Len(t, prices, 2)
	assert.True(t, decimal.NewFromInt(3000).Equal(prices["ethereum"]))
}

func TestCachedPrice_BTCQuote(t *testing.T) {
	ctx := context.Background()
	next := new(mockPrice)
	quote := &provider.Quote{
		BTCUSD:    decimal.NewFromInt(64800),
		BTCEUR:    decimal.NewFromInt(60000),
		EURUSD:    decimal.RequireFromString("1.08"),
		FetchedAt: time.Now().UTC(),
	}
	next.On("BTCQuote", mock.Anything).Return(quote, nil).Once()

	store := infracache.NewMemoryCache(time.Minute)
	cached := NewCachedPrice(next, store, time.Minute, time.Hour, discardLogger())

	first, err := cached.BTCQuote(ctx)
	require.NoError(t, err)
	second, err := cached.BTCQuote(ctx)
	require.NoError(t, err)
	assert.True(t, first.BTCEUR.Equal(second.BTCEUR))
	next.AssertNumberOfCalls(t, "BTCQuote", 1)
}

func TestCachedPrice_ServesStaleOnFailure(t *testing.T) {
	ctx := context.Background()
	next := new(mockPrice)
	quote := &provider.Quote{BTCUSD: decimal.NewFromInt(64800), BTCEUR: decimal.NewFromInt(60000), EURUSD: decimal.RequireFromString("1.08")}
	next.On("BTCQuote", mock.Anything).Return(quote, nil).Once()
	next.On("BTCQuote", mock.Anything).Return(nil, errors.New("upstream down"))

	store := infracache.NewMemoryCache(time.Minute)
	cached := NewCachedPrice(next, store, time.Millisecond, time.Hour, discardLogger())

	_, err := cached.BTCQuote(ctx)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	q, err := cached.BTCQuote(ctx)
	require.NoError(t, err)
	assert.True(t, q.Stale)
	assert.True(t, decimal.NewFromInt(60000).Equal(q.BTCEUR))
}

func TestCachedPrice_NoQuoteAtAll(t *testing.T) {
	next := new(mockPrice)
	next.On("BTCQuote", mock.Anything).Return(nil, errors.New("upstream down"))

	cached := NewCachedPrice(next, infracache.NewMemoryCache(time.Minute), time.Minute, time.Hour, discardLogger())
	_, err := cached.BTCQuote(context.Background())
	assert.Error(t, err)
}

func TestCachedPrice_AssetPrices(t *testing.T) {
	ctx := context.Background()
	next := new(mockPrice)
	next.On("AssetPricesEUR", mock.Anything, []string{"ethereum"}).
		Return(map[string]decimal.Decimal{"ethereum": decimal.NewFromInt(3000)}, nil).Once()

	cached := NewCachedPrice(next, infracache.NewMemoryCache(time.Minute), time.Minute, time.Hour, discardLogger())

	prices, err := cached.AssetPricesEUR(ctx, []string{"ethereum"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3000).Equal(prices["ethereum"]))

	prices, err = cached.AssetPricesEUR(ctx, []string{"ethereum"})
	require.NoError(t, err)
	assert.Len(t, prices, 1)
	next.AssertExpectations(t)
}

type countingFX struct {
	calls int
}

func (f *countingFX) Rate(context.Context, string, string) (decimal.Decimal, error) {
	f.calls++
	return decimal.RequireFromString("1.0825"), nil
}

func TestCachedFX_Rate(t *testing.T) {
	next := &countingFX{}
	fx := NewCachedFX(next, infracache.NewMemoryCache(time.Minute), time.Minute, discardLogger())

	for i := 0; i < 3; i++ {
		rate, err := fx.Rate(context.Background(), "eur", "usd")
		require.NoError(t, err)
		assert.Equal(t, "1.0825", rate.String())
	}
	assert.Equal(t, 1, next.calls)
}

func TestCachedPrice_ConcurrentMisses(t *testing.T) {
	next := new(mockPrice)
	quote := &provider.Quote{BTCUSD: decimal.NewFromInt(64800), BTCEUR: decimal.NewFromInt(60000), EURUSD: decimal.RequireFromString("1.08")}
	next.On("BTCQuote", mock.Anything).Return(quote, nil).After(50 * time.Millisecond).Once()

	cached := NewCachedPrice(next, infracache.NewMemoryCache(time.Minute), time.Minute, time.Hour, discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := cached.BTCQuote(context.Background())
			assert.NoError(t, err)
			if q != nil {
				assert.True(t, decimal.NewFromInt(60000).Equal(q.BTCEUR))
			}
		}()
	}
	wg.Wait()
	next.AssertNumberOfCalls(t, "BTCQuote", 1)
}

func TestCachedPrice_SharedCallIgnoresCallerCancel(t *testing.T) {
	next := new(mockPrice)
	quote := &provider.Quote{BTCUSD: decimal.NewFromInt(64800), BTCEUR: decimal.NewFromInt(60000), EURUSD: decimal.RequireFromString("1.08")}
	next.On("BTCQuote", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	})).Return(quote, nil).Once()

	cached := NewCachedPrice(next, infracache.NewMemoryCache(time.Minute), time.Minute, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q, err := cached.BTCQuote(ctx)
	require.NoError(t, err)
	assert.False(t, q.Stale)
	assert.True(t, decimal.NewFromInt(60000).Equal(q.BTCEUR))
	next.AssertExpectations(t)
}
