package testutils

import (
	"context"

	"github.com/amirasaad/finanze/pkg/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockPrice is a testify mock of provider.Price.
type MockPrice struct {
	mock.Mock
}

var _ provider.Price = (*MockPrice)(nil)

func (m *MockPrice) BTCQuote(ctx context.Context) (*provider.Quote, error) {
	args := m.Called(ctx)
	q, _ := args.Get(0).(*provider.Quote)
	return q, args.Error(1)
}

func (m *MockPrice) AssetPricesEUR(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, ids)
	prices, _ := args.Get(0).(map[string]decimal.Decimal)
	return prices, args.Error(1)
}

func (m *MockPrice) Name() string { return "mock" }
