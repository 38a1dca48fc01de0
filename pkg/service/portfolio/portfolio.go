// Package portfolio provides the business logic for DCA bitcoin portfolios,
// multi-asset crypto portfolios, swaps, trades and network fees.
//
// Crypto holdings are never edited directly: every mutation replays the
// affected asset from its transactions and fees inside the same database
// transaction, and a failed replay aborts the mutation.
package portfolio

import (
	"context"
	"log/slog"

	"github.com/amirasaad/finanze/pkg/provider"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides portfolio operations.
type Service struct {
	uow    repository.UnitOfWork
	prices provider.Price
	logger *slog.Logger
}

// NewService creates a new Service. prices may be nil, in which case
// market values are reported as unavailable.
func NewService(uow repository.UnitOfWork, prices provider.Price, logger *slog.Logger) *Service {
	return &Service{uow: uow, prices: prices, logger: logger}
}

// btcPrice returns the current BTC price in EUR, or an invalid value when
// no provider answers.
func (s *Service) btcPrice(ctx context.Context) decimal.NullDecimal {
	if s.prices == nil {
		return decimal.NullDecimal{}
	}
	q, err := s.prices.BTCQuote(ctx)
	if err != nil {
		s.logger.Warn("BTC price unavailable", "error", err)
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(q.BTCEUR)
}

// assetPrices returns EUR prices keyed by CoinGecko id. Missing ids are
// simply absent.
func (s *Service) assetPrices(ctx context.Context, ids []string) map[string]decimal.Decimal {
	if s.prices == nil || len(ids) == 0 {
		return map[string]decimal.Decimal{}
	}
	prices, err := s.prices.AssetPricesEUR(ctx, ids)
	if err != nil {
		s.logger.Warn("Asset prices unavailable", "ids", ids, "error", err)
		return map[string]decimal.Decimal{}
	}
	return prices
}

func sameAccount(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// checkAccount verifies the linked account belongs to the user.
func checkAccount(ctx context.Context, uow repository.UnitOfWork, userID uuid.UUID, accountID *uuid.UUID) error {
	if accountID == nil {
		return nil
	}
	accounts, err := uow.AccountRepository()
	if err != nil {
		return err
	}
	_, err = accounts.Get(ctx, userID, *accountID)
	return err
}
