package snapshot

import (
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoldingsSnapshot is a point-in-time valuation of a user's bitcoin holdings
// used for charting.
type HoldingsSnapshot struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	Date          time.Time       `json:"date"`
	BTCUSD        decimal.Decimal `json:"btcUsd"`
	EURUSD        decimal.Decimal `json:"eurUsd"`
	BTCEUR        decimal.Decimal `json:"btcEur"`
	TotalBTC      decimal.Decimal `json:"totalBtc"`
	TotalValueUSD decimal.Decimal `json:"totalValueUsd"`
	TotalValueEUR decimal.Decimal `json:"totalValueEur"`
	IsAutomatic   bool            `json:"isAutomatic"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// New values totalBTC at the given prices.
func New(userID uuid.UUID, at time.Time, totalBTC, btcUSD, btcEUR, eurUSD decimal.Decimal, automatic bool) *HoldingsSnapshot {
	now := time.Now().UTC()
	s := &HoldingsSnapshot{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        at.UTC(),
		IsAutomatic: automatic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.Revalue(totalBTC, btcUSD, btcEUR, eurUSD)
	return s
}

// Revalue replaces the prices and quantity and recomputes the totals.
func (s *HoldingsSnapshot) Revalue(totalBTC, btcUSD, btcEUR, eurUSD decimal.Decimal) {
	s.TotalBTC = totalBTC
	s.BTCUSD = btcUSD
	s.BTCEUR = btcEUR
	s.EURUSD = eurUSD
	s.TotalValueUSD = domain.Cents(totalBTC.Mul(btcUSD))
	s.TotalValueEUR = domain.Cents(totalBTC.Mul(btcEUR))
	s.UpdatedAt = time.Now().UTC()
}

// SameDay reports whether the snapshot was taken on the same UTC day as t.
func (s *HoldingsSnapshot) SameDay(t time.Time) bool {
	return domain.Day(s.Date).Equal(domain.Day(t))
}
