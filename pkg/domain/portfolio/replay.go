package portfolio

import (
	"sort"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventKind is a replayable movement of an asset. It extends TxType with
// network fees.
type EventKind string

const EventFee EventKind = "fee"

// Event is one step of a holding replay.
type Event struct {
	Kind      EventKind
	Quantity  decimal.Decimal
	EURValue  decimal.Decimal
	Date      time.Time
	CreatedAt time.Time
}

// Position is the result of replaying every event of one asset.
type Position struct {
	Quantity      decimal.Decimal `json:"quantity"`
	AvgPrice      decimal.Decimal `json:"avgPrice"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	RealizedGains decimal.Decimal `json:"realizedGains"`
}

// IsOpen reports whether the position is above the dust threshold.
func (p Position) IsOpen() bool {
	return p.Quantity.GreaterThan(domain.DustThreshold)
}

// SortEvents orders events by date, then creation time.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
}

// Replay recomputes a position from scratch with weighted-average cost basis.
//
// Acquisitions (buy, swap_in) add quantity and cost. Disposals (sell,
// swap_out) remove quantity at the current average cost and realize the
// difference with their EUR value. Staking rewards add quantity at zero cost
// and count their EUR value as realized gain. Fees remove quantity at the
// current average cost with no proceeds. The input is not mutated and the
// result only depends on its content, so replaying twice is a no-op.
func Replay(events []Event) Position {
	ordered := make([]Event, len(events))
	copy(ordered, events)
	SortEvents(ordered)

	quantity, invested, realized := decimal.Zero, decimal.Zero, decimal.Zero
	for _, e := range ordered {
		switch TxType(e.Kind) {
		case TxBuy, TxSwapIn:
			quantity = quantity.Add(e.Quantity)
			invested = invested.Add(e.EURValue)
		case TxSell, TxSwapOut:
			cost := costBasis(invested, quantity, e.Quantity)
			quantity = quantity.Sub(e.Quantity)
			invested = invested.Sub(cost)
			realized = realized.Add(e.EURValue.Sub(cost))
		case TxStakeReward:
			quantity = quantity.Add(e.Quantity)
			realized = realized.Add(e.EURValue)
		default:
			if e.Kind == EventFee {
				cost := costBasis(invested, quantity, e.Quantity)
				quantity = quantity.Sub(e.Quantity)
				invested = invested.Sub(cost)
				realized = realized.Sub(cost)
			}
		}
	}

	return Position{
		Quantity:      quantity,
		AvgPrice:      avgPrice(invested, quantity),
		TotalInvested: invested,
		RealizedGains: realized,
	}
}

// costBasis is q units at the average price invested/quantity. Multiplying
// before dividing keeps exact results for whole fractions.
func costBasis(invested, quantity, q decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() {
		return decimal.Zero
	}
	return invested.Mul(q).Div(quantity)
}

func avgPrice(invested, quantity decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() {
		return decimal.Zero
	}
	return invested.Div(quantity)
}

// Holding is the materialized position of one asset in one portfolio.
type Holding struct {
	ID          uuid.UUID `json:"id"`
	PortfolioID uuid.UUID `json:"portfolioId"`
	AssetID     uuid.UUID `json:"assetId"`
	Position
	LastUpdated time.Time `json:"lastUpdated"`
}
