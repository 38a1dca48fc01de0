package portfolio

import (
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeStatus is the lifecycle state of a trade.
type TradeStatus string

const (
	TradeOpen   TradeStatus = "open"
	TradeClosed TradeStatus = "closed"
)

// Trade rotates a position from one asset into another and back, tracking
// the profit measured in the original asset. Opening records a swap
// from->to; closing records the reverse swap of the whole ToQuantity.
type Trade struct {
	ID              uuid.UUID           `json:"id"`
	PortfolioID     uuid.UUID           `json:"portfolioId"`
	Status          TradeStatus         `json:"status"`
	FromAssetID     uuid.UUID           `json:"fromAssetId"`
	ToAssetID       uuid.UUID           `json:"toAssetId"`
	FromQuantity    decimal.Decimal     `json:"fromQuantity"`
	ToQuantity      decimal.Decimal     `json:"toQuantity"`
	InitialValue    decimal.Decimal     `json:"initialValue"`
	FinalValue      decimal.NullDecimal `json:"finalValue"`
	RealizedPnL     decimal.NullDecimal `json:"realizedPnl"`
	ReceivedQty     decimal.NullDecimal `json:"receivedQuantity"`
	OpenSwapPairID  uuid.UUID           `json:"openSwapPairId"`
	CloseSwapPairID *uuid.UUID          `json:"closeSwapPairId,omitempty"`
	OpenedAt        time.Time           `json:"openedAt"`
	ClosedAt        *time.Time          `json:"closedAt,omitempty"`
}

// OpenTrade builds an open trade from its opening swap legs.
func OpenTrade(out, in *CryptoTransaction) *Trade {
	t := &Trade{
		ID:             uuid.New(),
		PortfolioID:    out.PortfolioID,
		Status:         TradeOpen,
		FromAssetID:    out.AssetID,
		ToAssetID:      in.AssetID,
		FromQuantity:   out.Quantity,
		ToQuantity:     in.Quantity,
		InitialValue:   out.EURValue,
		OpenSwapPairID: *out.SwapPairID,
		OpenedAt:       out.Date,
	}
	out.TradeID, in.TradeID = &t.ID, &t.ID
	return t
}

// FinalValueFor back-derives the EUR value of receivedQty of the original
// asset in proportion to the opening trade.
func (t *Trade) FinalValueFor(receivedQty decimal.Decimal) decimal.Decimal {
	if t.FromQuantity.IsZero() {
		return decimal.Zero
	}
	return domain.Cents(receivedQty.Mul(t.InitialValue).Div(t.FromQuantity))
}

// Close builds the closing swap (ToAsset back into FromAsset) and marks the
// trade closed with its realized profit.
func (t *Trade) Close(receivedQty decimal.Decimal, date time.Time) (out, in *CryptoTransaction, err error) {
	if t.Status != TradeOpen {
		return nil, nil, &domain.BusinessError{Err: domain.ErrInvalidState, Message: "il trade è già chiuso"}
	}
	if !receivedQty.IsPositive() {
		return nil, nil, domain.Invalid("la quantità ricevuta deve essere maggiore di zero")
	}
	if date.Before(t.OpenedAt) {
		return nil, nil, domain.Invalid("la data di chiusura precede l'apertura")
	}
	final := t.FinalValueFor(receivedQty)
	out, in, err = NewSwap(t.PortfolioID, t.ToAssetID, t.FromAssetID, t.ToQuantity, receivedQty, final, date, "chiusura trade")
	if err != nil {
		return nil, nil, err
	}
	out.TradeID, in.TradeID = &t.ID, &t.ID

	closedAt := date.UTC()
	t.Status = TradeClosed
	t.FinalValue = decimal.NewNullDecimal(final)
	t.RealizedPnL = decimal.NewNullDecimal(final.Sub(t.InitialValue))
	t.ReceivedQty = decimal.NewNullDecimal(receivedQty)
	t.CloseSwapPairID = out.SwapPairID
	t.ClosedAt = &closedAt
	return out, in, nil
}
