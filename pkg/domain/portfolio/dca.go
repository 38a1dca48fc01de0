package portfolio

import (
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DCAPortfolio tracks a Bitcoin dollar-cost-averaging plan.
type DCAPortfolio struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	Name      string     `json:"name"`
	AccountID *uuid.UUID `json:"accountId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewDCAPortfolio validates and builds a DCA portfolio.
func NewDCAPortfolio(userID uuid.UUID, name string, accountID *uuid.UUID) (*DCAPortfolio, error) {
	if name = strings.TrimSpace(name); name == "" {
		return nil, domain.Invalid("il nome del portafoglio è obbligatorio")
	}
	now := time.Now().UTC()
	return &DCAPortfolio{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		AccountID: accountID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DCATransaction is a Bitcoin purchase (positive quantity) or sale
// (negative quantity) for EURPaid euros.
type DCATransaction struct {
	ID          uuid.UUID       `json:"id"`
	PortfolioID uuid.UUID       `json:"portfolioId"`
	Date        time.Time       `json:"date"`
	Broker      string          `json:"broker"`
	Info        string          `json:"info"`
	BTCQuantity decimal.Decimal `json:"btcQuantity"`
	EURPaid     decimal.Decimal `json:"eurPaid"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewDCATransaction validates and builds a DCA transaction.
func NewDCATransaction(
	portfolioID uuid.UUID,
	date time.Time,
	broker, info string,
	btcQuantity, eurPaid decimal.Decimal,
) (*DCATransaction, error) {
	tx := &DCATransaction{
		ID:          uuid.New(),
		PortfolioID: portfolioID,
		Date:        date.UTC(),
		Broker:      strings.TrimSpace(broker),
		Info:        strings.TrimSpace(info),
		BTCQuantity: btcQuantity,
		EURPaid:     eurPaid,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	tx.CreatedAt, tx.UpdatedAt = now, now
	return tx, nil
}

func (t *DCATransaction) Validate() error {
	if t.BTCQuantity.IsZero() {
		return domain.Invalid("la quantità di BTC non può essere zero")
	}
	if !t.EURPaid.IsPositive() {
		return domain.Invalid("l'importo in euro deve essere maggiore di zero")
	}
	if t.Date.IsZero() {
		return domain.Invalid("la data è obbligatoria")
	}
	return nil
}

// IsSell reports whether the transaction sells BTC.
func (t *DCATransaction) IsSell() bool { return t.BTCQuantity.IsNegative() }

// BTCPrice is the EUR price per bitcoin paid or received.
func (t *DCATransaction) BTCPrice() decimal.Decimal {
	if t.BTCQuantity.IsZero() {
		return decimal.Zero
	}
	return t.EURPaid.Div(t.BTCQuantity.Abs()).Round(2)
}

// Flow is a buy (money in) or a sell (money out).
func (t *DCATransaction) Flow() Flow {
	if t.IsSell() {
		return Flow{Kind: FlowOut, EUR: t.EURPaid}
	}
	return Flow{Kind: FlowIn, EUR: t.EURPaid}
}

// Event converts the transaction into a replay step.
func (t *DCATransaction) Event() Event {
	kind := EventKind(TxBuy)
	if t.IsSell() {
		kind = EventKind(TxSell)
	}
	return Event{
		Kind:      kind,
		Quantity:  t.BTCQuantity.Abs(),
		EURValue:  t.EURPaid,
		Date:      t.Date,
		CreatedAt: t.CreatedAt,
	}
}

// Effects debits the linked account for buys and credits it for sells.
func (t *DCATransaction) Effects(accountID *uuid.UUID) []ledger.Effect {
	if accountID == nil {
		return nil
	}
	delta := t.EURPaid.Neg()
	if t.IsSell() {
		delta = t.EURPaid
	}
	return []ledger.Effect{{AccountID: *accountID, Delta: delta}}
}

// DCAStats summarizes a DCA portfolio.
type DCAStats struct {
	TotalBTC    decimal.Decimal `json:"totalBtc"`
	TotalSats   int64           `json:"totalSats"`
	FeesBTC     decimal.Decimal `json:"feesBtc"`
	AvgBuyPrice decimal.Decimal `json:"avgBuyPrice"`
	BTCPriceEUR decimal.Decimal `json:"btcPriceEur"`
	// PriceAvailable is false when no market price could be fetched and
	// CurrentValue is therefore zero.
	PriceAvailable bool `json:"priceAvailable"`
	CashFlowStats
	Position Position `json:"position"`
}

// ComputeDCAStats derives the portfolio statistics from its transactions,
// network fees (in BTC) and the current BTC price in EUR.
func ComputeDCAStats(txs []*DCATransaction, feesBTC decimal.Decimal, feeEvents []Event, priceEUR decimal.NullDecimal) DCAStats {
	flows := make([]Flow, 0, len(txs))
	events := make([]Event, 0, len(txs)+len(feeEvents))
	total := decimal.Zero
	bought, spent := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		flows = append(flows, tx.Flow())
		events = append(events, tx.Event())
		total = total.Add(tx.BTCQuantity)
		if !tx.IsSell() {
			bought = bought.Add(tx.BTCQuantity)
			spent = spent.Add(tx.EURPaid)
		}
	}
	events = append(events, feeEvents...)
	net := total.Sub(feesBTC)

	s := DCAStats{
		TotalBTC:       net,
		TotalSats:      net.Mul(domain.SatsPerBTC).Round(0).IntPart(),
		FeesBTC:        feesBTC,
		AvgBuyPrice:    decimal.Zero,
		BTCPriceEUR:    priceEUR.Decimal,
		PriceAvailable: priceEUR.Valid,
		Position:       Replay(events),
	}
	if bought.IsPositive() {
		s.AvgBuyPrice = spent.Div(bought).Round(2)
	}
	current := decimal.Zero
	if priceEUR.Valid {
		current = domain.Cents(decimal.Max(net, decimal.Zero).Mul(priceEUR.Decimal))
	}
	s.CashFlowStats = ComputeCashFlow(flows, current)
	return s
}
