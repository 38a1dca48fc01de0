package portfolio

import (
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxType is the kind of a crypto portfolio transaction.
type TxType string

const (
	TxBuy         TxType = "buy"
	TxSell        TxType = "sell"
	TxSwapIn      TxType = "swap_in"
	TxSwapOut     TxType = "swap_out"
	TxStakeReward TxType = "stake_reward"
)

func (t TxType) Valid() bool {
	switch t {
	case TxBuy, TxSell, TxSwapIn, TxSwapOut, TxStakeReward:
		return true
	}
	return false
}

// IsSwap reports whether the type is one leg of a swap pair.
func (t TxType) IsSwap() bool { return t == TxSwapIn || t == TxSwapOut }

// Asset is an entry of the global crypto asset catalog.
type Asset struct {
	ID          uuid.UUID `json:"id"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	CoingeckoID string    `json:"coingeckoId"`
}

// NewAsset normalizes the symbol to upper case.
func NewAsset(symbol, name, coingeckoID string) (*Asset, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, domain.Invalid("il simbolo è obbligatorio")
	}
	if name = strings.TrimSpace(name); name == "" {
		name = symbol
	}
	return &Asset{
		ID:          uuid.New(),
		Symbol:      symbol,
		Name:        name,
		CoingeckoID: strings.ToLower(strings.TrimSpace(coingeckoID)),
	}, nil
}

// CryptoPortfolio groups holdings of several assets.
type CryptoPortfolio struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	AccountID   *uuid.UUID `json:"accountId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewCryptoPortfolio validates and builds a crypto portfolio.
func NewCryptoPortfolio(userID uuid.UUID, name, description string, accountID *uuid.UUID) (*CryptoPortfolio, error) {
	if name = strings.TrimSpace(name); name == "" {
		return nil, domain.Invalid("il nome del portafoglio è obbligatorio")
	}
	now := time.Now().UTC()
	return &CryptoPortfolio{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		AccountID:   accountID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CryptoTransaction is one movement of an asset inside a crypto portfolio.
type CryptoTransaction struct {
	ID           uuid.UUID       `json:"id"`
	PortfolioID  uuid.UUID       `json:"portfolioId"`
	AssetID      uuid.UUID       `json:"assetId"`
	Type         TxType          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	EURValue     decimal.Decimal `json:"eurValue"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	Date         time.Time       `json:"date"`
	Notes        string          `json:"notes"`
	SwapPairID   *uuid.UUID      `json:"swapPairId,omitempty"`
	TradeID      *uuid.UUID      `json:"tradeId,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NewCryptoTransaction validates and builds a transaction, deriving the unit
// price from the EUR value.
func NewCryptoTransaction(
	portfolioID, assetID uuid.UUID,
	typ TxType,
	quantity, eurValue decimal.Decimal,
	date time.Time,
	notes string,
) (*CryptoTransaction, error) {
	tx := &CryptoTransaction{
		ID:          uuid.New(),
		PortfolioID: portfolioID,
		AssetID:     assetID,
		Type:        typ,
		Quantity:    quantity,
		EURValue:    eurValue,
		Date:        date.UTC(),
		Notes:       strings.TrimSpace(notes),
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	tx.Reprice()
	now := time.Now().UTC()
	tx.CreatedAt, tx.UpdatedAt = now, now
	return tx, nil
}

func (t *CryptoTransaction) Validate() error {
	if t.AssetID == uuid.Nil {
		return domain.Invalid("l'asset è obbligatorio")
	}
	if !t.Type.Valid() {
		return domain.Invalid("tipo di transazione non valido: %s", t.Type)
	}
	if !t.Quantity.IsPositive() {
		return domain.Invalid("la quantità deve essere maggiore di zero")
	}
	if t.EURValue.IsNegative() {
		return domain.Invalid("il controvalore non può essere negativo")
	}
	if t.Date.IsZero() {
		return domain.Invalid("la data è obbligatoria")
	}
	return nil
}

// Reprice sets PricePerUnit from EURValue and Quantity.
func (t *CryptoTransaction) Reprice() {
	if t.Quantity.IsZero() {
		t.PricePerUnit = decimal.Zero
		return
	}
	t.PricePerUnit = t.EURValue.Div(t.Quantity).Round(8)
}

// Event converts the transaction into a replay step.
func (t *CryptoTransaction) Event() Event {
	return Event{
		Kind:      EventKind(t.Type),
		Quantity:  t.Quantity,
		EURValue:  t.EURValue,
		Date:      t.Date,
		CreatedAt: t.CreatedAt,
	}
}

// Flow returns the cash flow of the transaction. Swaps move value between
// assets and staking rewards cost nothing, so neither is a flow.
func (t *CryptoTransaction) Flow() (Flow, bool) {
	switch t.Type {
	case TxBuy:
		return Flow{Kind: FlowIn, EUR: t.EURValue}, true
	case TxSell:
		return Flow{Kind: FlowOut, EUR: t.EURValue}, true
	}
	return Flow{}, false
}

// Effects returns the balance change on the linked account: buys are paid
// from it, sells are credited to it.
func (t *CryptoTransaction) Effects(accountID *uuid.UUID) []ledger.Effect {
	if accountID == nil {
		return nil
	}
	switch t.Type {
	case TxBuy:
		return []ledger.Effect{{AccountID: *accountID, Delta: t.EURValue.Neg()}}
	case TxSell:
		return []ledger.Effect{{AccountID: *accountID, Delta: t.EURValue}}
	}
	return nil
}

// NewSwap builds the two legs of a swap of fromQty of one asset into toQty
// of another, both valued at eurValue and linked by a fresh pair id.
func NewSwap(
	portfolioID, fromAssetID, toAssetID uuid.UUID,
	fromQty, toQty, eurValue decimal.Decimal,
	date time.Time,
	notes string,
) (out, in *CryptoTransaction, err error) {
	if fromAssetID == toAssetID {
		return nil, nil, domain.Invalid("gli asset dello swap devono essere diversi")
	}
	if out, err = NewCryptoTransaction(portfolioID, fromAssetID, TxSwapOut, fromQty, eurValue, date, notes); err != nil {
		return nil, nil, err
	}
	if in, err = NewCryptoTransaction(portfolioID, toAssetID, TxSwapIn, toQty, eurValue, date, notes); err != nil {
		return nil, nil, err
	}
	pair := uuid.New()
	out.SwapPairID, in.SwapPairID = &pair, &pair
	return out, in, nil
}
