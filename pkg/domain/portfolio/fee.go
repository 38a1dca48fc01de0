package portfolio

import (
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NetworkFee is an on-chain fee paid from a portfolio's holdings. It belongs
// to exactly one DCA or crypto portfolio. DCA fees are expressed in
// satoshis, crypto fees in units of AssetID.
type NetworkFee struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"userId"`
	DCAPortfolioID    *uuid.UUID      `json:"dcaPortfolioId,omitempty"`
	CryptoPortfolioID *uuid.UUID      `json:"cryptoPortfolioId,omitempty"`
	AssetID           *uuid.UUID      `json:"assetId,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	EURValue          decimal.Decimal `json:"eurValue"`
	Date              time.Time       `json:"date"`
	Description       string          `json:"description"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// NewNetworkFee validates and builds a fee.
func NewNetworkFee(
	userID uuid.UUID,
	dcaPortfolioID, cryptoPortfolioID, assetID *uuid.UUID,
	quantity, eurValue decimal.Decimal,
	date time.Time,
	description string,
) (*NetworkFee, error) {
	f := &NetworkFee{
		ID:                uuid.New(),
		UserID:            userID,
		DCAPortfolioID:    dcaPortfolioID,
		CryptoPortfolioID: cryptoPortfolioID,
		AssetID:           assetID,
		Quantity:          quantity,
		EURValue:          eurValue,
		Date:              date.UTC(),
		Description:       strings.TrimSpace(description),
		CreatedAt:         time.Now().UTC(),
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *NetworkFee) Validate() error {
	if (f.DCAPortfolioID == nil) == (f.CryptoPortfolioID == nil) {
		return domain.Invalid("la commissione deve riferirsi a un solo portafoglio")
	}
	if f.CryptoPortfolioID != nil && f.AssetID == nil {
		return domain.Invalid("l'asset è obbligatorio per le commissioni crypto")
	}
	if !f.Quantity.IsPositive() {
		return domain.Invalid("la quantità deve essere maggiore di zero")
	}
	if f.EURValue.IsNegative() {
		return domain.Invalid("il controvalore non può essere negativo")
	}
	if f.Date.IsZero() {
		return domain.Invalid("la data è obbligatoria")
	}
	return nil
}

// AssetQuantity is the fee in units of the asset: satoshis are converted to
// BTC for DCA fees.
func (f *NetworkFee) AssetQuantity() decimal.Decimal {
	if f.DCAPortfolioID != nil {
		return f.Quantity.Div(domain.SatsPerBTC)
	}
	return f.Quantity
}

// Event converts the fee into a replay step.
func (f *NetworkFee) Event() Event {
	return Event{
		Kind:      EventFee,
		Quantity:  f.AssetQuantity(),
		Date:      f.Date,
		CreatedAt: f.CreatedAt,
	}
}

// FeeTotals sums fees in asset units and returns their replay events.
func FeeTotals(fees []*NetworkFee) (decimal.Decimal, []Event) {
	total := decimal.Zero
	events := make([]Event, 0, len(fees))
	for _, f := range fees {
		total = total.Add(f.AssetQuantity())
		events = append(events, f.Event())
	}
	return total, events
}
