package account

import (
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GainCategoryName is the income category used for the gain transaction a
// transfer may carry.
const GainCategoryName = "Plusvalenze"

// Transfer moves money between two accounts of the same user. A transfer may
// link a gain transaction: an income booked on the destination account for
// the profit realized on the moved amount (e.g. withdrawing from a broker).
type Transfer struct {
	ID                uuid.UUID           `json:"id"`
	UserID            uuid.UUID           `json:"userId"`
	FromAccountID     uuid.UUID           `json:"fromAccountId"`
	ToAccountID       uuid.UUID           `json:"toAccountId"`
	Amount            decimal.Decimal     `json:"amount"`
	Description       string              `json:"description"`
	Date              time.Time           `json:"date"`
	GainTransactionID *uuid.UUID          `json:"gainTransactionId,omitempty"`
	GainAmount        decimal.NullDecimal `json:"gainAmount"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// NewTransfer validates and builds a transfer.
func NewTransfer(userID, from, to uuid.UUID, amount decimal.Decimal, description string, date time.Time) (*Transfer, error) {
	t := &Transfer{
		ID:            uuid.New(),
		UserID:        userID,
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Description:   strings.TrimSpace(description),
		Date:          date.UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	return t, nil
}

func (t *Transfer) Validate() error {
	if t.FromAccountID == uuid.Nil || t.ToAccountID == uuid.Nil {
		return domain.Invalid("conto di origine e destinazione sono obbligatori")
	}
	if t.FromAccountID == t.ToAccountID {
		return domain.Invalid("origine e destinazione devono essere conti diversi")
	}
	if !t.Amount.IsPositive() {
		return domain.Invalid("l'importo deve essere maggiore di zero")
	}
	if t.Date.IsZero() {
		return domain.Invalid("la data è obbligatoria")
	}
	return nil
}

// GainTransaction builds the income booked on the destination account for
// the transfer's gain, or nil when no gain is set.
func (t *Transfer) GainTransaction(categoryID *uuid.UUID) (*Transaction, error) {
	if !t.GainAmount.Valid || t.GainAmount.Decimal.IsZero() {
		return nil, nil
	}
	desc := "Plusvalenza"
	if t.Description != "" {
		desc += " - " + t.Description
	}
	return NewTransaction(t.UserID, t.ToAccountID, categoryID, TransactionIncome, t.GainAmount.Decimal, desc, t.Date)
}

// Effects debits the source and credits the destination.
func (t *Transfer) Effects() []ledger.Effect {
	return []ledger.Effect{
		{AccountID: t.FromAccountID, Delta: t.Amount.Neg()},
		{AccountID: t.ToAccountID, Delta: t.Amount},
	}
}
