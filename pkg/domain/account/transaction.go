package account

import (
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction is an income or expense booked against one account.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	AccountID   uuid.UUID       `json:"accountId"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewTransaction validates and builds a transaction. Amount is the absolute
// value; the sign comes from the type.
func NewTransaction(
	userID, accountID uuid.UUID,
	categoryID *uuid.UUID,
	typ TransactionType,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*Transaction, error) {
	tx := &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		AccountID:   accountID,
		CategoryID:  categoryID,
		Type:        typ,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Date:        date.UTC(),
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	tx.CreatedAt, tx.UpdatedAt = now, now
	return tx, nil
}

// Validate checks the transaction's own invariants.
func (t *Transaction) Validate() error {
	if t.AccountID == uuid.Nil {
		return domain.Invalid("il conto è obbligatorio")
	}
	if !t.Type.Valid() {
		return domain.Invalid("tipo di transazione non valido: %s", t.Type)
	}
	if !t.Amount.IsPositive() {
		return domain.Invalid("l'importo deve essere maggiore di zero")
	}
	if t.Date.IsZero() {
		return domain.Invalid("la data è obbligatoria")
	}
	return nil
}

// SignedAmount is +amount for income and -amount for expenses.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Effects returns the balance change the transaction causes.
func (t *Transaction) Effects() []ledger.Effect {
	return []ledger.Effect{{AccountID: t.AccountID, Delta: t.SignedAmount()}}
}
