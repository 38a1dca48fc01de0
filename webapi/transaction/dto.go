package transaction

import "github.com/shopspring/decimal"

//revive:disable

// TransactionRequest represents the request body for creating or replacing
// a transaction.
type TransactionRequest struct {
	AccountID   string          `json:"accountId" validate:"required,uuid"`
	CategoryID  string          `json:"categoryId" validate:"omitempty,uuid"`
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=500"`
	Date        string          `json:"date" validate:"required"`
}

// BulkDeleteRequest lists the transactions to delete in one go.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

// TransferRequest represents the request body for creating or replacing a
// transfer. GainAmount, when set, books a capital gain on the destination.
type TransferRequest struct {
	FromAccountID string              `json:"fromAccountId" validate:"required,uuid"`
	ToAccountID   string              `json:"toAccountId" validate:"required,uuid"`
	Amount        decimal.Decimal     `json:"amount"`
	GainAmount    decimal.NullDecimal `json:"gainAmount"`
	Description   string              `json:"description" validate:"max=500"`
	Date          string              `json:"date" validate:"required"`
}
