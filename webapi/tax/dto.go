package tax

import "github.com/shopspring/decimal"

// ConfigRequest represents the yearly Partita IVA rates. Year is read from
// the body on create and from the path on update.
type ConfigRequest struct {
	Year                     int             `json:"year" validate:"omitempty,min=2000,max=2100"`
	TaxRate                  decimal.Decimal `json:"taxRate"`
	INPSRate                 decimal.Decimal `json:"inpsRate"`
	ProfitabilityCoefficient decimal.Decimal `json:"profitabilityCoefficient"`
}

// IncomeRequest represents an invoiced revenue.
type IncomeRequest struct {
	Date        string          `json:"date" validate:"required"`
	Description string          `json:"description" validate:"max=500"`
	Amount      decimal.Decimal `json:"amount"`
}

// PaymentRequest represents a tax payment. Year defaults to the payment
// date's year.
type PaymentRequest struct {
	Year        int             `json:"year" validate:"omitempty,min=2000,max=2100"`
	Date        string          `json:"date" validate:"required"`
	Description string          `json:"description" validate:"max=500"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type" validate:"required,oneof=imposta inps acconto saldo"`
}
