package budget

import "github.com/shopspring/decimal"

// BudgetRequest represents the request body for creating or replacing a
// budget. Order is optional; when omitted the budget goes last.
type BudgetRequest struct {
	Name         string          `json:"name" validate:"required,max=100"`
	Type         string          `json:"type" validate:"required,oneof=fixed unlimited"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	Order        *int            `json:"order" validate:"omitempty,min=0"`
	Color        string          `json:"color" validate:"omitempty,hexcolor"`
}

// ReorderRequest lists budget ids in their new priority order.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}
