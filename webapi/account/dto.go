package account

import "github.com/shopspring/decimal"

//revive:disable

// CreateAccountRequest represents the request body for creating an account.
type CreateAccountRequest struct {
	Name    string          `json:"name" validate:"required,min=1,max=100"`
	Type    string          `json:"type" validate:"required,oneof=bank investment"`
	Balance decimal.Decimal `json:"balance"`
}

// UpdateAccountRequest represents the request body for renaming an account
// or changing its type. The balance is not editable.
type UpdateAccountRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Type string `json:"type" validate:"required,oneof=bank investment"`
}

// CreateCategoryRequest represents the request body for creating a category.
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Type  string `json:"type" validate:"required,oneof=income expense"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}
