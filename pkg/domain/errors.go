package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Common domain errors. Messages are shown to end users, hence Italian.
var (
	// ErrNotFound is returned when a requested resource is not found or is
	// not owned by the caller.
	ErrNotFound = errors.New("risorsa non trovata")
	// ErrAlreadyExists is returned when a unique name or position is taken.
	ErrAlreadyExists = errors.New("risorsa già esistente")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("dati non validi")
	// ErrUnauthorized is returned when the caller is not authenticated
	ErrUnauthorized = errors.New("non autorizzato")
	// ErrInsufficientFunds is returned when an operation would drive a
	// liquidity account below zero.
	ErrInsufficientFunds = errors.New("saldo insufficiente")
	// ErrInsufficientHoldings is returned when selling, swapping or paying a
	// fee with more units than currently held.
	ErrInsufficientHoldings = errors.New("quantità insufficiente")
	// ErrInvalidState is returned when an operation does not apply to the
	// current state of a resource (e.g. closing an already closed trade).
	ErrInvalidState = errors.New("operazione non consentita")
)

// BusinessError carries a user facing message and optional structured detail
// while still matching its sentinel through errors.Is.
type BusinessError struct {
	Err     error
	Message string
	Detail  map[string]any
}

func (e *BusinessError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error { return e.Err }

// Invalid builds a validation error with the given message.
func Invalid(format string, args ...any) error {
	return &BusinessError{Err: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds an already-exists error with the given message.
func Conflict(format string, args ...any) error {
	return &BusinessError{Err: ErrAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found error naming the missing resource.
func NotFound(resource string) error {
	return &BusinessError{Err: ErrNotFound, Message: resource + " non trovato"}
}

// InsufficientFunds reports the balance shortfall for an account.
func InsufficientFunds(accountName string, current, required decimal.Decimal) error {
	deficit := required.Sub(current)
	return &BusinessError{
		Err: ErrInsufficientFunds,
		Message: fmt.Sprintf(
			"saldo insufficiente sul conto %q: disponibili %s, richiesti %s",
			accountName, current.StringFixed(2), required.StringFixed(2),
		),
		Detail: map[string]any{
			"account":  accountName,
			"current":  current,
			"required": required,
			"deficit":  deficit,
		},
	}
}

// InsufficientHoldings reports that fewer units are held than requested.
func InsufficientHoldings(symbol string, held, requested decimal.Decimal) error {
	return &BusinessError{
		Err: ErrInsufficientHoldings,
		Message: fmt.Sprintf(
			"quantità insufficiente di %s: disponibili %s, richiesti %s",
			symbol, held.String(), requested.String(),
		),
		Detail: map[string]any{
			"asset":     symbol,
			"held":      held,
			"requested": requested,
		},
	}
}
