// Package ledger models the balance effects that transactions, transfers and
// portfolio operations have on accounts.
//
// Every mutation of a stored record follows the same three steps: reverse the
// effects of the old version, guard the new effects against overdraft when
// they consume liquidity, then apply the new effects. Creation is the special
// case with no old version and deletion the case with no new one.
package ledger

import (
	"context"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Effect is a signed change to one account balance.
type Effect struct {
	AccountID uuid.UUID
	Delta     decimal.Decimal
}

// Inverse returns the effect that undoes e.
func (e Effect) Inverse() Effect {
	return Effect{AccountID: e.AccountID, Delta: e.Delta.Neg()}
}

// Balances is the storage the ledger posts to.
type Balances interface {
	// Balance returns the account's name and current balance.
	Balance(ctx context.Context, accountID uuid.UUID) (string, decimal.Decimal, error)
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error
}

// Net merges effects per account, keeping first-seen order and dropping
// accounts whose deltas cancel out.
func Net(effects ...Effect) []Effect {
	idx := make(map[uuid.UUID]int, len(effects))
	var out []Effect
	for _, e := range effects {
		if e.AccountID == uuid.Nil {
			continue
		}
		if i, ok := idx[e.AccountID]; ok {
			out[i].Delta = out[i].Delta.Add(e.Delta)
			continue
		}
		idx[e.AccountID] = len(out)
		out = append(out, e)
	}
	n := out[:0]
	for _, e := range out {
		if !e.Delta.IsZero() {
			n = append(n, e)
		}
	}
	return n
}

// Reverse returns the inverse of every effect.
func Reverse(effects ...Effect) []Effect {
	out := make([]Effect, len(effects))
	for i, e := range effects {
		out[i] = e.Inverse()
	}
	return out
}

// Apply posts the netted effects.
func Apply(ctx context.Context, b Balances, effects ...Effect) error {
	for _, e := range Net(effects...) {
		if err := b.AdjustBalance(ctx, e.AccountID, e.Delta); err != nil {
			return err
		}
	}
	return nil
}

// Guard fails with an insufficient funds error when applying the effects
// would leave any debited account below zero.
func Guard(ctx context.Context, b Balances, effects ...Effect) error {
	for _, e := range Net(effects...) {
		if !e.Delta.IsNegative() {
			continue
		}
		name, current, err := b.Balance(ctx, e.AccountID)
		if err != nil {
			return err
		}
		if current.Add(e.Delta).IsNegative() {
			return domain.InsufficientFunds(name, current, e.Delta.Neg())
		}
	}
	return nil
}

// Replace reverses old, optionally guards next, then applies next. Passing
// nil for old models creation; nil for next models deletion.
func Replace(ctx context.Context, b Balances, old, next []Effect, guard bool) error {
	if err := Apply(ctx, b, Reverse(old...)...); err != nil {
		return err
	}
	if guard {
		if err := Guard(ctx, b, next...); err != nil {
			return err
		}
	}
	return Apply(ctx, b, next...)
}
