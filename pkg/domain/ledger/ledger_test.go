package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBalances map[uuid.UUID]decimal.Decimal

func (m memBalances) Balance(_ context.Context, id uuid.UUID) (string, decimal.Decimal, error) {
	b, ok := m[id]
	if !ok {
		return "", decimal.Zero, domain.ErrNotFound
	}
	return "conto", b, nil
}

func (m memBalances) AdjustBalance(_ context.Context, id uuid.UUID, delta decimal.Decimal) error {
	if _, ok := m[id]; !ok {
		return domain.ErrNotFound
	}
	m[id] = m[id].Add(delta)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNet_MergesAndDropsZero(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := Net(
		Effect{AccountID: a, Delta: dec("-10")},
		Effect{AccountID: b, Delta: dec("5")},
		Effect{AccountID: a, Delta: dec("3")},
		Effect{AccountID: b, Delta: dec("-5")},
		Effect{AccountID: uuid.Nil, Delta: dec("1")},
	)
	require.Len(t, got, 1)
	assert.Equal(t, a, got[0].AccountID)
	assert.True(t, got[0].Delta.Equal(dec("-7")))
}

func TestGuard_InsufficientFunds(t *testing.T) {
	a := uuid.New()
	bal := memBalances{a: dec("100")}
	err := Guard(context.Background(), bal, Effect{AccountID: a, Delta: dec("-150")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientFunds))

	var be *domain.BusinessError
	require.ErrorAs(t, err, &be)
	assert.True(t, be.Detail["deficit"].(decimal.Decimal).Equal(dec("50")))
	assert.True(t, bal[a].Equal(dec("100")), "guard must not post")
}

func TestGuard_CreditsAlwaysPass(t *testing.T) {
	a := uuid.New()
	bal := memBalances{a: dec("-20")}
	assert.NoError(t, Guard(context.Background(), bal, Effect{AccountID: a, Delta: dec("5")}))
}

func TestReplace_UpdateSeesRevertedBalance(t *testing.T) {
	a := uuid.New()
	bal := memBalances{a: dec("0")}
	ctx := context.Background()

	// buy for 100 funded by a deposit of 100
	bal[a] = dec("100")
	old := []Effect{{AccountID: a, Delta: dec("-100")}}
	require.NoError(t, Replace(ctx, bal, nil, old, true))
	assert.True(t, bal[a].IsZero())

	// raising the buy to 100 again after revert is allowed, to 101 is not
	next := []Effect{{AccountID: a, Delta: dec("-101")}}
	err := Replace(ctx, bal, old, next, true)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestReplace_CreateThenDeleteRestoresBalance(t *testing.T) {
	from, to := uuid.New(), uuid.New()
	bal := memBalances{from: dec("250.10"), to: dec("3.33")}
	ctx := context.Background()
	effects := []Effect{
		{AccountID: from, Delta: dec("-99.99")},
		{AccountID: to, Delta: dec("99.99")},
	}

	require.NoError(t, Replace(ctx, bal, nil, effects, true))
	assert.True(t, bal[from].Equal(dec("150.11")))
	assert.True(t, bal[to].Equal(dec("103.32")))

	require.NoError(t, Replace(ctx, bal, effects, nil, false))
	assert.True(t, bal[from].Equal(dec("250.10")))
	assert.True(t, bal[to].Equal(dec("3.33")))
}
