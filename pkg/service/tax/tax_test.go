package tax_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/budget"
	"github.com/amirasaad/finanze/pkg/domain/tax"
	"github.com/amirasaad/finanze/pkg/repository"
	taxsvc "github.com/amirasaad/finanze/pkg/service/tax"
	"github.com/amirasaad/finanze/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var forfettario = taxsvc.Rates{
	TaxRate:                  dec("5"),
	INPSRate:                 dec("26"),
	ProfitabilityCoefficient: dec("78"),
}

func reserveTarget(t *testing.T, ctx context.Context, uow repository.UnitOfWork, userID uuid.UUID) decimal.Decimal {
	t.Helper()
	repo, err := uow.BudgetRepository()
	require.NoError(t, err)
	b, err := repo.GetByName(ctx, userID, budget.TaxReserveName)
	require.NoError(t, err)
	assert.True(t, b.IsTaxReserve)
	return b.TargetAmount
}

func TestIncomeAndPaymentsSyncReserve(t *testing.T) {
	uow := testutils.NewTestUoW(t)
	svc := taxsvc.NewService(uow, testutils.NewTestLogger())
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateConfig(ctx, userID, 2024, forfettario)
	require.NoError(t, err)

	// 10000 * 78% = 7800 taxable; 5% = 390 tax; 26% = 2028 INPS
	in, err := svc.CreateIncome(ctx, userID, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "fattura 1", dec("10000"))
	require.NoError(t, err)
	assert.True(t, in.TaxableAmount.Equal(dec("7800")))
	assert.True(t, in.TotalTax.Equal(dec("2418")))
	assert.True(t, reserveTarget(t, ctx, uow, userID).Equal(dec("2418")))

	p, err := svc.CreatePayment(ctx, userID, 0, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), "F24", dec("1000"), tax.PaymentAcconto)
	require.NoError(t, err)
	assert.Equal(t, 2024, p.Year)
	assert.True(t, reserveTarget(t, ctx, uow, userID).Equal(dec("1418")))

	sum, err := svc.Summary(ctx, userID, 2024)
	require.NoError(t, err)
	assert.True(t, sum.Paid.Equal(dec("1000")))
	assert.True(t, sum.Remaining.Equal(dec("1418")))

	require.NoError(t, svc.DeleteIncome(ctx, userID, in.ID))
	assert.True(t, reserveTarget(t, ctx, uow, userID).IsZero(), "overpaid years never make the reserve negative")

	require.NoError(t, svc.DeletePayment(ctx, userID, p.ID))
	assert.ErrorIs(t, svc.DeletePayment(ctx, userID, p.ID), domain.ErrNotFound)
}

func TestCreateIncome_RequiresConfig(t *testing.T) {
	uow := testutils.NewTestUoW(t)
	svc := taxsvc.NewService(uow, testutils.NewTestLogger())
	_, err := svc.CreateIncome(context.Background(), uuid.New(), time.Now(), "", dec("1"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateConfig(t *testing.T) {
	uow := testutils.NewTestUoW(t)
	svc := taxsvc.NewService(uow, testutils.NewTestLogger())
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateConfig(ctx, userID, 2025, forfettario)
	require.NoError(t, err)
	_, err = svc.CreateConfig(ctx, userID, 2025, forfettario)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = svc.CreateIncome(ctx, userID, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "", dec("1000"))
	require.NoError(t, err)

	rates := forfettario
	rates.TaxRate = dec("15")
	c, err := svc.UpdateConfig(ctx, userID, 2025, rates)
	require.NoError(t, err)
	assert.True(t, c.TaxRate.Equal(dec("15")))
	// 780 taxable: 117 tax + 202.80 INPS
	assert.True(t, reserveTarget(t, ctx, uow, userID).Equal(dec("319.8")))

	rates.TaxRate = dec("101")
	_, err = svc.UpdateConfig(ctx, userID, 2025, rates)
	assert.ErrorIs(t, err, domain.ErrValidation)

	views, err := svc.ListIncomes(ctx, userID, 2025)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Tax.Equal(dec("117")))
}
