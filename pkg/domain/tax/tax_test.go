package tax

import (
	"testing"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func forfettario(t *testing.T, year int) *Config {
	t.Helper()
	c, err := NewConfig(uuid.New(), year, d("15"), d("26.07"), d("78"))
	require.NoError(t, err)
	return c
}

func TestCompute(t *testing.T) {
	b := forfettario(t, 2024).Compute(d("10000"))
	assert.True(t, b.TaxableAmount.Equal(d("7800")))
	assert.True(t, b.Tax.Equal(d("1170")))
	assert.True(t, b.INPS.Equal(d("2033.46")))
	assert.True(t, b.TotalTax.Equal(d("3203.46")))
	assert.True(t, b.Net.Equal(d("6796.54")))
}

func TestSummarizeAndReserve(t *testing.T) {
	c24 := forfettario(t, 2024)
	c25 := forfettario(t, 2025)
	c25.UserID = c24.UserID
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	i1, err := NewIncome(c24, day, "fattura 1", d("10000"))
	require.NoError(t, err)
	i2, err := NewIncome(c25, day.AddDate(1, 0, 0), "fattura 2", d("1000"))
	require.NoError(t, err)
	p1, err := NewPayment(c24.UserID, 2024, day, "F24", d("3000"), PaymentSaldo)
	require.NoError(t, err)

	all := SummarizeAll([]*Config{c24, c25}, []*Income{i1, i2}, []*Payment{p1})
	require.Len(t, all, 2)
	assert.Equal(t, 2025, all[0].Year)
	assert.True(t, all[1].Remaining.Equal(d("203.46")))
	assert.True(t, all[0].TotalDue.Equal(d("320.35")))
	assert.True(t, ReserveTarget(all).Equal(d("523.81")))
}

func TestReserveTarget_NeverNegative(t *testing.T) {
	assert.True(t, ReserveTarget([]Summary{{Remaining: d("-50")}}).IsZero())
	assert.True(t, ReserveTarget(nil).IsZero())
}

func TestValidation(t *testing.T) {
	_, err := NewConfig(uuid.New(), 2024, d("101"), d("0"), d("78"))
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewPayment(uuid.New(), 2024, time.Now(), "", d("1"), "multa")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewIncome(forfettario(t, 2024), time.Now(), "", d("0"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
