package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/provider"
	accountsvc "github.com/amirasaad/finanze/pkg/service/account"
	"github.com/amirasaad/finanze/pkg/service/dashboard"
	portfoliosvc "github.com/amirasaad/finanze/pkg/service/portfolio"
	txsvc "github.com/amirasaad/finanze/pkg/service/transaction"
	"github.com/amirasaad/finanze/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestGet(t *testing.T) {
	ctx := context.Background()
	uow := testutils.NewTestUoW(t)
	logger := testutils.NewTestLogger()
	prices := &testutils.MockPrice{}
	prices.On("BTCQuote", mock.Anything).Return(&provider.Quote{BTCEUR: dec("50000")}, nil)

	accounts := accountsvc.NewService(uow, logger)
	transactions := txsvc.NewService(uow, logger)
	portfolios := portfoliosvc.NewService(uow, prices, logger)
	svc := dashboard.NewService(uow, portfolios, logger)
	userID := uuid.New()

	bank, err := accounts.CreateAccount(ctx, userID, "Banca", account.TypeBank, dec("2000"))
	require.NoError(t, err)
	_, err = accounts.CreateAccount(ctx, userID, "Broker", account.TypeInvestment, dec("500"))
	require.NoError(t, err)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	for _, in := range []txsvc.Input{
		{AccountID: bank.ID, Type: account.TransactionIncome, Amount: dec("1500"), Date: now.AddDate(0, 0, -5)},
		{AccountID: bank.ID, Type: account.TransactionExpense, Amount: dec("300"), Date: now.AddDate(0, 0, -1)},
		{AccountID: bank.ID, Type: account.TransactionExpense, Amount: dec("99"), Date: now.AddDate(0, -1, 0)},
	} {
		_, err := transactions.Create(ctx, userID, in)
		require.NoError(t, err)
	}

	p, err := portfolios.CreateDCA(ctx, userID, "Piano", &bank.ID)
	require.NoError(t, err)
	_, err = portfolios.CreateDCATransaction(ctx, userID, p.ID, portfoliosvc.DCAInput{
		Date: now, BTCQuantity: dec("0.01"), EURPaid: dec("400"),
	})
	require.NoError(t, err)

	d, err := svc.Get(ctx, userID, now)
	require.NoError(t, err)

	// 2000 + 1500 - 300 - 99 - 400
	assert.True(t, d.TotalLiquidity.Equal(dec("2701")), d.TotalLiquidity.String())
	assert.True(t, d.InvestmentBalance.Equal(dec("500")))
	assert.True(t, d.MonthIncome.Equal(dec("1500")))
	assert.True(t, d.MonthExpense.Equal(dec("300")))
	assert.True(t, d.MonthNet.Equal(dec("1200")))
	assert.Equal(t, 1, d.DCA.Count)
	assert.True(t, d.DCA.Invested.Equal(dec("400")))
	assert.True(t, d.DCA.CurrentValue.Equal(dec("500")))
	assert.Equal(t, 0, d.Crypto.Count)
	assert.True(t, d.NetWorth.Equal(dec("3701")), d.NetWorth.String())
	assert.Len(t, d.Accounts, 2)
}
