package transaction_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/repository"
	accountsvc "github.com/amirasaad/finanze/pkg/service/account"
	txsvc "github.com/amirasaad/finanze/pkg/service/transaction"
	transfersvc "github.com/amirasaad/finanze/pkg/service/transfer"
	"github.com/amirasaad/finanze/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type TransactionServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	uow      repository.UnitOfWork
	svc      *txsvc.Service
	accounts *accountsvc.Service
	userID   uuid.UUID
	bank     *account.Account
}

func (s *TransactionServiceTestSuite) SetupTest() {
	logger := testutils.NewTestLogger()
	s.ctx = context.Background()
	s.uow = testutils.NewTestUoW(s.T())
	s.svc = txsvc.NewService(s.uow, logger)
	s.accounts = accountsvc.NewService(s.uow, logger)
	s.userID = uuid.New()

	var err error
	s.bank, err = s.accounts.CreateAccount(s.ctx, s.userID, "Conto Principale", account.TypeBank, dec("100"))
	s.Require().NoError(err)
}

func (s *TransactionServiceTestSuite) balance(id uuid.UUID) decimal.Decimal {
	a, err := s.accounts.GetAccount(s.ctx, s.userID, id)
	s.Require().NoError(err)
	return a.Balance
}

func (s *TransactionServiceTestSuite) expense(amount string) *account.Transaction {
	tx, err := s.svc.Create(s.ctx, s.userID, txsvc.Input{
		AccountID: s.bank.ID,
		Type:      account.TransactionExpense,
		Amount:    dec(amount),
		Date:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	return tx
}

func (s *TransactionServiceTestSuite) TestCreateAndDeleteRestoresBalance() {
	tx := s.expense("15.50")
	s.True(s.balance(s.bank.ID).Equal(dec("84.5")))

	s.Require().NoError(s.svc.Delete(s.ctx, s.userID, tx.ID))
	s.True(s.balance(s.bank.ID).Equal(dec("100")))
}

func (s *TransactionServiceTestSuite) TestExpenseMayOverdraw() {
	s.expense("150")
	s.True(s.balance(s.bank.ID).Equal(dec("-50")))
}

func (s *TransactionServiceTestSuite) TestUpdateMovesEffect() {
	other, err := s.accounts.CreateAccount(s.ctx, s.userID, "Carta", account.TypeBank, decimal.Zero)
	s.Require().NoError(err)
	tx := s.expense("30")

	_, err = s.svc.Update(s.ctx, s.userID, tx.ID, txsvc.Input{
		AccountID: other.ID,
		Type:      account.TransactionIncome,
		Amount:    dec("10"),
		Date:      tx.Date,
	})
	s.Require().NoError(err)
	s.True(s.balance(s.bank.ID).Equal(dec("100")))
	s.True(s.balance(other.ID).Equal(dec("10")))

	_, err = s.svc.Update(s.ctx, s.userID, tx.ID, txsvc.Input{
		AccountID: other.ID,
		Type:      account.TransactionIncome,
		Amount:    decimal.Zero,
		Date:      tx.Date,
	})
	s.ErrorIs(err, domain.ErrValidation)
	s.True(s.balance(other.ID).Equal(dec("10")))
}

func (s *TransactionServiceTestSuite) TestCategoryTypeMustMatch() {
	c, err := s.accounts.CreateCategory(s.ctx, s.userID, "Stipendio", account.TransactionIncome, "")
	s.Require().NoError(err)
	_, err = s.svc.Create(s.ctx, s.userID, txsvc.Input{
		AccountID:  s.bank.ID,
		CategoryID: &c.ID,
		Type:       account.TransactionExpense,
		Amount:     dec("1"),
		Date:       time.Now(),
	})
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestForeignAccountRejected() {
	_, err := s.svc.Create(s.ctx, uuid.New(), txsvc.Input{
		AccountID: s.bank.ID,
		Type:      account.TransactionIncome,
		Amount:    dec("1"),
		Date:      time.Now(),
	})
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *TransactionServiceTestSuite) TestDeleteMany() {
	a := s.expense("10")
	b := s.expense("20")

	_, err := s.svc.DeleteMany(s.ctx, s.userID, []uuid.UUID{a.ID, uuid.New()})
	s.ErrorIs(err, domain.ErrNotFound)
	s.True(s.balance(s.bank.ID).Equal(dec("70")))

	n, err := s.svc.DeleteMany(s.ctx, s.userID, []uuid.UUID{a.ID, b.ID})
	s.Require().NoError(err)
	s.Equal(2, n)
	s.True(s.balance(s.bank.ID).Equal(dec("100")))
}

func (s *TransactionServiceTestSuite) TestListFilters() {
	s.expense("10")
	_, err := s.svc.Create(s.ctx, s.userID, txsvc.Input{
		AccountID: s.bank.ID,
		Type:      account.TransactionIncome,
		Amount:    dec("5"),
		Date:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)

	page, err := s.svc.List(s.ctx, s.userID, repository.TransactionFilter{Type: account.TransactionIncome})
	s.Require().NoError(err)
	s.Equal(int64(1), page.Total)

	page, err = s.svc.List(s.ctx, s.userID, repository.TransactionFilter{Limit: 1})
	s.Require().NoError(err)
	s.Equal(int64(2), page.Total)
	s.Require().Len(page.Transactions, 1)
	s.Equal(account.TransactionIncome, page.Transactions[0].Type)
}

func (s *TransactionServiceTestSuite) TestGainTransactionIsManagedByTransfer() {
	broker, err := s.accounts.CreateAccount(s.ctx, s.userID, "Broker", account.TypeInvestment, dec("500"))
	s.Require().NoError(err)
	tr, err := transfersvc.NewService(s.uow, testutils.NewTestLogger()).Create(s.ctx, s.userID, transfersvc.Input{
		FromAccountID: broker.ID,
		ToAccountID:   s.bank.ID,
		Amount:        dec("100"),
		GainAmount:    decimal.NewNullDecimal(dec("20")),
		Date:          time.Now(),
	})
	s.Require().NoError(err)
	s.Require().NotNil(tr.GainTransactionID)

	err = s.svc.Delete(s.ctx, s.userID, *tr.GainTransactionID)
	s.ErrorIs(err, domain.ErrInvalidState)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func TestCreate_InvalidInput(t *testing.T) {
	svc := txsvc.NewService(testutils.NewTestUoW(t), testutils.NewTestLogger())
	_, err := svc.Create(context.Background(), uuid.New(), txsvc.Input{Type: account.TransactionExpense})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
