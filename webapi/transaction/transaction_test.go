package transaction_test

import (
	"fmt"
	"testing"

	"github.com/amirasaad/finanze/pkg/domain/account"
	txsvc "github.com/amirasaad/finanze/pkg/service/transaction"
	"github.com/amirasaad/finanze/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionTestSuite struct {
	testutils.E2ETestSuite
	bank   account.Account
	broker account.Account
}

func TestTransactionTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionTestSuite))
}

func (s *TransactionTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.Do("POST", "/api/accounts", `{"name":"Banca","type":"bank","balance":1000}`, fiber.StatusCreated, &s.bank)
	s.Do("POST", "/api/accounts", `{"name":"Broker","type":"investment"}`, fiber.StatusCreated, &s.broker)
}

func (s *TransactionTestSuite) balance(id fmt.Stringer) decimal.Decimal {
	var a account.Account
	s.Do("GET", "/api/accounts/"+id.String(), "", fiber.StatusOK, &a)
	return a.Balance
}

func (s *TransactionTestSuite) TestTransactionLifecycle() {
	body := fmt.Sprintf(`{"accountId":"%s","type":"expense","amount":"15.50","description":"Spesa","date":"2024-01-31"}`, s.bank.ID)
	var tx account.Transaction
	s.Do("POST", "/api/transactions", body, fiber.StatusCreated, &tx)
	s.Equal("984.5", s.balance(s.bank.ID).String())

	body = fmt.Sprintf(`{"accountId":"%s","type":"income","amount":"100","date":"2024-02-01"}`, s.bank.ID)
	s.Do("PUT", "/api/transactions/"+tx.ID.String(), body, fiber.StatusOK, nil)
	s.Equal("1100", s.balance(s.bank.ID).String())

	var page txsvc.Page
	s.Do("GET", "/api/transactions?type=income&from=2024-02-01&to=2024-02-01", "", fiber.StatusOK, &page)
	s.EqualValues(1, page.Total)
	s.Do("GET", "/api/transactions?type=expense", "", fiber.StatusOK, &page)
	s.EqualValues(0, page.Total)

	s.Do("DELETE", "/api/transactions/"+tx.ID.String(), "", fiber.StatusOK, nil)
	s.Equal("1000", s.balance(s.bank.ID).String())
}

func (s *TransactionTestSuite) TestBulkDelete() {
	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"accountId":"%s","type":"expense","amount":"%d","date":"2024-03-0%d"}`, s.bank.ID, 10*(i+1), i+1)
		var tx account.Transaction
		s.Do("POST", "/api/transactions", body, fiber.StatusCreated, &tx)
		ids = append(ids, `"`+tx.ID.String()+`"`)
	}
	s.Equal("940", s.balance(s.bank.ID).String())

	var res struct {
		Deleted int `json:"deleted"`
	}
	s.Do("DELETE", "/api/transactions", fmt.Sprintf(`{"ids":[%s,%s]}`, ids[0], ids[1]), fiber.StatusOK, &res)
	s.Equal(2, res.Deleted)
	s.Equal("970", s.balance(s.bank.ID).String())

	s.Problem("DELETE", "/api/transactions", `{"ids":["nope"]}`, fiber.StatusBadRequest)
}

func (s *TransactionTestSuite) TestInvalidFilter() {
	s.Problem("GET", "/api/transactions?from=31/01/2024", "", fiber.StatusBadRequest)
	s.Problem("GET", "/api/transactions?limit=-1", "", fiber.StatusBadRequest)
	s.Problem("GET", "/api/transactions?accountId=x", "", fiber.StatusBadRequest)
}

func (s *TransactionTestSuite) TestTransferWithGain() {
	body := fmt.Sprintf(`{"fromAccountId":"%s","toAccountId":"%s","amount":"200","gainAmount":"20","date":"2024-04-01"}`,
		s.bank.ID, s.broker.ID)
	var t account.Transfer
	s.Do("POST", "/api/transfers", body, fiber.StatusCreated, &t)
	s.Require().NotNil(t.GainTransactionID)
	s.Equal("800", s.balance(s.bank.ID).String())
	s.Equal("220", s.balance(s.broker.ID).String())

	var list []account.Transfer
	s.Do("GET", "/api/transfers", "", fiber.StatusOK, &list)
	s.Len(list, 1)

	s.Do("DELETE", "/api/transfers/"+t.ID.String(), "", fiber.StatusOK, nil)
	s.Equal("1000", s.balance(s.bank.ID).String())
	s.True(s.balance(s.broker.ID).IsZero())
}

func (s *TransactionTestSuite) TestTransferInsufficientFunds() {
	body := fmt.Sprintf(`{"fromAccountId":"%s","toAccountId":"%s","amount":"5000","date":"2024-04-01"}`,
		s.bank.ID, s.broker.ID)
	pd := s.Problem("POST", "/api/transfers", body, fiber.StatusBadRequest)
	errs, ok := pd.Errors.(map[string]any)
	s.Require().True(ok)
	s.Equal("4000", errs["deficit"])
	s.Equal("1000", s.balance(s.bank.ID).String())
}
