package account_test

import (
	"testing"

	"github.com/amirasaad/finanze/pkg/domain/account"
	accountsvc "github.com/amirasaad/finanze/pkg/service/account"
	"github.com/amirasaad/finanze/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AccountTestSuite struct {
	testutils.E2ETestSuite
}

func TestAccountTestSuite(t *testing.T) {
	suite.Run(t, new(AccountTestSuite))
}

func (s *AccountTestSuite) TestAccountLifecycle() {
	var created account.Account
	s.Do("POST", "/api/accounts", `{"name":"Conto Principale","type":"bank","balance":"100.50"}`, fiber.StatusCreated, &created)
	s.Equal("Conto Principale", created.Name)
	s.True(created.Balance.Equal(decimal.RequireFromString("100.50")))

	var list []account.Account
	s.Do("GET", "/api/accounts", "", fiber.StatusOK, &list)
	s.Len(list, 1)

	var updated account.Account
	s.Do("PUT", "/api/accounts/"+created.ID.String(), `{"name":"Risparmi","type":"investment"}`, fiber.StatusOK, &updated)
	s.Equal("Risparmi", updated.Name)
	s.Equal(account.TypeInvestment, updated.Type)
	s.True(updated.Balance.Equal(created.Balance), "balance is not editable")

	var rec accountsvc.Reconciliation
	s.Do("POST", "/api/accounts/"+created.ID.String()+"/reconcile", "", fiber.StatusOK, &rec)
	s.True(rec.Drift.IsZero())

	s.Do("DELETE", "/api/accounts/"+created.ID.String(), "", fiber.StatusOK, nil)
	s.Problem("GET", "/api/accounts/"+created.ID.String(), "", fiber.StatusNotFound)
}

func (s *AccountTestSuite) TestCreateAccountValidation() {
	pd := s.Problem("POST", "/api/accounts", `{"name":"","type":"cash"}`, fiber.StatusBadRequest)
	errs, ok := pd.Errors.(map[string]any)
	s.Require().True(ok)
	s.Contains(errs, "Name")
	s.Contains(errs, "Type")

	s.Problem("POST", "/api/accounts", `{"name":`, fiber.StatusBadRequest)
}

func (s *AccountTestSuite) TestOtherUsersAccountIsNotFound() {
	var created account.Account
	s.Do("POST", "/api/accounts", `{"name":"Conto","type":"bank"}`, fiber.StatusCreated, &created)

	resp := s.MakeRequest("GET", "/api/accounts/"+created.ID.String(), "", s.TokenFor(uuid.New()))
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
}

func (s *AccountTestSuite) TestAuthAndIDErrors() {
	testCases := []struct {
		desc       string
		path       string
		token      string
		wantStatus int
	}{
		{desc: "missing token", path: "/api/accounts", wantStatus: fiber.StatusUnauthorized},
		{desc: "invalid token", path: "/api/accounts", token: "not-a-jwt", wantStatus: fiber.StatusUnauthorized},
		{desc: "invalid id", path: "/api/accounts/abc", token: s.Token, wantStatus: fiber.StatusBadRequest},
		{desc: "unknown id", path: "/api/accounts/" + uuid.NewString(), token: s.Token, wantStatus: fiber.StatusNotFound},
	}
	for _, tc := range testCases {
		s.Run(tc.desc, func() {
			resp := s.MakeRequest("GET", tc.path, "", tc.token)
			defer resp.Body.Close() //nolint:errcheck
			s.Equal(tc.wantStatus, resp.StatusCode)
		})
	}
}

func (s *AccountTestSuite) TestCategories() {
	var cat account.Category
	s.Do("POST", "/api/categories", `{"name":"Alimentari","type":"expense","color":"#22c55e"}`, fiber.StatusCreated, &cat)
	s.Problem("POST", "/api/categories", `{"name":"Alimentari","type":"expense"}`, fiber.StatusBadRequest)
	s.Problem("POST", "/api/categories", `{"name":"Altro","type":"expense","color":"verde"}`, fiber.StatusBadRequest)

	var list []account.Category
	s.Do("GET", "/api/categories", "", fiber.StatusOK, &list)
	s.Len(list, 1)

	s.Do("DELETE", "/api/categories/"+cat.ID.String(), "", fiber.StatusOK, nil)
	s.Do("GET", "/api/categories", "", fiber.StatusOK, &list)
	s.Empty(list)
}
