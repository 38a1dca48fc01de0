package budget_test

import (
	"fmt"
	"testing"

	domainbudget "github.com/amirasaad/finanze/pkg/domain/budget"
	"github.com/amirasaad/finanze/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

type BudgetTestSuite struct {
	testutils.E2ETestSuite
}

func TestBudgetTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetTestSuite))
}

func (s *BudgetTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.Do("POST", "/api/accounts", `{"name":"Banca","type":"bank","balance":1000}`, fiber.StatusCreated, nil)
}

func (s *BudgetTestSuite) TestAllocationAndReorder() {
	var emergency, holiday, fun domainbudget.Budget
	s.Do("POST", "/api/budgets", `{"name":"Emergenze","type":"fixed","targetAmount":"700"}`, fiber.StatusCreated, &emergency)
	s.Do("POST", "/api/budgets", `{"name":"Vacanze","type":"fixed","targetAmount":"500"}`, fiber.StatusCreated, &holiday)
	s.Do("POST", "/api/budgets", `{"name":"Svago","type":"unlimited"}`, fiber.StatusCreated, &fun)

	var ov domainbudget.Overview
	s.Do("GET", "/api/budgets", "", fiber.StatusOK, &ov)
	s.Require().Len(ov.Budgets, 3)
	s.Equal("700", ov.Budgets[0].AllocatedAmount.String())
	s.Equal("300", ov.Budgets[1].AllocatedAmount.String())
	s.True(ov.Budgets[1].IsDeficit)
	s.True(ov.Budgets[2].AllocatedAmount.IsZero())
	s.True(ov.TotalAllocated.LessThanOrEqual(ov.TotalLiquidity))

	body := fmt.Sprintf(`{"ids":["%s","%s","%s"]}`, holiday.ID, emergency.ID, fun.ID)
	s.Do("PUT", "/api/budgets/reorder", body, fiber.StatusOK, nil)
	s.Do("GET", "/api/budgets", "", fiber.StatusOK, &ov)
	s.Equal("Vacanze", ov.Budgets[0].Name)
	s.Equal("500", ov.Budgets[0].AllocatedAmount.String())
	s.Equal("500", ov.Budgets[1].AllocatedAmount.String())
	s.True(ov.Budgets[1].IsDeficit)
}

func (s *BudgetTestSuite) TestDuplicateAndReservedNames() {
	s.Do("POST", "/api/budgets", `{"name":"Casa","type":"fixed","targetAmount":"100"}`, fiber.StatusCreated, nil)
	s.Problem("POST", "/api/budgets", `{"name":"Casa","type":"fixed","targetAmount":"100"}`, fiber.StatusBadRequest)
	s.Problem("POST", "/api/budgets", `{"name":"`+domainbudget.TaxReserveName+`","type":"fixed","targetAmount":"1"}`, fiber.StatusBadRequest)
	s.Problem("POST", "/api/budgets", `{"name":"X","type":"weekly"}`, fiber.StatusBadRequest)
}

func (s *BudgetTestSuite) TestUpdateAndDelete() {
	var b domainbudget.Budget
	s.Do("POST", "/api/budgets", `{"name":"Auto","type":"fixed","targetAmount":"100"}`, fiber.StatusCreated, &b)
	s.Do("PUT", "/api/budgets/"+b.ID.String(), `{"name":"Auto","type":"fixed","targetAmount":"250","color":"#0ea5e9"}`, fiber.StatusOK, &b)
	s.Equal("250", b.TargetAmount.String())
	s.Do("DELETE", "/api/budgets/"+b.ID.String(), "", fiber.StatusOK, nil)
	s.Problem("DELETE", "/api/budgets/"+b.ID.String(), "", fiber.StatusNotFound)
}
