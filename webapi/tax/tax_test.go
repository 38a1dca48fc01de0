package tax_test

import (
	"testing"

	domainbudget "github.com/amirasaad/finanze/pkg/domain/budget"
	domaintax "github.com/amirasaad/finanze/pkg/domain/tax"
	"github.com/amirasaad/finanze/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

type TaxTestSuite struct {
	testutils.E2ETestSuite
}

func TestTaxTestSuite(t *testing.T) {
	suite.Run(t, new(TaxTestSuite))
}

const config2024 = `{"year":2024,"taxRate":"15","inpsRate":"26.07","profitabilityCoefficient":"78"}`

func (s *TaxTestSuite) reserve() *domainbudget.Allocation {
	var ov domainbudget.Overview
	s.Do("GET", "/api/budgets", "", fiber.StatusOK, &ov)
	for i := range ov.Budgets {
		if ov.Budgets[i].IsTaxReserve {
			return &ov.Budgets[i]
		}
	}
	return nil
}

func (s *TaxTestSuite) TestConfigs() {
	var cfg domaintax.Config
	s.Do("POST", "/api/partita-iva/config", config2024, fiber.StatusCreated, &cfg)
	s.Equal(2024, cfg.Year)
	s.Problem("POST", "/api/partita-iva/config", config2024, fiber.StatusBadRequest)
	s.Problem("POST", "/api/partita-iva/config", `{"taxRate":"5"}`, fiber.StatusBadRequest)
	s.Problem("POST", "/api/partita-iva/config", `{"year":2025,"taxRate":"150"}`, fiber.StatusBadRequest)

	s.Do("PUT", "/api/partita-iva/config/2024", `{"taxRate":"5","inpsRate":"26.07","profitabilityCoefficient":"78"}`, fiber.StatusOK, &cfg)
	s.Equal("5", cfg.TaxRate.String())

	var got domaintax.Config
	s.Do("GET", "/api/partita-iva/config/2024", "", fiber.StatusOK, &got)
	s.Equal(cfg.ID, got.ID)
	s.Problem("GET", "/api/partita-iva/config/2023", "", fiber.StatusNotFound)
	s.Problem("GET", "/api/partita-iva/config/abc", "", fiber.StatusBadRequest)

	var all []domaintax.Config
	s.Do("GET", "/api/partita-iva/config", "", fiber.StatusOK, &all)
	s.Len(all, 1)
}

func (s *TaxTestSuite) TestIncomePaymentsAndReserve() {
	s.Do("POST", "/api/partita-iva/config", config2024, fiber.StatusCreated, nil)
	s.Problem("POST", "/api/partita-iva/income", `{"date":"2023-05-01","amount":"100"}`, fiber.StatusBadRequest)

	var income domaintax.IncomeView
	s.Do("POST", "/api/partita-iva/income", `{"date":"2024-05-01","description":"Fattura 1","amount":"10000"}`, fiber.StatusCreated, &income)
	s.Equal("7800", income.Breakdown.TaxableAmount.String())
	s.Equal("3203.46", income.Breakdown.TotalTax.String())

	reserve := s.reserve()
	s.Require().NotNil(reserve)
	s.Equal(domainbudget.TaxReserveName, reserve.Name)
	s.Equal("3203.46", reserve.TargetAmount.String())

	var payment domaintax.Payment
	s.Do("POST", "/api/partita-iva/payments", `{"date":"2024-06-30","amount":"1000","type":"imposta"}`, fiber.StatusCreated, &payment)
	s.Equal(2024, payment.Year)
	s.Problem("POST", "/api/partita-iva/payments", `{"date":"2024-06-30","amount":"1","type":"multa"}`, fiber.StatusBadRequest)

	var sum domaintax.Summary
	s.Do("GET", "/api/partita-iva/summary/2024", "", fiber.StatusOK, &sum)
	s.Equal("10000", sum.Income.String())
	s.Equal("1000", sum.Paid.String())
	s.Equal("2203.46", sum.Remaining.String())
	s.Equal("2203.46", s.reserve().TargetAmount.String())

	var incomes []domaintax.IncomeView
	s.Do("GET", "/api/partita-iva/income?year=2024", "", fiber.StatusOK, &incomes)
	s.Len(incomes, 1)
	var payments []domaintax.Payment
	s.Do("GET", "/api/partita-iva/payments?year=2024", "", fiber.StatusOK, &payments)
	s.Len(payments, 1)

	s.Do("DELETE", "/api/partita-iva/income/"+income.ID.String(), "", fiber.StatusOK, nil)
	s.Do("DELETE", "/api/partita-iva/payments/"+payment.ID.String(), "", fiber.StatusOK, nil)
	s.True(s.reserve().TargetAmount.IsZero())
}
