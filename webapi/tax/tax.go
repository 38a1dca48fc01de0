// Package tax exposes the Partita IVA endpoints.
package tax

import (
	"strconv"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/domain"
	domaintax "github.com/amirasaad/finanze/pkg/domain/tax"
	"github.com/amirasaad/finanze/pkg/middleware"
	taxsvc "github.com/amirasaad/finanze/pkg/service/tax"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the Partita IVA endpoints.
//
// Routes:
//   - GET    /api/partita-iva/config          : All yearly configurations.
//   - GET    /api/partita-iva/config/:year    : One year's configuration.
//   - POST   /api/partita-iva/config          : Create a year's configuration.
//   - PUT    /api/partita-iva/config/:year    : Change a year's rates.
//   - GET    /api/partita-iva/income?year=    : Incomes with their breakdown.
//   - POST   /api/partita-iva/income          : Record an income.
//   - DELETE /api/partita-iva/income/:id      : Delete an income.
//   - GET    /api/partita-iva/payments?year=  : Tax payments.
//   - POST   /api/partita-iva/payments        : Record a payment.
//   - DELETE /api/partita-iva/payments/:id    : Delete a payment.
//   - GET    /api/partita-iva/summary/:year   : Yearly totals.
func Routes(app *fiber.App, taxSvc *taxsvc.Service, authSvc common.UserIDResolver, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	g := app.Group("/api/partita-iva", protected)
	g.Get("/config", ListConfigs(taxSvc, authSvc))
	g.Get("/config/:year", GetConfig(taxSvc, authSvc))
	g.Post("/config", CreateConfig(taxSvc, authSvc))
	g.Put("/config/:year", UpdateConfig(taxSvc, authSvc))
	g.Get("/income", ListIncomes(taxSvc, authSvc))
	g.Post("/income", CreateIncome(taxSvc, authSvc))
	g.Delete("/income/:id", DeleteIncome(taxSvc, authSvc))
	g.Get("/payments", ListPayments(taxSvc, authSvc))
	g.Post("/payments", CreatePayment(taxSvc, authSvc))
	g.Delete("/payments/:id", DeletePayment(taxSvc, authSvc))
	g.Get("/summary/:year", Summary(taxSvc, authSvc))
}

func paramYear(c *fiber.Ctx) (int, error) {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil || year < 2000 || year > 2100 {
		return 0, domain.Invalid("anno non valido: %q", c.Params("year"))
	}
	return year, nil
}

func rates(r *ConfigRequest) taxsvc.Rates {
	return taxsvc.Rates{
		TaxRate:                  r.TaxRate,
		INPSRate:                 r.INPSRate,
		ProfitabilityCoefficient: r.ProfitabilityCoefficient,
	}
}

// @Summary List Partita IVA configurations
// @Tags partita-iva
// @Produce json
// @Success 200 {object} common.Response "Configurations fetched"
// @Router /api/partita-iva/config [get]
// @Security Bearer
func ListConfigs(taxSvc *taxsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		configs, err := taxSvc.ListConfigs(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile caricare le configurazioni", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Configurations fetched", configs)
	}
}

// @Summary Get a year's Partita IVA configuration
// @Tags partita-iva
// @Produce json
// @Param year path int true "Year"
// @Success 200 {object} common.Response "Configuration fetched"
// @Failure 404 {object} common.ProblemDetails "Configuration not found"
// @Router /api/partita-iva/config/{year} [get]
// @Security Bearer
func GetConfig(taxSvc *taxsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		year, err := paramYear(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Anno non valido", err)
		}
		cfg, err := taxSvc.GetConfig(c.Context(), userID, year)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Configurazione non trovata", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Configuration fetched", cfg)
	}
}

// @Summary Create a year's Partita IVA configuration
// @Tags partita-iva
// @Accept json
// @Produce json
// @Param request body ConfigRequest true "Rates"
// @Success 201 {object} common.Response "Configuration created"
// @Failure 400 {object} common.ProblemDetails "Invalid rates or year already configured"
// @Router /api/partita-iva/config [post]
// @Security Bearer
func CreateConfig(taxSvc *taxsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		req, err := common.BindAndValidate[ConfigRequest](c)
		if req == nil {
			return err
		}
		if req.Year == 0 {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", domain.Invalid("anno obbligatorio"))
		}
		cfg, err := taxSvc.CreateConfig(c.Context(), userID, req.Year, rates(req))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile creare la configurazione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Configuration created", cfg)
	}
}

// UpdateConfig returns a Fiber handler changing a year's rates. The tax
// reserve is re-synced with the new rates.
// @Summary Update a year's Partita IVA configuration
// @Tags partita-iva
// @Accept json
// @Produce json
// @Param year path int true "Year"
// @Param request body ConfigRequest true "Rates"
// @Success 200 {object} common.Response "Configuration updated"
// @Router /api/partita-iva/config/{year} [put]
// @Security Bearer
func UpdateConfig(taxSvc *taxsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		year, err := paramYear(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Anno non valido", err)
		}
		req, err := common.BindAndValidate[ConfigRequest](c)
		if req == nil {
			return err
		}
		cfg, err := taxSvc.UpdateConfig(c.Context(), userID, year, rates(req))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile aggiornare la configurazione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Configuration updated", cfg)
	}
}

// @Summary List incomes
// @Tags partita-iva
// @Produce json
// @Param year query int false "Year, all years when omitted"
// @Success 200 {object} common.Response "Incomes fetched"
// @Router /api/partita-iva/income [get]
// @Security Bearer
func ListIncomes(taxSvc *taxsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		year, err := common.QueryInt(c, "year")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Anno non valido", err)
		}
		incomes, err := taxSvc.ListIncomes(c.Context(), userID, year)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile caricare gli incassi", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Incomes fetched", incomes)
	}
}

// CreateIncome returns a Fiber handler recording an invoiced revenue. The
// date's year must have a configuration.
// @Summary Record an income
// @Tags partita-iva
// @Accept json
// @Produce json
// @Param request body IncomeRequest true "Income"
// @Success 201 {object} common.Response "Income created"
// @Failure 400 {object} common.ProblemDetails "Invalid request or year not configured"
// @Router /api/partita-iva/income [post]
// @Security Bearer
func CreateIncome(taxSvc *taxsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		req, err := common.BindAndValidate[IncomeRequest](c)
		if req == nil {
			return err
		}
		date, err := common.ParseDate(req.Date)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Data non valida", err)
		}
		income, err := taxSvc.CreateIncome(c.Context(), userID, date, req.Description, req.Amount)
		if err != nil {
			log.Errorf("Failed to record income: %v", err)
			return common.ProblemDetailsJSON(c, "Impossibile registrare l'incasso", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Income created", income)
	}
}

// @Summary Delete an income
// @Tags partita-iva
// @Param id path string true "Income ID"
// @Success 200 {object} common.Response "Income deleted"
// @Router /api/partita-iva/income/{id} [delete]
// @Security Bearer
func DeleteIncome(taxSvc *taxsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := taxSvc.DeleteIncome(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare l'incasso", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Income deleted", nil)
	}
}

// @Summary List tax payments
// @Tags partita-iva
// @Produce json
// @Param year query int false "Year, all years when omitted"
// @Success 200 {object} common.Response "Payments fetched"
// @Router /api/partita-iva/payments [get]
// @Security Bearer
func ListPayments(taxSvc *taxsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		year, err := common.QueryInt(c, "year")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Anno non valido", err)
		}
		payments, err := taxSvc.ListPayments(c.Context(), userID, year)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile caricare i pagamenti", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payments fetched", payments)
	}
}

// @Summary Record a tax payment
// @Tags partita-iva
// @Accept json
// @Produce json
// @Param request body PaymentRequest true "Payment"
// @Success 201 {object} common.Response "Payment created"
// @Router /api/partita-iva/payments [post]
// @Security Bearer
func CreatePayment(taxSvc *taxsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		req, err := common.BindAndValidate[PaymentRequest](c)
		if req == nil {
			return err
		}
		date, err := common.ParseDate(req.Date)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Data non valida", err)
		}
		p, err := taxSvc.CreatePayment(
			c.Context(), userID, req.Year, date, req.Description, req.Amount, domaintax.PaymentType(req.Type),
		)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile registrare il pagamento", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Payment created", p)
	}
}

// @Summary Delete a tax payment
// @Tags partita-iva
// @Param id path string true "Payment ID"
// @Success 200 {object} common.Response "Payment deleted"
// @Router /api/partita-iva/payments/{id} [delete]
// @Security Bearer
func DeletePayment(taxSvc *taxsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := taxSvc.DeletePayment(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare il pagamento", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payment deleted", nil)
	}
}

// Summary returns a Fiber handler with the year's totals: income, taxable
// base, tax, INPS, due, paid and remaining.
// @Summary Yearly Partita IVA summary
// @Tags partita-iva
// @Produce json
// @Param year path int true "Year"
// @Success 200 {object} common.Response "Summary fetched"
// @Router /api/partita-iva/summary/{year} [get]
// @Security Bearer
func Summary(taxSvc *taxsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		year, err := paramYear(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Anno non valido", err)
		}
		sum, err := taxSvc.Summary(c.Context(), userID, year)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile calcolare il riepilogo", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Summary fetched", sum)
	}
}
