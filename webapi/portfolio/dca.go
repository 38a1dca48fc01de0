package portfolio

import (
	portfoliosvc "github.com/amirasaad/finanze/pkg/service/portfolio"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

func toDCAInput(r *DCATransactionRequest) (portfoliosvc.DCAInput, error) {
	date, err := common.ParseDate(r.Date)
	return portfoliosvc.DCAInput{
		Date:        date,
		Broker:      r.Broker,
		Info:        r.Info,
		BTCQuantity: r.BTCQuantity,
		EURPaid:     r.EURPaid,
	}, err
}

// @Summary List DCA portfolios
// @Tags dca
// @Produce json
// @Success 200 {object} common.Response "DCA portfolios fetched"
// @Router /api/dca-portfolios [get]
// @Security Bearer
func ListDCA(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		views, err := svc.ListDCA(c.Context(), userID)
		if err != nil {
			log.Errorf("Failed to list DCA portfolios: %v", err)
			return common.ProblemDetailsJSON(c, "Impossibile caricare i portafogli DCA", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "DCA portfolios fetched", views)
	}
}

// @Summary Create a DCA portfolio
// @Tags dca
// @Accept json
// @Produce json
// @Param request body DCAPortfolioRequest true "Portfolio"
// @Success 201 {object} common.Response "DCA portfolio created"
// @Router /api/dca-portfolios [post]
// @Security Bearer
func CreateDCA(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		req, err := common.BindAndValidate[DCAPortfolioRequest](c)
		if req == nil {
			return err
		}
		accountID, err := common.OptionalUUID(req.AccountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		p, err := svc.CreateDCA(c.Context(), userID, req.Name, accountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile creare il portafoglio", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "DCA portfolio created", p)
	}
}

// @Summary Get a DCA portfolio
// @Tags dca
// @Produce json
// @Param id path string true "Portfolio ID"
// @Success 200 {object} common.Response "DCA portfolio fetched"
// @Failure 404 {object} common.ProblemDetails "Portfolio not found"
// @Router /api/dca-portfolios/{id} [get]
// @Security Bearer
func GetDCA(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		view, err := svc.GetDCA(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Portafoglio non trovato", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "DCA portfolio fetched", view)
	}
}

// UpdateDCA returns a Fiber handler renaming or relinking a DCA portfolio.
// Relinking moves the net cash effect of its transactions to the new
// account.
// @Summary Update a DCA portfolio
// @Tags dca
// @Accept json
// @Produce json
// @Param id path string true "Portfolio ID"
// @Param request body DCAPortfolioRequest true "Portfolio"
// @Success 200 {object} common.Response "DCA portfolio updated"
// @Router /api/dca-portfolios/{id} [put]
// @Security Bearer
func UpdateDCA(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		req, err := common.BindAndValidate[DCAPortfolioRequest](c)
		if req == nil {
			return err
		}
		accountID, err := common.OptionalUUID(req.AccountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		p, err := svc.UpdateDCA(c.Context(), userID, id, req.Name, accountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile aggiornare il portafoglio", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "DCA portfolio updated", p)
	}
}

// @Summary Delete a DCA portfolio
// @Tags dca
// @Param id path string true "Portfolio ID"
// @Success 200 {object} common.Response "DCA portfolio deleted"
// @Router /api/dca-portfolios/{id} [delete]
// @Security Bearer
func DeleteDCA(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := svc.DeleteDCA(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare il portafoglio", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "DCA portfolio deleted", nil)
	}
}

// @Summary DCA portfolio stats
// @Tags dca
// @Produce json
// @Param id path string true "Portfolio ID"
// @Success 200 {object} common.Response "DCA stats fetched"
// @Router /api/dca-portfolios/{id}/stats [get]
// @Security Bearer
func DCAStats(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		stats, err := svc.DCAStats(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile calcolare le statistiche", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "DCA stats fetched", stats)
	}
}

// @Summary Record a DCA transaction
// @Tags dca
// @Accept json
// @Produce json
// @Param id path string true "Portfolio ID"
// @Param request body DCATransactionRequest true "Transaction"
// @Success 201 {object} common.Response "DCA transaction created"
// @Failure 400 {object} common.ProblemDetails "Invalid request or insufficient funds"
// @Router /api/dca-portfolios/{id}/transactions [post]
// @Security Bearer
func CreateDCATransaction(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		req, err := common.BindAndValidate[DCATransactionRequest](c)
		if req == nil {
			return err
		}
		in, err := toDCAInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Data non valida", err)
		}
		tx, err := svc.CreateDCATransaction(c.Context(), userID, id, in)
		if err != nil {
			log.Errorf("Failed to record DCA transaction: %v", err)
			return common.ProblemDetailsJSON(c, "Impossibile registrare la transazione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "DCA transaction created", tx)
	}
}

// @Summary Update a DCA transaction
// @Tags dca
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body DCATransactionRequest true "Transaction"
// @Success 200 {object} common.Response "DCA transaction updated"
// @Router /api/dca-transactions/{id} [put]
// @Security Bearer
func UpdateDCATransaction(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		req, err := common.BindAndValidate[DCATransactionRequest](c)
		if req == nil {
			return err
		}
		in, err := toDCAInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Data non valida", err)
		}
		tx, err := svc.UpdateDCATransaction(c.Context(), userID, id, in)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile aggiornare la transazione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "DCA transaction updated", tx)
	}
}

// @Summary Delete a DCA transaction
// @Tags dca
// @Param id path string true "Transaction ID"
// @Success 200 {object} common.Response "DCA transaction deleted"
// @Router /api/dca-transactions/{id} [delete]
// @Security Bearer
func DeleteDCATransaction(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := svc.DeleteDCATransaction(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare la transazione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "DCA transaction deleted", nil)
	}
}
