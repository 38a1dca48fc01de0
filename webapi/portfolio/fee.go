package portfolio

import (
	portfoliosvc "github.com/amirasaad/finanze/pkg/service/portfolio"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func toFeeInput(r *FeeRequest) (portfoliosvc.FeeInput, error) {
	in := portfoliosvc.FeeInput{
		Quantity:    r.Quantity,
		EURValue:    r.EURValue,
		Description: r.Description,
	}
	var err error
	if in.DCAPortfolioID, err = common.OptionalUUID(r.DCAPortfolioID); err != nil {
		return in, err
	}
	if in.CryptoPortfolioID, err = common.OptionalUUID(r.CryptoPortfolioID); err != nil {
		return in, err
	}
	if in.AssetID, err = common.OptionalUUID(r.AssetID); err != nil {
		return in, err
	}
	in.Date, err = common.ParseDate(r.Date)
	return in, err
}

// @Summary List network fees
// @Tags fees
// @Produce json
// @Success 200 {object} common.Response "Fees fetched"
// @Router /api/network-fees [get]
// @Security Bearer
func ListFees(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		fees, err := svc.ListFees(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile caricare le commissioni", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Fees fetched", fees)
	}
}

// CreateFee returns a Fiber handler recording an on-chain fee. It reduces
// the holding's quantity and cost basis without any proceeds.
// @Summary Record a network fee
// @Tags fees
// @Accept json
// @Produce json
// @Param request body FeeRequest true "Fee"
// @Success 201 {object} common.Response "Fee created"
// @Failure 400 {object} common.ProblemDetails "Invalid request or insufficient holdings"
// @Router /api/network-fees [post]
// @Security Bearer
func CreateFee(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		req, err := common.BindAndValidate[FeeRequest](c)
		if req == nil {
			return err
		}
		in, err := toFeeInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		f, err := svc.CreateFee(c.Context(), userID, in)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile registrare la commissione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Fee created", f)
	}
}

// @Summary Delete a network fee
// @Tags fees
// @Param id path string true "Fee ID"
// @Success 200 {object} common.Response "Fee deleted"
// @Router /api/network-fees/{id} [delete]
// @Security Bearer
func DeleteFee(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := svc.DeleteFee(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare la commissione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Fee deleted", nil)
	}
}
