package portfolio

import (
	"github.com/amirasaad/finanze/pkg/domain"
	portfoliosvc "github.com/amirasaad/finanze/pkg/service/portfolio"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func toSwapInput(r *SwapRequest) (portfoliosvc.SwapInput, error) {
	in := portfoliosvc.SwapInput{
		FromQuantity: r.FromQuantity,
		ToQuantity:   r.ToQuantity,
		Notes:        r.Notes,
	}
	var err error
	if in.FromAssetID, err = uuid.Parse(r.FromAssetID); err != nil {
		return in, domain.Invalid("asset di origine non valido")
	}
	if in.ToAssetID, err = uuid.Parse(r.ToAssetID); err != nil {
		return in, domain.Invalid("asset di destinazione non valido")
	}
	in.Date, err = common.ParseDate(r.Date)
	return in, err
}

// CreateSwap returns a Fiber handler exchanging one asset for another. The
// received asset inherits the given asset's average cost.
// @Summary Swap two assets
// @Tags crypto
// @Accept json
// @Produce json
// @Param id path string true "Portfolio ID"
// @Param request body SwapRequest true "Swap"
// @Success 201 {object} common.Response "Swap created"
// @Failure 400 {object} common.ProblemDetails "Invalid request or insufficient holdings"
// @Router /api/crypto-portfolios/{id}/swaps [post]
// @Security Bearer
func CreateSwap(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		req, err := common.BindAndValidate[SwapRequest](c)
		if req == nil {
			return err
		}
		in, err := toSwapInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		sw, err := svc.CreateSwap(c.Context(), userID, id, in)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eseguire lo swap", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Swap created", sw)
	}
}

// @Summary Delete a swap
// @Tags crypto
// @Param id path string true "Portfolio ID"
// @Param swapPairId path string true "Swap pair ID"
// @Success 200 {object} common.Response "Swap deleted"
// @Router /api/crypto-portfolios/{id}/swaps/{swapPairId} [delete]
// @Security Bearer
func DeleteSwap(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		pairID, err := common.ParamID(c, "swapPairId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := svc.DeleteSwap(c.Context(), userID, id, pairID); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare lo swap", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Swap deleted", nil)
	}
}

// @Summary List trades
// @Tags trades
// @Produce json
// @Param id path string true "Portfolio ID"
// @Success 200 {object} common.Response "Trades fetched"
// @Router /api/crypto-portfolios/{id}/trades [get]
// @Security Bearer
func ListTrades(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		trades, err := svc.ListTrades(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile caricare i trade", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Trades fetched", trades)
	}
}

// OpenTrade returns a Fiber handler opening a trade with its opening swap.
// @Summary Open a trade
// @Tags trades
// @Accept json
// @Produce json
// @Param id path string true "Portfolio ID"
// @Param request body SwapRequest true "Opening swap"
// @Success 201 {object} common.Response "Trade opened"
// @Router /api/crypto-portfolios/{id}/trades [post]
// @Security Bearer
func OpenTrade(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		req, err := common.BindAndValidate[SwapRequest](c)
		if req == nil {
			return err
		}
		in, err := toSwapInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		sw, err := svc.OpenTrade(c.Context(), userID, id, in)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile aprire il trade", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Trade opened", sw)
	}
}

// CloseTrade returns a Fiber handler swapping the traded asset back and
// booking the trade's profit or loss.
// @Summary Close a trade
// @Tags trades
// @Accept json
// @Produce json
// @Param id path string true "Trade ID"
// @Param request body CloseTradeRequest true "Received quantity"
// @Success 200 {object} common.Response "Trade closed"
// @Failure 400 {object} common.ProblemDetails "Trade already closed"
// @Router /api/crypto-trades/{id}/close [post]
// @Security Bearer
func CloseTrade(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		req, err := common.BindAndValidate[CloseTradeRequest](c)
		if req == nil {
			return err
		}
		date, err := common.ParseDate(req.Date)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Data non valida", err)
		}
		sw, err := svc.CloseTrade(c.Context(), userID, id, req.ReceivedQuantity, date)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile chiudere il trade", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Trade closed", sw)
	}
}

// @Summary Delete a trade
// @Tags trades
// @Param id path string true "Trade ID"
// @Success 200 {object} common.Response "Trade deleted"
// @Router /api/crypto-trades/{id} [delete]
// @Security Bearer
func DeleteTrade(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := svc.DeleteTrade(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare il trade", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Trade deleted", nil)
	}
}
