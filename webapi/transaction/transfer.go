package transaction

import (
	"github.com/amirasaad/finanze/pkg/domain"
	transfersvc "github.com/amirasaad/finanze/pkg/service/transfer"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

func toTransferInput(r *TransferRequest) (transfersvc.Input, error) {
	in := transfersvc.Input{
		Amount:      r.Amount,
		GainAmount:  r.GainAmount,
		Description: r.Description,
	}
	var err error
	if in.FromAccountID, err = uuid.Parse(r.FromAccountID); err != nil {
		return in, domain.Invalid("conto di origine non valido")
	}
	if in.ToAccountID, err = uuid.Parse(r.ToAccountID); err != nil {
		return in, domain.Invalid("conto di destinazione non valido")
	}
	in.Date, err = common.ParseDate(r.Date)
	return in, err
}

// @Summary List transfers
// @Tags transfers
// @Produce json
// @Success 200 {object} common.Response "Transfers fetched"
// @Router /api/transfers [get]
// @Security Bearer
func ListTransfers(transferSvc *transfersvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		transfers, err := transferSvc.List(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile caricare i trasferimenti", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfers fetched", transfers)
	}
}

// CreateTransfer returns a Fiber handler moving money between two of the
// user's accounts. The source must hold at least the amount.
// @Summary Create a transfer
// @Tags transfers
// @Accept json
// @Produce json
// @Param request body TransferRequest true "Transfer details"
// @Success 201 {object} common.Response "Transfer created"
// @Failure 400 {object} common.ProblemDetails "Invalid request or insufficient funds"
// @Router /api/transfers [post]
// @Security Bearer
func CreateTransfer(transferSvc *transfersvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		req, err := common.BindAndValidate[TransferRequest](c)
		if req == nil {
			return err
		}
		in, err := toTransferInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		log.Infof("Transfer handler: user %s, from %s, to %s, amount %s", userID, in.FromAccountID, in.ToAccountID, in.Amount)
		t, err := transferSvc.Create(c.Context(), userID, in)
		if err != nil {
			log.Errorf("Failed to transfer: %v", err)
			return common.ProblemDetailsJSON(c, "Impossibile eseguire il trasferimento", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transfer created", t)
	}
}

// @Summary Update a transfer
// @Tags transfers
// @Accept json
// @Produce json
// @Param id path string true "Transfer ID"
// @Param request body TransferRequest true "Transfer details"
// @Success 200 {object} common.Response "Transfer updated"
// @Router /api/transfers/{id} [put]
// @Security Bearer
func UpdateTransfer(transferSvc *transfersvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		req, err := common.BindAndValidate[TransferRequest](c)
		if req == nil {
			return err
		}
		in, err := toTransferInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		t, err := transferSvc.Update(c.Context(), userID, id, in)
		if err != nil {
			log.Errorf("Failed to update transfer %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Impossibile aggiornare il trasferimento", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer updated", t)
	}
}

// @Summary Delete a transfer
// @Tags transfers
// @Param id path string true "Transfer ID"
// @Success 200 {object} common.Response "Transfer deleted"
// @Router /api/transfers/{id} [delete]
// @Security Bearer
func DeleteTransfer(transferSvc *transfersvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := transferSvc.Delete(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare il trasferimento", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer deleted", nil)
	}
}
