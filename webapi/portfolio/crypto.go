package portfolio

import (
	"github.com/amirasaad/finanze/pkg/domain"
	domainportfolio "github.com/amirasaad/finanze/pkg/domain/portfolio"
	portfoliosvc "github.com/amirasaad/finanze/pkg/service/portfolio"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

func toCryptoPortfolioInput(r *CryptoPortfolioRequest) (portfoliosvc.CryptoPortfolioInput, error) {
	accountID, err := common.OptionalUUID(r.AccountID)
	return portfoliosvc.CryptoPortfolioInput{
		Name:        r.Name,
		Description: r.Description,
		AccountID:   accountID,
	}, err
}

func toCryptoInput(r *CryptoTransactionRequest) (portfoliosvc.CryptoInput, error) {
	in := portfoliosvc.CryptoInput{
		Type:     domainportfolio.TxType(r.Type),
		Quantity: r.Quantity,
		EURValue: r.EURValue,
		Notes:    r.Notes,
	}
	var err error
	if in.AssetID, err = uuid.Parse(r.AssetID); err != nil {
		return in, domain.Invalid("asset non valido")
	}
	in.Date, err = common.ParseDate(r.Date)
	return in, err
}

// @Summary List crypto assets
// @Tags crypto
// @Produce json
// @Success 200 {object} common.Response "Assets fetched"
// @Router /api/crypto-assets [get]
// @Security Bearer
func ListAssets(svc *portfoliosvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		assets, err := svc.ListAssets(c.Context())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile caricare gli asset", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Assets fetched", assets)
	}
}

// @Summary Add a crypto asset
// @Tags crypto
// @Accept json
// @Produce json
// @Param request body AssetRequest true "Asset"
// @Success 201 {object} common.Response "Asset created"
// @Failure 400 {object} common.ProblemDetails "Duplicate symbol"
// @Router /api/crypto-assets [post]
// @Security Bearer
func CreateAsset(svc *portfoliosvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := common.BindAndValidate[AssetRequest](c)
		if req == nil {
			return err
		}
		a, err := svc.CreateAsset(c.Context(), req.Symbol, req.Name, req.CoingeckoID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile creare l'asset", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Asset created", a)
	}
}

// @Summary List crypto portfolios
// @Tags crypto
// @Produce json
// @Success 200 {object} common.Response "Crypto portfolios fetched"
// @Router /api/crypto-portfolios [get]
// @Security Bearer
func ListCrypto(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		views, err := svc.ListCrypto(c.Context(), userID)
		if err != nil {
			log.Errorf("Failed to list crypto portfolios: %v", err)
			return common.ProblemDetailsJSON(c, "Impossibile caricare i portafogli crypto", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Crypto portfolios fetched", views)
	}
}

// @Summary Create a crypto portfolio
// @Tags crypto
// @Accept json
// @Produce json
// @Param request body CryptoPortfolioRequest true "Portfolio"
// @Success 201 {object} common.Response "Crypto portfolio created"
// @Router /api/crypto-portfolios [post]
// @Security Bearer
func CreateCrypto(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		req, err := common.BindAndValidate[CryptoPortfolioRequest](c)
		if req == nil {
			return err
		}
		in, err := toCryptoPortfolioInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		p, err := svc.CreateCrypto(c.Context(), userID, in)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile creare il portafoglio", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Crypto portfolio created", p)
	}
}

// GetCrypto returns a Fiber handler with the portfolio's holdings valued at
// current prices and its transactions.
// @Summary Get a crypto portfolio
// @Tags crypto
// @Produce json
// @Param id path string true "Portfolio ID"
// @Success 200 {object} common.Response "Crypto portfolio fetched"
// @Failure 404 {object} common.ProblemDetails "Portfolio not found"
// @Router /api/crypto-portfolios/{id} [get]
// @Security Bearer
func GetCrypto(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		view, err := svc.GetCrypto(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Portafoglio non trovato", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Crypto portfolio fetched", view)
	}
}

// @Summary Update a crypto portfolio
// @Tags crypto
// @Accept json
// @Produce json
// @Param id path string true "Portfolio ID"
// @Param request body CryptoPortfolioRequest true "Portfolio"
// @Success 200 {object} common.Response "Crypto portfolio updated"
// @Router /api/crypto-portfolios/{id} [put]
// @Security Bearer
func UpdateCrypto(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		req, err := common.BindAndValidate[CryptoPortfolioRequest](c)
		if req == nil {
			return err
		}
		in, err := toCryptoPortfolioInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		p, err := svc.UpdateCrypto(c.Context(), userID, id, in)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile aggiornare il portafoglio", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Crypto portfolio updated", p)
	}
}

// @Summary Delete a crypto portfolio
// @Tags crypto
// @Param id path string true "Portfolio ID"
// @Success 200 {object} common.Response "Crypto portfolio deleted"
// @Router /api/crypto-portfolios/{id} [delete]
// @Security Bearer
func DeleteCrypto(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := svc.DeleteCrypto(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare il portafoglio", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Crypto portfolio deleted", nil)
	}
}

// CreateCryptoTransaction returns a Fiber handler recording a buy, sell or
// staking reward. The asset's holding is replayed in the same database
// transaction.
// @Summary Record a crypto transaction
// @Tags crypto
// @Accept json
// @Produce json
// @Param id path string true "Portfolio ID"
// @Param request body CryptoTransactionRequest true "Transaction"
// @Success 201 {object} common.Response "Crypto transaction created"
// @Failure 400 {object} common.ProblemDetails "Invalid request, insufficient funds or holdings"
// @Router /api/crypto-portfolios/{id}/transactions [post]
// @Security Bearer
func CreateCryptoTransaction(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		req, err := common.BindAndValidate[CryptoTransactionRequest](c)
		if req == nil {
			return err
		}
		in, err := toCryptoInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		tx, err := svc.CreateCryptoTransaction(c.Context(), userID, id, in)
		if err != nil {
			log.Errorf("Failed to record crypto transaction: %v", err)
			return common.ProblemDetailsJSON(c, "Impossibile registrare la transazione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Crypto transaction created", tx)
	}
}

// @Summary Update a crypto transaction
// @Tags crypto
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body CryptoTransactionRequest true "Transaction"
// @Success 200 {object} common.Response "Crypto transaction updated"
// @Router /api/crypto-transactions/{id} [put]
// @Security Bearer
func UpdateCryptoTransaction(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		req, err := common.BindAndValidate[CryptoTransactionRequest](c)
		if req == nil {
			return err
		}
		in, err := toCryptoInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		tx, err := svc.UpdateCryptoTransaction(c.Context(), userID, id, in)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile aggiornare la transazione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Crypto transaction updated", tx)
	}
}

// @Summary Delete a crypto transaction
// @Tags crypto
// @Param id path string true "Transaction ID"
// @Success 200 {object} common.Response "Crypto transaction deleted"
// @Router /api/crypto-transactions/{id} [delete]
// @Security Bearer
func DeleteCryptoTransaction(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := svc.DeleteCryptoTransaction(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare la transazione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Crypto transaction deleted", nil)
	}
}

// Recompute returns a Fiber handler replaying every holding of a portfolio
// from its transactions.
// @Summary Recompute crypto holdings
// @Tags crypto
// @Produce json
// @Param id path string true "Portfolio ID"
// @Success 200 {object} common.Response "Holdings recomputed"
// @Router /api/crypto-portfolios/{id}/recompute [post]
// @Security Bearer
func Recompute(svc *portfoliosvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		holdings, err := svc.RecomputePortfolio(c.Context(), userID, id)
		if err != nil {
			log.Errorf("Failed to recompute portfolio %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Ricalcolo fallito", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Holdings recomputed", holdings)
	}
}
