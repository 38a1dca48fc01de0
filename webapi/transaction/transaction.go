package transaction

import (
	"time"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/middleware"
	"github.com/amirasaad/finanze/pkg/repository"
	txsvc "github.com/amirasaad/finanze/pkg/service/transaction"
	transfersvc "github.com/amirasaad/finanze/pkg/service/transfer"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routes registers the transaction and transfer endpoints.
//
// Routes:
//   - GET    /api/transactions      : List transactions with filters and paging.
//   - POST   /api/transactions      : Record a transaction.
//   - PUT    /api/transactions/:id  : Replace a transaction.
//   - DELETE /api/transactions/:id  : Delete a transaction.
//   - DELETE /api/transactions      : Delete several transactions atomically.
//   - GET    /api/transfers         : List transfers.
//   - POST   /api/transfers         : Move money between two accounts.
//   - PUT    /api/transfers/:id     : Replace a transfer.
//   - DELETE /api/transfers/:id     : Delete a transfer and its gain.
func Routes(
	app *fiber.App,
	txSvc *txsvc.Service,
	transferSvc *transfersvc.Service,
	authSvc common.UserIDResolver,
	cfg *config.App,
) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Get("/api/transactions", protected, ListTransactions(txSvc, authSvc))
	app.Post("/api/transactions", protected, CreateTransaction(txSvc, authSvc))
	app.Put("/api/transactions/:id", protected, UpdateTransaction(txSvc, authSvc))
	app.Delete("/api/transactions/:id", protected, DeleteTransaction(txSvc, authSvc))
	app.Delete("/api/transactions", protected, DeleteTransactions(txSvc, authSvc))

	app.Get("/api/transfers", protected, ListTransfers(transferSvc, authSvc))
	app.Post("/api/transfers", protected, CreateTransfer(transferSvc, authSvc))
	app.Put("/api/transfers/:id", protected, UpdateTransfer(transferSvc, authSvc))
	app.Delete("/api/transfers/:id", protected, DeleteTransfer(transferSvc, authSvc))
}

func parseFilter(c *fiber.Ctx) (repository.TransactionFilter, error) {
	var f repository.TransactionFilter
	var err error
	if t := c.Query("type"); t != "" {
		f.Type = account.TransactionType(t)
	}
	if f.AccountID, err = common.OptionalUUID(c.Query("accountId")); err != nil {
		return f, err
	}
	if f.CategoryID, err = common.OptionalUUID(c.Query("categoryId")); err != nil {
		return f, err
	}
	if raw := c.Query("from"); raw != "" {
		from, err := common.ParseDate(raw)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := common.ParseDate(raw)
		if err != nil {
			return f, err
		}
		if len(raw) == len(time.DateOnly) {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.To = &to
	}
	if f.Limit, err = common.QueryInt(c, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = common.QueryInt(c, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func toInput(r *TransactionRequest) (txsvc.Input, error) {
	in := txsvc.Input{
		Type:        account.TransactionType(r.Type),
		Amount:      r.Amount,
		Description: r.Description,
	}
	var err error
	if in.AccountID, err = uuid.Parse(r.AccountID); err != nil {
		return in, domain.Invalid("conto non valido")
	}
	if in.CategoryID, err = common.OptionalUUID(r.CategoryID); err != nil {
		return in, err
	}
	in.Date, err = common.ParseDate(r.Date)
	return in, err
}

// ListTransactions returns a Fiber handler listing transactions, newest
// first, with the total count for paging.
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Param type query string false "income or expense"
// @Param accountId query string false "Account ID"
// @Param categoryId query string false "Category ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD), inclusive"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} common.Response "Transactions fetched"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Router /api/transactions [get]
// @Security Bearer
func ListTransactions(txSvc *txsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		f, err := parseFilter(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Filtro non valido", err)
		}
		page, err := txSvc.List(c.Context(), userID, f)
		if err != nil {
			log.Errorf("Failed to list transactions: %v", err)
			return common.ProblemDetailsJSON(c, "Impossibile caricare le transazioni", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", page)
	}
}

// CreateTransaction returns a Fiber handler recording an income or expense
// and applying it to the account balance.
// @Summary Create a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body TransactionRequest true "Transaction details"
// @Success 201 {object} common.Response "Transaction created"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Failure 404 {object} common.ProblemDetails "Account not found"
// @Router /api/transactions [post]
// @Security Bearer
func CreateTransaction(txSvc *txsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		req, err := common.BindAndValidate[TransactionRequest](c)
		if req == nil {
			return err
		}
		in, err := toInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		tx, err := txSvc.Create(c.Context(), userID, in)
		if err != nil {
			log.Errorf("Failed to create transaction: %v", err)
			return common.ProblemDetailsJSON(c, "Impossibile creare la transazione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transaction created", tx)
	}
}

// @Summary Update a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body TransactionRequest true "Transaction details"
// @Success 200 {object} common.Response "Transaction updated"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Router /api/transactions/{id} [put]
// @Security Bearer
func UpdateTransaction(txSvc *txsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		req, err := common.BindAndValidate[TransactionRequest](c)
		if req == nil {
			return err
		}
		in, err := toInput(req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Richiesta non valida", err)
		}
		tx, err := txSvc.Update(c.Context(), userID, id, in)
		if err != nil {
			log.Errorf("Failed to update transaction %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Impossibile aggiornare la transazione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction updated", tx)
	}
}

// @Summary Delete a transaction
// @Tags transactions
// @Param id path string true "Transaction ID"
// @Success 200 {object} common.Response "Transaction deleted"
// @Router /api/transactions/{id} [delete]
// @Security Bearer
func DeleteTransaction(txSvc *txsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := txSvc.Delete(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare la transazione", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction deleted", nil)
	}
}

// DeleteTransactions returns a Fiber handler deleting several transactions.
// Either all of them are deleted or none.
// @Summary Delete several transactions
// @Tags transactions
// @Accept json
// @Param request body BulkDeleteRequest true "Transaction IDs"
// @Success 200 {object} common.Response "Transactions deleted"
// @Router /api/transactions [delete]
// @Security Bearer
func DeleteTransactions(txSvc *txsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		req, err := common.BindAndValidate[BulkDeleteRequest](c)
		if req == nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(req.IDs))
		for _, raw := range req.IDs {
			ids = append(ids, uuid.MustParse(raw))
		}
		n, err := txSvc.DeleteMany(c.Context(), userID, ids)
		if err != nil {
			log.Errorf("Failed to delete %d transactions: %v", len(ids), err)
			return common.ProblemDetailsJSON(c, "Impossibile eliminare le transazioni", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions deleted", fiber.Map{"deleted": n})
	}
}
