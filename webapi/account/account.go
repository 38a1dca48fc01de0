package account

import (
	"github.com/amirasaad/finanze/pkg/config"
	domainaccount "github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/middleware"
	accountsvc "github.com/amirasaad/finanze/pkg/service/account"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the account and category endpoints. Every route requires
// a valid bearer token.
//
// Routes:
//   - GET    /api/accounts                : List the user's accounts.
//   - POST   /api/accounts                : Create an account.
//   - GET    /api/accounts/:id            : Get one account.
//   - PUT    /api/accounts/:id            : Rename an account or change its type.
//   - DELETE /api/accounts/:id            : Delete an account and everything booked on it.
//   - POST   /api/accounts/:id/reconcile  : Recompute the balance from the ledger.
//   - GET    /api/categories              : List categories.
//   - POST   /api/categories              : Create a category.
//   - DELETE /api/categories/:id          : Delete a category.
func Routes(app *fiber.App, accountSvc *accountsvc.Service, authSvc common.UserIDResolver, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Get("/api/accounts", protected, ListAccounts(accountSvc, authSvc))
	app.Post("/api/accounts", protected, CreateAccount(accountSvc, authSvc))
	app.Get("/api/accounts/:id", protected, GetAccount(accountSvc, authSvc))
	app.Put("/api/accounts/:id", protected, UpdateAccount(accountSvc, authSvc))
	app.Delete("/api/accounts/:id", protected, DeleteAccount(accountSvc, authSvc))
	app.Post("/api/accounts/:id/reconcile", protected, Reconcile(accountSvc, authSvc))

	app.Get("/api/categories", protected, ListCategories(accountSvc, authSvc))
	app.Post("/api/categories", protected, CreateCategory(accountSvc, authSvc))
	app.Delete("/api/categories/:id", protected, DeleteCategory(accountSvc, authSvc))
}

// ListAccounts returns a Fiber handler listing the user's accounts with their
// live balance.
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Success 200 {object} common.Response "Accounts fetched"
// @Failure 401 {object} common.ProblemDetails "Unauthorized"
// @Failure 500 {object} common.ProblemDetails "Internal server error"
// @Router /api/accounts [get]
// @Security Bearer
func ListAccounts(accountSvc *accountsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		accounts, err := accountSvc.ListAccounts(c.Context(), userID)
		if err != nil {
			log.Errorf("Failed to list accounts: %v", err)
			return common.ProblemDetailsJSON(c, "Impossibile caricare i conti", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", accounts)
	}
}

// CreateAccount returns a Fiber handler creating an account with an optional
// opening balance.
// @Summary Create an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Account details"
// @Success 201 {object} common.Response "Account created"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Failure 401 {object} common.ProblemDetails "Unauthorized"
// @Router /api/accounts [post]
// @Security Bearer
func CreateAccount(accountSvc *accountsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err // error response already written
		}
		a, err := accountSvc.CreateAccount(c.Context(), userID, input.Name, domainaccount.Type(input.Type), input.Balance)
		if err != nil {
			log.Errorf("Failed to create account: %v", err)
			return common.ProblemDetailsJSON(c, "Impossibile creare il conto", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", a)
	}
}

// GetAccount returns a Fiber handler fetching one account.
// @Summary Get an account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response "Account fetched"
// @Failure 404 {object} common.ProblemDetails "Not found"
// @Router /api/accounts/{id} [get]
// @Security Bearer
func GetAccount(accountSvc *accountsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		a, err := accountSvc.GetAccount(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Conto non trovato", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", a)
	}
}

// UpdateAccount returns a Fiber handler renaming an account.
// @Summary Update an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body UpdateAccountRequest true "Account details"
// @Success 200 {object} common.Response "Account updated"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Failure 404 {object} common.ProblemDetails "Not found"
// @Router /api/accounts/{id} [put]
// @Security Bearer
func UpdateAccount(accountSvc *accountsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		input, err := common.BindAndValidate[UpdateAccountRequest](c)
		if input == nil {
			return err
		}
		a, err := accountSvc.UpdateAccount(c.Context(), userID, id, input.Name, domainaccount.Type(input.Type))
		if err != nil {
			log.Errorf("Failed to update account %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Impossibile aggiornare il conto", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account updated", a)
	}
}

// DeleteAccount returns a Fiber handler deleting an account together with
// its transactions and transfers.
// @Summary Delete an account
// @Tags accounts
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response "Account deleted"
// @Failure 404 {object} common.ProblemDetails "Not found"
// @Router /api/accounts/{id} [delete]
// @Security Bearer
func DeleteAccount(accountSvc *accountsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := accountSvc.DeleteAccount(c.Context(), userID, id); err != nil {
			log.Errorf("Failed to delete account %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Impossibile eliminare il conto", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account deleted", nil)
	}
}

// Reconcile returns a Fiber handler comparing the stored balance with the
// one derived from the ledger. With ?fix=true the computed balance is
// stored.
// @Summary Reconcile an account balance
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Param fix query bool false "Store the computed balance"
// @Success 200 {object} common.Response "Account reconciled"
// @Failure 404 {object} common.ProblemDetails "Not found"
// @Router /api/accounts/{id}/reconcile [post]
// @Security Bearer
func Reconcile(accountSvc *accountsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		r, err := accountSvc.Reconcile(c.Context(), userID, id, c.QueryBool("fix"))
		if err != nil {
			log.Errorf("Failed to reconcile account %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Impossibile riconciliare il conto", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account reconciled", r)
	}
}

// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} common.Response "Categories fetched"
// @Router /api/categories [get]
// @Security Bearer
func ListCategories(accountSvc *accountsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		cats, err := accountSvc.ListCategories(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile caricare le categorie", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Categories fetched", cats)
	}
}

// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body CreateCategoryRequest true "Category details"
// @Success 201 {object} common.Response "Category created"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Router /api/categories [post]
// @Security Bearer
func CreateCategory(accountSvc *accountsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		input, err := common.BindAndValidate[CreateCategoryRequest](c)
		if input == nil {
			return err
		}
		cat, err := accountSvc.CreateCategory(c.Context(), userID, input.Name, domainaccount.TransactionType(input.Type), input.Color)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile creare la categoria", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Category created", cat)
	}
}

// @Summary Delete a category
// @Tags categories
// @Param id path string true "Category ID"
// @Success 200 {object} common.Response "Category deleted"
// @Router /api/categories/{id} [delete]
// @Security Bearer
func DeleteCategory(accountSvc *accountsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := accountSvc.DeleteCategory(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare la categoria", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Category deleted", nil)
	}
}
