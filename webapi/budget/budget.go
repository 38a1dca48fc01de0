// Package budget exposes the budget endpoints.
package budget

import (
	"github.com/amirasaad/finanze/pkg/config"
	domainbudget "github.com/amirasaad/finanze/pkg/domain/budget"
	"github.com/amirasaad/finanze/pkg/middleware"
	budgetsvc "github.com/amirasaad/finanze/pkg/service/budget"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routes registers the budget endpoints.
//
// Routes:
//   - GET    /api/budgets          : Budgets with their allocation over bank liquidity.
//   - POST   /api/budgets          : Create a budget.
//   - PUT    /api/budgets/reorder  : Change the priority order.
//   - PUT    /api/budgets/:id      : Replace a budget.
//   - DELETE /api/budgets/:id      : Delete a budget.
func Routes(app *fiber.App, budgetSvc *budgetsvc.Service, authSvc common.UserIDResolver, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Get("/api/budgets", protected, Overview(budgetSvc, authSvc))
	app.Post("/api/budgets", protected, CreateBudget(budgetSvc, authSvc))
	app.Put("/api/budgets/reorder", protected, ReorderBudgets(budgetSvc, authSvc))
	app.Put("/api/budgets/:id", protected, UpdateBudget(budgetSvc, authSvc))
	app.Delete("/api/budgets/:id", protected, DeleteBudget(budgetSvc, authSvc))
}

func toInput(r *BudgetRequest) budgetsvc.Input {
	return budgetsvc.Input{
		Name:         r.Name,
		Type:         domainbudget.Type(r.Type),
		TargetAmount: r.TargetAmount,
		Order:        r.Order,
		Color:        r.Color,
	}
}

// Overview returns a Fiber handler allocating the user's bank liquidity to
// fixed budgets in priority order. The remainder goes to unlimited ones.
// @Summary Budget overview
// @Tags budgets
// @Produce json
// @Success 200 {object} common.Response "Budgets fetched"
// @Router /api/budgets [get]
// @Security Bearer
func Overview(budgetSvc *budgetsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		ov, err := budgetSvc.Overview(c.Context(), userID)
		if err != nil {
			log.Errorf("Failed to build budget overview: %v", err)
			return common.ProblemDetailsJSON(c, "Impossibile caricare i budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budgets fetched", ov)
	}
}

// @Summary Create a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Param request body BudgetRequest true "Budget details"
// @Success 201 {object} common.Response "Budget created"
// @Failure 400 {object} common.ProblemDetails "Invalid request or duplicate name"
// @Router /api/budgets [post]
// @Security Bearer
func CreateBudget(budgetSvc *budgetsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		req, err := common.BindAndValidate[BudgetRequest](c)
		if req == nil {
			return err
		}
		b, err := budgetSvc.Create(c.Context(), userID, toInput(req))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile creare il budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Budget created", b)
	}
}

// @Summary Update a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Param id path string true "Budget ID"
// @Param request body BudgetRequest true "Budget details"
// @Success 200 {object} common.Response "Budget updated"
// @Router /api/budgets/{id} [put]
// @Security Bearer
func UpdateBudget(budgetSvc *budgetsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		req, err := common.BindAndValidate[BudgetRequest](c)
		if req == nil {
			return err
		}
		b, err := budgetSvc.Update(c.Context(), userID, id, toInput(req))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile aggiornare il budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budget updated", b)
	}
}

// @Summary Delete a budget
// @Tags budgets
// @Param id path string true "Budget ID"
// @Success 200 {object} common.Response "Budget deleted"
// @Router /api/budgets/{id} [delete]
// @Security Bearer
func DeleteBudget(budgetSvc *budgetsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := budgetSvc.Delete(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare il budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budget deleted", nil)
	}
}

// ReorderBudgets returns a Fiber handler assigning positions 0..n-1 in the
// given order.
// @Summary Reorder budgets
// @Tags budgets
// @Accept json
// @Param request body ReorderRequest true "Budget IDs in priority order"
// @Success 200 {object} common.Response "Budgets reordered"
// @Router /api/budgets/reorder [put]
// @Security Bearer
func ReorderBudgets(budgetSvc *budgetsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		req, err := common.BindAndValidate[ReorderRequest](c)
		if req == nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(req.IDs))
		for _, raw := range req.IDs {
			ids = append(ids, uuid.MustParse(raw))
		}
		if err := budgetSvc.Reorder(c.Context(), userID, ids); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile riordinare i budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budgets reordered", nil)
	}
}
