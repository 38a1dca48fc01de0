// Package dashboard exposes the financial overview.
package dashboard

import (
	"time"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/middleware"
	dashboardsvc "github.com/amirasaad/finanze/pkg/service/dashboard"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers GET /api/dashboard.
func Routes(app *fiber.App, dashboardSvc *dashboardsvc.Service, authSvc common.UserIDResolver, cfg *config.App) {
	app.Get("/api/dashboard", middleware.JwtProtected(cfg.Auth.Jwt), GetDashboard(dashboardSvc, authSvc))
}

// GetDashboard returns a Fiber handler with liquidity, investments, the
// current month's cash flow and portfolio totals.
// @Summary Dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} common.Response "Dashboard fetched"
// @Router /api/dashboard [get]
// @Security Bearer
func GetDashboard(dashboardSvc *dashboardsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		d, err := dashboardSvc.Get(c.Context(), userID, time.Now())
		if err != nil {
			log.Errorf("Failed to build dashboard: %v", err)
			return common.ProblemDetailsJSON(c, "Impossibile caricare la dashboard", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Dashboard fetched", d)
	}
}
