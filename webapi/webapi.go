// Package webapi wires the HTTP layer of the finanze API.
// It is organized into sub-packages for different domains:
// - account: Accounts, categories and reconciliation
// - transaction: Transactions and transfers
// - budget: Budgets and their allocation
// - portfolio: DCA and crypto portfolios, swaps, trades and network fees
// - tax: Partita IVA
// - snapshot: Holdings snapshots and the BTC price
// - dashboard: Financial overview
// - importer: CSV imports
package webapi

import (
	"errors"
	"strings"

	_ "github.com/amirasaad/finanze/cmd/server/swagger"
	"github.com/amirasaad/finanze/pkg/app"
	accountweb "github.com/amirasaad/finanze/webapi/account"
	budgetweb "github.com/amirasaad/finanze/webapi/budget"
	"github.com/amirasaad/finanze/webapi/common"
	dashboardweb "github.com/amirasaad/finanze/webapi/dashboard"
	importweb "github.com/amirasaad/finanze/webapi/importer"
	portfolioweb "github.com/amirasaad/finanze/webapi/portfolio"
	snapshotweb "github.com/amirasaad/finanze/webapi/snapshot"
	taxweb "github.com/amirasaad/finanze/webapi/tax"
	transactionweb "github.com/amirasaad/finanze/webapi/transaction"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// importBodyLimit allows CSV exports larger than fiber's 4MB default.
const importBodyLimit = 16 * 1024 * 1024

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	cfg := a.Config
	authSvc := a.AuthService

	fiberApp := fiber.New(fiber.Config{
		AppName:   "finanze",
		BodyLimit: importBodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Richiesta non riuscita", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		PersistAuthorization: true,
	}))

	// Uses X-Forwarded-For header when behind a proxy
	// Falls back to X-Real-IP or direct IP if needed
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				// Take the first IP in the chain
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Troppe richieste",
				errors.New("limite di richieste superato"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CorsOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Finanze API is running! 🚀")
	})

	accountweb.Routes(fiberApp, a.AccountService, authSvc, cfg)
	transactionweb.Routes(fiberApp, a.TransactionService, a.TransferService, authSvc, cfg)
	budgetweb.Routes(fiberApp, a.BudgetService, authSvc, cfg)
	portfolioweb.Routes(fiberApp, a.PortfolioService, authSvc, cfg)
	taxweb.Routes(fiberApp, a.TaxService, authSvc, cfg)
	snapshotweb.Routes(fiberApp, a.SnapshotService, authSvc, cfg)
	dashboardweb.Routes(fiberApp, a.DashboardService, authSvc, cfg)
	importweb.Routes(fiberApp, a.ImportService, authSvc, cfg)
	return fiberApp
}
