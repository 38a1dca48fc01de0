// Package portfolio exposes the DCA and crypto portfolio endpoints, along
// with assets, swaps, trades and network fees.
package portfolio

import (
	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/middleware"
	portfoliosvc "github.com/amirasaad/finanze/pkg/service/portfolio"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the portfolio endpoints.
//
// Routes:
//   - GET    /api/dca-portfolios                          : DCA portfolios with stats.
//   - POST   /api/dca-portfolios                          : Create a DCA portfolio.
//   - GET    /api/dca-portfolios/:id                      : Detail with stats and transactions.
//   - PUT    /api/dca-portfolios/:id                      : Rename or relink.
//   - DELETE /api/dca-portfolios/:id                      : Delete, refunding the linked account.
//   - GET    /api/dca-portfolios/:id/stats                : Enhanced Cash Flow stats.
//   - POST   /api/dca-portfolios/:id/transactions         : Record a purchase or sale.
//   - PUT    /api/dca-transactions/:id                    : Replace a DCA transaction.
//   - DELETE /api/dca-transactions/:id                    : Delete a DCA transaction.
//   - GET    /api/crypto-assets                           : Asset catalog.
//   - POST   /api/crypto-assets                           : Add an asset.
//   - GET    /api/crypto-portfolios                       : Crypto portfolios with stats.
//   - POST   /api/crypto-portfolios                       : Create a crypto portfolio.
//   - GET    /api/crypto-portfolios/:id                   : Detail with holdings and transactions.
//   - PUT    /api/crypto-portfolios/:id                   : Update or relink.
//   - DELETE /api/crypto-portfolios/:id                   : Delete, refunding the linked account.
//   - POST   /api/crypto-portfolios/:id/transactions      : Record a buy, sell or reward.
//   - POST   /api/crypto-portfolios/:id/recompute         : Replay every holding.
//   - POST   /api/crypto-portfolios/:id/swaps             : Swap two assets.
//   - DELETE /api/crypto-portfolios/:id/swaps/:swapPairId : Delete both legs of a swap.
//   - GET    /api/crypto-portfolios/:id/trades            : Trades of a portfolio.
//   - POST   /api/crypto-portfolios/:id/trades            : Open a trade.
//   - POST   /api/crypto-trades/:id/close                 : Close a trade.
//   - DELETE /api/crypto-trades/:id                       : Delete a trade and its swaps.
//   - PUT    /api/crypto-transactions/:id                 : Replace a crypto transaction.
//   - DELETE /api/crypto-transactions/:id                 : Delete a crypto transaction.
//   - GET    /api/network-fees                            : Network fees.
//   - POST   /api/network-fees                            : Record a fee.
//   - DELETE /api/network-fees/:id                        : Delete a fee.
func Routes(app *fiber.App, svc *portfoliosvc.Service, authSvc common.UserIDResolver, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)

	dca := app.Group("/api/dca-portfolios", protected)
	dca.Get("/", ListDCA(svc, authSvc))
	dca.Post("/", CreateDCA(svc, authSvc))
	dca.Get("/:id", GetDCA(svc, authSvc))
	dca.Put("/:id", UpdateDCA(svc, authSvc))
	dca.Delete("/:id", DeleteDCA(svc, authSvc))
	dca.Get("/:id/stats", DCAStats(svc, authSvc))
	dca.Post("/:id/transactions", CreateDCATransaction(svc, authSvc))
	app.Put("/api/dca-transactions/:id", protected, UpdateDCATransaction(svc, authSvc))
	app.Delete("/api/dca-transactions/:id", protected, DeleteDCATransaction(svc, authSvc))

	app.Get("/api/crypto-assets", protected, ListAssets(svc))
	app.Post("/api/crypto-assets", protected, CreateAsset(svc))

	crypto := app.Group("/api/crypto-portfolios", protected)
	crypto.Get("/", ListCrypto(svc, authSvc))
	crypto.Post("/", CreateCrypto(svc, authSvc))
	crypto.Get("/:id", GetCrypto(svc, authSvc))
	crypto.Put("/:id", UpdateCrypto(svc, authSvc))
	crypto.Delete("/:id", DeleteCrypto(svc, authSvc))
	crypto.Post("/:id/transactions", CreateCryptoTransaction(svc, authSvc))
	crypto.Post("/:id/recompute", Recompute(svc, authSvc))
	crypto.Post("/:id/swaps", CreateSwap(svc, authSvc))
	crypto.Delete("/:id/swaps/:swapPairId", DeleteSwap(svc, authSvc))
	crypto.Get("/:id/trades", ListTrades(svc, authSvc))
	crypto.Post("/:id/trades", OpenTrade(svc, authSvc))
	app.Post("/api/crypto-trades/:id/close", protected, CloseTrade(svc, authSvc))
	app.Delete("/api/crypto-trades/:id", protected, DeleteTrade(svc, authSvc))
	app.Put("/api/crypto-transactions/:id", protected, UpdateCryptoTransaction(svc, authSvc))
	app.Delete("/api/crypto-transactions/:id", protected, DeleteCryptoTransaction(svc, authSvc))

	app.Get("/api/network-fees", protected, ListFees(svc, authSvc))
	app.Post("/api/network-fees", protected, CreateFee(svc, authSvc))
	app.Delete("/api/network-fees/:id", protected, DeleteFee(svc, authSvc))
}
