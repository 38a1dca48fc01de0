// Package snapshot exposes the holdings snapshots and the BTC quote.
package snapshot

import (
	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/middleware"
	snapshotsvc "github.com/amirasaad/finanze/pkg/service/snapshot"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const defaultLimit = 30

// Routes registers the snapshot and price endpoints.
//
// Routes:
//   - GET    /api/snapshots?limit= : Latest snapshots, newest first.
//   - POST   /api/snapshots        : Take a manual snapshot at the current quote.
//   - DELETE /api/snapshots/:id    : Delete a snapshot.
//   - GET    /api/prices/btc       : Current BTC quote in USD and EUR.
func Routes(app *fiber.App, snapshotSvc *snapshotsvc.Service, authSvc common.UserIDResolver, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Get("/api/snapshots", protected, ListSnapshots(snapshotSvc, authSvc))
	app.Post("/api/snapshots", protected, CreateSnapshot(snapshotSvc, authSvc))
	app.Delete("/api/snapshots/:id", protected, DeleteSnapshot(snapshotSvc, authSvc))
	app.Get("/api/prices/btc", protected, BTCPrice(snapshotSvc))
}

// unavailable turns an upstream price failure into a 503. Domain errors
// keep their own status.
func unavailable(c *fiber.Ctx, err error) error {
	if common.ErrorToStatusCode(err) != fiber.StatusInternalServerError {
		return common.ProblemDetailsJSON(c, "Impossibile creare lo snapshot", err)
	}
	return common.ProblemDetailsJSON(
		c, "Prezzo non disponibile", err, "il prezzo di BTC non è al momento disponibile", fiber.StatusServiceUnavailable,
	)
}

// @Summary List snapshots
// @Tags snapshots
// @Produce json
// @Param limit query int false "Maximum number of snapshots"
// @Success 200 {object} common.Response "Snapshots fetched"
// @Router /api/snapshots [get]
// @Security Bearer
func ListSnapshots(snapshotSvc *snapshotsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		limit, err := common.QueryInt(c, "limit")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Limite non valido", err)
		}
		if limit == 0 {
			limit = defaultLimit
		}
		snaps, err := snapshotSvc.List(c.Context(), userID, limit)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile caricare gli snapshot", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Snapshots fetched", snaps)
	}
}

// @Summary Take a manual snapshot
// @Tags snapshots
// @Produce json
// @Success 201 {object} common.Response "Snapshot created"
// @Failure 503 {object} common.ProblemDetails "Price unavailable"
// @Router /api/snapshots [post]
// @Security Bearer
func CreateSnapshot(snapshotSvc *snapshotsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		snap, err := snapshotSvc.Create(c.Context(), userID)
		if err != nil {
			log.Errorf("Failed to create snapshot: %v", err)
			return unavailable(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Snapshot created", snap)
	}
}

// @Summary Delete a snapshot
// @Tags snapshots
// @Param id path string true "Snapshot ID"
// @Success 200 {object} common.Response "Snapshot deleted"
// @Router /api/snapshots/{id} [delete]
// @Security Bearer
func DeleteSnapshot(snapshotSvc *snapshotsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		id, err := common.ParamID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		if err := snapshotSvc.Delete(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Impossibile eliminare lo snapshot", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Snapshot deleted", nil)
	}
}

// BTCPrice returns a Fiber handler with the current quote. A cached quote
// served after an upstream failure is flagged stale.
// @Summary Current BTC price
// @Tags prices
// @Produce json
// @Success 200 {object} common.Response "Price fetched"
// @Failure 503 {object} common.ProblemDetails "Price unavailable"
// @Router /api/prices/btc [get]
// @Security Bearer
func BTCPrice(snapshotSvc *snapshotsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := snapshotSvc.Quote(c.Context())
		if err != nil {
			log.Errorf("Failed to fetch BTC quote: %v", err)
			return unavailable(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Price fetched", q)
	}
}
