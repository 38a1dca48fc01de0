// Package importer exposes the CSV import endpoints. With ?stream=true the
// response is a server-sent event stream of progress events ending with a
// complete or error event.
package importer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/middleware"
	importsvc "github.com/amirasaad/finanze/pkg/service/importer"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// streamTimeout bounds an import running behind an event stream, which
// outlives the request context.
const streamTimeout = 10 * time.Minute

type importFunc func(ctx context.Context, r io.Reader, progress importsvc.ProgressFunc) (*importsvc.Result, error)

// Routes registers the import endpoints.
//
// Routes:
//   - POST /api/import/transactions?type=expense|income : CSV data,descrizione,importo,categoria,conto.
//   - POST /api/import/dca/:portfolioId                  : CSV data,broker,info,quantita_btc,eur.
func Routes(app *fiber.App, importSvc *importsvc.Service, authSvc common.UserIDResolver, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Post("/api/import/transactions", protected, ImportTransactions(importSvc, authSvc))
	app.Post("/api/import/dca/:portfolioId", protected, ImportDCA(importSvc, authSvc))
}

// ImportTransactions returns a Fiber handler importing a CSV export of
// incomes or expenses. The body is the CSV text.
// @Summary Import transactions from CSV
// @Tags import
// @Accept plain
// @Produce json
// @Param type query string true "expense or income"
// @Param stream query bool false "Stream progress as server-sent events"
// @Success 200 {object} common.Response "Import completed"
// @Failure 400 {object} common.ProblemDetails "Invalid file"
// @Router /api/import/transactions [post]
// @Security Bearer
func ImportTransactions(importSvc *importsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		typ := account.TransactionType(c.Query("type", string(account.TransactionExpense)))
		return run(c, func(ctx context.Context, r io.Reader, progress importsvc.ProgressFunc) (*importsvc.Result, error) {
			return importSvc.ImportTransactions(ctx, userID, typ, r, progress)
		})
	}
}

// @Summary Import DCA purchases from CSV
// @Tags import
// @Accept plain
// @Produce json
// @Param portfolioId path string true "DCA portfolio ID"
// @Param stream query bool false "Stream progress as server-sent events"
// @Success 200 {object} common.Response "Import completed"
// @Failure 404 {object} common.ProblemDetails "Portfolio not found"
// @Router /api/import/dca/{portfolioId} [post]
// @Security Bearer
func ImportDCA(importSvc *importsvc.Service, authSvc common.UserIDResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Non autorizzato", err)
		}
		portfolioID, err := common.ParamID(c, "portfolioId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "ID non valido", err)
		}
		return run(c, func(ctx context.Context, r io.Reader, progress importsvc.ProgressFunc) (*importsvc.Result, error) {
			return importSvc.ImportDCA(ctx, userID, portfolioID, r, progress)
		})
	}
}

func run(c *fiber.Ctx, fn importFunc) error {
	if len(c.Body()) == 0 {
		return common.ProblemDetailsJSON(c, "File vuoto", nil, "il corpo della richiesta deve contenere il CSV", fiber.StatusBadRequest)
	}
	if !c.QueryBool("stream") {
		res, err := fn(c.Context(), bytes.NewReader(c.Body()), nil)
		if err != nil {
			log.Errorf("Import failed: %v", err)
			return common.ProblemDetailsJSON(c, "Importazione fallita", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Import completed", res)
	}

	// fasthttp recycles the request buffer once the handler returns.
	body := bytes.Clone(c.Body())
	requestID := uuid.NewString()
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), streamTimeout)
		defer cancel()
		send := func(e importsvc.Event) {
			if err := writeEvent(w, e); err != nil {
				log.Warnf("Import %s: client gone: %v", requestID, err)
				cancel()
			}
		}
		if _, err := fn(ctx, bytes.NewReader(body), send); err != nil {
			log.Errorf("Import %s failed: %v", requestID, err)
			_ = writeEvent(w, importsvc.Event{Type: importsvc.EventError, Message: err.Error()})
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, e importsvc.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := w.WriteString("data: "); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.WriteString("\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
