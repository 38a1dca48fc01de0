// Package importer loads transactions and DCA purchases from CSV exports.
//
// Rows are committed in batches, one database transaction per batch. Each
// row runs in its own savepoint so a failing row is rolled back and
// reported while the rest of the batch goes on.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/domain/portfolio"
	"github.com/amirasaad/finanze/pkg/repository"
	accountsvc "github.com/amirasaad/finanze/pkg/service/account"
	portfoliosvc "github.com/amirasaad/finanze/pkg/service/portfolio"
	txsvc "github.com/amirasaad/finanze/pkg/service/transaction"
	"github.com/google/uuid"
)

// DefaultBatchSize is used when the configured size is not positive.
const DefaultBatchSize = 50

// Event types sent to a ProgressFunc.
const (
	EventStatus   = "status"
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

// RowError reports why one CSV row was not imported. Row counts the header
// as row 1.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result summarizes an import.
type Result struct {
	Total    int        `json:"total"`
	Imported int        `json:"imported"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors"`
}

// Event is a progress notification.
type Event struct {
	Type      string  `json:"type"`
	Message   string  `json:"message,omitempty"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Result    *Result `json:"result,omitempty"`
}

// ProgressFunc receives progress events. It may be nil.
type ProgressFunc func(Event)

// Service imports CSV files.
type Service struct {
	uow       repository.UnitOfWork
	batchSize int
	logger    *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(uow repository.UnitOfWork, batchSize int, logger *slog.Logger) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{uow: uow, batchSize: batchSize, logger: logger}
}

// rowFunc imports one data row on the savepoint's unit of work.
type rowFunc func(ctx context.Context, uow repository.UnitOfWork, row []string) error

// ImportTransactions imports rows of data,descrizione,importo,categoria,conto
// as transactions of the given type. Unknown categories are created;
// unknown accounts fail the row.
func (s *Service) ImportTransactions(
	ctx context.Context,
	userID uuid.UUID,
	typ account.TransactionType,
	r io.Reader,
	progress ProgressFunc,
) (*Result, error) {
	if !typ.Valid() {
		return nil, domain.Invalid("tipo di transazione non valido: %s", typ)
	}
	emit(progress, Event{Type: EventStatus, Message: "lettura del file"})
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	cols := map[string]int{
		"date":        t.column("data", "date"),
		"description": t.column("descrizione", "description"),
		"amount":      t.column("importo", "amount"),
		"category":    t.column("categoria", "category"),
		"account":     t.column("conto", "account"),
	}
	for _, name := range []string{"date", "amount", "account"} {
		if cols[name] < 0 {
			return nil, domain.Invalid("colonna obbligatoria mancante: %s", name)
		}
	}

	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	owned, err := accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]uuid.UUID, len(owned))
	for _, a := range owned {
		byName[strings.ToLower(a.Name)] = a.ID
	}

	width := len(t.header)
	importRow := func(ctx context.Context, uow repository.UnitOfWork, row []string) error {
		row = rejoin(row, width, cols["amount"])
		date, err := ParseDate(field(row, cols["date"]))
		if err != nil {
			return err
		}
		amount, err := ParseAmount(field(row, cols["amount"]))
		if err != nil {
			return err
		}
		name := field(row, cols["account"])
		accountID, ok := byName[strings.ToLower(name)]
		if !ok {
			return domain.Invalid("conto sconosciuto: %q", name)
		}
		var categoryID *uuid.UUID
		if c := field(row, cols["category"]); c != "" {
			cat, err := accountsvc.EnsureCategory(ctx, uow, userID, c, typ)
			if err != nil {
				return err
			}
			categoryID = &cat.ID
		}
		tx, err := account.NewTransaction(userID, accountID, categoryID, typ, amount.Abs(), field(row, cols["description"]), date)
		if err != nil {
			return err
		}
		return txsvc.Record(ctx, uow, userID, tx)
	}
	return s.run(ctx, t, importRow, progress, "userID", userID, "kind", "transactions")
}

// ImportDCA imports rows of data,broker,info,quantita_btc,eur into a DCA
// portfolio. A negative quantity is a sale.
func (s *Service) ImportDCA(
	ctx context.Context,
	userID, portfolioID uuid.UUID,
	r io.Reader,
	progress ProgressFunc,
) (*Result, error) {
	dca, err := s.uow.DCARepository()
	if err != nil {
		return nil, err
	}
	if _, err := dca.GetPortfolio(ctx, userID, portfolioID); err != nil {
		return nil, err
	}
	emit(progress, Event{Type: EventStatus, Message: "lettura del file"})
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	cols := map[string]int{
		"date":     t.column("data", "date"),
		"broker":   t.column("broker"),
		"info":     t.column("info", "note"),
		"quantity": t.column("quantita_btc", "quantità_btc", "btc", "quantity"),
		"eur":      t.column("eur", "eur_paid", "importo"),
	}
	for _, name := range []string{"date", "quantity", "eur"} {
		if cols[name] < 0 {
			return nil, domain.Invalid("colonna obbligatoria mancante: %s", name)
		}
	}
	numeric := []int{cols["quantity"], cols["eur"]}
	if numeric[0] > numeric[1] {
		numeric[0], numeric[1] = numeric[1], numeric[0]
	}

	width := len(t.header)
	importRow := func(ctx context.Context, uow repository.UnitOfWork, row []string) error {
		row = rejoin(row, width, numeric...)
		date, err := ParseDate(field(row, cols["date"]))
		if err != nil {
			return err
		}
		qty, err := ParseAmount(field(row, cols["quantity"]))
		if err != nil {
			return err
		}
		eur, err := ParseAmount(field(row, cols["eur"]))
		if err != nil {
			return err
		}
		tx, err := portfolio.NewDCATransaction(portfolioID, date, field(row, cols["broker"]), field(row, cols["info"]), qty, eur.Abs())
		if err != nil {
			return err
		}
		return portfoliosvc.RecordDCA(ctx, uow, userID, tx)
	}
	return s.run(ctx, t, importRow, progress, "userID", userID, "portfolioID", portfolioID, "kind", "dca")
}

// run processes the rows in batches and reports progress after each row.
func (s *Service) run(ctx context.Context, t *table, importRow rowFunc, progress ProgressFunc, logArgs ...any) (*Result, error) {
	logger := s.logger.With(logArgs...)
	res := &Result{Total: len(t.rows), Errors: []RowError{}}
	logger.Info("Import started", "rows", res.Total, "batchSize", s.batchSize)
	emit(progress, Event{Type: EventStatus, Message: fmt.Sprintf("%d righe da importare", res.Total), Total: res.Total})

	processed := 0
	for start := 0; start < len(t.rows); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		end := min(start+s.batchSize, len(t.rows))
		var (
			imported int
			failed   []RowError
		)
		err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			imported, failed = 0, nil
			for i := start; i < end; i++ {
				rowNum := i + 2
				err := uow.Do(ctx, func(uow repository.UnitOfWork) error {
					return importRow(ctx, uow, t.rows[i])
				})
				if err != nil {
					failed = append(failed, RowError{Row: rowNum, Message: err.Error()})
				} else {
					imported++
				}
				processed++
				emit(progress, Event{Type: EventProgress, Processed: processed, Total: res.Total})
			}
			return nil
		})
		if err != nil {
			logger.Error("Import batch failed", "from", start+2, "to", end+1, "error", err)
			imported, failed = 0, failed[:0]
			for i := start; i < end; i++ {
				failed = append(failed, RowError{Row: i + 2, Message: "batch non salvato: " + err.Error()})
			}
		}
		res.Imported += imported
		res.Failed += len(failed)
		res.Errors = append(res.Errors, failed...)
	}

	logger.Info("Import completed", "imported", res.Imported, "failed", res.Failed)
	emit(progress, Event{Type: EventComplete, Processed: processed, Total: res.Total, Result: res})
	return res, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func emit(progress ProgressFunc, e Event) {
	if progress != nil {
		progress(e)
	}
}
