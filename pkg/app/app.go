package app

import (
	"log/slog"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/provider"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/amirasaad/finanze/pkg/service/account"
	"github.com/amirasaad/finanze/pkg/service/auth"
	"github.com/amirasaad/finanze/pkg/service/budget"
	"github.com/amirasaad/finanze/pkg/service/dashboard"
	"github.com/amirasaad/finanze/pkg/service/importer"
	"github.com/amirasaad/finanze/pkg/service/portfolio"
	"github.com/amirasaad/finanze/pkg/service/snapshot"
	"github.com/amirasaad/finanze/pkg/service/tax"
	"github.com/amirasaad/finanze/pkg/service/transaction"
	"github.com/amirasaad/finanze/pkg/service/transfer"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	Uow    repository.UnitOfWork
	Prices provider.Price
	Logger *slog.Logger
}

type App struct {
	Deps               *Deps
	Config             *config.App
	AuthService        *auth.Service
	AccountService     *account.Service
	TransactionService *transaction.Service
	TransferService    *transfer.Service
	BudgetService      *budget.Service
	PortfolioService   *portfolio.Service
	TaxService         *tax.Service
	SnapshotService    *snapshot.Service
	DashboardService   *dashboard.Service
	ImportService      *importer.Service
}

func New(deps *Deps, cfg *config.App) *App {
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.AuthService = auth.NewService(cfg.Auth.Jwt, deps.Logger)
	app.AccountService = account.NewService(deps.Uow, deps.Logger)
	app.TransactionService = transaction.NewService(deps.Uow, deps.Logger)
	app.TransferService = transfer.NewService(deps.Uow, deps.Logger)
	app.BudgetService = budget.NewService(deps.Uow, deps.Logger)
	app.PortfolioService = portfolio.NewService(deps.Uow, deps.Prices, deps.Logger)
	app.TaxService = tax.NewService(deps.Uow, deps.Logger)
	app.SnapshotService = snapshot.NewService(deps.Uow, deps.Prices, deps.Logger)
	app.DashboardService = dashboard.NewService(deps.Uow, app.PortfolioService, deps.Logger)
	batchSize := 0
	if cfg.Import != nil {
		batchSize = cfg.Import.BatchSize
	}
	app.ImportService = importer.NewService(deps.Uow, batchSize, deps.Logger)
	return app
}
