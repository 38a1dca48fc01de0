// Package dashboard aggregates the user's accounts, monthly cash flow and
// portfolios into one overview.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/repository"
	portfoliosvc "github.com/amirasaad/finanze/pkg/service/portfolio"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service builds the dashboard.
type Service struct {
	uow        repository.UnitOfWork
	portfolios *portfoliosvc.Service
	logger     *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(uow repository.UnitOfWork, portfolios *portfoliosvc.Service, logger *slog.Logger) *Service {
	return &Service{uow: uow, portfolios: portfolios, logger: logger}
}

// PortfolioTotals sums one kind of portfolio.
type PortfolioTotals struct {
	Count        int             `json:"count"`
	Invested     decimal.Decimal `json:"invested"`
	CurrentValue decimal.Decimal `json:"currentValue"`
}

// Dashboard is the overview of the user's finances.
type Dashboard struct {
	TotalLiquidity    decimal.Decimal           `json:"totalLiquidity"`
	InvestmentBalance decimal.Decimal           `json:"investmentBalance"`
	NetWorth          decimal.Decimal           `json:"netWorth"`
	MonthIncome       decimal.Decimal           `json:"monthIncome"`
	MonthExpense      decimal.Decimal           `json:"monthExpense"`
	MonthNet          decimal.Decimal           `json:"monthNet"`
	Accounts          []*account.Account        `json:"accounts"`
	DCA               PortfolioTotals           `json:"dca"`
	Crypto            PortfolioTotals           `json:"crypto"`
	DCAPortfolios     []portfoliosvc.DCAView    `json:"dcaPortfolios"`
	CryptoPortfolios  []portfoliosvc.CryptoView `json:"cryptoPortfolios"`
}

// Get builds the dashboard for the month containing now. Net worth is the
// sum of every account balance plus the market value of the portfolios.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, now time.Time) (*Dashboard, error) {
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	all, err := accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{
		TotalLiquidity:    decimal.Zero,
		InvestmentBalance: decimal.Zero,
		MonthIncome:       decimal.Zero,
		MonthExpense:      decimal.Zero,
		Accounts:          all,
		DCA:               PortfolioTotals{Invested: decimal.Zero, CurrentValue: decimal.Zero},
		Crypto:            PortfolioTotals{Invested: decimal.Zero, CurrentValue: decimal.Zero},
	}
	for _, a := range all {
		if a.IsLiquidity() {
			d.TotalLiquidity = d.TotalLiquidity.Add(a.Balance)
		} else {
			d.InvestmentBalance = d.InvestmentBalance.Add(a.Balance)
		}
	}

	y, m, _ := now.UTC().Date()
	from := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	transactions, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	month, _, err := transactions.List(ctx, userID, repository.TransactionFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	for _, tx := range month {
		if tx.Type == account.TransactionIncome {
			d.MonthIncome = d.MonthIncome.Add(tx.Amount)
		} else {
			d.MonthExpense = d.MonthExpense.Add(tx.Amount)
		}
	}
	d.MonthNet = d.MonthIncome.Sub(d.MonthExpense)

	if d.DCAPortfolios, err = s.portfolios.ListDCA(ctx, userID); err != nil {
		return nil, err
	}
	for _, p := range d.DCAPortfolios {
		d.DCA.Count++
		d.DCA.Invested = d.DCA.Invested.Add(p.Stats.EffectiveInvestment)
		d.DCA.CurrentValue = d.DCA.CurrentValue.Add(p.Stats.CurrentValue)
	}
	if d.CryptoPortfolios, err = s.portfolios.ListCrypto(ctx, userID); err != nil {
		return nil, err
	}
	for _, p := range d.CryptoPortfolios {
		d.Crypto.Count++
		d.Crypto.Invested = d.Crypto.Invested.Add(p.Stats.EffectiveInvestment)
		d.Crypto.CurrentValue = d.Crypto.CurrentValue.Add(p.Stats.CurrentValue)
	}

	d.NetWorth = d.TotalLiquidity.
		Add(d.InvestmentBalance).
		Add(d.DCA.CurrentValue).
		Add(d.Crypto.CurrentValue)
	s.logger.Debug("Dashboard built", "userID", userID, "netWorth", d.NetWorth)
	return d, nil
}
