// Package tax provides the Partita IVA operations: yearly configurations,
// invoiced income, tax payments and the yearly summaries. Every income or
// payment change re-syncs the tax reserve budget in the same database
// transaction.
package tax

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/tax"
	"github.com/amirasaad/finanze/pkg/repository"
	budgetsvc "github.com/amirasaad/finanze/pkg/service/budget"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides Partita IVA operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Rates are the percentages of a yearly configuration.
type Rates struct {
	TaxRate                  decimal.Decimal
	INPSRate                 decimal.Decimal
	ProfitabilityCoefficient decimal.Decimal
}

func (s *Service) ListConfigs(ctx context.Context, userID uuid.UUID) ([]*tax.Config, error) {
	repo, err := s.uow.TaxRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListConfigs(ctx, userID)
}

func (s *Service) GetConfig(ctx context.Context, userID uuid.UUID, year int) (*tax.Config, error) {
	repo, err := s.uow.TaxRepository()
	if err != nil {
		return nil, err
	}
	return repo.GetConfig(ctx, userID, year)
}

// CreateConfig adds the configuration of a year; one per year.
func (s *Service) CreateConfig(ctx context.Context, userID uuid.UUID, year int, r Rates) (c *tax.Config, err error) {
	c, err = tax.NewConfig(userID, year, r.TaxRate, r.INPSRate, r.ProfitabilityCoefficient)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TaxRepository()
		if err != nil {
			return err
		}
		return repo.CreateConfig(ctx, c)
	})
	if err != nil {
		s.logger.Error("CreateTaxConfig failed", "userID", userID, "year", year, "error", err)
		return nil, err
	}
	s.logger.Info("CreateTaxConfig successful", "userID", userID, "year", year)
	return c, nil
}

// UpdateConfig changes the rates of a year. Amounts due change with them,
// so the reserve is synced.
func (s *Service) UpdateConfig(ctx context.Context, userID uuid.UUID, year int, r Rates) (c *tax.Config, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TaxRepository()
		if err != nil {
			return err
		}
		if c, err = repo.GetConfig(ctx, userID, year); err != nil {
			return err
		}
		c.TaxRate = r.TaxRate
		c.INPSRate = r.INPSRate
		c.ProfitabilityCoefficient = r.ProfitabilityCoefficient
		if err := c.Validate(); err != nil {
			return err
		}
		c.UpdatedAt = time.Now().UTC()
		if err := repo.UpdateConfig(ctx, c); err != nil {
			return err
		}
		return syncReserve(ctx, uow, userID)
	})
	if err != nil {
		s.logger.Error("UpdateTaxConfig failed", "userID", userID, "year", year, "error", err)
		return nil, err
	}
	return c, nil
}

// ListIncomes returns incomes with their tax breakdown. year <= 0 lists
// every year.
func (s *Service) ListIncomes(ctx context.Context, userID uuid.UUID, year int) ([]tax.IncomeView, error) {
	repo, err := s.uow.TaxRepository()
	if err != nil {
		return nil, err
	}
	incomes, err := repo.ListIncomes(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	configs, err := configsByYear(ctx, repo, userID)
	if err != nil {
		return nil, err
	}
	out := make([]tax.IncomeView, 0, len(incomes))
	for _, in := range incomes {
		view := tax.IncomeView{Income: in}
		if c, ok := configs[in.Year]; ok {
			view.Breakdown = c.Compute(in.Amount)
		}
		out = append(out, view)
	}
	return out, nil
}

// CreateIncome books revenue under the configuration of its date's year.
func (s *Service) CreateIncome(
	ctx context.Context,
	userID uuid.UUID,
	date time.Time,
	description string,
	amount decimal.Decimal,
) (view *tax.IncomeView, err error) {
	logger := s.logger.With("userID", userID, "amount", amount)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TaxRepository()
		if err != nil {
			return err
		}
		cfg, err := repo.GetConfig(ctx, userID, date.Year())
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Invalid("nessuna configurazione Partita IVA per l'anno %d", date.Year())
		}
		if err != nil {
			return err
		}
		in, err := tax.NewIncome(cfg, date, description, amount)
		if err != nil {
			return err
		}
		if err := repo.CreateIncome(ctx, in); err != nil {
			return err
		}
		view = &tax.IncomeView{Income: in, Breakdown: cfg.Compute(in.Amount)}
		return syncReserve(ctx, uow, userID)
	})
	if err != nil {
		logger.Error("CreateIncome failed", "error", err)
		return nil, err
	}
	logger.Info("CreateIncome successful", "incomeID", view.ID)
	return view, nil
}

func (s *Service) DeleteIncome(ctx context.Context, userID, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TaxRepository()
		if err != nil {
			return err
		}
		if _, err := repo.GetIncome(ctx, userID, id); err != nil {
			return err
		}
		if err := repo.DeleteIncome(ctx, id); err != nil {
			return err
		}
		return syncReserve(ctx, uow, userID)
	})
	if err != nil {
		s.logger.Error("DeleteIncome failed", "userID", userID, "incomeID", id, "error", err)
	}
	return err
}

func (s *Service) ListPayments(ctx context.Context, userID uuid.UUID, year int) ([]*tax.Payment, error) {
	repo, err := s.uow.TaxRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListPayments(ctx, userID, year)
}

// CreatePayment records a tax payment. year 0 means the payment date's year.
func (s *Service) CreatePayment(
	ctx context.Context,
	userID uuid.UUID,
	year int,
	date time.Time,
	description string,
	amount decimal.Decimal,
	typ tax.PaymentType,
) (p *tax.Payment, err error) {
	p, err = tax.NewPayment(userID, year, date, description, amount, typ)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TaxRepository()
		if err != nil {
			return err
		}
		if err := repo.CreatePayment(ctx, p); err != nil {
			return err
		}
		return syncReserve(ctx, uow, userID)
	})
	if err != nil {
		s.logger.Error("CreateTaxPayment failed", "userID", userID, "error", err)
		return nil, err
	}
	s.logger.Info("CreateTaxPayment successful", "userID", userID, "paymentID", p.ID, "year", p.Year)
	return p, nil
}

func (s *Service) DeletePayment(ctx context.Context, userID, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TaxRepository()
		if err != nil {
			return err
		}
		if _, err := repo.GetPayment(ctx, userID, id); err != nil {
			return err
		}
		if err := repo.DeletePayment(ctx, id); err != nil {
			return err
		}
		return syncReserve(ctx, uow, userID)
	})
	if err != nil {
		s.logger.Error("DeleteTaxPayment failed", "userID", userID, "paymentID", id, "error", err)
	}
	return err
}

// Summary totals one fiscal year.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, year int) (*tax.Summary, error) {
	repo, err := s.uow.TaxRepository()
	if err != nil {
		return nil, err
	}
	cfg, err := repo.GetConfig(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	incomes, err := repo.ListIncomes(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	payments, err := repo.ListPayments(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	sum := tax.Summarize(cfg, incomes, payments)
	return &sum, nil
}

// syncReserve recomputes the outstanding taxes over every year and stores
// them as the reserve budget target.
func syncReserve(ctx context.Context, uow repository.UnitOfWork, userID uuid.UUID) error {
	repo, err := uow.TaxRepository()
	if err != nil {
		return err
	}
	configs, err := repo.ListConfigs(ctx, userID)
	if err != nil {
		return err
	}
	incomes, err := repo.ListIncomes(ctx, userID, 0)
	if err != nil {
		return err
	}
	payments, err := repo.ListPayments(ctx, userID, 0)
	if err != nil {
		return err
	}
	target := tax.ReserveTarget(tax.SummarizeAll(configs, incomes, payments))
	return budgetsvc.SyncTaxReserve(ctx, uow, userID, target)
}

func configsByYear(ctx context.Context, repo repository.TaxRepository, userID uuid.UUID) (map[int]*tax.Config, error) {
	configs, err := repo.ListConfigs(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[int]*tax.Config, len(configs))
	for _, c := range configs {
		out[c.Year] = c
	}
	return out, nil
}
