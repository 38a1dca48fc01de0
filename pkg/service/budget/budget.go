// Package budget provides the business logic for budgets and their
// read-time allocation over bank liquidity.
package budget

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/budget"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxReserveColor is the color given to the tax reserve budget.
const TaxReserveColor = "#dc2626"

// Service provides budget operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Input carries the editable fields of a budget. A nil Order appends the
// budget after the existing ones.
type Input struct {
	Name         string
	Type         budget.Type
	TargetAmount decimal.Decimal
	Order        *int
	Color        string
}

var errTaxReserveLocked = &domain.BusinessError{
	Err:     domain.ErrInvalidState,
	Message: "la riserva tasse è gestita automaticamente dalla Partita IVA",
}

// Overview allocates the current bank liquidity over the user's budgets.
func (s *Service) Overview(ctx context.Context, userID uuid.UUID) (*budget.Overview, error) {
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	all, err := accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	liquidity := decimal.Zero
	for _, a := range all {
		if a.IsLiquidity() {
			liquidity = liquidity.Add(a.Balance)
		}
	}
	repo, err := s.uow.BudgetRepository()
	if err != nil {
		return nil, err
	}
	budgets, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ov := budget.Allocate(liquidity, budgets)
	return &ov, nil
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, in Input) (b *budget.Budget, err error) {
	logger := s.logger.With("userID", userID, "name", in.Name)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		existing, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		order := nextOrder(existing)
		if in.Order != nil {
			order = *in.Order
		}
		if b, err = budget.New(userID, in.Name, in.Type, in.TargetAmount, order, in.Color); err != nil {
			return err
		}
		if strings.EqualFold(b.Name, budget.TaxReserveName) {
			return domain.Conflict("il nome %q è riservato", budget.TaxReserveName)
		}
		if err := checkOrder(existing, b); err != nil {
			return err
		}
		return repo.Create(ctx, b)
	})
	if err != nil {
		logger.Error("CreateBudget failed", "error", err)
		return nil, err
	}
	logger.Info("CreateBudget successful", "budgetID", b.ID)
	return b, nil
}

// Update edits a budget. The tax reserve only accepts order and color.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in Input) (b *budget.Budget, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		if b, err = repo.Get(ctx, userID, id); err != nil {
			return err
		}
		if b.IsTaxReserve {
			if !strings.EqualFold(strings.TrimSpace(in.Name), b.Name) ||
				in.Type != b.Type || !in.TargetAmount.Equal(b.TargetAmount) {
				return errTaxReserveLocked
			}
		} else {
			b.Name = strings.TrimSpace(in.Name)
			b.Type = in.Type
			b.TargetAmount = in.TargetAmount
			if strings.EqualFold(b.Name, budget.TaxReserveName) {
				return domain.Conflict("il nome %q è riservato", budget.TaxReserveName)
			}
		}
		if in.Order != nil {
			b.Order = *in.Order
		}
		b.Color = in.Color
		if err := b.Validate(); err != nil {
			return err
		}
		existing, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := checkOrder(existing, b); err != nil {
			return err
		}
		b.UpdatedAt = time.Now().UTC()
		return repo.Update(ctx, b)
	})
	if err != nil {
		s.logger.Error("UpdateBudget failed", "userID", userID, "budgetID", id, "error", err)
		return nil, err
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		if _, err := repo.Get(ctx, userID, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("DeleteBudget failed", "userID", userID, "budgetID", id, "error", err)
		return err
	}
	s.logger.Info("DeleteBudget successful", "userID", userID, "budgetID", id)
	return nil
}

// Reorder assigns positions 0..n-1 following ids, which must list every
// budget of the user exactly once.
func (s *Service) Reorder(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		existing, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(ids) != len(existing) {
			return domain.Invalid("l'elenco deve contenere tutti i budget")
		}
		byID := make(map[uuid.UUID]*budget.Budget, len(existing))
		for _, b := range existing {
			byID[b.ID] = b
		}
		now := time.Now().UTC()
		for i, id := range ids {
			b, ok := byID[id]
			if !ok {
				return domain.Invalid("budget sconosciuto o duplicato: %s", id)
			}
			delete(byID, id)
			if b.Order == i {
				continue
			}
			b.Order, b.UpdatedAt = i, now
			if err := repo.Update(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("ReorderBudgets failed", "userID", userID, "error", err)
	}
	return err
}

// SyncTaxReserve upserts the fixed tax reserve budget with the given
// target. It runs on the caller's unit of work.
func SyncTaxReserve(ctx context.Context, uow repository.UnitOfWork, userID uuid.UUID, target decimal.Decimal) error {
	repo, err := uow.BudgetRepository()
	if err != nil {
		return err
	}
	b, err := repo.GetByName(ctx, userID, budget.TaxReserveName)
	switch {
	case err == nil:
		if b.IsTaxReserve && b.Type == budget.TypeFixed && b.TargetAmount.Equal(target) {
			return nil
		}
		b.Type = budget.TypeFixed
		b.TargetAmount = target
		b.IsTaxReserve = true
		b.UpdatedAt = time.Now().UTC()
		return repo.Update(ctx, b)
	case errors.Is(err, domain.ErrNotFound):
		existing, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		b, err := budget.New(userID, budget.TaxReserveName, budget.TypeFixed, target, nextOrder(existing), TaxReserveColor)
		if err != nil {
			return err
		}
		b.IsTaxReserve = true
		return repo.Create(ctx, b)
	default:
		return err
	}
}

func nextOrder(budgets []*budget.Budget) int {
	next := 0
	for _, b := range budgets {
		if b.Order >= next {
			next = b.Order + 1
		}
	}
	return next
}

func checkOrder(budgets []*budget.Budget, b *budget.Budget) error {
	for _, other := range budgets {
		if other.ID != b.ID && other.Order == b.Order {
			return domain.Conflict("la posizione %d è già occupata da %q", b.Order, other.Name)
		}
	}
	return nil
}
