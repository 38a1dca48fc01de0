package account

import (
	"context"
	"errors"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
)

func (s *Service) ListCategories(ctx context.Context, userID uuid.UUID) ([]*account.Category, error) {
	repo, err := s.uow.CategoryRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByUser(ctx, userID)
}

func (s *Service) CreateCategory(
	ctx context.Context,
	userID uuid.UUID,
	name string,
	typ account.TransactionType,
	color string,
) (*account.Category, error) {
	c, err := account.NewCategory(userID, name, typ, color)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CategoryRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category; its transactions become uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		categories, err := uow.CategoryRepository()
		if err != nil {
			return err
		}
		if _, err := categories.Get(ctx, userID, id); err != nil {
			return err
		}
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		if err := transactions.ClearCategory(ctx, id); err != nil {
			return err
		}
		return categories.Delete(ctx, id)
	})
}

// EnsureCategory returns the user's category with the given name and type,
// creating it when missing. It runs on the caller's unit of work.
func EnsureCategory(
	ctx context.Context,
	uow repository.UnitOfWork,
	userID uuid.UUID,
	name string,
	typ account.TransactionType,
) (*account.Category, error) {
	repo, err := uow.CategoryRepository()
	if err != nil {
		return nil, err
	}
	c, err := repo.GetByName(ctx, userID, name, typ)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if c, err = account.NewCategory(userID, name, typ, ""); err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
