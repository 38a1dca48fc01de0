// Package account provides the business logic for accounts and categories:
// creation, renaming, cascade deletion and ledger reconciliation.
package account

import (
	"context"
	"log/slog"

	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/domain/ledger"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides account and category operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// CreateAccount creates an account with an optional opening balance.
func (s *Service) CreateAccount(
	ctx context.Context,
	userID uuid.UUID,
	name string,
	typ account.Type,
	balance decimal.Decimal,
) (a *account.Account, err error) {
	logger := s.logger.With("userID", userID, "name", name)
	logger.Info("CreateAccount started")
	a, err = account.New().
		WithUserID(userID).
		WithName(name).
		WithType(typ).
		WithBalance(balance).
		Build()
	if err != nil {
		logger.Error("CreateAccount failed: domain error", "error", err)
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, a)
	})
	if err != nil {
		logger.Error("CreateAccount failed", "error", err)
		return nil, err
	}
	logger.Info("CreateAccount successful", "accountID", a.ID)
	return a, nil
}

// ListAccounts returns the user's accounts with their current balances.
func (s *Service) ListAccounts(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByUser(ctx, userID)
}

// GetAccount returns one account owned by the user.
func (s *Service) GetAccount(ctx context.Context, userID, id uuid.UUID) (*account.Account, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, userID, id)
}

// UpdateAccount renames an account or changes its type. The balance only
// moves through the ledger.
func (s *Service) UpdateAccount(
	ctx context.Context,
	userID, id uuid.UUID,
	name string,
	typ account.Type,
) (a *account.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if a, err = repo.Get(ctx, userID, id); err != nil {
			return err
		}
		// rebuild through the builder to reuse its validation
		next, err := account.New().
			WithID(a.ID).
			WithUserID(userID).
			WithName(name).
			WithType(typ).
			Build()
		if err != nil {
			return err
		}
		a.Name, a.Type = next.Name, next.Type
		return repo.Update(ctx, a)
	})
	if err != nil {
		s.logger.Error("UpdateAccount failed", "userID", userID, "accountID", id, "error", err)
		return nil, err
	}
	return a, nil
}

// DeleteAccount removes an account together with its transactions and the
// transfers touching it. The counterpart of each transfer is reverted so
// the other account's balance stays consistent; portfolios linked to the
// account are unlinked.
func (s *Service) DeleteAccount(ctx context.Context, userID, id uuid.UUID) error {
	logger := s.logger.With("userID", userID, "accountID", id)
	logger.Info("DeleteAccount started")
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		transfers, err := uow.TransferRepository()
		if err != nil {
			return err
		}
		if _, err = accounts.Get(ctx, userID, id); err != nil {
			return err
		}

		linked, err := transfers.ListByAccount(ctx, id)
		if err != nil {
			return err
		}
		for _, t := range linked {
			var other []ledger.Effect
			for _, e := range t.Effects() {
				if e.AccountID != id {
					other = append(other, e)
				}
			}
			if err := ledger.Apply(ctx, accounts, ledger.Reverse(other...)...); err != nil {
				return err
			}
			// a gain booked on the deleted account goes with its transactions
			if t.GainTransactionID != nil && t.ToAccountID != id {
				gain, err := transactions.Get(ctx, userID, *t.GainTransactionID)
				if err != nil {
					return err
				}
				if err := ledger.Apply(ctx, accounts, ledger.Reverse(gain.Effects()...)...); err != nil {
					return err
				}
				if err := transactions.Delete(ctx, gain.ID); err != nil {
					return err
				}
			}
			if err := transfers.Delete(ctx, t.ID); err != nil {
				return err
			}
		}

		if err := transactions.DeleteByAccount(ctx, id); err != nil {
			return err
		}

		dca, err := uow.DCARepository()
		if err != nil {
			return err
		}
		if err := dca.UnlinkAccount(ctx, id); err != nil {
			return err
		}
		crypto, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		if err := crypto.UnlinkAccount(ctx, id); err != nil {
			return err
		}
		logger.Debug("DeleteAccount cascade done", "transfers", len(linked))
		return accounts.Delete(ctx, id)
	})
	if err != nil {
		logger.Error("DeleteAccount failed", "error", err)
		return err
	}
	logger.Info("DeleteAccount successful")
	return nil
}
