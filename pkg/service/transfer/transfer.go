// Package transfer provides the business logic for moving money between
// two accounts of the same user, optionally recognizing a gain on the
// destination.
package transfer

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/domain/ledger"
	"github.com/amirasaad/finanze/pkg/repository"
	accountsvc "github.com/amirasaad/finanze/pkg/service/account"
	txsvc "github.com/amirasaad/finanze/pkg/service/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides transfer operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Input carries the editable fields of a transfer.
type Input struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	GainAmount    decimal.NullDecimal
	Description   string
	Date          time.Time
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*account.Transfer, error) {
	repo, err := s.uow.TransferRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByUser(ctx, userID)
}

// Create moves the amount between the accounts. The source must hold
// enough funds.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in Input) (t *account.Transfer, err error) {
	logger := s.logger.With("userID", userID, "from", in.FromAccountID, "to", in.ToAccountID)
	logger.Info("CreateTransfer started", "amount", in.Amount)
	t, err = account.NewTransfer(userID, in.FromAccountID, in.ToAccountID, in.Amount, in.Description, in.Date)
	if err != nil {
		logger.Error("CreateTransfer failed: domain error", "error", err)
		return nil, err
	}
	t.GainAmount = in.GainAmount
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err := checkAccounts(ctx, accounts, userID, t); err != nil {
			return err
		}
		if err := ledger.Replace(ctx, accounts, nil, t.Effects(), true); err != nil {
			return err
		}
		if err := bookGain(ctx, uow, userID, t); err != nil {
			return err
		}
		repo, err := uow.TransferRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, t)
	})
	if err != nil {
		logger.Error("CreateTransfer failed", "error", err)
		return nil, err
	}
	logger.Info("CreateTransfer successful", "transferID", t.ID)
	return t, nil
}

// Update replaces a transfer. The gain transaction is rebuilt from the new
// values.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in Input) (t *account.Transfer, err error) {
	logger := s.logger.With("userID", userID, "transferID", id)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransferRepository()
		if err != nil {
			return err
		}
		if t, err = repo.Get(ctx, userID, id); err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err := dropGain(ctx, uow, userID, t); err != nil {
			return err
		}
		old := t.Effects()

		t.FromAccountID = in.FromAccountID
		t.ToAccountID = in.ToAccountID
		t.Amount = in.Amount
		t.GainAmount = in.GainAmount
		t.Description = in.Description
		t.Date = in.Date.UTC()
		if err := t.Validate(); err != nil {
			return err
		}
		if err := checkAccounts(ctx, accounts, userID, t); err != nil {
			return err
		}
		if err := ledger.Replace(ctx, accounts, old, t.Effects(), true); err != nil {
			return err
		}
		if err := bookGain(ctx, uow, userID, t); err != nil {
			return err
		}
		t.UpdatedAt = time.Now().UTC()
		return repo.Update(ctx, t)
	})
	if err != nil {
		logger.Error("UpdateTransfer failed", "error", err)
		return nil, err
	}
	logger.Info("UpdateTransfer successful")
	return t, nil
}

// Delete reverts the transfer and its gain transaction.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransferRepository()
		if err != nil {
			return err
		}
		t, err := repo.Get(ctx, userID, id)
		if err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err := ledger.Replace(ctx, accounts, t.Effects(), nil, false); err != nil {
			return err
		}
		if err := dropGain(ctx, uow, userID, t); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("DeleteTransfer failed", "userID", userID, "transferID", id, "error", err)
	}
	return err
}

func checkAccounts(ctx context.Context, accounts repository.AccountRepository, userID uuid.UUID, t *account.Transfer) error {
	if _, err := accounts.Get(ctx, userID, t.FromAccountID); err != nil {
		return err
	}
	_, err := accounts.Get(ctx, userID, t.ToAccountID)
	return err
}

// bookGain records the gain income on the destination and links it.
func bookGain(ctx context.Context, uow repository.UnitOfWork, userID uuid.UUID, t *account.Transfer) error {
	t.GainTransactionID = nil
	if !t.GainAmount.Valid || t.GainAmount.Decimal.IsZero() {
		return nil
	}
	c, err := accountsvc.EnsureCategory(ctx, uow, userID, account.GainCategoryName, account.TransactionIncome)
	if err != nil {
		return err
	}
	gain, err := t.GainTransaction(&c.ID)
	if err != nil {
		return err
	}
	if err := txsvc.Record(ctx, uow, userID, gain); err != nil {
		return err
	}
	t.GainTransactionID = &gain.ID
	return nil
}

// dropGain reverts and deletes the linked gain transaction, if any.
func dropGain(ctx context.Context, uow repository.UnitOfWork, userID uuid.UUID, t *account.Transfer) error {
	if t.GainTransactionID == nil {
		return nil
	}
	transactions, err := uow.TransactionRepository()
	if err != nil {
		return err
	}
	gain, err := transactions.Get(ctx, userID, *t.GainTransactionID)
	if err != nil {
		return err
	}
	accounts, err := uow.AccountRepository()
	if err != nil {
		return err
	}
	if err := ledger.Replace(ctx, accounts, gain.Effects(), nil, false); err != nil {
		return err
	}
	t.GainTransactionID = nil
	return transactions.Delete(ctx, gain.ID)
}
