// Package transaction provides the business logic for income and expense
// transactions. Every mutation moves the account balance through the
// ledger inside the same database transaction.
package transaction

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/domain/ledger"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides transaction operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Input carries the editable fields of a transaction.
type Input struct {
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Type        account.TransactionType
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// Page is one page of a filtered listing.
type Page struct {
	Transactions []*account.Transaction `json:"transactions"`
	Total        int64                  `json:"total"`
}

var errLinkedGain = &domain.BusinessError{
	Err:     domain.ErrInvalidState,
	Message: "la transazione è collegata a un trasferimento: modificare il trasferimento",
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, f repository.TransactionFilter) (*Page, error) {
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	txs, total, err := repo.List(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return &Page{Transactions: txs, Total: total}, nil
}

// Create books a transaction and applies its effect to the account.
// Expenses may overdraw the account.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in Input) (tx *account.Transaction, err error) {
	logger := s.logger.With("userID", userID, "accountID", in.AccountID, "type", in.Type)
	logger.Info("CreateTransaction started", "amount", in.Amount)
	tx, err = account.NewTransaction(userID, in.AccountID, in.CategoryID, in.Type, in.Amount, in.Description, in.Date)
	if err != nil {
		logger.Error("CreateTransaction failed: domain error", "error", err)
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		return Record(ctx, uow, userID, tx)
	})
	if err != nil {
		logger.Error("CreateTransaction failed", "error", err)
		return nil, err
	}
	logger.Info("CreateTransaction successful", "transactionID", tx.ID)
	return tx, nil
}

// Update replaces a transaction, moving its effect from the old version to
// the new one.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in Input) (tx *account.Transaction, err error) {
	logger := s.logger.With("userID", userID, "transactionID", id)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		if tx, err = repo.Get(ctx, userID, id); err != nil {
			return err
		}
		if err := rejectLinkedGain(ctx, uow, userID, id); err != nil {
			return err
		}
		old := tx.Effects()

		tx.AccountID = in.AccountID
		tx.CategoryID = in.CategoryID
		tx.Type = in.Type
		tx.Amount = in.Amount
		tx.Description = in.Description
		tx.Date = in.Date.UTC()
		if err := tx.Validate(); err != nil {
			return err
		}
		if err := checkOwnership(ctx, uow, userID, tx); err != nil {
			return err
		}
		tx.UpdatedAt = time.Now().UTC()

		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err := ledger.Replace(ctx, accounts, old, tx.Effects(), false); err != nil {
			return err
		}
		return repo.Update(ctx, tx)
	})
	if err != nil {
		logger.Error("UpdateTransaction failed", "error", err)
		return nil, err
	}
	logger.Info("UpdateTransaction successful")
	return tx, nil
}

// Delete removes a transaction and reverts its effect.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		return remove(ctx, uow, userID, id)
	})
	if err != nil {
		s.logger.Error("DeleteTransaction failed", "userID", userID, "transactionID", id, "error", err)
	}
	return err
}

// DeleteMany removes several transactions atomically: one failure keeps
// them all.
func (s *Service) DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, domain.Invalid("nessuna transazione selezionata")
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		for _, id := range ids {
			if err := remove(ctx, uow, userID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("DeleteTransactions failed", "userID", userID, "count", len(ids), "error", err)
		return 0, err
	}
	s.logger.Info("DeleteTransactions successful", "userID", userID, "count", len(ids))
	return len(ids), nil
}

// Record checks ownership of the referenced account and category, stores
// the transaction and applies its effect. It runs on the caller's unit of
// work.
func Record(ctx context.Context, uow repository.UnitOfWork, userID uuid.UUID, tx *account.Transaction) error {
	if err := checkOwnership(ctx, uow, userID, tx); err != nil {
		return err
	}
	repo, err := uow.TransactionRepository()
	if err != nil {
		return err
	}
	if err := repo.Create(ctx, tx); err != nil {
		return err
	}
	accounts, err := uow.AccountRepository()
	if err != nil {
		return err
	}
	return ledger.Replace(ctx, accounts, nil, tx.Effects(), false)
}

func remove(ctx context.Context, uow repository.UnitOfWork, userID, id uuid.UUID) error {
	repo, err := uow.TransactionRepository()
	if err != nil {
		return err
	}
	tx, err := repo.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := rejectLinkedGain(ctx, uow, userID, id); err != nil {
		return err
	}
	accounts, err := uow.AccountRepository()
	if err != nil {
		return err
	}
	if err := ledger.Replace(ctx, accounts, tx.Effects(), nil, false); err != nil {
		return err
	}
	return repo.Delete(ctx, id)
}

func checkOwnership(ctx context.Context, uow repository.UnitOfWork, userID uuid.UUID, tx *account.Transaction) error {
	accounts, err := uow.AccountRepository()
	if err != nil {
		return err
	}
	if _, err := accounts.Get(ctx, userID, tx.AccountID); err != nil {
		return err
	}
	if tx.CategoryID == nil {
		return nil
	}
	categories, err := uow.CategoryRepository()
	if err != nil {
		return err
	}
	c, err := categories.Get(ctx, userID, *tx.CategoryID)
	if err != nil {
		return err
	}
	if c.Type != tx.Type {
		return domain.Invalid("la categoria %q non è di tipo %s", c.Name, tx.Type)
	}
	return nil
}

// rejectLinkedGain fails when the transaction is the gain of a transfer.
func rejectLinkedGain(ctx context.Context, uow repository.UnitOfWork, userID, id uuid.UUID) error {
	transfers, err := uow.TransferRepository()
	if err != nil {
		return err
	}
	all, err := transfers.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, t := range all {
		if t.GainTransactionID != nil && *t.GainTransactionID == id {
			return errLinkedGain
		}
	}
	return nil
}
