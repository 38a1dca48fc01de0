package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/amirasaad/finanze/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one
// abstraction. Repositories built from a UoW handed to Do share its
// transaction.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			typeOf[repository.AccountRepository]():     func(db *gorm.DB) any { return NewAccountRepository(db) },
			typeOf[repository.CategoryRepository]():    func(db *gorm.DB) any { return NewCategoryRepository(db) },
			typeOf[repository.TransactionRepository](): func(db *gorm.DB) any { return NewTransactionRepository(db) },
			typeOf[repository.TransferRepository]():    func(db *gorm.DB) any { return NewTransferRepository(db) },
			typeOf[repository.BudgetRepository]():      func(db *gorm.DB) any { return NewBudgetRepository(db) },
			typeOf[repository.DCARepository]():         func(db *gorm.DB) any { return NewDCARepository(db) },
			typeOf[repository.CryptoRepository]():      func(db *gorm.DB) any { return NewCryptoRepository(db) },
			typeOf[repository.FeeRepository]():         func(db *gorm.DB) any { return NewFeeRepository(db) },
			typeOf[repository.TaxRepository]():         func(db *gorm.DB) any { return NewTaxRepository(db) },
			typeOf[repository.SnapshotRepository]():    func(db *gorm.DB) any { return NewSnapshotRepository(db) },
		},
	}
}

// Do runs fn in a transaction, providing a UoW bound to it. Calling Do on a
// UoW that is already inside a transaction opens a savepoint, so fn can fail
// without aborting the outer transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.session().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry})
	})
}

// GetRepository builds the repository registered for repoType on the
// transaction session, or on the plain connection outside Do.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return constructor(u.session()), nil
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func getRepo[T any](u *UoW) (T, error) {
	var zero T
	repo, err := u.GetRepository(typeOf[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := repo.(T)
	if !ok {
		return zero, fmt.Errorf("repository for %v has unexpected type %T", typeOf[T](), repo)
	}
	return typed, nil
}

func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return getRepo[repository.AccountRepository](u)
}

func (u *UoW) CategoryRepository() (repository.CategoryRepository, error) {
	return getRepo[repository.CategoryRepository](u)
}

func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return getRepo[repository.TransactionRepository](u)
}

func (u *UoW) TransferRepository() (repository.TransferRepository, error) {
	return getRepo[repository.TransferRepository](u)
}

func (u *UoW) BudgetRepository() (repository.BudgetRepository, error) {
	return getRepo[repository.BudgetRepository](u)
}

func (u *UoW) DCARepository() (repository.DCARepository, error) {
	return getRepo[repository.DCARepository](u)
}

func (u *UoW) CryptoRepository() (repository.CryptoRepository, error) {
	return getRepo[repository.CryptoRepository](u)
}

func (u *UoW) FeeRepository() (repository.FeeRepository, error) {
	return getRepo[repository.FeeRepository](u)
}

func (u *UoW) TaxRepository() (repository.TaxRepository, error) {
	return getRepo[repository.TaxRepository](u)
}

func (u *UoW) SnapshotRepository() (repository.SnapshotRepository, error) {
	return getRepo[repository.SnapshotRepository](u)
}
