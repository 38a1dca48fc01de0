package repository

import (
	"context"
	"reflect"
)

// UnitOfWork is the transaction boundary and the only way services reach
// repositories. Repositories obtained from the uow passed to Do share its
// transaction; outside Do they run on the plain connection.
//
//	err := uow.Do(ctx, func(uow repository.UnitOfWork) error {
//		accounts, err := uow.AccountRepository()
//		...
//	})
type UnitOfWork interface {
	// Do runs fn inside a database transaction. Returning an error from fn
	// rolls everything back. Nested calls use savepoints.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns the repository registered for an interface type,
	// e.g. reflect.TypeOf((*AccountRepository)(nil)).Elem().
	GetRepository(repoType reflect.Type) (any, error)

	AccountRepository() (AccountRepository, error)
	CategoryRepository() (CategoryRepository, error)
	TransactionRepository() (TransactionRepository, error)
	TransferRepository() (TransferRepository, error)
	BudgetRepository() (BudgetRepository, error)
	DCARepository() (DCARepository, error)
	CryptoRepository() (CryptoRepository, error)
	FeeRepository() (FeeRepository, error)
	TaxRepository() (TaxRepository, error)
	SnapshotRepository() (SnapshotRepository, error)
}
