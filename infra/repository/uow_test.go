package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUoW_DoAndGetRepository(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	db, mock := newMockDB(t)

	uow := NewUoW(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		repoAny, err := txUow.GetRepository(reflect.TypeOf((*repository.AccountRepository)(nil)).Elem())
		require.NoError(err)
		_, ok := repoAny.(*accountRepository)
		assert.True(ok)

		repoAny, err = txUow.GetRepository(reflect.TypeOf((*repository.CryptoRepository)(nil)).Elem())
		require.NoError(err)
		_, ok = repoAny.(*cryptoRepository)
		assert.True(ok)
		return nil
	})
	assert.NoError(err)
	require.NoError(mock.ExpectationsWereMet())
}

func TestUoW_UnsupportedRepository(t *testing.T) {
	db, _ := newMockDB(t)
	uow := NewUoW(db)

	_, err := uow.GetRepository(reflect.TypeOf((*error)(nil)).Elem())
	assert.Error(t, err)
}

func TestUoW_RollbackOnError(t *testing.T) {
	require := require.New(t)
	db, mock := newMockDB(t)
	uow := NewUoW(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := uow.Do(context.Background(), func(repository.UnitOfWork) error { return boom })
	require.ErrorIs(err, boom)
	require.NoError(mock.ExpectationsWereMet())
}

func TestUoW_TypeSafeMethods(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	db, mock := newMockDB(t)

	uow := NewUoW(db)

	// outside a transaction repositories run on the plain connection
	accounts, err := uow.AccountRepository()
	require.NoError(err)
	assert.NotNil(accounts)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err = uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		checks := []func() (any, error){
			func() (any, error) { return txUow.AccountRepository() },
			func() (any, error) { return txUow.CategoryRepository() },
			func() (any, error) { return txUow.TransactionRepository() },
			func() (any, error) { return txUow.TransferRepository() },
			func() (any, error) { return txUow.BudgetRepository() },
			func() (any, error) { return txUow.DCARepository() },
			func() (any, error) { return txUow.CryptoRepository() },
			func() (any, error) { return txUow.FeeRepository() },
			func() (any, error) { return txUow.TaxRepository() },
			func() (any, error) { return txUow.SnapshotRepository() },
		}
		for _, get := range checks {
			repo, err := get()
			require.NoError(err)
			assert.NotNil(repo)
		}
		return nil
	})
	assert.NoError(err)
}
