package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestMapError(t *testing.T) {
	t.Parallel()

	other := errors.New("some other error")
	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{name: "nil error returns nil", input: nil, expected: nil},
		{name: "record not found maps to ErrNotFound", input: gorm.ErrRecordNotFound, expected: domain.ErrNotFound},
		{name: "duplicate key maps to ErrAlreadyExists", input: gorm.ErrDuplicatedKey, expected: domain.ErrAlreadyExists},
		{name: "wrapped duplicate key maps correctly", input: errors.Join(errors.New("outer"), gorm.ErrDuplicatedKey), expected: domain.ErrAlreadyExists},
		{name: "other errors pass through", input: other, expected: other},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := mapError(tt.input, "conto")
			if tt.expected == nil {
				require.NoError(t, result)
				return
			}
			assert.ErrorIs(t, result, tt.expected)
		})
	}
}

func TestAccountRepository_Get(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	db, mock := newMockDB(t)

	repo := accountRepository{db: db}
	userID := uuid.New()
	accountID := uuid.New()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "type", "balance", "opening_balance", "created_at", "updated_at"}).
		AddRow(accountID.String(), userID.String(), "Fineco", "bank", "1250.50", "1000", now, now)
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE .+ LIMIT .+`).
		WithArgs(accountID, userID, 1).
		WillReturnRows(rows)

	acc, err := repo.Get(context.Background(), userID, accountID)
	require.NoError(err)
	assert.Equal(accountID, acc.ID)
	assert.Equal("Fineco", acc.Name)
	assert.True(decimal.RequireFromString("1250.50").Equal(acc.Balance))
	assert.True(decimal.NewFromInt(1000).Equal(acc.OpeningBalance))

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE .+ LIMIT .+`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 1).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err = repo.Get(context.Background(), userID, uuid.New())
	require.Error(err)
	assert.ErrorIs(err, domain.ErrNotFound)
	require.NoError(mock.ExpectationsWereMet())
}

func TestAccountRepository_AdjustBalanceLocksRow(t *testing.T) {
	require := require.New(t)
	db, mock := newMockDB(t)

	repo := accountRepository{db: db}
	id := uuid.New()

	mock.ExpectQuery(`SELECT "id","balance" FROM "accounts" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance"}).AddRow(id.String(), "100"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "accounts" SET "balance"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs(decimal.NewFromInt(85), sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(repo.AdjustBalance(context.Background(), id, decimal.NewFromInt(-15)))

	mock.ExpectQuery(`SELECT "id","balance" FROM "accounts" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	err := repo.AdjustBalance(context.Background(), id, decimal.NewFromInt(5))
	require.ErrorIs(err, domain.ErrNotFound)
	require.NoError(mock.ExpectationsWereMet())
}

func TestFeeRepository_Delete(t *testing.T) {
	require := require.New(t)
	db, mock := newMockDB(t)

	repo := feeRepository{db: db}
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "network_fees" WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(repo.Delete(context.Background(), id))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "network_fees" WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), id)
	require.ErrorIs(err, domain.ErrNotFound)
	require.NoError(mock.ExpectationsWereMet())
}

func TestTaxRepository_ListIncomes(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	db, mock := newMockDB(t)

	repo := taxRepository{db: db}
	userID := uuid.New()
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "user_id", "config_id", "year", "date", "description", "amount", "created_at"}).
		AddRow(uuid.NewString(), userID.String(), uuid.NewString(), 2024, date, "Fattura 12", "10000", date)
	mock.ExpectQuery(`SELECT \* FROM "partita_iva_incomes" WHERE user_id = \$1 AND year = \$2 ORDER BY date DESC, created_at DESC`).
		WithArgs(userID, 2024).
		WillReturnRows(rows)

	incomes, err := repo.ListIncomes(context.Background(), userID, 2024)
	require.NoError(err)
	require.Len(incomes, 1)
	assert.Equal(2024, incomes[0].Year)
	assert.True(decimal.NewFromInt(10000).Equal(incomes[0].Amount))

	mock.ExpectQuery(`SELECT \* FROM "partita_iva_incomes" WHERE user_id = \$1 ORDER BY date DESC, created_at DESC`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	incomes, err = repo.ListIncomes(context.Background(), userID, 0)
	require.NoError(err)
	assert.Empty(incomes)
	require.NoError(mock.ExpectationsWereMet())
}

func TestSnapshotRepository_FindAutomatic(t *testing.T) {
	require := require.New(t)
	db, mock := newMockDB(t)

	repo := snapshotRepository{db: db}
	userID := uuid.New()
	day := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "holdings_snapshots" WHERE .+ LIMIT .+`).
		WithArgs(userID, true, domain.Day(day), domain.Day(day).Add(24*time.Hour), 1).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.FindAutomatic(context.Background(), userID, day)
	require.ErrorIs(err, domain.ErrNotFound)
	require.NoError(mock.ExpectationsWereMet())
}
