// Package repository declares the persistence contracts used by services.
// Lookups taking a userID only return rows owned by that user and report
// domain.ErrNotFound otherwise.
package repository

import (
	"context"
	"time"

	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/domain/budget"
	"github.com/amirasaad/finanze/pkg/domain/portfolio"
	"github.com/amirasaad/finanze/pkg/domain/snapshot"
	"github.com/amirasaad/finanze/pkg/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository persists accounts. It also implements ledger.Balances.
type AccountRepository interface {
	Create(ctx context.Context, a *account.Account) error
	Get(ctx context.Context, userID, id uuid.UUID) (*account.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error)
	Update(ctx context.Context, a *account.Account) error
	Delete(ctx context.Context, id uuid.UUID) error

	Balance(ctx context.Context, id uuid.UUID) (string, decimal.Decimal, error)
	AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
	SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
}

type CategoryRepository interface {
	Create(ctx context.Context, c *account.Category) error
	Get(ctx context.Context, userID, id uuid.UUID) (*account.Category, error)
	// GetByName matches the name case-insensitively.
	GetByName(ctx context.Context, userID uuid.UUID, name string, typ account.TransactionType) (*account.Category, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionFilter narrows a transaction listing. Zero values are ignored.
type TransactionFilter struct {
	Type       account.TransactionType
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *account.Transaction) error
	Get(ctx context.Context, userID, id uuid.UUID) (*account.Transaction, error)
	Update(ctx context.Context, tx *account.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, f TransactionFilter) ([]*account.Transaction, int64, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transaction, error)
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) error
	// ClearCategory detaches every transaction from a deleted category.
	ClearCategory(ctx context.Context, categoryID uuid.UUID) error
}

type TransferRepository interface {
	Create(ctx context.Context, t *account.Transfer) error
	Get(ctx context.Context, userID, id uuid.UUID) (*account.Transfer, error)
	Update(ctx context.Context, t *account.Transfer) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Transfer, error)
	// ListByAccount returns transfers where the account is source or destination.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transfer, error)
}

type BudgetRepository interface {
	Create(ctx context.Context, b *budget.Budget) error
	Get(ctx context.Context, userID, id uuid.UUID) (*budget.Budget, error)
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*budget.Budget, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*budget.Budget, error)
	Update(ctx context.Context, b *budget.Budget) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type DCARepository interface {
	CreatePortfolio(ctx context.Context, p *portfolio.DCAPortfolio) error
	GetPortfolio(ctx context.Context, userID, id uuid.UUID) (*portfolio.DCAPortfolio, error)
	ListPortfolios(ctx context.Context, userID uuid.UUID) ([]*portfolio.DCAPortfolio, error)
	UpdatePortfolio(ctx context.Context, p *portfolio.DCAPortfolio) error
	DeletePortfolio(ctx context.Context, id uuid.UUID) error
	// ListOwners returns every user that owns at least one DCA portfolio.
	ListOwners(ctx context.Context) ([]uuid.UUID, error)
	// UnlinkAccount clears the account link of every portfolio using it.
	UnlinkAccount(ctx context.Context, accountID uuid.UUID) error

	CreateTransaction(ctx context.Context, tx *portfolio.DCATransaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*portfolio.DCATransaction, error)
	UpdateTransaction(ctx context.Context, tx *portfolio.DCATransaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ListTransactions(ctx context.Context, portfolioID uuid.UUID) ([]*portfolio.DCATransaction, error)
	DeleteTransactions(ctx context.Context, portfolioID uuid.UUID) error
}

type CryptoRepository interface {
	CreatePortfolio(ctx context.Context, p *portfolio.CryptoPortfolio) error
	GetPortfolio(ctx context.Context, userID, id uuid.UUID) (*portfolio.CryptoPortfolio, error)
	ListPortfolios(ctx context.Context, userID uuid.UUID) ([]*portfolio.CryptoPortfolio, error)
	UpdatePortfolio(ctx context.Context, p *portfolio.CryptoPortfolio) error
	DeletePortfolio(ctx context.Context, id uuid.UUID) error
	UnlinkAccount(ctx context.Context, accountID uuid.UUID) error

	CreateAsset(ctx context.Context, a *portfolio.Asset) error
	GetAsset(ctx context.Context, id uuid.UUID) (*portfolio.Asset, error)
	GetAssetBySymbol(ctx context.Context, symbol string) (*portfolio.Asset, error)
	ListAssets(ctx context.Context) ([]*portfolio.Asset, error)

	CreateTransaction(ctx context.Context, tx *portfolio.CryptoTransaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*portfolio.CryptoTransaction, error)
	UpdateTransaction(ctx context.Context, tx *portfolio.CryptoTransaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ListTransactions(ctx context.Context, portfolioID uuid.UUID) ([]*portfolio.CryptoTransaction, error)
	ListAssetTransactions(ctx context.Context, portfolioID, assetID uuid.UUID) ([]*portfolio.CryptoTransaction, error)
	ListSwapPair(ctx context.Context, swapPairID uuid.UUID) ([]*portfolio.CryptoTransaction, error)
	DeleteTransactions(ctx context.Context, portfolioID uuid.UUID) error

	GetHolding(ctx context.Context, portfolioID, assetID uuid.UUID) (*portfolio.Holding, error)
	ListHoldings(ctx context.Context, portfolioID uuid.UUID) ([]*portfolio.Holding, error)
	SaveHolding(ctx context.Context, h *portfolio.Holding) error
	DeleteHolding(ctx context.Context, portfolioID, assetID uuid.UUID) error
	DeleteHoldings(ctx context.Context, portfolioID uuid.UUID) error

	CreateTrade(ctx context.Context, t *portfolio.Trade) error
	GetTrade(ctx context.Context, id uuid.UUID) (*portfolio.Trade, error)
	UpdateTrade(ctx context.Context, t *portfolio.Trade) error
	DeleteTrade(ctx context.Context, id uuid.UUID) error
	ListTrades(ctx context.Context, portfolioID uuid.UUID) ([]*portfolio.Trade, error)
	DeleteTrades(ctx context.Context, portfolioID uuid.UUID) error
}

type FeeRepository interface {
	Create(ctx context.Context, f *portfolio.NetworkFee) error
	Get(ctx context.Context, userID, id uuid.UUID) (*portfolio.NetworkFee, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*portfolio.NetworkFee, error)
	ListForDCA(ctx context.Context, portfolioID uuid.UUID) ([]*portfolio.NetworkFee, error)
	ListForCryptoAsset(ctx context.Context, portfolioID, assetID uuid.UUID) ([]*portfolio.NetworkFee, error)
	DeleteForDCA(ctx context.Context, portfolioID uuid.UUID) error
	DeleteForCrypto(ctx context.Context, portfolioID uuid.UUID) error
}

type TaxRepository interface {
	CreateConfig(ctx context.Context, c *tax.Config) error
	UpdateConfig(ctx context.Context, c *tax.Config) error
	GetConfig(ctx context.Context, userID uuid.UUID, year int) (*tax.Config, error)
	ListConfigs(ctx context.Context, userID uuid.UUID) ([]*tax.Config, error)

	CreateIncome(ctx context.Context, in *tax.Income) error
	GetIncome(ctx context.Context, userID, id uuid.UUID) (*tax.Income, error)
	DeleteIncome(ctx context.Context, id uuid.UUID) error
	// ListIncomes returns every income of the user, or of one year when year > 0.
	ListIncomes(ctx context.Context, userID uuid.UUID, year int) ([]*tax.Income, error)

	CreatePayment(ctx context.Context, p *tax.Payment) error
	GetPayment(ctx context.Context, userID, id uuid.UUID) (*tax.Payment, error)
	DeletePayment(ctx context.Context, id uuid.UUID) error
	ListPayments(ctx context.Context, userID uuid.UUID, year int) ([]*tax.Payment, error)
}

type SnapshotRepository interface {
	Create(ctx context.Context, s *snapshot.HoldingsSnapshot) error
	Get(ctx context.Context, userID, id uuid.UUID) (*snapshot.HoldingsSnapshot, error)
	Update(ctx context.Context, s *snapshot.HoldingsSnapshot) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns the most recent snapshots first; limit <= 0 means all.
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*snapshot.HoldingsSnapshot, error)
	// FindAutomatic returns the automatic snapshot taken on day, if any.
	FindAutomatic(ctx context.Context, userID uuid.UUID, day time.Time) (*snapshot.HoldingsSnapshot, error)
}
