package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Money and quantity columns are numeric; decimal.Decimal scans from both
// the postgres string and the sqlite float representation.

type Account struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_user_name"`
	Name           string          `gorm:"type:varchar(120);not null;uniqueIndex:idx_accounts_user_name"`
	Type           string          `gorm:"type:varchar(20);not null"`
	Balance        decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"`
	OpeningBalance decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Account) TableName() string { return "accounts" }

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_name_type"`
	Name      string    `gorm:"type:varchar(120);not null;uniqueIndex:idx_categories_user_name_type"`
	Type      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_categories_user_name_type"`
	Color     string    `gorm:"type:varchar(20)"`
	CreatedAt time.Time
}

func (Category) TableName() string { return "categories" }

type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
	Type        string          `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Description string          `gorm:"type:text"`
	Date        time.Time       `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Transaction) TableName() string { return "transactions" }

type Transfer struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID           `gorm:"type:uuid;not null;index"`
	FromAccountID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	ToAccountID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal     `gorm:"type:numeric(20,8);not null"`
	Description       string              `gorm:"type:text"`
	Date              time.Time           `gorm:"not null"`
	GainTransactionID *uuid.UUID          `gorm:"type:uuid"`
	GainAmount        decimal.NullDecimal `gorm:"type:numeric(20,8)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Transfer) TableName() string { return "transfers" }

type Budget struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_name"`
	Name         string          `gorm:"type:varchar(120);not null;uniqueIndex:idx_budgets_user_name"`
	Type         string          `gorm:"type:varchar(20);not null"`
	TargetAmount decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"`
	Position     int             `gorm:"column:position;not null;default:0"`
	Color        string          `gorm:"type:varchar(20)"`
	IsTaxReserve bool            `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Budget) TableName() string { return "budgets" }

type DCAPortfolio struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name      string     `gorm:"type:varchar(120);not null"`
	AccountID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DCAPortfolio) TableName() string { return "dca_portfolios" }

type DCATransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PortfolioID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Date        time.Time       `gorm:"not null"`
	Broker      string          `gorm:"type:varchar(120)"`
	Info        string          `gorm:"type:text"`
	BTCQuantity decimal.Decimal `gorm:"column:btc_quantity;type:numeric(20,8);not null"`
	EURPaid     decimal.Decimal `gorm:"column:eur_paid;type:numeric(20,8);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (DCATransaction) TableName() string { return "dca_transactions" }

type CryptoPortfolio struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name        string     `gorm:"type:varchar(120);not null"`
	Description string     `gorm:"type:text"`
	AccountID   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CryptoPortfolio) TableName() string { return "crypto_portfolios" }

type CryptoAsset struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Symbol      string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name        string    `gorm:"type:varchar(120);not null"`
	CoingeckoID string    `gorm:"column:coingecko_id;type:varchar(120)"`
}

func (CryptoAsset) TableName() string { return "crypto_assets" }

type CryptoTransaction struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PortfolioID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_crypto_tx_portfolio_asset"`
	AssetID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_crypto_tx_portfolio_asset"`
	Type         string          `gorm:"type:varchar(20);not null"`
	Quantity     decimal.Decimal `gorm:"type:numeric(28,12);not null"`
	EURValue     decimal.Decimal `gorm:"column:eur_value;type:numeric(20,8);not null"`
	PricePerUnit decimal.Decimal `gorm:"type:numeric(28,12);not null"`
	Date         time.Time       `gorm:"not null"`
	Notes        string          `gorm:"type:text"`
	SwapPairID   *uuid.UUID      `gorm:"type:uuid;index"`
	TradeID      *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (CryptoTransaction) TableName() string { return "crypto_transactions" }

type CryptoHolding struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PortfolioID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_crypto_holdings_portfolio_asset"`
	AssetID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_crypto_holdings_portfolio_asset"`
	Quantity      decimal.Decimal `gorm:"type:numeric(28,12);not null"`
	AvgPrice      decimal.Decimal `gorm:"type:numeric(28,12);not null"`
	TotalInvested decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	RealizedGains decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	LastUpdated   time.Time
}

func (CryptoHolding) TableName() string { return "crypto_holdings" }

type CryptoTrade struct {
	ID               uuid.UUID           `gorm:"type:uuid;primaryKey"`
	PortfolioID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status           string              `gorm:"type:varchar(10);not null"`
	FromAssetID      uuid.UUID           `gorm:"type:uuid;not null"`
	ToAssetID        uuid.UUID           `gorm:"type:uuid;not null"`
	FromQuantity     decimal.Decimal     `gorm:"type:numeric(28,12);not null"`
	ToQuantity       decimal.Decimal     `gorm:"type:numeric(28,12);not null"`
	InitialValue     decimal.Decimal     `gorm:"type:numeric(20,8);not null"`
	FinalValue       decimal.NullDecimal `gorm:"type:numeric(20,8)"`
	RealizedPnL      decimal.NullDecimal `gorm:"column:realized_pnl;type:numeric(20,8)"`
	ReceivedQuantity decimal.NullDecimal `gorm:"type:numeric(28,12)"`
	OpenSwapPairID   uuid.UUID           `gorm:"type:uuid;not null"`
	CloseSwapPairID  *uuid.UUID          `gorm:"type:uuid"`
	OpenedAt         time.Time
	ClosedAt         *time.Time
}

func (CryptoTrade) TableName() string { return "crypto_trades" }

type NetworkFee struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	DCAPortfolioID    *uuid.UUID      `gorm:"column:dca_portfolio_id;type:uuid;index"`
	CryptoPortfolioID *uuid.UUID      `gorm:"type:uuid;index"`
	AssetID           *uuid.UUID      `gorm:"type:uuid"`
	Quantity          decimal.Decimal `gorm:"type:numeric(28,12);not null"`
	EURValue          decimal.Decimal `gorm:"column:eur_value;type:numeric(20,8);not null"`
	Date              time.Time       `gorm:"not null"`
	Description       string          `gorm:"type:text"`
	CreatedAt         time.Time
}

func (NetworkFee) TableName() string { return "network_fees" }

type TaxConfig struct {
	ID                       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID                   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_tax_configs_user_year"`
	Year                     int             `gorm:"not null;uniqueIndex:idx_tax_configs_user_year"`
	TaxRate                  decimal.Decimal `gorm:"type:numeric(7,4);not null"`
	INPSRate                 decimal.Decimal `gorm:"column:inps_rate;type:numeric(7,4);not null"`
	ProfitabilityCoefficient decimal.Decimal `gorm:"type:numeric(7,4);not null"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (TaxConfig) TableName() string { return "partita_iva_configs" }

type TaxIncome struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_tax_incomes_user_year"`
	ConfigID    uuid.UUID       `gorm:"type:uuid;not null"`
	Year        int             `gorm:"not null;index:idx_tax_incomes_user_year"`
	Date        time.Time       `gorm:"not null"`
	Description string          `gorm:"type:text"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	CreatedAt   time.Time
}

func (TaxIncome) TableName() string { return "partita_iva_incomes" }

type TaxPayment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_tax_payments_user_year"`
	Year        int             `gorm:"not null;index:idx_tax_payments_user_year"`
	Date        time.Time       `gorm:"not null"`
	Description string          `gorm:"type:text"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Type        string          `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time
}

func (TaxPayment) TableName() string { return "partita_iva_payments" }

type HoldingsSnapshot struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Date          time.Time       `gorm:"not null;index"`
	BTCUSD        decimal.Decimal `gorm:"column:btc_usd;type:numeric(20,8);not null"`
	EURUSD        decimal.Decimal `gorm:"column:eur_usd;type:numeric(20,8);not null"`
	BTCEUR        decimal.Decimal `gorm:"column:btc_eur;type:numeric(20,8);not null"`
	TotalBTC      decimal.Decimal `gorm:"column:total_btc;type:numeric(20,8);not null"`
	TotalValueUSD decimal.Decimal `gorm:"column:total_value_usd;type:numeric(20,8);not null"`
	TotalValueEUR decimal.Decimal `gorm:"column:total_value_eur;type:numeric(20,8);not null"`
	IsAutomatic   bool            `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (HoldingsSnapshot) TableName() string { return "holdings_snapshots" }

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{
		&Account{}, &Category{}, &Transaction{}, &Transfer{}, &Budget{},
		&DCAPortfolio{}, &DCATransaction{},
		&CryptoPortfolio{}, &CryptoAsset{}, &CryptoTransaction{}, &CryptoHolding{}, &CryptoTrade{},
		&NetworkFee{},
		&TaxConfig{}, &TaxIncome{}, &TaxPayment{},
		&HoldingsSnapshot{},
	}
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
