package portfolio

import "github.com/shopspring/decimal"

//revive:disable

// DCAPortfolioRequest represents a DCA portfolio. AccountID links it to a
// liquidity account whose balance follows the purchases.
type DCAPortfolioRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	AccountID string `json:"accountId" validate:"omitempty,uuid"`
}

// DCATransactionRequest represents a DCA purchase, or a sale when the
// quantity is negative.
type DCATransactionRequest struct {
	Date        string          `json:"date" validate:"required"`
	Broker      string          `json:"broker" validate:"max=100"`
	Info        string          `json:"info" validate:"max=500"`
	BTCQuantity decimal.Decimal `json:"btcQuantity"`
	EURPaid     decimal.Decimal `json:"eurPaid"`
}

type AssetRequest struct {
	Symbol      string `json:"symbol" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=100"`
	CoingeckoID string `json:"coingeckoId" validate:"max=100"`
}

type CryptoPortfolioRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	AccountID   string `json:"accountId" validate:"omitempty,uuid"`
}

// CryptoTransactionRequest represents a buy, sell or staking reward.
// Swap legs are created through the swap endpoints only.
type CryptoTransactionRequest struct {
	AssetID  string          `json:"assetId" validate:"required,uuid"`
	Type     string          `json:"type" validate:"required,oneof=buy sell stake_reward"`
	Quantity decimal.Decimal `json:"quantity"`
	EURValue decimal.Decimal `json:"eurValue"`
	Date     string          `json:"date" validate:"required"`
	Notes    string          `json:"notes" validate:"max=500"`
}

// SwapRequest represents an exchange of one asset for another, also used
// to open a trade.
type SwapRequest struct {
	FromAssetID  string          `json:"fromAssetId" validate:"required,uuid"`
	ToAssetID    string          `json:"toAssetId" validate:"required,uuid,nefield=FromAssetID"`
	FromQuantity decimal.Decimal `json:"fromQuantity"`
	ToQuantity   decimal.Decimal `json:"toQuantity"`
	Date         string          `json:"date" validate:"required"`
	Notes        string          `json:"notes" validate:"max=500"`
}

type CloseTradeRequest struct {
	ReceivedQuantity decimal.Decimal `json:"receivedQuantity"`
	Date             string          `json:"date" validate:"required"`
}

// FeeRequest represents a network fee. Exactly one of the portfolio ids is
// set; a crypto fee also names the asset. DCA fees are in satoshis.
type FeeRequest struct {
	DCAPortfolioID    string          `json:"dcaPortfolioId" validate:"omitempty,uuid"`
	CryptoPortfolioID string          `json:"cryptoPortfolioId" validate:"omitempty,uuid"`
	AssetID           string          `json:"assetId" validate:"omitempty,uuid"`
	Quantity          decimal.Decimal `json:"quantity"`
	EURValue          decimal.Decimal `json:"eurValue"`
	Date              string          `json:"date" validate:"required"`
	Description       string          `json:"description" validate:"max=500"`
}
