package portfolio_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/domain/portfolio"
	"github.com/amirasaad/finanze/pkg/provider"
	"github.com/amirasaad/finanze/pkg/repository"
	accountsvc "github.com/amirasaad/finanze/pkg/service/account"
	portfoliosvc "github.com/amirasaad/finanze/pkg/service/portfolio"
	"github.com/amirasaad/finanze/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type PortfolioServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	uow      repository.UnitOfWork
	prices   *testutils.MockPrice
	svc      *portfoliosvc.Service
	accounts *accountsvc.Service
	userID   uuid.UUID
	bank     *account.Account
	btc      *portfolio.Asset
	alt      *portfolio.Asset
	day      time.Time
}

func (s *PortfolioServiceTestSuite) SetupTest() {
	logger := testutils.NewTestLogger()
	s.ctx = context.Background()
	s.uow = testutils.NewTestUoW(s.T())
	s.prices = &testutils.MockPrice{}
	s.svc = portfoliosvc.NewService(s.uow, s.prices, logger)
	s.accounts = accountsvc.NewService(s.uow, logger)
	s.userID = uuid.New()
	s.day = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var err error
	s.bank, err = s.accounts.CreateAccount(s.ctx, s.userID, "Banca", account.TypeBank, dec("1000"))
	s.Require().NoError(err)
	s.btc, err = s.svc.CreateAsset(s.ctx, "btc", "Bitcoin", "bitcoin")
	s.Require().NoError(err)
	s.alt, err = s.svc.CreateAsset(s.ctx, "ALT", "Altcoin", "altcoin")
	s.Require().NoError(err)
}

func (s *PortfolioServiceTestSuite) balance() decimal.Decimal {
	a, err := s.accounts.GetAccount(s.ctx, s.userID, s.bank.ID)
	s.Require().NoError(err)
	return a.Balance
}

func (s *PortfolioServiceTestSuite) holding(portfolioID, assetID uuid.UUID) *portfolio.Holding {
	repo, err := s.uow.CryptoRepository()
	s.Require().NoError(err)
	h, err := repo.GetHolding(s.ctx, portfolioID, assetID)
	if err != nil {
		s.Require().ErrorIs(err, domain.ErrNotFound)
		return nil
	}
	return h
}

func (s *PortfolioServiceTestSuite) cryptoPortfolio(linked bool) *portfolio.CryptoPortfolio {
	in := portfoliosvc.CryptoPortfolioInput{Name: "Crypto"}
	if linked {
		in.AccountID = &s.bank.ID
	}
	p, err := s.svc.CreateCrypto(s.ctx, s.userID, in)
	s.Require().NoError(err)
	return p
}

func (s *PortfolioServiceTestSuite) record(p uuid.UUID, asset *portfolio.Asset, typ portfolio.TxType, qty, eur string, day int) *portfolio.CryptoTransaction {
	tx, err := s.svc.CreateCryptoTransaction(s.ctx, s.userID, p, portfoliosvc.CryptoInput{
		AssetID:  asset.ID,
		Type:     typ,
		Quantity: dec(qty),
		EURValue: dec(eur),
		Date:     s.day.AddDate(0, 0, day),
	})
	s.Require().NoError(err)
	return tx
}

func (s *PortfolioServiceTestSuite) TestCreateAsset_DuplicateSymbol() {
	s.Equal("BTC", s.btc.Symbol)
	_, err := s.svc.CreateAsset(s.ctx, "BTC", "", "")
	s.ErrorIs(err, domain.ErrAlreadyExists)
}

func (s *PortfolioServiceTestSuite) TestReplay_BuyThenSell() {
	p := s.cryptoPortfolio(false)
	s.record(p.ID, s.alt, portfolio.TxBuy, "10", "100", 0)
	s.record(p.ID, s.alt, portfolio.TxSell, "4", "60", 1)

	h := s.holding(p.ID, s.alt.ID)
	s.Require().NotNil(h)
	s.True(h.Quantity.Equal(dec("6")), h.Quantity.String())
	s.True(h.AvgPrice.Equal(dec("10")), h.AvgPrice.String())
	s.True(h.TotalInvested.Equal(dec("60")))
	s.True(h.RealizedGains.Equal(dec("20")))

	// replaying again changes nothing
	holdings, err := s.svc.RecomputePortfolio(s.ctx, s.userID, p.ID)
	s.Require().NoError(err)
	s.Require().Len(holdings, 1)
	s.True(holdings[0].Quantity.Equal(h.Quantity))
	s.True(holdings[0].RealizedGains.Equal(h.RealizedGains))
	s.Equal(h.ID, holdings[0].ID)
}

func (s *PortfolioServiceTestSuite) TestSellBeyondHolding() {
	p := s.cryptoPortfolio(false)
	s.record(p.ID, s.alt, portfolio.TxBuy, "1", "10", 0)
	_, err := s.svc.CreateCryptoTransaction(s.ctx, s.userID, p.ID, portfoliosvc.CryptoInput{
		AssetID: s.alt.ID, Type: portfolio.TxSell, Quantity: dec("2"), EURValue: dec("30"), Date: s.day,
	})
	s.ErrorIs(err, domain.ErrInsufficientHoldings)
}

func (s *PortfolioServiceTestSuite) TestDeleteBuyUnderSellFails() {
	p := s.cryptoPortfolio(false)
	buy := s.record(p.ID, s.alt, portfolio.TxBuy, "5", "50", 0)
	s.record(p.ID, s.alt, portfolio.TxSell, "3", "40", 1)

	err := s.svc.DeleteCryptoTransaction(s.ctx, s.userID, buy.ID)
	s.ErrorIs(err, domain.ErrInsufficientHoldings)
	h := s.holding(p.ID, s.alt.ID)
	s.Require().NotNil(h)
	s.True(h.Quantity.Equal(dec("2")))
}

func (s *PortfolioServiceTestSuite) TestSellClosingPositionRemovesHolding() {
	p := s.cryptoPortfolio(false)
	s.record(p.ID, s.alt, portfolio.TxBuy, "2", "20", 0)
	s.record(p.ID, s.alt, portfolio.TxSell, "2", "30", 1)
	s.Nil(s.holding(p.ID, s.alt.ID))
}

func (s *PortfolioServiceTestSuite) TestLinkedAccountLedger() {
	p := s.cryptoPortfolio(true)
	buy := s.record(p.ID, s.btc, portfolio.TxBuy, "0.01", "600", 0)
	s.True(s.balance().Equal(dec("400")))

	_, err := s.svc.CreateCryptoTransaction(s.ctx, s.userID, p.ID, portfoliosvc.CryptoInput{
		AssetID: s.btc.ID, Type: portfolio.TxBuy, Quantity: dec("0.01"), EURValue: dec("400.01"), Date: s.day,
	})
	s.ErrorIs(err, domain.ErrInsufficientFunds)
	s.True(s.balance().Equal(dec("400")))

	s.record(p.ID, s.btc, portfolio.TxSell, "0.005", "350", 1)
	s.True(s.balance().Equal(dec("750")))

	_, err = s.svc.UpdateCryptoTransaction(s.ctx, s.userID, buy.ID, portfoliosvc.CryptoInput{
		AssetID: s.btc.ID, Type: portfolio.TxBuy, Quantity: dec("0.01"), EURValue: dec("500"), Date: s.day,
	})
	s.Require().NoError(err)
	s.True(s.balance().Equal(dec("850")))

	s.Require().NoError(s.svc.DeleteCrypto(s.ctx, s.userID, p.ID))
	s.True(s.balance().Equal(dec("1000")))
	s.Nil(s.holding(p.ID, s.btc.ID))
}

func (s *PortfolioServiceTestSuite) TestSwapAndDelete() {
	p := s.cryptoPortfolio(false)
	s.record(p.ID, s.btc, portfolio.TxBuy, "1", "30000", 0)

	sw, err := s.svc.CreateSwap(s.ctx, s.userID, p.ID, portfoliosvc.SwapInput{
		FromAssetID:  s.btc.ID,
		ToAssetID:    s.alt.ID,
		FromQuantity: dec("1"),
		ToQuantity:   dec("30000"),
		Date:         s.day.AddDate(0, 0, 1),
	})
	s.Require().NoError(err)
	s.True(sw.Out.EURValue.Equal(dec("30000")))
	s.Nil(s.holding(p.ID, s.btc.ID))
	alt := s.holding(p.ID, s.alt.ID)
	s.Require().NotNil(alt)
	s.True(alt.Quantity.Equal(dec("30000")))
	s.True(alt.TotalInvested.Equal(dec("30000")))
	s.True(alt.RealizedGains.IsZero())

	err = s.svc.DeleteCryptoTransaction(s.ctx, s.userID, sw.In.ID)
	s.ErrorIs(err, domain.ErrInvalidState)

	s.Require().NoError(s.svc.DeleteSwap(s.ctx, s.userID, p.ID, sw.SwapPairID))
	s.Nil(s.holding(p.ID, s.alt.ID))
	btc := s.holding(p.ID, s.btc.ID)
	s.Require().NotNil(btc)
	s.True(btc.Quantity.Equal(dec("1")))
	s.True(btc.TotalInvested.Equal(dec("30000")))
}

func (s *PortfolioServiceTestSuite) TestSwapRequiresHolding() {
	p := s.cryptoPortfolio(false)
	s.record(p.ID, s.btc, portfolio.TxBuy, "0.5", "15000", 0)
	_, err := s.svc.CreateSwap(s.ctx, s.userID, p.ID, portfoliosvc.SwapInput{
		FromAssetID: s.btc.ID, ToAssetID: s.alt.ID, FromQuantity: dec("1"), ToQuantity: dec("1"), Date: s.day,
	})
	s.ErrorIs(err, domain.ErrInsufficientHoldings)
}

func (s *PortfolioServiceTestSuite) TestTradeLifecycle() {
	p := s.cryptoPortfolio(false)
	s.record(p.ID, s.btc, portfolio.TxBuy, "1", "30000", 0)

	opened, err := s.svc.OpenTrade(s.ctx, s.userID, p.ID, portfoliosvc.SwapInput{
		FromAssetID:  s.btc.ID,
		ToAssetID:    s.alt.ID,
		FromQuantity: dec("0.5"),
		ToQuantity:   dec("10"),
		Date:         s.day.AddDate(0, 0, 1),
	})
	s.Require().NoError(err)
	trade := opened.Trade
	s.True(trade.InitialValue.Equal(dec("15000")))

	s.ErrorIs(s.svc.DeleteSwap(s.ctx, s.userID, p.ID, opened.SwapPairID), domain.ErrInvalidState)

	closed, err := s.svc.CloseTrade(s.ctx, s.userID, trade.ID, dec("0.6"), s.day.AddDate(0, 0, 2))
	s.Require().NoError(err)
	s.Equal(portfolio.TradeClosed, closed.Trade.Status)
	s.True(closed.Trade.FinalValue.Decimal.Equal(dec("18000")))
	s.True(closed.Trade.RealizedPnL.Decimal.Equal(dec("3000")))

	btc := s.holding(p.ID, s.btc.ID)
	s.Require().NotNil(btc)
	s.True(btc.Quantity.Equal(dec("1.1")), btc.Quantity.String())
	s.Nil(s.holding(p.ID, s.alt.ID))

	_, err = s.svc.CloseTrade(s.ctx, s.userID, trade.ID, dec("0.6"), s.day.AddDate(0, 0, 3))
	s.ErrorIs(err, domain.ErrInvalidState)

	trades, err := s.svc.ListTrades(s.ctx, s.userID, p.ID)
	s.Require().NoError(err)
	s.Len(trades, 1)

	s.Require().NoError(s.svc.DeleteTrade(s.ctx, s.userID, trade.ID))
	btc = s.holding(p.ID, s.btc.ID)
	s.Require().NotNil(btc)
	s.True(btc.Quantity.Equal(dec("1")))
	s.True(btc.TotalInvested.Equal(dec("30000")))
}

func (s *PortfolioServiceTestSuite) TestCryptoFee() {
	p := s.cryptoPortfolio(false)
	s.record(p.ID, s.btc, portfolio.TxBuy, "1", "30000", 0)

	fee, err := s.svc.CreateFee(s.ctx, s.userID, portfoliosvc.FeeInput{
		CryptoPortfolioID: &p.ID,
		AssetID:           &s.btc.ID,
		Quantity:          dec("0.1"),
		EURValue:          dec("3000"),
		Date:              s.day.AddDate(0, 0, 1),
	})
	s.Require().NoError(err)
	h := s.holding(p.ID, s.btc.ID)
	s.True(h.Quantity.Equal(dec("0.9")))
	s.True(h.TotalInvested.Equal(dec("27000")))
	s.True(h.RealizedGains.Equal(dec("-3000")))

	_, err = s.svc.CreateFee(s.ctx, s.userID, portfoliosvc.FeeInput{
		CryptoPortfolioID: &p.ID, AssetID: &s.btc.ID, Quantity: dec("5"), Date: s.day,
	})
	s.ErrorIs(err, domain.ErrInsufficientHoldings)

	s.Require().NoError(s.svc.DeleteFee(s.ctx, s.userID, fee.ID))
	h = s.holding(p.ID, s.btc.ID)
	s.True(h.Quantity.Equal(dec("1")))
}

func (s *PortfolioServiceTestSuite) TestCryptoView() {
	p := s.cryptoPortfolio(false)
	s.record(p.ID, s.alt, portfolio.TxBuy, "10", "100", 0)
	s.record(p.ID, s.alt, portfolio.TxStakeReward, "1", "12", 1)
	s.prices.On("AssetPricesEUR", mock.Anything, []string{"altcoin"}).
		Return(map[string]decimal.Decimal{"altcoin": dec("12")}, nil)

	v, err := s.svc.GetCrypto(s.ctx, s.userID, p.ID)
	s.Require().NoError(err)
	s.Require().Len(v.Holdings, 1)
	s.True(v.Holdings[0].CurrentValue.Equal(dec("132")))
	s.True(v.Stats.TotalInvested.Equal(dec("100")), "staking rewards are not invested capital")
	s.True(v.Stats.UnrealizedGains.Equal(dec("32")))
	s.Len(v.Transactions, 2)
}

func (s *PortfolioServiceTestSuite) TestDCALifecycle() {
	s.prices.On("BTCQuote", mock.Anything).Return(&provider.Quote{
		BTCEUR: dec("50000"), BTCUSD: dec("54000"), EURUSD: dec("1.08"),
	}, nil)

	p, err := s.svc.CreateDCA(s.ctx, s.userID, "Piano BTC", &s.bank.ID)
	s.Require().NoError(err)

	_, err = s.svc.CreateDCATransaction(s.ctx, s.userID, p.ID, portfoliosvc.DCAInput{
		Date: s.day, BTCQuantity: dec("0.01"), EURPaid: dec("500"),
	})
	s.Require().NoError(err)
	s.True(s.balance().Equal(dec("500")))

	_, err = s.svc.CreateDCATransaction(s.ctx, s.userID, p.ID, portfoliosvc.DCAInput{
		Date: s.day, BTCQuantity: dec("0.02"), EURPaid: dec("600"),
	})
	s.ErrorIs(err, domain.ErrInsufficientFunds)

	_, err = s.svc.CreateDCATransaction(s.ctx, s.userID, p.ID, portfoliosvc.DCAInput{
		Date: s.day, BTCQuantity: dec("-0.02"), EURPaid: dec("1000"),
	})
	s.ErrorIs(err, domain.ErrInsufficientHoldings)

	_, err = s.svc.CreateFee(s.ctx, s.userID, portfoliosvc.FeeInput{
		DCAPortfolioID: &p.ID, Quantity: dec("100000"), Date: s.day.AddDate(0, 0, 1),
	})
	s.Require().NoError(err)

	_, err = s.svc.CreateDCATransaction(s.ctx, s.userID, p.ID, portfoliosvc.DCAInput{
		Date: s.day.AddDate(0, 0, 2), BTCQuantity: dec("-0.005"), EURPaid: dec("300"),
	})
	s.Require().NoError(err)
	s.True(s.balance().Equal(dec("800")))

	stats, err := s.svc.DCAStats(s.ctx, s.userID, p.ID)
	s.Require().NoError(err)
	s.True(stats.TotalBTC.Equal(dec("0.004")), stats.TotalBTC.String())
	s.Equal(int64(400000), stats.TotalSats)
	s.True(stats.PriceAvailable)
	s.True(stats.CurrentValue.Equal(dec("200")))
	s.True(stats.TotalInvested.Equal(dec("500")))
	s.True(stats.CapitalRecovered.Equal(dec("300")))
	s.True(stats.EffectiveInvestment.Equal(dec("200")))
	s.True(stats.TotalROI.IsZero())

	detail, err := s.svc.GetDCA(s.ctx, s.userID, p.ID)
	s.Require().NoError(err)
	s.Len(detail.Transactions, 2)

	s.Require().NoError(s.svc.DeleteDCA(s.ctx, s.userID, p.ID))
	s.True(s.balance().Equal(dec("1000")))
}

func (s *PortfolioServiceTestSuite) TestDCARelinkMovesEffects() {
	other, err := s.accounts.CreateAccount(s.ctx, s.userID, "Broker", account.TypeInvestment, decimal.Zero)
	s.Require().NoError(err)
	p, err := s.svc.CreateDCA(s.ctx, s.userID, "Piano", &s.bank.ID)
	s.Require().NoError(err)
	_, err = s.svc.CreateDCATransaction(s.ctx, s.userID, p.ID, portfoliosvc.DCAInput{
		Date: s.day, BTCQuantity: dec("0.01"), EURPaid: dec("250"),
	})
	s.Require().NoError(err)

	_, err = s.svc.UpdateDCA(s.ctx, s.userID, p.ID, "Piano", &other.ID)
	s.Require().NoError(err)
	s.True(s.balance().Equal(dec("1000")))
	moved, err := s.accounts.GetAccount(s.ctx, s.userID, other.ID)
	s.Require().NoError(err)
	s.True(moved.Balance.Equal(dec("-250")))
}

func (s *PortfolioServiceTestSuite) TestDCAStatsWithoutPrice() {
	s.prices.On("BTCQuote", mock.Anything).Return(nil, domain.ErrNotFound)
	p, err := s.svc.CreateDCA(s.ctx, s.userID, "Piano", nil)
	s.Require().NoError(err)
	stats, err := s.svc.DCAStats(s.ctx, s.userID, p.ID)
	s.Require().NoError(err)
	s.False(stats.PriceAvailable)
	s.True(stats.CurrentValue.IsZero())
}

func TestPortfolioServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PortfolioServiceTestSuite))
}
