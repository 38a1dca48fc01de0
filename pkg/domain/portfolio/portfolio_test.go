package portfolio

import (
	"testing"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var t0 = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func ev(kind TxType, qty, eur string, day int) Event {
	return Event{Kind: EventKind(kind), Quantity: d(qty), EURValue: d(eur), Date: t0.AddDate(0, 0, day)}
}

func TestReplay_BuyThenSell(t *testing.T) {
	p := Replay([]Event{
		ev(TxSell, "4", "60", 1),
		ev(TxBuy, "10", "100", 0),
	})
	assert.True(t, p.Quantity.Equal(d("6")))
	assert.True(t, p.AvgPrice.Equal(d("10")))
	assert.True(t, p.TotalInvested.Equal(d("60")))
	assert.True(t, p.RealizedGains.Equal(d("20")))
	assert.True(t, p.IsOpen())
}

func TestReplay_Idempotent(t *testing.T) {
	events := []Event{
		ev(TxBuy, "0.5", "15000", 0),
		ev(TxBuy, "0.25", "9000", 3),
		ev(TxStakeReward, "0.01", "400", 4),
		ev(TxSwapOut, "0.3", "9500", 5),
		ev(TxSell, "0.1", "4100", 6),
		{Kind: EventFee, Quantity: d("0.0001"), Date: t0.AddDate(0, 0, 7)},
	}
	first := Replay(events)
	second := Replay(events)
	assert.Equal(t, first, second)
	assert.True(t, first.Quantity.Equal(d("0.3599")))
}

func TestReplay_StakeRewardIsFreeBasis(t *testing.T) {
	p := Replay([]Event{
		ev(TxBuy, "2", "100", 0),
		ev(TxStakeReward, "2", "30", 1),
	})
	assert.True(t, p.Quantity.Equal(d("4")))
	assert.True(t, p.TotalInvested.Equal(d("100")))
	assert.True(t, p.AvgPrice.Equal(d("25")))
	assert.True(t, p.RealizedGains.Equal(d("30")))
}

func TestReplay_FeeKeepsAveragePrice(t *testing.T) {
	p := Replay([]Event{
		ev(TxBuy, "10", "100", 0),
		{Kind: EventFee, Quantity: d("1"), Date: t0.AddDate(0, 0, 1)},
	})
	assert.True(t, p.Quantity.Equal(d("9")))
	assert.True(t, p.AvgPrice.Equal(d("10")))
	assert.True(t, p.RealizedGains.Equal(d("-10")))
}

func TestReplay_DustIsClosed(t *testing.T) {
	p := Replay([]Event{
		ev(TxBuy, "1", "100", 0),
		ev(TxSell, "0.99999999", "120", 1),
	})
	assert.False(t, p.IsOpen())
}

func TestReplay_TiesBrokenByCreation(t *testing.T) {
	buy := ev(TxBuy, "1", "100", 0)
	buy.CreatedAt = t0.Add(time.Second)
	sell := ev(TxSell, "1", "150", 0)
	sell.CreatedAt = t0.Add(2 * time.Second)

	p := Replay([]Event{sell, buy})
	assert.True(t, p.RealizedGains.Equal(d("50")))
}

func TestComputeCashFlow(t *testing.T) {
	flows := []Flow{
		{Kind: FlowIn, EUR: d("1000")},
		{Kind: FlowIn, EUR: d("500")},
		{Kind: FlowOut, EUR: d("400")},
	}
	s := ComputeCashFlow(flows, d("1300"))
	assert.True(t, s.TotalInvested.Equal(d("1500")))
	assert.True(t, s.CapitalRecovered.Equal(d("400")))
	assert.True(t, s.EffectiveInvestment.Equal(d("1100")))
	assert.True(t, s.RealizedProfit.IsZero())
	assert.False(t, s.IsFullyRecovered)
	assert.True(t, s.UnrealizedGains.Equal(d("200")))
	assert.True(t, s.TotalROI.Equal(d("13.33")))
}

func TestComputeCashFlow_Recovered(t *testing.T) {
	s := ComputeCashFlow([]Flow{
		{Kind: FlowIn, EUR: d("100")},
		{Kind: FlowOut, EUR: d("250")},
	}, d("80"))
	assert.True(t, s.IsFullyRecovered)
	assert.True(t, s.EffectiveInvestment.IsZero())
	assert.True(t, s.RealizedProfit.Equal(d("150")))
	assert.True(t, s.UnrealizedGains.Equal(d("80")))
	assert.True(t, s.TotalROI.Equal(d("230")))
}

func TestComputeCashFlow_NeverNegative(t *testing.T) {
	inputs := [][]Flow{
		nil,
		{{Kind: FlowOut, EUR: d("10")}},
		{{Kind: FlowIn, EUR: d("10")}},
		{{Kind: FlowIn, EUR: d("10")}, {Kind: FlowOut, EUR: d("10")}},
		{{Kind: FlowIn, EUR: d("0.01")}, {Kind: FlowOut, EUR: d("99999")}},
	}
	for _, flows := range inputs {
		s := ComputeCashFlow(flows, decimal.Zero)
		assert.False(t, s.EffectiveInvestment.IsNegative())
		assert.False(t, s.RealizedProfit.IsNegative())
	}
	assert.True(t, ComputeCashFlow(nil, d("5")).TotalROI.IsZero())
}

func TestComputeDCAStats(t *testing.T) {
	pid := uuid.New()
	buy, err := NewDCATransaction(pid, t0, "Bitpanda", "", d("0.01"), d("400"))
	require.NoError(t, err)
	buy2, err := NewDCATransaction(pid, t0.AddDate(0, 1, 0), "Bitpanda", "", d("0.01"), d("600"))
	require.NoError(t, err)
	sell, err := NewDCATransaction(pid, t0.AddDate(0, 2, 0), "Bitpanda", "", d("-0.005"), d("300"))
	require.NoError(t, err)
	fee, err := NewNetworkFee(uuid.New(), &pid, nil, nil, d("10000"), d("5"), t0.AddDate(0, 3, 0), "prelievo")
	require.NoError(t, err)

	feesBTC, feeEvents := FeeTotals([]*NetworkFee{fee})
	s := ComputeDCAStats([]*DCATransaction{buy, buy2, sell}, feesBTC, feeEvents, decimal.NewNullDecimal(d("60000")))

	assert.True(t, s.TotalBTC.Equal(d("0.0149")))
	assert.Equal(t, int64(1490000), s.TotalSats)
	assert.True(t, s.AvgBuyPrice.Equal(d("50000")))
	assert.True(t, s.TotalInvested.Equal(d("1000")))
	assert.True(t, s.CapitalRecovered.Equal(d("300")))
	assert.True(t, s.CurrentValue.Equal(d("894")))
	assert.True(t, s.UnrealizedGains.Equal(d("194")))
	assert.True(t, buy.BTCPrice().Equal(d("40000")))
	assert.True(t, s.Position.Quantity.Equal(d("0.0149")))
}

func TestComputeDCAStats_NoPrice(t *testing.T) {
	s := ComputeDCAStats(nil, decimal.Zero, nil, decimal.NullDecimal{})
	assert.False(t, s.PriceAvailable)
	assert.True(t, s.CurrentValue.IsZero())
}

func TestDCATransaction_Effects(t *testing.T) {
	acc := uuid.New()
	buy, err := NewDCATransaction(uuid.New(), t0, "", "", d("0.1"), d("3000"))
	require.NoError(t, err)
	assert.True(t, buy.Effects(&acc)[0].Delta.Equal(d("-3000")))
	assert.Nil(t, buy.Effects(nil))

	sell, err := NewDCATransaction(uuid.New(), t0, "", "", d("-0.1"), d("3500"))
	require.NoError(t, err)
	assert.True(t, sell.Effects(&acc)[0].Delta.Equal(d("3500")))

	_, err = NewDCATransaction(uuid.New(), t0, "", "", d("0"), d("1"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCryptoTransaction_FlowsAndEffects(t *testing.T) {
	acc := uuid.New()
	for typ, wantFlow := range map[TxType]bool{TxBuy: true, TxSell: true, TxSwapIn: false, TxSwapOut: false, TxStakeReward: false} {
		tx, err := NewCryptoTransaction(uuid.New(), uuid.New(), typ, d("1"), d("10"), t0, "")
		require.NoError(t, err)
		_, ok := tx.Flow()
		assert.Equal(t, wantFlow, ok, typ)
		assert.Equal(t, wantFlow, len(tx.Effects(&acc)) == 1, typ)
	}
}

func TestSwapAndTrade(t *testing.T) {
	pid, btc, alt := uuid.New(), uuid.New(), uuid.New()
	out, in, err := NewSwap(pid, btc, alt, d("1"), d("30000"), d("30000"), t0, "")
	require.NoError(t, err)
	assert.Equal(t, *out.SwapPairID, *in.SwapPairID)
	assert.Equal(t, TxSwapOut, out.Type)
	assert.True(t, in.PricePerUnit.Equal(d("1")))

	trade := OpenTrade(out, in)
	assert.Equal(t, trade.ID, *out.TradeID)
	assert.True(t, trade.InitialValue.Equal(d("30000")))

	closeOut, closeIn, err := trade.Close(d("1.1"), t0.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, alt, closeOut.AssetID)
	assert.True(t, closeOut.Quantity.Equal(d("30000")))
	assert.Equal(t, btc, closeIn.AssetID)
	assert.True(t, closeIn.Quantity.Equal(d("1.1")))
	assert.Equal(t, TradeClosed, trade.Status)
	assert.True(t, trade.FinalValue.Decimal.Equal(d("33000")))
	assert.True(t, trade.RealizedPnL.Decimal.Equal(d("3000")))

	_, _, err = trade.Close(d("1"), t0.AddDate(0, 0, 6))
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, _, err = NewSwap(pid, btc, btc, d("1"), d("1"), d("1"), t0, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNetworkFee_Validate(t *testing.T) {
	pid, asset := uuid.New(), uuid.New()
	_, err := NewNetworkFee(uuid.New(), &pid, &pid, nil, d("1"), d("0"), t0, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewNetworkFee(uuid.New(), nil, &pid, nil, d("1"), d("0"), t0, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	f, err := NewNetworkFee(uuid.New(), nil, &pid, &asset, d("0.5"), d("0"), t0, "")
	require.NoError(t, err)
	assert.True(t, f.AssetQuantity().Equal(d("0.5")))
}
