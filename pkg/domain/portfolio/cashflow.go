package portfolio

import (
	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/shopspring/decimal"
)

// FlowKind distinguishes money put into a position from money taken out.
type FlowKind int

const (
	FlowIn FlowKind = iota
	FlowOut
)

// Flow is a EUR cash movement between the user and a portfolio.
type Flow struct {
	Kind FlowKind
	EUR  decimal.Decimal
}

// CashFlowStats is the "Enhanced Cash Flow" view of a portfolio.
//
// CapitalRecovered is not capped at TotalInvested; otherwise RealizedProfit
// could never become positive.
type CashFlowStats struct {
	TotalInvested       decimal.Decimal `json:"totalInvested"`
	CapitalRecovered    decimal.Decimal `json:"capitalRecovered"`
	EffectiveInvestment decimal.Decimal `json:"effectiveInvestment"`
	RealizedProfit      decimal.Decimal `json:"realizedProfit"`
	IsFullyRecovered    bool            `json:"isFullyRecovered"`
	CurrentValue        decimal.Decimal `json:"currentValue"`
	UnrealizedGains     decimal.Decimal `json:"unrealizedGains"`
	TotalROI            decimal.Decimal `json:"totalRoi"`
}

// ComputeCashFlow derives the cash flow statistics from the portfolio's
// flows and its current market value. It is the only implementation used by
// every portfolio view.
func ComputeCashFlow(flows []Flow, currentValue decimal.Decimal) CashFlowStats {
	invested, recovered := decimal.Zero, decimal.Zero
	for _, f := range flows {
		switch f.Kind {
		case FlowIn:
			invested = invested.Add(f.EUR)
		case FlowOut:
			recovered = recovered.Add(f.EUR)
		}
	}

	s := CashFlowStats{
		TotalInvested:       invested,
		CapitalRecovered:    recovered,
		EffectiveInvestment: decimal.Max(invested.Sub(recovered), decimal.Zero),
		RealizedProfit:      decimal.Max(recovered.Sub(invested), decimal.Zero),
		IsFullyRecovered:    recovered.GreaterThanOrEqual(invested),
		CurrentValue:        currentValue,
	}
	s.UnrealizedGains = currentValue.Sub(s.EffectiveInvestment)
	s.TotalROI = domain.Percent(s.RealizedProfit.Add(s.UnrealizedGains), invested)
	return s
}
