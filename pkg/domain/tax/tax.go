// Package tax implements Partita IVA bookkeeping under the Italian flat-rate
// regime (regime forfettario): taxable income is a fixed share of revenue
// and both income tax and INPS contributions are flat percentages of it.
package tax

import (
	"sort"
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Config holds the rates of one fiscal year, all as percentages.
type Config struct {
	ID                       uuid.UUID       `json:"id"`
	UserID                   uuid.UUID       `json:"userId"`
	Year                     int             `json:"year"`
	TaxRate                  decimal.Decimal `json:"taxRate"`
	INPSRate                 decimal.Decimal `json:"inpsRate"`
	ProfitabilityCoefficient decimal.Decimal `json:"profitabilityCoefficient"`
	CreatedAt                time.Time       `json:"createdAt"`
	UpdatedAt                time.Time       `json:"updatedAt"`
}

// NewConfig validates and builds a yearly configuration.
func NewConfig(userID uuid.UUID, year int, taxRate, inpsRate, coefficient decimal.Decimal) (*Config, error) {
	c := &Config{
		ID:                       uuid.New(),
		UserID:                   userID,
		Year:                     year,
		TaxRate:                  taxRate,
		INPSRate:                 inpsRate,
		ProfitabilityCoefficient: coefficient,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	return c, nil
}

func (c *Config) Validate() error {
	if c.Year < 2000 || c.Year > 2100 {
		return domain.Invalid("anno non valido: %d", c.Year)
	}
	rates := []struct {
		name  string
		value decimal.Decimal
	}{
		{"aliquota imposta", c.TaxRate},
		{"aliquota INPS", c.INPSRate},
		{"coefficiente di redditività", c.ProfitabilityCoefficient},
	}
	for _, r := range rates {
		if r.value.IsNegative() || r.value.GreaterThan(hundred) {
			return domain.Invalid("%s deve essere compreso tra 0 e 100", r.name)
		}
	}
	return nil
}

// Breakdown is the tax owed on one amount of revenue.
type Breakdown struct {
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	Tax           decimal.Decimal `json:"tax"`
	INPS          decimal.Decimal `json:"inps"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	Net           decimal.Decimal `json:"net"`
}

// Compute applies the configuration to a revenue amount. Every figure is
// rounded half-up to cents.
func (c *Config) Compute(amount decimal.Decimal) Breakdown {
	taxable := domain.Cents(amount.Mul(c.ProfitabilityCoefficient).Div(hundred))
	tax := domain.Cents(taxable.Mul(c.TaxRate).Div(hundred))
	inps := domain.Cents(taxable.Mul(c.INPSRate).Div(hundred))
	total := tax.Add(inps)
	return Breakdown{
		TaxableAmount: taxable,
		Tax:           tax,
		INPS:          inps,
		TotalTax:      total,
		Net:           amount.Sub(total),
	}
}

// Income is revenue invoiced in a fiscal year.
type Income struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	ConfigID    uuid.UUID       `json:"configId"`
	Year        int             `json:"year"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewIncome validates and builds an income row for the config's year.
func NewIncome(cfg *Config, date time.Time, description string, amount decimal.Decimal) (*Income, error) {
	if !amount.IsPositive() {
		return nil, domain.Invalid("l'importo deve essere maggiore di zero")
	}
	if date.IsZero() {
		return nil, domain.Invalid("la data è obbligatoria")
	}
	return &Income{
		ID:          uuid.New(),
		UserID:      cfg.UserID,
		ConfigID:    cfg.ID,
		Year:        cfg.Year,
		Date:        date.UTC(),
		Description: strings.TrimSpace(description),
		Amount:      amount,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// IncomeView is an income row with its derived tax breakdown.
type IncomeView struct {
	*Income
	Breakdown
}

// PaymentType classifies a tax payment.
type PaymentType string

const (
	PaymentImposta PaymentType = "imposta"
	PaymentINPS    PaymentType = "inps"
	PaymentAcconto PaymentType = "acconto"
	PaymentSaldo   PaymentType = "saldo"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentImposta, PaymentINPS, PaymentAcconto, PaymentSaldo:
		return true
	}
	return false
}

// Payment is an amount paid towards the taxes of a fiscal year.
type Payment struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Year        int             `json:"year"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        PaymentType     `json:"type"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewPayment validates and builds a payment.
func NewPayment(userID uuid.UUID, year int, date time.Time, description string, amount decimal.Decimal, typ PaymentType) (*Payment, error) {
	if !typ.Valid() {
		return nil, domain.Invalid("tipo di pagamento non valido: %s", typ)
	}
	if !amount.IsPositive() {
		return nil, domain.Invalid("l'importo deve essere maggiore di zero")
	}
	if date.IsZero() {
		return nil, domain.Invalid("la data è obbligatoria")
	}
	if year == 0 {
		year = date.Year()
	}
	return &Payment{
		ID:          uuid.New(),
		UserID:      userID,
		Year:        year,
		Date:        date.UTC(),
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Type:        typ,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Summary totals one fiscal year.
type Summary struct {
	Year          int             `json:"year"`
	Income        decimal.Decimal `json:"income"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	Tax           decimal.Decimal `json:"tax"`
	INPS          decimal.Decimal `json:"inps"`
	TotalDue      decimal.Decimal `json:"totalDue"`
	Paid          decimal.Decimal `json:"paid"`
	Remaining     decimal.Decimal `json:"remaining"`
	Net           decimal.Decimal `json:"net"`
}

// Summarize totals the incomes and payments of cfg's year.
func Summarize(cfg *Config, incomes []*Income, payments []*Payment) Summary {
	s := Summary{
		Year:          cfg.Year,
		Income:        decimal.Zero,
		TaxableAmount: decimal.Zero,
		Tax:           decimal.Zero,
		INPS:          decimal.Zero,
		TotalDue:      decimal.Zero,
		Paid:          decimal.Zero,
		Net:           decimal.Zero,
	}
	for _, in := range incomes {
		if in.Year != cfg.Year {
			continue
		}
		b := cfg.Compute(in.Amount)
		s.Income = s.Income.Add(in.Amount)
		s.TaxableAmount = s.TaxableAmount.Add(b.TaxableAmount)
		s.Tax = s.Tax.Add(b.Tax)
		s.INPS = s.INPS.Add(b.INPS)
		s.TotalDue = s.TotalDue.Add(b.TotalTax)
		s.Net = s.Net.Add(b.Net)
	}
	for _, p := range payments {
		if p.Year == cfg.Year {
			s.Paid = s.Paid.Add(p.Amount)
		}
	}
	s.Remaining = s.TotalDue.Sub(s.Paid)
	return s
}

// SummarizeAll builds one summary per configured year, newest first.
func SummarizeAll(configs []*Config, incomes []*Income, payments []*Payment) []Summary {
	out := make([]Summary, 0, len(configs))
	for _, c := range configs {
		out = append(out, Summarize(c, incomes, payments))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out
}

// ReserveTarget is the amount the tax reserve budget must hold: everything
// still due across all years, never below zero.
func ReserveTarget(summaries []Summary) decimal.Decimal {
	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.Remaining)
	}
	return decimal.Max(total, decimal.Zero)
}
