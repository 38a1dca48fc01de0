package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DustThreshold is the quantity at or below which a position is treated as
// fully closed.
var DustThreshold = decimal.New(1, -7)

// SatsPerBTC converts between satoshis and bitcoin.
var SatsPerBTC = decimal.New(1, 8)

// Cents rounds an amount half-up to two decimal places.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns part/whole*100 rounded to two decimals, or zero when whole
// is not positive.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2)
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
