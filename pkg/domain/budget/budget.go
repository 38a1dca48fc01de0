package budget

import (
	"sort"
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type decides how a budget receives liquidity.
type Type string

const (
	// TypeFixed budgets are filled up to their target, in order.
	TypeFixed Type = "fixed"
	// TypeUnlimited budgets share whatever the fixed ones leave.
	TypeUnlimited Type = "unlimited"
)

func (t Type) Valid() bool { return t == TypeFixed || t == TypeUnlimited }

// TaxReserveName is the budget kept in sync with outstanding Partita IVA taxes.
const TaxReserveName = "RISERVA TASSE"

// Budget is an earmark over the user's bank liquidity. Allocation is derived
// on read and never stored.
type Budget struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"userId"`
	Name         string          `json:"name"`
	Type         Type            `json:"type"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	Order        int             `json:"order"`
	Color        string          `json:"color"`
	IsTaxReserve bool            `json:"isTaxReserve"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// New validates and builds a budget.
func New(userID uuid.UUID, name string, typ Type, target decimal.Decimal, order int, color string) (*Budget, error) {
	b := &Budget{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         strings.TrimSpace(name),
		Type:         typ,
		TargetAmount: target,
		Order:        order,
		Color:        color,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	return b, nil
}

func (b *Budget) Validate() error {
	if b.Name == "" {
		return domain.Invalid("il nome del budget è obbligatorio")
	}
	if !b.Type.Valid() {
		return domain.Invalid("tipo di budget non valido: %s", b.Type)
	}
	if b.Type == TypeFixed && b.TargetAmount.IsNegative() {
		return domain.Invalid("l'obiettivo non può essere negativo")
	}
	if b.Order < 0 {
		return domain.Invalid("l'ordine non può essere negativo")
	}
	return nil
}

// Allocation is a budget together with its share of liquidity.
type Allocation struct {
	*Budget
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	IsDeficit       bool            `json:"isDeficit"`
	Deficit         decimal.Decimal `json:"deficit"`
}

// Overview is the read-time allocation of liquidity over all budgets.
type Overview struct {
	TotalLiquidity decimal.Decimal `json:"totalLiquidity"`
	TotalAllocated decimal.Decimal `json:"totalAllocated"`
	Unallocated    decimal.Decimal `json:"unallocated"`
	Budgets        []Allocation    `json:"budgets"`
}

// Allocate distributes liquidity to fixed budgets in ascending order, each
// up to its target, then splits the rest evenly (rounded down to cents)
// across unlimited budgets. The allocated total never exceeds liquidity.
func Allocate(liquidity decimal.Decimal, budgets []*Budget) Overview {
	sorted := make([]*Budget, len(budgets))
	copy(sorted, budgets)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	remaining := decimal.Max(liquidity, decimal.Zero)
	allocated := make(map[uuid.UUID]decimal.Decimal, len(sorted))
	var unlimited int
	for _, b := range sorted {
		if b.Type != TypeFixed {
			unlimited++
			continue
		}
		amount := decimal.Min(decimal.Max(b.TargetAmount, decimal.Zero), remaining)
		allocated[b.ID] = amount
		remaining = remaining.Sub(amount)
	}

	share := decimal.Zero
	if unlimited > 0 && remaining.IsPositive() {
		share = remaining.Div(decimal.NewFromInt(int64(unlimited))).RoundDown(2)
	}

	ov := Overview{
		TotalLiquidity: liquidity,
		TotalAllocated: decimal.Zero,
		Budgets:        make([]Allocation, 0, len(sorted)),
	}
	for _, b := range sorted {
		a := Allocation{Budget: b, Deficit: decimal.Zero}
		if b.Type == TypeFixed {
			a.AllocatedAmount = allocated[b.ID]
			if a.AllocatedAmount.LessThan(b.TargetAmount) {
				a.IsDeficit = true
				a.Deficit = b.TargetAmount.Sub(a.AllocatedAmount)
			}
		} else {
			a.AllocatedAmount = share
		}
		ov.TotalAllocated = ov.TotalAllocated.Add(a.AllocatedAmount)
		ov.Budgets = append(ov.Budgets, a)
	}
	ov.Unallocated = decimal.Max(liquidity.Sub(ov.TotalAllocated), decimal.Zero)
	return ov
}
