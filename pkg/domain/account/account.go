package account

import (
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type classifies an account as liquidity (bank) or investment.
type Type string

const (
	TypeBank       Type = "bank"
	TypeInvestment Type = "investment"
)

// Valid reports whether t is a known account type.
func (t Type) Valid() bool {
	return t == TypeBank || t == TypeInvestment
}

// Account is a named container of money owned by one user.
//
// Invariants:
//   - Name is unique per user.
//   - Balance always equals the sum of the ledger effects of every record
//     that references the account, plus the opening balance and any
//     reconciliation adjustment.
type Account struct {
	ID      uuid.UUID       `json:"id"`
	UserID  uuid.UUID       `json:"userId"`
	Name    string          `json:"name"`
	Type    Type            `json:"type"`
	Balance decimal.Decimal `json:"balance"`
	// OpeningBalance is the balance the account was created with; it is the
	// starting point when the balance is recomputed from the ledger.
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// IsLiquidity reports whether the balance counts as spendable liquidity.
func (a *Account) IsLiquidity() bool { return a.Type == TypeBank }

// Builder constructs validated Account values.
type Builder struct {
	id        uuid.UUID
	userID    uuid.UUID
	name      string
	typ       Type
	balance   decimal.Decimal
	createdAt time.Time
}

// New returns a Builder for a bank account with a fresh ID and zero balance.
func New() *Builder {
	return &Builder{
		id:        uuid.New(),
		typ:       TypeBank,
		createdAt: time.Now().UTC(),
	}
}

func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithUserID sets the owner. Mandatory.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

func (b *Builder) WithName(name string) *Builder {
	b.name = strings.TrimSpace(name)
	return b
}

func (b *Builder) WithType(t Type) *Builder {
	if t != "" {
		b.typ = t
	}
	return b
}

// WithBalance sets the opening balance.
func (b *Builder) WithBalance(balance decimal.Decimal) *Builder {
	b.balance = balance
	return b
}

// Build validates and returns the account.
func (b *Builder) Build() (*Account, error) {
	if b.userID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	if b.name == "" {
		return nil, domain.Invalid("il nome del conto è obbligatorio")
	}
	if !b.typ.Valid() {
		return nil, domain.Invalid("tipo di conto non valido: %s", b.typ)
	}
	return &Account{
		ID:             b.id,
		UserID:         b.userID,
		Name:           b.name,
		Type:           b.typ,
		Balance:        b.balance,
		OpeningBalance: b.balance,
		CreatedAt:      b.createdAt,
		UpdatedAt:      b.createdAt,
	}, nil
}
