package repository

import (
	"context"
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const accountResource = "conto"

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository on db.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	m := toAccountModel(a)
	return mapError(r.db.WithContext(ctx).Create(&m).Error, accountResource)
}

func (r *accountRepository) Get(ctx context.Context, userID, id uuid.UUID) (*account.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, mapError(err, accountResource)
	}
	return fromAccountModel(&m), nil
}

func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	var ms []Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*account.Account, 0, len(ms))
	for i := range ms {
		out = append(out, fromAccountModel(&ms[i]))
	}
	return out, nil
}

// Update writes name and type. Balance only changes through the ledger.
func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	res := r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", a.ID).Updates(map[string]any{
		"name":       a.Name,
		"type":       string(a.Type),
		"updated_at": time.Now().UTC(),
	})
	return affected(res, accountResource)
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&Account{}, "id = ?", id), accountResource)
}

func (r *accountRepository) Balance(ctx context.Context, id uuid.UUID) (string, decimal.Decimal, error) {
	var m Account
	if err := r.db.WithContext(ctx).Select("id", "name", "balance").Where("id = ?", id).First(&m).Error; err != nil {
		return "", decimal.Zero, mapError(err, accountResource)
	}
	return m.Name, m.Balance, nil
}

// AdjustBalance adds delta to the stored balance. The row is read with
// SELECT ... FOR UPDATE so concurrent postings on the same account
// serialize; the sqlite dialect drops the locking clause and relies on its
// single writer. The sum is computed with exact decimals in Go so sqlite's
// float storage cannot accumulate rounding drift.
func (r *accountRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	var m Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Select("id", "balance").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return mapError(err, accountResource)
	}
	return r.SetBalance(ctx, id, m.Balance.Add(delta))
}

func (r *accountRepository) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).Updates(map[string]any{
		"balance":    balance,
		"updated_at": time.Now().UTC(),
	})
	return affected(res, accountResource)
}

func toAccountModel(a *account.Account) Account {
	return Account{
		ID:             a.ID,
		UserID:         a.UserID,
		Name:           a.Name,
		Type:           string(a.Type),
		Balance:        a.Balance,
		OpeningBalance: a.OpeningBalance,
		CreatedAt:      a.CreatedAt.UTC(),
		UpdatedAt:      a.UpdatedAt.UTC(),
	}
}

func fromAccountModel(m *Account) *account.Account {
	return &account.Account{
		ID:             m.ID,
		UserID:         m.UserID,
		Name:           m.Name,
		Type:           account.Type(m.Type),
		Balance:        m.Balance,
		OpeningBalance: m.OpeningBalance,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

const categoryResource = "categoria"

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a category repository on db.
func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *account.Category) error {
	m := Category{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Type:      string(c.Type),
		Color:     c.Color,
		CreatedAt: c.CreatedAt.UTC(),
	}
	return mapError(r.db.WithContext(ctx).Create(&m).Error, categoryResource)
}

func (r *categoryRepository) Get(ctx context.Context, userID, id uuid.UUID) (*account.Category, error) {
	var m Category
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, mapError(err, categoryResource)
	}
	return fromCategoryModel(&m), nil
}

func (r *categoryRepository) GetByName(ctx context.Context, userID uuid.UUID, name string, typ account.TransactionType) (*account.Category, error) {
	var m Category
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) = ? AND type = ?", userID, strings.ToLower(strings.TrimSpace(name)), string(typ)).
		First(&m).Error
	if err != nil {
		return nil, mapError(err, categoryResource)
	}
	return fromCategoryModel(&m), nil
}

func (r *categoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Category, error) {
	var ms []Category
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("type ASC, name ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*account.Category, 0, len(ms))
	for i := range ms {
		out = append(out, fromCategoryModel(&ms[i]))
	}
	return out, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&Category{}, "id = ?", id), categoryResource)
}

func fromCategoryModel(m *Category) *account.Category {
	return &account.Category{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		Type:      account.TransactionType(m.Type),
		Color:     m.Color,
		CreatedAt: m.CreatedAt,
	}
}
