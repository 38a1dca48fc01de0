package repository

import (
	"context"
	"strings"

	"github.com/amirasaad/finanze/pkg/domain/budget"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const budgetResource = "budget"

type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a budget repository on db.
func NewBudgetRepository(db *gorm.DB) repository.BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Create(ctx context.Context, b *budget.Budget) error {
	m := toBudgetModel(b)
	return mapError(r.db.WithContext(ctx).Create(&m).Error, budgetResource)
}

func (r *budgetRepository) Get(ctx context.Context, userID, id uuid.UUID) (*budget.Budget, error) {
	var m Budget
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, mapError(err, budgetResource)
	}
	return fromBudgetModel(&m), nil
}

func (r *budgetRepository) GetByName(ctx context.Context, userID uuid.UUID, name string) (*budget.Budget, error) {
	var m Budget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(strings.TrimSpace(name))).
		First(&m).Error
	if err != nil {
		return nil, mapError(err, budgetResource)
	}
	return fromBudgetModel(&m), nil
}

func (r *budgetRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*budget.Budget, error) {
	var ms []Budget
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("position ASC, created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*budget.Budget, 0, len(ms))
	for i := range ms {
		out = append(out, fromBudgetModel(&ms[i]))
	}
	return out, nil
}

func (r *budgetRepository) Update(ctx context.Context, b *budget.Budget) error {
	m := toBudgetModel(b)
	res := r.db.WithContext(ctx).Model(&Budget{}).Where("id = ?", b.ID).Updates(map[string]any{
		"name":           m.Name,
		"type":           m.Type,
		"target_amount":  m.TargetAmount,
		"position":       m.Position,
		"color":          m.Color,
		"is_tax_reserve": m.IsTaxReserve,
		"updated_at":     m.UpdatedAt,
	})
	return affected(res, budgetResource)
}

func (r *budgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&Budget{}, "id = ?", id), budgetResource)
}

func toBudgetModel(b *budget.Budget) Budget {
	return Budget{
		ID:           b.ID,
		UserID:       b.UserID,
		Name:         b.Name,
		Type:         string(b.Type),
		TargetAmount: b.TargetAmount,
		Position:     b.Order,
		Color:        b.Color,
		IsTaxReserve: b.IsTaxReserve,
		CreatedAt:    b.CreatedAt.UTC(),
		UpdatedAt:    b.UpdatedAt.UTC(),
	}
}

func fromBudgetModel(m *Budget) *budget.Budget {
	return &budget.Budget{
		ID:           m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		Type:         budget.Type(m.Type),
		TargetAmount: m.TargetAmount,
		Order:        m.Position,
		Color:        m.Color,
		IsTaxReserve: m.IsTaxReserve,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
