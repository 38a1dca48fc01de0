package repository

import (
	"context"

	"github.com/amirasaad/finanze/pkg/domain/account"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const transactionResource = "transazione"

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transaction repository on db.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *account.Transaction) error {
	m := toTransactionModel(tx)
	return mapError(r.db.WithContext(ctx).Create(&m).Error, transactionResource)
}

func (r *transactionRepository) Get(ctx context.Context, userID, id uuid.UUID) (*account.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, mapError(err, transactionResource)
	}
	return fromTransactionModel(&m), nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *account.Transaction) error {
	m := toTransactionModel(tx)
	res := r.db.WithContext(ctx).Model(&Transaction{}).Where("id = ?", tx.ID).Updates(map[string]any{
		"account_id":  m.AccountID,
		"category_id": m.CategoryID,
		"type":        m.Type,
		"amount":      m.Amount,
		"description": m.Description,
		"date":        m.Date,
		"updated_at":  m.UpdatedAt,
	})
	return affected(res, transactionResource)
}

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&Transaction{}, "id = ?", id), transactionResource)
}

func (r *transactionRepository) List(ctx context.Context, userID uuid.UUID, f repository.TransactionFilter) ([]*account.Transaction, int64, error) {
	filter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("user_id = ?", userID)
		if f.Type != "" {
			q = q.Where("type = ?", string(f.Type))
		}
		if f.AccountID != nil {
			q = q.Where("account_id = ?", *f.AccountID)
		}
		if f.CategoryID != nil {
			q = q.Where("category_id = ?", *f.CategoryID)
		}
		if f.From != nil {
			q = q.Where("date >= ?", f.From.UTC())
		}
		if f.To != nil {
			q = q.Where("date <= ?", f.To.UTC())
		}
		return q
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&Transaction{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := r.db.WithContext(ctx).Scopes(filter).Order("date DESC, created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var ms []Transaction
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return fromTransactionModels(ms), total, nil
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transaction, error) {
	var ms []Transaction
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Order("date ASC, created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return fromTransactionModels(ms), nil
}

func (r *transactionRepository) DeleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&Transaction{}).Error
}

func (r *transactionRepository) ClearCategory(ctx context.Context, categoryID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&Transaction{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil).Error
}

func toTransactionModel(tx *account.Transaction) Transaction {
	return Transaction{
		ID:          tx.ID,
		UserID:      tx.UserID,
		AccountID:   tx.AccountID,
		CategoryID:  tx.CategoryID,
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        tx.Date.UTC(),
		CreatedAt:   tx.CreatedAt.UTC(),
		UpdatedAt:   tx.UpdatedAt.UTC(),
	}
}

func fromTransactionModel(m *Transaction) *account.Transaction {
	return &account.Transaction{
		ID:          m.ID,
		UserID:      m.UserID,
		AccountID:   m.AccountID,
		CategoryID:  m.CategoryID,
		Type:        account.TransactionType(m.Type),
		Amount:      m.Amount,
		Description: m.Description,
		Date:        m.Date.UTC(),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromTransactionModels(ms []Transaction) []*account.Transaction {
	out := make([]*account.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, fromTransactionModel(&ms[i]))
	}
	return out
}

const transferResource = "trasferimento"

type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a transfer repository on db.
func NewTransferRepository(db *gorm.DB) repository.TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(ctx context.Context, t *account.Transfer) error {
	m := toTransferModel(t)
	return mapError(r.db.WithContext(ctx).Create(&m).Error, transferResource)
}

func (r *transferRepository) Get(ctx context.Context, userID, id uuid.UUID) (*account.Transfer, error) {
	var m Transfer
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, mapError(err, transferResource)
	}
	return fromTransferModel(&m), nil
}

func (r *transferRepository) Update(ctx context.Context, t *account.Transfer) error {
	m := toTransferModel(t)
	res := r.db.WithContext(ctx).Model(&Transfer{}).Where("id = ?", t.ID).Updates(map[string]any{
		"from_account_id":     m.FromAccountID,
		"to_account_id":       m.ToAccountID,
		"amount":              m.Amount,
		"description":         m.Description,
		"date":                m.Date,
		"gain_transaction_id": m.GainTransactionID,
		"gain_amount":         m.GainAmount,
		"updated_at":          m.UpdatedAt,
	})
	return affected(res, transferResource)
}

func (r *transferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&Transfer{}, "id = ?", id), transferResource)
}

func (r *transferRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Transfer, error) {
	var ms []Transfer
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC, created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return fromTransferModels(ms), nil
}

func (r *transferRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transfer, error) {
	var ms []Transfer
	err := r.db.WithContext(ctx).
		Where("from_account_id = ? OR to_account_id = ?", accountID, accountID).
		Order("date ASC, created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return fromTransferModels(ms), nil
}

func toTransferModel(t *account.Transfer) Transfer {
	return Transfer{
		ID:                t.ID,
		UserID:            t.UserID,
		FromAccountID:     t.FromAccountID,
		ToAccountID:       t.ToAccountID,
		Amount:            t.Amount,
		Description:       t.Description,
		Date:              t.Date.UTC(),
		GainTransactionID: t.GainTransactionID,
		GainAmount:        t.GainAmount,
		CreatedAt:         t.CreatedAt.UTC(),
		UpdatedAt:         t.UpdatedAt.UTC(),
	}
}

func fromTransferModel(m *Transfer) *account.Transfer {
	return &account.Transfer{
		ID:                m.ID,
		UserID:            m.UserID,
		FromAccountID:     m.FromAccountID,
		ToAccountID:       m.ToAccountID,
		Amount:            m.Amount,
		Description:       m.Description,
		Date:              m.Date.UTC(),
		GainTransactionID: m.GainTransactionID,
		GainAmount:        m.GainAmount,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func fromTransferModels(ms []Transfer) []*account.Transfer {
	out := make([]*account.Transfer, 0, len(ms))
	for i := range ms {
		out = append(out, fromTransferModel(&ms[i]))
	}
	return out
}
