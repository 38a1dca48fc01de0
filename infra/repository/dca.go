package repository

import (
	"context"

	"github.com/amirasaad/finanze/pkg/domain/portfolio"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	dcaPortfolioResource   = "portafoglio DCA"
	dcaTransactionResource = "transazione DCA"
)

type dcaRepository struct {
	db *gorm.DB
}

// NewDCARepository creates a DCA portfolio repository on db.
func NewDCARepository(db *gorm.DB) repository.DCARepository {
	return &dcaRepository{db: db}
}

func (r *dcaRepository) CreatePortfolio(ctx context.Context, p *portfolio.DCAPortfolio) error {
	m := DCAPortfolio{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		AccountID: p.AccountID,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
	return mapError(r.db.WithContext(ctx).Create(&m).Error, dcaPortfolioResource)
}

func (r *dcaRepository) GetPortfolio(ctx context.Context, userID, id uuid.UUID) (*portfolio.DCAPortfolio, error) {
	var m DCAPortfolio
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, mapError(err, dcaPortfolioResource)
	}
	return fromDCAPortfolioModel(&m), nil
}

func (r *dcaRepository) ListPortfolios(ctx context.Context, userID uuid.UUID) ([]*portfolio.DCAPortfolio, error) {
	var ms []DCAPortfolio
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*portfolio.DCAPortfolio, 0, len(ms))
	for i := range ms {
		out = append(out, fromDCAPortfolioModel(&ms[i]))
	}
	return out, nil
}

func (r *dcaRepository) UpdatePortfolio(ctx context.Context, p *portfolio.DCAPortfolio) error {
	res := r.db.WithContext(ctx).Model(&DCAPortfolio{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":       p.Name,
		"account_id": p.AccountID,
		"updated_at": p.UpdatedAt.UTC(),
	})
	return affected(res, dcaPortfolioResource)
}

func (r *dcaRepository) DeletePortfolio(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&DCAPortfolio{}, "id = ?", id), dcaPortfolioResource)
}

func (r *dcaRepository) ListOwners(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&DCAPortfolio{}).Distinct().Pluck("user_id", &ids).Error
	return ids, err
}

func (r *dcaRepository) UnlinkAccount(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&DCAPortfolio{}).
		Where("account_id = ?", accountID).
		Update("account_id", nil).Error
}

func (r *dcaRepository) CreateTransaction(ctx context.Context, tx *portfolio.DCATransaction) error {
	m := toDCATransactionModel(tx)
	return mapError(r.db.WithContext(ctx).Create(&m).Error, dcaTransactionResource)
}

func (r *dcaRepository) GetTransaction(ctx context.Context, id uuid.UUID) (*portfolio.DCATransaction, error) {
	var m DCATransaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapError(err, dcaTransactionResource)
	}
	return fromDCATransactionModel(&m), nil
}

func (r *dcaRepository) UpdateTransaction(ctx context.Context, tx *portfolio.DCATransaction) error {
	m := toDCATransactionModel(tx)
	res := r.db.WithContext(ctx).Model(&DCATransaction{}).Where("id = ?", tx.ID).Updates(map[string]any{
		"date":         m.Date,
		"broker":       m.Broker,
		"info":         m.Info,
		"btc_quantity": m.BTCQuantity,
		"eur_paid":     m.EURPaid,
		"updated_at":   m.UpdatedAt,
	})
	return affected(res, dcaTransactionResource)
}

func (r *dcaRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&DCATransaction{}, "id = ?", id), dcaTransactionResource)
}

func (r *dcaRepository) ListTransactions(ctx context.Context, portfolioID uuid.UUID) ([]*portfolio.DCATransaction, error) {
	var ms []DCATransaction
	if err := r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Order("date ASC, created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*portfolio.DCATransaction, 0, len(ms))
	for i := range ms {
		out = append(out, fromDCATransactionModel(&ms[i]))
	}
	return out, nil
}

func (r *dcaRepository) DeleteTransactions(ctx context.Context, portfolioID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Delete(&DCATransaction{}).Error
}

func fromDCAPortfolioModel(m *DCAPortfolio) *portfolio.DCAPortfolio {
	return &portfolio.DCAPortfolio{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		AccountID: m.AccountID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toDCATransactionModel(tx *portfolio.DCATransaction) DCATransaction {
	return DCATransaction{
		ID:          tx.ID,
		PortfolioID: tx.PortfolioID,
		Date:        tx.Date.UTC(),
		Broker:      tx.Broker,
		Info:        tx.Info,
		BTCQuantity: tx.BTCQuantity,
		EURPaid:     tx.EURPaid,
		CreatedAt:   tx.CreatedAt.UTC(),
		UpdatedAt:   tx.UpdatedAt.UTC(),
	}
}

func fromDCATransactionModel(m *DCATransaction) *portfolio.DCATransaction {
	return &portfolio.DCATransaction{
		ID:          m.ID,
		PortfolioID: m.PortfolioID,
		Date:        m.Date.UTC(),
		Broker:      m.Broker,
		Info:        m.Info,
		BTCQuantity: m.BTCQuantity,
		EURPaid:     m.EURPaid,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
