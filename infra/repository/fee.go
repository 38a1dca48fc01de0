package repository

import (
	"context"

	"github.com/amirasaad/finanze/pkg/domain/portfolio"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const feeResource = "commissione di rete"

type feeRepository struct {
	db *gorm.DB
}

// NewFeeRepository creates a network fee repository on db.
func NewFeeRepository(db *gorm.DB) repository.FeeRepository {
	return &feeRepository{db: db}
}

func (r *feeRepository) Create(ctx context.Context, f *portfolio.NetworkFee) error {
	m := NetworkFee{
		ID:                f.ID,
		UserID:            f.UserID,
		DCAPortfolioID:    f.DCAPortfolioID,
		CryptoPortfolioID: f.CryptoPortfolioID,
		AssetID:           f.AssetID,
		Quantity:          f.Quantity,
		EURValue:          f.EURValue,
		Date:              f.Date.UTC(),
		Description:       f.Description,
		CreatedAt:         f.CreatedAt.UTC(),
	}
	return mapError(r.db.WithContext(ctx).Create(&m).Error, feeResource)
}

func (r *feeRepository) Get(ctx context.Context, userID, id uuid.UUID) (*portfolio.NetworkFee, error) {
	var m NetworkFee
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, mapError(err, feeResource)
	}
	return fromFeeModel(&m), nil
}

func (r *feeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&NetworkFee{}, "id = ?", id), feeResource)
}

func (r *feeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*portfolio.NetworkFee, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *feeRepository) ListForDCA(ctx context.Context, portfolioID uuid.UUID) ([]*portfolio.NetworkFee, error) {
	return r.find(r.db.WithContext(ctx).Where("dca_portfolio_id = ?", portfolioID))
}

func (r *feeRepository) ListForCryptoAsset(ctx context.Context, portfolioID, assetID uuid.UUID) ([]*portfolio.NetworkFee, error) {
	return r.find(r.db.WithContext(ctx).Where("crypto_portfolio_id = ? AND asset_id = ?", portfolioID, assetID))
}

func (r *feeRepository) DeleteForDCA(ctx context.Context, portfolioID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("dca_portfolio_id = ?", portfolioID).Delete(&NetworkFee{}).Error
}

func (r *feeRepository) DeleteForCrypto(ctx context.Context, portfolioID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("crypto_portfolio_id = ?", portfolioID).Delete(&NetworkFee{}).Error
}

func (r *feeRepository) find(q *gorm.DB) ([]*portfolio.NetworkFee, error) {
	var ms []NetworkFee
	if err := q.Order("date DESC, created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*portfolio.NetworkFee, 0, len(ms))
	for i := range ms {
		out = append(out, fromFeeModel(&ms[i]))
	}
	return out, nil
}

func fromFeeModel(m *NetworkFee) *portfolio.NetworkFee {
	return &portfolio.NetworkFee{
		ID:                m.ID,
		UserID:            m.UserID,
		DCAPortfolioID:    m.DCAPortfolioID,
		CryptoPortfolioID: m.CryptoPortfolioID,
		AssetID:           m.AssetID,
		Quantity:          m.Quantity,
		EURValue:          m.EURValue,
		Date:              m.Date.UTC(),
		Description:       m.Description,
		CreatedAt:         m.CreatedAt,
	}
}
