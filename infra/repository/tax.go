package repository

import (
	"context"

	"github.com/amirasaad/finanze/pkg/domain/tax"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	taxConfigResource  = "configurazione partita IVA"
	taxIncomeResource  = "entrata"
	taxPaymentResource = "pagamento"
)

type taxRepository struct {
	db *gorm.DB
}

// NewTaxRepository creates the Partita IVA repository on db.
func NewTaxRepository(db *gorm.DB) repository.TaxRepository {
	return &taxRepository{db: db}
}

func (r *taxRepository) CreateConfig(ctx context.Context, c *tax.Config) error {
	m := TaxConfig{
		ID:                       c.ID,
		UserID:                   c.UserID,
		Year:                     c.Year,
		TaxRate:                  c.TaxRate,
		INPSRate:                 c.INPSRate,
		ProfitabilityCoefficient: c.ProfitabilityCoefficient,
		CreatedAt:                c.CreatedAt.UTC(),
		UpdatedAt:                c.UpdatedAt.UTC(),
	}
	return mapError(r.db.WithContext(ctx).Create(&m).Error, taxConfigResource)
}

func (r *taxRepository) UpdateConfig(ctx context.Context, c *tax.Config) error {
	res := r.db.WithContext(ctx).Model(&TaxConfig{}).Where("id = ?", c.ID).Updates(map[string]any{
		"tax_rate":                  c.TaxRate,
		"inps_rate":                 c.INPSRate,
		"profitability_coefficient": c.ProfitabilityCoefficient,
		"updated_at":                c.UpdatedAt.UTC(),
	})
	return affected(res, taxConfigResource)
}

func (r *taxRepository) GetConfig(ctx context.Context, userID uuid.UUID, year int) (*tax.Config, error) {
	var m TaxConfig
	if err := r.db.WithContext(ctx).Where("user_id = ? AND year = ?", userID, year).First(&m).Error; err != nil {
		return nil, mapError(err, taxConfigResource)
	}
	return fromTaxConfigModel(&m), nil
}

func (r *taxRepository) ListConfigs(ctx context.Context, userID uuid.UUID) ([]*tax.Config, error) {
	var ms []TaxConfig
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("year DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*tax.Config, 0, len(ms))
	for i := range ms {
		out = append(out, fromTaxConfigModel(&ms[i]))
	}
	return out, nil
}

func (r *taxRepository) CreateIncome(ctx context.Context, in *tax.Income) error {
	m := TaxIncome{
		ID:          in.ID,
		UserID:      in.UserID,
		ConfigID:    in.ConfigID,
		Year:        in.Year,
		Date:        in.Date.UTC(),
		Description: in.Description,
		Amount:      in.Amount,
		CreatedAt:   in.CreatedAt.UTC(),
	}
	return mapError(r.db.WithContext(ctx).Create(&m).Error, taxIncomeResource)
}

func (r *taxRepository) GetIncome(ctx context.Context, userID, id uuid.UUID) (*tax.Income, error) {
	var m TaxIncome
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, mapError(err, taxIncomeResource)
	}
	return fromTaxIncomeModel(&m), nil
}

func (r *taxRepository) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&TaxIncome{}, "id = ?", id), taxIncomeResource)
}

func (r *taxRepository) ListIncomes(ctx context.Context, userID uuid.UUID, year int) ([]*tax.Income, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	var ms []TaxIncome
	if err := q.Order("date DESC, created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*tax.Income, 0, len(ms))
	for i := range ms {
		out = append(out, fromTaxIncomeModel(&ms[i]))
	}
	return out, nil
}

func (r *taxRepository) CreatePayment(ctx context.Context, p *tax.Payment) error {
	m := TaxPayment{
		ID:          p.ID,
		UserID:      p.UserID,
		Year:        p.Year,
		Date:        p.Date.UTC(),
		Description: p.Description,
		Amount:      p.Amount,
		Type:        string(p.Type),
		CreatedAt:   p.CreatedAt.UTC(),
	}
	return mapError(r.db.WithContext(ctx).Create(&m).Error, taxPaymentResource)
}

func (r *taxRepository) GetPayment(ctx context.Context, userID, id uuid.UUID) (*tax.Payment, error) {
	var m TaxPayment
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, mapError(err, taxPaymentResource)
	}
	return fromTaxPaymentModel(&m), nil
}

func (r *taxRepository) DeletePayment(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&TaxPayment{}, "id = ?", id), taxPaymentResource)
}

func (r *taxRepository) ListPayments(ctx context.Context, userID uuid.UUID, year int) ([]*tax.Payment, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	var ms []TaxPayment
	if err := q.Order("date DESC, created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*tax.Payment, 0, len(ms))
	for i := range ms {
		out = append(out, fromTaxPaymentModel(&ms[i]))
	}
	return out, nil
}

func fromTaxConfigModel(m *TaxConfig) *tax.Config {
	return &tax.Config{
		ID:                       m.ID,
		UserID:                   m.UserID,
		Year:                     m.Year,
		TaxRate:                  m.TaxRate,
		INPSRate:                 m.INPSRate,
		ProfitabilityCoefficient: m.ProfitabilityCoefficient,
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
	}
}

func fromTaxIncomeModel(m *TaxIncome) *tax.Income {
	return &tax.Income{
		ID:          m.ID,
		UserID:      m.UserID,
		ConfigID:    m.ConfigID,
		Year:        m.Year,
		Date:        m.Date.UTC(),
		Description: m.Description,
		Amount:      m.Amount,
		CreatedAt:   m.CreatedAt,
	}
}

func fromTaxPaymentModel(m *TaxPayment) *tax.Payment {
	return &tax.Payment{
		ID:          m.ID,
		UserID:      m.UserID,
		Year:        m.Year,
		Date:        m.Date.UTC(),
		Description: m.Description,
		Amount:      m.Amount,
		Type:        tax.PaymentType(m.Type),
		CreatedAt:   m.CreatedAt,
	}
}
