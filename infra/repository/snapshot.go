package repository

import (
	"context"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/snapshot"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const snapshotResource = "snapshot"

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a holdings snapshot repository on db.
func NewSnapshotRepository(db *gorm.DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, s *snapshot.HoldingsSnapshot) error {
	m := toSnapshotModel(s)
	return mapError(r.db.WithContext(ctx).Create(&m).Error, snapshotResource)
}

func (r *snapshotRepository) Get(ctx context.Context, userID, id uuid.UUID) (*snapshot.HoldingsSnapshot, error) {
	var m HoldingsSnapshot
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, mapError(err, snapshotResource)
	}
	return fromSnapshotModel(&m), nil
}

func (r *snapshotRepository) Update(ctx context.Context, s *snapshot.HoldingsSnapshot) error {
	m := toSnapshotModel(s)
	res := r.db.WithContext(ctx).Model(&HoldingsSnapshot{}).Where("id = ?", s.ID).Updates(map[string]any{
		"date":            m.Date,
		"btc_usd":         m.BTCUSD,
		"eur_usd":         m.EURUSD,
		"btc_eur":         m.BTCEUR,
		"total_btc":       m.TotalBTC,
		"total_value_usd": m.TotalValueUSD,
		"total_value_eur": m.TotalValueEUR,
		"updated_at":      m.UpdatedAt,
	})
	return affected(res, snapshotResource)
}

func (r *snapshotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&HoldingsSnapshot{}, "id = ?", id), snapshotResource)
}

func (r *snapshotRepository) List(ctx context.Context, userID uuid.UUID, limit int) ([]*snapshot.HoldingsSnapshot, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var ms []HoldingsSnapshot
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*snapshot.HoldingsSnapshot, 0, len(ms))
	for i := range ms {
		out = append(out, fromSnapshotModel(&ms[i]))
	}
	return out, nil
}

func (r *snapshotRepository) FindAutomatic(ctx context.Context, userID uuid.UUID, day time.Time) (*snapshot.HoldingsSnapshot, error) {
	start := domain.Day(day)
	var m HoldingsSnapshot
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_automatic = ? AND date >= ? AND date < ?", userID, true, start, start.Add(24*time.Hour)).
		First(&m).Error
	if err != nil {
		return nil, mapError(err, snapshotResource)
	}
	return fromSnapshotModel(&m), nil
}

func toSnapshotModel(s *snapshot.HoldingsSnapshot) HoldingsSnapshot {
	return HoldingsSnapshot{
		ID:            s.ID,
		UserID:        s.UserID,
		Date:          s.Date.UTC(),
		BTCUSD:        s.BTCUSD,
		EURUSD:        s.EURUSD,
		BTCEUR:        s.BTCEUR,
		TotalBTC:      s.TotalBTC,
		TotalValueUSD: s.TotalValueUSD,
		TotalValueEUR: s.TotalValueEUR,
		IsAutomatic:   s.IsAutomatic,
		CreatedAt:     s.CreatedAt.UTC(),
		UpdatedAt:     s.UpdatedAt.UTC(),
	}
}

func fromSnapshotModel(m *HoldingsSnapshot) *snapshot.HoldingsSnapshot {
	return &snapshot.HoldingsSnapshot{
		ID:            m.ID,
		UserID:        m.UserID,
		Date:          m.Date.UTC(),
		BTCUSD:        m.BTCUSD,
		EURUSD:        m.EURUSD,
		BTCEUR:        m.BTCEUR,
		TotalBTC:      m.TotalBTC,
		TotalValueUSD: m.TotalValueUSD,
		TotalValueEUR: m.TotalValueEUR,
		IsAutomatic:   m.IsAutomatic,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
