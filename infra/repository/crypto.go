package repository

import (
	"context"
	"strings"

	"github.com/amirasaad/finanze/pkg/domain/portfolio"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	cryptoPortfolioResource   = "portafoglio crypto"
	cryptoAssetResource       = "asset"
	cryptoTransactionResource = "transazione crypto"
	cryptoHoldingResource     = "posizione"
	cryptoTradeResource       = "trade"
)

type cryptoRepository struct {
	db *gorm.DB
}

// NewCryptoRepository creates a crypto portfolio repository on db.
func NewCryptoRepository(db *gorm.DB) repository.CryptoRepository {
	return &cryptoRepository{db: db}
}

func (r *cryptoRepository) CreatePortfolio(ctx context.Context, p *portfolio.CryptoPortfolio) error {
	m := CryptoPortfolio{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		AccountID:   p.AccountID,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
	return mapError(r.db.WithContext(ctx).Create(&m).Error, cryptoPortfolioResource)
}

func (r *cryptoRepository) GetPortfolio(ctx context.Context, userID, id uuid.UUID) (*portfolio.CryptoPortfolio, error) {
	var m CryptoPortfolio
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, mapError(err, cryptoPortfolioResource)
	}
	return fromCryptoPortfolioModel(&m), nil
}

func (r *cryptoRepository) ListPortfolios(ctx context.Context, userID uuid.UUID) ([]*portfolio.CryptoPortfolio, error) {
	var ms []CryptoPortfolio
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*portfolio.CryptoPortfolio, 0, len(ms))
	for i := range ms {
		out = append(out, fromCryptoPortfolioModel(&ms[i]))
	}
	return out, nil
}

func (r *cryptoRepository) UpdatePortfolio(ctx context.Context, p *portfolio.CryptoPortfolio) error {
	res := r.db.WithContext(ctx).Model(&CryptoPortfolio{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"account_id":  p.AccountID,
		"updated_at":  p.UpdatedAt.UTC(),
	})
	return affected(res, cryptoPortfolioResource)
}

func (r *cryptoRepository) DeletePortfolio(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&CryptoPortfolio{}, "id = ?", id), cryptoPortfolioResource)
}

func (r *cryptoRepository) UnlinkAccount(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&CryptoPortfolio{}).
		Where("account_id = ?", accountID).
		Update("account_id", nil).Error
}

func (r *cryptoRepository) CreateAsset(ctx context.Context, a *portfolio.Asset) error {
	m := CryptoAsset{ID: a.ID, Symbol: a.Symbol, Name: a.Name, CoingeckoID: a.CoingeckoID}
	return mapError(r.db.WithContext(ctx).Create(&m).Error, cryptoAssetResource)
}

func (r *cryptoRepository) GetAsset(ctx context.Context, id uuid.UUID) (*portfolio.Asset, error) {
	var m CryptoAsset
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapError(err, cryptoAssetResource)
	}
	return fromAssetModel(&m), nil
}

func (r *cryptoRepository) GetAssetBySymbol(ctx context.Context, symbol string) (*portfolio.Asset, error) {
	var m CryptoAsset
	if err := r.db.WithContext(ctx).Where("symbol = ?", strings.ToUpper(symbol)).First(&m).Error; err != nil {
		return nil, mapError(err, cryptoAssetResource)
	}
	return fromAssetModel(&m), nil
}

func (r *cryptoRepository) ListAssets(ctx context.Context) ([]*portfolio.Asset, error) {
	var ms []CryptoAsset
	if err := r.db.WithContext(ctx).Order("symbol ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*portfolio.Asset, 0, len(ms))
	for i := range ms {
		out = append(out, fromAssetModel(&ms[i]))
	}
	return out, nil
}

func (r *cryptoRepository) CreateTransaction(ctx context.Context, tx *portfolio.CryptoTransaction) error {
	m := toCryptoTransactionModel(tx)
	return mapError(r.db.WithContext(ctx).Create(&m).Error, cryptoTransactionResource)
}

func (r *cryptoRepository) GetTransaction(ctx context.Context, id uuid.UUID) (*portfolio.CryptoTransaction, error) {
	var m CryptoTransaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapError(err, cryptoTransactionResource)
	}
	return fromCryptoTransactionModel(&m), nil
}

func (r *cryptoRepository) UpdateTransaction(ctx context.Context, tx *portfolio.CryptoTransaction) error {
	m := toCryptoTransactionModel(tx)
	res := r.db.WithContext(ctx).Model(&CryptoTransaction{}).Where("id = ?", tx.ID).Updates(map[string]any{
		"asset_id":       m.AssetID,
		"type":           m.Type,
		"quantity":       m.Quantity,
		"eur_value":      m.EURValue,
		"price_per_unit": m.PricePerUnit,
		"date":           m.Date,
		"notes":          m.Notes,
		"updated_at":     m.UpdatedAt,
	})
	return affected(res, cryptoTransactionResource)
}

func (r *cryptoRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&CryptoTransaction{}, "id = ?", id), cryptoTransactionResource)
}

func (r *cryptoRepository) ListTransactions(ctx context.Context, portfolioID uuid.UUID) ([]*portfolio.CryptoTransaction, error) {
	return r.findTransactions(r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID))
}

func (r *cryptoRepository) ListAssetTransactions(ctx context.Context, portfolioID, assetID uuid.UUID) ([]*portfolio.CryptoTransaction, error) {
	return r.findTransactions(r.db.WithContext(ctx).Where("portfolio_id = ? AND asset_id = ?", portfolioID, assetID))
}

func (r *cryptoRepository) ListSwapPair(ctx context.Context, swapPairID uuid.UUID) ([]*portfolio.CryptoTransaction, error) {
	return r.findTransactions(r.db.WithContext(ctx).Where("swap_pair_id = ?", swapPairID))
}

func (r *cryptoRepository) findTransactions(q *gorm.DB) ([]*portfolio.CryptoTransaction, error) {
	var ms []CryptoTransaction
	if err := q.Order("date ASC, created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*portfolio.CryptoTransaction, 0, len(ms))
	for i := range ms {
		out = append(out, fromCryptoTransactionModel(&ms[i]))
	}
	return out, nil
}

func (r *cryptoRepository) DeleteTransactions(ctx context.Context, portfolioID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Delete(&CryptoTransaction{}).Error
}

func (r *cryptoRepository) GetHolding(ctx context.Context, portfolioID, assetID uuid.UUID) (*portfolio.Holding, error) {
	var m CryptoHolding
	if err := r.db.WithContext(ctx).Where("portfolio_id = ? AND asset_id = ?", portfolioID, assetID).First(&m).Error; err != nil {
		return nil, mapError(err, cryptoHoldingResource)
	}
	return fromHoldingModel(&m), nil
}

func (r *cryptoRepository) ListHoldings(ctx context.Context, portfolioID uuid.UUID) ([]*portfolio.Holding, error) {
	var ms []CryptoHolding
	if err := r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*portfolio.Holding, 0, len(ms))
	for i := range ms {
		out = append(out, fromHoldingModel(&ms[i]))
	}
	return out, nil
}

// SaveHolding upserts on (portfolio_id, asset_id).
func (r *cryptoRepository) SaveHolding(ctx context.Context, h *portfolio.Holding) error {
	m := CryptoHolding{
		ID:            h.ID,
		PortfolioID:   h.PortfolioID,
		AssetID:       h.AssetID,
		Quantity:      h.Quantity,
		AvgPrice:      h.AvgPrice,
		TotalInvested: h.TotalInvested,
		RealizedGains: h.RealizedGains,
		LastUpdated:   h.LastUpdated.UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "portfolio_id"}, {Name: "asset_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "avg_price", "total_invested", "realized_gains", "last_updated"}),
	}).Create(&m).Error
}

func (r *cryptoRepository) DeleteHolding(ctx context.Context, portfolioID, assetID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("portfolio_id = ? AND asset_id = ?", portfolioID, assetID).
		Delete(&CryptoHolding{}).Error
}

func (r *cryptoRepository) DeleteHoldings(ctx context.Context, portfolioID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Delete(&CryptoHolding{}).Error
}

func (r *cryptoRepository) CreateTrade(ctx context.Context, t *portfolio.Trade) error {
	m := toTradeModel(t)
	return mapError(r.db.WithContext(ctx).Create(&m).Error, cryptoTradeResource)
}

func (r *cryptoRepository) GetTrade(ctx context.Context, id uuid.UUID) (*portfolio.Trade, error) {
	var m CryptoTrade
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapError(err, cryptoTradeResource)
	}
	return fromTradeModel(&m), nil
}

func (r *cryptoRepository) UpdateTrade(ctx context.Context, t *portfolio.Trade) error {
	m := toTradeModel(t)
	res := r.db.WithContext(ctx).Model(&CryptoTrade{}).Where("id = ?", t.ID).Updates(map[string]any{
		"status":             m.Status,
		"final_value":        m.FinalValue,
		"realized_pnl":       m.RealizedPnL,
		"received_quantity":  m.ReceivedQuantity,
		"close_swap_pair_id": m.CloseSwapPairID,
		"closed_at":          m.ClosedAt,
	})
	return affected(res, cryptoTradeResource)
}

func (r *cryptoRepository) DeleteTrade(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&CryptoTrade{}, "id = ?", id), cryptoTradeResource)
}

func (r *cryptoRepository) ListTrades(ctx context.Context, portfolioID uuid.UUID) ([]*portfolio.Trade, error) {
	var ms []CryptoTrade
	if err := r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Order("opened_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*portfolio.Trade, 0, len(ms))
	for i := range ms {
		out = append(out, fromTradeModel(&ms[i]))
	}
	return out, nil
}

func (r *cryptoRepository) DeleteTrades(ctx context.Context, portfolioID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Delete(&CryptoTrade{}).Error
}

func fromCryptoPortfolioModel(m *CryptoPortfolio) *portfolio.CryptoPortfolio {
	return &portfolio.CryptoPortfolio{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Description: m.Description,
		AccountID:   m.AccountID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromAssetModel(m *CryptoAsset) *portfolio.Asset {
	return &portfolio.Asset{ID: m.ID, Symbol: m.Symbol, Name: m.Name, CoingeckoID: m.CoingeckoID}
}

func toCryptoTransactionModel(tx *portfolio.CryptoTransaction) CryptoTransaction {
	return CryptoTransaction{
		ID:           tx.ID,
		PortfolioID:  tx.PortfolioID,
		AssetID:      tx.AssetID,
		Type:         string(tx.Type),
		Quantity:     tx.Quantity,
		EURValue:     tx.EURValue,
		PricePerUnit: tx.PricePerUnit,
		Date:         tx.Date.UTC(),
		Notes:        tx.Notes,
		SwapPairID:   tx.SwapPairID,
		TradeID:      tx.TradeID,
		CreatedAt:    tx.CreatedAt.UTC(),
		UpdatedAt:    tx.UpdatedAt.UTC(),
	}
}

func fromCryptoTransactionModel(m *CryptoTransaction) *portfolio.CryptoTransaction {
	return &portfolio.CryptoTransaction{
		ID:           m.ID,
		PortfolioID:  m.PortfolioID,
		AssetID:      m.AssetID,
		Type:         portfolio.TxType(m.Type),
		Quantity:     m.Quantity,
		EURValue:     m.EURValue,
		PricePerUnit: m.PricePerUnit,
		Date:         m.Date.UTC(),
		Notes:        m.Notes,
		SwapPairID:   m.SwapPairID,
		TradeID:      m.TradeID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromHoldingModel(m *CryptoHolding) *portfolio.Holding {
	return &portfolio.Holding{
		ID:          m.ID,
		PortfolioID: m.PortfolioID,
		AssetID:     m.AssetID,
		Position: portfolio.Position{
			Quantity:      m.Quantity,
			AvgPrice:      m.AvgPrice,
			TotalInvested: m.TotalInvested,
			RealizedGains: m.RealizedGains,
		},
		LastUpdated: m.LastUpdated,
	}
}

func toTradeModel(t *portfolio.Trade) CryptoTrade {
	m := CryptoTrade{
		ID:               t.ID,
		PortfolioID:      t.PortfolioID,
		Status:           string(t.Status),
		FromAssetID:      t.FromAssetID,
		ToAssetID:        t.ToAssetID,
		FromQuantity:     t.FromQuantity,
		ToQuantity:       t.ToQuantity,
		InitialValue:     t.InitialValue,
		FinalValue:       t.FinalValue,
		RealizedPnL:      t.RealizedPnL,
		ReceivedQuantity: t.ReceivedQty,
		OpenSwapPairID:   t.OpenSwapPairID,
		CloseSwapPairID:  t.CloseSwapPairID,
		OpenedAt:         t.OpenedAt.UTC(),
	}
	if t.ClosedAt != nil {
		closed := t.ClosedAt.UTC()
		m.ClosedAt = &closed
	}
	return m
}

func fromTradeModel(m *CryptoTrade) *portfolio.Trade {
	return &portfolio.Trade{
		ID:              m.ID,
		PortfolioID:     m.PortfolioID,
		Status:          portfolio.TradeStatus(m.Status),
		FromAssetID:     m.FromAssetID,
		ToAssetID:       m.ToAssetID,
		FromQuantity:    m.FromQuantity,
		ToQuantity:      m.ToQuantity,
		InitialValue:    m.InitialValue,
		FinalValue:      m.FinalValue,
		RealizedPnL:     m.RealizedPnL,
		ReceivedQty:     m.ReceivedQuantity,
		OpenSwapPairID:  m.OpenSwapPairID,
		CloseSwapPairID: m.CloseSwapPairID,
		OpenedAt:        m.OpenedAt,
		ClosedAt:        m.ClosedAt,
	}
}
