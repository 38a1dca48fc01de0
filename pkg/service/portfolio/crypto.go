package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/ledger"
	"github.com/amirasaad/finanze/pkg/domain/portfolio"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoldingView is a holding valued at the current market price.
type HoldingView struct {
	*portfolio.Holding
	Asset          *portfolio.Asset `json:"asset"`
	CurrentPrice   decimal.Decimal  `json:"currentPrice"`
	CurrentValue   decimal.Decimal  `json:"currentValue"`
	UnrealizedGain decimal.Decimal  `json:"unrealizedGain"`
	PriceAvailable bool             `json:"priceAvailable"`
}

// CryptoView is a crypto portfolio with its valued holdings and statistics.
type CryptoView struct {
	*portfolio.CryptoPortfolio
	Holdings     []HoldingView                  `json:"holdings"`
	Stats        portfolio.CashFlowStats        `json:"stats"`
	Transactions []*portfolio.CryptoTransaction `json:"transactions,omitempty"`
}

// CryptoInput carries the editable fields of a buy, sell or staking reward.
type CryptoInput struct {
	AssetID  uuid.UUID
	Type     portfolio.TxType
	Quantity decimal.Decimal
	EURValue decimal.Decimal
	Date     time.Time
	Notes    string
}

// CryptoPortfolioInput carries the editable fields of a crypto portfolio.
type CryptoPortfolioInput struct {
	Name        string
	Description string
	AccountID   *uuid.UUID
}

var (
	errSwapLeg = &domain.BusinessError{
		Err:     domain.ErrInvalidState,
		Message: "la transazione fa parte di uno swap: usare le operazioni di swap",
	}
	errSwapType = domain.Invalid("gli swap si registrano con l'apposita operazione")
)

func (s *Service) ListAssets(ctx context.Context) ([]*portfolio.Asset, error) {
	repo, err := s.uow.CryptoRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListAssets(ctx)
}

// CreateAsset adds an asset to the shared catalog. Symbols are unique.
func (s *Service) CreateAsset(ctx context.Context, symbol, name, coingeckoID string) (a *portfolio.Asset, err error) {
	if a, err = portfolio.NewAsset(symbol, name, coingeckoID); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		_, err = repo.GetAssetBySymbol(ctx, a.Symbol)
		if err == nil {
			return domain.Conflict("l'asset %s esiste già", a.Symbol)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return repo.CreateAsset(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("CreateAsset successful", "symbol", a.Symbol)
	return a, nil
}

func (s *Service) ListCrypto(ctx context.Context, userID uuid.UUID) ([]CryptoView, error) {
	repo, err := s.uow.CryptoRepository()
	if err != nil {
		return nil, err
	}
	ps, err := repo.ListPortfolios(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]CryptoView, 0, len(ps))
	for _, p := range ps {
		v, err := s.cryptoView(ctx, p, false)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *Service) GetCrypto(ctx context.Context, userID, id uuid.UUID) (*CryptoView, error) {
	repo, err := s.uow.CryptoRepository()
	if err != nil {
		return nil, err
	}
	p, err := repo.GetPortfolio(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.cryptoView(ctx, p, true)
}

func (s *Service) CreateCrypto(ctx context.Context, userID uuid.UUID, in CryptoPortfolioInput) (p *portfolio.CryptoPortfolio, err error) {
	if p, err = portfolio.NewCryptoPortfolio(userID, in.Name, in.Description, in.AccountID); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if err := checkAccount(ctx, uow, userID, in.AccountID); err != nil {
			return err
		}
		repo, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		return repo.CreatePortfolio(ctx, p)
	})
	if err != nil {
		s.logger.Error("CreateCryptoPortfolio failed", "userID", userID, "error", err)
		return nil, err
	}
	s.logger.Info("CreateCryptoPortfolio successful", "userID", userID, "portfolioID", p.ID)
	return p, nil
}

// UpdateCrypto edits a portfolio. Relinking moves the effect of every
// historical buy and sell to the new account without guarding.
func (s *Service) UpdateCrypto(ctx context.Context, userID, id uuid.UUID, in CryptoPortfolioInput) (p *portfolio.CryptoPortfolio, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		if p, err = repo.GetPortfolio(ctx, userID, id); err != nil {
			return err
		}
		next, err := portfolio.NewCryptoPortfolio(userID, in.Name, in.Description, in.AccountID)
		if err != nil {
			return err
		}
		if !sameAccount(p.AccountID, in.AccountID) {
			if err := checkAccount(ctx, uow, userID, in.AccountID); err != nil {
				return err
			}
			txs, err := repo.ListTransactions(ctx, p.ID)
			if err != nil {
				return err
			}
			var old, moved []ledger.Effect
			for _, tx := range txs {
				old = append(old, tx.Effects(p.AccountID)...)
				moved = append(moved, tx.Effects(in.AccountID)...)
			}
			accounts, err := uow.AccountRepository()
			if err != nil {
				return err
			}
			if err := ledger.Replace(ctx, accounts, old, moved, false); err != nil {
				return err
			}
		}
		p.Name, p.Description, p.AccountID = next.Name, next.Description, in.AccountID
		p.UpdatedAt = time.Now().UTC()
		return repo.UpdatePortfolio(ctx, p)
	})
	if err != nil {
		s.logger.Error("UpdateCryptoPortfolio failed", "userID", userID, "portfolioID", id, "error", err)
		return nil, err
	}
	return p, nil
}

// DeleteCrypto reverts the portfolio's account effects and removes it with
// its transactions, holdings, trades and fees.
func (s *Service) DeleteCrypto(ctx context.Context, userID, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		p, err := repo.GetPortfolio(ctx, userID, id)
		if err != nil {
			return err
		}
		txs, err := repo.ListTransactions(ctx, id)
		if err != nil {
			return err
		}
		var effects []ledger.Effect
		for _, tx := range txs {
			effects = append(effects, tx.Effects(p.AccountID)...)
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err := ledger.Replace(ctx, accounts, effects, nil, false); err != nil {
			return err
		}
		fees, err := uow.FeeRepository()
		if err != nil {
			return err
		}
		if err := fees.DeleteForCrypto(ctx, id); err != nil {
			return err
		}
		if err := repo.DeleteTrades(ctx, id); err != nil {
			return err
		}
		if err := repo.DeleteHoldings(ctx, id); err != nil {
			return err
		}
		if err := repo.DeleteTransactions(ctx, id); err != nil {
			return err
		}
		return repo.DeletePortfolio(ctx, id)
	})
	if err != nil {
		s.logger.Error("DeleteCryptoPortfolio failed", "userID", userID, "portfolioID", id, "error", err)
	}
	return err
}

// CreateCryptoTransaction records a buy, sell or staking reward and
// replays the asset's holding.
func (s *Service) CreateCryptoTransaction(ctx context.Context, userID, portfolioID uuid.UUID, in CryptoInput) (tx *portfolio.CryptoTransaction, err error) {
	logger := s.logger.With("userID", userID, "portfolioID", portfolioID, "type", in.Type)
	if in.Type.IsSwap() {
		return nil, errSwapType
	}
	tx, err = portfolio.NewCryptoTransaction(portfolioID, in.AssetID, in.Type, in.Quantity, in.EURValue, in.Date, in.Notes)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		p, err := repo.GetPortfolio(ctx, userID, portfolioID)
		if err != nil {
			return err
		}
		asset, err := repo.GetAsset(ctx, tx.AssetID)
		if err != nil {
			return err
		}
		if tx.Type == portfolio.TxSell {
			if err := requireHolding(ctx, repo, p.ID, asset, tx.Quantity); err != nil {
				return err
			}
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err := ledger.Replace(ctx, accounts, nil, tx.Effects(p.AccountID), true); err != nil {
			return err
		}
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			return err
		}
		_, err = RecomputeHolding(ctx, uow, p.ID, tx.AssetID)
		return err
	})
	if err != nil {
		logger.Error("CreateCryptoTransaction failed", "error", err)
		return nil, err
	}
	logger.Info("CreateCryptoTransaction successful", "transactionID", tx.ID)
	return tx, nil
}

func (s *Service) UpdateCryptoTransaction(ctx context.Context, userID, id uuid.UUID, in CryptoInput) (tx *portfolio.CryptoTransaction, err error) {
	if in.Type.IsSwap() {
		return nil, errSwapType
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		if tx, err = repo.GetTransaction(ctx, id); err != nil {
			return err
		}
		p, err := repo.GetPortfolio(ctx, userID, tx.PortfolioID)
		if err != nil {
			return err
		}
		if tx.SwapPairID != nil {
			return errSwapLeg
		}
		if _, err := repo.GetAsset(ctx, in.AssetID); err != nil {
			return err
		}
		old := tx.Effects(p.AccountID)
		oldAsset := tx.AssetID

		tx.AssetID = in.AssetID
		tx.Type = in.Type
		tx.Quantity = in.Quantity
		tx.EURValue = in.EURValue
		tx.Date = in.Date.UTC()
		tx.Notes = in.Notes
		if err := tx.Validate(); err != nil {
			return err
		}
		tx.Reprice()
		tx.UpdatedAt = time.Now().UTC()

		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err := ledger.Replace(ctx, accounts, old, tx.Effects(p.AccountID), true); err != nil {
			return err
		}
		if err := repo.UpdateTransaction(ctx, tx); err != nil {
			return err
		}
		if oldAsset != tx.AssetID {
			if _, err := RecomputeHolding(ctx, uow, p.ID, oldAsset); err != nil {
				return err
			}
		}
		_, err = RecomputeHolding(ctx, uow, p.ID, tx.AssetID)
		return err
	})
	if err != nil {
		s.logger.Error("UpdateCryptoTransaction failed", "userID", userID, "transactionID", id, "error", err)
		return nil, err
	}
	return tx, nil
}

func (s *Service) DeleteCryptoTransaction(ctx context.Context, userID, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		tx, err := repo.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		p, err := repo.GetPortfolio(ctx, userID, tx.PortfolioID)
		if err != nil {
			return err
		}
		if tx.SwapPairID != nil {
			return errSwapLeg
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err := ledger.Replace(ctx, accounts, tx.Effects(p.AccountID), nil, false); err != nil {
			return err
		}
		if err := repo.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		_, err = RecomputeHolding(ctx, uow, p.ID, tx.AssetID)
		return err
	})
	if err != nil {
		s.logger.Error("DeleteCryptoTransaction failed", "userID", userID, "transactionID", id, "error", err)
	}
	return err
}

// RecomputePortfolio replays every asset the portfolio has ever touched.
func (s *Service) RecomputePortfolio(ctx context.Context, userID, id uuid.UUID) (holdings []*portfolio.Holding, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		if _, err := repo.GetPortfolio(ctx, userID, id); err != nil {
			return err
		}
		assets, err := touchedAssets(ctx, uow, userID, id)
		if err != nil {
			return err
		}
		for _, assetID := range assets {
			if _, err := RecomputeHolding(ctx, uow, id, assetID); err != nil {
				return err
			}
		}
		holdings, err = repo.ListHoldings(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Error("RecomputePortfolio failed", "userID", userID, "portfolioID", id, "error", err)
		return nil, err
	}
	s.logger.Info("RecomputePortfolio successful", "userID", userID, "portfolioID", id, "holdings", len(holdings))
	return holdings, nil
}

// RecomputeHolding replays the transactions and fees of one asset and
// stores the resulting position, or removes it when the position is
// closed. A replay ending below zero fails with insufficient holdings. It
// runs on the caller's unit of work.
func RecomputeHolding(ctx context.Context, uow repository.UnitOfWork, portfolioID, assetID uuid.UUID) (*portfolio.Holding, error) {
	repo, err := uow.CryptoRepository()
	if err != nil {
		return nil, err
	}
	txs, err := repo.ListAssetTransactions(ctx, portfolioID, assetID)
	if err != nil {
		return nil, err
	}
	feeRepo, err := uow.FeeRepository()
	if err != nil {
		return nil, err
	}
	fees, err := feeRepo.ListForCryptoAsset(ctx, portfolioID, assetID)
	if err != nil {
		return nil, err
	}
	events := make([]portfolio.Event, 0, len(txs)+len(fees))
	for _, tx := range txs {
		events = append(events, tx.Event())
	}
	_, feeEvents := portfolio.FeeTotals(fees)
	events = append(events, feeEvents...)

	pos := portfolio.Replay(events)
	if pos.Quantity.LessThan(domain.DustThreshold.Neg()) {
		asset, err := repo.GetAsset(ctx, assetID)
		if err != nil {
			return nil, err
		}
		return nil, &domain.BusinessError{
			Err:     domain.ErrInsufficientHoldings,
			Message: fmt.Sprintf("la posizione in %s diventerebbe negativa: %s", asset.Symbol, pos.Quantity.String()),
			Detail:  map[string]any{"asset": asset.Symbol, "quantity": pos.Quantity},
		}
	}
	if !pos.IsOpen() {
		return nil, repo.DeleteHolding(ctx, portfolioID, assetID)
	}

	h := &portfolio.Holding{
		ID:          uuid.New(),
		PortfolioID: portfolioID,
		AssetID:     assetID,
		Position:    pos,
		LastUpdated: time.Now().UTC(),
	}
	existing, err := repo.GetHolding(ctx, portfolioID, assetID)
	switch {
	case err == nil:
		h.ID = existing.ID
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	if err := repo.SaveHolding(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// requireHolding fails when the portfolio holds less than qty of asset.
func requireHolding(ctx context.Context, repo repository.CryptoRepository, portfolioID uuid.UUID, asset *portfolio.Asset, qty decimal.Decimal) error {
	h, err := repo.GetHolding(ctx, portfolioID, asset.ID)
	held := decimal.Zero
	switch {
	case err == nil:
		held = h.Quantity
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	if held.Add(domain.DustThreshold).LessThan(qty) {
		return domain.InsufficientHoldings(asset.Symbol, held, qty)
	}
	return nil
}

// touchedAssets lists every asset referenced by the portfolio's
// transactions, fees or stored holdings.
func touchedAssets(ctx context.Context, uow repository.UnitOfWork, userID, portfolioID uuid.UUID) ([]uuid.UUID, error) {
	repo, err := uow.CryptoRepository()
	if err != nil {
		return nil, err
	}
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	txs, err := repo.ListTransactions(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		add(tx.AssetID)
	}
	holdings, err := repo.ListHoldings(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	for _, h := range holdings {
		add(h.AssetID)
	}
	feeRepo, err := uow.FeeRepository()
	if err != nil {
		return nil, err
	}
	fees, err := feeRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, f := range fees {
		if f.CryptoPortfolioID != nil && *f.CryptoPortfolioID == portfolioID && f.AssetID != nil {
			add(*f.AssetID)
		}
	}
	return out, nil
}

// cryptoView values the holdings at current prices and derives the cash
// flow statistics. Swaps and staking rewards are not flows.
func (s *Service) cryptoView(ctx context.Context, p *portfolio.CryptoPortfolio, withTransactions bool) (*CryptoView, error) {
	repo, err := s.uow.CryptoRepository()
	if err != nil {
		return nil, err
	}
	holdings, err := repo.ListHoldings(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	txs, err := repo.ListTransactions(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	assets := make(map[uuid.UUID]*portfolio.Asset, len(holdings))
	var ids []string
	for _, h := range holdings {
		a, err := repo.GetAsset(ctx, h.AssetID)
		if err != nil {
			return nil, err
		}
		assets[h.AssetID] = a
		if a.CoingeckoID != "" {
			ids = append(ids, a.CoingeckoID)
		}
	}
	prices := s.assetPrices(ctx, ids)

	v := &CryptoView{CryptoPortfolio: p, Holdings: make([]HoldingView, 0, len(holdings))}
	total := decimal.Zero
	for _, h := range holdings {
		a := assets[h.AssetID]
		hv := HoldingView{
			Holding:        h,
			Asset:          a,
			CurrentPrice:   decimal.Zero,
			CurrentValue:   decimal.Zero,
			UnrealizedGain: decimal.Zero,
		}
		if price, ok := prices[a.CoingeckoID]; ok {
			hv.PriceAvailable = true
			hv.CurrentPrice = price
			hv.CurrentValue = domain.Cents(h.Quantity.Mul(price))
			hv.UnrealizedGain = hv.CurrentValue.Sub(h.TotalInvested)
			total = total.Add(hv.CurrentValue)
		}
		v.Holdings = append(v.Holdings, hv)
	}

	flows := make([]portfolio.Flow, 0, len(txs))
	for _, tx := range txs {
		if f, ok := tx.Flow(); ok {
			flows = append(flows, f)
		}
	}
	v.Stats = portfolio.ComputeCashFlow(flows, total)
	if withTransactions {
		v.Transactions = txs
	}
	return v, nil
}
