package portfolio

import (
	"context"
	"time"

	"github.com/amirasaad/finanze/pkg/domain/portfolio"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *Service) ListTrades(ctx context.Context, userID, portfolioID uuid.UUID) ([]*portfolio.Trade, error) {
	repo, err := s.uow.CryptoRepository()
	if err != nil {
		return nil, err
	}
	if _, err := repo.GetPortfolio(ctx, userID, portfolioID); err != nil {
		return nil, err
	}
	return repo.ListTrades(ctx, portfolioID)
}

// OpenTrade swaps into the target asset and tracks the position as a
// trade measured in the source asset.
func (s *Service) OpenTrade(ctx context.Context, userID, portfolioID uuid.UUID, in SwapInput) (sw *Swap, err error) {
	logger := s.logger.With("userID", userID, "portfolioID", portfolioID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		if _, err := repo.GetPortfolio(ctx, userID, portfolioID); err != nil {
			return err
		}
		from, err := repo.GetAsset(ctx, in.FromAssetID)
		if err != nil {
			return err
		}
		if _, err := repo.GetAsset(ctx, in.ToAssetID); err != nil {
			return err
		}
		if err := requireHolding(ctx, repo, portfolioID, from, in.FromQuantity); err != nil {
			return err
		}
		h, err := repo.GetHolding(ctx, portfolioID, from.ID)
		if err != nil {
			return err
		}
		notes := in.Notes
		if notes == "" {
			notes = "apertura trade"
		}
		out, inLeg, err := portfolio.NewSwap(portfolioID, in.FromAssetID, in.ToAssetID,
			in.FromQuantity, in.ToQuantity, costOf(in.FromQuantity, h.AvgPrice), in.Date, notes)
		if err != nil {
			return err
		}
		trade := portfolio.OpenTrade(out, inLeg)
		if err := repo.CreateTrade(ctx, trade); err != nil {
			return err
		}
		sw = &Swap{SwapPairID: *out.SwapPairID, Out: out, In: inLeg, Trade: trade}
		return storeLegs(ctx, uow, sw)
	})
	if err != nil {
		logger.Error("OpenTrade failed", "error", err)
		return nil, err
	}
	logger.Info("OpenTrade successful", "tradeID", sw.Trade.ID, "initialValue", sw.Trade.InitialValue)
	return sw, nil
}

// CloseTrade swaps the whole target quantity back and realizes the profit
// measured in the source asset.
func (s *Service) CloseTrade(ctx context.Context, userID, tradeID uuid.UUID, receivedQty decimal.Decimal, date time.Time) (sw *Swap, err error) {
	logger := s.logger.With("userID", userID, "tradeID", tradeID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		trade, err := repo.GetTrade(ctx, tradeID)
		if err != nil {
			return err
		}
		if _, err := repo.GetPortfolio(ctx, userID, trade.PortfolioID); err != nil {
			return err
		}
		to, err := repo.GetAsset(ctx, trade.ToAssetID)
		if err != nil {
			return err
		}
		if trade.Status == portfolio.TradeOpen {
			if err := requireHolding(ctx, repo, trade.PortfolioID, to, trade.ToQuantity); err != nil {
				return err
			}
		}
		out, in, err := trade.Close(receivedQty, date)
		if err != nil {
			return err
		}
		if err := repo.UpdateTrade(ctx, trade); err != nil {
			return err
		}
		sw = &Swap{SwapPairID: *out.SwapPairID, Out: out, In: in, Trade: trade}
		return storeLegs(ctx, uow, sw)
	})
	if err != nil {
		logger.Error("CloseTrade failed", "error", err)
		return nil, err
	}
	logger.Info("CloseTrade successful", "realizedPnL", sw.Trade.RealizedPnL.Decimal)
	return sw, nil
}

// DeleteTrade removes the trade with its opening and closing swaps and
// replays both assets.
func (s *Service) DeleteTrade(ctx context.Context, userID, tradeID uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		trade, err := repo.GetTrade(ctx, tradeID)
		if err != nil {
			return err
		}
		if _, err := repo.GetPortfolio(ctx, userID, trade.PortfolioID); err != nil {
			return err
		}
		legs, err := repo.ListSwapPair(ctx, trade.OpenSwapPairID)
		if err != nil {
			return err
		}
		if trade.CloseSwapPairID != nil {
			closing, err := repo.ListSwapPair(ctx, *trade.CloseSwapPairID)
			if err != nil {
				return err
			}
			legs = append(legs, closing...)
		}
		if err := repo.DeleteTrade(ctx, trade.ID); err != nil {
			return err
		}
		return deleteLegs(ctx, uow, trade.PortfolioID, legs)
	})
	if err != nil {
		s.logger.Error("DeleteTrade failed", "userID", userID, "tradeID", tradeID, "error", err)
	}
	return err
}
