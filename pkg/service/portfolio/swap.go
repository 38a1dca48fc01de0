package portfolio

import (
	"context"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/portfolio"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SwapInput exchanges FromQuantity of one asset for ToQuantity of another.
type SwapInput struct {
	FromAssetID  uuid.UUID
	ToAssetID    uuid.UUID
	FromQuantity decimal.Decimal
	ToQuantity   decimal.Decimal
	Date         time.Time
	Notes        string
}

// Swap is the pair of legs of one exchange.
type Swap struct {
	SwapPairID uuid.UUID                    `json:"swapPairId"`
	Out        *portfolio.CryptoTransaction `json:"out"`
	In         *portfolio.CryptoTransaction `json:"in"`
	Trade      *portfolio.Trade             `json:"trade,omitempty"`
}

var errTradeLeg = &domain.BusinessError{
	Err:     domain.ErrInvalidState,
	Message: "lo swap appartiene a un trade: eliminare il trade",
}

// CreateSwap exchanges assets inside a portfolio. The value carried over is
// the cost of the sold quantity at the current average price, so no gain
// is realized.
func (s *Service) CreateSwap(ctx context.Context, userID, portfolioID uuid.UUID, in SwapInput) (sw *Swap, err error) {
	logger := s.logger.With("userID", userID, "portfolioID", portfolioID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		sw, err = swap(ctx, uow, userID, portfolioID, in, in.Notes)
		return err
	})
	if err != nil {
		logger.Error("CreateSwap failed", "error", err)
		return nil, err
	}
	logger.Info("CreateSwap successful", "swapPairID", sw.SwapPairID, "eurValue", sw.Out.EURValue)
	return sw, nil
}

// DeleteSwap removes both legs of a swap and replays both assets. Legs
// belonging to a trade are removed through the trade.
func (s *Service) DeleteSwap(ctx context.Context, userID, portfolioID, pairID uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		if _, err := repo.GetPortfolio(ctx, userID, portfolioID); err != nil {
			return err
		}
		legs, err := repo.ListSwapPair(ctx, pairID)
		if err != nil {
			return err
		}
		if len(legs) == 0 {
			return domain.NotFound("swap")
		}
		for _, leg := range legs {
			if leg.PortfolioID != portfolioID {
				return domain.NotFound("swap")
			}
			if leg.TradeID != nil {
				return errTradeLeg
			}
		}
		return deleteLegs(ctx, uow, portfolioID, legs)
	})
	if err != nil {
		s.logger.Error("DeleteSwap failed", "userID", userID, "swapPairID", pairID, "error", err)
	}
	return err
}

// swap builds, stores and replays a swap on the caller's unit of work.
func swap(ctx context.Context, uow repository.UnitOfWork, userID, portfolioID uuid.UUID, in SwapInput, notes string) (*Swap, error) {
	repo, err := uow.CryptoRepository()
	if err != nil {
		return nil, err
	}
	if _, err := repo.GetPortfolio(ctx, userID, portfolioID); err != nil {
		return nil, err
	}
	from, err := repo.GetAsset(ctx, in.FromAssetID)
	if err != nil {
		return nil, err
	}
	if _, err := repo.GetAsset(ctx, in.ToAssetID); err != nil {
		return nil, err
	}
	if err := requireHolding(ctx, repo, portfolioID, from, in.FromQuantity); err != nil {
		return nil, err
	}
	h, err := repo.GetHolding(ctx, portfolioID, from.ID)
	if err != nil {
		return nil, err
	}
	out, inLeg, err := portfolio.NewSwap(portfolioID, in.FromAssetID, in.ToAssetID,
		in.FromQuantity, in.ToQuantity, costOf(in.FromQuantity, h.AvgPrice), in.Date, notes)
	if err != nil {
		return nil, err
	}
	sw := &Swap{SwapPairID: *out.SwapPairID, Out: out, In: inLeg}
	if err := storeLegs(ctx, uow, sw); err != nil {
		return nil, err
	}
	return sw, nil
}

// costOf values qty at the average price, rounded to cents.
func costOf(qty, avgPrice decimal.Decimal) decimal.Decimal {
	return domain.Cents(qty.Mul(avgPrice))
}

func storeLegs(ctx context.Context, uow repository.UnitOfWork, sw *Swap) error {
	repo, err := uow.CryptoRepository()
	if err != nil {
		return err
	}
	if err := repo.CreateTransaction(ctx, sw.Out); err != nil {
		return err
	}
	if err := repo.CreateTransaction(ctx, sw.In); err != nil {
		return err
	}
	if _, err := RecomputeHolding(ctx, uow, sw.Out.PortfolioID, sw.Out.AssetID); err != nil {
		return err
	}
	_, err = RecomputeHolding(ctx, uow, sw.In.PortfolioID, sw.In.AssetID)
	return err
}

func deleteLegs(ctx context.Context, uow repository.UnitOfWork, portfolioID uuid.UUID, legs []*portfolio.CryptoTransaction) error {
	repo, err := uow.CryptoRepository()
	if err != nil {
		return err
	}
	assets := map[uuid.UUID]bool{}
	var order []uuid.UUID
	for _, leg := range legs {
		if err := repo.DeleteTransaction(ctx, leg.ID); err != nil {
			return err
		}
		if !assets[leg.AssetID] {
			assets[leg.AssetID] = true
			order = append(order, leg.AssetID)
		}
	}
	for _, assetID := range order {
		if _, err := RecomputeHolding(ctx, uow, portfolioID, assetID); err != nil {
			return err
		}
	}
	return nil
}
