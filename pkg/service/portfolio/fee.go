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

// FeeInput describes a network fee. Exactly one portfolio must be set;
// DCA fees are in satoshis, crypto fees in units of AssetID.
type FeeInput struct {
	DCAPortfolioID    *uuid.UUID
	CryptoPortfolioID *uuid.UUID
	AssetID           *uuid.UUID
	Quantity          decimal.Decimal
	EURValue          decimal.Decimal
	Date              time.Time
	Description       string
}

func (s *Service) ListFees(ctx context.Context, userID uuid.UUID) ([]*portfolio.NetworkFee, error) {
	repo, err := s.uow.FeeRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByUser(ctx, userID)
}

// CreateFee records a fee paid from a portfolio's holdings.
func (s *Service) CreateFee(ctx context.Context, userID uuid.UUID, in FeeInput) (f *portfolio.NetworkFee, err error) {
	f, err = portfolio.NewNetworkFee(userID, in.DCAPortfolioID, in.CryptoPortfolioID, in.AssetID,
		in.Quantity, in.EURValue, in.Date, in.Description)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.FeeRepository()
		if err != nil {
			return err
		}
		if f.DCAPortfolioID != nil {
			dca, err := uow.DCARepository()
			if err != nil {
				return err
			}
			if _, err := dca.GetPortfolio(ctx, userID, *f.DCAPortfolioID); err != nil {
				return err
			}
			held, err := NetBTC(ctx, uow, *f.DCAPortfolioID)
			if err != nil {
				return err
			}
			if held.Add(domain.DustThreshold).LessThan(f.AssetQuantity()) {
				return domain.InsufficientHoldings("BTC", held, f.AssetQuantity())
			}
			return repo.Create(ctx, f)
		}

		crypto, err := uow.CryptoRepository()
		if err != nil {
			return err
		}
		if _, err := crypto.GetPortfolio(ctx, userID, *f.CryptoPortfolioID); err != nil {
			return err
		}
		asset, err := crypto.GetAsset(ctx, *f.AssetID)
		if err != nil {
			return err
		}
		if err := requireHolding(ctx, crypto, *f.CryptoPortfolioID, asset, f.Quantity); err != nil {
			return err
		}
		if err := repo.Create(ctx, f); err != nil {
			return err
		}
		_, err = RecomputeHolding(ctx, uow, *f.CryptoPortfolioID, asset.ID)
		return err
	})
	if err != nil {
		s.logger.Error("CreateNetworkFee failed", "userID", userID, "error", err)
		return nil, err
	}
	s.logger.Info("CreateNetworkFee successful", "userID", userID, "feeID", f.ID, "quantity", f.Quantity)
	return f, nil
}

// DeleteFee removes a fee; crypto holdings are replayed without it.
func (s *Service) DeleteFee(ctx context.Context, userID, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.FeeRepository()
		if err != nil {
			return err
		}
		f, err := repo.Get(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		if f.CryptoPortfolioID != nil && f.AssetID != nil {
			_, err = RecomputeHolding(ctx, uow, *f.CryptoPortfolioID, *f.AssetID)
		}
		return err
	})
	if err != nil {
		s.logger.Error("DeleteNetworkFee failed", "userID", userID, "feeID", id, "error", err)
	}
	return err
}
