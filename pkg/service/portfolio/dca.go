package portfolio

import (
	"context"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/ledger"
	"github.com/amirasaad/finanze/pkg/domain/portfolio"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DCAView is a DCA portfolio with its statistics.
type DCAView struct {
	*portfolio.DCAPortfolio
	Stats        portfolio.DCAStats          `json:"stats"`
	Transactions []*portfolio.DCATransaction `json:"transactions,omitempty"`
}

// DCAInput carries the editable fields of a DCA transaction. A negative
// BTCQuantity is a sale.
type DCAInput struct {
	Date        time.Time
	Broker      string
	Info        string
	BTCQuantity decimal.Decimal
	EURPaid     decimal.Decimal
}

func (s *Service) ListDCA(ctx context.Context, userID uuid.UUID) ([]DCAView, error) {
	repo, err := s.uow.DCARepository()
	if err != nil {
		return nil, err
	}
	ps, err := repo.ListPortfolios(ctx, userID)
	if err != nil {
		return nil, err
	}
	price := s.btcPrice(ctx)
	out := make([]DCAView, 0, len(ps))
	for _, p := range ps {
		stats, _, err := dcaStats(ctx, s.uow, p.ID, price)
		if err != nil {
			return nil, err
		}
		out = append(out, DCAView{DCAPortfolio: p, Stats: stats})
	}
	return out, nil
}

// GetDCA returns a portfolio with stats and its transactions.
func (s *Service) GetDCA(ctx context.Context, userID, id uuid.UUID) (*DCAView, error) {
	repo, err := s.uow.DCARepository()
	if err != nil {
		return nil, err
	}
	p, err := repo.GetPortfolio(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	stats, txs, err := dcaStats(ctx, s.uow, p.ID, s.btcPrice(ctx))
	if err != nil {
		return nil, err
	}
	return &DCAView{DCAPortfolio: p, Stats: stats, Transactions: txs}, nil
}

func (s *Service) CreateDCA(ctx context.Context, userID uuid.UUID, name string, accountID *uuid.UUID) (p *portfolio.DCAPortfolio, err error) {
	if p, err = portfolio.NewDCAPortfolio(userID, name, accountID); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if err := checkAccount(ctx, uow, userID, accountID); err != nil {
			return err
		}
		repo, err := uow.DCARepository()
		if err != nil {
			return err
		}
		return repo.CreatePortfolio(ctx, p)
	})
	if err != nil {
		s.logger.Error("CreateDCAPortfolio failed", "userID", userID, "error", err)
		return nil, err
	}
	s.logger.Info("CreateDCAPortfolio successful", "userID", userID, "portfolioID", p.ID)
	return p, nil
}

// UpdateDCA renames a portfolio or relinks it. Relinking moves the effect
// of every historical transaction to the new account without guarding.
func (s *Service) UpdateDCA(ctx context.Context, userID, id uuid.UUID, name string, accountID *uuid.UUID) (p *portfolio.DCAPortfolio, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.DCARepository()
		if err != nil {
			return err
		}
		if p, err = repo.GetPortfolio(ctx, userID, id); err != nil {
			return err
		}
		next, err := portfolio.NewDCAPortfolio(userID, name, accountID)
		if err != nil {
			return err
		}
		if !sameAccount(p.AccountID, accountID) {
			if err := checkAccount(ctx, uow, userID, accountID); err != nil {
				return err
			}
			txs, err := repo.ListTransactions(ctx, p.ID)
			if err != nil {
				return err
			}
			var old, moved []ledger.Effect
			for _, tx := range txs {
				old = append(old, tx.Effects(p.AccountID)...)
				moved = append(moved, tx.Effects(accountID)...)
			}
			accounts, err := uow.AccountRepository()
			if err != nil {
				return err
			}
			if err := ledger.Replace(ctx, accounts, old, moved, false); err != nil {
				return err
			}
		}
		p.Name, p.AccountID = next.Name, accountID
		p.UpdatedAt = time.Now().UTC()
		return repo.UpdatePortfolio(ctx, p)
	})
	if err != nil {
		s.logger.Error("UpdateDCAPortfolio failed", "userID", userID, "portfolioID", id, "error", err)
		return nil, err
	}
	return p, nil
}

// DeleteDCA reverts the effects of the portfolio on its account and removes
// it with its transactions and fees.
func (s *Service) DeleteDCA(ctx context.Context, userID, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.DCARepository()
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
		if err := fees.DeleteForDCA(ctx, id); err != nil {
			return err
		}
		if err := repo.DeleteTransactions(ctx, id); err != nil {
			return err
		}
		return repo.DeletePortfolio(ctx, id)
	})
	if err != nil {
		s.logger.Error("DeleteDCAPortfolio failed", "userID", userID, "portfolioID", id, "error", err)
	}
	return err
}

// DCAStats is the statistics view of one portfolio.
func (s *Service) DCAStats(ctx context.Context, userID, id uuid.UUID) (*portfolio.DCAStats, error) {
	repo, err := s.uow.DCARepository()
	if err != nil {
		return nil, err
	}
	if _, err := repo.GetPortfolio(ctx, userID, id); err != nil {
		return nil, err
	}
	stats, _, err := dcaStats(ctx, s.uow, id, s.btcPrice(ctx))
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Service) CreateDCATransaction(ctx context.Context, userID, portfolioID uuid.UUID, in DCAInput) (tx *portfolio.DCATransaction, err error) {
	logger := s.logger.With("userID", userID, "portfolioID", portfolioID)
	logger.Info("CreateDCATransaction started", "btc", in.BTCQuantity, "eur", in.EURPaid)
	tx, err = portfolio.NewDCATransaction(portfolioID, in.Date, in.Broker, in.Info, in.BTCQuantity, in.EURPaid)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		return RecordDCA(ctx, uow, userID, tx)
	})
	if err != nil {
		logger.Error("CreateDCATransaction failed", "error", err)
		return nil, err
	}
	logger.Info("CreateDCATransaction successful", "transactionID", tx.ID)
	return tx, nil
}

// RecordDCA stores a DCA transaction of a portfolio owned by the user and
// applies its guarded effect. It runs on the caller's unit of work.
func RecordDCA(ctx context.Context, uow repository.UnitOfWork, userID uuid.UUID, tx *portfolio.DCATransaction) error {
	repo, err := uow.DCARepository()
	if err != nil {
		return err
	}
	p, err := repo.GetPortfolio(ctx, userID, tx.PortfolioID)
	if err != nil {
		return err
	}
	if tx.IsSell() {
		held, err := NetBTC(ctx, uow, p.ID)
		if err != nil {
			return err
		}
		if held.Add(tx.BTCQuantity).LessThan(domain.DustThreshold.Neg()) {
			return domain.InsufficientHoldings("BTC", held, tx.BTCQuantity.Abs())
		}
	}
	accounts, err := uow.AccountRepository()
	if err != nil {
		return err
	}
	if err := ledger.Replace(ctx, accounts, nil, tx.Effects(p.AccountID), true); err != nil {
		return err
	}
	return repo.CreateTransaction(ctx, tx)
}

func (s *Service) UpdateDCATransaction(ctx context.Context, userID, id uuid.UUID, in DCAInput) (tx *portfolio.DCATransaction, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.DCARepository()
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
		old := tx.Effects(p.AccountID)
		oldQty := tx.BTCQuantity

		tx.Date = in.Date.UTC()
		tx.Broker = in.Broker
		tx.Info = in.Info
		tx.BTCQuantity = in.BTCQuantity
		tx.EURPaid = in.EURPaid
		if err := tx.Validate(); err != nil {
			return err
		}
		held, err := NetBTC(ctx, uow, p.ID)
		if err != nil {
			return err
		}
		if after := held.Sub(oldQty).Add(tx.BTCQuantity); after.LessThan(domain.DustThreshold.Neg()) {
			return domain.InsufficientHoldings("BTC", held.Sub(oldQty), tx.BTCQuantity.Neg())
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err := ledger.Replace(ctx, accounts, old, tx.Effects(p.AccountID), true); err != nil {
			return err
		}
		tx.UpdatedAt = time.Now().UTC()
		return repo.UpdateTransaction(ctx, tx)
	})
	if err != nil {
		s.logger.Error("UpdateDCATransaction failed", "userID", userID, "transactionID", id, "error", err)
		return nil, err
	}
	return tx, nil
}

// DeleteDCATransaction removes a transaction. Deleting a buy must not leave
// the portfolio holding a negative amount.
func (s *Service) DeleteDCATransaction(ctx context.Context, userID, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.DCARepository()
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
		if !tx.IsSell() {
			held, err := NetBTC(ctx, uow, p.ID)
			if err != nil {
				return err
			}
			if held.Sub(tx.BTCQuantity).LessThan(domain.DustThreshold.Neg()) {
				return domain.InsufficientHoldings("BTC", held, tx.BTCQuantity)
			}
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err := ledger.Replace(ctx, accounts, tx.Effects(p.AccountID), nil, false); err != nil {
			return err
		}
		return repo.DeleteTransaction(ctx, id)
	})
	if err != nil {
		s.logger.Error("DeleteDCATransaction failed", "userID", userID, "transactionID", id, "error", err)
	}
	return err
}

// NetBTC is the bitcoin currently held by a DCA portfolio: the sum of its
// transactions minus network fees.
func NetBTC(ctx context.Context, uow repository.UnitOfWork, portfolioID uuid.UUID) (decimal.Decimal, error) {
	repo, err := uow.DCARepository()
	if err != nil {
		return decimal.Zero, err
	}
	txs, err := repo.ListTransactions(ctx, portfolioID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.BTCQuantity)
	}
	fees, err := uow.FeeRepository()
	if err != nil {
		return decimal.Zero, err
	}
	fs, err := fees.ListForDCA(ctx, portfolioID)
	if err != nil {
		return decimal.Zero, err
	}
	feesBTC, _ := portfolio.FeeTotals(fs)
	return total.Sub(feesBTC), nil
}

// TotalBTC sums the net bitcoin of every DCA portfolio of the user.
func TotalBTC(ctx context.Context, uow repository.UnitOfWork, userID uuid.UUID) (decimal.Decimal, error) {
	repo, err := uow.DCARepository()
	if err != nil {
		return decimal.Zero, err
	}
	ps, err := repo.ListPortfolios(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range ps {
		net, err := NetBTC(ctx, uow, p.ID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(net)
	}
	return total, nil
}

func dcaStats(ctx context.Context, uow repository.UnitOfWork, portfolioID uuid.UUID, price decimal.NullDecimal) (portfolio.DCAStats, []*portfolio.DCATransaction, error) {
	repo, err := uow.DCARepository()
	if err != nil {
		return portfolio.DCAStats{}, nil, err
	}
	txs, err := repo.ListTransactions(ctx, portfolioID)
	if err != nil {
		return portfolio.DCAStats{}, nil, err
	}
	fees, err := uow.FeeRepository()
	if err != nil {
		return portfolio.DCAStats{}, nil, err
	}
	fs, err := fees.ListForDCA(ctx, portfolioID)
	if err != nil {
		return portfolio.DCAStats{}, nil, err
	}
	feesBTC, feeEvents := portfolio.FeeTotals(fs)
	return portfolio.ComputeDCAStats(txs, feesBTC, feeEvents, price), txs, nil
}
