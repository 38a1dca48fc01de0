package account

import (
	"context"

	"github.com/amirasaad/finanze/pkg/domain/ledger"
	"github.com/amirasaad/finanze/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reconciliation compares the stored balance with the one recomputed from
// every record that moves the account.
type Reconciliation struct {
	AccountID uuid.UUID       `json:"accountId"`
	Stored    decimal.Decimal `json:"stored"`
	Computed  decimal.Decimal `json:"computed"`
	Drift     decimal.Decimal `json:"drift"`
	Fixed     bool            `json:"fixed"`
}

// Reconcile recomputes the account balance from its opening balance and
// the ledger effects of transactions, transfers and linked portfolio
// operations. With fix set and a non-zero drift the computed balance is
// stored.
func (s *Service) Reconcile(ctx context.Context, userID, id uuid.UUID, fix bool) (r *Reconciliation, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := accounts.Get(ctx, userID, id)
		if err != nil {
			return err
		}
		effects, err := accountEffects(ctx, uow, userID, id)
		if err != nil {
			return err
		}

		computed := a.OpeningBalance
		for _, e := range effects {
			if e.AccountID == id {
				computed = computed.Add(e.Delta)
			}
		}
		r = &Reconciliation{
			AccountID: id,
			Stored:    a.Balance,
			Computed:  computed,
			Drift:     a.Balance.Sub(computed),
		}
		if fix && !r.Drift.IsZero() {
			if err := accounts.SetBalance(ctx, id, computed); err != nil {
				return err
			}
			r.Fixed = true
			s.logger.Warn("Account balance drift fixed",
				"accountID", id, "stored", r.Stored, "computed", r.Computed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// accountEffects collects every ledger effect that may touch the account.
func accountEffects(ctx context.Context, uow repository.UnitOfWork, userID, id uuid.UUID) ([]ledger.Effect, error) {
	var effects []ledger.Effect

	transactions, err := uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	txs, err := transactions.ListByAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		effects = append(effects, tx.Effects()...)
	}

	transfers, err := uow.TransferRepository()
	if err != nil {
		return nil, err
	}
	trs, err := transfers.ListByAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, t := range trs {
		effects = append(effects, t.Effects()...)
	}

	dca, err := uow.DCARepository()
	if err != nil {
		return nil, err
	}
	dcaPortfolios, err := dca.ListPortfolios(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range dcaPortfolios {
		if p.AccountID == nil || *p.AccountID != id {
			continue
		}
		ptxs, err := dca.ListTransactions(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for _, tx := range ptxs {
			effects = append(effects, tx.Effects(p.AccountID)...)
		}
	}

	crypto, err := uow.CryptoRepository()
	if err != nil {
		return nil, err
	}
	cryptoPortfolios, err := crypto.ListPortfolios(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range cryptoPortfolios {
		if p.AccountID == nil || *p.AccountID != id {
			continue
		}
		ptxs, err := crypto.ListTransactions(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for _, tx := range ptxs {
			effects = append(effects, tx.Effects(p.AccountID)...)
		}
	}
	return effects, nil
}
