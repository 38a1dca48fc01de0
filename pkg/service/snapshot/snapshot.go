// Package snapshot provides point-in-time valuations of the user's bitcoin
// holdings, taken on demand or by the scheduler.
package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/domain/snapshot"
	"github.com/amirasaad/finanze/pkg/provider"
	"github.com/amirasaad/finanze/pkg/repository"
	portfoliosvc "github.com/amirasaad/finanze/pkg/service/portfolio"
	"github.com/google/uuid"
)

// Service provides snapshot operations.
type Service struct {
	uow    repository.UnitOfWork
	prices provider.Price
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(uow repository.UnitOfWork, prices provider.Price, logger *slog.Logger) *Service {
	return &Service{uow: uow, prices: prices, logger: logger}
}

// CaptureResult reports a scheduled run over every user.
type CaptureResult struct {
	Users   int
	Created int
	Updated int
	Failed  int
}

// Quote returns the current BTC quote.
func (s *Service) Quote(ctx context.Context) (*provider.Quote, error) {
	return s.prices.BTCQuote(ctx)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit int) ([]*snapshot.HoldingsSnapshot, error) {
	repo, err := s.uow.SnapshotRepository()
	if err != nil {
		return nil, err
	}
	return repo.List(ctx, userID, limit)
}

// Create values the user's DCA bitcoin at the current quote.
func (s *Service) Create(ctx context.Context, userID uuid.UUID) (snap *snapshot.HoldingsSnapshot, err error) {
	q, err := s.prices.BTCQuote(ctx)
	if err != nil {
		s.logger.Error("CreateSnapshot failed: price unavailable", "userID", userID, "error", err)
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		total, err := portfoliosvc.TotalBTC(ctx, uow, userID)
		if err != nil {
			return err
		}
		snap = snapshot.New(userID, time.Now(), total, q.BTCUSD, q.BTCEUR, q.EURUSD, false)
		repo, err := uow.SnapshotRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, snap)
	})
	if err != nil {
		s.logger.Error("CreateSnapshot failed", "userID", userID, "error", err)
		return nil, err
	}
	s.logger.Info("CreateSnapshot successful", "userID", userID, "totalBTC", snap.TotalBTC)
	return snap, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.SnapshotRepository()
		if err != nil {
			return err
		}
		if _, err := repo.Get(ctx, userID, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("DeleteSnapshot failed", "userID", userID, "snapshotID", id, "error", err)
		return err
	}
	s.logger.Info("DeleteSnapshot successful", "userID", userID, "snapshotID", id)
	return nil
}

// CaptureAutomatic stores the automatic snapshot of the day for one user,
// updating it in place when one was already taken. It reports whether a
// new row was created.
func (s *Service) CaptureAutomatic(ctx context.Context, userID uuid.UUID, q *provider.Quote, at time.Time) (created bool, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		total, err := portfoliosvc.TotalBTC(ctx, uow, userID)
		if err != nil {
			return err
		}
		repo, err := uow.SnapshotRepository()
		if err != nil {
			return err
		}
		existing, err := repo.FindAutomatic(ctx, userID, at)
		switch {
		case err == nil:
			existing.Date = at.UTC()
			existing.Revalue(total, q.BTCUSD, q.BTCEUR, q.EURUSD)
			return repo.Update(ctx, existing)
		case errors.Is(err, domain.ErrNotFound):
			created = true
			return repo.Create(ctx, snapshot.New(userID, at, total, q.BTCUSD, q.BTCEUR, q.EURUSD, true))
		default:
			return err
		}
	})
	return created, err
}

// CaptureAll takes the automatic snapshot of every user owning a DCA
// portfolio. A failure for one user does not stop the others.
func (s *Service) CaptureAll(ctx context.Context) (*CaptureResult, error) {
	q, err := s.prices.BTCQuote(ctx)
	if err != nil {
		return nil, err
	}
	if q.Stale {
		s.logger.Warn("Capturing snapshots with a stale quote", "fetchedAt", q.FetchedAt)
	}
	dca, err := s.uow.DCARepository()
	if err != nil {
		return nil, err
	}
	owners, err := dca.ListOwners(ctx)
	if err != nil {
		return nil, err
	}
	res := &CaptureResult{Users: len(owners)}
	now := time.Now().UTC()
	for _, userID := range owners {
		created, err := s.CaptureAutomatic(ctx, userID, q, now)
		switch {
		case err != nil:
			res.Failed++
			s.logger.Error("Automatic snapshot failed", "userID", userID, "error", err)
		case created:
			res.Created++
		default:
			res.Updated++
		}
	}
	s.logger.Info("Automatic snapshots captured",
		"users", res.Users, "created", res.Created, "updated", res.Updated, "failed", res.Failed)
	return res, nil
}
