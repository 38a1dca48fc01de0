package snapshot_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/provider"
	portfoliosvc "github.com/amirasaad/finanze/pkg/service/portfolio"
	snapshotsvc "github.com/amirasaad/finanze/pkg/service/snapshot"
	"github.com/amirasaad/finanze/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quote() *provider.Quote {
	return &provider.Quote{
		BTCUSD:    decimal.RequireFromString("54000"),
		BTCEUR:    decimal.RequireFromString("50000"),
		EURUSD:    decimal.RequireFromString("1.08"),
		FetchedAt: time.Now(),
		Source:    "mock",
	}
}

func setup(t *testing.T) (*snapshotsvc.Service, *testutils.MockPrice, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	uow := testutils.NewTestUoW(t)
	logger := testutils.NewTestLogger()
	prices := &testutils.MockPrice{}
	portfolios := portfoliosvc.NewService(uow, prices, logger)

	userID := uuid.New()
	p, err := portfolios.CreateDCA(ctx, userID, "Piano", nil)
	require.NoError(t, err)
	_, err = portfolios.CreateDCATransaction(ctx, userID, p.ID, portfoliosvc.DCAInput{
		Date:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Broker:      "Relai",
		BTCQuantity: decimal.RequireFromString("0.01"),
		EURPaid:     decimal.RequireFromString("400"),
	})
	require.NoError(t, err)
	return snapshotsvc.NewService(uow, prices, logger), prices, userID
}

func TestCaptureAll_OnePerDay(t *testing.T) {
	svc, prices, userID := setup(t)
	ctx := context.Background()
	prices.On("BTCQuote", mock.Anything).Return(quote(), nil)

	res, err := svc.CaptureAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Users)
	assert.Equal(t, 1, res.Created)

	res, err = svc.CaptureAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Updated)

	snaps, err := svc.List(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].IsAutomatic)
	assert.True(t, snaps[0].TotalBTC.Equal(decimal.RequireFromString("0.01")))
	assert.True(t, snaps[0].TotalValueEUR.Equal(decimal.RequireFromString("500")))
	assert.True(t, snaps[0].TotalValueUSD.Equal(decimal.RequireFromString("540")))
}

func TestCaptureAutomatic_NextDayCreates(t *testing.T) {
	svc, _, userID := setup(t)
	ctx := context.Background()
	day := time.Date(2024, 2, 1, 23, 0, 0, 0, time.UTC)

	created, err := svc.CaptureAutomatic(ctx, userID, quote(), day)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.CaptureAutomatic(ctx, userID, quote(), day.Add(30*time.Minute))
	require.NoError(t, err)
	assert.False(t, created, "same UTC day updates in place")
	created, err = svc.CaptureAutomatic(ctx, userID, quote(), day.Add(90*time.Minute))
	require.NoError(t, err)
	assert.True(t, created, "a new UTC day gets its own snapshot")

	snaps, err := svc.List(ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}

func TestCreateManualAndDelete(t *testing.T) {
	svc, prices, userID := setup(t)
	ctx := context.Background()
	prices.On("BTCQuote", mock.Anything).Return(quote(), nil)

	snap, err := svc.Create(ctx, userID)
	require.NoError(t, err)
	assert.False(t, snap.IsAutomatic)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New(), snap.ID), domain.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, userID, snap.ID))
	snaps, err := svc.List(ctx, userID, 0)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestCaptureAll_PriceUnavailable(t *testing.T) {
	svc, prices, userID := setup(t)
	ctx := context.Background()
	upstream := errors.New("upstream down")
	prices.On("BTCQuote", mock.Anything).Return(nil, upstream)

	_, err := svc.CaptureAll(ctx)
	assert.ErrorIs(t, err, upstream)
	_, err = svc.Create(ctx, userID)
	assert.ErrorIs(t, err, upstream)
}

func TestDelete_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	svc := snapshotsvc.NewService(testutils.NewTestUoW(t), &testutils.MockPrice{}, slog.New(slog.NewTextHandler(&buf, nil)))

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, buf.String(), "DeleteSnapshot failed")
}
