package snapshot_test

import (
	"testing"

	domainsnapshot "github.com/amirasaad/finanze/pkg/domain/snapshot"
	"github.com/amirasaad/finanze/pkg/provider"
	"github.com/amirasaad/finanze/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type SnapshotTestSuite struct {
	testutils.E2ETestSuite
}

func TestSnapshotTestSuite(t *testing.T) {
	suite.Run(t, new(SnapshotTestSuite))
}

func (s *SnapshotTestSuite) TestBTCPrice() {
	var q provider.Quote
	s.Do("GET", "/api/prices/btc", "", fiber.StatusOK, &q)
	s.Equal("50000", q.BTCEUR.String())
	s.Equal("54000", q.BTCUSD.String())
	s.False(q.Stale)
}

func (s *SnapshotTestSuite) TestManualSnapshot() {
	var p struct {
		ID uuid.UUID `json:"id"`
	}
	s.Do("POST", "/api/dca-portfolios", `{"name":"Stack"}`, fiber.StatusCreated, &p)
	s.Do("POST", "/api/dca-portfolios/"+p.ID.String()+"/transactions",
		`{"date":"2024-01-10","btcQuantity":"0.01","eurPaid":"400"}`, fiber.StatusCreated, nil)

	var snap domainsnapshot.HoldingsSnapshot
	s.Do("POST", "/api/snapshots", "", fiber.StatusCreated, &snap)
	s.Equal("0.01", snap.TotalBTC.String())
	s.Equal("500", snap.TotalValueEUR.String())
	s.Equal("540", snap.TotalValueUSD.String())
	s.False(snap.IsAutomatic)

	var list []domainsnapshot.HoldingsSnapshot
	s.Do("GET", "/api/snapshots?limit=5", "", fiber.StatusOK, &list)
	s.Len(list, 1)

	s.Do("DELETE", "/api/snapshots/"+snap.ID.String(), "", fiber.StatusOK, nil)
	s.Do("GET", "/api/snapshots", "", fiber.StatusOK, &list)
	s.Empty(list)
	s.Problem("DELETE", "/api/snapshots/"+snap.ID.String(), "", fiber.StatusNotFound)
}
