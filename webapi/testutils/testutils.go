package testutils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	infraprovider "github.com/amirasaad/finanze/infra/provider"
	"github.com/amirasaad/finanze/pkg/app"
	"github.com/amirasaad/finanze/pkg/config"
	pkgtestutils "github.com/amirasaad/finanze/pkg/testutils"
	"github.com/amirasaad/finanze/webapi"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite runs the whole HTTP stack against a fresh in-memory sqlite
// database per test. Prices come from the static provider: 1 BTC is 50000
// EUR and 1 EUR is 1.08 USD.
type E2ETestSuite struct {
	suite.Suite
	App    *app.App
	Fiber  *fiber.App
	Cfg    *config.App
	UserID uuid.UUID
	Token  string
}

// TestConfig returns a configuration suited to handler tests.
func TestConfig() *config.App {
	return &config.App{
		Env:    "test",
		Server: &config.Server{CorsOrigins: "*"},
		Log:    &config.Log{},
		DB:     &config.DB{Driver: "sqlite"},
		Auth: &config.Auth{Jwt: &config.Jwt{
			Secret: "test-secret",
			Expiry: time.Hour,
		}},
		Cache: &config.Cache{Driver: "memory"},
		Price: &config.Price{
			Provider:     "static",
			StaticBtcEur: decimal.NewFromInt(50000),
			StaticEurUsd: decimal.RequireFromString("1.08"),
		},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Second},
		Scheduler: &config.Scheduler{},
		Import:    &config.Import{BatchSize: 2},
	}
}

func (s *E2ETestSuite) SetupTest() {
	s.Cfg = TestConfig()
	deps := &app.Deps{
		Uow:    pkgtestutils.NewTestUoW(s.T()),
		Prices: infraprovider.NewStatic(s.Cfg.Price, nil),
		Logger: pkgtestutils.NewTestLogger(),
	}
	s.App = app.New(deps, s.Cfg)
	s.Fiber = webapi.SetupApp(s.App)
	s.UserID = uuid.New()
	s.Token = s.TokenFor(s.UserID)
}

// TokenFor signs a token for the given user.
func (s *E2ETestSuite) TokenFor(userID uuid.UUID) string {
	token, err := s.App.AuthService.GenerateToken(userID, 0)
	s.Require().NoError(err)
	return token
}

// MakeRequest is a helper for making HTTP requests in tests
func (s *E2ETestSuite) MakeRequest(method, path, body, token string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Fiber.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

// Do sends an authenticated request, checks the status and decodes the
// envelope's data into out when out is not nil.
func (s *E2ETestSuite) Do(method, path, body string, wantStatus int, out any) {
	resp := s.MakeRequest(method, path, body, s.Token)
	defer resp.Body.Close() //nolint:errcheck
	if !s.Equal(wantStatus, resp.StatusCode, "%s %s", method, path) {
		var pd common.ProblemDetails
		_ = json.NewDecoder(resp.Body).Decode(&pd)
		s.T().Logf("problem: %+v", pd)
		return
	}
	if out == nil {
		return
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&envelope))
	s.Require().NoError(json.Unmarshal(envelope.Data, out))
}

// Problem sends an authenticated request expecting an error and returns the
// decoded problem details.
func (s *E2ETestSuite) Problem(method, path, body string, wantStatus int) common.ProblemDetails {
	resp := s.MakeRequest(method, path, body, s.Token)
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(wantStatus, resp.StatusCode, "%s %s", method, path)
	s.Equal("application/problem+json", resp.Header.Get("Content-Type"))
	var pd common.ProblemDetails
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&pd))
	return pd
}
