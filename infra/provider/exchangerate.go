package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/shopspring/decimal"
)

// ExchangeRateAPI implements provider.FX on the open.er-api.com v6
// "latest" endpoint, which needs no key.
type ExchangeRateAPI struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type latestResponse struct {
	Result    string                     `json:"result"`
	BaseCode  string                     `json:"base_code"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	ErrorType string                     `json:"error-type,omitempty"`
}

// NewExchangeRateAPI creates an FX client from the price configuration.
func NewExchangeRateAPI(cfg *config.Price, logger *slog.Logger) *ExchangeRateAPI {
	return &ExchangeRateAPI{
		baseURL:    strings.TrimRight(cfg.FxURL, "/"),
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		logger:     logger,
	}
}

func (p *ExchangeRateAPI) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", p.baseURL, from), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode response: %w", err)
	}
	if apiResp.Result != "success" {
		return decimal.Zero, fmt.Errorf("API returned result=%s error=%s", apiResp.Result, apiResp.ErrorType)
	}

	r, ok := apiResp.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("currency %s not found in response", to)
	}
	p.logger.Debug("Fetched exchange rate", "from", from, "to", to, "rate", r)
	return r, nil
}
