package common_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorToStatusCode(t *testing.T) {
	testCases := []struct {
		desc string
		err  error
		want int
	}{
		{"nil", nil, fiber.StatusBadRequest},
		{"not found", domain.NotFound("conto"), fiber.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", domain.ErrNotFound), fiber.StatusNotFound},
		{"unauthorized", domain.ErrUnauthorized, fiber.StatusUnauthorized},
		{"validation", domain.Invalid("x"), fiber.StatusBadRequest},
		{"conflict", domain.Conflict("x"), fiber.StatusBadRequest},
		{"insufficient funds", domain.ErrInsufficientFunds, fiber.StatusBadRequest},
		{"insufficient holdings", domain.ErrInsufficientHoldings, fiber.StatusBadRequest},
		{"invalid state", domain.ErrInvalidState, fiber.StatusBadRequest},
		{"fiber error", fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.want, common.ErrorToStatusCode(tc.err))
		})
	}
}

func problem(t *testing.T, handler fiber.Handler, method, body string) (int, common.ProblemDetails) {
	t.Helper()
	app := fiber.New()
	app.Add(method, "/p", handler)
	req := httptest.NewRequest(method, "/p", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	var pd common.ProblemDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
	return resp.StatusCode, pd
}

func TestProblemDetailsJSON_BusinessDetail(t *testing.T) {
	status, pd := problem(t, func(c *fiber.Ctx) error {
		return common.ProblemDetailsJSON(c, "Saldo", domain.InsufficientFunds("Banca", decimal.NewFromInt(10), decimal.NewFromInt(25)))
	}, fiber.MethodPost, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, fiber.StatusBadRequest, pd.Status)
	assert.Contains(t, pd.Detail, "Banca")
	errs, ok := pd.Errors.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "15", errs["deficit"])
}

func TestProblemDetailsJSON_HidesInternalErrors(t *testing.T) {
	status, pd := problem(t, func(c *fiber.Ctx) error {
		return common.ProblemDetailsJSON(c, "Impossibile", errors.New("pq: connection refused"))
	}, fiber.MethodGet, "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Errore interno del server", pd.Title)
	assert.Empty(t, pd.Detail)
}

type bindInput struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"oneof=a b"`
}

func TestBindAndValidate(t *testing.T) {
	handler := func(c *fiber.Ctx) error {
		in, err := common.BindAndValidate[bindInput](c)
		if in == nil {
			return err
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "ok", in)
	}

	status, pd := problem(t, handler, fiber.MethodPost, `{"type":"c"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"Name": "required", "Type": "oneof"}, pd.Errors)

	status, _ = problem(t, handler, fiber.MethodPost, `{"name":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestParseDate(t *testing.T) {
	d, err := common.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())

	d, err = common.ParseDate("2024-02-29T10:00:00+01:00")
	require.NoError(t, err)
	assert.Equal(t, 9, d.Hour())

	_, err = common.ParseDate("29/02/2024")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOptionalUUID(t *testing.T) {
	id, err := common.OptionalUUID("")
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = common.OptionalUUID("nope")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
