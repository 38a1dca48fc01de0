// Package common holds the response envelope, RFC 9457 problem details and
// request helpers shared by every HTTP handler.
package common

import (
	"errors"
	"strconv"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

// UserIDResolver extracts the caller's id from a validated token.
type UserIDResolver interface {
	GetCurrentUserID(token *jwt.Token) (uuid.UUID, error)
}

const problemJSON = "application/problem+json"

var validate = validator.New()

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ProblemDetailsJSON writes an RFC 9457 problem response. The status is
// derived from err unless an int is passed in extra; a string in extra
// overrides the detail. A BusinessError's structured detail is reported in
// errors.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, extra ...any) error {
	status := ErrorToStatusCode(err)
	pd := ProblemDetails{Type: "about:blank", Title: title}
	if err != nil {
		pd.Detail = err.Error()
		var be *domain.BusinessError
		if errors.As(err, &be) && len(be.Detail) > 0 {
			pd.Errors = be.Detail
		}
	}
	for _, e := range extra {
		switch v := e.(type) {
		case int:
			status = v
		case string:
			pd.Detail = v
		}
	}
	if status == fiber.StatusInternalServerError {
		// unhandled errors never leak their text
		pd.Title = "Errore interno del server"
		pd.Detail = ""
		pd.Errors = nil
	}
	pd.Status = status
	pd.Instance = c.OriginalURL()
	return c.Status(status).JSON(pd, problemJSON)
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	var fe *fiber.Error
	switch {
	case err == nil:
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientHoldings),
		errors.Is(err, domain.ErrInvalidState):
		return fiber.StatusBadRequest
	case errors.As(err, &fe):
		return fe.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it using go-playground/validator.
// Returns a pointer to the struct (populated), or writes an error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Richiesta non valida", nil, err.Error(), fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make(map[string]string, len(ve))
			for _, fe := range ve {
				fields[fe.Field()] = fe.Tag()
			}
			return nil, c.Status(fiber.StatusBadRequest).JSON(ProblemDetails{
				Type:     "about:blank",
				Title:    "Validazione fallita",
				Status:   fiber.StatusBadRequest,
				Detail:   "dati non validi",
				Instance: c.OriginalURL(),
				Errors:   fields,
			}, problemJSON)
		}
		return nil, ProblemDetailsJSON(c, "Validazione fallita", nil, err.Error(), fiber.StatusBadRequest)
	}
	return &input, nil
}

// CurrentUserID resolves the authenticated user from the token stored by
// the JWT middleware.
func CurrentUserID(c *fiber.Ctx, auth UserIDResolver) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, &domain.BusinessError{Err: domain.ErrUnauthorized, Message: "contesto utente mancante"}
	}
	userID, err := auth.GetCurrentUserID(token)
	if err != nil {
		log.Errorf("Failed to parse user ID from token: %v", err)
		return uuid.Nil, err
	}
	return userID, nil
}

// ParamID parses a UUID route parameter.
func ParamID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, domain.Invalid("%s deve essere un UUID valido", name)
	}
	return id, nil
}

// OptionalUUID parses an optional query or body id.
func OptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, domain.Invalid("id non valido: %q", s)
	}
	return &id, nil
}

// ParseDate reads an ISO date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, domain.Invalid("data non valida: %q", s)
	}
	return t.UTC(), nil
}

// QueryInt reads a non-negative integer query parameter.
func QueryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.Invalid("%s deve essere un intero non negativo", key)
	}
	return n, nil
}
