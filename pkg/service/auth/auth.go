// Package auth issues and reads the bearer tokens that identify a user.
// Users are provisioned out of band; tokens carry the user id only.
package auth

import (
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Service signs and parses tokens.
type Service struct {
	cfg    *config.Jwt
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(cfg *config.Jwt, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// GenerateToken signs an HS256 token for the user valid for ttl, or for the
// configured expiry when ttl is zero.
func (s *Service) GenerateToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	if userID == uuid.Nil {
		return "", domain.ErrUnauthorized
	}
	if ttl <= 0 {
		ttl = s.cfg.Expiry
	}
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = userID.String()
	claims["exp"] = time.Now().Add(ttl).Unix()
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Error("GenerateToken failed", "userID", userID, "error", err)
		return "", err
	}
	return signed, nil
}

// GetCurrentUserID extracts the user id from a validated token.
func (s *Service) GetCurrentUserID(token *jwt.Token) (uuid.UUID, error) {
	if token == nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Join(domain.ErrUnauthorized, err)
	}
	return userID, nil
}

// ParseToken validates a signed token string.
func (s *Service) ParseToken(signed string) (*jwt.Token, error) {
	token, err := jwt.Parse(signed, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Join(domain.ErrUnauthorized, err)
	}
	return token, nil
}
