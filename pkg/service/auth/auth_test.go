package auth_test

import (
	"testing"
	"time"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/amirasaad/finanze/pkg/service/auth"
	"github.com/amirasaad/finanze/pkg/testutils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(secret string) *auth.Service {
	return auth.NewService(&config.Jwt{Secret: secret, Expiry: time.Hour}, testutils.NewTestLogger())
}

func TestGenerateAndParseToken(t *testing.T) {
	svc := newService("secret")
	userID := uuid.New()

	signed, err := svc.GenerateToken(userID, 0)
	require.NoError(t, err)

	token, err := svc.ParseToken(signed)
	require.NoError(t, err)
	got, err := svc.GetCurrentUserID(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestParseToken_Rejects(t *testing.T) {
	svc := newService("secret")
	userID := uuid.New()

	fallback, err := svc.GenerateToken(userID, -time.Minute)
	require.NoError(t, err)
	// a non-positive ttl falls back to the configured expiry
	_, err = svc.ParseToken(fallback)
	require.NoError(t, err)

	other, err := newService("other").GenerateToken(userID, time.Hour)
	require.NoError(t, err)
	_, err = svc.ParseToken(other)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	stale := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := stale.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(signed)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.GenerateToken(uuid.Nil, time.Hour)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetCurrentUserID_BadClaims(t *testing.T) {
	svc := newService("secret")
	_, err := svc.GetCurrentUserID(nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "not-a-uuid"})
	_, err = svc.GetCurrentUserID(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	token = jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"})
	_, err = svc.GetCurrentUserID(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
