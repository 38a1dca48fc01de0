package main

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/service/auth"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth() *auth.Service {
	return auth.NewService(&config.Jwt{Secret: "cli-secret", Expiry: time.Hour}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMintToken(t *testing.T) {
	color.NoColor = true
	svc := newAuth()
	userID := uuid.New()

	var out bytes.Buffer
	require.NoError(t, mintToken(svc, []string{userID.String(), "720h"}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "user_id: "+userID.String(), lines[0])

	token, err := svc.ParseToken(strings.TrimSpace(strings.TrimPrefix(lines[1], "token:")))
	require.NoError(t, err)
	got, err := svc.GetCurrentUserID(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestMintToken_NewUser(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	require.NoError(t, mintToken(newAuth(), nil, &out))
	assert.Contains(t, out.String(), "user_id: ")
}

func TestMintToken_InvalidArgs(t *testing.T) {
	svc := newAuth()
	assert.Error(t, mintToken(svc, []string{"nope"}, io.Discard))
	assert.Error(t, mintToken(svc, []string{uuid.NewString(), "-1h"}, io.Discard))
	assert.Error(t, mintToken(svc, []string{uuid.NewString(), "forever"}, io.Discard))
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run("deposit", nil, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Usage")
}
