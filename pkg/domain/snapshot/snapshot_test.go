package snapshot

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewAndRevalue(t *testing.T) {
	at := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	s := New(uuid.New(), at,
		decimal.RequireFromString("0.5"),
		decimal.RequireFromString("64000"),
		decimal.RequireFromString("59259.26"),
		decimal.RequireFromString("1.08"),
		true)

	assert.True(t, s.TotalValueUSD.Equal(decimal.NewFromInt(32000)))
	assert.True(t, s.TotalValueEUR.Equal(decimal.RequireFromString("29629.63")))
	assert.True(t, s.SameDay(at.Add(-22*time.Hour)))
	assert.False(t, s.SameDay(at.Add(2*time.Hour)))

	s.Revalue(decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.NewFromInt(90), decimal.RequireFromString("1.11"))
	assert.True(t, s.TotalValueEUR.Equal(decimal.NewFromInt(90)))
}
