package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serious-social/conviction/internal/domain"
)

func sampleStates() []domain.MarketState {
	return []domain.MarketState{
		{
			ClaimID:          "claim-dogs-are-better",
			Belief:           917_000,
			SupportWeight:    uint256.NewInt(950_400_000),
			OpposeWeight:     uint256.NewInt(86_400_000),
			SupportPrincipal: 11_000,
			OpposePrincipal:  1_000,
			SRPBalance:       55,
		},
		{
			ClaimID:          "claim-rain-tomorrow",
			Belief:           500_000,
			SupportWeight:    uint256.NewInt(1000),
			OpposeWeight:     uint256.NewInt(1000),
			SupportPrincipal: 500,
			OpposePrincipal:  500,
			SRPBalance:       3,
		},
	}
}

func TestNotify_EmptyStates(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)
	require.NoError(t, c.Notify(context.Background(), nil))
	assert.Contains(t, buf.String(), "no markets")
}

func TestNotify_CompactMode(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)
	require.NoError(t, c.Notify(context.Background(), sampleStates()))

	out := buf.String()
	assert.Contains(t, out, "2 markets")
	assert.Contains(t, out, "91.7%")
	assert.Contains(t, out, "srp:55")
}

func TestNotify_TableMode(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, true)
	require.NoError(t, c.Notify(context.Background(), sampleStates()))

	out := buf.String()
	assert.Contains(t, out, "claim-dogs-are-better")
	assert.Contains(t, out, "91.70%")
	assert.Contains(t, out, "50.00%")
	assert.Contains(t, out, "Signal Reward Pool")
}

func TestCompactName_Truncates(t *testing.T) {
	assert.Equal(t, "short", compactName("short", 12))
	assert.Len(t, []rune(compactName("a-very-long-claim-identifier", 12)), 12)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "999", formatAmount(999))
	assert.Equal(t, "12.5k", formatAmount(12_500))
	assert.Equal(t, "11.0M", formatAmount(11_000_000))
}
