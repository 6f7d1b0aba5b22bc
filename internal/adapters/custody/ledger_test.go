package custody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serious-social/conviction/internal/domain"
)

func TestLedger_MintAndBalance(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("alice", 1000))
	assert.Equal(t, uint64(1000), l.BalanceOf("alice"))
	assert.Equal(t, uint64(1000), l.TotalSupply())
}

func TestLedger_Transfer(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("alice", 1000))
	require.NoError(t, l.Transfer("alice", "bob", 400))

	assert.Equal(t, uint64(600), l.BalanceOf("alice"))
	assert.Equal(t, uint64(400), l.BalanceOf("bob"))
	assert.Equal(t, uint64(1000), l.TotalSupply(), "transferir no cambia el supply")
}

func TestLedger_TransferInsufficient(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("alice", 100))
	err := l.Transfer("alice", "bob", 200)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, uint64(100), l.BalanceOf("alice"))
}

func TestLedger_MintOverflow(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("alice", ^uint64(0)))
	assert.ErrorIs(t, l.Mint("bob", 1), domain.ErrArithmeticOverflow)
}

func TestBoundAccount_PullAndPush(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("alice", 1000))

	market := l.ForAccount("market:claim-1")
	require.NoError(t, market.Pull("alice", 600))
	assert.Equal(t, uint64(400), l.BalanceOf("alice"))
	assert.Equal(t, uint64(600), l.BalanceOf("market:claim-1"))

	require.NoError(t, market.Push("alice", 100))
	assert.Equal(t, uint64(500), l.BalanceOf("alice"))
	assert.Equal(t, uint64(500), market.BalanceOf("market:claim-1"))
}

func TestBoundAccount_PushBeyondHoldings(t *testing.T) {
	l := NewLedger()
	market := l.ForAccount("market:claim-1")
	assert.ErrorIs(t, market.Push("alice", 1), domain.ErrInsufficientBalance)
}
