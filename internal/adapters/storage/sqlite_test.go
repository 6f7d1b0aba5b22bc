package storage

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serious-social/conviction/internal/domain"
)

func newTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestAppendAndEvents_RoundTrip(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, domain.Event{
		Kind: domain.EventStakeCommitted, ClaimID: "claim-a", PositionID: 1,
		Owner: "alice", Side: domain.SideSupport, Amount: 1000, Timestamp: 1700000000,
	}))
	require.NoError(t, j.Append(ctx, domain.Event{
		Kind: domain.EventSRPFunded, ClaimID: "claim-a", PositionID: 2,
		Owner: "bob", Side: domain.SideOppose, Amount: 5,
		Source: domain.SRPSourceFee, Timestamp: 1700000100,
	}))
	require.NoError(t, j.Append(ctx, domain.Event{
		Kind: domain.EventWithdrawn, ClaimID: "claim-b", PositionID: 1,
		Owner: "carol", Side: domain.SideSupport, Amount: 900, Fee: 100,
		Early: true, Timestamp: 1700000200,
	}))

	events, err := j.Events(ctx, "claim-a")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, domain.EventStakeCommitted, events[0].Kind)
	assert.Equal(t, "alice", events[0].Owner)
	assert.Equal(t, uint64(1000), events[0].Amount)

	assert.Equal(t, domain.EventSRPFunded, events[1].Kind)
	assert.Equal(t, domain.SideOppose, events[1].Side)
	assert.Equal(t, domain.SRPSourceFee, events[1].Source)

	other, err := j.Events(ctx, "claim-b")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.True(t, other[0].Early)
	assert.Equal(t, uint64(100), other[0].Fee)
}

func TestEvents_UnknownClaimIsEmpty(t *testing.T) {
	j := newTestJournal(t)
	events, err := j.Events(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSaveState_UpsertKeepsOneRowPerMarket(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	st := domain.MarketState{
		ClaimID:          "claim-a",
		Belief:           600_000,
		SupportWeight:    uint256.NewInt(86_400_000),
		OpposeWeight:     uint256.NewInt(43_200_000),
		SupportPrincipal: 1000,
		OpposePrincipal:  500,
		SRPBalance:       25,
		EvaluatedAt:      1700000000,
	}
	require.NoError(t, j.SaveState(ctx, st))

	st.Belief = 750_000
	st.SRPBalance = 40
	require.NoError(t, j.SaveState(ctx, st))

	states, err := j.ListStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, uint64(750_000), states[0].Belief)
	assert.Equal(t, uint64(40), states[0].SRPBalance)
	assert.Equal(t, uint64(86_400_000), states[0].SupportWeight.Uint64())
}

func TestListStates_OrderedByBeliefDesc(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	for claim, belief := range map[string]uint64{"low": 100_000, "high": 900_000, "mid": 500_000} {
		require.NoError(t, j.SaveState(ctx, domain.MarketState{
			ClaimID:       claim,
			Belief:        belief,
			SupportWeight: new(uint256.Int),
			OpposeWeight:  new(uint256.Int),
		}))
	}

	states, err := j.ListStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, "high", states[0].ClaimID)
	assert.Equal(t, "mid", states[1].ClaimID)
	assert.Equal(t, "low", states[2].ClaimID)
}

func TestSaveState_LargeWeightsSurviveRoundTrip(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	// peso > uint64: principal grande × segundos de varios años
	huge := new(uint256.Int).Mul(uint256.NewInt(^uint64(0)), uint256.NewInt(1000))
	require.NoError(t, j.SaveState(ctx, domain.MarketState{
		ClaimID:       "claim-a",
		SupportWeight: huge,
		OpposeWeight:  new(uint256.Int),
	}))

	states, err := j.ListStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, huge.Dec(), states[0].SupportWeight.Dec())
}
