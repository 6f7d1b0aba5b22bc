package domain

// events.go — eventos de observabilidad. No afectan a la corrección: el
// ledger es la fuente de verdad, los eventos son el journal.

import "time"

// EventKind identifica el tipo de evento.
type EventKind string

const (
	EventStakeCommitted EventKind = "stake_committed"
	EventWithdrawn      EventKind = "withdrawn"
	EventRewardClaimed  EventKind = "reward_claimed"
	EventSRPFunded      EventKind = "srp_funded"
)

// SRPSource etiqueta el origen de un inflow al SRP.
type SRPSource string

const (
	SRPSourceFee     SRPSource = "fee"
	SRPSourcePremium SRPSource = "premium"
	SRPSourcePenalty SRPSource = "penalty"
)

// Event es un registro plano de algo que pasó en un mercado.
type Event struct {
	Kind       EventKind
	ClaimID    string
	PositionID uint64
	Owner      string
	Side       Side
	// Amount es el significado principal del evento: principal neto en un
	// commit, principal devuelto en un withdraw, reward en un claim,
	// inflow admitido en un srp_funded.
	Amount uint64
	// Fee es el fee/premium deducido (commit) o la penalización (withdraw).
	Fee uint64
	// Early distingue el retiro anticipado del normal.
	Early bool
	// Source etiqueta el origen en un srp_funded.
	Source     SRPSource
	Timestamp  uint64
	RecordedAt time.Time
}
