package domain

// position.go — registro por stake. Una posición se crea con un commit, solo
// la mutan withdraw/claim de la misma posición, y queda inerte para siempre
// con withdrawn = true.

// PositionNone es el id centinela "no existe". Los ids reales empiezan en 1.
const PositionNone = uint64(0)

// Position es el registro de un stake individual.
type Position struct {
	ID    uint64
	Owner string
	Side  Side
	// Amount es el principal neto tras deducir el fee de entrada.
	Amount uint64
	// FeesPaid es el fee o premium deducido al crear. 0 solo para el primer
	// stake del mercado (exento por construcción).
	FeesPaid         uint64
	DepositTimestamp uint64
	UnlockTimestamp  uint64
	// ClaimedRewards es acumulativo y monótono no decreciente.
	ClaimedRewards uint64
	Withdrawn      bool
	// Snapshot de acumuladores: tomado al crear, refrescado en cada claim.
	Snapshot AccumulatorSnapshot
}

// Unlocked indica si el lock period ya venció en el instante t.
func (p *Position) Unlocked(t uint64) bool {
	return t >= p.UnlockTimestamp
}

// RewardCapBase devuelve la base del cap de rewards de por vida: los fees
// pagados, o el principal si la posición fue exenta de fee (primer stake).
func (p *Position) RewardCapBase() uint64 {
	if p.FeesPaid > 0 {
		return p.FeesPaid
	}
	return p.Amount
}

// RewardCap devuelve el cap de rewards de por vida según los params.
func (p *Position) RewardCap(params MarketParams) uint64 {
	return BpsOf(p.RewardCapBase(), params.MaxUserRewardBps)
}

// RemainingRewardCap devuelve cuánto cap queda sin consumir.
func (p *Position) RemainingRewardCap(params MarketParams) uint64 {
	cap := p.RewardCap(params)
	if p.ClaimedRewards >= cap {
		return 0
	}
	return cap - p.ClaimedRewards
}

// Clone devuelve una copia profunda para el rollback transaccional.
func (p *Position) Clone() *Position {
	cp := *p
	cp.Snapshot = AccumulatorSnapshot{
		A: p.Snapshot.A.Clone(),
		B: p.Snapshot.B.Clone(),
	}
	return &cp
}
