package market

// views.go — lecturas puras sobre el ledger. Ninguna muta estado.

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/serious-social/conviction/internal/domain"
)

// ClaimID devuelve el claim al que pertenece el mercado.
func (m *Market) ClaimID() string {
	return m.claimID
}

// Params devuelve la configuración inmutable del mercado.
func (m *Market) Params() domain.MarketParams {
	return m.params
}

// Author devuelve la dirección del autor del claim.
func (m *Market) Author() string {
	return m.author
}

// Belief devuelve la curva de creencia en [0, BeliefScale] evaluada ahora.
func (m *Market) Belief() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.nowFn()
	return domain.Belief(m.support.Weight(now), m.oppose.Weight(now))
}

// Weight devuelve la señal ponderada por tiempo de un lado evaluada ahora.
func (m *Market) Weight(side domain.Side) *uint256.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool(side).Weight(m.nowFn())
}

// Position devuelve una copia de la posición, o ErrPositionNotFound.
func (m *Market) Position(id uint64) (domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, err := m.position(id)
	if err != nil {
		return domain.Position{}, fmt.Errorf("market.Position: %w", err)
	}
	return *pos.Clone(), nil
}

// PendingRewards devuelve el reward reclamable de una posición: 0 antes de
// MinRewardDuration, 0 para siempre tras el retiro, y acotado por el cap
// de por vida en el resto de casos.
func (m *Market) PendingRewards(id uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, err := m.position(id)
	if err != nil {
		return 0, fmt.Errorf("market.PendingRewards: %w", err)
	}
	if pos.Withdrawn {
		return 0, nil
	}
	now := m.nowFn()
	if now < pos.DepositTimestamp+uint64(m.params.MinRewardDuration/time.Second) {
		return 0, nil
	}
	pending, err := m.acc.PendingSince(pos.Amount, pos.DepositTimestamp, pos.Snapshot)
	if err != nil {
		return 0, fmt.Errorf("market.PendingRewards: %w", err)
	}
	return min(pending, pos.RemainingRewardCap(m.params)), nil
}

// UserPositions devuelve los ids de posición de un owner, en orden de creación.
func (m *Market) UserPositions(owner string) []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.byOwner[owner]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// CurrentEntryFeeBps devuelve el fee que pagaría el próximo commit: 0 si el
// mercado aún no tiene su primer stake, graduado contra el principal total
// en el resto de casos.
func (m *Market) CurrentEntryFeeBps() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.firstStakeDone {
		return 0
	}
	return domain.EntryFeeBps(m.params, m.support.Principal+m.oppose.Principal)
}

// SRPBalance devuelve el balance actual del Signal Reward Pool.
func (m *Market) SRPBalance() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.srp
}

// State devuelve la vista agregada completa del mercado.
func (m *Market) State() domain.MarketState {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFn()
	ws := m.support.Weight(now)
	wo := m.oppose.Weight(now)
	return domain.MarketState{
		ClaimID:          m.claimID,
		Belief:           domain.Belief(ws, wo),
		SupportWeight:    ws,
		OpposeWeight:     wo,
		SupportPrincipal: m.support.Principal,
		OpposePrincipal:  m.oppose.Principal,
		SRPBalance:       m.srp,
		EvaluatedAt:      now,
	}
}
