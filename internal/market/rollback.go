package market

// rollback.go — snapshot/restore del ledger para la disciplina transaccional.
// La transferencia de custodia es el último efecto de cada operación; si
// falla, restore deja el ledger exactamente como estaba.

import "github.com/serious-social/conviction/internal/domain"

// ledgerSnapshot captura el estado mutable que una operación puede tocar:
// los dos pools, el SRP, los acumuladores, el tamaño del arena y (si aplica)
// una copia profunda de la posición existente que se va a mutar.
type ledgerSnapshot struct {
	support *domain.Pool
	oppose  *domain.Pool
	srp     uint64
	acc     domain.AccumulatorSnapshot

	nPositions     int
	firstStakeDone bool
	touched        *domain.Position
}

func (m *Market) snapshot(touched *domain.Position) ledgerSnapshot {
	s := ledgerSnapshot{
		support:        m.support.Clone(),
		oppose:         m.oppose.Clone(),
		srp:            m.srp,
		acc:            m.acc.Snapshot(),
		nPositions:     len(m.positions),
		firstStakeDone: m.firstStakeDone,
	}
	if touched != nil {
		s.touched = touched.Clone()
	}
	return s
}

func (m *Market) restore(s ledgerSnapshot) {
	m.support = s.support
	m.oppose = s.oppose
	m.srp = s.srp
	m.acc.A.Set(s.acc.A)
	m.acc.B.Set(s.acc.B)
	m.firstStakeDone = s.firstStakeDone

	// un commit revertido trunca el arena y el índice por owner
	for len(m.positions) > s.nPositions {
		last := m.positions[len(m.positions)-1]
		ids := m.byOwner[last.Owner]
		m.byOwner[last.Owner] = ids[:len(ids)-1]
		if len(m.byOwner[last.Owner]) == 0 {
			delete(m.byOwner, last.Owner)
		}
		m.positions = m.positions[:len(m.positions)-1]
	}

	if s.touched != nil {
		*m.positions[s.touched.ID-1] = *s.touched
	}
}
