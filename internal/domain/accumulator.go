package domain

// accumulator.go — distribución de rewards en O(1) con acumuladores duales.
//
// En cada inflow al SRP con peso total Wtot(t) > 0:
//
//	A += inflow × t × SCALE / Wtot(t)   // reward·tiempo por unidad de peso
//	B += inflow × SCALE / Wtot(t)       // reward por unidad de peso
//
// El peso individual de una posición en un checkpoint pasado es
// amount × (checkpointTs − depositTs); por linealidad, el pending de una
// posición entre dos snapshots es
//
//	amount × ((A − A0) − depositTs × (B − B0)) / SCALE
//
// sin reproducir el historial de inflows. Inflows con Wtot = 0 quedan en el
// SRP sin atribuir hasta que exista peso.

import (
	"fmt"

	"github.com/holiman/uint256"
)

// RewardScale es el multiplicador fixed-point de los acumuladores.
const RewardScale = 1_000_000_000_000_000_000 // 1e18

// RewardAccumulator son los dos acumuladores globales de un mercado.
type RewardAccumulator struct {
	A *uint256.Int
	B *uint256.Int
}

// AccumulatorSnapshot es la foto (A, B) que cada posición toma al crearse y
// refresca en cada claim.
type AccumulatorSnapshot struct {
	A *uint256.Int
	B *uint256.Int
}

// NewRewardAccumulator devuelve acumuladores a cero.
func NewRewardAccumulator() *RewardAccumulator {
	return &RewardAccumulator{A: new(uint256.Int), B: new(uint256.Int)}
}

// Fund atribuye un inflow al peso total wtot en el instante t. Devuelve false
// si wtot es cero: el inflow queda en el SRP sin atribuir.
func (r *RewardAccumulator) Fund(inflow, t uint64, wtot *uint256.Int) bool {
	if wtot.IsZero() || inflow == 0 {
		return false
	}
	scaled := MulU256(inflow, RewardScale)

	dA := new(uint256.Int).Mul(scaled, uint256.NewInt(t))
	dA.Div(dA, wtot)
	r.A.Add(r.A, dA)

	dB := new(uint256.Int).Div(scaled, wtot)
	r.B.Add(r.B, dB)
	return true
}

// Snapshot devuelve una copia independiente de (A, B).
func (r *RewardAccumulator) Snapshot() AccumulatorSnapshot {
	return AccumulatorSnapshot{
		A: new(uint256.Int).Set(r.A),
		B: new(uint256.Int).Set(r.B),
	}
}

// PendingSince calcula el reward devengado por una posición (amount,
// depositTs) desde el snapshot snap. Clampa a 0 si el redondeo entero dejara
// el término negativo.
func (r *RewardAccumulator) PendingSince(amount, depositTs uint64, snap AccumulatorSnapshot) (uint64, error) {
	dA := new(uint256.Int).Sub(r.A, snap.A)
	dB := new(uint256.Int).Sub(r.B, snap.B)

	tsTerm := dB.Mul(dB, uint256.NewInt(depositTs))
	if dA.Lt(tsTerm) {
		return 0, nil
	}
	dA.Sub(dA, tsTerm)

	pending := dA.Mul(dA, uint256.NewInt(amount))
	pending.Div(pending, uint256.NewInt(RewardScale))

	out, err := ToU64(pending)
	if err != nil {
		return 0, fmt.Errorf("accumulator.PendingSince: %w", err)
	}
	return out, nil
}
