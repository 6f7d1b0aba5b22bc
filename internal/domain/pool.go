package domain

// pool.go — ledger agregado por lado, señal ponderada por tiempo en O(1).
//
// weight(t) = t × principal − Σ(amount × depositTs), clampado a 0.
// La fórmula es exacta porque el peso es lineal en el tiempo transcurrido por
// unidad de stake: basta mantener el principal y la suma ponderada de
// timestamps de depósito, sin iterar posiciones históricas.

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Pool es el estado agregado de un lado del mercado.
type Pool struct {
	// Principal es la suma del stake neto actualmente activo en este lado.
	Principal uint64
	// WeightedTsSum es Σ(amount × depositTimestamp) de las posiciones
	// activas. Puede exceder uint64 (amount × unix time), de ahí uint256.
	WeightedTsSum *uint256.Int
}

// NewPool devuelve un pool vacío.
func NewPool() *Pool {
	return &Pool{WeightedTsSum: new(uint256.Int)}
}

// Stake registra un depósito neto amount en el timestamp ts.
func (p *Pool) Stake(amount, ts uint64) error {
	principal, err := CheckedAdd(p.Principal, amount)
	if err != nil {
		return fmt.Errorf("pool.Stake: %w", err)
	}
	p.Principal = principal
	p.WeightedTsSum.Add(p.WeightedTsSum, MulU256(amount, ts))
	return nil
}

// Unstake elimina la contribución de una posición (amount, depositTs).
func (p *Pool) Unstake(amount, depositTs uint64) error {
	if amount > p.Principal {
		return fmt.Errorf("pool.Unstake: amount %d > principal %d: %w", amount, p.Principal, ErrLedgerInvariant)
	}
	contrib := MulU256(amount, depositTs)
	if p.WeightedTsSum.Lt(contrib) {
		return fmt.Errorf("pool.Unstake: weighted sum underflow: %w", ErrLedgerInvariant)
	}
	p.Principal -= amount
	p.WeightedTsSum.Sub(p.WeightedTsSum, contrib)
	return nil
}

// Weight devuelve la señal ponderada por tiempo del lado en el instante t.
// Si t × principal < WeightedTsSum (posible solo por clock skew), clampa a 0
// en lugar de underflow.
func (p *Pool) Weight(t uint64) *uint256.Int {
	total := MulU256(p.Principal, t)
	if total.Lt(p.WeightedTsSum) {
		return new(uint256.Int)
	}
	return total.Sub(total, p.WeightedTsSum)
}

// Clone devuelve una copia independiente del pool.
func (p *Pool) Clone() *Pool {
	return &Pool{Principal: p.Principal, WeightedTsSum: new(uint256.Int).Set(p.WeightedTsSum)}
}
