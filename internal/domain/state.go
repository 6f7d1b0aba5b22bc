package domain

import "github.com/holiman/uint256"

// MarketState es la vista agregada de un mercado en un instante dado.
type MarketState struct {
	ClaimID string
	// Belief en escala [0, BeliefScale].
	Belief uint64
	// Pesos ponderados por tiempo de cada lado. uint256 porque
	// principal × segundos excede uint64 en mercados grandes.
	SupportWeight    *uint256.Int
	OpposeWeight     *uint256.Int
	SupportPrincipal uint64
	OpposePrincipal  uint64
	SRPBalance       uint64
	// EvaluatedAt es el timestamp del ledger usado para la evaluación.
	EvaluatedAt uint64
}

// TotalPrincipal devuelve el principal combinado de ambos lados.
func (s MarketState) TotalPrincipal() uint64 {
	return s.SupportPrincipal + s.OpposePrincipal
}

// BeliefPercent devuelve la creencia como porcentaje flotante para display.
func (s MarketState) BeliefPercent() float64 {
	return float64(s.Belief) * 100 / BeliefScale
}
