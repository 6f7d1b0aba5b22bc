package domain

// belief.go — curva de creencia: cuota de Support sobre el peso total.

import "github.com/holiman/uint256"

// BeliefScale es el fixed-point de la creencia: 0 = 0%, 1e6 = 100%.
const BeliefScale = 1_000_000

// BeliefMidpoint es el valor neutral cuando no hay peso en ningún lado.
const BeliefMidpoint = BeliefScale / 2

// Belief devuelve supportWeight / (supportWeight + opposeWeight) escalado a
// [0, BeliefScale]. Con peso total cero (sin stakes, o ambos lados retirados)
// devuelve el punto medio en lugar de dividir por cero.
func Belief(supportWeight, opposeWeight *uint256.Int) uint64 {
	total := new(uint256.Int).Add(supportWeight, opposeWeight)
	if total.IsZero() {
		return BeliefMidpoint
	}
	ratio := new(uint256.Int).Mul(supportWeight, uint256.NewInt(BeliefScale))
	ratio.Div(ratio, total)
	// ≤ BeliefScale por construcción, siempre cabe en uint64
	return ratio.Uint64()
}
