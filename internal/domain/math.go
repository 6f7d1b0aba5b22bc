package domain

// math.go — aritmética checked para cantidades del ledger.
//
// Todas las cantidades externas son uint64 (unidades base del token de
// custodia). Los productos intermedios (amount × timestamp, amount × bps,
// acumuladores a SCALE) se calculan en 256 bits con holiman/uint256: un
// producto de dos uint64 nunca desborda 256 bits, y cualquier resultado que
// no quepa de vuelta en uint64 aborta la operación con ErrArithmeticOverflow
// en lugar de envolver en silencio.

import (
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"
)

// CheckedAdd suma dos uint64 y falla en overflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("domain.CheckedAdd: %d + %d: %w", a, b, ErrArithmeticOverflow)
	}
	return sum, nil
}

// CheckedSub resta b de a y falla en underflow.
func CheckedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, fmt.Errorf("domain.CheckedSub: %d - %d: %w", a, b, ErrArithmeticOverflow)
	}
	return a - b, nil
}

// BpsOf devuelve amount × bps / 10000 con producto intermedio de 128 bits.
// El resultado siempre cabe en uint64 porque bps ≤ 10000.
func BpsOf(amount, bps uint64) uint64 {
	hi, lo := bits.Mul64(amount, bps)
	if hi == 0 {
		return lo / BpsDenominator
	}
	quo, _ := bits.Div64(hi, lo, BpsDenominator)
	return quo
}

// MulU256 devuelve a × b como uint256 (nunca desborda).
func MulU256(a, b uint64) *uint256.Int {
	out := new(uint256.Int)
	out.Mul(uint256.NewInt(a), uint256.NewInt(b))
	return out
}

// ToU64 convierte un uint256 a uint64, fallando si no cabe.
func ToU64(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, fmt.Errorf("domain.ToU64: %s: %w", v.Dec(), ErrArithmeticOverflow)
	}
	return v.Uint64(), nil
}
