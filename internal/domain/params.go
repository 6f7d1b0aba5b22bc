package domain

import (
	"fmt"
	"time"
)

// BpsDenominator es el denominador de basis points (10000 bps = 100%).
const BpsDenominator = 10_000

// MarketParams es la configuración inmutable de un mercado, fijada al crearlo.
// El registry mantiene una plantilla default mutable; un mercado existente
// nunca cambia sus params.
type MarketParams struct {
	// LockPeriod es cuánto queda bloqueado el principal tras el commit.
	LockPeriod time.Duration
	// MinRewardDuration es el tiempo mínimo desde el depósito antes de
	// poder reclamar rewards explícitamente.
	MinRewardDuration time.Duration
	// MaxSRPBps limita el SRP como fracción del principal total del mercado.
	MaxSRPBps uint64
	// MaxUserRewardBps limita el reward de por vida de una posición como
	// múltiplo de sus fees pagados (o de su principal si no pagó fees).
	MaxUserRewardBps uint64
	// EntryFeeBaseBps, EntryFeeMaxBps y EntryFeeScale definen el fee
	// graduado de entrada tardía: min(base + principal/scale, max).
	EntryFeeBaseBps uint64
	EntryFeeMaxBps  uint64
	EntryFeeScale   uint64
	// AuthorPremiumBps es el fee plano del stake inicial del autor.
	AuthorPremiumBps uint64
	// EarlyWithdrawPenaltyBps es la penalización por retiro anticipado.
	// 0 deshabilita el retiro anticipado por completo.
	EarlyWithdrawPenaltyBps uint64
	// MinStake y MaxStake acotan el tamaño de cada commit.
	MinStake uint64
	MaxStake uint64
	// YieldEscrow está detrás de feature flag — sin comportamiento todavía.
	YieldEscrow bool
}

// DefaultMarketParams devuelve la plantilla de producción.
func DefaultMarketParams() MarketParams {
	return MarketParams{
		LockPeriod:              7 * 24 * time.Hour,
		MinRewardDuration:       24 * time.Hour,
		MaxSRPBps:               500,  // 5% del principal total
		MaxUserRewardBps:        5000, // 50% de los fees pagados
		EntryFeeBaseBps:         50,
		EntryFeeMaxBps:          500,
		EntryFeeScale:           1_000,
		AuthorPremiumBps:        100,
		EarlyWithdrawPenaltyBps: 1000,
		MinStake:                1,
		MaxStake:                1_000_000_000,
	}
}

// Validate comprueba la coherencia interna de los params.
func (p MarketParams) Validate() error {
	if p.MinStake == 0 || p.MaxStake < p.MinStake {
		return fmt.Errorf("params.Validate: stake bounds [%d, %d]: %w", p.MinStake, p.MaxStake, ErrInvalidParams)
	}
	if p.EntryFeeScale == 0 {
		return fmt.Errorf("params.Validate: entry fee scale is zero: %w", ErrInvalidParams)
	}
	if p.EntryFeeBaseBps > p.EntryFeeMaxBps {
		return fmt.Errorf("params.Validate: fee base %d > max %d: %w", p.EntryFeeBaseBps, p.EntryFeeMaxBps, ErrInvalidParams)
	}
	for _, bps := range []uint64{p.MaxSRPBps, p.EntryFeeMaxBps, p.AuthorPremiumBps, p.EarlyWithdrawPenaltyBps} {
		if bps > BpsDenominator {
			return fmt.Errorf("params.Validate: bps %d > %d: %w", bps, BpsDenominator, ErrInvalidParams)
		}
	}
	if p.MaxUserRewardBps == 0 {
		return fmt.Errorf("params.Validate: max user reward bps is zero: %w", ErrInvalidParams)
	}
	if p.LockPeriod < 0 || p.MinRewardDuration < 0 {
		return fmt.Errorf("params.Validate: negative duration: %w", ErrInvalidParams)
	}
	return nil
}
