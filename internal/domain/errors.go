package domain

import "errors"

// Errores centinela del motor de mercados. Cada operación pública falla con
// exactamente uno de estos, envuelto con contexto vía fmt.Errorf("...: %w").
var (
	ErrZeroAmount            = errors.New("amount must be greater than zero")
	ErrStakeOutOfRange       = errors.New("stake amount out of range")
	ErrPositionNotFound      = errors.New("position not found")
	ErrNotPositionOwner      = errors.New("caller is not the position owner")
	ErrAlreadyWithdrawn      = errors.New("position already withdrawn")
	ErrEarlyWithdrawDisabled = errors.New("early withdrawal disabled")
	ErrMinRewardDuration     = errors.New("minimum reward duration not met")
	ErrNoRewardsToClaim      = errors.New("no rewards to claim")
	ErrMarketExists          = errors.New("market already exists for claim")
	ErrMarketNotFound        = errors.New("market not found")
	ErrInvalidParams         = errors.New("invalid market params")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrArithmeticOverflow    = errors.New("arithmetic overflow")
	ErrLedgerInvariant       = errors.New("ledger invariant violated")
)
