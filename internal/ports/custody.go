package ports

// Custody es el token de custodia: mueve fondos entre participantes y el
// mercado. Se asume atómico y sin fees propios. El mercado lo invoca como
// ÚLTIMO efecto de cada operación, con el bookkeeping interno ya finalizado.
type Custody interface {
	// Pull retira amount del balance de from hacia la cuenta del mercado.
	Pull(from string, amount uint64) error

	// Push transfiere amount desde la cuenta del mercado hacia to.
	Push(to string, amount uint64) error

	// BalanceOf devuelve el balance disponible de una cuenta.
	BalanceOf(account string) uint64
}
