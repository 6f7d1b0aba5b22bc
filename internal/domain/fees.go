package domain

// fees.go — fee graduado de entrada, premium de autor, penalización de retiro
// anticipado y enforcement del cap del SRP.
//
// Regla de conservación: ningún flujo destruye valor. Lo que el cap del SRP
// rechaza vuelve al originador (como principal extra en un commit, o como
// parte del retiro en una penalización).

// EntryFeeBps devuelve el fee de entrada tardía en bps para un commit sobre
// un mercado con principalBefore ya stakeado: min(base + principal/scale, max).
// El primer stake del mercado no paga fee (no hay principal contra el que
// llegar "tarde") — eso lo decide el orquestador, no esta función.
func EntryFeeBps(p MarketParams, principalBefore uint64) uint64 {
	graduated := principalBefore / p.EntryFeeScale
	bps := p.EntryFeeBaseBps + graduated
	// base y graduated son acotados por Validate y por principal uint64/scale≥1;
	// la suma no puede desbordar en la práctica, pero el min acota igualmente.
	if bps > p.EntryFeeMaxBps || bps < p.EntryFeeBaseBps {
		return p.EntryFeeMaxBps
	}
	return bps
}

// SRPHeadroom devuelve cuánto inflow adicional admite el SRP dado el
// principal total del mercado: cap = totalPrincipal × maxSrpBps / 10000.
func SRPHeadroom(srpBalance, totalPrincipal, maxSrpBps uint64) uint64 {
	cap := BpsOf(totalPrincipal, maxSrpBps)
	if srpBalance >= cap {
		return 0
	}
	return cap - srpBalance
}

// AdmitToSRP reparte un inflow (fee, premium o penalización) entre el SRP y
// el refund al originador. uncapped salta el cap — solo válido para el primer
// inflow del mercado, donde el cap contra principal cero no está definido.
func AdmitToSRP(inflow, srpBalance, totalPrincipal, maxSrpBps uint64, uncapped bool) (admitted, refund uint64) {
	if uncapped {
		return inflow, 0
	}
	headroom := SRPHeadroom(srpBalance, totalPrincipal, maxSrpBps)
	if inflow <= headroom {
		return inflow, 0
	}
	return headroom, inflow - headroom
}
