package market

// market.go — orquestador por claim: dos pool ledgers, el SRP, los
// acumuladores de reward y el arena de posiciones.
//
// Disciplina transaccional: cada operación valida → calcula → muta → y deja
// la transferencia de custodia como ÚLTIMO efecto. Si la custodia falla, el
// snapshot del ledger se restaura y no persiste ninguna mutación parcial.
// Un mutex por mercado serializa las operaciones; con eso los acumuladores
// pueden asumir que no hay escritor concurrente.

import (
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/serious-social/conviction/internal/domain"
	"github.com/serious-social/conviction/internal/ports"
)

// Market es el estado agregado de un mercado de conviction sobre un claim.
type Market struct {
	mu sync.Mutex

	claimID string
	params  domain.MarketParams
	custody ports.Custody
	author  string

	support *domain.Pool
	oppose  *domain.Pool
	srp     uint64
	acc     *domain.RewardAccumulator

	// arena de posiciones: id = índice + 1, 0 es el centinela "no existe"
	positions []*domain.Position
	byOwner   map[string][]uint64

	firstStakeDone bool

	nowFn func() uint64
	sink  func(domain.Event)
}

// Option configura un Market al crearlo.
type Option func(*Market)

// WithClock inyecta el reloj del ledger (unix seconds). Para tests y
// simulación; por defecto time.Now.
func WithClock(now func() uint64) Option {
	return func(m *Market) { m.nowFn = now }
}

// WithEventSink registra un receptor de eventos de observabilidad.
func WithEventSink(sink func(domain.Event)) Option {
	return func(m *Market) { m.sink = sink }
}

// Initialize construye un mercado para un claim y, si authorStake > 0,
// siembra la posición del autor por el mismo camino que un commit normal,
// pagando el author premium en lugar del fee de entrada tardía.
// Se invoca exactamente una vez por claim (el registry lo garantiza).
func Initialize(claimID string, custody ports.Custody, params domain.MarketParams, author string, authorStake uint64, opts ...Option) (*Market, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("market.Initialize: %w", err)
	}
	m := &Market{
		claimID: claimID,
		params:  params,
		custody: custody,
		author:  author,
		support: domain.NewPool(),
		oppose:  domain.NewPool(),
		acc:     domain.NewRewardAccumulator(),
		byOwner: make(map[string][]uint64),
		nowFn:   func() uint64 { return uint64(time.Now().Unix()) },
	}
	for _, opt := range opts {
		opt(m)
	}
	if authorStake > 0 {
		if _, err := m.commit(author, domain.SideSupport, authorStake, true); err != nil {
			return nil, fmt.Errorf("market.Initialize: seed author stake: %w", err)
		}
	}
	return m, nil
}

// CommitSupport bloquea amount en el lado Support y devuelve el id de la
// posición creada.
func (m *Market) CommitSupport(owner string, amount uint64) (uint64, error) {
	return m.commit(owner, domain.SideSupport, amount, false)
}

// CommitOppose bloquea amount en el lado Oppose.
func (m *Market) CommitOppose(owner string, amount uint64) (uint64, error) {
	return m.commit(owner, domain.SideOppose, amount, false)
}

// commit es el único camino de entrada de principal. seed marca el stake
// inicial del autor (premium plano en vez de fee graduado).
func (m *Market) commit(owner string, side domain.Side, amount uint64, seed bool) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if amount == 0 {
		return 0, fmt.Errorf("market.commit: %w", domain.ErrZeroAmount)
	}
	if amount < m.params.MinStake || amount > m.params.MaxStake {
		return 0, fmt.Errorf("market.commit: amount %d outside [%d, %d]: %w",
			amount, m.params.MinStake, m.params.MaxStake, domain.ErrStakeOutOfRange)
	}

	now := m.nowFn()
	totalBefore, err := domain.CheckedAdd(m.support.Principal, m.oppose.Principal)
	if err != nil {
		return 0, fmt.Errorf("market.commit: %w", err)
	}

	// El primer stake del mercado es fee-free por definición; el seed del
	// autor paga el premium plano aunque sea estructuralmente el primero.
	isFirst := !m.firstStakeDone
	var feeBps uint64
	source := domain.SRPSourceFee
	switch {
	case seed:
		feeBps = m.params.AuthorPremiumBps
		source = domain.SRPSourcePremium
	case isFirst:
		feeBps = 0
	default:
		feeBps = domain.EntryFeeBps(m.params, totalBefore)
	}
	fee := domain.BpsOf(amount, feeBps)

	// Cap del SRP contra el total asumiendo el fee completo; el refund solo
	// puede subir el principal, así que el invariante queda garantizado.
	totalAfter, err := domain.CheckedAdd(totalBefore, amount-fee)
	if err != nil {
		return 0, fmt.Errorf("market.commit: %w", err)
	}
	admitted, _ := domain.AdmitToSRP(fee, m.srp, totalAfter, m.params.MaxSRPBps, isFirst && fee > 0)
	net := amount - admitted

	snap := m.snapshot(nil)

	if admitted > 0 {
		m.acc.Fund(admitted, now, m.totalWeight(now))
		srp, err := domain.CheckedAdd(m.srp, admitted)
		if err != nil {
			return 0, fmt.Errorf("market.commit: %w", err)
		}
		m.srp = srp
	}

	if err := m.pool(side).Stake(net, now); err != nil {
		m.restore(snap)
		return 0, fmt.Errorf("market.commit: %w", err)
	}

	id := uint64(len(m.positions)) + 1
	pos := &domain.Position{
		ID:               id,
		Owner:            owner,
		Side:             side,
		Amount:           net,
		FeesPaid:         admitted,
		DepositTimestamp: now,
		UnlockTimestamp:  now + uint64(m.params.LockPeriod/time.Second),
		Snapshot:         m.acc.Snapshot(),
	}
	m.positions = append(m.positions, pos)
	m.byOwner[owner] = append(m.byOwner[owner], id)
	m.firstStakeDone = true

	// efecto externo al final: si la custodia falla, nada persiste
	if err := m.custody.Pull(owner, amount); err != nil {
		m.restore(snap)
		return 0, fmt.Errorf("market.commit: pull %d from %s: %w", amount, owner, err)
	}

	if admitted > 0 {
		m.emit(domain.Event{
			Kind: domain.EventSRPFunded, PositionID: id, Owner: owner,
			Side: side, Amount: admitted, Source: source, Timestamp: now,
		})
	}
	m.emit(domain.Event{
		Kind: domain.EventStakeCommitted, PositionID: id, Owner: owner,
		Side: side, Amount: net, Fee: admitted, Timestamp: now,
	})
	return id, nil
}

// Withdraw cierra una posición. Con el lock vencido devuelve el principal
// completo más cualquier reward pendiente (auto-claim). Antes del lock aplica
// la penalización de retiro anticipado y pierde los rewards pendientes.
func (m *Market) Withdraw(owner string, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, err := m.position(id)
	if err != nil {
		return fmt.Errorf("market.Withdraw: %w", err)
	}
	if pos.Owner != owner {
		return fmt.Errorf("market.Withdraw: position %d: %w", id, domain.ErrNotPositionOwner)
	}
	if pos.Withdrawn {
		return fmt.Errorf("market.Withdraw: position %d: %w", id, domain.ErrAlreadyWithdrawn)
	}

	now := m.nowFn()
	if pos.Unlocked(now) {
		return m.withdrawNormal(pos, now)
	}
	return m.withdrawEarly(pos, now)
}

// withdrawNormal devuelve el principal y auto-reclama los rewards pendientes.
// El auto-claim ignora MinRewardDuration: dejar rewards devengados atrapados
// tras el cierre de la posición los perdería para siempre.
func (m *Market) withdrawNormal(pos *domain.Position, now uint64) error {
	pending, err := m.acc.PendingSince(pos.Amount, pos.DepositTimestamp, pos.Snapshot)
	if err != nil {
		return fmt.Errorf("market.Withdraw: %w", err)
	}
	claimable := min(pending, pos.RemainingRewardCap(m.params))
	if claimable > m.srp {
		return fmt.Errorf("market.Withdraw: claim %d > srp %d: %w", claimable, m.srp, domain.ErrLedgerInvariant)
	}

	snap := m.snapshot(pos)

	pos.Snapshot = m.acc.Snapshot()
	pos.ClaimedRewards += claimable
	m.srp -= claimable
	pos.Withdrawn = true
	if err := m.pool(pos.Side).Unstake(pos.Amount, pos.DepositTimestamp); err != nil {
		m.restore(snap)
		return fmt.Errorf("market.Withdraw: %w", err)
	}

	payout, err := domain.CheckedAdd(pos.Amount, claimable)
	if err != nil {
		m.restore(snap)
		return fmt.Errorf("market.Withdraw: %w", err)
	}
	if err := m.custody.Push(pos.Owner, payout); err != nil {
		m.restore(snap)
		return fmt.Errorf("market.Withdraw: push %d to %s: %w", payout, pos.Owner, err)
	}

	if claimable > 0 {
		m.emit(domain.Event{
			Kind: domain.EventRewardClaimed, PositionID: pos.ID, Owner: pos.Owner,
			Side: pos.Side, Amount: claimable, Timestamp: now,
		})
	}
	m.emit(domain.Event{
		Kind: domain.EventWithdrawn, PositionID: pos.ID, Owner: pos.Owner,
		Side: pos.Side, Amount: pos.Amount, Timestamp: now,
	})
	return nil
}

// withdrawEarly aplica la penalización y pierde los rewards pendientes. Si la
// posición era el único stake activo de su lado, la penalización se exime: no
// queda nadie que la reciba y desviarla solo destruiría valor.
func (m *Market) withdrawEarly(pos *domain.Position, now uint64) error {
	if m.params.EarlyWithdrawPenaltyBps == 0 {
		return fmt.Errorf("market.Withdraw: position %d locked until %d: %w",
			pos.ID, pos.UnlockTimestamp, domain.ErrEarlyWithdrawDisabled)
	}

	snap := m.snapshot(pos)

	sole := m.pool(pos.Side).Principal == pos.Amount

	pos.Withdrawn = true
	if err := m.pool(pos.Side).Unstake(pos.Amount, pos.DepositTimestamp); err != nil {
		m.restore(snap)
		return fmt.Errorf("market.Withdraw: %w", err)
	}

	var admitted uint64
	if !sole {
		penalty := domain.BpsOf(pos.Amount, m.params.EarlyWithdrawPenaltyBps)
		totalAfter := m.support.Principal + m.oppose.Principal
		admitted, _ = domain.AdmitToSRP(penalty, m.srp, totalAfter, m.params.MaxSRPBps, false)
	}
	if admitted > 0 {
		// atribuir DESPUÉS del unstake: la posición que se retira no debe
		// recibir su propia penalización
		m.acc.Fund(admitted, now, m.totalWeight(now))
		srp, err := domain.CheckedAdd(m.srp, admitted)
		if err != nil {
			m.restore(snap)
			return fmt.Errorf("market.Withdraw: %w", err)
		}
		m.srp = srp
	}

	payout := pos.Amount - admitted
	if err := m.custody.Push(pos.Owner, payout); err != nil {
		m.restore(snap)
		return fmt.Errorf("market.Withdraw: push %d to %s: %w", payout, pos.Owner, err)
	}

	if admitted > 0 {
		m.emit(domain.Event{
			Kind: domain.EventSRPFunded, PositionID: pos.ID, Owner: pos.Owner,
			Side: pos.Side, Amount: admitted, Source: domain.SRPSourcePenalty, Timestamp: now,
		})
	}
	m.emit(domain.Event{
		Kind: domain.EventWithdrawn, PositionID: pos.ID, Owner: pos.Owner,
		Side: pos.Side, Amount: payout, Fee: admitted, Early: true, Timestamp: now,
	})
	return nil
}

// ClaimRewards reclama los rewards devengados de una posición y devuelve la
// cantidad transferida.
func (m *Market) ClaimRewards(owner string, id uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, err := m.position(id)
	if err != nil {
		return 0, fmt.Errorf("market.ClaimRewards: %w", err)
	}
	if pos.Owner != owner {
		return 0, fmt.Errorf("market.ClaimRewards: position %d: %w", id, domain.ErrNotPositionOwner)
	}

	now := m.nowFn()
	if now < pos.DepositTimestamp+uint64(m.params.MinRewardDuration/time.Second) {
		return 0, fmt.Errorf("market.ClaimRewards: position %d: %w", id, domain.ErrMinRewardDuration)
	}

	// una posición retirada pierde el pending para siempre
	var pending uint64
	if !pos.Withdrawn {
		pending, err = m.acc.PendingSince(pos.Amount, pos.DepositTimestamp, pos.Snapshot)
		if err != nil {
			return 0, fmt.Errorf("market.ClaimRewards: %w", err)
		}
	}
	claimable := min(pending, pos.RemainingRewardCap(m.params))
	if claimable == 0 {
		return 0, fmt.Errorf("market.ClaimRewards: position %d: %w", id, domain.ErrNoRewardsToClaim)
	}
	if claimable > m.srp {
		return 0, fmt.Errorf("market.ClaimRewards: claim %d > srp %d: %w", claimable, m.srp, domain.ErrLedgerInvariant)
	}

	snap := m.snapshot(pos)

	pos.Snapshot = m.acc.Snapshot()
	pos.ClaimedRewards += claimable
	m.srp -= claimable

	if err := m.custody.Push(owner, claimable); err != nil {
		m.restore(snap)
		return 0, fmt.Errorf("market.ClaimRewards: push %d to %s: %w", claimable, owner, err)
	}

	m.emit(domain.Event{
		Kind: domain.EventRewardClaimed, PositionID: pos.ID, Owner: owner,
		Side: pos.Side, Amount: claimable, Timestamp: now,
	})
	return claimable, nil
}

// --- helpers internos ---

func (m *Market) pool(side domain.Side) *domain.Pool {
	if side == domain.SideSupport {
		return m.support
	}
	return m.oppose
}

// position devuelve el puntero del arena, o ErrPositionNotFound.
func (m *Market) position(id uint64) (*domain.Position, error) {
	if id == domain.PositionNone || id > uint64(len(m.positions)) {
		return nil, fmt.Errorf("position %d: %w", id, domain.ErrPositionNotFound)
	}
	return m.positions[id-1], nil
}

func (m *Market) totalWeight(t uint64) *uint256.Int {
	w := m.support.Weight(t)
	return w.Add(w, m.oppose.Weight(t))
}

func (m *Market) emit(ev domain.Event) {
	if m.sink == nil {
		return
	}
	ev.ClaimID = m.claimID
	ev.RecordedAt = time.Now().UTC()
	m.sink(ev)
}
