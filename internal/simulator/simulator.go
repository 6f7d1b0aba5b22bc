package simulator

// simulator.go — driver de escenarios contra el motor de mercados.
//
// Genera tráfico aleatorio pero reproducible (seed fija) de commits,
// withdrawals y claims sobre un conjunto de mercados, con un reloj de ledger
// acelerado. Sirve para observar la curva de belief y los flujos del SRP sin
// esperar días reales; los errores de negocio (NoRewardsToClaim, lock no
// vencido) son parte del escenario, no fallos.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/serious-social/conviction/internal/adapters/custody"
	"github.com/serious-social/conviction/internal/domain"
	"github.com/serious-social/conviction/internal/market"
	"github.com/serious-social/conviction/internal/ports"
	"github.com/serious-social/conviction/internal/registry"
)

// Config controla el escenario simulado.
type Config struct {
	Markets      int
	Actors       int
	Ops          int
	OpsPerSec    float64
	Seed         int64
	MintPerActor uint64
	AuthorStake  uint64
	// TimeStep son los segundos de ledger que avanza cada operación.
	TimeStep uint64
	Params   domain.MarketParams
}

// DefaultConfig devuelve un escenario razonable para demo.
func DefaultConfig() Config {
	return Config{
		Markets:      3,
		Actors:       8,
		Ops:          200,
		OpsPerSec:    50,
		Seed:         42,
		MintPerActor: 1_000_000,
		AuthorStake:  10_000,
		TimeStep:     3_600, // una hora de ledger por operación
		Params:       domain.DefaultMarketParams(),
	}
}

// Summary es el resultado agregado de una simulación.
type Summary struct {
	Commits     int
	Withdrawals int
	Claims      int
	Rejected    int
	States      []domain.MarketState
}

// Simulator orquesta el escenario: ledger de custodia, registry, actores.
type Simulator struct {
	cfg      Config
	clock    *Clock
	ledger   *custody.Ledger
	reg      *registry.Registry
	journal  ports.Journal
	notifier ports.Notifier
	limiter  *rate.Limiter
	rng      *rand.Rand
	actors   []string
}

// New construye un Simulator con sus dependencias inyectadas. journal puede
// ser nil (sin persistencia).
func New(cfg Config, journal ports.Journal, notifier ports.Notifier) (*Simulator, error) {
	if cfg.Markets <= 0 || cfg.Actors <= 0 || cfg.Ops <= 0 {
		return nil, fmt.Errorf("simulator.New: markets/actors/ops must be positive: %w", domain.ErrInvalidParams)
	}

	// sin límite de ritmo si no se configura: útil en tests
	limit := rate.Inf
	if cfg.OpsPerSec > 0 {
		limit = rate.Limit(cfg.OpsPerSec)
	}

	s := &Simulator{
		cfg:      cfg,
		clock:    NewClock(1_700_000_000),
		ledger:   custody.NewLedger(),
		journal:  journal,
		notifier: notifier,
		limiter:  rate.NewLimiter(limit, 1),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}

	sink := func(ev domain.Event) {
		if s.journal == nil {
			return
		}
		if err := s.journal.Append(context.Background(), ev); err != nil {
			slog.Warn("journal append failed", "err", err, "kind", ev.Kind, "claim", ev.ClaimID)
		}
	}
	bind := func(claimID string) ports.Custody {
		return s.ledger.ForAccount("market:" + claimID)
	}

	reg, err := registry.New(cfg.Params, bind, market.WithClock(s.clock.Now), market.WithEventSink(sink))
	if err != nil {
		return nil, fmt.Errorf("simulator.New: %w", err)
	}
	s.reg = reg
	return s, nil
}

// Run ejecuta el escenario completo y devuelve el resumen.
func (s *Simulator) Run(ctx context.Context) (Summary, error) {
	if err := s.setup(); err != nil {
		return Summary{}, err
	}

	slog.Info("simulation starting",
		"markets", s.cfg.Markets,
		"actors", s.cfg.Actors,
		"ops", s.cfg.Ops,
		"time_step_s", s.cfg.TimeStep,
	)

	var sum Summary
	markets := s.reg.Markets()

	for i := 0; i < s.cfg.Ops; i++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return sum, fmt.Errorf("simulator.Run: %w", err)
		}
		s.clock.Advance(s.cfg.TimeStep)

		m := markets[s.rng.Intn(len(markets))]
		actor := s.actors[s.rng.Intn(len(s.actors))]

		switch roll := s.rng.Intn(100); {
		case roll < 55:
			s.doCommit(m, actor, &sum)
		case roll < 80:
			s.doWithdraw(m, actor, &sum)
		default:
			s.doClaim(m, actor, &sum)
		}
	}

	sum.States = s.reg.States()
	s.persistStates(ctx, sum.States)

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, sum.States); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("simulation complete",
		"commits", sum.Commits,
		"withdrawals", sum.Withdrawals,
		"claims", sum.Claims,
		"rejected", sum.Rejected,
	)
	return sum, nil
}

// setup crea actores con balance y un mercado por claim.
func (s *Simulator) setup() error {
	s.actors = make([]string, s.cfg.Actors)
	for i := range s.actors {
		s.actors[i] = "actor-" + uuid.NewString()[:8]
		if err := s.ledger.Mint(s.actors[i], s.cfg.MintPerActor); err != nil {
			return fmt.Errorf("simulator.setup: %w", err)
		}
	}

	for i := 0; i < s.cfg.Markets; i++ {
		author := s.actors[i%len(s.actors)]
		claimID := registry.NewClaimID()
		if _, err := s.reg.CreateMarket(claimID, author, s.cfg.AuthorStake); err != nil {
			return fmt.Errorf("simulator.setup: %w", err)
		}
	}
	return nil
}

func (s *Simulator) doCommit(m *market.Market, actor string, sum *Summary) {
	amount := s.stakeAmount()
	var err error
	if s.rng.Intn(2) == 0 {
		_, err = m.CommitSupport(actor, amount)
	} else {
		_, err = m.CommitOppose(actor, amount)
	}
	if err != nil {
		sum.Rejected++
		logRejected("commit", m.ClaimID(), actor, err)
		return
	}
	sum.Commits++
}

func (s *Simulator) doWithdraw(m *market.Market, actor string, sum *Summary) {
	id, ok := s.pickPosition(m, actor)
	if !ok {
		return
	}
	if err := m.Withdraw(actor, id); err != nil {
		sum.Rejected++
		logRejected("withdraw", m.ClaimID(), actor, err)
		return
	}
	sum.Withdrawals++
}

func (s *Simulator) doClaim(m *market.Market, actor string, sum *Summary) {
	id, ok := s.pickPosition(m, actor)
	if !ok {
		return
	}
	if _, err := m.ClaimRewards(actor, id); err != nil {
		sum.Rejected++
		logRejected("claim", m.ClaimID(), actor, err)
		return
	}
	sum.Claims++
}

// pickPosition elige una posición viva del actor en el mercado, si la hay.
func (s *Simulator) pickPosition(m *market.Market, actor string) (uint64, bool) {
	ids := m.UserPositions(actor)
	var live []uint64
	for _, id := range ids {
		pos, err := m.Position(id)
		if err == nil && !pos.Withdrawn {
			live = append(live, id)
		}
	}
	if len(live) == 0 {
		return 0, false
	}
	return live[s.rng.Intn(len(live))], true
}

// stakeAmount genera un tamaño de stake dentro de los bounds del mercado.
func (s *Simulator) stakeAmount() uint64 {
	p := s.cfg.Params
	span := p.MaxStake - p.MinStake
	if span > 100_000 {
		span = 100_000
	}
	if span == 0 {
		return p.MinStake
	}
	return p.MinStake + uint64(s.rng.Int63n(int64(span)))
}

func (s *Simulator) persistStates(ctx context.Context, states []domain.MarketState) {
	if s.journal == nil {
		return
	}
	for _, st := range states {
		if err := s.journal.SaveState(ctx, st); err != nil {
			slog.Warn("save state failed", "err", err, "claim", st.ClaimID)
		}
	}
}

// logRejected baja el ruido: los rechazos de negocio son esperados.
func logRejected(op, claimID, actor string, err error) {
	level := slog.LevelDebug
	if !isBusinessRejection(err) {
		level = slog.LevelWarn
	}
	slog.Log(context.Background(), level, "operation rejected",
		"op", op, "claim", claimID, "actor", actor, "err", err)
}

func isBusinessRejection(err error) bool {
	for _, expected := range []error{
		domain.ErrNoRewardsToClaim,
		domain.ErrMinRewardDuration,
		domain.ErrEarlyWithdrawDisabled,
		domain.ErrStakeOutOfRange,
		domain.ErrInsufficientBalance,
	} {
		if errors.Is(err, expected) {
			return true
		}
	}
	return false
}
