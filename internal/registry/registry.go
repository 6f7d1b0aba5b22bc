package registry

// registry.go — factoría un-mercado-por-claim. Todos los mercados comparten
// la misma lógica; solo difieren en params. La plantilla default es mutable
// aquí, pero los params de un mercado ya creado no cambian jamás.

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/serious-social/conviction/internal/domain"
	"github.com/serious-social/conviction/internal/market"
	"github.com/serious-social/conviction/internal/ports"
)

// CustodyBinder devuelve el handle de custodia ligado a la cuenta de un
// mercado concreto.
type CustodyBinder func(claimID string) ports.Custody

// Registry mantiene la colección de mercados indexada por claim id.
type Registry struct {
	mu       sync.Mutex
	defaults domain.MarketParams
	bind     CustodyBinder
	opts     []market.Option

	markets map[string]*market.Market
	order   []string
}

// New crea un registry con la plantilla de params dada. opts se propaga a
// cada mercado creado (reloj, event sink).
func New(defaults domain.MarketParams, bind CustodyBinder, opts ...market.Option) (*Registry, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("registry.New: %w", err)
	}
	return &Registry{
		defaults: defaults,
		bind:     bind,
		opts:     opts,
		markets:  make(map[string]*market.Market),
	}, nil
}

// NewClaimID genera un claim id nuevo.
func NewClaimID() string {
	return uuid.NewString()
}

// CreateMarket instancia el mercado de un claim con la plantilla default.
// authorStake > 0 siembra la posición del autor (paga el author premium).
func (r *Registry) CreateMarket(claimID, author string, authorStake uint64) (*market.Market, error) {
	r.mu.Lock()
	defaults := r.defaults
	r.mu.Unlock()
	return r.createMarket(claimID, defaults, author, authorStake)
}

// CreateMarketWithParams instancia un mercado con params explícitos en lugar
// de la plantilla.
func (r *Registry) CreateMarketWithParams(claimID string, params domain.MarketParams, author string, authorStake uint64) (*market.Market, error) {
	return r.createMarket(claimID, params, author, authorStake)
}

func (r *Registry) createMarket(claimID string, params domain.MarketParams, author string, authorStake uint64) (*market.Market, error) {
	if claimID == "" {
		return nil, fmt.Errorf("registry.CreateMarket: empty claim id: %w", domain.ErrInvalidParams)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.markets[claimID]; ok {
		return nil, fmt.Errorf("registry.CreateMarket: claim %s: %w", claimID, domain.ErrMarketExists)
	}

	m, err := market.Initialize(claimID, r.bind(claimID), params, author, authorStake, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("registry.CreateMarket: claim %s: %w", claimID, err)
	}
	r.markets[claimID] = m
	r.order = append(r.order, claimID)
	return m, nil
}

// Market devuelve el mercado de un claim, o ErrMarketNotFound.
func (r *Registry) Market(claimID string) (*market.Market, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.markets[claimID]
	if !ok {
		return nil, fmt.Errorf("registry.Market: claim %s: %w", claimID, domain.ErrMarketNotFound)
	}
	return m, nil
}

// Markets devuelve todos los mercados en orden de creación.
func (r *Registry) Markets() []*market.Market {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*market.Market, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.markets[id])
	}
	return out
}

// States devuelve el estado agregado de todos los mercados.
func (r *Registry) States() []domain.MarketState {
	out := make([]domain.MarketState, 0)
	for _, m := range r.Markets() {
		out = append(out, m.State())
	}
	return out
}

// DefaultParams devuelve la plantilla actual.
func (r *Registry) DefaultParams() domain.MarketParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaults
}

// SetDefaultParams reemplaza la plantilla. Solo afecta a mercados futuros.
func (r *Registry) SetDefaultParams(p domain.MarketParams) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("registry.SetDefaultParams: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults = p
	return nil
}
