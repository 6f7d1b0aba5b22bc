package custody

// ledger.go — token fungible en memoria: el holder de balances que custodia
// el principal de los mercados. Atómico y sin fees propios, como asume el
// orquestador. Cada mercado opera a través de un handle ligado a su cuenta.

import (
	"fmt"
	"sync"

	"github.com/serious-social/conviction/internal/domain"
	"github.com/serious-social/conviction/internal/ports"
)

// Ledger es el libro de balances del token de custodia.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]uint64
	supply   uint64
}

// NewLedger devuelve un ledger vacío.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[string]uint64)}
}

// Mint acuña amount en la cuenta dada. Solo para arranque y simulación.
func (l *Ledger) Mint(account string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	supply, err := domain.CheckedAdd(l.supply, amount)
	if err != nil {
		return fmt.Errorf("custody.Mint: %w", err)
	}
	balance, err := domain.CheckedAdd(l.balances[account], amount)
	if err != nil {
		return fmt.Errorf("custody.Mint: %w", err)
	}
	l.supply = supply
	l.balances[account] = balance
	return nil
}

// Transfer mueve amount entre dos cuentas.
func (l *Ledger) Transfer(from, to string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return fmt.Errorf("custody.Transfer: %s has %d, needs %d: %w",
			from, l.balances[from], amount, domain.ErrInsufficientBalance)
	}
	// restar antes de sumar: así una auto-transferencia queda en cero neto
	l.balances[from] -= amount
	balance, err := domain.CheckedAdd(l.balances[to], amount)
	if err != nil {
		l.balances[from] += amount
		return fmt.Errorf("custody.Transfer: %w", err)
	}
	l.balances[to] = balance
	return nil
}

// BalanceOf devuelve el balance de una cuenta.
func (l *Ledger) BalanceOf(account string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// TotalSupply devuelve el supply total acuñado.
func (l *Ledger) TotalSupply() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.supply
}

// ForAccount devuelve un handle ports.Custody ligado a la cuenta dada
// (la cuenta de un mercado).
func (l *Ledger) ForAccount(account string) ports.Custody {
	return &boundAccount{ledger: l, account: account}
}

// boundAccount implementa ports.Custody contra una cuenta fija.
type boundAccount struct {
	ledger  *Ledger
	account string
}

func (b *boundAccount) Pull(from string, amount uint64) error {
	return b.ledger.Transfer(from, b.account, amount)
}

func (b *boundAccount) Push(to string, amount uint64) error {
	return b.ledger.Transfer(b.account, to, amount)
}

func (b *boundAccount) BalanceOf(account string) uint64 {
	return b.ledger.BalanceOf(account)
}
