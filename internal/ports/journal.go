package ports

import (
	"context"

	"github.com/serious-social/conviction/internal/domain"
)

// Journal persiste los eventos de los mercados y sus snapshots de estado.
type Journal interface {
	// Append registra un evento del ledger.
	Append(ctx context.Context, ev domain.Event) error

	// SaveState hace upsert del snapshot de estado de un mercado.
	SaveState(ctx context.Context, state domain.MarketState) error

	// ListStates devuelve el último snapshot de cada mercado conocido,
	// ordenados por belief descendente.
	ListStates(ctx context.Context) ([]domain.MarketState, error)

	// Events devuelve los eventos de un claim en orden de inserción.
	Events(ctx context.Context, claimID string) ([]domain.Event, error)

	// Close cierra la conexión limpiamente.
	Close() error
}
