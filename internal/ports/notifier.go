package ports

import (
	"context"

	"github.com/serious-social/conviction/internal/domain"
)

// Notifier presenta el estado de los mercados al usuario.
type Notifier interface {
	// Notify muestra los estados ordenados por belief.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, states []domain.MarketState) error
}
