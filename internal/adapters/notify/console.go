package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/serious-social/conviction/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime los estados de mercado en el modo configurado.
func (c *Console) Notify(_ context.Context, states []domain.MarketState) error {
	if len(states) == 0 {
		fmt.Fprintf(c.out, "[%s] no markets\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(states)
	} else {
		c.printCompact(states)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(states []domain.MarketState) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d markets", now, len(states))

	shown := 0
	for _, st := range states {
		if shown >= 4 {
			break
		}
		fmt.Fprintf(&sb, " | %s %.1f%% P:%s srp:%d",
			compactName(st.ClaimID, 12), st.BeliefPercent(),
			formatAmount(st.TotalPrincipal()), st.SRPBalance)
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla completa con pesos y principals por lado.
func (c *Console) printFull(states []domain.MarketState) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %d markets\n", now, len(states))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Claim", "Belief", "W support", "W oppose", "P support", "P oppose", "SRP")

	for i, st := range states {
		table.Append(
			fmt.Sprintf("%d", i+1),
			compactName(st.ClaimID, 24),
			fmt.Sprintf("%.2f%%", st.BeliefPercent()),
			st.SupportWeight.Dec(),
			st.OpposeWeight.Dec(),
			formatAmount(st.SupportPrincipal),
			formatAmount(st.OpposePrincipal),
			formatAmount(st.SRPBalance),
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  Belief = peso Support / peso total | W = señal ponderada por tiempo")
	fmt.Fprintln(c.out, "  P = principal activo por lado | SRP = Signal Reward Pool")
}

// compactName trunca un claim id para display.
func compactName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}

// formatAmount imprime cantidades grandes con sufijo k/M.
func formatAmount(v uint64) string {
	switch {
	case v >= 10_000_000:
		return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
	case v >= 10_000:
		return fmt.Sprintf("%.1fk", float64(v)/1_000)
	default:
		return fmt.Sprintf("%d", v)
	}
}
