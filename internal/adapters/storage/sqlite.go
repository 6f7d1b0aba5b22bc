package storage

// sqlite.go — journal de eventos y snapshots de mercado.
//
// Estrategia:
//   - `events`: append-only, una fila por evento del ledger. Es
//     observabilidad, no fuente de verdad: el ledger en memoria manda.
//   - `markets`: UNA fila por claim (UPSERT) con el último snapshot.
//   - Los pesos uint256 se guardan como texto decimal; no caben en INTEGER.
//   - Prune automático al arrancar: eventos > 30d.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	_ "modernc.org/sqlite"

	"github.com/serious-social/conviction/internal/domain"
)

const schema = `
-- Journal append-only de eventos del ledger
CREATE TABLE IF NOT EXISTS events (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    kind        TEXT    NOT NULL,
    claim_id    TEXT    NOT NULL,
    position_id INTEGER NOT NULL DEFAULT 0,
    owner       TEXT    NOT NULL DEFAULT '',
    side        TEXT    NOT NULL DEFAULT '',
    amount      INTEGER NOT NULL DEFAULT 0,
    fee         INTEGER NOT NULL DEFAULT 0,
    early       INTEGER NOT NULL DEFAULT 0,
    source      TEXT    NOT NULL DEFAULT '',
    ts          INTEGER NOT NULL,
    recorded_at DATETIME NOT NULL
);

-- Último snapshot por mercado, sin duplicados
CREATE TABLE IF NOT EXISTS markets (
    claim_id          TEXT PRIMARY KEY,
    belief            INTEGER NOT NULL DEFAULT 0,
    support_weight    TEXT    NOT NULL DEFAULT '0',
    oppose_weight     TEXT    NOT NULL DEFAULT '0',
    support_principal INTEGER NOT NULL DEFAULT 0,
    oppose_principal  INTEGER NOT NULL DEFAULT 0,
    srp_balance       INTEGER NOT NULL DEFAULT 0,
    evaluated_at      INTEGER NOT NULL DEFAULT 0,
    updated_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_claim ON events(claim_id, id);
CREATE INDEX IF NOT EXISTS idx_events_at    ON events(recorded_at DESC);
CREATE INDEX IF NOT EXISTS idx_mkt_belief   ON markets(belief DESC);
`

const retentionEvents = 30 * 24 * time.Hour

// SQLiteJournal implementa ports.Journal usando SQLite (pure Go, sin CGo).
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal abre (o crea) la base de datos en la ruta dada, aplica el
// schema y limpia eventos antiguos.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: apply schema: %w", err)
	}

	j := &SQLiteJournal{db: db}
	j.pruneOld(context.Background())
	return j, nil
}

// Append registra un evento en el journal.
func (j *SQLiteJournal) Append(ctx context.Context, ev domain.Event) error {
	early := 0
	if ev.Early {
		early = 1
	}
	recordedAt := ev.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (kind, claim_id, position_id, owner, side, amount, fee, early, source, ts, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(ev.Kind), ev.ClaimID, int64(ev.PositionID), ev.Owner, ev.Side.String(),
		int64(ev.Amount), int64(ev.Fee), early, string(ev.Source), int64(ev.Timestamp), recordedAt,
	)
	if err != nil {
		return fmt.Errorf("storage.Append: insert event: %w", err)
	}
	return nil
}

// SaveState hace upsert del último snapshot de un mercado.
func (j *SQLiteJournal) SaveState(ctx context.Context, state domain.MarketState) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO markets
			(claim_id, belief, support_weight, oppose_weight,
			 support_principal, oppose_principal, srp_balance, evaluated_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(claim_id) DO UPDATE SET
			belief            = excluded.belief,
			support_weight    = excluded.support_weight,
			oppose_weight     = excluded.oppose_weight,
			support_principal = excluded.support_principal,
			oppose_principal  = excluded.oppose_principal,
			srp_balance       = excluded.srp_balance,
			evaluated_at      = excluded.evaluated_at,
			updated_at        = excluded.updated_at`,
		state.ClaimID, int64(state.Belief),
		state.SupportWeight.Dec(), state.OpposeWeight.Dec(),
		int64(state.SupportPrincipal), int64(state.OpposePrincipal),
		int64(state.SRPBalance), int64(state.EvaluatedAt), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveState: upsert %s: %w", state.ClaimID, err)
	}
	return nil
}

// ListStates devuelve el último snapshot de cada mercado, belief descendente.
func (j *SQLiteJournal) ListStates(ctx context.Context) ([]domain.MarketState, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT claim_id, belief, support_weight, oppose_weight,
		       support_principal, oppose_principal, srp_balance, evaluated_at
		FROM markets
		ORDER BY belief DESC, claim_id`)
	if err != nil {
		return nil, fmt.Errorf("storage.ListStates: query: %w", err)
	}
	defer rows.Close()

	var states []domain.MarketState
	for rows.Next() {
		var st domain.MarketState
		var belief, sp, op, srp, at int64
		var ws, wo string

		if err := rows.Scan(&st.ClaimID, &belief, &ws, &wo, &sp, &op, &srp, &at); err != nil {
			return nil, fmt.Errorf("storage.ListStates: scan row: %w", err)
		}
		st.Belief = uint64(belief)
		st.SupportPrincipal = uint64(sp)
		st.OpposePrincipal = uint64(op)
		st.SRPBalance = uint64(srp)
		st.EvaluatedAt = uint64(at)
		if st.SupportWeight, err = parseWeight(ws); err != nil {
			return nil, fmt.Errorf("storage.ListStates: %s: %w", st.ClaimID, err)
		}
		if st.OpposeWeight, err = parseWeight(wo); err != nil {
			return nil, fmt.Errorf("storage.ListStates: %s: %w", st.ClaimID, err)
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

// Events devuelve los eventos de un claim en orden de inserción.
func (j *SQLiteJournal) Events(ctx context.Context, claimID string) ([]domain.Event, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT kind, claim_id, position_id, owner, side, amount, fee, early, source, ts, recorded_at
		FROM events
		WHERE claim_id = ?
		ORDER BY id`, claimID)
	if err != nil {
		return nil, fmt.Errorf("storage.Events: query: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var ev domain.Event
		var kind, side, source string
		var posID, amount, fee, ts int64
		var early int

		if err := rows.Scan(&kind, &ev.ClaimID, &posID, &ev.Owner, &side,
			&amount, &fee, &early, &source, &ts, &ev.RecordedAt); err != nil {
			return nil, fmt.Errorf("storage.Events: scan row: %w", err)
		}
		ev.Kind = domain.EventKind(kind)
		ev.PositionID = uint64(posID)
		ev.Amount = uint64(amount)
		ev.Fee = uint64(fee)
		ev.Early = early == 1
		ev.Source = domain.SRPSource(source)
		ev.Timestamp = uint64(ts)
		if side == domain.SideOppose.String() {
			ev.Side = domain.SideOppose
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// pruneOld elimina eventos antiguos para mantener la DB ligera.
func (j *SQLiteJournal) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionEvents)
	j.db.ExecContext(ctx, `DELETE FROM events WHERE recorded_at < ?`, cutoff)
}

func parseWeight(dec string) (*uint256.Int, error) {
	w, err := uint256.FromDecimal(dec)
	if err != nil {
		return nil, fmt.Errorf("parse weight %q: %w", dec, err)
	}
	return w, nil
}
