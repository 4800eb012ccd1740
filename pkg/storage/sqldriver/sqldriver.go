// Package sqldriver implements storage.Driver on top of database/sql. The
// sqlite and postgres packages open a *sql.DB with their driver and hand it
// here along with the matching Dialect.
package sqldriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/tabagent/pkg/storage"
)

// Dialect selects the SQL flavor of the underlying database.
type Dialect int

const (
	// SQLite uses "?" placeholders.
	SQLite Dialect = iota

	// Postgres uses "$1", "$2", ... placeholders.
	Postgres
)

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// migrations are applied in order on every open. Each statement must be
// idempotent and valid in every Dialect. Timestamps are unix nanoseconds.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id              TEXT PRIMARY KEY,
		assistant_id    TEXT NOT NULL,
		target          TEXT NOT NULL DEFAULT '',
		query           TEXT NOT NULL,
		output          TEXT NOT NULL,
		error           TEXT NOT NULL DEFAULT '',
		fragments       BIGINT NOT NULL DEFAULT 0,
		bytes           BIGINT NOT NULL DEFAULT 0,
		records         BIGINT NOT NULL DEFAULT 0,
		deltas          BIGINT NOT NULL DEFAULT 0,
		malformed       BIGINT NOT NULL DEFAULT 0,
		discarded_bytes BIGINT NOT NULL DEFAULT 0,
		started_at      BIGINT NOT NULL,
		completed_at    BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS runs_started_at_idx ON runs (started_at)`,
}

const runColumns = `id, assistant_id, target, query, output, error,
	fragments, bytes, records, deltas, malformed, discarded_bytes,
	started_at, completed_at`

const upsertRun = `INSERT INTO runs (` + runColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		assistant_id = excluded.assistant_id,
		target = excluded.target,
		query = excluded.query,
		output = excluded.output,
		error = excluded.error,
		fragments = excluded.fragments,
		bytes = excluded.bytes,
		records = excluded.records,
		deltas = excluded.deltas,
		malformed = excluded.malformed,
		discarded_bytes = excluded.discarded_bytes,
		started_at = excluded.started_at,
		completed_at = excluded.completed_at`

// Driver implements storage.Driver over a *sql.DB.
type Driver struct {
	DB      *sql.DB
	dialect Dialect
}

// New wraps db and migrates the schema. The Driver owns db from then on and
// closes it in Close.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Driver, error) {
	d := &Driver{DB: db, dialect: dialect}
	if err := d.migrate(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying %s migration %d: %w", d.dialect, i, err)
		}
	}
	return nil
}

// Put stores a run, replacing any run with the same ID.
func (d *Driver) Put(ctx context.Context, run *storage.Run) error {
	if run == nil {
		return storage.ErrNilRun
	}

	_, err := d.DB.ExecContext(ctx, d.rebind(upsertRun),
		run.ID, run.AssistantID, run.Target, run.Query, run.Output, run.Error,
		run.Stats.Fragments, run.Stats.Bytes, run.Stats.Records,
		run.Stats.Deltas, run.Stats.Malformed, run.Stats.DiscardedBytes,
		toNanos(run.StartedAt), toNanos(run.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("storing run %s: %w", run.ID, err)
	}
	return nil
}

// Get retrieves a run by its ID.
func (d *Driver) Get(ctx context.Context, id string) (*storage.Run, error) {
	row := d.DB.QueryRowContext(ctx,
		d.rebind(`SELECT `+runColumns+` FROM runs WHERE id = ?`), id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", id, err)
	}
	return run, nil
}

// List returns at most limit runs, newest first.
func (d *Driver) List(ctx context.Context, limit int) ([]*storage.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.DB.QueryContext(ctx, d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*storage.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.DB.Close()
}

// rebind rewrites "?" placeholders for dialects that number them.
func (d *Driver) rebind(query string) string {
	if d.dialect != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*storage.Run, error) {
	var (
		run                storage.Run
		started, completed int64
	)
	err := s.Scan(
		&run.ID, &run.AssistantID, &run.Target, &run.Query, &run.Output, &run.Error,
		&run.Stats.Fragments, &run.Stats.Bytes, &run.Stats.Records,
		&run.Stats.Deltas, &run.Stats.Malformed, &run.Stats.DiscardedBytes,
		&started, &completed,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt = fromNanos(started)
	run.CompletedAt = fromNanos(completed)
	return &run, nil
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

var _ storage.Driver = (*Driver)(nil)
