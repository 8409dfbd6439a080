// Package store persists completed audit runs to PostgreSQL. It is an
// optional sink; a run that skips it is complete without it.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/divij-pawar/relcheck/api/schemas"
)

// DBPool abstracts the pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Store provides the PostgreSQL implementation of the audit.Sink interface.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

const insertRunSQL = `
    INSERT INTO audit_runs (id, mode, input, started_at)
    VALUES ($1, $2, $3, $4);
`

const insertStatSQL = `
    INSERT INTO audit_stats (run_id, metric, value)
    VALUES ($1, $2, $3);
`

// PersistRun stores one completed envelope in a single transaction: the
// run row, bulk-copied cycles and contradictions, and the statistics.
func (s *Store) PersistRun(ctx context.Context, envelope *schemas.ResultEnvelope) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && rollbackErr != pgx.ErrTxClosed {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if _, err := tx.Exec(ctx, insertRunSQL, envelope.RunID, string(envelope.Mode), envelope.Input, envelope.StartedAt); err != nil {
		return fmt.Errorf("failed to insert run row: %w", err)
	}

	if len(envelope.Cycles) > 0 {
		if err := s.persistCycles(ctx, tx, envelope.RunID, envelope.Cycles); err != nil {
			return err
		}
	}
	if len(envelope.Contradictions) > 0 {
		if err := s.persistContradictions(ctx, tx, envelope.RunID, envelope.Contradictions); err != nil {
			return err
		}
	}
	for _, m := range envelope.Stats.Metrics {
		if _, err := tx.Exec(ctx, insertStatSQL, envelope.RunID, m.Name, m.Value); err != nil {
			return fmt.Errorf("failed to insert statistic %q: %w", m.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) persistCycles(ctx context.Context, tx pgx.Tx, runID string, cycles []schemas.Cycle) error {
	rows := make([][]any, len(cycles))
	for i, c := range cycles {
		rows[i] = []any{runID, i + 1, joinPath(c.Nodes)}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"audit_cycles"},
		[]string{"run_id", "seq", "node_path"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy cycles: %w", err)
	}
	if int(copyCount) != len(cycles) {
		return fmt.Errorf("mismatch in copied cycle count: expected %d, got %d", len(cycles), copyCount)
	}
	return nil
}

func (s *Store) persistContradictions(ctx context.Context, tx pgx.Tx, runID string, contradictions []schemas.Contradiction) error {
	rows := make([][]any, len(contradictions))
	for i, c := range contradictions {
		rows[i] = []any{runID, i + 1, string(c.From), string(c.To), joinPath(c.Path)}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"audit_contradictions"},
		[]string{"run_id", "seq", "source", "target", "witness_path"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy contradictions: %w", err)
	}
	if int(copyCount) != len(contradictions) {
		return fmt.Errorf("mismatch in copied contradiction count: expected %d, got %d", len(contradictions), copyCount)
	}
	return nil
}

func joinPath(nodes []schemas.ConceptID) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = string(n)
	}
	return strings.Join(parts, " -> ")
}
