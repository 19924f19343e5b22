package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	ports "github.com/codexbridge/codex-bridge/bridge/delegate/ports"
)

// LibSQLHistoryStore implements HistoryStore on a libsql database.
type LibSQLHistoryStore struct {
	db *sql.DB
}

// NewLibSQLHistoryStore creates a history store backed by db. The schema is
// managed by migrations in bridge/db.
func NewLibSQLHistoryStore(db *sql.DB) *LibSQLHistoryStore {
	return &LibSQLHistoryStore{db: db}
}

// Record persists one completed delegation.
func (s *LibSQLHistoryStore) Record(ctx context.Context, d ports.Delegation) error {
	query := `
		INSERT INTO delegations
			(id, task, working_directory, execution_mode, sandbox_mode,
			 output_format, cache_key, cache_hit, success, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.Task, d.WorkingDirectory, d.ExecutionMode, d.SandboxMode,
		d.OutputFormat, d.CacheKey, d.CacheHit, d.Success, d.DurationMS,
		d.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record delegation: %w", err)
	}
	return nil
}

// Recent returns the newest delegations, most recent first.
func (s *LibSQLHistoryStore) Recent(ctx context.Context, limit int) ([]ports.Delegation, error) {
	if limit < 1 {
		limit = 10
	}

	query := `
		SELECT id, task, working_directory, execution_mode, sandbox_mode,
		       output_format, cache_key, cache_hit, success, duration_ms, created_at
		FROM delegations
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query delegations: %w", err)
	}
	defer rows.Close()

	var out []ports.Delegation
	for rows.Next() {
		var (
			d         ports.Delegation
			createdAt string
		)
		if err := rows.Scan(&d.ID, &d.Task, &d.WorkingDirectory, &d.ExecutionMode,
			&d.SandboxMode, &d.OutputFormat, &d.CacheKey, &d.CacheHit,
			&d.Success, &d.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan delegation: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			d.CreatedAt = ts
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delegations: %w", err)
	}
	return out, nil
}

// Ensure LibSQLHistoryStore implements the HistoryStore interface.
var _ ports.HistoryStore = (*LibSQLHistoryStore)(nil)
