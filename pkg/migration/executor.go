package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marshallshelly/cultivar/pkg/runtime"
)

// Executor applies migrations and tracks them in schema_migrations.
type Executor struct {
	pool   *pgxpool.Pool
	lockID int64 // PostgreSQL advisory lock ID
}

func NewExecutor(pool *pgxpool.Pool) *Executor {
	return &Executor{
		pool:   pool,
		lockID: 7326015442, // arbitrary, shared by every cultivar process
	}
}

// Initialize creates the schema_migrations table if it doesn't exist.
func (e *Executor) Initialize(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(14) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			checksum VARCHAR(64) NOT NULL DEFAULT '',
			applied_at TIMESTAMP,
			error TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`
	if _, err := e.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// withLock runs fn on a single connection holding the session advisory lock.
// Advisory locks belong to a session, so lock, work and unlock share one
// connection.
func (e *Executor) withLock(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return &runtime.ConnectionError{Stage: "acquire", Err: err}
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", e.lockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		// a fresh context so a cancelled ctx still releases the lock
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = conn.Exec(unlockCtx, "SELECT pg_advisory_unlock($1)", e.lockID)
	}()

	return fn(conn)
}

// Record returns the tracking row for version, or nil when there is none.
func (e *Executor) Record(ctx context.Context, version string) (*MigrationRecord, error) {
	var record MigrationRecord
	err := e.pool.QueryRow(ctx,
		"SELECT version, name, status, checksum, applied_at, error FROM schema_migrations WHERE version = $1",
		version,
	).Scan(&record.Version, &record.Name, &record.Status, &record.Checksum, &record.AppliedAt, &record.Error)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migration %s: %w", version, err)
	}
	return &record, nil
}

// Status returns the record for m, synthesizing a pending one when m has
// never been attempted.
func (e *Executor) Status(ctx context.Context, m Migration) (MigrationRecord, error) {
	record, err := e.Record(ctx, m.Version)
	if err != nil {
		return MigrationRecord{}, err
	}
	if record == nil {
		return MigrationRecord{Version: m.Version, Name: m.Name, Status: StatusPending}, nil
	}
	return *record, nil
}

// Apply runs m's up statements in one transaction. Applying an already
// applied migration is a no-op that returns false.
func (e *Executor) Apply(ctx context.Context, m Migration) (bool, error) {
	applied := false
	err := e.withLock(ctx, func(conn *pgxpool.Conn) error {
		var status string
		err := conn.QueryRow(ctx, "SELECT status FROM schema_migrations WHERE version = $1", m.Version).Scan(&status)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if MigrationStatus(status) == StatusApplied {
			return nil
		}

		runErr := runStatements(ctx, conn, m.Up)
		if runErr != nil {
			_, _ = conn.Exec(ctx, `
				INSERT INTO schema_migrations (version, name, status, checksum, error)
				VALUES ($1, $2, 'failed', $3, $4)
				ON CONFLICT (version) DO UPDATE SET status = 'failed', checksum = $3, error = $4`,
				m.Version, m.Name, m.Checksum(), runErr.Error(),
			)
			return &runtime.MigrationError{Version: m.Version, Message: "apply failed", Err: runErr}
		}

		_, err = conn.Exec(ctx, `
			INSERT INTO schema_migrations (version, name, status, checksum, applied_at)
			VALUES ($1, $2, 'applied', $3, $4)
			ON CONFLICT (version) DO UPDATE SET status = 'applied', checksum = $3, applied_at = $4, error = NULL`,
			m.Version, m.Name, m.Checksum(), time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		applied = true
		return nil
	})
	return applied, err
}

// Rollback runs m's down statements in one transaction and removes its
// tracking row. Rolling back a migration that is not recorded is a no-op
// that returns false.
func (e *Executor) Rollback(ctx context.Context, m Migration) (bool, error) {
	rolledBack := false
	err := e.withLock(ctx, func(conn *pgxpool.Conn) error {
		var status string
		err := conn.QueryRow(ctx, "SELECT status FROM schema_migrations WHERE version = $1", m.Version).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}

		if err := runStatements(ctx, conn, m.Down); err != nil {
			return &runtime.MigrationError{Version: m.Version, Message: "rollback failed", Err: err}
		}
		if _, err := conn.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", m.Version); err != nil {
			return fmt.Errorf("failed to delete migration record: %w", err)
		}
		rolledBack = true
		return nil
	})
	return rolledBack, err
}

func runStatements(ctx context.Context, conn *pgxpool.Conn, stmts []string) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d failed: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
