package runtime

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config sizes the pool. Zero fields keep the pgxpool defaults or whatever
// the URL itself sets.
type Config struct {
	URL            string
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

// DB is the shared pgx pool. Each call takes a connection for one round trip.
type DB struct {
	pool *pgxpool.Pool
}

// Connect builds the pool and pings the server once, so a bad URL or an
// unreachable host fails at startup. Failures are *ConnectionError.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, &ConnectionError{Stage: "parse", Err: err}
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.ConnectTimeout > 0 {
		pc.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, &ConnectionError{Stage: "pool", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectionError{Stage: "ping", Err: err}
	}
	return &DB{pool: pool}, nil
}

// Pool exposes the pool to the migration executor, which needs a dedicated
// connection for its advisory lock.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping backs the readiness probe.
func (db *DB) Ping(ctx context.Context) error {
	if db == nil || db.pool == nil {
		return ErrNoConnection
	}
	return db.pool.Ping(ctx)
}

// Exec runs a statement and reports the affected row count.
func (db *DB) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := db.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, &QueryError{Query: sql, Err: err}
	}
	return tag.RowsAffected(), nil
}

// Query runs a statement that returns rows. The caller closes them, usually
// through pgx.CollectRows.
func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, &QueryError{Query: sql, Err: err}
	}
	return rows, nil
}
