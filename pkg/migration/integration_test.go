//go:build integration
// +build integration

package migration

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marshallshelly/cultivar/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorLifecycle(t *testing.T) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, testdb.Start(t))
	require.NoError(t, err)
	defer pool.Close()

	tables := testTables()
	m, err := NewPlanner().Plan(tables)
	require.NoError(t, err)

	executor := NewExecutor(pool)
	require.NoError(t, executor.Initialize(ctx))

	status, err := executor.Status(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status.Status)

	drift, err := NewIntrospector(pool).Drift(ctx, tables)
	require.NoError(t, err)
	assert.Len(t, drift, 3)

	applied, err := executor.Apply(ctx, m)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = executor.Apply(ctx, m)
	require.NoError(t, err)
	assert.False(t, applied, "second apply is a no-op")

	status, err = executor.Status(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, status.Status)
	assert.Equal(t, m.Checksum(), status.Checksum)
	assert.NotNil(t, status.AppliedAt)
	assert.False(t, status.Stale(m))

	drift, err = NewIntrospector(pool).Drift(ctx, tables)
	require.NoError(t, err)
	assert.Empty(t, drift)

	rolledBack, err := executor.Rollback(ctx, m)
	require.NoError(t, err)
	assert.True(t, rolledBack)

	record, err := executor.Record(ctx, m.Version)
	require.NoError(t, err)
	assert.Nil(t, record)

	drift, err = NewIntrospector(pool).Drift(ctx, tables)
	require.NoError(t, err)
	assert.Len(t, drift, 3)
}

func TestExecutorRecordsFailure(t *testing.T) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, testdb.Start(t))
	require.NoError(t, err)
	defer pool.Close()

	executor := NewExecutor(pool)
	require.NoError(t, executor.Initialize(ctx))

	bad := Migration{Version: "0002", Name: "broken", Up: []string{"CREATE TABLE ok (id int);", "CREATE TABLE nope ("}}
	_, err = executor.Apply(ctx, bad)
	require.Error(t, err)

	record, err := executor.Record(ctx, "0002")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, StatusFailed, record.Status)
	require.NotNil(t, record.Error)

	var exists bool
	require.NoError(t, pool.QueryRow(ctx, "SELECT to_regclass('public.ok') IS NOT NULL").Scan(&exists))
	assert.False(t, exists, "failed migration must not leave partial changes")
}
