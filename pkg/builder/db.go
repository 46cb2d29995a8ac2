package builder

import (
	"github.com/marshallshelly/cultivar/pkg/registry"
	"github.com/marshallshelly/cultivar/pkg/runtime"
	"github.com/marshallshelly/cultivar/pkg/schema"
)

// DB runs built statements on a runtime.DB. A DB over nil can still render
// SQL, which is how the statement tests use it.
type DB struct {
	db *runtime.DB
}

func New(db *runtime.DB) *DB {
	return &DB{db: db}
}

// target is the table a statement reads or writes, resolved from T once.
type target[T any] struct {
	db    *DB
	table *schema.TableMetadata
	err   error
}

func targetOf[T any](d *DB) target[T] {
	var zero T
	table, err := registry.Lookup(zero)
	return target[T]{db: d, table: table, err: err}
}

// Select starts a SELECT * over T's table.
//
//	builder.Select[models.Grower](db).Where(builder.Eq("id", 3)).All(ctx)
func Select[T any](d *DB) *SelectQuery[T] {
	return &SelectQuery[T]{target: targetOf[T](d)}
}

// Insert starts an INSERT of one row of T.
func Insert[T any](d *DB, row T) *InsertQuery[T] {
	return &InsertQuery[T]{target: targetOf[T](d), row: row}
}

// Delete starts a DELETE over T's table. Rows are returned as deleted.
func Delete[T any](d *DB) *DeleteQuery[T] {
	return &DeleteQuery[T]{target: targetOf[T](d)}
}
