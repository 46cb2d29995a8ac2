package builder

import (
	"context"
	"fmt"
	"strings"
)

// DeleteQuery deletes matching rows and returns them.
type DeleteQuery[T any] struct {
	target[T]
	where []Condition
}

// Where adds a condition, ANDed with any added before.
func (q *DeleteQuery[T]) Where(c Condition) *DeleteQuery[T] {
	q.where = append(q.where, c)
	return q
}

// ToSQL renders the statement. A DELETE without conditions is refused.
func (q *DeleteQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if len(q.where) == 0 {
		return "", nil, fmt.Errorf("refusing to DELETE FROM %s without a WHERE clause", q.table.Name)
	}

	var b strings.Builder
	var p params
	b.WriteString("DELETE FROM " + q.table.Name)
	if err := writeWhere(&b, &p, q.where); err != nil {
		return "", nil, err
	}
	b.WriteString(" RETURNING *")
	return b.String(), p.args, nil
}

// All runs the delete and returns the deleted rows, empty when none matched.
func (q *DeleteQuery[T]) All(ctx context.Context) ([]T, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}
	return collect[T](ctx, q.db, q.table, sql, args)
}
