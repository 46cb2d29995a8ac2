package builder

import (
	"context"
	"strings"
)

// SelectQuery is a SELECT over T's table, or over an explicit source when T
// is a projection.
type SelectQuery[T any] struct {
	target[T]
	from    string
	columns []string
	joins   []join
	where   []Condition
	orderBy []string
}

// From replaces T's table as the FROM source. Used when T describes a
// projection rather than a table, e.g. a join view.
func (q *SelectQuery[T]) From(source string) *SelectQuery[T] {
	q.from = source
	return q
}

func (q *SelectQuery[T]) Columns(cols ...string) *SelectQuery[T] {
	q.columns = cols
	return q
}

// Where adds a condition, ANDed with any added before.
func (q *SelectQuery[T]) Where(c Condition) *SelectQuery[T] {
	q.where = append(q.where, c)
	return q
}

func (q *SelectQuery[T]) InnerJoin(table, on string) *SelectQuery[T] {
	q.joins = append(q.joins, join{table: table, on: on})
	return q
}

// OrderByAsc adds an ascending sort key after any added before.
func (q *SelectQuery[T]) OrderByAsc(column string) *SelectQuery[T] {
	q.orderBy = append(q.orderBy, column+" ASC")
	return q
}

// ToSQL renders the statement and its bind values.
func (q *SelectQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}

	var b strings.Builder
	var p params

	b.WriteString("SELECT ")
	if len(q.columns) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(q.columns, ", "))
	}

	b.WriteString(" FROM ")
	if q.from != "" {
		b.WriteString(q.from)
	} else {
		b.WriteString(q.table.Name)
	}

	for _, j := range q.joins {
		b.WriteString(" INNER JOIN " + j.table + " ON " + j.on)
	}
	if err := writeWhere(&b, &p, q.where); err != nil {
		return "", nil, err
	}
	if len(q.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBy, ", "))
	}

	return b.String(), p.args, nil
}

// All runs the query. An empty result is an empty, non-nil slice.
func (q *SelectQuery[T]) All(ctx context.Context) ([]T, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}
	return collect[T](ctx, q.db, q.table, sql, args)
}
