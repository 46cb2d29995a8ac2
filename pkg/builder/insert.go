package builder

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// InsertQuery inserts one row and reads it back with RETURNING *.
type InsertQuery[T any] struct {
	target[T]
	row T
}

// ToSQL renders the statement. A serial primary key is left to the
// database, as is any zero-valued column with a default.
func (q *InsertQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}

	row := reflect.ValueOf(q.row)
	if row.Kind() != reflect.Struct {
		return "", nil, fmt.Errorf("insert into %s: row must be a struct, got %s", q.table.Name, row.Kind())
	}

	var (
		p            params
		columns      []string
		placeholders []string
	)
	for _, col := range q.table.Columns {
		field := row.FieldByName(col.GoField)
		if col.AutoIncrement && q.table.IsPrimaryKey(col.Name) {
			continue
		}
		if col.Default != nil && field.IsZero() {
			continue
		}
		columns = append(columns, col.Name)
		placeholders = append(placeholders, p.bind(field.Interface()))
	}
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("insert into %s: no columns to write", q.table.Name)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		q.table.Name, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	return sql, p.args, nil
}

// One runs the insert and returns the stored row, including the values the
// database assigned.
func (q *InsertQuery[T]) One(ctx context.Context) (T, error) {
	var zero T
	sql, args, err := q.ToSQL()
	if err != nil {
		return zero, err
	}
	rows, err := collect[T](ctx, q.db, q.table, sql, args)
	if err != nil {
		return zero, err
	}
	if len(rows) != 1 {
		return zero, fmt.Errorf("insert into %s returned %d rows", q.table.Name, len(rows))
	}
	return rows[0], nil
}
