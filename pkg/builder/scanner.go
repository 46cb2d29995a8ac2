package builder

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/marshallshelly/cultivar/pkg/runtime"
	"github.com/marshallshelly/cultivar/pkg/schema"
)

// collect runs sql and scans every row into a T, matching result columns to
// fields by column name. Result columns with no field are discarded.
func collect[T any](ctx context.Context, d *DB, table *schema.TableMetadata, sql string, args []any) ([]T, error) {
	if d == nil || d.db == nil {
		return nil, runtime.ErrNoConnection
	}
	rows, err := d.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	var plan []int // result column -> struct field index, -1 to discard
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		var item T
		dest := reflect.ValueOf(&item).Elem()
		if plan == nil {
			plan = scanPlan(row.FieldDescriptions(), table)
		}
		targets := make([]any, len(plan))
		for i, field := range plan {
			if field < 0 {
				targets[i] = new(any)
				continue
			}
			targets[i] = dest.Field(field).Addr().Interface()
		}
		if err := row.Scan(targets...); err != nil {
			return item, fmt.Errorf("failed to scan %s row: %w", table.Name, err)
		}
		return item, nil
	})
	if err != nil {
		return nil, &runtime.QueryError{Query: sql, Err: err}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func scanPlan(fields []pgconn.FieldDescription, table *schema.TableMetadata) []int {
	plan := make([]int, len(fields))
	for i, fd := range fields {
		plan[i] = -1
		if col := table.GetColumnByName(fd.Name); col != nil {
			if f, ok := table.GoType.FieldByName(col.GoField); ok && len(f.Index) == 1 {
				plan[i] = f.Index[0]
			}
		}
	}
	return plan
}
