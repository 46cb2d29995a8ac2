package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marshallshelly/cultivar/pkg/schema"
)

// Introspector inspects the live database schema.
type Introspector struct {
	pool *pgxpool.Pool
}

// NewIntrospector creates a new database introspector.
func NewIntrospector(pool *pgxpool.Pool) *Introspector {
	return &Introspector{pool: pool}
}

// DriftKind classifies a difference between the models and the database.
type DriftKind string

const (
	DriftMissingTable  DriftKind = "missing_table"
	DriftMissingColumn DriftKind = "missing_column"
	DriftMissingEnum   DriftKind = "missing_enum"
	DriftNullability   DriftKind = "nullability"
	DriftType          DriftKind = "type"
)

// Drift is one difference between the models and the database.
type Drift struct {
	Kind   DriftKind `json:"kind"`
	Table  string    `json:"table,omitempty"`
	Column string    `json:"column,omitempty"`
	Detail string    `json:"detail"`
}

func (d Drift) String() string {
	target := d.Table
	if d.Column != "" {
		target += "." + d.Column
	}
	if target == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Detail)
	}
	return fmt.Sprintf("%s %s: %s", d.Kind, target, d.Detail)
}

type liveColumn struct {
	udtName  string
	nullable bool
}

// Drift compares tables against the public schema. It reports what the
// models expect but the database lacks; extra database objects are ignored.
func (i *Introspector) Drift(ctx context.Context, tables []*schema.TableMetadata) ([]Drift, error) {
	live, err := i.columns(ctx)
	if err != nil {
		return nil, err
	}
	enums, err := i.enumTypes(ctx)
	if err != nil {
		return nil, err
	}
	return compareSchema(tables, live, enums), nil
}

func compareSchema(tables []*schema.TableMetadata, live map[string]map[string]liveColumn, enums map[string]bool) []Drift {
	var drift []Drift
	seenEnums := make(map[string]bool)

	for _, table := range tables {
		for _, e := range table.Enums {
			if !enums[e.Name] && !seenEnums[e.Name] {
				drift = append(drift, Drift{Kind: DriftMissingEnum, Detail: fmt.Sprintf("enum type %s does not exist", e.Name)})
			}
			seenEnums[e.Name] = true
		}

		cols, ok := live[table.Name]
		if !ok {
			drift = append(drift, Drift{Kind: DriftMissingTable, Table: table.Name, Detail: "table does not exist"})
			continue
		}
		for _, col := range table.Columns {
			lc, ok := cols[col.Name]
			if !ok {
				drift = append(drift, Drift{Kind: DriftMissingColumn, Table: table.Name, Column: col.Name, Detail: "column does not exist"})
				continue
			}
			if want := udtNameFor(col.SQLType); want != "" && want != lc.udtName {
				drift = append(drift, Drift{Kind: DriftType, Table: table.Name, Column: col.Name,
					Detail: fmt.Sprintf("expected %s, found %s", want, lc.udtName)})
			}
			if col.Nullable != lc.nullable {
				drift = append(drift, Drift{Kind: DriftNullability, Table: table.Name, Column: col.Name,
					Detail: fmt.Sprintf("expected nullable=%v", col.Nullable)})
			}
		}
	}
	return drift
}

// udtNameFor maps a declared SQL type onto information_schema.columns.udt_name.
// Unknown types (including enums) map to themselves.
func udtNameFor(sqlType string) string {
	base := strings.ToLower(sqlType)
	if idx := strings.Index(base, "("); idx != -1 {
		base = base[:idx]
	}
	switch base {
	case "serial", "integer", "int", "int4":
		return "int4"
	case "bigserial", "bigint", "int8":
		return "int8"
	case "smallint", "int2":
		return "int2"
	case "real", "float4":
		return "float4"
	case "double precision", "float8":
		return "float8"
	case "varchar", "character varying":
		return "varchar"
	case "boolean", "bool":
		return "bool"
	case "timestamp with time zone", "timestamptz":
		return "timestamptz"
	}
	return base
}

func (i *Introspector) columns(ctx context.Context) (map[string]map[string]liveColumn, error) {
	query := `
		SELECT table_name, column_name, udt_name, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public'
		ORDER BY table_name, ordinal_position
	`
	rows, err := i.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	defer rows.Close()

	live := make(map[string]map[string]liveColumn)
	for rows.Next() {
		var table, column, udt, nullable string
		if err := rows.Scan(&table, &column, &udt, &nullable); err != nil {
			return nil, err
		}
		if live[table] == nil {
			live[table] = make(map[string]liveColumn)
		}
		live[table][column] = liveColumn{udtName: udt, nullable: nullable == "YES"}
	}
	return live, rows.Err()
}

func (i *Introspector) enumTypes(ctx context.Context) (map[string]bool, error) {
	query := `
		SELECT t.typname
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE t.typtype = 'e' AND n.nspname = 'public'
	`
	rows, err := i.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read enum types: %w", err)
	}
	defer rows.Close()

	enums := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		enums[name] = true
	}
	return enums, rows.Err()
}
