package migration

import (
	"fmt"
	"strings"

	"github.com/marshallshelly/cultivar/pkg/schema"
)

// SchemaVersion is the version recorded for the schema created from the models.
const SchemaVersion = "0001"

type PlannerOptions struct {
	// IfNotExists makes every CREATE tolerate an object that already exists.
	IfNotExists bool
}

// Planner renders table metadata as DDL.
type Planner struct {
	options PlannerOptions
}

// NewPlanner returns a planner whose statements can be re-run safely.
func NewPlanner() *Planner {
	return &Planner{options: PlannerOptions{IfNotExists: true}}
}

func NewPlannerWithOptions(opts PlannerOptions) *Planner {
	return &Planner{options: opts}
}

// Plan builds the migration creating tables, which must already be in
// dependency order. Enum types are created before the tables using them and
// dropped after them.
func (p *Planner) Plan(tables []*schema.TableMetadata) (Migration, error) {
	if err := schema.ValidateTables(tables); err != nil {
		return Migration{}, fmt.Errorf("invalid schema: %w", err)
	}

	m := Migration{Version: SchemaVersion, Name: "create_schema"}

	seen := make(map[string]bool)
	var enums []schema.EnumType
	for _, table := range tables {
		for _, e := range table.Enums {
			if !seen[e.Name] {
				seen[e.Name] = true
				enums = append(enums, e)
			}
		}
	}

	for _, e := range enums {
		m.Up = append(m.Up, p.createEnum(e))
	}
	for _, table := range tables {
		m.Up = append(m.Up, p.createTable(table))
	}

	for i := len(tables) - 1; i >= 0; i-- {
		m.Down = append(m.Down, "DROP TABLE IF EXISTS "+tables[i].Name+";")
	}
	for i := len(enums) - 1; i >= 0; i-- {
		m.Down = append(m.Down, "DROP TYPE IF EXISTS "+enums[i].Name+";")
	}

	return m, nil
}

func (p *Planner) createTable(table *schema.TableMetadata) string {
	var inlinePK string
	if pk := table.PrimaryKey; pk != nil && len(pk.Columns) == 1 {
		inlinePK = pk.Columns[0]
	}

	lines := make([]string, 0, len(table.Columns)+len(table.ForeignKeys)+1)
	for _, col := range table.Columns {
		def := columnDef(col)
		if col.Name == inlinePK {
			def += " PRIMARY KEY"
		}
		lines = append(lines, def)
	}
	if pk := table.PrimaryKey; pk != nil && len(pk.Columns) > 1 {
		lines = append(lines, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", pk.Name, strings.Join(pk.Columns, ", ")))
	}
	for _, fk := range table.ForeignKeys {
		lines = append(lines, foreignKeyDef(fk))
	}

	verb := "CREATE TABLE"
	if p.options.IfNotExists {
		verb += " IF NOT EXISTS"
	}
	return fmt.Sprintf("%s %s (\n    %s\n);", verb, table.Name, strings.Join(lines, ",\n    "))
}

func columnDef(col schema.ColumnMetadata) string {
	def := col.Name + " " + col.SQLType
	if !col.Nullable {
		def += " NOT NULL"
	}
	if col.Default != nil {
		def += " DEFAULT " + *col.Default
	}
	if col.Unique {
		def += " UNIQUE"
	}
	return def
}

func foreignKeyDef(fk schema.ForeignKeyMetadata) string {
	def := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		fk.Name, strings.Join(fk.Columns, ", "), fk.ReferencedTable, strings.Join(fk.ReferencedColumns, ", "))
	if fk.OnDelete != "" && fk.OnDelete != schema.NoAction {
		def += " ON DELETE " + string(fk.OnDelete)
	}
	if fk.OnUpdate != "" && fk.OnUpdate != schema.NoAction {
		def += " ON UPDATE " + string(fk.OnUpdate)
	}
	return def
}

// createEnum renders CREATE TYPE ... AS ENUM. Postgres has no CREATE TYPE IF
// NOT EXISTS, so the guarded form swallows duplicate_object instead.
func (p *Planner) createEnum(e schema.EnumType) string {
	labels := make([]string, len(e.Values))
	for i, v := range e.Values {
		labels[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	stmt := fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", e.Name, strings.Join(labels, ", "))
	if !p.options.IfNotExists {
		return stmt
	}
	return "DO $$ BEGIN\n    " + stmt + "\nEXCEPTION\n    WHEN duplicate_object THEN null;\nEND $$;"
}
