// Package schema derives table metadata from `po` struct tags.
package schema

import (
	"reflect"
)

// TableMetadata describes one table derived from a Go struct.
type TableMetadata struct {
	Name        string
	GoType      reflect.Type
	Columns     []ColumnMetadata
	PrimaryKey  *PrimaryKeyMetadata
	ForeignKeys []ForeignKeyMetadata
	Enums       []EnumType
}

// ColumnMetadata describes one column.
type ColumnMetadata struct {
	Name          string
	GoField       string
	GoType        reflect.Type
	SQLType       string
	Nullable      bool
	Default       *string
	Unique        bool
	AutoIncrement bool
	Position      int
	// Enum names the Postgres enum type backing the column, if any.
	Enum string
}

// PrimaryKeyMetadata describes the primary key constraint.
type PrimaryKeyMetadata struct {
	Name    string
	Columns []string
}

// ForeignKeyMetadata describes a single-column foreign key.
type ForeignKeyMetadata struct {
	Name              string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          ReferenceAction
	OnUpdate          ReferenceAction
}

// ReferenceAction is a foreign key ON DELETE / ON UPDATE action.
type ReferenceAction string

const (
	NoAction   ReferenceAction = "NO ACTION"
	Restrict   ReferenceAction = "RESTRICT"
	Cascade    ReferenceAction = "CASCADE"
	SetNull    ReferenceAction = "SET NULL"
	SetDefault ReferenceAction = "SET DEFAULT"
)

// EnumType is a Postgres enum type referenced by a column.
type EnumType struct {
	Name   string
	Values []string
}

// Enum is implemented by Go types stored in a Postgres enum column.
// EnumValues must be callable on the zero value and returns the labels in
// declaration order.
type Enum interface {
	EnumValues() []string
}

// GetColumnByName returns the column with the given name, or nil.
func (t *TableMetadata) GetColumnByName(name string) *ColumnMetadata {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// GetColumnByField returns the column mapped to a Go struct field, or nil.
func (t *TableMetadata) GetColumnByField(field string) *ColumnMetadata {
	for i := range t.Columns {
		if t.Columns[i].GoField == field {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns all column names in declaration order.
func (t *TableMetadata) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// PrimaryKeyColumn returns the single primary key column, or nil when the
// table has none or a composite key.
func (t *TableMetadata) PrimaryKeyColumn() *ColumnMetadata {
	if t.PrimaryKey == nil || len(t.PrimaryKey.Columns) != 1 {
		return nil
	}
	return t.GetColumnByName(t.PrimaryKey.Columns[0])
}

// IsPrimaryKey reports whether the named column is part of the primary key.
func (t *TableMetadata) IsPrimaryKey(column string) bool {
	if t.PrimaryKey == nil {
		return false
	}
	for _, c := range t.PrimaryKey.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// References returns the tables this table points at through foreign keys.
func (t *TableMetadata) References() []string {
	refs := make([]string, 0, len(t.ForeignKeys))
	for _, fk := range t.ForeignKeys {
		refs = append(refs, fk.ReferencedTable)
	}
	return refs
}
