package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// StructTagKey is the struct tag read by the parser, e.g. `po:"name,varchar,notNull"`.
const StructTagKey = "po"

// Parser turns tagged structs into TableMetadata. It is not safe for
// concurrent use; the registry serializes access.
type Parser struct {
	cache map[reflect.Type]*TableMetadata
}

func NewParser() *Parser {
	return &Parser{cache: make(map[reflect.Type]*TableMetadata)}
}

var tableNames sync.Map // struct name -> table name

// RegisterTableName maps a struct name onto its table. Unregistered structs
// use their snake_case name.
//
//	func init() {
//	    schema.RegisterTableName("Grower", "growers")
//	}
func RegisterTableName(structName, tableName string) {
	tableNames.Store(structName, tableName)
}

func tableNameFor(t reflect.Type) string {
	if name, ok := tableNames.Load(t.Name()); ok {
		return name.(string)
	}
	return toSnakeCase(t.Name())
}

// Parse extracts the table described by modelType, which must be a struct or
// a pointer to one. Fields without a po tag, or tagged "-", are skipped.
func (p *Parser) Parse(modelType reflect.Type) (*TableMetadata, error) {
	for modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}
	if table, ok := p.cache[modelType]; ok {
		return table, nil
	}

	table := &TableMetadata{Name: tableNameFor(modelType), GoType: modelType}
	for i := range modelType.NumField() {
		field := modelType.Field(i)
		raw, ok := field.Tag.Lookup(StructTagKey)
		if !field.IsExported() || !ok || raw == "" || raw == "-" {
			continue
		}
		if err := table.addField(field, i, raw); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", modelType.Name(), field.Name, err)
		}
	}

	p.cache[modelType] = table
	return table, nil
}

func (t *TableMetadata) addField(field reflect.StructField, position int, raw string) error {
	tg, err := parseTag(raw)
	if err != nil {
		return err
	}

	col := ColumnMetadata{
		Name:          tg.column,
		GoField:       field.Name,
		GoType:        field.Type,
		Position:      position,
		Nullable:      holdsNull(field.Type) || !(tg.has("notNull") || tg.has("primaryKey")),
		Unique:        tg.has("unique"),
		AutoIncrement: tg.has("serial") || tg.has("autoIncrement"),
	}

	if tg.has("enum") {
		col.Enum = tg.value("enum")
		if col.Enum == "" {
			return fmt.Errorf("enum option requires a type name")
		}
		enum, err := enumFor(field.Type, col.Enum)
		if err != nil {
			return err
		}
		t.Enums = append(t.Enums, enum)
		col.SQLType = col.Enum
	} else if col.SQLType = tg.sqlType(); col.SQLType == "" {
		col.SQLType = inferSQLType(field.Type)
	}
	if col.SQLType == "" {
		return fmt.Errorf("no SQL type for Go type %s", field.Type)
	}

	if def := tg.value("default"); def != "" {
		if err := ValidateDefaultValue(def); err != nil {
			return err
		}
		col.Default = &def
	}

	if tg.has("primaryKey") {
		if t.PrimaryKey == nil {
			t.PrimaryKey = &PrimaryKeyMetadata{Name: t.Name + "_pkey"}
		}
		t.PrimaryKey.Columns = append(t.PrimaryKey.Columns, col.Name)
	}
	if fk, ok := tg.foreignKey(t.Name); ok {
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}

	t.Columns = append(t.Columns, col)
	return nil
}

func enumFor(goType reflect.Type, name string) (EnumType, error) {
	for goType.Kind() == reflect.Ptr {
		goType = goType.Elem()
	}
	e, ok := reflect.Zero(goType).Interface().(Enum)
	if !ok {
		return EnumType{}, fmt.Errorf("type %s backs enum %s but does not implement schema.Enum", goType, name)
	}
	values := e.EnumValues()
	if len(values) == 0 {
		return EnumType{}, fmt.Errorf("enum %s has no values", name)
	}
	return EnumType{Name: name, Values: values}, nil
}

// tag is a parsed po tag: the column name followed by options written as
// flag, key(value) or key:value.
type tag struct {
	column string
	opts   map[string]string
}

func parseTag(raw string) (tag, error) {
	parts := splitTag(raw)
	if len(parts) == 0 || parts[0] == "" {
		return tag{}, fmt.Errorf("empty tag value")
	}

	tg := tag{column: parts[0], opts: make(map[string]string, len(parts)-1)}
	for _, opt := range parts[1:] {
		if key, rest, ok := strings.Cut(opt, "("); ok {
			value, closed := strings.CutSuffix(rest, ")")
			if !closed {
				return tag{}, fmt.Errorf("invalid option format: %s", opt)
			}
			tg.opts[key] = value
			continue
		}
		key, value, _ := strings.Cut(opt, ":")
		tg.opts[key] = value
	}
	return tg, nil
}

func (tg tag) has(key string) bool {
	_, ok := tg.opts[key]
	return ok
}

func (tg tag) value(key string) string {
	return tg.opts[key]
}

// tagTypes are the type names accepted as tag options, in lookup order.
var tagTypes = []string{
	"varchar", "text", "char", "uuid",
	"smallint", "integer", "int4", "bigint", "serial", "bigserial",
	"numeric", "decimal", "real", "float4", "double precision",
	"boolean", "bool",
	"date", "time", "timestamp", "timestamptz", "interval",
	"bytea",
}

// sqlType returns the column type named in the tag, with its modifier if
// one was given, e.g. varchar(64).
func (tg tag) sqlType() string {
	for _, name := range tagTypes {
		mod, ok := tg.opts[name]
		if !ok {
			continue
		}
		if mod != "" {
			return name + "(" + mod + ")"
		}
		return name
	}
	return ""
}

// foreignKey reads fk:table.column with optional onDelete(...) and onUpdate(...).
func (tg tag) foreignKey(table string) (ForeignKeyMetadata, bool) {
	refTable, refColumn, ok := strings.Cut(tg.value("fk"), ".")
	if !ok || refTable == "" || refColumn == "" {
		return ForeignKeyMetadata{}, false
	}
	return ForeignKeyMetadata{
		Name:              fmt.Sprintf("fk_%s_%s_%s", table, tg.column, refTable),
		Columns:           []string{tg.column},
		ReferencedTable:   refTable,
		ReferencedColumns: []string{refColumn},
		OnDelete:          referenceAction(tg.value("onDelete")),
		OnUpdate:          referenceAction(tg.value("onUpdate")),
	}, true
}

func referenceAction(action string) ReferenceAction {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(action), " ", "")) {
	case "CASCADE":
		return Cascade
	case "RESTRICT":
		return Restrict
	case "SETNULL":
		return SetNull
	case "SETDEFAULT":
		return SetDefault
	}
	return NoAction
}

// splitTag splits on commas outside parentheses, so numeric(10,2) stays whole.
func splitTag(raw string) []string {
	var parts []string
	depth, start := 0, 0
	for i, ch := range raw {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(raw[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(raw[start:]); rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
