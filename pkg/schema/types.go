package schema

import (
	"reflect"
	"time"
)

var (
	timeType = reflect.TypeOf(time.Time{})
	dateType = reflect.TypeOf(Date{})
)

// kindTypes is the column type inferred for a field whose tag names none.
var kindTypes = map[reflect.Kind]string{
	reflect.Bool:    "boolean",
	reflect.Int16:   "smallint",
	reflect.Int32:   "integer",
	reflect.Int:     "integer",
	reflect.Int64:   "bigint",
	reflect.Float32: "real",
	reflect.Float64: "double precision",
	reflect.String:  "text",
}

// inferSQLType returns the Postgres type for t, looking through one pointer.
// It returns "" when the tag has to name the type.
func inferSQLType(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t {
	case dateType:
		return "date"
	case timeType:
		return "timestamp with time zone"
	}
	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		return "bytea"
	}
	return kindTypes[t.Kind()]
}

// holdsNull reports whether a field of type t can carry SQL NULL.
func holdsNull(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr
}
