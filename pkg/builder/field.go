package builder

import (
	"github.com/marshallshelly/cultivar/pkg/registry"
	"github.com/marshallshelly/cultivar/pkg/schema"
)

func tableOf[T any]() *schema.TableMetadata {
	var zero T
	table, err := registry.Lookup(zero)
	if err != nil {
		return nil
	}
	return table
}

// Col returns the column behind a Go field of T, so criteria name columns
// through the struct tags rather than string literals.
//
//	builder.Eq(builder.Col[models.Grower]("Name"), "Tegridy Farms")
//
// An unknown field is returned unchanged and fails at query time.
func Col[T any](goField string) string {
	if table := tableOf[T](); table != nil {
		if col := table.GetColumnByField(goField); col != nil {
			return col.Name
		}
	}
	return goField
}

// QCol is Col qualified with T's table, for joined queries.
func QCol[T any](goField string) string {
	if table := tableOf[T](); table != nil {
		return table.Name + "." + Col[T](goField)
	}
	return goField
}

// Table returns the table registered for T, or "" if T is not a model.
func Table[T any]() string {
	if table := tableOf[T](); table != nil {
		return table.Name
	}
	return ""
}
