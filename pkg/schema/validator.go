package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidateDefaultValue rejects common misspellings of SQL default expressions.
func ValidateDefaultValue(defaultVal string) error {
	upperVal := strings.ToUpper(strings.TrimSpace(defaultVal))

	commonMistakes := map[string]string{
		"CURRENT TIMESTAMP": "CURRENT_TIMESTAMP",
		"CURRENT DATE":      "CURRENT_DATE",
		"NOW ()":            "NOW()",
	}
	for mistake, correct := range commonMistakes {
		if strings.Contains(upperVal, mistake) {
			return fmt.Errorf("invalid DEFAULT value %q: use %s instead of %s", defaultVal, correct, mistake)
		}
	}
	return nil
}

// ValidateTables checks a set of tables for consistency: every table has a
// primary key, every foreign key points at a known table and column, and enum
// types with the same name agree on their labels.
func ValidateTables(tables []*TableMetadata) error {
	byName := make(map[string]*TableMetadata, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	enums := make(map[string][]string)
	var errs []error

	for _, t := range tables {
		if t.PrimaryKey == nil {
			errs = append(errs, fmt.Errorf("table %s: no primary key", t.Name))
		}
		for _, fk := range t.ForeignKeys {
			ref, ok := byName[fk.ReferencedTable]
			if !ok {
				errs = append(errs, fmt.Errorf("table %s: foreign key %s references unknown table %s", t.Name, fk.Name, fk.ReferencedTable))
				continue
			}
			for _, col := range fk.ReferencedColumns {
				if ref.GetColumnByName(col) == nil {
					errs = append(errs, fmt.Errorf("table %s: foreign key %s references unknown column %s.%s", t.Name, fk.Name, ref.Name, col))
				}
			}
		}
		for _, e := range t.Enums {
			prev, seen := enums[e.Name]
			if seen && strings.Join(prev, ",") != strings.Join(e.Values, ",") {
				errs = append(errs, fmt.Errorf("enum %s declared with different values", e.Name))
			}
			enums[e.Name] = e.Values
		}
	}

	return errors.Join(errs...)
}
