package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Species classifies a strain. It is stored in the species_enum column. The
// zero value is not a species, so a draft that never set one fails Validate.
type Species int

const (
	speciesUnset Species = iota
	Indica
	Sativa
	Hybrid
)

// speciesLabels[i] is the label of Species(i+1).
var speciesLabels = [...]string{"Indica", "Sativa", "Hybrid"}

// EnumValues lists the species_enum labels in declaration order.
func (Species) EnumValues() []string {
	return speciesLabels[:]
}

// Label returns the stored enum label, e.g. "Indica".
func (s Species) Label() string {
	if !s.Valid() {
		return fmt.Sprintf("Species(%d)", int(s))
	}
	return speciesLabels[s-1]
}

// String renders the species in lowercase.
func (s Species) String() string {
	return strings.ToLower(s.Label())
}

// Valid reports whether s is one of the declared species.
func (s Species) Valid() bool {
	return s >= Indica && s <= Hybrid
}

// ParseSpecies parses a species label, ignoring case.
func ParseSpecies(s string) (Species, error) {
	for i, label := range speciesLabels {
		if strings.EqualFold(strings.TrimSpace(s), label) {
			return Species(i + 1), nil
		}
	}
	return speciesUnset, fmt.Errorf("unknown species %q: want one of indica, sativa, hybrid", s)
}

func (s Species) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid species %d", int(s))
	}
	return json.Marshal(s.Label())
}

func (s *Species) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("species must be a string: %w", err)
	}
	parsed, err := ParseSpecies(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// TextValue implements pgtype.TextValuer. species_enum has no registered
// codec, so the label travels in text format.
func (s Species) TextValue() (pgtype.Text, error) {
	if !s.Valid() {
		return pgtype.Text{}, fmt.Errorf("invalid species %d", int(s))
	}
	return pgtype.Text{String: s.Label(), Valid: true}, nil
}

// ScanText implements pgtype.TextScanner.
func (s *Species) ScanText(v pgtype.Text) error {
	if !v.Valid {
		return fmt.Errorf("cannot scan NULL into Species")
	}
	parsed, err := ParseSpecies(v.String)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Scan implements sql.Scanner.
func (s *Species) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return s.ScanText(pgtype.Text{String: v, Valid: true})
	case []byte:
		return s.ScanText(pgtype.Text{String: string(v), Valid: true})
	}
	return fmt.Errorf("cannot scan %T into Species", src)
}

// Value implements driver.Valuer.
func (s Species) Value() (driver.Value, error) {
	t, err := s.TextValue()
	if err != nil {
		return nil, err
	}
	return t.String, nil
}
