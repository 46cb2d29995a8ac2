package builder

import (
	"fmt"
	"strconv"
	"strings"
)

// params collects bind values and hands out their $n placeholders.
type params struct {
	args []any
}

func (p *params) bind(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

func (c Condition) render(p *params) (string, error) {
	if c.Column == "" {
		return "", fmt.Errorf("condition has no column")
	}

	switch c.Operator {
	case OpEqual, OpGreaterThanOrEqual, OpLessThanOrEqual, OpILike:
		if len(c.Values) != 1 {
			return "", fmt.Errorf("%s on %s takes one value, got %d", c.Operator, c.Column, len(c.Values))
		}
		return fmt.Sprintf("%s %s %s", c.Column, c.Operator, p.bind(c.Values[0])), nil

	case OpBetween:
		if len(c.Values) != 2 {
			return "", fmt.Errorf("BETWEEN on %s takes [min, max]", c.Column)
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", c.Column, p.bind(c.Values[0]), p.bind(c.Values[1])), nil
	}
	return "", fmt.Errorf("unknown operator: %s", c.Operator)
}

// writeWhere appends " WHERE ..." for conds, if any.
func writeWhere(b *strings.Builder, p *params, conds []Condition) error {
	for i, c := range conds {
		sql, err := c.render(p)
		if err != nil {
			return fmt.Errorf("failed to build WHERE clause: %w", err)
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(sql)
	}
	return nil
}

// WhereClause renders conds as a standalone WHERE clause numbered from $1.
func WhereClause(conds ...Condition) (string, []any, error) {
	var b strings.Builder
	var p params
	if err := writeWhere(&b, &p, conds); err != nil {
		return "", nil, err
	}
	return strings.TrimPrefix(b.String(), " "), p.args, nil
}

func Eq(column string, value any) Condition {
	return Condition{Column: column, Operator: OpEqual, Values: []any{value}}
}

func Gte(column string, value any) Condition {
	return Condition{Column: column, Operator: OpGreaterThanOrEqual, Values: []any{value}}
}

func Lte(column string, value any) Condition {
	return Condition{Column: column, Operator: OpLessThanOrEqual, Values: []any{value}}
}

// Between is inclusive at both ends.
func Between(column string, lo, hi any) Condition {
	return Condition{Column: column, Operator: OpBetween, Values: []any{lo, hi}}
}

// Contains matches rows whose column contains text, ignoring case. The text is
// matched literally: LIKE metacharacters in it are escaped.
func Contains(column string, text string) Condition {
	return Condition{Column: column, Operator: OpILike, Values: []any{"%" + EscapeLike(text) + "%"}}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE metacharacters in s using the default backslash escape.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
