// Package builder renders parameterized SELECT, INSERT and DELETE statements
// for tagged structs and scans the results back into them.
package builder

// Operator is a comparison rendered between a column and its placeholders.
type Operator string

const (
	OpEqual              Operator = "="
	OpGreaterThanOrEqual Operator = ">="
	OpLessThanOrEqual    Operator = "<="
	// OpILike is the case-insensitive LIKE.
	OpILike   Operator = "ILIKE"
	OpBetween Operator = "BETWEEN"
)

// Condition is one predicate on a column. Conditions passed together are
// joined with AND; every value is bound as a parameter.
type Condition struct {
	Column   string
	Operator Operator
	Values   []any
}

// join is an INNER JOIN of table on a boolean expression.
type join struct {
	table string
	on    string
}
