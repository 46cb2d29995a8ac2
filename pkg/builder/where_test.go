package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name     string
		conds    []Condition
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "single equality",
			conds:    []Condition{Eq("name", "North")},
			wantSQL:  "WHERE name = $1",
			wantArgs: []any{"North"},
		},
		{
			name:     "upper bound",
			conds:    []Condition{Lte("moisture", 0.12)},
			wantSQL:  "WHERE moisture <= $1",
			wantArgs: []any{0.12},
		},
		{
			name:     "BETWEEN",
			conds:    []Condition{Between("weight", 18, 65)},
			wantSQL:  "WHERE weight BETWEEN $1 AND $2",
			wantArgs: []any{18, 65},
		},
		{
			name:     "numbering runs across conditions",
			conds:    []Condition{Eq("plot_id", 1), Between("weight", 1, 2), Gte("moisture", 3), Contains("name", "og")},
			wantSQL:  "WHERE plot_id = $1 AND weight BETWEEN $2 AND $3 AND moisture >= $4 AND name ILIKE $5",
			wantArgs: []any{1, 1, 2, 3, "%og%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := WhereClause(tt.conds...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestWhereClause_Empty(t *testing.T) {
	sql, args, err := WhereClause()
	require.NoError(t, err)
	assert.Empty(t, sql)
	assert.Empty(t, args)
}

func TestWhereClause_Errors(t *testing.T) {
	bad := []Condition{
		{Column: "a", Operator: OpBetween, Values: []any{1}},
		{Column: "a", Operator: Operator("IS NULL")},
		{Column: "a", Operator: OpEqual},
		{Column: "a", Operator: Operator("~~*"), Values: []any{1}},
		{Operator: OpEqual, Values: []any{1}},
	}
	for _, cond := range bad {
		_, _, err := WhereClause(cond)
		assert.Error(t, err, "condition %+v", cond)
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"og", "%og%"},
		{"OG Kush", "%OG Kush%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`back\slash`, `%back\\slash%`},
		{"", "%%"},
	}
	for _, tt := range tests {
		cond := Contains("name", tt.in)
		assert.Equal(t, OpILike, cond.Operator)
		assert.Equal(t, []any{tt.want}, cond.Values, "Contains(%q)", tt.in)
	}
}
