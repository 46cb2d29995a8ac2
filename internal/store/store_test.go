package store

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/pkg/builder"
	"github.com/marshallshelly/cultivar/pkg/runtime"
	"github.com/marshallshelly/cultivar/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float32p(v float32) *float32 { return &v }

func whereSQL(t *testing.T, cond builder.Condition) (string, []interface{}) {
	t.Helper()
	sql, args, err := builder.WhereClause(cond)
	require.NoError(t, err)
	return sql, args
}

func TestGrowerCondition(t *testing.T) {
	tests := []struct {
		name     string
		c        GrowerCriterion
		wantSQL  string
		wantArgs []interface{}
	}{
		{"id", GrowerID(3), "WHERE growers.id = $1", []interface{}{int32(3)}},
		{"name", GrowerName("Tegridy"), "WHERE growers.name ILIKE $1", []interface{}{"%Tegridy%"}},
		{"name escapes wildcards", GrowerName("50%_off"), "WHERE growers.name ILIKE $1", []interface{}{`%50\%\_off%`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, ok := growerCondition(tt.c)
			require.True(t, ok)
			sql, args := whereSQL(t, cond)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}

	_, ok := growerCondition(nil)
	assert.False(t, ok, "nil criterion falls back to all")
}

func TestStrainCondition(t *testing.T) {
	cond, ok := strainCondition(StrainSpecies(models.Sativa))
	require.True(t, ok)
	sql, args := whereSQL(t, cond)
	assert.Equal(t, "WHERE strains.species = $1", sql)
	assert.Equal(t, []interface{}{models.Sativa}, args)

	cond, ok = strainCondition(StrainName("og"))
	require.True(t, ok)
	_, args = whereSQL(t, cond)
	assert.Equal(t, []interface{}{"%og%"}, args)

	_, ok = strainCondition(nil)
	assert.False(t, ok)
}

func TestTerpenesCondition(t *testing.T) {
	cond, ok := terpenesCondition(TerpenesBatchID(4))
	require.True(t, ok)
	sql, args := whereSQL(t, cond)
	assert.Equal(t, "WHERE terpenes.batch_id = $1", sql)
	assert.Equal(t, []interface{}{int32(4)}, args)
}

func TestBatchCondition(t *testing.T) {
	harvest := schema.NewDate(2024, time.May, 2)

	tests := []struct {
		name     string
		c        BatchCriterion
		wantSQL  string
		wantArgs []interface{}
	}{
		{"id", BatchID(1), "WHERE batches.id = $1", []interface{}{int32(1)}},
		{"strain id", BatchStrainID(3), "WHERE batches.strain_id = $1", []interface{}{int32(3)}},
		{"grower id", BatchGrowerID(3), "WHERE batches.grower_id = $1", []interface{}{int32(3)}},
		{"harvest date", HarvestDate(harvest), "WHERE batches.harvest_date = $1", []interface{}{harvest}},
		{"final test date", FinalTestDate(harvest), "WHERE batches.final_test_date = $1", []interface{}{harvest}},
		{"package date", PackageDate(harvest), "WHERE batches.package_date = $1", []interface{}{harvest}},
		{"thc exact", THCContent(22.9), "WHERE batches.thc_content = $1", []interface{}{float32(22.9)}},
		{"cbd exact", CBDContent(0.2), "WHERE batches.cbd_content = $1", []interface{}{float32(0.2)}},
		{"thc range", THCRange{Min: float32p(20), Max: float32p(25)}, "WHERE batches.thc_content BETWEEN $1 AND $2", []interface{}{float32(20), float32(25)}},
		{"cbd min only", CBDRange{Min: float32p(1)}, "WHERE batches.cbd_content >= $1", []interface{}{float32(1)}},
		{"thc max only", THCRange{Max: float32p(15)}, "WHERE batches.thc_content <= $1", []interface{}{float32(15)}},
		{"strain name", BatchStrainName("OG"), "WHERE strains.name ILIKE $1", []interface{}{"%OG%"}},
		{"grower name", BatchGrowerName("summa"), "WHERE growers.name ILIKE $1", []interface{}{"%summa%"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, ok := batchCondition(tt.c)
			require.True(t, ok)
			sql, args := whereSQL(t, cond)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}

	for _, c := range []BatchCriterion{nil, THCRange{}, CBDRange{}} {
		_, ok := batchCondition(c)
		assert.False(t, ok, "%#v falls back to all", c)
	}
}

func TestBatchViewSQL(t *testing.T) {
	view := BatchView{db: builder.New(nil)}
	const joined = "SELECT strains.name AS strain, batches.harvest_date, batches.final_test_date, batches.package_date, " +
		"growers.name AS grower, batches.thc_content, batches.cbd_content " +
		"FROM batches INNER JOIN strains ON strains.id = batches.strain_id " +
		"INNER JOIN growers ON growers.id = batches.grower_id"

	sql, args, err := view.query().ToSQL()
	require.NoError(t, err)
	assert.Equal(t, joined+" ORDER BY batches.id ASC", sql)
	assert.Empty(t, args)

	cond, _ := batchCondition(BatchGrowerID(3))
	sql, args, err = view.query().Where(cond).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, joined+" WHERE batches.grower_id = $1 ORDER BY batches.id ASC", sql)
	assert.Equal(t, []interface{}{int32(3)}, args)
}

func TestBatchFilterSQL(t *testing.T) {
	cond, _ := batchCondition(BatchStrainName("og"))
	q := joinNames(builder.Select[models.Batch](builder.New(nil))).
		Columns("batches.*").
		Where(cond).
		OrderByAsc(batchCol("ID"))

	sql, args, err := q.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT batches.* FROM batches "+
		"INNER JOIN strains ON strains.id = batches.strain_id "+
		"INNER JOIN growers ON growers.id = batches.grower_id "+
		"WHERE strains.name ILIKE $1 ORDER BY batches.id ASC", sql)
	assert.Equal(t, []interface{}{"%og%"}, args)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "not_found", outcome(runtime.NotFound("grower.delete", "grower %d", 1)))
	assert.Equal(t, "foreign_key", outcome(runtime.NewPersistenceError("batch.create", &pgconn.PgError{Code: "23503"})))
	assert.Equal(t, "unknown", outcome(errors.New("boom")))
}
