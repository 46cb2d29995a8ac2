package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/marshallshelly/cultivar/pkg/migration"
	"github.com/marshallshelly/cultivar/pkg/runtime"
	"github.com/marshallshelly/cultivar/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecies(t *testing.T) {
	assert.Equal(t, "indica", Indica.String())
	assert.Equal(t, "sativa", Sativa.String())
	assert.Equal(t, "hybrid", Hybrid.String())
	assert.Equal(t, []string{"Indica", "Sativa", "Hybrid"}, Hybrid.EnumValues())

	for _, in := range []string{"hybrid", "HYBRID", " Hybrid "} {
		s, err := ParseSpecies(in)
		require.NoError(t, err, in)
		assert.Equal(t, Hybrid, s)
	}
	_, err := ParseSpecies("ruderalis")
	assert.Error(t, err)
	assert.False(t, Species(7).Valid())

	var unset Species
	assert.False(t, unset.Valid())
	assert.Equal(t, "Species(0)", unset.Label())
	_, err = json.Marshal(unset)
	assert.Error(t, err)
}

func TestSpeciesJSON(t *testing.T) {
	data, err := json.Marshal(Strain{ID: 1, Name: "Gaylord OG", Species: Indica})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Gaylord OG","species":"Indica"}`, string(data))

	var s NewStrain
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Wedding Cake","species":"hybrid"}`), &s))
	assert.Equal(t, Hybrid, s.Species)

	assert.Error(t, json.Unmarshal([]byte(`{"species":"tree"}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"species":2}`), &s))
}

func TestSpeciesText(t *testing.T) {
	v, err := Sativa.TextValue()
	require.NoError(t, err)
	assert.Equal(t, pgtype.Text{String: "Sativa", Valid: true}, v)

	var s Species
	require.NoError(t, s.ScanText(pgtype.Text{String: "Hybrid", Valid: true}))
	assert.Equal(t, Hybrid, s)
	assert.Error(t, s.ScanText(pgtype.Text{}))

	require.NoError(t, s.Scan([]byte("Indica")))
	assert.Equal(t, Indica, s)

	dv, err := Hybrid.Value()
	require.NoError(t, err)
	assert.Equal(t, "Hybrid", dv)
}

func TestDraftValidate(t *testing.T) {
	var verr *runtime.ValidationError

	assert.NoError(t, NewGrower{Name: "Tegridy Farms"}.Validate())
	assert.True(t, errors.As(NewGrower{Name: "  "}.Validate(), &verr))
	assert.Equal(t, "name", verr.Field)

	assert.NoError(t, NewStrain{Name: "Gaylord OG", Species: Indica}.Validate())
	assert.Error(t, NewStrain{Name: "Gaylord OG", Species: Species(9)}.Validate())

	err := NewStrain{Name: "Mystery Kush"}.Validate()
	require.True(t, errors.As(err, &verr), "a strain without a species is rejected")
	assert.Equal(t, "species", verr.Field)

	assert.NoError(t, NewBatch{StrainID: 1, GrowerID: 1, THCContent: 20}.Validate())
	assert.Error(t, NewBatch{GrowerID: 1}.Validate())
	assert.Error(t, NewBatch{StrainID: 1, GrowerID: 1, CBDContent: -1}.Validate())

	assert.Error(t, NewTerpenes{}.Validate())
}

func TestBatchBuilder(t *testing.T) {
	base := NewBatchBuilder(3, 3).THCContent(22.9)
	harvested := base.HarvestDate(schema.NewDate(2024, time.May, 2))

	b := base.CBDContent(0.2).Build()
	assert.Equal(t, int32(3), b.StrainID)
	assert.Equal(t, int32(3), b.GrowerID)
	assert.Equal(t, float32(22.9), b.THCContent)
	assert.Equal(t, float32(0.2), b.CBDContent)
	assert.Nil(t, b.HarvestDate, "setters must not modify the builder they were called on")

	h := harvested.Build()
	require.NotNil(t, h.HarvestDate)
	assert.Equal(t, "2024-05-02", h.HarvestDate.String())
	assert.Zero(t, h.CBDContent)

	rec := h.Record()
	assert.Zero(t, rec.ID)
	assert.Equal(t, h.HarvestDate, rec.HarvestDate)
}

func TestTerpenesBuilder(t *testing.T) {
	draft := NewTerpenesBuilder(5).Myrcene(0.8).Limonene(0.3).Build()
	assert.Equal(t, int32(5), draft.BatchID)
	require.NotNil(t, draft.Myrcene)
	assert.Equal(t, float32(0.8), *draft.Myrcene)
	assert.Nil(t, draft.Pinene)
	assert.Nil(t, draft.Caryophyllene)
}

func TestTables(t *testing.T) {
	tables, err := Tables()
	require.NoError(t, err)

	names := make([]string, len(tables))
	for i, table := range tables {
		names[i] = table.Name
	}
	assert.Equal(t, []string{"growers", "strains", "batches", "terpenes"}, names)

	batches := tables[2]
	assert.ElementsMatch(t, []string{"strains", "growers"}, batches.References())
	assert.True(t, batches.GetColumnByName("harvest_date").Nullable)
	assert.False(t, batches.GetColumnByName("thc_content").Nullable)
	assert.Equal(t, "float4", batches.GetColumnByName("thc_content").SQLType)
}

func TestSchemaDDL(t *testing.T) {
	tables, err := Tables()
	require.NoError(t, err)

	m, err := migration.NewPlanner().Plan(tables)
	require.NoError(t, err)
	up := m.UpSQL()

	assert.Contains(t, up, "CREATE TYPE species_enum AS ENUM ('Indica', 'Sativa', 'Hybrid');")
	assert.Contains(t, up, "species species_enum NOT NULL")
	assert.Contains(t, up, "REFERENCES strains (id)")
	assert.Contains(t, up, "REFERENCES growers (id)")
	assert.Contains(t, up, "REFERENCES batches (id)")
	assert.Contains(t, up, "pinene float4")
	assert.Less(t, strings.Index(up, "CREATE TYPE species_enum"), strings.Index(up, "CREATE TABLE IF NOT EXISTS strains"))
	assert.Equal(t, "DROP TYPE IF EXISTS species_enum;", m.Down[len(m.Down)-1])
}
