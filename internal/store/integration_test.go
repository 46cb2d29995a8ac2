//go:build integration
// +build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/internal/store"
	"github.com/marshallshelly/cultivar/internal/testdb"
	"github.com/marshallshelly/cultivar/pkg/migration"
	"github.com/marshallshelly/cultivar/pkg/runtime"
	"github.com/marshallshelly/cultivar/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStores(t *testing.T) (*store.Stores, *runtime.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := runtime.Connect(ctx, runtime.Config{URL: testdb.Start(t)})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	tables, err := models.Tables()
	require.NoError(t, err)
	m, err := migration.NewPlanner().Plan(tables)
	require.NoError(t, err)

	executor := migration.NewExecutor(db.Pool())
	require.NoError(t, executor.Initialize(ctx))
	applied, err := executor.Apply(ctx, m)
	require.NoError(t, err)
	require.True(t, applied)

	return store.New(db), db
}

func reset(t *testing.T, db *runtime.DB) {
	t.Helper()
	_, err := db.Exec(context.Background(), "TRUNCATE terpenes, batches, strains, growers RESTART IDENTITY")
	require.NoError(t, err)
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	stores, db := setupStores(t)

	t.Run("grower scenario", func(t *testing.T) {
		reset(t, db)

		g, err := stores.Growers.Create(ctx, models.NewGrower{Name: "Tegridy Farms"})
		require.NoError(t, err)
		assert.NotZero(t, g.ID)
		assert.Equal(t, "Tegridy Farms", g.Name)

		_, err = stores.Growers.Create(ctx, models.NewGrower{Name: "Summa"})
		require.NoError(t, err)

		found, err := stores.Growers.Filter(ctx, store.GrowerName("tegridy farms"))
		require.NoError(t, err)
		assert.Equal(t, []models.Grower{g}, found)
	})

	t.Run("round trip", func(t *testing.T) {
		reset(t, db)

		s, err := stores.Strains.Create(ctx, models.NewStrain{Name: "Gaylord OG", Species: models.Indica})
		require.NoError(t, err)

		found, err := stores.Strains.Filter(ctx, store.StrainID(s.ID))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, s, found[0])
		assert.Equal(t, models.Indica, found[0].Species)
	})

	t.Run("substring match ignores case", func(t *testing.T) {
		reset(t, db)

		_, err := stores.Strains.Create(ctx, models.NewStrain{Name: "Gaylord OG", Species: models.Indica})
		require.NoError(t, err)
		_, err = stores.Strains.Create(ctx, models.NewStrain{Name: "Wedding Cake", Species: models.Hybrid})
		require.NoError(t, err)

		for _, text := range []string{"og", "OG", "Og"} {
			found, err := stores.Strains.Filter(ctx, store.StrainName(text))
			require.NoError(t, err)
			require.Len(t, found, 1, text)
			assert.Equal(t, "Gaylord OG", found[0].Name)
		}

		hybrids, err := stores.Strains.Filter(ctx, store.StrainSpecies(models.Hybrid))
		require.NoError(t, err)
		require.Len(t, hybrids, 1)
		assert.Equal(t, "Wedding Cake", hybrids[0].Name)
	})

	t.Run("joined view", func(t *testing.T) {
		reset(t, db)

		for _, name := range []string{"Gaylord OG", "Wedding Cake", "Blackwater OG"} {
			_, err := stores.Strains.Create(ctx, models.NewStrain{Name: name, Species: models.Indica})
			require.NoError(t, err)
		}
		for _, name := range []string{"Tegridy Farms", "Cookies", "Summa"} {
			_, err := stores.Growers.Create(ctx, models.NewGrower{Name: name})
			require.NoError(t, err)
		}

		harvest := schema.NewDate(2024, time.May, 2)
		b, err := stores.Batches.Create(ctx, models.NewBatchBuilder(3, 3).
			THCContent(22.9).
			CBDContent(0.2).
			HarvestDate(harvest).
			Build())
		require.NoError(t, err)
		assert.Equal(t, int32(3), b.StrainID)
		require.NotNil(t, b.HarvestDate)
		assert.True(t, harvest.Equal(*b.HarvestDate))
		assert.Nil(t, b.PackageDate)

		rows, err := stores.Batches.AllJoined(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Blackwater OG", rows[0].Strain)
		assert.Equal(t, "Summa", rows[0].Grower)
		assert.Equal(t, float32(22.9), rows[0].THCContent)
		assert.Equal(t, float32(0.2), rows[0].CBDContent)
		assert.Nil(t, rows[0].FinalTestDate)

		byGrower, err := stores.Batches.FilterJoined(ctx, store.BatchGrowerID(3))
		require.NoError(t, err)
		assert.Equal(t, rows, byGrower)

		byStrain, err := stores.Batches.FilterJoined(ctx, store.BatchStrainID(1))
		require.NoError(t, err)
		assert.Empty(t, byStrain)

		byName, err := stores.Batches.Filter(ctx, store.BatchStrainName("blackwater"))
		require.NoError(t, err)
		assert.Equal(t, []models.Batch{b}, byName)

		exact, err := stores.Batches.Filter(ctx, store.THCContent(22.9))
		require.NoError(t, err)
		assert.Len(t, exact, 1)

		low, high := float32(20), float32(25)
		ranged, err := stores.Batches.Filter(ctx, store.THCRange{Min: &low, Max: &high})
		require.NoError(t, err)
		assert.Len(t, ranged, 1)

		dated, err := stores.Batches.Filter(ctx, store.HarvestDate(harvest))
		require.NoError(t, err)
		assert.Len(t, dated, 1)
	})

	t.Run("exact match returns every matching row", func(t *testing.T) {
		reset(t, db)

		wedding, err := stores.Strains.Create(ctx, models.NewStrain{Name: "Wedding Cake", Species: models.Hybrid})
		require.NoError(t, err)
		gelato, err := stores.Strains.Create(ctx, models.NewStrain{Name: "Gelato", Species: models.Hybrid})
		require.NoError(t, err)
		_, err = stores.Strains.Create(ctx, models.NewStrain{Name: "Durban Poison", Species: models.Sativa})
		require.NoError(t, err)

		hybrids, err := stores.Strains.Filter(ctx, store.StrainSpecies(models.Hybrid))
		require.NoError(t, err)
		assert.ElementsMatch(t, []models.Strain{wedding, gelato}, hybrids)

		summa, err := stores.Growers.Create(ctx, models.NewGrower{Name: "Summa"})
		require.NoError(t, err)
		cookies, err := stores.Growers.Create(ctx, models.NewGrower{Name: "Cookies"})
		require.NoError(t, err)

		newBatch := func(strain models.Strain, grower models.Grower, thc float32) models.Batch {
			b, err := stores.Batches.Create(ctx, models.NewBatchBuilder(strain.ID, grower.ID).THCContent(thc).CBDContent(0.1).Build())
			require.NoError(t, err)
			return b
		}
		first := newBatch(wedding, summa, 21)
		second := newBatch(gelato, summa, 24.5)
		third := newBatch(wedding, cookies, 19)

		bySumma, err := stores.Batches.Filter(ctx, store.BatchGrowerID(summa.ID))
		require.NoError(t, err)
		assert.ElementsMatch(t, []models.Batch{first, second}, bySumma)

		byWedding, err := stores.Batches.Filter(ctx, store.BatchStrainID(wedding.ID))
		require.NoError(t, err)
		assert.ElementsMatch(t, []models.Batch{first, third}, byWedding)

		joined, err := stores.Batches.FilterJoined(ctx, store.BatchGrowerID(summa.ID))
		require.NoError(t, err)
		assert.ElementsMatch(t, []models.BatchResponse{
			{Strain: "Wedding Cake", Grower: "Summa", THCContent: 21, CBDContent: 0.1},
			{Strain: "Gelato", Grower: "Summa", THCContent: 24.5, CBDContent: 0.1},
		}, joined)

		joined, err = stores.Batches.FilterJoined(ctx, store.BatchStrainID(wedding.ID))
		require.NoError(t, err)
		assert.ElementsMatch(t, []models.BatchResponse{
			{Strain: "Wedding Cake", Grower: "Summa", THCContent: 21, CBDContent: 0.1},
			{Strain: "Wedding Cake", Grower: "Cookies", THCContent: 19, CBDContent: 0.1},
		}, joined)

		var profiles []models.Terpenes
		for _, myrcene := range []float32{0.4, 0.9} {
			tp, err := stores.Terpenes.Create(ctx, models.NewTerpenesBuilder(first.ID).Myrcene(myrcene).Build())
			require.NoError(t, err)
			profiles = append(profiles, tp)
		}
		_, err = stores.Terpenes.Create(ctx, models.NewTerpenesBuilder(third.ID).Limonene(0.2).Build())
		require.NoError(t, err)

		byBatch, err := stores.Terpenes.Filter(ctx, store.TerpenesBatchID(first.ID))
		require.NoError(t, err)
		assert.ElementsMatch(t, profiles, byBatch)
	})

	t.Run("terpenes", func(t *testing.T) {
		reset(t, db)

		s, err := stores.Strains.Create(ctx, models.NewStrain{Name: "Blue Dream", Species: models.Sativa})
		require.NoError(t, err)
		g, err := stores.Growers.Create(ctx, models.NewGrower{Name: "Summa"})
		require.NoError(t, err)
		b, err := stores.Batches.Create(ctx, models.NewBatchBuilder(s.ID, g.ID).THCContent(18).Build())
		require.NoError(t, err)

		tp, err := stores.Terpenes.Create(ctx, models.NewTerpenesBuilder(b.ID).Myrcene(0.8).Build())
		require.NoError(t, err)
		require.NotNil(t, tp.Myrcene)
		assert.Equal(t, float32(0.8), *tp.Myrcene)
		assert.Nil(t, tp.Pinene)

		found, err := stores.Terpenes.Filter(ctx, store.TerpenesBatchID(b.ID))
		require.NoError(t, err)
		assert.Equal(t, []models.Terpenes{tp}, found)
	})

	t.Run("delete then lookup", func(t *testing.T) {
		reset(t, db)

		g, err := stores.Growers.Create(ctx, models.NewGrower{Name: "Cookies"})
		require.NoError(t, err)

		deleted, err := stores.Growers.Delete(ctx, g)
		require.NoError(t, err)
		assert.Equal(t, g, deleted)

		found, err := stores.Growers.Filter(ctx, store.GrowerID(g.ID))
		require.NoError(t, err)
		assert.Empty(t, found)

		_, err = stores.Growers.Delete(ctx, g)
		assert.ErrorIs(t, err, runtime.ErrNotFound)
	})

	t.Run("errors", func(t *testing.T) {
		reset(t, db)

		_, err := stores.Batches.Create(ctx, models.NewBatchBuilder(999, 999).Build())
		assert.ErrorIs(t, err, runtime.ErrForeignKeyViolation)

		_, err = stores.Growers.Create(ctx, models.NewGrower{})
		assert.ErrorIs(t, err, runtime.ErrInvalidInput)

		_, err = stores.Strains.Create(ctx, models.NewStrain{Name: "Mystery Kush"})
		assert.ErrorIs(t, err, runtime.ErrInvalidInput)

		found, err := stores.Growers.Filter(ctx, store.GrowerName("nobody"))
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)

		all, err := stores.Batches.Filter(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}
