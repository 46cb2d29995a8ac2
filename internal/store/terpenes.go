package store

import (
	"context"

	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/pkg/builder"
)

// TerpenesCriterion selects terpene profiles: TerpenesID or TerpenesBatchID.
type TerpenesCriterion interface {
	isTerpenesCriterion()
}

// TerpenesID matches the profile with this id.
type TerpenesID int32

// TerpenesBatchID matches every profile measured for one batch.
type TerpenesBatchID int32

func (TerpenesID) isTerpenesCriterion()      {}
func (TerpenesBatchID) isTerpenesCriterion() {}

func terpenesCondition(c TerpenesCriterion) (builder.Condition, bool) {
	switch c := c.(type) {
	case TerpenesID:
		return builder.Eq(builder.QCol[models.Terpenes]("ID"), int32(c)), true
	case TerpenesBatchID:
		return builder.Eq(builder.QCol[models.Terpenes]("BatchID"), int32(c)), true
	}
	return builder.Condition{}, false
}

// TerpenesStore reads and writes the terpenes table.
type TerpenesStore struct {
	table table[models.Terpenes]
}

// NewTerpenesStore returns a TerpenesStore over db.
func NewTerpenesStore(db *builder.DB) *TerpenesStore {
	return &TerpenesStore{table: table[models.Terpenes]{db: db, entity: "terpenes"}}
}

// Create inserts t and returns it with its assigned id.
func (s *TerpenesStore) Create(ctx context.Context, t models.NewTerpenes) (models.Terpenes, error) {
	return create(ctx, s.table, t)
}

// Delete removes the profile with t's id and returns the deleted row.
func (s *TerpenesStore) Delete(ctx context.Context, t models.Terpenes) (models.Terpenes, error) {
	return s.table.delete(ctx, t.ID)
}

// All lists every terpene profile by id.
func (s *TerpenesStore) All(ctx context.Context) ([]models.Terpenes, error) {
	return s.table.all(ctx)
}

// Filter returns the profiles matching c. A nil c returns every profile.
func (s *TerpenesStore) Filter(ctx context.Context, c TerpenesCriterion) ([]models.Terpenes, error) {
	cond, ok := terpenesCondition(c)
	if !ok {
		return s.All(ctx)
	}
	return s.table.where(ctx, cond)
}
