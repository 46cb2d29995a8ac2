package store

import (
	"context"

	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/pkg/builder"
)

// GrowerCriterion selects growers: GrowerID or GrowerName.
type GrowerCriterion interface {
	isGrowerCriterion()
}

// GrowerID matches the grower with this id.
type GrowerID int32

// GrowerName matches growers whose name contains the text, ignoring case.
type GrowerName string

func (GrowerID) isGrowerCriterion()   {}
func (GrowerName) isGrowerCriterion() {}

func growerCondition(c GrowerCriterion) (builder.Condition, bool) {
	switch c := c.(type) {
	case GrowerID:
		return builder.Eq(builder.QCol[models.Grower]("ID"), int32(c)), true
	case GrowerName:
		return builder.Contains(builder.QCol[models.Grower]("Name"), string(c)), true
	}
	return builder.Condition{}, false
}

// GrowerStore reads and writes the growers table.
type GrowerStore struct {
	table table[models.Grower]
}

// NewGrowerStore returns a GrowerStore over db.
func NewGrowerStore(db *builder.DB) *GrowerStore {
	return &GrowerStore{table: table[models.Grower]{db: db, entity: "grower"}}
}

// Create inserts g and returns it with its assigned id.
func (s *GrowerStore) Create(ctx context.Context, g models.NewGrower) (models.Grower, error) {
	return create(ctx, s.table, g)
}

// Delete removes the grower with g's id and returns the deleted row.
func (s *GrowerStore) Delete(ctx context.Context, g models.Grower) (models.Grower, error) {
	return s.table.delete(ctx, g.ID)
}

// All lists every grower by id.
func (s *GrowerStore) All(ctx context.Context) ([]models.Grower, error) {
	return s.table.all(ctx)
}

// Filter returns the growers matching c. A nil c returns every grower.
func (s *GrowerStore) Filter(ctx context.Context, c GrowerCriterion) ([]models.Grower, error) {
	cond, ok := growerCondition(c)
	if !ok {
		return s.All(ctx)
	}
	return s.table.where(ctx, cond)
}
