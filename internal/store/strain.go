package store

import (
	"context"

	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/pkg/builder"
)

// StrainCriterion selects strains: StrainID, StrainName or StrainSpecies.
type StrainCriterion interface {
	isStrainCriterion()
}

// StrainID matches the strain with this id.
type StrainID int32

// StrainName matches strains whose name contains the text, ignoring case.
type StrainName string

// StrainSpecies matches every strain of one species.
type StrainSpecies models.Species

func (StrainID) isStrainCriterion()      {}
func (StrainName) isStrainCriterion()    {}
func (StrainSpecies) isStrainCriterion() {}

func strainCondition(c StrainCriterion) (builder.Condition, bool) {
	switch c := c.(type) {
	case StrainID:
		return builder.Eq(builder.QCol[models.Strain]("ID"), int32(c)), true
	case StrainName:
		return builder.Contains(builder.QCol[models.Strain]("Name"), string(c)), true
	case StrainSpecies:
		return builder.Eq(builder.QCol[models.Strain]("Species"), models.Species(c)), true
	}
	return builder.Condition{}, false
}

// StrainStore reads and writes the strains table.
type StrainStore struct {
	table table[models.Strain]
}

// NewStrainStore returns a StrainStore over db.
func NewStrainStore(db *builder.DB) *StrainStore {
	return &StrainStore{table: table[models.Strain]{db: db, entity: "strain"}}
}

// Create inserts st and returns it with its assigned id.
func (s *StrainStore) Create(ctx context.Context, st models.NewStrain) (models.Strain, error) {
	return create(ctx, s.table, st)
}

// Delete removes the strain with st's id and returns the deleted row.
func (s *StrainStore) Delete(ctx context.Context, st models.Strain) (models.Strain, error) {
	return s.table.delete(ctx, st.ID)
}

// All lists every strain by id.
func (s *StrainStore) All(ctx context.Context) ([]models.Strain, error) {
	return s.table.all(ctx)
}

// Filter returns the strains matching c. A nil c returns every strain.
func (s *StrainStore) Filter(ctx context.Context, c StrainCriterion) ([]models.Strain, error) {
	cond, ok := strainCondition(c)
	if !ok {
		return s.All(ctx)
	}
	return s.table.where(ctx, cond)
}
