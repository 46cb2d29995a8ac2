package store

import (
	"context"
	"time"

	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/pkg/builder"
	"github.com/marshallshelly/cultivar/pkg/runtime"
	"github.com/marshallshelly/cultivar/pkg/schema"
)

// BatchCriterion selects batches. The variants are BatchID, BatchStrainID,
// BatchGrowerID, HarvestDate, FinalTestDate, PackageDate, THCContent,
// CBDContent, THCRange, CBDRange, BatchStrainName and BatchGrowerName.
type BatchCriterion interface {
	isBatchCriterion()
}

type (
	// BatchID, BatchStrainID and BatchGrowerID match an id column exactly.
	BatchID       int32
	BatchStrainID int32
	BatchGrowerID int32

	// HarvestDate, FinalTestDate and PackageDate match a date column exactly.
	HarvestDate   schema.Date
	FinalTestDate schema.Date
	PackageDate   schema.Date

	// THCContent and CBDContent compare the stored float4 exactly.
	THCContent float32
	CBDContent float32

	// BatchStrainName and BatchGrowerName match on the joined name, ignoring
	// case.
	BatchStrainName string
	BatchGrowerName string
)

// Range bounds a content value inclusively. A nil bound is open.
type Range struct {
	Min *float32
	Max *float32
}

// THCRange and CBDRange bound the content columns.
type (
	THCRange Range
	CBDRange Range
)

func (BatchID) isBatchCriterion()         {}
func (BatchStrainID) isBatchCriterion()   {}
func (BatchGrowerID) isBatchCriterion()   {}
func (HarvestDate) isBatchCriterion()     {}
func (FinalTestDate) isBatchCriterion()   {}
func (PackageDate) isBatchCriterion()     {}
func (THCContent) isBatchCriterion()      {}
func (CBDContent) isBatchCriterion()      {}
func (THCRange) isBatchCriterion()        {}
func (CBDRange) isBatchCriterion()        {}
func (BatchStrainName) isBatchCriterion() {}
func (BatchGrowerName) isBatchCriterion() {}

func batchCol(field string) string {
	return builder.QCol[models.Batch](field)
}

func batchCondition(c BatchCriterion) (builder.Condition, bool) {
	switch c := c.(type) {
	case BatchID:
		return builder.Eq(batchCol("ID"), int32(c)), true
	case BatchStrainID:
		return builder.Eq(batchCol("StrainID"), int32(c)), true
	case BatchGrowerID:
		return builder.Eq(batchCol("GrowerID"), int32(c)), true
	case HarvestDate:
		return builder.Eq(batchCol("HarvestDate"), schema.Date(c)), true
	case FinalTestDate:
		return builder.Eq(batchCol("FinalTestDate"), schema.Date(c)), true
	case PackageDate:
		return builder.Eq(batchCol("PackageDate"), schema.Date(c)), true
	case THCContent:
		return builder.Eq(batchCol("THCContent"), float32(c)), true
	case CBDContent:
		return builder.Eq(batchCol("CBDContent"), float32(c)), true
	case THCRange:
		return rangeCondition(batchCol("THCContent"), Range(c))
	case CBDRange:
		return rangeCondition(batchCol("CBDContent"), Range(c))
	case BatchStrainName:
		return builder.Contains(builder.QCol[models.Strain]("Name"), string(c)), true
	case BatchGrowerName:
		return builder.Contains(builder.QCol[models.Grower]("Name"), string(c)), true
	}
	return builder.Condition{}, false
}

func rangeCondition(column string, r Range) (builder.Condition, bool) {
	switch {
	case r.Min != nil && r.Max != nil:
		return builder.Between(column, *r.Min, *r.Max), true
	case r.Min != nil:
		return builder.Gte(column, *r.Min), true
	case r.Max != nil:
		return builder.Lte(column, *r.Max), true
	}
	return builder.Condition{}, false
}

// joinNames joins the strain and grower rows a batch points at.
func joinNames[T any](q *builder.SelectQuery[T]) *builder.SelectQuery[T] {
	return q.
		From(builder.Table[models.Batch]()).
		InnerJoin(builder.Table[models.Strain](), builder.QCol[models.Strain]("ID")+" = "+batchCol("StrainID")).
		InnerJoin(builder.Table[models.Grower](), builder.QCol[models.Grower]("ID")+" = "+batchCol("GrowerID"))
}

// BatchStore reads and writes the batches table and its joined view.
type BatchStore struct {
	table table[models.Batch]
	view  BatchView
}

// NewBatchStore returns a BatchStore over db.
func NewBatchStore(db *builder.DB) *BatchStore {
	return &BatchStore{
		table: table[models.Batch]{db: db, entity: "batch"},
		view:  BatchView{db: db},
	}
}

// Create inserts b and returns it with its assigned id.
func (s *BatchStore) Create(ctx context.Context, b models.NewBatch) (models.Batch, error) {
	return create(ctx, s.table, b)
}

// Delete removes the batch with b's id and returns the deleted row.
func (s *BatchStore) Delete(ctx context.Context, b models.Batch) (models.Batch, error) {
	return s.table.delete(ctx, b.ID)
}

// All lists every batch by id.
func (s *BatchStore) All(ctx context.Context) ([]models.Batch, error) {
	return s.table.all(ctx)
}

// Filter returns the raw batch rows matching c. Name criteria are matched
// through the strain and grower tables.
func (s *BatchStore) Filter(ctx context.Context, c BatchCriterion) ([]models.Batch, error) {
	cond, ok := batchCondition(c)
	if !ok {
		return s.All(ctx)
	}
	q := joinNames(builder.Select[models.Batch](s.table.db)).
		Columns(builder.Table[models.Batch]() + ".*").
		Where(cond)
	return s.table.list(ctx, "filter", q)
}

// AllJoined lists every batch as a BatchResponse.
func (s *BatchStore) AllJoined(ctx context.Context) ([]models.BatchResponse, error) {
	return s.view.All(ctx)
}

// FilterJoined returns the BatchResponse rows matching c.
func (s *BatchStore) FilterJoined(ctx context.Context, c BatchCriterion) ([]models.BatchResponse, error) {
	return s.view.Filter(ctx, c)
}

// BatchView reads batches with strain_id and grower_id resolved to names in
// one three-way join. Columns come back as strain, harvest_date,
// final_test_date, package_date, grower, thc_content, cbd_content.
type BatchView struct {
	db *builder.DB
}

func (v BatchView) query() *builder.SelectQuery[models.BatchResponse] {
	return joinNames(builder.Select[models.BatchResponse](v.db)).
		Columns(
			builder.QCol[models.Strain]("Name")+" AS strain",
			batchCol("HarvestDate"),
			batchCol("FinalTestDate"),
			batchCol("PackageDate"),
			builder.QCol[models.Grower]("Name")+" AS grower",
			batchCol("THCContent"),
			batchCol("CBDContent"),
		).
		OrderByAsc(batchCol("ID"))
}

func (v BatchView) run(ctx context.Context, op string, q *builder.SelectQuery[models.BatchResponse]) (rows []models.BatchResponse, err error) {
	defer observe("batch", op, time.Now(), &err)

	rows, err = q.All(ctx)
	if err != nil {
		return nil, runtime.NewPersistenceError("batch."+op, err)
	}
	return rows, nil
}

// All lists every joined row by batch id.
func (v BatchView) All(ctx context.Context) ([]models.BatchResponse, error) {
	return v.run(ctx, "all_joined", v.query())
}

// Filter returns the joined rows matching c. A nil c returns every row.
func (v BatchView) Filter(ctx context.Context, c BatchCriterion) ([]models.BatchResponse, error) {
	cond, ok := batchCondition(c)
	if !ok {
		return v.All(ctx)
	}
	return v.run(ctx, "filter_joined", v.query().Where(cond))
}
