// Package store implements create, delete and filtered retrieval for each
// entity on top of the query builder.
package store

import (
	"context"
	"time"

	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/pkg/builder"
	"github.com/marshallshelly/cultivar/pkg/runtime"
)

// Creatable inserts a draft D and returns the stored record R.
type Creatable[D, R any] interface {
	Create(ctx context.Context, draft D) (R, error)
}

// Deletable deletes a record by identity and returns the deleted row.
type Deletable[R any] interface {
	Delete(ctx context.Context, record R) (R, error)
}

// Retrievable lists records, either all of them or those matching one
// criterion C.
type Retrievable[R, C any] interface {
	All(ctx context.Context) ([]R, error)
	Filter(ctx context.Context, criterion C) ([]R, error)
}

// Store combines the three contracts for one entity.
type Store[D, R, C any] interface {
	Creatable[D, R]
	Deletable[R]
	Retrievable[R, C]
}

var (
	_ Store[models.NewGrower, models.Grower, GrowerCriterion]       = (*GrowerStore)(nil)
	_ Store[models.NewStrain, models.Strain, StrainCriterion]       = (*StrainStore)(nil)
	_ Store[models.NewBatch, models.Batch, BatchCriterion]          = (*BatchStore)(nil)
	_ Store[models.NewTerpenes, models.Terpenes, TerpenesCriterion] = (*TerpenesStore)(nil)
	_ Retrievable[models.BatchResponse, BatchCriterion]             = BatchView{}
)

// Stores holds one store per entity over a shared pool.
type Stores struct {
	Growers  *GrowerStore
	Strains  *StrainStore
	Batches  *BatchStore
	Terpenes *TerpenesStore
}

// New creates the stores for db. Models must be registered first.
func New(db *runtime.DB) *Stores {
	qb := builder.New(db)
	return &Stores{
		Growers:  NewGrowerStore(qb),
		Strains:  NewStrainStore(qb),
		Batches:  NewBatchStore(qb),
		Terpenes: NewTerpenesStore(qb),
	}
}

// draft is implemented by the models.New* types.
type draft[R any] interface {
	Validate() error
	Record() R
}

// table runs single-table statements for records of type R. entity names the
// table in errors and metrics.
type table[R any] struct {
	db     *builder.DB
	entity string
}

func (t table[R]) op(name string) string {
	return t.entity + "." + name
}

func create[D draft[R], R any](ctx context.Context, t table[R], d D) (rec R, err error) {
	op := t.op("create")
	defer observe(t.entity, "create", time.Now(), &err)

	if err := d.Validate(); err != nil {
		return rec, runtime.NewPersistenceError(op, err)
	}
	rec, err = builder.Insert(t.db, d.Record()).One(ctx)
	if err != nil {
		return rec, runtime.NewPersistenceError(op, err)
	}
	return rec, nil
}

func (t table[R]) delete(ctx context.Context, id int32) (rec R, err error) {
	op := t.op("delete")
	defer observe(t.entity, "delete", time.Now(), &err)

	rows, err := builder.Delete[R](t.db).
		Where(builder.Eq(builder.Col[R]("ID"), id)).
		All(ctx)
	if err != nil {
		return rec, runtime.NewPersistenceError(op, err)
	}
	if len(rows) == 0 {
		return rec, runtime.NotFound(op, "%s %d does not exist", t.entity, id)
	}
	return rows[0], nil
}

// list runs q ordered by id. The "all" and "filter" operations share it.
func (t table[R]) list(ctx context.Context, opName string, q *builder.SelectQuery[R]) (recs []R, err error) {
	defer observe(t.entity, opName, time.Now(), &err)

	recs, err = q.OrderByAsc(builder.QCol[R]("ID")).All(ctx)
	if err != nil {
		return nil, runtime.NewPersistenceError(t.op(opName), err)
	}
	return recs, nil
}

func (t table[R]) all(ctx context.Context) ([]R, error) {
	return t.list(ctx, "all", builder.Select[R](t.db))
}

func (t table[R]) where(ctx context.Context, cond builder.Condition) ([]R, error) {
	return t.list(ctx, "filter", builder.Select[R](t.db).Where(cond))
}
