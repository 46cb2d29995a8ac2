package models

import "github.com/marshallshelly/cultivar/pkg/schema"

// BatchBuilder assembles a NewBatch one field at a time. Every setter returns
// a new builder, so a partially built value can be shared and extended.
//
//	draft := models.NewBatchBuilder(strainID, growerID).
//		THCContent(22.9).
//		CBDContent(0.2).
//		HarvestDate(schema.NewDate(2024, time.May, 2)).
//		Build()
type BatchBuilder struct {
	batch NewBatch
}

func NewBatchBuilder(strainID, growerID int32) BatchBuilder {
	return BatchBuilder{batch: NewBatch{StrainID: strainID, GrowerID: growerID}}
}

func (b BatchBuilder) StrainID(id int32) BatchBuilder {
	b.batch.StrainID = id
	return b
}

func (b BatchBuilder) GrowerID(id int32) BatchBuilder {
	b.batch.GrowerID = id
	return b
}

func (b BatchBuilder) HarvestDate(d schema.Date) BatchBuilder {
	b.batch.HarvestDate = &d
	return b
}

func (b BatchBuilder) FinalTestDate(d schema.Date) BatchBuilder {
	b.batch.FinalTestDate = &d
	return b
}

func (b BatchBuilder) PackageDate(d schema.Date) BatchBuilder {
	b.batch.PackageDate = &d
	return b
}

func (b BatchBuilder) THCContent(v float32) BatchBuilder {
	b.batch.THCContent = v
	return b
}

func (b BatchBuilder) CBDContent(v float32) BatchBuilder {
	b.batch.CBDContent = v
	return b
}

// Build returns the draft.
func (b BatchBuilder) Build() NewBatch {
	return b.batch
}

// TerpenesBuilder assembles a NewTerpenes one concentration at a time.
// Concentrations that are never set stay untested.
type TerpenesBuilder struct {
	terpenes NewTerpenes
}

func NewTerpenesBuilder(batchID int32) TerpenesBuilder {
	return TerpenesBuilder{terpenes: NewTerpenes{BatchID: batchID}}
}

func (b TerpenesBuilder) BatchID(id int32) TerpenesBuilder {
	b.terpenes.BatchID = id
	return b
}

func (b TerpenesBuilder) Caryophyllene(v float32) TerpenesBuilder {
	b.terpenes.Caryophyllene = &v
	return b
}

func (b TerpenesBuilder) Humulene(v float32) TerpenesBuilder {
	b.terpenes.Humulene = &v
	return b
}

func (b TerpenesBuilder) Limonene(v float32) TerpenesBuilder {
	b.terpenes.Limonene = &v
	return b
}

func (b TerpenesBuilder) Linalool(v float32) TerpenesBuilder {
	b.terpenes.Linalool = &v
	return b
}

func (b TerpenesBuilder) Myrcene(v float32) TerpenesBuilder {
	b.terpenes.Myrcene = &v
	return b
}

func (b TerpenesBuilder) Pinene(v float32) TerpenesBuilder {
	b.terpenes.Pinene = &v
	return b
}

func (b TerpenesBuilder) Build() NewTerpenes {
	return b.terpenes
}
