// Package models defines the persisted records, their drafts and the joined
// batch view.
package models

import (
	"strings"

	"github.com/marshallshelly/cultivar/pkg/runtime"
	"github.com/marshallshelly/cultivar/pkg/schema"
)

// table_name: growers
type Grower struct {
	ID   int32  `po:"id,primaryKey,serial" json:"id"`
	Name string `po:"name,varchar,notNull" json:"name"`
}

// NewGrower is a grower that has not been inserted yet.
type NewGrower struct {
	Name string `json:"name"`
}

func (g NewGrower) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return &runtime.ValidationError{Field: "name", Message: "must not be empty"}
	}
	return nil
}

// Record returns the row to insert; the id is assigned by the store.
func (g NewGrower) Record() Grower {
	return Grower{Name: g.Name}
}

// table_name: strains
type Strain struct {
	ID      int32   `po:"id,primaryKey,serial" json:"id"`
	Name    string  `po:"name,varchar,notNull" json:"name"`
	Species Species `po:"species,enum(species_enum),notNull" json:"species"`
}

type NewStrain struct {
	Name    string  `json:"name"`
	Species Species `json:"species"`
}

func (s NewStrain) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &runtime.ValidationError{Field: "name", Message: "must not be empty"}
	}
	if !s.Species.Valid() {
		return &runtime.ValidationError{Field: "species", Message: "must be indica, sativa or hybrid"}
	}
	return nil
}

func (s NewStrain) Record() Strain {
	return Strain{Name: s.Name, Species: s.Species}
}

// Batch is one harvest of a strain by a grower. The dates stay nil until the
// batch reaches that stage.
//
// table_name: batches
type Batch struct {
	ID            int32        `po:"id,primaryKey,serial" json:"id"`
	StrainID      int32        `po:"strain_id,int4,notNull,fk:strains.id" json:"strain_id"`
	HarvestDate   *schema.Date `po:"harvest_date,date" json:"harvest_date"`
	FinalTestDate *schema.Date `po:"final_test_date,date" json:"final_test_date"`
	PackageDate   *schema.Date `po:"package_date,date" json:"package_date"`
	GrowerID      int32        `po:"grower_id,int4,notNull,fk:growers.id" json:"grower_id"`
	THCContent    float32      `po:"thc_content,float4,notNull" json:"thc_content"`
	CBDContent    float32      `po:"cbd_content,float4,notNull" json:"cbd_content"`
}

type NewBatch struct {
	StrainID      int32        `json:"strain_id"`
	HarvestDate   *schema.Date `json:"harvest_date"`
	FinalTestDate *schema.Date `json:"final_test_date"`
	PackageDate   *schema.Date `json:"package_date"`
	GrowerID      int32        `json:"grower_id"`
	THCContent    float32      `json:"thc_content"`
	CBDContent    float32      `json:"cbd_content"`
}

func (b NewBatch) Validate() error {
	switch {
	case b.StrainID <= 0:
		return &runtime.ValidationError{Field: "strain_id", Message: "must be a positive id"}
	case b.GrowerID <= 0:
		return &runtime.ValidationError{Field: "grower_id", Message: "must be a positive id"}
	case b.THCContent < 0:
		return &runtime.ValidationError{Field: "thc_content", Message: "must not be negative"}
	case b.CBDContent < 0:
		return &runtime.ValidationError{Field: "cbd_content", Message: "must not be negative"}
	}
	return nil
}

func (b NewBatch) Record() Batch {
	return Batch{
		StrainID:      b.StrainID,
		HarvestDate:   b.HarvestDate,
		FinalTestDate: b.FinalTestDate,
		PackageDate:   b.PackageDate,
		GrowerID:      b.GrowerID,
		THCContent:    b.THCContent,
		CBDContent:    b.CBDContent,
	}
}

// Terpenes is the terpene profile measured for a batch. A nil concentration
// was not tested.
//
// table_name: terpenes
type Terpenes struct {
	ID            int32    `po:"id,primaryKey,serial" json:"id"`
	BatchID       int32    `po:"batch_id,int4,notNull,fk:batches.id" json:"batch_id"`
	Caryophyllene *float32 `po:"caryophyllene,float4" json:"caryophyllene"`
	Humulene      *float32 `po:"humulene,float4" json:"humulene"`
	Limonene      *float32 `po:"limonene,float4" json:"limonene"`
	Linalool      *float32 `po:"linalool,float4" json:"linalool"`
	Myrcene       *float32 `po:"myrcene,float4" json:"myrcene"`
	Pinene        *float32 `po:"pinene,float4" json:"pinene"`
}

type NewTerpenes struct {
	BatchID       int32    `json:"batch_id"`
	Caryophyllene *float32 `json:"caryophyllene"`
	Humulene      *float32 `json:"humulene"`
	Limonene      *float32 `json:"limonene"`
	Linalool      *float32 `json:"linalool"`
	Myrcene       *float32 `json:"myrcene"`
	Pinene        *float32 `json:"pinene"`
}

func (t NewTerpenes) Validate() error {
	if t.BatchID <= 0 {
		return &runtime.ValidationError{Field: "batch_id", Message: "must be a positive id"}
	}
	return nil
}

func (t NewTerpenes) Record() Terpenes {
	return Terpenes{
		BatchID:       t.BatchID,
		Caryophyllene: t.Caryophyllene,
		Humulene:      t.Humulene,
		Limonene:      t.Limonene,
		Linalool:      t.Linalool,
		Myrcene:       t.Myrcene,
		Pinene:        t.Pinene,
	}
}

// BatchResponse is a batch with its strain and grower resolved to names.
// It is a query result only and has no table of its own.
type BatchResponse struct {
	Strain        string       `po:"strain,varchar" json:"strain"`
	HarvestDate   *schema.Date `po:"harvest_date,date" json:"harvest_date"`
	FinalTestDate *schema.Date `po:"final_test_date,date" json:"final_test_date"`
	PackageDate   *schema.Date `po:"package_date,date" json:"package_date"`
	Grower        string       `po:"grower,varchar" json:"grower"`
	THCContent    float32      `po:"thc_content,float4" json:"thc_content"`
	CBDContent    float32      `po:"cbd_content,float4" json:"cbd_content"`
}
