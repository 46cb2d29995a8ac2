package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/internal/store"
	"github.com/marshallshelly/cultivar/pkg/schema"
)

func list[R, C any](w http.ResponseWriter, r *http.Request, entity string, parse func(url.Values) (C, error), s store.Retrievable[R, C]) {
	c, err := parse(r.URL.Query())
	if err != nil {
		writeError(w, "invalid query", err)
		return
	}
	rows, err := s.Filter(r.Context(), c)
	if err != nil {
		writeError(w, "error listing "+entity, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, rows)
}

func getOne[R, C any](w http.ResponseWriter, r *http.Request, entity string, s store.Retrievable[R, C], byID func(int32) C) {
	id, err := urlParamID(r, "id")
	if err != nil {
		writeError(w, "error reading "+entity, err)
		return
	}
	rows, err := s.Filter(r.Context(), byID(id))
	if err != nil {
		writeError(w, "error reading "+entity, err)
		return
	}
	if len(rows) == 0 {
		http.Error(w, fmt.Sprintf("%s %d not found", entity, id), http.StatusNotFound)
		return
	}
	writeJsonResponse(w, http.StatusOK, rows[0])
}

// validator is implemented by every models.New* draft.
type validator interface {
	Validate() error
}

// createOne rejects an incomplete draft with 400 before it reaches the store.
func createOne[D validator, R any](w http.ResponseWriter, r *http.Request, entity string, s store.Creatable[D, R], draft D) {
	if err := draft.Validate(); err != nil {
		writeError(w, "error creating "+entity, err)
		return
	}
	rec, err := s.Create(r.Context(), draft)
	if err != nil {
		writeError(w, "error creating "+entity, err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, rec)
}

func deleteOne[R any](w http.ResponseWriter, r *http.Request, entity string, s store.Deletable[R], byID func(int32) R) {
	id, err := urlParamID(r, "id")
	if err != nil {
		writeError(w, "error deleting "+entity, err)
		return
	}
	rec, err := s.Delete(r.Context(), byID(id))
	if err != nil {
		writeError(w, "error deleting "+entity, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, rec)
}

// joinedBatches lists the joined batch rows selected by the {id} path
// parameter.
func (s *Server) joinedBatches(w http.ResponseWriter, r *http.Request, byID func(int32) store.BatchCriterion) {
	id, err := urlParamID(r, "id")
	if err != nil {
		writeError(w, "error listing batches", err)
		return
	}
	rows, err := s.Batches.FilterJoined(r.Context(), byID(id))
	if err != nil {
		writeError(w, "error listing batches", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, rows)
}

func (s *Server) ListGrowers(w http.ResponseWriter, r *http.Request) {
	list[models.Grower, store.GrowerCriterion](w, r, "growers", ParseGrowerCriterion, s.Growers)
}

func (s *Server) GetGrower(w http.ResponseWriter, r *http.Request) {
	getOne[models.Grower, store.GrowerCriterion](w, r, "grower", s.Growers, func(id int32) store.GrowerCriterion { return store.GrowerID(id) })
}

func (s *Server) CreateGrower(w http.ResponseWriter, r *http.Request) {
	var params models.NewGrower
	if !parseRequestBody(w, r, &params) {
		return
	}
	createOne[models.NewGrower, models.Grower](w, r, "grower", s.Growers, params)
}

func (s *Server) DeleteGrower(w http.ResponseWriter, r *http.Request) {
	deleteOne[models.Grower](w, r, "grower", s.Growers, func(id int32) models.Grower { return models.Grower{ID: id} })
}

func (s *Server) GrowerBatches(w http.ResponseWriter, r *http.Request) {
	s.joinedBatches(w, r, func(id int32) store.BatchCriterion { return store.BatchGrowerID(id) })
}

func (s *Server) ListStrains(w http.ResponseWriter, r *http.Request) {
	list[models.Strain, store.StrainCriterion](w, r, "strains", ParseStrainCriterion, s.Strains)
}

func (s *Server) GetStrain(w http.ResponseWriter, r *http.Request) {
	getOne[models.Strain, store.StrainCriterion](w, r, "strain", s.Strains, func(id int32) store.StrainCriterion { return store.StrainID(id) })
}

func (s *Server) CreateStrain(w http.ResponseWriter, r *http.Request) {
	var params models.NewStrain
	if !parseRequestBody(w, r, &params) {
		return
	}
	createOne[models.NewStrain, models.Strain](w, r, "strain", s.Strains, params)
}

func (s *Server) DeleteStrain(w http.ResponseWriter, r *http.Request) {
	deleteOne[models.Strain](w, r, "strain", s.Strains, func(id int32) models.Strain { return models.Strain{ID: id} })
}

func (s *Server) StrainBatches(w http.ResponseWriter, r *http.Request) {
	s.joinedBatches(w, r, func(id int32) store.BatchCriterion { return store.BatchStrainID(id) })
}

// ListBatches returns the joined view, with strain and grower names.
func (s *Server) ListBatches(w http.ResponseWriter, r *http.Request) {
	c, err := ParseBatchCriterion(r.URL.Query())
	if err != nil {
		writeError(w, "invalid query", err)
		return
	}
	rows, err := s.Batches.FilterJoined(r.Context(), c)
	if err != nil {
		writeError(w, "error listing batches", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, rows)
}

func (s *Server) GetBatch(w http.ResponseWriter, r *http.Request) {
	getOne[models.Batch, store.BatchCriterion](w, r, "batch", s.Batches, func(id int32) store.BatchCriterion { return store.BatchID(id) })
}

type createBatchRequest struct {
	StrainID      int32        `json:"strain_id"`
	GrowerID      int32        `json:"grower_id"`
	HarvestDate   *schema.Date `json:"harvest_date"`
	FinalTestDate *schema.Date `json:"final_test_date"`
	PackageDate   *schema.Date `json:"package_date"`
	THCContent    *float32     `json:"thc_content"`
	CBDContent    *float32     `json:"cbd_content"`
}

func (req createBatchRequest) draft() (models.NewBatch, error) {
	if req.THCContent == nil || req.CBDContent == nil {
		return models.NewBatch{}, CodedError(fmt.Errorf("thc_content and cbd_content are required"), http.StatusBadRequest)
	}
	b := models.NewBatchBuilder(req.StrainID, req.GrowerID).
		THCContent(*req.THCContent).
		CBDContent(*req.CBDContent)
	if req.HarvestDate != nil {
		b = b.HarvestDate(*req.HarvestDate)
	}
	if req.FinalTestDate != nil {
		b = b.FinalTestDate(*req.FinalTestDate)
	}
	if req.PackageDate != nil {
		b = b.PackageDate(*req.PackageDate)
	}
	return b.Build(), nil
}

func (s *Server) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var params createBatchRequest
	if !parseRequestBody(w, r, &params) {
		return
	}
	draft, err := params.draft()
	if err != nil {
		writeError(w, "error creating batch", err)
		return
	}
	createOne[models.NewBatch, models.Batch](w, r, "batch", s.Batches, draft)
}

func (s *Server) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	deleteOne[models.Batch](w, r, "batch", s.Batches, func(id int32) models.Batch { return models.Batch{ID: id} })
}

func (s *Server) BatchTerpenes(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		writeError(w, "error listing terpenes", err)
		return
	}
	rows, err := s.Terpenes.Filter(r.Context(), store.TerpenesBatchID(id))
	if err != nil {
		writeError(w, "error listing terpenes", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, rows)
}

func (s *Server) ListTerpenes(w http.ResponseWriter, r *http.Request) {
	list[models.Terpenes, store.TerpenesCriterion](w, r, "terpenes", ParseTerpenesCriterion, s.Terpenes)
}

func (s *Server) GetTerpenes(w http.ResponseWriter, r *http.Request) {
	getOne[models.Terpenes, store.TerpenesCriterion](w, r, "terpenes", s.Terpenes, func(id int32) store.TerpenesCriterion { return store.TerpenesID(id) })
}

func (s *Server) CreateTerpenes(w http.ResponseWriter, r *http.Request) {
	var params models.NewTerpenes
	if !parseRequestBody(w, r, &params) {
		return
	}
	createOne[models.NewTerpenes, models.Terpenes](w, r, "terpenes", s.Terpenes, params)
}

func (s *Server) DeleteTerpenes(w http.ResponseWriter, r *http.Request) {
	deleteOne[models.Terpenes](w, r, "terpenes", s.Terpenes, func(id int32) models.Terpenes { return models.Terpenes{ID: id} })
}
