package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/marshallshelly/cultivar/pkg/runtime"
)

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(err error, code int) error {
	return &codedError{err: err, code: code}
}

// GetResponseCode returns the status for err: the code of a CodedError, or
// one derived from the kind of a store error.
func GetResponseCode(err error) int {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.code
	}
	switch runtime.Classify(err) {
	case runtime.KindNotFound:
		return http.StatusNotFound
	case runtime.KindInvalidInput:
		return http.StatusBadRequest
	case runtime.KindForeignKey, runtime.KindUnique:
		return http.StatusConflict
	}
	slog.Error("unclassified error passed to GetResponseCode", "error", err)
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, msg string, err error) {
	http.Error(w, fmt.Sprintf("%s: %v", msg, err), GetResponseCode(err))
}

func parseRequestBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		slog.Debug("error parsing request body", "error", err)
		http.Error(w, fmt.Sprintf("error parsing request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("error serializing response body", "error", err)
	}
}

// urlParamID reads the {key} path parameter as a row id. A malformed id names
// no row, so it is reported as not found.
func urlParamID(r *http.Request, key string) (int32, error) {
	param := chi.URLParam(r, key)
	if len(param) == 0 {
		return 0, CodedError(fmt.Errorf("missing {%v} url parameter", key), http.StatusBadRequest)
	}
	id, err := strconv.ParseInt(param, 10, 32)
	if err != nil || id <= 0 {
		return 0, CodedError(fmt.Errorf("no row with id %q", param), http.StatusNotFound)
	}
	return int32(id), nil
}
