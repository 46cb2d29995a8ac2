package store

import (
	"errors"
	"time"

	"github.com/marshallshelly/cultivar/pkg/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var opDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "cultivar_store_operation_duration_seconds",
	Help:    "Duration of store operations by entity, operation and outcome.",
	Buckets: prometheus.DefBuckets,
}, []string{"entity", "op", "outcome"})

// observe records one operation. errp points at the caller's named error
// result so the outcome is read after the operation returns.
func observe(entity, op string, start time.Time, errp *error) {
	opDuration.WithLabelValues(entity, op, outcome(*errp)).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var perr *runtime.PersistenceError
	if errors.As(err, &perr) {
		return perr.Kind.String()
	}
	return runtime.Classify(err).String()
}
