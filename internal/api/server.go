// Package api serves the stores over HTTP.
package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type (
	GrowerStore   = store.Store[models.NewGrower, models.Grower, store.GrowerCriterion]
	StrainStore   = store.Store[models.NewStrain, models.Strain, store.StrainCriterion]
	TerpenesStore = store.Store[models.NewTerpenes, models.Terpenes, store.TerpenesCriterion]
)

// BatchStore is the batch store plus its joined view.
type BatchStore interface {
	store.Store[models.NewBatch, models.Batch, store.BatchCriterion]
	FilterJoined(ctx context.Context, c store.BatchCriterion) ([]models.BatchResponse, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	AllowedOrigins []string
	Logger         *log.Logger // request log; defaults to stderr
}

// Stores are the stores a Server reads and writes.
type Stores struct {
	Growers  GrowerStore
	Strains  StrainStore
	Batches  BatchStore
	Terpenes TerpenesStore
}

// FromStores adapts the Postgres-backed stores.
func FromStores(s *store.Stores) Stores {
	return Stores{
		Growers:  s.Growers,
		Strains:  s.Strains,
		Batches:  s.Batches,
		Terpenes: s.Terpenes,
	}
}

type Server struct {
	Stores
	db   Pinger
	opts Options
}

func NewServer(stores Stores, db Pinger, opts Options) *Server {
	return &Server{Stores: stores, db: db, opts: opts}
}

var requestMetric = promauto.NewSummaryVec(prometheus.SummaryOpts{
	Name:       "cultivar_http_request_duration_seconds",
	Help:       "HTTP request latency by method and route.",
	Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
}, []string{"method", "route"})

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		requestMetric.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	logger := s.opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Use(instrument)

	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/growers", func(r chi.Router) {
		r.Get("/", s.ListGrowers)
		r.Post("/", s.CreateGrower)
		r.Get("/{id}", s.GetGrower)
		r.Delete("/{id}", s.DeleteGrower)
		r.Get("/{id}/batches", s.GrowerBatches)
	})

	r.Route("/strains", func(r chi.Router) {
		r.Get("/", s.ListStrains)
		r.Post("/", s.CreateStrain)
		r.Get("/{id}", s.GetStrain)
		r.Delete("/{id}", s.DeleteStrain)
		r.Get("/{id}/batches", s.StrainBatches)
	})

	r.Route("/batches", func(r chi.Router) {
		r.Get("/", s.ListBatches)
		r.Post("/", s.CreateBatch)
		r.Get("/{id}", s.GetBatch)
		r.Delete("/{id}", s.DeleteBatch)
		r.Get("/{id}/terpenes", s.BatchTerpenes)
	})

	r.Route("/terpenes", func(r chi.Router) {
		r.Get("/", s.ListTerpenes)
		r.Post("/", s.CreateTerpenes)
		r.Get("/{id}", s.GetTerpenes)
		r.Delete("/{id}", s.DeleteTerpenes)
	})

	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		http.Error(w, "database unreachable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
