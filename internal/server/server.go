// Package server exposes extraction and layout over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/MalithGihan/relgraph-service/internal/config"
	"github.com/MalithGihan/relgraph-service/internal/extract"
	"github.com/MalithGihan/relgraph-service/internal/layout"
	"github.com/MalithGihan/relgraph-service/internal/metrics"
)

// Server holds no per-request state; handlers build everything they need
// from the request.
type Server struct {
	cfg       *config.Config
	log       zerolog.Logger
	extractor *extract.Extractor
	engine    *layout.Engine
	metrics   *metrics.Metrics
	// slots bounds concurrent force simulations.
	slots *semaphore.Weighted
	now   func() time.Time
}

func New(cfg *config.Config, log zerolog.Logger, m *metrics.Metrics) (*Server, error) {
	opts := cfg.ExtractOptions()
	opts.Logger = &log
	x, err := extract.New(opts)
	if err != nil {
		return nil, err
	}
	eng, err := layout.New(cfg.Layout, log)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		cfg:       cfg,
		log:       log,
		extractor: x,
		engine:    eng,
		metrics:   m,
		slots:     semaphore.NewWeighted(cfg.HTTP.MaxConcurrentLayouts),
		now:       time.Now,
	}, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Post("/parse-text", s.handleParseText)
	r.Post("/generate-visual", s.handleGenerateVisual)
	r.Post("/visualize", s.handleVisualize)
	r.Post("/export-graph", s.handleExportGraph)
	return r
}

// HTTPServer wraps Router with the timeouts the service listens with.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.cfg.HTTP.LayoutTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
