// Package server exposes the dosing core over HTTP: asynchronous
// optimization runs with progress polling and cooperative cancellation,
// plus synchronous concentration-curve evaluation. The optimizer and the
// model stay pure; everything stateful lives here.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jessibug-os/EstraDial/internal/metrics"
	"github.com/jessibug-os/EstraDial/pkg/config"
	"github.com/jessibug-os/EstraDial/pkg/models"
)

// Server wires the chi router, the run store, and the static reference
// data from the configuration.
type Server struct {
	router      chi.Router
	store       *RunStore
	cfg         *config.Config
	medications []*models.Medication
	medsByName  map[string]*models.Medication
}

// New builds a server from a validated configuration.
func New(cfg *config.Config) (*Server, error) {
	meds, err := cfg.MedicationList()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*models.Medication, len(meds))
	for _, m := range meds {
		byName[m.Name] = m
	}

	s := &Server{
		router:      chi.NewRouter(),
		store:       NewRunStore(),
		cfg:         cfg,
		medications: meds,
		medsByName:  byName,
	}

	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Middleware)
	if cfg.RateLimitRPS > 0 {
		s.router.Use(rateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/optimizations", s.handleCreateOptimization)
		r.Get("/optimizations", s.handleListOptimizations)
		r.Get("/optimizations/{id}", s.handleGetOptimization)
		r.Post("/optimizations/{id}/cancel", s.handleCancelOptimization)
		r.Post("/concentrations", s.handleConcentrations)
	})

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
