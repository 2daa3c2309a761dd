// Package api serves the filter engine and property data over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ratesmap/ratesmap/internal/filter"
	"github.com/ratesmap/ratesmap/internal/metrics"
	"github.com/ratesmap/ratesmap/internal/property"
)

// Server wires the filter engine and property store into HTTP handlers.
type Server struct {
	engine *filter.Engine
	store  property.Store
}

// NewServer creates a Server around an engine and store. The engine is
// expected to have been loaded via OnDataLoaded before requests arrive.
func NewServer(engine *filter.Engine, store property.Store) *Server {
	return &Server{engine: engine, store: store}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(instrument)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/properties", s.handleProperties)
		r.Get("/categories", s.handleCategories)
		r.Get("/filter", s.handleFilterSnapshot)
		r.Put("/filter/value", s.handleValueEdit)
		r.Put("/filter/categories", s.handleCategoryChange)
	})

	return r
}
