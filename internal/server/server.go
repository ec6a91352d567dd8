// Package server exposes the planning API over HTTP: zone GeoJSON,
// temperature queries, scenario calculations and scenario history.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/geometry"
	"github.com/urbanclimate/lcz-planner/internal/lcz"
	"github.com/urbanclimate/lcz-planner/internal/store"
	"github.com/urbanclimate/lcz-planner/pkg/meteomatics"
)

// gridMaxPoints caps how many locations one temperature-grid request
// resolves.
const gridMaxPoints = 100

// Config holds server wiring options.
type Config struct {
	Port           int
	AllowedOrigins []string
	GridResolution float64
}

// Deps are the collaborators the handlers need. Zones and Store may be nil
// when the corresponding features are not configured.
type Deps struct {
	Registry *lcz.Registry
	Zones    *geometry.Collection
	Weather  meteomatics.Provider
	Store    store.Store
	Metrics  *Metrics
}

// Server is the HTTP front end.
type Server struct {
	cfg        Config
	deps       Deps
	calc       *lcz.Calculator
	httpServer *http.Server
}

// New builds the router and wraps it in an http.Server.
func New(cfg Config, deps Deps) *Server {
	if cfg.GridResolution <= 0 {
		cfg.GridResolution = 0.005
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetricsForTesting()
	}

	s := &Server{
		cfg:  cfg,
		deps: deps,
		calc: lcz.NewCalculator(deps.Registry),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/lcz-data", s.handleLCZData)
		r.Get("/temperature", s.handleTemperature)
		r.Get("/temperature-grid", s.handleTemperatureGrid)
		r.Post("/calculate-scenario", s.handleCalculateScenario)
		r.Get("/lcz-classes", s.handleClasses)
		r.Get("/lcz-properties", s.handleProperties)
		r.Get("/scenarios", s.handleScenarios)
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	zap.L().Info("server: listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains connections within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// observe records request durations per route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.deps.Metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
