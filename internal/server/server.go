// Package server provides the HTTP server and routing for Driftguard.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/meletis/driftguard/internal/modules/allocation"
	"github.com/meletis/driftguard/internal/modules/portfolio"
	"github.com/meletis/driftguard/internal/modules/rebalancing"
	"github.com/meletis/driftguard/internal/modules/risk"
	"github.com/meletis/driftguard/internal/modules/trading"
)

// Config holds server configuration
type Config struct {
	Port        int
	Log         zerolog.Logger
	DevMode     bool
	Rebalancing *rebalancing.Service
	Portfolio   *portfolio.Service
	Allocation  *allocation.Repository
	Trades      *trading.TradeRepository
	RiskState   *risk.State
}

// Server represents the HTTP server
type Server struct {
	router      *chi.Mux
	server      *http.Server
	log         zerolog.Logger
	startupTime time.Time

	rebalancing *rebalancing.Service
	portfolio   *portfolio.Service
	allocation  *allocation.Repository
	trades      *trading.TradeRepository
	riskState   *risk.State
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		startupTime: time.Now(),
		rebalancing: cfg.Rebalancing,
		portfolio:   cfg.Portfolio,
		allocation:  cfg.Allocation,
		trades:      cfg.Trades,
		riskState:   cfg.RiskState,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout. Rebalance runs hit external APIs for every symbol, so the
	// budget is generous.
	s.router.Use(middleware.Timeout(120 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// System
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		// Allocation targets
		r.Route("/allocation", func(r chi.Router) {
			r.Get("/", s.handleGetAllocation)
			r.Put("/", s.handleSetAllocation)
		})

		// Portfolio
		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/analysis", s.handlePortfolioAnalysis)
		})

		// Rebalancing
		r.Route("/rebalance", func(r chi.Router) {
			r.Get("/preview", s.handleRebalancePreview)
			r.Post("/run", s.handleRebalanceRun)
		})

		// Trade ledger
		r.Get("/trades", s.handleGetTrades)

		// Risk state
		r.Get("/risk/state", s.handleRiskState)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the mux for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
