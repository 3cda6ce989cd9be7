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

	"adcalc/internal/config"
	"adcalc/internal/database"
	"adcalc/internal/modules/history"
	"adcalc/internal/modules/portfolio"
	"adcalc/internal/modules/saved"
	"adcalc/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Port        int
	Log         zerolog.Logger
	DB          *database.DB
	Config      *config.Config
	DevMode     bool
	Products    *portfolio.ProductRepository
	Snapshots   *history.SnapshotRepository
	Saved       *saved.Service
	Scheduler   *scheduler.Scheduler
	SnapshotJob scheduler.Job
}

// Server represents the HTTP server
type Server struct {
	router      *chi.Mux
	server      *http.Server
	log         zerolog.Logger
	db          *database.DB
	cfg         *config.Config
	products    *portfolio.ProductRepository
	snapshots   *history.SnapshotRepository
	saved       *saved.Service
	sched       *scheduler.Scheduler
	snapshotJob scheduler.Job
	startupTime time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		db:          cfg.DB,
		cfg:         cfg.Config,
		products:    cfg.Products,
		snapshots:   cfg.Snapshots,
		saved:       cfg.Saved,
		sched:       cfg.Scheduler,
		snapshotJob: cfg.SnapshotJob,
		startupTime: time.Now(),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

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
		// Campaign calculator
		r.Post("/calculate", s.handleCalculate)

		// SKU engine
		r.Route("/upc", func(r chi.Router) {
			r.Post("/metrics", s.handleUPCMetrics)
			r.Post("/import", s.handleUPCImport)
			r.Post("/aggregate", s.handleUPCAggregate)
		})

		// Product store and portfolio
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handleListProducts)
			r.Post("/", s.handleCreateProduct)
			r.Get("/portfolio", s.handlePortfolio)
			r.Get("/{id}", s.handleGetProduct)
			r.Put("/{id}", s.handleUpdateProduct)
			r.Delete("/{id}", s.handleDeleteProduct)
		})

		// Snapshots and trends
		r.Route("/snapshots", func(r chi.Router) {
			r.Post("/", s.handleCreateSnapshot)
			r.Get("/", s.handleListSnapshots)
			r.Get("/trend", s.handleTrend)
			r.Get("/compare", s.handleComparePeriods)
			r.Delete("/{id}", s.handleDeleteSnapshot)
			r.Post("/all", s.handleSnapshotAll)
		})

		// Planning
		r.Route("/planning", func(r chi.Router) {
			r.Post("/required-roas", s.handleRequiredROAS)
			r.Post("/breakeven", s.handleBreakEven)
			r.Post("/scenarios", s.handleScenarios)
		})

		// Saved input sets
		r.Route("/saved", func(r chi.Router) {
			r.Get("/", s.handleListSaved)
			r.Post("/autosave", s.handleAutosave)
			r.Get("/autosave", s.handleLoadAutosave)
			r.Post("/{name}", s.handleSaveNamed)
			r.Get("/{name}", s.handleLoadNamed)
			r.Delete("/{name}", s.handleDeleteNamed)
		})

		// CSV export
		r.Route("/export", func(r chi.Router) {
			r.Post("/summary", s.handleExportSummary)
			r.Post("/upcs", s.handleExportUPCs)
		})

		// Alerts
		r.Post("/alerts", s.handleAlerts)

		// System
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
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
