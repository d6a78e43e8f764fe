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

	"github.com/huayilab/calforge/internal/config"
	"github.com/huayilab/calforge/internal/database"
	"github.com/huayilab/calforge/internal/modules/backend"
	"github.com/huayilab/calforge/internal/modules/calibration"
	"github.com/huayilab/calforge/internal/modules/drift"
	"github.com/huayilab/calforge/internal/modules/noise"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	DB      *database.DB
	Config  *config.Config
	DevMode bool

	CalibrationHandler *calibration.Handler
	NoiseHandler       *noise.Handler
	BackendHandler     *backend.Handler
	DriftHandler       *drift.Handler
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	db        *database.DB
	cfg       *config.Config
	startedAt time.Time

	calibration *calibration.Handler
	noise       *noise.Handler
	backend     *backend.Handler
	drift       *drift.Handler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		db:          cfg.DB,
		cfg:         cfg.Config,
		startedAt:   time.Now(),
		calibration: cfg.CalibrationHandler,
		noise:       cfg.NoiseHandler,
		backend:     cfg.BackendHandler,
		drift:       cfg.DriftHandler,
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
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		r.Route("/calibration", func(r chi.Router) {
			r.Post("/import", s.calibration.HandleImport)
			r.Get("/runs", s.calibration.HandleGetRuns)
			r.Get("/runs/{id}", s.calibration.HandleGetRecords)
		})

		r.Route("/noise", func(r chi.Router) {
			r.Get("/model", s.noise.HandleGetModel)
		})

		r.Route("/backend", func(r chi.Router) {
			r.Post("/build", s.backend.HandleBuild)
			r.Get("/properties", s.backend.HandleGetProperties)
			r.Get("/configuration", s.backend.HandleGetConfiguration)
			r.Get("/artifacts", s.backend.HandleGetArtifacts)
		})

		r.Route("/drift", func(r chi.Router) {
			r.Get("/report", s.drift.HandleGetReport)
			r.Get("/series", s.drift.HandleGetSeries)
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
