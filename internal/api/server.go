package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/cache"
	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/config"
	"github.com/raaihank/data-laundry/internal/etl"
	"github.com/raaihank/data-laundry/internal/logger"
	"github.com/raaihank/data-laundry/internal/privacy"
	"github.com/raaihank/data-laundry/internal/security"
	"github.com/raaihank/data-laundry/internal/store"
	"github.com/raaihank/data-laundry/internal/websocket"
)

// Version is reported by /info
const Version = "0.1.0"

// Deps are optional backends. A nil cache disables result caching; a nil
// store limits presets to the built-in ones and disables job history.
type Deps struct {
	Cache *cache.ResultCache
	Store *store.Store
}

// Server represents the HTTP API server
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	detector *privacy.Detector
	engine   *cleaning.Engine
	pipeline *etl.Pipeline
	cache    *cache.ResultCache
	store    *store.Store
	limiter  *security.RateLimiter
	router   *mux.Router
	server   *http.Server
	wsHub    *websocket.Hub
}

// New creates a new API server instance
func New(cfg *config.Config, log *logger.Logger, deps Deps) (*Server, error) {
	// Create PII detector
	detector, err := privacy.New(cfg.Privacy, log.WithComponent("privacy").Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create privacy detector: %w", err)
	}

	engine := cleaning.NewEngine(cfg.Engine, detector, log.WithComponent("engine").Logger)
	pipeline := etl.NewPipeline(engine, cfg.Pipeline, float64(cfg.Engine.MemoryGB), log.WithComponent("pipeline").Logger)

	server := &Server{
		config:   cfg,
		logger:   log.WithComponent("api"),
		detector: detector,
		engine:   engine,
		pipeline: pipeline,
		cache:    deps.Cache,
		store:    deps.Store,
		limiter:  security.NewRateLimiter(cfg.RateLimit),
		router:   mux.NewRouter(),
		wsHub:    websocket.NewHub(cfg.WebSocket, log.WithComponent("websocket").Logger),
	}

	server.setupRoutes()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)

	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.wsHub.HandleWebSocket).Methods(http.MethodGet)
	}

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.Use(s.rateLimitMiddleware)

	v1.HandleFunc("/clean", s.handleClean).Methods(http.MethodPost)
	v1.HandleFunc("/issues", s.handleIssues).Methods(http.MethodPost)
	v1.HandleFunc("/files/clean", s.handleFileClean).Methods(http.MethodPost)

	v1.HandleFunc("/presets", s.handleListPresets).Methods(http.MethodGet)
	v1.HandleFunc("/presets", s.handleSavePreset).Methods(http.MethodPost)
	v1.HandleFunc("/presets/export", s.handleExportPresets).Methods(http.MethodGet)
	v1.HandleFunc("/presets/import", s.handleImportPresets).Methods(http.MethodPost)
	v1.HandleFunc("/presets/{id}", s.handleDeletePreset).Methods(http.MethodDelete)

	v1.HandleFunc("/jobs", s.handleListJobs).Methods(http.MethodGet)

	v1.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	v1.HandleFunc("/cache", s.handleClearCache).Methods(http.MethodDelete)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the hub and serves HTTP until the server is stopped
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting data-laundry API server",
		zap.Int("port", s.config.Server.Port),
		zap.Int("workers", s.config.Engine.Workers),
		zap.Bool("cache_enabled", s.cache != nil),
		zap.Bool("database_enabled", s.store != nil),
	)

	go s.wsHub.Run(ctx)
	s.limiter.StartCleanupRoutine(ctx)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping data-laundry API server")
	return s.server.Shutdown(ctx)
}

// Reload applies the settings that can change without a restart
func (s *Server) Reload(cfg *config.Config) error {
	if err := s.detector.Reconfigure(cfg.Privacy.Detectors); err != nil {
		return fmt.Errorf("failed to reload privacy detectors: %w", err)
	}
	return nil
}
