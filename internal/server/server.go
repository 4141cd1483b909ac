// Package server provides the HTTP API for the tax question service.
package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hyperjump/fintax/internal/config"
	"github.com/hyperjump/fintax/internal/models"
)

// Service answers the API operations.
type Service interface {
	Query(ctx context.Context, question string) (*models.QueryResponse, error)
	Chat(ctx context.Context, question string) (*models.ChatResponse, error)
	Health(ctx context.Context) *models.HealthReport
}

// Server is the HTTP server for the tax question API.
type Server struct {
	service Service
	config  *config.ServerConfig
	logger  *zap.Logger
	landing *template.Template
	server  *http.Server
}

// NewServer creates a server for service. A landing template that fails to load
// is logged and the plain-text landing response is used instead.
func NewServer(service Service, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	landing, err := loadLanding(cfg.LandingTemplate)
	if err != nil {
		logger.Warn("landing page unavailable", zap.String("template", cfg.LandingTemplate), zap.Error(err))
	}
	return &Server{
		service: service,
		config:  cfg,
		logger:  logger,
		landing: landing,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Post("/query", s.handleQuery)
	r.Post("/chat", s.handleChat)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
