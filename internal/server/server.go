package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/kelsos/blend-actions/internal/actions"
	"github.com/kelsos/blend-actions/internal/amount"
	"github.com/kelsos/blend-actions/internal/models"
)

const maxBodyBytes = 1 << 20

// Resolver is the part of actions.Resolver the server depends on
type Resolver interface {
	Resolve(ctx context.Context, req models.ActionsRequest) (models.ActionsByAddress, error)
}

// Config holds server configuration
type Config struct {
	Port           int
	Log            zerolog.Logger
	Resolver       Resolver
	RequestTimeout time.Duration
}

// Server hosts the actions endpoint over HTTP
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	resolver Resolver
	port     int
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "server").Logger(),
		resolver: cfg.Resolver,
		port:     cfg.Port,
	}

	s.setupMiddleware(cfg.RequestTimeout)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(timeout time.Duration) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(timeout))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/1", func(r chi.Router) {
		r.Get("/ping", s.handlePing)
		r.Post("/actions", s.handleActions)
	})
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, models.PingResponse{Result: true})
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err))
		return
	}

	req, err := models.ParseActionsRequest(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.resolver.Resolve(r.Context(), req)
	if err != nil {
		s.log.Error().Err(err).Int("addresses", len(req.Addresses)).Msg("Failed to resolve actions")
		s.writeError(w, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, models.ActionsResponse{Result: result})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, amount.ErrOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, actions.ErrLookup):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, models.APIResponse[any]{Message: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
