// Package server provides the HTTP API for notice extraction.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/notice-extractor/internal/observability"
	"github.com/jonathan/notice-extractor/internal/types"
)

// Extractor runs the extraction pipeline for one document
type Extractor interface {
	Run(ctx context.Context, buf []byte, mimeType string) types.PipelineResult
}

// ProviderInfo describes the configured AI backend for /health
type ProviderInfo struct {
	Name       string   `json:"provider"`
	Multimodal bool     `json:"multimodal"`
	Models     []string `json:"models"`
}

// Config holds server configuration
type Config struct {
	Port              int
	MaxUploadBytes    int64
	MaxConcurrentRuns int
	// ShutdownTimeout bounds graceful shutdown; defaults to 30s
	ShutdownTimeout time.Duration
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	extractor  Extractor
	provider   ProviderInfo
	runs       *semaphore.Weighted
	cfg        Config
	logger     *slog.Logger
}

// New creates a new server instance
func New(cfg Config, extractor Extractor, provider ProviderInfo, logger *slog.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = 4
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		extractor: extractor,
		provider:  provider,
		runs:      semaphore.NewWeighted(int64(cfg.MaxConcurrentRuns)),
		cfg:       cfg,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for model calls
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until ctx is done, then shuts down gracefully, letting
// in-flight extractions finish within ShutdownTimeout.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.start", "addr", ln.Addr().String(), "provider", s.provider.Name)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("server.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server.stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging and a request-scoped logger
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With("request_id", uuid.NewString())
		ctx := observability.WithLogger(r.Context(), logger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", rec.status,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("http.encode.failed", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
