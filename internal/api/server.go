// Package api exposes the classification engine over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/deductible/internal/engine"
	"github.com/Veraticus/deductible/internal/service"
	"github.com/gorilla/mux"
)

const (
	// MaxBatchSize bounds the number of transactions in one bulk request.
	MaxBatchSize = 10000
	maxBodyBytes = 10 << 20
)

// Server handles classification requests.
type Server struct {
	engine    *engine.Engine
	overrides service.OverrideReader
	history   service.HistoryStore
	logger    *slog.Logger
	userID    string
}

// Option configures a Server.
type Option func(*Server)

// WithOverrideReader loads toggles and overrides for every request from store.
func WithOverrideReader(store service.OverrideReader, userID string) Option {
	return func(s *Server) {
		s.overrides = store
		s.userID = userID
	}
}

// WithHistory records every bulk result to store.
func WithHistory(store service.HistoryStore) Option {
	return func(s *Server) {
		s.history = store
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server over an engine.
func NewServer(e *engine.Engine, opts ...Option) *Server {
	s := &Server{
		engine: e,
		logger: slog.Default(),
		userID: "default",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "api")
	return s
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/classify/bulk", s.handleBulk).Methods(http.MethodPost)
	api.HandleFunc("/classify", s.handleSingle).Methods(http.MethodPost)
	api.HandleFunc("/cache/stats", s.handleCacheStats).Methods(http.MethodGet)
	api.HandleFunc("/tables/stats", s.handleTableStats).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	return router
}

// loadOverrides returns the stored toggles and overrides, or empty ones when
// no store is configured.
func (s *Server) loadOverrides(ctx context.Context) (engine.Overrides, error) {
	if s.overrides == nil {
		return engine.Overrides{}, nil
	}
	return engine.LoadOverrides(ctx, s.overrides, s.userID)
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
