// Package server is a small HTTP API serving /todos from a store.Store.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/cors"

	"github.com/Makepad-fr/tada-client/internal/config"
	"github.com/Makepad-fr/tada-client/internal/store"
	"github.com/Makepad-fr/tada-client/internal/store/jsonstore"
	"github.com/Makepad-fr/tada-client/internal/store/sqlstore"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	store   store.Store
	logger  *log.Logger
	origins []string
}

// New returns a server over st. Browsers are allowed in from origins only.
func New(st store.Store, logger *log.Logger, origins []string) *Server {
	if len(origins) == 0 {
		origins = []string{config.DefaultOrigin}
	}
	return &Server{store: st, logger: logger, origins: origins}
}

// Handler returns the routed handler wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/todos", s.todos)

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"*"},
	})
	return s.logRequests(c.Handler(mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"took", time.Since(start),
		)
	})
}

// OpenStore opens the store named by cfg.Store.
func OpenStore(ctx context.Context, cfg config.ServerConfig) (store.Store, error) {
	switch cfg.Store {
	case "json":
		st, err := jsonstore.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	case sqlstore.SQLite, sqlstore.MySQL:
		st, err := sqlstore.Open(ctx, cfg.Store, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
