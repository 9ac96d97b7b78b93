// Package api serves the BlockVault HTTP interface.
//
// Routes are JSON-only plus /healthz. Errors travel as a {error, code}
// envelope; the status code comes from the structured error code, so
// handlers return errors instead of writing statuses themselves.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/parthk/blockvault/pkg/vault"
)

// Server hosts the HTTP API over a vault service.
type Server struct {
	svc    *vault.Service
	logger *log.Logger
	http   *http.Server
}

// New creates a Server listening on addr.
func New(svc *vault.Service, addr string, logger *log.Logger) *Server {
	s := &Server{svc: svc, logger: logger}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the chi router with all endpoints registered.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Post("/upload-block", s.handle(s.uploadBlock))
	r.Get("/blocks/{fileID}", s.handle(s.listBlocks))
	r.Post("/verify-blocks", s.handle(s.verifyBlocks))

	r.Post("/files", s.handle(s.uploadFile))
	r.Get("/files/{fileID}", s.handle(s.fileInfo))
	r.Get("/download/{fileID}", s.handle(s.download))

	r.Get("/search", s.handle(s.search))

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
