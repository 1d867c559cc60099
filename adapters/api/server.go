package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"gocondprob/adapters/markdown"
	"gocondprob/adapters/session"
	"gocondprob/app"
	"gocondprob/domain/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds uploaded sessions
const maxBodyBytes = 32 << 20

// Server exposes the analysis service over HTTP
type Server struct {
	router        *chi.Mux
	service       *app.AnalysisService
	sessions      *session.JSONReader
	renderer      *markdown.Renderer
	defaultWindow core.Millis
}

// NewServer creates the HTTP API
func NewServer(service *app.AnalysisService, defaultWindow core.Millis) *Server {
	if defaultWindow <= 0 {
		defaultWindow = core.Window10s
	}
	s := &Server{
		router:        chi.NewRouter(),
		service:       service,
		sessions:      session.NewJSONReader(),
		renderer:      markdown.NewRenderer(),
		defaultWindow: defaultWindow,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/analyses", s.handleAnalyze)
		r.Get("/analyses/{id}", s.handleGetAnalysis)
		r.Get("/analyses/{id}/report", s.handleAnalysisReport)
		r.Get("/sessions/{id}/analyses", s.handleListSessionAnalyses)
		r.Post("/background", s.handleBackground)
	})
}

// ServeHTTP makes the server usable as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[API] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("[API] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
