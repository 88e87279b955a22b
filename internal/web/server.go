package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/kozaktomas/adproof/internal/compositor"
	"github.com/kozaktomas/adproof/internal/config"
	"github.com/kozaktomas/adproof/internal/constants"
	"github.com/kozaktomas/adproof/internal/generate"
	"github.com/kozaktomas/adproof/internal/storage"
	"github.com/kozaktomas/adproof/internal/web/handlers"
	"github.com/kozaktomas/adproof/internal/web/middleware"
)

// Deps are the collaborators the handlers share.
type Deps struct {
	Store     *storage.FileStore
	Loader    *compositor.Loader
	Exporter  *compositor.Exporter
	Generator *generate.Client
}

// Server represents the web server
type Server struct {
	config     *config.Config
	log        zerolog.Logger
	deps       Deps
	router     *chi.Mux
	httpServer *http.Server
	jobManager *handlers.JobManager
	stopPrune  chan struct{}
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, log zerolog.Logger, deps Deps) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:     cfg,
		log:        log,
		deps:       deps,
		router:     r,
		jobManager: handlers.NewJobManager(),
		stopPrune:  make(chan struct{}),
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	if cfg.Web.TrustProxy {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(middleware.Logger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for SSE, exports and uploads
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server and the job pruner
func (s *Server) Start() error {
	go s.pruneJobs()
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting web server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down web server")
	close(s.stopPrune)
	for _, job := range s.jobManager.ListJobs() {
		job.Cancel()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func (s *Server) pruneJobs() {
	ticker := time.NewTicker(constants.JobPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopPrune:
			return
		case now := <-ticker.C:
			if n := s.jobManager.Prune(now.Add(-constants.JobRetention)); n > 0 {
				s.log.Debug().Int("jobs", n).Msg("pruned finished jobs")
			}
		}
	}
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
