package web

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/adproof/internal/web/handlers"
	"github.com/kozaktomas/adproof/internal/web/middleware"
	"github.com/kozaktomas/adproof/internal/web/static"
)

func (s *Server) setupRoutes() {
	// Create handlers
	configHandler := handlers.NewConfigHandler(s.config, s.deps.Generator)
	catalogHandler := handlers.NewCatalogHandler(s.log)
	adsHandler := handlers.NewAdsHandler(s.config, s.log, s.deps.Store)
	versionsHandler := handlers.NewVersionsHandler(s.config, s.log, s.deps.Store, s.deps.Loader)
	exportHandler := handlers.NewExportHandler(s.log, s.deps.Exporter, s.deps.Loader)
	generateHandler := handlers.NewGenerateHandler(s.config, s.log, s.deps.Generator, s.deps.Loader, s.jobManager)
	reviewsHandler := handlers.NewReviewsHandler(s.config, s.log)
	notificationsHandler := handlers.NewNotificationsHandler(s.log)
	filesHandler := handlers.NewFilesHandler(s.deps.Store)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health", handlers.HealthCheck)
		r.Get("/files/*", filesHandler.Serve)
		r.Get("/review/{token}", reviewsHandler.Page)
		r.With(middleware.RateLimit(s.config.Review.RateLimitPerMinute, time.Minute)).
			Post("/review/{token}/respond", reviewsHandler.Respond)

		// Everything else requires the API key
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIKey(s.config.Web.APIKey))

			r.Get("/config", configHandler.Get)

			// Catalog
			r.Get("/clients", catalogHandler.ListClients)
			r.Post("/clients", catalogHandler.CreateClient)
			r.Get("/publications", catalogHandler.ListPublications)
			r.Post("/publications", catalogHandler.CreatePublication)
			r.Get("/publications/{id}/issues", catalogHandler.ListIssues)
			r.Post("/publications/{id}/issues", catalogHandler.CreateIssue)
			r.Get("/ad-sizes", catalogHandler.ListAdSizes)

			// Ads
			r.Get("/ads", adsHandler.List)
			r.Post("/ads", adsHandler.Create)
			r.Get("/ads/{id}", adsHandler.Get)
			r.Patch("/ads/{id}/status", adsHandler.UpdateStatus)
			r.Patch("/ads/{id}/specs", adsHandler.UpdateSpecs)
			r.Get("/ads/{id}/assets", adsHandler.ListAssets)
			r.Post("/ads/{id}/assets", adsHandler.UploadAsset)

			// Versions
			r.Get("/ads/{id}/versions", versionsHandler.List)
			r.Post("/ads/{id}/versions", versionsHandler.Create)
			r.Post("/ads/{id}/versions/select", versionsHandler.Select)
			r.Patch("/versions/{id}/status", versionsHandler.UpdateStatus)
			r.Put("/versions/{id}/transform", versionsHandler.SaveTransform)
			r.Get("/versions/{id}/editor", versionsHandler.Editor)
			r.Get("/versions/{id}/thumbnail", versionsHandler.Thumbnail)

			// Export
			r.Get("/versions/{id}/export", exportHandler.Export)
			r.Get("/versions/{id}/original", exportHandler.Original)

			// Generation (long-running)
			r.Post("/ads/{id}/generate", generateHandler.Start)
			r.Get("/jobs/{jobId}", generateHandler.Status)
			r.Get("/jobs/{jobId}/events", generateHandler.Events)
			r.Delete("/jobs/{jobId}", generateHandler.Cancel)

			// Reviews
			r.Post("/ads/{id}/reviews", reviewsHandler.Create)
			r.Get("/ads/{id}/reviews", reviewsHandler.List)

			// Notifications
			r.Get("/notifications", notificationsHandler.List)
			r.Get("/notifications/unread-count", notificationsHandler.UnreadCount)
			r.Post("/notifications/{id}/read", notificationsHandler.MarkRead)
			r.Post("/notifications/read-all", notificationsHandler.MarkAllRead)
		})
	})

	// Serve static files for the editor (SPA)
	s.router.Get("/*", s.serveSPA)
}

var contentTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "application/javascript; charset=utf-8",
	".json":  "application/json",
	".wasm":  "application/wasm",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".ico":   "image/x-icon",
	".woff2": "font/woff2",
}

func contentTypeFor(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		if ct, ok := contentTypes[path[i:]]; ok {
			return ct
		}
	}
	return "application/octet-stream"
}

// serveSPA serves the embedded editor; unknown non-asset paths get index.html
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	fs := static.GetFileSystem()
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	if f, err := fs.Open(path); err == nil {
		defer f.Close()
		if stat, err := f.Stat(); err == nil && !stat.IsDir() {
			w.Header().Set("Content-Type", contentTypeFor(path))
			if strings.HasPrefix(path, "/assets/") {
				w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			}
			w.WriteHeader(http.StatusOK)
			io.Copy(w, f)
			return
		}
	}

	if strings.HasPrefix(path, "/assets/") {
		http.NotFound(w, r)
		return
	}
	index, err := fs.Open("/index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer index.Close()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, index)
}
