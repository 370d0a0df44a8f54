package api

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/CAFxX/httpcompression"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/ddonindia/lodestarr/internal/api/handlers"
	apiMiddleware "github.com/ddonindia/lodestarr/internal/api/middleware"
	"github.com/ddonindia/lodestarr/internal/config"
)

//go:embed all:static
var staticFiles embed.FS

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if compressor, err := httpcompression.DefaultAdapter(); err != nil {
		log.Error().Err(err).Msg("Failed to create HTTP compression adapter")
	} else {
		r.Use(compressor)
	}

	// Rate limiting by IP (applies to all requests)
	r.Use(apiMiddleware.RateLimitByIP)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check and metrics (no auth required)
	r.Get("/health", handlers.HealthCheck)
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Group(func(r chi.Router) {
			// Torznab API - uses query param apikey with stricter rate
			// limit. {id} is either a loaded indexer's ID or the literal
			// "all" to search every configured source at once.
			r.With(apiMiddleware.RateLimitTorznab).Get("/v2.0/indexers/{id}/results/torznab", handlers.Torznab)

			// Download proxy - stable origin Torznab clients fetch
			// .torrent payloads through, regardless of the underlying
			// indexer's session requirements. Outside API-key auth so a
			// download link handed out in an RSS feed keeps working.
			r.Get("/v2.0/indexers/{id}/dl", handlers.DownloadProxy)

			// Setup wizard - public for first run
			r.Get("/setup/status", handlers.GetSetupStatus)
			r.Post("/setup/complete", handlers.CompleteSetup)

			// API key retrieval - for frontend authentication
			r.Get("/auth/key", handlers.GetAPIKey)
		})

		// Protected API endpoints
		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.APIKeyAuth)
			r.Use(apiMiddleware.RateLimitByAPIKey)

			// Stats & history
			r.Get("/stats", handlers.GetStats)
			r.Get("/history", handlers.GetHistory)
			r.Get("/activity", handlers.GetActivity)

			// Native indexer management
			r.Route("/native", func(r chi.Router) {
				r.Get("/list", handlers.ListNativeIndexers)
				r.Get("/local", handlers.ListLocalDefinitions)
				r.Post("/search", handlers.SearchNative)
				r.Post("/download", handlers.DownloadNative)
				r.Delete("/delete/{id}", handlers.DeleteNative)
				r.Get("/{id}/settings", handlers.GetNativeSettings)
				r.Put("/{id}/settings", handlers.UpdateNativeSettings)
				r.Post("/{id}/test", handlers.TestNative)
			})

			// Proxied indexer management
			r.Route("/proxied", func(r chi.Router) {
				r.Get("/", handlers.ListProxiedIndexers)
				r.Post("/", handlers.AddProxiedIndexer)
				r.Put("/{id}", handlers.UpdateProxiedIndexer)
				r.Delete("/{id}", handlers.DeleteProxiedIndexer)
				r.Post("/{id}/test", handlers.TestProxiedIndexer)
			})

			// Settings
			r.Route("/settings", func(r chi.Router) {
				r.Get("/", handlers.GetSettings)
				r.Put("/", handlers.UpdateSettings)
				r.Get("/export", handlers.ExportConfig)
				r.Post("/import", handlers.ImportConfig)
			})

			// API Keys management
			r.Route("/apikeys", func(r chi.Router) {
				r.Get("/", handlers.GetAPIKeys)
				r.Post("/", handlers.CreateAPIKey)
				r.Get("/permissions", handlers.GetAvailablePermissions)
				r.Get("/{id}", handlers.GetAPIKeyByID)
				r.Put("/{id}", handlers.UpdateAPIKey)
				r.Delete("/{id}", handlers.DeleteAPIKey)
				r.Post("/{id}/enable", handlers.EnableAPIKey)
				r.Post("/{id}/disable", handlers.DisableAPIKey)
			})
		})
	})

	// Serve static frontend files
	r.Get("/*", staticFileHandler())

	log.Info().Msg("Router initialized")
	return r
}

// staticFileHandler serves the embedded frontend files
func staticFileHandler() http.HandlerFunc {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Warn().Err(err).Msg("Static files not found, frontend will not be served")
		return func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}
	}

	fileServer := http.FileServer(http.FS(staticFS))

	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		file, err := staticFS.Open(strings.TrimPrefix(path, "/"))
		if err != nil {
			if !strings.Contains(path, ".") {
				r.URL.Path = "/"
				fileServer.ServeHTTP(w, r)
				return
			}
			http.NotFound(w, r)
			return
		}
		file.Close()

		fileServer.ServeHTTP(w, r)
	}
}
