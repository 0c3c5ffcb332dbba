package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/brandpulse/brandpulse/internal/api/handlers"
	"github.com/brandpulse/brandpulse/internal/api/middleware"
	"github.com/brandpulse/brandpulse/internal/observability"
	"github.com/brandpulse/brandpulse/internal/repository/postgres"
	rediscache "github.com/brandpulse/brandpulse/internal/repository/redis"
	"github.com/brandpulse/brandpulse/internal/services/competitor"
	"github.com/brandpulse/brandpulse/internal/services/market"
	"github.com/brandpulse/brandpulse/internal/services/social"
	"github.com/brandpulse/brandpulse/internal/services/strategy"
	"github.com/brandpulse/brandpulse/internal/storage"
	"github.com/brandpulse/brandpulse/pkg/httputil"
)

// Router holds the HTTP router and its dependencies
type Router struct {
	chi.Router
	logger *zap.Logger
}

// RouterConfig contains configuration for the router
type RouterConfig struct {
	Repos      *postgres.Repositories
	Cache      *rediscache.Cache
	Competitor *competitor.Service
	Parser     *strategy.Parser
	Market     *market.Service
	Instagram  *social.InstagramService
	Briefs     *storage.MinIOClient
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	EnableCORS bool
	RateLimit  int
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Base middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Handler)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Handler)
	r.Use(chimw.Timeout(60 * time.Second))

	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.HTTPMiddleware)
	}

	// CORS configuration
	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Rate limiting (if Redis is available)
	if cfg.Cache != nil && cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimitMiddleware(cfg.Cache, cfg.RateLimit, true).Handler)
	}

	// Health check endpoints
	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(cfg.Repos, cfg.Cache))

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	// Initialize handlers
	campaignHandler := handlers.NewCampaignHandler(cfg.Repos.Campaigns, cfg.Cache, cfg.Parser, cfg.Briefs, cfg.Logger)
	competitorHandler := handlers.NewCompetitorHandler(cfg.Competitor, cfg.Cache, cfg.Logger)
	marketHandler := handlers.NewMarketHandler(cfg.Market, cfg.Logger)
	instagramHandler := handlers.NewInstagramHandler(cfg.Instagram, cfg.Logger)

	// Campaign intake keeps its legacy path for agent compatibility
	r.Post("/campaign/upload-prompt", campaignHandler.UploadPrompt)

	r.Route("/api", func(r chi.Router) {
		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", campaignHandler.List)
			r.Get("/{id}", campaignHandler.Get)
			r.Get("/{id}/status", campaignHandler.GetStatus)
			r.Post("/{id}/results", campaignHandler.AppendResult)
			r.Patch("/{id}/status", campaignHandler.UpdateStatus)
			r.Delete("/{id}", campaignHandler.Delete)
		})

		r.Post("/competitors/analyze", competitorHandler.Analyze)
		r.Post("/market/influencers", marketHandler.FindInfluencers)

		r.Route("/instagram", func(r chi.Router) {
			r.Post("/post", instagramHandler.Post)
			r.Get("/insights", instagramHandler.GetInsights)
		})
	})

	return &Router{
		Router: r,
		logger: cfg.Logger,
	}
}

// healthHandler returns basic health status
func healthHandler(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "brandpulse-api",
	})
}

// readyHandler checks if all dependencies are ready
func readyHandler(repos *postgres.Repositories, cache *rediscache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string)
		allHealthy := true

		if repos != nil {
			checks["database"] = "healthy"
		} else {
			checks["database"] = "not configured"
		}

		// Check Redis if available
		if cache != nil {
			if err := cache.Health(r.Context()); err != nil {
				checks["redis"] = "unhealthy: " + err.Error()
				allHealthy = false
			} else {
				checks["redis"] = "healthy"
			}
		} else {
			checks["redis"] = "not configured"
		}

		status := http.StatusOK
		statusText := "ready"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			statusText = "not ready"
		}

		httputil.JSON(w, status, map[string]any{
			"status": statusText,
			"checks": checks,
		})
	}
}
