package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"lurelab/internal/api/handlers"
	apimiddleware "lurelab/internal/api/middleware"
	"lurelab/internal/config"
	"lurelab/internal/infrastructure/cache"
	"lurelab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting
	if r.config.RateLimit.Enabled && r.cache != nil {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)
	})

	// API v1 routes
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(apimiddleware.APIKeyAuth(r.config.Auth))

		// Conversation lifecycle
		api.Route("/conversations", func(conv chi.Router) {
			conv.Post("/{id}/messages", r.handlers.Conversations.PostMessage)
			conv.Get("/{id}", r.handlers.Conversations.Get)
			conv.Get("/{id}/intelligence", r.handlers.Conversations.GetIntelligence)
			conv.Delete("/{id}", r.handlers.Conversations.Close)
		})

		// Stateless classification
		api.Post("/analyze", r.handlers.Analyze.Analyze)

		// Aggregate stats
		api.Get("/stats", r.handlers.Stats.Get)

		// Streaming stats
		api.Get("/streaming/stats", r.handlers.Streaming.GetStats)
	})

	// WebSocket live engagement feed
	router.Get("/ws/engagements", r.handlers.Streaming.HandleWebSocket)

	return router
}
