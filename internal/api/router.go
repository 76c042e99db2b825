package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hollis/supportdesk/internal/api/handler"
	customMiddleware "github.com/hollis/supportdesk/internal/api/middleware"
	"github.com/hollis/supportdesk/internal/config"
	"github.com/hollis/supportdesk/internal/repository/mongo"
	redisrepo "github.com/hollis/supportdesk/internal/repository/redis"
	"github.com/hollis/supportdesk/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, store *mongo.Store, cache *redisrepo.Client, coordinator *service.Coordinator, limiter *redisrepo.RateLimiter) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	chatHandler := handler.NewChatHandler(coordinator)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(limiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(store, cache))

		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware.Limit)

			r.Post("/chat", chatHandler.Send)

			r.Route("/conversations/{conversationID}", func(r chi.Router) {
				r.Get("/", chatHandler.History)
				r.Delete("/", chatHandler.Delete)
			})
		})
	})

	return r
}
