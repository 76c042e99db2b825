package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hollis/supportdesk/internal/api"
	"github.com/hollis/supportdesk/internal/config"
	"github.com/hollis/supportdesk/internal/domain"
	"github.com/hollis/supportdesk/internal/llm/gemini"
	"github.com/hollis/supportdesk/internal/repository/mongo"
	redisrepo "github.com/hollis/supportdesk/internal/repository/redis"
	"github.com/hollis/supportdesk/internal/retrieval"
	"github.com/hollis/supportdesk/internal/service"
	"github.com/hollis/supportdesk/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting support desk server")

	ctx := context.Background()

	// Record store
	store, err := mongo.NewStore(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to record store")
	}
	defer store.Close(context.Background())

	// Session state
	redisClient, err := redisrepo.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// LLM collaborator
	provider, err := gemini.NewProvider(ctx, cfg.LLM.Gemini)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize LLM provider")
	}
	defer provider.Close()

	// Repositories
	records := mongo.NewRecordStore(store)
	conversations := mongo.NewConversationRepository(store)
	memories := mongo.NewMemoryRepository(store)
	session := redisrepo.NewSessionStore(redisClient)

	// Core components
	engine := retrieval.NewEngine(records, provider, cfg.Retrieval)
	refunds := workflow.NewRefundWorkflow(records, cfg.Refund.ReturnWindow)

	specialists := map[domain.RouteLabel]service.Specialist{
		domain.RouteProduct: service.NewProductSpecialist(engine, records, provider),
		domain.RouteOrder:   service.NewOrderSpecialist(records, provider),
		domain.RouteBilling: service.NewBillingSpecialist(records, provider),
		domain.RouteRefund:  service.NewRefundSpecialist(refunds),
	}

	consolidator := service.NewConsolidator(provider, memories, cfg.Memory.QueueSize, cfg.Memory.Timeout)
	defer consolidator.Close()

	coordinator := service.NewCoordinator(
		provider,
		specialists,
		conversations,
		session,
		memories,
		consolidator,
		cfg.Router,
	)

	limiter := redisrepo.NewRateLimiter(redisClient, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)

	router := api.NewRouter(cfg, store, redisClient, coordinator, limiter)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
