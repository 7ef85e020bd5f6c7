package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lurelab/internal/api"
	"lurelab/internal/api/handlers"
	"lurelab/internal/config"
	"lurelab/internal/domain/services/ai"
	"lurelab/internal/engagement"
	"lurelab/internal/infrastructure/cache"
	"lurelab/internal/infrastructure/database"
	"lurelab/internal/memory"
	"lurelab/internal/repository"
	"lurelab/internal/streaming"
	"lurelab/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting LureLab")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure
	db, redisCache := initInfrastructure(ctx, cfg, log)
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Intelligence archive (best effort, engine runs without it)
	var archive *repository.ArchiveRepository
	if db != nil {
		if err := db.EnsureSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to prepare archive schema, continuing without archive")
		} else {
			archive = repository.NewArchiveRepository(db, log)
			log.Info().Msg("intelligence archive initialized")
		}
	}

	// Initialize streaming infrastructure
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		var err error
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without distributed streaming")
		} else {
			log.Info().Str("url", cfg.NATS.URL).Msg("connected to NATS")
		}
	}

	// Create event bus for real-time updates
	eventBus := streaming.NewEventBus(natsPublisher, log)
	log.Info().Bool("nats_enabled", natsPublisher != nil).Msg("event bus initialized")

	// Create WebSocket hub for the live engagement feed
	wsHub := streaming.NewWebSocketHub(natsPublisher, log)
	go wsHub.Run(ctx)

	eventPublisher := streaming.NewEventBusPublisher(eventBus, wsHub)

	// Initialize detection services
	classifier := ai.NewClassifier(log, ai.ClassifierConfig{
		ScamThreshold: cfg.Detection.ScamThreshold,
	})
	extractor := ai.NewExtractor(log)

	// Conversation memory
	registry := memory.NewRegistry(memory.RegistryConfig{
		MaxConversations: cfg.Memory.MaxConversations,
		Retention:        cfg.Memory.Retention,
	}, log)
	registry.StartJanitor(ctx, cfg.Memory.CleanupInterval)

	// Strategy engine and response composer
	engine := engagement.NewEngine(log, engagement.EngineConfig{
		ExtractionThreshold: cfg.Engagement.ExtractionThreshold,
		SafetyThreshold:     cfg.Engagement.SafetyThreshold,
		MaxTurns:            cfg.Engagement.MaxTurns,
		MaxPhoneNumbers:     cfg.Engagement.MaxPhoneNumbers,
		MaxBankAccounts:     cfg.Engagement.MaxBankAccounts,
		ConversationTimeout: cfg.Engagement.ConversationTimeout,
	})
	composer := engagement.NewComposer(rand.New(rand.NewSource(time.Now().UnixNano())))

	// Engagement orchestrator
	opts := []engagement.ServiceOption{
		engagement.WithPublisher(eventPublisher),
	}
	if redisCache != nil {
		opts = append(opts, engagement.WithCache(redisCache))
	}
	if archive != nil {
		opts = append(opts, engagement.WithArchive(archive))
	}
	service := engagement.NewService(
		log, classifier, extractor, registry, engine, composer,
		cfg.Detection, cfg.Engagement, opts...,
	)
	log.Info().Str("persona", cfg.Engagement.DefaultPersona).Msg("engagement service initialized")

	// Initialize handlers
	deps := handlers.Dependencies{
		Engagement: service,
		Cache:      redisCache,
		DB:         db,
		Archive:    archive,
		WSHub:      wsHub,
		EventBus:   eventBus,
		Logger:     log,
	}
	h := handlers.NewHandlers(deps)

	// Create router
	router := api.NewRouter(*cfg, h, redisCache, log)
	httpHandler := router.Setup()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Cancel context to stop background services
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	eventBus.Close()

	log.Info().Msg("shutdown complete")
}

// initInfrastructure connects to PostgreSQL and Redis. Both are
// optional: the engine keeps full conversation state in memory.
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without archive")
			db = nil
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
			redisCache = nil
		}
	}

	return db, redisCache
}
