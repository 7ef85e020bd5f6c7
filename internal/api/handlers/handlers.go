package handlers

import (
	"lurelab/internal/engagement"
	"lurelab/internal/infrastructure/cache"
	"lurelab/internal/infrastructure/database"
	"lurelab/internal/repository"
	"lurelab/internal/streaming"
	"lurelab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health        *HealthHandler
	Conversations *ConversationsHandler
	Analyze       *AnalyzeHandler
	Stats         *StatsHandler
	Streaming     *StreamingHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Engagement *engagement.Service
	Cache      *cache.RedisCache
	DB         *database.PostgresDB
	Archive    *repository.ArchiveRepository
	WSHub      *streaming.WebSocketHub
	EventBus   *streaming.EventBus
	Logger     *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:        NewHealthHandler(deps.Cache, deps.DB, deps.Logger),
		Conversations: NewConversationsHandler(deps.Engagement, deps.Logger),
		Analyze:       NewAnalyzeHandler(deps.Engagement, deps.Logger),
		Stats:         NewStatsHandler(deps.Engagement, deps.Archive, deps.Logger),
		Streaming:     NewStreamingHandler(deps.WSHub, deps.EventBus, deps.Logger),
	}
}
