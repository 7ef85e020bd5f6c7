package engagement

import (
	"context"
	"time"

	"lurelab/internal/config"
	"lurelab/internal/domain/models"
	"lurelab/internal/domain/services/ai"
	"lurelab/internal/infrastructure/cache"
	"lurelab/internal/memory"
	"lurelab/internal/repository"
	"lurelab/pkg/logger"
)

// EventPublisher receives engagement events as they happen. Implemented
// by streaming.EventBusPublisher; nil-safe at the call sites so the
// engine runs without a broker.
type EventPublisher interface {
	PublishScamDetected(ctx context.Context, conversationID, persona string, classification models.Classification) error
	PublishEntityCaptured(ctx context.Context, conversationID string, entity models.Entity) error
	PublishPhaseTransition(ctx context.Context, decision models.Decision) error
	PublishConversationClosed(ctx context.Context, state models.ConversationState) error
}

// Service orchestrates one scammer turn end to end: classify, extract,
// remember, decide, respond.
type Service struct {
	logger     *logger.Logger
	classifier *ai.Classifier
	extractor  *ai.Extractor
	registry   memory.Store
	engine     *Engine
	composer   *Composer

	// Optional collaborators
	publisher EventPublisher
	cache     *cache.RedisCache
	archive   *repository.ArchiveRepository

	detectionCfg  config.DetectionConfig
	engagementCfg config.EngagementConfig
}

// ServiceOption customizes optional collaborators
type ServiceOption func(*Service)

// WithPublisher wires an event publisher into the service
func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithCache wires a Redis classification cache into the service
func WithCache(c *cache.RedisCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithArchive wires the PostgreSQL intelligence archive into the service
func WithArchive(a *repository.ArchiveRepository) ServiceOption {
	return func(s *Service) { s.archive = a }
}

// NewService creates the engagement service
func NewService(
	log *logger.Logger,
	classifier *ai.Classifier,
	extractor *ai.Extractor,
	registry memory.Store,
	engine *Engine,
	composer *Composer,
	detectionCfg config.DetectionConfig,
	engagementCfg config.EngagementConfig,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		logger:        log.WithComponent("engagement-service"),
		classifier:    classifier,
		extractor:     extractor,
		registry:      registry,
		engine:        engine,
		composer:      composer,
		detectionCfg:  detectionCfg,
		engagementCfg: engagementCfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TurnResult is everything one processed scammer message produced
type TurnResult struct {
	ConversationID string                    `json:"conversation_id"`
	Classification models.Classification    `json:"classification"`
	Entities       []models.Entity          `json:"entities,omitempty"`
	Decision       models.Decision          `json:"decision"`
	Guidance       models.ResponseGuidance  `json:"guidance"`
	Reply          string                   `json:"reply"`
	State          models.ConversationState `json:"state"`
}

// HandleMessage processes one incoming scammer message and returns the
// full turn result, including the persona's reply.
func (s *Service) HandleMessage(ctx context.Context, conversationID, content string) (*TurnResult, error) {
	log := s.logger.WithConversationID(conversationID)

	classification := s.classify(ctx, content)

	conv := s.registry.GetOrCreate(conversationID, s.engagementCfg.DefaultPersona)
	persona := GetPersona(s.engagementCfg.DefaultPersona)

	// Extraction sees prior messages so repeat mentions gain confidence
	prior := conv.PriorContents()
	entities := s.extractor.Extract(content, prior)

	wasScam := conv.ScamDetected()
	conv.AddMessage(models.RoleScammer, content, &classification, entities)

	if classification.IsScam && !wasScam && s.publisher != nil {
		if err := s.publisher.PublishScamDetected(ctx, conversationID, persona.Name, classification); err != nil {
			log.Warn().Err(err).Msg("failed to publish scam_detected event")
		}
	}

	for _, entity := range entities {
		if s.publisher != nil {
			if err := s.publisher.PublishEntityCaptured(ctx, conversationID, entity); err != nil {
				log.Warn().Err(err).Msg("failed to publish entity_captured event")
			}
		}
		if s.archive != nil {
			if err := s.archive.SaveEntity(ctx, conversationID, entity); err != nil {
				log.Warn().Err(err).Str("entity", entity.Value).Msg("failed to archive entity")
			}
		}
	}

	// Decide runs after the message is recorded so the extraction score
	// already includes this turn's captures
	decision := s.engine.Decide(conv, content, classification)

	if decision.Transitioned() && s.publisher != nil {
		if err := s.publisher.PublishPhaseTransition(ctx, decision); err != nil {
			log.Warn().Err(err).Msg("failed to publish phase_transition event")
		}
	}

	guidance := s.engine.Guidance(decision.NextPhase)
	reply := s.composer.Compose(decision.NextPhase, persona)
	conv.AddMessage(models.RoleAgent, reply, nil, nil)

	state := conv.State()

	if decision.Transitioned() && decision.NextPhase == models.PhaseSafeExit {
		s.closeConversation(ctx, log, state)
		s.invalidateStateCache(ctx, conversationID)
	} else {
		s.refreshStateCache(ctx, state)
	}

	return &TurnResult{
		ConversationID: conversationID,
		Classification: classification,
		Entities:       entities,
		Decision:       decision,
		Guidance:       guidance,
		Reply:          reply,
		State:          state,
	}, nil
}

// closeConversation archives and announces a conversation that reached
// safe exit
func (s *Service) closeConversation(ctx context.Context, log *logger.Logger, state models.ConversationState) {
	if s.publisher != nil {
		if err := s.publisher.PublishConversationClosed(ctx, state); err != nil {
			log.Warn().Err(err).Msg("failed to publish conversation_closed event")
		}
	}
	if s.archive != nil {
		if err := s.archive.SaveConversationSummary(ctx, state); err != nil {
			log.Warn().Err(err).Msg("failed to archive conversation summary")
		}
	}
}

// AnalyzeResult is the stateless verdict for a single message
type AnalyzeResult struct {
	Classification models.Classification `json:"classification"`
	Entities       []models.Entity       `json:"entities,omitempty"`
}

// Analyze classifies and extracts from a message without touching any
// conversation state
func (s *Service) Analyze(ctx context.Context, message string) AnalyzeResult {
	return AnalyzeResult{
		Classification: s.classify(ctx, message),
		Entities:       s.extractor.Extract(message, nil),
	}
}

// classify runs the classifier through the Redis verdict cache when
// enabled
func (s *Service) classify(ctx context.Context, message string) models.Classification {
	if s.cache == nil || !s.detectionCfg.CacheEnabled {
		return s.classifier.Classify(message)
	}

	hash := cache.MessageHash(message)
	if cached, err := s.cache.GetCachedClassification(ctx, hash); err == nil {
		return cached
	} else if !cache.IsCacheMiss(err) {
		s.logger.Debug().Err(err).Msg("classification cache read failed")
	}

	result := s.classifier.Classify(message)

	ttl := s.detectionCfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if err := s.cache.CacheClassification(ctx, hash, result, ttl); err != nil {
		s.logger.Debug().Err(err).Msg("classification cache write failed")
	}

	return result
}

// refreshStateCache keeps the Redis snapshot of a live conversation
// current so dashboards can read state without hitting the registry.
func (s *Service) refreshStateCache(ctx context.Context, state models.ConversationState) {
	if s.cache == nil {
		return
	}
	ttl := s.engagementCfg.ConversationTimeout
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := s.cache.CacheConversationState(ctx, state, ttl); err != nil {
		s.logger.Debug().Err(err).Msg("conversation cache write failed")
	}
}

func (s *Service) invalidateStateCache(ctx context.Context, conversationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateConversation(ctx, conversationID); err != nil {
		s.logger.Debug().Err(err).Msg("conversation cache invalidation failed")
	}
}

// ConversationDetail is the dashboard view of a tracked conversation
type ConversationDetail struct {
	State    models.ConversationState `json:"state"`
	Messages []models.Message         `json:"messages"`
}

// GetConversation returns a conversation's state and recent transcript.
// Returns memory.ErrConversationNotFound for unknown ids.
func (s *Service) GetConversation(ctx context.Context, conversationID string, recentTurns int) (*ConversationDetail, error) {
	conv, err := s.registry.Get(conversationID)
	if err != nil {
		return nil, err
	}

	if recentTurns <= 0 {
		recentTurns = 50
	}

	return &ConversationDetail{
		State:    conv.State(),
		Messages: conv.RecentMessages(recentTurns),
	}, nil
}

// GetIntelligence returns the distinct-value ledger for a conversation.
// Returns memory.ErrConversationNotFound for unknown ids.
func (s *Service) GetIntelligence(ctx context.Context, conversationID string) (map[models.EntityType][]models.IntelligenceItem, error) {
	conv, err := s.registry.Get(conversationID)
	if err != nil {
		return nil, err
	}
	return conv.Intelligence(), nil
}

// CloseConversation removes a conversation from memory, archiving its
// final state first. Returns memory.ErrConversationNotFound for
// unknown ids.
func (s *Service) CloseConversation(ctx context.Context, conversationID string) (models.ConversationState, error) {
	conv, err := s.registry.Get(conversationID)
	if err != nil {
		return models.ConversationState{}, err
	}

	state := conv.State()
	s.closeConversation(ctx, s.logger.WithConversationID(conversationID), state)
	s.registry.Delete(conversationID)
	s.invalidateStateCache(ctx, conversationID)

	return state, nil
}

// EngineStats aggregates runtime counters for the stats endpoint
type EngineStats struct {
	Registry   models.RegistryStats `json:"registry"`
	Classifier ai.ClassifierStats   `json:"classifier"`
}

// Stats returns registry and classifier counters
func (s *Service) Stats() EngineStats {
	return EngineStats{
		Registry:   s.registry.Stats(),
		Classifier: s.classifier.Stats(),
	}
}
