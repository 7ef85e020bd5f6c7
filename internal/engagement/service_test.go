package engagement

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lurelab/internal/config"
	"lurelab/internal/domain/models"
	"lurelab/internal/domain/services/ai"
	"lurelab/internal/memory"
	"lurelab/pkg/logger"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu            sync.Mutex
	scamsDetected []string
	entities      []models.Entity
	transitions   []models.Decision
	closed        []models.ConversationState
}

func (p *recordingPublisher) PublishScamDetected(_ context.Context, conversationID, _ string, _ models.Classification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scamsDetected = append(p.scamsDetected, conversationID)
	return nil
}

func (p *recordingPublisher) PublishEntityCaptured(_ context.Context, _ string, entity models.Entity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entities = append(p.entities, entity)
	return nil
}

func (p *recordingPublisher) PublishPhaseTransition(_ context.Context, decision models.Decision) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transitions = append(p.transitions, decision)
	return nil
}

func (p *recordingPublisher) PublishConversationClosed(_ context.Context, state models.ConversationState) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, state)
	return nil
}

// trackingStore wraps the registry to verify the service goes through
// the Store interface.
type trackingStore struct {
	*memory.Registry
	creates int
}

func (s *trackingStore) GetOrCreate(id, personaName string) *memory.Conversation {
	s.creates++
	return s.Registry.GetOrCreate(id, personaName)
}

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	log := logger.NewDefault()
	return NewService(
		log,
		ai.NewClassifier(log, ai.ClassifierConfig{}),
		ai.NewExtractor(log),
		memory.NewRegistry(memory.RegistryConfig{}, log),
		NewEngine(log, EngineConfig{}),
		NewComposer(rand.New(rand.NewSource(1))),
		config.DetectionConfig{},
		config.EngagementConfig{DefaultPersona: "ramesh"},
		opts...,
	)
}

func TestHandleMessageCapturesEntities(t *testing.T) {
	publisher := &recordingPublisher{}
	service := newTestService(t, WithPublisher(publisher))
	ctx := context.Background()

	result, err := service.HandleMessage(ctx, "conv-1", "Send 100 rupees to scammer@paybank to secure your account. Quick!")
	require.NoError(t, err)

	assert.True(t, result.Classification.IsScam)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, models.EntityPaymentHandle, result.Entities[0].Type)
	assert.Equal(t, "scammer@paybank", result.Entities[0].Value)
	assert.NotEmpty(t, result.Reply)
	assert.Equal(t, 2, result.State.TurnCount) // scammer turn + agent reply
	assert.Equal(t, 1, result.State.IntelligenceCount)

	assert.Equal(t, []string{"conv-1"}, publisher.scamsDetected)
	require.Len(t, publisher.entities, 1)
	assert.Equal(t, "scammer@paybank", publisher.entities[0].Value)

	intel, err := service.GetIntelligence(ctx, "conv-1")
	require.NoError(t, err)
	items := intel[models.EntityPaymentHandle]
	require.Len(t, items, 1)
	assert.Equal(t, "scammer@paybank", items[0].Value)
}

func TestServiceAcceptsAnyStore(t *testing.T) {
	log := logger.NewDefault()
	store := &trackingStore{Registry: memory.NewRegistry(memory.RegistryConfig{}, log)}
	service := NewService(
		log,
		ai.NewClassifier(log, ai.ClassifierConfig{}),
		ai.NewExtractor(log),
		store,
		NewEngine(log, EngineConfig{}),
		NewComposer(rand.New(rand.NewSource(1))),
		config.DetectionConfig{},
		config.EngagementConfig{DefaultPersona: "ramesh"},
	)

	_, err := service.HandleMessage(context.Background(), "conv-1", "Please verify your account urgently")
	require.NoError(t, err)
	assert.Equal(t, 1, store.creates)
}

func TestHandleMessageScamDetectedFiresOnce(t *testing.T) {
	publisher := &recordingPublisher{}
	service := newTestService(t, WithPublisher(publisher))
	ctx := context.Background()

	message := "Urgent! Verify your account or it will be blocked immediately"
	_, err := service.HandleMessage(ctx, "conv-1", message)
	require.NoError(t, err)
	_, err = service.HandleMessage(ctx, "conv-1", message)
	require.NoError(t, err)

	assert.Len(t, publisher.scamsDetected, 1)
}

func TestHandleMessageNonScamGoesToSafeExit(t *testing.T) {
	publisher := &recordingPublisher{}
	service := newTestService(t, WithPublisher(publisher))
	ctx := context.Background()

	result, err := service.HandleMessage(ctx, "conv-1", "Hey, are we still meeting for lunch tomorrow around noon")
	require.NoError(t, err)

	assert.False(t, result.Classification.IsScam)
	assert.Equal(t, models.PhaseSafeExit, result.Decision.NextPhase)
	assert.Equal(t, models.PhaseSafeExit, result.State.CurrentPhase)
	require.Len(t, publisher.transitions, 1)
	require.Len(t, publisher.closed, 1)
	assert.Equal(t, "conv-1", publisher.closed[0].ConversationID)
}

func TestHandleMessageProgressesThroughPhases(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	// Identification: repeated script keywords confirm the scam.
	_, err := service.HandleMessage(ctx, "conv-1", "Urgent! Your account will be blocked, verify immediately")
	require.NoError(t, err)
	result, err := service.HandleMessage(ctx, "conv-1", "You must verify and confirm your account now, it is urgent")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseBuildTrust, result.State.CurrentPhase)

	// Build trust: action request moves to extraction.
	result, err = service.HandleMessage(ctx, "conv-1", "Urgent: verify your blocked account, download the app and click the link")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseExtractIntelligence, result.State.CurrentPhase)
}

func TestHandleMessageSafetyExitOnNumberFlood(t *testing.T) {
	publisher := &recordingPublisher{}
	service := newTestService(t, WithPublisher(publisher))
	ctx := context.Background()

	// Walk to DELAY_PROBE first.
	_, err := service.HandleMessage(ctx, "conv-1", "Urgent! Your account will be blocked, verify immediately")
	require.NoError(t, err)
	_, err = service.HandleMessage(ctx, "conv-1", "Verify and confirm your urgent blocked account")
	require.NoError(t, err)
	_, err = service.HandleMessage(ctx, "conv-1", "Urgent account verify: download the app, click the link, pay the fee")
	require.NoError(t, err)

	conv, err := service.registry.Get("conv-1")
	require.NoError(t, err)
	require.Equal(t, models.PhaseExtractIntelligence, conv.Phase())
	conv.SetPhase(models.PhaseDelayProbe)

	// Every 10-digit callback number lands in the ledger as both a phone
	// and a candidate bank account, so three distinct numbers already
	// trip the account tripwire.
	var result *TurnResult
	for i := 0; i < 3; i++ {
		message := fmt.Sprintf("Urgent, verify your account immediately: call 987654321%d now", i)
		result, err = service.HandleMessage(ctx, "conv-1", message)
		require.NoError(t, err)
	}

	assert.Equal(t, models.PhaseSafeExit, result.State.CurrentPhase)
	assert.Contains(t, result.Decision.Rationale, "Safety threshold")
	require.Len(t, publisher.closed, 1)
}

func TestAnalyzeIsStateless(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	result := service.Analyze(ctx, "Verify your UPI id winner@ybl urgently or account blocked")

	assert.True(t, result.Classification.IsScam)
	require.NotEmpty(t, result.Entities)
	assert.Equal(t, 0, service.Stats().Registry.ActiveConversations)
}

func TestGetConversationUnknownID(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.GetConversation(ctx, "missing", 10)
	assert.ErrorIs(t, err, memory.ErrConversationNotFound)

	_, err = service.GetIntelligence(ctx, "missing")
	assert.ErrorIs(t, err, memory.ErrConversationNotFound)

	_, err = service.CloseConversation(ctx, "missing")
	assert.ErrorIs(t, err, memory.ErrConversationNotFound)
}

func TestCloseConversationRemovesState(t *testing.T) {
	publisher := &recordingPublisher{}
	service := newTestService(t, WithPublisher(publisher))
	ctx := context.Background()

	_, err := service.HandleMessage(ctx, "conv-1", "Urgent! Verify your blocked account immediately")
	require.NoError(t, err)

	state, err := service.CloseConversation(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", state.ConversationID)
	assert.Len(t, publisher.closed, 1)

	_, err = service.GetConversation(ctx, "conv-1", 10)
	assert.ErrorIs(t, err, memory.ErrConversationNotFound)
}

func TestStatsCountScamConversations(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.HandleMessage(ctx, "conv-1", "Urgent! Verify your blocked account immediately")
	require.NoError(t, err)

	stats := service.Stats()
	assert.Equal(t, 1, stats.Registry.ActiveConversations)
	assert.Equal(t, 1, stats.Registry.ScamConversations)
	assert.Equal(t, int64(1), stats.Classifier.TotalAnalyzed)
	assert.Equal(t, int64(1), stats.Classifier.ScamsDetected)
}
