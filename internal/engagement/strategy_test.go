package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lurelab/internal/domain/models"
	"lurelab/internal/memory"
	"lurelab/pkg/logger"
)

func newTestEngine() *Engine {
	return NewEngine(logger.NewDefault(), EngineConfig{})
}

func newConversationInPhase(phase models.EngagementPhase) *memory.Conversation {
	conv := memory.NewConversation("conv-1", "ramesh")
	conv.SetPhase(phase)
	return conv
}

func scamVerdict() models.Classification {
	return models.Classification{IsScam: true, Confidence: 0.7, Category: models.CategoryPhishingBanking}
}

func scamVerdictPtr() *models.Classification {
	v := scamVerdict()
	return &v
}

func TestDecideNonScamExitsImmediately(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseExtractIntelligence)

	decision := engine.Decide(conv, "are we still on for lunch", models.Classification{IsScam: false})

	assert.Equal(t, models.PhaseExtractIntelligence, decision.PreviousPhase)
	assert.Equal(t, models.PhaseSafeExit, decision.NextPhase)
	assert.InDelta(t, 0.95, decision.Confidence, 0.0001)
	assert.Equal(t, "Message is not detected as scam", decision.Rationale)
	assert.True(t, decision.Transitioned())
	assert.Equal(t, models.PhaseSafeExit, conv.Phase())
}

func TestDecideExitsAfterEngagementWindow(t *testing.T) {
	engine := NewEngine(logger.NewDefault(), EngineConfig{ConversationTimeout: time.Millisecond})
	conv := newConversationInPhase(models.PhaseBuildTrust)
	time.Sleep(5 * time.Millisecond)

	decision := engine.Decide(conv, "Please verify your account now", scamVerdict())

	assert.Equal(t, models.PhaseSafeExit, decision.NextPhase)
	assert.InDelta(t, 0.9, decision.Confidence, 0.0001)
	assert.Contains(t, decision.Rationale, "engagement window")
}

func TestIdentificationAdvancesOnScript(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseIdentification)
	conv.AddMessage(models.RoleScammer, "hello", scamVerdictPtr(), nil)
	conv.AddMessage(models.RoleAgent, "who is this?", nil, nil)

	decision := engine.Decide(conv, "You must verify your account or it will be blocked", scamVerdict())

	assert.Equal(t, models.PhaseBuildTrust, decision.NextPhase)
	assert.InDelta(t, 0.85, decision.Confidence, 0.0001)
	assert.Contains(t, decision.Rationale, "script detected")
}

func TestIdentificationHoldsOnFirstTurn(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseIdentification)
	conv.AddMessage(models.RoleScammer, "verify your blocked account", scamVerdictPtr(), nil)

	decision := engine.Decide(conv, "verify your blocked account", scamVerdict())

	assert.Equal(t, models.PhaseIdentification, decision.NextPhase)
	assert.False(t, decision.Transitioned())
}

func TestIdentificationHoldsWithoutScriptKeywords(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseIdentification)
	conv.AddMessage(models.RoleScammer, "hello", scamVerdictPtr(), nil)
	conv.AddMessage(models.RoleAgent, "yes?", nil, nil)

	decision := engine.Decide(conv, "good morning, this is about your electricity bill", scamVerdict())

	assert.Equal(t, models.PhaseIdentification, decision.NextPhase)
}

func TestBuildTrustAdvancesOnActionRequest(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseBuildTrust)

	decision := engine.Decide(conv, "Download the app and click the link I sent", scamVerdict())

	assert.Equal(t, models.PhaseExtractIntelligence, decision.NextPhase)
	assert.InDelta(t, 0.9, decision.Confidence, 0.0001)
}

func TestBuildTrustAdvancesOnHeavyQuestioning(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseBuildTrust)

	decision := engine.Decide(conv, "What is your name? What is your age? What is your branch?", scamVerdict())

	assert.Equal(t, models.PhaseExtractIntelligence, decision.NextPhase)
}

func TestBuildTrustHoldsWithoutActionCues(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseBuildTrust)

	decision := engine.Decide(conv, "Sir your case is very serious, we are watching it closely", scamVerdict())

	assert.Equal(t, models.PhaseBuildTrust, decision.NextPhase)
}

func TestExtractAdvancesWhenScoreHigh(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseExtractIntelligence)

	// Five URLs, three handles, one bank account: 5*1.0 + 3*0.9 + 0.8 = 8.5 -> 0.85.
	conv.AddMessage(models.RoleScammer, "details", scamVerdictPtr(), []models.Entity{
		{Type: models.EntityURL, Value: "http://a.example", Confidence: 0.8},
		{Type: models.EntityURL, Value: "http://b.example", Confidence: 0.8},
		{Type: models.EntityURL, Value: "http://c.example", Confidence: 0.8},
		{Type: models.EntityURL, Value: "http://d.example", Confidence: 0.8},
		{Type: models.EntityURL, Value: "http://e.example", Confidence: 0.8},
		{Type: models.EntityPaymentHandle, Value: "a@ybl", Confidence: 0.8},
		{Type: models.EntityPaymentHandle, Value: "b@ybl", Confidence: 0.8},
		{Type: models.EntityPaymentHandle, Value: "c@ybl", Confidence: 0.8},
		{Type: models.EntityBankAccount, Value: "123456789012", Confidence: 0.8},
	})

	decision := engine.Decide(conv, "now pay", scamVerdict())

	assert.Equal(t, models.PhaseDelayProbe, decision.NextPhase)
	assert.Contains(t, decision.Rationale, "Sufficient intelligence extracted")
}

func TestExtractHoldsWhenScoreLow(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseExtractIntelligence)
	conv.AddMessage(models.RoleScammer, "pay to a@ybl", scamVerdictPtr(), []models.Entity{
		{Type: models.EntityPaymentHandle, Value: "a@ybl", Confidence: 0.8},
	})

	decision := engine.Decide(conv, "pay now", scamVerdict())

	assert.Equal(t, models.PhaseExtractIntelligence, decision.NextPhase)
}

func TestDelayProbeExitsOnTooManyPhones(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseDelayProbe)
	conv.AddMessage(models.RoleScammer, "numbers", scamVerdictPtr(), []models.Entity{
		{Type: models.EntityPhoneNumber, Value: "9876543210", Confidence: 0.8},
		{Type: models.EntityPhoneNumber, Value: "9123456780", Confidence: 0.8},
		{Type: models.EntityPhoneNumber, Value: "8765432109", Confidence: 0.8},
		{Type: models.EntityPhoneNumber, Value: "7654321098", Confidence: 0.8},
	})

	decision := engine.Decide(conv, "call any of these", scamVerdict())

	assert.Equal(t, models.PhaseSafeExit, decision.NextPhase)
	assert.InDelta(t, 0.9, decision.Confidence, 0.0001)
	assert.Contains(t, decision.Rationale, "Safety threshold")
}

func TestDelayProbeExitsOnHighExposureRisk(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseDelayProbe)
	conv.SetExposureRisk(0.8)

	decision := engine.Decide(conv, "why are you asking so many questions", scamVerdict())

	assert.Equal(t, models.PhaseSafeExit, decision.NextPhase)
}

func TestDelayProbeExitsOnMaxTurns(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseDelayProbe)
	for i := 0; i < 50; i++ {
		conv.AddMessage(models.RoleScammer, "hurry up", scamVerdictPtr(), nil)
	}

	decision := engine.Decide(conv, "hurry up", scamVerdict())

	assert.Equal(t, models.PhaseSafeExit, decision.NextPhase)
	assert.InDelta(t, 0.95, decision.Confidence, 0.0001)
	assert.Contains(t, decision.Rationale, "Maximum 50 turns")
}

func TestDelayProbeHoldsUnderThresholds(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseDelayProbe)

	decision := engine.Decide(conv, "do it fast", scamVerdict())

	assert.Equal(t, models.PhaseDelayProbe, decision.NextPhase)
	assert.False(t, decision.Transitioned())
}

func TestSafeExitIsSticky(t *testing.T) {
	engine := newTestEngine()
	conv := newConversationInPhase(models.PhaseSafeExit)

	decision := engine.Decide(conv, "verify your account urgent blocked", scamVerdict())

	assert.Equal(t, models.PhaseSafeExit, decision.NextPhase)
	assert.InDelta(t, 0.95, decision.Confidence, 0.0001)
}

func TestGuidancePerPhase(t *testing.T) {
	engine := newTestEngine()

	for _, phase := range []models.EngagementPhase{
		models.PhaseIdentification,
		models.PhaseBuildTrust,
		models.PhaseExtractIntelligence,
		models.PhaseDelayProbe,
		models.PhaseSafeExit,
	} {
		guidance := engine.Guidance(phase)
		assert.Equal(t, phase, guidance.Phase)
		assert.NotEmpty(t, guidance.Objective)
		assert.NotEmpty(t, guidance.Tone)
		require.NotEmpty(t, guidance.Tactics)
	}
}
