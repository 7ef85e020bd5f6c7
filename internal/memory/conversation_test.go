package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lurelab/internal/domain/models"
)

func scamClassification(category models.ScamCategory) *models.Classification {
	return &models.Classification{
		IsScam:     true,
		Confidence: 0.8,
		Category:   category,
	}
}

func TestAddMessageRecordsTurns(t *testing.T) {
	conv := NewConversation("conv-1", "ramesh")

	conv.AddMessage(models.RoleScammer, "verify your account now", scamClassification(models.CategoryPhishingBanking), nil)
	conv.AddMessage(models.RoleAgent, "oh no, which account?", nil, nil)

	assert.Equal(t, 2, conv.TurnCount())
	assert.True(t, conv.ScamDetected())

	msgs := conv.RecentMessages(1)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleAgent, msgs[0].Role)
	assert.Equal(t, "oh no, which account?", msgs[0].Content)
}

func TestLedgerUpsertKeepsHighestConfidence(t *testing.T) {
	conv := NewConversation("conv-1", "ramesh")

	conv.AddMessage(models.RoleScammer, "pay to scammer@ybl", nil, []models.Entity{
		{Type: models.EntityPaymentHandle, Value: "scammer@ybl", Confidence: 0.8, Context: "pay to scammer@ybl"},
	})
	conv.AddMessage(models.RoleScammer, "send it to scammer@ybl fast", nil, []models.Entity{
		{Type: models.EntityPaymentHandle, Value: "scammer@ybl", Confidence: 0.95, Context: "send it to scammer@ybl fast"},
	})
	conv.AddMessage(models.RoleScammer, "scammer@ybl again", nil, []models.Entity{
		{Type: models.EntityPaymentHandle, Value: "scammer@ybl", Confidence: 0.6, Context: "scammer@ybl again"},
	})

	intel := conv.Intelligence()
	items := intel[models.EntityPaymentHandle]
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "scammer@ybl", item.Value)
	assert.Equal(t, 3, item.AppearanceCount)
	assert.InDelta(t, 0.95, item.Confidence, 0.0001)
	assert.Equal(t, "send it to scammer@ybl fast", item.Context)
	assert.Equal(t, 1, conv.IntelligenceCount())
}

func TestIntelligenceOrderedByFirstSeen(t *testing.T) {
	conv := NewConversation("conv-1", "ramesh")

	// Two entities in one message share a capture time and fall back to
	// value order; the later message always sorts after them.
	conv.AddMessage(models.RoleScammer, "links", nil, []models.Entity{
		{Type: models.EntityURL, Value: "https://late.example/verify", Confidence: 0.8},
		{Type: models.EntityURL, Value: "https://early.example/verify", Confidence: 0.8},
	})
	time.Sleep(2 * time.Millisecond)
	conv.AddMessage(models.RoleScammer, "one more", nil, []models.Entity{
		{Type: models.EntityURL, Value: "https://after.example/verify", Confidence: 0.8},
	})

	items := conv.Intelligence()[models.EntityURL]
	require.Len(t, items, 3)
	assert.Equal(t, "https://early.example/verify", items[0].Value)
	assert.Equal(t, "https://late.example/verify", items[1].Value)
	assert.Equal(t, "https://after.example/verify", items[2].Value)
}

func TestDistinctCountPerType(t *testing.T) {
	conv := NewConversation("conv-1", "ramesh")

	conv.AddMessage(models.RoleScammer, "numbers", nil, []models.Entity{
		{Type: models.EntityPhoneNumber, Value: "9876543210", Confidence: 0.8},
		{Type: models.EntityPhoneNumber, Value: "9123456780", Confidence: 0.8},
		{Type: models.EntityPaymentHandle, Value: "a@ybl", Confidence: 0.8},
	})

	assert.Equal(t, 2, conv.DistinctCount(models.EntityPhoneNumber))
	assert.Equal(t, 1, conv.DistinctCount(models.EntityPaymentHandle))
	assert.Equal(t, 0, conv.DistinctCount(models.EntityBankAccount))
	assert.Equal(t, 3, conv.IntelligenceCount())
}

func TestExtractionScoreWeighting(t *testing.T) {
	conv := NewConversation("conv-1", "ramesh")

	// One URL (1.0), one payment handle (0.9), one phone (0.7) -> 2.6/10.
	conv.AddMessage(models.RoleScammer, "mixed", nil, []models.Entity{
		{Type: models.EntityURL, Value: "http://fake.example/claim", Confidence: 0.8},
		{Type: models.EntityPaymentHandle, Value: "a@ybl", Confidence: 0.8},
		{Type: models.EntityPhoneNumber, Value: "9876543210", Confidence: 0.8},
	})

	assert.InDelta(t, 0.26, conv.ExtractionScore(), 0.0001)
}

func TestExtractionScoreCountsDistinctValuesOnly(t *testing.T) {
	conv := NewConversation("conv-1", "ramesh")

	for i := 0; i < 5; i++ {
		conv.AddMessage(models.RoleScammer, "repeat", nil, []models.Entity{
			{Type: models.EntityURL, Value: "http://fake.example/claim", Confidence: 0.8},
		})
	}

	assert.InDelta(t, 0.1, conv.ExtractionScore(), 0.0001)
}

func TestExtractionScoreCapped(t *testing.T) {
	conv := NewConversation("conv-1", "ramesh")

	entities := make([]models.Entity, 0, 12)
	for _, value := range []string{
		"http://a.example", "http://b.example", "http://c.example", "http://d.example",
		"http://e.example", "http://f.example", "http://g.example", "http://h.example",
		"http://i.example", "http://j.example", "http://k.example", "http://l.example",
	} {
		entities = append(entities, models.Entity{Type: models.EntityURL, Value: value, Confidence: 0.8})
	}
	conv.AddMessage(models.RoleScammer, "links", nil, entities)

	assert.Equal(t, 1.0, conv.ExtractionScore())
}

func TestPriorContentsOldestFirst(t *testing.T) {
	conv := NewConversation("conv-1", "ramesh")

	conv.AddMessage(models.RoleScammer, "first", nil, nil)
	conv.AddMessage(models.RoleAgent, "second", nil, nil)
	conv.AddMessage(models.RoleScammer, "third", nil, nil)

	assert.Equal(t, []string{"first", "second", "third"}, conv.PriorContents())
}

func TestTranscriptTagsRoles(t *testing.T) {
	conv := NewConversation("conv-1", "ramesh")

	conv.AddMessage(models.RoleScammer, "your account is blocked", nil, nil)
	conv.AddMessage(models.RoleAgent, "oh dear, what do I do?", nil, nil)

	assert.Equal(t, "[SCAMMER] your account is blocked\n[AGENT] oh dear, what do I do?", conv.Transcript())
}

func TestStateSnapshot(t *testing.T) {
	conv := NewConversation("conv-1", "priya")

	conv.AddMessage(models.RoleScammer, "you won a lottery", scamClassification(models.CategoryLotteryScam), []models.Entity{
		{Type: models.EntityEmail, Value: "claims@fake.example", Confidence: 0.8},
	})
	conv.SetPhase(models.PhaseBuildTrust)
	conv.SetEmotionalState("excited")
	conv.SetTrustLevel(0.6)
	conv.SetExposureRisk(0.2)

	state := conv.State()
	assert.Equal(t, "conv-1", state.ConversationID)
	assert.Equal(t, "priya", state.PersonaName)
	assert.True(t, state.ScamDetected)
	assert.Equal(t, models.CategoryLotteryScam, state.ScamCategory)
	assert.Equal(t, models.PhaseBuildTrust, state.CurrentPhase)
	assert.Equal(t, "excited", state.EmotionalState)
	assert.InDelta(t, 0.6, state.TrustLevel, 0.0001)
	assert.InDelta(t, 0.2, state.ExposureRisk, 0.0001)
	assert.Equal(t, 1, state.TurnCount)
	assert.Equal(t, 1, state.IntelligenceCount)
	assert.InDelta(t, 0.05, state.ExtractionScore, 0.0001)
	assert.False(t, state.StartedAt.IsZero())
	assert.False(t, state.LastActivityAt.Before(state.StartedAt))
}

func TestTrustAndRiskClamped(t *testing.T) {
	conv := NewConversation("conv-1", "ramesh")

	conv.SetTrustLevel(1.7)
	conv.SetExposureRisk(-0.3)

	state := conv.State()
	assert.Equal(t, 1.0, state.TrustLevel)
	assert.Equal(t, 0.0, state.ExposureRisk)
}
