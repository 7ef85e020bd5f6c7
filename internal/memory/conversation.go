package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"lurelab/internal/domain/models"
)

// extractionWeights values each entity type for the extraction score.
// URLs are the highest-value capture, emails the lowest.
var extractionWeights = map[models.EntityType]float64{
	models.EntityURL:           1.0,
	models.EntityPaymentHandle: 0.9,
	models.EntityBankAccount:   0.8,
	models.EntityPhoneNumber:   0.7,
	models.EntityEmail:         0.5,
}

// Conversation holds everything remembered about one engagement: the
// message history, the rolling state, and the intelligence ledger.
// All methods are safe for concurrent use; operations on different
// conversations never block each other.
type Conversation struct {
	mu sync.Mutex

	id          string
	personaName string
	createdAt   time.Time
	updatedAt   time.Time

	messages []models.Message

	scamDetected   bool
	scamCategory   models.ScamCategory
	currentPhase   models.EngagementPhase
	emotionalState string
	trustLevel     float64
	exposureRisk   float64

	// entity type -> value -> ledger item
	intelligence map[models.EntityType]map[string]*models.IntelligenceItem
}

// NewConversation creates the memory for a single conversation.
func NewConversation(id, personaName string) *Conversation {
	now := time.Now()
	intelligence := make(map[models.EntityType]map[string]*models.IntelligenceItem, len(models.AllEntityTypes))
	for _, t := range models.AllEntityTypes {
		intelligence[t] = make(map[string]*models.IntelligenceItem)
	}

	return &Conversation{
		id:             id,
		personaName:    personaName,
		createdAt:      now,
		updatedAt:      now,
		currentPhase:   models.PhaseIdentification,
		emotionalState: "neutral",
		intelligence:   intelligence,
	}
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string {
	return c.id
}

// AddMessage appends a turn to the history and folds any extracted
// entities into the intelligence ledger.
func (c *Conversation) AddMessage(role models.MessageRole, content string, classification *models.Classification, entities []models.Entity) models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := models.Message{
		Role:           role,
		Content:        content,
		Timestamp:      time.Now(),
		Classification: classification,
		Entities:       entities,
	}
	c.messages = append(c.messages, msg)
	c.updatedAt = msg.Timestamp

	if classification != nil && classification.IsScam {
		c.scamDetected = true
		c.scamCategory = classification.Category
	}

	for _, entity := range entities {
		c.recordEntityLocked(entity, msg.Timestamp)
	}

	return msg
}

// recordEntityLocked upserts a ledger item. Repeat observations bump
// the appearance count and keep the highest confidence seen.
func (c *Conversation) recordEntityLocked(entity models.Entity, seenAt time.Time) {
	byValue, ok := c.intelligence[entity.Type]
	if !ok {
		byValue = make(map[string]*models.IntelligenceItem)
		c.intelligence[entity.Type] = byValue
	}

	if item, exists := byValue[entity.Value]; exists {
		item.AppearanceCount++
		if entity.Confidence > item.Confidence {
			item.Confidence = entity.Confidence
			item.Context = entity.Context
		}
		return
	}

	byValue[entity.Value] = &models.IntelligenceItem{
		Value:           entity.Value,
		Confidence:      entity.Confidence,
		Context:         entity.Context,
		FirstSeen:       seenAt,
		AppearanceCount: 1,
	}
}

// RecentMessages returns the last n messages.
func (c *Conversation) RecentMessages(n int) []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n <= 0 || n > len(c.messages) {
		n = len(c.messages)
	}
	out := make([]models.Message, n)
	copy(out, c.messages[len(c.messages)-n:])
	return out
}

// PriorContents returns the raw text of every stored message, oldest
// first. The extractor uses it for repeat-mention boosting.
func (c *Conversation) PriorContents() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	contents := make([]string, len(c.messages))
	for i, msg := range c.messages {
		contents[i] = msg.Content
	}
	return contents
}

// Transcript renders the conversation as tagged lines.
func (c *Conversation) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	for i, msg := range c.messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		tag := "SCAMMER"
		if msg.Role == models.RoleAgent {
			tag = "AGENT"
		}
		b.WriteString("[" + tag + "] " + msg.Content)
	}
	return b.String()
}

// TurnCount returns the number of stored messages.
func (c *Conversation) TurnCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// SetPhase moves the conversation to a new engagement phase.
func (c *Conversation) SetPhase(phase models.EngagementPhase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentPhase = phase
	c.updatedAt = time.Now()
}

// Phase returns the current engagement phase.
func (c *Conversation) Phase() models.EngagementPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPhase
}

// SetEmotionalState updates the persona's displayed emotion.
func (c *Conversation) SetEmotionalState(state string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emotionalState = state
	c.updatedAt = time.Now()
}

// SetTrustLevel updates how much the scammer appears to trust the persona.
func (c *Conversation) SetTrustLevel(level float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trustLevel = clamp01(level)
	c.updatedAt = time.Now()
}

// SetExposureRisk updates the estimated risk that the honeypot has been
// recognized.
func (c *Conversation) SetExposureRisk(risk float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exposureRisk = clamp01(risk)
	c.updatedAt = time.Now()
}

// ExposureRisk returns the current exposure risk estimate.
func (c *Conversation) ExposureRisk() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exposureRisk
}

// ScamDetected reports whether any message classified as a scam.
func (c *Conversation) ScamDetected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scamDetected
}

// DistinctCount returns how many distinct values the ledger holds for
// an entity type.
func (c *Conversation) DistinctCount(entityType models.EntityType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.intelligence[entityType])
}

// Intelligence returns a copy of the full ledger. Items are ordered by
// when they were first captured.
func (c *Conversation) Intelligence() map[models.EntityType][]models.IntelligenceItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[models.EntityType][]models.IntelligenceItem, len(c.intelligence))
	for entityType, byValue := range c.intelligence {
		if len(byValue) == 0 {
			continue
		}
		items := make([]models.IntelligenceItem, 0, len(byValue))
		for _, item := range byValue {
			items = append(items, *item)
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].FirstSeen.Equal(items[j].FirstSeen) {
				return items[i].Value < items[j].Value
			}
			return items[i].FirstSeen.Before(items[j].FirstSeen)
		})
		out[entityType] = items
	}
	return out
}

// IntelligenceCount returns the number of distinct ledger items.
func (c *Conversation) IntelligenceCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intelligenceCountLocked()
}

func (c *Conversation) intelligenceCountLocked() int {
	count := 0
	for _, byValue := range c.intelligence {
		count += len(byValue)
	}
	return count
}

// ExtractionScore grades how much intelligence has been captured:
// distinct values per type, weighted by value, normalized against ten
// weighted captures, capped at 1.0.
func (c *Conversation) ExtractionScore() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.extractionScoreLocked()
}

func (c *Conversation) extractionScoreLocked() float64 {
	var weighted float64
	for entityType, byValue := range c.intelligence {
		weighted += float64(len(byValue)) * extractionWeights[entityType]
	}
	score := weighted / 10
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// State returns a snapshot of the conversation.
func (c *Conversation) State() models.ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.ConversationState{
		ConversationID:    c.id,
		PersonaName:       c.personaName,
		ScamDetected:      c.scamDetected,
		ScamCategory:      c.scamCategory,
		CurrentPhase:      c.currentPhase,
		EmotionalState:    c.emotionalState,
		TrustLevel:        c.trustLevel,
		ExposureRisk:      c.exposureRisk,
		TurnCount:         len(c.messages),
		IntelligenceCount: c.intelligenceCountLocked(),
		ExtractionScore:   c.extractionScoreLocked(),
		StartedAt:         c.createdAt,
		LastActivityAt:    c.updatedAt,
	}
}

// CreatedAt returns when the conversation started.
func (c *Conversation) CreatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createdAt
}

// LastActivity returns the time of the most recent update.
func (c *Conversation) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updatedAt
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
