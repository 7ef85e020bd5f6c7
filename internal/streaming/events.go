package streaming

import (
	"time"

	"github.com/google/uuid"

	"lurelab/internal/domain/models"
)

// EventType represents the type of engagement event
type EventType string

const (
	EventTypeScamDetected       EventType = "scam_detected"
	EventTypeEntityCaptured     EventType = "entity_captured"
	EventTypePhaseTransition    EventType = "phase_transition"
	EventTypeConversationClosed EventType = "conversation_closed"
)

// EngagementEvent represents a real-time honeypot engagement update
type EngagementEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	ConversationID string `json:"conversation_id"`
	Persona        string `json:"persona,omitempty"`

	// Classification details
	Category   models.ScamCategory `json:"category,omitempty"`
	Confidence float64             `json:"confidence,omitempty"`

	// Captured entity details
	EntityType  models.EntityType `json:"entity_type,omitempty"`
	EntityValue string            `json:"entity_value,omitempty"`
	Validated   bool              `json:"validated,omitempty"`

	// Phase details
	FromPhase models.EngagementPhase `json:"from_phase,omitempty"`
	ToPhase   models.EngagementPhase `json:"to_phase,omitempty"`
	Rationale string                 `json:"rationale,omitempty"`

	// Conversation summary, populated on close
	TurnCount         int     `json:"turn_count,omitempty"`
	IntelligenceCount int     `json:"intelligence_count,omitempty"`
	ExtractionScore   float64 `json:"extraction_score,omitempty"`
}

// NewEngagementEvent creates an event with ID and timestamp populated
func NewEngagementEvent(eventType EventType, conversationID string) *EngagementEvent {
	return &EngagementEvent{
		ID:             uuid.New().String(),
		Type:           eventType,
		Timestamp:      time.Now(),
		ConversationID: conversationID,
	}
}

// Subscription represents a client's subscription preferences
type Subscription struct {
	// Filter to a single conversation (empty = all)
	ConversationID string `json:"conversation_id,omitempty"`

	// Filter by event types (empty = all)
	Types []EventType `json:"types,omitempty"`

	// Filter by scam category (empty = all)
	Categories []models.ScamCategory `json:"categories,omitempty"`

	// Filter phase transitions by destination phase (empty = all)
	Phases []models.EngagementPhase `json:"phases,omitempty"`
}

// Matches checks if an event matches the subscription filters
func (s *Subscription) Matches(event *EngagementEvent) bool {
	if s == nil {
		return true
	}

	if s.ConversationID != "" && s.ConversationID != event.ConversationID {
		return false
	}

	if len(s.Types) > 0 {
		found := false
		for _, t := range s.Types {
			if t == event.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(s.Categories) > 0 && event.Category != "" {
		found := false
		for _, c := range s.Categories {
			if c == event.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(s.Phases) > 0 && event.ToPhase != "" {
		found := false
		for _, p := range s.Phases {
			if p == event.ToPhase {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
