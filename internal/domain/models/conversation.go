package models

import "time"

// MessageRole identifies who authored a conversation message.
type MessageRole string

const (
	RoleScammer MessageRole = "scammer"
	RoleAgent   MessageRole = "agent"
)

// Message is one turn of an engagement conversation.
type Message struct {
	Role           MessageRole     `json:"role"`
	Content        string          `json:"content"`
	Timestamp      time.Time       `json:"timestamp"`
	Classification *Classification `json:"classification,omitempty"`
	Entities       []Entity        `json:"entities,omitempty"`
}

// IntelligenceItem is one distinct captured value in the ledger.
type IntelligenceItem struct {
	Value           string    `json:"value"`
	Confidence      float64   `json:"confidence"`
	Context         string    `json:"context,omitempty"`
	FirstSeen       time.Time `json:"first_seen"`
	AppearanceCount int       `json:"appearance_count"`
}

// ConversationState is the snapshot view of a tracked conversation.
type ConversationState struct {
	ConversationID    string          `json:"conversation_id"`
	PersonaName       string          `json:"persona_name"`
	ScamDetected      bool            `json:"scam_detected"`
	ScamCategory      ScamCategory    `json:"scam_category,omitempty"`
	CurrentPhase      EngagementPhase `json:"current_phase"`
	EmotionalState    string          `json:"emotional_state"`
	TrustLevel        float64         `json:"trust_level"`
	ExposureRisk      float64         `json:"exposure_risk"`
	TurnCount         int             `json:"turn_count"`
	IntelligenceCount int             `json:"intelligence_count"`
	ExtractionScore   float64         `json:"extraction_score"`
	StartedAt         time.Time       `json:"started_at"`
	LastActivityAt    time.Time       `json:"last_activity_at"`
}

// RegistryStats aggregates counters across all tracked conversations.
type RegistryStats struct {
	ActiveConversations int `json:"active_conversations"`
	ScamConversations   int `json:"scam_conversations"`
	IntelligenceItems   int `json:"intelligence_items"`
}
