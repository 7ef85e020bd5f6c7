package models

import (
	"time"

	"github.com/google/uuid"
)

// EngagementPhase is a stage of the engagement state machine.
type EngagementPhase string

const (
	PhaseIdentification      EngagementPhase = "IDENTIFICATION"
	PhaseBuildTrust          EngagementPhase = "BUILD_TRUST"
	PhaseExtractIntelligence EngagementPhase = "EXTRACT_INTELLIGENCE"
	PhaseDelayProbe          EngagementPhase = "DELAY_PROBE"
	PhaseSafeExit            EngagementPhase = "SAFE_EXIT"
)

// Decision is the strategy engine's verdict for the next turn.
type Decision struct {
	ID             uuid.UUID       `json:"id"`
	ConversationID string          `json:"conversation_id"`
	PreviousPhase  EngagementPhase `json:"previous_phase"`
	NextPhase      EngagementPhase `json:"next_phase"`
	Confidence     float64         `json:"confidence"`
	Rationale      string          `json:"rationale"`
	DecidedAt      time.Time       `json:"decided_at"`
}

// Transitioned reports whether the decision moved the conversation
// to a new phase.
func (d Decision) Transitioned() bool {
	return d.PreviousPhase != d.NextPhase
}

// ResponseGuidance tells the response composer how to behave in a phase.
type ResponseGuidance struct {
	Phase     EngagementPhase `json:"phase"`
	Objective string          `json:"objective"`
	Tone      string          `json:"tone"`
	Tactics   []string        `json:"tactics,omitempty"`
}
