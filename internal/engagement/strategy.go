package engagement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lurelab/internal/domain/models"
	"lurelab/internal/memory"
	"lurelab/pkg/logger"
)

// Default strategy thresholds.
const (
	DefaultExtractionThreshold = 0.8
	DefaultSafetyThreshold     = 0.7
	DefaultMaxTurns            = 50
	DefaultMaxPhoneNumbers     = 3
	DefaultMaxBankAccounts     = 2
	DefaultConversationTimeout = 60 * time.Minute
)

// Script-confirmation vocabulary: a scammer following a script repeats
// these across messages.
var scriptKeywords = []string{"verify", "confirm", "authenticate", "urgent", "account", "blocked"}

// Action-request vocabulary: imperatives pushing the victim to act.
var actionKeywords = []string{
	"download", "click", "open", "link", "app", "install",
	"send", "transfer", "pay", "call", "confirm", "verify",
	"share", "provide", "give", "tell",
}

// EngineConfig holds the strategy thresholds.
type EngineConfig struct {
	ExtractionThreshold float64
	SafetyThreshold     float64
	MaxTurns            int
	MaxPhoneNumbers     int
	MaxBankAccounts     int
	ConversationTimeout time.Duration
}

// Engine is the engagement strategy state machine. Given the latest
// scammer message and what memory already knows, it decides which
// phase the conversation should be in next.
type Engine struct {
	logger *logger.Logger
	config EngineConfig
}

// NewEngine creates a strategy engine.
func NewEngine(log *logger.Logger, config EngineConfig) *Engine {
	if config.ExtractionThreshold == 0 {
		config.ExtractionThreshold = DefaultExtractionThreshold
	}
	if config.SafetyThreshold == 0 {
		config.SafetyThreshold = DefaultSafetyThreshold
	}
	if config.MaxTurns == 0 {
		config.MaxTurns = DefaultMaxTurns
	}
	if config.MaxPhoneNumbers == 0 {
		config.MaxPhoneNumbers = DefaultMaxPhoneNumbers
	}
	if config.MaxBankAccounts == 0 {
		config.MaxBankAccounts = DefaultMaxBankAccounts
	}
	if config.ConversationTimeout == 0 {
		config.ConversationTimeout = DefaultConversationTimeout
	}

	return &Engine{
		logger: log.WithComponent("strategy"),
		config: config,
	}
}

// Decide evaluates the transition rules in priority order and returns
// the phase the conversation should move to. The decision is
// deterministic: same state and message, same verdict.
func (e *Engine) Decide(conv *memory.Conversation, message string, classification models.Classification) models.Decision {
	state := conv.State()

	decision := models.Decision{
		ID:             uuid.New(),
		ConversationID: conv.ID(),
		PreviousPhase:  state.CurrentPhase,
		DecidedAt:      time.Now(),
	}

	next, confidence, rationale := e.evaluate(conv, state, message, classification)
	decision.NextPhase = next
	decision.Confidence = confidence
	decision.Rationale = rationale

	conv.SetPhase(next)

	e.logger.Info().
		Str("conversation_id", conv.ID()).
		Str("from", string(decision.PreviousPhase)).
		Str("to", string(decision.NextPhase)).
		Float64("confidence", decision.Confidence).
		Msg("strategy decided")

	return decision
}

func (e *Engine) evaluate(conv *memory.Conversation, state models.ConversationState, message string, classification models.Classification) (models.EngagementPhase, float64, string) {
	// Non-scam traffic is disengaged immediately, whatever the phase.
	if !classification.IsScam {
		return models.PhaseSafeExit, 0.95, "Message is not detected as scam"
	}

	// Long-running conversations are wound down regardless of phase.
	if state.CurrentPhase != models.PhaseSafeExit && time.Since(state.StartedAt) > e.config.ConversationTimeout {
		return models.PhaseSafeExit, 0.9, "Conversation exceeded maximum engagement window"
	}

	switch state.CurrentPhase {
	case models.PhaseIdentification:
		if state.TurnCount >= 2 && e.confirmsScamScript(message) {
			return models.PhaseBuildTrust, 0.85, "Scam confirmed through multiple messages; script detected"
		}
		return models.PhaseIdentification, 0.8, "Need to confirm scam script consistency"

	case models.PhaseBuildTrust:
		if e.asksForAction(message) {
			return models.PhaseExtractIntelligence, 0.9, "Scammer asking for action; time to extract details"
		}
		return models.PhaseBuildTrust, 0.8, "Need more trust before asking sensitive questions"

	case models.PhaseExtractIntelligence:
		score := state.ExtractionScore
		if score >= e.config.ExtractionThreshold {
			return models.PhaseDelayProbe, 0.85, fmt.Sprintf("Sufficient intelligence extracted (%.0f%%)", score*100)
		}
		return models.PhaseExtractIntelligence, 0.85, "Need more intelligence; continue probing"

	case models.PhaseDelayProbe:
		if e.safetyBreached(conv, state) {
			return models.PhaseSafeExit, 0.9, "Safety threshold reached; honeypot exposure risk high"
		}
		if state.TurnCount >= e.config.MaxTurns {
			return models.PhaseSafeExit, 0.95, fmt.Sprintf("Maximum %d turns reached", e.config.MaxTurns)
		}
		return models.PhaseDelayProbe, 0.8, "Continue delay tactics; validate consistency"

	case models.PhaseSafeExit:
		return models.PhaseSafeExit, 0.95, "Conversation already closed"

	default:
		return models.PhaseSafeExit, 0.7, "Unknown phase; exiting safely"
	}
}

// confirmsScamScript reports whether the message reads like a scam
// script: at least two script keywords present.
func (e *Engine) confirmsScamScript(message string) bool {
	lower := strings.ToLower(message)
	count := 0
	for _, kw := range scriptKeywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count >= 2
}

// asksForAction reports whether the scammer is pushing the victim to do
// something: two or more imperative keywords, or heavy questioning.
func (e *Engine) asksForAction(message string) bool {
	lower := strings.ToLower(message)
	imperatives := 0
	for _, kw := range actionKeywords {
		if strings.Contains(lower, kw) {
			imperatives++
		}
	}
	return imperatives >= 2 || strings.Count(lower, "?") > 2
}

// safetyBreached checks the disengagement tripwires: too many distinct
// phone numbers or bank accounts captured, or exposure risk past the
// safety threshold.
func (e *Engine) safetyBreached(conv *memory.Conversation, state models.ConversationState) bool {
	if conv.DistinctCount(models.EntityPhoneNumber) > e.config.MaxPhoneNumbers {
		return true
	}
	if conv.DistinctCount(models.EntityBankAccount) > e.config.MaxBankAccounts {
		return true
	}
	return state.ExposureRisk > e.config.SafetyThreshold
}

// Guidance returns how the persona should behave in a phase.
func (e *Engine) Guidance(phase models.EngagementPhase) models.ResponseGuidance {
	switch phase {
	case models.PhaseIdentification:
		return models.ResponseGuidance{
			Phase:     phase,
			Objective: "Confirm the caller's identity and probe the story for consistency",
			Tone:      "confused_but_fearful",
			Tactics:   []string{"ask for identification", "probe for consistency", "show initial concern"},
		}
	case models.PhaseBuildTrust:
		return models.ResponseGuidance{
			Phase:     phase,
			Objective: "Show eagerness to comply and build false trust",
			Tone:      "scared_compliant",
			Tactics:   []string{"show compliance", "ask for reassurance", "make small mistakes to seem authentic"},
		}
	case models.PhaseExtractIntelligence:
		return models.ResponseGuidance{
			Phase:     phase,
			Objective: "Pull out payment handles, links, and methodology",
			Tone:      "confused_eager",
			Tactics:   []string{"ask how/why questions", "request step-by-step instructions", "ask for alternative methods"},
		}
	case models.PhaseDelayProbe:
		return models.ResponseGuidance{
			Phase:     phase,
			Objective: "Waste the scammer's time while testing consistency",
			Tone:      "hesitant_confused",
			Tactics:   []string{"introduce obstacles", "ask consistency questions", "stall without acting"},
		}
	default:
		return models.ResponseGuidance{
			Phase:     models.PhaseSafeExit,
			Objective: "Disengage gracefully without revealing the honeypot",
			Tone:      "fearful_apologetic",
			Tactics:   []string{"exit politely", "maintain the persona", "leave the door open"},
		}
	}
}
