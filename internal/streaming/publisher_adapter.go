package streaming

import (
	"context"

	"lurelab/internal/domain/models"
)

// EventBusPublisher implements engagement.EventPublisher using the EventBus
type EventBusPublisher struct {
	eventBus *EventBus
	wsHub    *WebSocketHub
}

// NewEventBusPublisher creates a new publisher adapter
func NewEventBusPublisher(eventBus *EventBus, wsHub *WebSocketHub) *EventBusPublisher {
	return &EventBusPublisher{
		eventBus: eventBus,
		wsHub:    wsHub,
	}
}

// publish sends an event to the bus and the WebSocket hub
func (p *EventBusPublisher) publish(ctx context.Context, event *EngagementEvent) error {
	if p.eventBus != nil {
		if err := p.eventBus.Publish(ctx, event); err != nil {
			return err
		}
	}

	if p.wsHub != nil {
		p.wsHub.BroadcastEvent(event)
	}

	return nil
}

// PublishScamDetected publishes an event when a conversation is first classified as a scam
func (p *EventBusPublisher) PublishScamDetected(ctx context.Context, conversationID, persona string, classification models.Classification) error {
	event := NewEngagementEvent(EventTypeScamDetected, conversationID)
	event.Persona = persona
	event.Category = classification.Category
	event.Confidence = classification.Confidence
	return p.publish(ctx, event)
}

// PublishEntityCaptured publishes an event for each newly captured entity
func (p *EventBusPublisher) PublishEntityCaptured(ctx context.Context, conversationID string, entity models.Entity) error {
	event := NewEngagementEvent(EventTypeEntityCaptured, conversationID)
	event.EntityType = entity.Type
	event.EntityValue = entity.Value
	event.Confidence = entity.Confidence
	event.Validated = entity.Validated
	return p.publish(ctx, event)
}

// PublishPhaseTransition publishes an event when the strategy engine changes phase
func (p *EventBusPublisher) PublishPhaseTransition(ctx context.Context, decision models.Decision) error {
	event := NewEngagementEvent(EventTypePhaseTransition, decision.ConversationID)
	event.FromPhase = decision.PreviousPhase
	event.ToPhase = decision.NextPhase
	event.Confidence = decision.Confidence
	event.Rationale = decision.Rationale
	return p.publish(ctx, event)
}

// PublishConversationClosed publishes a summary event when a conversation reaches SAFE_EXIT
// or is evicted from memory
func (p *EventBusPublisher) PublishConversationClosed(ctx context.Context, state models.ConversationState) error {
	event := NewEngagementEvent(EventTypeConversationClosed, state.ConversationID)
	event.Persona = state.PersonaName
	event.Category = state.ScamCategory
	event.ToPhase = state.CurrentPhase
	event.TurnCount = state.TurnCount
	event.IntelligenceCount = state.IntelligenceCount
	event.ExtractionScore = state.ExtractionScore
	return p.publish(ctx, event)
}
