package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"lurelab/internal/domain/models"
	"lurelab/internal/infrastructure/database"
	"lurelab/pkg/logger"
)

// ArchiveRepository persists captured intelligence to PostgreSQL.
// Writes are best effort: the engine keeps running if the archive is down.
type ArchiveRepository struct {
	db     *database.PostgresDB
	logger *logger.Logger
}

// NewArchiveRepository creates a new archive repository
func NewArchiveRepository(db *database.PostgresDB, log *logger.Logger) *ArchiveRepository {
	return &ArchiveRepository{
		db:     db,
		logger: log.WithComponent("archive-repository"),
	}
}

// SaveEntity upserts a captured entity. Re-capturing the same value in a
// conversation keeps the highest confidence seen.
func (r *ArchiveRepository) SaveEntity(ctx context.Context, conversationID string, entity models.Entity) error {
	const q = `
INSERT INTO captured_entities (id, conversation_id, entity_type, entity_value, confidence, context, validated)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (conversation_id, entity_type, entity_value)
DO UPDATE SET
	confidence = GREATEST(captured_entities.confidence, EXCLUDED.confidence),
	validated  = captured_entities.validated OR EXCLUDED.validated`

	err := r.db.Exec(ctx, q,
		uuid.New(),
		conversationID,
		string(entity.Type),
		entity.Value,
		entity.Confidence,
		entity.Context,
		entity.Validated,
	)
	if err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}
	return nil
}

// SaveConversationSummary records the final state of a closed conversation
func (r *ArchiveRepository) SaveConversationSummary(ctx context.Context, state models.ConversationState) error {
	const q = `
INSERT INTO conversation_archive
	(conversation_id, persona, scam_category, final_phase, turn_count, intelligence_count, extraction_score, started_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (conversation_id)
DO UPDATE SET
	final_phase        = EXCLUDED.final_phase,
	turn_count         = EXCLUDED.turn_count,
	intelligence_count = EXCLUDED.intelligence_count,
	extraction_score   = EXCLUDED.extraction_score,
	closed_at          = now()`

	err := r.db.Exec(ctx, q,
		state.ConversationID,
		state.PersonaName,
		string(state.ScamCategory),
		string(state.CurrentPhase),
		state.TurnCount,
		state.IntelligenceCount,
		state.ExtractionScore,
		state.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save conversation summary: %w", err)
	}
	return nil
}

// EntityRecord is one archived entity row
type EntityRecord struct {
	ID             uuid.UUID         `json:"id"`
	ConversationID string            `json:"conversation_id"`
	Type           models.EntityType `json:"type"`
	Value          string            `json:"value"`
	Confidence     float64           `json:"confidence"`
	Context        string            `json:"context,omitempty"`
	Validated      bool              `json:"validated"`
}

// EntitiesByValue returns every conversation a value was captured in.
// Useful for linking scammer infrastructure across conversations.
func (r *ArchiveRepository) EntitiesByValue(ctx context.Context, value string) ([]EntityRecord, error) {
	const q = `
SELECT id, conversation_id, entity_type, entity_value, confidence, COALESCE(context, ''), validated
FROM captured_entities
WHERE entity_value = $1
ORDER BY captured_at`

	rows, err := r.db.Query(ctx, q, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var records []EntityRecord
	for rows.Next() {
		var rec EntityRecord
		var entityType string
		if err := rows.Scan(&rec.ID, &rec.ConversationID, &entityType, &rec.Value, &rec.Confidence, &rec.Context, &rec.Validated); err != nil {
			return nil, fmt.Errorf("failed to scan entity row: %w", err)
		}
		rec.Type = models.EntityType(entityType)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ArchiveStats summarizes the archive contents
type ArchiveStats struct {
	TotalEntities       int64 `json:"total_entities"`
	ValidatedEntities   int64 `json:"validated_entities"`
	ClosedConversations int64 `json:"closed_conversations"`
}

// Stats returns archive-wide counters
func (r *ArchiveRepository) Stats(ctx context.Context) (ArchiveStats, error) {
	var stats ArchiveStats

	row := r.db.QueryRow(ctx, `
SELECT
	(SELECT count(*) FROM captured_entities),
	(SELECT count(*) FROM captured_entities WHERE validated),
	(SELECT count(*) FROM conversation_archive)`)

	if err := row.Scan(&stats.TotalEntities, &stats.ValidatedEntities, &stats.ClosedConversations); err != nil {
		return stats, fmt.Errorf("failed to query archive stats: %w", err)
	}
	return stats, nil
}
