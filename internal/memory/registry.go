package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"lurelab/internal/domain/models"
	"lurelab/pkg/logger"
)

// ErrConversationNotFound is returned when a conversation ID is unknown.
var ErrConversationNotFound = errors.New("conversation not found")

// Store is the conversation registry. Implementations must be safe for
// concurrent use.
type Store interface {
	// GetOrCreate returns the conversation for id, creating it when absent.
	GetOrCreate(id, personaName string) *Conversation
	// Get returns the conversation or ErrConversationNotFound.
	Get(id string) (*Conversation, error)
	// Delete removes a conversation.
	Delete(id string)
	// Stats aggregates counters across all conversations.
	Stats() models.RegistryStats
}

var _ Store = (*Registry)(nil)

// RegistryConfig tunes the in-memory registry.
type RegistryConfig struct {
	MaxConversations int
	Retention        time.Duration
}

// Registry is the in-memory Store. Conversations are evicted after the
// retention window, and the oldest go first when the cap is exceeded.
type Registry struct {
	mu            sync.Mutex
	conversations map[string]*Conversation
	config        RegistryConfig
	logger        *logger.Logger
}

// NewRegistry creates an in-memory conversation registry.
func NewRegistry(cfg RegistryConfig, log *logger.Logger) *Registry {
	if cfg.MaxConversations <= 0 {
		cfg.MaxConversations = 1000
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 120 * time.Minute
	}

	return &Registry{
		conversations: make(map[string]*Conversation),
		config:        cfg,
		logger:        log.WithComponent("registry"),
	}
}

// GetOrCreate returns the conversation for id, creating it when absent.
func (r *Registry) GetOrCreate(id, personaName string) *Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv, ok := r.conversations[id]; ok {
		return conv
	}

	conv := NewConversation(id, personaName)
	r.conversations[id] = conv

	if len(r.conversations) > r.config.MaxConversations {
		r.evictLocked()
	}

	return conv
}

// Get returns the conversation or ErrConversationNotFound.
func (r *Registry) Get(id string) (*Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

// Delete removes a conversation.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, id)
}

// Stats aggregates counters across all conversations.
func (r *Registry) Stats() models.RegistryStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := models.RegistryStats{
		ActiveConversations: len(r.conversations),
	}
	for _, conv := range r.conversations {
		if conv.ScamDetected() {
			stats.ScamConversations++
		}
		stats.IntelligenceItems += conv.IntelligenceCount()
	}
	return stats
}

// Cleanup drops conversations past the retention window. Returns the
// number removed.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.config.Retention)
	removed := 0
	for id, conv := range r.conversations {
		if conv.CreatedAt().Before(cutoff) {
			delete(r.conversations, id)
			removed++
		}
	}

	if removed > 0 {
		r.logger.Info().Int("removed", removed).Msg("expired conversations cleaned up")
	}
	return removed
}

// evictLocked drops expired conversations, then the oldest until the
// registry is back under its cap.
func (r *Registry) evictLocked() {
	cutoff := time.Now().Add(-r.config.Retention)
	for id, conv := range r.conversations {
		if conv.CreatedAt().Before(cutoff) {
			delete(r.conversations, id)
		}
	}

	if len(r.conversations) <= r.config.MaxConversations {
		return
	}

	type aged struct {
		id        string
		createdAt time.Time
	}
	all := make([]aged, 0, len(r.conversations))
	for id, conv := range r.conversations {
		all = append(all, aged{id: id, createdAt: conv.CreatedAt()})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].createdAt.Before(all[j].createdAt) })

	for _, entry := range all {
		if len(r.conversations) <= r.config.MaxConversations {
			break
		}
		delete(r.conversations, entry.id)
	}
}

// StartJanitor runs periodic cleanup until ctx is cancelled.
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Cleanup()
			}
		}
	}()
}
