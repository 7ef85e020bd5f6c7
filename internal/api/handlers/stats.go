package handlers

import (
	"encoding/json"
	"net/http"

	"lurelab/internal/engagement"
	"lurelab/internal/repository"
	"lurelab/pkg/logger"
)

// StatsHandler handles the aggregate stats endpoint
type StatsHandler struct {
	service *engagement.Service
	archive *repository.ArchiveRepository
	logger  *logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *engagement.Service, archive *repository.ArchiveRepository, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		archive: archive,
		logger:  log.WithComponent("stats-handler"),
	}
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats := h.service.Stats()

	response := map[string]any{
		"registry":   stats.Registry,
		"classifier": stats.Classifier,
	}

	// Archive counters are best effort
	if h.archive != nil {
		if archiveStats, err := h.archive.Stats(r.Context()); err == nil {
			response["archive"] = archiveStats
		} else {
			h.logger.Debug().Err(err).Msg("failed to load archive stats")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
