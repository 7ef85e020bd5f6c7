package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"lurelab/internal/engagement"
	"lurelab/pkg/logger"
)

// AnalyzeHandler handles stateless message analysis
type AnalyzeHandler struct {
	service *engagement.Service
	logger  *logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(service *engagement.Service, log *logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		service: service,
		logger:  log.WithComponent("analyze-handler"),
	}
}

// AnalyzeRequest is the request body for message analysis
type AnalyzeRequest struct {
	Message string `json:"message"`
}

// Analyze handles POST /api/v1/analyze - classifies and extracts from a
// message without touching conversation state
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		h.respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	result := h.service.Analyze(r.Context(), req.Message)
	h.respondJSON(w, http.StatusOK, result)
}

func (h *AnalyzeHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *AnalyzeHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
