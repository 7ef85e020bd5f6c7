package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"lurelab/internal/engagement"
	"lurelab/internal/memory"
	"lurelab/pkg/logger"
)

// ConversationsHandler handles conversation lifecycle endpoints
type ConversationsHandler struct {
	service *engagement.Service
	logger  *logger.Logger
}

// NewConversationsHandler creates a new conversations handler
func NewConversationsHandler(service *engagement.Service, log *logger.Logger) *ConversationsHandler {
	return &ConversationsHandler{
		service: service,
		logger:  log.WithComponent("conversations-handler"),
	}
}

// MessageRequest is the request body for an incoming scammer message
type MessageRequest struct {
	Content string `json:"content"`
}

// PostMessage handles POST /api/v1/conversations/{id}/messages
func (h *ConversationsHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if conversationID == "" {
		h.respondError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		h.respondError(w, http.StatusBadRequest, "message content is required")
		return
	}

	result, err := h.service.HandleMessage(r.Context(), conversationID, req.Content)
	if err != nil {
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to handle message")
		h.respondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/conversations/{id}
func (h *ConversationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	recentTurns := 0
	if v := r.URL.Query().Get("turns"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			recentTurns = n
		}
	}

	detail, err := h.service.GetConversation(r.Context(), conversationID, recentTurns)
	if err != nil {
		if errors.Is(err, memory.ErrConversationNotFound) {
			h.respondError(w, http.StatusNotFound, "conversation not found")
			return
		}
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to load conversation")
		h.respondError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	h.respondJSON(w, http.StatusOK, detail)
}

// GetIntelligence handles GET /api/v1/conversations/{id}/intelligence
func (h *ConversationsHandler) GetIntelligence(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	ledger, err := h.service.GetIntelligence(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, memory.ErrConversationNotFound) {
			h.respondError(w, http.StatusNotFound, "conversation not found")
			return
		}
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to load intelligence")
		h.respondError(w, http.StatusInternalServerError, "failed to load intelligence")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conversationID,
		"intelligence":    ledger,
	})
}

// Close handles DELETE /api/v1/conversations/{id}
func (h *ConversationsHandler) Close(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	state, err := h.service.CloseConversation(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, memory.ErrConversationNotFound) {
			h.respondError(w, http.StatusNotFound, "conversation not found")
			return
		}
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to close conversation")
		h.respondError(w, http.StatusInternalServerError, "failed to close conversation")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"status": "closed",
		"state":  state,
	})
}

func (h *ConversationsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *ConversationsHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
