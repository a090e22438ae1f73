package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cairn-ai/cairn-engine/pkg/auth"
	"github.com/cairn-ai/cairn-engine/pkg/models"
	"github.com/cairn-ai/cairn-engine/pkg/services"
)

// Suggestion review actions.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// ResolveSuggestionRequest is the body of PATCH /api/suggestions/{id}.
type ResolveSuggestionRequest struct {
	Action string `json:"action"`
}

// SuggestionsHandler exposes the suggestion review endpoints.
type SuggestionsHandler struct {
	suggestions services.SuggestionService
	logger      *zap.Logger
}

// NewSuggestionsHandler creates a new SuggestionsHandler.
func NewSuggestionsHandler(suggestions services.SuggestionService, logger *zap.Logger) *SuggestionsHandler {
	return &SuggestionsHandler{suggestions: suggestions, logger: logger}
}

// RegisterRoutes registers the suggestion handler's routes on the given mux.
func (h *SuggestionsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/suggestions", authMiddleware.RequireUser(h.List))
	mux.HandleFunc("PATCH /api/suggestions/{id}", authMiddleware.RequireUser(h.Resolve))
}

// List handles GET /api/suggestions. Only pending suggestions are listable;
// resolved ones are terminal and of no further interest to the review UI.
func (h *SuggestionsHandler) List(w http.ResponseWriter, r *http.Request) {
	if status := r.URL.Query().Get("status"); status != "" && status != models.SuggestionStatusPending {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "only status=pending is supported")
		return
	}

	suggestions, err := h.suggestions.ListPending(r.Context())
	if err != nil {
		h.logger.Error("failed to list suggestions", zap.Error(err))
		_ = WriteDomainError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []*models.Suggestion{}
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// Resolve handles PATCH /api/suggestions/{id} with an accept or reject action.
func (h *SuggestionsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid suggestion id")
		return
	}

	var req ResolveSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	switch req.Action {
	case ActionAccept:
		err = h.suggestions.Accept(r.Context(), id)
	case ActionReject:
		err = h.suggestions.Reject(r.Context(), id)
	default:
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "action must be accept or reject")
		return
	}
	if err != nil {
		h.logger.Warn("failed to resolve suggestion",
			zap.String("suggestion_id", id.String()),
			zap.String("action", req.Action),
			zap.Error(err))
		_ = WriteDomainError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}
