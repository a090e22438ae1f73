package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cairn-ai/cairn-engine/pkg/auth"
	"github.com/cairn-ai/cairn-engine/pkg/services"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
	Message        string     `json:"message"`
}

// ChatHandler streams coaching replies over server-sent events.
type ChatHandler struct {
	chat   services.ChatService
	logger *zap.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// RegisterRoutes registers the chat handler's routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/chat", authMiddleware.RequireUser(h.Chat))
}

// Chat handles POST /api/chat. The response is an SSE stream of text deltas
// followed by warning events (if any) and a terminal done or error event.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		_ = ErrorResponse(w, http.StatusInternalServerError, "streaming_unsupported", "response writer does not support streaming")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sink := func(event services.Event) error {
		if err := writeSSE(w, event.Type, event.Data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := h.chat.StreamTurn(r.Context(), req.ConversationID, req.Message, sink); err != nil {
		// The service already emitted an error event; headers are sent, so
		// all that is left is logging.
		h.logger.Error("chat turn failed", zap.Error(err))
	}
}

// writeSSE writes one server-sent event. Multi-line data becomes multiple
// data: lines per the SSE framing rules.
func writeSSE(w http.ResponseWriter, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return err
	}
	for _, line := range strings.Split(data, "\n") {
		if _, err := fmt.Fprintf(w, "data: %s\n", line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\n")
	return err
}
