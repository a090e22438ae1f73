package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
	"github.com/cairn-ai/cairn-engine/pkg/database"
	"github.com/cairn-ai/cairn-engine/pkg/llm"
	"github.com/cairn-ai/cairn-engine/pkg/memory"
	"github.com/cairn-ai/cairn-engine/pkg/models"
	"github.com/cairn-ai/cairn-engine/pkg/prompts"
	"github.com/cairn-ai/cairn-engine/pkg/repositories"
)

// Stream event types emitted during a chat turn.
const (
	EventText    = "text"
	EventWarning = "warning"
	EventDone    = "done"
	EventError   = "error"
)

// Event is one server-sent event in a chat stream.
type Event struct {
	Type string
	Data string
}

// EventSink receives stream events in order. A sink error means the client
// is gone; the turn keeps running server-side regardless.
type EventSink func(event Event) error

// TurnResult is the payload of the final done event.
type TurnResult struct {
	ConversationID  uuid.UUID `json:"conversation_id"`
	SuggestionCount int       `json:"suggestion_count"`
}

// ChatService runs one full coaching turn: context assembly, the streamed
// completion, and the tail persistence that records the transcript and
// extracts suggestions.
type ChatService interface {
	// StreamTurn handles one chat message. A nil conversationID starts a
	// new conversation. Upstream completion failure is the only fatal
	// outcome; persistence failures after a delivered reply surface as
	// warning events.
	StreamTurn(ctx context.Context, conversationID *uuid.UUID, message string, sink EventSink) error
}

type chatService struct {
	assembler     ContextAssembler
	extraction    ExtractionService
	conversations repositories.ConversationRepository
	coach         llm.ChatClient
	scopes        UserScoper
	logger        *zap.Logger
}

// ChatServiceDeps holds the dependencies for NewChatService.
type ChatServiceDeps struct {
	Assembler     ContextAssembler
	Extraction    ExtractionService
	Conversations repositories.ConversationRepository
	Coach         llm.ChatClient
	Scopes        UserScoper
	Logger        *zap.Logger
}

// NewChatService creates a ChatService.
func NewChatService(deps ChatServiceDeps) ChatService {
	return &chatService{
		assembler:     deps.Assembler,
		extraction:    deps.Extraction,
		conversations: deps.Conversations,
		coach:         deps.Coach,
		scopes:        deps.Scopes,
		logger:        deps.Logger.Named("chat"),
	}
}

var _ ChatService = (*chatService)(nil)

func (s *chatService) StreamTurn(ctx context.Context, conversationID *uuid.UUID, message string, sink EventSink) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}
	userID := scope.UserID

	assembled, err := s.assembler.Assemble(ctx, message)
	if err != nil {
		s.emitError(sink, "failed to assemble context")
		return fmt.Errorf("context assembly failed: %w", err)
	}

	system := prompts.BuildSystemPrompt(assembled)
	if recent, err := s.conversations.ListRecent(ctx, memory.MaxConversations); err != nil {
		// Memory is continuity garnish; the turn proceeds without it.
		s.logger.Warn("failed to load conversation history for memory", zap.Error(err))
	} else if mem := memory.Analyze(recent, time.Now()); mem.ConversationCount > 0 {
		system += "\n" + prompts.BuildMemoryBlock(mem)
	}

	var history *models.Conversation
	if conversationID != nil {
		history, err = s.conversations.Get(ctx, *conversationID)
		if err != nil {
			s.emitError(sink, "conversation not found")
			return err
		}
	}

	req := &llm.Request{
		System:   system,
		Messages: buildTurnMessages(history, message),
	}

	// The upstream call runs on a detached context: a client disconnect
	// mid-stream lets the completion finish so the turn is still recorded.
	// Sink failures stop forwarding but never abort the stream.
	llmCtx := context.WithoutCancel(ctx)
	clientGone := false
	reply, err := s.coach.Stream(llmCtx, req, func(delta string) error {
		if clientGone {
			return nil
		}
		if err := sink(Event{Type: EventText, Data: delta}); err != nil {
			clientGone = true
			s.logger.Info("client disconnected mid-stream, continuing server-side")
		}
		return nil
	})
	if err != nil {
		s.emitError(sink, "coaching model is unavailable")
		return fmt.Errorf("chat completion failed: %w", err)
	}

	result, warnings := s.persistTurn(llmCtx, userID, conversationID, history, message, reply)
	for _, w := range warnings {
		if !clientGone {
			_ = sink(Event{Type: EventWarning, Data: w})
		}
	}

	if !clientGone {
		payload, _ := json.Marshal(result)
		_ = sink(Event{Type: EventDone, Data: string(payload)})
	}
	return nil
}

// persistTurn appends the message pair and runs extraction on a fresh scope.
// It never fails the turn: the caller already has the reply, so problems come
// back as warning strings.
func (s *chatService) persistTurn(ctx context.Context, userID uuid.UUID, conversationID *uuid.UUID, history *models.Conversation, message, reply string) (TurnResult, []string) {
	var warnings []string
	result := TurnResult{}

	scopedCtx, cleanup, err := s.scopes.WithUserScope(ctx, userID)
	if err != nil {
		s.logger.Error("failed to acquire scope for turn persistence", zap.Error(err))
		return result, []string{"conversation could not be saved"}
	}
	defer cleanup()

	now := time.Now()
	userMsg := models.Message{Role: models.MessageRoleUser, Content: message, Timestamp: now}
	assistantMsg := models.Message{Role: models.MessageRoleAssistant, Content: reply, Timestamp: now}

	if conversationID == nil {
		conversation := &models.Conversation{Messages: []models.Message{userMsg, assistantMsg}}
		if err := s.conversations.Create(scopedCtx, conversation); err != nil {
			s.logger.Error("failed to create conversation", zap.Error(err))
			return result, []string{"conversation could not be saved"}
		}
		result.ConversationID = conversation.ID
	} else {
		result.ConversationID = *conversationID
		if err := s.conversations.AppendTurn(scopedCtx, *conversationID, userMsg, assistantMsg); err != nil {
			s.logger.Error("failed to append conversation turn", zap.Error(err))
			return result, []string{"conversation could not be saved"}
		}
	}

	// Extraction sees the new turn plus the prior transcript for pronoun
	// and back-reference resolution.
	turn := []models.Message{userMsg, assistantMsg}
	if history != nil {
		turn = append(append([]models.Message{}, history.Messages...), turn...)
	}
	suggestions, err := s.extraction.ExtractAndStore(scopedCtx, result.ConversationID, turn)
	if err != nil {
		s.logger.Warn("entity extraction failed for turn",
			zap.String("conversation_id", result.ConversationID.String()), zap.Error(err))
		warnings = append(warnings, "suggestions could not be extracted from this conversation")
	}
	result.SuggestionCount = len(suggestions)

	return result, warnings
}

func (s *chatService) emitError(sink EventSink, msg string) {
	_ = sink(Event{Type: EventError, Data: msg})
}

// buildTurnMessages flattens prior transcript plus the new user message into
// the completion request.
func buildTurnMessages(history *models.Conversation, message string) []llm.Message {
	var msgs []llm.Message
	if history != nil {
		for _, m := range history.Messages {
			msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
		}
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: message})
}
