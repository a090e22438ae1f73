package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/cairn-ai/cairn-engine/pkg/models"
	"github.com/cairn-ai/cairn-engine/pkg/services"
)

type mockSuggestionService struct {
	pending   []*models.Suggestion
	listErr   error
	acceptErr error
	rejectErr error
	accepted  []uuid.UUID
	rejected  []uuid.UUID
}

func (m *mockSuggestionService) ListPending(_ context.Context) ([]*models.Suggestion, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.pending, nil
}

func (m *mockSuggestionService) Accept(_ context.Context, id uuid.UUID) error {
	if m.acceptErr != nil {
		return m.acceptErr
	}
	m.accepted = append(m.accepted, id)
	return nil
}

func (m *mockSuggestionService) Reject(_ context.Context, id uuid.UUID) error {
	if m.rejectErr != nil {
		return m.rejectErr
	}
	m.rejected = append(m.rejected, id)
	return nil
}

// mockChatService replays a canned event sequence through the sink.
type mockChatService struct {
	events []services.Event
	err    error
	gotID  *uuid.UUID
	gotMsg string
	called int
}

func (m *mockChatService) StreamTurn(_ context.Context, conversationID *uuid.UUID, message string, sink services.EventSink) error {
	m.called++
	m.gotID = conversationID
	m.gotMsg = message
	for _, e := range m.events {
		if err := sink(e); err != nil {
			return nil
		}
	}
	return m.err
}
