package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cairn-ai/cairn-engine/pkg/services"
)

func TestChatStreamsEvents(t *testing.T) {
	svc := &mockChatService{events: []services.Event{
		{Type: services.EventText, Data: "Hello"},
		{Type: services.EventText, Data: " there"},
		{Type: services.EventDone, Data: `{"conversation_id":"x","suggestion_count":0}`},
	}}
	h := NewChatHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi coach"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "hi coach", svc.gotMsg)
	assert.Nil(t, svc.gotID)

	body := rec.Body.String()
	assert.Contains(t, body, "event: text\ndata: Hello\n\n")
	assert.Contains(t, body, "event: done\n")
}

func TestChatForwardsConversationID(t *testing.T) {
	svc := &mockChatService{}
	h := NewChatHandler(svc, zap.NewNop())
	id := uuid.New()

	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"conversation_id":"`+id.String()+`","message":"hi"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotID)
	assert.Equal(t, id, *svc.gotID)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	svc := &mockChatService{}
	h := NewChatHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"   "}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, svc.called)
}

func TestChatRejectsInvalidJSON(t *testing.T) {
	svc := &mockChatService{}
	h := NewChatHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, svc.called)
}

func TestChatServiceFailureAfterHeaders(t *testing.T) {
	svc := &mockChatService{
		events: []services.Event{{Type: services.EventError, Data: "coaching model is unavailable"}},
		err:    assert.AnError,
	}
	h := NewChatHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))

	// Headers are committed before the turn runs, so failures surface as an
	// error event in the stream, not a status code.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: error\n")
}

func TestWriteSSEMultiLineData(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, writeSSE(rec, "text", "line one\nline two"))

	assert.Equal(t, "event: text\ndata: line one\ndata: line two\n\n", rec.Body.String())
}
