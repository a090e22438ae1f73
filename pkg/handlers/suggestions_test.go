package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
	"github.com/cairn-ai/cairn-engine/pkg/models"
)

func resolveRequest(t *testing.T, id, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/api/suggestions/"+id, strings.NewReader(body))
	req.SetPathValue("id", id)
	return req
}

func TestListSuggestions(t *testing.T) {
	svc := &mockSuggestionService{pending: []*models.Suggestion{
		{ID: uuid.New(), EntityType: models.EntityTypeGoal, Status: models.SuggestionStatusPending},
	}}
	h := NewSuggestionsHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/suggestions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]*models.Suggestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body["suggestions"], 1)
}

func TestListSuggestionsEmptyIsArrayNotNull(t *testing.T) {
	h := NewSuggestionsHandler(&mockSuggestionService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/suggestions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"suggestions":[]`)
}

func TestListSuggestionsRejectsOtherStatuses(t *testing.T) {
	h := NewSuggestionsHandler(&mockSuggestionService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/suggestions?status=accepted", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveAccept(t *testing.T) {
	svc := &mockSuggestionService{}
	h := NewSuggestionsHandler(svc, zap.NewNop())
	id := uuid.New()

	rec := httptest.NewRecorder()
	h.Resolve(rec, resolveRequest(t, id.String(), `{"action":"accept"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.accepted, 1)
	assert.Equal(t, id, svc.accepted[0])
	assert.Empty(t, svc.rejected)
}

func TestResolveReject(t *testing.T) {
	svc := &mockSuggestionService{}
	h := NewSuggestionsHandler(svc, zap.NewNop())
	id := uuid.New()

	rec := httptest.NewRecorder()
	h.Resolve(rec, resolveRequest(t, id.String(), `{"action":"reject"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.rejected, 1)
	assert.Equal(t, id, svc.rejected[0])
}

func TestResolveInvalidAction(t *testing.T) {
	h := NewSuggestionsHandler(&mockSuggestionService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Resolve(rec, resolveRequest(t, uuid.New().String(), `{"action":"defer"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveInvalidID(t *testing.T) {
	h := NewSuggestionsHandler(&mockSuggestionService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Resolve(rec, resolveRequest(t, "not-a-uuid", `{"action":"accept"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveDomainErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound},
		{"already resolved", apperrors.ErrConflict, http.StatusConflict},
		{"bad entity payload", apperrors.ErrInvalidEntityType, http.StatusBadRequest},
		{"missing scope", apperrors.ErrNoScope, http.StatusUnauthorized},
		{"anything else", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSuggestionsHandler(&mockSuggestionService{acceptErr: tt.err}, zap.NewNop())

			rec := httptest.NewRecorder()
			h.Resolve(rec, resolveRequest(t, uuid.New().String(), `{"action":"accept"}`))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
