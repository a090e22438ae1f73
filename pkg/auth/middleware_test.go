package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cairn-ai/cairn-engine/pkg/database"
)

type stubJWKS struct {
	claims *Claims
	err    error
}

func (s *stubJWKS) ValidateToken(_ string) (*Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type stubBinder struct {
	userID uuid.UUID
	err    error
	cleans int
}

func (s *stubBinder) WithUserScope(ctx context.Context, userID uuid.UUID) (context.Context, func(), error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	s.userID = userID
	ctx = database.SetUserScope(ctx, &database.UserScope{UserID: userID})
	return ctx, func() { s.cleans++ }, nil
}

func claimsFor(userID uuid.UUID) *Claims {
	return &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()}}
}

func TestRequireUserBindsScopeAndClaims(t *testing.T) {
	userID := uuid.New()
	binder := &stubBinder{}
	m := NewMiddleware(&stubJWKS{claims: claimsFor(userID)}, binder, zap.NewNop())

	var gotScope *database.UserScope
	var gotClaims *Claims
	handler := m.RequireUser(func(w http.ResponseWriter, r *http.Request) {
		gotScope, _ = database.GetUserScope(r.Context())
		gotClaims, _ = GetClaims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, gotScope)
	assert.Equal(t, userID, gotScope.UserID)
	require.NotNil(t, gotClaims)
	assert.Equal(t, userID.String(), gotClaims.Subject)
	assert.Equal(t, 1, binder.cleans, "scope released after the handler returns")
}

func TestRequireUserMissingHeader(t *testing.T) {
	m := NewMiddleware(&stubJWKS{}, &stubBinder{}, zap.NewNop())
	handler := m.RequireUser(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUserMalformedHeader(t *testing.T) {
	m := NewMiddleware(&stubJWKS{}, &stubBinder{}, zap.NewNop())
	handler := m.RequireUser(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})

	for _, header := range []string{"Bearer", "Bearer ", "Basic abc", "sometoken"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireUserInvalidToken(t *testing.T) {
	m := NewMiddleware(&stubJWKS{err: errors.New("signature mismatch")}, &stubBinder{}, zap.NewNop())
	handler := m.RequireUser(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUserNonUUIDSubject(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "service-account"}}
	m := NewMiddleware(&stubJWKS{claims: claims}, &stubBinder{}, zap.NewNop())
	handler := m.RequireUser(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUserScopeFailure(t *testing.T) {
	m := NewMiddleware(&stubJWKS{claims: claimsFor(uuid.New())},
		&stubBinder{err: errors.New("pool exhausted")}, zap.NewNop())
	handler := m.RequireUser(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestClaimsUserID(t *testing.T) {
	id := uuid.New()
	got, err := claimsFor(id).UserID()
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = (&Claims{}).UserID()
	assert.Error(t, err)

	_, err = (&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "nope"}}).UserID()
	assert.Error(t, err)
}
