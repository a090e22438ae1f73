package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScopeBinder attaches a user-scoped database connection to a context.
// Satisfied by database.ScopeProvider.
type ScopeBinder interface {
	WithUserScope(ctx context.Context, userID uuid.UUID) (context.Context, func(), error)
}

// Middleware authenticates requests and binds the caller's database scope.
type Middleware struct {
	jwks   JWKSClientInterface
	scopes ScopeBinder
	logger *zap.Logger
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(jwks JWKSClientInterface, scopes ScopeBinder, logger *zap.Logger) *Middleware {
	return &Middleware{jwks: jwks, scopes: scopes, logger: logger}
}

// RequireUser validates the bearer token, resolves the user id from its
// subject, and attaches a user-scoped database connection for the lifetime of
// the request. Downstream code reads the scope from context and never sees
// raw credentials.
func (m *Middleware) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			m.unauthorized(w, "Authentication required")
			return
		}

		claims, err := m.jwks.ValidateToken(tokenString)
		if err != nil {
			m.logger.Debug("token validation failed", zap.Error(err))
			m.unauthorized(w, "Authentication required")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			m.unauthorized(w, "Invalid user identity in token")
			return
		}

		scopedCtx, cleanup, err := m.scopes.WithUserScope(r.Context(), userID)
		if err != nil {
			m.logger.Error("failed to acquire user scope", zap.Error(err))
			m.serviceUnavailable(w, "Database unavailable")
			return
		}
		defer cleanup()

		ctx := context.WithValue(scopedCtx, ClaimsKey, claims)
		ctx = context.WithValue(ctx, TokenKey, tokenString)
		next(w, r.WithContext(ctx))
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}

func (m *Middleware) serviceUnavailable(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "service_unavailable",
		"message": message,
	})
}
