package database

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// UserScopeKey is the context key for the user-scoped database connection.
const UserScopeKey contextKey = "userScope"

// GetUserScope retrieves the user-scoped database connection from context.
func GetUserScope(ctx context.Context) (*UserScope, bool) {
	scope, ok := ctx.Value(UserScopeKey).(*UserScope)
	return scope, ok
}

// SetUserScope stores the user-scoped database connection in context.
func SetUserScope(ctx context.Context, scope *UserScope) context.Context {
	return context.WithValue(ctx, UserScopeKey, scope)
}

// ScopeProvider creates user-scoped contexts for pipeline code that runs
// outside an HTTP request (tail persistence after a finished stream).
type ScopeProvider struct {
	db *DB
}

// NewScopeProvider creates a ScopeProvider for the given database.
func NewScopeProvider(db *DB) *ScopeProvider {
	return &ScopeProvider{db: db}
}

// WithUserScope returns a context with a fresh user scope set. The cleanup
// function must be called when the scope is no longer needed.
func (p *ScopeProvider) WithUserScope(ctx context.Context, userID uuid.UUID) (context.Context, func(), error) {
	scope, err := p.db.WithUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return SetUserScope(ctx, scope), func() { scope.Close() }, nil
}
