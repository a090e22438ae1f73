package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserScope wraps a connection bound to one user account. The connection has
// app.current_user_id set for RLS policy evaluation.
type UserScope struct {
	Conn   *pgxpool.Conn
	UserID uuid.UUID
}

// Close resets the user context and releases the connection to the pool.
// This MUST be called, or the user id leaks into the next request that
// borrows this connection.
func (s *UserScope) Close() {
	if s.Conn == nil {
		return
	}
	_, _ = s.Conn.Exec(context.Background(), "RESET app.current_user_id")
	s.Conn.Release()
}

// WithUser acquires a connection and pins it to the given user for RLS.
// The returned UserScope MUST be closed with defer scope.Close().
func (db *DB) WithUser(ctx context.Context, userID uuid.UUID) (*UserScope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	_, err = conn.Exec(ctx, "SELECT set_config('app.current_user_id', $1, false)", userID.String())
	if err != nil {
		conn.Release()
		return nil, err
	}

	return &UserScope{Conn: conn, UserID: userID}, nil
}
