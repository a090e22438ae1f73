package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
	"github.com/cairn-ai/cairn-engine/pkg/database"
	"github.com/cairn-ai/cairn-engine/pkg/models"
)

// SuggestionRepository provides data access for extracted entity suggestions.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *models.Suggestion) error
	CreateBatch(ctx context.Context, suggestions []*models.Suggestion) error
	ListByStatus(ctx context.Context, status string, limit int) ([]*models.Suggestion, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Suggestion, error)
	// Resolve transitions a pending suggestion to accepted or rejected. The
	// update is conditional on status still being pending, so two
	// concurrent resolutions cannot both win. Returns apperrors.ErrConflict
	// if the suggestion exists but is already resolved, and
	// apperrors.ErrNotFound if it does not exist.
	Resolve(ctx context.Context, id uuid.UUID, status string) error
}

type suggestionRepository struct{}

// NewSuggestionRepository creates a new SuggestionRepository.
func NewSuggestionRepository() SuggestionRepository {
	return &suggestionRepository{}
}

var _ SuggestionRepository = (*suggestionRepository)(nil)

const suggestionColumns = `id, user_id, conversation_id, entity_type, entity_data, context, status, created_at, resolved_at`

func scanSuggestion(row pgx.Row) (*models.Suggestion, error) {
	var s models.Suggestion
	err := row.Scan(
		&s.ID, &s.UserID, &s.ConversationID, &s.EntityType, &s.EntityData,
		&s.Context, &s.Status, &s.CreatedAt, &s.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *suggestionRepository) Create(ctx context.Context, suggestion *models.Suggestion) error {
	if !models.AllowedEntityType(suggestion.EntityType) {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidEntityType, suggestion.EntityType)
	}

	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if suggestion.ID == uuid.Nil {
		suggestion.ID = uuid.New()
	}
	suggestion.UserID = scope.UserID
	if suggestion.Status == "" {
		suggestion.Status = models.SuggestionStatusPending
	}

	query := `
		INSERT INTO suggestions (id, user_id, conversation_id, entity_type,
			entity_data, context, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := scope.Conn.Exec(ctx, query,
		suggestion.ID, suggestion.UserID, suggestion.ConversationID,
		suggestion.EntityType, suggestion.EntityData, suggestion.Context,
		suggestion.Status, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create suggestion: %w", err)
	}
	return nil
}

func (r *suggestionRepository) CreateBatch(ctx context.Context, suggestions []*models.Suggestion) error {
	for _, s := range suggestions {
		if err := r.Create(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *suggestionRepository) ListByStatus(ctx context.Context, status string, limit int) ([]*models.Suggestion, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT ` + suggestionColumns + `
		FROM suggestions
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := scope.Conn.Query(ctx, query, scope.UserID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []*models.Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

func (r *suggestionRepository) Get(ctx context.Context, id uuid.UUID) (*models.Suggestion, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT ` + suggestionColumns + `
		FROM suggestions
		WHERE id = $1 AND user_id = $2`

	s, err := scanSuggestion(scope.Conn.QueryRow(ctx, query, id, scope.UserID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	return s, nil
}

func (r *suggestionRepository) Resolve(ctx context.Context, id uuid.UUID, status string) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	query := `
		UPDATE suggestions
		SET status = $1, resolved_at = $2
		WHERE id = $3 AND user_id = $4 AND status = $5`

	result, err := scope.Conn.Exec(ctx, query,
		status, time.Now(), id, scope.UserID, models.SuggestionStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve suggestion: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	// No row transitioned: the suggestion is either missing or already
	// resolved. Distinguish so the caller can report 404 vs 409.
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return apperrors.ErrConflict
}
