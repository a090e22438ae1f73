package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
	"github.com/cairn-ai/cairn-engine/pkg/database"
	"github.com/cairn-ai/cairn-engine/pkg/models"
)

// ConversationRepository provides data access for chat transcripts.
// Transcripts are append-only: a turn adds a user+assistant message pair and
// nothing else is ever rewritten.
type ConversationRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	// ListRecent returns conversations ordered by most recent activity.
	ListRecent(ctx context.Context, limit int) ([]*models.Conversation, error)
	Count(ctx context.Context) (int, error)
	// RecentTitles returns titles of the most recently active conversations,
	// for the lightweight history block in the coaching prompt.
	RecentTitles(ctx context.Context, limit int) ([]string, error)
	Create(ctx context.Context, conversation *models.Conversation) error
	// AppendTurn appends one user+assistant message pair and bumps
	// updated_at. Returns apperrors.ErrNotFound for an unknown id.
	AppendTurn(ctx context.Context, id uuid.UUID, userMsg, assistantMsg models.Message) error
}

type conversationRepository struct{}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository() ConversationRepository {
	return &conversationRepository{}
}

var _ ConversationRepository = (*conversationRepository)(nil)

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var c models.Conversation
	var messagesJSON []byte
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &messagesJSON, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(messagesJSON) > 0 {
		if err := json.Unmarshal(messagesJSON, &c.Messages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conversation messages: %w", err)
		}
	}
	return &c, nil
}

func (r *conversationRepository) Get(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT id, user_id, title, messages, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND user_id = $2`

	c, err := scanConversation(scope.Conn.QueryRow(ctx, query, id, scope.UserID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return c, nil
}

func (r *conversationRepository) ListRecent(ctx context.Context, limit int) ([]*models.Conversation, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT id, user_id, title, messages, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, scope.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

func (r *conversationRepository) Count(ctx context.Context) (int, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return 0, apperrors.ErrNoScope
	}

	var count int
	err := scope.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM conversations WHERE user_id = $1`, scope.UserID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return count, nil
}

func (r *conversationRepository) RecentTitles(ctx context.Context, limit int) ([]string, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT title
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, scope.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan conversation title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func (r *conversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if conversation.ID == uuid.Nil {
		conversation.ID = uuid.New()
	}
	conversation.UserID = scope.UserID
	if conversation.Title == "" && len(conversation.Messages) > 0 {
		conversation.Title = models.DeriveTitle(conversation.Messages[0].Content)
	}

	messagesJSON, err := json.Marshal(conversation.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation messages: %w", err)
	}

	query := `
		INSERT INTO conversations (id, user_id, title, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`

	_, err = scope.Conn.Exec(ctx, query,
		conversation.ID, conversation.UserID, conversation.Title,
		messagesJSON, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (r *conversationRepository) AppendTurn(ctx context.Context, id uuid.UUID, userMsg, assistantMsg models.Message) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	pairJSON, err := json.Marshal([]models.Message{userMsg, assistantMsg})
	if err != nil {
		return fmt.Errorf("failed to marshal message pair: %w", err)
	}

	// jsonb || jsonb concatenates arrays, so the append happens in one
	// statement without reading the transcript back first.
	query := `
		UPDATE conversations
		SET messages = messages || $1::jsonb, updated_at = $2
		WHERE id = $3 AND user_id = $4`

	result, err := scope.Conn.Exec(ctx, query, pairJSON, time.Now(), id, scope.UserID)
	if err != nil {
		return fmt.Errorf("failed to append conversation turn: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
