package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
	"github.com/cairn-ai/cairn-engine/pkg/database"
	"github.com/cairn-ai/cairn-engine/pkg/models"
)

// ChallengeRepository provides data access for challenges.
type ChallengeRepository interface {
	List(ctx context.Context, limit int) ([]*models.Challenge, error)
	Create(ctx context.Context, challenge *models.Challenge) error
}

type challengeRepository struct{}

// NewChallengeRepository creates a new ChallengeRepository.
func NewChallengeRepository() ChallengeRepository {
	return &challengeRepository{}
}

var _ ChallengeRepository = (*challengeRepository)(nil)

func (r *challengeRepository) List(ctx context.Context, limit int) ([]*models.Challenge, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT id, user_id, title, description, category, status, created_at, updated_at
		FROM challenges
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, scope.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*models.Challenge
	for rows.Next() {
		var c models.Challenge
		err := rows.Scan(
			&c.ID, &c.UserID, &c.Title, &c.Description, &c.Category,
			&c.Status, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, &c)
	}
	return challenges, rows.Err()
}

func (r *challengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if challenge.ID == uuid.Nil {
		challenge.ID = uuid.New()
	}
	challenge.UserID = scope.UserID
	if challenge.Status == "" {
		challenge.Status = models.ChallengeStatusActive
	}

	query := `
		INSERT INTO challenges (id, user_id, title, description, category, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`

	_, err := scope.Conn.Exec(ctx, query,
		challenge.ID, challenge.UserID, challenge.Title, challenge.Description,
		challenge.Category, challenge.Status, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}
