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

// InteractionRepository provides data access for coworker interactions.
type InteractionRepository interface {
	List(ctx context.Context, limit int) ([]*models.Interaction, error)
	// Create inserts the interaction and bumps the coworker's denormalized
	// last_interaction_at in the same scoped connection.
	Create(ctx context.Context, interaction *models.Interaction) error
}

type interactionRepository struct {
	coworkers CoworkerRepository
}

// NewInteractionRepository creates a new InteractionRepository.
func NewInteractionRepository(coworkers CoworkerRepository) InteractionRepository {
	return &interactionRepository{coworkers: coworkers}
}

var _ InteractionRepository = (*interactionRepository)(nil)

func (r *interactionRepository) List(ctx context.Context, limit int) ([]*models.Interaction, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT id, user_id, coworker_id, date, type, sentiment, career_effect,
		       description, outcomes, project_id, goal_id, challenge_id, created_at
		FROM interactions
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, scope.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []*models.Interaction
	for rows.Next() {
		var i models.Interaction
		err := rows.Scan(
			&i.ID, &i.UserID, &i.CoworkerID, &i.Date, &i.Type, &i.Sentiment,
			&i.CareerEffect, &i.Description, &i.Outcomes, &i.ProjectID,
			&i.GoalID, &i.ChallengeID, &i.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, &i)
	}
	return interactions, rows.Err()
}

func (r *interactionRepository) Create(ctx context.Context, interaction *models.Interaction) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if interaction.ID == uuid.Nil {
		interaction.ID = uuid.New()
	}
	interaction.UserID = scope.UserID
	if interaction.Date.IsZero() {
		interaction.Date = time.Now()
	}

	query := `
		INSERT INTO interactions (id, user_id, coworker_id, date, type, sentiment,
			career_effect, description, outcomes, project_id, goal_id, challenge_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := scope.Conn.Exec(ctx, query,
		interaction.ID, interaction.UserID, interaction.CoworkerID,
		interaction.Date, interaction.Type, interaction.Sentiment,
		interaction.CareerEffect, interaction.Description, interaction.Outcomes,
		interaction.ProjectID, interaction.GoalID, interaction.ChallengeID,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create interaction: %w", err)
	}

	if err := r.coworkers.TouchLastInteraction(ctx, interaction.CoworkerID, interaction.Date); err != nil {
		return fmt.Errorf("failed to update coworker after interaction: %w", err)
	}
	return nil
}
