package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
	"github.com/cairn-ai/cairn-engine/pkg/database"
	"github.com/cairn-ai/cairn-engine/pkg/models"
)

// GoalRepository provides data access for career goals.
type GoalRepository interface {
	List(ctx context.Context, limit int) ([]*models.Goal, error)
	Create(ctx context.Context, goal *models.Goal) error
}

type goalRepository struct{}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository() GoalRepository {
	return &goalRepository{}
}

var _ GoalRepository = (*goalRepository)(nil)

func (r *goalRepository) List(ctx context.Context, limit int) ([]*models.Goal, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT id, user_id, title, description, category, status, target_date,
		       milestones, created_at, updated_at
		FROM goals
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, scope.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		var g models.Goal
		var milestonesJSON []byte
		err := rows.Scan(
			&g.ID, &g.UserID, &g.Title, &g.Description, &g.Category,
			&g.Status, &g.TargetDate, &milestonesJSON, &g.CreatedAt, &g.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		if len(milestonesJSON) > 0 {
			if err := json.Unmarshal(milestonesJSON, &g.Milestones); err != nil {
				return nil, fmt.Errorf("failed to unmarshal goal milestones: %w", err)
			}
		}
		goals = append(goals, &g)
	}
	return goals, rows.Err()
}

func (r *goalRepository) Create(ctx context.Context, goal *models.Goal) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	goal.UserID = scope.UserID
	if goal.Status == "" {
		goal.Status = models.GoalStatusActive
	}

	milestonesJSON, err := json.Marshal(goal.Milestones)
	if err != nil {
		return fmt.Errorf("failed to marshal goal milestones: %w", err)
	}

	query := `
		INSERT INTO goals (id, user_id, title, description, category, status,
		                   target_date, milestones, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`

	_, err = scope.Conn.Exec(ctx, query,
		goal.ID, goal.UserID, goal.Title, goal.Description, goal.Category,
		goal.Status, goal.TargetDate, milestonesJSON, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}
