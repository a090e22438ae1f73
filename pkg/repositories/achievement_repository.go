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

// AchievementRepository provides data access for achievements.
type AchievementRepository interface {
	List(ctx context.Context, limit int) ([]*models.Achievement, error)
	Create(ctx context.Context, achievement *models.Achievement) error
}

type achievementRepository struct{}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository() AchievementRepository {
	return &achievementRepository{}
}

var _ AchievementRepository = (*achievementRepository)(nil)

func (r *achievementRepository) List(ctx context.Context, limit int) ([]*models.Achievement, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT id, user_id, title, description, impact, achieved_at, created_at, updated_at
		FROM achievements
		WHERE user_id = $1
		ORDER BY achieved_at DESC NULLS LAST
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, scope.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []*models.Achievement
	for rows.Next() {
		var a models.Achievement
		err := rows.Scan(
			&a.ID, &a.UserID, &a.Title, &a.Description, &a.Impact,
			&a.AchievedAt, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, &a)
	}
	return achievements, rows.Err()
}

func (r *achievementRepository) Create(ctx context.Context, achievement *models.Achievement) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if achievement.ID == uuid.Nil {
		achievement.ID = uuid.New()
	}
	achievement.UserID = scope.UserID

	query := `
		INSERT INTO achievements (id, user_id, title, description, impact, achieved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`

	_, err := scope.Conn.Exec(ctx, query,
		achievement.ID, achievement.UserID, achievement.Title,
		achievement.Description, achievement.Impact, achievement.AchievedAt, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create achievement: %w", err)
	}
	return nil
}
