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

// SkillRepository provides data access for skills.
type SkillRepository interface {
	List(ctx context.Context, limit int) ([]*models.Skill, error)
	// GetByName matches case-insensitively so skill_update suggestions
	// resolve regardless of how the extraction LLM cased the name.
	GetByName(ctx context.Context, name string) (*models.Skill, error)
	Create(ctx context.Context, skill *models.Skill) error
	UpdateProficiency(ctx context.Context, id uuid.UUID, proficiency string) error
}

type skillRepository struct{}

// NewSkillRepository creates a new SkillRepository.
func NewSkillRepository() SkillRepository {
	return &skillRepository{}
}

var _ SkillRepository = (*skillRepository)(nil)

const skillColumns = `id, user_id, name, category, proficiency, last_used_at, created_at, updated_at`

func scanSkill(row pgx.Row) (*models.Skill, error) {
	var s models.Skill
	err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &s.Category, &s.Proficiency,
		&s.LastUsedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *skillRepository) List(ctx context.Context, limit int) ([]*models.Skill, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT ` + skillColumns + `
		FROM skills
		WHERE user_id = $1
		ORDER BY last_used_at DESC
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, scope.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	var skills []*models.Skill
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func (r *skillRepository) GetByName(ctx context.Context, name string) (*models.Skill, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT ` + skillColumns + `
		FROM skills
		WHERE user_id = $1 AND LOWER(name) = LOWER($2)`

	s, err := scanSkill(scope.Conn.QueryRow(ctx, query, scope.UserID, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get skill by name: %w", err)
	}
	return s, nil
}

func (r *skillRepository) Create(ctx context.Context, skill *models.Skill) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if skill.ID == uuid.Nil {
		skill.ID = uuid.New()
	}
	skill.UserID = scope.UserID
	now := time.Now()
	if skill.LastUsedAt.IsZero() {
		skill.LastUsedAt = now
	}

	query := `
		INSERT INTO skills (id, user_id, name, category, proficiency, last_used_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`

	_, err := scope.Conn.Exec(ctx, query,
		skill.ID, skill.UserID, skill.Name, skill.Category,
		skill.Proficiency, skill.LastUsedAt, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create skill: %w", err)
	}
	return nil
}

func (r *skillRepository) UpdateProficiency(ctx context.Context, id uuid.UUID, proficiency string) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	query := `
		UPDATE skills
		SET proficiency = $1, last_used_at = $2, updated_at = $2
		WHERE id = $3 AND user_id = $4`

	result, err := scope.Conn.Exec(ctx, query, proficiency, time.Now(), id, scope.UserID)
	if err != nil {
		return fmt.Errorf("failed to update skill proficiency: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
