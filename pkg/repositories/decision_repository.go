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

// DecisionRepository provides data access for recorded decisions.
type DecisionRepository interface {
	List(ctx context.Context, limit int) ([]*models.Decision, error)
	Create(ctx context.Context, decision *models.Decision) error
}

type decisionRepository struct{}

// NewDecisionRepository creates a new DecisionRepository.
func NewDecisionRepository() DecisionRepository {
	return &decisionRepository{}
}

var _ DecisionRepository = (*decisionRepository)(nil)

func (r *decisionRepository) List(ctx context.Context, limit int) ([]*models.Decision, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT id, user_id, title, description, date, reasoning, expected_outcome,
		       actual_outcome, status, impact_score, confidence_level,
		       related_coworkers, related_goals, related_projects, tags,
		       created_at, updated_at
		FROM decisions
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, scope.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*models.Decision
	for rows.Next() {
		var d models.Decision
		var coworkersJSON, goalsJSON, projectsJSON, tagsJSON []byte
		err := rows.Scan(
			&d.ID, &d.UserID, &d.Title, &d.Description, &d.Date, &d.Reasoning,
			&d.ExpectedOutcome, &d.ActualOutcome, &d.Status, &d.ImpactScore,
			&d.ConfidenceLevel, &coworkersJSON, &goalsJSON, &projectsJSON,
			&tagsJSON, &d.CreatedAt, &d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		for _, col := range []struct {
			raw  []byte
			dest any
		}{
			{coworkersJSON, &d.RelatedCoworkers},
			{goalsJSON, &d.RelatedGoals},
			{projectsJSON, &d.RelatedProjects},
			{tagsJSON, &d.Tags},
		} {
			if len(col.raw) == 0 {
				continue
			}
			if err := json.Unmarshal(col.raw, col.dest); err != nil {
				return nil, fmt.Errorf("failed to unmarshal decision column: %w", err)
			}
		}
		decisions = append(decisions, &d)
	}
	return decisions, rows.Err()
}

func (r *decisionRepository) Create(ctx context.Context, decision *models.Decision) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if decision.ID == uuid.Nil {
		decision.ID = uuid.New()
	}
	decision.UserID = scope.UserID
	if decision.Status == "" {
		decision.Status = models.DecisionStatusPending
	}
	if decision.Date.IsZero() {
		decision.Date = time.Now()
	}

	var cols []any
	for _, v := range []any{
		decision.RelatedCoworkers, decision.RelatedGoals,
		decision.RelatedProjects, decision.Tags,
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal decision column: %w", err)
		}
		cols = append(cols, raw)
	}

	query := `
		INSERT INTO decisions (id, user_id, title, description, date, reasoning,
			expected_outcome, actual_outcome, status, impact_score,
			confidence_level, related_coworkers, related_goals, related_projects,
			tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)`

	_, err := scope.Conn.Exec(ctx, query,
		decision.ID, decision.UserID, decision.Title, decision.Description,
		decision.Date, decision.Reasoning, decision.ExpectedOutcome,
		decision.ActualOutcome, decision.Status, decision.ImpactScore,
		decision.ConfidenceLevel, cols[0], cols[1], cols[2], cols[3],
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create decision: %w", err)
	}
	return nil
}
