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

// CoworkerRepository provides data access for workplace relationships.
type CoworkerRepository interface {
	List(ctx context.Context, limit int) ([]*models.Coworker, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Coworker, error)
	Create(ctx context.Context, coworker *models.Coworker) error
	// TouchLastInteraction bumps the denormalized last_interaction_at,
	// called whenever an interaction with this coworker is logged.
	TouchLastInteraction(ctx context.Context, id uuid.UUID, at time.Time) error
}

type coworkerRepository struct{}

// NewCoworkerRepository creates a new CoworkerRepository.
func NewCoworkerRepository() CoworkerRepository {
	return &coworkerRepository{}
}

var _ CoworkerRepository = (*coworkerRepository)(nil)

const coworkerColumns = `id, user_id, name, role, department, seniority_level, relationship,
	communication_style, influence_level, relationship_quality, trust_level, career_impact,
	interaction_frequency, last_interaction_at, traits, created_at, updated_at`

func scanCoworker(row pgx.Row) (*models.Coworker, error) {
	var c models.Coworker
	var traitsJSON []byte
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Role, &c.Department, &c.SeniorityLevel,
		&c.Relationship, &c.CommunicationStyle, &c.InfluenceLevel,
		&c.RelationshipQuality, &c.TrustLevel, &c.CareerImpact,
		&c.InteractionFrequency, &c.LastInteractionAt, &traitsJSON,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(traitsJSON) > 0 {
		if err := json.Unmarshal(traitsJSON, &c.Traits); err != nil {
			return nil, fmt.Errorf("failed to unmarshal coworker traits: %w", err)
		}
	}
	return &c, nil
}

func (r *coworkerRepository) List(ctx context.Context, limit int) ([]*models.Coworker, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT ` + coworkerColumns + `
		FROM coworkers
		WHERE user_id = $1
		ORDER BY last_interaction_at DESC NULLS LAST
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, scope.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list coworkers: %w", err)
	}
	defer rows.Close()

	var coworkers []*models.Coworker
	for rows.Next() {
		c, err := scanCoworker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coworker: %w", err)
		}
		coworkers = append(coworkers, c)
	}
	return coworkers, rows.Err()
}

func (r *coworkerRepository) Get(ctx context.Context, id uuid.UUID) (*models.Coworker, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT ` + coworkerColumns + `
		FROM coworkers
		WHERE id = $1 AND user_id = $2`

	c, err := scanCoworker(scope.Conn.QueryRow(ctx, query, id, scope.UserID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coworker: %w", err)
	}
	return c, nil
}

func (r *coworkerRepository) Create(ctx context.Context, coworker *models.Coworker) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if coworker.ID == uuid.Nil {
		coworker.ID = uuid.New()
	}
	coworker.UserID = scope.UserID

	traitsJSON, err := json.Marshal(coworker.Traits)
	if err != nil {
		return fmt.Errorf("failed to marshal coworker traits: %w", err)
	}

	query := `
		INSERT INTO coworkers (id, user_id, name, role, department, seniority_level,
			relationship, communication_style, influence_level, relationship_quality,
			trust_level, career_impact, interaction_frequency, last_interaction_at,
			traits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)`

	_, err = scope.Conn.Exec(ctx, query,
		coworker.ID, coworker.UserID, coworker.Name, coworker.Role,
		coworker.Department, coworker.SeniorityLevel, coworker.Relationship,
		coworker.CommunicationStyle, coworker.InfluenceLevel,
		coworker.RelationshipQuality, coworker.TrustLevel, coworker.CareerImpact,
		coworker.InteractionFrequency, coworker.LastInteractionAt, traitsJSON,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create coworker: %w", err)
	}
	return nil
}

func (r *coworkerRepository) TouchLastInteraction(ctx context.Context, id uuid.UUID, at time.Time) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	query := `
		UPDATE coworkers
		SET last_interaction_at = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4`

	result, err := scope.Conn.Exec(ctx, query, at, time.Now(), id, scope.UserID)
	if err != nil {
		return fmt.Errorf("failed to touch coworker last interaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
