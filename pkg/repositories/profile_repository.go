// Package repositories provides data access for the coaching domain tables.
// Every method reads the user-scoped connection from context; queries are
// additionally predicated on user_id so scoping does not rely on RLS alone.
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

// ProfileRepository provides data access for the singleton career profile.
type ProfileRepository interface {
	Get(ctx context.Context) (*models.CareerProfile, error)
	Upsert(ctx context.Context, profile *models.CareerProfile) error
	// UpdateField updates exactly one named profile field, for
	// profile_update suggestions. Returns apperrors.ErrNotFound if the user
	// has no profile yet.
	UpdateField(ctx context.Context, field, value string) error
}

type profileRepository struct{}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository() ProfileRepository {
	return &profileRepository{}
}

var _ ProfileRepository = (*profileRepository)(nil)

func (r *profileRepository) Get(ctx context.Context) (*models.CareerProfile, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT id, user_id, role_title, company, department, years_experience,
		       industry, responsibilities, created_at, updated_at
		FROM career_profiles
		WHERE user_id = $1`

	var p models.CareerProfile
	var responsibilitiesJSON []byte
	err := scope.Conn.QueryRow(ctx, query, scope.UserID).Scan(
		&p.ID, &p.UserID, &p.RoleTitle, &p.Company, &p.Department,
		&p.YearsExperience, &p.Industry, &responsibilitiesJSON,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get career profile: %w", err)
	}

	if len(responsibilitiesJSON) > 0 {
		if err := json.Unmarshal(responsibilitiesJSON, &p.Responsibilities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal responsibilities: %w", err)
		}
	}
	return &p, nil
}

// Upsert replaces the profile wholesale: profile edits are full replacements,
// never field patches.
func (r *profileRepository) Upsert(ctx context.Context, profile *models.CareerProfile) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.UserID = scope.UserID
	now := time.Now()
	profile.UpdatedAt = now

	responsibilitiesJSON, err := json.Marshal(profile.Responsibilities)
	if err != nil {
		return fmt.Errorf("failed to marshal responsibilities: %w", err)
	}

	query := `
		INSERT INTO career_profiles (
			id, user_id, role_title, company, department, years_experience,
			industry, responsibilities, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			role_title = EXCLUDED.role_title,
			company = EXCLUDED.company,
			department = EXCLUDED.department,
			years_experience = EXCLUDED.years_experience,
			industry = EXCLUDED.industry,
			responsibilities = EXCLUDED.responsibilities,
			updated_at = EXCLUDED.updated_at`

	_, err = scope.Conn.Exec(ctx, query,
		profile.ID, profile.UserID, profile.RoleTitle, profile.Company,
		profile.Department, profile.YearsExperience, profile.Industry,
		responsibilitiesJSON, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert career profile: %w", err)
	}
	return nil
}

// profileFieldColumns whitelists the columns UpdateField may touch. The field
// name arrives from LLM output, so it is never interpolated directly.
var profileFieldColumns = map[string]string{
	models.ProfileFieldRoleTitle:       "role_title",
	models.ProfileFieldCompany:         "company",
	models.ProfileFieldDepartment:      "department",
	models.ProfileFieldYearsExperience: "years_experience",
	models.ProfileFieldIndustry:        "industry",
}

func (r *profileRepository) UpdateField(ctx context.Context, field, value string) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	column, ok := profileFieldColumns[field]
	if !ok {
		return fmt.Errorf("%w: profile field %q", apperrors.ErrInvalidEntityType, field)
	}

	query := fmt.Sprintf(
		`UPDATE career_profiles SET %s = $1, updated_at = $2 WHERE user_id = $3`,
		column,
	)
	result, err := scope.Conn.Exec(ctx, query, value, time.Now(), scope.UserID)
	if err != nil {
		return fmt.Errorf("failed to update profile field %s: %w", field, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
