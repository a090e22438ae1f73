package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
	"github.com/cairn-ai/cairn-engine/pkg/database"
	"github.com/cairn-ai/cairn-engine/pkg/jsonutil"
	"github.com/cairn-ai/cairn-engine/pkg/models"
	"github.com/cairn-ai/cairn-engine/pkg/repositories"
)

// defaultSuggestionListLimit bounds a pending-suggestion listing.
const defaultSuggestionListLimit = 100

// SuggestionService manages the review lifecycle of extracted suggestions.
type SuggestionService interface {
	ListPending(ctx context.Context) ([]*models.Suggestion, error)
	// Accept applies the suggestion's entity to its domain table and
	// transitions it to accepted, both inside one transaction. The
	// conditional pending->accepted update claims the row, so two
	// concurrent accepts yield exactly one application; a failed apply
	// rolls back and leaves the suggestion pending for retry.
	Accept(ctx context.Context, id uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID) error
}

type suggestionService struct {
	suggestions repositories.SuggestionRepository
	skills      repositories.SkillRepository
	goals       repositories.GoalRepository
	projects    repositories.ProjectRepository
	challenges  repositories.ChallengeRepository
	achievement repositories.AchievementRepository
	profiles    repositories.ProfileRepository
	logger      *zap.Logger
}

// SuggestionServiceDeps holds the dependencies for NewSuggestionService.
type SuggestionServiceDeps struct {
	Suggestions  repositories.SuggestionRepository
	Skills       repositories.SkillRepository
	Goals        repositories.GoalRepository
	Projects     repositories.ProjectRepository
	Challenges   repositories.ChallengeRepository
	Achievements repositories.AchievementRepository
	Profiles     repositories.ProfileRepository
	Logger       *zap.Logger
}

// NewSuggestionService creates a SuggestionService.
func NewSuggestionService(deps SuggestionServiceDeps) SuggestionService {
	return &suggestionService{
		suggestions: deps.Suggestions,
		skills:      deps.Skills,
		goals:       deps.Goals,
		projects:    deps.Projects,
		challenges:  deps.Challenges,
		achievement: deps.Achievements,
		profiles:    deps.Profiles,
		logger:      deps.Logger.Named("suggestions"),
	}
}

var _ SuggestionService = (*suggestionService)(nil)

func (s *suggestionService) ListPending(ctx context.Context) ([]*models.Suggestion, error) {
	return s.suggestions.ListByStatus(ctx, models.SuggestionStatusPending, defaultSuggestionListLimit)
}

func (s *suggestionService) Accept(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	suggestion, err := s.suggestions.Get(ctx, id)
	if err != nil {
		return err
	}

	// Repositories execute on the scoped connection, so statements issued
	// between Begin and Commit run inside this transaction. The conditional
	// Resolve claims the pending row under its lock: a concurrent accept
	// blocks there and then fails with Conflict, never reaching apply.
	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin accept transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.suggestions.Resolve(ctx, id, models.SuggestionStatusAccepted); err != nil {
		return err
	}
	if err := s.apply(ctx, suggestion); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit accept transaction: %w", err)
	}

	s.logger.Info("suggestion accepted",
		zap.String("suggestion_id", id.String()),
		zap.String("entity_type", suggestion.EntityType))
	return nil
}

func (s *suggestionService) Reject(ctx context.Context, id uuid.UUID) error {
	if err := s.suggestions.Resolve(ctx, id, models.SuggestionStatusRejected); err != nil {
		return err
	}
	s.logger.Info("suggestion rejected", zap.String("suggestion_id", id.String()))
	return nil
}

func (s *suggestionService) apply(ctx context.Context, suggestion *models.Suggestion) error {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(suggestion.EntityData, &data); err != nil {
		return fmt.Errorf("suggestion entity data is malformed: %w", err)
	}

	switch suggestion.EntityType {
	case models.EntityTypeSkill:
		return s.applySkill(ctx, data)
	case models.EntityTypeSkillUpdate:
		return s.applySkillUpdate(ctx, data)
	case models.EntityTypeGoal:
		return s.applyGoal(ctx, data)
	case models.EntityTypeProject:
		return s.applyProject(ctx, data)
	case models.EntityTypeChallenge:
		return s.applyChallenge(ctx, data)
	case models.EntityTypeAchievement:
		return s.applyAchievement(ctx, data)
	case models.EntityTypeProfileUpdate:
		return s.applyProfileUpdate(ctx, data)
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidEntityType, suggestion.EntityType)
	}
}

// candidateName reads the entity's name, tolerating both the "name" and
// "skill_name" spellings the extraction model produces.
func candidateName(data map[string]json.RawMessage) string {
	if name := jsonutil.FlexibleString(data["name"]); name != "" {
		return name
	}
	return jsonutil.FlexibleString(data["skill_name"])
}

func (s *suggestionService) applySkill(ctx context.Context, data map[string]json.RawMessage) error {
	name := candidateName(data)
	if name == "" {
		return fmt.Errorf("%w: skill suggestion has no name", apperrors.ErrInvalidEntityType)
	}
	level := jsonutil.FlexibleInt(data["proficiency_level"], 1)
	return s.skills.Create(ctx, &models.Skill{
		Name:        name,
		Category:    jsonutil.FlexibleString(data["category"]),
		Proficiency: models.ProficiencyFromScale(level),
	})
}

func (s *suggestionService) applySkillUpdate(ctx context.Context, data map[string]json.RawMessage) error {
	name := candidateName(data)
	if name == "" {
		return fmt.Errorf("%w: skill update suggestion has no name", apperrors.ErrInvalidEntityType)
	}
	skill, err := s.skills.GetByName(ctx, name)
	if err != nil {
		return err
	}
	level := jsonutil.FlexibleInt(data["proficiency_level"], 1)
	return s.skills.UpdateProficiency(ctx, skill.ID, models.ProficiencyFromScale(level))
}

func (s *suggestionService) applyGoal(ctx context.Context, data map[string]json.RawMessage) error {
	title := jsonutil.FlexibleString(data["title"])
	if title == "" {
		return fmt.Errorf("%w: goal suggestion has no title", apperrors.ErrInvalidEntityType)
	}
	return s.goals.Create(ctx, &models.Goal{
		Title:       title,
		Description: jsonutil.FlexibleString(data["description"]),
		Category:    jsonutil.FlexibleString(data["category"]),
		Status:      models.GoalStatusActive,
	})
}

func (s *suggestionService) applyProject(ctx context.Context, data map[string]json.RawMessage) error {
	name := candidateName(data)
	if name == "" {
		return fmt.Errorf("%w: project suggestion has no name", apperrors.ErrInvalidEntityType)
	}
	status := jsonutil.FlexibleString(data["status"])
	if status == "" {
		status = models.ProjectStatusActive
	}
	return s.projects.Create(ctx, &models.Project{
		Name:         name,
		Status:       status,
		Notes:        jsonutil.FlexibleString(data["description"]),
		Technologies: jsonutil.FlexibleStringSlice(data["technologies"]),
	})
}

func (s *suggestionService) applyChallenge(ctx context.Context, data map[string]json.RawMessage) error {
	title := jsonutil.FlexibleString(data["title"])
	if title == "" {
		return fmt.Errorf("%w: challenge suggestion has no title", apperrors.ErrInvalidEntityType)
	}
	return s.challenges.Create(ctx, &models.Challenge{
		Title:       title,
		Description: jsonutil.FlexibleString(data["description"]),
		Category:    jsonutil.FlexibleString(data["category"]),
		Status:      models.ChallengeStatusActive,
	})
}

func (s *suggestionService) applyAchievement(ctx context.Context, data map[string]json.RawMessage) error {
	title := jsonutil.FlexibleString(data["title"])
	if title == "" {
		return fmt.Errorf("%w: achievement suggestion has no title", apperrors.ErrInvalidEntityType)
	}
	achievement := &models.Achievement{
		Title:       title,
		Description: jsonutil.FlexibleString(data["description"]),
		Impact:      jsonutil.FlexibleString(data["impact"]),
	}
	if dateStr := jsonutil.FlexibleString(data["date"]); dateStr != "" {
		if t, err := time.Parse("2006-01-02", dateStr); err == nil {
			achievement.AchievedAt = &t
		}
	}
	return s.achievement.Create(ctx, achievement)
}

func (s *suggestionService) applyProfileUpdate(ctx context.Context, data map[string]json.RawMessage) error {
	field := jsonutil.FlexibleString(data["field"])
	value := jsonutil.FlexibleString(data["new_value"])
	if field == "" || value == "" {
		return fmt.Errorf("%w: profile update suggestion is incomplete", apperrors.ErrInvalidEntityType)
	}
	return s.profiles.UpdateField(ctx, field, value)
}
