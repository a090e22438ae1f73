package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
	"github.com/cairn-ai/cairn-engine/pkg/models"
)

func newTestSuggestionService(repo *mockSuggestionRepo, skills *mockSkillRepo, profiles *mockProfileRepo) *suggestionService {
	svc := NewSuggestionService(SuggestionServiceDeps{
		Suggestions:  repo,
		Skills:       skills,
		Goals:        &mockGoalRepo{},
		Projects:     &mockProjectRepo{},
		Challenges:   &mockChallengeRepo{},
		Achievements: &mockAchievementRepo{},
		Profiles:     profiles,
		Logger:       zap.NewNop(),
	})
	return svc.(*suggestionService)
}

func pendingSuggestion(entityType string, data string) *models.Suggestion {
	return &models.Suggestion{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityData: json.RawMessage(data),
		Context:    "said in conversation",
		Status:     models.SuggestionStatusPending,
	}
}

func TestApplySkillMapsNumericProficiency(t *testing.T) {
	skills := &mockSkillRepo{}
	svc := newTestSuggestionService(newMockSuggestionRepo(), skills, &mockProfileRepo{})

	s := pendingSuggestion(models.EntityTypeSkill, `{"skill_name":"Rust","proficiency_level":4}`)
	err := svc.apply(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, skills.created, 1)
	assert.Equal(t, "Rust", skills.created[0].Name)
	assert.Equal(t, models.ProficiencyAdvanced, skills.created[0].Proficiency)
}

func TestApplySkillProficiencyBreakpoints(t *testing.T) {
	tests := []struct {
		level    int
		expected string
	}{
		{1, models.ProficiencyBeginner},
		{2, models.ProficiencyIntermediate},
		{3, models.ProficiencyAdvanced},
		{4, models.ProficiencyAdvanced},
		{5, models.ProficiencyExpert},
	}
	for _, tt := range tests {
		skills := &mockSkillRepo{}
		svc := newTestSuggestionService(newMockSuggestionRepo(), skills, &mockProfileRepo{})

		data, _ := json.Marshal(map[string]any{"name": "Go", "proficiency_level": tt.level})
		err := svc.apply(context.Background(), pendingSuggestion(models.EntityTypeSkill, string(data)))
		require.NoError(t, err)
		require.Len(t, skills.created, 1)
		assert.Equal(t, tt.expected, skills.created[0].Proficiency, "level %d", tt.level)
	}
}

func TestApplySkillUpdateMatchesCaseInsensitively(t *testing.T) {
	existing := &models.Skill{ID: uuid.New(), Name: "Kubernetes", Proficiency: models.ProficiencyBeginner}
	skills := &mockSkillRepo{skills: []*models.Skill{existing}}
	svc := newTestSuggestionService(newMockSuggestionRepo(), skills, &mockProfileRepo{})

	s := pendingSuggestion(models.EntityTypeSkillUpdate, `{"name":"kubernetes","proficiency_level":5}`)
	err := svc.apply(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, models.ProficiencyExpert, skills.updated[existing.ID])
	assert.Empty(t, skills.created, "update must not insert a new skill")
}

func TestApplySkillUpdateUnknownSkillFailsNotFound(t *testing.T) {
	skills := &mockSkillRepo{}
	svc := newTestSuggestionService(newMockSuggestionRepo(), skills, &mockProfileRepo{})

	s := pendingSuggestion(models.EntityTypeSkillUpdate, `{"name":"Haskell","proficiency_level":3}`)
	err := svc.apply(context.Background(), s)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, skills.created)
	assert.Empty(t, skills.updated)
}

func TestApplyProfileUpdate(t *testing.T) {
	profiles := &mockProfileRepo{profile: &models.CareerProfile{RoleTitle: "Engineer"}}
	svc := newTestSuggestionService(newMockSuggestionRepo(), &mockSkillRepo{}, profiles)

	s := pendingSuggestion(models.EntityTypeProfileUpdate, `{"field":"role_title","new_value":"Staff Engineer"}`)
	err := svc.apply(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", profiles.fieldUpdates["role_title"])
}

func TestApplyProfileUpdateWithoutProfileFailsNotFound(t *testing.T) {
	svc := newTestSuggestionService(newMockSuggestionRepo(), &mockSkillRepo{}, &mockProfileRepo{})

	s := pendingSuggestion(models.EntityTypeProfileUpdate, `{"field":"company","new_value":"Acme"}`)
	err := svc.apply(context.Background(), s)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestApplyUnknownEntityTypeRejected(t *testing.T) {
	svc := newTestSuggestionService(newMockSuggestionRepo(), &mockSkillRepo{}, &mockProfileRepo{})

	s := pendingSuggestion("decision", `{"title":"quit"}`)
	err := svc.apply(context.Background(), s)
	assert.ErrorIs(t, err, apperrors.ErrInvalidEntityType)
}

func TestApplyGoalDefaultsToActive(t *testing.T) {
	goals := &mockGoalRepo{}
	svc := NewSuggestionService(SuggestionServiceDeps{
		Suggestions:  newMockSuggestionRepo(),
		Skills:       &mockSkillRepo{},
		Goals:        goals,
		Projects:     &mockProjectRepo{},
		Challenges:   &mockChallengeRepo{},
		Achievements: &mockAchievementRepo{},
		Profiles:     &mockProfileRepo{},
		Logger:       zap.NewNop(),
	}).(*suggestionService)

	s := pendingSuggestion(models.EntityTypeGoal, `{"title":"Become staff engineer","description":"within two years"}`)
	err := svc.apply(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, goals.created, 1)
	assert.Equal(t, models.GoalStatusActive, goals.created[0].Status)
}

func TestApplyProjectCarriesTechnologies(t *testing.T) {
	projects := &mockProjectRepo{}
	svc := NewSuggestionService(SuggestionServiceDeps{
		Suggestions:  newMockSuggestionRepo(),
		Skills:       &mockSkillRepo{},
		Goals:        &mockGoalRepo{},
		Projects:     projects,
		Challenges:   &mockChallengeRepo{},
		Achievements: &mockAchievementRepo{},
		Profiles:     &mockProfileRepo{},
		Logger:       zap.NewNop(),
	}).(*suggestionService)

	s := pendingSuggestion(models.EntityTypeProject,
		`{"name":"Atlas migration","description":"move billing to the new stack","technologies":["Go","Postgres",7]}`)
	err := svc.apply(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, projects.created, 1)
	assert.Equal(t, models.ProjectStatusActive, projects.created[0].Status)
	assert.Equal(t, []string{"Go", "Postgres", "7"}, projects.created[0].Technologies)
}

func TestApplyToleratesStringNumbers(t *testing.T) {
	skills := &mockSkillRepo{}
	svc := newTestSuggestionService(newMockSuggestionRepo(), skills, &mockProfileRepo{})

	s := pendingSuggestion(models.EntityTypeSkill, `{"name":"Terraform","proficiency_level":"5"}`)
	err := svc.apply(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, skills.created, 1)
	assert.Equal(t, models.ProficiencyExpert, skills.created[0].Proficiency)
}

func TestRejectTransitionsOnce(t *testing.T) {
	repo := newMockSuggestionRepo()
	svc := newTestSuggestionService(repo, &mockSkillRepo{}, &mockProfileRepo{})

	s := pendingSuggestion(models.EntityTypeGoal, `{"title":"x"}`)
	require.NoError(t, repo.Create(context.Background(), s))

	require.NoError(t, svc.Reject(context.Background(), s.ID))
	assert.Equal(t, models.SuggestionStatusRejected, s.Status)
	assert.NotNil(t, s.ResolvedAt)

	err := svc.Reject(context.Background(), s.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRejectUnknownSuggestionFailsNotFound(t *testing.T) {
	svc := newTestSuggestionService(newMockSuggestionRepo(), &mockSkillRepo{}, &mockProfileRepo{})
	err := svc.Reject(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListPendingExcludesResolved(t *testing.T) {
	repo := newMockSuggestionRepo()
	svc := newTestSuggestionService(repo, &mockSkillRepo{}, &mockProfileRepo{})

	pending := pendingSuggestion(models.EntityTypeGoal, `{"title":"a"}`)
	resolved := pendingSuggestion(models.EntityTypeGoal, `{"title":"b"}`)
	resolved.Status = models.SuggestionStatusRejected
	require.NoError(t, repo.Create(context.Background(), pending))
	require.NoError(t, repo.Create(context.Background(), resolved))

	got, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pending.ID, got[0].ID)
}
