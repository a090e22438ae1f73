//go:build integration

package services

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
	"github.com/cairn-ai/cairn-engine/pkg/models"
	"github.com/cairn-ai/cairn-engine/pkg/repositories"
	"github.com/cairn-ai/cairn-engine/pkg/testhelpers"
)

func newIntegrationSuggestionService() SuggestionService {
	return NewSuggestionService(SuggestionServiceDeps{
		Suggestions:  repositories.NewSuggestionRepository(),
		Skills:       repositories.NewSkillRepository(),
		Goals:        repositories.NewGoalRepository(),
		Projects:     repositories.NewProjectRepository(),
		Challenges:   repositories.NewChallengeRepository(),
		Achievements: repositories.NewAchievementRepository(),
		Profiles:     repositories.NewProfileRepository(),
		Logger:       zap.NewNop(),
	})
}

func seedPendingSuggestion(t *testing.T, tdb *testhelpers.TestDB, userID uuid.UUID, entityType, entityData string) uuid.UUID {
	t.Helper()

	ctx, cleanup := tdb.ScopedContext(t, userID)
	defer cleanup()

	conversations := repositories.NewConversationRepository()
	conv := &models.Conversation{Messages: []models.Message{
		{Role: models.MessageRoleUser, Content: "seed", Timestamp: time.Now()},
	}}
	require.NoError(t, conversations.Create(ctx, conv))

	s := &models.Suggestion{
		ConversationID: conv.ID,
		EntityType:     entityType,
		EntityData:     json.RawMessage(entityData),
		Context:        "seed quote",
		Status:         models.SuggestionStatusPending,
	}
	require.NoError(t, repositories.NewSuggestionRepository().Create(ctx, s))
	return s.ID
}

func TestAcceptConcurrentlyAppliesExactlyOnce(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	userID := uuid.New()
	svc := newIntegrationSuggestionService()

	id := seedPendingSuggestion(t, tdb, userID, models.EntityTypeSkill,
		`{"skill_name":"Rust","proficiency_level":4}`)

	// Two accepts race on separate connections. The row lock serializes
	// them; the loser sees the accepted status and gets Conflict.
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			ctx, cleanup := tdb.ScopedContext(t, userID)
			defer cleanup()
			errs[slot] = svc.Accept(ctx, id)
		}(i)
	}
	wg.Wait()

	var conflicts, successes int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, apperrors.ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	ctx, cleanup := tdb.ScopedContext(t, userID)
	defer cleanup()
	skills, err := repositories.NewSkillRepository().List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, skills, 1, "the skill is inserted exactly once")
	assert.Equal(t, "Rust", skills[0].Name)
	assert.Equal(t, models.ProficiencyAdvanced, skills[0].Proficiency)
}

func TestAcceptFailedApplyRollsBackToPending(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	userID := uuid.New()
	svc := newIntegrationSuggestionService()

	id := seedPendingSuggestion(t, tdb, userID, models.EntityTypeSkillUpdate,
		`{"name":"Nonexistent","proficiency_level":5}`)

	ctx, cleanup := tdb.ScopedContext(t, userID)
	defer cleanup()

	err := svc.Accept(ctx, id)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := repositories.NewSuggestionRepository().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.SuggestionStatusPending, got.Status, "failed apply leaves the suggestion retryable")
	assert.Nil(t, got.ResolvedAt)
}

func TestAcceptThenRejectConflicts(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	userID := uuid.New()
	svc := newIntegrationSuggestionService()

	id := seedPendingSuggestion(t, tdb, userID, models.EntityTypeGoal,
		`{"title":"Become staff engineer"}`)

	ctx, cleanup := tdb.ScopedContext(t, userID)
	defer cleanup()

	require.NoError(t, svc.Accept(ctx, id))
	assert.ErrorIs(t, svc.Reject(ctx, id), apperrors.ErrConflict)

	goals, err := repositories.NewGoalRepository().List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Become staff engineer", goals[0].Title)
}
