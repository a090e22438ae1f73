package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cairn-ai/cairn-engine/pkg/models"
)

func baseContext(primary models.IntentCategory) *models.EnhancedContext {
	return &models.EnhancedContext{
		Profile: &models.CareerProfile{
			RoleTitle:       "Senior Engineer",
			Company:         "Acme",
			YearsExperience: 8,
		},
		Skills: []models.Skill{{Name: "Go", Proficiency: models.ProficiencyAdvanced}},
		Goals:  []models.Goal{{Title: "Reach staff level", Status: models.GoalStatusActive}},
		Coworkers: []models.Coworker{
			{Name: "Dana", RelationshipQuality: 3, TrustLevel: 8, InfluenceLevel: 5},
		},
		Achievements: []models.Achievement{{Title: "Shipped the billing rewrite"}},
		Intent:       models.IntentAnalysis{Primary: primary},
	}
}

func TestBuildSystemPromptAlwaysPresentSections(t *testing.T) {
	prompt := BuildSystemPrompt(baseContext(models.IntentGeneral))
	assert.Contains(t, prompt, "USER PROFILE:")
	assert.Contains(t, prompt, "Senior Engineer at Acme")
	assert.Contains(t, prompt, "SKILLS:")
	assert.Contains(t, prompt, "GOALS:")
	assert.Contains(t, prompt, "CONVERSATION GUIDELINES:")
	assert.Contains(t, prompt, "RESPONSE FORMAT:")
}

func TestCoworkerSectionGatedByIntent(t *testing.T) {
	general := BuildSystemPrompt(baseContext(models.IntentGeneral))
	assert.NotContains(t, general, "KEY RELATIONSHIPS:")

	relational := BuildSystemPrompt(baseContext(models.IntentRelationships))
	assert.Contains(t, relational, "KEY RELATIONSHIPS:")
	assert.Contains(t, relational, "Dana")
}

func TestAchievementSectionGatedByIntent(t *testing.T) {
	general := BuildSystemPrompt(baseContext(models.IntentGeneral))
	assert.NotContains(t, general, "ACHIEVEMENTS:")

	goals := BuildSystemPrompt(baseContext(models.IntentCareerGoals))
	assert.Contains(t, goals, "ACHIEVEMENTS:")
	assert.Contains(t, goals, "Shipped the billing rewrite")
}

func TestFrameworkSelection(t *testing.T) {
	tests := []struct {
		primary models.IntentCategory
		marker  string
	}{
		{models.IntentSkills, "learning path"},
		{models.IntentCareerGoals, "SMART goals"},
		{models.IntentRelationships, "relationship intelligence"},
		{models.IntentChallenges, "problem solving"},
		{models.IntentDecisions, "decision analysis"},
		{models.IntentAchievements, "progress review"},
		{models.IntentGeneral, "GROW"},
	}
	for _, tt := range tests {
		t.Run(string(tt.primary), func(t *testing.T) {
			prompt := BuildSystemPrompt(baseContext(tt.primary))
			assert.Contains(t, prompt, tt.marker)
		})
	}
}

func TestRelationshipQualityRuleAlwaysPresent(t *testing.T) {
	// The quality-dominates rule must reach the model even when no coworker
	// section renders: it lives in the fixed response-format block.
	prompt := BuildSystemPrompt(baseContext(models.IntentGeneral))
	assert.Contains(t, prompt, "relationship_quality as the")
	assert.Contains(t, prompt, "must not override relationship_quality")
}

func TestCoworkerScoresRendered(t *testing.T) {
	prompt := BuildSystemPrompt(baseContext(models.IntentRelationships))
	assert.Contains(t, prompt, "relationship_quality=3 trust_level=8 influence_level=5")
}

func TestBuildMemoryBlock(t *testing.T) {
	assert.Empty(t, BuildMemoryBlock(nil))
	assert.Empty(t, BuildMemoryBlock(&models.ConversationMemory{}))

	mem := &models.ConversationMemory{
		ConversationCount: 4,
		Summary:           "Across the last 4 conversations, recurring topics were career growth.",
		Themes: []models.RecurringTheme{
			{Name: "career growth", Count: 3, Sentiment: models.SentimentPositive},
		},
		Progress: []models.ProgressArea{
			{Area: "leadership", Status: models.ProgressImproving, Mentions: 2},
			{Area: "networking", Status: models.ProgressStable},
		},
		OngoingChallenges: []string{"struggling with delegation"},
	}
	block := BuildMemoryBlock(mem)
	assert.True(t, strings.HasPrefix(block, "CONVERSATION MEMORY:"))
	assert.Contains(t, block, "career growth (3 mentions, sentiment positive)")
	assert.Contains(t, block, "Progress in leadership: improving")
	assert.NotContains(t, block, "networking")
	assert.Contains(t, block, `"struggling with delegation"`)
}
