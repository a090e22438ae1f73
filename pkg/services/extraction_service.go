package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cairn-ai/cairn-engine/pkg/llm"
	"github.com/cairn-ai/cairn-engine/pkg/models"
	"github.com/cairn-ai/cairn-engine/pkg/repositories"
	"github.com/cairn-ai/cairn-engine/pkg/retry"
)

// extractionKeys are the arrays the extraction model must return, in prompt
// order. Each maps to a suggestion entity type.
var extractionKeys = []struct {
	key        string
	entityType string
}{
	{"skills", models.EntityTypeSkill},
	{"skill_updates", models.EntityTypeSkillUpdate},
	{"goals", models.EntityTypeGoal},
	{"projects", models.EntityTypeProject},
	{"challenges", models.EntityTypeChallenge},
	{"achievements", models.EntityTypeAchievement},
	{"profile_updates", models.EntityTypeProfileUpdate},
}

const extractionInstructions = `You are an information extraction system for a career coaching app.
Analyze the conversation and extract career entities the user mentioned about themselves.
Only extract facts the user stated, never things the assistant suggested.
Skip anything already present in the existing data snapshot unless the user described a change to it.

Return a JSON object with exactly these keys, each an array (empty if nothing found):
- "skills": [{"name": string, "category": string, "proficiency_level": number 1-5, "context": string}]
- "skill_updates": [{"name": string (must match an existing skill), "proficiency_level": number 1-5, "context": string}]
- "goals": [{"title": string, "description": string, "category": string, "context": string}]
- "projects": [{"name": string, "status": string, "description": string, "context": string}]
- "challenges": [{"title": string, "description": string, "category": string, "context": string}]
- "achievements": [{"title": string, "description": string, "impact": string, "context": string}]
- "profile_updates": [{"field": string (role_title|company|department|years_experience|industry), "new_value": string, "context": string}]

Every "context" value must be a short verbatim quote from the user's messages supporting the extraction.
Respond with the JSON object only.`

// ExtractionService runs the entity-extraction pass over a finished chat turn
// and persists the resulting suggestions for review.
type ExtractionService interface {
	// ExtractAndStore analyzes the turn's messages and stores pending
	// suggestions. It is tolerant of malformed model output: invalid arrays
	// degrade to empty rather than failing the pass.
	ExtractAndStore(ctx context.Context, conversationID uuid.UUID, turn []models.Message) ([]*models.Suggestion, error)
}

type extractionService struct {
	client      llm.ChatClient
	suggestions repositories.SuggestionRepository
	skills      repositories.SkillRepository
	goals       repositories.GoalRepository
	projects    repositories.ProjectRepository
	challenges  repositories.ChallengeRepository
	profiles    repositories.ProfileRepository
	retryCfg    *retry.Config
	logger      *zap.Logger
}

// ExtractionServiceDeps holds the dependencies for NewExtractionService.
type ExtractionServiceDeps struct {
	Client      llm.ChatClient
	Suggestions repositories.SuggestionRepository
	Skills      repositories.SkillRepository
	Goals       repositories.GoalRepository
	Projects    repositories.ProjectRepository
	Challenges  repositories.ChallengeRepository
	Profiles    repositories.ProfileRepository
	Logger      *zap.Logger
}

// NewExtractionService creates an ExtractionService.
func NewExtractionService(deps ExtractionServiceDeps) ExtractionService {
	return &extractionService{
		client:      deps.Client,
		suggestions: deps.Suggestions,
		skills:      deps.Skills,
		goals:       deps.Goals,
		projects:    deps.Projects,
		challenges:  deps.Challenges,
		profiles:    deps.Profiles,
		retryCfg:    retry.DefaultConfig(),
		logger:      deps.Logger.Named("extraction"),
	}
}

var _ ExtractionService = (*extractionService)(nil)

func (s *extractionService) ExtractAndStore(ctx context.Context, conversationID uuid.UUID, turn []models.Message) ([]*models.Suggestion, error) {
	snapshot, err := s.buildSnapshot(ctx)
	if err != nil {
		// The snapshot only helps the model avoid duplicates; extraction
		// still works without it.
		s.logger.Warn("failed to build existing-entity snapshot", zap.Error(err))
		snapshot = "(unavailable)"
	}

	req := &llm.Request{
		System: extractionInstructions,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: "Existing data snapshot:\n" + snapshot + "\n\nConversation:\n" + renderTurn(turn),
		}},
		Temperature: 0.1,
		MaxTokens:   2048,
		JSONMode:    true,
	}

	raw, err := retry.DoWithResult(ctx, s.retryCfg, func() (string, error) {
		text, err := s.client.Complete(ctx, req)
		if err != nil {
			return "", llm.ClassifyError(err)
		}
		return text, nil
	})
	if err != nil {
		return nil, fmt.Errorf("extraction completion failed: %w", err)
	}

	parsed, err := llm.ParseJSONResponse[map[string]json.RawMessage](raw)
	if err != nil {
		// The model sometimes answers in prose instead of JSON. That is
		// not worth failing the turn over: treat it as nothing extracted.
		s.logger.Warn("extraction response is not a JSON object, skipping",
			zap.String("conversation_id", conversationID.String()),
			zap.Error(err))
		return nil, nil
	}

	suggestions := s.collectCandidates(conversationID, parsed)
	if len(suggestions) == 0 {
		return nil, nil
	}

	if err := s.suggestions.CreateBatch(ctx, suggestions); err != nil {
		return nil, fmt.Errorf("failed to store suggestions: %w", err)
	}
	return suggestions, nil
}

// collectCandidates validates each extraction array independently. A missing
// or malformed array is treated as empty so one bad key never discards the
// rest of the response.
func (s *extractionService) collectCandidates(conversationID uuid.UUID, parsed map[string]json.RawMessage) []*models.Suggestion {
	var suggestions []*models.Suggestion
	for _, ek := range extractionKeys {
		raw, ok := parsed[ek.key]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			s.logger.Warn("extraction array is malformed, skipping",
				zap.String("key", ek.key), zap.Error(err))
			continue
		}
		for _, item := range items {
			candidate, ok := s.validateCandidate(ek.key, ek.entityType, item)
			if !ok {
				continue
			}
			candidate.ConversationID = conversationID
			suggestions = append(suggestions, candidate)
		}
	}
	return suggestions
}

// candidateProbe pulls the fields common validation needs out of one
// extracted item.
type candidateProbe struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Field   string `json:"field"`
	Context string `json:"context"`
}

func (s *extractionService) validateCandidate(key, entityType string, item json.RawMessage) (*models.Suggestion, bool) {
	var probe candidateProbe
	if err := json.Unmarshal(item, &probe); err != nil {
		s.logger.Warn("extraction item is malformed, skipping",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}

	identifier := probe.Name
	if identifier == "" {
		identifier = probe.Title
	}
	if identifier == "" {
		identifier = probe.Field
	}
	if strings.TrimSpace(identifier) == "" {
		s.logger.Warn("extraction item has no identifying field, skipping",
			zap.String("key", key))
		return nil, false
	}
	if strings.TrimSpace(probe.Context) == "" {
		s.logger.Warn("extraction item has no supporting quote, skipping",
			zap.String("key", key), zap.String("identifier", identifier))
		return nil, false
	}

	return &models.Suggestion{
		EntityType: entityType,
		EntityData: item,
		Context:    probe.Context,
		Status:     models.SuggestionStatusPending,
	}, true
}

// buildSnapshot summarizes the user's existing entities so the model can skip
// duplicates. Counts are bounded; this is a hint, not a full export.
func (s *extractionService) buildSnapshot(ctx context.Context) (string, error) {
	const snapshotLimit = 30

	var b strings.Builder

	skills, err := s.skills.List(ctx, snapshotLimit)
	if err != nil {
		return "", err
	}
	b.WriteString("Skills:")
	for _, sk := range skills {
		fmt.Fprintf(&b, " %s (%s);", sk.Name, sk.Proficiency)
	}

	goals, err := s.goals.List(ctx, snapshotLimit)
	if err != nil {
		return "", err
	}
	b.WriteString("\nGoals:")
	for _, g := range goals {
		fmt.Fprintf(&b, " %s;", g.Title)
	}

	projects, err := s.projects.List(ctx, snapshotLimit)
	if err != nil {
		return "", err
	}
	b.WriteString("\nProjects:")
	for _, p := range projects {
		fmt.Fprintf(&b, " %s (%s);", p.Name, p.Status)
	}

	challenges, err := s.challenges.List(ctx, snapshotLimit)
	if err != nil {
		return "", err
	}
	b.WriteString("\nChallenges:")
	for _, c := range challenges {
		fmt.Fprintf(&b, " %s;", c.Title)
	}

	profile, err := s.profiles.Get(ctx)
	if err == nil {
		fmt.Fprintf(&b, "\nProfile: role_title=%s company=%s department=%s years_experience=%d industry=%s",
			profile.RoleTitle, profile.Company, profile.Department,
			profile.YearsExperience, profile.Industry)
	}

	return b.String(), nil
}

func renderTurn(turn []models.Message) string {
	var b strings.Builder
	for _, msg := range turn {
		fmt.Fprintf(&b, "[%s] %s\n", msg.Role, msg.Content)
	}
	return b.String()
}
