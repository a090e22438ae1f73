package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
	"github.com/cairn-ai/cairn-engine/pkg/models"
)

// stubScoper satisfies UserScoper without touching a database. The returned
// context is the caller's own, which already carries a test scope.
type stubScoper struct {
	err error
}

func (s *stubScoper) WithUserScope(ctx context.Context, _ uuid.UUID) (context.Context, func(), error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return ctx, func() {}, nil
}

type mockSkillRepo struct {
	skills    []*models.Skill
	created   []*models.Skill
	updated   map[uuid.UUID]string
	listErr   error
	createErr error
}

func (m *mockSkillRepo) List(_ context.Context, limit int) ([]*models.Skill, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.skills) > limit {
		return m.skills[:limit], nil
	}
	return m.skills, nil
}

func (m *mockSkillRepo) GetByName(_ context.Context, name string) (*models.Skill, error) {
	for _, s := range m.skills {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockSkillRepo) Create(_ context.Context, skill *models.Skill) error {
	if m.createErr != nil {
		return m.createErr
	}
	if skill.ID == uuid.Nil {
		skill.ID = uuid.New()
	}
	m.created = append(m.created, skill)
	m.skills = append(m.skills, skill)
	return nil
}

func (m *mockSkillRepo) UpdateProficiency(_ context.Context, id uuid.UUID, proficiency string) error {
	for _, s := range m.skills {
		if s.ID == id {
			s.Proficiency = proficiency
			if m.updated == nil {
				m.updated = make(map[uuid.UUID]string)
			}
			m.updated[id] = proficiency
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type mockGoalRepo struct {
	goals   []*models.Goal
	created []*models.Goal
	listErr error
}

func (m *mockGoalRepo) List(_ context.Context, limit int) ([]*models.Goal, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.goals) > limit {
		return m.goals[:limit], nil
	}
	return m.goals, nil
}

func (m *mockGoalRepo) Create(_ context.Context, goal *models.Goal) error {
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	m.created = append(m.created, goal)
	m.goals = append(m.goals, goal)
	return nil
}

type mockProjectRepo struct {
	projects []*models.Project
	created  []*models.Project
	listErr  error
}

func (m *mockProjectRepo) List(_ context.Context, limit int) ([]*models.Project, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.projects) > limit {
		return m.projects[:limit], nil
	}
	return m.projects, nil
}

func (m *mockProjectRepo) Get(_ context.Context, id uuid.UUID) (*models.Project, error) {
	for _, p := range m.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockProjectRepo) Create(_ context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	m.created = append(m.created, project)
	m.projects = append(m.projects, project)
	return nil
}

func (m *mockProjectRepo) UpdateProgress(_ context.Context, id uuid.UUID, status string, completion int) error {
	for _, p := range m.projects {
		if p.ID == id {
			p.Status = status
			p.Completion = completion
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockProjectRepo) FileIssue(_ context.Context, id uuid.UUID, issue models.ProjectIssue) error {
	for _, p := range m.projects {
		if p.ID == id {
			p.Issues = append(p.Issues, issue)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type mockAchievementRepo struct {
	achievements []*models.Achievement
	created      []*models.Achievement
	listErr      error
}

func (m *mockAchievementRepo) List(_ context.Context, limit int) ([]*models.Achievement, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.achievements) > limit {
		return m.achievements[:limit], nil
	}
	return m.achievements, nil
}

func (m *mockAchievementRepo) Create(_ context.Context, achievement *models.Achievement) error {
	if achievement.ID == uuid.Nil {
		achievement.ID = uuid.New()
	}
	m.created = append(m.created, achievement)
	m.achievements = append(m.achievements, achievement)
	return nil
}

type mockChallengeRepo struct {
	challenges []*models.Challenge
	created    []*models.Challenge
	listErr    error
}

func (m *mockChallengeRepo) List(_ context.Context, limit int) ([]*models.Challenge, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.challenges) > limit {
		return m.challenges[:limit], nil
	}
	return m.challenges, nil
}

func (m *mockChallengeRepo) Create(_ context.Context, challenge *models.Challenge) error {
	if challenge.ID == uuid.Nil {
		challenge.ID = uuid.New()
	}
	m.created = append(m.created, challenge)
	m.challenges = append(m.challenges, challenge)
	return nil
}

type mockCoworkerRepo struct {
	coworkers []*models.Coworker
	listErr   error
}

func (m *mockCoworkerRepo) List(_ context.Context, limit int) ([]*models.Coworker, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.coworkers) > limit {
		return m.coworkers[:limit], nil
	}
	return m.coworkers, nil
}

func (m *mockCoworkerRepo) Get(_ context.Context, id uuid.UUID) (*models.Coworker, error) {
	for _, c := range m.coworkers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockCoworkerRepo) Create(_ context.Context, coworker *models.Coworker) error {
	if coworker.ID == uuid.Nil {
		coworker.ID = uuid.New()
	}
	m.coworkers = append(m.coworkers, coworker)
	return nil
}

func (m *mockCoworkerRepo) TouchLastInteraction(_ context.Context, id uuid.UUID, at time.Time) error {
	for _, c := range m.coworkers {
		if c.ID == id {
			c.LastInteractionAt = &at
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type mockInteractionRepo struct {
	interactions []*models.Interaction
	listErr      error
}

func (m *mockInteractionRepo) List(_ context.Context, limit int) ([]*models.Interaction, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.interactions) > limit {
		return m.interactions[:limit], nil
	}
	return m.interactions, nil
}

func (m *mockInteractionRepo) Create(_ context.Context, interaction *models.Interaction) error {
	if interaction.ID == uuid.Nil {
		interaction.ID = uuid.New()
	}
	m.interactions = append(m.interactions, interaction)
	return nil
}

type mockDecisionRepo struct {
	decisions []*models.Decision
	listErr   error
}

func (m *mockDecisionRepo) List(_ context.Context, limit int) ([]*models.Decision, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.decisions) > limit {
		return m.decisions[:limit], nil
	}
	return m.decisions, nil
}

func (m *mockDecisionRepo) Create(_ context.Context, decision *models.Decision) error {
	if decision.ID == uuid.Nil {
		decision.ID = uuid.New()
	}
	m.decisions = append(m.decisions, decision)
	return nil
}

type mockProfileRepo struct {
	profile        *models.CareerProfile
	fieldUpdates   map[string]string
	getErr         error
	updateFieldErr error
}

func (m *mockProfileRepo) Get(_ context.Context) (*models.CareerProfile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.profile == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.profile, nil
}

func (m *mockProfileRepo) Upsert(_ context.Context, profile *models.CareerProfile) error {
	m.profile = profile
	return nil
}

func (m *mockProfileRepo) UpdateField(_ context.Context, field, value string) error {
	if m.updateFieldErr != nil {
		return m.updateFieldErr
	}
	if m.profile == nil {
		return apperrors.ErrNotFound
	}
	if m.fieldUpdates == nil {
		m.fieldUpdates = make(map[string]string)
	}
	m.fieldUpdates[field] = value
	return nil
}

type mockConversationRepo struct {
	conversations []*models.Conversation
	count         int
	titles        []string
	appended      map[uuid.UUID][]models.Message
	listErr       error
	createErr     error
	appendErr     error
}

func (m *mockConversationRepo) Get(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	for _, c := range m.conversations {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockConversationRepo) ListRecent(_ context.Context, limit int) ([]*models.Conversation, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.conversations) > limit {
		return m.conversations[:limit], nil
	}
	return m.conversations, nil
}

func (m *mockConversationRepo) Count(_ context.Context) (int, error) {
	return m.count, nil
}

func (m *mockConversationRepo) RecentTitles(_ context.Context, _ int) ([]string, error) {
	return m.titles, nil
}

func (m *mockConversationRepo) Create(_ context.Context, conversation *models.Conversation) error {
	if m.createErr != nil {
		return m.createErr
	}
	if conversation.ID == uuid.Nil {
		conversation.ID = uuid.New()
	}
	if conversation.Title == "" && len(conversation.Messages) > 0 {
		conversation.Title = models.DeriveTitle(conversation.Messages[0].Content)
	}
	m.conversations = append(m.conversations, conversation)
	return nil
}

func (m *mockConversationRepo) AppendTurn(_ context.Context, id uuid.UUID, userMsg, assistantMsg models.Message) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	if m.appended == nil {
		m.appended = make(map[uuid.UUID][]models.Message)
	}
	m.appended[id] = append(m.appended[id], userMsg, assistantMsg)
	return nil
}

// mockSuggestionRepo mimics the conditional status transition with a mutex so
// lifecycle tests can exercise the claim semantics.
type mockSuggestionRepo struct {
	mu          sync.Mutex
	suggestions map[uuid.UUID]*models.Suggestion
	created     []*models.Suggestion
	createErr   error
}

func newMockSuggestionRepo() *mockSuggestionRepo {
	return &mockSuggestionRepo{suggestions: make(map[uuid.UUID]*models.Suggestion)}
}

func (m *mockSuggestionRepo) Create(_ context.Context, suggestion *models.Suggestion) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if suggestion.ID == uuid.Nil {
		suggestion.ID = uuid.New()
	}
	if suggestion.Status == "" {
		suggestion.Status = models.SuggestionStatusPending
	}
	m.suggestions[suggestion.ID] = suggestion
	m.created = append(m.created, suggestion)
	return nil
}

func (m *mockSuggestionRepo) CreateBatch(ctx context.Context, suggestions []*models.Suggestion) error {
	for _, s := range suggestions {
		if err := m.Create(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockSuggestionRepo) ListByStatus(_ context.Context, status string, _ int) ([]*models.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Suggestion
	for _, s := range m.suggestions {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSuggestionRepo) Get(_ context.Context, id uuid.UUID) (*models.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suggestions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return s, nil
}

func (m *mockSuggestionRepo) Resolve(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suggestions[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if s.Status != models.SuggestionStatusPending {
		return apperrors.ErrConflict
	}
	s.Status = status
	now := time.Now()
	s.ResolvedAt = &now
	return nil
}

// mockAssembler satisfies ContextAssembler with a canned context.
type mockAssembler struct {
	result *models.EnhancedContext
	err    error
}

func (m *mockAssembler) Assemble(_ context.Context, message string) (*models.EnhancedContext, error) {
	if m.err != nil {
		return nil, m.err
	}
	res := m.result
	if res == nil {
		res = &models.EnhancedContext{}
	}
	res.Message = message
	return res, nil
}

// mockExtraction satisfies ExtractionService.
type mockExtraction struct {
	suggestions []*models.Suggestion
	err         error
	calls       int
}

func (m *mockExtraction) ExtractAndStore(_ context.Context, _ uuid.UUID, _ []models.Message) ([]*models.Suggestion, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.suggestions, nil
}
