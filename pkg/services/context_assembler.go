// Package services contains the business logic between HTTP handlers and
// repositories: context assembly, chat orchestration, entity extraction, and
// suggestion review.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
	"github.com/cairn-ai/cairn-engine/pkg/database"
	"github.com/cairn-ai/cairn-engine/pkg/intent"
	"github.com/cairn-ai/cairn-engine/pkg/models"
	"github.com/cairn-ai/cairn-engine/pkg/relevance"
	"github.com/cairn-ai/cairn-engine/pkg/repositories"
)

// overfetchLimit is how many candidate rows each source fetch pulls before
// relevance ranking truncates to the intent-derived per-source limit.
const overfetchLimit = 50

// recentTitleLimit bounds the conversation-history block fed to the prompt.
const recentTitleLimit = 10

// ContextAssembler builds the bounded, scored context for one chat message.
type ContextAssembler interface {
	Assemble(ctx context.Context, message string) (*models.EnhancedContext, error)
}

// UserScoper hands out user-scoped contexts. Satisfied by
// database.ScopeProvider; tests substitute a stub.
type UserScoper interface {
	WithUserScope(ctx context.Context, userID uuid.UUID) (context.Context, func(), error)
}

type contextAssembler struct {
	skills        repositories.SkillRepository
	goals         repositories.GoalRepository
	projects      repositories.ProjectRepository
	achievements  repositories.AchievementRepository
	challenges    repositories.ChallengeRepository
	coworkers     repositories.CoworkerRepository
	interactions  repositories.InteractionRepository
	decisions     repositories.DecisionRepository
	profiles      repositories.ProfileRepository
	conversations repositories.ConversationRepository
	scopes        UserScoper
	logger        *zap.Logger
}

// ContextAssemblerDeps holds the dependencies for NewContextAssembler.
type ContextAssemblerDeps struct {
	Skills        repositories.SkillRepository
	Goals         repositories.GoalRepository
	Projects      repositories.ProjectRepository
	Achievements  repositories.AchievementRepository
	Challenges    repositories.ChallengeRepository
	Coworkers     repositories.CoworkerRepository
	Interactions  repositories.InteractionRepository
	Decisions     repositories.DecisionRepository
	Profiles      repositories.ProfileRepository
	Conversations repositories.ConversationRepository
	Scopes        UserScoper
	Logger        *zap.Logger
}

// NewContextAssembler creates a ContextAssembler.
func NewContextAssembler(deps ContextAssemblerDeps) ContextAssembler {
	return &contextAssembler{
		skills:        deps.Skills,
		goals:         deps.Goals,
		projects:      deps.Projects,
		achievements:  deps.Achievements,
		challenges:    deps.Challenges,
		coworkers:     deps.Coworkers,
		interactions:  deps.Interactions,
		decisions:     deps.Decisions,
		profiles:      deps.Profiles,
		conversations: deps.Conversations,
		scopes:        deps.Scopes,
		logger:        deps.Logger.Named("context_assembler"),
	}
}

var _ ContextAssembler = (*contextAssembler)(nil)

// Assemble classifies the message, fetches each selected data source in
// parallel, and relevance-ranks every source down to its limit. A failed
// source fetch degrades to an empty slice rather than failing the request;
// only a missing user scope is fatal.
func (a *contextAssembler) Assemble(ctx context.Context, message string) (*models.EnhancedContext, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}
	userID := scope.UserID

	analysis := intent.Classify(message)
	ec := &models.EnhancedContext{
		Intent:       *analysis,
		Message:      message,
		Skills:       []models.Skill{},
		Goals:        []models.Goal{},
		Projects:     []models.Project{},
		Achievements: []models.Achievement{},
		Challenges:   []models.Challenge{},
		Coworkers:    []models.Coworker{},
		Interactions: []models.Interaction{},
		Decisions:    []models.Decision{},
	}

	sources := make(map[string]models.DataSource, len(analysis.DataSources))
	for _, src := range analysis.DataSources {
		sources[src.Name] = src
	}

	warn := func(name string, err error) {
		a.logger.Warn("context source fetch failed, continuing without it",
			zap.String("source", name), zap.Error(err))
	}

	// Profile and conversation stats come first, on the request's own scope:
	// frequency scoring inside the ranked branches needs the totals.
	profile, err := a.profiles.Get(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			warn("profile", err)
		}
	} else {
		ec.Profile = profile
	}
	if count, err := a.conversations.Count(ctx); err != nil {
		warn("conversation_count", err)
	} else {
		ec.Stats.TotalConversations = count
	}
	if titles, err := a.conversations.RecentTitles(ctx, recentTitleLimit); err != nil {
		warn("conversation_titles", err)
	} else {
		ec.Stats.RecentTitles = titles
	}

	now := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	// Each branch gets its own scoped connection; a single pgx connection
	// is not safe for concurrent queries.
	fetch := func(name string, fn func(branchCtx context.Context, src models.DataSource)) {
		src, wanted := sources[name]
		if !wanted {
			return
		}
		g.Go(func() error {
			branchCtx, cleanup, err := a.scopes.WithUserScope(gctx, userID)
			if err != nil {
				a.logger.Warn("context source scope failed, continuing without it",
					zap.String("source", name), zap.Error(err))
				return nil
			}
			defer cleanup()
			fn(branchCtx, src)
			return nil
		})
	}

	rankOpts := func(src models.DataSource) relevance.Options {
		return relevance.Options{
			Keywords: analysis.Keywords,
			Priority: src.Priority,
			Limit:    src.Limit,
			Stats:    ec.Stats,
			Now:      now,
		}
	}

	fetch(models.SourceSkills, func(branchCtx context.Context, src models.DataSource) {
		items, err := a.skills.List(branchCtx, overfetchLimit)
		if err != nil {
			warn(models.SourceSkills, err)
			return
		}
		ec.Skills = deref(relevance.Rank(items, message, skillFields, rankOpts(src)))
	})
	fetch(models.SourceGoals, func(branchCtx context.Context, src models.DataSource) {
		items, err := a.goals.List(branchCtx, overfetchLimit)
		if err != nil {
			warn(models.SourceGoals, err)
			return
		}
		ec.Goals = deref(relevance.Rank(items, message, goalFields, rankOpts(src)))
	})
	fetch(models.SourceProjects, func(branchCtx context.Context, src models.DataSource) {
		items, err := a.projects.List(branchCtx, overfetchLimit)
		if err != nil {
			warn(models.SourceProjects, err)
			return
		}
		ec.Projects = deref(relevance.Rank(items, message, projectFields, rankOpts(src)))
	})
	fetch(models.SourceAchievements, func(branchCtx context.Context, src models.DataSource) {
		items, err := a.achievements.List(branchCtx, overfetchLimit)
		if err != nil {
			warn(models.SourceAchievements, err)
			return
		}
		ec.Achievements = deref(relevance.Rank(items, message, achievementFields, rankOpts(src)))
	})
	fetch(models.SourceChallenges, func(branchCtx context.Context, src models.DataSource) {
		items, err := a.challenges.List(branchCtx, overfetchLimit)
		if err != nil {
			warn(models.SourceChallenges, err)
			return
		}
		ec.Challenges = deref(relevance.Rank(items, message, challengeFields, rankOpts(src)))
	})
	fetch(models.SourceCoworkers, func(branchCtx context.Context, src models.DataSource) {
		items, err := a.coworkers.List(branchCtx, overfetchLimit)
		if err != nil {
			warn(models.SourceCoworkers, err)
			return
		}
		ec.Coworkers = deref(relevance.Rank(items, message, coworkerFields, rankOpts(src)))
	})
	fetch(models.SourceInteractions, func(branchCtx context.Context, src models.DataSource) {
		items, err := a.interactions.List(branchCtx, overfetchLimit)
		if err != nil {
			warn(models.SourceInteractions, err)
			return
		}
		ec.Interactions = deref(relevance.Rank(items, message, interactionFields, rankOpts(src)))
	})
	fetch(models.SourceDecisions, func(branchCtx context.Context, src models.DataSource) {
		items, err := a.decisions.List(branchCtx, overfetchLimit)
		if err != nil {
			warn(models.SourceDecisions, err)
			return
		}
		ec.Decisions = deref(relevance.Rank(items, message, decisionFields, rankOpts(src)))
	})

	// Branches never return errors; Wait is just the join point.
	_ = g.Wait()

	return ec, nil
}

func deref[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}

// Field adapters: how each entity type exposes its date, text, and name to
// the relevance scorer.

var skillFields = relevance.Fields[*models.Skill]{
	Date: func(s *models.Skill) (time.Time, bool) {
		return s.LastUsedAt, !s.LastUsedAt.IsZero()
	},
	Text: func(s *models.Skill) string {
		return s.Name + " " + s.Category
	},
	Name: func(s *models.Skill) string { return s.Name },
}

var goalFields = relevance.Fields[*models.Goal]{
	Date: func(g *models.Goal) (time.Time, bool) {
		return g.UpdatedAt, !g.UpdatedAt.IsZero()
	},
	Text: func(g *models.Goal) string {
		return g.Title + " " + g.Description + " " + g.Category
	},
	Name: func(g *models.Goal) string { return g.Title },
}

var projectFields = relevance.Fields[*models.Project]{
	Date: func(p *models.Project) (time.Time, bool) {
		return p.UpdatedAt, !p.UpdatedAt.IsZero()
	},
	Text: func(p *models.Project) string {
		return p.Name + " " + p.Notes + " " + strings.Join(p.Technologies, " ") + " " + strings.Join(p.Tags, " ")
	},
	Name: func(p *models.Project) string { return p.Name },
}

var achievementFields = relevance.Fields[*models.Achievement]{
	Date: func(a *models.Achievement) (time.Time, bool) {
		if a.AchievedAt == nil {
			return time.Time{}, false
		}
		return *a.AchievedAt, true
	},
	Text: func(a *models.Achievement) string {
		return a.Title + " " + a.Description + " " + a.Impact
	},
	Name: func(a *models.Achievement) string { return a.Title },
}

var challengeFields = relevance.Fields[*models.Challenge]{
	Date: func(c *models.Challenge) (time.Time, bool) {
		return c.UpdatedAt, !c.UpdatedAt.IsZero()
	},
	Text: func(c *models.Challenge) string {
		return c.Title + " " + c.Description + " " + c.Category
	},
	Name: func(c *models.Challenge) string { return c.Title },
}

var coworkerFields = relevance.Fields[*models.Coworker]{
	Date: func(c *models.Coworker) (time.Time, bool) {
		if c.LastInteractionAt == nil {
			return time.Time{}, false
		}
		return *c.LastInteractionAt, true
	},
	Text: func(c *models.Coworker) string {
		return c.Name + " " + c.Role + " " + c.Department + " " + c.Relationship
	},
	Name: func(c *models.Coworker) string { return c.Name },
}

var interactionFields = relevance.Fields[*models.Interaction]{
	Date: func(i *models.Interaction) (time.Time, bool) {
		return i.Date, !i.Date.IsZero()
	},
	Text: func(i *models.Interaction) string {
		return i.Type + " " + i.Description + " " + i.Outcomes
	},
	// Interactions have no stable name for mention counting.
	Name: nil,
}

var decisionFields = relevance.Fields[*models.Decision]{
	Date: func(d *models.Decision) (time.Time, bool) {
		return d.Date, !d.Date.IsZero()
	},
	Text: func(d *models.Decision) string {
		return d.Title + " " + d.Description + " " + d.Reasoning
	},
	Name: func(d *models.Decision) string { return d.Title },
}
