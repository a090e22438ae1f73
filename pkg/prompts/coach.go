// Package prompts renders the assembled context into the system prompt for
// the coaching model. Everything here is a pure function of its inputs.
package prompts

import (
	"fmt"
	"strings"

	"github.com/cairn-ai/cairn-engine/pkg/models"
)

const preamble = `You are an experienced career coach. You help the user reflect on their
career with specific, actionable guidance grounded in the data below. Be
direct and warm. Ask one clarifying question when the situation is ambiguous.
Never invent facts about the user that are not in the provided context.`

const guidelines = `CONVERSATION GUIDELINES:
- Reference the user's actual skills, goals, projects, and relationships by name.
- Prefer one concrete next step over a list of generic options.
- When the user reports progress, acknowledge it before moving on.
- Keep responses under four paragraphs unless the user asks for depth.`

// The three coworker scores are easy to conflate, so the interpretation rule
// is stated explicitly rather than left to the model's own weighting.
const responseFormat = `RESPONSE FORMAT:
- Plain prose, no markdown headers.
- When ranking or assessing relationships, treat relationship_quality as the
  primary signal of relationship health. trust_level and influence_level are
  separate dimensions and must not override relationship_quality.`

// frameworks are the intent-keyed coaching framework blocks. General coaching
// falls back to the GROW model.
var frameworks = map[models.IntentCategory]string{
	models.IntentSkills: `COACHING FRAMEWORK (learning path):
Identify the target skill and its current level, find the gap to the desired
level, and propose one learning activity with a deadline tied to an active
project where possible.`,
	models.IntentCareerGoals: `COACHING FRAMEWORK (SMART goals):
Shape the user's goal to be Specific, Measurable, Achievable, Relevant, and
Time-bound. Connect it to their recent projects and achievements as evidence.`,
	models.IntentRelationships: `COACHING FRAMEWORK (relationship intelligence):
Map who matters for the situation, assess each relationship's health using
relationship_quality first, and suggest one concrete interaction to improve
the weakest link that matters.`,
	models.IntentChallenges: `COACHING FRAMEWORK (problem solving):
Separate the facts from the interpretation, identify what is in the user's
control, and propose the smallest experiment that would produce new
information.`,
	models.IntentDecisions: `COACHING FRAMEWORK (decision analysis):
Lay out the options, the user's stated criteria, and what past decisions with
similar stakes actually produced. Name the reversible option if one exists.`,
	models.IntentAchievements: `COACHING FRAMEWORK (progress review):
Tie recent wins to the user's stated goals, identify which achievements are
under-communicated, and suggest where to make them visible.`,
}

const growFallback = `COACHING FRAMEWORK (GROW):
Goal - what does the user want from this conversation. Reality - what is true
right now, from the context below. Options - two or three realistic moves.
Will - which one the user commits to, and by when.`

// BuildSystemPrompt renders the full system prompt for one chat turn. Entity
// sections appear only when the classified intent warrants them; every list
// is already relevance-ranked and truncated by the assembler.
func BuildSystemPrompt(ctx *models.EnhancedContext) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\n")

	writeProfile(&b, ctx.Profile)
	writeSkills(&b, ctx.Skills)
	writeGoals(&b, ctx.Goals)
	writeProjects(&b, ctx.Projects)

	if ctx.Intent.IsRelationshipFocused() {
		writeCoworkers(&b, ctx.Coworkers)
		writeInteractions(&b, ctx.Interactions)
		writeDecisions(&b, ctx.Decisions)
	}
	if ctx.Intent.IsAchievementFocused() {
		writeAchievements(&b, ctx.Achievements)
	}
	writeChallenges(&b, ctx.Challenges)

	if framework, ok := frameworks[ctx.Intent.Primary]; ok {
		b.WriteString(framework)
	} else {
		b.WriteString(growFallback)
	}
	b.WriteString("\n\n")
	b.WriteString(guidelines)
	b.WriteString("\n\n")
	b.WriteString(responseFormat)
	return b.String()
}

// BuildMemoryBlock renders the conversation-memory analysis as a prompt
// section. Empty memory renders nothing.
func BuildMemoryBlock(mem *models.ConversationMemory) string {
	if mem == nil || mem.ConversationCount == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("CONVERSATION MEMORY:\n")
	fmt.Fprintf(&b, "%s\n", mem.Summary)

	if len(mem.Themes) > 0 {
		b.WriteString("Recurring themes:\n")
		for _, theme := range mem.Themes {
			fmt.Fprintf(&b, "- %s (%d mentions, sentiment %s)\n", theme.Name, theme.Count, theme.Sentiment)
		}
	}
	for _, area := range mem.Progress {
		if area.Status == models.ProgressImproving || area.Status == models.ProgressNew {
			fmt.Fprintf(&b, "Progress in %s: %s\n", area.Area, area.Status)
		}
	}
	if len(mem.OngoingChallenges) > 0 {
		b.WriteString("Unresolved challenges the user has raised:\n")
		for _, challenge := range mem.OngoingChallenges {
			fmt.Fprintf(&b, "- %q\n", challenge)
		}
	}
	return b.String()
}

func writeProfile(b *strings.Builder, profile *models.CareerProfile) {
	if profile == nil {
		b.WriteString("USER PROFILE: not yet filled in.\n\n")
		return
	}
	b.WriteString("USER PROFILE:\n")
	fmt.Fprintf(b, "%s at %s", orUnknown(profile.RoleTitle), orUnknown(profile.Company))
	if profile.Department != "" {
		fmt.Fprintf(b, " (%s)", profile.Department)
	}
	fmt.Fprintf(b, ", %d years of experience", profile.YearsExperience)
	if profile.Industry != "" {
		fmt.Fprintf(b, ", industry: %s", profile.Industry)
	}
	b.WriteString("\n")
	if len(profile.Responsibilities) > 0 {
		fmt.Fprintf(b, "Responsibilities: %s\n", strings.Join(profile.Responsibilities, "; "))
	}
	b.WriteString("\n")
}

func writeSkills(b *strings.Builder, skills []models.Skill) {
	if len(skills) == 0 {
		return
	}
	b.WriteString("SKILLS:\n")
	for _, skill := range skills {
		fmt.Fprintf(b, "- %s (%s", skill.Name, skill.Proficiency)
		if skill.Category != "" {
			fmt.Fprintf(b, ", %s", skill.Category)
		}
		b.WriteString(")\n")
	}
	b.WriteString("\n")
}

func writeGoals(b *strings.Builder, goals []models.Goal) {
	if len(goals) == 0 {
		return
	}
	b.WriteString("GOALS:\n")
	for _, goal := range goals {
		fmt.Fprintf(b, "- %s [%s]", goal.Title, goal.Status)
		if goal.TargetDate != nil {
			fmt.Fprintf(b, " target %s", goal.TargetDate.Format("2006-01-02"))
		}
		if goal.Description != "" {
			fmt.Fprintf(b, ": %s", goal.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeProjects(b *strings.Builder, projects []models.Project) {
	if len(projects) == 0 {
		return
	}
	b.WriteString("PROJECTS:\n")
	for _, project := range projects {
		fmt.Fprintf(b, "- %s [%s, %d%% complete]", project.Name, project.Status, project.Completion)
		if len(project.Technologies) > 0 {
			fmt.Fprintf(b, " tech: %s", strings.Join(project.Technologies, ", "))
		}
		if project.CurrentIssues != "" {
			fmt.Fprintf(b, " issues: %s", project.CurrentIssues)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeCoworkers(b *strings.Builder, coworkers []models.Coworker) {
	if len(coworkers) == 0 {
		return
	}
	b.WriteString("KEY RELATIONSHIPS:\n")
	for _, cw := range coworkers {
		fmt.Fprintf(b, "- %s (%s", cw.Name, orUnknown(cw.Role))
		if cw.Relationship != "" {
			fmt.Fprintf(b, ", %s", cw.Relationship)
		}
		fmt.Fprintf(b, ") relationship_quality=%d trust_level=%d influence_level=%d",
			cw.RelationshipQuality, cw.TrustLevel, cw.InfluenceLevel)
		if cw.CareerImpact != "" {
			fmt.Fprintf(b, " career_impact=%s", cw.CareerImpact)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeInteractions(b *strings.Builder, interactions []models.Interaction) {
	if len(interactions) == 0 {
		return
	}
	b.WriteString("RECENT INTERACTIONS:\n")
	for _, inter := range interactions {
		fmt.Fprintf(b, "- %s %s (%s): %s\n",
			inter.Date.Format("2006-01-02"), inter.Type, inter.Sentiment, inter.Description)
	}
	b.WriteString("\n")
}

func writeDecisions(b *strings.Builder, decisions []models.Decision) {
	if len(decisions) == 0 {
		return
	}
	b.WriteString("PAST DECISIONS:\n")
	for _, dec := range decisions {
		fmt.Fprintf(b, "- %s [%s]", dec.Title, dec.Status)
		if dec.ExpectedOutcome != "" {
			fmt.Fprintf(b, " expected: %s", dec.ExpectedOutcome)
		}
		if dec.ActualOutcome != "" {
			fmt.Fprintf(b, " actual: %s", dec.ActualOutcome)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeAchievements(b *strings.Builder, achievements []models.Achievement) {
	if len(achievements) == 0 {
		return
	}
	b.WriteString("ACHIEVEMENTS:\n")
	for _, ach := range achievements {
		fmt.Fprintf(b, "- %s", ach.Title)
		if ach.Impact != "" {
			fmt.Fprintf(b, " (impact: %s)", ach.Impact)
		}
		if ach.AchievedAt != nil {
			fmt.Fprintf(b, " [%s]", ach.AchievedAt.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeChallenges(b *strings.Builder, challenges []models.Challenge) {
	if len(challenges) == 0 {
		return
	}
	b.WriteString("ACTIVE CHALLENGES:\n")
	for _, ch := range challenges {
		fmt.Fprintf(b, "- %s [%s]", ch.Title, ch.Status)
		if ch.Description != "" {
			fmt.Fprintf(b, ": %s", ch.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
