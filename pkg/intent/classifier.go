// Package intent maps free-text coaching messages to a fixed taxonomy of
// topics and the data sources worth fetching for each.
package intent

import (
	"strings"

	"github.com/cairn-ai/cairn-engine/pkg/models"
)

// category pairs an intent with its keyword list and prioritized data sources.
// Table order matters: score ties resolve to the earliest entry.
type category struct {
	name     models.IntentCategory
	keywords []string
	sources  []models.DataSource
}

// fallbackConfidence is reported when no keyword matches anywhere.
const fallbackConfidence = 0.5

// maxSecondary caps how many secondary categories are reported.
const maxSecondary = 2

// categories is the static classification table. Loaded once; never mutated.
var categories = []category{
	{
		name: models.IntentSkills,
		keywords: []string{
			"skill", "learn", "learning", "study", "course", "training",
			"certification", "practice", "improve at", "get better", "tutorial",
			"upskill", "technology", "tool",
		},
		sources: []models.DataSource{
			{Name: models.SourceSkills, Priority: models.PriorityHigh, Limit: 8},
			{Name: models.SourceProjects, Priority: models.PriorityMedium, Limit: 4},
			{Name: models.SourceGoals, Priority: models.PriorityMedium, Limit: 3},
		},
	},
	{
		name: models.IntentCareerGoals,
		keywords: []string{
			"goal", "promotion", "promoted", "career", "advance", "advancement",
			"aspiration", "ambition", "next role", "next level", "move up",
			"raise", "title", "grow into", "long term", "long-term",
		},
		sources: []models.DataSource{
			{Name: models.SourceGoals, Priority: models.PriorityHigh, Limit: 6},
			{Name: models.SourceProjects, Priority: models.PriorityHigh, Limit: 4},
			{Name: models.SourceAchievements, Priority: models.PriorityMedium, Limit: 4},
			{Name: models.SourceSkills, Priority: models.PriorityLow, Limit: 4},
		},
	},
	{
		name: models.IntentRelationships,
		keywords: []string{
			"coworker", "colleague", "manager", "boss", "team", "teammate",
			"relationship", "conflict with", "stakeholder", "peer", "mentor",
			"network", "communicate with", "one-on-one", "1:1",
		},
		sources: []models.DataSource{
			{Name: models.SourceCoworkers, Priority: models.PriorityHigh, Limit: 6},
			{Name: models.SourceInteractions, Priority: models.PriorityHigh, Limit: 6},
			{Name: models.SourceChallenges, Priority: models.PriorityMedium, Limit: 3},
		},
	},
	{
		name: models.IntentChallenges,
		keywords: []string{
			"challenge", "problem", "struggle", "struggling", "stuck", "blocked",
			"obstacle", "difficult", "hard time", "overwhelmed", "burnout",
			"frustrated", "failing",
		},
		sources: []models.DataSource{
			{Name: models.SourceChallenges, Priority: models.PriorityHigh, Limit: 6},
			{Name: models.SourceProjects, Priority: models.PriorityMedium, Limit: 4},
			{Name: models.SourceCoworkers, Priority: models.PriorityMedium, Limit: 3},
		},
	},
	{
		name: models.IntentDecisions,
		keywords: []string{
			"decision", "decide", "choose", "choice", "should i", "option",
			"trade-off", "tradeoff", "weigh", "offer", "accept or", "whether to",
		},
		sources: []models.DataSource{
			{Name: models.SourceDecisions, Priority: models.PriorityHigh, Limit: 6},
			{Name: models.SourceGoals, Priority: models.PriorityMedium, Limit: 3},
			{Name: models.SourceCoworkers, Priority: models.PriorityLow, Limit: 3},
		},
	},
	{
		name: models.IntentAchievements,
		keywords: []string{
			"achievement", "accomplished", "accomplishment", "win", "shipped",
			"delivered", "finished", "completed", "proud", "milestone",
			"progress", "recognition",
		},
		sources: []models.DataSource{
			{Name: models.SourceAchievements, Priority: models.PriorityHigh, Limit: 6},
			{Name: models.SourceGoals, Priority: models.PriorityMedium, Limit: 4},
			{Name: models.SourceProjects, Priority: models.PriorityMedium, Limit: 4},
		},
	},
}

// generalSources is the fetch plan for the fallback category: a broad, shallow
// slice of everything that renders in a default prompt.
var generalSources = []models.DataSource{
	{Name: models.SourceGoals, Priority: models.PriorityMedium, Limit: 3},
	{Name: models.SourceSkills, Priority: models.PriorityMedium, Limit: 3},
	{Name: models.SourceProjects, Priority: models.PriorityMedium, Limit: 3},
	{Name: models.SourceChallenges, Priority: models.PriorityLow, Limit: 2},
	{Name: models.SourceAchievements, Priority: models.PriorityLow, Limit: 2},
}

// Classify scores the message against every category and returns the intent
// analysis. It is pure and deterministic: the same message always yields the
// same result.
func Classify(message string) *models.IntentAnalysis {
	lower := strings.ToLower(message)

	scores := make([]int, len(categories))
	var matched []string
	total := 0

	for i, cat := range categories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				scores[i]++
				total++
				matched = append(matched, kw)
			}
		}
	}

	if total == 0 {
		return &models.IntentAnalysis{
			Primary:     models.IntentGeneral,
			Confidence:  fallbackConfidence,
			Keywords:    []string{},
			DataSources: cloneSources(generalSources),
		}
	}

	primaryIdx := 0
	for i := range scores {
		if scores[i] > scores[primaryIdx] {
			primaryIdx = i
		}
	}

	secondary := secondaryCategories(scores, primaryIdx)

	analysis := &models.IntentAnalysis{
		Primary:    categories[primaryIdx].name,
		Confidence: float64(scores[primaryIdx]) / float64(total),
		Keywords:   dedupe(matched),
	}
	for _, s := range secondary {
		analysis.Secondary = append(analysis.Secondary, categories[s].name)
	}
	analysis.DataSources = mergeSources(primaryIdx, secondary)
	return analysis
}

// secondaryCategories returns the indexes of non-primary categories with a
// positive score, descending by score, capped at maxSecondary. The sort is
// stable so equal scores keep table order.
func secondaryCategories(scores []int, primaryIdx int) []int {
	var idxs []int
	for i, s := range scores {
		if i != primaryIdx && s > 0 {
			idxs = append(idxs, i)
		}
	}
	// Insertion sort by score descending; input is tiny and already in table
	// order, which is the tie-break we need to preserve.
	for i := 1; i < len(idxs); i++ {
		for j := i; j > 0 && scores[idxs[j]] > scores[idxs[j-1]]; j-- {
			idxs[j], idxs[j-1] = idxs[j-1], idxs[j]
		}
	}
	if len(idxs) > maxSecondary {
		idxs = idxs[:maxSecondary]
	}
	return idxs
}

// mergeSources builds the final fetch plan: the primary category's sources,
// extended with each secondary category's high-priority sources (demoted to
// medium) so a secondary topic surfaces its most important table without
// crowding out the primary's fetch plan.
func mergeSources(primaryIdx int, secondary []int) []models.DataSource {
	merged := cloneSources(categories[primaryIdx].sources)
	seen := make(map[string]bool, len(merged))
	for _, src := range merged {
		seen[src.Name] = true
	}

	for _, s := range secondary {
		for _, src := range categories[s].sources {
			if src.Priority != models.PriorityHigh || seen[src.Name] {
				continue
			}
			seen[src.Name] = true
			merged = append(merged, models.DataSource{
				Name:     src.Name,
				Priority: models.PriorityMedium,
				Limit:    src.Limit,
			})
		}
	}
	return merged
}

func cloneSources(src []models.DataSource) []models.DataSource {
	out := make([]models.DataSource, len(src))
	copy(out, src)
	return out
}

func dedupe(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if !seen[kw] {
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}
