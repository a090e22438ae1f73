// Package memory derives cross-conversation continuity signals (recurring
// themes, progress, unresolved challenges) from recent chat history. Nothing
// is persisted; the analysis is recomputed per request, which is cheap at
// this data scale.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jinzhu/inflection"

	"github.com/cairn-ai/cairn-engine/pkg/models"
)

// MaxConversations bounds how much history one analysis reads.
const MaxConversations = 20

// challengeConversations bounds how far back challenge snippets are pulled.
const challengeConversations = 10

const (
	maxChallenges       = 5
	minThemeCount       = 2
	snippetRadius       = 80
	progressWindow      = 30 * 24 * time.Hour
	sentimentLeanFactor = 1.5
)

// themeKeywords maps each of the ten tracked career topics to the phrases
// that signal it. One hit per message per theme.
var themeKeywords = map[string][]string{
	"career growth":      {"promotion", "career", "advance", "next level", "move up"},
	"skill development":  {"learn", "skill", "course", "training", "practice"},
	"work relationships": {"manager", "coworker", "colleague", "team", "boss"},
	"workload":           {"workload", "busy", "overtime", "too much", "bandwidth"},
	"recognition":        {"recognition", "credit", "visibility", "noticed", "appreciated"},
	"compensation":       {"salary", "raise", "compensation", "pay", "equity"},
	"leadership":         {"lead", "leadership", "mentor", "delegate", "ownership"},
	"work-life balance":  {"balance", "burnout", "vacation", "family", "stress"},
	"job change":         {"interview", "job search", "offer", "leave", "new job"},
	"confidence":         {"confidence", "imposter", "doubt", "anxious", "nervous"},
}

// themeOrder fixes iteration order so output is deterministic.
var themeOrder = []string{
	"career growth", "skill development", "work relationships", "workload",
	"recognition", "compensation", "leadership", "work-life balance",
	"job change", "confidence",
}

var positiveKeywords = []string{
	"great", "excited", "happy", "proud", "progress", "improved", "won",
	"good", "success", "confident",
}

var negativeKeywords = []string{
	"frustrated", "worried", "stuck", "difficult", "stressed", "failed",
	"upset", "bad", "angry", "overwhelmed",
}

// progressAreas are the fixed growth areas and their evidence phrases.
var progressAreas = []struct {
	area     string
	evidence []string
}{
	{"technical skills", []string{"learned", "finished the course", "certification", "new skill", "studied"}},
	{"leadership", []string{"led the", "mentored", "delegated", "ran the meeting", "took ownership"}},
	{"communication", []string{"presented", "gave feedback", "spoke up", "wrote up", "shared with the team"}},
	{"visibility", []string{"demoed", "recognized", "shout-out", "praised", "presented to leadership"}},
	{"networking", []string{"met with", "reached out", "coffee chat", "connected with", "introduced"}},
}

// challengeIndicators are the phrases that flag an unresolved difficulty in a
// user message.
var challengeIndicators = []string{
	"struggling with", "having trouble", "can't figure out", "stuck on",
	"worried about", "frustrated by", "don't know how",
}

// Analyze scans recent conversations (most recently updated first) and
// returns the continuity summary. It is independent of the current message.
func Analyze(conversations []*models.Conversation, now time.Time) *models.ConversationMemory {
	if len(conversations) > MaxConversations {
		conversations = conversations[:MaxConversations]
	}

	mem := &models.ConversationMemory{
		ConversationCount: len(conversations),
		Themes:            detectThemes(conversations),
		Progress:          detectProgress(conversations, now),
		OngoingChallenges: extractChallenges(conversations),
	}
	mem.Summary = summarize(mem)
	return mem
}

func detectThemes(conversations []*models.Conversation) []models.RecurringTheme {
	counts := make(map[string]int)
	positives := make(map[string]int)
	negatives := make(map[string]int)

	for _, conv := range conversations {
		for _, msg := range conv.Messages {
			lower := strings.ToLower(msg.Content)
			for _, theme := range themeOrder {
				if !containsAny(lower, themeKeywords[theme]) {
					continue
				}
				counts[theme]++
				for _, kw := range positiveKeywords {
					if strings.Contains(lower, kw) {
						positives[theme]++
					}
				}
				for _, kw := range negativeKeywords {
					if strings.Contains(lower, kw) {
						negatives[theme]++
					}
				}
			}
		}
	}

	var themes []models.RecurringTheme
	for _, theme := range themeOrder {
		if counts[theme] < minThemeCount {
			continue
		}
		themes = append(themes, models.RecurringTheme{
			Name:      theme,
			Count:     counts[theme],
			Sentiment: themeSentiment(positives[theme], negatives[theme]),
		})
	}
	sort.SliceStable(themes, func(a, b int) bool {
		return themes[a].Count > themes[b].Count
	})
	return themes
}

func themeSentiment(positive, negative int) string {
	switch {
	case float64(positive) > sentimentLeanFactor*float64(negative) && positive > 0:
		return models.SentimentPositive
	case float64(negative) > sentimentLeanFactor*float64(positive) && negative > 0:
		return models.SentimentNegative
	case positive > 0 && negative > 0:
		return models.SentimentMixed
	default:
		return models.SentimentNeutral
	}
}

func detectProgress(conversations []*models.Conversation, now time.Time) []models.ProgressArea {
	type tally struct {
		total  int
		recent int
	}
	tallies := make([]tally, len(progressAreas))

	for _, conv := range conversations {
		for _, msg := range conv.Messages {
			lower := strings.ToLower(msg.Content)
			for i, area := range progressAreas {
				if !containsAny(lower, area.evidence) {
					continue
				}
				tallies[i].total++
				if now.Sub(msg.Timestamp) <= progressWindow {
					tallies[i].recent++
				}
			}
		}
	}

	areas := make([]models.ProgressArea, len(progressAreas))
	for i, area := range progressAreas {
		status := models.ProgressStable
		switch {
		case tallies[i].recent >= 2:
			status = models.ProgressImproving
		case tallies[i].total == 1:
			status = models.ProgressNew
		}
		areas[i] = models.ProgressArea{
			Area:     area.area,
			Status:   status,
			Mentions: tallies[i].total,
		}
	}
	return areas
}

// extractChallenges pulls short snippets around challenge phrases from user
// messages in the most recent conversations.
func extractChallenges(conversations []*models.Conversation) []string {
	if len(conversations) > challengeConversations {
		conversations = conversations[:challengeConversations]
	}

	var snippets []string
	for _, conv := range conversations {
		for _, msg := range conv.Messages {
			if msg.Role != models.MessageRoleUser {
				continue
			}
			lower := strings.ToLower(msg.Content)
			for _, indicator := range challengeIndicators {
				idx := strings.Index(lower, indicator)
				if idx < 0 {
					continue
				}
				// Lowercasing can change byte offsets, so carry the
				// match position over as a rune index.
				runeIdx := utf8.RuneCountInString(lower[:idx])
				snippets = append(snippets, snippetAround(msg.Content, runeIdx))
				if len(snippets) >= maxChallenges {
					return snippets
				}
				break // one snippet per message
			}
		}
	}
	return snippets
}

// snippetAround extracts the text surrounding the rune at idx, measuring in
// runes so multi-byte characters are never split.
func snippetAround(content string, idx int) string {
	runes := []rune(content)
	start := idx - snippetRadius/4
	if start < 0 {
		start = 0
	}
	end := idx + snippetRadius
	if end > len(runes) {
		end = len(runes)
	}
	snippet := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}

func summarize(mem *models.ConversationMemory) string {
	if mem.ConversationCount == 0 {
		return "No prior conversations."
	}

	noun := "conversation"
	if mem.ConversationCount != 1 {
		noun = inflection.Plural(noun)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Across the last %d %s", mem.ConversationCount, noun)

	if len(mem.Themes) > 0 {
		top := mem.Themes
		if len(top) > 3 {
			top = top[:3]
		}
		names := make([]string, len(top))
		for i, theme := range top {
			names[i] = theme.Name
		}
		fmt.Fprintf(&b, ", recurring topics were %s", strings.Join(names, ", "))
	}

	var improving []string
	for _, area := range mem.Progress {
		if area.Status == models.ProgressImproving {
			improving = append(improving, area.Area)
		}
	}
	if len(improving) > 0 {
		fmt.Fprintf(&b, "; visible progress in %s", strings.Join(improving, ", "))
	}
	b.WriteString(".")
	return b.String()
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
