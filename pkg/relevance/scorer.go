// Package relevance ranks domain records against the current chat message so
// the prompt carries only the most useful slice of the user's history.
package relevance

import (
	"sort"
	"strings"
	"time"

	"github.com/cairn-ai/cairn-engine/pkg/models"
)

// Fields describes how to read scoring inputs from records of one entity
// type. Date and Name are optional; records without a date score a flat
// recency floor, and records without a name get no mention-frequency signal.
type Fields[T any] struct {
	// Date returns the record's recency timestamp, false if it has none.
	Date func(T) (time.Time, bool)
	// Text returns the record's searchable text, concatenated.
	Text func(T) string
	// Name returns the record's key in the conversation mention-count map.
	Name func(T) string
}

// Options carries the per-call scoring inputs.
type Options struct {
	Keywords []string
	Priority models.Priority
	Limit    int
	Stats    models.ConversationStats
	// Now anchors recency scoring; zero means time.Now(). Tests pin it.
	Now time.Time
}

// Scored pairs a record with its composite relevance score.
type Scored[T any] struct {
	Item  T
	Score float64
}

// weights are the sub-score multipliers for one priority level.
type weights struct {
	recency   float64
	frequency float64
	semantic  float64
}

// Low priority favors freshness over topical match: low-priority sources are
// supplementary context, so recent beats relevant.
var priorityWeights = map[models.Priority]weights{
	models.PriorityHigh:   {recency: 0.3, frequency: 0.2, semantic: 0.5},
	models.PriorityMedium: {recency: 0.4, frequency: 0.3, semantic: 0.3},
	models.PriorityLow:    {recency: 0.6, frequency: 0.2, semantic: 0.2},
}

const noDateRecency = 20.0

// ScoreAndRank computes a composite 0-100 score for every record, sorts
// descending, and truncates to opts.Limit. The sort is stable so records with
// equal scores keep their fetch order (typically most-recent-first).
func ScoreAndRank[T any](items []T, message string, fields Fields[T], opts Options) []Scored[T] {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	w, ok := priorityWeights[opts.Priority]
	if !ok {
		w = priorityWeights[models.PriorityMedium]
	}

	scored := make([]Scored[T], len(items))
	for i, item := range items {
		rec := noDateRecency
		if fields.Date != nil {
			if ts, has := fields.Date(item); has {
				rec = recencyScore(now.Sub(ts))
			}
		}

		mentions := 0
		if fields.Name != nil && opts.Stats.MentionCounts != nil {
			mentions = opts.Stats.MentionCounts[strings.ToLower(fields.Name(item))]
		}
		freq := frequencyScore(mentions, opts.Stats.TotalConversations)

		sem := 0.0
		if fields.Text != nil {
			sem = semanticScore(fields.Text(item), message, opts.Keywords)
		}

		scored[i] = Scored[T]{
			Item:  item,
			Score: w.recency*rec + w.frequency*freq + w.semantic*sem,
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	if opts.Limit > 0 && len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}
	return scored
}

// Rank is ScoreAndRank with the scores stripped, for callers that only need
// the ordered records.
func Rank[T any](items []T, message string, fields Fields[T], opts Options) []T {
	scored := ScoreAndRank(items, message, fields, opts)
	out := make([]T, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out
}

// recencyScore maps elapsed time to a fixed step function. Newer is never
// worse than older.
func recencyScore(elapsed time.Duration) float64 {
	days := elapsed.Hours() / 24
	switch {
	case days <= 7:
		return 100
	case days <= 14:
		return 90
	case days <= 30:
		return 75
	case days <= 60:
		return 55
	case days <= 90:
		return 40
	case days <= 180:
		return 25
	default:
		return 10
	}
}

// frequencyScore maps cross-conversation mention frequency to a score. With
// no conversation history there is no signal, so every record gets a neutral
// 50.
func frequencyScore(mentions, totalConversations int) float64 {
	if totalConversations == 0 {
		return 50
	}
	freq := float64(mentions) / float64(totalConversations)
	switch {
	case freq >= 0.5:
		return 100
	case freq >= 0.3:
		return 85
	case freq >= 0.2:
		return 70
	case freq >= 0.1:
		return 55
	case freq >= 0.05:
		return 40
	default:
		score := freq * 400
		if score < 20 {
			return 20
		}
		return score
	}
}

// semanticScore measures keyword and word overlap between a record's text and
// the message. Capped at 100.
func semanticScore(recordText, message string, keywords []string) float64 {
	recordLower := strings.ToLower(recordText)
	messageLower := strings.ToLower(message)

	score := 0.0
	matches := 0

	for _, kw := range keywords {
		if strings.Contains(recordLower, kw) || strings.Contains(messageLower, kw) {
			score += 15
			matches++
		}
	}

	recordWords := wordSet(recordLower)
	for _, word := range strings.Fields(messageLower) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if len(word) > 3 && recordWords[word] {
			score += 5
			matches++
		}
	}

	if matches >= 5 {
		score += 20
	} else if matches >= 3 {
		score += 10
	}

	if score > 100 {
		return 100
	}
	return score
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if word != "" {
			set[word] = true
		}
	}
	return set
}
