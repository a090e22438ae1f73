package models

// ConversationStats summarizes a user's conversation history for relevance
// scoring. MentionCounts is reserved for future per-entity frequency tracking
// and is currently always empty.
type ConversationStats struct {
	TotalConversations int            `json:"total_conversations"`
	RecentTitles       []string       `json:"recent_titles"`
	MentionCounts      map[string]int `json:"mention_counts,omitempty"`
}

// EnhancedContext is the bounded, scored context assembled for one chat
// request. Entity slices are already relevance-ranked and truncated to their
// intent-derived limits; it is the sole input to prompt building.
type EnhancedContext struct {
	Profile      *CareerProfile    `json:"profile,omitempty"`
	Skills       []Skill           `json:"skills"`
	Goals        []Goal            `json:"goals"`
	Projects     []Project         `json:"projects"`
	Achievements []Achievement     `json:"achievements"`
	Challenges   []Challenge       `json:"challenges"`
	Coworkers    []Coworker        `json:"coworkers"`
	Interactions []Interaction     `json:"interactions"`
	Decisions    []Decision        `json:"decisions"`
	Stats        ConversationStats `json:"stats"`
	Intent       IntentAnalysis    `json:"intent"`
	Message      string            `json:"message"`
}
