package models

// Theme progress/sentiment constants used by the conversation memory analyzer.
const (
	SentimentMixed = "mixed"

	ProgressImproving = "improving"
	ProgressNew       = "new"
	ProgressStable    = "stable"
)

// RecurringTheme is a career topic that keeps coming up across conversations.
type RecurringTheme struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Sentiment string `json:"sentiment"`
}

// ProgressArea is one of the fixed growth areas with a detected trajectory.
type ProgressArea struct {
	Area     string `json:"area"`
	Status   string `json:"status"` // improving, new, or stable
	Mentions int    `json:"mentions"`
}

// ConversationMemory is the cross-conversation continuity summary computed
// fresh per request from recent history.
type ConversationMemory struct {
	ConversationCount int              `json:"conversation_count"`
	Themes            []RecurringTheme `json:"themes"`
	Progress          []ProgressArea   `json:"progress"`
	OngoingChallenges []string         `json:"ongoing_challenges"`
	Summary           string           `json:"summary"`
}
