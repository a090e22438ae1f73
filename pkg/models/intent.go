package models

// IntentCategory identifies a coaching topic that a message can be about.
type IntentCategory string

const (
	IntentSkills        IntentCategory = "skill_development"
	IntentCareerGoals   IntentCategory = "career_goals"
	IntentRelationships IntentCategory = "relationships"
	IntentChallenges    IntentCategory = "challenges"
	IntentDecisions     IntentCategory = "decision_making"
	IntentAchievements  IntentCategory = "achievements"
	IntentGeneral       IntentCategory = "general_coaching"
)

// Priority controls relevance-scoring weights for a data source.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DataSource names a domain table to fetch for context, with a per-source
// item limit.
type DataSource struct {
	Name     string   `json:"name"`
	Priority Priority `json:"priority"`
	Limit    int      `json:"limit"`
}

// Data source name constants, matching the repository each one maps to.
const (
	SourceSkills       = "skills"
	SourceGoals        = "goals"
	SourceProjects     = "projects"
	SourceAchievements = "achievements"
	SourceChallenges   = "challenges"
	SourceCoworkers    = "coworkers"
	SourceInteractions = "interactions"
	SourceDecisions    = "decisions"
)

// IntentAnalysis is the classifier's verdict for one message.
type IntentAnalysis struct {
	Primary     IntentCategory   `json:"primary"`
	Secondary   []IntentCategory `json:"secondary"`
	Confidence  float64          `json:"confidence"`
	Keywords    []string         `json:"keywords"`
	DataSources []DataSource     `json:"data_sources"`
}

// IsRelationshipFocused reports whether the primary intent warrants including
// coworker, interaction, and decision context in the prompt.
func (a *IntentAnalysis) IsRelationshipFocused() bool {
	switch a.Primary {
	case IntentRelationships, IntentDecisions, IntentChallenges:
		return true
	}
	return false
}

// IsAchievementFocused reports whether the primary intent warrants including
// achievement context in the prompt.
func (a *IntentAnalysis) IsAchievementFocused() bool {
	switch a.Primary {
	case IntentAchievements, IntentCareerGoals:
		return true
	}
	return false
}
