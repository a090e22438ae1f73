package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Suggestion entity type constants. These are the only values accepted by the
// suggestion pipeline; anything else from the extraction LLM is dropped.
const (
	EntityTypeSkill         = "skill"
	EntityTypeSkillUpdate   = "skill_update"
	EntityTypeGoal          = "goal"
	EntityTypeProject       = "project"
	EntityTypeChallenge     = "challenge"
	EntityTypeAchievement   = "achievement"
	EntityTypeProfileUpdate = "profile_update"
)

// Suggestion status constants. Transitions pending->accepted or
// pending->rejected exactly once; both end states are terminal.
const (
	SuggestionStatusPending  = "pending"
	SuggestionStatusAccepted = "accepted"
	SuggestionStatusRejected = "rejected"
)

// Suggestion is an extracted candidate entity awaiting user review. EntityData
// is a payload whose shape depends on EntityType; Context holds the verbatim
// supporting quote from the conversation.
type Suggestion struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	ConversationID uuid.UUID       `json:"conversation_id"`
	EntityType     string          `json:"entity_type"`
	EntityData     json.RawMessage `json:"entity_data"`
	Context        string          `json:"context"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
}

// AllowedEntityType reports whether t is a valid suggestion entity type.
func AllowedEntityType(t string) bool {
	switch t {
	case EntityTypeSkill, EntityTypeSkillUpdate, EntityTypeGoal, EntityTypeProject,
		EntityTypeChallenge, EntityTypeAchievement, EntityTypeProfileUpdate:
		return true
	}
	return false
}
