package models

import (
	"time"

	"github.com/google/uuid"
)

// Seniority level constants.
const (
	SeniorityJunior    = "junior"
	SeniorityMid       = "mid"
	SenioritySenior    = "senior"
	SeniorityStaff     = "staff"
	SeniorityPrincipal = "principal"
	SeniorityManager   = "manager"
	SeniorityDirector  = "director"
	SeniorityExecutive = "executive"
)

// Career impact constants, shared by coworkers and interactions.
const (
	CareerImpactPositive = "positive"
	CareerImpactNegative = "negative"
	CareerImpactNeutral  = "neutral"
)

// Coworker is a workplace relationship with three independent 1-10 scores.
// RelationshipQuality is the primary signal of relationship health; trust and
// influence are deliberately separate dimensions.
type Coworker struct {
	ID                   uuid.UUID      `json:"id"`
	UserID               uuid.UUID      `json:"user_id"`
	Name                 string         `json:"name"`
	Role                 string         `json:"role,omitempty"`
	Department           string         `json:"department,omitempty"`
	SeniorityLevel       string         `json:"seniority_level,omitempty"`
	Relationship         string         `json:"relationship,omitempty"`
	CommunicationStyle   string         `json:"communication_style,omitempty"`
	InfluenceLevel       int            `json:"influence_level"`
	RelationshipQuality  int            `json:"relationship_quality"`
	TrustLevel           int            `json:"trust_level"`
	CareerImpact         string         `json:"career_impact,omitempty"`
	InteractionFrequency string         `json:"interaction_frequency,omitempty"`
	LastInteractionAt    *time.Time     `json:"last_interaction_at,omitempty"`
	Traits               map[string]any `json:"traits,omitempty"` // personality, working style, notes
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}
