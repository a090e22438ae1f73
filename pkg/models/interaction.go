package models

import (
	"time"

	"github.com/google/uuid"
)

// Interaction type constants.
const (
	InteractionMeeting       = "meeting"
	InteractionConflict      = "conflict"
	InteractionCollaboration = "collaboration"
	InteractionFeedback      = "feedback"
	InteractionCasual        = "casual"
	InteractionEmail         = "email"
	InteractionChat          = "chat"
	InteractionPhone         = "phone"
)

// Sentiment constants.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Career effect constants for a single interaction.
const (
	InteractionHelped   = "helped"
	InteractionHindered = "hindered"
	InteractionNoEffect = "neutral"
)

// Interaction is one logged exchange with a coworker. Saving one also bumps
// the coworker's denormalized last_interaction_at.
type Interaction struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	CoworkerID   uuid.UUID  `json:"coworker_id"`
	Date         time.Time  `json:"date"`
	Type         string     `json:"type"`
	Sentiment    string     `json:"sentiment,omitempty"`
	CareerEffect string     `json:"career_effect,omitempty"`
	Description  string     `json:"description,omitempty"`
	Outcomes     string     `json:"outcomes,omitempty"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty"`
	GoalID       *uuid.UUID `json:"goal_id,omitempty"`
	ChallengeID  *uuid.UUID `json:"challenge_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
