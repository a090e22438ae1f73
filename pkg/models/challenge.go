package models

import (
	"time"

	"github.com/google/uuid"
)

// Challenge status constants.
const (
	ChallengeStatusActive   = "active"
	ChallengeStatusResolved = "resolved"
	ChallengeStatusOngoing  = "ongoing"
)

// Challenge is a career obstacle the user is working through.
type Challenge struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
