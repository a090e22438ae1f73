package models

import (
	"time"

	"github.com/google/uuid"
)

// Decision status constants.
const (
	DecisionStatusPending    = "pending"
	DecisionStatusSuccessful = "successful"
	DecisionStatusFailed     = "failed"
	DecisionStatusOngoing    = "ongoing"
	DecisionStatusCancelled  = "cancelled"
)

// Decision is a recorded career decision with expected vs actual outcome.
type Decision struct {
	ID                uuid.UUID   `json:"id"`
	UserID            uuid.UUID   `json:"user_id"`
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	Date              time.Time   `json:"date"`
	Reasoning         string      `json:"reasoning,omitempty"`
	ExpectedOutcome   string      `json:"expected_outcome,omitempty"`
	ActualOutcome     string      `json:"actual_outcome,omitempty"`
	Status            string      `json:"status"`
	ImpactScore       int         `json:"impact_score"`
	ConfidenceLevel   int         `json:"confidence_level"`
	RelatedCoworkers  []uuid.UUID `json:"related_coworkers,omitempty"`
	RelatedGoals      []uuid.UUID `json:"related_goals,omitempty"`
	RelatedProjects   []uuid.UUID `json:"related_projects,omitempty"`
	Tags              []string    `json:"tags,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
