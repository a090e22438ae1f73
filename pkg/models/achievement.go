package models

import (
	"time"

	"github.com/google/uuid"
)

// Achievement records a notable career accomplishment.
type Achievement struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Impact      string     `json:"impact,omitempty"`
	AchievedAt  *time.Time `json:"achieved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
