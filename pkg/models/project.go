package models

import (
	"time"

	"github.com/google/uuid"
)

// Project status constants.
const (
	ProjectStatusActive    = "active"
	ProjectStatusOngoing   = "ongoing"
	ProjectStatusCompleted = "completed"
	ProjectStatusOnHold    = "on-hold"
	ProjectStatusCancelled = "cancelled"
)

// Project is a work project with child collections for milestones, tasks,
// issues, and an append-only update log.
type Project struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority,omitempty"`
	Category      string     `json:"category,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Completion    int        `json:"completion"` // percent, 0-100
	Technologies  []string   `json:"technologies,omitempty"`
	TeamMembers   []string   `json:"team_members,omitempty"`
	Stakeholders  []string   `json:"stakeholders,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Risks         []string   `json:"risks,omitempty"`
	Dependencies  []string   `json:"dependencies,omitempty"`
	Deliverables  []string   `json:"deliverables,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CurrentIssues string     `json:"current_issues,omitempty"`
	Archived      bool       `json:"archived"`

	Milestones []ProjectMilestone `json:"milestones,omitempty"`
	Tasks      []ProjectTask      `json:"tasks,omitempty"`
	Issues     []ProjectIssue     `json:"issues,omitempty"`
	Updates    []ProjectUpdate    `json:"updates,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectMilestone is a dated checkpoint within a project.
type ProjectMilestone struct {
	Title   string     `json:"title"`
	DueDate *time.Time `json:"due_date,omitempty"`
	Done    bool       `json:"done"`
}

// ProjectTask is a unit of work within a project.
type ProjectTask struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

// ProjectIssue is a problem logged against a project.
type ProjectIssue struct {
	Title    string    `json:"title"`
	Severity string    `json:"severity,omitempty"`
	Resolved bool      `json:"resolved"`
	FiledAt  time.Time `json:"filed_at"`
}

// ProjectUpdate is one entry in a project's append-only audit log. A record is
// written whenever status or completion changes, or an issue is filed.
type ProjectUpdate struct {
	At         time.Time `json:"at"`
	Kind       string    `json:"kind"` // "status", "progress", or "issue"
	OldValue   string    `json:"old_value,omitempty"`
	NewValue   string    `json:"new_value,omitempty"`
	IssueTitle string    `json:"issue_title,omitempty"`
}

// Update kinds for the project audit log.
const (
	ProjectUpdateStatus   = "status"
	ProjectUpdateProgress = "progress"
	ProjectUpdateIssue    = "issue"
)
