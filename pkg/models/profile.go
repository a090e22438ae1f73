package models

import (
	"time"

	"github.com/google/uuid"
)

// CareerProfile is the singleton per-user career profile. Edits replace the
// whole row rather than patching individual fields.
type CareerProfile struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	RoleTitle        string    `json:"role_title"`
	Company          string    `json:"company"`
	Department       string    `json:"department"`
	YearsExperience  int       `json:"years_experience"`
	Industry         string    `json:"industry"`
	Responsibilities []string  `json:"responsibilities"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Profile fields that a profile_update suggestion may target.
const (
	ProfileFieldRoleTitle       = "role_title"
	ProfileFieldCompany         = "company"
	ProfileFieldDepartment      = "department"
	ProfileFieldYearsExperience = "years_experience"
	ProfileFieldIndustry        = "industry"
)
