package models

import (
	"time"

	"github.com/google/uuid"
)

// Proficiency level constants. The ordinal scale is canonical; the 1-5 numeric
// scale used by the extraction pipeline is normalized via ProficiencyFromScale
// at the suggestion boundary and never stored.
const (
	ProficiencyBeginner     = "beginner"
	ProficiencyIntermediate = "intermediate"
	ProficiencyAdvanced     = "advanced"
	ProficiencyExpert       = "expert"
)

// Skill is a named skill with an ordinal proficiency level.
type Skill struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Proficiency string    `json:"proficiency"`
	LastUsedAt  time.Time `json:"last_used_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProficiencyFromScale maps the extraction pipeline's 1-5 numeric scale to the
// canonical ordinal level.
func ProficiencyFromScale(level int) string {
	switch {
	case level <= 1:
		return ProficiencyBeginner
	case level <= 2:
		return ProficiencyIntermediate
	case level <= 4:
		return ProficiencyAdvanced
	default:
		return ProficiencyExpert
	}
}
