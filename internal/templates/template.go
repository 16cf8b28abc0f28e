package templates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SessionTemplate is a reusable workout preset. Default templates are
// shipped with the app (no owner) and are visible to everyone but can
// never be changed or deleted.
type SessionTemplate struct {
	ID          int                `json:"id"`
	UserID      *int               `json:"userId,omitempty"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	IsDefault   bool               `json:"isDefault"`
	Exercises   []TemplateExercise `json:"exercises"`
	CreatedAt   time.Time          `json:"createdAt"`
}

type TemplateExercise struct {
	ID             int      `json:"id"`
	TemplateID     int      `json:"templateId"`
	Name           string   `json:"name"`
	TargetRepRange string   `json:"targetRepRange,omitempty"`
	DefaultWeight  *float64 `json:"defaultWeight,omitempty"`
	MuscleGroups   string   `json:"muscleGroups,omitempty"`
	OrderIndex     int      `json:"orderIndex"`
}

// ParseRepRange parses a "lo-hi" target rep range, e.g. "8-12".
func ParseRepRange(repRange string) (lo, hi int, err error) {
	loStr, hiStr, found := strings.Cut(repRange, "-")
	if !found {
		return 0, 0, fmt.Errorf("invalid rep range %q, expected lo-hi", repRange)
	}
	lo, err = strconv.Atoi(strings.TrimSpace(loStr))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid rep range %q: %w", repRange, err)
	}
	hi, err = strconv.Atoi(strings.TrimSpace(hiStr))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid rep range %q: %w", repRange, err)
	}
	if lo <= 0 || hi < lo {
		return 0, 0, fmt.Errorf("invalid rep range %q, want 0 < lo <= hi", repRange)
	}
	return lo, hi, nil
}
