package weight

import (
	"math"
	"time"
)

type GoalType string

const (
	GoalLose GoalType = "lose"
	GoalGain GoalType = "gain"
)

func (g GoalType) Valid() bool {
	return g == GoalLose || g == GoalGain
}

// Entry is one logged body-weight measurement. History is append-only,
// duplicates on the same date are allowed.
type Entry struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Weight    float64   `json:"weight"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

type Goal struct {
	ID           int        `json:"id"`
	UserID       int        `json:"userId"`
	TargetWeight float64    `json:"targetWeight"`
	GoalType     GoalType   `json:"goalType"`
	TargetDate   *time.Time `json:"targetDate,omitempty"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Progress summarizes how far along the active goal is, derived from the
// entry history at read time and never stored.
type Progress struct {
	Goal          *Goal    `json:"goal"`
	StartWeight   *float64 `json:"startWeight,omitempty"`
	CurrentWeight *float64 `json:"currentWeight,omitempty"`
	Remaining     *float64 `json:"remaining,omitempty"`
	ProgressPct   *float64 `json:"progressPct,omitempty"`
}

// GoalProgress computes progress toward goal from the entry history,
// sorted oldest-first. The start weight is the first entry logged at or
// after goal creation, falling back to the earliest entry. Returns a
// progress with only the goal set when there are no entries.
func GoalProgress(entries []Entry, goal *Goal) *Progress {
	if goal == nil {
		return nil
	}
	progress := &Progress{Goal: goal}
	if len(entries) == 0 {
		return progress
	}

	start := entries[0]
	for _, entry := range entries {
		if !entry.Date.Before(goal.CreatedAt) {
			start = entry
			break
		}
	}
	current := entries[len(entries)-1]

	startWeight := start.Weight
	currentWeight := current.Weight
	progress.StartWeight = &startWeight
	progress.CurrentWeight = &currentWeight

	remaining := currentWeight - goal.TargetWeight
	if goal.GoalType == GoalGain {
		remaining = goal.TargetWeight - currentWeight
	}
	if remaining < 0 {
		remaining = 0
	}
	progress.Remaining = &remaining

	totalChange := math.Abs(startWeight - goal.TargetWeight)
	if totalChange == 0 {
		pct := 100.0
		progress.ProgressPct = &pct
		return progress
	}

	achieved := startWeight - currentWeight
	if goal.GoalType == GoalGain {
		achieved = currentWeight - startWeight
	}
	pct := math.Round(achieved / totalChange * 100)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	progress.ProgressPct = &pct

	return progress
}
