package workouts

import (
	"encoding/json"
	"fmt"
	"time"
)

type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusDraft     Status = "DRAFT"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusDraft, StatusCancelled:
		return true
	}
	return false
}

// Set is one performed set of an exercise. Weight and RPE stay optional
// pointers so a bodyweight set or a set logged without effort rating
// round-trips as logged.
type Set struct {
	Reps   int      `json:"reps"`
	Weight *float64 `json:"weight,omitempty"`
	RPE    *int     `json:"rpe,omitempty"`
}

// Volume is the mechanical work proxy weight*reps, 0 for bodyweight sets.
func (s Set) Volume() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight * float64(s.Reps)
}

type Exercise struct {
	ID          int    `json:"id"`
	WorkoutID   int    `json:"workoutId"`
	Name        string `json:"name"`
	Sets        []Set  `json:"sets"`
	RestSeconds *int   `json:"restSeconds,omitempty"`
	Notes       string `json:"notes,omitempty"`
	OrderIndex  int    `json:"orderIndex"`
}

func (e *Exercise) Volume() float64 {
	var total float64
	for _, set := range e.Sets {
		total += set.Volume()
	}
	return total
}

type Workout struct {
	ID              int        `json:"id"`
	UserID          int        `json:"userId"`
	Title           string     `json:"title"`
	Date            time.Time  `json:"date"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Status          Status     `json:"status"`
	Exercises       []Exercise `json:"exercises"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func (w *Workout) Volume() float64 {
	var total float64
	for i := range w.Exercises {
		total += w.Exercises[i].Volume()
	}
	return total
}

func marshalSets(sets []Set) ([]byte, error) {
	if sets == nil {
		sets = []Set{}
	}
	setsJson, err := json.Marshal(sets)
	if err != nil {
		return nil, fmt.Errorf("marshal sets: %w", err)
	}
	return setsJson, nil
}

// unmarshalSets degrades corrupted stored sets to an empty list instead of
// failing the whole read.
func unmarshalSets(raw []byte) []Set {
	if len(raw) == 0 {
		return []Set{}
	}
	var sets []Set
	if err := json.Unmarshal(raw, &sets); err != nil {
		return []Set{}
	}
	if sets == nil {
		return []Set{}
	}
	return sets
}
