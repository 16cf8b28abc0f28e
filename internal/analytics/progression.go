package analytics

import (
	"fmt"
	"time"

	"github.com/traintrack/traintrack/internal/templates"
	"github.com/traintrack/traintrack/internal/workouts"
)

type ProgressionStatus string

const (
	StatusReady     ProgressionStatus = "READY"
	StatusMaintain  ProgressionStatus = "MAINTAIN"
	StatusAttention ProgressionStatus = "ATTENTION"
	StatusNoData    ProgressionStatus = "NO_DATA"
)

const (
	defaultRepRange = "8-12"
	weightIncrement = 2.5
	highRPE         = 9.0
	backOffRPE      = 8
)

// ExerciseSession is one past performance of an exercise, already fetched
// and stripped down to what the progression heuristic needs.
type ExerciseSession struct {
	Date time.Time      `json:"date"`
	Sets []workouts.Set `json:"sets"`
}

type Recommendation struct {
	WeightChange *float64 `json:"weightChange,omitempty"`
	RepChange    *int     `json:"repChange,omitempty"`
	TargetRPE    *int     `json:"targetRPE,omitempty"`
}

type Suggestion struct {
	Status         ProgressionStatus `json:"status"`
	Message        string            `json:"message"`
	Recommendation *Recommendation   `json:"recommendation,omitempty"`
}

// ProgressionSuggestion derives a per-exercise recommendation from the
// training history, ordered most-recent-first. Only the most recent
// session decides readiness; the one before it is consulted to tell a
// single bad day from a persistent under-performance. targetRepRange is
// "lo-hi", falling back to 8-12 when absent or malformed.
func ProgressionSuggestion(history []ExerciseSession, targetRepRange string) Suggestion {
	if len(history) == 0 {
		return Suggestion{
			Status:  StatusNoData,
			Message: "No training history for this exercise yet",
		}
	}

	lo, hi, err := templates.ParseRepRange(targetRepRange)
	if err != nil {
		lo, hi, _ = templates.ParseRepRange(defaultRepRange)
	}

	last := history[0]

	// completed sets have both reps and a weight logged; bodyweight or
	// half-logged sets never count toward the target check
	completed := completedSets(last.Sets)

	if len(completed) > 0 && allRepsAtLeast(completed, hi) {
		weightChange := weightIncrement
		return Suggestion{
			Status:  StatusReady,
			Message: fmt.Sprintf("All sets hit the top of the %d-%d range, time to add weight", lo, hi),
			Recommendation: &Recommendation{
				WeightChange: &weightChange,
			},
		}
	}

	if avgRPE, ok := averageRPE(last.Sets); ok && avgRPE >= highRPE {
		weightChange := -weightIncrement
		targetRPE := backOffRPE
		return Suggestion{
			Status:  StatusAttention,
			Message: fmt.Sprintf("Average RPE %.1f is very high, back off the load", avgRPE),
			Recommendation: &Recommendation{
				WeightChange: &weightChange,
				TargetRPE:    &targetRPE,
			},
		}
	}

	if repsPersistentlyBelow(history, lo) {
		weightChange := -weightIncrement
		repChange := lo - maxReps(completed)
		return Suggestion{
			Status:  StatusAttention,
			Message: fmt.Sprintf("Reps keep falling under the bottom of the %d-%d range, reduce the load", lo, hi),
			Recommendation: &Recommendation{
				WeightChange: &weightChange,
				RepChange:    &repChange,
			},
		}
	}

	return Suggestion{
		Status:  StatusMaintain,
		Message: "Keep working at the current load",
	}
}

func completedSets(sets []workouts.Set) []workouts.Set {
	var completed []workouts.Set
	for _, set := range sets {
		if set.Reps > 0 && set.Weight != nil {
			completed = append(completed, set)
		}
	}
	return completed
}

func allRepsAtLeast(sets []workouts.Set, reps int) bool {
	for _, set := range sets {
		if set.Reps < reps {
			return false
		}
	}
	return true
}

// averageRPE is only defined when at least one set carries an RPE; sets
// without one disable the RPE branch, not the rep-range branch.
func averageRPE(sets []workouts.Set) (float64, bool) {
	var sum, count float64
	for _, set := range sets {
		if set.RPE != nil {
			sum += float64(*set.RPE)
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / count, true
}

// repsPersistentlyBelow reports whether every completed set of the two
// most recent sessions fell under the bottom of the target range.
func repsPersistentlyBelow(history []ExerciseSession, lo int) bool {
	sessions := history
	if len(sessions) > 2 {
		sessions = sessions[:2]
	}
	sawCompleted := false
	for _, session := range sessions {
		for _, set := range completedSets(session.Sets) {
			sawCompleted = true
			if set.Reps >= lo {
				return false
			}
		}
	}
	return sawCompleted
}

func maxReps(sets []workouts.Set) int {
	var most int
	for _, set := range sets {
		if set.Reps > most {
			most = set.Reps
		}
	}
	return most
}

// ExerciseSuggestion pairs an exercise name with its progression
// suggestion, the unit the category buckets hold.
type ExerciseSuggestion struct {
	Name string `json:"name"`
	Suggestion
}

type Buckets struct {
	ReadyToProgress []ExerciseSuggestion `json:"readyToProgress"`
	Maintain        []ExerciseSuggestion `json:"maintain"`
	NeedsAttention  []ExerciseSuggestion `json:"needsAttention"`
	NoData          []ExerciseSuggestion `json:"noData"`
}

// Categorize groups suggestions by status. An unknown status is a
// programming error and comes back as one, never silently bucketed.
func Categorize(suggestions []ExerciseSuggestion) (*Buckets, error) {
	buckets := &Buckets{
		ReadyToProgress: []ExerciseSuggestion{},
		Maintain:        []ExerciseSuggestion{},
		NeedsAttention:  []ExerciseSuggestion{},
		NoData:          []ExerciseSuggestion{},
	}
	for _, suggestion := range suggestions {
		switch suggestion.Status {
		case StatusReady:
			buckets.ReadyToProgress = append(buckets.ReadyToProgress, suggestion)
		case StatusMaintain:
			buckets.Maintain = append(buckets.Maintain, suggestion)
		case StatusAttention:
			buckets.NeedsAttention = append(buckets.NeedsAttention, suggestion)
		case StatusNoData:
			buckets.NoData = append(buckets.NoData, suggestion)
		default:
			return nil, fmt.Errorf("unknown progression status %q for %s", suggestion.Status, suggestion.Name)
		}
	}
	return buckets, nil
}
