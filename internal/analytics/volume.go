package analytics

import (
	"math"
	"strings"
	"time"

	"github.com/traintrack/traintrack/internal/workouts"
)

const (
	trendWeeks          = 8
	uncategorizedMuscle = "Uncategorized"
)

type BalanceLabel string

const (
	BalanceBalanced   BalanceLabel = "balanced"
	BalanceSlight     BalanceLabel = "slight"
	BalanceImbalanced BalanceLabel = "imbalanced"
)

type WeekVolume struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

type ThisWeek struct {
	Total    float64            `json:"total"`
	ByMuscle map[string]float64 `json:"byMuscle"`
}

type PushPullBalance struct {
	PushPct int          `json:"pushPct"`
	PullPct int          `json:"pullPct"`
	Status  BalanceLabel `json:"status"`
}

type UpperLowerBalance struct {
	UpperPct int          `json:"upperPct"`
	LowerPct int          `json:"lowerPct"`
	Status   BalanceLabel `json:"status"`
}

type Balance struct {
	PushPull   *PushPullBalance   `json:"pushPull,omitempty"`
	UpperLower *UpperLowerBalance `json:"upperLower,omitempty"`
}

type VolumeReport struct {
	WeeklyTrend []WeekVolume `json:"weeklyTrend"`
	ThisWeek    ThisWeek     `json:"thisWeek"`
	Balance     Balance      `json:"balance"`
}

// fixed muscle taxonomy for the balance splits
var (
	pushMuscles  = muscleSet("chest", "shoulders", "triceps")
	pullMuscles  = muscleSet("back", "biceps")
	upperMuscles = muscleSet("chest", "back", "shoulders", "biceps", "triceps")
	lowerMuscles = muscleSet("legs", "quads", "hamstrings", "glutes", "calves")
)

func muscleSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

// CalculateVolume aggregates training volume over the workout list.
// Callers pass completed workouts only; muscleGroups maps lowercased
// exercise names to muscle group names. now anchors the calendar weeks.
func CalculateVolume(workoutList []workouts.Workout, muscleGroups map[string]string, now time.Time) VolumeReport {
	report := VolumeReport{
		WeeklyTrend: weeklyTrend(workoutList, now),
		ThisWeek: ThisWeek{
			ByMuscle: map[string]float64{},
		},
	}

	thisWeekStart := weekStart(now)
	for i := range workoutList {
		workout := &workoutList[i]
		if workout.Date.Before(thisWeekStart) {
			continue
		}
		for j := range workout.Exercises {
			exercise := &workout.Exercises[j]
			volume := exercise.Volume()
			report.ThisWeek.Total += volume

			group, ok := muscleGroups[strings.ToLower(exercise.Name)]
			if !ok || group == "" {
				group = uncategorizedMuscle
			}
			report.ThisWeek.ByMuscle[group] += volume
		}
	}

	report.Balance = calculateBalance(report.ThisWeek.ByMuscle)
	return report
}

// weeklyTrend buckets workout volume into the trailing 8 calendar weeks,
// oldest first. Weeks without training stay in the list with a zero total.
func weeklyTrend(workoutList []workouts.Workout, now time.Time) []WeekVolume {
	thisWeekStart := weekStart(now)
	windowStart := thisWeekStart.AddDate(0, 0, -7*(trendWeeks-1))

	totals := make(map[time.Time]float64, trendWeeks)
	for i := range workoutList {
		workout := &workoutList[i]
		if workout.Date.Before(windowStart) {
			continue
		}
		totals[weekStart(workout.Date)] += workout.Volume()
	}

	trend := make([]WeekVolume, 0, trendWeeks)
	for week := windowStart; !week.After(thisWeekStart); week = week.AddDate(0, 0, 7) {
		trend = append(trend, WeekVolume{
			Label: week.Format("Jan 2"),
			Total: totals[week],
		})
	}
	return trend
}

// weekStart truncates to the Monday of t's calendar week, midnight UTC.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	mondayOffset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -mondayOffset)
}

func calculateBalance(byMuscle map[string]float64) Balance {
	var balance Balance

	var push, pull, upper, lower float64
	for group, volume := range byMuscle {
		name := strings.ToLower(group)
		if pushMuscles[name] {
			push += volume
		}
		if pullMuscles[name] {
			pull += volume
		}
		if upperMuscles[name] {
			upper += volume
		}
		if lowerMuscles[name] {
			lower += volume
		}
	}

	if push > 0 || pull > 0 {
		pushPct := splitPct(push, pull)
		balance.PushPull = &PushPullBalance{
			PushPct: pushPct,
			PullPct: 100 - pushPct,
			Status:  BalanceStatus(pushPct),
		}
	}
	if upper > 0 || lower > 0 {
		upperPct := splitPct(upper, lower)
		balance.UpperLower = &UpperLowerBalance{
			UpperPct: upperPct,
			LowerPct: 100 - upperPct,
			Status:   BalanceStatus(upperPct),
		}
	}

	return balance
}

// splitPct returns the rounded share of side against its opposite; the
// opposite side's share is the complement, so the two always sum to 100.
func splitPct(side, opposite float64) int {
	return int(math.Round(side / (side + opposite) * 100))
}

// BalanceStatus labels a percentage split for display only.
func BalanceStatus(pct int) BalanceLabel {
	switch {
	case pct >= 45 && pct <= 55:
		return BalanceBalanced
	case pct >= 35 && pct <= 65:
		return BalanceSlight
	default:
		return BalanceImbalanced
	}
}
