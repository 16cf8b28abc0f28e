package weight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(weight float64, date time.Time) Entry {
	return Entry{Weight: weight, Date: date}
}

func TestGoalProgress_Lose(t *testing.T) {
	goalCreated := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	goal := &Goal{
		TargetWeight: 80,
		GoalType:     GoalLose,
		IsActive:     true,
		CreatedAt:    goalCreated,
	}
	entries := []Entry{
		entry(95, goalCreated.AddDate(0, 0, -30)), // before the goal, ignored as start
		entry(90, goalCreated.AddDate(0, 0, 1)),
		entry(87, goalCreated.AddDate(0, 0, 20)),
		entry(85, goalCreated.AddDate(0, 0, 40)),
	}

	progress := GoalProgress(entries, goal)
	require.NotNil(t, progress)
	require.NotNil(t, progress.StartWeight)
	assert.Equal(t, 90.0, *progress.StartWeight)
	assert.Equal(t, 85.0, *progress.CurrentWeight)
	assert.Equal(t, 5.0, *progress.Remaining)
	// 5 of 10 kg lost
	assert.Equal(t, 50.0, *progress.ProgressPct)
}

func TestGoalProgress_Gain(t *testing.T) {
	goalCreated := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	goal := &Goal{
		TargetWeight: 80,
		GoalType:     GoalGain,
		CreatedAt:    goalCreated,
	}
	entries := []Entry{
		entry(70, goalCreated.AddDate(0, 0, 1)),
		entry(78, goalCreated.AddDate(0, 0, 60)),
	}

	progress := GoalProgress(entries, goal)
	require.NotNil(t, progress)
	assert.Equal(t, 2.0, *progress.Remaining)
	assert.Equal(t, 80.0, *progress.ProgressPct)
}

func TestGoalProgress_Edges(t *testing.T) {
	assert.Nil(t, GoalProgress(nil, nil))

	goal := &Goal{TargetWeight: 80, GoalType: GoalLose, CreatedAt: time.Now()}

	// no entries at all, just the goal comes back
	progress := GoalProgress(nil, goal)
	require.NotNil(t, progress)
	assert.Nil(t, progress.CurrentWeight)
	assert.Nil(t, progress.ProgressPct)

	// moving the wrong way clamps to zero
	progress = GoalProgress([]Entry{
		entry(90, goal.CreatedAt),
		entry(93, goal.CreatedAt.AddDate(0, 0, 10)),
	}, goal)
	assert.Equal(t, 0.0, *progress.ProgressPct)

	// already past the target clamps to one hundred
	progress = GoalProgress([]Entry{
		entry(90, goal.CreatedAt),
		entry(78, goal.CreatedAt.AddDate(0, 0, 10)),
	}, goal)
	assert.Equal(t, 100.0, *progress.ProgressPct)
	assert.Equal(t, 0.0, *progress.Remaining)

	// start equals target
	progress = GoalProgress([]Entry{entry(80, goal.CreatedAt)}, goal)
	assert.Equal(t, 100.0, *progress.ProgressPct)
}

func TestGoalType_Valid(t *testing.T) {
	assert.True(t, GoalLose.Valid())
	assert.True(t, GoalGain.Valid())
	assert.False(t, GoalType("maintain").Valid())
	assert.False(t, GoalType("").Valid())
}
