package workouts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fitquest/internal/daycycle"
	"github.com/2beens/fitquest/internal/plans"
)

func TestResetIfNeeded(t *testing.T) {
	resolver := daycycle.NewResolver(4)

	state := NewUserState()
	state.LastDailyReset = time.Date(2025, 3, 9, 10, 0, 0, 0, time.Local)
	state.DailyStats = DailyStats{
		Date:               "2025-03-09",
		Calories:           33.5,
		ExercisesCompleted: 12,
		WorkoutsCount:      2,
	}
	state.Plans[0].Exercises[0].CompletedReps = 10
	state.Plans[0].Exercises[0].Completed = true

	// next morning, past the 04:00 boundary
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	require.True(t, ResetIfNeeded(state, resolver, now))

	// the closed day moved into history
	require.Len(t, state.DailyHistory, 1)
	assert.Equal(t, daycycle.DayKey("2025-03-09"), state.DailyHistory[0].Date)
	assert.InDelta(t, 33.5, state.DailyHistory[0].Calories, 0.001)
	assert.Equal(t, 12, state.DailyHistory[0].ExercisesCompleted)

	// progress zeroed, fresh stats for the new day
	assert.Equal(t, 0, state.Plans[0].Exercises[0].CompletedReps)
	assert.False(t, state.Plans[0].Exercises[0].Completed)
	assert.Equal(t, daycycle.DayKey("2025-03-10"), state.DailyStats.Date)
	assert.Zero(t, state.DailyStats.Calories)
	assert.Equal(t, now, state.LastDailyReset)

	// same cycle, nothing more to do
	assert.False(t, ResetIfNeeded(state, resolver, now.Add(2*time.Hour)))
}

func TestResetIfNeeded_BeforeBoundary(t *testing.T) {
	resolver := daycycle.NewResolver(4)

	state := NewUserState()
	state.LastDailyReset = time.Date(2025, 3, 9, 22, 0, 0, 0, time.Local)

	// 02:30 still belongs to the evening before
	now := time.Date(2025, 3, 10, 2, 30, 0, 0, time.Local)
	assert.False(t, ResetIfNeeded(state, resolver, now))

	// 04:01 crosses into the new cycle
	now = time.Date(2025, 3, 10, 4, 1, 0, 0, time.Local)
	assert.True(t, ResetIfNeeded(state, resolver, now))
}

func TestResetIfNeeded_OverrideBlocks(t *testing.T) {
	resolver := daycycle.NewResolver(4)
	resolver.SetOverride("2025-06-01")

	state := NewUserState()
	state.LastDailyReset = time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local)

	// simulated days never trigger the reset, however stale lastReset is
	now := time.Date(2025, 3, 20, 10, 0, 0, 0, time.Local)
	assert.False(t, ResetIfNeeded(state, resolver, now))
}

func TestResetIfNeeded_EmptyDayNotArchived(t *testing.T) {
	resolver := daycycle.NewResolver(4)

	state := NewUserState()
	state.LastDailyReset = time.Date(2025, 3, 9, 10, 0, 0, 0, time.Local)
	state.DailyStats = DailyStats{Date: "2025-03-09"}

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	require.True(t, ResetIfNeeded(state, resolver, now))
	assert.Empty(t, state.DailyHistory)
}

func TestNewUserState(t *testing.T) {
	state := NewUserState()
	assert.Equal(t, len(plans.DefaultCatalog()), len(state.Plans))
	assert.NotNil(t, state.DateWorkoutData)
	assert.Zero(t, state.Coins)
	assert.Zero(t, state.Streak)
}
