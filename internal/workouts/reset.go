package workouts

import (
	"time"

	"github.com/2beens/fitquest/internal/daycycle"
)

// ResetIfNeeded lazily starts a new day cycle for the user. It is pull-based:
// invoked at the start of every read/write operation that cares about
// "today" (login, workout completion, stats fetch), never by a scheduler.
// A user who sleeps through a boundary sees the stale view until their next
// request, which is fine for this domain.
//
// When due, the just-closed day's stats (if non-zero) are upserted into the
// daily history first, then every exercise's progress is zeroed across all
// plans and a fresh DailyStats for the new DayKey is installed.
// Returns true when the state was mutated.
func ResetIfNeeded(state *UserState, resolver *daycycle.Resolver, now time.Time) bool {
	if !resolver.NeedsReset(state.LastDailyReset, now) {
		return false
	}

	today := resolver.Resolve(now)

	if !state.DailyStats.IsZero() && state.DailyStats.Date != "" && state.DailyStats.Date != today {
		state.DailyHistory = UpsertHistory(state.DailyHistory, HistoryEntry{
			Date:               state.DailyStats.Date,
			Calories:           state.DailyStats.Calories,
			ExercisesCompleted: state.DailyStats.ExercisesCompleted,
		})
	}

	for i := range state.Plans {
		for j := range state.Plans[i].Exercises {
			state.Plans[i].Exercises[j].CompletedReps = 0
			state.Plans[i].Exercises[j].Completed = false
		}
	}

	state.DailyStats = DailyStats{
		Date:        today,
		LastResetAt: now,
	}
	state.LastDailyReset = now

	return true
}
