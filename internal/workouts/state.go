package workouts

import (
	"errors"
	"math"
	"time"

	"github.com/2beens/fitquest/internal/daycycle"
	"github.com/2beens/fitquest/internal/plans"
)

var (
	ErrAlreadyCompleted  = errors.New("exercise already completed today")
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrUserStateNotFound = errors.New("user state not found")
	ErrWorkoutNotFound   = errors.New("workout not found")
	ErrVersionConflict   = errors.New("user state version conflict")
	ErrValidation        = errors.New("invalid request")
)

// minWorkoutReward is the floor of the per-call coin reward.
const minWorkoutReward = 5

// DailyStats is the mutable running total for the current day cycle only.
type DailyStats struct {
	Date               daycycle.DayKey `json:"date"`
	Calories           float64         `json:"calories"`
	ExercisesCompleted int             `json:"exercisesCompleted"`
	WorkoutsCount      int             `json:"workoutsCount"`
	LastResetAt        time.Time       `json:"lastResetAt"`
}

func (s DailyStats) IsZero() bool {
	return s.Calories == 0 && s.ExercisesCompleted == 0 && s.WorkoutsCount == 0
}

// HistoryEntry is the immutable-once-written snapshot of one closed day.
// Entries are unique per date.
type HistoryEntry struct {
	Date               daycycle.DayKey `json:"date"`
	Calories           float64         `json:"calories"`
	ExercisesCompleted int             `json:"exercisesCompleted"`
}

// WorkoutRecord is one completed workout call, kept for history queries and
// for reversing its contribution on delete.
type WorkoutRecord struct {
	ID              string           `json:"id"`
	Date            daycycle.DayKey  `json:"date"`
	PlanID          string           `json:"planId"`
	Exercises       []ExerciseResult `json:"exercises"`
	TotalCalories   float64          `json:"totalCalories"`
	CoinsEarned     int              `json:"coinsEarned"`
	DurationMinutes int              `json:"duration"`
	CreatedAt       time.Time        `json:"createdAt"`
}

type ExerciseResult struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	CreditedReps  int     `json:"creditedReps"`
	CompletedReps int     `json:"completedReps"`
	TargetReps    int     `json:"targetReps"`
	Calories      float64 `json:"calories"`
}

// UserState is the authoritative per-user document: the server reads and
// writes it as a whole, the client holds a working copy, and the sync
// coordinator reconciles the two. Nothing else ever merges them.
type UserState struct {
	Plans              []plans.WorkoutPlan                   `json:"plans"`
	LastSelectedPlanID string                                `json:"lastSelectedPlanId,omitempty"`
	DailyStats         DailyStats                            `json:"dailyStats"`
	LastDailyReset     time.Time                             `json:"lastDailyReset"`
	WorkoutHistory     []WorkoutRecord                       `json:"workoutHistory"`
	DailyHistory       []HistoryEntry                        `json:"dailyHistory"`
	Coins              int                                   `json:"coins"`
	Streak             int                                   `json:"streak"`
	TotalWorkouts      int                                   `json:"totalWorkouts"`
	DateWorkoutData    map[daycycle.DayKey]plans.DaySnapshot `json:"dateWorkoutDataMap"`
	// LastSyncKey is the idempotency key of the last applied client push;
	// replays of the same push are dropped.
	LastSyncKey string `json:"lastSyncKey,omitempty"`
}

// UserView is the credential-free projection of a user returned to clients.
type UserView struct {
	ID            int    `json:"id"`
	Username      string `json:"username"`
	Coins         int    `json:"coins"`
	Streak        int    `json:"streak"`
	TotalWorkouts int    `json:"totalWorkouts"`
}

// NewUserState seeds the document created at registration.
func NewUserState() *UserState {
	return &UserState{
		Plans:           plans.BuildCatalog(nil),
		DateWorkoutData: make(map[daycycle.DayKey]plans.DaySnapshot),
	}
}

// Credit is the computed side effect of crediting one exercise. Coins here
// are the optimistic per-exercise credit used by the client; the server
// awards the per-call WorkoutReward instead.
type Credit struct {
	CreditedReps  int     `json:"creditedReps"`
	CaloriesAdded float64 `json:"caloriesAdded"`
	CoinsAdded    int     `json:"coinsAdded"`
}

// CompleteExercise locates the plan and exercise and credits the requested
// reps, clamped to the remaining target. The only mutation path for exercise
// progress.
func CompleteExercise(catalog []plans.WorkoutPlan, planID, exerciseID string, requestedReps int) (Credit, error) {
	plan, err := plans.FindPlan(catalog, planID)
	if err != nil {
		return Credit{}, err
	}
	exercise := plan.FindExercise(exerciseID)
	if exercise == nil {
		return Credit{}, ErrExerciseNotFound
	}

	credited := exercise.Credit(requestedReps)
	calories := exercise.CaloriesFor(credited)
	return Credit{
		CreditedReps:  credited,
		CaloriesAdded: calories,
		CoinsAdded:    plans.CoinsFor(calories),
	}, nil
}

// UpsertHistory replaces the entry with the same date or appends a new one.
// The ledger never holds two rows for one date.
func UpsertHistory(entries []HistoryEntry, entry HistoryEntry) []HistoryEntry {
	for i := range entries {
		if entries[i].Date == entry.Date {
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}

// NextStreak evaluates the streak at a workout-completion event.
// First activity ever starts at 1; activity yesterday extends the run;
// repeat activity in the same cycle keeps it; any gap resets to 1.
func NextStreak(lastActivity, today daycycle.DayKey, current int) int {
	if lastActivity == "" {
		return 1
	}
	if lastActivity == today {
		if current < 1 {
			return 1
		}
		return current
	}
	todayTime, err := today.Time()
	if err != nil {
		return 1
	}
	if lastActivity == daycycle.KeyFor(todayTime.AddDate(0, 0, -1)) {
		return current + 1
	}
	return 1
}

// WorkoutReward is the per-call coin reward: max(5, floor(totalCalories/10)).
func WorkoutReward(totalCalories float64) int {
	reward := int(math.Floor(totalCalories / 10))
	if reward < minWorkoutReward {
		return minWorkoutReward
	}
	return reward
}

// LastActivityDay returns the DayKey of the most recent workout, or "".
func LastActivityDay(history []WorkoutRecord) daycycle.DayKey {
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1].Date
}
