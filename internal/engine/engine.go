package engine

import (
	"fmt"
	"time"

	"github.com/2beens/fitquest/internal/daycycle"
	"github.com/2beens/fitquest/internal/plans"
	"github.com/2beens/fitquest/internal/workouts"
)

// Effect is a request for the outer effect layer. Apply itself never does
// I/O, it only says what should happen next.
type Effect int

const (
	// EffectSync asks the sync coordinator to push the new state.
	EffectSync Effect = iota + 1
	// EffectReload asks for a fresh pull of workout data (day changed).
	EffectReload
)

// State is the client's working copy of the user document, plus the local
// day override used by the simulator and admin tooling.
type State struct {
	Plans              []plans.WorkoutPlan
	LastSelectedPlanID string
	DailyStats         workouts.DailyStats
	LastDailyReset     time.Time
	DailyHistory       []workouts.HistoryEntry
	Coins              int
	Streak             int
	TotalWorkouts      int
	LastActivityDay    daycycle.DayKey
	DateWorkoutData    map[daycycle.DayKey]plans.DaySnapshot

	// BoundaryHour mirrors the server's day boundary, both sides resolve
	// the same DayKey for the same instant.
	BoundaryHour int
	// DateOverride pins the resolved day for testing and simulation.
	DateOverride daycycle.DayKey
	// HydratedAt is the instant of the last authoritative pull, used by the
	// sync layer to suppress echo writes.
	HydratedAt time.Time
}

func NewState(boundaryHour int) State {
	return State{
		Plans:           plans.BuildCatalog(nil),
		BoundaryHour:    boundaryHour,
		DateWorkoutData: make(map[daycycle.DayKey]plans.DaySnapshot),
	}
}

func (s State) resolver() *daycycle.Resolver {
	r := daycycle.NewResolver(s.BoundaryHour)
	if s.DateOverride != "" {
		r.SetOverride(s.DateOverride)
	}
	return r
}

// clone is a deep copy of everything Apply may mutate.
func (s State) clone() State {
	cp := s
	cp.Plans = plans.ClonePlans(s.Plans)
	cp.DailyHistory = append([]workouts.HistoryEntry{}, s.DailyHistory...)
	cp.DateWorkoutData = make(map[daycycle.DayKey]plans.DaySnapshot, len(s.DateWorkoutData))
	for k, v := range s.DateWorkoutData {
		cp.DateWorkoutData[k] = v
	}
	return cp
}

// SyncPayload is the sync-relevant subset handed to the sync coordinator.
// Coins, streak and totals stay out, those are server-computed.
func (s State) SyncPayload() workouts.SyncPayload {
	return workouts.SyncPayload{
		Plans:              s.Plans,
		LastSelectedPlanID: s.LastSelectedPlanID,
		DailyStats:         s.DailyStats,
		DailyHistory:       s.DailyHistory,
		DateWorkoutData:    s.DateWorkoutData,
	}
}

// Action is one client event. Exactly one variant per kind.
type Action interface {
	isAction()
}

type CompleteExercise struct {
	PlanID        string
	ExerciseID    string
	RequestedReps int
}

// ResetTodayIfNeeded lazily rolls the state over to a new day cycle. A
// no-op while a date override is active.
type ResetTodayIfNeeded struct{}

// Hydrate installs authoritative server state as the new working copy.
type Hydrate struct {
	Remote workouts.UserState
}

// LoadWorkoutData pins today's plan assignment if not pinned yet.
type LoadWorkoutData struct{}

type AdminSetDate struct {
	Date daycycle.DayKey
}

type AdminNextDay struct{}

type AdminPrevDay struct{}

type AdminResetDate struct{}

func (CompleteExercise) isAction()   {}
func (ResetTodayIfNeeded) isAction() {}
func (Hydrate) isAction()            {}
func (LoadWorkoutData) isAction()    {}
func (AdminSetDate) isAction()       {}
func (AdminNextDay) isAction()       {}
func (AdminPrevDay) isAction()       {}
func (AdminResetDate) isAction()     {}

// Apply is the single state transition function: pure and synchronous, it
// never blocks or awaits. The UI reflects the returned state immediately,
// network calls happen later via the returned effects.
func Apply(now time.Time, s State, action Action) (State, []Effect, error) {
	switch a := action.(type) {
	case CompleteExercise:
		return applyCompleteExercise(now, s, a)
	case ResetTodayIfNeeded:
		return applyResetTodayIfNeeded(now, s)
	case Hydrate:
		return applyHydrate(now, s, a)
	case LoadWorkoutData:
		return applyLoadWorkoutData(now, s)
	case AdminSetDate:
		if _, err := a.Date.Time(); err != nil {
			return s, nil, fmt.Errorf("%w: bad date %q", workouts.ErrValidation, a.Date)
		}
		next := s.clone()
		next.DateOverride = a.Date
		return next, []Effect{EffectReload}, nil
	case AdminNextDay:
		return applyShiftOverride(now, s, 1)
	case AdminPrevDay:
		return applyShiftOverride(now, s, -1)
	case AdminResetDate:
		next := s.clone()
		next.DateOverride = ""
		return next, []Effect{EffectReload}, nil
	default:
		return s, nil, fmt.Errorf("unknown action %T", action)
	}
}

func applyCompleteExercise(now time.Time, s State, a CompleteExercise) (State, []Effect, error) {
	if a.RequestedReps <= 0 {
		return s, nil, fmt.Errorf("%w: requested reps must be positive", workouts.ErrValidation)
	}

	// roll the day over first, exercise credit always lands on today
	rolled, _, err := applyResetTodayIfNeeded(now, s)
	if err != nil {
		return s, nil, err
	}
	next := rolled.clone()

	today := next.resolver().Resolve(now)
	if _, _, err := plans.SnapshotFor(next.DateWorkoutData, today, next.Plans, next.LastSelectedPlanID); err != nil {
		return s, nil, err
	}

	credit, err := workouts.CompleteExercise(next.Plans, a.PlanID, a.ExerciseID, a.RequestedReps)
	if err != nil {
		return s, nil, err
	}
	if credit.CreditedReps == 0 {
		return s, nil, workouts.ErrAlreadyCompleted
	}

	// optimistic local update, the authoritative reward lands on next hydration
	next.Coins += credit.CoinsAdded
	next.Streak = workouts.NextStreak(next.LastActivityDay, today, next.Streak)
	next.LastActivityDay = today
	next.TotalWorkouts++
	next.LastSelectedPlanID = a.PlanID

	next.DailyStats.Date = today
	next.DailyStats.Calories += credit.CaloriesAdded
	next.DailyStats.ExercisesCompleted += credit.CreditedReps
	next.DailyStats.WorkoutsCount++

	// keep today visible in historical queries without waiting for rollover
	next.DailyHistory = workouts.UpsertHistory(next.DailyHistory, workouts.HistoryEntry{
		Date:               today,
		Calories:           next.DailyStats.Calories,
		ExercisesCompleted: next.DailyStats.ExercisesCompleted,
	})

	return next, []Effect{EffectSync}, nil
}

func applyResetTodayIfNeeded(now time.Time, s State) (State, []Effect, error) {
	resolver := s.resolver()
	if !resolver.NeedsReset(s.LastDailyReset, now) {
		return s, nil, nil
	}

	next := s.clone()
	today := resolver.Resolve(now)

	if !next.DailyStats.IsZero() && next.DailyStats.Date != "" && next.DailyStats.Date != today {
		next.DailyHistory = workouts.UpsertHistory(next.DailyHistory, workouts.HistoryEntry{
			Date:               next.DailyStats.Date,
			Calories:           next.DailyStats.Calories,
			ExercisesCompleted: next.DailyStats.ExercisesCompleted,
		})
	}

	for i := range next.Plans {
		for j := range next.Plans[i].Exercises {
			next.Plans[i].Exercises[j].CompletedReps = 0
			next.Plans[i].Exercises[j].Completed = false
		}
	}

	next.DailyStats = workouts.DailyStats{
		Date:        today,
		LastResetAt: now,
	}
	next.LastDailyReset = now

	return next, []Effect{EffectSync}, nil
}

func applyHydrate(now time.Time, s State, a Hydrate) (State, []Effect, error) {
	next := s.clone()
	next.Plans = plans.ClonePlans(a.Remote.Plans)
	next.LastSelectedPlanID = a.Remote.LastSelectedPlanID
	next.DailyStats = a.Remote.DailyStats
	next.LastDailyReset = a.Remote.LastDailyReset
	next.DailyHistory = append([]workouts.HistoryEntry{}, a.Remote.DailyHistory...)
	next.Coins = a.Remote.Coins
	next.Streak = a.Remote.Streak
	next.TotalWorkouts = a.Remote.TotalWorkouts
	next.LastActivityDay = workouts.LastActivityDay(a.Remote.WorkoutHistory)
	next.DateWorkoutData = make(map[daycycle.DayKey]plans.DaySnapshot, len(a.Remote.DateWorkoutData))
	for k, v := range a.Remote.DateWorkoutData {
		next.DateWorkoutData[k] = v
	}
	next.HydratedAt = now
	return next, nil, nil
}

func applyLoadWorkoutData(now time.Time, s State) (State, []Effect, error) {
	next := s.clone()
	today := next.resolver().Resolve(now)

	_, created, err := plans.SnapshotFor(next.DateWorkoutData, today, next.Plans, next.LastSelectedPlanID)
	if err != nil {
		return s, nil, err
	}
	if !created {
		return s, nil, nil
	}
	return next, []Effect{EffectSync}, nil
}

func applyShiftOverride(now time.Time, s State, days int) (State, []Effect, error) {
	next := s.clone()
	if next.DateOverride == "" {
		next.DateOverride = next.resolver().Resolve(now)
	}

	r := daycycle.NewResolver(next.BoundaryHour)
	r.SetOverride(next.DateOverride)
	if err := r.ShiftOverride(days); err != nil {
		return s, nil, fmt.Errorf("%w: %s", workouts.ErrValidation, err)
	}
	next.DateOverride = r.Override()

	return next, []Effect{EffectReload}, nil
}
