package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/fitquest/internal/daycycle"
	"github.com/2beens/fitquest/internal/plans"
	"github.com/2beens/fitquest/internal/telemetry/metrics"
	"github.com/2beens/fitquest/internal/telemetry/tracing"
)

// casRetries bounds the read-modify-write attempts on version conflicts.
// Two tabs racing on the same exercise: one wins, the other re-reads and
// trips the idempotency guard instead of double-crediting.
const casRetries = 3

type stateRepo interface {
	GetState(ctx context.Context, userID int) (*UserState, int, error)
	SaveState(ctx context.Context, userID int, state *UserState, version int) error
	CreateState(ctx context.Context, userID int, state *UserState) error
}

type scoreUpdater interface {
	SetScore(ctx context.Context, username string, coins int) error
}

type CompleteWorkoutRequest struct {
	PlanID          string                `json:"planId,omitempty"`
	Exercises       []ExerciseRepsRequest `json:"exercises"`
	TotalCalories   float64               `json:"totalCalories,omitempty"`
	DurationMinutes int                   `json:"duration,omitempty"`
}

// ExerciseRepsRequest mirrors the client payload: completedReps carries the
// reps the user just did; name and targetReps are display fields the server
// ignores in favor of its own catalog.
type ExerciseRepsRequest struct {
	ID             string  `json:"id"`
	Name           string  `json:"name,omitempty"`
	TargetReps     int     `json:"targetReps,omitempty"`
	CompletedReps  int     `json:"completedReps"`
	CaloriesBurned float64 `json:"caloriesBurned,omitempty"`
}

type CompleteWorkoutResult struct {
	WorkoutID     string           `json:"workoutId"`
	CoinsEarned   int              `json:"coinsEarned"`
	TotalCalories float64          `json:"totalCalories"`
	Streak        int              `json:"streak"`
	Exercises     []ExerciseResult `json:"exercises"`
	User          UserView         `json:"user"`
}

// SyncPayload is the sync-relevant subset of the client state that the
// write-behind coordinator pushes. Coins, streak and workout history stay
// server-authoritative and are never overwritten by a push.
type SyncPayload struct {
	Plans              []plans.WorkoutPlan                   `json:"plans"`
	LastSelectedPlanID string                                `json:"lastSelectedPlanId,omitempty"`
	DailyStats         DailyStats                            `json:"dailyStats"`
	DailyHistory       []HistoryEntry                        `json:"dailyHistory"`
	DateWorkoutData    map[daycycle.DayKey]plans.DaySnapshot `json:"dateWorkoutDataMap"`
}

type TodayStats struct {
	WorkoutsCompleted int     `json:"workoutsCompleted"`
	TotalCalories     float64 `json:"totalCalories"`
	TotalExercises    int     `json:"totalExercises"`
	TotalDuration     int     `json:"totalDuration"`
}

type HistoryResult struct {
	History       []HistoryEntry `json:"history"`
	TotalWorkouts int            `json:"totalWorkouts"`
	TotalCalories float64        `json:"totalCalories"`
}

type Service struct {
	repo           stateRepo
	resolver       *daycycle.Resolver
	leaderboard    scoreUpdater // optional, best effort
	metricsManager *metrics.Manager
	nowFunc        func() time.Time
}

func NewService(
	repo stateRepo,
	resolver *daycycle.Resolver,
	leaderboard scoreUpdater,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		repo:           repo,
		resolver:       resolver,
		leaderboard:    leaderboard,
		metricsManager: metricsManager,
		nowFunc:        time.Now,
	}
}

func (s *Service) countDailyReset() {
	if s.metricsManager != nil {
		s.metricsManager.CounterDailyResets.Inc()
	}
}

// CompleteWorkout is the authoritative mutation: lazy daily reset, the
// one-completion-per-exercise-per-cycle guard, rep crediting, streak and
// reward bookkeeping, then a single conditional write of the whole document.
func (s *Service) CompleteWorkout(
	ctx context.Context,
	userID int,
	username string,
	req CompleteWorkoutRequest,
) (_ *CompleteWorkoutResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	if len(req.Exercises) == 0 {
		return nil, fmt.Errorf("%w: no exercises in request", ErrValidation)
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		result, err := s.completeWorkoutOnce(ctx, userID, username, req)
		if errors.Is(err, ErrVersionConflict) {
			log.Warnf("complete workout user %d: version conflict, retrying (attempt %d)", userID, attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		if s.leaderboard != nil {
			// best effort, a missed leaderboard update heals on the next workout
			if result.coins > 0 {
				if lbErr := s.leaderboard.SetScore(ctx, username, result.coins); lbErr != nil {
					log.Errorf("update leaderboard for %s: %s", username, lbErr)
				}
			}
		}
		return result.res, nil
	}

	span.SetStatus(codes.Error, "cas-retries-exhausted")
	return nil, fmt.Errorf("complete workout for user %d: %w", userID, ErrVersionConflict)
}

type completeOutcome struct {
	res   *CompleteWorkoutResult
	coins int // total user coins after the call, for the leaderboard
}

func (s *Service) completeWorkoutOnce(
	ctx context.Context,
	userID int,
	username string,
	req CompleteWorkoutRequest,
) (completeOutcome, error) {
	state, version, err := s.repo.GetState(ctx, userID)
	if err != nil {
		return completeOutcome{}, fmt.Errorf("get user state: %w", err)
	}

	now := s.nowFunc()
	if ResetIfNeeded(state, s.resolver, now) {
		s.countDailyReset()
	}
	today := s.resolver.Resolve(now)

	// pin today's plan assignment before any crediting
	if state.DateWorkoutData == nil {
		state.DateWorkoutData = make(map[daycycle.DayKey]plans.DaySnapshot)
	}
	if _, _, err := plans.SnapshotFor(state.DateWorkoutData, today, state.Plans, state.LastSelectedPlanID); err != nil {
		return completeOutcome{}, fmt.Errorf("pin day snapshot: %w", err)
	}

	plan, err := plans.FindPlan(state.Plans, req.PlanID)
	if err != nil {
		return completeOutcome{}, err
	}

	var (
		results       []ExerciseResult
		totalCalories float64
		totalReps     int
	)
	for _, exReq := range req.Exercises {
		exercise := plan.FindExercise(exReq.ID)
		if exercise == nil {
			return completeOutcome{}, fmt.Errorf("exercise %q: %w", exReq.ID, ErrExerciseNotFound)
		}
		if exercise.Completed {
			return completeOutcome{}, fmt.Errorf("exercise %q: %w", exReq.ID, ErrAlreadyCompleted)
		}

		credit, err := CompleteExercise(state.Plans, plan.ID, exReq.ID, exReq.CompletedReps)
		if err != nil {
			return completeOutcome{}, err
		}

		totalCalories += credit.CaloriesAdded
		totalReps += credit.CreditedReps
		results = append(results, ExerciseResult{
			ID:            exercise.ID,
			Name:          exercise.Name,
			CreditedReps:  credit.CreditedReps,
			CompletedReps: exercise.CompletedReps,
			TargetReps:    exercise.TargetReps,
			Calories:      credit.CaloriesAdded,
		})
	}

	coinsEarned := WorkoutReward(totalCalories)
	streak := NextStreak(LastActivityDay(state.WorkoutHistory), today, state.Streak)

	record := WorkoutRecord{
		ID:              uuid.NewString(),
		Date:            today,
		PlanID:          plan.ID,
		Exercises:       results,
		TotalCalories:   totalCalories,
		CoinsEarned:     coinsEarned,
		DurationMinutes: req.DurationMinutes,
		CreatedAt:       now,
	}

	state.DailyStats.Date = today
	state.DailyStats.Calories += totalCalories
	state.DailyStats.ExercisesCompleted += totalReps
	state.DailyStats.WorkoutsCount++
	state.DailyHistory = UpsertHistory(state.DailyHistory, HistoryEntry{
		Date:               today,
		Calories:           state.DailyStats.Calories,
		ExercisesCompleted: state.DailyStats.ExercisesCompleted,
	})
	state.WorkoutHistory = append(state.WorkoutHistory, record)
	state.Streak = streak
	state.Coins += coinsEarned
	state.TotalWorkouts++

	if err := s.repo.SaveState(ctx, userID, state, version); err != nil {
		return completeOutcome{}, err
	}

	return completeOutcome{
		res: &CompleteWorkoutResult{
			WorkoutID:     record.ID,
			CoinsEarned:   coinsEarned,
			TotalCalories: totalCalories,
			Streak:        streak,
			Exercises:     results,
			User: UserView{
				ID:            userID,
				Username:      username,
				Coins:         state.Coins,
				Streak:        state.Streak,
				TotalWorkouts: state.TotalWorkouts,
			},
		},
		coins: state.Coins,
	}, nil
}

// ApplySync merges one client push into the authoritative document. The
// idempotency key makes retried pushes harmless: a key already applied is
// dropped. Only the sync-relevant subset is overwritten - rewards and
// workout history remain server-owned.
func (s *Service) ApplySync(ctx context.Context, userID int, key string, payload SyncPayload) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.applysync")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("sync.key", key))

	if key == "" {
		return fmt.Errorf("%w: missing idempotency key", ErrValidation)
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		state, version, err := s.repo.GetState(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user state: %w", err)
		}

		if state.LastSyncKey == key {
			log.Debugf("sync push %s for user %d already applied, dropping", key, userID)
			return nil
		}

		if payload.Plans != nil {
			state.Plans = payload.Plans
		}
		if payload.LastSelectedPlanID != "" {
			state.LastSelectedPlanID = payload.LastSelectedPlanID
		}
		state.DailyStats = payload.DailyStats
		if payload.DailyHistory != nil {
			state.DailyHistory = payload.DailyHistory
		}
		if payload.DateWorkoutData != nil {
			state.DateWorkoutData = payload.DateWorkoutData
		}
		state.LastSyncKey = key

		err = s.repo.SaveState(ctx, userID, state, version)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		return err
	}
	return ErrVersionConflict
}

// State returns the user's document after the lazy daily reset, persisting
// the reset when it fired. Used for hydration (login, refresh).
func (s *Service) State(ctx context.Context, userID int) (_ *UserState, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.state")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	for attempt := 0; attempt < casRetries; attempt++ {
		state, version, err := s.repo.GetState(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get user state: %w", err)
		}
		if !ResetIfNeeded(state, s.resolver, s.nowFunc()) {
			return state, nil
		}
		s.countDailyReset()
		err = s.repo.SaveState(ctx, userID, state, version)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save user state: %w", err)
		}
		return state, nil
	}
	return nil, ErrVersionConflict
}

func (s *Service) Today(ctx context.Context, userID int) (_ *TodayStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.today")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	state, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.resolver.Resolve(s.nowFunc())
	totalDuration := 0
	for _, rec := range state.WorkoutHistory {
		if rec.Date == today {
			totalDuration += rec.DurationMinutes
		}
	}

	return &TodayStats{
		WorkoutsCompleted: state.DailyStats.WorkoutsCount,
		TotalCalories:     state.DailyStats.Calories,
		TotalExercises:    state.DailyStats.ExercisesCompleted,
		TotalDuration:     totalDuration,
	}, nil
}

func (s *Service) History(ctx context.Context, userID int) (_ *HistoryResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	state, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}

	var totalCalories float64
	for _, entry := range state.DailyHistory {
		totalCalories += entry.Calories
	}

	history := state.DailyHistory
	if history == nil {
		history = []HistoryEntry{}
	}

	return &HistoryResult{
		History:       history,
		TotalWorkouts: state.TotalWorkouts,
		TotalCalories: totalCalories,
	}, nil
}

// DeleteWorkout removes a workout record and reverses its coin and workout
// count contribution.
func (s *Service) DeleteWorkout(ctx context.Context, userID int, workoutID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", workoutID))

	for attempt := 0; attempt < casRetries; attempt++ {
		state, version, err := s.repo.GetState(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user state: %w", err)
		}

		idx := -1
		for i := range state.WorkoutHistory {
			if state.WorkoutHistory[i].ID == workoutID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return ErrWorkoutNotFound
		}

		record := state.WorkoutHistory[idx]
		state.WorkoutHistory = append(state.WorkoutHistory[:idx], state.WorkoutHistory[idx+1:]...)
		state.Coins -= record.CoinsEarned
		if state.Coins < 0 {
			state.Coins = 0
		}
		if state.TotalWorkouts > 0 {
			state.TotalWorkouts--
		}

		err = s.repo.SaveState(ctx, userID, state, version)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		return err
	}
	return ErrVersionConflict
}

// SetCustomPlan installs or replaces the user's custom overlay plan and
// marks it as the last explicit selection.
func (s *Service) SetCustomPlan(ctx context.Context, userID int, custom plans.WorkoutPlan) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.setcustomplan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(custom.Exercises) == 0 {
		return fmt.Errorf("%w: custom plan needs at least one exercise", ErrValidation)
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		state, version, err := s.repo.GetState(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user state: %w", err)
		}

		custom.ID = plans.CustomPlanID
		replaced := false
		for i := range state.Plans {
			if state.Plans[i].ID == plans.CustomPlanID {
				state.Plans[i] = custom
				replaced = true
				break
			}
		}
		if !replaced {
			state.Plans = append(state.Plans, custom)
		}
		state.LastSelectedPlanID = plans.CustomPlanID

		err = s.repo.SaveState(ctx, userID, state, version)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		return err
	}
	return ErrVersionConflict
}

// Seed creates the initial document for a fresh registration.
func (s *Service) Seed(ctx context.Context, userID int) error {
	return s.repo.CreateState(ctx, userID, NewUserState())
}
