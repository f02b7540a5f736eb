package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitquest/internal/auth"
	"github.com/2beens/fitquest/internal/plans"
	"github.com/2beens/fitquest/internal/telemetry/metrics"
	"github.com/2beens/fitquest/internal/telemetry/tracing"
	"github.com/2beens/fitquest/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsService interface {
	CompleteWorkout(ctx context.Context, userID int, username string, req CompleteWorkoutRequest) (*CompleteWorkoutResult, error)
	State(ctx context.Context, userID int) (*UserState, error)
	Today(ctx context.Context, userID int) (*TodayStats, error)
	History(ctx context.Context, userID int) (*HistoryResult, error)
	DeleteWorkout(ctx context.Context, userID int, workoutID string) error
	ApplySync(ctx context.Context, userID int, key string, payload SyncPayload) error
	SetCustomPlan(ctx context.Context, userID int, custom plans.WorkoutPlan) error
}

type Handler struct {
	service        workoutsService
	metricsManager *metrics.Manager
}

func NewHandler(service workoutsService, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	workoutsRouter := router.PathPrefix("/workouts").Subrouter()
	workoutsRouter.HandleFunc("/complete", handler.HandleComplete).Methods("POST", "OPTIONS").Name("complete-workout")
	workoutsRouter.HandleFunc("/history", handler.HandleHistory).Methods("GET", "OPTIONS").Name("workouts-history")
	workoutsRouter.HandleFunc("/today", handler.HandleToday).Methods("GET", "OPTIONS").Name("workouts-today")
	workoutsRouter.HandleFunc("/state", handler.HandleState).Methods("GET", "OPTIONS").Name("workouts-state")
	workoutsRouter.HandleFunc("/sync", handler.HandleSync).Methods("POST", "OPTIONS").Name("workouts-sync")
	workoutsRouter.HandleFunc("/{workoutId}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")

	router.HandleFunc("/plans/custom", handler.HandleSetCustomPlan).Methods("POST", "OPTIONS").Name("set-custom-plan")
}

func (handler *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.complete")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req CompleteWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("complete workout, unmarshal json params: %s", err)
		http.Error(w, "complete workout failed", http.StatusBadRequest)
		return
	}

	result, err := handler.service.CompleteWorkout(ctx, user.ID, user.Username, req)
	switch {
	case err == nil:
		// fall through to the response below
	case errors.Is(err, ErrAlreadyCompleted):
		http.Error(w, "exercise already completed today", http.StatusBadRequest)
		return
	case errors.Is(err, ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, ErrExerciseNotFound) || errors.Is(err, plans.ErrPlanNotFound):
		http.Error(w, "exercise or plan not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrUserStateNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
		return
	default:
		log.Errorf("complete workout for user %d: %s", user.ID, err)
		http.Error(w, "complete workout failed", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterWorkoutsCompleted.Inc()
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("failed to marshal complete workout result: %s", err)
		http.Error(w, "complete workout failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout %s completed by user %d: %d coins", result.WorkoutID, user.ID, result.CoinsEarned)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.history")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	history, err := handler.service.History(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrUserStateNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get workouts history for user %d: %s", user.ID, err)
		http.Error(w, "failed to get workouts history", http.StatusInternalServerError)
		return
	}

	historyJson, err := json.Marshal(history)
	if err != nil {
		log.Errorf("failed to marshal workouts history: %s", err)
		http.Error(w, "failed to get workouts history", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, historyJson, http.StatusOK)
}

func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.today")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	todayStats, err := handler.service.Today(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrUserStateNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get today stats for user %d: %s", user.ID, err)
		http.Error(w, "failed to get today stats", http.StatusInternalServerError)
		return
	}

	resp := struct {
		TodayStats *TodayStats `json:"todayStats"`
	}{TodayStats: todayStats}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("failed to marshal today stats: %s", err)
		http.Error(w, "failed to get today stats", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

// HandleState serves client hydration: the authoritative document after the
// lazy daily reset.
func (handler *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.state")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	state, err := handler.service.State(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrUserStateNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get state for user %d: %s", user.ID, err)
		http.Error(w, "failed to get user state", http.StatusInternalServerError)
		return
	}

	stateJson, err := json.Marshal(state)
	if err != nil {
		log.Errorf("failed to marshal user state: %s", err)
		http.Error(w, "failed to get user state", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, stateJson, http.StatusOK)
}

func (handler *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sync")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	syncKey := r.Header.Get("X-Idempotency-Key")
	if syncKey == "" {
		http.Error(w, "error, idempotency key empty", http.StatusBadRequest)
		return
	}

	var payload SyncPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Tracef("sync push, unmarshal json params: %s", err)
		http.Error(w, "sync failed", http.StatusBadRequest)
		return
	}

	if err := handler.service.ApplySync(ctx, user.ID, syncKey, payload); err != nil {
		if errors.Is(err, ErrUserStateNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("apply sync push for user %d: %s", user.ID, err)
		http.Error(w, "sync failed", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterSyncPushes.Inc()
	}

	pkg.WriteTextResponseOK(w, "synced")
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	workoutID := vars["workoutId"]
	if workoutID == "" {
		http.Error(w, "error, workout id empty", http.StatusBadRequest)
		return
	}

	if err := handler.service.DeleteWorkout(ctx, user.ID, workoutID); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrUserStateNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete workout %s for user %d: %s", workoutID, user.ID, err)
		http.Error(w, "workout not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(struct {
		DeletedID string `json:"deletedId"`
	}{DeletedID: workoutID})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

func (handler *Handler) HandleSetCustomPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.setcustomplan")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var custom plans.WorkoutPlan
	if err := json.NewDecoder(r.Body).Decode(&custom); err != nil {
		log.Tracef("set custom plan, unmarshal json params: %s", err)
		http.Error(w, "set custom plan failed", http.StatusBadRequest)
		return
	}

	if err := handler.service.SetCustomPlan(ctx, user.ID, custom); err != nil {
		if errors.Is(err, ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrUserStateNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("set custom plan for user %d: %s", user.ID, err)
		http.Error(w, "set custom plan failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "custom plan saved")
}
