package plans

import "math"

// Exercise is one entry of a workout plan, carrying both the immutable
// template fields (name, calories per rep, target) and the per-cycle
// progress (completed reps). Invariant: 0 <= CompletedReps <= TargetReps
// and Completed <=> CompletedReps >= TargetReps.
type Exercise struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	CaloriesPerRep float64 `json:"caloriesPerRep"`
	TargetReps     int     `json:"targetReps"`
	CompletedReps  int     `json:"completedReps"`
	Completed      bool    `json:"completed"`
}

// Credit applies requested reps to the exercise and returns how many were
// actually credited. Crediting is clamped to the remaining reps, which makes
// repeated or excessive requests idempotent: once the target is reached,
// every further call credits zero. This is the single mutation path for
// CompletedReps.
func (e *Exercise) Credit(requestedReps int) int {
	if requestedReps < 0 {
		requestedReps = 0
	}
	remaining := e.TargetReps - e.CompletedReps
	if remaining < 0 {
		remaining = 0
	}
	credited := requestedReps
	if credited > remaining {
		credited = remaining
	}
	e.CompletedReps += credited
	e.Completed = e.CompletedReps >= e.TargetReps
	return credited
}

// CaloriesFor returns the calories burned for the given number of reps.
func (e Exercise) CaloriesFor(reps int) float64 {
	return float64(reps) * e.CaloriesPerRep
}

// CoinsFor returns the optimistic per-exercise coin credit for the given
// calories amount.
func CoinsFor(calories float64) int {
	return int(math.Ceil(calories))
}

type WorkoutPlan struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// Clone returns a deep copy, so catalog templates are never mutated by
// per-user progress updates.
func (p WorkoutPlan) Clone() WorkoutPlan {
	cp := p
	cp.Exercises = make([]Exercise, len(p.Exercises))
	copy(cp.Exercises, p.Exercises)
	return cp
}

// ClonePlans deep copies a whole catalog.
func ClonePlans(catalog []WorkoutPlan) []WorkoutPlan {
	cloned := make([]WorkoutPlan, len(catalog))
	for i := range catalog {
		cloned[i] = catalog[i].Clone()
	}
	return cloned
}

// FindExercise returns a pointer into the plan's exercise slice, or nil.
func (p *WorkoutPlan) FindExercise(exerciseID string) *Exercise {
	for i := range p.Exercises {
		if p.Exercises[i].ID == exerciseID {
			return &p.Exercises[i]
		}
	}
	return nil
}
