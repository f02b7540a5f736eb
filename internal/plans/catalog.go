package plans

import (
	"errors"

	"github.com/2beens/fitquest/internal/daycycle"
)

// CustomPlanID marks the single per-user plan built from user-chosen
// exercises. It is appended to the fixed catalog as an overlay.
const CustomPlanID = "custom-plan"

var ErrPlanNotFound = errors.New("workout plan not found")

// DefaultCatalog returns the fixed, ordered list of workout plan templates.
// The order matters: the deterministic day-of-month rotation indexes into it.
func DefaultCatalog() []WorkoutPlan {
	return []WorkoutPlan{
		{
			ID:   "full-body-starter",
			Name: "Full Body Starter",
			Exercises: []Exercise{
				{ID: "pushups", Name: "Push-ups", CaloriesPerRep: 0.5, TargetReps: 10},
				{ID: "squats", Name: "Squats", CaloriesPerRep: 0.4, TargetReps: 15},
				{ID: "plank-ups", Name: "Plank-ups", CaloriesPerRep: 0.6, TargetReps: 8},
			},
		},
		{
			ID:   "core-blast",
			Name: "Core Blast",
			Exercises: []Exercise{
				{ID: "situps", Name: "Sit-ups", CaloriesPerRep: 0.3, TargetReps: 20},
				{ID: "leg-raises", Name: "Leg Raises", CaloriesPerRep: 0.4, TargetReps: 12},
				{ID: "russian-twists", Name: "Russian Twists", CaloriesPerRep: 0.25, TargetReps: 30},
			},
		},
		{
			ID:   "leg-day",
			Name: "Leg Day",
			Exercises: []Exercise{
				{ID: "lunges", Name: "Lunges", CaloriesPerRep: 0.5, TargetReps: 16},
				{ID: "jump-squats", Name: "Jump Squats", CaloriesPerRep: 0.8, TargetReps: 10},
				{ID: "calf-raises", Name: "Calf Raises", CaloriesPerRep: 0.2, TargetReps: 25},
			},
		},
		{
			ID:   "cardio-burn",
			Name: "Cardio Burn",
			Exercises: []Exercise{
				{ID: "jumping-jacks", Name: "Jumping Jacks", CaloriesPerRep: 0.2, TargetReps: 40},
				{ID: "burpees", Name: "Burpees", CaloriesPerRep: 1.2, TargetReps: 8},
				{ID: "high-knees", Name: "High Knees", CaloriesPerRep: 0.15, TargetReps: 50},
			},
		},
		{
			ID:   "upper-body",
			Name: "Upper Body",
			Exercises: []Exercise{
				{ID: "pike-pushups", Name: "Pike Push-ups", CaloriesPerRep: 0.6, TargetReps: 8},
				{ID: "tricep-dips", Name: "Tricep Dips", CaloriesPerRep: 0.4, TargetReps: 12},
				{ID: "arm-circles", Name: "Arm Circles", CaloriesPerRep: 0.1, TargetReps: 30},
			},
		},
	}
}

// BuildCatalog returns the catalog for one user: the fixed templates, plus
// the custom overlay plan appended when the user has defined one. All plans
// are deep copies.
func BuildCatalog(custom *WorkoutPlan) []WorkoutPlan {
	defaults := DefaultCatalog()
	catalog := make([]WorkoutPlan, 0, len(defaults)+1)
	for _, p := range defaults {
		catalog = append(catalog, p.Clone())
	}
	if custom != nil && len(custom.Exercises) > 0 {
		cp := custom.Clone()
		cp.ID = CustomPlanID
		catalog = append(catalog, cp)
	}
	return catalog
}

// ActivePlanID selects today's plan. The user's last explicit selection of
// the custom plan takes precedence; otherwise the pick is deterministic:
// (dayOfMonth - 1) mod catalog size.
func ActivePlanID(day daycycle.DayKey, catalog []WorkoutPlan, lastSelected string) (string, error) {
	if len(catalog) == 0 {
		return "", ErrPlanNotFound
	}
	if lastSelected == CustomPlanID {
		for _, p := range catalog {
			if p.ID == CustomPlanID {
				return CustomPlanID, nil
			}
		}
	}
	t, err := day.Time()
	if err != nil {
		return "", err
	}
	idx := (t.Day() - 1) % len(catalog)
	return catalog[idx].ID, nil
}

// FindPlan returns a pointer into the given slice, or ErrPlanNotFound.
// An empty planID matches the first plan (clients that track a single active
// plan may omit the id).
func FindPlan(catalog []WorkoutPlan, planID string) (*WorkoutPlan, error) {
	if planID == "" && len(catalog) > 0 {
		return &catalog[0], nil
	}
	for i := range catalog {
		if catalog[i].ID == planID {
			return &catalog[i], nil
		}
	}
	return nil, ErrPlanNotFound
}
