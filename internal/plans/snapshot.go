package plans

import (
	"github.com/2beens/fitquest/internal/daycycle"
)

// DaySnapshot pins the exact plan assignment a user saw on one day. Once a
// DayKey has a snapshot, that assignment is reused on every revisit of the
// same key, even if the rotation formula or the custom plan contents would
// now produce something different. Days in progress or in history are never
// rewritten retroactively.
type DaySnapshot struct {
	PlanID string        `json:"planId"`
	Plans  []WorkoutPlan `json:"plans"`
}

// SnapshotFor returns the pinned snapshot for the given day, creating and
// recording one when the day is seen for the first time. The returned bool
// reports whether a new snapshot was created (callers persist on true).
func SnapshotFor(
	snapshots map[daycycle.DayKey]DaySnapshot,
	day daycycle.DayKey,
	catalog []WorkoutPlan,
	lastSelected string,
) (DaySnapshot, bool, error) {
	if snap, ok := snapshots[day]; ok {
		return snap, false, nil
	}

	planID, err := ActivePlanID(day, catalog, lastSelected)
	if err != nil {
		return DaySnapshot{}, false, err
	}

	snap := DaySnapshot{
		PlanID: planID,
		Plans:  catalog,
	}
	snapshots[day] = snap
	return snap, true, nil
}
