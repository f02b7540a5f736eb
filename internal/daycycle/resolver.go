package daycycle

import (
	"time"
)

// DefaultBoundaryHour is the clock hour before which "today" still counts
// as the previous calendar day. A workout finished at 02:30 belongs to the
// evening before, not to the fresh day. Both the server reset logic and the
// client engine share this one value (configurable via config.toml).
const DefaultBoundaryHour = 4

const dayKeyLayout = "2006-01-02"

// DayKey identifies one activity cycle, normally a calendar date (YYYY-MM-DD)
// adjusted by the boundary hour.
type DayKey string

func (k DayKey) String() string {
	return string(k)
}

// Time parses the day key back into a local midnight timestamp.
func (k DayKey) Time() (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, string(k), time.Local)
}

func KeyFor(t time.Time) DayKey {
	return DayKey(t.Format(dayKeyLayout))
}

// Resolver converts wall-clock time into the canonical DayKey.
// An override, when set, is returned verbatim - no boundary math, no
// clamping. Overrides exist for simulation and testing (admin date controls).
type Resolver struct {
	boundaryHour int
	override     DayKey
}

func NewResolver(boundaryHour int) *Resolver {
	if boundaryHour < 0 || boundaryHour > 23 {
		boundaryHour = DefaultBoundaryHour
	}
	return &Resolver{boundaryHour: boundaryHour}
}

func (r *Resolver) BoundaryHour() int {
	return r.boundaryHour
}

func (r *Resolver) Override() DayKey {
	return r.override
}

func (r *Resolver) OverrideActive() bool {
	return r.override != ""
}

func (r *Resolver) SetOverride(key DayKey) {
	r.override = key
}

func (r *Resolver) ClearOverride() {
	r.override = ""
}

// ShiftOverride moves the active override by the given number of days.
// No-op when no override is active.
func (r *Resolver) ShiftOverride(days int) error {
	if r.override == "" {
		return nil
	}
	t, err := r.override.Time()
	if err != nil {
		return err
	}
	r.override = KeyFor(t.AddDate(0, 0, days))
	return nil
}

// Resolve returns the DayKey for the given instant. Pure: the same instant
// always resolves to the same key for a fixed boundary hour and override.
func (r *Resolver) Resolve(now time.Time) DayKey {
	if r.override != "" {
		return r.override
	}
	if now.Hour() < r.boundaryHour {
		now = now.AddDate(0, 0, -1)
	}
	return KeyFor(now)
}

// LastBoundary returns the most recent boundary-hour crossing at or before now.
func (r *Resolver) LastBoundary(now time.Time) time.Time {
	boundary := time.Date(now.Year(), now.Month(), now.Day(), r.boundaryHour, 0, 0, 0, now.Location())
	if now.Before(boundary) {
		boundary = boundary.AddDate(0, 0, -1)
	}
	return boundary
}

// NeedsReset reports whether a user whose progress was last zeroed at
// lastReset is due for a new cycle. True when lastReset is missing or older
// than the most recent boundary crossing. When an override is active the
// answer is always false - simulated days never trigger the server reset.
func (r *Resolver) NeedsReset(lastReset, now time.Time) bool {
	if r.override != "" {
		return false
	}
	if lastReset.IsZero() {
		return true
	}
	return lastReset.Before(r.LastBoundary(now))
}
