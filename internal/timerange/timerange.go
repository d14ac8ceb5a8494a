// Package timerange computes the day and hour windows used for meetup
// listing and double-booking checks.
package timerange

import "time"

// Clock supplies the current instant. Services take a Clock instead of
// calling time.Now so past-date and conflict checks are reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.T }

// DayBounds returns the first and last instants of the calendar day that
// contains t, as seen in loc. Both bounds are inclusive.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(orUTC(loc))
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// HourBounds returns hh:00:00.000000000 and hh:59:59.999999999 of the clock
// hour that contains t, as seen in loc.
func HourBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(orUTC(loc))
	start := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	end := start.Add(time.Hour - time.Nanosecond)
	return start, end
}

// IsPast reports whether t is strictly before now.
func IsPast(now, t time.Time) bool {
	return t.Before(now)
}

// Within reports whether t lies in [start, end].
func Within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
