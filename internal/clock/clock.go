// Package clock provides the date collaborator used by the filter engine and
// the event catalog: the current instant in a fixed location, plus calendar
// helpers for "same day", "same week", and "weekend". Week membership is
// computed under an explicit week-start convention so the answer never
// depends on the host's locale.
package clock

import (
	"time"

	// Embedded zone database so configured locations resolve everywhere.
	_ "time/tzdata"
)

// DateLayout is the ISO 8601 calendar-date layout used for event dates.
const DateLayout = "2006-01-02"

// Clock reports the current time and answers calendar questions relative
// to it. Implementations must be safe for concurrent use.
type Clock interface {
	// Now returns the current instant in the clock's location.
	Now() time.Time

	// Location is the zone that defines local calendar days.
	Location() *time.Location

	// WeekStart is the first day of a calendar week.
	WeekStart() time.Weekday
}

// system is the wall-clock implementation.
type system struct {
	loc       *time.Location
	weekStart time.Weekday
}

// New returns a wall clock for the given location and week start. A nil
// location means time.Local.
func New(loc *time.Location, weekStart time.Weekday) Clock {
	if loc == nil {
		loc = time.Local
	}
	return &system{loc: loc, weekStart: weekStart}
}

func (s *system) Now() time.Time           { return time.Now().In(s.loc) }
func (s *system) Location() *time.Location { return s.loc }
func (s *system) WeekStart() time.Weekday  { return s.weekStart }

// Fixed is a Clock frozen at a single instant. Used by tests and by the CLI
// when an explicit reference date is given.
type Fixed struct {
	At    time.Time
	Start time.Weekday
}

func (f Fixed) Now() time.Time           { return f.At }
func (f Fixed) Location() *time.Location { return f.At.Location() }
func (f Fixed) WeekStart() time.Weekday  { return f.Start }

// ParseDate parses an ISO calendar date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfWeek returns local midnight of the first day of t's week.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// SameWeek reports whether day falls in the calendar week containing ref.
// The week runs from weekStart (inclusive) for seven calendar days.
func SameWeek(day, ref time.Time, weekStart time.Weekday) bool {
	day = day.In(ref.Location())
	start := StartOfWeek(ref, weekStart)
	end := start.AddDate(0, 0, 7)
	return !day.Before(start) && day.Before(end)
}

// IsWeekend reports whether t is a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
