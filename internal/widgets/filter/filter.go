package filter

import (
	"strings"
	"time"

	"github.com/pugetsound/eventscope/internal/clock"
	"github.com/pugetsound/eventscope/internal/plugins/events"
)

// Apply returns the events matching all three predicates of c, in input
// order. The input slice and its elements are never modified.
func Apply(list []events.Event, c Criteria, clk clock.Clock) []events.Event {
	now := clk.Now()
	weekStart := clk.WeekStart()
	query := strings.ToLower(c.Query)

	out := make([]events.Event, 0, len(list))
	for _, e := range list {
		if matchesText(e, query) && matchesTime(e, c.When, now, weekStart) && matchesTags(e, c.Tags) {
			out = append(out, e)
		}
	}
	return out
}

// Matches reports whether a single event passes c at the clock's current time.
func Matches(e events.Event, c Criteria, clk clock.Clock) bool {
	return matchesText(e, strings.ToLower(c.Query)) &&
		matchesTime(e, c.When, clk.Now(), clk.WeekStart()) &&
		matchesTags(e, c.Tags)
}

// matchesText is plain case-insensitive substring containment over title,
// description and location. query must already be lower-cased.
func matchesText(e events.Event, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Title), query) ||
		strings.Contains(strings.ToLower(e.Description), query) ||
		strings.Contains(strings.ToLower(e.Location), query)
}

// matchesTime evaluates the time window. Dates are interpreted as calendar
// days in now's location; an unparseable date only matches TimeAll.
func matchesTime(e events.Event, tf TimeFilter, now time.Time, weekStart time.Weekday) bool {
	if tf == "" || tf == TimeAll {
		return true
	}

	day, err := clock.ParseDate(e.Date, now.Location())
	if err != nil {
		return false
	}

	switch tf {
	case TimeToday:
		return clock.SameDay(now, day)
	case TimeThisWeek:
		return clock.SameWeek(day, now, weekStart)
	case TimeThisWeekend:
		return clock.IsWeekend(day) && clock.SameWeek(day, now, weekStart)
	default:
		return false
	}
}

// matchesTags is an OR across the selection: one shared tag is enough.
func matchesTags(e events.Event, selected []events.Tag) bool {
	if len(selected) == 0 {
		return true
	}
	for _, t := range selected {
		if e.HasTag(t) {
			return true
		}
	}
	return false
}
