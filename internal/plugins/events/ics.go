package events

import (
	"io"
	"log/slog"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/pugetsound/eventscope/internal/clock"
)

// icsProductID identifies this service in exported calendars.
const icsProductID = "-//eventscope//community events//EN"

// timeLayout is the display time format used by the seed data ("7:30 PM").
const timeLayout = "3:04 PM"

// WriteICS exports events as an iCalendar feed. Events with a parseable
// display time become timed events in loc; the rest are all-day. Events
// whose date does not parse are skipped. baseURL, when set, links each
// entry back to its API resource.
func WriteICS(w io.Writer, list []Event, loc *time.Location, baseURL string) error {
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName("Community Events")
	cal.SetXWRTimezone(loc.String())

	for _, e := range list {
		day, err := clock.ParseDate(e.Date, loc)
		if err != nil {
			slog.Debug("skipping event with unparseable date in calendar export",
				slog.String("event_id", e.ID),
				slog.String("date", e.Date),
			)
			continue
		}

		ve := cal.AddEvent(e.ID + "@eventscope")
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}

		if start, ok := startTime(day, e.Time); ok {
			ve.SetStartAt(start)
		} else {
			ve.SetAllDayStartAt(day)
			ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}

		stamp := day
		if created, err := time.Parse(time.RFC3339, e.CreatedAt); err == nil {
			stamp = created
		}
		ve.SetDtStampTime(stamp)

		for _, t := range e.Tags {
			ve.AddProperty(ical.ComponentPropertyCategories, string(t))
		}
		if baseURL != "" {
			ve.SetURL(strings.TrimRight(baseURL, "/") + "/api/v1/events/" + e.ID)
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

// startTime combines a calendar day with a display time such as "7:30 PM".
func startTime(day time.Time, display string) (time.Time, bool) {
	t, err := time.Parse(timeLayout, strings.ToUpper(strings.TrimSpace(display)))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), true
}
