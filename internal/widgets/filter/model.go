// Package filter implements the event filter widget: a pure reduction of
// the published collection by free-text query, time window, and category
// tags. It backs the feed sidebar, the JSON list endpoint, the iCalendar
// export, and the eventctl CLI.
package filter

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/pugetsound/eventscope/internal/plugins/events"
)

// TimeFilter narrows events by calendar date relative to now.
type TimeFilter string

const (
	// TimeAll matches every event.
	TimeAll TimeFilter = "all"
	// TimeToday matches events on the current local calendar date.
	TimeToday TimeFilter = "today"
	// TimeThisWeek matches events in the current calendar week.
	TimeThisWeek TimeFilter = "this-week"
	// TimeThisWeekend matches Saturday/Sunday events in the current week.
	TimeThisWeekend TimeFilter = "this-weekend"
)

// ParseTimeFilter validates s. The empty string means TimeAll.
func ParseTimeFilter(s string) (TimeFilter, error) {
	switch tf := TimeFilter(strings.TrimSpace(s)); tf {
	case "":
		return TimeAll, nil
	case TimeAll, TimeToday, TimeThisWeek, TimeThisWeekend:
		return tf, nil
	default:
		return "", fmt.Errorf("unknown time filter %q", s)
	}
}

// Criteria is the ephemeral filter state owned by the caller.
type Criteria struct {
	Query string
	When  TimeFilter
	Tags  []events.Tag
}

// IsZero reports whether the criteria match everything. The feed shows its
// "clear all filters" link only when this is false.
func (c Criteria) IsZero() bool {
	return c.Query == "" && (c.When == "" || c.When == TimeAll) && len(c.Tags) == 0
}

// ToggleTag returns criteria with t added if absent or removed if present.
// Selection order is preserved.
func (c Criteria) ToggleTag(t events.Tag) Criteria {
	if i := slices.Index(c.Tags, t); i >= 0 {
		c.Tags = slices.Delete(slices.Clone(c.Tags), i, i+1)
		return c
	}
	c.Tags = append(slices.Clone(c.Tags), t)
	return c
}

// Parse builds Criteria from raw query-string style inputs. Each entry of
// rawTags may itself be a comma-separated list. Duplicate tags collapse.
func Parse(query, when string, rawTags []string) (Criteria, error) {
	tf, err := ParseTimeFilter(when)
	if err != nil {
		return Criteria{}, err
	}

	var tags []events.Tag
	for _, raw := range rawTags {
		for _, part := range strings.Split(raw, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			tag, err := events.ParseTag(part)
			if err != nil {
				return Criteria{}, err
			}
			if !slices.Contains(tags, tag) {
				tags = append(tags, tag)
			}
		}
	}

	return Criteria{Query: query, When: tf, Tags: tags}, nil
}

// Encode renders the criteria as a query string (q, when, tags) suitable
// for links. Zero-valued parts are omitted.
func (c Criteria) Encode() string {
	v := url.Values{}
	if c.Query != "" {
		v.Set("q", c.Query)
	}
	if c.When != "" && c.When != TimeAll {
		v.Set("when", string(c.When))
	}
	if len(c.Tags) > 0 {
		parts := make([]string, len(c.Tags))
		for i, t := range c.Tags {
			parts[i] = string(t)
		}
		v.Set("tags", strings.Join(parts, ","))
	}
	return v.Encode()
}
