// Package events owns the community event catalog: the published and
// pending collections, the submit/approve/reject moderation transitions
// between them, and the HTTP endpoints that browse and submit events.
//
// An event is in exactly one collection at a time. Submissions land in
// pending; approval moves them to the end of published; rejection discards
// them permanently.
package events

import (
	"fmt"
	"slices"
)

// Tag is one label from the fixed category vocabulary.
type Tag string

// The closed tag vocabulary, in display order.
const (
	TagFamily    Tag = "family"
	TagOutdoors  Tag = "outdoors"
	TagMusic     Tag = "music"
	TagFood      Tag = "food"
	TagArt       Tag = "art"
	TagSports    Tag = "sports"
	TagNightlife Tag = "nightlife"
	TagCulture   Tag = "culture"
)

// AllTags returns the vocabulary in display order. The slice is a fresh copy.
func AllTags() []Tag {
	return []Tag{
		TagFamily, TagOutdoors, TagMusic, TagFood,
		TagArt, TagSports, TagNightlife, TagCulture,
	}
}

// ParseTag validates s against the vocabulary.
func ParseTag(s string) (Tag, error) {
	t := Tag(s)
	if slices.Contains(AllTags(), t) {
		return t, nil
	}
	return "", fmt.Errorf("unknown tag %q", s)
}

// Event is a single community happening. JSON names follow the snapshot
// format used by the web client.
type Event struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	ShortDescription string `json:"shortDescription"`
	Date             string `json:"date"` // ISO 8601 calendar date, YYYY-MM-DD
	Time             string `json:"time"` // display only, never parsed
	Location         string `json:"location"`
	Tags             []Tag  `json:"tags"`
	CreatedBy        string `json:"createdBy"`
	CreatedAt        string `json:"createdAt"` // RFC 3339, UTC
	Approved         bool   `json:"approved"`
	ImageURL         string `json:"imageUrl,omitempty"`
}

// HasTag reports whether the event carries t.
func (e Event) HasTag(t Tag) bool {
	return slices.Contains(e.Tags, t)
}

// clone returns a copy that shares no slices with e.
func (e Event) clone() Event {
	e.Tags = slices.Clone(e.Tags)
	return e
}

// Draft is everything editorial about a new event. The catalog assigns
// the id, creation time and approval state.
type Draft struct {
	Title            string
	Description      string
	ShortDescription string
	Date             string
	Time             string
	Location         string
	Tags             []Tag
	CreatedBy        string
	ImageURL         string
}

// Stats summarizes the two collections for the moderation header.
type Stats struct {
	Published int `json:"published"`
	Pending   int `json:"pending"`
}

// --- Request DTOs (bound from HTTP requests) ---

// SubmitRequest is the JSON body of POST /api/v1/events.
type SubmitRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription"`
	Date             string   `json:"date"`
	Time             string   `json:"time"`
	Location         string   `json:"location"`
	Tags             []string `json:"tags"`
	ImageURL         string   `json:"imageUrl"`
}
