package events

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/pugetsound/eventscope/internal/clock"
)

// Catalog defines the event catalog contract. Handlers call these methods
// -- they never touch the collections directly. Every method is total: ids
// that are not where the caller expects them are no-ops, not errors.
type Catalog interface {
	// Submit creates a pending event from draft. No field validation is
	// performed here; the HTTP layer owns input hygiene.
	Submit(draft Draft) Event

	// Approve moves a pending event to the end of published. Returns the
	// published event and true, or false if id was not pending.
	Approve(id string) (Event, bool)

	// Reject permanently discards a pending event. Returns false if id was
	// not pending.
	Reject(id string) bool

	// Published returns a copy of the published collection in approval order.
	Published() []Event

	// Pending returns a copy of the pending collection in submission order.
	Pending() []Event

	// Get looks up a published event by id.
	Get(id string) (Event, bool)

	// ResolveIDs returns the published events whose ids appear in ids, in
	// published order. Unknown or pending ids are skipped.
	ResolveIDs(ids []string) []Event

	// Stats returns the size of each collection.
	Stats() Stats
}

// catalog is the in-memory Catalog. A single mutex guards both collections
// so every transition is observed atomically.
type catalog struct {
	mu        sync.RWMutex
	published []Event
	pending   []Event
	clock     clock.Clock
	ids       IDGenerator
}

// NewCatalog creates a catalog seeded with the given collections. Seed
// events are copied and their approval flag is normalized to the
// collection they were placed in.
func NewCatalog(clk clock.Clock, ids IDGenerator, published, pending []Event) Catalog {
	c := &catalog{
		clock:     clk,
		ids:       ids,
		published: make([]Event, 0, len(published)),
		pending:   make([]Event, 0, len(pending)),
	}
	for _, e := range published {
		e = e.clone()
		e.Approved = true
		c.published = append(c.published, e)
	}
	for _, e := range pending {
		e = e.clone()
		e.Approved = false
		c.pending = append(c.pending, e)
	}
	return c
}

// Submit builds a new pending event with a fresh id and creation time.
func (c *catalog) Submit(draft Draft) Event {
	now := c.clock.Now()
	ev := Event{
		ID:               c.ids.NewID(now),
		Title:            draft.Title,
		Description:      draft.Description,
		ShortDescription: draft.ShortDescription,
		Date:             draft.Date,
		Time:             draft.Time,
		Location:         draft.Location,
		Tags:             slices.Clone(draft.Tags),
		CreatedBy:        draft.CreatedBy,
		CreatedAt:        now.UTC().Format(time.RFC3339),
		Approved:         false,
		ImageURL:         draft.ImageURL,
	}

	c.mu.Lock()
	c.pending = append(c.pending, ev)
	c.mu.Unlock()

	slog.Info("event submitted",
		slog.String("event_id", ev.ID),
		slog.String("created_by", ev.CreatedBy),
	)

	return ev.clone()
}

// Approve copies the pending event into published with approved=true and
// drops it from pending.
func (c *catalog) Approve(id string) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := indexOf(c.pending, id)
	if idx < 0 {
		return Event{}, false
	}

	ev := c.pending[idx]
	ev.Approved = true
	c.published = append(c.published, ev)
	c.pending = slices.Delete(c.pending, idx, idx+1)

	slog.Info("event approved", slog.String("event_id", id))
	return ev.clone(), true
}

// Reject removes the pending event. Nothing is kept.
func (c *catalog) Reject(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := indexOf(c.pending, id)
	if idx < 0 {
		return false
	}
	c.pending = slices.Delete(c.pending, idx, idx+1)

	slog.Info("event rejected", slog.String("event_id", id))
	return true
}

// Published returns a deep copy of the published collection.
func (c *catalog) Published() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.published)
}

// Pending returns a deep copy of the pending collection.
func (c *catalog) Pending() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.pending)
}

// Get returns the published event with the given id.
func (c *catalog) Get(id string) (Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := indexOf(c.published, id)
	if idx < 0 {
		return Event{}, false
	}
	return c.published[idx].clone(), true
}

// ResolveIDs filters published down to the requested ids.
func (c *catalog) ResolveIDs(ids []string) []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []Event{}
	for _, e := range c.published {
		if slices.Contains(ids, e.ID) {
			out = append(out, e.clone())
		}
	}
	return out
}

// Stats returns the collection sizes.
func (c *catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Published: len(c.published), Pending: len(c.pending)}
}

// indexOf returns the position of id in list, or -1.
func indexOf(list []Event, id string) int {
	return slices.IndexFunc(list, func(e Event) bool { return e.ID == id })
}

// cloneAll deep-copies a collection. Never returns nil so JSON encodes [].
func cloneAll(list []Event) []Event {
	out := make([]Event, len(list))
	for i, e := range list {
		out[i] = e.clone()
	}
	return out
}
