package events

import (
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/pugetsound/eventscope/internal/clock"
)

// --- Test Helpers ---

var frozen = clock.Fixed{At: time.Date(2024, time.January, 17, 9, 0, 0, 0, time.UTC), Start: time.Sunday}

func newTestCatalog() Catalog {
	published := []Event{
		{ID: "1", Title: "Pike Place Market Food Tour", Date: "2024-01-15", Tags: []Tag{TagFood, TagCulture}, Approved: true},
		{ID: "2", Title: "Discovery Park Nature Walk", Date: "2024-01-16", Tags: []Tag{TagOutdoors, TagFamily}, Approved: true},
	}
	pending := []Event{
		{ID: "pending-1", Title: "Underground Seattle Tour", Date: "2024-01-20", Tags: []Tag{TagCulture, TagFamily}},
	}
	return NewCatalog(frozen, NewIDGenerator(), published, pending)
}

func sampleDraft() Draft {
	return Draft{
		Title:            "Fremont Solstice Parade",
		Description:      "Annual parade through Fremont.",
		ShortDescription: "Annual parade.",
		Date:             "2024-06-22",
		Time:             "12:00 PM",
		Location:         "Fremont, Seattle",
		Tags:             []Tag{TagArt, TagFamily},
		CreatedBy:        "1",
	}
}

// assertPartition checks the collection invariants: approval flags match
// the collection, and no id appears in both.
func assertPartition(t *testing.T, c Catalog) {
	t.Helper()
	seen := map[string]bool{}
	for _, e := range c.Published() {
		if !e.Approved {
			t.Errorf("published event %s has approved=false", e.ID)
		}
		seen[e.ID] = true
	}
	for _, e := range c.Pending() {
		if e.Approved {
			t.Errorf("pending event %s has approved=true", e.ID)
		}
		if seen[e.ID] {
			t.Errorf("event %s is in both collections", e.ID)
		}
	}
}

func idsOf(list []Event) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

// --- Seed ---

func TestNewCatalog_NormalizesSeedApproval(t *testing.T) {
	c := NewCatalog(frozen, NewIDGenerator(),
		[]Event{{ID: "a", Approved: false}},
		[]Event{{ID: "b", Approved: true}},
	)
	assertPartition(t, c)
}

// --- Submit ---

func TestSubmit_AddsPendingEvent(t *testing.T) {
	c := newTestCatalog()
	ev := c.Submit(sampleDraft())

	if ev.ID == "" {
		t.Fatal("expected an id")
	}
	if ev.Approved {
		t.Error("submitted event must not be approved")
	}
	if ev.CreatedAt != "2024-01-17T09:00:00Z" {
		t.Errorf("unexpected createdAt %q", ev.CreatedAt)
	}
	if ev.Title != "Fremont Solstice Parade" || ev.CreatedBy != "1" {
		t.Errorf("draft fields not copied: %+v", ev)
	}

	pending := c.Pending()
	if len(pending) != 2 || pending[1].ID != ev.ID {
		t.Errorf("expected new event at end of pending, got %v", idsOf(pending))
	}
	if len(c.Published()) != 2 {
		t.Error("submit must not touch published")
	}
	assertPartition(t, c)
}

func TestSubmit_AcceptsEmptyDraft(t *testing.T) {
	c := newTestCatalog()
	ev := c.Submit(Draft{})
	if ev.ID == "" {
		t.Error("empty draft should still be accepted")
	}
}

func TestSubmit_DraftTagsAreCopied(t *testing.T) {
	c := newTestCatalog()
	d := sampleDraft()
	ev := c.Submit(d)
	d.Tags[0] = TagSports

	stored := c.Pending()[1]
	if stored.Tags[0] != TagArt || ev.Tags[0] != TagArt {
		t.Error("catalog shares the draft's tag slice")
	}
}

func TestSubmit_UniqueIDsWithinSameTick(t *testing.T) {
	// The frozen clock makes every submission land in the same millisecond.
	c := newTestCatalog()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ev := c.Submit(sampleDraft())
		if seen[ev.ID] {
			t.Fatalf("duplicate id %s after %d submissions", ev.ID, i)
		}
		seen[ev.ID] = true
	}
}

func TestSubmit_ConcurrentSubmissionsStayUnique(t *testing.T) {
	c := newTestCatalog()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Submit(sampleDraft())
		}()
	}
	wg.Wait()

	pending := c.Pending()
	if len(pending) != 51 {
		t.Fatalf("expected 51 pending events, got %d", len(pending))
	}
	ids := idsOf(pending)
	slices.Sort(ids)
	if len(slices.Compact(ids)) != 51 {
		t.Error("concurrent submissions produced duplicate ids")
	}
}

// --- Approve ---

func TestApprove_MovesEventToEndOfPublished(t *testing.T) {
	c := newTestCatalog()
	ev, ok := c.Approve("pending-1")
	if !ok {
		t.Fatal("expected approve to succeed")
	}
	if !ev.Approved || ev.ID != "pending-1" {
		t.Errorf("unexpected approved event %+v", ev)
	}

	if got := idsOf(c.Published()); !slices.Equal(got, []string{"1", "2", "pending-1"}) {
		t.Errorf("unexpected published order %v", got)
	}
	if len(c.Pending()) != 0 {
		t.Error("expected pending to be empty")
	}
	assertPartition(t, c)
}

func TestApprove_OrderFollowsApprovalNotSubmission(t *testing.T) {
	c := newTestCatalog()
	first := c.Submit(sampleDraft())
	second := c.Submit(sampleDraft())

	c.Approve(second.ID)
	c.Approve(first.ID)

	pub := idsOf(c.Published())
	if !slices.Equal(pub[2:], []string{second.ID, first.ID}) {
		t.Errorf("expected approval order, got %v", pub)
	}
}

func TestApprove_UnknownIDIsNoOp(t *testing.T) {
	c := newTestCatalog()
	before := c.Stats()

	for i := 0; i < 2; i++ {
		if _, ok := c.Approve("does-not-exist"); ok {
			t.Error("approve of unknown id reported success")
		}
	}
	if c.Stats() != before {
		t.Errorf("stats changed: %+v -> %+v", before, c.Stats())
	}
}

func TestApprove_Twice(t *testing.T) {
	c := newTestCatalog()
	c.Approve("pending-1")
	if _, ok := c.Approve("pending-1"); ok {
		t.Error("second approve should be a no-op")
	}
	if n := len(c.Published()); n != 3 {
		t.Errorf("expected 3 published, got %d", n)
	}
}

func TestSubmitThenApprove_MovesExactlyOneEvent(t *testing.T) {
	c := newTestCatalog()
	ev := c.Submit(sampleDraft())
	before := c.Stats()

	approved, ok := c.Approve(ev.ID)
	if !ok {
		t.Fatal("approve failed")
	}
	after := c.Stats()

	if after.Published != before.Published+1 || after.Pending != before.Pending-1 {
		t.Errorf("unexpected stats %+v -> %+v", before, after)
	}
	if approved.ID != ev.ID {
		t.Errorf("id changed across approval: %s -> %s", ev.ID, approved.ID)
	}
	if got, ok := c.Get(ev.ID); !ok || got.ID != ev.ID {
		t.Error("approved event not retrievable from published")
	}
	assertPartition(t, c)
}

// --- Reject ---

func TestReject_DiscardsPendingEvent(t *testing.T) {
	c := newTestCatalog()
	if !c.Reject("pending-1") {
		t.Fatal("expected reject to succeed")
	}
	if len(c.Pending()) != 0 || len(c.Published()) != 2 {
		t.Errorf("unexpected stats %+v", c.Stats())
	}
	if _, ok := c.Get("pending-1"); ok {
		t.Error("rejected event must never be published")
	}
}

func TestReject_UnknownIDIsNoOp(t *testing.T) {
	c := newTestCatalog()
	if c.Reject("nope") || c.Reject("nope") {
		t.Error("reject of unknown id reported success")
	}
	if c.Stats() != (Stats{Published: 2, Pending: 1}) {
		t.Errorf("unexpected stats %+v", c.Stats())
	}
}

func TestApproveThenReject_LeavesEventPublished(t *testing.T) {
	c := newTestCatalog()
	c.Approve("pending-1")
	if c.Reject("pending-1") {
		t.Error("reject after approve should be a no-op")
	}
	if _, ok := c.Get("pending-1"); !ok {
		t.Error("expected event to remain published")
	}
	assertPartition(t, c)
}

func TestReject_PublishedEventIsUntouched(t *testing.T) {
	c := newTestCatalog()
	if c.Reject("1") {
		t.Error("reject only applies to pending events")
	}
	if _, ok := c.Get("1"); !ok {
		t.Error("published event disappeared")
	}
}

// --- Reads ---

func TestPublished_ReturnsCopies(t *testing.T) {
	c := newTestCatalog()
	list := c.Published()
	list[0].Title = "mutated"
	list[0].Tags[0] = TagSports

	fresh := c.Published()
	if fresh[0].Title != "Pike Place Market Food Tour" || fresh[0].Tags[0] != TagFood {
		t.Error("caller mutation leaked into the catalog")
	}
}

func TestGet_IgnoresPending(t *testing.T) {
	c := newTestCatalog()
	if _, ok := c.Get("pending-1"); ok {
		t.Error("Get must only see published events")
	}
}

func TestResolveIDs(t *testing.T) {
	c := newTestCatalog()
	got := c.ResolveIDs([]string{"2", "pending-1", "missing", "1"})
	if !slices.Equal(idsOf(got), []string{"1", "2"}) {
		t.Errorf("expected published order [1 2], got %v", idsOf(got))
	}
	if got := c.ResolveIDs(nil); got == nil || len(got) != 0 {
		t.Error("expected empty non-nil slice")
	}
}

func TestParseTag(t *testing.T) {
	for _, tag := range AllTags() {
		if _, err := ParseTag(string(tag)); err != nil {
			t.Errorf("vocabulary tag %q rejected: %v", tag, err)
		}
	}
	if _, err := ParseTag("karaoke"); err == nil {
		t.Error("expected unknown tag to be rejected")
	}
	if len(AllTags()) != 8 {
		t.Errorf("expected 8 tags, got %d", len(AllTags()))
	}
}
