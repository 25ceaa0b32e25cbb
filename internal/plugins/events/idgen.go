package events

import (
	"fmt"
	"sync/atomic"
	"time"
)

// IDGenerator produces event ids that are unique for the catalog's lifetime.
type IDGenerator interface {
	NewID(now time.Time) string
}

// sequentialIDs derives ids from the submission time plus a process-wide
// monotonic counter, so two submissions in the same millisecond still get
// distinct ids.
type sequentialIDs struct {
	seq atomic.Uint64
}

// NewIDGenerator returns the default id generator.
func NewIDGenerator() IDGenerator {
	return &sequentialIDs{}
}

// NewID returns "event-<unix millis>-<n>".
func (g *sequentialIDs) NewID(now time.Time) string {
	return fmt.Sprintf("event-%d-%d", now.UnixMilli(), g.seq.Add(1))
}
