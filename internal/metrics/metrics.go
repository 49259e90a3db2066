// Package metrics keeps in-process counters for cart activity.
package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value atomic.Uint64
}

func (c *Counter) Inc() {
	c.value.Add(1)
}

func (c *Counter) Load() uint64 {
	return c.value.Load()
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

var (
	ItemsAdded         Counter
	DuplicateAdds      Counter
	StorageConflicts   Counter
	CartsDrained       Counter
	CheckoutsCompleted Counter
)

// Snapshot returns the current counter values keyed by name.
func Snapshot() map[string]uint64 {
	return map[string]uint64{
		"cart_items_added":       ItemsAdded.Load(),
		"cart_duplicate_adds":    DuplicateAdds.Load(),
		"cart_storage_conflicts": StorageConflicts.Load(),
		"cart_drained":           CartsDrained.Load(),
		"checkout_completed":     CheckoutsCompleted.Load(),
	}
}
