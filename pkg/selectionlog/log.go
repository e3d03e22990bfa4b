package selectionlog

import (
	"context"
	"sync"
	"time"

	vizembed "github.com/goliatone/go-vizembed/components/vizembed"
)

const defaultCapacity = 200

// Entry is one recorded selection.
type Entry struct {
	Target string
	At     time.Time
}

// Log is a bounded in-memory record of published selections. It feeds the
// diagnostics preview and lets operators inspect recent relay traffic.
type Log struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	now      func() time.Time
}

// New builds a log holding at most capacity entries; older entries are
// evicted first.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Log{
		capacity: capacity,
		now:      time.Now,
	}
}

// Attach subscribes the log to a bus.
func (l *Log) Attach(bus *vizembed.Bus) vizembed.Subscription {
	return bus.Subscribe(vizembed.TopicSelection, l.HandleSelection)
}

// HandleSelection satisfies the bus Handler signature.
func (l *Log) HandleSelection(_ context.Context, event vizembed.SelectionEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Target: event.SelectedTarget, At: l.now()})
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Entries returns a snapshot of recorded selections, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// CountsByTarget aggregates selection counts per target label.
func (l *Log) CountsByTarget() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	counts := make(map[string]int, len(l.entries))
	for _, entry := range l.entries {
		counts[entry.Target]++
	}
	return counts
}

// Len reports the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
