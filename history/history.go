package history

import "sync"

// DefaultLimit is the number of distinct queries kept when no limit is given
const DefaultLimit = 10

// Tracker keeps a most-recent-first list of distinct queries, bounded by a
// limit. Recording a query that is already present moves it to the front.
type Tracker struct {
	limit int

	mu      sync.RWMutex
	entries []string
}

// NewTracker creates a tracker that keeps at most limit entries. A
// non-positive limit uses DefaultLimit.
func NewTracker(limit int) *Tracker {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Tracker{
		limit:   limit,
		entries: make([]string, 0, limit),
	}
}

// Record moves query to the front, dropping the oldest entries beyond the
// limit
func (t *Tracker) Record(query string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make([]string, 0, t.limit)
	next = append(next, query)
	for _, entry := range t.entries {
		if entry == query {
			continue
		}
		if len(next) == t.limit {
			break
		}
		next = append(next, entry)
	}
	t.entries = next
}

// Clear removes every entry
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make([]string, 0, t.limit)
}

// List returns a copy of the entries, most recent first
func (t *Tracker) List() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}

// Contains reports whether query is in the history
func (t *Tracker) Contains(query string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, entry := range t.entries {
		if entry == query {
			return true
		}
	}
	return false
}

// Len returns the number of entries
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Limit returns the maximum number of entries kept
func (t *Tracker) Limit() int {
	return t.limit
}
