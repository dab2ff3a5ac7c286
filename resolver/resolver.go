package resolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/hsbacot/livesearch/cache"
	"github.com/hsbacot/livesearch/debounce"
	"github.com/hsbacot/livesearch/history"
)

// LookupFunc fetches results for a settled, non-empty query
type LookupFunc[R any] func(ctx context.Context, query string) ([]R, error)

// Resolver turns a rapidly changing query into results. Queries are
// debounced, answered from an in-memory cache when possible, and otherwise
// passed to the lookup function. Successful lookups are cached and recorded
// in the history.
type Resolver[R any] struct {
	lookup LookupFunc[R]
	opts   options
	logger *log.Logger

	gate    *debounce.Gate[string]
	cache   *cache.Cache[R]
	history *history.Tracker

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State[R]
	generation uint64
	closed     bool
	observers  map[int]func(State[R])
	nextID     int

	inflight sync.WaitGroup
}

// New creates a resolver around lookup. It panics if lookup is nil.
func New[R any](lookup LookupFunc[R], opts ...Option) *Resolver[R] {
	if lookup == nil {
		panic("resolver: nil lookup")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Resolver[R]{
		lookup:    lookup,
		opts:      o,
		logger:    o.logger,
		cache:     cache.New[R](cache.Normalizer{CaseSensitive: o.caseSensitive}),
		history:   history.NewTracker(o.historyLimit),
		ctx:       ctx,
		cancel:    cancel,
		observers: make(map[int]func(State[R])),
	}
	r.gate = debounce.New(o.debounce, o.clock, r.resolve)
	return r
}

// SetQuery updates the raw query. Resolution waits until the query has been
// stable for the debounce delay; an empty or whitespace query clears the
// results right away.
func (r *Resolver[R]) SetQuery(query string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.state.Query = query
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.notify(snap)

	if cache.IsEmpty(query) {
		// Nothing to wait for: drop any pending keystrokes and settle now
		r.gate.Cancel()
		r.resolve(query)
		return
	}
	r.gate.Set(query)
}

// Flush resolves a pending query immediately instead of waiting for the
// debounce delay. It reports whether a query was pending.
func (r *Resolver[R]) Flush() bool {
	return r.gate.Flush()
}

// Pending reports whether a query is waiting for the debounce delay
func (r *Resolver[R]) Pending() bool {
	return r.gate.Pending()
}

// ClearCache empties the query cache and the history
func (r *Resolver[R]) ClearCache() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.cache.Clear()
	r.history.Clear()
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debug("Cache cleared")
	r.notify(snap)
}

// ClearResults resets the query, results and error. The cache and history
// are kept. Pending keystrokes and lookups still in flight are abandoned.
func (r *Resolver[R]) ClearResults() {
	r.gate.Cancel()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.generation++
	r.state.Query = ""
	r.state.Settled = ""
	r.state.Results = nil
	r.state.Err = nil
	r.state.Loading = false
	r.state.FromCache = false
	r.state.Phase = PhaseIdle
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.notify(snap)
}

// State returns a snapshot of the observable state
func (r *Resolver[R]) State() State[R] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyLocked()
}

// History returns the recent successful queries, most recent first
func (r *Resolver[R]) History() []string {
	return r.history.List()
}

// CacheSize returns the number of cached queries
func (r *Resolver[R]) CacheSize() int {
	return r.cache.Size()
}

// CacheStats returns hit/miss statistics for the query cache
func (r *Resolver[R]) CacheStats() cache.Stats {
	return r.cache.Stats()
}

// CachedQueries returns the cached keys in sorted order
func (r *Resolver[R]) CachedQueries() []string {
	return r.cache.Keys()
}

// Subscribe registers fn to receive a snapshot after every transition and
// returns a function that removes it. fn runs on the goroutine that caused
// the transition and must not block.
func (r *Resolver[R]) Subscribe(fn func(State[R])) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.observers[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.observers, id)
	}
}

// Wait blocks until every lookup started so far has returned
func (r *Resolver[R]) Wait() {
	r.inflight.Wait()
}

// Close stops the debounce timer and cancels the context of lookups still in
// flight. Their completions are discarded. Close does not wait for them.
func (r *Resolver[R]) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.gate.Stop()
	r.cancel()
}

// resolve runs one resolution cycle for a settled query
func (r *Resolver[R]) resolve(settled string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}

	r.generation++
	gen := r.generation
	r.state.Settled = settled
	r.state.FromCache = false

	// Empty query: no active search
	if cache.IsEmpty(settled) {
		r.state.Results = nil
		r.state.Err = nil
		r.state.Loading = false
		r.state.Phase = PhaseIdle
		snap := r.snapshotLocked()
		r.mu.Unlock()

		r.notify(snap)
		return
	}

	// Cache hit: answer without a lookup and without touching history
	if results, ok := r.cache.Get(settled); ok {
		r.state.Results = results
		r.state.Err = nil
		r.state.Loading = false
		r.state.FromCache = true
		r.state.Phase = PhaseSucceeded
		snap := r.snapshotLocked()
		r.mu.Unlock()

		r.logger.Debug("Cache hit", "query", settled, "results", len(results))
		r.notify(snap)
		return
	}

	r.state.Results = nil
	r.state.Err = nil
	r.state.Loading = true
	r.state.Phase = PhaseResolving
	snap := r.snapshotLocked()
	r.inflight.Add(1)
	r.mu.Unlock()

	r.logger.Debug("Cache miss, looking up", "query", settled, "generation", gen)
	r.notify(snap)

	go r.run(gen, settled)
}

// run performs the lookup for one cycle and applies its outcome
func (r *Resolver[R]) run(gen uint64, settled string) {
	defer r.inflight.Done()

	results, err := r.call(settled)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Debug("Dropping lookup finished after close", "query", settled)
		return
	}

	if err == nil {
		if results == nil {
			results = []R{}
		}
		// The data is valid for its own key even when the cycle is stale
		r.cache.Set(settled, results)
		r.history.Record(r.cache.Normalizer().Key(settled))
	}

	if gen != r.generation && !r.opts.lastSettleWins {
		current := r.generation
		var snap snapshot[R]
		if err == nil {
			// History and cache size changed even though results did not
			snap = r.snapshotLocked()
		}
		r.mu.Unlock()

		r.logger.Debug("Discarding stale lookup", "query", settled, "generation", gen, "current", current)
		r.notify(snap)
		return
	}

	r.state.Settled = settled
	r.state.Loading = false
	r.state.FromCache = false
	if err != nil {
		r.state.Results = nil
		r.state.Err = &LookupError{Query: settled, Err: err}
		r.state.Phase = PhaseFailed
	} else {
		r.state.Results = cloneResults(results)
		r.state.Err = nil
		r.state.Phase = PhaseSucceeded
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("Lookup failed", "query", settled, "error", err)
	} else {
		r.logger.Debug("Lookup completed", "query", settled, "results", len(results))
	}
	r.notify(snap)
}

// call invokes the lookup, converting a panic into an error
func (r *Resolver[R]) call(query string) (results []R, err error) {
	defer func() {
		if p := recover(); p != nil {
			results = nil
			err = fmt.Errorf("%w: %v", ErrLookupPanicked, p)
		}
	}()
	return r.lookup(r.ctx, query)
}

// snapshotLocked bumps the sequence number and returns a copy of the state
// together with the observers to notify
func (r *Resolver[R]) snapshotLocked() snapshot[R] {
	r.state.Seq++
	observers := make([]func(State[R]), 0, len(r.observers))
	for _, fn := range r.observers {
		observers = append(observers, fn)
	}
	return snapshot[R]{state: r.copyLocked(), observers: observers}
}

func (r *Resolver[R]) copyLocked() State[R] {
	s := r.state
	s.Results = cloneResults(r.state.Results)
	s.History = r.history.List()
	s.CacheSize = r.cache.Size()
	return s
}

func (r *Resolver[R]) notify(snap snapshot[R]) {
	for _, fn := range snap.observers {
		fn(snap.state)
	}
}

type snapshot[R any] struct {
	state     State[R]
	observers []func(State[R])
}

func cloneResults[R any](results []R) []R {
	if results == nil {
		return nil
	}
	out := make([]R, len(results))
	copy(out, results)
	return out
}
