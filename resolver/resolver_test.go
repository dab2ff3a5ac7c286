package resolver_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsbacot/livesearch/debounce/debouncetest"
	"github.com/hsbacot/livesearch/resolver"
)

type item struct {
	ID    int
	Title string
}

const debounceDelay = 300 * time.Millisecond

// fakeLookup answers from fixed tables. Queries with a gate block until the
// gate is closed or the context is cancelled.
type fakeLookup struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]item
	errs    map[string]error
	gates   map[string]chan struct{}
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		results: make(map[string][]item),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
	}
}

func (f *fakeLookup) lookup(ctx context.Context, query string) ([]item, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	gate := f.gates[query]
	results := f.results[query]
	err := f.errs[query]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []item{{ID: len(query), Title: query}}
	}
	return results, nil
}

func (f *fakeLookup) block(query string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gates[query] = gate
	return gate
}

func (f *fakeLookup) callList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type stateRecorder struct {
	mu     sync.Mutex
	states []resolver.State[item]
}

func (r *stateRecorder) observe(s resolver.State[item]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) all() []resolver.State[item] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]resolver.State[item](nil), r.states...)
}

func (r *stateRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = nil
}

func newResolver(t *testing.T, f *fakeLookup, opts ...resolver.Option) (*resolver.Resolver[item], *debouncetest.Clock) {
	t.Helper()
	clock := debouncetest.NewClock()
	opts = append([]resolver.Option{
		resolver.WithClock(clock),
		resolver.WithDebounce(debounceDelay),
	}, opts...)
	r := resolver.New(f.lookup, opts...)
	t.Cleanup(r.Close)
	return r, clock
}

// settle types a query, lets the debounce window pass and waits for the
// lookup, if any, to finish
func settle(r *resolver.Resolver[item], clock *debouncetest.Clock, query string) {
	r.SetQuery(query)
	clock.Advance(debounceDelay)
	r.Wait()
}

func TestResolver_DebounceCoalescesKeystrokes(t *testing.T) {
	f := newFakeLookup()
	r, clock := newResolver(t, f, resolver.WithHistoryLimit(10))

	r.SetQuery("a")
	clock.Advance(50 * time.Millisecond)
	r.SetQuery("ab")
	clock.Advance(50 * time.Millisecond)
	r.SetQuery("abc")
	clock.Advance(250 * time.Millisecond)
	assert.Empty(t, f.callList(), "nothing settles until 300ms after the last keystroke")
	assert.True(t, r.Pending())

	clock.Advance(50 * time.Millisecond)
	r.Wait()

	assert.Equal(t, []string{"abc"}, f.callList())
	assert.Equal(t, "abc", r.State().Query)
	assert.Equal(t, []string{"abc"}, r.History())
}

func TestResolver_MissThenHit(t *testing.T) {
	f := newFakeLookup()
	f.results["x"] = []item{{ID: 1, Title: "X"}}
	r, clock := newResolver(t, f)

	rec := &stateRecorder{}
	r.Subscribe(rec.observe)

	settle(r, clock, "x")

	var sawLoading bool
	for _, s := range rec.all() {
		if s.Loading {
			sawLoading = true
			assert.Equal(t, resolver.PhaseResolving, s.Phase)
			assert.Nil(t, s.Results, "results and loading never overlap")
			assert.Nil(t, s.Err)
		}
	}
	assert.True(t, sawLoading, "a miss goes through a loading state")

	state := r.State()
	assert.False(t, state.Loading)
	assert.Equal(t, resolver.PhaseSucceeded, state.Phase)
	assert.Equal(t, []item{{ID: 1, Title: "X"}}, state.Results)
	assert.False(t, state.FromCache)
	assert.Equal(t, 1, state.CacheSize)
	assert.Equal(t, 1, r.CacheSize())

	// Same query again: answered from cache as soon as the debounce settles
	rec.reset()
	r.SetQuery("x")
	clock.Advance(debounceDelay)

	for _, s := range rec.all() {
		assert.False(t, s.Loading, "a cache hit never shows a loading state")
	}
	state = r.State()
	assert.Equal(t, []item{{ID: 1, Title: "X"}}, state.Results)
	assert.True(t, state.FromCache)
	assert.Equal(t, []string{"x"}, f.callList(), "lookup must not run again")
}

func TestResolver_CacheHitDoesNotTouchHistory(t *testing.T) {
	f := newFakeLookup()
	r, clock := newResolver(t, f)

	settle(r, clock, "react")
	settle(r, clock, "vue")
	assert.Equal(t, []string{"vue", "react"}, r.History())

	settle(r, clock, "react")
	assert.Equal(t, []string{"react", "vue"}, f.callList())
	assert.Equal(t, []string{"vue", "react"}, r.History(), "hits are not recorded as fresh lookups")
}

func TestResolver_CacheKeyNormalization(t *testing.T) {
	f := newFakeLookup()
	r, clock := newResolver(t, f)

	settle(r, clock, " React ")
	settle(r, clock, "react")

	assert.Equal(t, []string{" React "}, f.callList())
	assert.Equal(t, 1, r.CacheSize())
	assert.Equal(t, []string{"react"}, r.History())
	assert.Equal(t, []string{"react"}, r.CachedQueries())
}

func TestResolver_CaseSensitiveKeys(t *testing.T) {
	f := newFakeLookup()
	r, clock := newResolver(t, f, resolver.WithCaseSensitive(true))

	settle(r, clock, "React")
	settle(r, clock, "react")

	assert.Equal(t, []string{"React", "react"}, f.callList())
	assert.Equal(t, 2, r.CacheSize())
}

func TestResolver_HistoryBound(t *testing.T) {
	f := newFakeLookup()
	r, clock := newResolver(t, f, resolver.WithHistoryLimit(10))

	for i := 1; i <= 11; i++ {
		settle(r, clock, fmt.Sprintf("query-%d", i))
	}

	history := r.History()
	require.Len(t, history, 10)
	assert.Equal(t, "query-11", history[0])
	assert.Equal(t, "query-2", history[9])
	assert.NotContains(t, history, "query-1")
	assert.Equal(t, 11, r.CacheSize(), "the cache is not bounded by the history limit")
}

func TestResolver_EmptyQueryShortCircuits(t *testing.T) {
	f := newFakeLookup()
	f.errs["bad"] = errors.New("boom")
	r, clock := newResolver(t, f)

	settle(r, clock, "ok")
	require.NotEmpty(t, r.State().Results)

	// Clearing happens immediately, without waiting for the debounce
	r.SetQuery("   ")
	state := r.State()
	assert.Nil(t, state.Results)
	assert.Nil(t, state.Err)
	assert.Equal(t, resolver.PhaseIdle, state.Phase)
	assert.False(t, state.Active())

	settle(r, clock, "bad")
	require.Error(t, r.State().Err)
	r.SetQuery("")
	assert.Nil(t, r.State().Err)

	clock.Advance(time.Second)
	r.Wait()
	assert.Equal(t, []string{"ok", "bad"}, f.callList(), "empty queries never reach lookup")
	assert.Equal(t, []string{"ok"}, r.History())
	assert.Equal(t, 1, r.CacheSize())
}

func TestResolver_EmptyQueryDropsPendingKeystrokes(t *testing.T) {
	f := newFakeLookup()
	r, clock := newResolver(t, f)

	r.SetQuery("rea")
	clock.Advance(100 * time.Millisecond)
	r.SetQuery("")
	clock.Advance(time.Second)
	r.Wait()

	assert.Empty(t, f.callList())
}

func TestResolver_FailureIsolation(t *testing.T) {
	f := newFakeLookup()
	lookupErr := errors.New("network\n unreachable")
	f.errs["broken"] = lookupErr
	r, clock := newResolver(t, f)

	settle(r, clock, "fine")
	before := r.State()

	settle(r, clock, "broken")
	state := r.State()

	require.Error(t, state.Err)
	assert.ErrorIs(t, state.Err, lookupErr)
	var le *resolver.LookupError
	require.ErrorAs(t, state.Err, &le)
	assert.Equal(t, "broken", le.Query)
	assert.Equal(t, "network unreachable", state.ErrorText())
	assert.Contains(t, state.Err.Error(), `"broken"`)

	assert.False(t, state.Loading)
	assert.Nil(t, state.Results)
	assert.Equal(t, resolver.PhaseFailed, state.Phase)
	assert.Equal(t, before.CacheSize, state.CacheSize)
	assert.Equal(t, before.History, state.History)

	// No negative caching: the next attempt calls lookup again
	settle(r, clock, "fine")
	settle(r, clock, "broken")
	assert.Equal(t, []string{"fine", "broken", "broken"}, f.callList())
}

func TestResolver_SuccessClearsPreviousError(t *testing.T) {
	f := newFakeLookup()
	f.errs["broken"] = errors.New("boom")
	r, clock := newResolver(t, f)

	settle(r, clock, "broken")
	require.Error(t, r.State().Err)

	settle(r, clock, "fine")
	state := r.State()
	assert.NoError(t, state.Err)
	assert.Empty(t, state.ErrorText())
	assert.NotEmpty(t, state.Results)
}

func TestResolver_LookupPanicBecomesError(t *testing.T) {
	clock := debouncetest.NewClock()
	r := resolver.New(func(ctx context.Context, q string) ([]item, error) {
		panic("kaboom")
	}, resolver.WithClock(clock))
	defer r.Close()

	r.SetQuery("q")
	clock.Advance(resolver.DefaultDebounce)
	r.Wait()

	state := r.State()
	assert.ErrorIs(t, state.Err, resolver.ErrLookupPanicked)
	assert.Contains(t, state.ErrorText(), "kaboom")
	assert.Equal(t, 0, r.CacheSize())
}

func TestResolver_StaleCompletionDiscarded(t *testing.T) {
	f := newFakeLookup()
	slow := f.block("slow")
	fast := f.block("fast")
	r, clock := newResolver(t, f)

	r.SetQuery("slow")
	clock.Advance(debounceDelay)
	r.SetQuery("fast")
	clock.Advance(debounceDelay)
	require.Eventually(t, func() bool { return len(f.callList()) == 2 }, time.Second, time.Millisecond)

	close(fast)
	require.Eventually(t, func() bool { return !r.State().Loading }, time.Second, time.Millisecond)
	assert.Equal(t, "fast", r.State().Settled)

	close(slow)
	r.Wait()

	state := r.State()
	assert.Equal(t, "fast", state.Settled)
	assert.Equal(t, []item{{ID: 4, Title: "fast"}}, state.Results)

	// The slow result was still valid for its own query
	assert.Equal(t, 2, state.CacheSize)
	assert.ElementsMatch(t, []string{"slow", "fast"}, state.History)
}

func TestResolver_LastSettleWins(t *testing.T) {
	f := newFakeLookup()
	slow := f.block("slow")
	fast := f.block("fast")
	r, clock := newResolver(t, f, resolver.WithLastSettleWins())

	r.SetQuery("slow")
	clock.Advance(debounceDelay)
	r.SetQuery("fast")
	clock.Advance(debounceDelay)
	require.Eventually(t, func() bool { return len(f.callList()) == 2 }, time.Second, time.Millisecond)

	close(fast)
	require.Eventually(t, func() bool { return !r.State().Loading }, time.Second, time.Millisecond)
	close(slow)
	r.Wait()

	state := r.State()
	assert.Equal(t, "fast", state.Query)
	assert.Equal(t, "slow", state.Settled, "the later completion overwrites the state")
	assert.Equal(t, []item{{ID: 4, Title: "slow"}}, state.Results)
}

func TestResolver_ClearCache(t *testing.T) {
	f := newFakeLookup()
	r, clock := newResolver(t, f)

	settle(r, clock, "a")
	settle(r, clock, "b")
	require.Equal(t, 2, r.CacheSize())

	r.ClearCache()
	assert.Equal(t, 0, r.CacheSize())
	assert.Empty(t, r.History())
	assert.Equal(t, "b", r.State().Query, "clearing the cache keeps the current results")

	settle(r, clock, "a")
	assert.Equal(t, []string{"a", "b", "a"}, f.callList())
}

func TestResolver_ClearResults(t *testing.T) {
	f := newFakeLookup()
	f.errs["bad"] = errors.New("boom")
	r, clock := newResolver(t, f)

	settle(r, clock, "good")
	settle(r, clock, "bad")
	r.ClearResults()

	state := r.State()
	assert.Empty(t, state.Query)
	assert.Empty(t, state.Settled)
	assert.Nil(t, state.Results)
	assert.Nil(t, state.Err)
	assert.Equal(t, resolver.PhaseIdle, state.Phase)
	assert.Equal(t, 1, state.CacheSize)
	assert.Equal(t, []string{"good"}, state.History)
}

func TestResolver_ClearResultsAbandonsPendingWork(t *testing.T) {
	f := newFakeLookup()
	gate := f.block("inflight")
	r, clock := newResolver(t, f)

	r.SetQuery("inflight")
	clock.Advance(debounceDelay)
	require.True(t, r.State().Loading)

	r.SetQuery("typed")
	r.ClearResults()
	assert.False(t, r.State().Loading)

	clock.Advance(time.Second)
	close(gate)
	r.Wait()

	state := r.State()
	assert.Nil(t, state.Results, "a lookup abandoned by ClearResults must not repopulate results")
	assert.Equal(t, []string{"inflight"}, f.callList(), "the pending keystroke was dropped")
}

func TestResolver_Flush(t *testing.T) {
	f := newFakeLookup()
	r, _ := newResolver(t, f)

	assert.False(t, r.Flush())

	r.SetQuery("now")
	require.True(t, r.Flush())
	r.Wait()

	assert.Equal(t, []string{"now"}, f.callList())
	assert.Equal(t, "now", r.State().Settled)
}

func TestResolver_CloseSuppressesTimerAndInflight(t *testing.T) {
	f := newFakeLookup()
	gate := f.block("inflight")
	r, clock := newResolver(t, f)

	r.SetQuery("inflight")
	clock.Advance(debounceDelay)
	require.Eventually(t, func() bool { return len(f.callList()) == 1 }, time.Second, time.Millisecond)

	r.SetQuery("pending")
	r.Close()
	assert.Equal(t, 0, clock.Pending(), "the debounce timer is cancelled on close")

	// The lookup sees its context cancelled and its outcome is dropped
	r.Wait()
	close(gate)
	state := r.State()
	assert.True(t, state.Loading)
	assert.NoError(t, state.Err)
	assert.Equal(t, 0, r.CacheSize())

	// Closed resolvers ignore input
	r.SetQuery("after")
	clock.Advance(time.Second)
	r.Wait()
	assert.Equal(t, []string{"inflight"}, f.callList())
}

func TestResolver_SnapshotsAreOrdered(t *testing.T) {
	f := newFakeLookup()
	r, clock := newResolver(t, f)

	rec := &stateRecorder{}
	unsubscribe := r.Subscribe(rec.observe)

	settle(r, clock, "one")
	settle(r, clock, "two")
	settle(r, clock, "one")

	states := rec.all()
	require.NotEmpty(t, states)
	for i := 1; i < len(states); i++ {
		assert.Greater(t, states[i].Seq, states[i-1].Seq)
	}

	unsubscribe()
	before := len(rec.all())
	settle(r, clock, "three")
	assert.Len(t, rec.all(), before)
}

func TestResolver_ResultsAreCopies(t *testing.T) {
	f := newFakeLookup()
	f.results["q"] = []item{{ID: 1, Title: "original"}}
	r, clock := newResolver(t, f)

	settle(r, clock, "q")
	state := r.State()
	state.Results[0].Title = "mutated"

	assert.Equal(t, "original", r.State().Results[0].Title)
	settle(r, clock, "q")
	assert.Equal(t, "original", r.State().Results[0].Title)
}

func TestResolver_NilResultsCachedAsEmpty(t *testing.T) {
	clock := debouncetest.NewClock()
	calls := 0
	r := resolver.New(func(ctx context.Context, q string) ([]item, error) {
		calls++
		return nil, nil
	}, resolver.WithClock(clock), resolver.WithDebounce(0))
	defer r.Close()

	r.SetQuery("nothing")
	clock.Advance(0)
	r.Wait()
	r.SetQuery("nothing")
	clock.Advance(0)
	r.Wait()

	assert.Equal(t, 1, calls)
	assert.NotNil(t, r.State().Results)
	assert.Empty(t, r.State().Results)
}

func TestNew_NilLookupPanics(t *testing.T) {
	assert.Panics(t, func() { resolver.New[item](nil) })
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", resolver.PhaseIdle.String())
	assert.Equal(t, "resolving", resolver.PhaseResolving.String())
	assert.Equal(t, "succeeded", resolver.PhaseSucceeded.String())
	assert.Equal(t, "failed", resolver.PhaseFailed.String())
	assert.Equal(t, "unknown", resolver.Phase(42).String())
}
