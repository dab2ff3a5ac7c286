package debounce

import (
	"sync"
	"time"
)

// Gate delays propagation of a fast-changing value until it has been stable
// for the configured delay. Every Set restarts the window; there is no
// maximum wait.
type Gate[T any] struct {
	delay    time.Duration
	clock    Clock
	onSettle func(T)

	mu         sync.Mutex
	timer      Timer
	seq        uint64 // bumped on every arm, cancel and flush
	pending    T
	armed      bool
	settled    T
	hasSettled bool
	stopped    bool
}

// New creates a gate that calls onSettle with the latest value once it has
// been stable for delay. A nil clock uses the real clock.
func New[T any](delay time.Duration, clock Clock, onSettle func(T)) *Gate[T] {
	if clock == nil {
		clock = RealClock{}
	}
	return &Gate[T]{
		delay:    delay,
		clock:    clock,
		onSettle: onSettle,
	}
}

// Set records a new input value and restarts the delay window
func (g *Gate[T]) Set(value T) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}

	// Cancel the previous propagation
	if g.timer != nil {
		g.timer.Stop()
	}

	g.seq++
	seq := g.seq
	g.pending = value
	g.armed = true
	g.timer = g.clock.AfterFunc(g.delay, func() { g.fire(seq) })
}

// Flush propagates a pending value immediately. It reports whether a value
// was pending.
func (g *Gate[T]) Flush() bool {
	g.mu.Lock()
	if g.stopped || !g.armed {
		g.mu.Unlock()
		return false
	}
	value := g.settleLocked()
	g.mu.Unlock()

	g.onSettle(value)
	return true
}

// Cancel drops a pending value without propagating it. The gate stays usable.
func (g *Gate[T]) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disarmLocked()
}

// Stop cancels any pending propagation and disables the gate. Later calls to
// Set are ignored.
func (g *Gate[T]) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disarmLocked()
	g.stopped = true
}

// Pending reports whether a value is waiting for the delay to elapse
func (g *Gate[T]) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed
}

// Settled returns the last value that propagated
func (g *Gate[T]) Settled() (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.settled, g.hasSettled
}

// Delay returns the configured stability window
func (g *Gate[T]) Delay() time.Duration {
	return g.delay
}

func (g *Gate[T]) fire(seq uint64) {
	g.mu.Lock()
	// Superseded, flushed or stopped since this timer was armed
	if g.stopped || !g.armed || seq != g.seq {
		g.mu.Unlock()
		return
	}
	value := g.settleLocked()
	g.mu.Unlock()

	g.onSettle(value)
}

func (g *Gate[T]) settleLocked() T {
	value := g.pending
	g.disarmLocked()
	g.settled = value
	g.hasSettled = true
	return value
}

func (g *Gate[T]) disarmLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	var zero T
	g.pending = zero
	g.armed = false
	g.seq++
}
