package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hsbacot/livesearch/client"
	"github.com/hsbacot/livesearch/resolver"
)

// stateFeed hands resolver snapshots to the Bubble Tea loop. It keeps only
// the newest snapshot, so the observer never blocks and a burst of
// transitions collapses into one message.
type stateFeed struct {
	mu     sync.Mutex
	latest resolver.State[client.Library]
	has    bool

	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newStateFeed() *stateFeed {
	return &stateFeed{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// push is the resolver observer
func (f *stateFeed) push(s resolver.State[client.Library]) {
	f.mu.Lock()
	// Snapshots from different goroutines can arrive out of order
	if f.has && s.Seq <= f.latest.Seq {
		f.mu.Unlock()
		return
	}
	f.latest = s
	f.has = true
	f.mu.Unlock()

	select {
	case f.signal <- struct{}{}:
	default:
	}
}

// next waits for the next snapshot
func (f *stateFeed) next() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-f.signal:
		case <-f.done:
			return nil
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		return stateMsg{state: f.latest}
	}
}

func (f *stateFeed) close() {
	f.once.Do(func() { close(f.done) })
}
