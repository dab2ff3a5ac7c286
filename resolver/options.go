package resolver

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hsbacot/livesearch/debounce"
	"github.com/hsbacot/livesearch/history"
)

// Defaults for a resolver built without options
const (
	DefaultDebounce     = 300 * time.Millisecond
	DefaultHistoryLimit = history.DefaultLimit
)

// Option configures a Resolver
type Option func(*options)

type options struct {
	debounce       time.Duration
	historyLimit   int
	caseSensitive  bool
	clock          debounce.Clock
	logger         *log.Logger
	lastSettleWins bool
}

func defaultOptions() options {
	return options{
		debounce:     DefaultDebounce,
		historyLimit: DefaultHistoryLimit,
		clock:        debounce.RealClock{},
		logger:       log.New(io.Discard),
	}
}

// WithDebounce sets how long a query must stay unchanged before it resolves
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.debounce = d
		}
	}
}

// WithHistoryLimit sets the number of distinct queries kept in history
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.historyLimit = n
		}
	}
}

// WithCaseSensitive makes cache keys keep their case
func WithCaseSensitive(sensitive bool) Option {
	return func(o *options) {
		o.caseSensitive = sensitive
	}
}

// WithClock replaces the clock driving the debounce timer
func WithClock(clock debounce.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger used for cache and lookup events
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLastSettleWins lets every completed lookup overwrite the state, even
// when a newer query has settled since it started. Without it, completions
// from superseded cycles are discarded.
func WithLastSettleWins() Option {
	return func(o *options) {
		o.lastSettleWins = true
	}
}
