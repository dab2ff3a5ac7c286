package resolver

// Phase is the position of the resolver in a resolution cycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseResolving
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolving:
		return "resolving"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of everything a presentation layer can observe
type State[R any] struct {
	// Query is the raw query as last set
	Query string
	// Settled is the debounced query the current results belong to
	Settled string

	Results   []R
	Loading   bool
	Err       error
	Phase     Phase
	FromCache bool

	History   []string
	CacheSize int

	// Seq increases with every transition. Consumers receiving snapshots
	// asynchronously drop any with a Seq lower than one already seen.
	Seq uint64
}

// ErrorText returns the user-facing error description, or "" when the last
// cycle did not fail
func (s State[R]) ErrorText() string {
	if s.Err == nil {
		return ""
	}
	return describe(s.Err)
}

// Active reports whether a non-empty query has settled
func (s State[R]) Active() bool {
	return s.Phase != PhaseIdle
}
