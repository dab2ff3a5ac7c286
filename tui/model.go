package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/hsbacot/livesearch/client"
	"github.com/hsbacot/livesearch/resolver"
)

type focus int

const (
	focusInput focus = iota
	focusResults
)

// Options contains configuration for the Model
type Options struct {
	// Source fetches llms.txt for the chosen library
	Source client.Source
	Logger *log.Logger
	// InitialQuery is typed into the search box on start
	InitialQuery string
}

// Model is the Bubble Tea model for the live search screen
type Model struct {
	resolver *resolver.Resolver[client.Library]
	feed     *stateFeed
	source   client.Source
	logger   *log.Logger

	// Latest resolver snapshot
	state resolver.State[client.Library]

	// UI Components
	input   textinput.Model
	spinner spinner.Model
	results resultsModel

	focus       focus
	showHistory bool
	width       int
	height      int

	// Outcome
	fetching bool
	selected *client.Library
	content  string
	err      error
	quitting bool
}

// NewModel creates a live search model driven by r. The model subscribes to
// r; the caller still owns r and closes it after the program exits.
func NewModel(r *resolver.Resolver[client.Library], opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "type a library name"
	ti.Prompt = "🔍 "
	ti.CharLimit = 128
	ti.SetValue(opts.InitialQuery)
	ti.Focus()

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	feed := newStateFeed()
	r.Subscribe(feed.push)

	return Model{
		resolver: r,
		feed:     feed,
		source:   opts.Source,
		logger:   logger,
		state:    r.State(),
		input:    ti,
		spinner:  s,
		results:  newResultsModel(80, 20),
	}
}

// Err returns the error if one occurred
func (m Model) Err() error {
	return m.err
}

// Content returns the fetched llms.txt content
func (m Model) Content() string {
	return m.content
}

// Selected returns the library the user picked, if any
func (m Model) Selected() *client.Library {
	return m.selected
}

// State returns the last resolver snapshot the model rendered
func (m Model) State() resolver.State[client.Library] {
	return m.state
}
