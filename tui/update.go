package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hsbacot/livesearch/client"
)

// ErrCancelled is reported when the user quits without picking a library
var ErrCancelled = errors.New("cancelled")

const fetchTimeout = time.Minute

// Init initializes the model
func (m Model) Init() tea.Cmd {
	if q := m.input.Value(); q != "" {
		m.resolver.SetQuery(q)
	}
	return tea.Batch(
		m.spinner.Tick,
		m.feed.next(),
		textinput.Blink,
	)
}

// Update handles messages and state transitions
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-6, 10)
		m.results = m.results.setSize(msg.Width, max(msg.Height-8, 5))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateMsg:
		if msg.state.Seq > m.state.Seq {
			m.applyState(msg)
		}
		return m, m.feed.next()

	case fetchCompleteMsg:
		m.fetching = false
		if msg.err != nil {
			m.err = msg.err
			m.logger.Error("Fetch failed", "library", msg.library.ID, "error", msg.err)
			cmd := m.quit()
			return m, cmd
		}

		lib := msg.library
		m.selected = &lib
		m.content = msg.content
		m.logger.Info("Fetched llms.txt", "library", lib.ID, "bytes", len(msg.content))
		cmd := m.quit()
		return m, cmd
	}

	return m, nil
}

func (m *Model) applyState(msg stateMsg) {
	m.state = msg.state
	m.results = m.results.setLibraries(msg.state.Results)
	if len(msg.state.Results) == 0 && m.focus == focusResults {
		m.focusInput()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.err = ErrCancelled
		cmd := m.quit()
		return m, cmd
	case "ctrl+l":
		m.resolver.ClearCache()
		return m, nil
	case "ctrl+t":
		m.showHistory = !m.showHistory
		return m, nil
	case "ctrl+p":
		// Recall the most recent query that is not the current one
		for _, q := range m.state.History {
			if q != m.input.Value() {
				m.input.SetValue(q)
				m.input.CursorEnd()
				m.resolver.SetQuery(q)
				m.resolver.Flush()
				break
			}
		}
		return m, nil
	}

	// Input is locked while llms.txt downloads
	if m.fetching {
		return m, nil
	}

	if m.focus == focusResults {
		return m.handleResultsKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if lib, ok := m.results.selected(); ok {
			m.fetching = true
			return m, m.fetchContent(lib)
		}
		return m, nil
	case "s":
		m.results = m.results.cycleSort()
		return m, nil
	case "tab", "esc":
		cmd := m.focusInput()
		return m, cmd
	case "q":
		m.err = ErrCancelled
		cmd := m.quit()
		return m, cmd
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.SetValue("")
		m.resolver.ClearResults()
		return m, nil
	case "enter":
		// Skip the rest of the debounce delay, or move on to the results
		if !m.resolver.Flush() && len(m.state.Results) > 0 {
			m.focusResults()
		}
		return m, nil
	case "tab", "down":
		if len(m.state.Results) > 0 {
			m.focusResults()
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.resolver.SetQuery(after)
	}
	return m, cmd
}

func (m *Model) focusResults() {
	m.focus = focusResults
	m.input.Blur()
}

func (m *Model) focusInput() tea.Cmd {
	m.focus = focusInput
	return m.input.Focus()
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.feed.close()
	return tea.Quit
}

// Command functions (run async)

func (m Model) fetchContent(lib client.Library) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		if source == nil {
			return fetchCompleteMsg{library: lib, err: errors.New("no source configured")}
		}

		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		content, err := source.FetchLLMsTxt(ctx, lib.ID)
		return fetchCompleteMsg{
			library: lib,
			content: content,
			err:     err,
		}
	}
}
