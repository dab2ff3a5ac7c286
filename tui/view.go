package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hsbacot/livesearch/resolver"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).MarginLeft(2)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// View renders the search box, status line and results or history
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("Library Search") + "\n\n")
	b.WriteString("  " + m.input.View() + "\n")
	b.WriteString("  " + m.statusLine() + "\n\n")

	if m.showHistory {
		b.WriteString(m.historyView())
	} else {
		b.WriteString(m.results.View())
	}

	b.WriteString("\n" + dimStyle.Render(m.helpLine()) + "\n")
	return b.String()
}

func (m Model) statusLine() string {
	stats := dimStyle.Render(fmt.Sprintf("  cache: %d · history: %d", m.state.CacheSize, len(m.state.History)))

	switch {
	case m.fetching:
		lib := "library"
		if item, ok := m.results.selected(); ok {
			lib = item.Title
		}
		return fmt.Sprintf("%s Fetching llms.txt for %s...", spinnerStyle.Render(m.spinner.View()), lib)

	case m.state.Loading:
		return fmt.Sprintf("%s Searching for '%s'...", spinnerStyle.Render(m.spinner.View()), m.state.Settled) + stats

	case m.state.Err != nil:
		return errorStyle.Render("✗ "+m.state.ErrorText()) + stats

	case m.state.Phase == resolver.PhaseSucceeded:
		source := "context7.com"
		if m.state.FromCache {
			source = "cache"
		}
		line := fmt.Sprintf("✓ %d results for '%s' from %s", len(m.state.Results), m.state.Settled, source)
		if m.results.sortMode != sortByRelevance {
			line += fmt.Sprintf(" (sorted by %s)", m.results.sortMode)
		}
		return successStyle.Render(line) + stats

	default:
		return infoStyle.Render("Start typing to search") + stats
	}
}

func (m Model) historyView() string {
	if len(m.state.History) == 0 {
		return dimStyle.Render("  No searches yet") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent searches") + "\n")
	for i, q := range m.state.History {
		fmt.Fprintf(&b, "  %2d. %s\n", i+1, q)
	}
	return b.String()
}

func (m Model) helpLine() string {
	if m.focus == focusResults {
		return "  ↑/↓ move • enter fetch llms.txt • s sort • tab/esc back to search • q quit"
	}
	return "  enter search now • tab results • esc clear • ctrl+p recall • ctrl+t history • ctrl+l clear cache • ctrl+c quit"
}
