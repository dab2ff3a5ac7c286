package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/hsbacot/livesearch/client"
)

type libraryItem struct {
	lib client.Library
}

func (i libraryItem) Title() string {
	// Primary line: Title + Stars + Trust Score
	vip := ""
	if i.lib.VIP {
		vip = " ✨"
	}
	return fmt.Sprintf("%s  ⭐ %s  🏆 %.1f%s",
		i.lib.Title, humanize.Comma(int64(i.lib.Stars)), i.lib.TrustScore, vip)
}

func (i libraryItem) Description() string {
	// Secondary line: Org + Updated + Tokens
	desc := fmt.Sprintf("@%s • %s • 🔢 %s tokens",
		extractOrg(i.lib.ID), formatDate(i.lib.LastUpdateDate), humanize.Comma(int64(i.lib.TotalTokens)))

	if i.lib.Description != "" {
		desc += "\n" + wrapText(i.lib.Description, 70)
	}
	return desc
}

func (i libraryItem) FilterValue() string {
	return i.lib.Title + " " + i.lib.ID
}

type sortMode int

const (
	sortByRelevance sortMode = iota
	sortByStars
	sortByTrust
	sortByUpdated
	sortByTokens
	sortModeCount
)

var sortLabels = []string{"Relevance", "Stars", "Trust", "Updated", "Tokens"}

func (s sortMode) String() string {
	if s < 0 || s >= sortModeCount {
		return "Unknown"
	}
	return sortLabels[s]
}

// resultsModel shows the libraries of the current state as a list
type resultsModel struct {
	list      list.Model
	libraries []client.Library
	sortMode  sortMode
}

func newResultsModel(width, height int) resultsModel {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(1)
	delegate.SetHeight(3)

	l := list.New(nil, delegate, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false) // the live query is the filter
	l.SetShowHelp(false)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		MarginLeft(2)

	return resultsModel{list: l}
}

// setLibraries replaces the shown libraries, keeping the sort mode
func (m resultsModel) setLibraries(libraries []client.Library) resultsModel {
	m.libraries = append([]client.Library(nil), libraries...)
	return m.resort()
}

func (m resultsModel) cycleSort() resultsModel {
	m.sortMode = (m.sortMode + 1) % sortModeCount
	return m.resort()
}

func (m resultsModel) resort() resultsModel {
	sortLibraries(m.libraries, m.sortMode)

	items := make([]list.Item, len(m.libraries))
	for i, lib := range m.libraries {
		items[i] = libraryItem{lib: lib}
	}
	m.list.SetItems(items)
	m.list.Select(0)
	return m
}

func (m resultsModel) selected() (client.Library, bool) {
	item, ok := m.list.SelectedItem().(libraryItem)
	if !ok {
		return client.Library{}, false
	}
	return item.lib, true
}

func (m resultsModel) setSize(width, height int) resultsModel {
	m.list.SetSize(width, height)
	return m
}

func (m resultsModel) Update(msg tea.Msg) (resultsModel, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m resultsModel) View() string {
	if len(m.libraries) == 0 {
		return ""
	}
	return m.list.View()
}

// Sorting functions

func sortLibraries(libs []client.Library, mode sortMode) {
	switch mode {
	case sortByStars:
		sort.SliceStable(libs, func(i, j int) bool {
			return libs[i].Stars > libs[j].Stars
		})
	case sortByTrust:
		sort.SliceStable(libs, func(i, j int) bool {
			return libs[i].TrustScore > libs[j].TrustScore
		})
	case sortByUpdated:
		sort.SliceStable(libs, func(i, j int) bool {
			ti, _ := time.Parse(time.RFC3339, libs[i].LastUpdateDate)
			tj, _ := time.Parse(time.RFC3339, libs[j].LastUpdateDate)
			return ti.After(tj)
		})
	case sortByTokens:
		sort.SliceStable(libs, func(i, j int) bool {
			return libs[i].TotalTokens > libs[j].TotalTokens
		})
	case sortByRelevance:
		sort.SliceStable(libs, func(i, j int) bool {
			return libs[i].Score > libs[j].Score
		})
	}
}

// Formatting helper functions

func formatDate(dateStr string) string {
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return dateStr
	}
	return humanize.Time(t)
}

func extractOrg(id string) string {
	parts := strings.Split(id, "/")
	if len(parts) >= 2 {
		return parts[1] // e.g. "/remix-run/react-router" -> "remix-run"
	}
	return ""
}

func wrapText(text string, width int) string {
	if len(text) <= width {
		return text
	}

	words := strings.Fields(text)
	var lines []string
	var currentLine string

	for _, word := range words {
		if len(currentLine)+len(word)+1 <= width {
			if currentLine != "" {
				currentLine += " "
			}
			currentLine += word
		} else {
			if currentLine != "" {
				lines = append(lines, currentLine)
			}
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	// Only the first line fits under the title
	if len(lines) > 1 {
		return lines[0] + "..."
	}
	return strings.Join(lines, "\n")
}
