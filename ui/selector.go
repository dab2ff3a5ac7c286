package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/hsbacot/livesearch/client"
)

// ErrNothingToSelect is returned when there are no libraries to choose from
var ErrNothingToSelect = errors.New("no libraries to select from")

// SelectLibrary presents an interactive selection menu for choosing a library
func SelectLibrary(title string, libraries []client.Library) (*client.Library, error) {
	if len(libraries) == 0 {
		return nil, ErrNothingToSelect
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(LibraryOptions(libraries)...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	for i := range libraries {
		if libraries[i].ID == selected {
			return &libraries[i], nil
		}
	}

	return nil, errors.New("selection not found")
}

// LibraryOptions builds one select option per library, keyed by library ID
func LibraryOptions(libraries []client.Library) []huh.Option[string] {
	options := make([]huh.Option[string], len(libraries))
	for i, lib := range libraries {
		options[i] = huh.NewOption(LibraryLabel(lib), lib.ID)
	}
	return options
}

// LibraryLabel renders a one-line label for a library
func LibraryLabel(lib client.Library) string {
	label := lib.Title
	if lib.Description != "" {
		// Truncate long descriptions
		desc := lib.Description
		if len(desc) > 80 {
			desc = desc[:77] + "..."
		}
		label = fmt.Sprintf("%s - %s", lib.Title, desc)
	}
	if lib.Stars > 0 {
		label = fmt.Sprintf("%s ⭐ %s", label, humanize.Comma(int64(lib.Stars)))
	}
	return label
}
