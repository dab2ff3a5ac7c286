package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/hsbacot/livesearch/client"
	"github.com/hsbacot/livesearch/resolver"
)

// printHeader prints a styled header
func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("━", len([]rune(title))))
	fmt.Fprintln(w)
}

// printJSON marshals data to JSON and prints it
func printJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// confirmAction prompts the user for confirmation
func confirmAction(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s (y/N): ", prompt)
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// formatRatio renders a 0..1 ratio as a percentage
func formatRatio(ratio float64) string {
	return humanize.FormatFloat("#.#", ratio*100) + "%"
}

// printState renders a resolver snapshot the way the repl shows it
func printState(w io.Writer, state resolver.State[client.Library]) {
	switch state.Phase {
	case resolver.PhaseIdle:
		fmt.Fprintln(w, "(no active search)")
	case resolver.PhaseResolving:
		fmt.Fprintf(w, "Searching for '%s'...\n", state.Settled)
	case resolver.PhaseFailed:
		fmt.Fprintf(w, "✗ %s\n", state.ErrorText())
	case resolver.PhaseSucceeded:
		from := "context7.com"
		if state.FromCache {
			from = "cache"
		}
		if len(state.Results) == 0 {
			fmt.Fprintf(w, "No libraries found for '%s' (%s)\n", state.Settled, from)
			return
		}
		fmt.Fprintf(w, "✓ %d results for '%s' (%s)\n", len(state.Results), state.Settled, from)
		for i, lib := range state.Results {
			fmt.Fprintf(w, "%3d. %-24s %-32s ⭐ %s\n", i+1, lib.Title, lib.ID, humanize.Comma(int64(lib.Stars)))
		}
	}
}
