package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hsbacot/livesearch/client"
	"github.com/hsbacot/livesearch/resolver"
)

type replOptions struct {
	noPrompt bool
}

func newReplCommand(global *globalOptions) *cobra.Command {
	opts := &replOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Search line by line from standard input",
		Long: `Read queries from standard input, one per line, and print the results.

Lines starting with ':' are commands:
  :history   show recent searches
  :stats     show cache statistics (":stats json" for JSON)
  :cache     list cached queries
  :clear     clear the cache and the search history
  :reset     clear the current results
  :help      show this help
  :quit      exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := global.setup(cmd)
			if err != nil {
				return err
			}

			r := a.newResolver(nil)
			defer r.Close()

			return runRepl(cmd.InOrStdin(), cmd.OutOrStdout(), r, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noPrompt, "no-prompt", false, "do not print a prompt before each line")
	return cmd
}

func runRepl(in io.Reader, out io.Writer, r *resolver.Resolver[client.Library], opts *replOptions) error {
	scanner := bufio.NewScanner(in)
	for {
		if !opts.noPrompt {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		if !strings.HasPrefix(strings.TrimSpace(line), ":") {
			handleQuery(out, r, line)
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case ":quit", ":q", ":exit":
			return nil
		case ":history":
			handleHistory(out, r)
		case ":stats":
			if err := handleStats(out, r, len(fields) > 1 && fields[1] == "json"); err != nil {
				return err
			}
		case ":cache":
			handleCache(out, r)
		case ":clear":
			r.ClearCache()
			fmt.Fprintln(out, "✓ Cleared cache and history")
		case ":reset":
			r.ClearResults()
			fmt.Fprintln(out, "✓ Cleared results")
		case ":help":
			fmt.Fprintln(out, "Commands: :history :stats [json] :cache :clear :reset :help :quit")
		default:
			fmt.Fprintf(out, "Unknown command %s (try :help)\n", fields[0])
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

// handleQuery settles a line right away; there are no keystrokes to coalesce
func handleQuery(out io.Writer, r *resolver.Resolver[client.Library], line string) {
	r.SetQuery(line)
	r.Flush()
	r.Wait()
	printState(out, r.State())
}

func handleHistory(out io.Writer, r *resolver.Resolver[client.Library]) {
	history := r.History()
	if len(history) == 0 {
		fmt.Fprintln(out, "No searches yet")
		return
	}

	printHeader(out, "Recent Searches")
	for i, query := range history {
		fmt.Fprintf(out, "%2d. %s\n", i+1, query)
	}
}

type statsJSON struct {
	Entries  int      `json:"entries"`
	Results  int      `json:"results"`
	Hits     uint64   `json:"hits"`
	Misses   uint64   `json:"misses"`
	HitRatio float64  `json:"hit_ratio"`
	History  []string `json:"history"`
}

func handleStats(out io.Writer, r *resolver.Resolver[client.Library], asJSON bool) error {
	stats := r.CacheStats()
	history := r.History()

	if asJSON {
		return printJSON(out, statsJSON{
			Entries:  stats.Entries,
			Results:  stats.Results,
			Hits:     stats.Hits,
			Misses:   stats.Misses,
			HitRatio: stats.HitRatio(),
			History:  history,
		})
	}

	printHeader(out, "Cache Statistics")
	fmt.Fprintf(out, "Cached queries:  %d\n", stats.Entries)
	fmt.Fprintf(out, "Cached results:  %d\n", stats.Results)
	fmt.Fprintf(out, "Hits / misses:   %d / %d\n", stats.Hits, stats.Misses)
	fmt.Fprintf(out, "Hit ratio:       %s\n", formatRatio(stats.HitRatio()))
	fmt.Fprintf(out, "History:         %d searches\n", len(history))
	return nil
}

func handleCache(out io.Writer, r *resolver.Resolver[client.Library]) {
	queries := r.CachedQueries()
	if len(queries) == 0 {
		fmt.Fprintln(out, "Cache is empty")
		return
	}

	printHeader(out, "Cached Queries")
	for _, query := range queries {
		fmt.Fprintf(out, "  %s\n", query)
	}
}
