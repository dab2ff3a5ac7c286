package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hsbacot/livesearch/client"
	"github.com/hsbacot/livesearch/ui"
)

// ErrNoLibraries is returned when a search settles without results
var ErrNoLibraries = errors.New("no libraries found")

type findOptions struct {
	interactive bool
	version     string
}

func newFindCommand(global *globalOptions) *cobra.Command {
	opts := &findOptions{}

	cmd := &cobra.Command{
		Use:   "find <library-name>",
		Short: "Search once and print the llms.txt of the best match",
		Example: `  livesearch find react-router
  livesearch find -i react
  livesearch find react --version v18.3.1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, global, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "show selection menu for multiple matches")
	cmd.Flags().StringVar(&opts.version, "version", "", "fetch a specific version of the library")
	return cmd
}

func runFind(cmd *cobra.Command, global *globalOptions, opts *findOptions, query string) error {
	a, err := global.setup(cmd)
	if err != nil {
		return err
	}
	logger := a.logger

	r := a.newResolver(nil)
	defer r.Close()

	// One-shot searches have no keystrokes to wait for
	logger.Info("Searching", "query", query, "offline", a.cfg.Offline)
	r.SetQuery(query)
	r.Flush()
	r.Wait()

	state := r.State()
	if state.Err != nil {
		logger.Error("Search failed", "error", state.ErrorText())
		return state.Err
	}

	results := state.Results
	logger.Debug("Search completed", "results", len(results))
	if len(results) == 0 {
		logger.Warn("No libraries found", "query", query)
		return ErrNoLibraries
	}

	var selectedLib *client.Library
	switch {
	case len(results) == 1:
		selectedLib = &results[0]
		logger.Info("Found library", "title", selectedLib.Title, "id", selectedLib.ID)
	case opts.interactive:
		logger.Info("Found multiple libraries", "count", len(results))
		selectedLib, err = ui.SelectLibrary("Multiple libraries found - choose one:", results)
		if err != nil {
			return fmt.Errorf("selection failed: %w", err)
		}
		logger.Info("Selected library", "title", selectedLib.Title, "id", selectedLib.ID)
	default:
		selectedLib = &results[0]
		logger.Info("Found multiple libraries, using first match", "title", selectedLib.Title, "id", selectedLib.ID)
		logger.Info("Use -i flag to select interactively")
	}

	libraryID := selectedLib.ID
	if opts.version != "" {
		libraryID = fmt.Sprintf("%s/%s", libraryID, opts.version)
	}

	logger.Info("Fetching llms.txt", "library", libraryID)
	content, err := a.source.FetchLLMsTxt(context.Background(), libraryID)
	if err != nil {
		logger.Error("Fetch failed", "library", libraryID, "error", err)
		return err
	}

	logger.Debug("Fetch completed", "bytes", len(content))
	fmt.Fprint(cmd.OutOrStdout(), content)
	return nil
}
