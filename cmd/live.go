package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hsbacot/livesearch/tui"
	"github.com/hsbacot/livesearch/ui"
)

func newLiveCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "live [initial-query]",
		Short: "Open the live search screen",
		Long: `Open the live search screen. Type to search; results appear once typing
pauses. Pick a library to print its llms.txt to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, global, args)
		},
	}
}

func runLive(cmd *cobra.Command, global *globalOptions, args []string) error {
	a, err := global.setup(cmd)
	if err != nil {
		return err
	}

	// The screen owns the terminal, so logs go to a file
	logPath := liveLogPath()
	fileLogger, closer, err := ui.InitFileLogger(logPath, global.verbose)
	if err != nil {
		return err
	}
	defer closer.Close()
	a.logger.Debug("Logging live session", "path", logPath)

	r := a.newResolver(fileLogger)
	defer r.Close()

	model := tui.NewModel(r, tui.Options{
		Source:       a.source,
		Logger:       fileLogger,
		InitialQuery: strings.Join(args, " "),
	})

	// Draw on stderr so stdout carries only the llms.txt content
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("live search failed: %w", err)
	}

	m, ok := final.(tui.Model)
	if !ok {
		return fmt.Errorf("unexpected model type %T", final)
	}
	if err := m.Err(); err != nil {
		if errors.Is(err, tui.ErrCancelled) {
			return nil
		}
		return err
	}

	if lib := m.Selected(); lib != nil {
		a.logger.Info("Success!", "library", lib.Title)
	}
	fmt.Fprint(cmd.OutOrStdout(), m.Content())
	return nil
}

func liveLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "livesearch", "live.log")
}
