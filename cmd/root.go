package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hsbacot/livesearch/client"
	"github.com/hsbacot/livesearch/config"
	"github.com/hsbacot/livesearch/resolver"
	"github.com/hsbacot/livesearch/ui"
)

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags shared by every sub-command
type globalOptions struct {
	configPath    string
	verbose       bool
	debounce      time.Duration
	historyLimit  int
	caseSensitive bool
	offline       bool
}

// app is the wiring every sub-command starts from
type app struct {
	cfg    *config.Config
	logger *log.Logger
	source client.Source
}

// New builds the livesearch command tree
func New() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "livesearch [library-name]",
		Short: "Search context7.com libraries as you type",
		Long: `livesearch finds libraries on context7.com and downloads their llms.txt.

Without arguments it opens a live search screen: keystrokes are debounced,
repeated queries are answered from an in-memory cache, and recent searches
are kept in a history. With an argument it behaves like "livesearch find".`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return runFind(cmd, opts, &findOptions{}, strings.Join(args, " "))
			}
			return runLive(cmd, opts, nil)
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath(), "path to the config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose mode - show detailed logs")
	flags.DurationVar(&opts.debounce, "debounce", resolver.DefaultDebounce, "how long a query must stay unchanged before it is searched")
	flags.IntVar(&opts.historyLimit, "history-limit", resolver.DefaultHistoryLimit, "number of recent searches to keep")
	flags.BoolVar(&opts.caseSensitive, "case-sensitive", false, "treat queries differing in case as different cache entries")
	flags.BoolVar(&opts.offline, "offline", false, "search a built-in demo catalog instead of context7.com")

	cmd.AddCommand(newFindCommand(opts))
	cmd.AddCommand(newLiveCommand(opts))
	cmd.AddCommand(newReplCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))
	return cmd
}

// loadConfig reads the config file and applies flags the user set explicitly
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("debounce") {
		cfg.DebounceMS = int(o.debounce / time.Millisecond)
	}
	if flags.Changed("history-limit") {
		cfg.HistoryLimit = o.historyLimit
	}
	if flags.Changed("case-sensitive") {
		cfg.CaseSensitive = o.caseSensitive
	}
	if flags.Changed("offline") {
		cfg.Offline = o.offline
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// setup loads the config and builds the logger and library source
func (o *globalOptions) setup(cmd *cobra.Command) (*app, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := ui.InitLogger(cmd.ErrOrStderr(), o.verbose)
	logger.Debug("Loaded config", "path", o.configPath, "debounce", cfg.Debounce(), "history_limit", cfg.HistoryLimit, "offline", cfg.Offline)

	return &app{
		cfg:    cfg,
		logger: logger,
		source: cfg.Source(),
	}, nil
}

// newResolver builds a resolver over the app's source. The caller closes it.
func (a *app) newResolver(logger *log.Logger) *resolver.Resolver[client.Library] {
	if logger == nil {
		logger = a.logger
	}
	opts := append(a.cfg.ResolverOptions(), resolver.WithLogger(logger))
	return resolver.New(a.source.SearchLibraries, opts...)
}
