package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dsmmcken/lsc/internal/config"
	"github.com/dsmmcken/lsc/internal/discovery"
	"github.com/dsmmcken/lsc/internal/output"
	"github.com/dsmmcken/lsc/internal/platform"
	"github.com/dsmmcken/lsc/internal/tui"
)

var (
	discoverAttemptsFlag    int
	discoverRetryDelayFlag  int
	discoverInteractiveFlag bool
	discoverShowTokenFlag   bool
)

func newDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run the full credential-discovery pipeline",
		Long: `Locate the langd process, enumerate its listening ports, probe each
candidate in order, and print the verified credential bundle.

Examples:
  lsc discover
  lsc discover --json
  lsc discover --attempts 5 --retry-delay 500
  lsc discover --interactive`,
		Args: cobra.NoArgs,
		RunE: runDiscover,
	}

	flags := cmd.Flags()
	flags.IntVar(&discoverAttemptsFlag, "attempts", 0, "Max pipeline attempts (default 3)")
	flags.IntVar(&discoverRetryDelayFlag, "retry-delay", -1, "Delay between attempts in ms (default 2000)")
	flags.BoolVarP(&discoverInteractiveFlag, "interactive", "i", false, "Show live progress in a TUI")
	flags.BoolVar(&discoverShowTokenFlag, "show-token", false, "Print the session token in plain text")

	return cmd
}

// discoveryOptions resolves the retry policy: flag > config > default.
func discoveryOptions(cfg *config.Config) discovery.Options {
	opts := discovery.DefaultOptions()
	if cfg.Discover.MaxAttempts > 0 {
		opts.MaxAttempts = cfg.Discover.MaxAttempts
	}
	if cfg.Discover.RetryDelayMS > 0 {
		opts.RetryDelay = time.Duration(cfg.Discover.RetryDelayMS) * time.Millisecond
	}
	if discoverAttemptsFlag > 0 {
		opts.MaxAttempts = discoverAttemptsFlag
	}
	if discoverRetryDelayFlag >= 0 {
		opts.RetryDelay = time.Duration(discoverRetryDelayFlag) * time.Millisecond
	}
	return opts
}

func runDiscover(cmd *cobra.Command, args []string) error {
	config.SetConfigDir(ConfigDir)
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	strategy := platform.Current(cfg.ProcessName)
	opts := discoveryOptions(cfg)

	if discoverInteractiveFlag {
		run := func(observer func(discovery.Event)) (*discovery.Credentials, error) {
			return discovery.New(strategy, opts, observer).Discover(cmd.Context())
		}
		screen := tui.NewDiscoverScreen(run, discoverShowTokenFlag)
		_, err := tea.NewProgram(screen).Run()
		return err
	}

	var observer func(discovery.Event)
	if !output.IsQuiet() && !output.IsJSON() {
		observer = func(e discovery.Event) {
			if e.Detail != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "attempt %d: %s %s\n", e.Attempt, e.Stage, e.Detail)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "attempt %d: %s\n", e.Attempt, e.Stage)
			}
		}
	}

	creds, err := discovery.New(strategy, opts, observer).Discover(cmd.Context())
	if err != nil {
		var nf *discovery.NotFoundError
		if errors.As(err, &nf) {
			if output.IsJSON() {
				output.PrintError(os.Stderr, "discovery_failed", nf.Error())
			} else {
				fmt.Fprintf(os.Stderr, "Error: %s\n", nf.Error())
				if nf.Guidance != "" {
					fmt.Fprintln(os.Stderr, nf.Guidance)
				}
			}
			os.Exit(output.ExitNotFound)
		}
		return err
	}

	if output.IsJSON() {
		return output.PrintJSON(cmd.OutOrStdout(), creds)
	}

	token := creds.Token
	if !discoverShowTokenFlag {
		token = "(hidden — use --show-token)"
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EXTENSION PORT\tCONNECT PORT\tTOKEN")
	fmt.Fprintf(w, "%d\t%d\t%s\n", creds.ExtensionPort, creds.ConnectPort, token)
	return w.Flush()
}
