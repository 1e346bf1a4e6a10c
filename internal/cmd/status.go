package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dsmmcken/lsc/internal/config"
	"github.com/dsmmcken/lsc/internal/locator"
	"github.com/dsmmcken/lsc/internal/output"
	"github.com/dsmmcken/lsc/internal/platform"
)

var statusShowTokenFlag bool

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the langd process is running",
		Long:  "Run only the locator stage: report the daemon's PID, declared port, and whether a session token is present.",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
	cmd.Flags().BoolVar(&statusShowTokenFlag, "show-token", false, "Print the session token in plain text")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	config.SetConfigDir(ConfigDir)
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	strategy := platform.Current(cfg.ProcessName)

	info, err := locator.New(strategy).Locate(cmd.Context())
	if err != nil {
		var nf *locator.NotFoundError
		if errors.As(err, &nf) {
			if output.IsJSON() {
				output.PrintError(os.Stderr, "process_not_found", nf.Error())
			} else {
				fmt.Fprintf(os.Stderr, "Error: %s\n", nf.Error())
				fmt.Fprintln(os.Stderr, strategy.Diagnostics().ProcessNotFound)
			}
			os.Exit(output.ExitNotFound)
		}
		if output.IsJSON() {
			output.PrintError(os.Stderr, "command_failed", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(output.ExitError)
	}

	if output.IsJSON() {
		rec := map[string]any{
			"pid":           info.PID,
			"declared_port": info.DeclaredPort,
			"token_present": info.Token != "",
		}
		if statusShowTokenFlag {
			rec["token"] = info.Token
		}
		return output.PrintJSON(cmd.OutOrStdout(), rec)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s running (pid %d)\n", strategy.ProcessName(), info.PID)
	if info.DeclaredPort > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "declared port: %d\n", info.DeclaredPort)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "declared port: (none)")
	}
	if statusShowTokenFlag {
		fmt.Fprintf(cmd.OutOrStdout(), "token: %s\n", info.Token)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "token: present")
	}
	return nil
}
