package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dsmmcken/lsc/internal/config"
	"github.com/dsmmcken/lsc/internal/output"
	"github.com/dsmmcken/lsc/internal/platform"
	"github.com/dsmmcken/lsc/internal/ports"
)

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports <PID>",
		Short: "List the listening ports of a process",
		Long:  "Run only the enumerator stage: print the distinct listening TCP ports of the given PID, in report order.",
		Args:  cobra.ExactArgs(1),
		RunE:  runPorts,
	}
}

func runPorts(cmd *cobra.Command, args []string) error {
	pid, err := strconv.Atoi(args[0])
	if err != nil || pid <= 0 {
		msg := fmt.Sprintf("invalid pid: %s", args[0])
		if output.IsJSON() {
			output.PrintError(os.Stderr, "invalid_pid", msg)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		}
		os.Exit(output.ExitError)
	}

	config.SetConfigDir(ConfigDir)
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	strategy := platform.Current(cfg.ProcessName)

	listening := ports.New(strategy).List(cmd.Context(), pid)

	if output.IsJSON() {
		if listening == nil {
			listening = []int{}
		}
		return output.PrintJSON(cmd.OutOrStdout(), map[string]any{
			"pid":   pid,
			"ports": listening,
		})
	}

	if len(listening) == 0 {
		if !output.IsQuiet() {
			fmt.Fprintf(cmd.OutOrStdout(), "No listening ports found for pid %d.\n", pid)
		}
		return nil
	}
	for _, p := range listening {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
