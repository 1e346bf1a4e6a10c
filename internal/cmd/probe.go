package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dsmmcken/lsc/internal/output"
	"github.com/dsmmcken/lsc/internal/probe"
)

var probeTokenFlag string

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe <PORT>",
		Short: "Send one liveness probe to a port",
		Long:  "Run only the prober stage: POST the health check to 127.0.0.1:<PORT> with the given session token and report whether it answered 200.",
		Args:  cobra.ExactArgs(1),
		RunE:  runProbe,
	}
	cmd.Flags().StringVar(&probeTokenFlag, "token", "", "Session token to send (required)")
	cmd.MarkFlagRequired("token")
	return cmd
}

func runProbe(cmd *cobra.Command, args []string) error {
	port, err := strconv.Atoi(args[0])
	if err != nil || port <= 0 || port > 65535 {
		msg := fmt.Sprintf("invalid port: %s", args[0])
		if output.IsJSON() {
			output.PrintError(os.Stderr, "invalid_port", msg)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		}
		os.Exit(output.ExitError)
	}

	ok := probe.New().Probe(cmd.Context(), port, probeTokenFlag)

	if output.IsJSON() {
		if err := output.PrintJSON(cmd.OutOrStdout(), map[string]any{
			"port": port,
			"ok":   ok,
		}); err != nil {
			return err
		}
	} else if !output.IsQuiet() {
		if ok {
			fmt.Fprintf(cmd.OutOrStdout(), "port %d: ok\n", port)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "port %d: no response\n", port)
		}
	}

	if !ok {
		os.Exit(output.ExitNotFound)
	}
	return nil
}
