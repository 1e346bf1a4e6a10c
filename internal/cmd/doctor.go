package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dsmmcken/lsc/internal/config"
	"github.com/dsmmcken/lsc/internal/output"
	"github.com/dsmmcken/lsc/internal/platform"
)

type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok" or "missing"
	Detail string `json:"detail,omitempty"`
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that discovery can work on this machine",
		Long:  "Verify that the external commands the platform strategy shells out to are installed, and report the OS environment.",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	config.SetConfigDir(ConfigDir)
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	strategy := platform.Current(cfg.ProcessName)
	diag := strategy.Diagnostics()

	var checks []doctorCheck
	missing := 0
	for _, tool := range diag.Requirements {
		path, err := exec.LookPath(tool)
		if err != nil {
			checks = append(checks, doctorCheck{Name: tool, Status: "missing"})
			missing++
			continue
		}
		checks = append(checks, doctorCheck{Name: tool, Status: "ok", Detail: path})
	}

	if output.IsJSON() {
		return output.PrintJSON(cmd.OutOrStdout(), map[string]any{
			"os":      runtime.GOOS,
			"kernel":  kernelVersion(),
			"target":  strategy.ProcessName(),
			"checks":  checks,
			"healthy": missing == 0,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "os: %s (%s)\n", runtime.GOOS, kernelVersion())
	fmt.Fprintf(cmd.OutOrStdout(), "target process: %s\n\n", strategy.ProcessName())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tSTATUS\tPATH")
	for _, c := range checks {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Status, c.Detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if missing > 0 {
		fmt.Fprintf(os.Stderr, "\n%s\n", diag.CommandUnavailable)
		os.Exit(output.ExitError)
	}
	if !output.IsQuiet() {
		fmt.Fprintln(cmd.OutOrStdout(), "\nAll required tools are available.")
	}
	return nil
}
