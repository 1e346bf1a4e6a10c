package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dsmmcken/lsc/internal/output"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// ConfigDir is the --config-dir persistent flag value, consumed by
// subcommands through config.SetConfigDir.
var ConfigDir string

var (
	jsonFlag    bool
	quietFlag   bool
	verboseFlag bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lsc",
		Short: "Locate a running langd daemon and its connection credentials",
		Long: `lsc discovers the runtime connection credentials of an already-running
langd language-server daemon: it finds the process, reads its declared port
and session token from the command line, enumerates its listening sockets,
and probes candidates until one answers the health endpoint.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetJSON(jsonFlag)
			output.SetQuiet(quietFlag)
			logrus.SetLevel(logrus.WarnLevel)
			if verboseFlag {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&jsonFlag, "json", false, "Machine-readable JSON output")
	pf.BoolVarP(&quietFlag, "quiet", "q", false, "Suppress informational output")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&ConfigDir, "config-dir", "", "Config directory (default ~/.lsc, env LSC_HOME)")

	root.AddCommand(newDiscoverCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newPortsCmd())
	root.AddCommand(newProbeCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newVersionCmd())
	addConfigCommands(root)

	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lsc version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output.IsJSON() {
				return output.PrintJSON(cmd.OutOrStdout(), map[string]string{"version": Version})
			}
			fmt.Fprintln(cmd.OutOrStdout(), Version)
			return nil
		},
	}
}
