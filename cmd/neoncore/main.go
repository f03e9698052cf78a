// neoncore runs the NeonCore text RPG, locally or as an SSH server.
//
//	neoncore play [--plain] [--script file]
//	neoncore serve
//	neoncore version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "neoncore",
		Short:         "NeonCore: a cyberpunk text RPG",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `NeonCore is a cyberpunk text RPG. Play it in your terminal or host it
over SSH so every connection gets its own run through Night City.

Settings come from a TOML file (--config) and NEONCORE_* environment
variables, e.g. NEONCORE_SERVER_ADDR=:2222 or NEONCORE_STORE_PATH=saves.db.`,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to neoncore.toml")
	root.AddCommand(newPlayCmd(), newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "neoncore %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
