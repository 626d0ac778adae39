package main

import (
	"fmt"
	"os"

	"github.com/aretw0/plotline"
	"github.com/aretw0/plotline/internal/cli"
	"github.com/aretw0/plotline/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of plotline",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cli.IsTerminal(os.Stdout) {
			tui.PrintBanner(cmd.OutOrStdout(), "v"+plotline.Version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "plotline version %s\n", plotline.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
