package main

import (
	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [file|-]",
	Short: "Recompute node positions of a flow document",
	Long: `Normalizes a flow document (dangling edges are dropped, or rejected when
synthesis.strict_edges is set) and assigns every node a position by level.
Nodes, data and edges are otherwise unchanged.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, err := readFlow(args)
		if err != nil {
			return err
		}

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		out, warnings, err := app.Manager.Layout(flow)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			app.Logger.Warn("Flow repaired", "code", w.Code, "path", w.Path, "reason", w.Reason)
		}
		return encode(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}
