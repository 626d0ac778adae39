package main

import (
	"fmt"

	"github.com/aretw0/plotline/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [file|-]",
	Short: "Export a flow as a Mermaid diagram",
	Long: `Prints a Mermaid diagram (graph TD) of a flow document, or of the flow
synthesized from scenario text when the input is not a flow document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		flow, err := flowOrSynthesize(cmd, app, args)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(flow, nil))
		return err
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
