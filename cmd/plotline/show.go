package main

import (
	"fmt"
	"os"

	"github.com/aretw0/plotline/internal/cli"
	"github.com/aretw0/plotline/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [file|-]",
	Short: "Print a readable outline of a flow",
	Long: `Renders a flow (or the flow synthesized from scenario text) as a
markdown outline grouped by step. On a terminal the outline is styled with
glamour; otherwise the raw markdown is printed.`,
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
		title, _ := cmd.Flags().GetString("title")
		md, err := tui.Outline(title, flow)
		if err != nil {
			return err
		}

		if raw, _ := cmd.Flags().GetBool("raw"); raw || !cli.IsTerminal(os.Stdout) {
			_, err = fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		}
		render, err := tui.NewRenderer(0)
		if err != nil {
			return err
		}
		styled, err := render(md)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), styled)
		return err
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().String("title", "", "Outline title")
	showCmd.Flags().Bool("raw", false, "Print markdown without styling")
}
