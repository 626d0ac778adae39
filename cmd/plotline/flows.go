package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "Inspect and manage stored flows",
}

var flowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List agents with a stored flow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ids, err := app.Manager.List(cmd.Context())
		if err != nil {
			return err
		}
		return encode(cmd, ids)
	},
}

var flowsGetCmd = &cobra.Command{
	Use:   "get <agent-id>",
	Short: "Print an agent's flow, synthesizing it from --scenario when missing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		text, _ := cmd.Flags().GetString("scenario")
		flow, err := app.Manager.Get(cmd.Context(), args[0], text)
		if err != nil {
			return err
		}
		return encode(cmd, flow)
	},
}

var flowsRelayoutCmd = &cobra.Command{
	Use:   "relayout <agent-id>",
	Short: "Recompute and store the positions of an agent's flow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		flow, err := app.Manager.Relayout(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return encode(cmd, flow)
	},
}

var flowsDeleteCmd = &cobra.Command{
	Use:   "delete <agent-id>",
	Short: "Delete an agent's flow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Manager.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.ErrOrStderr(), "Deleted flow of %s\n", args[0])
		return err
	},
}

func init() {
	rootCmd.AddCommand(flowsCmd)
	flowsCmd.AddCommand(flowsListCmd, flowsGetCmd, flowsRelayoutCmd, flowsDeleteCmd)
	flowsGetCmd.Flags().String("scenario", "", "Scenario text used when the agent has no flow yet")
}
