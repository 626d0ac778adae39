package main

import (
	"os"

	"github.com/aretw0/plotline/internal/cli"
	"github.com/aretw0/plotline/pkg/domain"
	"github.com/spf13/cobra"
)

type parseOutput struct {
	Flow       domain.Flow `json:"flow" yaml:"flow"`
	Fallback   bool        `json:"fallback" yaml:"fallback"`
	Stage      string      `json:"stage" yaml:"stage"`
	Error      string      `json:"error,omitempty" yaml:"error,omitempty"`
	Warnings   int         `json:"warnings" yaml:"warnings"`
	DurationMS int64       `json:"duration_ms" yaml:"duration_ms"`
}

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Synthesize a flow from scenario text",
	Long: `Reads scenario text from a file, or from stdin when piped or given "-",
and prints the synthesized flow. When the generator fails or answers with
something unusable, the three-node fallback flow is printed instead and the
reason is reported in the output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := cli.ReadText(inputArg(args), os.Stdin)
		if err != nil {
			return err
		}
		agentID, _ := cmd.Flags().GetString("agent")

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		res, err := app.Manager.Parse(cmd.Context(), text, agentID)
		if err != nil {
			return err
		}

		flow := res.Flow
		if force, _ := cmd.Flags().GetBool("layout"); force && !app.Config.Synthesis.AutoLayout {
			if flow, err = app.Manager.LayoutEngine().Apply(flow); err != nil {
				return err
			}
		}

		out := parseOutput{
			Flow:       flow,
			Fallback:   res.Diagnostic.Fallback,
			Stage:      string(res.Diagnostic.Stage),
			Warnings:   len(res.Diagnostic.Warnings),
			DurationMS: res.Diagnostic.Duration.Milliseconds(),
		}
		if res.Diagnostic.Err != nil {
			out.Error = res.Diagnostic.Err.Error()
		}
		return encode(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().String("agent", "", "Store the flow under this agent id")
	parseCmd.Flags().Bool("layout", false, "Recompute node positions before printing")
}
