package main

import (
	"fmt"
	"os"

	"github.com/aretw0/plotline/internal/cli"
	"github.com/aretw0/plotline/pkg/schema"
	"github.com/spf13/cobra"
)

type validateOutput struct {
	Valid    bool             `json:"valid" yaml:"valid"`
	Nodes    int              `json:"nodes" yaml:"nodes"`
	Edges    int              `json:"edges" yaml:"edges"`
	Warnings []schema.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate [file|-]",
	Short: "Check a flow document against the flow schema",
	Long: `Runs the same normalization applied to generator output and reports every
repair it would make. With --strict a dangling or duplicate edge fails the
document instead of being dropped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := cli.ReadText(inputArg(args), os.Stdin)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		strict, _ := cmd.Flags().GetBool("strict")
		res, err := schema.Normalize(text, schema.WithStrict(strict || cfg.Synthesis.StrictEdges))
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		return encode(cmd, validateOutput{
			Valid:    true,
			Nodes:    len(res.Flow.Nodes),
			Edges:    len(res.Flow.Edges),
			Warnings: res.Warnings,
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Fail on invalid edges instead of dropping them")
}
