package main

import (
	"fmt"
	"os"

	"github.com/aretw0/plotline/internal/cli"
	"github.com/aretw0/plotline/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "plotline",
	Short: "plotline turns scenario text into a node/edge flow",
	Long: `plotline asks a language model to convert a free-text scenario into a
graph of nodes and edges, repairs what the model got wrong, lays the
graph out on a canvas and stores it per agent.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default "+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringP("output", "o", cli.FormatJSON, "Output format: json or yaml")
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

// loadApp wires the components described by the config. Callers must Close it.
func loadApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cfg, cli.WithLogOutput(cmd.ErrOrStderr()))
}

func encode(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("output")
	return cli.Encode(cmd.OutOrStdout(), format, v)
}

func inputArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
