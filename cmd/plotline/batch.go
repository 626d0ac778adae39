package main

import (
	"context"
	"fmt"

	"github.com/aretw0/plotline/internal/cli"
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Synthesize every scenario of a scenario library",
	Long: `Reads every scenario document (markdown with front matter, JSON or YAML)
under --dir, synthesizes its flow and stores it under the document's agent
id. With --watch, keeps running and re-synthesizes documents as they change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		workers, _ := cmd.Flags().GetInt("workers")
		watch, _ := cmd.Flags().GetBool("watch")

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		src, err := cli.OpenSource(dir)
		if err != nil {
			return err
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		results, err := cli.RunBatch(sigCtx, app.Manager, src, workers, app.Logger)
		if err != nil {
			return err
		}
		if err := encode(cmd, results); err != nil {
			return err
		}

		if watch {
			cli.PrintSystemMessage(cmd.ErrOrStderr(), "Watching '%s' for changes...", dir)
			return cli.Watch(sigCtx, app.Manager, src, app.Logger, func(r cli.BatchResult) {
				_ = encode(cmd, r)
			})
		}

		failed := 0
		for _, r := range results {
			if r.Failed() {
				failed++
			}
		}
		if failed > 0 && sigCtx.Err() == nil {
			return fmt.Errorf("%d of %d scenarios fell back or failed", failed, len(results))
		}
		if sigCtx.Err() != nil {
			return context.Canceled
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().String("dir", ".", "Directory containing the scenario library")
	batchCmd.Flags().Int("workers", cli.DefaultWorkers, "Concurrent generator calls")
	batchCmd.Flags().Bool("watch", false, "Re-synthesize scenarios when their files change")
}
