package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	improveSkipValidation bool
	improveDryRun         bool
)

var improveCmd = &cobra.Command{
	Use:   "improve",
	Short: "Work through the improvement plan",
	Long: `Apply the improvement plan and record what was done.

Requires a completed plan stage. Refuses to run against a plan that is
older than the latest analysis; re-run 'docimp plan' in that case.`,
	RunE: runImprove,
}

func init() {
	rootCmd.AddCommand(improveCmd)
	improveCmd.Flags().BoolVar(&improveSkipValidation, "skip-validation", false,
		"skip prerequisite checks, including the stale-plan gate")
	improveCmd.Flags().BoolVar(&improveDryRun, "dry-run", false,
		"record intended edits without applying or updating workflow state")
}

func runImprove(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, _, err := newPipeline()
	if err != nil {
		return err
	}

	res, err := p.Improve(ctx, improveSkipValidation, improveDryRun)
	if err != nil {
		return err
	}

	if !quiet {
		verb := "Applied"
		if res.DryRun {
			verb = "Would apply"
		}
		fmt.Printf("%s %d improvements. Record written to %s\n", verb, res.ItemCount, res.ArtifactPath)
	}
	return nil
}
