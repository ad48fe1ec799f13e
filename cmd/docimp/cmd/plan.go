package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var planSkipValidation bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Order audit findings into an improvement plan",
	Long: `Turn the audit findings into an ordered improvement plan, most severe
first.

Requires completed analyze and audit stages.`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().BoolVar(&planSkipValidation, "skip-validation", false,
		"skip prerequisite checks")
}

func runPlan(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, _, err := newPipeline()
	if err != nil {
		return err
	}

	res, err := p.Plan(ctx, planSkipValidation)
	if err != nil {
		return err
	}

	if !quiet {
		if res.Stale != nil {
			fmt.Printf("Note: %d files changed since the previous plan.\n", res.Stale.ChangedCount)
		}
		fmt.Printf("Planned %d improvements. Plan written to %s\n", res.ItemCount, res.ArtifactPath)
	}
	return nil
}
