package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var auditSkipValidation bool

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Flag under-documented files from the latest analysis",
	Long: `Compare each analyzed file's documentation ratio against the configured
threshold and flag the ones below it.

Requires a completed analyze stage. Use 'docimp analyze' first.`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().BoolVar(&auditSkipValidation, "skip-validation", false,
		"skip prerequisite checks (use when you know the analysis is current)")
}

func runAudit(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, _, err := newPipeline()
	if err != nil {
		return err
	}

	res, err := p.Audit(ctx, auditSkipValidation)
	if err != nil {
		return err
	}

	if !quiet {
		if res.Stale != nil {
			fmt.Printf("Note: %d files changed since the previous audit.\n", res.Stale.ChangedCount)
		}
		fmt.Printf("Flagged %d of %d files. Results written to %s\n",
			res.FlaggedCount, res.TotalFiles, res.ArtifactPath)
	}
	return nil
}
