package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fingerprint project files and record the analysis",
	Long: `Walk the project, fingerprint every documentation-relevant file, and
write the analysis artifact. This is the first pipeline stage; audit, plan,
and improve all compare their inputs against this run's checksums.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, _, err := newPipeline()
	if err != nil {
		return err
	}

	res, err := p.Analyze(ctx)
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("Analyzed %d files. Results written to %s\n", res.ItemCount, res.ArtifactPath)
	}
	return nil
}
