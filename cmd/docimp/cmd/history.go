package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	historyMaxCount   int
	historyMaxAgeDays int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage workflow state snapshots",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history snapshots, newest first",
	RunE:  runHistoryList,
}

var historyRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Prune snapshots that violate the count or age bound",
	Long: `Delete snapshots that violate either retention bound: older than the
--max-count most recent, or with a modification time older than
--max-age-days days. Defaults come from history.* in the config.`,
	RunE: runHistoryRotate,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyRotateCmd)

	historyRotateCmd.Flags().IntVar(&historyMaxCount, "max-count", -1,
		"maximum number of snapshots to keep (default from config)")
	historyRotateCmd.Flags().IntVar(&historyMaxAgeDays, "max-age-days", -1,
		"maximum snapshot age in days (default from config)")
}

func runHistoryList(_ *cobra.Command, _ []string) error {
	p, _, err := newPipeline()
	if err != nil {
		return err
	}

	paths, err := p.History().List()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println("No history snapshots.")
		return nil
	}
	for _, path := range paths {
		fmt.Println(filepath.Base(path))
	}
	return nil
}

func runHistoryRotate(_ *cobra.Command, _ []string) error {
	p, cfg, err := newPipeline()
	if err != nil {
		return err
	}

	maxCount := cfg.History.MaxCount
	if historyMaxCount >= 0 {
		maxCount = historyMaxCount
	}
	maxAgeDays := cfg.History.MaxAgeDays
	if historyMaxAgeDays >= 0 {
		maxAgeDays = historyMaxAgeDays
	}

	before, err := p.History().List()
	if err != nil {
		return err
	}
	if err := p.History().Rotate(maxCount, maxAgeDays); err != nil {
		return err
	}
	after, err := p.History().List()
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("Pruned %d snapshots, %d remaining.\n", len(before)-len(after), len(after))
	}
	return nil
}
