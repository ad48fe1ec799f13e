package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/docimp/docimp/internal/core"
	"github.com/docimp/docimp/internal/pipeline"
	"github.com/docimp/docimp/internal/validate"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-stage state and staleness verdicts",
	Long: `Print when each pipeline stage last ran, how many items it processed,
and whether downstream results are stale relative to the latest analysis.

With --watch, re-evaluate whenever project files change.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false,
		"re-evaluate staleness when project files change")
}

func runStatus(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, cfg, err := newPipeline()
	if err != nil {
		return err
	}

	if err := printStatus(p); err != nil {
		return err
	}
	if !statusWatch {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	excluded := make(map[string]struct{}, len(cfg.Analyze.ExcludeDirs))
	for _, d := range cfg.Analyze.ExcludeDirs {
		excluded[d] = struct{}{}
	}
	err = filepath.WalkDir(projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if _, skip := excluded[d.Name()]; skip && path != projectRoot {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watching project tree: %w", err)
	}

	fmt.Println("Watching for changes (Ctrl-C to stop)...")
	// Coalesce event bursts before re-printing.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			pending = time.After(500 * time.Millisecond)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("watch error: %v\n", err)
		case <-pending:
			pending = nil
			fmt.Println()
			if err := printStatus(p); err != nil {
				return err
			}
		}
	}
}

func printStatus(p *pipeline.Pipeline) error {
	ws, err := p.Store().Load()
	if err != nil {
		return err
	}

	fmt.Printf("Workflow state: schema %s, %d migrations applied\n",
		ws.SchemaVersion, len(ws.MigrationLog))
	for _, stage := range core.Stages {
		cs := ws.StageState(stage)
		if cs == nil {
			fmt.Printf("  %-8s never run\n", stage)
			continue
		}
		fmt.Printf("  %-8s %s, %d items\n",
			stage, cs.Timestamp.Local().Format(time.RFC1123), cs.ItemCount)
	}

	printStaleness(ws, "audit", validate.IsAuditStale)
	printStaleness(ws, "plan", validate.IsPlanStale)
	return nil
}

func printStaleness(ws *core.WorkflowState, name string, check func(*core.WorkflowState) (validate.StalenessResult, error)) {
	res, err := check(ws)
	switch {
	case err != nil:
		fmt.Printf("  %s staleness: %v\n", name, err)
		if s := core.SuggestionFor(err); s != "" {
			fmt.Printf("    Hint: %s\n", s)
		}
	case res.IsStale:
		fmt.Printf("  %s is STALE: %d files changed since it ran\n", name, res.ChangedCount)
	}
}
