package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the workflow state file",
	Long: `Delete .docimp/workflow-state.json so the pipeline starts fresh.
History snapshots and stage artifacts are left in place.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false,
		"skip the confirmation prompt")
}

func runReset(_ *cobra.Command, _ []string) error {
	p, _, err := newPipeline()
	if err != nil {
		return err
	}

	if !p.Store().Exists() {
		fmt.Println("No workflow state to reset.")
		return nil
	}

	if !resetForce {
		fmt.Printf("Delete %s? [y/N] ", p.Store().Path())
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := p.Store().Clear(); err != nil {
		return err
	}
	if !quiet {
		fmt.Println("Workflow state cleared.")
	}
	return nil
}
