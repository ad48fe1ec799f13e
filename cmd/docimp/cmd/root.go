package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/docimp/docimp/internal/config"
	"github.com/docimp/docimp/internal/core"
	"github.com/docimp/docimp/internal/logging"
	"github.com/docimp/docimp/internal/pipeline"
)

var (
	cfgFile     string
	logLevel    string
	logFormat   string
	quiet       bool
	projectRoot string

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "docimp",
	Short: "Documentation-improvement pipeline with staleness tracking",
	Long: `docimp runs a four-stage documentation-improvement pipeline
(analyze, audit, plan, improve) over a project. Each stage records what it
processed in .docimp/workflow-state.json; later stages detect when an
earlier stage's inputs changed so results are never silently stale.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command, printing domain errors with their
// corrective suggestion.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if s := core.SuggestionFor(err); s != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", s)
		}
	}
	return err
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .docimp/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-essential output")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "project-root", "C", ".",
		"project root directory to operate on")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

// loadConfig loads the merged configuration for the selected project root.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader = loader.WithConfigFile(cfgFile)
	}
	return loader.Load(projectRoot)
}

// newPipeline builds the pipeline with config and logger for this
// invocation.
func newPipeline() (*pipeline.Pipeline, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if quiet {
		level = "error"
	}
	log := logging.New(logging.Config{
		Level:  level,
		Format: cfg.Log.Format,
	})
	if cfg.ProjectID != "" {
		log = log.WithProject(cfg.ProjectID)
	}

	return pipeline.New(projectRoot, cfg, log), cfg, nil
}
