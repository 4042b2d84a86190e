package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/gridintel/internal/config"
	"github.com/dgallion1/gridintel/internal/pipeline"
)

var (
	dataDir   string
	rulesPath string
	storePath string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "gridintel",
	Short: "European TSO grid document intelligence pipeline",
	Long: `gridintel harvests capacity and connection documents from European
transmission system operators, extracts and classifies their contents,
loads the findings into a SQLite store, exports dashboard-ready CSVs,
and audits the coherence of the whole artifact chain.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("command failed", "error", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "artifact directory (default: data)")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "classification rules YAML (default: built-in rules)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "SQLite store path (default: <data-dir>/grid_intelligence.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// setup resolves configuration, rules, and logging for a subcommand.
func setup() (config.Config, *config.Rules, *slog.Logger, error) {
	cfg := config.Load()
	if dataDir != "" {
		cfg.DataDir = dataDir
		cfg.DocumentsDir = filepath.Join(dataDir, "tso_documents")
		cfg.StorePath = filepath.Join(dataDir, "grid_intelligence.db")
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := cfg.Validate(); err != nil {
		return cfg, nil, nil, err
	}
	rules, err := config.LoadRules(rulesPath)
	if err != nil {
		return cfg, nil, nil, err
	}
	return cfg, rules, log, nil
}

// runner builds the pipeline runner for a subcommand.
func runner() (*pipeline.Runner, error) {
	cfg, rules, log, err := setup()
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, rules, log), nil
}
