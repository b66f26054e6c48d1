// Command desertmirage runs the instrument verification strip analysis over
// survey CSV files and browses stored runs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/DesertMirage/internal/model"
	"github.com/himanishpuri/DesertMirage/pkg/desertmirage"
	"github.com/himanishpuri/DesertMirage/pkg/logger"
)

var (
	configPath string
	dbPath     string
	debug      bool

	version = "dev"
)

// exitCode distinguishes configuration errors from run failures.
func exitCode(err error) int {
	if model.IsConfig(err) {
		return 2
	}
	return 1
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		_ = logger.Sync()
		os.Exit(exitCode(err))
	}
	_ = logger.Sync()
}

var rootCmd = &cobra.Command{
	Use:   "desertmirage",
	Short: "Seed proximity and dynamic-response analysis for IVS survey lines",
	Long: `desertmirage analyses instrument verification strip (IVS) survey lines.

For every sensor it finds the seed items passed by each line, extracts the peak
response of the forward and backward passes, reconciles the two and stores the
accepted responses in a SQLite result store.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "run file (YAML or JSON); DESERTMIRAGE_* env vars override it")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite result store (default from run file or "+desertmirage.DefaultDBFile+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(summaryCmd)
}

// loadConfig reads the run file and applies --db.
func loadConfig() (*desertmirage.Config, error) {
	cfg, err := desertmirage.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// openStore opens the result store for the read-only commands.
func openStore() (desertmirage.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.DBPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("result store %s does not exist", cfg.DBPath)
	}
	return desertmirage.NewSQLiteStorage(cfg.DBPath)
}
