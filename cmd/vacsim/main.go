package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/config"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/logging"
	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vacsim",
		Short: "Stochastic vaccination campaign forecaster",
		Long: `vacsim forecasts the progress of a vaccination campaign.

It samples uncertain model parameters (attitudes towards the vaccine,
social pressure, vaccine supply), simulates an ensemble of stochastic
realizations, and reports the mean and confidence band of people
vaccinated, daily vaccinations, vaccines received and vaccines in stock.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.vacsim/config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newSampleCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}

// loadConfig loads the configuration named by --config, or the default one.
func loadConfig(cmd *cobra.Command) (*config.VacsimConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger creates the stderr logger for cfg.
func newLogger(cmd *cobra.Command, cfg *config.VacsimConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

// newTrace opens the run trace in the vacsim home directory. It is nil at
// info level.
func newTrace(cfg *config.VacsimConfig) *logging.TraceLogger {
	dir, err := config.Dir()
	if err != nil {
		return nil
	}
	return logging.NewTraceLogger(dir, cfg.Logging.Level)
}
