package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/config"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/constants"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"github.com/spf13/cobra"
)

// configKeys lists every settable key in display order.
var configKeys = []string{
	"bounds.p_pro.lower", "bounds.p_pro.upper",
	"bounds.p_anti.lower", "bounds.p_anti.upper",
	"bounds.pressure.lower", "bounds.pressure.upper",
	"bounds.tau.lower", "bounds.tau.upper",
	"bounds.nv0.lower", "bounds.nv0.upper",
	"bounds.nvmax.lower", "bounds.nvmax.upper",
	"sampling.replicates",
	"sampling.population",
	"sampling.ci",
	"sampling.seed",
	"sampling.start_date",
	"sampling.end_date",
	"sampling.max_running_time",
	"sampling.workers",
	"cache.size",
	"logging.level",
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vacsim configuration",
		Long: `View and modify vacsim configuration settings.

Configuration is stored in ~/.vacsim/config.yaml, or in the file named
by --config.

Examples:
  vacsim config list                             # Show all settings
  vacsim config get sampling.replicates          # Get a specific setting
  vacsim config set bounds.p_pro.upper 75        # Set a setting
  vacsim config set sampling.max_running_time 1m`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"show"},
		Short:   "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format := outputFormat(cmd); format != constants.FormatText {
				return writeStructured(out, format, cfg)
			}

			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Configuration (%s):\n", path)
			section := ""
			for _, key := range configKeys {
				if s, _, _ := strings.Cut(key, "."); s != section {
					section = s
					fmt.Fprintln(out)
				}
				value, _ := getConfigValue(cfg, key)
				fmt.Fprintf(out, "  %-28s %v\n", key+":", valueOrDefault(fmt.Sprint(value), "(not set)"))
			}
			return nil
		},
	}
	cmd.Flags().Bool("yaml", false, "Output as YAML")
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			out := cmd.OutOrStdout()
			if format := outputFormat(cmd); format != constants.FormatText {
				return writeStructured(out, format, map[string]any{"key": key, "value": value})
			}
			fmt.Fprintf(out, "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			cfg, err := loadEditableConfig(cmd)
			if err != nil {
				return err
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("refusing to save invalid configuration: %w", err)
			}

			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			if format := outputFormat(cmd); format != constants.FormatText {
				return writeStructured(out, format, map[string]any{"status": "updated", "key": key, "value": value})
			}
			fmt.Fprintf(out, "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// loadEditableConfig is loadConfig, except that a --config file that does
// not exist yet starts from the defaults.
func loadEditableConfig(cmd *cobra.Command) (*config.VacsimConfig, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return loadConfig(cmd)
}

// configPath is the file config set writes to.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// boundField maps "bounds.<name>.<end>" to the addressed value.
func boundField(cfg *config.VacsimConfig, key string) (*float64, bool) {
	rest, ok := strings.CutPrefix(key, "bounds.")
	if !ok {
		return nil, false
	}
	name, end, ok := strings.Cut(rest, ".")
	if !ok {
		return nil, false
	}
	var b *models.Bound
	switch name {
	case "p_pro":
		b = &cfg.Bounds.PPro
	case "p_anti":
		b = &cfg.Bounds.PAnti
	case "pressure":
		b = &cfg.Bounds.Pressure
	case "tau":
		b = &cfg.Bounds.Tau
	case "nv0":
		b = &cfg.Bounds.NV0
	case "nvmax":
		b = &cfg.Bounds.NVMax
	default:
		return nil, false
	}
	switch end {
	case "lower":
		return &b.Lower, true
	case "upper":
		return &b.Upper, true
	}
	return nil, false
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.VacsimConfig, key string) (any, bool) {
	if f, ok := boundField(cfg, key); ok {
		return *f, true
	}
	switch key {
	case "sampling.replicates":
		return cfg.Sampling.Replicates, true
	case "sampling.population":
		return cfg.Sampling.Population, true
	case "sampling.ci":
		return cfg.Sampling.CI, true
	case "sampling.seed":
		return cfg.Sampling.Seed, true
	case "sampling.start_date":
		return cfg.Sampling.StartDate, true
	case "sampling.end_date":
		return cfg.Sampling.EndDate, true
	case "sampling.max_running_time":
		return cfg.Sampling.MaxRunningTime.String(), true
	case "sampling.workers":
		return cfg.Sampling.Workers, true
	case "cache.size":
		return cfg.Cache.Size, true
	case "logging.level":
		return cfg.Logging.Level, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.VacsimConfig, key, value string) error {
	if f, ok := boundField(cfg, key); ok {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %s", value)
		}
		*f = v
		return nil
	}

	atoi := func(dst *int) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		*dst = n
		return nil
	}

	switch key {
	case "sampling.replicates":
		return atoi(&cfg.Sampling.Replicates)
	case "sampling.population":
		return atoi(&cfg.Sampling.Population)
	case "sampling.workers":
		return atoi(&cfg.Sampling.Workers)
	case "cache.size":
		return atoi(&cfg.Cache.Size)
	case "sampling.ci":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid confidence level: %s", value)
		}
		cfg.Sampling.CI = f
	case "sampling.seed":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %s", value)
		}
		cfg.Sampling.Seed = n
	case "sampling.start_date":
		cfg.Sampling.StartDate = value
	case "sampling.end_date":
		cfg.Sampling.EndDate = value
	case "sampling.max_running_time":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		cfg.Sampling.MaxRunningTime = d
	case "logging.level":
		cfg.Logging.Level = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
