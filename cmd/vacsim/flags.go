package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/config"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"github.com/spf13/cobra"
)

// boundFlags are the parameter-range flags shared by run and sample.
var boundFlags = []struct {
	name  string
	usage string
	field func(*config.BoundsConfig) *models.Bound
}{
	{"p-pro", "Pro-vaccine share range in percent, e.g. 60,70", func(b *config.BoundsConfig) *models.Bound { return &b.PPro }},
	{"p-anti", "Anti-vaccine share range in percent, e.g. 15,25", func(b *config.BoundsConfig) *models.Bound { return &b.PAnti }},
	{"pressure", "Social pressure range in percent, e.g. 2,5", func(b *config.BoundsConfig) *models.Bound { return &b.Pressure }},
	{"tau", "Delivery duplication time range in weeks, e.g. 4,5", func(b *config.BoundsConfig) *models.Bound { return &b.Tau }},
	{"nv0", "Initial weekly delivery range in percent of N, e.g. 0.04,0.2", func(b *config.BoundsConfig) *models.Bound { return &b.NV0 }},
	{"nvmax", "Maximum weekly delivery range in percent of N, e.g. 4,7", func(b *config.BoundsConfig) *models.Bound { return &b.NVMax }},
}

func addBoundFlags(cmd *cobra.Command) {
	for _, f := range boundFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
}

func addSamplingFlags(cmd *cobra.Command) {
	cmd.Flags().Int("replicates", 0, "Number of Monte Carlo runs (default from config)")
	cmd.Flags().Uint64("seed", 0, "Random seed (default from config)")
}

func addForecastFlags(cmd *cobra.Command) {
	cmd.Flags().Int("population", 0, "Population size N (default from config)")
	cmd.Flags().Float64("ci", 0, "Confidence level in percent (default from config)")
	cmd.Flags().String("start", "", "First simulated day, YYYY-MM-DD")
	cmd.Flags().String("end", "", "Last simulated day, YYYY-MM-DD (default today)")
	cmd.Flags().Duration("budget", 0, "Maximum running time, 0 for unlimited (default from config)")
	cmd.Flags().Int("workers", 0, "Realizations simulated concurrently (default from config)")
}

// applyFlags copies every flag the user set onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.VacsimConfig) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	for _, f := range boundFlags {
		if !changed(f.name) {
			continue
		}
		v, _ := flags.GetString(f.name)
		b, err := parseBound(v)
		if err != nil {
			return fmt.Errorf("--%s: %w", f.name, err)
		}
		*f.field(&cfg.Bounds) = b
	}

	if changed("replicates") {
		cfg.Sampling.Replicates, _ = flags.GetInt("replicates")
	}
	if changed("seed") {
		cfg.Sampling.Seed, _ = flags.GetUint64("seed")
	}
	if changed("population") {
		cfg.Sampling.Population, _ = flags.GetInt("population")
	}
	if changed("ci") {
		cfg.Sampling.CI, _ = flags.GetFloat64("ci")
	}
	if changed("start") {
		cfg.Sampling.StartDate, _ = flags.GetString("start")
	}
	if changed("end") {
		cfg.Sampling.EndDate, _ = flags.GetString("end")
	}
	if changed("budget") {
		cfg.Sampling.MaxRunningTime, _ = flags.GetDuration("budget")
	}
	if changed("workers") {
		cfg.Sampling.Workers, _ = flags.GetInt("workers")
	}
	return nil
}

// parseBound parses "lower,upper" or a single value meaning a fixed parameter.
func parseBound(s string) (models.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) > 2 {
		return models.Bound{}, fmt.Errorf("expected lower,upper, got %q", s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.Bound{}, fmt.Errorf("invalid number %q", p)
		}
		vals[i] = v
	}
	b := models.Bound{Lower: vals[0], Upper: vals[len(vals)-1]}
	if err := b.Validate(); err != nil {
		return models.Bound{}, err
	}
	return b, nil
}
