// Package config provides unified configuration loading for vacsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/constants"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"gopkg.in/yaml.v3"
)

// VacsimConfig contains all vacsim configuration settings.
type VacsimConfig struct {
	// Bounds are the parameter ranges the sampler draws from.
	Bounds BoundsConfig `json:"bounds" yaml:"bounds"`

	// Sampling controls the Monte Carlo run.
	Sampling SamplingConfig `json:"sampling" yaml:"sampling"`

	// Cache controls result memoization.
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// BoundsConfig holds parameter ranges in user units: percent for p_pro,
// p_anti, pressure, nv0 and nvmax; weeks for tau.
type BoundsConfig struct {
	PPro     models.Bound `json:"p_pro" yaml:"p_pro"`
	PAnti    models.Bound `json:"p_anti" yaml:"p_anti"`
	Pressure models.Bound `json:"pressure" yaml:"pressure"`
	Tau      models.Bound `json:"tau" yaml:"tau"`
	NV0      models.Bound `json:"nv0" yaml:"nv0"`
	NVMax    models.Bound `json:"nvmax" yaml:"nvmax"`
}

// SamplingConfig configures a forecast run.
type SamplingConfig struct {
	// Replicates is the number of parameter sets drawn and simulated.
	Replicates int `json:"replicates" yaml:"replicates"`

	// Population is the simulated population size N.
	Population int `json:"population" yaml:"population"`

	// CI is the confidence level in percent, e.g. 95.
	CI float64 `json:"ci" yaml:"ci"`

	// Seed reseeds the sampler before every run.
	Seed uint64 `json:"seed" yaml:"seed"`

	// StartDate is the first simulated day (YYYY-MM-DD).
	StartDate string `json:"start_date" yaml:"start_date"`

	// EndDate is the last simulated day (YYYY-MM-DD). Empty means today.
	EndDate string `json:"end_date,omitempty" yaml:"end_date,omitempty"`

	// MaxRunningTime bounds the wall-clock time of one aggregation.
	// Zero disables the limit.
	MaxRunningTime time.Duration `json:"max_running_time" yaml:"max_running_time"`

	// Workers is the number of realizations simulated concurrently.
	// Zero uses every available CPU.
	Workers int `json:"workers" yaml:"workers"`
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	// Size is the number of aggregation results kept in memory.
	Size int `json:"size" yaml:"size"`
}

// LoggingConfig configures vacsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables run tracing to ~/.vacsim/runs.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns a VacsimConfig with the defaults of the original forecaster.
func Default() *VacsimConfig {
	return &VacsimConfig{
		Bounds: BoundsConfig{
			PPro:     models.Bound{Lower: constants.DefaultPProLower, Upper: constants.DefaultPProUpper},
			PAnti:    models.Bound{Lower: constants.DefaultPAntiLower, Upper: constants.DefaultPAntiUpper},
			Pressure: models.Bound{Lower: constants.DefaultPressureLower, Upper: constants.DefaultPressureUpper},
			Tau:      models.Bound{Lower: constants.DefaultTauLower, Upper: constants.DefaultTauUpper},
			NV0:      models.Bound{Lower: constants.DefaultNV0Lower, Upper: constants.DefaultNV0Upper},
			NVMax:    models.Bound{Lower: constants.DefaultNVMaxLower, Upper: constants.DefaultNVMaxUpper},
		},
		Sampling: SamplingConfig{
			Replicates:     constants.DefaultReplicates,
			Population:     constants.DefaultPopulation,
			CI:             constants.DefaultCIPercent,
			Seed:           constants.DefaultSeed,
			StartDate:      constants.DefaultStartDate,
			MaxRunningTime: constants.DefaultMaxRunningTime,
		},
		Cache: CacheConfig{
			Size: constants.DefaultCacheSize,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Dir returns the vacsim home directory (~/.vacsim).
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".vacsim"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.vacsim/config.yaml -> environment variables
func Load() (*VacsimConfig, error) {
	config := Default()

	if dir, err := Dir(); err == nil {
		configPath := filepath.Join(dir, "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadPath loads configuration from path, or from the default locations when
// path is empty. Environment overrides are applied either way.
func LoadPath(path string) (*VacsimConfig, error) {
	if path == "" {
		return Load()
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Keys missing from the file keep their defaults.
func LoadFromFile(path string) (*VacsimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(cfg *VacsimConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *VacsimConfig) Validate() error {
	if err := c.ModelBounds().Validate(); err != nil {
		return fmt.Errorf("bounds: %w", err)
	}
	for name, b := range map[string]models.Bound{
		"p_pro":  c.Bounds.PPro,
		"p_anti": c.Bounds.PAnti,
	} {
		if b.Lower < 0 || b.Upper > 100 {
			return fmt.Errorf("%s must be within [0, 100] percent, got [%v, %v]", name, b.Lower, b.Upper)
		}
	}
	if c.Bounds.Tau.Lower < constants.MinTauWeeks {
		return fmt.Errorf("tau must be at least %v weeks, got %v", constants.MinTauWeeks, c.Bounds.Tau.Lower)
	}
	if c.Bounds.Pressure.Lower < 0 || c.Bounds.NV0.Lower < 0 || c.Bounds.NVMax.Lower < 0 {
		return fmt.Errorf("pressure, nv0 and nvmax must be non-negative")
	}

	s := c.Sampling
	if s.Replicates < constants.MinReplicates || s.Replicates > constants.MaxReplicates {
		return fmt.Errorf("replicates must be between %d and %d, got %d",
			constants.MinReplicates, constants.MaxReplicates, s.Replicates)
	}
	if s.Population <= 0 {
		return fmt.Errorf("population must be positive, got %d", s.Population)
	}
	if s.CI <= 0 || s.CI >= 100 {
		return fmt.Errorf("ci must be between 0 and 100 (exclusive), got %v", s.CI)
	}
	if s.MaxRunningTime < 0 {
		return fmt.Errorf("max_running_time must be non-negative, got %v", s.MaxRunningTime)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", s.Workers)
	}
	if _, err := c.DateRange(time.Now()); err != nil {
		return err
	}

	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.Cache.Size)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// ModelBounds converts the user-unit bounds into model fractions: the
// percentage parameters are divided by 100, tau stays in weeks.
func (c *VacsimConfig) ModelBounds() models.ParameterBounds {
	pct := func(b models.Bound) models.Bound {
		return models.Bound{Lower: b.Lower / 100, Upper: b.Upper / 100}
	}
	return models.ParameterBounds{
		PPro:     pct(c.Bounds.PPro),
		PAnti:    pct(c.Bounds.PAnti),
		Pressure: pct(c.Bounds.Pressure),
		Tau:      c.Bounds.Tau,
		NV0:      pct(c.Bounds.NV0),
		NVMax:    pct(c.Bounds.NVMax),
	}
}

// DateRange resolves the configured dates; an empty end date means the
// calendar day of now.
func (c *VacsimConfig) DateRange(now time.Time) (models.DateRange, error) {
	end := c.Sampling.EndDate
	if end == "" {
		end = now.Format(models.DateLayout)
	}
	r, err := models.ParseDateRange(c.Sampling.StartDate, end)
	if err != nil {
		return models.DateRange{}, err
	}
	if err := r.Validate(); err != nil {
		return models.DateRange{}, err
	}
	return r, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *VacsimConfig) {
	if v := os.Getenv("VACSIM_REPLICATES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Sampling.Replicates = n
		}
	}
	if v := os.Getenv("VACSIM_POPULATION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Sampling.Population = n
		}
	}
	if v := os.Getenv("VACSIM_CI"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Sampling.CI = f
		}
	}
	if v := os.Getenv("VACSIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Sampling.Seed = n
		}
	}
	if v := os.Getenv("VACSIM_START_DATE"); v != "" {
		config.Sampling.StartDate = v
	}
	if v := os.Getenv("VACSIM_END_DATE"); v != "" {
		config.Sampling.EndDate = v
	}
	if v := os.Getenv("VACSIM_MAX_RUNNING_TIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Sampling.MaxRunningTime = d
		}
	}
	if v := os.Getenv("VACSIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Sampling.Workers = n
		}
	}
	if v := os.Getenv("VACSIM_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Cache.Size = n
		}
	}
	if v := os.Getenv("VACSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
