// Package constants provides named defaults used throughout vacsim.
// Values mirror the defaults of the original interactive forecaster.
package constants

import "time"

// Sampling defaults
const (
	// DefaultReplicates is the number of Monte Carlo realizations per run.
	DefaultReplicates = 100

	// DefaultPopulation is the simulated population size N.
	DefaultPopulation = 1000

	// DefaultCIPercent is the confidence level of the forecast band, in percent.
	DefaultCIPercent = 95.0

	// DefaultSeed reseeds the parameter sampler before every run so that an
	// unchanged configuration reproduces, and therefore hits the cache.
	DefaultSeed = 12345

	// DefaultMaxRunningTime is the wall-clock budget of one aggregation.
	DefaultMaxRunningTime = 30 * time.Second

	// DefaultCacheSize is the number of aggregation results kept in memory.
	DefaultCacheSize = 10
)

// DefaultStartDate is the first simulated day when none is configured.
const DefaultStartDate = "2020-12-30"

// Default parameter bounds, in the units the user enters them: percent for
// shares, pressure and supply; weeks for tau.
const (
	DefaultPProLower, DefaultPProUpper         = 60.0, 70.0
	DefaultPAntiLower, DefaultPAntiUpper       = 15.0, 25.0
	DefaultPressureLower, DefaultPressureUpper = 2.0, 5.0
	DefaultTauLower, DefaultTauUpper           = 4.0, 5.0
	DefaultNV0Lower, DefaultNV0Upper           = 0.04, 0.2
	DefaultNVMaxLower, DefaultNVMaxUpper       = 4.0, 7.0
)

// Accepted ranges of user-entered values (same units as the defaults).
const (
	MinReplicates = 1
	MaxReplicates = 3000

	MinTauWeeks = 0.5

	// MaxHorizonDays caps the simulated span at ten years.
	MaxHorizonDays = 3653
)

// Messages shown to the user.
const (
	// InfeasibleBoundsMessage explains why sampling was refused.
	InfeasibleBoundsMessage = "The percentages of pro- and anti-vaccines are simultaneously too high. Please reduce them."
)
