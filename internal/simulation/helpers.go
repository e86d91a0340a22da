package simulation

import (
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
)

// DefaultParams is the midpoint of the default parameter bounds.
func DefaultParams() models.ParameterSet {
	return models.ParameterSet{
		PPro:     0.65,
		PAnti:    0.20,
		Pressure: 0.035,
		Tau:      4.5,
		NV0:      0.0012,
		NVMax:    0.055,
	}
}

// NoPressureParams has no social pressure, so only the initial pro share can
// ever be vaccinated.
func NoPressureParams() models.ParameterSet {
	return models.ParameterSet{PPro: 0.3, PAnti: 0.3, Pressure: 0, Tau: 4, NV0: 0.01, NVMax: 0.5}
}

// AbundantSupplyParams delivers far more doses than the population needs.
func AbundantSupplyParams() models.ParameterSet {
	return models.ParameterSet{PPro: 0.5, PAnti: 0.1, Pressure: 0.2, Tau: 0.5, NV0: 0.5, NVMax: 2}
}

// Uniform repeats one parameter set n times, the input of an ensemble whose
// spread comes only from the engine's own randomness.
func Uniform(ps models.ParameterSet, n int) []models.ParameterSet {
	sets := make([]models.ParameterSet, n)
	for i := range sets {
		sets[i] = ps
	}
	return sets
}
