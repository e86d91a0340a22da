package models

import (
	"fmt"
	"math"
)

// Bound is a closed interval [Lower, Upper] a parameter is drawn from.
type Bound struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Validate reports an error when the interval is inverted or not finite.
func (b Bound) Validate() error {
	if math.IsNaN(b.Lower) || math.IsNaN(b.Upper) {
		return fmt.Errorf("bound [%v, %v] contains NaN", b.Lower, b.Upper)
	}
	if b.Lower > b.Upper {
		return fmt.Errorf("lower bound %v is greater than upper bound %v", b.Lower, b.Upper)
	}
	return nil
}

// Contains reports whether v lies inside the interval.
func (b Bound) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// ParameterBounds holds the user-chosen ranges for every model parameter.
// Probabilities and supply amounts are fractions (0.6 means 60%); Tau is
// measured in weeks.
type ParameterBounds struct {
	// PPro bounds the share of the population that wants the vaccine.
	PPro Bound `json:"p_pro" yaml:"p_pro"`

	// PAnti bounds the share of the population that refuses the vaccine.
	PAnti Bound `json:"p_anti" yaml:"p_anti"`

	// Pressure bounds the strength of the social pressure effect.
	Pressure Bound `json:"pressure" yaml:"pressure"`

	// Tau bounds the duplication time (weeks) of weekly deliveries.
	Tau Bound `json:"tau" yaml:"tau"`

	// NV0 bounds the initial weekly delivery as a fraction of N.
	NV0 Bound `json:"nv0" yaml:"nv0"`

	// NVMax bounds the weekly delivery capacity as a fraction of N.
	NVMax Bound `json:"nvmax" yaml:"nvmax"`
}

// Validate checks every interval and names the offending parameter.
func (p ParameterBounds) Validate() error {
	checks := []struct {
		name string
		b    Bound
	}{
		{"p_pro", p.PPro},
		{"p_anti", p.PAnti},
		{"pressure", p.Pressure},
		{"tau", p.Tau},
		{"nv0", p.NV0},
		{"nvmax", p.NVMax},
	}
	for _, c := range checks {
		if err := c.b.Validate(); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}

// ParameterSet is one concrete draw from ParameterBounds.
type ParameterSet struct {
	PPro     float64 `json:"p_pro"`
	PAnti    float64 `json:"p_anti"`
	Pressure float64 `json:"pressure"`
	Tau      float64 `json:"tau"`
	NV0      float64 `json:"nv0"`
	NVMax    float64 `json:"nvmax"`
}

// PAgnostic is the share of the population with no initial preference.
func (p ParameterSet) PAgnostic() float64 {
	return 1 - (p.PPro + p.PAnti)
}

// Feasible reports whether the attitude shares fit in one population.
func (p ParameterSet) Feasible() bool {
	return p.PPro+p.PAnti <= 1
}

// Within reports whether every component lies inside its bound.
func (p ParameterSet) Within(b ParameterBounds) bool {
	return b.PPro.Contains(p.PPro) &&
		b.PAnti.Contains(p.PAnti) &&
		b.Pressure.Contains(p.Pressure) &&
		b.Tau.Contains(p.Tau) &&
		b.NV0.Contains(p.NV0) &&
		b.NVMax.Contains(p.NVMax)
}

// Validate rejects sets the engine cannot simulate: infeasible attitude
// shares, negative rates or a non-positive duplication time.
func (p ParameterSet) Validate() error {
	for _, v := range []float64{p.PPro, p.PAnti, p.Pressure, p.Tau, p.NV0, p.NVMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("parameter set %+v contains a non-finite value", p)
		}
	}
	if p.PPro < 0 || p.PAnti < 0 {
		return fmt.Errorf("p_pro and p_anti must be non-negative, got %v and %v", p.PPro, p.PAnti)
	}
	if !p.Feasible() {
		return fmt.Errorf("p_pro + p_anti must not exceed 1, got %v", p.PPro+p.PAnti)
	}
	if p.Pressure < 0 || p.NV0 < 0 || p.NVMax < 0 {
		return fmt.Errorf("pressure, nv0 and nvmax must be non-negative")
	}
	if p.Tau <= 0 {
		return fmt.Errorf("tau must be positive, got %v", p.Tau)
	}
	return nil
}
