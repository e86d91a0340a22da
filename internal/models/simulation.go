package models

import "fmt"

// Metric names one of the per-day quantities a realization records.
type Metric string

const (
	MetricVaccinated Metric = "people_vaccinated_per_hundred"
	MetricDaily      Metric = "daily_vaccinations_per_million"
	MetricReceived   Metric = "cum_number_vac_received_per_hundred"
	MetricStock      Metric = "vaccines_in_stock_per_hundred"
)

// Metrics lists every metric in presentation order.
func Metrics() []Metric {
	return []Metric{MetricVaccinated, MetricDaily, MetricReceived, MetricStock}
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricVaccinated, MetricDaily, MetricReceived, MetricStock:
		return true
	}
	return false
}

// SimulationConfig holds the run-wide settings shared by every realization.
type SimulationConfig struct {
	// N is the simulated population size.
	N int `json:"n"`

	// CI is the quantile level bounding the confidence band, in (0, 1).
	CI float64 `json:"ci"`

	// Dates is the simulated calendar span; its length is the horizon.
	Dates DateRange `json:"dates"`
}

// Horizon is the number of simulated days.
func (c SimulationConfig) Horizon() int {
	return c.Dates.Days()
}

// Validate checks population size, CI level and date range.
func (c SimulationConfig) Validate() error {
	if c.N <= 0 {
		return fmt.Errorf("population size must be positive, got %d", c.N)
	}
	if !(c.CI > 0 && c.CI < 1) {
		return fmt.Errorf("confidence level must be in (0, 1), got %v", c.CI)
	}
	if err := c.Dates.Validate(); err != nil {
		return fmt.Errorf("invalid date range: %w", err)
	}
	return nil
}

// Trajectory is the output of a single realization: four parallel daily
// series of length equal to the horizon.
type Trajectory struct {
	VaccinatedPct      []float64
	DailyPerMillion    []float64
	ReceivedPerHundred []float64
	StockPerHundred    []float64
}

// NewTrajectory allocates a trajectory for the given horizon.
func NewTrajectory(horizon int) Trajectory {
	return Trajectory{
		VaccinatedPct:      make([]float64, 0, horizon),
		DailyPerMillion:    make([]float64, 0, horizon),
		ReceivedPerHundred: make([]float64, 0, horizon),
		StockPerHundred:    make([]float64, 0, horizon),
	}
}

// Len is the number of recorded days.
func (t Trajectory) Len() int {
	return len(t.VaccinatedPct)
}

// Series returns the recorded values for metric m.
func (t Trajectory) Series(m Metric) []float64 {
	switch m {
	case MetricVaccinated:
		return t.VaccinatedPct
	case MetricDaily:
		return t.DailyPerMillion
	case MetricReceived:
		return t.ReceivedPerHundred
	case MetricStock:
		return t.StockPerHundred
	}
	return nil
}
