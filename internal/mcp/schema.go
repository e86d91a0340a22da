// Package mcp provides an MCP (Model Context Protocol) server for vacsim.
package mcp

// BoundInput is a closed parameter range in user units.
type BoundInput struct {
	Lower float64 `json:"lower" jsonschema:"Lower end of the range"`
	Upper float64 `json:"upper" jsonschema:"Upper end of the range"`
}

// BoundsInput overrides the configured parameter ranges. Omitted ranges keep
// their configured values.
type BoundsInput struct {
	PPro     *BoundInput `json:"p_pro,omitempty" jsonschema:"Percent of the population in favor of the vaccine (default 60-70)"`
	PAnti    *BoundInput `json:"p_anti,omitempty" jsonschema:"Percent of the population against the vaccine (default 15-25)"`
	Pressure *BoundInput `json:"pressure,omitempty" jsonschema:"Social pressure strength in percent (default 2-5)"`
	Tau      *BoundInput `json:"tau,omitempty" jsonschema:"Duplication time of weekly deliveries in weeks (default 4-5)"`
	NV0      *BoundInput `json:"nv0,omitempty" jsonschema:"Initial weekly delivery as percent of the population (default 0.04-0.2)"`
	NVMax    *BoundInput `json:"nvmax,omitempty" jsonschema:"Maximum weekly delivery as percent of the population (default 4-7)"`
}

// VacsimSampleInput defines the input for the vacsim_sample tool.
type VacsimSampleInput struct {
	Bounds     BoundsInput `json:"bounds,omitempty" jsonschema:"Parameter ranges to sample from"`
	Replicates int         `json:"replicates,omitempty" jsonschema:"Number of parameter sets to draw (1-3000, default from config)"`
	Seed       uint64      `json:"seed,omitempty" jsonschema:"Sampler seed (0 keeps the configured seed)"`
	Limit      int         `json:"limit,omitempty" jsonschema:"Maximum number of sets to return (default 20)"`
}

// ParameterSetItem is one sampled parameter combination in user units.
type ParameterSetItem struct {
	PPro      float64 `json:"p_pro"`
	PAnti     float64 `json:"p_anti"`
	PAgnostic float64 `json:"p_agnostic"`
	Pressure  float64 `json:"pressure"`
	Tau       float64 `json:"tau"`
	NV0       float64 `json:"nv0"`
	NVMax     float64 `json:"nvmax"`
}

// VacsimSampleOutput defines the output for the vacsim_sample tool.
type VacsimSampleOutput struct {
	Sets       []ParameterSetItem `json:"sets" jsonschema:"Sampled parameter sets, in percent except tau (weeks)"`
	Count      int                `json:"count" jsonschema:"Number of sets drawn"`
	Rejections int                `json:"rejections" jsonschema:"Draws rejected because p_pro + p_anti exceeded 100%"`
	SoftNo     string             `json:"soft_no" jsonschema:"Agnostic share as mean plus or minus one standard deviation"`
	Message    string             `json:"message" jsonschema:"Human-readable summary"`
}

// VacsimForecastInput defines the input for the vacsim_forecast tool.
type VacsimForecastInput struct {
	Bounds         BoundsInput `json:"bounds,omitempty" jsonschema:"Parameter ranges to sample from"`
	Replicates     int         `json:"replicates,omitempty" jsonschema:"Number of Monte Carlo runs (1-3000, default from config)"`
	Population     int         `json:"population,omitempty" jsonschema:"Simulated population size (default 1000)"`
	CI             float64     `json:"ci,omitempty" jsonschema:"Confidence level in percent (default 95)"`
	Seed           uint64      `json:"seed,omitempty" jsonschema:"Seed (0 keeps the configured seed)"`
	StartDate      string      `json:"start_date,omitempty" jsonschema:"First simulated day, YYYY-MM-DD"`
	EndDate        string      `json:"end_date,omitempty" jsonschema:"Last simulated day, YYYY-MM-DD (default today)"`
	MaxRunningTime string      `json:"max_running_time,omitempty" jsonschema:"Time budget as a Go duration, e.g. 30s"`
	Daily          bool        `json:"daily,omitempty" jsonschema:"Report every day instead of the weekly grid"`
}

// SeriesPoint is the forecast of one metric on one date.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Mean  float64 `json:"mean"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// MetricSeries is the forecast of one metric.
type MetricSeries struct {
	Metric string        `json:"metric"`
	Points []SeriesPoint `json:"points"`
}

// VacsimForecastOutput defines the output for the vacsim_forecast tool.
type VacsimForecastOutput struct {
	Metrics   []MetricSeries `json:"metrics" jsonschema:"Mean and confidence band per metric"`
	Requested int            `json:"requested" jsonschema:"Monte Carlo runs requested"`
	Finished  int            `json:"finished" jsonschema:"Monte Carlo runs completed within the time budget"`
	Cached    bool           `json:"cached" jsonschema:"Whether the ensemble was served from the cache"`
	SoftNo    string         `json:"soft_no" jsonschema:"Agnostic share as mean plus or minus one standard deviation"`
	Warning   string         `json:"warning,omitempty" jsonschema:"Set when the time budget cut the run short"`
	Message   string         `json:"message" jsonschema:"Human-readable summary"`
}
