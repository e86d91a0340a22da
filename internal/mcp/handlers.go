package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/config"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/forecast"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/ratelimit"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/sampler"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

// defaultSampleLimit caps the sets returned by vacsim_sample.
const defaultSampleLimit = 20

// configResourceURI serves the server's default settings.
const configResourceURI = "vacsim://config"

// registerTools registers all vacsim MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolSample,
		Description: "Draw model parameter combinations from percentage bounds and summarize the agnostic share",
	}, s.handleVacsimSample)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolForecast,
		Description: "Forecast a vaccination campaign: mean and confidence band of people vaccinated, daily vaccinations, vaccines received and vaccines in stock",
	}, s.handleVacsimForecast)
}

// registerResources registers MCP resources.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         configResourceURI,
		Name:        "vacsim-config",
		Description: "Default bounds and sampling settings applied to every tool call.",
		MIMEType:    "application/yaml",
	}, s.handleConfigResource)
}

func (s *Server) handleConfigResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	data, err := yaml.Marshal(s.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      configResourceURI,
				MIMEType: "application/yaml",
				Text:     string(data),
			},
		},
	}, nil
}

func (s *Server) handleVacsimSample(ctx context.Context, req *sdk.CallToolRequest, args VacsimSampleInput) (_ *sdk.CallToolResult, _ VacsimSampleOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolSample, start, retErr, sanitizeToolParams(map[string]interface{}{
			"bounds": args.Bounds, "replicates": args.Replicates, "seed": args.Seed, "limit": args.Limit,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolSample); err != nil {
		return nil, VacsimSampleOutput{}, err
	}

	cfg := s.settingsWith(args.Bounds)
	if args.Replicates != 0 {
		cfg.Sampling.Replicates = args.Replicates
	}
	if args.Seed != 0 {
		cfg.Sampling.Seed = args.Seed
	}

	fr, err := forecast.RequestFromConfig(cfg, s.now())
	if err != nil {
		return nil, VacsimSampleOutput{}, err
	}
	res, err := s.forecaster.Sample(fr)
	if err != nil {
		return nil, VacsimSampleOutput{}, userError(err)
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultSampleLimit
	}
	n := min(limit, res.Len())
	sets := make([]ParameterSetItem, n)
	for i := range sets {
		sets[i] = toSetItem(res.Sets[i])
	}

	softNo := res.SoftNo().String()
	return nil, VacsimSampleOutput{
		Sets:       sets,
		Count:      res.Len(),
		Rejections: res.Rejections,
		SoftNo:     softNo,
		Message:    fmt.Sprintf("Sampled %d parameter sets (%d rejected). Agnostics: %s", res.Len(), res.Rejections, softNo),
	}, nil
}

func (s *Server) handleVacsimForecast(ctx context.Context, req *sdk.CallToolRequest, args VacsimForecastInput) (_ *sdk.CallToolResult, _ VacsimForecastOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolForecast, start, retErr, sanitizeToolParams(map[string]interface{}{
			"bounds": args.Bounds, "replicates": args.Replicates, "population": args.Population,
			"ci": args.CI, "seed": args.Seed, "start_date": args.StartDate, "end_date": args.EndDate,
			"max_running_time": args.MaxRunningTime, "daily": args.Daily,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolForecast); err != nil {
		return nil, VacsimForecastOutput{}, err
	}

	cfg := s.settingsWith(args.Bounds)
	if args.Replicates != 0 {
		cfg.Sampling.Replicates = args.Replicates
	}
	if args.Population != 0 {
		cfg.Sampling.Population = args.Population
	}
	if args.CI != 0 {
		cfg.Sampling.CI = args.CI
	}
	if args.Seed != 0 {
		cfg.Sampling.Seed = args.Seed
	}
	if args.StartDate != "" {
		cfg.Sampling.StartDate = args.StartDate
	}
	if args.EndDate != "" {
		cfg.Sampling.EndDate = args.EndDate
	}
	if args.MaxRunningTime != "" {
		d, err := time.ParseDuration(args.MaxRunningTime)
		if err != nil {
			return nil, VacsimForecastOutput{}, fmt.Errorf("invalid max_running_time: %w", err)
		}
		cfg.Sampling.MaxRunningTime = d
	}

	fr, err := forecast.RequestFromConfig(cfg, s.now())
	if err != nil {
		return nil, VacsimForecastOutput{}, err
	}
	report, err := s.forecaster.Run(ctx, fr)
	if err != nil {
		return nil, VacsimForecastOutput{}, userError(err)
	}

	out := VacsimForecastOutput{
		Metrics:   toMetricSeries(report.Result, args.Daily),
		Requested: report.Requested,
		Finished:  report.Finished,
		Cached:    report.Cached,
		SoftNo:    report.SoftNo.String(),
		Warning:   report.Warning,
	}
	out.Message = forecastMessage(report)
	return nil, out, nil
}

// settingsWith copies the server defaults and applies bound overrides.
func (s *Server) settingsWith(b BoundsInput) *config.VacsimConfig {
	cfg := *s.settings
	apply := func(dst *models.Bound, src *BoundInput) {
		if src != nil {
			*dst = models.Bound{Lower: src.Lower, Upper: src.Upper}
		}
	}
	apply(&cfg.Bounds.PPro, b.PPro)
	apply(&cfg.Bounds.PAnti, b.PAnti)
	apply(&cfg.Bounds.Pressure, b.Pressure)
	apply(&cfg.Bounds.Tau, b.Tau)
	apply(&cfg.Bounds.NV0, b.NV0)
	apply(&cfg.Bounds.NVMax, b.NVMax)
	return &cfg
}

// userError replaces an infeasible-bounds error with the message shown to
// end users.
func userError(err error) error {
	if errors.Is(err, sampler.ErrInfeasibleBounds) {
		return errors.New(forecast.UserMessage(err))
	}
	return err
}

func toSetItem(ps models.ParameterSet) ParameterSetItem {
	return ParameterSetItem{
		PPro:      100 * ps.PPro,
		PAnti:     100 * ps.PAnti,
		PAgnostic: 100 * ps.PAgnostic(),
		Pressure:  100 * ps.Pressure,
		Tau:       ps.Tau,
		NV0:       100 * ps.NV0,
		NVMax:     100 * ps.NVMax,
	}
}

// toMetricSeries flattens the result. Daily-indexed metrics are thinned to
// the weekly grid unless daily is set; the daily-vaccinations metric is
// already weekly.
func toMetricSeries(res *models.EnsembleResult, daily bool) []MetricSeries {
	out := make([]MetricSeries, 0, len(res.Series))
	for _, m := range models.Metrics() {
		s, ok := res.Series[m]
		if !ok {
			continue
		}
		step := 7
		if daily || m == models.MetricDaily {
			step = 1
		}
		s = s.Every(step)
		points := make([]SeriesPoint, s.Len())
		for i := range points {
			points[i] = SeriesPoint{
				Date:  s.Dates[i].Format(models.DateLayout),
				Mean:  s.Mean[i],
				Lower: s.Lower[i],
				Upper: s.Upper[i],
			}
		}
		out = append(out, MetricSeries{Metric: string(m), Points: points})
	}
	return out
}

func forecastMessage(r *forecast.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Completed %d of %d Monte Carlo runs.", r.Finished, r.Requested)
	if r.Cached {
		sb.WriteString(" Served from cache.")
	}
	if s, ok := r.Result.Series[models.MetricVaccinated]; ok && s.Len() > 0 {
		last := s.Len() - 1
		fmt.Fprintf(&sb, " People vaccinated on %s: %.1f%% (%.1f-%.1f%%).",
			s.Dates[last].Format(models.DateLayout), s.Mean[last], s.Lower[last], s.Upper[last])
	}
	fmt.Fprintf(&sb, " Agnostics: %s.", r.SoftNo)
	if r.Warning != "" {
		sb.WriteString(" " + r.Warning)
	}
	return sb.String()
}
