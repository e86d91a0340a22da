package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"time"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/constants"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/forecast"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Forecast the vaccination campaign",
		Long: `Sample parameter sets from the configured bounds, simulate one
stochastic realization per set and print the ensemble mean and confidence
band of every metric, one row per week.

Bounds are given in the units of the configuration file: percent for
p-pro, p-anti, pressure, nv0 and nvmax; weeks for tau.

Examples:
  vacsim run
  vacsim run --replicates 500 --ci 90
  vacsim run --p-pro 50,60 --p-anti 20,30 --end 2021-06-30
  vacsim run --budget 5s --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}
			req, err := forecast.RequestFromConfig(cfg, time.Now())
			if err != nil {
				return err
			}

			trace := newTrace(cfg)
			defer trace.Close()

			f, err := forecast.NewFromConfig(cfg,
				forecast.WithLogger(newLogger(cmd, cfg)),
				forecast.WithTrace(trace))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
			defer stop()

			report, err := f.Run(ctx, req)
			if err != nil {
				return errors.New(forecast.UserMessage(err))
			}

			out := cmd.OutOrStdout()
			if format := outputFormat(cmd); format != constants.FormatText {
				return writeStructured(out, format, report)
			}
			printReport(out, report)
			return nil
		},
	}

	addBoundFlags(cmd)
	addSamplingFlags(cmd)
	addForecastFlags(cmd)

	return cmd
}

// printReport renders the weekly forecast table.
func printReport(w io.Writer, r *forecast.Report) {
	fmt.Fprintf(w, "Forecast: %d of %d realizations", r.Finished, r.Requested)
	if r.Cached {
		fmt.Fprint(w, " (cached)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Soft no (agnostics): %s\n", r.SoftNo)
	if r.Warning != "" {
		fmt.Fprintf(w, "Warning: %s\n", r.Warning)
	}
	fmt.Fprintln(w)

	vaccinated := r.Result.Series[models.MetricVaccinated].Every(7)
	daily := r.Result.Series[models.MetricDaily]
	received := r.Result.Series[models.MetricReceived].Every(7)
	stock := r.Result.Series[models.MetricStock].Every(7)

	fmt.Fprintf(w, "%-10s  %-22s  %-22s  %-22s  %-22s\n",
		"WEEK", "VACCINATED %", "DAILY /1M", "RECEIVED /100", "STOCK /100")
	for i, d := range vaccinated.Dates {
		fmt.Fprintf(w, "%-10s  %-22s  %-22s  %-22s  %-22s\n",
			d.Format(models.DateLayout),
			cell(vaccinated, i),
			cell(daily, i),
			cell(received, i),
			cell(stock, i))
	}
}

func cell(s models.Series, i int) string {
	if i >= s.Len() {
		return "-"
	}
	return fmt.Sprintf("%.1f [%.1f, %.1f]", s.Mean[i], s.Lower[i], s.Upper[i])
}
