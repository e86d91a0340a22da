package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/constants"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/forecast"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/sampler"
	"github.com/spf13/cobra"
)

// sampleOutput is the structured form of `vacsim sample`.
type sampleOutput struct {
	Sets       []models.ParameterSet `json:"sets" yaml:"sets"`
	SoftNo     sampler.SoftNoSummary `json:"soft_no" yaml:"soft_no"`
	Rejections int                   `json:"rejections" yaml:"rejections"`
}

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw parameter sets without simulating",
		Long: `Draw parameter sets from the configured bounds and print them with
the resulting share of agnostics ("soft no"). Useful to check that a set of
bounds is feasible before running a forecast.

Examples:
  vacsim sample --replicates 10
  vacsim sample --p-pro 70,80 --p-anti 25,35`,
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

			f, err := forecast.NewFromConfig(cfg, forecast.WithLogger(newLogger(cmd, cfg)))
			if err != nil {
				return err
			}
			res, err := f.Sample(req)
			if err != nil {
				return errors.New(forecast.UserMessage(err))
			}

			out := cmd.OutOrStdout()
			if format := outputFormat(cmd); format != constants.FormatText {
				return writeStructured(out, format, sampleOutput{
					Sets:       res.Sets,
					SoftNo:     res.SoftNo(),
					Rejections: res.Rejections,
				})
			}

			fmt.Fprintf(out, "%-4s  %7s  %7s  %9s  %6s  %6s  %6s\n",
				"#", "P_PRO%", "P_ANTI%", "PRESSURE%", "TAU", "NV0%", "NVMAX%")
			for i, ps := range res.Sets {
				fmt.Fprintf(out, "%-4d  %7.2f  %7.2f  %9.2f  %6.2f  %6.3f  %6.2f\n",
					i+1, 100*ps.PPro, 100*ps.PAnti, 100*ps.Pressure, ps.Tau, 100*ps.NV0, 100*ps.NVMax)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Soft no (agnostics): %s\n", res.SoftNo())
			if res.Rejections > 0 {
				fmt.Fprintf(out, "Rejected draws: %d\n", res.Rejections)
			}
			return nil
		},
	}

	addBoundFlags(cmd)
	addSamplingFlags(cmd)

	return cmd
}
