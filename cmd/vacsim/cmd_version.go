package main

import (
	"fmt"
	"runtime"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/constants"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if format := outputFormat(cmd); format != constants.FormatText {
				return writeStructured(out, format, map[string]string{
					"version": version,
					"commit":  commit,
					"date":    date,
					"go":      runtime.Version(),
				})
			}
			fmt.Fprintf(out, "vacsim version %s (commit: %s, built: %s, %s)\n", version, commit, date, runtime.Version())
			return nil
		},
	}
}
