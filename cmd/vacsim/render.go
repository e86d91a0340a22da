package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/constants"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// outputFormat resolves --json and, where a command defines it, --yaml.
func outputFormat(cmd *cobra.Command) constants.Format {
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return constants.FormatJSON
	}
	if f := cmd.Flags().Lookup("yaml"); f != nil {
		if yamlOut, _ := cmd.Flags().GetBool("yaml"); yamlOut {
			return constants.FormatYAML
		}
	}
	return constants.FormatText
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format constants.Format, v any) error {
	switch format {
	case constants.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case constants.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported structured format: %s", format)
}
