package constants

// Format is an output format understood by the CLI.
type Format string

const (
	// FormatText renders human-readable tables.
	FormatText Format = "text"

	// FormatJSON renders machine-readable JSON.
	FormatJSON Format = "json"

	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"
)

// Valid returns true if the format is a recognized value.
func (f Format) Valid() bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}
