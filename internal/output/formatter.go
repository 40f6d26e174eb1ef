package output

import (
	"fmt"
	"io"
	"strings"
)

// NoPairsMessage is printed by the text formats when nothing was found
const NoPairsMessage = "No pairs have been found."

// Formatter defines output formatting interface
type Formatter interface {
	Format(report *Report, w io.Writer) error
}

// Format names an output format
type Format string

const (
	FormatTable  Format = "table"  // Plain aligned table
	FormatPretty Format = "pretty" // Boxed table with rank column
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
)

// ParseFormat parses a format name; empty selects the table
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatPretty, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, pretty, json or yaml)", s)
	}
}

// NewFormatter creates appropriate formatter based on format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatPretty:
		return &PrettyFormatter{}
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}
