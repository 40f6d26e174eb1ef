package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// JSONFormatter writes the report as a JSON Document
type JSONFormatter struct {
	Indent string
}

func (f *JSONFormatter) Format(report *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	if err := enc.Encode(NewDocument(report)); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// YAMLFormatter writes the report as a YAML Document
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(report *Report, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(report)); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return enc.Close()
}
