package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// outputFormat defines the report format for CLI commands.
type outputFormat string

const (
	outputYAML outputFormat = "yaml"
	outputJSON outputFormat = "json"
)

// activeOutput is set by the root command's --report flag.
var activeOutput = outputYAML

func setOutputFormat(format string) {
	switch format {
	case "json":
		activeOutput = outputJSON
	default:
		activeOutput = outputYAML
	}
}

// writeReport writes data to stdout in the configured format.
func writeReport(data any) error {
	return writeReportTo(os.Stdout, activeOutput, data)
}

func writeReportTo(w io.Writer, format outputFormat, data any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
}
