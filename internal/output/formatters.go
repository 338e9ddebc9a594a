// Package output renders command results as text tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/teabranch/atlas-provision/internal/config"
)

// Formatter handles output formatting for different formats
type Formatter struct {
	format config.OutputFormat
	writer io.Writer
}

// NewFormatter creates a new formatter for the specified format
func NewFormatter(format config.OutputFormat, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
	}
}

// Structured reports whether the format is machine readable.
func (f *Formatter) Structured() bool {
	return f.format == config.OutputJSON || f.format == config.OutputYAML
}

// Format outputs data in the configured format
func (f *Formatter) Format(data any) error {
	switch f.format {
	case config.OutputJSON:
		return f.formatJSON(data)
	case config.OutputYAML:
		return f.formatYAML(data)
	case config.OutputTable, config.OutputText, "":
		return f.formatText(data)
	default:
		return fmt.Errorf("unsupported output format: %s", f.format)
	}
}

// formatJSON outputs data as pretty-printed JSON
func (f *Formatter) formatJSON(data any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// formatYAML outputs data as YAML
func (f *Formatter) formatYAML(data any) error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}

func (f *Formatter) formatText(data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case TableData:
		return f.formatTableData(v)
	case string:
		_, err := fmt.Fprintln(f.writer, v)
		return err
	default:
		_, err := fmt.Fprintf(f.writer, "%v\n", v)
		return err
	}
}

// TableData represents structured table data with headers and rows
type TableData struct {
	Headers []string
	Rows    [][]string
}

// formatTableData formats TableData as a text table
func (f *Formatter) formatTableData(data TableData) error {
	if len(data.Rows) == 0 {
		_, err := fmt.Fprintln(f.writer, "No data found")
		return err
	}

	w := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)

	if len(data.Headers) > 0 {
		fmt.Fprintln(w, strings.Join(data.Headers, "\t"))
		separators := make([]string, len(data.Headers))
		for i := range separators {
			separators[i] = strings.Repeat("-", len(data.Headers[i]))
		}
		fmt.Fprintln(w, strings.Join(separators, "\t"))
	}

	for _, row := range data.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	return w.Flush()
}

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	noteColor    = color.New(color.FgYellow)
)

// Success prints a highlighted success line.
func Success(w io.Writer, format string, args ...any) {
	_, _ = successColor.Fprintf(w, format+"\n", args...)
}

// Failure prints a highlighted error line.
func Failure(w io.Writer, format string, args ...any) {
	_, _ = errorColor.Fprintf(w, format+"\n", args...)
}

// Note prints a highlighted advisory line.
func Note(w io.Writer, format string, args ...any) {
	_, _ = noteColor.Fprintf(w, format+"\n", args...)
}
