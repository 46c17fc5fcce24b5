// Package output renders a completed valuation's AggregateResult through a
// set of pluggable formatters (console, JSON, CSV, HTML) selected by name and
// dispatched through a registered Formatter.
package output

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rpgo/valuation-engine/internal/domain"
)

// ErrUnsupportedFormat is returned by GenerateReport for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// Formatter renders an AggregateResult as bytes in some output format.
type Formatter interface {
	Format(result *domain.AggregateResult) ([]byte, error)
	Name() string
}

var builtInFormatters = []Formatter{
	ConsoleFormatter{},
	JSONFormatter{},
	CSVFormatter{},
	HTMLFormatter{},
}

var aliasMap = map[string]string{
	"text":        "console",
	"txt":         "console",
	"json-pretty": "json",
	"csv-summary": "csv",
}

// NormalizeFormatName lowers and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// GetFormatterByName fetches a registered formatter by its canonical name or
// an alias.
func GetFormatterByName(name string) Formatter {
	n := NormalizeFormatName(name)
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}

// AvailableFormatterNames returns the canonical formatter names, sorted.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// GenerateReport formats result and writes it to stdout, or to a
// timestamped file when toFile is true.
func GenerateReport(result *domain.AggregateResult, format string, toFile bool) error {
	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("%w: %q. Try one of: %s", ErrUnsupportedFormat, format, strings.Join(AvailableFormatterNames(), ", "))
	}
	data, err := f.Format(result)
	if err != nil {
		return err
	}
	if !toFile {
		_, err := os.Stdout.Write(data)
		return err
	}
	ext := f.Name()
	if ext == "console" {
		ext = "txt"
	}
	filename := fmt.Sprintf("valuation_report_%s_%s.%s", result.RunID, time.Now().Format("20060102_150405"), ext)
	return os.WriteFile(filename, data, 0o644)
}
