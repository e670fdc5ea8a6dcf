package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/bundlecheck/internal/models"
)

// Format selects how a report is written
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
)

// Formats lists every supported output format
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatTable, FormatCSV}

// ErrUnknownFormat is returned for a format name that is not in Formats
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// Summary counts entries per ownership status
type Summary struct {
	Total         int `json:"total" yaml:"total"`
	Owned         int `json:"owned" yaml:"owned"`
	ProbablyOwned int `json:"probably_owned" yaml:"probably_owned"`
	MaybeOwned    int `json:"maybe_owned" yaml:"maybe_owned"`
	NotOwned      int `json:"not_owned" yaml:"not_owned"`
}

// Count returns the tally for one status
func (s Summary) Count(status models.OwnershipStatus) int {
	switch status {
	case models.Owned:
		return s.Owned
	case models.ProbablyOwned:
		return s.ProbablyOwned
	case models.MaybeOwned:
		return s.MaybeOwned
	default:
		return s.NotOwned
	}
}

// Report is the result of one ownership check over a bundle
type Report struct {
	RunID       uuid.UUID                    `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time                    `json:"generated_at" yaml:"generated_at"`
	BundleTitle string                       `json:"bundle_title" yaml:"bundle_title"`
	Books       []models.ClassifiedBookEntry `json:"books" yaml:"books"`
	Summary     Summary                      `json:"summary" yaml:"summary"`
}

// Build assembles a report and tallies the summary
func Build(runID uuid.UUID, bundleTitle string, books []models.ClassifiedBookEntry) Report {
	if books == nil {
		books = []models.ClassifiedBookEntry{}
	}
	r := Report{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		BundleTitle: bundleTitle,
		Books:       books,
	}
	r.Summary.Total = len(books)
	for _, b := range books {
		switch b.OwnershipStatus {
		case models.Owned:
			r.Summary.Owned++
		case models.ProbablyOwned:
			r.Summary.ProbablyOwned++
		case models.MaybeOwned:
			r.Summary.MaybeOwned++
		default:
			r.Summary.NotOwned++
		}
	}
	return r
}

// Options control presentation details of the human readable formats
type Options struct {
	// Colorize adds ANSI colors to the table format
	Colorize bool
}

// Write renders the report to w in the given format
func (r Report) Write(w io.Writer, format Format, opts Options) error {
	switch format {
	case FormatText:
		return r.writeText(w)
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(r)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return encoder.Close()
	case FormatTable:
		return r.writeTable(w, opts.Colorize)
	case FormatCSV:
		return r.writeCSV(w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Save writes the report to path, creating parent directories
func (r Report) Save(path string, format Format) error {
	var buf bytes.Buffer
	if err := r.Write(&buf, format, Options{}); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
