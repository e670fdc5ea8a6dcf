package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/titanous/json5"
)

var (
	// ErrUnsupportedFormat is returned for a catalog file extension the loader cannot read
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
	// ErrUnsupportedShape is returned when a JSON catalog matches none of the known layouts
	ErrUnsupportedShape = errors.New("unsupported catalog shape")
)

// Loader reads owned-title catalogs from disk
type Loader struct {
	defaultBundle string
}

// NewLoader creates a loader that labels bundle-less entries with defaultBundle
func NewLoader(defaultBundle string) *Loader {
	if defaultBundle == "" {
		defaultBundle = DefaultBundleName
	}
	return &Loader{
		defaultBundle: defaultBundle,
	}
}

// Load reads every record in a catalog file (JSON, JSON5, JSONL or Parquet)
func (l *Loader) Load(path string) ([]Record, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json", ".json5":
		return l.loadJSON(path)
	case ".jsonl":
		return l.loadJSONL(path)
	case ".parquet":
		return l.loadParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s (supported: .json, .json5, .jsonl, .parquet)", ErrUnsupportedFormat, ext)
	}
}

// LoadAll reads every source in order. A source that cannot be read is
// logged and skipped so one bad file never aborts a run.
func (l *Loader) LoadAll(paths []string) []Record {
	var records []Record
	for _, path := range paths {
		recs, err := l.Load(path)
		if err != nil {
			slog.Warn("Could not read catalog, skipping", "path", path, "err", err)
			continue
		}
		slog.Info("Loaded catalog", "path", path, "records", len(recs))
		records = append(records, recs...)
	}
	return records
}

func (l *Loader) loadJSON(path string) ([]Record, error) {
	slog.Debug("Opening JSON catalog", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc any
	if err := json5.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return l.Decode(doc)
}

func (l *Loader) loadJSONL(path string) ([]Record, error) {
	slog.Debug("Opening JSONL catalog", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)

	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var value any
		if err := json5.Unmarshal(line, &value); err != nil {
			slog.Warn("Skipping malformed catalog line", "path", path, "line", lineNum, "err", err)
			continue
		}

		rec, ok := l.recordFromEntry(value, l.defaultBundle)
		if !ok {
			slog.Debug("Skipping catalog line without a title", "path", path, "line", lineNum)
			continue
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading catalog: %w", err)
	}

	slog.Debug("Finished reading JSONL catalog", "records", len(records), "lines", lineNum)

	return records, nil
}

func (l *Loader) loadParquet(path string) ([]Record, error) {
	slog.Debug("Opening Parquet catalog", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet catalog opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Record](pf)
	defer reader.Close()

	var records []Record
	rows := make([]Record, 128)

	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			row.Title = strings.TrimSpace(row.Title)
			if row.Title == "" {
				continue
			}
			if strings.TrimSpace(row.Bundle) == "" {
				row.Bundle = l.defaultBundle
			}
			row.Authors = NormalizeAuthors(row.Authors)
			records = append(records, row)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet catalog", "records", len(records))

	return records, nil
}

// Decode extracts records from an already parsed JSON document. Three
// layouts are understood: {"bundles": [{"human_name", "books"}]}, a bare
// list of titles or title objects, and {"books": [...]}.
func (l *Loader) Decode(doc any) ([]Record, error) {
	switch v := doc.(type) {
	case map[string]any:
		if bundles, ok := v["bundles"].([]any); ok {
			return l.decodeBundles(bundles), nil
		}
		if books, ok := v["books"].([]any); ok {
			return l.decodeEntries(books, l.defaultBundle), nil
		}
		return nil, fmt.Errorf("%w: object has neither \"bundles\" nor \"books\"", ErrUnsupportedShape)
	case []any:
		return l.decodeEntries(v, l.defaultBundle), nil
	default:
		return nil, fmt.Errorf("%w: top level is %T", ErrUnsupportedShape, doc)
	}
}

func (l *Loader) decodeBundles(bundles []any) []Record {
	var records []Record
	for _, b := range bundles {
		bundle, ok := b.(map[string]any)
		if !ok {
			continue
		}
		name := firstString(bundle, "human_name", "name")
		if name == "" {
			name = l.defaultBundle
		}
		books, _ := bundle["books"].([]any)
		records = append(records, l.decodeEntries(books, name)...)
	}
	return records
}

func (l *Loader) decodeEntries(entries []any, bundle string) []Record {
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		if rec, ok := l.recordFromEntry(e, bundle); ok {
			records = append(records, rec)
		}
	}
	return records
}

// recordFromEntry accepts a bare title string or an object carrying
// "Book Title"/"title" and "Authors"/"authors"
func (l *Loader) recordFromEntry(entry any, bundle string) (Record, bool) {
	switch v := entry.(type) {
	case string:
		title := strings.TrimSpace(v)
		return Record{Title: title, Authors: []string{}, Bundle: bundle}, title != ""
	case map[string]any:
		title := firstString(v, "Book Title", "title")
		if title == "" {
			return Record{}, false
		}
		if name := firstString(v, "bundle"); name != "" {
			bundle = name
		}
		return Record{
			Title:   title,
			Authors: NormalizeAuthors(authorList(v)),
			Bundle:  bundle,
		}, true
	default:
		return Record{}, false
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func authorList(m map[string]any) []string {
	for _, k := range []string{"Authors", "authors"} {
		switch v := m[k].(type) {
		case []any:
			authors := make([]string, 0, len(v))
			for _, a := range v {
				if s, ok := a.(string); ok {
					authors = append(authors, s)
				}
			}
			return authors
		case string:
			return []string{v}
		}
	}
	return nil
}
