package bundle

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/bundlecheck/internal/models"
)

// ErrUnsupportedFormat is returned for an entries file the loader cannot read
var ErrUnsupportedFormat = errors.New("unsupported entries format")

// Page is one scraped storefront bundle
type Page struct {
	BundleTitle string             `json:"bundle_title" yaml:"bundle_title"`
	Books       []models.BookEntry `json:"books" yaml:"books"`
}

// LoadPage reads scraped entries from a .json file ({"bundle_title",
// "books"} or a bare list) or a .jsonl file with one entry per line
func LoadPage(path string) (Page, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		return loadJSONPage(path)
	case ".jsonl":
		return loadJSONLPage(path)
	default:
		return Page{}, fmt.Errorf("%w: %s (supported: .json, .jsonl)", ErrUnsupportedFormat, ext)
	}
}

func loadJSONPage(path string) (Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, fmt.Errorf("failed to read entries file: %w", err)
	}

	var page Page
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &page.Books)
	} else {
		err = json.Unmarshal(trimmed, &page)
	}
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse entries file: %w", err)
	}

	page.normalize()
	slog.Debug("Loaded entries", "path", path, "bundle", page.BundleTitle, "entries", len(page.Books))

	return page, nil
}

func loadJSONLPage(path string) (Page, error) {
	file, err := os.Open(path)
	if err != nil {
		return Page{}, fmt.Errorf("failed to open entries file: %w", err)
	}
	defer file.Close()

	var page Page
	scanner := bufio.NewScanner(file)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry models.BookEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return Page{}, fmt.Errorf("failed to parse entry at line %d: %w", lineNum, err)
		}
		page.Books = append(page.Books, entry)
	}

	if err := scanner.Err(); err != nil {
		return Page{}, fmt.Errorf("error reading entries: %w", err)
	}

	page.normalize()
	return page, nil
}

// normalize trims titles and replaces null author lists so that reports
// always carry an array
func (p *Page) normalize() {
	p.BundleTitle = strings.TrimSpace(p.BundleTitle)
	if p.Books == nil {
		p.Books = []models.BookEntry{}
	}
	for i := range p.Books {
		p.Books[i].Title = strings.TrimSpace(p.Books[i].Title)
		if p.Books[i].Authors == nil {
			p.Books[i].Authors = []string{}
		}
	}
}

// Save writes the page as indented JSON, the same layout LoadPage reads
func (p Page) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal page: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}
	return nil
}
