package catalog

import (
	"slices"
	"strings"
)

// DefaultBundleName labels catalog entries whose source names no bundle
const DefaultBundleName = "Unknown Bundle"

// Record is one owned title as read from a catalog source
type Record struct {
	Title   string   `json:"title" parquet:"title"`
	Authors []string `json:"authors" parquet:"authors,list"`
	Bundle  string   `json:"bundle,omitempty" parquet:"bundle,optional"`
}

// TitleRef points at an owned title inside a named bundle
type TitleRef struct {
	Bundle string
	Title  string
}

// CorpusEntry is a fuzzy-matching candidate. Subtitle is the
// subtitle-stripped advanced form and Tokens its token set.
type CorpusEntry struct {
	Subtitle string
	Tokens   string
	Authors  []string
	Bundle   string
	Title    string
}

// BundleStat counts the titles an index holds for one bundle
type BundleStat struct {
	Bundle string `json:"bundle" yaml:"bundle"`
	Titles int    `json:"titles" yaml:"titles"`
}

// NormalizeAuthors lowercases and trims author names, dropping blanks and
// duplicates. The result is sorted.
func NormalizeAuthors(authors []string) []string {
	out := make([]string, 0, len(authors))
	for _, a := range authors {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			out = append(out, a)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
