package catalog

import (
	"iter"
	"slices"
	"strings"

	"github.com/lehigh-university-libraries/bundlecheck/internal/titles"
)

// Index is the read-only lookup structure the ownership classifier
// consults. Build one with a Builder; it is never modified afterwards and
// may be shared between goroutines.
type Index struct {
	strict   map[string][]TitleRef
	advanced map[string][]TitleRef
	corpus   []CorpusEntry
	bundles  map[string]int
	records  int
}

// Builder accumulates catalog records for an Index
type Builder struct {
	idx *Index
}

// NewBuilder returns an empty builder
func NewBuilder() *Builder {
	return &Builder{idx: newIndex()}
}

func newIndex() *Index {
	return &Index{
		strict:   make(map[string][]TitleRef),
		advanced: make(map[string][]TitleRef),
		bundles:  make(map[string]int),
	}
}

// Add registers one owned title under all three match keys. Titles that
// normalize to nothing are ignored.
func (b *Builder) Add(rec Record) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return
	}
	bundle := strings.TrimSpace(rec.Bundle)
	if bundle == "" {
		bundle = DefaultBundleName
	}

	forms := titles.Forms(title)
	ref := TitleRef{Bundle: bundle, Title: title}
	registered := false

	if forms.Strict != "" {
		b.idx.strict[forms.Strict] = append(b.idx.strict[forms.Strict], ref)
		registered = true
	}
	if forms.Advanced != "" {
		b.idx.advanced[forms.Advanced] = append(b.idx.advanced[forms.Advanced], ref)
		registered = true
	}
	if forms.Subtitle != "" {
		b.idx.corpus = append(b.idx.corpus, CorpusEntry{
			Subtitle: forms.Subtitle,
			Tokens:   titles.TokenSet(forms.Subtitle),
			Authors:  NormalizeAuthors(rec.Authors),
			Bundle:   bundle,
			Title:    title,
		})
		registered = true
	}
	if registered {
		b.idx.bundles[bundle]++
		b.idx.records++
	}
}

// AddAll registers every record in order
func (b *Builder) AddAll(records []Record) *Builder {
	for _, rec := range records {
		b.Add(rec)
	}
	return b
}

// Build hands over the accumulated index and resets the builder
func (b *Builder) Build() *Index {
	idx := b.idx
	b.idx = newIndex()
	return idx
}

// StrictMatches returns the owned titles stored under a strict key
func (idx *Index) StrictMatches(key string) []TitleRef {
	if key == "" {
		return nil
	}
	return slices.Clone(idx.strict[key])
}

// AdvancedMatches returns the owned titles whose advanced form equals key
func (idx *Index) AdvancedMatches(key string) []TitleRef {
	if key == "" {
		return nil
	}
	return slices.Clone(idx.advanced[key])
}

// HasAdvanced reports whether any owned title has the advanced form key
func (idx *Index) HasAdvanced(key string) bool {
	if key == "" {
		return false
	}
	_, ok := idx.advanced[key]
	return ok
}

// Bundles lists, sorted and unique, the bundles holding a title with the
// advanced form key
func (idx *Index) Bundles(key string) []string {
	refs := idx.advanced[key]
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Bundle)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Corpus iterates the fuzzy-matching candidates in insertion order
func (idx *Index) Corpus() iter.Seq[CorpusEntry] {
	return func(yield func(CorpusEntry) bool) {
		for _, entry := range idx.corpus {
			if !yield(entry) {
				return
			}
		}
	}
}

// Len is the number of records that were indexed
func (idx *Index) Len() int {
	return idx.records
}

// Stats reports per-bundle title counts sorted by bundle name
func (idx *Index) Stats() []BundleStat {
	stats := make([]BundleStat, 0, len(idx.bundles))
	for name, n := range idx.bundles {
		stats = append(stats, BundleStat{Bundle: name, Titles: n})
	}
	slices.SortFunc(stats, func(a, b BundleStat) int {
		return strings.Compare(a.Bundle, b.Bundle)
	})
	return stats
}
