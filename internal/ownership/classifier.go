package ownership

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/bundlecheck/internal/catalog"
	"github.com/lehigh-university-libraries/bundlecheck/internal/models"
	"github.com/lehigh-university-libraries/bundlecheck/internal/titles"
)

// Classifier decides how likely it is that a listing is already owned
type Classifier struct {
	index     *catalog.Index
	threshold float64
	workers   int
}

// Option configures a Classifier
type Option func(*Classifier)

// WithThreshold sets the minimum fuzzy score, 0 to 100
func WithThreshold(threshold float64) Option {
	return func(c *Classifier) {
		c.threshold = threshold
	}
}

// WithWorkers bounds how many entries ClassifyAll scores at once
func WithWorkers(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.workers = n
		}
	}
}

// NewClassifier creates a classifier over an immutable catalog index
func NewClassifier(index *catalog.Index, opts ...Option) *Classifier {
	c := &Classifier{
		index:     index,
		threshold: DefaultThreshold,
		workers:   4,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.index == nil {
		c.index = catalog.NewBuilder().Build()
	}
	return c
}

// Threshold returns the fuzzy score cutoff in use
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify runs the strict, advanced and fuzzy tiers in order and stops at
// the first that matches
func (c *Classifier) Classify(entry models.BookEntry) models.ClassifiedBookEntry {
	forms := titles.Forms(entry.Title)

	if refs := c.index.StrictMatches(forms.Strict); len(refs) > 0 {
		return classified(entry, models.Owned, refs)
	}

	if c.index.HasAdvanced(forms.Advanced) {
		return classified(entry, models.ProbablyOwned, c.index.AdvancedMatches(forms.Advanced))
	}

	if forms.Subtitle == "" {
		return classified(entry, models.NotOwned, nil)
	}

	best, tied := c.bestFuzzy(titles.TokenSet(forms.Subtitle))
	status := Decide(best, c.threshold, authorsOverlap(entry.Authors, tied))

	slog.Debug("Fuzzy match",
		"title", entry.Title,
		"score", best,
		"candidates", len(tied),
		"status", status.String())

	if status == models.NotOwned {
		return classified(entry, models.NotOwned, nil)
	}

	refs := make([]catalog.TitleRef, 0, len(tied))
	for _, e := range tied {
		refs = append(refs, catalog.TitleRef{Bundle: e.Bundle, Title: e.Title})
	}
	return classified(entry, status, refs)
}

// bestFuzzy scans the whole corpus and returns the top score along with
// every entry that reached it
func (c *Classifier) bestFuzzy(query string) (float64, []catalog.CorpusEntry) {
	best := 0.0
	var tied []catalog.CorpusEntry
	for e := range c.index.Corpus() {
		score := Ratio(query, e.Tokens)
		switch {
		case score > best:
			best = score
			tied = append(tied[:0], e)
		case score == best && score > 0:
			tied = append(tied, e)
		}
	}
	return best, tied
}

// ClassifyAll classifies entries concurrently. The result is in input
// order; the only error is cancellation of ctx.
func (c *Classifier) ClassifyAll(ctx context.Context, entries []models.BookEntry) ([]models.ClassifiedBookEntry, error) {
	results := make([]models.ClassifiedBookEntry, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = c.Classify(entry)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classification interrupted: %w", err)
	}

	return results, nil
}

func classified(entry models.BookEntry, status models.OwnershipStatus, refs []catalog.TitleRef) models.ClassifiedBookEntry {
	return models.ClassifiedBookEntry{
		BookEntry:       entry,
		OwnershipStatus: status,
		MatchedBundles:  groupByBundle(refs),
	}
}

// groupByBundle folds refs into one provenance record per bundle, bundles
// and titles sorted, titles unique
func groupByBundle(refs []catalog.TitleRef) []models.MatchProvenance {
	byBundle := make(map[string][]string)
	for _, ref := range refs {
		byBundle[ref.Bundle] = append(byBundle[ref.Bundle], ref.Title)
	}

	out := make([]models.MatchProvenance, 0, len(byBundle))
	for bundle, matched := range byBundle {
		slices.Sort(matched)
		out = append(out, models.MatchProvenance{
			BundleName:    bundle,
			MatchedTitles: slices.Compact(matched),
		})
	}
	slices.SortFunc(out, func(a, b models.MatchProvenance) int {
		return strings.Compare(a.BundleName, b.BundleName)
	})
	return out
}

func authorsOverlap(authors []string, candidates []catalog.CorpusEntry) bool {
	mine := catalog.NormalizeAuthors(authors)
	if len(mine) == 0 {
		return false
	}
	for _, c := range candidates {
		for _, a := range c.Authors {
			if _, found := slices.BinarySearch(mine, a); found {
				return true
			}
		}
	}
	return false
}
