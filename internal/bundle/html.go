package bundle

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lehigh-university-libraries/bundlecheck/internal/models"
)

// ErrMissingSelector means the configuration lacks a selector the parser needs
var ErrMissingSelector = errors.New("missing selector")

// Selectors tell ParseHTML where each field lives in a saved storefront
// page. Nothing is built in; they come from configuration.
type Selectors struct {
	BundleTitle   string   `yaml:"bundle_title" toml:"bundle_title"`
	Item          string   `yaml:"item" toml:"item"`
	Title         string   `yaml:"title" toml:"title"`
	Credits       string   `yaml:"credits" toml:"credits"`
	CreditLabels  []string `yaml:"credit_labels" toml:"credit_labels"`
	CreditName    string   `yaml:"credit_name" toml:"credit_name"`
	Format        string   `yaml:"format" toml:"format"`
	FormatHints   []string `yaml:"format_hints" toml:"format_hints"`
	Price         string   `yaml:"price" toml:"price"`
	Image         string   `yaml:"image" toml:"image"`
	ImageLazyAttr string   `yaml:"image_lazy_attr" toml:"image_lazy_attr"`
}

// Validate checks that the selectors needed to find entries are present
func (s Selectors) Validate() error {
	if strings.TrimSpace(s.Item) == "" {
		return fmt.Errorf("%w: item", ErrMissingSelector)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: title", ErrMissingSelector)
	}
	return nil
}

// ParseHTML extracts bundle entries from a saved storefront page
func ParseHTML(r io.Reader, sel Selectors) (Page, error) {
	if err := sel.Validate(); err != nil {
		return Page{}, err
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse html: %w", err)
	}

	page := Page{Books: []models.BookEntry{}}
	if sel.BundleTitle != "" {
		page.BundleTitle = text(doc.Find(sel.BundleTitle).First())
	}

	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		page.Books = append(page.Books, models.BookEntry{
			Title:    text(item.Find(sel.Title).First()),
			Authors:  sel.authors(item),
			Format:   sel.format(item),
			ImageURL: sel.image(item),
			Price:    sel.price(item),
		})
	})

	slog.Debug("Parsed storefront page", "bundle", page.BundleTitle, "entries", len(page.Books))

	return page, nil
}

// authors reads the first credit block whose text carries one of the
// configured labels. A single name element may hold a comma separated list.
func (s Selectors) authors(item *goquery.Selection) []string {
	authors := []string{}
	if s.Credits == "" || s.CreditName == "" {
		return authors
	}

	item.Find(s.Credits).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		if !containsAny(block.Text(), s.CreditLabels) {
			return true
		}
		names := block.Find(s.CreditName)
		if names.Length() == 1 {
			for _, name := range strings.Split(text(names), ",") {
				if name = strings.TrimSpace(name); name != "" {
					authors = append(authors, name)
				}
			}
			return false
		}
		names.Each(func(_ int, name *goquery.Selection) {
			if t := text(name); t != "" {
				authors = append(authors, t)
			}
		})
		return false
	})

	return authors
}

func (s Selectors) format(item *goquery.Selection) string {
	if s.Format == "" {
		return ""
	}
	var format string
	item.Find(s.Format).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		t := text(el)
		if t != "" && (len(s.FormatHints) == 0 || containsAny(t, s.FormatHints)) {
			format = t
			return false
		}
		return true
	})
	return format
}

func (s Selectors) image(item *goquery.Selection) string {
	if s.Image == "" {
		return ""
	}
	img := item.Find(s.Image).First()
	if s.ImageLazyAttr != "" {
		if v, ok := img.Attr(s.ImageLazyAttr); ok && v != "" {
			return v
		}
	}
	src, _ := img.Attr("src")
	return src
}

func (s Selectors) price(item *goquery.Selection) string {
	if s.Price == "" {
		return ""
	}
	return text(item.Find(s.Price).First())
}

func text(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// containsAny matches labels case-insensitively. No labels means any text
// qualifies.
func containsAny(s string, labels []string) bool {
	if len(labels) == 0 {
		return true
	}
	s = strings.ToLower(s)
	for _, l := range labels {
		if strings.Contains(s, strings.ToLower(l)) {
			return true
		}
	}
	return false
}
