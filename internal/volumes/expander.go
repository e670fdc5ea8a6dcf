package volumes

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/bundlecheck/internal/models"
)

// Both patterns capture prefix, start, end and suffix. The suffix stops at
// a colon so "Foo Vol. 1-3: The Great Saga" expands to plain "Foo Vol. N".
var rangePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(.*?)\s*\b(?:vols?|volumes?)\.?\s*(\d+)\s*-\s*(\d+)([^:]*)`),
	// "V. 1-3" needs the period, otherwise a trailing "v" in a word would count
	regexp.MustCompile(`(?i)^(.*?)\s*\bv\.\s*(\d+)\s*-\s*(\d+)([^:]*)`),
}

// maxVolumeNumber is the largest volume number ParseRange accepts. Bigger
// numbers are not volume ranges and would overflow Len.
const maxVolumeNumber = 999999

// Range is a parsed volume range within a title
type Range struct {
	Prefix string
	Start  int
	End    int
	Suffix string
}

// Len is the number of volumes covered
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// Title builds the child title for volume i
func (r Range) Title(i int) string {
	title := r.Prefix + " Vol. " + strconv.Itoa(i)
	if r.Suffix != "" {
		title += " " + r.Suffix
	}
	return strings.TrimSpace(title)
}

// ParseRange finds the first pattern that matches title with
// start <= end <= maxVolumeNumber
func ParseRange(title string) (Range, bool) {
	for _, re := range rangePatterns {
		m := re.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		start, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		end, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		if start > end || end > maxVolumeNumber {
			continue
		}
		return Range{
			Prefix: strings.TrimSpace(m[1]),
			Start:  start,
			End:    end,
			Suffix: strings.TrimSpace(m[4]),
		}, true
	}
	return Range{}, false
}

// Expander splits multi-volume listings into one entry per volume
type Expander struct {
	// MaxSpan caps how many volumes one range may produce. Zero means no cap.
	MaxSpan int
}

// Expand replaces every entry whose title holds a volume range with one
// copy per volume, in place and in ascending order. Other entries pass
// through unchanged.
func (e Expander) Expand(entries []models.BookEntry) []models.BookEntry {
	out := make([]models.BookEntry, 0, len(entries))
	for _, entry := range entries {
		r, ok := ParseRange(entry.Title)
		if !ok {
			out = append(out, entry)
			continue
		}
		if e.MaxSpan > 0 && uint64(r.End-r.Start) >= uint64(e.MaxSpan) {
			slog.Warn("Volume range exceeds max span, keeping entry as is",
				"title", entry.Title,
				"span", r.Len(),
				"max_span", e.MaxSpan)
			out = append(out, entry)
			continue
		}
		for i := r.Start; ; i++ {
			out = append(out, entry.WithTitle(r.Title(i)))
			if i == r.End {
				break
			}
		}
		slog.Debug("Expanded volume range", "title", entry.Title, "start", r.Start, "end", r.End)
	}
	return out
}

// Expand runs an Expander without a span limit
func Expand(entries []models.BookEntry) []models.BookEntry {
	return Expander{}.Expand(entries)
}
