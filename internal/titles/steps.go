package titles

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Step is one named transform in a normalization pipeline
type Step struct {
	Name  string
	Apply func(string) string
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "sixty": 60,
	"seventy": 70, "eighty": 80, "ninety": 90,

	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12, "thirteenth": 13, "fourteenth": 14, "fifteenth": 15,
	"sixteenth": 16, "seventeenth": 17, "eighteenth": 18, "nineteenth": 19, "twentieth": 20,
}

var (
	numberWordRe = compileWordAlternation(numberWords)

	possessiveRe         = regexp.MustCompile(`\b['’]s\b`)
	trailingApostropheRe = regexp.MustCompile(`\b['’]\B`)

	volumeTokenRe = regexp.MustCompile(`(?i)(^|[^\w])(?:v\.?|vol\.?|volume)\s*[.\-]?\s*(\d+)`)

	strictPunctuationRe = regexp.MustCompile(`[.'",:;!?()\[\]{}]`)
	anyPunctuationRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe        = regexp.MustCompile(`\s+`)
	leadingArticleRe    = regexp.MustCompile(`(?i)^(?:(?:a|the)\s+)+`)
	leadingZerosRe      = regexp.MustCompile(`\b0+(\d)`)

	stopWordRe = regexp.MustCompile(`\b(?:art edition|edition|art|the|a|an|and|of|tp|vol|v)\b`)

	subtitleVolumeRe = regexp.MustCompile(`(?i)\bvol\.?\s*\d+`)

	asciiFold = transform.Chain(
		norm.NFD,
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
)

func compileWordAlternation(words map[string]int) *regexp.Regexp {
	alternatives := make([]string, 0, len(words))
	for w := range words {
		alternatives = append(alternatives, regexp.QuoteMeta(w))
	}
	// longest first keeps "seventeen" from being read as "seven"
	slices.SortFunc(alternatives, func(a, b string) int {
		if d := len(b) - len(a); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alternatives, "|") + `)\b`)
}

// ConvertNumberWords replaces spelled-out cardinals and ordinals with numerals
func ConvertNumberWords(s string) string {
	return numberWordRe.ReplaceAllStringFunc(s, func(word string) string {
		return strconv.Itoa(numberWords[strings.ToLower(word)])
	})
}

// FoldPossessives turns "World's" into "Worlds" and drops a bare trailing
// apostrophe as in "Heroes'"
func FoldPossessives(s string) string {
	s = possessiveRe.ReplaceAllString(s, "s")
	return trailingApostropheRe.ReplaceAllString(s, "")
}

// StripDiacritics decomposes the text and discards everything outside ASCII
func StripDiacritics(s string) string {
	out, _, err := transform.String(asciiFold, s)
	if err != nil {
		return s
	}
	return out
}

// CanonicalizeVolumes rewrites v1, V. 1, vol-1, Volume 1 and friends as "vol. 1"
func CanonicalizeVolumes(s string) string {
	return volumeTokenRe.ReplaceAllString(s, "${1}vol. ${2}")
}

// StripStrictPunctuation removes . ' " , : ; ! ? and brackets, keeping
// hyphens and other symbols
func StripStrictPunctuation(s string) string {
	return strictPunctuationRe.ReplaceAllString(s, "")
}

// StripAllPunctuation removes every character that is neither a word
// character nor whitespace
func StripAllPunctuation(s string) string {
	return anyPunctuationRe.ReplaceAllString(s, "")
}

// CollapseWhitespace joins runs of whitespace into one space and trims the ends
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// StripLeadingArticle removes every leading "a " or "the ", so "The A Team"
// becomes "Team"
func StripLeadingArticle(s string) string {
	return leadingArticleRe.ReplaceAllString(s, "")
}

// StripLeadingZeros turns "007" into "7" and leaves a lone "0" alone
func StripLeadingZeros(s string) string {
	return leadingZerosRe.ReplaceAllString(s, "$1")
}

// RemoveStopWords drops edition and volume vocabulary plus common articles.
// Input is expected to be lowercase already.
func RemoveStopWords(s string) string {
	return stopWordRe.ReplaceAllString(s, "")
}

// Lower lowercases and trims
func Lower(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
