package ownership

import (
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/lehigh-university-libraries/bundlecheck/internal/models"
)

// DefaultThreshold is the minimum fuzzy score that counts as a possible match
const DefaultThreshold = 90.0

// Ratio scores two strings from 0 to 100 as 200*LCS/(len(a)+len(b)), the
// indel similarity. Identical non-empty strings score 100; an empty string
// never matches anything.
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	lcs := matchr.LongestCommonSubsequence(a, b)
	return float64(200*lcs) / float64(total)
}

// Decide maps the best fuzzy score to a status. Scores under threshold are
// not owned; otherwise a shared author upgrades a maybe to a probably.
func Decide(score, threshold float64, authorOverlap bool) models.OwnershipStatus {
	switch {
	case score < threshold:
		return models.NotOwned
	case authorOverlap:
		return models.ProbablyOwned
	default:
		return models.MaybeOwned
	}
}
