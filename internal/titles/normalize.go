package titles

import (
	"slices"
	"strings"
)

// maxPasses bounds the fixed-point loop; real titles settle in two passes
const maxPasses = 4

// Pipeline applies its steps in order. A step may expose text that an
// earlier step would have rewritten ("vol.(1)" only becomes "vol1" after
// punctuation is gone), so the whole pipeline is rerun until the output
// stops changing. That keeps every pipeline idempotent.
type Pipeline struct {
	Name  string
	Steps []Step
}

// Apply runs the pipeline to a fixed point
func (p Pipeline) Apply(s string) string {
	out := p.once(s)
	for i := 1; i < maxPasses; i++ {
		next := p.once(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func (p Pipeline) once(s string) string {
	for _, step := range p.Steps {
		s = step.Apply(s)
	}
	return s
}

// StrictPipeline is the least lossy form: volume numbers and edition words
// survive, only spelling noise is removed
var StrictPipeline = Pipeline{
	Name: "strict",
	Steps: []Step{
		{Name: "number-words", Apply: ConvertNumberWords},
		{Name: "possessives", Apply: FoldPossessives},
		{Name: "diacritics", Apply: StripDiacritics},
		{Name: "volume-tokens", Apply: CanonicalizeVolumes},
		{Name: "punctuation", Apply: StripStrictPunctuation},
		{Name: "whitespace", Apply: CollapseWhitespace},
		{Name: "leading-article", Apply: StripLeadingArticle},
		{Name: "leading-zeros", Apply: StripLeadingZeros},
		{Name: "lowercase", Apply: Lower},
	},
}

// AdvancedPipeline drops volume and edition vocabulary so that
// "Foo Vol. 1 TP" and "Foo 1" converge
var AdvancedPipeline = Pipeline{
	Name: "advanced",
	Steps: []Step{
		{Name: "number-words", Apply: ConvertNumberWords},
		{Name: "possessives", Apply: FoldPossessives},
		{Name: "diacritics", Apply: StripDiacritics},
		{Name: "lowercase", Apply: strings.ToLower},
		{Name: "stop-words", Apply: RemoveStopWords},
		{Name: "punctuation", Apply: StripAllPunctuation},
		{Name: "diacritics-again", Apply: StripDiacritics},
		{Name: "whitespace", Apply: CollapseWhitespace},
		{Name: "leading-zeros", Apply: StripLeadingZeros},
		{Name: "trim", Apply: strings.TrimSpace},
	},
}

// Strict returns the strict match key for a title
func Strict(title string) string {
	return StrictPipeline.Apply(title)
}

// Advanced returns the lossier match key for a title
func Advanced(title string) string {
	return AdvancedPipeline.Apply(title)
}

// RemoveSubtitle cuts a title at its first colon, or right after a
// "vol. N" marker when there is no colon
func RemoveSubtitle(title string) string {
	if idx := strings.Index(title, ":"); idx >= 0 {
		return strings.TrimSpace(title[:idx])
	}
	if loc := subtitleVolumeRe.FindStringIndex(title); loc != nil {
		return strings.TrimSpace(title[:loc[1]])
	}
	return strings.TrimSpace(title)
}

// Fuzzy returns the subtitle-stripped advanced form used by the fuzzy corpus
func Fuzzy(title string) string {
	return Advanced(RemoveSubtitle(title))
}

// TokenSet sorts and deduplicates the whitespace-separated tokens of s so
// that word order and repetition do not affect similarity
func TokenSet(s string) string {
	tokens := strings.Fields(s)
	slices.Sort(tokens)
	return strings.Join(slices.Compact(tokens), " ")
}

// NormalizedTitle carries the three match keys derived from one title
type NormalizedTitle struct {
	Strict   string `json:"strict" yaml:"strict"`
	Advanced string `json:"advanced" yaml:"advanced"`
	Subtitle string `json:"subtitle_stripped" yaml:"subtitle_stripped"`
}

// Forms computes every match key for title
func Forms(title string) NormalizedTitle {
	return NormalizedTitle{
		Strict:   Strict(title),
		Advanced: Advanced(title),
		Subtitle: Fuzzy(title),
	}
}
