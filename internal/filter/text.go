package filter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Control-name synonym patterns. The target UI's vocabulary is not under
// our control, so each step matches a small family of names.
var (
	surfaceNameRe = regexp.MustCompile(`(?i)\b(Filters?|Refine)\b`)
	sectionNameRe = regexp.MustCompile(`(?i)\b(Locations?|Office|City|Region)\b`)
	clearNameRe   = regexp.MustCompile(`(?i)\b(Clear|Reset|Remove all)\b`)
	commitNameRe  = regexp.MustCompile(`(?i)\b(Apply|Done|Update|Show results)\b`)
)

func exactNameRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(name) + `$`)
}

func wholeWordRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
}

// foldText lowercases and strips combining marks so "Zürich" compares
// equal to "zurich".
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}

func containsFolded(haystack, needle string) bool {
	return strings.Contains(foldText(haystack), foldText(needle))
}
