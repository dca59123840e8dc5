package similarity

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the string, strips diacritics and drops every
// character outside [a-z0-9]. Two names that normalize equally are treated
// as the same name throughout the taxonomy.
func Normalize(s string) string {
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EqualFold reports whether the two names are the same after normalization,
// including the naive singular/plural rule (one equals the other with a
// trailing "s").
func EqualFold(a, b string) bool {
	return equalNormalized(Normalize(a), Normalize(b))
}

func equalNormalized(a, b string) bool {
	if a == b {
		return true
	}
	return a+"s" == b || b+"s" == a
}

// Score returns a similarity score in [0, 1]. Names equal after
// normalization (or under the singular/plural rule) score exactly 1.0;
// otherwise the score is 1 - editDistance/maxLen over the normalized forms.
// Case and accent differences never reduce the score below 1.0 on their own.
func Score(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if equalNormalized(na, nb) {
		return 1.0
	}

	maxLength := len(na)
	if len(nb) > maxLength {
		maxLength = len(nb)
	}
	if maxLength == 0 {
		return 1.0
	}

	distance := fuzzy.LevenshteinDistance(na, nb)
	return 1.0 - float64(distance)/float64(maxLength)
}
