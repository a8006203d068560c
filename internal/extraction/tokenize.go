package extraction

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lower-cases s and strips combining marks so "Développeur" and
// "developpeur" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#'
}

// tokenize splits folded text into word tokens. '+' and '#' belong to tokens
// ("c++", "c#") and an interior '.' is kept ("node.js"); every other rune
// separates tokens.
func tokenize(s string) []string {
	rs := []rune(fold(s))
	var tokens []string
	start := -1
	for i, r := range rs {
		switch {
		case isTokenRune(r):
			if start < 0 {
				start = i
			}
		case r == '.' && start >= 0 && i+1 < len(rs) && (unicode.IsLetter(rs[i+1]) || unicode.IsDigit(rs[i+1])):
			// interior dot
		default:
			if start >= 0 {
				tokens = append(tokens, string(rs[start:i]))
				start = -1
			}
		}
	}
	if start >= 0 {
		tokens = append(tokens, string(rs[start:]))
	}
	return tokens
}

// stopWords never start or extend a partial match and carry no weight.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "by": true,
	"de": true, "en": true, "for": true, "from": true, "in": true, "is": true,
	"of": true, "on": true, "or": true, "the": true, "to": true, "with": true,
	"et": true, "la": true, "le": true, "les": true, "des": true, "du": true,
	"het": true, "van": true, "een": true,
}
