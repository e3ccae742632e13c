package sqlite

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// fold normalizes text for case- and accent-insensitive matching:
// "Beyoncé" and "BEYONCE" both fold to "beyonce".
func fold(s string) string {
	t := transform.Chain(norm.NFKD, stripMarks, cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// likePattern builds a LIKE pattern matching term anywhere, escaping wildcards.
// Use with ESCAPE '\'.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(fold(term)) + "%"
}
