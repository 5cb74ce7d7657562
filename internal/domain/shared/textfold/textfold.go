// Package textfold builds accent-insensitive search keys for Vietnamese text.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// đ/Đ carry a stroke, not a combining mark, so NFD leaves them intact
var strokeReplacer = strings.NewReplacer("đ", "d", "Đ", "D")

// Fold lowercases s and strips diacritics ("Nguyễn Đức" -> "nguyen duc")
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strokeReplacer.Replace(s))
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}

// Key folds and joins the non-empty parts with a single space
func Key(parts ...string) string {
	folded := make([]string, 0, len(parts))
	for _, p := range parts {
		if f := Fold(p); f != "" {
			folded = append(folded, f)
		}
	}
	return strings.Join(folded, " ")
}
