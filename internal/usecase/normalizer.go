package usecase

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Full-width ASCII block (！ through ～) and its distance from printable ASCII
const (
	fullWidthFirst  = '！'
	fullWidthLast   = '～'
	fullWidthOffset = 0xFEE0
)

// titleSeparators are stripped from comparison keys
const titleSeparators = "・:：~～"

// Normalize folds a title into a comparison key: lowercase, full-width
// ASCII folded to half-width, whitespace and separators removed.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// the chain only maps and drops runes, so it cannot fail
	key, _, _ := transform.String(newKeyTransformer(), s)
	return key
}

// newKeyTransformer builds a fresh chain per call; x/text transformers keep state.
func newKeyTransformer() transform.Transformer {
	return transform.Chain(
		cases.Lower(language.Und),
		runes.Map(foldFullWidth),
		runes.Remove(runes.Predicate(isKeyNoise)),
	)
}

func foldFullWidth(r rune) rune {
	if r >= fullWidthFirst && r <= fullWidthLast {
		return r - fullWidthOffset
	}
	return r
}

func isKeyNoise(r rune) bool {
	return isSpace(r) || strings.ContainsRune(titleSeparators, r)
}

// isSpace matches the whitespace set used by browsers for \s
func isSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}
