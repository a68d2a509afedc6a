package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxShapeLen is the rune length from which a token's shape collapses to "LONG".
const maxShapeLen = 100

// Shape returns the orthographic signature of text: upper-case letters become
// "X", lower-case letters "x", digits "d", anything else is kept as is. Runs of
// the same shape character are cut after four.
func Shape(text string) string {
	if utf8.RuneCountInString(text) >= maxShapeLen {
		return "LONG"
	}

	var sb strings.Builder
	var last rune
	seq := 0
	for i, r := range text {
		var c rune
		switch {
		case unicode.IsLetter(r):
			if unicode.IsUpper(r) {
				c = 'X'
			} else {
				c = 'x'
			}
		case unicode.IsDigit(r):
			c = 'd'
		default:
			c = r
		}

		if i > 0 && c == last {
			seq++
		} else {
			seq = 0
			last = c
		}
		if seq < 4 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// IsAlpha reports whether text is non-empty and made only of letters.
func IsAlpha(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
