// Package evidence turns noisy payment text (pasted bank notifications,
// OCR output, flattened receipt records) into candidate amounts and names.
//
// Every line is scanned on its own; nothing is carried between lines, so a
// garbled OCR line can only ever spoil its own candidates.
//
// Roster scanning needs at least MinLiteralRunes characters of a name to
// match literally. With the default of 2, a redacted two-character name
// such as "이*" for "이준" is never found by scanning: one literal syllable
// would also match ordinary words ("이체", "이번"). Such names are still
// found unredacted, and a value after a name label goes to the name
// matcher instead.
package evidence

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Line is one input line with its 1-based position.
type Line struct {
	Number int
	Text   string
}

var annotationPattern = regexp.MustCompile(`\([^()]*\)|\[[^\[\]]*\]|\([^()]*$`)

// NormalizeText folds full-width characters to their ASCII forms and
// composes Hangul into NFC. OCR engines frequently emit "２５０，０００" or
// decomposed jamo, both of which would otherwise defeat the patterns below.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = width.Fold.String(s)
	return norm.NFC.String(s)
}

// SplitLines normalizes text and returns its non-blank lines.
func SplitLines(text string) []Line {
	var lines []Line
	for i, raw := range strings.Split(NormalizeText(text), "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		lines = append(lines, Line{Number: i + 1, Text: trimmed})
	}
	return lines
}

// StripAnnotations removes parenthetical notes such as "(중등수학)" or
// "[월수금]". An unclosed trailing "(" is treated as an annotation too.
func StripAnnotations(s string) string {
	return strings.TrimSpace(annotationPattern.ReplaceAllString(s, " "))
}

// CanonicalName is the comparison form of a name: normalized, annotations
// stripped, lower-cased, whitespace removed.
func CanonicalName(s string) string {
	s = StripAnnotations(NormalizeText(s))
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
