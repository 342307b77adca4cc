package evidence

import (
	"regexp"
	"sort"
	"strings"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/roster"
)

// NameSource records how a candidate name was found.
type NameSource string

const (
	NameFromLabel  NameSource = "label"
	NameFromRoster NameSource = "roster"
)

// Name is a cleaned candidate name.
type Name struct {
	Value    string
	Line     int
	Fragment string
	Source   NameSource
}

// labelPattern finds "성명: 노하연", "입금자 노*연", "Name: Kim" and similar.
// The label must start the line or follow a separator.
var labelPattern = regexp.MustCompile(`(?i)(?:^|[\s:|,])(?:성\s?명|이\s?름|학\s?생\s?명|학\s?생|입금자\s?명|입금자|보낸\s?분|예금주|name)\s*:?\s*(.+)$`)

var digitTail = regexp.MustCompile(`\d.*$`)

// ExtractLabeledNames returns, for every line carrying a name label, the
// text after the label up to the line end. Annotations and any trailing
// amount are removed.
func ExtractLabeledNames(lines []Line) []Name {
	var names []Name
	for _, line := range lines {
		m := labelPattern.FindStringSubmatch(line.Text)
		if m == nil {
			continue
		}

		value := StripAnnotations(m[1])
		value = digitTail.ReplaceAllString(value, "")
		value = strings.Trim(value, " \t:-")
		if value == "" {
			continue
		}

		names = append(names, Name{
			Value:    value,
			Line:     line.Number,
			Fragment: line.Text,
			Source:   NameFromLabel,
		})
	}
	return names
}

// ScanOptions tune roster-anchored scanning.
type ScanOptions struct {
	// MaxMaskedRunes is how many positions may be satisfied by a mask glyph
	// on either side.
	MaxMaskedRunes int
	// MinLiteralRunes is how many positions must match literally. Names
	// shorter than this are skipped, and a name of exactly this length can
	// only be found unredacted.
	MinLiteralRunes int
}

// DefaultScanOptions tolerates a single redacted character.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{MaxMaskedRunes: 1, MinLiteralRunes: 2}
}

// RosterHit is one place where a roster name occurs in the text.
type RosterHit struct {
	Index    int // position of the entry in the roster slice
	Entry    roster.Entry
	Line     int
	Start    int
	End      int
	Literal  int
	Fragment string
}

// Ambiguity is a span of text that equally well names several entries.
type Ambiguity struct {
	Line     int
	Fragment string
	Entries  []roster.Entry
}

// ScanResult is the outcome of roster-anchored scanning.
type ScanResult struct {
	// Hits holds the first accepted occurrence of each found entry,
	// ordered by position in the text and then roster order.
	Hits      []RosterHit
	Ambiguous []Ambiguity
}

// ScanRoster searches every line for every roster display name. Matching is
// a substring search on canonical forms where a mask glyph on either side
// stands for any one character. When several entries match overlapping text,
// the one with strictly more literally matched characters wins; a tie is
// reported as an Ambiguity rather than resolved.
func ScanRoster(lines []Line, entries []roster.Entry, opts ScanOptions) ScanResult {
	names := make([][]rune, len(entries))
	for i, e := range entries {
		names[i] = []rune(CanonicalName(e.Name))
	}

	var result ScanResult
	accepted := make(map[int]bool)

	for _, line := range lines {
		text := []rune(CanonicalName(line.Text))
		hits := lineHits(text, names, opts)

		type spanKey struct{ start, end int }
		tied := make(map[spanKey][]int)
		var tiedOrder []spanKey

		for i, h := range hits {
			lost, tie := false, false
			for j, c := range hits {
				if i == j || c.Index == h.Index || !overlaps(h, c) {
					continue
				}
				if c.Literal > h.Literal {
					lost = true
					break
				}
				if c.Literal == h.Literal {
					tie = true
				}
			}

			switch {
			case lost:
			case tie:
				k := spanKey{h.Start, h.End}
				if _, ok := tied[k]; !ok {
					tiedOrder = append(tiedOrder, k)
				}
				tied[k] = append(tied[k], h.Index)
			default:
				if !accepted[h.Index] {
					accepted[h.Index] = true
					h.Entry = entries[h.Index]
					h.Line = line.Number
					h.Fragment = line.Text
					result.Hits = append(result.Hits, h)
				}
			}
		}

		for _, k := range tiedOrder {
			amb := Ambiguity{Line: line.Number, Fragment: line.Text}
			idx := tied[k]
			sort.Ints(idx)
			for _, i := range idx {
				if !accepted[i] {
					amb.Entries = append(amb.Entries, entries[i])
				}
			}
			if len(amb.Entries) > 0 && !sameAmbiguity(result.Ambiguous, amb) {
				result.Ambiguous = append(result.Ambiguous, amb)
			}
		}
	}

	return result
}

// lineHits returns every window of text matching a roster name, ordered by
// start position then roster index.
func lineHits(text []rune, names [][]rune, opts ScanOptions) []RosterHit {
	var hits []RosterHit
	for start := 0; start < len(text); start++ {
		for idx, name := range names {
			if len(name) < opts.MinLiteralRunes || start+len(name) > len(text) {
				continue
			}
			literal, ok := windowMatch(text[start:start+len(name)], name, opts)
			if !ok {
				continue
			}
			hits = append(hits, RosterHit{
				Index:   idx,
				Start:   start,
				End:     start + len(name),
				Literal: literal,
			})
		}
	}
	return hits
}

func windowMatch(window, name []rune, opts ScanOptions) (int, bool) {
	literal, masked := 0, 0
	for i := range name {
		switch {
		case window[i] == name[i] && !roster.IsMask(name[i]):
			literal++
		case roster.IsMask(window[i]) || roster.IsMask(name[i]):
			masked++
			if masked > opts.MaxMaskedRunes {
				return 0, false
			}
		default:
			return 0, false
		}
	}
	return literal, literal >= opts.MinLiteralRunes
}

func overlaps(a, b RosterHit) bool {
	return a.Start < b.End && b.Start < a.End
}

func sameAmbiguity(existing []Ambiguity, amb Ambiguity) bool {
	for _, e := range existing {
		if len(e.Entries) != len(amb.Entries) {
			continue
		}
		same := true
		for i := range e.Entries {
			if e.Entries[i].ID != amb.Entries[i].ID {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}
