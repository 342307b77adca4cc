package matcher

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/roster"
)

// Similarity scores two canonical names on a 0-100 scale.
type Similarity func(a, b string) int

// maskOptions are the default edit costs with mask glyphs matching any rune.
var maskOptions = levenshtein.Options{
	InsCost: levenshtein.DefaultOptions.InsCost,
	DelCost: levenshtein.DefaultOptions.DelCost,
	SubCost: levenshtein.DefaultOptions.SubCost,
	Matches: func(a, b rune) bool {
		return a == b || roster.IsMask(a) || roster.IsMask(b)
	},
}

// PartialRatio slides the shorter string over the longer one and returns the
// best edit-distance ratio of any equally long window. A mask glyph on
// either side counts as a match, so "노*연" scores 100 against "노하연".
func PartialRatio(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	best := 0
	for start := 0; start+len(short) <= len(long); start++ {
		if score := ratio(short, long[start:start+len(short)]); score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

func ratio(a, b []rune) int {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	dist := levenshtein.DistanceForStrings(a, b, maskOptions)
	if dist > total {
		dist = total
	}
	return (total - dist) * 100 / total
}
