// Package roster defines the read-only view of expected payers that the
// reconciliation engine matches evidence against.
//
// An Entry is a snapshot: the engine never mutates it, and the owning
// storage layer is responsible for handing out a consistent set of entries
// for the duration of one reconciliation call.
package roster

// MaskGlyphs are the characters source systems use to redact part of a name
// (e.g. "노*연"). A mask glyph in either a roster name or a candidate matches
// any single character.
var MaskGlyphs = []rune{'*', '○', '●', '◯', '■', '□', '×'}

// IsMask reports whether r is a redaction glyph.
func IsMask(r rune) bool {
	for _, m := range MaskGlyphs {
		if r == m {
			return true
		}
	}
	return false
}

// Entry is one expected payer.
type Entry struct {
	ID   int64
	Name string

	// Fees holds the expected charges in the smallest currency unit.
	// Fees[0] is the primary (tuition) fee; any further fees are optional
	// extras such as the materials fee.
	Fees []int64
}

// PrimaryFee returns the tuition fee, or 0 when the entry has no fees.
func (e Entry) PrimaryFee() int64 {
	if len(e.Fees) == 0 {
		return 0
	}
	return e.Fees[0]
}

// PositiveFees returns the fees that take part in amount matching.
// Zero and negative fees are dropped.
func (e Entry) PositiveFees() []int64 {
	fees := make([]int64, 0, len(e.Fees))
	for _, f := range e.Fees {
		if f > 0 {
			fees = append(fees, f)
		}
	}
	return fees
}

// HasFeeWithin reports whether any positive fee lies within tolerance of amount.
func (e Entry) HasFeeWithin(amount, tolerance int64) bool {
	for _, f := range e.PositiveFees() {
		if absDiff(f, amount) <= tolerance {
			return true
		}
	}
	return false
}

// IDs returns the identifiers of entries, preserving order.
func IDs(entries []Entry) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
