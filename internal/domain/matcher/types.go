package matcher

import "github.com/eshaffer321/tuition-reconciler/internal/domain/roster"

// Config holds matcher configuration
type Config struct {
	NameMatchThreshold   int   // 0-100 (default: 85)
	AmountTolerance      int64 // Currency units (default: 1000)
	MaxCombinationSize   int   // Largest subset tried by the resolver (default: 3)
	MaxCombinationChecks int   // Subset sums evaluated before giving up (default: 2,000,000)
	MinNameLength        int   // Shortest candidate name considered, in runes (default: 2)
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		NameMatchThreshold:   85,
		AmountTolerance:      1000,
		MaxCombinationSize:   3,
		MaxCombinationChecks: 2_000_000,
		MinNameLength:        2,
	}
}

// NameResult is the outcome of matching one candidate name.
type NameResult struct {
	Entry       *roster.Entry // nil when there is no unique match
	Score       int           // Best score seen
	RunnerUp    int           // Second best score, from a different entry
	Contenders  int           // Entries that reached the best score
	Unqualified bool          // Candidate too short or entirely masked
}

// Matched reports whether a unique entry was accepted.
func (r NameResult) Matched() bool { return r.Entry != nil }

// AmountResult is the outcome of 1:1 amount matching.
type AmountResult struct {
	Entry      *roster.Entry  // nil unless exactly one entry qualified
	Fee        int64          // The fee of Entry closest to the amount
	Candidates int            // Entries with any fee inside the tolerance
	Tied       []roster.Entry // The qualifying entries when there are several
}

// Matched reports whether a unique entry was accepted.
func (r AmountResult) Matched() bool { return r.Entry != nil }

// Ambiguous reports whether several entries qualified equally.
func (r AmountResult) Ambiguous() bool { return r.Candidates > 1 }

// CombinationResult is the outcome of N:1 resolution.
type CombinationResult struct {
	Entries   []roster.Entry // Matched subset in roster order, nil when none
	Sum       int64          // Summed primary fee of Entries
	Checks    int            // Subset sums evaluated
	Exhausted bool           // Search stopped at MaxCombinationChecks
}

// Matched reports whether a subset was found.
func (r CombinationResult) Matched() bool { return len(r.Entries) > 0 }
