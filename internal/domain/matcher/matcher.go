// Package matcher attributes parsed evidence to roster entries.
//
// The matcher favours precision over recall:
//   - A name is attributed only to a single best-scoring entry above threshold
//   - An amount is attributed 1:1 only when exactly one entry has a fee within tolerance
//   - A combined amount is attributed to the first subset, in roster order, whose
//     primary fees sum to it
//
// Example usage:
//
//	m := matcher.NewMatcher(matcher.DefaultConfig())
//	if res := m.MatchAmount(250000, entries); res.Matched() {
//		// res.Entry paid its fee
//	}
package matcher

import (
	"github.com/eshaffer321/tuition-reconciler/internal/domain/evidence"
	"github.com/eshaffer321/tuition-reconciler/internal/domain/roster"
)

// Matcher matches evidence with roster entries
type Matcher struct {
	config     Config
	similarity Similarity
}

// NewMatcher creates a new matcher with the given config
func NewMatcher(config Config) *Matcher {
	return &Matcher{
		config:     config,
		similarity: PartialRatio,
	}
}

// WithSimilarity replaces the name scoring function.
func (m *Matcher) WithSimilarity(fn Similarity) *Matcher {
	m.similarity = fn
	return m
}

// Config returns the matcher's configuration.
func (m *Matcher) Config() Config {
	return m.config
}

// MatchName scores candidate against every roster name and accepts the top
// entry only when it clears the threshold and beats every other entry.
func (m *Matcher) MatchName(candidate string, entries []roster.Entry) NameResult {
	cand := evidence.CanonicalName(candidate)
	if !qualifies(cand, m.config.MinNameLength) {
		return NameResult{Unqualified: true}
	}

	var result NameResult
	best := -1
	for i := range entries {
		name := evidence.CanonicalName(entries[i].Name)
		if name == "" {
			continue
		}

		score := m.similarity(cand, name)
		switch {
		case score > result.Score || best < 0:
			result.RunnerUp = result.Score
			result.Score = score
			result.Contenders = 1
			best = i
		case score == result.Score:
			result.RunnerUp = score
			result.Contenders++
		case score > result.RunnerUp:
			result.RunnerUp = score
		}
	}

	if best < 0 || result.Contenders > 1 || result.Score < m.config.NameMatchThreshold {
		return result
	}

	entry := entries[best]
	result.Entry = &entry
	return result
}

// qualifies rejects candidates that are too short or carry no literal rune.
func qualifies(name string, minLength int) bool {
	runes := []rune(name)
	if len(runes) < minLength {
		return false
	}
	for _, r := range runes {
		if !roster.IsMask(r) {
			return true
		}
	}
	return false
}

// MatchAmount returns the single entry with any positive fee within
// tolerance of amount. Entries with a zero fee never qualify.
func (m *Matcher) MatchAmount(amount int64, entries []roster.Entry) AmountResult {
	var result AmountResult
	var qualified []roster.Entry
	var fee int64

	for _, e := range entries {
		f, ok := closestFee(e, amount, m.config.AmountTolerance)
		if !ok {
			continue
		}
		if len(qualified) == 0 {
			fee = f
		}
		qualified = append(qualified, e)
	}

	result.Candidates = len(qualified)
	switch {
	case result.Candidates == 1:
		result.Entry = &qualified[0]
		result.Fee = fee
	case result.Candidates > 1:
		result.Tied = qualified
	}
	return result
}

func closestFee(e roster.Entry, amount, tolerance int64) (int64, bool) {
	var best int64
	found := false
	for _, fee := range e.PositiveFees() {
		diff := abs(fee - amount)
		if diff > tolerance {
			continue
		}
		if !found || diff < abs(best-amount) {
			best = fee
			found = true
		}
	}
	return best, found
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
