package matcher

import (
	"sort"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/roster"
)

// ResolveCombination looks for a subset of entries whose primary fees sum
// to amount within tolerance, modelling one deposit that covers several
// payers. Subsets are tried by increasing size from 2 up to
// MaxCombinationSize and, within a size, in lexicographic roster order; the
// first qualifying subset is returned.
//
// Partial subsets are abandoned as soon as the smallest possible completion
// overshoots amount+tolerance or the largest possible completion falls short
// of amount-tolerance. Neither cut can skip a qualifying subset, so the
// answer is the same as for exhaustive enumeration.
func (m *Matcher) ResolveCombination(amount int64, entries []roster.Entry) CombinationResult {
	var result CombinationResult

	eligible := make([]roster.Entry, 0, len(entries))
	for _, e := range entries {
		if e.PrimaryFee() > 0 {
			eligible = append(eligible, e)
		}
	}

	maxSize := m.config.MaxCombinationSize
	if maxSize > len(eligible) {
		maxSize = len(eligible)
	}
	if maxSize < 2 {
		return result
	}

	fees := make([]int64, len(eligible))
	for i, e := range eligible {
		fees[i] = e.PrimaryFee()
	}
	bounds := newSuffixBounds(fees, maxSize)

	lo := amount - m.config.AmountTolerance
	hi := amount + m.config.AmountTolerance

	for size := 2; size <= maxSize; size++ {
		picked, ok := m.searchSize(fees, size, lo, hi, bounds, &result)
		if result.Exhausted {
			return result
		}
		if !ok {
			continue
		}

		result.Entries = make([]roster.Entry, size)
		for i, p := range picked {
			result.Entries[i] = eligible[p]
			result.Sum += fees[p]
		}
		return result
	}

	return result
}

// searchSize enumerates index tuples of one size with an explicit stack.
// idx[d] is the roster position chosen at depth d; sums[d] is the fee total
// of the first d choices.
func (m *Matcher) searchSize(fees []int64, size int, lo, hi int64, b suffixBounds, result *CombinationResult) ([]int, bool) {
	n := len(fees)
	idx := make([]int, size)
	sums := make([]int64, size+1)
	budget := m.config.MaxCombinationChecks

	depth := 0
	for depth >= 0 {
		p := idx[depth]
		remaining := size - depth

		if p > n-remaining ||
			sums[depth]+b.min[remaining][p] > hi ||
			sums[depth]+b.max[remaining][p] < lo {
			depth--
			if depth >= 0 {
				idx[depth]++
			}
			continue
		}

		result.Checks++
		if budget > 0 && result.Checks > budget {
			result.Exhausted = true
			return nil, false
		}

		sums[depth+1] = sums[depth] + fees[p]
		if depth == size-1 {
			if sums[size] >= lo && sums[size] <= hi {
				return idx, true
			}
			idx[depth]++
			continue
		}

		depth++
		idx[depth] = p + 1
	}

	return nil, false
}

// suffixBounds holds, for k items chosen from fees[p:], the smallest
// (min[k][p]) and largest (max[k][p]) achievable sum. Entries where fewer
// than k fees remain are unused.
type suffixBounds struct {
	min [][]int64
	max [][]int64
}

func newSuffixBounds(fees []int64, maxK int) suffixBounds {
	n := len(fees)
	b := suffixBounds{
		min: make([][]int64, maxK+1),
		max: make([][]int64, maxK+1),
	}
	for k := range b.min {
		b.min[k] = make([]int64, n+1)
		b.max[k] = make([]int64, n+1)
	}

	// Walk from the end keeping the maxK smallest and largest fees seen.
	var smallest, largest []int64
	for p := n - 1; p >= 0; p-- {
		smallest = keepSorted(smallest, fees[p], maxK, func(a, b int64) bool { return a < b })
		largest = keepSorted(largest, fees[p], maxK, func(a, b int64) bool { return a > b })

		var lowSum, highSum int64
		for k := 1; k <= len(smallest); k++ {
			lowSum += smallest[k-1]
			highSum += largest[k-1]
			b.min[k][p] = lowSum
			b.max[k][p] = highSum
		}
	}
	return b
}

// keepSorted inserts v into the ordered slice and truncates it to limit.
func keepSorted(s []int64, v int64, limit int, less func(a, b int64) bool) []int64 {
	i := sort.Search(len(s), func(i int) bool { return less(v, s[i]) })
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	if len(s) > limit {
		s = s[:limit]
	}
	return s
}
