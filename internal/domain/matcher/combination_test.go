package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/roster"
)

func TestMatcher_ResolveCombination_Pair(t *testing.T) {
	// Arrange
	m := NewMatcher(DefaultConfig())
	entries := []roster.Entry{
		makeEntry(1, "A", 80000),
		makeEntry(2, "B", 140000),
	}

	// Act
	result := m.ResolveCombination(220000, entries)

	// Assert
	require.True(t, result.Matched())
	assert.Equal(t, []int64{1, 2}, roster.IDs(result.Entries))
	assert.Equal(t, int64(220000), result.Sum)
	assert.False(t, result.Exhausted)
}

func TestMatcher_ResolveCombination_Triple(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	entries := []roster.Entry{
		makeEntry(1, "A", 100000),
		makeEntry(2, "B", 200000),
		makeEntry(3, "C", 400000),
		makeEntry(4, "D", 800000),
	}

	result := m.ResolveCombination(1300000, entries)

	require.True(t, result.Matched())
	assert.Equal(t, []int64{1, 3, 4}, roster.IDs(result.Entries))
}

func TestMatcher_ResolveCombination_SmallestSizeFirst(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	entries := []roster.Entry{
		makeEntry(1, "A", 100000),
		makeEntry(2, "B", 100000),
		makeEntry(3, "C", 100000),
		makeEntry(4, "D", 300000),
	}

	result := m.ResolveCombination(300000, entries)

	require.True(t, result.Matched())
	assert.Len(t, result.Entries, 3)
	assert.Equal(t, []int64{1, 2, 3}, roster.IDs(result.Entries))
}

func TestMatcher_ResolveCombination_FirstInRosterOrder(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	entries := []roster.Entry{
		makeEntry(1, "A", 150000),
		makeEntry(2, "B", 50000),
		makeEntry(3, "C", 100000),
		makeEntry(4, "D", 100000),
	}

	result := m.ResolveCombination(200000, entries)

	require.True(t, result.Matched())
	assert.Equal(t, []int64{1, 2}, roster.IDs(result.Entries))
}

func TestMatcher_ResolveCombination_Tolerance(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	entries := []roster.Entry{
		makeEntry(1, "A", 80000),
		makeEntry(2, "B", 140000),
	}

	assert.True(t, m.ResolveCombination(221000, entries).Matched())
	assert.False(t, m.ResolveCombination(221001, entries).Matched())
}

func TestMatcher_ResolveCombination_UsesPrimaryFeeOnly(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	entries := []roster.Entry{
		makeEntry(1, "A", 80000, 20000),
		makeEntry(2, "B", 140000),
	}

	assert.False(t, m.ResolveCombination(240000, entries).Matched())
}

func TestMatcher_ResolveCombination_SkipsZeroFees(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	entries := []roster.Entry{
		makeEntry(1, "A", 0),
		makeEntry(2, "B", 80000),
		makeEntry(3, "C", 140000),
	}

	result := m.ResolveCombination(220000, entries)

	require.True(t, result.Matched())
	assert.Equal(t, []int64{2, 3}, roster.IDs(result.Entries))
}

func TestMatcher_ResolveCombination_NoMatch(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	entries := []roster.Entry{
		makeEntry(1, "A", 80000),
		makeEntry(2, "B", 140000),
		makeEntry(3, "C", 250000),
	}

	result := m.ResolveCombination(1000000, entries)

	assert.False(t, result.Matched())
	assert.False(t, result.Exhausted)
}

func TestMatcher_ResolveCombination_SizeBound(t *testing.T) {
	config := DefaultConfig()
	config.MaxCombinationSize = 2
	m := NewMatcher(config)
	entries := []roster.Entry{
		makeEntry(1, "A", 100000),
		makeEntry(2, "B", 100000),
		makeEntry(3, "C", 100000),
	}

	assert.False(t, m.ResolveCombination(300000, entries).Matched())
}

func TestMatcher_ResolveCombination_TooFewEntries(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	assert.False(t, m.ResolveCombination(80000, []roster.Entry{makeEntry(1, "A", 80000)}).Matched())
	assert.False(t, m.ResolveCombination(80000, nil).Matched())
}

func TestMatcher_ResolveCombination_Budget(t *testing.T) {
	config := DefaultConfig()
	config.MaxCombinationChecks = 10
	m := NewMatcher(config)

	// Every subset sum is a multiple of 4,000, so none lands within
	// tolerance of the amount and the search runs until the budget stops it.
	entries := make([]roster.Entry, 60)
	for i := range entries {
		entries[i] = makeEntry(int64(i+1), "S", 100000+int64(i)*4000)
	}

	result := m.ResolveCombination(454000, entries)

	assert.False(t, result.Matched())
	assert.True(t, result.Exhausted)
	assert.Equal(t, 11, result.Checks)
}

func TestMatcher_ResolveCombination_LargeRosterPrunes(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	entries := make([]roster.Entry, 500)
	for i := range entries {
		entries[i] = makeEntry(int64(i+1), "S", 100000+int64(i)*1000)
	}

	// Only the three largest fees reach this sum.
	result := m.ResolveCombination(1794500, entries)

	require.True(t, result.Matched())
	assert.Equal(t, []int64{498, 499, 500}, roster.IDs(result.Entries))
	assert.False(t, result.Exhausted)
	assert.Less(t, result.Checks, 10000)
}
