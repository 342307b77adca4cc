package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/roster"
)

func entry(id int64, name string, fees ...int64) roster.Entry {
	return roster.Entry{ID: id, Name: name, Fees: fees}
}

func TestEngine_RedactedNameSuppressesAmount(t *testing.T) {
	// Arrange
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{entry(1, "노하연", 250000, 32000)}

	// Act
	outcomes := engine.Reconcile("노*연(중등수학) 250,000원", entries)

	// Assert
	require.Len(t, outcomes, 1)
	assert.Equal(t, KindNameMatch, outcomes[0].Kind)
	assert.Equal(t, []int64{1}, outcomes[0].StudentIDs())
	assert.Equal(t, "노*연(중등수학) 250,000원", outcomes[0].SourceFragment)
	assert.Zero(t, outcomes[0].Amount)
}

func TestEngine_AmountMatch(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{
		entry(1, "노하연", 250000),
		entry(2, "김민준", 80000),
	}

	outcomes := engine.Reconcile("[Web발신]\n입금 80,000원\n잔액 1,234,567원", entries)

	require.Len(t, outcomes, 2)
	assert.Equal(t, KindAmountMatch, outcomes[0].Kind)
	assert.Equal(t, []int64{2}, outcomes[0].StudentIDs())
	assert.Equal(t, int64(80000), outcomes[0].Amount)
	assert.Equal(t, 2, outcomes[0].Line)

	assert.Equal(t, KindUnmatched, outcomes[1].Kind)
	assert.Equal(t, ReasonNoCandidate, outcomes[1].Reason)
	assert.Equal(t, int64(1234567), outcomes[1].Amount)
}

func TestEngine_CombinedAmountMatch(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{
		entry(1, "A학생", 80000),
		entry(2, "B학생", 140000),
	}

	outcomes := engine.Reconcile("22만원 입금", entries)

	require.Len(t, outcomes, 1)
	assert.Equal(t, KindCombinedAmountMatch, outcomes[0].Kind)
	assert.Equal(t, []int64{1, 2}, outcomes[0].StudentIDs())
	assert.Equal(t, int64(220000), outcomes[0].Amount)
}

func TestEngine_IdenticalFeesAreAmbiguous(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{
		entry(1, "노하연", 250000),
		entry(2, "김민준", 250000),
	}

	outcomes := engine.Reconcile("250,000원", entries)

	require.Len(t, outcomes, 1)
	assert.Equal(t, KindUnmatched, outcomes[0].Kind)
	assert.Equal(t, ReasonAmbiguousAmount, outcomes[0].Reason)
	assert.Equal(t, []int64{1, 2}, outcomes[0].StudentIDs())
}

func TestEngine_AmbiguousRedactedName(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{
		entry(1, "노하연", 250000),
		entry(2, "노다연", 300000),
	}

	outcomes := engine.Reconcile("노*연 250,000", entries)

	require.Len(t, outcomes, 2)
	assert.Equal(t, KindUnmatched, outcomes[0].Kind)
	assert.Equal(t, ReasonAmbiguousName, outcomes[0].Reason)
	assert.Equal(t, []int64{1, 2}, outcomes[0].StudentIDs())

	assert.Equal(t, KindAmountMatch, outcomes[1].Kind)
	assert.Equal(t, []int64{1}, outcomes[1].StudentIDs())
}

func TestEngine_LabelledName(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{entry(7, "Kim Minsu", 150000)}

	outcomes := engine.Reconcile("Name: Kim Minsoo", entries)

	require.Len(t, outcomes, 1)
	assert.Equal(t, KindNameMatch, outcomes[0].Kind)
	assert.Equal(t, []int64{7}, outcomes[0].StudentIDs())
	assert.Equal(t, 87, outcomes[0].Score)
}

func TestEngine_LabelledNameNotFound(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{entry(1, "노하연", 250000)}

	outcomes := engine.Reconcile("성명: 박서준", entries)

	require.Len(t, outcomes, 1)
	assert.Equal(t, KindUnmatched, outcomes[0].Kind)
	assert.Equal(t, ReasonNameNotFound, outcomes[0].Reason)
	assert.Empty(t, outcomes[0].StudentIDs())
}

func TestEngine_LabelAndScanReportOnce(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{entry(1, "노하연", 250000)}

	outcomes := engine.Reconcile("성명: 노하연\n노하연 250,000", entries)

	require.Len(t, outcomes, 1)
	assert.Equal(t, KindNameMatch, outcomes[0].Kind)
	assert.Equal(t, 1, outcomes[0].Line)
}

func TestEngine_NameMatchesPrecedeAmounts(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{
		entry(1, "노하연", 250000),
		entry(2, "김민준", 80000),
	}

	outcomes := engine.Reconcile("80,000원 입금\n김민준 어머님\n250,000원", entries)

	require.Len(t, outcomes, 2)
	assert.Equal(t, KindNameMatch, outcomes[0].Kind)
	assert.Equal(t, []int64{2}, outcomes[0].StudentIDs())
	assert.Equal(t, KindAmountMatch, outcomes[1].Kind)
	assert.Equal(t, []int64{1}, outcomes[1].StudentIDs())
	assert.Equal(t, 3, outcomes[1].Line)
}

func TestEngine_SameAmountOnDifferentLinesKept(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{
		entry(1, "박서재", 80000),
		entry(2, "이도준", 140000),
	}

	outcomes := engine.Reconcile("03/02 입금 80,000원\n04/01 입금 80,000원", entries)

	require.Len(t, outcomes, 2, "two deposits of the same fee are two payments")
	for i, o := range outcomes {
		assert.Equal(t, KindAmountMatch, o.Kind)
		assert.Equal(t, []int64{1}, o.StudentIDs())
		assert.Equal(t, int64(80000), o.Amount)
		assert.Equal(t, i+1, o.Line)
	}
	assert.NotEqual(t, outcomes[0].SourceFragment, outcomes[1].SourceFragment)
}

func TestEngine_RepeatedLineCollapses(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{entry(2, "김민준", 80000)}

	outcomes := engine.Reconcile("입금 80,000원\n입금 80,000원", entries)

	require.Len(t, outcomes, 1)
	assert.Equal(t, KindAmountMatch, outcomes[0].Kind)
	assert.Equal(t, 1, outcomes[0].Line)
}

func TestEngine_ParseAnomaly(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{entry(2, "김민준", 80000)}

	outcomes := engine.Reconcile("승인번호 99999999999999999999999\n80,000원", entries)

	require.Len(t, outcomes, 2)
	assert.Equal(t, KindParseAnomaly, outcomes[0].Kind)
	assert.Equal(t, ReasonMalformedNumber, outcomes[0].Reason)
	assert.Equal(t, 1, outcomes[0].Line)
	assert.Equal(t, KindAmountMatch, outcomes[1].Kind)
}

func TestEngine_NoInformation(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{entry(1, "노하연", 250000)}

	tests := []struct {
		name     string
		text     string
		fragment string
	}{
		{name: "plain text", text: "  감사합니다\n", fragment: "감사합니다"},
		{name: "phone number only", text: "010-1234-5678", fragment: "010-1234-5678"},
		{name: "empty", text: "", fragment: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcomes := engine.Reconcile(tt.text, entries)

			require.Len(t, outcomes, 1)
			assert.Equal(t, KindUnmatched, outcomes[0].Kind)
			assert.Equal(t, ReasonNoInformation, outcomes[0].Reason)
			assert.Equal(t, tt.fragment, outcomes[0].SourceFragment)
		})
	}
}

func TestEngine_EmptyRoster(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	outcomes := engine.Reconcile("250,000원", nil)

	require.Len(t, outcomes, 1)
	assert.Equal(t, KindUnmatched, outcomes[0].Kind)
	assert.Equal(t, ReasonNoCandidate, outcomes[0].Reason)
}

func TestEngine_SearchBudgetExhausted(t *testing.T) {
	config := DefaultConfig()
	config.MaxCombinationChecks = 10
	engine := NewEngine(config)

	entries := make([]roster.Entry, 60)
	for i := range entries {
		entries[i] = entry(int64(i+1), "", 100000+int64(i)*4000)
	}

	outcomes := engine.Reconcile("454,000원", entries)

	require.Len(t, outcomes, 1)
	assert.Equal(t, KindUnmatched, outcomes[0].Kind)
	assert.Equal(t, ReasonSearchBudgetExhausted, outcomes[0].Reason)
}

func TestEngine_Idempotent(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	entries := []roster.Entry{
		entry(1, "노하연", 250000, 32000),
		entry(2, "김민준", 80000),
		entry(3, "이서윤", 140000),
		entry(4, "박지호", 140000),
	}
	text := "노*연 250,000원\n22만원\n140,000\n32,000\n성명: 최유나"

	first := engine.Reconcile(text, entries)
	second := engine.Reconcile(text, entries)

	assert.Equal(t, first, second)
}

func TestOutcome_ToRecord(t *testing.T) {
	o := Outcome{
		Kind:           KindCombinedAmountMatch,
		Entries:        []roster.Entry{entry(1, "A", 80000), entry(2, "B", 140000)},
		Amount:         220000,
		SourceFragment: "22만원",
		Line:           1,
	}

	assert.Equal(t, Record{
		Type:           KindCombinedAmountMatch,
		StudentIDs:     []int64{1, 2},
		Amount:         220000,
		SourceFragment: "22만원",
		Line:           1,
	}, o.ToRecord())
}
