package reconcile

import "github.com/eshaffer321/tuition-reconciler/internal/domain/roster"

// Kind tags the variant of an Outcome.
type Kind string

const (
	KindNameMatch           Kind = "name_match"
	KindAmountMatch         Kind = "amount_match"
	KindCombinedAmountMatch Kind = "combined_amount_match"
	KindUnmatched           Kind = "unmatched"
	KindParseAnomaly        Kind = "parse_anomaly"
)

// IsMatch reports whether the kind attributes evidence to students.
func (k Kind) IsMatch() bool {
	switch k {
	case KindNameMatch, KindAmountMatch, KindCombinedAmountMatch:
		return true
	}
	return false
}

// Reason explains an Unmatched or ParseAnomaly outcome.
type Reason string

const (
	ReasonNameNotFound          Reason = "name_not_found"
	ReasonAmbiguousName         Reason = "ambiguous_name"
	ReasonAmbiguousAmount       Reason = "ambiguous_amount"
	ReasonNoCandidate           Reason = "no_candidate"
	ReasonSearchBudgetExhausted Reason = "search_budget_exhausted"
	ReasonNoInformation         Reason = "no_information_extracted"
	ReasonMalformedNumber       Reason = "malformed_number"
)

// Outcome is one conclusion drawn from the evidence.
//
// Entries lists the students involved: the matched student(s) for a match,
// the tied contenders for an ambiguous Unmatched, and nothing otherwise.
type Outcome struct {
	Kind           Kind
	Entries        []roster.Entry
	Amount         int64 // 0 when the outcome is not about an amount
	SourceFragment string
	Line           int // 0 for the terminal no-information outcome
	Reason         Reason
	Score          int // similarity for name matches
}

// StudentIDs returns the identifiers of the involved entries.
func (o Outcome) StudentIDs() []int64 {
	return roster.IDs(o.Entries)
}

// Record is the serialisable form of an Outcome.
type Record struct {
	Type           Kind    `json:"type"`
	StudentIDs     []int64 `json:"student_ids"`
	Amount         int64   `json:"amount,omitempty"`
	SourceFragment string  `json:"source_fragment"`
	Line           int     `json:"line,omitempty"`
	Reason         Reason  `json:"reason,omitempty"`
	Score          int     `json:"score,omitempty"`
}

// ToRecord flattens the outcome for display or persistence.
func (o Outcome) ToRecord() Record {
	return Record{
		Type:           o.Kind,
		StudentIDs:     o.StudentIDs(),
		Amount:         o.Amount,
		SourceFragment: o.SourceFragment,
		Line:           o.Line,
		Reason:         o.Reason,
		Score:          o.Score,
	}
}

// Records converts a list of outcomes, preserving order.
func Records(outcomes []Outcome) []Record {
	records := make([]Record, len(outcomes))
	for i, o := range outcomes {
		records[i] = o.ToRecord()
	}
	return records
}
