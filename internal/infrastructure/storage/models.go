package storage

import (
	"time"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/reconcile"
	"github.com/eshaffer321/tuition-reconciler/internal/domain/roster"
)

// Student is one enrolled payer with their fee schedule.
type Student struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ParentContact string    `json:"parent_contact"`
	BaseFee       int64     `json:"base_fee"`
	BookFee       int64     `json:"book_fee"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Entry returns the engine's read-only view of the student. The book fee
// is listed only when one is charged.
func (s Student) Entry() roster.Entry {
	fees := []int64{s.BaseFee}
	if s.BookFee > 0 {
		fees = append(fees, s.BookFee)
	}
	return roster.Entry{ID: s.ID, Name: s.Name, Fees: fees}
}

// Entries converts a roster listing for the engine.
func Entries(students []*Student) []roster.Entry {
	entries := make([]roster.Entry, len(students))
	for i, s := range students {
		entries[i] = s.Entry()
	}
	return entries
}

// PaymentStatus tracks whether an expected fee has been received.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentMismatch PaymentStatus = "MISMATCH"
)

// Valid reports whether the status is one of the known values.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentMismatch:
		return true
	}
	return false
}

// Payment is a recorded receipt for one student.
type Payment struct {
	ID            int64         `json:"id"`
	StudentID     int64         `json:"student_id"`
	AmountPaid    int64         `json:"amount_paid"`
	PaymentDate   time.Time     `json:"payment_date"`
	PaymentMethod string        `json:"payment_method"`
	Status        PaymentStatus `json:"status"`
	RunID         string        `json:"run_id,omitempty"`      // run whose outcome produced it
	OutcomeSeq    int           `json:"outcome_seq,omitempty"` // position of that outcome
	CreatedAt     time.Time     `json:"created_at"`
}

// Run source values
const (
	SourceText  = "text"
	SourceImage = "image"
	SourceBatch = "batch"
)

// Run is one stored reconciliation: its input and ordered outcomes.
type Run struct {
	ID           string        `json:"id"`
	Source       string        `json:"source"`
	InputText    string        `json:"input_text"`
	CreatedAt    time.Time     `json:"created_at"`
	DurationMs   int64         `json:"duration_ms"`
	RosterSize   int           `json:"roster_size"`
	MatchedCount int           `json:"matched_count"`
	Outcomes     []*OutcomeRow `json:"outcomes,omitempty"`
}

// OutcomeRow is a stored outcome record with its position in the run.
type OutcomeRow struct {
	Seq         int              `json:"seq"`
	Record      reconcile.Record `json:"record"`
	ConfirmedAt *time.Time       `json:"confirmed_at,omitempty"`
}

// RunSummary is a run without its input and outcomes, for listings.
type RunSummary struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
	DurationMs   int64     `json:"duration_ms"`
	RosterSize   int       `json:"roster_size"`
	OutcomeCount int       `json:"outcome_count"`
	MatchedCount int       `json:"matched_count"`
}

// Stats holds aggregate statistics
type Stats struct {
	TotalStudents  int            `json:"total_students"`
	TotalRuns      int            `json:"total_runs"`
	TotalOutcomes  int            `json:"total_outcomes"`
	OutcomesByType map[string]int `json:"outcomes_by_type"`
	ConfirmedCount int            `json:"confirmed_count"`
	PaidCount      int            `json:"paid_count"`
	PaidAmount     int64          `json:"paid_amount"`
	MismatchCount  int            `json:"mismatch_count"`
}
