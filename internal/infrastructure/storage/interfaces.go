package storage

import (
	"context"
	"time"
)

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, in-memory, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	StudentRepository
	PaymentRepository
	RunRepository

	// Ping checks that the database is reachable
	Ping(ctx context.Context) error
	Close() error
}

// StudentRepository handles roster operations
type StudentRepository interface {
	// ListStudents returns students matching the filter, ordered by ID.
	// The listing is read in a single statement so it is a consistent
	// roster snapshot.
	ListStudents(filter StudentFilter) ([]*Student, error)

	// GetStudent retrieves a student by ID (ErrNotFound when missing)
	GetStudent(id int64) (*Student, error)

	// SaveStudent inserts a student when ID is 0, otherwise updates it
	SaveStudent(student *Student) error

	// SaveStudents inserts a batch of new students in one transaction
	SaveStudents(students []*Student) error

	// DeleteStudent removes a student and their payments
	DeleteStudent(id int64) error
}

// StudentFilter narrows a roster listing
type StudentFilter struct {
	Query string // Name substring (empty = all)

	// UnpaidSince excludes students with a PAID payment on or after this
	// time (zero = no exclusion)
	UnpaidSince time.Time
}

// PaymentRepository handles payment records
type PaymentRepository interface {
	// SavePayment inserts a payment
	SavePayment(payment *Payment) error

	// ListPayments returns payments matching the filter, newest first
	ListPayments(filter PaymentFilter) ([]*Payment, error)
}

// PaymentFilter narrows a payment listing
type PaymentFilter struct {
	StudentID int64         // 0 = all students
	Status    PaymentStatus // empty = all
	Since     time.Time     // zero = all time
	Limit     int           // 0 = default 100
}

// RunRepository handles reconciliation run history
type RunRepository interface {
	// SaveRun stores a run and its outcomes atomically
	SaveRun(run *Run) error

	// GetRun retrieves a run with its outcomes (ErrNotFound when missing)
	GetRun(id string) (*Run, error)

	// ListRuns returns recent runs, newest first
	ListRuns(limit, offset int) ([]RunSummary, error)

	// ConfirmOutcome stores the payments derived from an outcome and marks
	// it confirmed, atomically. Confirming twice returns ErrAlreadyConfirmed.
	ConfirmOutcome(runID string, seq int, payments []*Payment) error

	// GetStats returns aggregate statistics
	GetStats() (*Stats, error)
}
