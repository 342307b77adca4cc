package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
// It is safe for concurrent use; batch reconciliation saves runs from
// several goroutines.
type MockRepository struct {
	mu            sync.Mutex
	students      map[int64]*Student
	payments      []*Payment
	runs          map[string]*Run
	nextStudentID int64
	nextPaymentID int64

	// Hooks for test assertions
	SaveRunCalls       int
	LastSavedRun       *Run
	ListStudentsCalled bool
	LastStudentFilter  StudentFilter

	// Error injection for testing error paths
	ListStudentsErr   error
	SaveStudentErr    error
	SavePaymentErr    error
	SaveRunErr        error
	ConfirmOutcomeErr error
	PingErr           error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		students:      make(map[int64]*Student),
		runs:          make(map[string]*Run),
		nextStudentID: 1,
		nextPaymentID: 1,
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Ping returns PingErr
func (m *MockRepository) Ping(ctx context.Context) error {
	return m.PingErr
}

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// ListStudents returns copies of the stored students ordered by ID
func (m *MockRepository) ListStudents(filter StudentFilter) ([]*Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListStudentsCalled = true
	m.LastStudentFilter = filter
	if m.ListStudentsErr != nil {
		return nil, m.ListStudentsErr
	}

	paid := make(map[int64]bool)
	if !filter.UnpaidSince.IsZero() {
		for _, p := range m.payments {
			if p.Status == PaymentPaid && !p.PaymentDate.Before(filter.UnpaidSince) {
				paid[p.StudentID] = true
			}
		}
	}

	var result []*Student
	for _, s := range m.students {
		if filter.Query != "" && !strings.Contains(s.Name, filter.Query) {
			continue
		}
		if paid[s.ID] {
			continue
		}
		copied := *s
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetStudent retrieves a student from the in-memory map
func (m *MockRepository) GetStudent(id int64) (*Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.students[id]
	if !ok {
		return nil, fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	copied := *s
	return &copied, nil
}

// SaveStudent inserts or updates a student
func (m *MockRepository) SaveStudent(student *Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveStudentErr != nil {
		return m.SaveStudentErr
	}
	if student.ID != 0 {
		if _, ok := m.students[student.ID]; !ok {
			return fmt.Errorf("student %d: %w", student.ID, ErrNotFound)
		}
		student.UpdatedAt = time.Now().UTC()
	} else {
		m.assignStudentID(student)
	}
	copied := *student
	m.students[student.ID] = &copied
	return nil
}

// SaveStudents inserts a batch of students; nothing is stored on error
func (m *MockRepository) SaveStudents(students []*Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveStudentErr != nil {
		return m.SaveStudentErr
	}
	for _, s := range students {
		m.assignStudentID(s)
		copied := *s
		m.students[s.ID] = &copied
	}
	return nil
}

func (m *MockRepository) assignStudentID(s *Student) {
	now := time.Now().UTC()
	s.ID = m.nextStudentID
	s.CreatedAt = now
	s.UpdatedAt = now
	m.nextStudentID++
}

// DeleteStudent removes a student and their payments
func (m *MockRepository) DeleteStudent(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.students[id]; !ok {
		return fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	delete(m.students, id)

	kept := m.payments[:0]
	for _, p := range m.payments {
		if p.StudentID != id {
			kept = append(kept, p)
		}
	}
	m.payments = kept
	return nil
}

// SavePayment appends a payment
func (m *MockRepository) SavePayment(payment *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SavePaymentErr != nil {
		return m.SavePaymentErr
	}
	return m.addPayment(payment)
}

func (m *MockRepository) addPayment(payment *Payment) error {
	if !payment.Status.Valid() {
		return fmt.Errorf("invalid payment status %q", payment.Status)
	}
	if _, ok := m.students[payment.StudentID]; !ok {
		return fmt.Errorf("student %d: %w", payment.StudentID, ErrNotFound)
	}
	now := time.Now().UTC()
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = now
	}
	payment.ID = m.nextPaymentID
	payment.CreatedAt = now
	m.nextPaymentID++

	copied := *payment
	m.payments = append(m.payments, &copied)
	return nil
}

// ListPayments returns payments matching the filter, newest first
func (m *MockRepository) ListPayments(filter PaymentFilter) ([]*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*Payment
	for _, p := range m.payments {
		if filter.StudentID != 0 && p.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if !filter.Since.IsZero() && p.PaymentDate.Before(filter.Since) {
			continue
		}
		copied := *p
		result = append(result, &copied)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].PaymentDate.Equal(result[j].PaymentDate) {
			return result[i].PaymentDate.After(result[j].PaymentDate)
		}
		return result[i].ID > result[j].ID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPaymentLimit
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// SaveRun stores a run in the in-memory map
func (m *MockRepository) SaveRun(run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveRunCalls++
	m.LastSavedRun = run
	if m.SaveRunErr != nil {
		return m.SaveRunErr
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	copied := *run
	copied.Outcomes = make([]*OutcomeRow, len(run.Outcomes))
	for i, o := range run.Outcomes {
		row := *o
		copied.Outcomes[i] = &row
	}
	m.runs[run.ID] = &copied
	return nil
}

// GetRun retrieves a run from the in-memory map
func (m *MockRepository) GetRun(id string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	copied := *run
	copied.Outcomes = make([]*OutcomeRow, len(run.Outcomes))
	for i, o := range run.Outcomes {
		row := *o
		copied.Outcomes[i] = &row
	}
	return &copied, nil
}

// ListRuns returns run summaries, newest first
func (m *MockRepository) ListRuns(limit, offset int) ([]RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []RunSummary
	for _, r := range m.runs {
		result = append(result, RunSummary{
			ID:           r.ID,
			Source:       r.Source,
			CreatedAt:    r.CreatedAt,
			DurationMs:   r.DurationMs,
			RosterSize:   r.RosterSize,
			OutcomeCount: len(r.Outcomes),
			MatchedCount: r.MatchedCount,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	if limit <= 0 {
		limit = defaultRunLimit
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ConfirmOutcome records payments and marks the outcome confirmed
func (m *MockRepository) ConfirmOutcome(runID string, seq int, payments []*Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ConfirmOutcomeErr != nil {
		return m.ConfirmOutcomeErr
	}

	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	var target *OutcomeRow
	for _, o := range run.Outcomes {
		if o.Seq == seq {
			target = o
		}
	}
	if target == nil {
		return fmt.Errorf("outcome %d of run %s: %w", seq, runID, ErrNotFound)
	}
	if target.ConfirmedAt != nil {
		return fmt.Errorf("outcome %d of run %s: %w", seq, runID, ErrAlreadyConfirmed)
	}

	for _, p := range payments {
		if _, ok := m.students[p.StudentID]; !ok {
			return fmt.Errorf("student %d: %w", p.StudentID, ErrNotFound)
		}
	}
	for _, p := range payments {
		p.RunID = runID
		p.OutcomeSeq = seq
		if err := m.addPayment(p); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	target.ConfirmedAt = &now
	return nil
}

// GetStats returns statistics computed from the in-memory data
func (m *MockRepository) GetStats() (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &Stats{
		TotalStudents:  len(m.students),
		TotalRuns:      len(m.runs),
		OutcomesByType: make(map[string]int),
	}
	for _, r := range m.runs {
		for _, o := range r.Outcomes {
			stats.TotalOutcomes++
			stats.OutcomesByType[string(o.Record.Type)]++
			if o.ConfirmedAt != nil {
				stats.ConfirmedCount++
			}
		}
	}
	for _, p := range m.payments {
		switch p.Status {
		case PaymentPaid:
			stats.PaidCount++
			stats.PaidAmount += p.AmountPaid
		case PaymentMismatch:
			stats.MismatchCount++
		}
	}
	return stats, nil
}
