package service

import (
	"fmt"
	"time"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/reconcile"
	"github.com/eshaffer321/tuition-reconciler/internal/domain/validator"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

// DefaultPaymentMethod is recorded when a confirmation does not name one.
const DefaultPaymentMethod = "bank_transfer"

// ConfirmRequest carries the operator's details for a confirmation.
type ConfirmRequest struct {
	PaymentMethod string
	PaymentDate   time.Time // zero = now
}

// ConfirmOutcome turns a stored match outcome into payments. A share that
// equals none of the student's charges is stored as MISMATCH instead of PAID.
//
// A name match pays the student's primary fee, since the evidence carried
// no amount of its own. An amount match pays the matched amount. A
// combined match pays each student their primary fee and puts whatever
// remains of the amount on the last student, so the payments always sum to
// the amount received.
func (s *ReconcileService) ConfirmOutcome(runID string, seq int, req ConfirmRequest) ([]*storage.Payment, error) {
	run, err := s.storage.GetRun(runID)
	if err != nil {
		return nil, err
	}

	var row *storage.OutcomeRow
	for _, o := range run.Outcomes {
		if o.Seq == seq {
			row = o
			break
		}
	}
	if row == nil {
		return nil, fmt.Errorf("outcome %d of run %s: %w", seq, runID, storage.ErrNotFound)
	}
	if !row.Record.Type.IsMatch() {
		return nil, fmt.Errorf("outcome %d is %s: %w", seq, row.Record.Type, ErrNotConfirmable)
	}

	students := make([]*storage.Student, 0, len(row.Record.StudentIDs))
	for _, id := range row.Record.StudentIDs {
		st, err := s.storage.GetStudent(id)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}

	amounts := splitAmount(row.Record, students)

	method := req.PaymentMethod
	if method == "" {
		method = DefaultPaymentMethod
	}
	date := req.PaymentDate
	if date.IsZero() {
		date = s.now()
	}

	payments := make([]*storage.Payment, len(students))
	for i, st := range students {
		status := storage.PaymentPaid
		if check := validator.CheckPayment(amounts[i], st.Entry().Fees); !check.Valid {
			status = storage.PaymentMismatch
			s.logger.Warn("payment does not match a fee",
				"run_id", runID,
				"seq", seq,
				"student_id", st.ID,
				"reason", check.Reason,
			)
		}
		payments[i] = &storage.Payment{
			StudentID:     st.ID,
			AmountPaid:    amounts[i],
			PaymentDate:   date.UTC(),
			PaymentMethod: method,
			Status:        status,
		}
	}

	if err := s.storage.ConfirmOutcome(runID, seq, payments); err != nil {
		return nil, err
	}

	s.logger.Info("outcome confirmed",
		"run_id", runID,
		"seq", seq,
		"type", row.Record.Type,
		"payments", len(payments),
	)
	return payments, nil
}

func splitAmount(rec reconcile.Record, students []*storage.Student) []int64 {
	amounts := make([]int64, len(students))
	switch rec.Type {
	case reconcile.KindNameMatch:
		for i, st := range students {
			amounts[i] = st.Entry().PrimaryFee()
		}
	case reconcile.KindAmountMatch:
		if len(students) > 0 {
			amounts[0] = rec.Amount
		}
	case reconcile.KindCombinedAmountMatch:
		remaining := rec.Amount
		for i, st := range students {
			if i == len(students)-1 {
				amounts[i] = remaining
				break
			}
			amounts[i] = st.Entry().PrimaryFee()
			remaining -= amounts[i]
		}
	}
	return amounts
}
