package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

const defaultPaymentLimit = 100

// SavePayment inserts a payment
func (s *Storage) SavePayment(payment *Payment) error {
	return s.inTx(func(tx *sql.Tx) error {
		return insertPayment(tx, payment)
	})
}

// ListPayments returns payments matching the filter, newest first
func (s *Storage) ListPayments(filter PaymentFilter) ([]*Payment, error) {
	var where []string
	var args []interface{}

	if filter.StudentID != 0 {
		where = append(where, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if !filter.Since.IsZero() {
		where = append(where, "payment_date >= ?")
		args = append(args, filter.Since.UTC())
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPaymentLimit
	}

	query := `SELECT id, student_id, amount_paid, payment_date, payment_method, status,
		COALESCE(run_id, ''), COALESCE(outcome_seq, 0), created_at FROM payments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY payment_date DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		var p Payment
		var status string
		if err := rows.Scan(&p.ID, &p.StudentID, &p.AmountPaid, &p.PaymentDate, &p.PaymentMethod,
			&status, &p.RunID, &p.OutcomeSeq, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Status = PaymentStatus(status)
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

func insertPayment(tx *sql.Tx, payment *Payment) error {
	if !payment.Status.Valid() {
		return fmt.Errorf("invalid payment status %q", payment.Status)
	}

	now := time.Now().UTC()
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = now
	}

	var runID interface{}
	var seq interface{}
	if payment.RunID != "" {
		runID = payment.RunID
		seq = payment.OutcomeSeq
	}

	res, err := tx.Exec(`
		INSERT INTO payments (student_id, amount_paid, payment_date, payment_method, status, run_id, outcome_seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.StudentID, payment.AmountPaid, payment.PaymentDate.UTC(), payment.PaymentMethod,
		string(payment.Status), runID, seq, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return fmt.Errorf("student %d: %w", payment.StudentID, ErrNotFound)
		}
		return fmt.Errorf("failed to insert payment for student %d: %w", payment.StudentID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = id
	payment.CreatedAt = now
	return nil
}
