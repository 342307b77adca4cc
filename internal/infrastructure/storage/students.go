package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const studentColumns = `id, name, parent_contact, base_fee, book_fee, notes, created_at, updated_at`

// ListStudents returns students matching the filter, ordered by ID
func (s *Storage) ListStudents(filter StudentFilter) ([]*Student, error) {
	var where []string
	var args []interface{}

	if filter.Query != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+filter.Query+"%")
	}
	if !filter.UnpaidSince.IsZero() {
		where = append(where, `NOT EXISTS (
			SELECT 1 FROM payments p
			WHERE p.student_id = students.id AND p.status = 'PAID' AND p.payment_date >= ?
		)`)
		args = append(args, filter.UnpaidSince.UTC())
	}

	query := "SELECT " + studentColumns + " FROM students"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []*Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

// GetStudent retrieves a student by ID
func (s *Storage) GetStudent(id int64) (*Student, error) {
	row := s.db.QueryRow("SELECT "+studentColumns+" FROM students WHERE id = ?", id)
	student, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	return student, err
}

// SaveStudent inserts a student when ID is 0, otherwise updates it
func (s *Storage) SaveStudent(student *Student) error {
	if student.ID == 0 {
		return s.inTx(func(tx *sql.Tx) error {
			return insertStudent(tx, student)
		})
	}

	student.UpdatedAt = time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE students
		SET name = ?, parent_contact = ?, base_fee = ?, book_fee = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		student.Name, student.ParentContact, student.BaseFee, student.BookFee, student.Notes,
		student.UpdatedAt, student.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student %d: %w", student.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("student %d: %w", student.ID, ErrNotFound)
	}
	return nil
}

// SaveStudents inserts a batch of new students in one transaction
func (s *Storage) SaveStudents(students []*Student) error {
	return s.inTx(func(tx *sql.Tx) error {
		for _, student := range students {
			if err := insertStudent(tx, student); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteStudent removes a student and, through the foreign key, their payments
func (s *Storage) DeleteStudent(id int64) error {
	res, err := s.db.Exec("DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete student %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	return nil
}

func insertStudent(tx *sql.Tx, student *Student) error {
	now := time.Now().UTC()
	res, err := tx.Exec(`
		INSERT INTO students (name, parent_contact, base_fee, book_fee, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		student.Name, student.ParentContact, student.BaseFee, student.BookFee, student.Notes, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert student %q: %w", student.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	student.ID = id
	student.CreatedAt = now
	student.UpdatedAt = now
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(row rowScanner) (*Student, error) {
	var st Student
	err := row.Scan(&st.ID, &st.Name, &st.ParentContact, &st.BaseFee, &st.BookFee, &st.Notes,
		&st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
