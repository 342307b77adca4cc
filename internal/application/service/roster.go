package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/roster"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

// ErrInvalidStudent is returned for a student that cannot be stored.
var ErrInvalidStudent = errors.New("invalid student")

// SaveStudent validates and stores a student (insert when ID is 0).
func (s *ReconcileService) SaveStudent(st *storage.Student) error {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidStudent)
	}
	if st.BaseFee < 0 || st.BookFee < 0 {
		return fmt.Errorf("%w: fees must not be negative", ErrInvalidStudent)
	}
	return s.storage.SaveStudent(st)
}

// ImportRoster parses a pasted roster block and stores every row. A
// malformed line rejects the whole block.
func (s *ReconcileService) ImportRoster(text string) ([]*storage.Student, error) {
	rows, err := roster.ParseBatch(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStudent, err)
	}

	students := make([]*storage.Student, len(rows))
	for i, row := range rows {
		students[i] = &storage.Student{
			Name:    row.Name,
			BaseFee: row.BaseFee,
			BookFee: row.BookFee,
			Notes:   row.Notes,
		}
	}
	if err := s.storage.SaveStudents(students); err != nil {
		return nil, fmt.Errorf("failed to import roster: %w", err)
	}

	s.logger.Info("roster imported", "students", len(students))
	return students, nil
}
