package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

func TestReconcileService_ImportRoster(t *testing.T) {
	svc, repo := newTestService(t, nil, Options{})

	students, err := svc.ImportRoster("노*연 250000\n이*창 250,000 교재비 32,000 월수금반\n")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.NotZero(t, students[0].ID)
	assert.Equal(t, int64(32000), students[1].BookFee)
	assert.Equal(t, "월수금반", students[1].Notes)

	all, err := repo.ListStudents(storage.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReconcileService_ImportRosterRejectsBadLine(t *testing.T) {
	svc, repo := newTestService(t, nil, Options{})

	_, err := svc.ImportRoster("노*연 250000\n이*창")
	assert.ErrorIs(t, err, ErrInvalidStudent)

	all, err := repo.ListStudents(storage.StudentFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReconcileService_SaveStudentValidation(t *testing.T) {
	svc, _ := newTestService(t, nil, Options{})

	assert.ErrorIs(t, svc.SaveStudent(&storage.Student{Name: "  "}), ErrInvalidStudent)
	assert.ErrorIs(t, svc.SaveStudent(&storage.Student{Name: "김민준", BaseFee: -1}), ErrInvalidStudent)

	st := &storage.Student{Name: " 김민준 ", BaseFee: 80000}
	require.NoError(t, svc.SaveStudent(st))
	assert.Equal(t, "김민준", st.Name)
	assert.NotZero(t, st.ID)
}
