package storage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const expectedSchemaVersion = 3

func TestMigrations_FreshDatabase(t *testing.T) {
	store := openTestStorage(t)

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(expectedSchemaVersion), version)

	for _, table := range []string{"students", "payments", "reconciliation_runs", "match_outcomes", "goose_db_version"} {
		var name string
		err := store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestMigrations_Idempotent(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	// Open twice; the second open must not re-apply anything
	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStorage(tmpDB)
	require.NoError(t, err)
	defer store.Close()

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(expectedSchemaVersion), version)
}

func TestMigrations_ForeignKeysEnforced(t *testing.T) {
	store := openTestStorage(t)

	err := store.SavePayment(&Payment{StudentID: 999, AmountPaid: 1000, Status: PaymentPaid})
	assert.Error(t, err)
}

// createTempDB creates a temporary database file for testing
func createTempDB(t *testing.T) string {
	tmpFile, err := os.CreateTemp("", "test_*.db")
	require.NoError(t, err)
	tmpFile.Close()
	return tmpFile.Name()
}

// openTestStorage returns a migrated storage that is removed after the test
func openTestStorage(t *testing.T) *Storage {
	tmpDB := createTempDB(t)
	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpDB)
	})
	return store
}
