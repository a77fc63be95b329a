// ABOUTME: Tests for opening the SQLite database
// ABOUTME: Verifies directory creation, WAL mode and data surviving a reopen
package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/fichas/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "fichas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "fichas.db")

	db, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file was not created")

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count))
	assert.Equal(t, 3, count)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpenDatabaseInvalidPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := OpenDatabase(filepath.Join(blocker, "fichas.db"))
	assert.Error(t, err)
}

func TestOpenDatabaseReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "fichas.db")

	db, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	_, err = NewRecordsRepository(db).Create(ctx, "", models.NewRecord(
		models.Field{Key: "id", Value: "r1"},
		models.Field{Key: "nome", Value: "Ana"},
	))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	rec, err := NewRecordsRepository(db).Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", rec.Document.String("nome"))
}
