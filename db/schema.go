// ABOUTME: Database schema definitions
// ABOUTME: Records and history entries are stored as order-preserving JSON documents
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	document TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);
CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at DESC);

CREATE TABLE IF NOT EXISTS history_entries (
	id TEXT PRIMARY KEY,
	record_id TEXT NOT NULL,
	entry TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_entries_record ON history_entries(record_id, id DESC);

CREATE TABLE IF NOT EXISTS record_groups (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_record_groups_name ON record_groups(name);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
