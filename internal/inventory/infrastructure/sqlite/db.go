// Package sqlite implements the inventory ledger on an embedded SQLite
// database. It backs single-node deployments and the application tests.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS stores (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL UNIQUE,
	description   TEXT NOT NULL DEFAULT '',
	type          TEXT NOT NULL DEFAULT 'PHYSICAL',
	contact_email TEXT NOT NULL DEFAULT '',
	contact_phone TEXT NOT NULL DEFAULT '',
	street        TEXT NOT NULL DEFAULT '',
	city          TEXT NOT NULL DEFAULT '',
	state         TEXT NOT NULL DEFAULT '',
	country       TEXT NOT NULL DEFAULT '',
	postal_code   TEXT NOT NULL DEFAULT '',
	flag          TEXT NOT NULL DEFAULT 'ENABLED',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS inventory (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	book_id           INTEGER NOT NULL,
	store_id          INTEGER NOT NULL REFERENCES stores(id),
	total_copies      INTEGER NOT NULL CHECK (total_copies >= 0),
	available_copies  INTEGER NOT NULL CHECK (available_copies >= 0 AND available_copies <= total_copies),
	status            TEXT NOT NULL,
	last_restocked_at TEXT,
	flag              TEXT NOT NULL DEFAULT 'ENABLED',
	version           INTEGER NOT NULL DEFAULT 1,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS inventory_book_store_enabled
	ON inventory (book_id, store_id) WHERE flag = 'ENABLED';

CREATE TABLE IF NOT EXISTS inventory_transactions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	inventory_id     INTEGER NOT NULL REFERENCES inventory(id),
	transaction_ref  TEXT NOT NULL UNIQUE,
	book_id          INTEGER NOT NULL,
	user_id          INTEGER,
	reason           TEXT NOT NULL DEFAULT '',
	quantity         INTEGER NOT NULL CHECK (quantity > 0),
	action           TEXT NOT NULL,
	flag             TEXT NOT NULL DEFAULT 'ENABLED',
	created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS inventory_transactions_inventory
	ON inventory_transactions (inventory_id, id);
`

// Open opens the database at path and applies the schema. A single
// connection is kept open so ":memory:" databases survive and writers are
// serialized.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}
