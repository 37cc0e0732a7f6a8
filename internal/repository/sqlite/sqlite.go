// Package sqlite implements the repository interfaces on an embedded
// SQLite database (modernc.org/sqlite — pure Go, no CGo).
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// One *DB value implements every repository interface; the server hands
// the same instance to each service.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads during writes; foreign keys are off by
	// default in SQLite and must be enabled per connection.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always deferred next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. Statements are idempotent (CREATE TABLE IF
// NOT EXISTS), so this is safe to run on every startup.
func (db *DB) migrate() error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"profiles", `
			CREATE TABLE IF NOT EXISTS profiles (
				id            TEXT PRIMARY KEY,
				email         TEXT NOT NULL UNIQUE,
				full_name     TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL DEFAULT '',
				github_id     INTEGER,
				created_at    DATETIME NOT NULL,
				updated_at    DATETIME NOT NULL
			);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_github_id
				ON profiles(github_id) WHERE github_id IS NOT NULL;
		`},
		{"user_roles", `
			CREATE TABLE IF NOT EXISTS user_roles (
				user_id TEXT NOT NULL REFERENCES profiles(id),
				role    TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_user_roles_user_id ON user_roles(user_id);
		`},
		{"certificates", `
			CREATE TABLE IF NOT EXISTS certificates (
				id               TEXT PRIMARY KEY,
				donor_id         TEXT NOT NULL REFERENCES profiles(id),
				donor_name       TEXT NOT NULL,
				issued_by        TEXT,
				certificate_type TEXT NOT NULL,
				issued_at        DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_certificates_donor_id ON certificates(donor_id);
		`},
		{"donations", `
			CREATE TABLE IF NOT EXISTS donations (
				id            TEXT PRIMARY KEY,
				donor_id      TEXT NOT NULL REFERENCES profiles(id),
				donor_name    TEXT NOT NULL,
				contact_phone TEXT NOT NULL DEFAULT '',
				contact_email TEXT NOT NULL DEFAULT '',
				food_item     TEXT NOT NULL,
				quantity      INTEGER NOT NULL,
				expiry_date   DATETIME,
				donation_date DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_donations_donor_id ON donations(donor_id);
		`},
		{"donors", `
			CREATE TABLE IF NOT EXISTS donors (
				id             TEXT PRIMARY KEY,
				donor_name     TEXT NOT NULL,
				donor_type     TEXT NOT NULL DEFAULT '',
				contact_number TEXT NOT NULL DEFAULT '',
				email          TEXT NOT NULL DEFAULT '',
				created_at     DATETIME NOT NULL
			);
		`},
		{"food_items", `
			CREATE TABLE IF NOT EXISTS food_items (
				id           TEXT PRIMARY KEY,
				item_name    TEXT NOT NULL,
				donor_id     TEXT REFERENCES donors(id),
				quantity     INTEGER NOT NULL,
				unit         TEXT NOT NULL DEFAULT '',
				expiry_date  DATETIME,
				donated_date DATETIME NOT NULL
			);
		`},
		{"storage_facilities", `
			CREATE TABLE IF NOT EXISTS storage_facilities (
				id            TEXT PRIMARY KEY,
				location      TEXT NOT NULL,
				capacity      INTEGER NOT NULL DEFAULT 0,
				current_stock INTEGER NOT NULL DEFAULT 0,
				created_at    DATETIME NOT NULL
			);
		`},
		{"distribution_events", `
			CREATE TABLE IF NOT EXISTS distribution_events (
				id           TEXT PRIMARY KEY,
				event_date   DATETIME NOT NULL,
				location     TEXT NOT NULL,
				organized_by TEXT NOT NULL DEFAULT '',
				created_at   DATETIME NOT NULL
			);
		`},
		{"distribution_details", `
			CREATE TABLE IF NOT EXISTS distribution_details (
				id                   TEXT PRIMARY KEY,
				event_id             TEXT NOT NULL REFERENCES distribution_events(id),
				food_id              TEXT NOT NULL REFERENCES food_items(id),
				quantity_distributed INTEGER NOT NULL,
				created_at           DATETIME NOT NULL
			);
		`},
	}

	for _, s := range stmts {
		if _, err := db.conn.Exec(s.sql); err != nil {
			return fmt.Errorf("creating %s: %w", s.name, err)
		}
	}

	return nil
}
