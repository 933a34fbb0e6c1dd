// Package sqlite implements the repository interfaces on SQLite.
//
// We use modernc.org/sqlite, a pure-Go translation of SQLite — no CGo, no C
// compiler, trivial cross-compilation. The database is a single file (or
// ":memory:" in tests), which is all a single-server habit tracker needs.
package sqlite

import (
	"database/sql"
	"fmt"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" in its init().
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath, applies pragmas, and runs
// migrations. Use ":memory:" for a throwaway database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time, and every pooled connection to a
	// ":memory:" path would otherwise be its own empty database. One
	// connection serves both cases.
	conn.SetMaxOpenConns(1)

	// Fail fast on a bad path or permissions rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — the completion
	// toggle writes twice (row + derived fields) while dashboards read.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite. We need them on for the
	// habits → completions ON DELETE CASCADE.
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

// Close closes the connection pool. Defer this wherever New is called.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			github_id     INTEGER NOT NULL DEFAULT 0,
			email         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			timezone      TEXT NOT NULL DEFAULT 'UTC',
			language      TEXT NOT NULL DEFAULT 'English',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
			ON users(email) WHERE email != '';
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id != 0;
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS habits (
			id                TEXT PRIMARY KEY,
			user_id           TEXT NOT NULL,
			name              TEXT NOT NULL,
			icon              TEXT NOT NULL DEFAULT '⭐',
			frequency         TEXT NOT NULL CHECK(frequency IN ('daily', 'weekly', 'custom')),
			daily_goal        INTEGER NOT NULL DEFAULT 1,
			unit              TEXT NOT NULL DEFAULT '',
			description       TEXT NOT NULL DEFAULT '',
			reminder_enabled  INTEGER NOT NULL DEFAULT 0,
			reminder_time     TEXT NOT NULL DEFAULT '09:00',
			current_streak    INTEGER NOT NULL DEFAULT 0,
			best_streak       INTEGER NOT NULL DEFAULT 0,
			total_completions INTEGER NOT NULL DEFAULT 0,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_habits_user_id ON habits(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating habits table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS completions (
			id         TEXT PRIMARY KEY,
			habit_id   TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL,
			date       TEXT NOT NULL,
			amount     INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(habit_id, user_id, date)
		);
		CREATE INDEX IF NOT EXISTS idx_completions_user_date ON completions(user_id, date);
	`)
	if err != nil {
		return fmt.Errorf("creating completions table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS moods (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			date        TEXT NOT NULL,
			mood        TEXT NOT NULL DEFAULT '',
			focus_level INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, date)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating moods table: %w", err)
	}

	// Columns added after the initial release. ALTER TABLE errors if the
	// column exists, so these go through addColumnIfNotExists.
	if err := db.addColumnIfNotExists("habits", "icon_color", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding icon_color to habits: %w", err)
	}
	if err := db.addColumnIfNotExists("users", "profile_image", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding profile_image to users: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already
// exist, making ALTER TABLE migrations safe to run on every startup.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil // column already exists
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
