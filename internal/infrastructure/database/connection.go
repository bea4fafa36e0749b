package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/meanly/wordtrack/internal/infrastructure/config"
)

// NewConnection opens the local store configured in cfg and ensures the
// schema exists. The connection is returned to the caller together with a
// cleanup func; nothing here is a package-level singleton.
func NewConnection(cfg *config.Config) (*sqlx.DB, func(), error) {
	driver, dsn, err := cfg.DatabaseDSN()
	if err != nil {
		return nil, nil, err
	}

	if driver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	cleanup := func() { db.Close() }
	return db, cleanup, nil
}

func initializeSchema(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS vocabulary_items (
			id TEXT PRIMARY KEY,
			word TEXT NOT NULL,
			base_word TEXT NOT NULL DEFAULT '',
			definition TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS progress_records (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			strength TEXT NOT NULL,
			practice_count INTEGER NOT NULL DEFAULT 0,
			correct_count INTEGER NOT NULL DEFAULT 0,
			last_practiced_at TIMESTAMP,
			next_due_at TIMESTAMP,
			saved_at TIMESTAMP NOT NULL,
			is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
			notes TEXT NOT NULL DEFAULT '',
			sync_state TEXT NOT NULL,
			UNIQUE (user_id, item_id)
		)`,
		`CREATE TABLE IF NOT EXISTS mutation_queue (
			id TEXT PRIMARY KEY,
			mutation_type TEXT NOT NULL,
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			retry_count INTEGER NOT NULL DEFAULT 0,
			UNIQUE (user_id, item_id)
		)`,
		`CREATE TABLE IF NOT EXISTS dead_letters (
			id TEXT PRIMARY KEY,
			mutation_type TEXT NOT NULL,
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			retry_count INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			failed_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_user_due ON progress_records (user_id, next_due_at)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_user_created ON mutation_queue (user_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
	}
	return nil
}
