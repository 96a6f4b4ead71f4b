package catalog

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var catalogSchema string

// schemaVersion is stamped into PRAGMA user_version after the schema has
// been applied. Version 1 is the initial layout.
const schemaVersion = 1

// Store is a sqlite-backed ontology catalog. Reads are served through WAL
// mode; the connection pool is capped at one so writes never race each
// other into SQLITE_BUSY.
type Store struct {
	db *sql.DB
}

// Open creates or opens the catalog database at path, configuring the
// connection and applying the schema. Opening an already-initialized
// catalog is a no-op beyond the version check.
func Open(path string) (*Store, error) {
	dsn := "file:" + path +
		"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to catalog %s: %w", path, err)
	}
	if err := initialize(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize catalog %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying connection for callers that need raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// initialize applies the embedded schema and stamps the schema version.
// Idempotent: the schema uses IF NOT EXISTS throughout and the version is
// only advanced, never rewound.
func initialize(db *sql.DB) error {
	if _, err := db.Exec(catalogSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version < schemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("stamp user_version: %w", err)
		}
	}
	return nil
}
