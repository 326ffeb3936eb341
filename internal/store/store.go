package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// Options tunes the store.
type Options struct {
	// CacheMB is the SQLite page cache size in MB (default 64).
	CacheMB int
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{CacheMB: 64}
}

// Store wraps the SQLite database holding the properties table and its
// derived FTS5 index.
//
// Batch loads are serialized through an internal mutex: ingestion is a
// single logical writer. Reads go straight to the connection pool and run
// concurrently with loads; WAL mode keeps readers from blocking on writer
// chunk commits, and each chunk commits atomically from a reader's view.
type Store struct {
	writerMu sync.Mutex
	db       *sql.DB
	path     string
	closed   bool
}

// Open opens (or creates) the store at path. An empty path opens an
// in-memory database for testing.
func Open(path string, opts Options) (*Store, error) {
	if opts.CacheMB <= 0 {
		opts.CacheMB = DefaultOptions().CacheMB
	}

	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dsn = path + "?_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == "" {
		// A second connection to ":memory:" would open a second database.
		db.SetMaxOpenConns(1)
	} else {
		// Small pool: one writer plus concurrent readers under WAL.
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(0)
	}

	// DSN params may be ignored by modernc.org/sqlite; set pragmas explicitly.
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA cache_size = -%d", opts.CacheMB*1024),
		"PRAGMA temp_store = MEMORY",
	}
	if path != "" {
		// WAL requires a file-backed database.
		pragmas = append([]string{"PRAGMA journal_mode = WAL"}, pragmas...)
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the properties table, the FTS5 index, and version
// tracking. Idempotent across restarts.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	-- Source of truth. rowid is the insertion sequence the index watermark
	-- is computed over.
	CREATE TABLE IF NOT EXISTS properties (
		property_id     TEXT PRIMARY KEY,
		owner_name      TEXT,
		owner_address   TEXT,
		owner_city      TEXT,
		owner_state     TEXT,
		owner_zip       TEXT,
		amount_reported REAL NOT NULL DEFAULT 0,
		cash_reported   TEXT,
		property_type   TEXT,
		holder_name     TEXT,
		holder_address  TEXT,
		reported_date   TEXT,
		raw_payload     TEXT
	);

	-- Derived full-text index over the searchable projection, keyed by the
	-- properties rowid.
	CREATE VIRTUAL TABLE IF NOT EXISTS properties_fts USING fts5(
		owner_name,
		owner_address,
		owner_city,
		holder_name,
		tokenize='unicode61'
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Stats returns record count and index watermark.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM properties`).Scan(&st.Records); err != nil {
		return Stats{}, fmt.Errorf("failed to count records: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT IFNULL(MAX(rowid), 0) FROM properties_fts`).Scan(&st.IndexWatermark); err != nil {
		return Stats{}, fmt.Errorf("failed to read index watermark: %w", err)
	}
	return st, nil
}

// Close closes the store. Idempotent.
func (s *Store) Close() error {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.path != "" {
		// Checkpoint before close to ensure durability.
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	}
	return s.db.Close()
}
