package core

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, no cgo required
)

// SQLiteStore implements Store on top of a single SQLite database file,
// following the teacher's WAL-pragma connection pattern.
type SQLiteStore struct {
	config Config
	logger Logger

	mu     sync.RWMutex
	db     *sql.DB
	closed bool
	dim    int // fixed once the first node is stored; 0 means unset
}

// NewSQLiteStore constructs (but does not open) a SQLiteStore.
func NewSQLiteStore(config Config) (*SQLiteStore, error) {
	if config.Path == "" {
		return nil, wrapError("new", &ValidationError{Message: "database path must not be empty"})
	}
	if config.Dimension < 0 {
		return nil, wrapError("new", &ValidationError{Message: "dimension must be non-negative"})
	}
	logger := config.Logger
	if logger == nil {
		logger = NopLogger()
	}
	return &SQLiteStore{config: config, logger: logger, dim: config.Dimension}, nil
}

// Init opens the database connection, applies the WAL/synchronous/busy
// pragmas the teacher uses for a good durability/concurrency balance, and
// creates the schema on first use.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return wrapError("init", ErrStoreClosed)
	}
	if s.db != nil {
		return nil
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", s.config.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return internalError("init", fmt.Errorf("open database: %w", err))
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return internalError("init", fmt.Errorf("enable foreign keys: %w", err))
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS memory_nodes (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		layer INTEGER NOT NULL,
		node_type TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		embedding BLOB NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		namespace TEXT NOT NULL,
		source TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memory_nodes_layer ON memory_nodes(layer);
	CREATE INDEX IF NOT EXISTS idx_memory_nodes_namespace ON memory_nodes(namespace);

	CREATE TABLE IF NOT EXISTS graph_edges (
		from_id TEXT NOT NULL,
		relation TEXT NOT NULL,
		to_id TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_graph_edges_from ON graph_edges(from_id);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return internalError("init", fmt.Errorf("create schema: %w", err))
	}

	// Recover the configured dimension from existing data, if any, so a
	// reopened store keeps rejecting mismatched embeddings.
	if s.dim == 0 {
		var blob []byte
		row := db.QueryRowContext(ctx, "SELECT embedding FROM memory_nodes LIMIT 1")
		if err := row.Scan(&blob); err == nil {
			if vec, derr := decodeVector(blob); derr == nil {
				s.dim = len(vec)
			}
		}
	}

	s.db = db
	return nil
}

// Close releases the store's database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return internalError("close", err)
	}
	return nil
}

// Dimension returns the store's fixed embedding dimension, or 0 if it has
// not yet been established.
func (s *SQLiteStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}
