package buffer

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/synapse-mem/synapse-go/pkg/core"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, no cgo required
)

// SQLiteBuffer implements Buffer as a second SQLite table, keyed by an
// 8-byte big-endian sequence number so lexicographic (byte-wise) order
// equals numerical order — the same WAL-pragma connection pattern the
// core vector store uses.
type SQLiteBuffer struct {
	config Config
	logger core.Logger

	mu      sync.Mutex
	db      *sql.DB
	closed  bool
	nextSeq uint64 // next sequence number to assign on Push
}

// NewSQLiteBuffer constructs (but does not open) a SQLiteBuffer.
func NewSQLiteBuffer(config Config) (*SQLiteBuffer, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("buffer: path must not be empty")
	}
	logger := config.Logger
	if logger == nil {
		logger = core.NopLogger()
	}
	return &SQLiteBuffer{config: config, logger: logger}, nil
}

// Init opens the database, creates the schema if absent, and recovers the
// write counter by scanning the largest stored sequence key.
func (b *SQLiteBuffer) Init(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("buffer: closed")
	}
	if b.db != nil {
		return nil
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", b.config.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("buffer: open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	const schema = `
	CREATE TABLE IF NOT EXISTS buffer_entries (
		seq BLOB PRIMARY KEY,
		payload TEXT NOT NULL
	);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return fmt.Errorf("buffer: create schema: %w", err)
	}

	var maxSeq []byte
	row := db.QueryRowContext(ctx, "SELECT seq FROM buffer_entries ORDER BY seq DESC LIMIT 1")
	switch err := row.Scan(&maxSeq); {
	case err == sql.ErrNoRows:
		b.nextSeq = 0
	case err != nil:
		db.Close()
		return fmt.Errorf("buffer: recover write counter: %w", err)
	default:
		b.nextSeq = decodeSeq(maxSeq) + 1
	}

	b.db = db
	b.logger.Info("buffer initialized", "path", b.config.Path, "next_seq", b.nextSeq)
	return nil
}

// Close releases the buffer's database connection.
func (b *SQLiteBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

func encodeSeq(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}

func decodeSeq(buf []byte) uint64 {
	return binary.BigEndian.Uint64(buf)
}

func encodeInteraction(i core.Interaction) (string, error) {
	b, err := json.Marshal(i)
	if err != nil {
		return "", fmt.Errorf("buffer: encode interaction: %w", err)
	}
	return string(b), nil
}

func decodeInteraction(payload string) (core.Interaction, error) {
	var i core.Interaction
	if err := json.Unmarshal([]byte(payload), &i); err != nil {
		return core.Interaction{}, fmt.Errorf("buffer: decode interaction: %w", err)
	}
	return i, nil
}
