// Package buffer implements the durable, FIFO short-term interaction
// buffer that sits in front of metabolism.
package buffer

import (
	"context"

	"github.com/synapse-mem/synapse-go/pkg/core"
)

// Buffer is the short-term memory queue: a strict FIFO over Interactions,
// durable across process restart.
//
// Implementations must be safe for concurrent use; push and PopBatch are
// linearizable with respect to each other, so no interaction is ever
// returned twice and none is lost while the backing store remains intact.
type Buffer interface {
	// Init creates the underlying schema if needed. Must be called once
	// before any other method.
	Init(ctx context.Context) error

	// Push durably appends interaction to the tail of the queue.
	Push(ctx context.Context, interaction core.Interaction) error

	// PopBatch atomically removes and returns the oldest up-to-n
	// interactions in insertion order. An empty buffer yields an empty,
	// non-nil slice and a nil error.
	PopBatch(ctx context.Context, n int) ([]core.Interaction, error)

	// Peek returns the oldest up-to-n interactions without removing them.
	Peek(ctx context.Context, n int) ([]core.Interaction, error)

	// Len returns the current number of queued interactions.
	Len(ctx context.Context) (int, error)

	// IsEmpty reports whether the buffer currently holds no interactions.
	IsEmpty(ctx context.Context) (bool, error)

	// Clear removes every queued interaction.
	Clear(ctx context.Context) error

	// Close releases the buffer's resources.
	Close() error
}

// Config configures a SQLite-backed Buffer.
type Config struct {
	// Path is the filesystem path of the SQLite database file.
	Path string
	// Logger receives structured diagnostics. Defaults to core.NopLogger.
	Logger core.Logger
}

// DefaultConfig returns a Config with no logging.
func DefaultConfig(path string) Config {
	return Config{Path: path, Logger: core.NopLogger()}
}
