package buffer

import (
	"context"
	"fmt"

	"github.com/synapse-mem/synapse-go/pkg/core"
)

// Push durably appends interaction to the tail of the queue, assigning it
// the next monotonically increasing sequence number. Concurrent pushes
// obtain distinct sequence numbers because the counter increment and the
// insert happen while b.mu is held.
func (b *SQLiteBuffer) Push(ctx context.Context, interaction core.Interaction) error {
	payload, err := encodeInteraction(interaction)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.db == nil {
		return fmt.Errorf("buffer: closed")
	}

	seq := b.nextSeq
	if _, err := b.db.ExecContext(ctx, "INSERT INTO buffer_entries (seq, payload) VALUES (?, ?)", encodeSeq(seq), payload); err != nil {
		return fmt.Errorf("buffer: push: %w", err)
	}
	b.nextSeq++
	return nil
}

// PopBatch atomically removes and returns the oldest up-to-n interactions
// in insertion order, all within a single transaction so the operation is
// all-or-nothing. An empty buffer yields an empty, non-nil slice.
func (b *SQLiteBuffer) PopBatch(ctx context.Context, n int) ([]core.Interaction, error) {
	if n <= 0 {
		return []core.Interaction{}, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.db == nil {
		return nil, fmt.Errorf("buffer: closed")
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("buffer: pop_batch begin: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "SELECT seq, payload FROM buffer_entries ORDER BY seq ASC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("buffer: pop_batch select: %w", err)
	}

	var (
		seqs  [][]byte
		batch []core.Interaction
	)
	for rows.Next() {
		var seq []byte
		var payload string
		if err := rows.Scan(&seq, &payload); err != nil {
			rows.Close()
			return nil, fmt.Errorf("buffer: pop_batch scan: %w", err)
		}
		interaction, err := decodeInteraction(payload)
		if err != nil {
			rows.Close()
			return nil, err
		}
		seqs = append(seqs, seq)
		batch = append(batch, interaction)
	}
	rerr := rows.Err()
	rows.Close()
	if rerr != nil {
		return nil, fmt.Errorf("buffer: pop_batch rows: %w", rerr)
	}

	for _, seq := range seqs {
		if _, err := tx.ExecContext(ctx, "DELETE FROM buffer_entries WHERE seq = ?", seq); err != nil {
			return nil, fmt.Errorf("buffer: pop_batch delete: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("buffer: pop_batch commit: %w", err)
	}

	if batch == nil {
		batch = []core.Interaction{}
	}
	return batch, nil
}

// Peek returns the oldest up-to-n interactions without removing them.
func (b *SQLiteBuffer) Peek(ctx context.Context, n int) ([]core.Interaction, error) {
	if n <= 0 {
		return []core.Interaction{}, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.db == nil {
		return nil, fmt.Errorf("buffer: closed")
	}

	rows, err := b.db.QueryContext(ctx, "SELECT payload FROM buffer_entries ORDER BY seq ASC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("buffer: peek: %w", err)
	}
	defer rows.Close()

	batch := []core.Interaction{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("buffer: peek scan: %w", err)
		}
		interaction, err := decodeInteraction(payload)
		if err != nil {
			return nil, err
		}
		batch = append(batch, interaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("buffer: peek rows: %w", err)
	}
	return batch, nil
}

// Len returns the current number of queued interactions.
func (b *SQLiteBuffer) Len(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.db == nil {
		return 0, fmt.Errorf("buffer: closed")
	}
	var n int
	if err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM buffer_entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("buffer: len: %w", err)
	}
	return n, nil
}

// IsEmpty reports whether the buffer currently holds no interactions.
func (b *SQLiteBuffer) IsEmpty(ctx context.Context) (bool, error) {
	n, err := b.Len(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Clear removes every queued interaction. It does not reset the sequence
// counter, so a subsequent Push still obtains a strictly larger key than
// anything ever pushed before.
func (b *SQLiteBuffer) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.db == nil {
		return fmt.Errorf("buffer: closed")
	}
	if _, err := b.db.ExecContext(ctx, "DELETE FROM buffer_entries"); err != nil {
		return fmt.Errorf("buffer: clear: %w", err)
	}
	return nil
}
