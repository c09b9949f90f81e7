package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// StoreNode inserts node, establishing the store's dimension from its
// embedding if this is the first node ever stored.
func (s *SQLiteStore) StoreNode(ctx context.Context, node *MemoryNode) (string, error) {
	if err := node.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", wrapError("store", ErrStoreClosed)
	}
	if s.dim == 0 {
		s.dim = len(node.Embedding)
	}
	dim := s.dim
	s.mu.Unlock()

	if len(node.Embedding) != dim {
		return "", &DimensionMismatchError{Expected: dim, Got: len(node.Embedding)}
	}

	if node.ID == "" {
		return "", &ValidationError{Message: "node id must not be empty"}
	}

	if err := s.upsertRow(ctx, node); err != nil {
		return "", wrapError("store", err)
	}
	return node.ID, nil
}

// Update upserts node: it replaces the stored record with the same id, or
// inserts it if absent, per the specification's upsert requirement for
// Update.
func (s *SQLiteStore) Update(ctx context.Context, node *MemoryNode) error {
	if err := node.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return wrapError("update", ErrStoreClosed)
	}
	if s.dim == 0 {
		s.dim = len(node.Embedding)
	}
	dim := s.dim
	s.mu.Unlock()

	if len(node.Embedding) != dim {
		return &DimensionMismatchError{Expected: dim, Got: len(node.Embedding)}
	}

	if err := s.upsertRow(ctx, node); err != nil {
		return wrapError("update", err)
	}
	return nil
}

func (s *SQLiteStore) upsertRow(ctx context.Context, node *MemoryNode) error {
	vecBytes, err := encodeVector(node.Embedding)
	if err != nil {
		return serializationError("encode embedding", err)
	}
	metaBytes, err := encodeMetadata(node.Metadata)
	if err != nil {
		return serializationError("encode metadata", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	const q = `
	INSERT INTO memory_nodes (id, content, layer, node_type, created_at, updated_at, embedding, metadata, namespace, source)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		content = excluded.content,
		layer = excluded.layer,
		node_type = excluded.node_type,
		updated_at = excluded.updated_at,
		embedding = excluded.embedding,
		metadata = excluded.metadata,
		namespace = excluded.namespace,
		source = excluded.source
	`
	_, err = s.db.ExecContext(ctx, q,
		node.ID, node.Content, node.Layer, string(node.NodeType),
		node.CreatedAt, node.UpdatedAt, vecBytes, string(metaBytes),
		node.Namespace, node.Source,
	)
	if err != nil {
		return internalError("upsert", err)
	}
	return nil
}

// GetByID retrieves a single node.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*MemoryNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, wrapError("get_by_id", ErrStoreClosed)
	}

	const q = `SELECT id, content, layer, node_type, created_at, updated_at, embedding, metadata, namespace, source FROM memory_nodes WHERE id = ?`
	row := s.db.QueryRowContext(ctx, q, id)
	node, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, internalError("get_by_id", err)
	}
	return node, nil
}

// GetByLayer returns every node at the given layer, in storage order.
func (s *SQLiteStore) GetByLayer(ctx context.Context, layer uint8) ([]MemoryNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, wrapError("get_by_layer", ErrStoreClosed)
	}

	const q = `SELECT id, content, layer, node_type, created_at, updated_at, embedding, metadata, namespace, source FROM memory_nodes WHERE layer = ? ORDER BY created_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, q, layer)
	if err != nil {
		return nil, internalError("get_by_layer", err)
	}
	defer rows.Close()

	var out []MemoryNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, internalError("get_by_layer", err)
		}
		out = append(out, *node)
	}
	if err := rows.Err(); err != nil {
		return nil, internalError("get_by_layer", err)
	}
	return out, nil
}

// Delete removes a node by id. It is idempotent.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return wrapError("delete", ErrStoreClosed)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM memory_nodes WHERE id = ?`, id); err != nil {
		return internalError("delete", err)
	}
	return nil
}

// Count returns the total number of stored nodes.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	return s.countWhere(ctx, "")
}

// CountByLayer returns the number of nodes at the given layer.
func (s *SQLiteStore) CountByLayer(ctx context.Context, layer uint8) (int64, error) {
	return s.countWhere(ctx, fmt.Sprintf("WHERE layer = %d", layer))
}

func (s *SQLiteStore) countWhere(ctx context.Context, where string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, wrapError("count", ErrStoreClosed)
	}
	var n int64
	q := "SELECT COUNT(*) FROM memory_nodes " + where
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, internalError("count", err)
	}
	return n, nil
}

// AddRelationship records a directed edge. Duplicate edges are allowed.
func (s *SQLiteStore) AddRelationship(ctx context.Context, fromID, relation, toID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return wrapError("add_relationship", ErrStoreClosed)
	}
	const q = `INSERT INTO graph_edges (from_id, relation, to_id) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, fromID, relation, toID); err != nil {
		return internalError("add_relationship", err)
	}
	return nil
}

// CountEdges reports how many (from_id, relation, to_id) edges exist
// matching the given triple. It is not part of the Store interface — the
// core itself never reads edges back (spec.md §4.2: "no API reads edges in
// the core") — but it gives callers (chiefly tests) a way to confirm edge
// provenance was actually persisted rather than merely not erroring.
func (s *SQLiteStore) CountEdges(ctx context.Context, fromID, relation, toID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, wrapError("count_edges", ErrStoreClosed)
	}
	const q = `SELECT COUNT(*) FROM graph_edges WHERE from_id = ? AND relation = ? AND to_id = ?`
	var n int64
	if err := s.db.QueryRowContext(ctx, q, fromID, relation, toID).Scan(&n); err != nil {
		return 0, internalError("count_edges", err)
	}
	return n, nil
}

// rowScanner abstracts over *sql.Row and *sql.Rows for scanNode.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*MemoryNode, error) {
	var (
		node       MemoryNode
		nodeType   string
		vecBytes   []byte
		metaString string
	)
	if err := row.Scan(
		&node.ID, &node.Content, &node.Layer, &nodeType,
		&node.CreatedAt, &node.UpdatedAt, &vecBytes, &metaString,
		&node.Namespace, &node.Source,
	); err != nil {
		return nil, err
	}
	node.NodeType = NodeType(nodeType)

	vec, err := decodeVector(vecBytes)
	if err != nil {
		return nil, err
	}
	node.Embedding = vec

	meta, err := decodeMetadata([]byte(metaString))
	if err != nil {
		return nil, err
	}
	node.Metadata = meta

	return &node, nil
}
