package core

import (
	"context"
	"sort"
)

// Search returns up to k nodes nearest query by Euclidean distance,
// ascending, across the whole store.
func (s *SQLiteStore) Search(ctx context.Context, query []float32, k int) ([]ScoredNode, error) {
	return s.search(ctx, query, k, "")
}

// SearchLayer restricts Search to a single layer.
func (s *SQLiteStore) SearchLayer(ctx context.Context, query []float32, layer uint8, k int) ([]ScoredNode, error) {
	return s.search(ctx, query, k, "layer", layer)
}

// SearchNamespace restricts Search to a single namespace.
func (s *SQLiteStore) SearchNamespace(ctx context.Context, query []float32, namespace string, k int) ([]ScoredNode, error) {
	return s.search(ctx, query, k, "namespace", namespace)
}

// search loads the filtered candidate set, then ranks it in Go. Filters are
// applied in SQL before distance is ever computed, so the top-k selection
// below only ever runs over nodes that already satisfy layer/namespace.
func (s *SQLiteStore) search(ctx context.Context, query []float32, k int, filterCol string, filterVal ...any) ([]ScoredNode, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	dim := s.dim
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, wrapError("search", ErrStoreClosed)
	}
	if dim != 0 && len(query) != dim {
		return nil, &DimensionMismatchError{Expected: dim, Got: len(query)}
	}

	q := `SELECT id, content, layer, node_type, created_at, updated_at, embedding, metadata, namespace, source FROM memory_nodes`
	var args []any
	if filterCol != "" {
		q += " WHERE " + filterCol + " = ?"
		args = append(args, filterVal...)
	}

	s.mu.RLock()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.mu.RUnlock()
		return nil, internalError("search", err)
	}

	var scored []ScoredNode
	for rows.Next() {
		node, serr := scanNode(rows)
		if serr != nil {
			rows.Close()
			s.mu.RUnlock()
			return nil, internalError("search", serr)
		}
		if len(node.Embedding) != len(query) {
			continue
		}
		scored = append(scored, ScoredNode{Node: *node, Distance: euclideanDistance(query, node.Embedding)})
	}
	rerr := rows.Err()
	rows.Close()
	s.mu.RUnlock()
	if rerr != nil {
		return nil, internalError("search", rerr)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Distance < scored[j].Distance })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}
