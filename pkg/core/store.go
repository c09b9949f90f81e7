package core

import "context"

// Store is the vector-database port: CRUD plus typed-filter vector search
// and graph-edge provenance, per specification §4.3.
//
// Implementations must be safe for concurrent use by multiple goroutines.
// A successful Store/Update/Delete happens-before any subsequent read on
// the same store observing its effect.
type Store interface {
	// Init creates the underlying schema if it does not already exist. It
	// must be called once before any other method.
	Init(ctx context.Context) error

	// StoreNode inserts a node and returns its id. It rejects a node whose
	// embedding length does not match the store's configured dimension.
	StoreNode(ctx context.Context, node *MemoryNode) (string, error)

	// GetByID retrieves a node by id, or a *NotFoundError if absent.
	GetByID(ctx context.Context, id string) (*MemoryNode, error)

	// GetByLayer returns every node at the given layer.
	GetByLayer(ctx context.Context, layer uint8) ([]MemoryNode, error)

	// Update replaces (or, if absent, inserts — upsert) the node with the
	// given id.
	Update(ctx context.Context, node *MemoryNode) error

	// Delete removes a node by id. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// Count returns the total number of stored nodes.
	Count(ctx context.Context) (int64, error)

	// CountByLayer returns the number of nodes at the given layer.
	CountByLayer(ctx context.Context, layer uint8) (int64, error)

	// Search returns up to k nodes nearest query by Euclidean distance,
	// ascending.
	Search(ctx context.Context, query []float32, k int) ([]ScoredNode, error)

	// SearchLayer is Search restricted to a single layer.
	SearchLayer(ctx context.Context, query []float32, layer uint8, k int) ([]ScoredNode, error)

	// SearchNamespace is Search restricted to a single namespace.
	SearchNamespace(ctx context.Context, query []float32, namespace string, k int) ([]ScoredNode, error)

	// AddRelationship records a directed, append-only edge. Duplicate
	// edges are permitted and observed as a single logical edge, since the
	// core never reads edges back through the Store interface.
	AddRelationship(ctx context.Context, fromID, relation, toID string) error

	// Close releases the store's resources.
	Close() error

	// Dimension returns the store's configured embedding dimension, or 0
	// if it has not yet been fixed by a first StoreNode or Update call.
	Dimension() int
}

// Config configures a Store, per specification §6.3.
type Config struct {
	// Path is the filesystem path of the SQLite database file.
	Path string
	// Dimension is the expected embedding length. 0 auto-detects from the
	// first stored node.
	Dimension int
	// Logger receives structured diagnostics. Defaults to NopLogger.
	Logger Logger
}

// DefaultConfig returns a Config with auto-detected dimension and no
// logging.
func DefaultConfig(path string) Config {
	return Config{Path: path, Dimension: 0, Logger: NopLogger()}
}
