package synapse

import (
	"context"
	"fmt"

	"github.com/synapse-mem/synapse-go/pkg/buffer"
	"github.com/synapse-mem/synapse-go/pkg/consolidator"
	"github.com/synapse-mem/synapse-go/pkg/core"
	"github.com/synapse-mem/synapse-go/pkg/metabolism"
	"github.com/synapse-mem/synapse-go/pkg/provider"
)

// DefaultDimension is the embedding length assumed when a caller does not
// pin one explicitly.
const DefaultDimension = 384

// System is a single Synapse memory engine: a store, a buffer, an
// immutable ethics gate, and the metabolism/consolidator pipelines that
// move content between them.
type System struct {
	store        core.Store
	buf          buffer.Buffer
	ethics       *core.Ethics
	metabolism   *metabolism.Metabolism
	consolidator *consolidator.Consolidator
	embedder     provider.Embedder
	llm          provider.LLM
	logger       core.Logger
}

// Config configures a System.
type Config struct {
	// StorePath is the vector store's SQLite database path.
	StorePath string
	// BufferPath is the interaction buffer's SQLite database path.
	BufferPath string
	// Dimension is the expected embedding length. 0 auto-detects.
	Dimension int
	// DigestThreshold is the interaction count that triggers a digest.
	DigestThreshold int
	// ConsolidationThreshold is the node count at a layer that triggers
	// consolidation.
	ConsolidationThreshold int
	// Logger receives structured diagnostics. Defaults to NopLogger.
	Logger core.Logger
}

// DefaultConfig returns a Config using DefaultDimension and the teacher's
// conventional thresholds (digest 10, consolidation 5).
func DefaultConfig(storePath, bufferPath string) Config {
	return Config{
		StorePath:              storePath,
		BufferPath:             bufferPath,
		Dimension:              DefaultDimension,
		DigestThreshold:        metabolism.DefaultThreshold,
		ConsolidationThreshold: consolidator.DefaultThreshold,
		Logger:                 core.NopLogger(),
	}
}

// Option configures a System at Open time.
type Option func(*openOptions)

type openOptions struct {
	embedder      provider.Embedder
	llm           provider.LLM
	ethicalVector []float32
	ethicsThresh  float32
}

// WithProviders registers the Embedder and LLM a System will use for
// metabolism and consolidation. Required unless the caller only intends to
// use the System's store/buffer directly.
func WithProviders(embedder provider.Embedder, llm provider.LLM) Option {
	return func(o *openOptions) {
		o.embedder = embedder
		o.llm = llm
	}
}

// WithEthics registers the Genesis ethical baseline vector and, optionally,
// a custom threshold (core.DefaultEthicalThreshold otherwise).
func WithEthics(ethicalVector []float32, threshold float32) Option {
	return func(o *openOptions) {
		o.ethicalVector = ethicalVector
		o.ethicsThresh = threshold
	}
}

// Open opens (creating if absent) a System's store and buffer, and wires
// the metabolism and consolidator pipelines if providers were supplied.
func Open(ctx context.Context, config Config, opts ...Option) (*System, error) {
	if config.StorePath == "" || config.BufferPath == "" {
		return nil, fmt.Errorf("synapse: store and buffer paths must not be empty")
	}
	logger := config.Logger
	if logger == nil {
		logger = core.NopLogger()
	}

	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	store, err := core.NewSQLiteStore(core.Config{Path: config.StorePath, Dimension: config.Dimension, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("synapse: open store: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("synapse: init store: %w", err)
	}

	buf, err := buffer.NewSQLiteBuffer(buffer.Config{Path: config.BufferPath, Logger: logger})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("synapse: open buffer: %w", err)
	}
	if err := buf.Init(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("synapse: init buffer: %w", err)
	}

	sys := &System{store: store, buf: buf, logger: logger}

	if len(o.ethicalVector) > 0 {
		ethics := core.NewEthics(o.ethicalVector)
		if o.ethicsThresh != 0 {
			ethics = ethics.WithThreshold(o.ethicsThresh)
		}
		sys.ethics = &ethics
	}

	if o.embedder != nil && o.llm != nil {
		sys.embedder = o.embedder
		sys.llm = o.llm

		digestThreshold := config.DigestThreshold
		if digestThreshold == 0 {
			digestThreshold = metabolism.DefaultThreshold
		}
		sys.metabolism = metabolism.New(buf, store, o.llm, o.embedder).
			WithThreshold(digestThreshold).
			WithLogger(logger)

		consolidationThreshold := config.ConsolidationThreshold
		if consolidationThreshold == 0 {
			consolidationThreshold = consolidator.DefaultThreshold
		}
		sys.consolidator = consolidator.New(store, o.llm, o.embedder).
			WithThreshold(consolidationThreshold).
			WithLogger(logger)
	}

	return sys, nil
}

// Close releases the System's store and buffer resources.
func (s *System) Close() error {
	bufErr := s.buf.Close()
	storeErr := s.store.Close()
	if bufErr != nil {
		return bufErr
	}
	return storeErr
}

// Store returns the System's underlying vector store.
func (s *System) Store() core.Store { return s.store }

// Buffer returns the System's underlying interaction buffer.
func (s *System) Buffer() buffer.Buffer { return s.buf }

// Ethics returns the System's registered ethical gate, or nil if none was
// configured via WithEthics.
func (s *System) Ethics() *core.Ethics { return s.ethics }
