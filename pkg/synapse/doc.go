// Package synapse provides a local, embedded hierarchical associative
// memory engine for AI agents.
//
// Synapse ingests streams of user/agent interactions into a durable
// short-term buffer (pkg/buffer), periodically metabolizes batches of raw
// interactions into semantic memory nodes stored in a vector database
// (pkg/core, pkg/metabolism), and consolidates clusters of same-layer
// nodes into summary nodes at the next layer (pkg/consolidator) —
// building a bottom-up hierarchy (HiRAG) that supports layered and
// namespace-scoped vector retrieval. An immutable Genesis filter
// (core.Ethics) gates any action against a pre-registered ethical
// embedding via cosine similarity.
//
// # Quick start
//
//	import (
//	    "context"
//	    "github.com/synapse-mem/synapse-go/pkg/synapse"
//	)
//
//	func main() {
//	    ctx := context.Background()
//	    cfg := synapse.DefaultConfig("memory.db", "buffer.db")
//	    sys, err := synapse.Open(ctx, cfg, synapse.WithProviders(myEmbedder, myLLM))
//	    if err != nil {
//	        panic(err)
//	    }
//	    defer sys.Close()
//
//	    sys.Ingest(ctx, "hi", "hello!")
//	    sys.Digest(ctx)
//	}
//
// 100% pure Go: the vector store and the interaction buffer are both
// backed by modernc.org/sqlite, so no cgo toolchain is required to embed
// synapse in an agent process.
//
// See pkg/core for the data model and vector store, pkg/buffer for the
// durable FIFO interaction queue, pkg/provider for the Embedder/LLM port
// contracts, and pkg/metabolism and pkg/consolidator for the two
// digestion pipelines that this package's System wires together.
package synapse
