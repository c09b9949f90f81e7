package core

import (
	"time"

	"github.com/google/uuid"
)

// NodeType identifies the kind of content a MemoryNode carries.
type NodeType string

// The node types recognized by the core. Layer 0 conventionally pairs with
// any type except Summary; Layer >= 1 is always Summary. Metabolism is the
// one place that breaks the convention on purpose: it emits Layer-0Summary
// nodes (see pkg/metabolism).
const (
	NodeTypeFact     NodeType = "fact"
	NodeTypeSummary  NodeType = "summary"
	NodeTypeThought  NodeType = "thought"
	NodeTypeProfile  NodeType = "profile"
	NodeTypeSystem   NodeType = "system"
	NodeTypeExternal NodeType = "external"
)

// MaxLayer is the highest permitted HiRAG layer (inclusive).
const MaxLayer = 10

// DefaultNamespace is the namespace used when the caller does not specify one.
const DefaultNamespace = "default"

// MemoryNode is a single node in the memory hierarchy: a base fact at
// layer 0, or a summary of same-layer siblings at layer >= 1.
type MemoryNode struct {
	ID        string
	Content   string
	Layer     uint8
	NodeType  NodeType
	CreatedAt int64
	UpdatedAt int64
	Embedding []float32
	Metadata  map[string]any
	Namespace string
	Source    string
}

// NewMemoryNode builds a Layer-0 Fact node in the default namespace, with a
// fresh id and the creation/update timestamps set to now.
func NewMemoryNode(content string) *MemoryNode {
	now := time.Now().Unix()
	return &MemoryNode{
		ID:        uuid.NewString(),
		Content:   content,
		Layer:     0,
		NodeType:  NodeTypeFact,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  make(map[string]any),
		Namespace: DefaultNamespace,
		Source:    "user",
	}
}

// WithLayer sets the node's layer. Layer 0 keeps whatever NodeType the node
// already had; layer >= 1 forces NodeType to Summary, matching the
// convention in §3 of the specification.
func (n *MemoryNode) WithLayer(layer uint8) *MemoryNode {
	n.Layer = layer
	if layer > 0 {
		n.NodeType = NodeTypeSummary
	}
	return n
}

// WithEmbedding sets the node's embedding vector.
func (n *MemoryNode) WithEmbedding(embedding []float32) *MemoryNode {
	n.Embedding = embedding
	return n
}

// WithNamespace sets the node's namespace (for multi-tenant isolation).
func (n *MemoryNode) WithNamespace(namespace string) *MemoryNode {
	n.Namespace = namespace
	return n
}

// WithMetadata sets a single metadata key/value pair.
func (n *MemoryNode) WithMetadata(key string, value any) *MemoryNode {
	if n.Metadata == nil {
		n.Metadata = make(map[string]any)
	}
	n.Metadata[key] = value
	return n
}

// WithSource sets the node's origin label.
func (n *MemoryNode) WithSource(source string) *MemoryNode {
	n.Source = source
	return n
}

// Validate checks the structural invariants every node must satisfy before
// it can be stored: layer within range, a non-empty namespace, and
// updated_at not earlier than created_at. It does
// not enforce the layer/node_type "by convention" pairing, since
// Metabolism's Layer-0 Summary nodes are a deliberate, spec-sanctioned
// exception to it.
func (n *MemoryNode) Validate() error {
	if n.Layer > MaxLayer {
		return &ValidationError{Message: "layer out of range [0,10]"}
	}
	if n.Namespace == "" {
		return &ValidationError{Message: "namespace must not be empty"}
	}
	if n.UpdatedAt < n.CreatedAt {
		return &ValidationError{Message: "updated_at must not precede created_at"}
	}
	return nil
}

// Interaction is a single user/AI exchange awaiting metabolism.
type Interaction struct {
	ID         string
	UserInput  string
	AIResponse string
	Timestamp  int64
	SessionID  string
	Processed  bool
}

// NewInteraction builds an unprocessed interaction stamped with the current
// time and a fresh id.
func NewInteraction(userInput, aiResponse string) Interaction {
	return Interaction{
		ID:         uuid.NewString(),
		UserInput:  userInput,
		AIResponse: aiResponse,
		Timestamp:  time.Now().Unix(),
		Processed:  false,
	}
}

// WithSession returns a copy of the interaction tagged with the given
// session id.
func (i Interaction) WithSession(sessionID string) Interaction {
	i.SessionID = sessionID
	return i
}

// MarkProcessed flags the interaction as processed in place.
func (i *Interaction) MarkProcessed() {
	i.Processed = true
}

// GraphEdge is a directed, append-only provenance link between two nodes.
// The core only ever writes the "summarizes" relation, from a consolidation
// summary to each of its source nodes.
type GraphEdge struct {
	FromID   string
	Relation string
	ToID     string
}

// SummarizesRelation is the only edge relation the core writes.
const SummarizesRelation = "summarizes"

// ScoredNode pairs a fully materialized node with its distance from a
// search query. Smaller Distance means a closer match (the store's Search
// methods use Euclidean/L2 distance throughout).
type ScoredNode struct {
	Node     MemoryNode
	Distance float64
}
