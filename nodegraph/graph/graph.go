package graph

import (
	"time"

	"github.com/google/uuid"
)

// Iterator is implemented by graph objects that can be iterated.
type Iterator interface {
	// Next advances the iterator. If no more items are available or an
	// error occurs, calls to Next() return false.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources associated with an iterator.
	Close() error
}

// NodeIterator is implemented by objects that can iterate the graph nodes.
type NodeIterator interface {
	Iterator

	// Node returns the currently fetched node object.
	Node() *Node
}

// EdgeIterator is implemented by objects that can iterate the graph edges.
type EdgeIterator interface {
	Iterator

	// Edge returns the currently fetched edge object.
	Edge() *Edge
}

// Node describes an entity that participates in the rank graph. Nodes are
// uniquely identified by their label; the graph assigns each node a stable
// UUID the first time it is inserted.
type Node struct {
	// A unique identifier for the node.
	ID uuid.UUID

	// The unique label associated with the node.
	Label string

	// The timestamp when the node was last updated.
	UpdatedAt time.Time
}

// Edge describes a directed graph edge that originates from Src and
// terminates at Dst.
type Edge struct {
	// A unique identifier for the edge.
	ID uuid.UUID

	// The origin node.
	Src uuid.UUID

	// The destination node.
	Dst uuid.UUID

	// The timestamp when the edge was last updated.
	UpdatedAt time.Time
}

// Graph is implemented by objects that can mutate or query a rank graph.
type Graph interface {
	// UpsertNode creates a new node or updates an existing node.
	UpsertNode(node *Node) error

	// FindNode looks up a node by its ID.
	FindNode(id uuid.UUID) (*Node, error)

	// Nodes returns an iterator for the set of nodes whose IDs belong to
	// the [fromID, toID) range and were last updated before the provided
	// timestamp.
	Nodes(fromID, toID uuid.UUID, updatedBefore time.Time) (NodeIterator, error)

	// UpsertEdge creates a new edge or updates an existing edge.
	UpsertEdge(edge *Edge) error

	// Edges returns an iterator for the set of edges whose source node IDs
	// belong to the [fromID, toID) range and were updated before the
	// provided timestamp.
	Edges(fromID, toID uuid.UUID, updatedBefore time.Time) (EdgeIterator, error)

	// RemoveStaleEdges removes any edge that originates from the specified
	// node ID and was updated before the specified timestamp.
	RemoveStaleEdges(fromID uuid.UUID, updatedBefore time.Time) error
}
