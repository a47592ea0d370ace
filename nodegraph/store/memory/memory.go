package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rankworks/graphrank/nodegraph/graph"
	"golang.org/x/xerrors"
)

// Compile-time check for ensuring InMemoryGraph implements Graph.
var _ graph.Graph = (*InMemoryGraph)(nil)

// edgeList contains the slice of edge UUIDs that originate from a node in
// the graph.
type edgeList []uuid.UUID

// InMemoryGraph implements an in-memory rank graph that can be concurrently
// accessed by multiple clients.
type InMemoryGraph struct {
	mu sync.RWMutex

	nodes map[uuid.UUID]*graph.Node
	edges map[uuid.UUID]*graph.Edge

	nodeLabelIndex map[string]*graph.Node
	nodeEdgeMap    map[uuid.UUID]edgeList
}

// NewInMemoryGraph creates a new in-memory rank graph.
func NewInMemoryGraph() *InMemoryGraph {
	return &InMemoryGraph{
		nodes:          make(map[uuid.UUID]*graph.Node),
		edges:          make(map[uuid.UUID]*graph.Edge),
		nodeLabelIndex: make(map[string]*graph.Node),
		nodeEdgeMap:    make(map[uuid.UUID]edgeList),
	}
}

// UpsertNode creates a new node or updates an existing node.
func (s *InMemoryGraph) UpsertNode(node *graph.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check if a node with the same label already exists. If so, convert
	// this into an update and point the node ID to the existing node.
	if existing := s.nodeLabelIndex[node.Label]; existing != nil {
		node.ID = existing.ID
		origTs := existing.UpdatedAt
		*existing = *node
		if origTs.After(existing.UpdatedAt) {
			existing.UpdatedAt = origTs
		}
		return nil
	}

	// Assign new ID and insert node
	for {
		node.ID = uuid.New()
		if s.nodes[node.ID] == nil {
			break
		}
	}

	nCopy := new(graph.Node)
	*nCopy = *node
	s.nodeLabelIndex[nCopy.Label] = nCopy
	s.nodes[nCopy.ID] = nCopy
	return nil
}

// FindNode looks up a node by its ID.
func (s *InMemoryGraph) FindNode(id uuid.UUID) (*graph.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node := s.nodes[id]
	if node == nil {
		return nil, xerrors.Errorf("find node: %w", graph.ErrNotFound)
	}

	nCopy := new(graph.Node)
	*nCopy = *node
	return nCopy, nil
}

// Nodes returns an iterator for the set of nodes whose IDs belong to the
// [fromID, toID) range and were last updated before the provided timestamp.
func (s *InMemoryGraph) Nodes(fromID, toID uuid.UUID, updatedBefore time.Time) (graph.NodeIterator, error) {
	from, to := fromID.String(), toID.String()

	s.mu.RLock()
	var list []*graph.Node
	for nodeID, node := range s.nodes {
		if id := nodeID.String(); id >= from && id < to && node.UpdatedAt.Before(updatedBefore) {
			list = append(list, node)
		}
	}
	s.mu.RUnlock()

	return &nodeIterator{s: s, nodes: list}, nil
}

// UpsertEdge creates a new edge or updates an existing edge.
func (s *InMemoryGraph) UpsertEdge(edge *graph.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, srcExists := s.nodes[edge.Src]
	_, dstExists := s.nodes[edge.Dst]
	if !srcExists || !dstExists {
		return xerrors.Errorf("upsert edge: %w", graph.ErrUnknownEdgeNodes)
	}

	// Scan the edge list for the source node and convert the upsert into
	// an update if an edge with the same endpoints already exists.
	for _, edgeID := range s.nodeEdgeMap[edge.Src] {
		existingEdge := s.edges[edgeID]
		if existingEdge.Src == edge.Src && existingEdge.Dst == edge.Dst {
			existingEdge.UpdatedAt = time.Now()
			*edge = *existingEdge
			return nil
		}
	}

	// Assign new ID and insert edge
	for {
		edge.ID = uuid.New()
		if s.edges[edge.ID] == nil {
			break
		}
	}

	edge.UpdatedAt = time.Now()
	eCopy := new(graph.Edge)
	*eCopy = *edge
	s.edges[eCopy.ID] = eCopy

	// Append the edge ID to the list of edges originating from the edge's
	// source node.
	s.nodeEdgeMap[edge.Src] = append(s.nodeEdgeMap[edge.Src], eCopy.ID)
	return nil
}

// Edges returns an iterator for the set of edges whose source node IDs
// belong to the [fromID, toID) range and were updated before the provided
// timestamp.
func (s *InMemoryGraph) Edges(fromID, toID uuid.UUID, updatedBefore time.Time) (graph.EdgeIterator, error) {
	from, to := fromID.String(), toID.String()

	s.mu.RLock()
	var list []*graph.Edge
	for nodeID := range s.nodes {
		if id := nodeID.String(); id < from || id >= to {
			continue
		}

		for _, edgeID := range s.nodeEdgeMap[nodeID] {
			if edge := s.edges[edgeID]; edge.UpdatedAt.Before(updatedBefore) {
				list = append(list, edge)
			}
		}
	}
	s.mu.RUnlock()

	return &edgeIterator{s: s, edges: list}, nil
}

// RemoveStaleEdges removes any edge that originates from the specified node
// ID and was updated before the specified timestamp.
func (s *InMemoryGraph) RemoveStaleEdges(fromID uuid.UUID, updatedBefore time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newEdgeList edgeList
	for _, edgeID := range s.nodeEdgeMap[fromID] {
		edge := s.edges[edgeID]
		if edge.UpdatedAt.Before(updatedBefore) {
			delete(s.edges, edgeID)
			continue
		}

		newEdgeList = append(newEdgeList, edgeID)
	}

	// Replace the edge list for the origin node with the filtered list.
	s.nodeEdgeMap[fromID] = newEdgeList
	return nil
}
