package memory

import "github.com/rankworks/graphrank/nodegraph/graph"

// nodeIterator is a graph.NodeIterator implementation for the in-memory graph.
type nodeIterator struct {
	s *InMemoryGraph

	nodes    []*graph.Node
	curIndex int
}

// Next implements graph.NodeIterator.
func (i *nodeIterator) Next() bool {
	if i.curIndex >= len(i.nodes) {
		return false
	}
	i.curIndex++
	return true
}

// Error implements graph.NodeIterator.
func (i *nodeIterator) Error() error {
	return nil
}

// Close implements graph.NodeIterator.
func (i *nodeIterator) Close() error {
	return nil
}

// Node implements graph.NodeIterator.
func (i *nodeIterator) Node() *graph.Node {
	// The node pointer contents may be overwritten by a graph update; to
	// avoid data-races we acquire the read lock first and clone the node
	i.s.mu.RLock()
	node := new(graph.Node)
	*node = *i.nodes[i.curIndex-1]
	i.s.mu.RUnlock()
	return node
}

// edgeIterator is a graph.EdgeIterator implementation for the in-memory graph.
type edgeIterator struct {
	s *InMemoryGraph

	edges    []*graph.Edge
	curIndex int
}

// Next implements graph.EdgeIterator.
func (i *edgeIterator) Next() bool {
	if i.curIndex >= len(i.edges) {
		return false
	}
	i.curIndex++
	return true
}

// Error implements graph.EdgeIterator.
func (i *edgeIterator) Error() error {
	return nil
}

// Close implements graph.EdgeIterator.
func (i *edgeIterator) Close() error {
	return nil
}

// Edge implements graph.EdgeIterator.
func (i *edgeIterator) Edge() *graph.Edge {
	// The edge pointer contents may be overwritten by a graph update; to
	// avoid data-races we acquire the read lock first and clone the edge
	i.s.mu.RLock()
	edge := new(graph.Edge)
	*edge = *i.edges[i.curIndex-1]
	i.s.mu.RUnlock()
	return edge
}
