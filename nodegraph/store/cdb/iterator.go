package cdb

import (
	"database/sql"

	"github.com/rankworks/graphrank/nodegraph/graph"
	"golang.org/x/xerrors"
)

// nodeIterator is a graph.NodeIterator implementation for the cdb graph.
type nodeIterator struct {
	rows        *sql.Rows
	lastErr     error
	latchedNode *graph.Node
}

// Next implements graph.NodeIterator.
func (i *nodeIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	n := new(graph.Node)
	i.lastErr = i.rows.Scan(&n.ID, &n.Label, &n.UpdatedAt)
	if i.lastErr != nil {
		return false
	}
	n.UpdatedAt = n.UpdatedAt.UTC()

	i.latchedNode = n
	return true
}

// Error implements graph.NodeIterator.
func (i *nodeIterator) Error() error {
	return i.lastErr
}

// Close implements graph.NodeIterator.
func (i *nodeIterator) Close() error {
	err := i.rows.Close()
	if err != nil {
		return xerrors.Errorf("node iterator: %w", err)
	}
	return nil
}

// Node implements graph.NodeIterator.
func (i *nodeIterator) Node() *graph.Node {
	return i.latchedNode
}

// edgeIterator is a graph.EdgeIterator implementation for the cdb graph.
type edgeIterator struct {
	rows        *sql.Rows
	lastErr     error
	latchedEdge *graph.Edge
}

// Next implements graph.EdgeIterator.
func (i *edgeIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	e := new(graph.Edge)
	i.lastErr = i.rows.Scan(&e.ID, &e.Src, &e.Dst, &e.UpdatedAt)
	if i.lastErr != nil {
		return false
	}
	e.UpdatedAt = e.UpdatedAt.UTC()

	i.latchedEdge = e
	return true
}

// Error implements graph.EdgeIterator.
func (i *edgeIterator) Error() error {
	return i.lastErr
}

// Close implements graph.EdgeIterator.
func (i *edgeIterator) Close() error {
	err := i.rows.Close()
	if err != nil {
		return xerrors.Errorf("edge iterator: %w", err)
	}
	return nil
}

// Edge implements graph.EdgeIterator.
func (i *edgeIterator) Edge() *graph.Edge {
	return i.latchedEdge
}
