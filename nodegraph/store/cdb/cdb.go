// Package cdb provides a rank graph implementation backed by CockroachDB.
// It expects the following schema to be present:
//
//  CREATE TABLE IF NOT EXISTS nodes (
//      id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//      label STRING UNIQUE,
//      updated_at TIMESTAMPTZ
//  );
//
//  CREATE TABLE IF NOT EXISTS edges (
//      id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//      src UUID NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
//      dst UUID NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
//      updated_at TIMESTAMPTZ,
//      CONSTRAINT edge_links UNIQUE(src, dst)
//  );
package cdb

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rankworks/graphrank/nodegraph/graph"
	"golang.org/x/xerrors"
)

var (
	upsertNodeQuery = `
INSERT INTO nodes (label, updated_at) VALUES ($1, $2)
ON CONFLICT (label) DO UPDATE SET updated_at=GREATEST(nodes.updated_at, $2)
RETURNING id, updated_at
`
	findNodeQuery         = "SELECT label, updated_at FROM nodes WHERE id=$1"
	nodesInPartitionQuery = "SELECT id, label, updated_at FROM nodes WHERE id >= $1 AND id < $2 AND updated_at < $3"

	upsertEdgeQuery = `
INSERT INTO edges (src, dst, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (src,dst) DO UPDATE SET updated_at=NOW()
RETURNING id, updated_at
`
	edgesInPartitionQuery = "SELECT id, src, dst, updated_at FROM edges WHERE src >= $1 AND src < $2 AND updated_at < $3"
	removeStaleEdgesQuery = "DELETE FROM edges WHERE src=$1 AND updated_at < $2"

	// Compile-time check for ensuring CockroachDBGraph implements Graph.
	_ graph.Graph = (*CockroachDBGraph)(nil)
)

// CockroachDBGraph implements a rank graph that persists its nodes and edges
// to a cockroachdb instance.
type CockroachDBGraph struct {
	db *sql.DB
}

// NewCockroachDBGraph returns a CockroachDBGraph instance that connects to
// the cockroachdb instance specified by dsn.
func NewCockroachDBGraph(dsn string) (*CockroachDBGraph, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	return &CockroachDBGraph{db: db}, nil
}

// Close terminates the connection to the backing cockroachdb instance.
func (c *CockroachDBGraph) Close() error {
	return c.db.Close()
}

// UpsertNode creates a new node or updates an existing node.
func (c *CockroachDBGraph) UpsertNode(node *graph.Node) error {
	row := c.db.QueryRow(upsertNodeQuery, node.Label, node.UpdatedAt.UTC())
	if err := row.Scan(&node.ID, &node.UpdatedAt); err != nil {
		return xerrors.Errorf("upsert node: %w", err)
	}

	node.UpdatedAt = node.UpdatedAt.UTC()
	return nil
}

// FindNode looks up a node by its ID.
func (c *CockroachDBGraph) FindNode(id uuid.UUID) (*graph.Node, error) {
	row := c.db.QueryRow(findNodeQuery, id)
	node := &graph.Node{ID: id}
	if err := row.Scan(&node.Label, &node.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.Errorf("find node: %w", graph.ErrNotFound)
		}

		return nil, xerrors.Errorf("find node: %w", err)
	}

	node.UpdatedAt = node.UpdatedAt.UTC()
	return node, nil
}

// Nodes returns an iterator for the set of nodes whose IDs belong to the
// [fromID, toID) range and were last updated before the provided timestamp.
func (c *CockroachDBGraph) Nodes(fromID, toID uuid.UUID, updatedBefore time.Time) (graph.NodeIterator, error) {
	rows, err := c.db.Query(nodesInPartitionQuery, fromID, toID, updatedBefore.UTC())
	if err != nil {
		return nil, xerrors.Errorf("nodes: %w", err)
	}

	return &nodeIterator{rows: rows}, nil
}

// UpsertEdge creates a new edge or updates an existing edge.
func (c *CockroachDBGraph) UpsertEdge(edge *graph.Edge) error {
	row := c.db.QueryRow(upsertEdgeQuery, edge.Src, edge.Dst)
	if err := row.Scan(&edge.ID, &edge.UpdatedAt); err != nil {
		if isForeignKeyViolationError(err) {
			err = graph.ErrUnknownEdgeNodes
		}
		return xerrors.Errorf("upsert edge: %w", err)
	}

	edge.UpdatedAt = edge.UpdatedAt.UTC()
	return nil
}

// Edges returns an iterator for the set of edges whose source node IDs
// belong to the [fromID, toID) range and were updated before the provided
// timestamp.
func (c *CockroachDBGraph) Edges(fromID, toID uuid.UUID, updatedBefore time.Time) (graph.EdgeIterator, error) {
	rows, err := c.db.Query(edgesInPartitionQuery, fromID, toID, updatedBefore.UTC())
	if err != nil {
		return nil, xerrors.Errorf("edges: %w", err)
	}

	return &edgeIterator{rows: rows}, nil
}

// RemoveStaleEdges removes any edge that originates from the specified node
// ID and was updated before the specified timestamp.
func (c *CockroachDBGraph) RemoveStaleEdges(fromID uuid.UUID, updatedBefore time.Time) error {
	_, err := c.db.Exec(removeStaleEdgesQuery, fromID, updatedBefore.UTC())
	if err != nil {
		return xerrors.Errorf("remove stale edges: %w", err)
	}

	return nil
}

// isForeignKeyViolationError returns true if err indicates a foreign key
// constraint violation.
func isForeignKeyViolationError(err error) bool {
	pqErr, valid := err.(*pq.Error)
	if !valid {
		return false
	}

	return pqErr.Code.Name() == "foreign_key_violation"
}
