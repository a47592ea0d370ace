package index

import "github.com/google/uuid"

// Indexer is implemented by objects that can catalogue and query the rank
// scores assigned to the nodes of a rank graph.
type Indexer interface {
	// Index inserts a new ranked-node entry or updates the entry for an
	// existing node. The rank of an existing entry is left untouched;
	// UpdateRank must be used to modify it.
	Index(node *RankedNode) error

	// FindByID looks up an entry by its node ID.
	FindByID(nodeID uuid.UUID) (*RankedNode, error)

	// TopRanked returns an iterator that yields the indexed entries
	// ordered by descending rank, skipping the first offset results.
	TopRanked(offset uint64) (Iterator, error)

	// UpdateRank updates the rank for the entry with the specified node
	// ID. If no such entry exists, a placeholder entry with the provided
	// rank will be created.
	UpdateRank(nodeID uuid.UUID, rank float64) error
}

// Iterator is implemented by objects that can paginate rank query results.
type Iterator interface {
	// Close the iterator and release any allocated resources.
	Close() error

	// Next loads the next entry matching the query. It returns false if
	// no more entries are available.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Node returns the current entry from the result set.
	Node() *RankedNode

	// TotalCount returns the approximate number of query results.
	TotalCount() uint64
}
