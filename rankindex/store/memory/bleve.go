package memory

import (
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/google/uuid"
	"github.com/rankworks/graphrank/rankindex/index"
	"golang.org/x/xerrors"
)

// The size of each page of results that is cached locally by the iterator.
const batchSize = 10

// Compile-time check to ensure InMemoryBleveIndexer implements Indexer.
var _ index.Indexer = (*InMemoryBleveIndexer)(nil)

type bleveDoc struct {
	Label string
	Rank  float64
}

// InMemoryBleveIndexer is an Indexer implementation that uses an in-memory
// bleve instance to catalogue node ranks.
type InMemoryBleveIndexer struct {
	mu    sync.RWMutex
	nodes map[string]*index.RankedNode

	idx bleve.Index
}

// NewInMemoryBleveIndexer creates a rank indexer that uses an in-memory
// bleve instance for indexing ranked nodes.
func NewInMemoryBleveIndexer() (*InMemoryBleveIndexer, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, err
	}

	return &InMemoryBleveIndexer{
		idx:   idx,
		nodes: make(map[string]*index.RankedNode),
	}, nil
}

// Close the indexer and release any allocated resources.
func (i *InMemoryBleveIndexer) Close() error {
	return i.idx.Close()
}

// Index inserts a new ranked-node entry or updates the entry for an
// existing node.
func (i *InMemoryBleveIndexer) Index(node *index.RankedNode) error {
	if node.NodeID == uuid.Nil {
		return xerrors.Errorf("index: %w", index.ErrMissingNodeID)
	}

	node.UpdatedAt = time.Now()
	ncopy := copyNode(node)
	key := ncopy.NodeID.String()

	i.mu.Lock()
	defer i.mu.Unlock()

	// If updating, preserve the existing rank
	if orig, exists := i.nodes[key]; exists {
		ncopy.Rank = orig.Rank
	}

	if err := i.idx.Index(key, makeBleveDoc(ncopy)); err != nil {
		return xerrors.Errorf("index: %w", err)
	}

	i.nodes[key] = ncopy
	return nil
}

// FindByID looks up an entry by its node ID.
func (i *InMemoryBleveIndexer) FindByID(nodeID uuid.UUID) (*index.RankedNode, error) {
	return i.findByID(nodeID.String())
}

// findByID looks up an entry by its node UUID expressed as a string.
func (i *InMemoryBleveIndexer) findByID(nodeID string) (*index.RankedNode, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if n, found := i.nodes[nodeID]; found {
		return copyNode(n), nil
	}

	return nil, xerrors.Errorf("find by ID: %w", index.ErrNotFound)
}

// TopRanked returns an iterator that yields the indexed entries ordered by
// descending rank, skipping the first offset results.
func (i *InMemoryBleveIndexer) TopRanked(offset uint64) (index.Iterator, error) {
	searchReq := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	searchReq.SortBy([]string{"-Rank", "_id"})
	searchReq.Size = batchSize
	searchReq.From = int(offset)
	rs, err := i.idx.Search(searchReq)
	if err != nil {
		return nil, xerrors.Errorf("top ranked: %w", err)
	}

	return &bleveIterator{idx: i, searchReq: searchReq, rs: rs, cumIdx: offset}, nil
}

// UpdateRank updates the rank for the entry with the specified node ID. If
// no such entry exists, a placeholder entry with the provided rank will be
// created.
func (i *InMemoryBleveIndexer) UpdateRank(nodeID uuid.UUID, rank float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	key := nodeID.String()
	node, found := i.nodes[key]
	if !found {
		node = &index.RankedNode{NodeID: nodeID}
		i.nodes[key] = node
	}

	node.Rank = rank
	if err := i.idx.Index(key, makeBleveDoc(node)); err != nil {
		return xerrors.Errorf("update rank: %w", err)
	}

	return nil
}

func copyNode(n *index.RankedNode) *index.RankedNode {
	ncopy := new(index.RankedNode)
	*ncopy = *n
	return ncopy
}

func makeBleveDoc(n *index.RankedNode) bleveDoc {
	return bleveDoc{
		Label: n.Label,
		Rank:  n.Rank,
	}
}
