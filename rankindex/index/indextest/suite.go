package indextest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rankworks/graphrank/rankindex/index"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

// SuiteBase defines a re-usable set of index-related tests that can
// be executed against any type that implements index.Indexer.
type SuiteBase struct {
	idx index.Indexer
}

// SetIndexer configures the test-suite to run all tests against idx.
func (s *SuiteBase) SetIndexer(idx index.Indexer) {
	s.idx = idx
}

// TestIndexRankedNode verifies the indexing logic for new and existing
// entries.
func (s *SuiteBase) TestIndexRankedNode(c *gc.C) {
	// Insert new entry
	node := &index.RankedNode{
		NodeID:    uuid.New(),
		Label:     "example.com",
		UpdatedAt: time.Now().Add(-12 * time.Hour).UTC(),
	}

	err := s.idx.Index(node)
	c.Assert(err, gc.IsNil)

	// Update existing entry
	updatedNode := &index.RankedNode{
		NodeID:    node.NodeID,
		Label:     "example.com",
		UpdatedAt: time.Now().UTC(),
	}

	err = s.idx.Index(updatedNode)
	c.Assert(err, gc.IsNil)

	// Insert entry without an ID
	incompleteNode := &index.RankedNode{
		Label: "example.com",
	}

	err = s.idx.Index(incompleteNode)
	c.Assert(xerrors.Is(err, index.ErrMissingNodeID), gc.Equals, true)
}

// TestIndexDoesNotOverrideRank verifies that re-indexing an entry leaves
// its last assigned rank untouched.
func (s *SuiteBase) TestIndexDoesNotOverrideRank(c *gc.C) {
	// Insert new entry
	node := &index.RankedNode{
		NodeID:    uuid.New(),
		Label:     "example.com",
		UpdatedAt: time.Now().Add(-12 * time.Hour).UTC(),
	}

	err := s.idx.Index(node)
	c.Assert(err, gc.IsNil)

	// Update its rank
	expRank := 0.5
	err = s.idx.UpdateRank(node.NodeID, expRank)
	c.Assert(err, gc.IsNil)

	// Update entry
	updatedNode := &index.RankedNode{
		NodeID:    node.NodeID,
		Label:     "example.com",
		UpdatedAt: time.Now().UTC(),
	}

	err = s.idx.Index(updatedNode)
	c.Assert(err, gc.IsNil)

	// Lookup entry and verify that its rank has not been changed.
	got, err := s.idx.FindByID(node.NodeID)
	c.Assert(err, gc.IsNil)
	c.Assert(got.Rank, gc.Equals, expRank)
}

// TestFindByID verifies the entry lookup logic.
func (s *SuiteBase) TestFindByID(c *gc.C) {
	node := &index.RankedNode{
		NodeID:    uuid.New(),
		Label:     "example.com",
		UpdatedAt: time.Now().Add(-12 * time.Hour).UTC(),
	}

	err := s.idx.Index(node)
	c.Assert(err, gc.IsNil)

	// Look up entry
	got, err := s.idx.FindByID(node.NodeID)
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.DeepEquals, node, gc.Commentf("entry returned by FindByID does not match inserted entry"))

	// Look up unknown
	_, err = s.idx.FindByID(uuid.New())
	c.Assert(xerrors.Is(err, index.ErrNotFound), gc.Equals, true)
}

// TestTopRanked verifies that entries are returned in descending rank order.
func (s *SuiteBase) TestTopRanked(c *gc.C) {
	var (
		numNodes = 50
		expIDs   []uuid.UUID
	)
	for i := 0; i < numNodes; i++ {
		id := uuid.New()
		expIDs = append(expIDs, id)
		node := &index.RankedNode{
			NodeID: id,
			Label:  fmt.Sprintf("node %s", id.String()),
		}

		err := s.idx.Index(node)
		c.Assert(err, gc.IsNil)

		err = s.idx.UpdateRank(id, float64(numNodes-i))
		c.Assert(err, gc.IsNil)
	}

	it, err := s.idx.TopRanked(0)
	c.Assert(err, gc.IsNil)
	c.Assert(iterateNodes(c, it), gc.DeepEquals, expIDs)

	// Update the ranks so that results are sorted in the reverse order.
	for i := 0; i < numNodes; i++ {
		err = s.idx.UpdateRank(expIDs[i], float64(i))
		c.Assert(err, gc.IsNil, gc.Commentf(expIDs[i].String()))
	}

	it, err = s.idx.TopRanked(0)
	c.Assert(err, gc.IsNil)
	c.Assert(iterateNodes(c, it), gc.DeepEquals, reverse(expIDs))
}

// TestTopRankedWithOffset verifies the pagination logic when skipping some
// results.
func (s *SuiteBase) TestTopRankedWithOffset(c *gc.C) {
	var (
		numNodes = 50
		expIDs   []uuid.UUID
	)
	for i := 0; i < numNodes; i++ {
		id := uuid.New()
		expIDs = append(expIDs, id)
		node := &index.RankedNode{
			NodeID: id,
			Label:  fmt.Sprintf("node %s", id.String()),
		}

		err := s.idx.Index(node)
		c.Assert(err, gc.IsNil)

		err = s.idx.UpdateRank(id, float64(numNodes-i))
		c.Assert(err, gc.IsNil)
	}

	it, err := s.idx.TopRanked(20)
	c.Assert(err, gc.IsNil)
	c.Assert(iterateNodes(c, it), gc.DeepEquals, expIDs[20:])

	// Request an offset beyond the total number of results
	it, err = s.idx.TopRanked(200)
	c.Assert(err, gc.IsNil)
	c.Assert(iterateNodes(c, it), gc.HasLen, 0)
}

// TestUpdateRankForUnknownNode checks that a placeholder entry will be
// created when setting the rank for an unknown node.
func (s *SuiteBase) TestUpdateRankForUnknownNode(c *gc.C) {
	nodeID := uuid.New()
	err := s.idx.UpdateRank(nodeID, 0.5)
	c.Assert(err, gc.IsNil)

	node, err := s.idx.FindByID(nodeID)
	c.Assert(err, gc.IsNil)

	c.Assert(node.Label, gc.Equals, "")
	c.Assert(node.UpdatedAt.IsZero(), gc.Equals, true)
	c.Assert(node.Rank, gc.Equals, 0.5)
}

func iterateNodes(c *gc.C, it index.Iterator) []uuid.UUID {
	var seen []uuid.UUID
	for it.Next() {
		seen = append(seen, it.Node().NodeID)
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	return seen
}

func reverse(in []uuid.UUID) []uuid.UUID {
	for left, right := 0, len(in)-1; left < right; left, right = left+1, right-1 {
		in[left], in[right] = in[right], in[left]
	}

	return in
}
