package graphtest

import (
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rankworks/graphrank/nodegraph/graph"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

// SuiteBase defines a re-usable set of graph-related tests that can
// be executed against any type that implements graph.Graph.
type SuiteBase struct {
	g graph.Graph
}

// SetGraph configures the test-suite to run all tests against g.
func (s *SuiteBase) SetGraph(g graph.Graph) {
	s.g = g
}

// TestUpsertNode verifies the node upsert logic.
func (s *SuiteBase) TestUpsertNode(c *gc.C) {
	// Create a new node
	original := &graph.Node{
		Label:     "example.com",
		UpdatedAt: time.Now().Add(-10 * time.Hour),
	}

	err := s.g.UpsertNode(original)
	c.Assert(err, gc.IsNil)
	c.Assert(original.ID, gc.Not(gc.Equals), uuid.Nil, gc.Commentf("expected a nodeID to be assigned to the new node"))

	// Update existing node with a newer timestamp
	updatedAt := time.Now().Truncate(time.Second).UTC()
	existing := &graph.Node{
		ID:        original.ID,
		Label:     "example.com",
		UpdatedAt: updatedAt,
	}
	err = s.g.UpsertNode(existing)
	c.Assert(err, gc.IsNil)
	c.Assert(existing.ID, gc.Equals, original.ID, gc.Commentf("node ID changed while upserting"))

	stored, err := s.g.FindNode(existing.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(stored.UpdatedAt, gc.Equals, updatedAt, gc.Commentf("updated-at timestamp was not modified"))

	// Attempt to insert a node whose label matches an existing node and
	// provide an older timestamp value
	sameLabel := &graph.Node{
		Label:     existing.Label,
		UpdatedAt: time.Now().Add(-10 * time.Hour).UTC(),
	}
	err = s.g.UpsertNode(sameLabel)
	c.Assert(err, gc.IsNil)
	c.Assert(sameLabel.ID, gc.Equals, existing.ID)

	stored, err = s.g.FindNode(existing.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(stored.UpdatedAt, gc.Equals, updatedAt, gc.Commentf("updated-at timestamp was overwritten with an older value"))

	// Insert a node with a different label and verify it gets its own ID.
	other := &graph.Node{
		Label: "foo",
	}
	err = s.g.UpsertNode(other)
	c.Assert(err, gc.IsNil)
	c.Assert(other.ID, gc.Not(gc.Equals), uuid.Nil, gc.Commentf("expected a nodeID to be assigned to the new node"))
	c.Assert(other.ID, gc.Not(gc.Equals), existing.ID, gc.Commentf("node with different label mapped to an existing node"))
}

// TestFindNode verifies the node lookup logic.
func (s *SuiteBase) TestFindNode(c *gc.C) {
	// Create a new node
	node := &graph.Node{
		Label:     "example.com",
		UpdatedAt: time.Now().Truncate(time.Second).UTC(),
	}

	err := s.g.UpsertNode(node)
	c.Assert(err, gc.IsNil)
	c.Assert(node.ID, gc.Not(gc.Equals), uuid.Nil, gc.Commentf("expected a nodeID to be assigned to the new node"))

	// Lookup node by ID
	other, err := s.g.FindNode(node.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(other, gc.DeepEquals, node, gc.Commentf("lookup by ID returned the wrong node"))

	// Lookup node by unknown ID
	_, err = s.g.FindNode(uuid.Nil)
	c.Assert(xerrors.Is(err, graph.ErrNotFound), gc.Equals, true)
}

// TestConcurrentNodeIterators verifies that multiple clients can concurrently
// access the store.
func (s *SuiteBase) TestConcurrentNodeIterators(c *gc.C) {
	var (
		wg           sync.WaitGroup
		numIterators = 10
		numNodes     = 100
	)

	for i := 0; i < numNodes; i++ {
		node := &graph.Node{Label: fmt.Sprint(i)}
		c.Assert(s.g.UpsertNode(node), gc.IsNil)
	}

	wg.Add(numIterators)
	for i := 0; i < numIterators; i++ {
		go func(id int) {
			defer wg.Done()

			itTagComment := gc.Commentf("iterator %d", id)
			seen := make(map[string]bool)
			it, err := s.partitionedNodeIterator(c, 0, 1, time.Now())
			c.Assert(err, gc.IsNil, itTagComment)
			defer func() {
				c.Assert(it.Close(), gc.IsNil, itTagComment)
			}()

			for i := 0; it.Next(); i++ {
				node := it.Node()
				nodeID := node.ID.String()
				c.Assert(seen[nodeID], gc.Equals, false, gc.Commentf("iterator %d saw same node twice", id))
				seen[nodeID] = true
			}

			c.Assert(seen, gc.HasLen, numNodes, itTagComment)
			c.Assert(it.Error(), gc.IsNil, itTagComment)
			c.Assert(it.Close(), gc.IsNil, itTagComment)
		}(i)
	}

	doneCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh:
	// test completed successfully
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for test to complete")
	}
}

// TestNodeIteratorTimeFilter verifies that the time-based filtering of the
// node iterator works as expected.
func (s *SuiteBase) TestNodeIteratorTimeFilter(c *gc.C) {
	nodeUUIDs := make([]uuid.UUID, 3)
	nodeInsertTimes := make([]time.Time, len(nodeUUIDs))
	for i := 0; i < len(nodeUUIDs); i++ {
		node := &graph.Node{Label: fmt.Sprint(i), UpdatedAt: time.Now()}
		c.Assert(s.g.UpsertNode(node), gc.IsNil)
		nodeUUIDs[i] = node.ID
		nodeInsertTimes[i] = time.Now()
	}

	for i, t := range nodeInsertTimes {
		c.Logf("fetching nodes created before edge %d", i)
		s.assertIteratedNodeIDsMatch(c, t, nodeUUIDs[:i+1])
	}
}

func (s *SuiteBase) assertIteratedNodeIDsMatch(c *gc.C, updatedBefore time.Time, exp []uuid.UUID) {
	it, err := s.partitionedNodeIterator(c, 0, 1, updatedBefore)
	c.Assert(err, gc.IsNil)

	var got []uuid.UUID
	for it.Next() {
		got = append(got, it.Node().ID)
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)

	sort.Slice(got, func(l, r int) bool { return got[l].String() < got[r].String() })
	sort.Slice(exp, func(l, r int) bool { return exp[l].String() < exp[r].String() })
	c.Assert(got, gc.DeepEquals, exp)
}

// TestPartitionedNodeIterators verifies that the graph partitioning logic
// works as expected even when partitions contain an uneven number of items.
func (s *SuiteBase) TestPartitionedNodeIterators(c *gc.C) {
	numNodes := 100
	numPartitions := 10
	for i := 0; i < numNodes; i++ {
		c.Assert(s.g.UpsertNode(&graph.Node{Label: fmt.Sprint(i)}), gc.IsNil)
	}

	// Check with both odd and even partition counts to check for rounding-related bugs.
	c.Assert(s.iteratePartitionedNodes(c, numPartitions), gc.Equals, numNodes)
	c.Assert(s.iteratePartitionedNodes(c, numPartitions+1), gc.Equals, numNodes)
}

func (s *SuiteBase) iteratePartitionedNodes(c *gc.C, numPartitions int) int {
	seen := make(map[string]bool)
	for partition := 0; partition < numPartitions; partition++ {
		it, err := s.partitionedNodeIterator(c, partition, numPartitions, time.Now())
		c.Assert(err, gc.IsNil)
		defer func() {
			c.Assert(it.Close(), gc.IsNil)
		}()

		for it.Next() {
			node := it.Node()
			nodeID := node.ID.String()
			c.Assert(seen[nodeID], gc.Equals, false, gc.Commentf("iterator returned same node in different partitions"))
			seen[nodeID] = true
		}

		c.Assert(it.Error(), gc.IsNil)
		c.Assert(it.Close(), gc.IsNil)
	}

	return len(seen)
}

// TestUpsertEdge verifies the edge upsert logic.
func (s *SuiteBase) TestUpsertEdge(c *gc.C) {
	// Create nodes
	nodeUUIDs := make([]uuid.UUID, 3)
	for i := 0; i < 3; i++ {
		node := &graph.Node{Label: fmt.Sprint(i)}
		c.Assert(s.g.UpsertNode(node), gc.IsNil)
		nodeUUIDs[i] = node.ID
	}

	// Create an edge
	edge := &graph.Edge{
		Src: nodeUUIDs[0],
		Dst: nodeUUIDs[1],
	}

	err := s.g.UpsertEdge(edge)
	c.Assert(err, gc.IsNil)
	c.Assert(edge.ID, gc.Not(gc.Equals), uuid.Nil, gc.Commentf("expected an edgeID to be assigned to the new edge"))
	c.Assert(edge.UpdatedAt.IsZero(), gc.Equals, false, gc.Commentf("UpdatedAt field not set"))

	// Update existing edge
	other := &graph.Edge{
		ID:  edge.ID,
		Src: nodeUUIDs[0],
		Dst: nodeUUIDs[1],
	}
	err = s.g.UpsertEdge(other)
	c.Assert(err, gc.IsNil)
	c.Assert(other.ID, gc.Equals, edge.ID, gc.Commentf("edge ID changed while upserting"))
	c.Assert(other.UpdatedAt, gc.Not(gc.Equals), edge.UpdatedAt, gc.Commentf("UpdatedAt field not modified"))

	// Create edge with unknown node IDs
	bogus := &graph.Edge{
		Src: nodeUUIDs[0],
		Dst: uuid.New(),
	}
	err = s.g.UpsertEdge(bogus)
	c.Assert(xerrors.Is(err, graph.ErrUnknownEdgeNodes), gc.Equals, true)
}

// TestConcurrentEdgeIterators verifies that multiple clients can concurrently
// access the store.
func (s *SuiteBase) TestConcurrentEdgeIterators(c *gc.C) {
	var (
		wg           sync.WaitGroup
		numIterators = 10
		numEdges     = 100
		nodeUUIDs    = make([]uuid.UUID, numEdges*2)
	)

	for i := 0; i < numEdges*2; i++ {
		node := &graph.Node{Label: fmt.Sprint(i)}
		c.Assert(s.g.UpsertNode(node), gc.IsNil)
		nodeUUIDs[i] = node.ID
	}
	for i := 0; i < numEdges; i++ {
		c.Assert(s.g.UpsertEdge(&graph.Edge{
			Src: nodeUUIDs[0],
			Dst: nodeUUIDs[i],
		}), gc.IsNil)
	}

	wg.Add(numIterators)
	for i := 0; i < numIterators; i++ {
		go func(id int) {
			defer wg.Done()

			itTagComment := gc.Commentf("iterator %d", id)
			seen := make(map[string]bool)
			it, err := s.partitionedEdgeIterator(c, 0, 1, time.Now())
			c.Assert(err, gc.IsNil, itTagComment)
			defer func() {
				c.Assert(it.Close(), gc.IsNil, itTagComment)
			}()

			for i := 0; it.Next(); i++ {
				edge := it.Edge()
				edgeID := edge.ID.String()
				c.Assert(seen[edgeID], gc.Equals, false, gc.Commentf("iterator %d saw same edge twice", id))
				seen[edgeID] = true
			}

			c.Assert(seen, gc.HasLen, numEdges, itTagComment)
			c.Assert(it.Error(), gc.IsNil, itTagComment)
			c.Assert(it.Close(), gc.IsNil, itTagComment)
		}(i)
	}

	doneCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh:
	// test completed successfully
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for test to complete")
	}
}

// TestEdgeIteratorTimeFilter verifies that the time-based filtering of the
// edge iterator works as expected.
func (s *SuiteBase) TestEdgeIteratorTimeFilter(c *gc.C) {
	nodeUUIDs := make([]uuid.UUID, 3)
	nodeInsertTimes := make([]time.Time, len(nodeUUIDs))
	for i := 0; i < len(nodeUUIDs); i++ {
		node := &graph.Node{Label: fmt.Sprint(i)}
		c.Assert(s.g.UpsertNode(node), gc.IsNil)
		nodeUUIDs[i] = node.ID
		nodeInsertTimes[i] = time.Now()
	}

	edgeUUIDs := make([]uuid.UUID, len(nodeUUIDs))
	edgeInsertTimes := make([]time.Time, len(nodeUUIDs))
	for i := 0; i < len(nodeUUIDs); i++ {
		edge := &graph.Edge{Src: nodeUUIDs[0], Dst: nodeUUIDs[i]}
		c.Assert(s.g.UpsertEdge(edge), gc.IsNil)
		edgeUUIDs[i] = edge.ID
		edgeInsertTimes[i] = time.Now()
	}

	for i, t := range edgeInsertTimes {
		c.Logf("fetching edges created before edge %d", i)
		s.assertIteratedEdgeIDsMatch(c, t, edgeUUIDs[:i+1])
	}
}

func (s *SuiteBase) assertIteratedEdgeIDsMatch(c *gc.C, updatedBefore time.Time, exp []uuid.UUID) {
	it, err := s.partitionedEdgeIterator(c, 0, 1, updatedBefore)
	c.Assert(err, gc.IsNil)

	var got []uuid.UUID
	for it.Next() {
		got = append(got, it.Edge().ID)
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)

	sort.Slice(got, func(l, r int) bool { return got[l].String() < got[r].String() })
	sort.Slice(exp, func(l, r int) bool { return exp[l].String() < exp[r].String() })
	c.Assert(got, gc.DeepEquals, exp)
}

// TestPartitionedEdgeIterators verifies that the graph partitioning logic
// works as expected even when partitions contain an uneven number of items.
func (s *SuiteBase) TestPartitionedEdgeIterators(c *gc.C) {
	numEdges := 100
	numPartitions := 10
	nodeUUIDs := make([]uuid.UUID, numEdges*2)
	for i := 0; i < numEdges*2; i++ {
		node := &graph.Node{Label: fmt.Sprint(i)}
		c.Assert(s.g.UpsertNode(node), gc.IsNil)
		nodeUUIDs[i] = node.ID
	}
	for i := 0; i < numEdges; i++ {
		c.Assert(s.g.UpsertEdge(&graph.Edge{
			Src: nodeUUIDs[0],
			Dst: nodeUUIDs[i],
		}), gc.IsNil)
	}

	// Check with both odd and even partition counts to check for rounding-related bugs.
	c.Assert(s.iteratePartitionedEdges(c, numPartitions), gc.Equals, numEdges)
	c.Assert(s.iteratePartitionedEdges(c, numPartitions+1), gc.Equals, numEdges)
}

func (s *SuiteBase) iteratePartitionedEdges(c *gc.C, numPartitions int) int {
	seen := make(map[string]bool)
	for partition := 0; partition < numPartitions; partition++ {
		// Build list of expected edges per partition. An edge belongs to a
		// partition if its origin node also belongs to the same partition.
		nodesInPartition := make(map[uuid.UUID]struct{})
		nodeIt, err := s.partitionedNodeIterator(c, partition, numPartitions, time.Now())
		c.Assert(err, gc.IsNil)
		for nodeIt.Next() {
			nodeID := nodeIt.Node().ID
			nodesInPartition[nodeID] = struct{}{}
		}

		it, err := s.partitionedEdgeIterator(c, partition, numPartitions, time.Now())
		c.Assert(err, gc.IsNil)
		defer func() {
			c.Assert(it.Close(), gc.IsNil)
		}()

		for it.Next() {
			edge := it.Edge()
			edgeID := edge.ID.String()
			c.Assert(seen[edgeID], gc.Equals, false, gc.Commentf("iterator returned same edge in different partitions"))
			seen[edgeID] = true

			_, srcInPartition := nodesInPartition[edge.Src]
			c.Assert(srcInPartition, gc.Equals, true, gc.Commentf("iterator returned an edge whose source node belongs to a different partition"))
		}

		c.Assert(it.Error(), gc.IsNil)
		c.Assert(it.Close(), gc.IsNil)
	}

	return len(seen)
}

// TestRemoveStaleEdges verifies that the edge deletion logic works as expected.
func (s *SuiteBase) TestRemoveStaleEdges(c *gc.C) {
	numEdges := 100
	nodeUUIDs := make([]uuid.UUID, numEdges*4)
	goneUUIDs := make(map[uuid.UUID]struct{})
	for i := 0; i < numEdges*4; i++ {
		node := &graph.Node{Label: fmt.Sprint(i)}
		c.Assert(s.g.UpsertNode(node), gc.IsNil)
		nodeUUIDs[i] = node.ID
	}

	var lastTs time.Time
	for i := 0; i < numEdges; i++ {
		e1 := &graph.Edge{
			Src: nodeUUIDs[0],
			Dst: nodeUUIDs[i],
		}
		c.Assert(s.g.UpsertEdge(e1), gc.IsNil)
		goneUUIDs[e1.ID] = struct{}{}
		lastTs = e1.UpdatedAt
	}

	deleteBefore := lastTs.Add(time.Millisecond)
	time.Sleep(250 * time.Millisecond)

	// The following edges will have an updated at value > lastTs
	for i := 0; i < numEdges; i++ {
		e2 := &graph.Edge{
			Src: nodeUUIDs[0],
			Dst: nodeUUIDs[numEdges+i+1],
		}
		c.Assert(s.g.UpsertEdge(e2), gc.IsNil)
	}
	c.Assert(s.g.RemoveStaleEdges(nodeUUIDs[0], deleteBefore), gc.IsNil)

	it, err := s.partitionedEdgeIterator(c, 0, 1, time.Now())
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(it.Close(), gc.IsNil) }()

	var seen int
	for it.Next() {
		id := it.Edge().ID
		_, found := goneUUIDs[id]
		c.Assert(found, gc.Equals, false, gc.Commentf("expected edge %s to be removed from the edge list", id.String()))
		seen++
	}

	c.Assert(seen, gc.Equals, numEdges)
}

func (s *SuiteBase) partitionedNodeIterator(c *gc.C, partition, numPartitions int, updatedBefore time.Time) (graph.NodeIterator, error) {
	from, to := s.partitionRange(c, partition, numPartitions)
	return s.g.Nodes(from, to, updatedBefore)
}

func (s *SuiteBase) partitionedEdgeIterator(c *gc.C, partition, numPartitions int, updatedBefore time.Time) (graph.EdgeIterator, error) {
	from, to := s.partitionRange(c, partition, numPartitions)
	return s.g.Edges(from, to, updatedBefore)
}

func (s *SuiteBase) partitionRange(c *gc.C, partition, numPartitions int) (from, to uuid.UUID) {
	if partition < 0 || partition >= numPartitions {
		c.Fatal("invalid partition")
	}

	var minUUID = uuid.Nil
	var maxUUID = uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")
	var err error

	// Calculate the size of each partition as: (2^128 / numPartitions)
	tokenRange := big.NewInt(0)
	partSize := big.NewInt(0)
	partSize.SetBytes(maxUUID[:])
	partSize = partSize.Div(partSize, big.NewInt(int64(numPartitions)))

	// We model the partitions as a segment that begins at minUUID (all
	// bits set to zero) and ends at maxUUID (all bits set to 1). By
	// setting the end range for the *last* partition to maxUUID we ensure
	// that we always cover the full range of UUIDs even if the range
	// itself is not evenly divisible by numPartitions.
	if partition == 0 {
		from = minUUID
	} else {
		tokenRange.Mul(partSize, big.NewInt(int64(partition)))
		from, err = uuid.FromBytes(tokenRange.Bytes())
		c.Assert(err, gc.IsNil)
	}

	if partition == numPartitions-1 {
		to = maxUUID
	} else {
		tokenRange.Mul(partSize, big.NewInt(int64(partition+1)))
		to, err = uuid.FromBytes(tokenRange.Bytes())
		c.Assert(err, gc.IsNil)
	}

	return from, to
}
