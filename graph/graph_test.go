package graph

import (
	"testing"

	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(GraphTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type GraphTestSuite struct {
}

func (s *GraphTestSuite) TestBuildAssignsSortedDenseIndices(c *gc.C) {
	b := NewBuilder()
	b.AddVertex("walnut")
	b.AddVertex("acorn")
	b.AddVertex("maple")
	b.AddVertex("acorn")

	g, err := b.Build()
	c.Assert(err, gc.IsNil)
	c.Assert(g.NumVertices(), gc.Equals, 3, gc.Commentf("duplicate vertex adds must be collapsed"))

	for i, exp := range []string{"acorn", "maple", "walnut"} {
		c.Assert(g.VertexID(i), gc.Equals, exp)
		gotIdx, exists := g.Index(exp)
		c.Assert(exists, gc.Equals, true)
		c.Assert(gotIdx, gc.Equals, i)
	}

	_, exists := g.Index("birch")
	c.Assert(exists, gc.Equals, false)
}

func (s *GraphTestSuite) TestHasVertex(c *gc.C) {
	b := NewBuilder()
	b.AddVertex("acorn")

	c.Assert(b.HasVertex("acorn"), gc.Equals, true)
	c.Assert(b.HasVertex("birch"), gc.Equals, false)
}

func (s *GraphTestSuite) TestBuildValidatesEdgeEndpoints(c *gc.C) {
	b := NewBuilder()
	b.AddVertex("a")
	b.AddEdge("a", "ghost")

	g, err := b.Build()
	c.Assert(g, gc.IsNil)
	c.Assert(xerrors.Is(err, ErrUnknownEdgeVertex), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, `.*\("a" -> "ghost"\): destination:.*`)

	b = NewBuilder()
	b.AddVertex("a")
	b.AddEdge("ghost", "a")

	g, err = b.Build()
	c.Assert(g, gc.IsNil)
	c.Assert(xerrors.Is(err, ErrUnknownEdgeVertex), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, `.*\("ghost" -> "a"\): source:.*`)
}

func (s *GraphTestSuite) TestAdjacency(c *gc.C) {
	// Graph layout:
	//
	//   a -> b -> c
	//   a -> c
	//   c -> c (self-loop)
	//   a -> b (duplicate)
	b := NewBuilder()
	for _, id := range []string{"a", "b", "c"} {
		b.AddVertex(id)
	}
	b.AddEdge("a", "b")
	b.AddEdge("b", "c")
	b.AddEdge("a", "c")
	b.AddEdge("c", "c")
	b.AddEdge("a", "b")

	g, err := b.Build()
	c.Assert(err, gc.IsNil)
	c.Assert(g.NumEdges(), gc.Equals, 5, gc.Commentf("duplicate edges must be retained"))

	c.Assert(g.OutDegree(0), gc.Equals, 3)
	c.Assert(g.OutDegree(1), gc.Equals, 1)
	c.Assert(g.OutDegree(2), gc.Equals, 1)

	c.Assert(g.OutNeighbors(0), gc.DeepEquals, []int{1, 1, 2})
	c.Assert(g.OutNeighbors(1), gc.DeepEquals, []int{2})
	c.Assert(g.OutNeighbors(2), gc.DeepEquals, []int{2})

	c.Assert(g.InNeighbors(0), gc.HasLen, 0)
	c.Assert(g.InNeighbors(1), gc.DeepEquals, []int{0, 0})
	c.Assert(g.InNeighbors(2), gc.DeepEquals, []int{0, 1, 2})
}

func (s *GraphTestSuite) TestBuildEmptyGraph(c *gc.C) {
	g, err := NewBuilder().Build()
	c.Assert(err, gc.IsNil)
	c.Assert(g.NumVertices(), gc.Equals, 0)
	c.Assert(g.NumEdges(), gc.Equals, 0)
}

func (s *GraphTestSuite) TestDanglingVertexHasZeroOutDegree(c *gc.C) {
	b := NewBuilder()
	b.AddVertex("src")
	b.AddVertex("sink")
	b.AddEdge("src", "sink")

	g, err := b.Build()
	c.Assert(err, gc.IsNil)

	sinkIdx, exists := g.Index("sink")
	c.Assert(exists, gc.Equals, true)
	c.Assert(g.OutDegree(sinkIdx), gc.Equals, 0)
	c.Assert(g.OutNeighbors(sinkIdx), gc.HasLen, 0)
}
